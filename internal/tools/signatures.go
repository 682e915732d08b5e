package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tender-barbarian/hooklens/internal/finder"
	"github.com/tender-barbarian/hooklens/internal/symtab"
)

// findClassHandler returns a handler for the find_class tool.
// It matches an ad-hoc class signature against a host source file, which
// is how new registry entries are developed. Only the first candidate is
// returned unless all is set.
func findClassHandler(s *Session) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return nil, err
		}
		sig := symtab.ClassSignature{
			Fields:   nonEmpty(req.GetStringSlice("fields", nil)),
			Methods:  nonEmpty(req.GetStringSlice("methods", nil)),
			Contains: req.GetString("contains", ""),
		}
		all := req.GetBool("all", false)

		cat, err := s.catalog(ctx, path)
		if err != nil {
			return nil, err
		}
		f := finder.New(cat)
		if all {
			return jsonResult(nonNil(f.FindClasses(sig)))
		}
		c, ok := f.FindClass(sig)
		if !ok {
			return jsonResult([]symtab.ClassInfo{})
		}
		return jsonResult([]symtab.ClassInfo{c})
	}
}

// findEnumHandler returns a handler for the find_enum tool.
func findEnumHandler(s *Session) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return nil, err
		}
		sig := symtab.EnumSignature{
			Includes: nonEmpty(req.GetStringSlice("includes", nil)),
			Excludes: nonEmpty(req.GetStringSlice("excludes", nil)),
		}
		all := req.GetBool("all", false)

		cat, err := s.catalog(ctx, path)
		if err != nil {
			return nil, err
		}
		f := finder.New(cat)
		if all {
			return jsonResult(nonNil(f.FindEnums(sig)))
		}
		e, ok := f.FindEnum(sig)
		if !ok {
			return jsonResult([]symtab.EnumInfo{})
		}
		return jsonResult([]symtab.EnumInfo{e})
	}
}

// listSignaturesHandler returns a handler for the list_signatures tool.
func listSignaturesHandler(s *Session) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(s.refl.Registry())
	}
}

// nonNil turns a nil slice into an empty one so it encodes as [].
func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
