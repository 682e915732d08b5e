package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// reflectSourceHandler returns a handler for the reflect_source tool.
// It resolves the hook table for a host source file, reusing cached hooks
// unless force is set, and reports which registry entries did not resolve.
func reflectSourceHandler(s *Session) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return nil, err
		}
		force := req.GetBool("force", false)

		p, err := s.reflect(ctx, path, force)
		if err != nil {
			return nil, fmt.Errorf("reflecting %s: %w", path, err)
		}

		type result struct {
			Warm    bool     `json:"warm"`
			Missing []string `json:"missing"`
			hookList
		}
		return jsonResult(result{
			Warm:     p.Warm,
			Missing:  s.refl.Missing(p),
			hookList: newHookList(p.Hooks),
		})
	}
}

// getHooksHandler returns a handler for the get_hooks tool.
func getHooksHandler(s *Session) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(newHookList(s.hooks(ctx)))
	}
}

// getClassHookHandler returns a handler for the get_class_hook tool.
func getClassHookHandler(s *Session) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return nil, err
		}
		v, ok := s.hooks(ctx).ClassHook(name)
		if !ok {
			return nil, fmt.Errorf("class hook %q not found", name)
		}
		return mcp.NewToolResultText(v), nil
	}
}

// getEnumHookHandler returns a handler for the get_enum_hook tool.
func getEnumHookHandler(s *Session) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return nil, err
		}
		v, ok := s.hooks(ctx).EnumHook(name)
		if !ok {
			return nil, fmt.Errorf("enum hook %q not found", name)
		}
		return mcp.NewToolResultText(v), nil
	}
}
