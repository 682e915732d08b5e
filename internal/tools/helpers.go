package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tender-barbarian/hooklens/internal/hooktab"
)

// maxInputLen bounds every string argument a tool accepts.
const maxInputLen = 4096

// jsonResult serialises v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding response: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

// withLengthCheck rejects requests with an oversized string argument before
// they reach h.
func withLengthCheck(h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		for name, v := range req.GetArguments() {
			if s, ok := v.(string); ok && len(s) > maxInputLen {
				return nil, fmt.Errorf("argument %q exceeds maximum length of %d bytes", name, maxInputLen)
			}
		}
		return h(ctx, req)
	}
}

// hookList is the JSON shape of a hook table returned by the tools.
type hookList struct {
	Classes []hooktab.Entry `json:"classes"`
	Enums   []hooktab.Entry `json:"enums"`
}

func newHookList(t *hooktab.Table) hookList {
	return hookList{Classes: t.Classes.Entries(), Enums: t.Enums.Entries()}
}

// nonEmpty drops empty strings from names.
func nonEmpty(names []string) []string {
	result := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			result = append(result, n)
		}
	}
	return result
}
