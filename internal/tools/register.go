package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Register wires all hooklens MCP tools to s.
// Each tool delegates to sess for reflection and signature matching.
func Register(s *server.MCPServer, sess *Session) {
	s.AddTool(mcp.NewTool("reflect_source",
		mcp.WithDescription("Resolves the hook table (logical name -> obfuscated name) for a host source file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the host JavaScript source")),
		mcp.WithBoolean("force", mcp.Description("Re-parse the source even if hooks are cached (default: false)")),
	), withLengthCheck(reflectSourceHandler(sess)))

	s.AddTool(mcp.NewTool("get_hooks",
		mcp.WithDescription("Returns the current class and enum hook tables."),
	), withLengthCheck(getHooksHandler(sess)))

	s.AddTool(mcp.NewTool("get_class_hook",
		mcp.WithDescription("Returns the obfuscated class name bound to a logical name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Logical class name, e.g. EntityManager")),
	), withLengthCheck(getClassHookHandler(sess)))

	s.AddTool(mcp.NewTool("get_enum_hook",
		mcp.WithDescription("Returns the obfuscated enum name bound to a logical name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Logical enum name, e.g. GameWorldActions")),
	), withLengthCheck(getEnumHookHandler(sess)))

	s.AddTool(mcp.NewTool("find_class",
		mcp.WithDescription("Finds classes in a host source file that satisfy a structural signature."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the host JavaScript source")),
		mcp.WithArray("methods", mcp.WithStringItems(), mcp.Description("Method names that must all be present")),
		mcp.WithArray("fields", mcp.WithStringItems(), mcp.Description("Field names that must all be present")),
		mcp.WithString("contains", mcp.Description("Substring that must occur in the class source")),
		mcp.WithBoolean("all", mcp.Description("Return every candidate instead of the first (default: false)")),
	), withLengthCheck(findClassHandler(sess)))

	s.AddTool(mcp.NewTool("find_enum",
		mcp.WithDescription("Finds enum objects in a host source file by their string members."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the host JavaScript source")),
		mcp.WithArray("includes", mcp.WithStringItems(), mcp.Required(), mcp.Description("Members that must all be present")),
		mcp.WithArray("excludes", mcp.WithStringItems(), mcp.Description("Members that must all be absent")),
		mcp.WithBoolean("all", mcp.Description("Return every candidate instead of the first (default: false)")),
	), withLengthCheck(findEnumHandler(sess)))

	s.AddTool(mcp.NewTool("list_signatures",
		mcp.WithDescription("Lists the class and enum signatures of the registry."),
	), withLengthCheck(listSignaturesHandler(sess)))
}
