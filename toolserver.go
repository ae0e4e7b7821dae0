package mcpregistry

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	internalmcp "github.com/wagiedev/mcp-registry-go/internal/mcp"
)

// NewToolServer creates an MCP server for tools added with AddTool.
//
// Serve it over stdio to make a binary usable as a registry server:
//
//	server := mcpregistry.NewToolServer("calculator", "1.0.0")
//	server.AddTool(
//	    mcpregistry.NewTool("add", "Add two numbers",
//	        mcpregistry.SimpleSchema(map[string]string{"a": "float64", "b": "float64"})),
//	    func(ctx context.Context, req *mcpregistry.CallToolRequest) (*mcpregistry.CallToolResult, error) {
//	        args, err := mcpregistry.ParseArguments(req)
//	        if err != nil {
//	            return mcpregistry.ErrorResult(err.Error()), nil
//	        }
//	        a, b := args["a"].(float64), args["b"].(float64)
//	        return mcpregistry.TextResult(fmt.Sprintf("%v", a+b)), nil
//	    },
//	)
//
//	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
//	    log.Fatal(err)
//	}
//
// Calls to unknown tools are answered with an error result.
func NewToolServer(name, version string) *ToolServer {
	return internalmcp.NewToolServer(name, version)
}

// NewBMIServer returns a tool server exposing calculate_bmi(height, weight).
func NewBMIServer(version string) *ToolServer {
	return internalmcp.NewBMIServer(version)
}

// NewTool creates a tool definition with the given input schema.
func NewTool(name, description string, inputSchema *jsonschema.Schema) *mcp.Tool {
	return internalmcp.NewTool(name, description, inputSchema)
}

// SimpleSchema creates a jsonschema.Schema from a simple type map.
//
// Input format: {"a": "float64", "b": "string"}
//
// Type mappings:
//   - "string"           → {"type": "string"}
//   - "int", "int64"     → {"type": "integer"}
//   - "float64", "float" → {"type": "number"}
//   - "bool"             → {"type": "boolean"}
//   - "[]string"         → {"type": "array", "items": {"type": "string"}}
//   - "any", "object"    → {"type": "object"}
func SimpleSchema(props map[string]string) *jsonschema.Schema {
	return internalmcp.SimpleSchema(props)
}

// TextResult creates a CallToolResult with text content.
func TextResult(text string) *mcp.CallToolResult {
	return internalmcp.TextResult(text)
}

// ErrorResult creates a CallToolResult indicating a tool failure.
func ErrorResult(message string) *mcp.CallToolResult {
	return internalmcp.ErrorResult(message)
}

// ParseArguments unmarshals CallToolRequest arguments into a map.
func ParseArguments(req *mcp.CallToolRequest) (map[string]any, error) {
	return internalmcp.ParseArguments(req)
}
