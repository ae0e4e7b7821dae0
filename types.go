package mcpregistry

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/mcp-registry-go/internal/config"
	internalmcp "github.com/wagiedev/mcp-registry-go/internal/mcp"
	"github.com/wagiedev/mcp-registry-go/internal/registry"
)

// Re-export MCP SDK types for public API.
// These are the official MCP protocol types.
type (
	// Tool is a tool definition advertised by a server.
	Tool = mcp.Tool

	// CallToolResult is the server's response to a tool call.
	// IsError marks a tool that ran and failed.
	CallToolResult = mcp.CallToolResult

	// CallToolRequest is the request passed to tool handlers.
	CallToolRequest = mcp.CallToolRequest

	// ToolHandler handles calls to a tool served by a ToolServer.
	ToolHandler = mcp.ToolHandler

	// Content is the interface for content blocks in tool results.
	Content = mcp.Content

	// TextContent is text content in a tool result.
	TextContent = mcp.TextContent

	// Schema is a JSON Schema object for tool input validation.
	Schema = jsonschema.Schema
)

// Registry collaborators and configuration.
type (
	// LaunchSpec describes how to spawn a server process.
	LaunchSpec = config.LaunchSpec

	// Launcher spawns server processes.
	Launcher = config.Launcher

	// Process is a spawned server with its stdio streams.
	Process = config.Process

	// Connector performs the MCP handshake over a process's stdio.
	Connector = config.Connector

	// ProtocolClient is an initialized MCP client session.
	ProtocolClient = config.ProtocolClient

	// SessionInfo is a read-only snapshot of an active session.
	SessionInfo = registry.SessionInfo

	// ServerConfig is one entry of an "mcpServers" configuration.
	ServerConfig = internalmcp.StdioServerConfig

	// ServerType is the transport type of a configured server.
	ServerType = internalmcp.ServerType

	// ToolServer is an MCP server exposing tools over any transport.
	ToolServer = internalmcp.ToolServer

	// DiscoveryStatus reports the outcome of Discover for every server.
	DiscoveryStatus = internalmcp.Status

	// ServerStatus reports the outcome of Discover for one server.
	ServerStatus = internalmcp.ServerStatus
)

// Discovery outcomes in ServerStatus.Status.
const (
	StatusConnected = internalmcp.StatusConnected
	StatusFailed    = internalmcp.StatusFailed
)

// ServerTypeStdio is the only launchable server type.
const ServerTypeStdio = internalmcp.ServerTypeStdio

// IsToolError reports whether result is a tool-level failure. Such results
// come back from CallTool with a nil error.
func IsToolError(result *CallToolResult) bool {
	return result != nil && result.IsError
}

// ResultText concatenates the text content blocks of result.
func ResultText(result *CallToolResult) string {
	return internalmcp.ResultText(result)
}
