package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server connection outcomes reported in ServerStatus.Status.
const (
	StatusConnected = "connected"
	StatusFailed    = "failed"
)

// ServerStatus reports the discovery outcome of a single MCP server.
type ServerStatus struct {
	Name   string      `json:"name"`
	Status string      `json:"status"`
	Error  string      `json:"error,omitempty"`
	Tools  []*mcp.Tool `json:"tools,omitempty"`
}

// Status reports the discovery outcome of all configured MCP servers.
type Status struct {
	MCPServers []ServerStatus `json:"mcpServers"`
}

// Failed returns the servers that could not be connected or listed.
func (s *Status) Failed() []ServerStatus {
	var failed []ServerStatus

	for _, server := range s.MCPServers {
		if server.Status != StatusConnected {
			failed = append(failed, server)
		}
	}

	return failed
}
