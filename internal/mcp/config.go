package mcp

import (
	"fmt"

	"github.com/wagiedev/mcp-registry-go/internal/config"
)

// ServerType represents the type of MCP server.
type ServerType string

const (
	// ServerTypeStdio uses stdio for communication.
	ServerTypeStdio ServerType = "stdio"
)

// StdioServerConfig configures a stdio-based MCP server.
//
// This is the shape of one entry under "mcpServers" in a config file.
type StdioServerConfig struct {
	Type    *ServerType       `json:"type,omitempty" yaml:"type,omitempty"` // Optional for backwards compatibility
	Command string            `json:"command" yaml:"command"`
	Args    []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	Cwd     string            `json:"cwd,omitempty" yaml:"cwd,omitempty"`
}

// GetType returns the configured server type, defaulting to stdio.
func (m *StdioServerConfig) GetType() ServerType {
	if m.Type != nil {
		return *m.Type
	}

	return ServerTypeStdio
}

// Validate reports whether the config describes a launchable stdio server.
func (m *StdioServerConfig) Validate() error {
	if t := m.GetType(); t != ServerTypeStdio {
		return fmt.Errorf("unsupported server type %q: only %q servers can be launched", t, ServerTypeStdio)
	}

	if m.Command == "" {
		return fmt.Errorf("missing command")
	}

	return nil
}

// LaunchSpec converts the config into a launch specification.
func (m *StdioServerConfig) LaunchSpec() config.LaunchSpec {
	return config.LaunchSpec{
		Command: m.Command,
		Args:    m.Args,
		Env:     m.Env,
		Dir:     m.Cwd,
	}
}
