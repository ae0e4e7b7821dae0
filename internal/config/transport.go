// Package config provides configuration types and collaborator interfaces
// for the MCP connection registry.
package config

import (
	"context"
	"io"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// LaunchSpec describes how to start an MCP server process.
type LaunchSpec struct {
	// Command is the executable name or path.
	Command string

	// Args are passed to the executable in order.
	Args []string

	// Env holds extra environment variables layered over the parent environment.
	Env map[string]string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Stderr is called with each line the process writes to standard error.
	Stderr func(line string)
}

// Process is a spawned server process whose standard input and output form
// a duplex byte stream.
//
// The default implementation is subprocess.Process. Custom implementations
// can be injected through a Launcher for testing.
type Process interface {
	// Stdout is the stream of bytes written by the server.
	Stdout() io.ReadCloser

	// Stdin is the stream of bytes read by the server.
	Stdin() io.WriteCloser

	// PID returns the operating system process id, or 0 if unknown.
	PID() int

	// Stderr returns buffered standard error output collected so far.
	Stderr() string

	// Done is closed once the process has exited.
	Done() <-chan struct{}

	// Shutdown closes stdin, waits for the process to exit and kills it if
	// ctx expires first. It's safe to call Shutdown multiple times.
	Shutdown(ctx context.Context) error
}

// Launcher spawns server processes.
type Launcher interface {
	// Launch starts the process described by spec.
	Launch(ctx context.Context, spec LaunchSpec) (Process, error)
}

// ProtocolClient is an initialized MCP client session.
type ProtocolClient interface {
	// ListTools returns one page of tools advertised by the server.
	ListTools(ctx context.Context, params *mcp.ListToolsParams) (*mcp.ListToolsResult, error)

	// CallTool invokes a tool on the server.
	CallTool(ctx context.Context, params *mcp.CallToolParams) (*mcp.CallToolResult, error)

	// ServerInfo returns the implementation reported during the handshake.
	// It may be nil.
	ServerInfo() *mcp.Implementation

	// Close ends the session. It's safe to call Close multiple times.
	Close() error
}

// Connector performs the protocol handshake over a process's stdio.
type Connector interface {
	// Connect initializes a client session over the process's streams.
	Connect(ctx context.Context, proc Process) (ProtocolClient, error)
}
