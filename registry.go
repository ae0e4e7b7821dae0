package mcpregistry

import (
	"context"

	"github.com/wagiedev/mcp-registry-go/internal/registry"
)

// Registry tracks named MCP client sessions, each backed by a server
// subprocess.
//
// All methods are safe for concurrent use. Operations on one connection id
// never block operations on another while I/O is in progress.
//
// Example usage:
//
//	reg := mcpregistry.New()
//	defer reg.Close(ctx)
//
//	if err := reg.Connect(ctx, "bmi", mcpregistry.LaunchSpec{Command: "bmi-server"}); err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := reg.CallTool(ctx, "bmi", "calculate_bmi", map[string]any{"height": 1.75, "weight": 70})
type Registry interface {
	// Connect spawns the server described by spec, performs the MCP
	// handshake and registers the session under id.
	// Returns ErrAlreadyConnected if id is in use, LaunchError if the process
	// cannot be spawned and HandshakeError if initialization fails.
	Connect(ctx context.Context, id string, spec LaunchSpec) error

	// Disconnect ends the session under id and stops its server. The id is
	// free for reuse once Disconnect returns, even when it returns a
	// ShutdownError. Returns ErrNotConnected if id has no active session.
	Disconnect(ctx context.Context, id string) error

	// ListTools returns the tools the server under id advertises, in server
	// order. Returns ErrNotConnected or ProtocolError.
	ListTools(ctx context.Context, id string) ([]*Tool, error)

	// CallTool invokes a tool and returns its result unchanged; args may be
	// nil. A tool failure is a result with IsError set, not an error.
	// Returns ErrNotConnected or ProtocolError.
	CallTool(ctx context.Context, id, name string, args map[string]any) (*CallToolResult, error)

	// Connections returns the ids of active sessions in sorted order.
	Connections() []string

	// Info returns a snapshot of the session under id.
	Info(id string) (SessionInfo, error)

	// ConnectServers connects every configured server concurrently under
	// its map key. Failures are joined; successful connections remain.
	ConnectServers(ctx context.Context, servers map[string]ServerConfig) error

	// Discover connects every configured server and lists its tools,
	// reporting the outcome per server. Connected servers stay connected.
	Discover(ctx context.Context, servers map[string]ServerConfig) DiscoveryStatus

	// Close disconnects every session and rejects further connects with
	// ErrRegistryClosed. It is safe to call Close multiple times.
	Close(ctx context.Context) error
}

// Compile-time check that the internal registry implements Registry.
var _ Registry = (*registry.Registry)(nil)

// New creates an empty registry.
//
// Servers are spawned as subprocesses and initialized with the official MCP
// Go SDK client unless WithLauncher or WithConnector replace them.
func New(opts ...Option) Registry {
	return registry.New(applyOptions(opts))
}
