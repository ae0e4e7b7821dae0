package mcpregistry

import "github.com/wagiedev/mcp-registry-go/internal/errors"

// Re-export error types from internal package

// AlreadyConnectedError indicates the connection id is in use.
type AlreadyConnectedError = errors.AlreadyConnectedError

// NotConnectedError indicates the connection id has no active session.
type NotConnectedError = errors.NotConnectedError

// CommandNotFoundError indicates the server command could not be resolved.
type CommandNotFoundError = errors.CommandNotFoundError

// LaunchError indicates the server process could not be spawned.
type LaunchError = errors.LaunchError

// HandshakeError indicates the MCP initialization failed.
type HandshakeError = errors.HandshakeError

// ProtocolError indicates a request failed in transport or was rejected.
type ProtocolError = errors.ProtocolError

// ShutdownError indicates the server did not shut down cleanly.
type ShutdownError = errors.ShutdownError

// RegistryError is the base interface for all registry errors.
type RegistryError = errors.RegistryError

// Re-export sentinel errors from internal package.
var (
	// ErrAlreadyConnected indicates the connection id is in use.
	ErrAlreadyConnected = errors.ErrAlreadyConnected

	// ErrNotConnected indicates the connection id has no active session.
	ErrNotConnected = errors.ErrNotConnected

	// ErrRegistryClosed indicates the registry has been closed.
	ErrRegistryClosed = errors.ErrRegistryClosed

	// ErrInvalidConnectionID indicates an empty connection id.
	ErrInvalidConnectionID = errors.ErrInvalidConnectionID

	// ErrInvalidCommand indicates an empty server command.
	ErrInvalidCommand = errors.ErrInvalidCommand

	// ErrShutdownTimeout indicates a server had to be killed.
	ErrShutdownTimeout = errors.ErrShutdownTimeout

	// ErrCursorLoop indicates ListTools gave up on a server's endless cursors.
	ErrCursorLoop = errors.ErrCursorLoop
)
