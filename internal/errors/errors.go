package errors

import (
	"errors"
	"fmt"
)

// RegistryError is the base interface for all registry errors.
type RegistryError interface {
	error
	IsRegistryError() bool
}

// Compile-time verification that all error types implement RegistryError.
var (
	_ RegistryError = (*AlreadyConnectedError)(nil)
	_ RegistryError = (*NotConnectedError)(nil)
	_ RegistryError = (*CommandNotFoundError)(nil)
	_ RegistryError = (*LaunchError)(nil)
	_ RegistryError = (*HandshakeError)(nil)
	_ RegistryError = (*ProtocolError)(nil)
	_ RegistryError = (*ShutdownError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrAlreadyConnected indicates a session already exists for the identifier.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrNotConnected indicates no session exists for the identifier.
	ErrNotConnected = errors.New("not connected")

	// ErrRegistryClosed indicates the registry has been closed and accepts no new connections.
	ErrRegistryClosed = errors.New("registry closed")

	// ErrInvalidConnectionID indicates an empty connection identifier.
	ErrInvalidConnectionID = errors.New("connection id must not be empty")

	// ErrInvalidCommand indicates an empty launch command.
	ErrInvalidCommand = errors.New("command must not be empty")

	// ErrShutdownTimeout indicates a process did not exit within the shutdown
	// timeout and had to be killed.
	ErrShutdownTimeout = errors.New("graceful shutdown timed out")

	// ErrCursorLoop indicates a server kept returning tools/list cursors past
	// the page limit.
	ErrCursorLoop = errors.New("tools/list pagination did not terminate")
)

// AlreadyConnectedError indicates Connect was called for an identifier that
// already has a session, or one that is being connected or disconnected.
type AlreadyConnectedError struct {
	ID string
}

func (e *AlreadyConnectedError) Error() string {
	return fmt.Sprintf("client with id %q already connected", e.ID)
}

// Is reports whether target is ErrAlreadyConnected.
func (e *AlreadyConnectedError) Is(target error) bool {
	return target == ErrAlreadyConnected
}

// IsRegistryError implements RegistryError.
func (e *AlreadyConnectedError) IsRegistryError() bool { return true }

// NotConnectedError indicates an operation addressed an identifier with no
// active session.
type NotConnectedError struct {
	ID string
}

func (e *NotConnectedError) Error() string {
	return fmt.Sprintf("client with id %q not connected", e.ID)
}

// Is reports whether target is ErrNotConnected.
func (e *NotConnectedError) Is(target error) bool {
	return target == ErrNotConnected
}

// IsRegistryError implements RegistryError.
func (e *NotConnectedError) IsRegistryError() bool { return true }

// CommandNotFoundError indicates the server executable could not be resolved.
type CommandNotFoundError struct {
	Command string
	Err     error
}

func (e *CommandNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("command %q not found: %v", e.Command, e.Err)
	}

	return fmt.Sprintf("command %q not found", e.Command)
}

func (e *CommandNotFoundError) Unwrap() error {
	return e.Err
}

// IsRegistryError implements RegistryError.
func (e *CommandNotFoundError) IsRegistryError() bool { return true }

// LaunchError indicates the server process could not be spawned.
// No session is created.
type LaunchError struct {
	ID      string
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %q for %q: %v", e.Command, e.ID, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// IsRegistryError implements RegistryError.
func (e *LaunchError) IsRegistryError() bool { return true }

// HandshakeError indicates the process started but protocol initialization
// failed. The process has been terminated and no session is created.
type HandshakeError struct {
	ID     string
	Stderr string
	Err    error
}

func (e *HandshakeError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("handshake with %q failed: %v (stderr: %s)", e.ID, e.Err, e.Stderr)
	}

	return fmt.Sprintf("handshake with %q failed: %v", e.ID, e.Err)
}

func (e *HandshakeError) Unwrap() error {
	return e.Err
}

// IsRegistryError implements RegistryError.
func (e *HandshakeError) IsRegistryError() bool { return true }

// ProtocolError indicates a transport-level failure or a remote rejection
// while listing or calling tools on an active session. The session state is
// undefined afterwards; callers are expected to Disconnect.
type ProtocolError struct {
	ID  string
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s on %q: %v", e.Op, e.ID, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsRegistryError implements RegistryError.
func (e *ProtocolError) IsRegistryError() bool { return true }

// ShutdownError indicates the session could not be shut down cleanly.
// The identifier has still been released.
type ShutdownError struct {
	ID  string
	Err error
}

func (e *ShutdownError) Error() string {
	return fmt.Sprintf("shutdown %q: %v", e.ID, e.Err)
}

func (e *ShutdownError) Unwrap() error {
	return e.Err
}

// IsRegistryError implements RegistryError.
func (e *ShutdownError) IsRegistryError() bool { return true }
