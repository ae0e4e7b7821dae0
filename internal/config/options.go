package config

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultHandshakeTimeout bounds spawn plus protocol initialization.
	DefaultHandshakeTimeout = 30 * time.Second

	// DefaultShutdownTimeout bounds the graceful part of a disconnect before
	// the process is killed.
	DefaultShutdownTimeout = 5 * time.Second

	// DefaultClientName is the client implementation name sent during the handshake.
	DefaultClientName = "mcp-registry-go"

	// DefaultClientVersion is the client implementation version sent during the handshake.
	DefaultClientVersion = "0.1.0"
)

// Options configures a connection registry.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// Launcher spawns server processes.
	// If nil, subprocess.Launcher is used.
	Launcher Launcher

	// Connector performs the MCP handshake.
	// If nil, the go-sdk based mcp.Connector is used.
	Connector Connector

	// HandshakeTimeout bounds spawn plus handshake for Connect.
	// Zero means DefaultHandshakeTimeout; negative disables the bound.
	HandshakeTimeout time.Duration

	// ShutdownTimeout bounds the graceful part of Disconnect.
	// Zero means DefaultShutdownTimeout.
	ShutdownTimeout time.Duration

	// ClientName and ClientVersion identify this client during the handshake.
	ClientName    string
	ClientVersion string

	// Stderr is called with each line a server writes to standard error.
	Stderr func(connectionID, line string)

	// TracerProvider creates the tracer for registry spans.
	// If nil, a no-op provider is used.
	TracerProvider trace.TracerProvider
}

// EffectiveHandshakeTimeout returns the handshake timeout with defaults applied.
func (o *Options) EffectiveHandshakeTimeout() time.Duration {
	if o.HandshakeTimeout == 0 {
		return DefaultHandshakeTimeout
	}

	return o.HandshakeTimeout
}

// EffectiveShutdownTimeout returns the shutdown timeout with defaults applied.
func (o *Options) EffectiveShutdownTimeout() time.Duration {
	if o.ShutdownTimeout <= 0 {
		return DefaultShutdownTimeout
	}

	return o.ShutdownTimeout
}

// ClientIdentity returns the client name and version with defaults applied.
func (o *Options) ClientIdentity() (string, string) {
	name, version := o.ClientName, o.ClientVersion
	if name == "" {
		name = DefaultClientName
	}

	if version == "" {
		version = DefaultClientVersion
	}

	return name, version
}
