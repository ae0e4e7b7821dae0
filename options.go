package mcpregistry

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/wagiedev/mcp-registry-go/internal/config"
)

// Options holds registry configuration. Build it with Option values.
type Options = config.Options

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to a fresh Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for registry output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithLauncher replaces the subprocess launcher.
func WithLauncher(launcher Launcher) Option {
	return func(o *Options) {
		o.Launcher = launcher
	}
}

// WithConnector replaces the MCP client factory that performs the handshake.
func WithConnector(connector Connector) Option {
	return func(o *Options) {
		o.Connector = connector
	}
}

// WithHandshakeTimeout bounds spawning plus MCP initialization.
// Zero keeps the default; a negative value disables the bound.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.HandshakeTimeout = timeout
	}
}

// WithShutdownTimeout bounds how long Disconnect waits for a server to exit
// after closing its stdin before killing it.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.ShutdownTimeout = timeout
	}
}

// WithClientInfo sets the client name and version sent during the handshake.
func WithClientInfo(name, version string) Option {
	return func(o *Options) {
		o.ClientName = name
		o.ClientVersion = version
	}
}

// WithStderr sets a callback receiving each stderr line of every server,
// tagged with its connection id.
func WithStderr(handler func(connectionID, line string)) Option {
	return func(o *Options) {
		o.Stderr = handler
	}
}

// WithTracerProvider enables OpenTelemetry spans for registry operations.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Options) {
		o.TracerProvider = tp
	}
}
