package registry

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	mcpgo "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/mcp-registry-go/internal/config"
	"github.com/wagiedev/mcp-registry-go/internal/errors"
	"github.com/wagiedev/mcp-registry-go/internal/mcp"
	"github.com/wagiedev/mcp-registry-go/internal/subprocess"
	"github.com/wagiedev/mcp-registry-go/internal/tracing"
)

const (
	// maxToolPages bounds tools/list pagination against a server that never
	// stops returning cursors.
	maxToolPages = 1000

	// maxParallelConnects bounds concurrent spawns in ConnectServers.
	maxParallelConnects = 8
)

// Registry tracks named MCP client sessions. It is safe for concurrent use.
type Registry struct {
	log              *slog.Logger
	launcher         config.Launcher
	connector        config.Connector
	tracer           trace.Tracer
	handshakeTimeout time.Duration
	shutdownTimeout  time.Duration
	stderr           func(connectionID, line string)

	mu      sync.Mutex // Protects entries and closed
	entries map[string]*entry
	closed  bool
}

// New creates an empty registry.
//
// Nil collaborators in options are replaced by the subprocess launcher and
// the MCP SDK connector.
func New(options *config.Options) *Registry {
	if options == nil {
		options = &config.Options{}
	}

	log := options.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	log = log.With("component", "registry")

	launcher := options.Launcher
	if launcher == nil {
		launcher = subprocess.NewLauncher(log)
	}

	connector := options.Connector
	if connector == nil {
		name, version := options.ClientIdentity()
		connector = mcp.NewConnector(log, name, version)
	}

	tp := options.TracerProvider
	if tp == nil {
		tp = noop.NewTracerProvider()
	}

	return &Registry{
		log:              log,
		launcher:         launcher,
		connector:        connector,
		tracer:           tp.Tracer(tracing.InstrumentationName),
		handshakeTimeout: options.EffectiveHandshakeTimeout(),
		shutdownTimeout:  options.EffectiveShutdownTimeout(),
		stderr:           options.Stderr,
		entries:          make(map[string]*entry),
	}
}

// Connect spawns the server described by spec and performs the MCP
// handshake, registering the session under id.
//
// Returns AlreadyConnectedError if id is connecting, active or closing,
// LaunchError if the process cannot be spawned, and HandshakeError if
// initialization fails. On failure no session is registered and any
// spawned process has been shut down.
func (r *Registry) Connect(ctx context.Context, id string, spec config.LaunchSpec) (err error) {
	ctx, span := r.startSpan(ctx, "registry.connect", id, attribute.String("command", spec.Command))
	defer func() { endSpan(span, err) }()

	if id == "" {
		return errors.ErrInvalidConnectionID
	}

	if err := r.reserve(id); err != nil {
		r.log.Error("Connect rejected", "connection_id", id, "error", err)

		return err
	}

	r.log.Info("Connecting to MCP server", "connection_id", id, "command", spec.Command, "args", spec.Args)

	sess, err := r.open(ctx, id, spec)
	if err != nil {
		r.release(id)
		r.log.Error("Connect failed", "connection_id", id, "error", err)

		return err
	}

	if !r.publish(id, sess) {
		// Close ran while we were handshaking.
		r.release(id)
		r.closeSession(context.Background(), sess)

		return errors.ErrRegistryClosed
	}

	span.SetAttributes(attribute.String("session_id", sess.sessionID))
	r.log.Info("Connected to MCP server", "connection_id", id, "session_id", sess.sessionID, "pid", sess.proc.PID())

	return nil
}

// reserve claims id for an in-flight connect.
func (r *Registry) reserve(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errors.ErrRegistryClosed
	}

	if _, exists := r.entries[id]; exists {
		return &errors.AlreadyConnectedError{ID: id}
	}

	r.entries[id] = &entry{state: stateConnecting}

	return nil
}

// publish activates a reserved id. It reports false if the registry was
// closed in the meantime; the reservation is left for the caller to release.
func (r *Registry) publish(id string, sess *session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}

	r.entries[id] = &entry{state: stateActive, session: sess}

	return true
}

// release drops the entry for id regardless of its state.
func (r *Registry) release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, id)
}

// open launches the process and runs the handshake, both bounded by the
// handshake timeout.
func (r *Registry) open(ctx context.Context, id string, spec config.LaunchSpec) (*session, error) {
	if r.handshakeTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, r.handshakeTimeout)
		defer cancel()
	}

	if spec.Stderr == nil && r.stderr != nil {
		spec.Stderr = func(line string) { r.stderr(id, line) }
	}

	proc, err := r.launcher.Launch(ctx, spec)
	if err != nil {
		return nil, &errors.LaunchError{ID: id, Command: spec.Command, Err: err}
	}

	client, err := r.connector.Connect(ctx, proc)
	if err != nil {
		if shutdownErr := r.shutdownProcess(context.Background(), proc); shutdownErr != nil {
			r.log.Warn("Failed to stop server after handshake failure",
				"connection_id", id, "error", shutdownErr)
		}

		return nil, &errors.HandshakeError{ID: id, Stderr: proc.Stderr(), Err: err}
	}

	return &session{
		id:          id,
		sessionID:   ulid.Make().String(),
		spec:        spec,
		proc:        proc,
		client:      client,
		connectedAt: time.Now(),
	}, nil
}

// Disconnect shuts down the session registered under id.
//
// The id stays reserved while the server shuts down and is released
// afterwards even if shutdown fails, in which case the process has been
// killed and a ShutdownError is returned. Shutdown is bounded by the
// shutdown timeout and by ctx.
//
// Returns NotConnectedError if id has no active session.
func (r *Registry) Disconnect(ctx context.Context, id string) (err error) {
	ctx, span := r.startSpan(ctx, "registry.disconnect", id)
	defer func() { endSpan(span, err) }()

	sess, err := r.beginClose(id)
	if err != nil {
		r.log.Error("Disconnect rejected", "connection_id", id, "error", err)

		return err
	}

	defer r.release(id)

	r.log.Info("Disconnecting MCP server", "connection_id", id, "session_id", sess.sessionID)

	if err := r.closeSession(ctx, sess); err != nil {
		return &errors.ShutdownError{ID: id, Err: err}
	}

	r.log.Info("Disconnected MCP server", "connection_id", id)

	return nil
}

// beginClose moves an active id to closing and returns its session.
func (r *Registry) beginClose(id string) (*session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok || e.state != stateActive {
		return nil, &errors.NotConnectedError{ID: id}
	}

	e.state = stateClosing

	return e.session, nil
}

// closeSession ends the protocol session and then the process.
// Only the process outcome is reported: a server that has already gone
// away makes the session close fail without leaking anything.
func (r *Registry) closeSession(ctx context.Context, sess *session) error {
	if err := sess.client.Close(); err != nil {
		r.log.Debug("Closing protocol session failed", "connection_id", sess.id, "error", err)
	}

	return r.shutdownProcess(ctx, sess.proc)
}

func (r *Registry) shutdownProcess(ctx context.Context, proc config.Process) error {
	ctx, cancel := context.WithTimeout(ctx, r.shutdownTimeout)
	defer cancel()

	return proc.Shutdown(ctx)
}

// lookup returns the session for an active id. The registry lock is
// released before the caller performs any I/O on it.
func (r *Registry) lookup(id string) (*session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok || e.state != stateActive {
		return nil, &errors.NotConnectedError{ID: id}
	}

	return e.session, nil
}

// ListTools returns the tools currently advertised by the server registered
// under id, in the order the server returns them. Paginated listings are
// followed to the end.
//
// Returns NotConnectedError if id has no active session and ProtocolError
// if the request fails or is rejected.
func (r *Registry) ListTools(ctx context.Context, id string) (tools []*mcpgo.Tool, err error) {
	ctx, span := r.startSpan(ctx, "registry.list_tools", id)
	defer func() { endSpan(span, err) }()

	sess, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	tools = []*mcpgo.Tool{}
	params := &mcpgo.ListToolsParams{}

	for page := 0; ; page++ {
		if page == maxToolPages {
			r.log.Error("List tools failed", "connection_id", id, "pages", page, "error", errors.ErrCursorLoop)

			return nil, &errors.ProtocolError{ID: id, Op: "list_tools", Err: errors.ErrCursorLoop}
		}

		res, err := sess.client.ListTools(ctx, params)
		if err != nil {
			r.log.Error("List tools failed", "connection_id", id, "error", err)

			return nil, &errors.ProtocolError{ID: id, Op: "list_tools", Err: err}
		}

		tools = append(tools, res.Tools...)

		if res.NextCursor == "" {
			break
		}

		params = &mcpgo.ListToolsParams{Cursor: res.NextCursor}
	}

	span.SetAttributes(attribute.Int("tool_count", len(tools)))
	r.log.Debug("Listed tools", "connection_id", id, "tool_count", len(tools))

	return tools, nil
}

// CallTool invokes a tool on the server registered under id and returns
// its result unchanged. args may be nil.
//
// A result with IsError set is a successful call: the tool itself failed.
// Returns NotConnectedError if id has no active session and ProtocolError
// if the request fails or is rejected.
func (r *Registry) CallTool(
	ctx context.Context,
	id string,
	name string,
	args map[string]any,
) (result *mcpgo.CallToolResult, err error) {
	ctx, span := r.startSpan(ctx, "registry.call_tool", id, attribute.String("tool", name))
	defer func() { endSpan(span, err) }()

	sess, err := r.lookup(id)
	if err != nil {
		r.log.Error("Call tool rejected", "connection_id", id, "tool", name, "error", err)

		return nil, err
	}

	r.log.Info("Calling tool", "connection_id", id, "tool", name)
	r.log.Debug("Tool arguments", "connection_id", id, "tool", name, "args", args)

	params := &mcpgo.CallToolParams{Name: name}
	if args != nil {
		params.Arguments = args
	}

	result, err = sess.client.CallTool(ctx, params)
	if err != nil {
		r.log.Error("Call tool failed", "connection_id", id, "tool", name, "error", err)

		return nil, &errors.ProtocolError{ID: id, Op: "call_tool", Err: err}
	}

	span.SetAttributes(attribute.Bool("tool_error", result.IsError))

	if result.IsError {
		r.log.Info("Tool reported an error", "connection_id", id, "tool", name)
	} else {
		r.log.Debug("Tool result", "connection_id", id, "tool", name, "content_blocks", len(result.Content))
	}

	return result, nil
}

// Connections returns the ids of active sessions in sorted order.
func (r *Registry) Connections() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.entries))

	for _, id := range slices.Sorted(maps.Keys(r.entries)) {
		if r.entries[id].state == stateActive {
			ids = append(ids, id)
		}
	}

	return ids
}

// Info returns a snapshot of the session registered under id.
func (r *Registry) Info(id string) (SessionInfo, error) {
	sess, err := r.lookup(id)
	if err != nil {
		return SessionInfo{}, err
	}

	return sess.info(), nil
}

// ConnectServers connects every configured server concurrently, using the
// map key as connection id. Servers that connect stay connected even when
// others fail; the failures are joined into the returned error.
func (r *Registry) ConnectServers(ctx context.Context, servers map[string]mcp.StdioServerConfig) error {
	names, errs := r.connectAll(ctx, servers)

	joined := make([]error, 0, len(names))
	for _, name := range names {
		joined = append(joined, errs[name])
	}

	return stderrors.Join(joined...)
}

// connectAll connects servers concurrently and returns the sorted names with
// the per-name outcome.
func (r *Registry) connectAll(
	ctx context.Context,
	servers map[string]mcp.StdioServerConfig,
) ([]string, map[string]error) {
	names := slices.Sorted(maps.Keys(servers))
	errs := make([]error, len(names))

	var g errgroup.Group

	g.SetLimit(maxParallelConnects)

	for i, name := range names {
		cfg := servers[name]

		g.Go(func() error {
			if err := cfg.Validate(); err != nil {
				errs[i] = fmt.Errorf("server %q: %w", name, err)

				return nil
			}

			errs[i] = r.Connect(ctx, name, cfg.LaunchSpec())

			return nil
		})
	}

	_ = g.Wait()

	outcome := make(map[string]error, len(names))
	for i, name := range names {
		outcome[name] = errs[i]
	}

	return names, outcome
}

// Discover connects every configured server and lists its tools, reporting
// the outcome per server in name order. Servers already connected under
// their name are listed without reconnecting. Connected servers stay
// connected.
func (r *Registry) Discover(ctx context.Context, servers map[string]mcp.StdioServerConfig) mcp.Status {
	names, errs := r.connectAll(ctx, servers)

	status := mcp.Status{MCPServers: make([]mcp.ServerStatus, 0, len(names))}

	for _, name := range names {
		server := mcp.ServerStatus{Name: name, Status: mcp.StatusFailed}

		err := errs[name]
		if err == nil || stderrors.Is(err, errors.ErrAlreadyConnected) {
			var tools []*mcpgo.Tool

			tools, err = r.ListTools(ctx, name)
			if err == nil {
				server.Status = mcp.StatusConnected
				server.Tools = tools
			}
		}

		if err != nil {
			server.Error = err.Error()
		}

		status.MCPServers = append(status.MCPServers, server)
	}

	r.log.Info("Discovered MCP servers", "servers", len(names), "failed", len(status.Failed()))

	return status
}

// Close disconnects every active session concurrently and rejects further
// connects with ErrRegistryClosed. It's safe to call Close multiple times.
//
// The registry never tears sessions down on its own; Close is the explicit
// way to end all of them.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()

	if r.closed {
		r.mu.Unlock()

		return nil
	}

	r.closed = true

	var ids []string

	for id, e := range r.entries {
		if e.state == stateActive {
			ids = append(ids, id)
		}
	}

	r.mu.Unlock()

	r.log.Info("Closing registry", "sessions", len(ids))

	errs := make([]error, len(ids))

	var g errgroup.Group

	for i, id := range ids {
		g.Go(func() error {
			err := r.Disconnect(ctx, id)
			if err != nil && !stderrors.Is(err, errors.ErrNotConnected) {
				errs[i] = err
			}

			return nil
		})
	}

	_ = g.Wait()

	r.log.Info("Registry closed")

	return stderrors.Join(errs...)
}

func (r *Registry) startSpan(
	ctx context.Context,
	name string,
	id string,
	attrs ...attribute.KeyValue,
) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("connection_id", id))

	return r.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.End()
}
