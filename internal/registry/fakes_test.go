package registry

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	mcpgo "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/mcp-registry-go/internal/config"
	"github.com/wagiedev/mcp-registry-go/internal/mcp"
)

func nopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// stubProcess is a config.Process with no real I/O.
type stubProcess struct {
	shutdownErr  error
	shutdownGate chan struct{} // if set, Shutdown blocks until closed

	shutdowns atomic.Int32
	done      chan struct{}
	doneOnce  sync.Once
}

func newStubProcess() *stubProcess {
	return &stubProcess{done: make(chan struct{})}
}

func (p *stubProcess) Stdout() io.ReadCloser { return io.NopCloser(strings.NewReader("")) }
func (p *stubProcess) Stdin() io.WriteCloser { return nopWriteCloser{io.Discard} }
func (p *stubProcess) PID() int              { return 4242 }
func (p *stubProcess) Stderr() string        { return "stub stderr" }
func (p *stubProcess) Done() <-chan struct{} { return p.done }

func (p *stubProcess) Shutdown(ctx context.Context) error {
	p.shutdowns.Add(1)

	if p.shutdownGate != nil {
		select {
		case <-p.shutdownGate:
		case <-ctx.Done():
		}
	}

	p.doneOnce.Do(func() { close(p.done) })

	return p.shutdownErr
}

// stubLauncher records launches and hands out stubProcesses.
type stubLauncher struct {
	err          error
	shutdownErr  error
	shutdownGate chan struct{}

	mu       sync.Mutex
	specs    []config.LaunchSpec
	launched []*stubProcess
}

func (l *stubLauncher) Launch(_ context.Context, spec config.LaunchSpec) (config.Process, error) {
	if l.err != nil {
		return nil, l.err
	}

	p := newStubProcess()
	p.shutdownErr = l.shutdownErr
	p.shutdownGate = l.shutdownGate

	l.mu.Lock()
	defer l.mu.Unlock()

	l.specs = append(l.specs, spec)
	l.launched = append(l.launched, p)

	return p, nil
}

func (l *stubLauncher) launchCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.launched)
}

func (l *stubLauncher) process(i int) *stubProcess {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.launched[i]
}

// stubClient is a config.ProtocolClient serving canned tool pages.
type stubClient struct {
	pages   [][]*mcpgo.Tool
	listErr error

	// endlessCursor makes every page point back at the first one.
	endlessCursor bool
	listCalls     atomic.Int32
	callErr error
	callFn  func(ctx context.Context, params *mcpgo.CallToolParams) (*mcpgo.CallToolResult, error)

	mu       sync.Mutex
	calls    []*mcpgo.CallToolParams
	closed   atomic.Bool
	closeErr error
}

func (c *stubClient) ListTools(_ context.Context, params *mcpgo.ListToolsParams) (*mcpgo.ListToolsResult, error) {
	c.listCalls.Add(1)

	if c.listErr != nil {
		return nil, c.listErr
	}

	if c.endlessCursor {
		return &mcpgo.ListToolsResult{Tools: []*mcpgo.Tool{{Name: "again"}}, NextCursor: "0"}, nil
	}

	page := 0
	if params != nil && params.Cursor != "" {
		page, _ = strconv.Atoi(params.Cursor)
	}

	if page >= len(c.pages) {
		return &mcpgo.ListToolsResult{}, nil
	}

	res := &mcpgo.ListToolsResult{Tools: c.pages[page]}
	if page+1 < len(c.pages) {
		res.NextCursor = strconv.Itoa(page + 1)
	}

	return res, nil
}

func (c *stubClient) CallTool(ctx context.Context, params *mcpgo.CallToolParams) (*mcpgo.CallToolResult, error) {
	c.mu.Lock()
	c.calls = append(c.calls, params)
	c.mu.Unlock()

	if c.callFn != nil {
		return c.callFn(ctx, params)
	}

	if c.callErr != nil {
		return nil, c.callErr
	}

	if params.Name != "echo" {
		return mcp.ErrorResult("Tool not found: " + params.Name), nil
	}

	return mcp.TextResult("echoed"), nil
}

func (c *stubClient) ServerInfo() *mcpgo.Implementation {
	return &mcpgo.Implementation{Name: "stub-server", Version: "9.9.9"}
}

func (c *stubClient) Close() error {
	c.closed.Store(true)

	return c.closeErr
}

func (c *stubClient) recordedCalls() []*mcpgo.CallToolParams {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]*mcpgo.CallToolParams(nil), c.calls...)
}

// stubConnector hands out stubClients built by newClient.
type stubConnector struct {
	err       error
	block     bool // wait for ctx to expire before failing
	newClient func() *stubClient

	mu      sync.Mutex
	clients []*stubClient
}

func (c *stubConnector) Connect(ctx context.Context, _ config.Process) (config.ProtocolClient, error) {
	if c.block {
		<-ctx.Done()

		return nil, ctx.Err()
	}

	if c.err != nil {
		return nil, c.err
	}

	client := &stubClient{pages: [][]*mcpgo.Tool{{{Name: "echo"}}}}
	if c.newClient != nil {
		client = c.newClient()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.clients = append(c.clients, client)

	return client, nil
}

func (c *stubConnector) client(i int) *stubClient {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.clients[i]
}

// newStubRegistry builds a registry over stub collaborators.
func newStubRegistry(t *testing.T, launcher *stubLauncher, connector *stubConnector) *Registry {
	t.Helper()

	return New(&config.Options{
		Logger:    nopLogger(),
		Launcher:  launcher,
		Connector: connector,
	})
}

// pipeProcess runs a ToolServer behind in-process pipes, standing in for a
// child process serving MCP over its stdio.
type pipeProcess struct {
	stdout *io.PipeReader
	stdin  *io.PipeWriter
	cancel context.CancelFunc
	done   chan struct{}
}

func (p *pipeProcess) Stdout() io.ReadCloser { return p.stdout }
func (p *pipeProcess) Stdin() io.WriteCloser { return p.stdin }
func (p *pipeProcess) PID() int              { return 0 }
func (p *pipeProcess) Stderr() string        { return "" }
func (p *pipeProcess) Done() <-chan struct{} { return p.done }

func (p *pipeProcess) Shutdown(ctx context.Context) error {
	_ = p.stdin.Close()

	select {
	case <-p.done:
	case <-ctx.Done():
		p.cancel()
		<-p.done
	}

	_ = p.stdout.Close()

	return nil
}

// serverLauncher launches a fresh in-process ToolServer per Launch.
type serverLauncher struct {
	newServer func() *mcp.ToolServer
	launches  atomic.Int32
}

func (l *serverLauncher) Launch(_ context.Context, _ config.LaunchSpec) (config.Process, error) {
	l.launches.Add(1)

	toServerR, toServerW := io.Pipe()
	toClientR, toClientW := io.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	p := &pipeProcess{stdout: toClientR, stdin: toServerW, cancel: cancel, done: make(chan struct{})}

	server := l.newServer()

	go func() {
		defer close(p.done)
		defer toClientW.Close()

		_ = server.Run(ctx, &mcpgo.IOTransport{Reader: toServerR, Writer: toClientW})
	}()

	return p, nil
}

// newBMIRegistry builds a registry whose launcher serves the BMI tool in
// process, with the real MCP SDK handshake in between.
func newBMIRegistry(t *testing.T) (*Registry, *serverLauncher) {
	t.Helper()

	launcher := &serverLauncher{newServer: func() *mcp.ToolServer { return mcp.NewBMIServer("test") }}
	reg := New(&config.Options{
		Logger:   nopLogger(),
		Launcher: launcher,
	})

	t.Cleanup(func() { _ = reg.Close(context.Background()) })

	return reg, launcher
}
