package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/mcp-registry-go/internal/config"
)

// Connector implements config.Connector with the official MCP SDK client.
type Connector struct {
	log    *slog.Logger
	client *mcp.Client
}

// Compile-time verification that Connector implements the Connector interface.
var _ config.Connector = (*Connector)(nil)

// NewConnector creates a connector that identifies itself as name/version
// during the initialize handshake. One connector serves any number of
// sessions.
func NewConnector(log *slog.Logger, name, version string) *Connector {
	return &Connector{
		log:    log.With("component", "connector"),
		client: mcp.NewClient(&mcp.Implementation{Name: name, Version: version}, nil),
	}
}

// Connect runs the initialize handshake over the process's stdin and stdout.
//
// ctx bounds the handshake only; the resulting session lives until Close.
func (c *Connector) Connect(ctx context.Context, proc config.Process) (config.ProtocolClient, error) {
	return c.ConnectTransport(ctx, &mcp.IOTransport{
		Reader: proc.Stdout(),
		Writer: proc.Stdin(),
	})
}

// ConnectTransport runs the initialize handshake over an arbitrary SDK
// transport, such as an in-memory transport.
func (c *Connector) ConnectTransport(ctx context.Context, transport mcp.Transport) (config.ProtocolClient, error) {
	c.log.Debug("Sending initialize request")

	session, err := c.client.Connect(ctx, transport, nil)
	if err != nil {
		c.log.Debug("Initialize failed", "error", err)

		return nil, fmt.Errorf("initialize: %w", err)
	}

	cs := &ClientSession{session: session}

	if info := cs.ServerInfo(); info != nil {
		c.log.Debug("Initialized session", "server_name", info.Name, "server_version", info.Version)
	}

	return cs, nil
}

// ClientSession adapts an SDK client session to config.ProtocolClient.
type ClientSession struct {
	session *mcp.ClientSession

	closeOnce sync.Once
	closeErr  error
}

// Compile-time verification that ClientSession implements ProtocolClient.
var _ config.ProtocolClient = (*ClientSession)(nil)

// ListTools implements config.ProtocolClient.
func (s *ClientSession) ListTools(ctx context.Context, params *mcp.ListToolsParams) (*mcp.ListToolsResult, error) {
	return s.session.ListTools(ctx, params)
}

// CallTool implements config.ProtocolClient.
func (s *ClientSession) CallTool(ctx context.Context, params *mcp.CallToolParams) (*mcp.CallToolResult, error) {
	return s.session.CallTool(ctx, params)
}

// ServerInfo implements config.ProtocolClient.
func (s *ClientSession) ServerInfo() *mcp.Implementation {
	res := s.session.InitializeResult()
	if res == nil {
		return nil
	}

	return res.ServerInfo
}

// Close implements config.ProtocolClient.
func (s *ClientSession) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.session.Close()
	})

	return s.closeErr
}
