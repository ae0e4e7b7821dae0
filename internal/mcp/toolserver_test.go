package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/wagiedev/mcp-registry-go/internal/config"
)

func nopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// connectInMemory serves server over in-memory transports and returns an
// initialized client session.
func connectInMemory(t *testing.T, server *ToolServer) config.ProtocolClient {
	t.Helper()

	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ss, err := server.Connect(ctx, serverTransport)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	cs, err := NewConnector(nopLogger(), "test-client", "1.0.0").ConnectTransport(ctx, clientTransport)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })

	return cs
}

func TestToolServerMetadata(t *testing.T) {
	server := NewToolServer("demo", "1.2.3")

	require.Equal(t, "demo", server.Name())
	require.Equal(t, "1.2.3", server.Version())
	require.Empty(t, server.Tools())
}

func TestToolServer_ListAndCallOverSession(t *testing.T) {
	server := NewToolServer("demo", "1.0.0")
	server.AddTool(
		NewTool("echo", "echoes text", SimpleSchema(map[string]string{"text": "string"})),
		func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, err := ParseArguments(req)
			if err != nil {
				return nil, err
			}

			text, _ := args["text"].(string)

			return TextResult("echo: " + text), nil
		},
	)

	session := connectInMemory(t, server)
	ctx := context.Background()

	listed, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, listed.Tools, 1)
	require.Equal(t, "echo", listed.Tools[0].Name)
	require.Equal(t, "echoes text", listed.Tools[0].Description)
	require.NotNil(t, listed.Tools[0].InputSchema)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "echo",
		Arguments: map[string]any{"text": "hello"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Equal(t, "echo: hello", ResultText(result))

	info := session.ServerInfo()
	require.NotNil(t, info)
	require.Equal(t, "demo", info.Name)
	require.Equal(t, "1.0.0", info.Version)
}

func TestToolServer_UnknownToolIsErrorResult(t *testing.T) {
	session := connectInMemory(t, NewBMIServer("1.0.0"))

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "xxx",
		Arguments: map[string]any{"height": 1.75, "weight": 70},
	})

	require.NoError(t, err)
	require.True(t, result.IsError)
	require.Equal(t, "Tool not found: xxx", ResultText(result))
}

func TestToolServer_HandlerErrorIsErrorResult(t *testing.T) {
	server := NewToolServer("demo", "1.0.0")
	server.AddTool(
		NewTool("fails", "always fails", nil),
		func(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return nil, errors.New("boom")
		},
	)

	session := connectInMemory(t, server)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "fails"})

	require.NoError(t, err)
	require.True(t, result.IsError)
	require.Equal(t, "Tool execution failed: boom", ResultText(result))
}

func TestBMIServer(t *testing.T) {
	session := connectInMemory(t, NewBMIServer("1.0.0"))
	ctx := context.Background()

	listed, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, listed.Tools, 1)
	require.Equal(t, BMIToolName, listed.Tools[0].Name)

	tests := []struct {
		name      string
		args      map[string]any
		wantText  string
		wantError bool
	}{
		{name: "reference values", args: map[string]any{"height": 1.75, "weight": 70}, wantText: "22.86"},
		{name: "integer weight", args: map[string]any{"height": 2, "weight": 80}, wantText: "20.00"},
		{name: "zero height", args: map[string]any{"height": 0, "weight": 80}, wantText: "height must be positive", wantError: true},
		{name: "missing weight", args: map[string]any{"height": 1.8}, wantText: "weight must be a number", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: BMIToolName, Arguments: tt.args})

			require.NoError(t, err)
			require.Equal(t, tt.wantError, result.IsError)
			require.Equal(t, tt.wantText, ResultText(result))
		})
	}
}

func TestSimpleSchema(t *testing.T) {
	schema := SimpleSchema(map[string]string{
		"name":   "string",
		"active": "bool",
		"scores": "[]float64",
	})

	require.Equal(t, "object", schema.Type)
	require.Equal(t, []string{"active", "name", "scores"}, schema.Required)
	require.Equal(t, "string", schema.Properties["name"].Type)
	require.Equal(t, "boolean", schema.Properties["active"].Type)
	require.Equal(t, "array", schema.Properties["scores"].Type)
	require.Equal(t, "number", schema.Properties["scores"].Items.Type)
}

func TestGoTypeToJSONSchema(t *testing.T) {
	tests := []struct {
		goType string
		want   string
	}{
		{goType: "string", want: "string"},
		{goType: "int64", want: "integer"},
		{goType: "float32", want: "number"},
		{goType: "boolean", want: "boolean"},
		{goType: "map[string]any", want: "object"},
		{goType: "[]string", want: "array"},
		{goType: "unknown", want: "string"},
	}

	for _, tt := range tests {
		t.Run(tt.goType, func(t *testing.T) {
			require.Equal(t, tt.want, goTypeToJSONSchema(tt.goType).Type)
		})
	}
}

func TestParseArguments(t *testing.T) {
	t.Run("nil request yields empty map", func(t *testing.T) {
		args, err := ParseArguments(nil)

		require.NoError(t, err)
		require.Empty(t, args)
	})

	t.Run("null arguments yield empty map", func(t *testing.T) {
		args, err := ParseArguments(&mcp.CallToolRequest{
			Params: &mcp.CallToolParamsRaw{Name: "x", Arguments: []byte("null")},
		})

		require.NoError(t, err)
		require.NotNil(t, args)
		require.Empty(t, args)
	})

	t.Run("invalid JSON is an error", func(t *testing.T) {
		_, err := ParseArguments(&mcp.CallToolRequest{
			Params: &mcp.CallToolParamsRaw{Name: "x", Arguments: []byte("{")},
		})

		require.ErrorContains(t, err, "failed to unmarshal arguments")
	})
}

func TestResultText(t *testing.T) {
	require.Empty(t, ResultText(nil))
	require.Equal(t, "ab", ResultText(&mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "a"},
			&mcp.ImageContent{Data: []byte("img"), MIMEType: "image/png"},
			&mcp.TextContent{Text: "b"},
		},
	}))
}
