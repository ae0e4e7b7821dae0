package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpregistry "github.com/wagiedev/mcp-registry-go"
)

// serveBMIEnv makes the test binary act as a stdio BMI server.
const serveBMIEnv = "MCPREG_TEST_SERVE_BMI"

func TestMain(m *testing.M) {
	if os.Getenv(serveBMIEnv) == "1" {
		if err := mcpregistry.NewBMIServer("test").Run(context.Background(), &mcp.StdioTransport{}); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		os.Exit(0)
	}

	os.Exit(m.Run())
}

// writeBMIConfig writes a config whose "bmi" server is this test binary.
func writeBMIConfig(t *testing.T, extra string) string {
	t.Helper()

	exe, err := os.Executable()
	require.NoError(t, err)

	cfg := map[string]any{
		"mcpServers": map[string]any{
			"bmi": map[string]any{
				"command": exe,
				"env":     map[string]string{serveBMIEnv: "1"},
			},
		},
	}

	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "mcpreg.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	if extra != "" {
		yamlPath := filepath.Join(t.TempDir(), "mcpreg.yaml")
		content := fmt.Sprintf("mcpServers:\n  bmi:\n    command: %q\n    env:\n      %s: \"1\"\n%s", exe, serveBMIEnv, extra)
		require.NoError(t, os.WriteFile(yamlPath, []byte(content), 0o600))

		return yamlPath
	}

	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	rootCmd := newRootCmd(&stdout, &stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())

	return stdout.String(), stderr.String(), err
}

func TestServersCommand(t *testing.T) {
	path := writeBMIConfig(t, "")

	stdout, _, err := run(t, "--config", path, "servers")
	require.NoError(t, err)
	assert.Contains(t, stdout, "bmi\t")
}

func TestToolsCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns a subprocess")
	}

	path := writeBMIConfig(t, "")

	stdout, stderr, err := run(t, "--config", path, "tools", "bmi")
	require.NoError(t, err, stderr)

	var tools []*mcpregistry.Tool
	require.NoError(t, json.Unmarshal([]byte(stdout), &tools))
	require.Len(t, tools, 1)
	assert.Equal(t, "calculate_bmi", tools[0].Name)
}

func TestCallCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns a subprocess")
	}

	path := writeBMIConfig(t, "")

	t.Run("success", func(t *testing.T) {
		stdout, stderr, err := run(t, "--config", path,
			"call", "bmi", "calculate_bmi", "--args", `{"height": 1.75, "weight": 70}`)
		require.NoError(t, err, stderr)
		assert.Equal(t, "22.86\n", stdout)
	})

	t.Run("unknown tool", func(t *testing.T) {
		_, _, err := run(t, "--config", path, "call", "bmi", "xxx")
		require.ErrorIs(t, err, errToolFailed)
	})

	t.Run("bad arguments", func(t *testing.T) {
		_, _, err := run(t, "--config", path, "call", "bmi", "calculate_bmi", "--args", "{")
		require.ErrorContains(t, err, "parsing --args")
	})

	t.Run("unknown server", func(t *testing.T) {
		_, _, err := run(t, "--config", path, "call", "nope", "calculate_bmi")
		require.ErrorContains(t, err, `no server "nope"`)
	})
}

func TestDiscoverCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns a subprocess")
	}

	path := writeBMIConfig(t, "  broken:\n    command: definitely-not-an-mcp-server-binary\n")

	stdout, stderr, err := run(t, "--config", path, "discover")
	require.NoError(t, err)

	var status mcpregistry.DiscoveryStatus
	require.NoError(t, json.Unmarshal([]byte(stdout), &status))
	require.Len(t, status.MCPServers, 2)

	bmi, broken := status.MCPServers[0], status.MCPServers[1]

	assert.Equal(t, "bmi", bmi.Name)
	assert.Equal(t, mcpregistry.StatusConnected, bmi.Status)
	require.Len(t, bmi.Tools, 1)
	assert.Equal(t, "calculate_bmi", bmi.Tools[0].Name)

	assert.Equal(t, "broken", broken.Name)
	assert.Equal(t, mcpregistry.StatusFailed, broken.Status)
	assert.NotEmpty(t, broken.Error)
	assert.Contains(t, stderr, "broken")
}

func TestDiscoverCommand_AllFail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcpreg.yaml")
	require.NoError(t, os.WriteFile(path,
		[]byte("mcpServers:\n  broken:\n    command: definitely-not-an-mcp-server-binary\n"), 0o600))

	_, _, err := run(t, "--config", path, "discover")
	require.ErrorIs(t, err, errNoServerReachable)
}

func TestTraceFlag(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns a subprocess")
	}

	path := writeBMIConfig(t, "")

	_, stderr, err := run(t, "--config", path, "--trace", "tools", "bmi")
	require.NoError(t, err)
	assert.Contains(t, stderr, "registry.connect")
	assert.Contains(t, stderr, "registry.list_tools")
}

func TestMissingConfigFile(t *testing.T) {
	_, _, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "servers")
	require.ErrorContains(t, err, "reading config")
}
