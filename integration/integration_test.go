//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	buildOnce sync.Once
	bmiBinary string
	errBuild  error
)

type buildError struct {
	err    error
	output string
}

func (e *buildError) Error() string {
	return fmt.Sprintf("go build: %v\n%s", e.err, e.output)
}

func (e *buildError) Unwrap() error {
	return e.err
}

// bmiServerPath builds cmd/bmi-server once per test run and returns the
// binary path. Tests skip when the go tool is unavailable.
func bmiServerPath(t *testing.T) string {
	t.Helper()

	goTool, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go tool not installed")
	}

	buildOnce.Do(func() {
		var buildDir string

		buildDir, errBuild = os.MkdirTemp("", "mcpreg-integration-*")
		if errBuild != nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		bmiBinary = filepath.Join(buildDir, "bmi-server")

		cmd := exec.CommandContext(ctx, goTool, "build", "-o", bmiBinary, "github.com/wagiedev/mcp-registry-go/cmd/bmi-server")
		if out, err := cmd.CombinedOutput(); err != nil {
			errBuild = &buildError{err: err, output: string(out)}
		}
	})

	require.NoError(t, errBuild, "building bmi-server")

	return bmiBinary
}
