package subprocess

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"slices"

	"github.com/wagiedev/mcp-registry-go/internal/config"
	"github.com/wagiedev/mcp-registry-go/internal/errors"
)

// Launcher implements config.Launcher by spawning local child processes.
type Launcher struct {
	log *slog.Logger
}

// Compile-time verification that Launcher implements the Launcher interface.
var _ config.Launcher = (*Launcher)(nil)

// NewLauncher creates a launcher that logs through log.
func NewLauncher(log *slog.Logger) *Launcher {
	return &Launcher{log: log.With("component", "launcher")}
}

// Launch resolves spec.Command and starts it with piped stdio.
//
// The process is not bound to ctx: it keeps running until Shutdown is
// called. ctx is only checked before spawning.
//
// Returns CommandNotFoundError if the executable cannot be resolved.
func (l *Launcher) Launch(ctx context.Context, spec config.LaunchSpec) (config.Process, error) {
	if spec.Command == "" {
		return nil, errors.ErrInvalidCommand
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := exec.LookPath(spec.Command)
	if err != nil {
		l.log.Error("Failed to resolve command", "command", spec.Command, "error", err)

		return nil, &errors.CommandNotFoundError{Command: spec.Command, Err: err}
	}

	l.log.Debug("Resolved command", "command", spec.Command, "path", path)

	//nolint:gosec // G204: launching a caller-configured server is the purpose of this package
	cmd := exec.Command(path, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = buildEnvironment(spec.Env)

	proc, err := start(l.log, cmd, spec.Stderr)
	if err != nil {
		l.log.Error("Failed to start process", "command", spec.Command, "error", err)

		return nil, err
	}

	l.log.Info("Server process started", "command", spec.Command, "pid", proc.PID())

	return proc, nil
}

// buildEnvironment layers extra variables over the parent environment.
// Keys are applied in sorted order so the result is deterministic.
func buildEnvironment(extra map[string]string) []string {
	env := os.Environ()
	if len(extra) == 0 {
		return env
	}

	for _, key := range slices.Sorted(maps.Keys(extra)) {
		env = append(env, fmt.Sprintf("%s=%s", key, extra[key]))
	}

	return env
}
