package subprocess

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/wagiedev/mcp-registry-go/internal/config"
	"github.com/wagiedev/mcp-registry-go/internal/errors"
)

// maxStderrBufferSize is the maximum size for the stderr buffer.
// Stderr reading continues indefinitely (callback receives all lines),
// but the buffer stops growing after this limit to prevent unbounded memory usage.
const maxStderrBufferSize = 1024 * 1024 // 1MB

// maxStderrLineSize caps a single stderr line. Output past a longer line is
// still drained so the server never blocks on a full pipe.
const maxStderrLineSize = 1024 * 1024 // 1MB

// Process is a running server process.
type Process struct {
	log    *slog.Logger
	cmd    *exec.Cmd
	stdin  *os.File
	stdout *os.File
	stderr *os.File

	stderrCallback func(string)
	stderrMu       sync.Mutex
	stderrBuffer   strings.Builder

	done    chan struct{}
	waitErr error

	shutdownOnce sync.Once
	shutdownErr  error
}

// Compile-time verification that Process implements the Process interface.
var _ config.Process = (*Process)(nil)

// start spawns cmd with its stdio wired to OS pipes owned by the returned
// Process. With *os.File ends, cmd.Wait neither closes the stream the
// protocol layer is still reading nor blocks on a grandchild that inherited
// stderr.
func start(log *slog.Logger, cmd *exec.Cmd, stderrCallback func(string)) (*Process, error) {
	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		closeAll(stdinR, stdinW)

		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		closeAll(stdinR, stdinW, stdoutR, stdoutW)

		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	cmd.Stdin = stdinR
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	if err := cmd.Start(); err != nil {
		closeAll(stdinR, stdinW, stdoutR, stdoutW, stderrR, stderrW)

		return nil, fmt.Errorf("start process: %w", err)
	}

	// The child holds its own copies now.
	closeAll(stdinR, stdoutW, stderrW)

	p := &Process{
		log:            log.With("pid", cmd.Process.Pid),
		cmd:            cmd,
		stdin:          stdinW,
		stdout:         stdoutR,
		stderr:         stderrR,
		stderrCallback: stderrCallback,
		done:           make(chan struct{}),
	}

	go p.readStderr(stderrR)

	go func() {
		p.waitErr = cmd.Wait()
		p.log.Debug("Server process exited", "error", p.waitErr)

		close(p.done)
	}()

	return p, nil
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

// readStderr buffers stderr (capped at maxStderrBufferSize) and forwards
// each line to the callback. It returns when every writer has closed stderr
// or Shutdown closes the read end.
func (p *Process) readStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStderrLineSize)

	for scanner.Scan() {
		line := scanner.Text()

		p.stderrMu.Lock()

		if p.stderrBuffer.Len() < maxStderrBufferSize {
			if p.stderrBuffer.Len() > 0 {
				p.stderrBuffer.WriteString("\n")
			}

			p.stderrBuffer.WriteString(line)
		}

		p.stderrMu.Unlock()

		if p.stderrCallback != nil {
			p.stderrCallback(line)
		}
	}

	// Don't fail - process may have exited
	if err := scanner.Err(); err != nil {
		p.log.Debug("Stderr scanner error, discarding remaining output", "error", err)

		_, _ = io.Copy(io.Discard, r)
	}
}

// Stdout implements config.Process.
func (p *Process) Stdout() io.ReadCloser { return p.stdout }

// Stdin implements config.Process.
func (p *Process) Stdin() io.WriteCloser { return p.stdin }

// PID implements config.Process.
func (p *Process) PID() int { return p.cmd.Process.Pid }

// Done implements config.Process.
func (p *Process) Done() <-chan struct{} { return p.done }

// Stderr implements config.Process.
func (p *Process) Stderr() string {
	p.stderrMu.Lock()
	defer p.stderrMu.Unlock()

	return strings.TrimSpace(p.stderrBuffer.String())
}

// ExitErr returns the error from waiting on the process.
// It is only meaningful after Done is closed.
func (p *Process) ExitErr() error {
	select {
	case <-p.done:
		return p.waitErr
	default:
		return nil
	}
}

// Shutdown closes stdin so a stdio server can exit on EOF, then waits for
// the process until ctx is done. If ctx expires first the process is killed
// and the returned error wraps ErrShutdownTimeout.
//
// The exit status of a process that stops on its own is not reported; the
// shutdown was intentional.
func (p *Process) Shutdown(ctx context.Context) error {
	p.shutdownOnce.Do(func() {
		p.shutdownErr = p.shutdown(ctx)
	})

	return p.shutdownErr
}

func (p *Process) shutdown(ctx context.Context) error {
	defer closeAll(p.stdout, p.stderr)

	p.log.Debug("Closing server stdin")

	if err := p.stdin.Close(); err != nil {
		p.log.Debug("Closing stdin failed", "error", err)
	}

	select {
	case <-p.done:
		p.log.Debug("Server process stopped gracefully")

		return nil
	case <-ctx.Done():
	}

	p.log.Warn("Server process did not exit in time, killing")

	if err := p.cmd.Process.Kill(); err != nil {
		select {
		case <-p.done:
			// Exited between the timeout and the kill.
			return nil
		default:
		}

		return fmt.Errorf("kill process (pid %d): %w", p.PID(), err)
	}

	<-p.done

	return fmt.Errorf("pid %d: %w", p.PID(), errors.ErrShutdownTimeout)
}
