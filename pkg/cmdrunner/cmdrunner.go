// Package cmdrunner runs external programs and captures their output. The
// CLI-backed providers depend on the Runner interface so tests can swap in
// a scripted fake.
package cmdrunner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	osexec "os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNotFound is returned when the program cannot be resolved on PATH.
var ErrNotFound = osexec.ErrNotFound

// Command describes one program invocation.
type Command struct {
	Name string   // Program name or path.
	Args []string // Positional arguments.
	Dir  string   // Working directory; empty means the current one.
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}

	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the captured outcome of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ExitError is returned when a command ran but exited non-zero. The
// captured output is kept so callers can surface it.
type ExitError struct {
	Command string
	Result  Result
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", e.Command, e.Result.ExitCode)
	if s := strings.TrimSpace(e.Result.Stderr); s != "" {
		msg += ": " + s
	}

	return msg
}

// Runner runs commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
	LookPath(name string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Timeout time.Duration // Per-command timeout; zero means none beyond ctx.
	Logger  *zap.Logger
}

// Run executes cmd and waits for it. A non-zero exit yields *ExitError
// together with the captured Result.
func (r ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}

	c := osexec.CommandContext(ctx, cmd.Name, cmd.Args...) //nolint:gosec // programs come from trusted config
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	log.Debug("command finished",
		zap.String("command", cmd.String()),
		zap.String("dir", cmd.Dir),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)

	if err == nil {
		return res, nil
	}

	if ctx.Err() != nil {
		return res, fmt.Errorf("%s: %w", cmd.Name, ctx.Err())
	}

	var exitErr *osexec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, &ExitError{Command: cmd.Name, Result: res}
	}

	return res, fmt.Errorf("%s: %w", cmd.Name, err)
}

// LookPath resolves name on PATH.
func (ExecRunner) LookPath(name string) (string, error) {
	return osexec.LookPath(name)
}
