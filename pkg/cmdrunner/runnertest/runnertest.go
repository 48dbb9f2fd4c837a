// Package runnertest provides a scripted cmdrunner.Runner for tests.
package runnertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/germanamz/ultima/pkg/cmdrunner"
)

// Response is the scripted outcome of a command.
type Response struct {
	Result cmdrunner.Result
	Err    error
}

// Runner answers commands from a table keyed by the full command line
// ("gemini --version"). Unknown commands fail with an *ExitError.
// Programs listed in Missing fail LookPath and Run with ErrNotFound.
type Runner struct {
	Responses map[string]Response
	Missing   []string

	mu    sync.Mutex
	calls []cmdrunner.Command
}

// Run records cmd and returns the scripted response.
func (r *Runner) Run(_ context.Context, cmd cmdrunner.Command) (cmdrunner.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	r.mu.Unlock()

	if r.missing(cmd.Name) {
		return cmdrunner.Result{}, fmt.Errorf("%s: %w", cmd.Name, cmdrunner.ErrNotFound)
	}

	resp, ok := r.Responses[cmd.String()]
	if !ok {
		res := cmdrunner.Result{Stderr: "unexpected command", ExitCode: 1}
		return res, &cmdrunner.ExitError{Command: cmd.Name, Result: res}
	}

	if resp.Err == nil && resp.Result.ExitCode != 0 {
		return resp.Result, &cmdrunner.ExitError{Command: cmd.Name, Result: resp.Result}
	}

	return resp.Result, resp.Err
}

// LookPath fails for programs listed in Missing.
func (r *Runner) LookPath(name string) (string, error) {
	if r.missing(name) {
		return "", fmt.Errorf("%s: %w", name, cmdrunner.ErrNotFound)
	}

	return "/usr/bin/" + name, nil
}

// Calls returns the commands run so far.
func (r *Runner) Calls() []cmdrunner.Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]cmdrunner.Command, len(r.calls))
	copy(out, r.calls)

	return out
}

// CallLines returns Calls rendered as command lines.
func (r *Runner) CallLines() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}

	return out
}

func (r *Runner) missing(name string) bool {
	for _, m := range r.Missing {
		if strings.EqualFold(m, name) {
			return true
		}
	}

	return false
}

// OK is a shorthand for a successful response with stdout.
func OK(stdout string) Response {
	return Response{Result: cmdrunner.Result{Stdout: stdout}}
}
