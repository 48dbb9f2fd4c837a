// Package gemini wraps the `gemini` command-line tool. When the binary is
// missing it can forward generation to an API-backed provider.Generator.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/germanamz/ultima/pkg/cmdrunner"
	"github.com/germanamz/ultima/pkg/providers/provider"
	"go.uber.org/zap"
)

const (
	// DefaultBinary is the program name looked up on PATH.
	DefaultBinary = "gemini"
	// DefaultModel is passed to --model when the request names none.
	DefaultModel = "gemini-2.0-flash-exp"

	// BackendCLI and BackendAPI are reported in Status.Backend.
	BackendCLI = "cli"
	BackendAPI = "api"
)

var (
	_ provider.Prober    = (*CLI)(nil)
	_ provider.Generator = (*CLI)(nil)
)

// CLI drives the gemini binary.
type CLI struct {
	Path         string
	DefaultModel string
	Runner       cmdrunner.Runner
	API          provider.Generator // Optional fallback when the binary is missing.
	Log          *zap.Logger
}

// New creates a CLI wrapper. Empty path and model fall back to the defaults.
func New(path, defaultModel string, runner cmdrunner.Runner) *CLI {
	if path == "" {
		path = DefaultBinary
	}

	if defaultModel == "" {
		defaultModel = DefaultModel
	}

	if runner == nil {
		runner = cmdrunner.ExecRunner{}
	}

	return &CLI{Path: path, DefaultModel: defaultModel, Runner: runner, Log: zap.NewNop()}
}

// Name returns the provider name.
func (c *CLI) Name() string { return provider.Gemini }

func (c *CLI) run(ctx context.Context, args ...string) (cmdrunner.Result, error) {
	res, err := c.Runner.Run(ctx, cmdrunner.Command{Name: c.Path, Args: args})
	if err != nil {
		if errors.Is(err, cmdrunner.ErrNotFound) {
			return res, fmt.Errorf("gemini: %w: %w", provider.ErrUnavailable, err)
		}

		return res, fmt.Errorf("gemini: %w", err)
	}

	return res, nil
}

// Available reports whether `gemini --version` exits successfully.
func (c *CLI) Available(ctx context.Context) bool {
	_, err := c.run(ctx, "--version")
	return err == nil
}

// Version returns the trimmed output of `gemini --version`.
func (c *CLI) Version(ctx context.Context) (string, error) {
	res, err := c.run(ctx, "--version")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(res.Stdout), nil
}

// Generate runs `gemini generate --model M [--temperature T] [--max-tokens N] prompt`.
// When the binary is missing and API is set, the request goes to API instead.
func (c *CLI) Generate(ctx context.Context, req provider.Request) (string, error) {
	if _, err := c.Runner.LookPath(c.Path); err != nil {
		if c.API != nil {
			c.Log.Debug("gemini CLI missing, using API backend", zap.Error(err))
			return c.API.Generate(ctx, req)
		}

		return "", fmt.Errorf("gemini: %w: %w", provider.ErrUnavailable, err)
	}

	m := req.WithDefaultName(c.DefaultModel)

	args := []string{"generate", "--model", m.Name}
	if m.Temperature != nil {
		args = append(args, "--temperature", strconv.FormatFloat(*m.Temperature, 'f', -1, 64))
	}
	if m.MaxTokens > 0 {
		args = append(args, "--max-tokens", strconv.Itoa(m.MaxTokens))
	}
	args = append(args, req.Prompt)

	res, err := c.run(ctx, args...)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(res.Stdout) == "" {
		return "", fmt.Errorf("gemini: %w", provider.ErrEmptyResponse)
	}

	return res.Stdout, nil
}

// Chat runs `gemini chat message`.
func (c *CLI) Chat(ctx context.Context, message string) (string, error) {
	res, err := c.run(ctx, "chat", message)
	if err != nil {
		return "", err
	}

	return res.Stdout, nil
}

// Status is operational when the CLI answers --version, degraded when the
// binary is missing and the API backend is configured, and failed otherwise.
// A binary that resolves but fails --version still backs Generate, so it is
// reported as a failed CLI backend.
func (c *CLI) Status(ctx context.Context) provider.Status {
	v, err := c.Version(ctx)
	if err == nil {
		st := provider.Operational(provider.Gemini)
		st.Version = v
		st.Backend = BackendCLI

		return st
	}

	c.Log.Debug("gemini probe failed", zap.Error(err))

	if _, lookErr := c.Runner.LookPath(c.Path); lookErr == nil {
		st := provider.Failed(provider.Gemini, err.Error())
		st.Backend = BackendCLI

		return st
	}

	if c.API != nil {
		st := provider.Degraded(provider.Gemini, "CLI unavailable, using API backend")
		st.Backend = BackendAPI

		return st
	}

	return provider.Failed(provider.Gemini, err.Error())
}
