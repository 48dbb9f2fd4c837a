package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/germanamz/ultima/pkg/engine"
	"github.com/germanamz/ultima/pkg/providers/model"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int
	Async       bool
	JSON        bool
	Raw         bool

	TemperatureSet bool
}

func (o generateOptions) options() model.Model {
	m := model.Model{Name: o.Model, MaxTokens: o.MaxTokens}
	if o.TemperatureSet {
		m = m.WithTemperature(o.Temperature)
	}

	return m
}

func newGenerateCmd(a *app) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate text with one provider or the first one that answers",
		Long: `Sends the prompt to the selected provider. With --provider auto (the
default) gemini, ollama and claude are tried in that order and the first
non-empty answer wins.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.TemperatureSet = cmd.Flags().Changed("temperature")

			return a.runGenerate(cmd.Context(), strings.Join(args, " "), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Provider, "provider", "p", engine.ProviderAuto, "auto, gemini, ollama or claude")
	f.StringVarP(&opts.Model, "model", "m", "", "model name (default: provider default)")
	f.Float64VarP(&opts.Temperature, "temperature", "t", 0, "sampling temperature (default: provider default)")
	f.IntVar(&opts.MaxTokens, "max-tokens", 0, "maximum tokens to generate (0 = provider default)")
	f.BoolVar(&opts.Async, "async", false, "generate in the background and show progress on a terminal")
	f.BoolVar(&opts.JSON, "json", false, "print the result as JSON")
	f.BoolVar(&opts.Raw, "raw", false, "print the answer without markdown rendering")

	return cmd
}

func (a *app) runGenerate(ctx context.Context, prompt string, opts generateOptions) error {
	if strings.TrimSpace(prompt) == "" {
		return errors.New("generate: empty prompt")
	}

	eng, err := a.engine(ctx)
	if err != nil {
		return err
	}

	var res engine.Result

	if opts.Async {
		ch := eng.GenerateAsync(ctx, prompt, opts.Provider, opts.options())

		var ar engine.AsyncResult
		if isTerminal(a.errOut) {
			ar, err = awaitWithSpinner(ctx, a.errOut, "generating with "+opts.Provider, ch)
			if err != nil {
				return err
			}
		} else {
			ar = <-ch
		}
		res, err = ar.Result, ar.Err
	} else {
		res, err = eng.Generate(ctx, prompt, opts.Provider, opts.options())
	}

	if err != nil {
		if len(res.Attempts) > 1 {
			fmt.Fprintln(a.errOut, errorBlockStyle.Render(formatAttempts(res.Attempts)))
		}

		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")

		return enc.Encode(res)
	}

	fmt.Fprintln(a.errOut, providerTagStyle.Render("["+res.Provider+"]"))

	text := res.Text
	if !opts.Raw && isTerminal(a.out) {
		text = renderMarkdown(text)
	}
	fmt.Fprintln(a.out, strings.TrimRight(text, "\n"))

	return nil
}

// formatAttempts lists each provider tried and why it failed.
func formatAttempts(attempts []engine.Attempt) string {
	lines := make([]string, 0, len(attempts))
	for _, at := range attempts {
		if at.Error == "" {
			lines = append(lines, at.Provider+": ok")
			continue
		}
		lines = append(lines, at.Provider+": "+at.Error)
	}

	return strings.Join(lines, "\n")
}

// renderMarkdown renders text as terminal markdown using glamour. Falls back
// to plain text if the renderer is unavailable.
func renderMarkdown(text string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return text
	}

	out, err := r.Render(text)
	if err != nil {
		return text
	}

	return out
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
