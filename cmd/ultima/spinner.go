package main

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/germanamz/ultima/pkg/engine"
)

// resultMsg carries the outcome of a background generation.
type resultMsg engine.AsyncResult

// waitModel shows a spinner until a generation result arrives.
type waitModel struct {
	spinner spinner.Model
	label   string
	ch      <-chan engine.AsyncResult
	result  engine.AsyncResult
	done    bool
}

func newWaitModel(label string, ch <-chan engine.AsyncResult) waitModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))

	return waitModel{spinner: s, label: label, ch: ch}
}

func (m waitModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitFor(m.ch))
}

func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		m.result = engine.AsyncResult(msg)
		m.done = true

		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m waitModel) View() string {
	if m.done {
		return ""
	}

	return m.spinner.View() + " " + dimStyle.Render(m.label)
}

func waitFor(ch <-chan engine.AsyncResult) tea.Cmd {
	return func() tea.Msg {
		return resultMsg(<-ch)
	}
}

// awaitWithSpinner renders a spinner on out until ch delivers. Input is not
// read so SIGINT reaches the process and cancels ctx.
func awaitWithSpinner(ctx context.Context, out io.Writer, label string, ch <-chan engine.AsyncResult) (engine.AsyncResult, error) {
	p := tea.NewProgram(newWaitModel(label, ch),
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithOutput(out),
	)

	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return engine.AsyncResult{}, err
	}

	if m, ok := final.(waitModel); ok && m.done {
		return m.result, nil
	}

	// Killed by ctx before the result arrived; the generation observes the
	// same ctx and still delivers unless the spinner already took the value.
	r, ok := <-ch
	if !ok {
		return engine.AsyncResult{Err: ctx.Err()}, nil
	}

	return r, nil
}
