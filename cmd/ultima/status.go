package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/germanamz/ultima/pkg/engine"
	"github.com/germanamz/ultima/pkg/providers/provider"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

const (
	nameColumnWidth   = 10
	healthColumnWidth = 13
	detailColumnWidth = 56
)

type statusOptions struct {
	JSON    bool
	Refresh bool
}

func newStatusCmd(a *app) *cobra.Command {
	var opts statusOptions

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Probe every integration and print the status report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runStatus(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore the cached report")

	return cmd
}

func (a *app) runStatus(ctx context.Context, opts statusOptions) error {
	eng, err := a.engine(ctx)
	if err != nil {
		return err
	}

	if opts.Refresh {
		eng.Refresh()
	}

	report := eng.StatusReport(ctx)

	if opts.JSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")

		return enc.Encode(report)
	}

	renderStatus(a.out, report)

	return nil
}

// renderStatus writes report as an aligned table, one row per provider in
// report order.
func renderStatus(w io.Writer, report engine.Report) {
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render(report.System), dimStyle.Render("v"+report.Version))
	fmt.Fprintln(w, dimStyle.Render(report.Timestamp.Format("2006-01-02 15:04:05 MST")))
	fmt.Fprintln(w)

	fmt.Fprintln(w, headerStyle.Render(pad("PROVIDER", nameColumnWidth))+" "+
		headerStyle.Render(pad("HEALTH", healthColumnWidth))+" "+
		headerStyle.Render("DETAIL"))

	for _, name := range engine.Names {
		st, ok := report.Integrations[name]
		if !ok {
			continue
		}

		fmt.Fprintf(w, "%s %s %s\n",
			nameStyle.Render(pad(name, nameColumnWidth)),
			healthStyle(st.Health).Render(pad(string(st.Health), healthColumnWidth)),
			truncate(statusDetail(st), detailColumnWidth),
		)
	}

	fmt.Fprintln(w)

	if report.Healthy() {
		fmt.Fprintln(w, operationalStyle.Render("at least one provider is ready"))
	} else {
		fmt.Fprintln(w, failedStyle.Render("no provider is ready"))
	}
}

// statusDetail summarises the provider-specific fields of st.
func statusDetail(st provider.Status) string {
	var parts []string

	if st.Detail != "" {
		parts = append(parts, st.Detail)
	}
	if st.Version != "" {
		parts = append(parts, "version "+st.Version)
	}
	if st.Backend != "" {
		parts = append(parts, "backend "+st.Backend)
	}
	if len(st.Models) > 0 {
		parts = append(parts, fmt.Sprintf("%d models", len(st.Models)))
	}
	if len(st.Scripts) > 0 {
		parts = append(parts, fmt.Sprintf("%d scripts", len(st.Scripts)))
	}
	if st.Subscription != "" {
		parts = append(parts, st.Subscription)
	}
	if st.ExpiresAt != nil {
		parts = append(parts, "expires "+st.ExpiresAt.Format("2006-01-02"))
	}

	return strings.Join(parts, ", ")
}

func healthStyle(h provider.Health) lipgloss.Style {
	switch h {
	case provider.HealthOperational:
		return operationalStyle
	case provider.HealthDegraded:
		return degradedStyle
	default:
		return failedStyle
	}
}

// pad right-fills s with spaces to width display cells.
func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// truncate shortens s to at most width display cells, marking the cut with
// an ellipsis.
func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}
