package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/germanamz/ultima/pkg/providers/dolphin"
	"github.com/germanamz/ultima/pkg/providers/provider"
	"github.com/spf13/cobra"
)

func newDolphinCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dolphin",
		Short: "Run scripts from the Dolphin node project",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "run <script> [args...]",
			Short: "Run a script from the project's scripts directory",
			Args:  cobra.MinimumNArgs(1),
			RunE: a.withDolphin(func(ctx context.Context, d *dolphin.Project, args []string) error {
				out, err := d.RunScript(ctx, args[0], args[1:]...)
				if err != nil {
					return err
				}

				return a.printOutput(out)
			}),
		},
		&cobra.Command{
			Use:   "scripts",
			Short: "List the available scripts",
			Args:  cobra.NoArgs,
			RunE: a.withDolphin(func(_ context.Context, d *dolphin.Project, _ []string) error {
				scripts, err := d.Scripts()
				if err != nil {
					return err
				}

				for _, s := range scripts {
					fmt.Fprintln(a.out, s)
				}

				return nil
			}),
		},
		&cobra.Command{
			Use:   "info",
			Short: "Show the project's package.json summary",
			Args:  cobra.NoArgs,
			RunE: a.withDolphin(func(_ context.Context, d *dolphin.Project, _ []string) error {
				info, err := d.ProjectInfo()
				if err != nil {
					return err
				}

				renderProjectInfo(a, d.Path, info)

				return nil
			}),
		},
		newDolphinIdeaCmd(a),
		&cobra.Command{
			Use:   "watch",
			Short: "Run the agent in watch mode until interrupted",
			Args:  cobra.NoArgs,
			RunE: a.withDolphin(func(ctx context.Context, d *dolphin.Project, _ []string) error {
				out, err := d.AgentWatch(ctx)
				if err != nil {
					return err
				}

				return a.printOutput(out)
			}),
		},
	)

	return cmd
}

func newDolphinIdeaCmd(a *app) *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:   "idea [json]",
		Short: "Create an idea through create-idea.mjs",
		Long: `Creates an idea from a JSON object argument, from repeated --field key=value
flags, or both (flags win).

Example:
  ultima dolphin idea --field title="Faster builds" --field priority=high`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.withDolphin(func(ctx context.Context, d *dolphin.Project, args []string) error {
			var raw string
			if len(args) == 1 {
				raw = args[0]
			}

			idea, err := parseIdea(raw, fields)
			if err != nil {
				return err
			}

			out, err := d.CreateIdea(ctx, idea)
			if err != nil {
				return err
			}

			return a.printOutput(out)
		}),
	}

	cmd.Flags().StringArrayVar(&fields, "field", nil, "idea field as key=value (repeatable)")

	return cmd
}

// withDolphin resolves the dolphin project before calling fn.
func (a *app) withDolphin(fn func(ctx context.Context, d *dolphin.Project, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		eng, err := a.engine(cmd.Context())
		if err != nil {
			return err
		}

		d := eng.Dolphin()
		if d == nil {
			return fmt.Errorf("dolphin: %w", provider.ErrUnavailable)
		}

		return fn(cmd.Context(), d, args)
	}
}

func (a *app) printOutput(out string) error {
	out = strings.TrimRight(out, "\n")
	if out != "" {
		fmt.Fprintln(a.out, out)
	}

	return nil
}

// parseIdea merges a JSON object with key=value fields.
func parseIdea(raw string, fields []string) (map[string]any, error) {
	idea := map[string]any{}

	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &idea); err != nil {
			return nil, fmt.Errorf("dolphin: idea must be a JSON object: %w", err)
		}
		// "null" decodes to a nil map.
		if idea == nil {
			return nil, errors.New("dolphin: idea must be a JSON object")
		}
	}

	for _, f := range fields {
		k, v, ok := strings.Cut(f, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("dolphin: field %q: expected key=value", f)
		}
		idea[k] = v
	}

	if len(idea) == 0 {
		return nil, errors.New("dolphin: empty idea")
	}

	return idea, nil
}

func renderProjectInfo(a *app, path string, info dolphin.Info) {
	fmt.Fprintf(a.out, "%s %s\n", titleStyle.Render(info.Name), dimStyle.Render(info.Version))
	fmt.Fprintln(a.out, dimStyle.Render(path))

	if len(info.Scripts) == 0 {
		return
	}

	names := make([]string, 0, len(info.Scripts))
	for name := range info.Scripts {
		names = append(names, name)
	}
	slices.Sort(names)

	fmt.Fprintln(a.out)
	for _, name := range names {
		fmt.Fprintf(a.out, "%s %s\n", nameStyle.Render(pad(name, 16)), truncate(info.Scripts[name], 60))
	}
}
