package main

import (
	"fmt"

	"github.com/germanamz/ultima/pkg/ultimadir"
	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	var (
		force    bool
		defaults bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the ultima directory and write a config file",
		Long: `Walks through an interactive wizard and writes <dir>/config.json. Use
--defaults to skip the wizard and write the built-in configuration.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runInit(force, defaults)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.Flags().BoolVar(&defaults, "defaults", false, "write the default configuration without prompting")

	return cmd
}

func (a *app) runInit(force, defaults bool) error {
	d := a.dir()

	if d.HasConfig() && !force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ultimadir.ErrConfigExists, d.ConfigPath())
	}

	var (
		data []byte
		err  error
	)

	if defaults {
		data, err = marshalWizardConfig(defaultAnswers())
	} else {
		data, err = runWizard()
	}

	if err != nil {
		return err
	}

	if err := ultimadir.Bootstrap(d, data, force); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Initialized %s\n", d.Root())

	return nil
}
