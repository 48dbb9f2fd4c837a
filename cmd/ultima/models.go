package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models installed in ollama",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}

			models, err := eng.ListModels(cmd.Context())
			if err != nil {
				return err
			}

			if len(models) == 0 {
				fmt.Fprintln(a.errOut, dimStyle.Render("no models installed"))
				return nil
			}

			for _, m := range models {
				fmt.Fprintln(a.out, m)
			}

			return nil
		},
	}
}
