package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dictaflow/dictaflow/internal/speech/artifacts"
	"github.com/dictaflow/dictaflow/internal/speech/engine"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List model versions and their install state",
	RunE: func(cmd *cobra.Command, args []string) error {
		locator := artifacts.NewLocator(modelsDir)
		for _, v := range []engine.ModelVersion{engine.V2, engine.V3} {
			state := "not installed"
			if locator.Available(v) {
				state = "installed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-14s %s\n", v.String(), v.DisplayName(), state)
		}
		return nil
	},
}
