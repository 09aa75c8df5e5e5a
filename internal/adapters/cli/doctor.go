package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func doctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Report whether the tools and the layer configuration are ready",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := a.load(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, res := range deps.Health.Run(cmd.Context()) {
				if res.Healthy() {
					fmt.Fprintf(out, "ok    %s\n", res.Name)
					continue
				}
				failed++
				fmt.Fprintf(out, "FAIL  %s: %v\n", res.Name, res.Err)
			}

			if failed > 0 {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
}
