package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func checkCmd(a *app) *cobra.Command {
	var verbose bool

	c := &cobra.Command{
		Use:   "check",
		Short: "Check layer dependencies with deptrac",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := a.load(cmd)
			if err != nil {
				return err
			}

			res, err := deps.Tools.Check(cmd.Context(), verbose)
			if err != nil {
				return err
			}

			printLines(cmd.OutOrStdout(), res.Output)
			return exitCode(res)
		},
	}

	c.Flags().BoolVarP(&verbose, "verbose", "v", false, "pass -v to deptrac")
	return c
}

func rectorCmd(a *app) *cobra.Command {
	var dryRun, clearCache bool

	c := &cobra.Command{
		Use:   "rector",
		Short: "Apply the marker interface rules with rector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := a.load(cmd)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Applying rector rules...")

			res, err := deps.Tools.Rector(cmd.Context(), dryRun, clearCache)
			if err != nil {
				return err
			}

			printLines(cmd.OutOrStdout(), res.Output)
			return exitCode(res)
		},
	}

	c.Flags().BoolVar(&dryRun, "dry-run", false, "show the changes without writing them")
	c.Flags().BoolVar(&clearCache, "clear-cache", false, "clear the rector cache first")
	return c
}
