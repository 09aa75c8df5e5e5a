package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func installCmd(a *app) *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "install",
		Short: "Write deptrac.yaml, the layer configuration, and rector.php",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := a.load(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Installing PHP Clean Architecture...")

			report, err := deps.Install.Install(cmd.Context(), force)
			if err != nil {
				return err
			}

			for _, f := range report.Written {
				fmt.Fprintf(out, "Wrote %s\n", f)
			}
			for _, f := range report.Kept {
				fmt.Fprintf(out, "%s was not overwritten.\n", f)
			}

			if report.RectorSnippet != "" {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Check your rector.php file and, if needed, add these rules to it:")
				fmt.Fprintln(out, report.RectorSnippet)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Done! You can now run 'cleanarch check' to check your architecture.")
			return nil
		},
	}

	c.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing files without asking")
	return c
}
