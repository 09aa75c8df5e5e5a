package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/cleanarch/internal/ports"
)

func rewriteCmd(a *app) *cobra.Command {
	var dryRun bool

	c := &cobra.Command{
		Use:   "rewrite [paths...]",
		Short: "Add the layer marker interfaces to classes without running rector",
		Long: "Parses the PHP files of every configured layer (or the given paths) and adds\n" +
			"the layer's marker interface to each class that does not implement it yet.",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := a.load(cmd)
			if err != nil {
				return err
			}

			report, err := runRewrite(cmd.Context(), deps, cmd.OutOrStdout(), args, dryRun)
			if err != nil {
				return err
			}
			if len(report.Failed()) > 0 {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}

	c.Flags().BoolVar(&dryRun, "dry-run", false, "report the files that would change without writing them")
	return c
}

func runRewrite(ctx context.Context, deps *Deps, out io.Writer, paths []string, dryRun bool) (*ports.RewriteReport, error) {
	report, err := deps.Rewrite.Rewrite(ctx, ports.RewriteRequest{Paths: paths, DryRun: dryRun})
	if err != nil {
		return nil, err
	}
	printRewrite(out, report)
	return report, nil
}

func printRewrite(out io.Writer, report *ports.RewriteReport) {
	verb := "tagged"
	if report.DryRun {
		verb = "would tag"
	}

	for _, f := range report.Files {
		switch {
		case f.Err != nil:
			fmt.Fprintf(out, "skipped %s: %v\n", f.Path, f.Err)
		case f.Report.Changed():
			fmt.Fprintf(out, "%s %s (%d)\n", verb, f.Path, f.Report.Modified)
		}
	}

	fmt.Fprintf(out, "%d classes %s in %d files, %d unchanged, %d skipped, %d files failed\n",
		report.Total.Modified, verb, len(report.Changed),
		report.Total.Unchanged, report.Total.Skipped, len(report.Failed()))
}
