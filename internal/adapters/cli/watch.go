package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/cleanarch/internal/domain"
)

func watchCmd(a *app) *cobra.Command {
	var runCheck bool

	c := &cobra.Command{
		Use:   "watch",
		Short: "Rewrite layer classes as they are saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := a.load(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("check") {
				runCheck = deps.WatchRunsCheck
			}

			var roots []string
			for _, spec := range deps.Layers.All() {
				if spec.Configured() {
					roots = append(roots, spec.Path)
				}
			}
			if len(roots) == 0 {
				return fmt.Errorf("%w: no layer is configured", domain.ErrNotConfigured)
			}

			w, err := deps.NewWatcher(roots)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %d layer directories. Press Ctrl+C to stop.\n", len(roots))

			return w.Run(cmd.Context(), func(ctx context.Context, paths []string) error {
				report, err := runRewrite(ctx, deps, out, paths, false)
				if err != nil {
					return err
				}
				if !runCheck {
					return nil
				}

				res, err := deps.Tools.Check(ctx, false)
				if err != nil {
					return err
				}
				printLines(out, res.Output)
				if len(report.Failed()) > 0 || !res.Success() {
					return errors.New("architecture check reported problems")
				}
				return nil
			})
		},
	}

	c.Flags().BoolVar(&runCheck, "check", false, "run deptrac after each rewrite")
	return c
}
