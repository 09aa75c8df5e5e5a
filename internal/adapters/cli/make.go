package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/cleanarch/internal/domain"
)

type makeTarget struct {
	layer domain.Layer
	use   string
	label string
}

var makeTargets = []makeTarget{
	{layer: domain.LayerEntities, use: "make:entity", label: "Entity"},
	{layer: domain.LayerRepositories, use: "make:repository", label: "Repository"},
	{layer: domain.LayerUseCases, use: "make:use-case", label: "Use case"},
	{layer: domain.LayerControllers, use: "make:controller", label: "Controller"},
	{layer: domain.LayerServices, use: "make:service", label: "Service"},
}

func makeCmds(a *app) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(makeTargets))
	for _, t := range makeTargets {
		cmds = append(cmds, makeCmd(a, t))
	}
	return cmds
}

func makeCmd(a *app, t makeTarget) *cobra.Command {
	return &cobra.Command{
		Use:   t.use + " <Name>",
		Short: fmt.Sprintf("Create a class in the %s layer", t.layer),
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("specify the %s name", t.label)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := a.load(cmd)
			if err != nil {
				return err
			}

			path, err := deps.Scaffold.Make(cmd.Context(), t.layer, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s created: %s\n", t.label, path)
			return nil
		},
	}
}
