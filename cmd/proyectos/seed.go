package main

import (
	"fmt"

	"github.com/Veraticus/consulta-proyectos/internal/cli"
	"github.com/Veraticus/consulta-proyectos/internal/config"
	"github.com/Veraticus/consulta-proyectos/internal/seed"
	"github.com/Veraticus/consulta-proyectos/internal/service"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <catalogo.yaml>",
		Short: "Load entities, contractors and projects from a YAML catalogue",
		Long: `Load a YAML catalogue into the database. Existing entities and contractors
are reused, so a catalogue can be loaded more than once.

  entities:
    - description: Alcaldía de Medellín
      nit: "890905211"
  contractors:
    - name: Consorcio Vías 2023
      identification: "901234567"
  projects:
    - name: Pavimentación vía Santa Elena
      year: 2023
      value: 1500000000
      entity: Alcaldía de Medellín
      status: 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			catalogue, err := seed.ParseFile(config.ExpandPath(args[0]))
			if err != nil {
				return err
			}

			return withStorage(ctx, func(_ *config.Config, store service.Storage) error {
				res, err := seed.Load(ctx, store, catalogue)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
					"Loaded %d entities, %d contractors, %d projects", res.Entities, res.Contractors, res.Projects)))
				return nil
			})
		},
	}
}
