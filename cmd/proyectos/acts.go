package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Veraticus/consulta-proyectos/internal/cli"
	"github.com/Veraticus/consulta-proyectos/internal/config"
	"github.com/Veraticus/consulta-proyectos/internal/extract"
	"github.com/Veraticus/consulta-proyectos/internal/model"
	"github.com/Veraticus/consulta-proyectos/internal/service"
	"github.com/spf13/cobra"
)

var actHeaders = []string{"Código", "Tipo", "Fecha", "Contratista", "Descripción"}

func actRows(acts []model.Act) [][]string {
	rows := make([][]string, 0, len(acts))
	for _, a := range acts {
		contractor := ""
		if a.ContractorCode != nil {
			contractor = strconv.Itoa(*a.ContractorCode)
		}
		rows = append(rows, []string{strconv.Itoa(a.Code), string(a.Type), cli.FormatDate(&a.Date), contractor, a.Description})
	}
	return rows
}

func actsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "acts",
		Short: "Record and list project acts",
		Long: `Acts record project milestones: inicio, suspension, reinicio, parcial,
final and liquidacion.`,
	}

	cmd.AddCommand(addActCmd())
	cmd.AddCommand(listActsCmd())

	return cmd
}

func addActCmd() *cobra.Command {
	var (
		actType     string
		date        string
		description string
		contractor  int
	)

	cmd := &cobra.Command{
		Use:   "add <código-proyecto>",
		Short: "Record an act against a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectCode, err := parseCode(args[0], "project")
			if err != nil {
				return err
			}

			act := model.Act{
				ProjectCode: projectCode,
				Type:        model.ActType(actType),
				Description: description,
				Date:        time.Now(),
			}
			if date != "" {
				iso, ok := extract.NormalizeDate(date)
				if !ok {
					return fmt.Errorf("invalid or ambiguous date %q", date)
				}
				act.Date, _ = time.Parse(time.DateOnly, iso)
			}
			if contractor > 0 {
				act.ContractorCode = &contractor
			}

			return withStorage(ctx, func(_ *config.Config, store service.Storage) error {
				if err := store.CreateAct(ctx, &act); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(),
					cli.FormatSuccess(fmt.Sprintf("Recorded %s act %d for project %d", act.Type, act.Code, projectCode)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&actType, "type", "t", string(model.ActStart), "Act type")
	cmd.Flags().StringVar(&date, "date", "", "Act date (default: today)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	cmd.Flags().IntVar(&contractor, "contractor", 0, "Contractor code")

	return cmd
}

func listActsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <código-proyecto>",
		Short: "List a project's acts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectCode, err := parseCode(args[0], "project")
			if err != nil {
				return err
			}
			return withStorage(ctx, func(_ *config.Config, store service.Storage) error {
				acts, err := store.ListActsByProject(ctx, projectCode)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(acts) == 0 {
					_, _ = fmt.Fprintln(out, cli.FormatInfo("No acts recorded"))
					return nil
				}
				_, _ = fmt.Fprintln(out, cli.Table(actHeaders, actRows(acts)))
				return nil
			})
		},
	}
}
