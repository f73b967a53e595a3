package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Veraticus/consulta-proyectos/internal/cli"
	"github.com/Veraticus/consulta-proyectos/internal/common"
	"github.com/Veraticus/consulta-proyectos/internal/config"
	"github.com/Veraticus/consulta-proyectos/internal/model"
	"github.com/Veraticus/consulta-proyectos/internal/pattern"
	"github.com/Veraticus/consulta-proyectos/internal/resolve"
	"github.com/Veraticus/consulta-proyectos/internal/seed"
	"github.com/Veraticus/consulta-proyectos/internal/service"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func projectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage projects",
		Long:  `List, add, show, deactivate and bulk-import projects.`,
	}

	cmd.AddCommand(listProjectsCmd())
	cmd.AddCommand(showProjectCmd())
	cmd.AddCommand(addProjectCmd())
	cmd.AddCommand(deactivateProjectCmd())
	cmd.AddCommand(importProjectsCmd())

	return cmd
}

func listProjectsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withStorage(ctx, func(cfg *config.Config, store service.Storage) error {
				size := cfg.PageSize
				if limit > 0 {
					size = limit
				}
				d := pattern.NewGenerator(pattern.WithPageSize(size)).Default()

				projects, err := store.ExecuteQuery(ctx, d)
				if err != nil {
					return err
				}
				count, err := store.CountProjects(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintln(out, cli.RenderProjects(projects))
				_, _ = fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("%d active project(s) in the catalogue", count)))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of projects (default: query.page_size)")

	return cmd
}

func showProjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <código>",
		Short: "Show a project with its acts and documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			code, err := parseCode(args[0], "project")
			if err != nil {
				return err
			}

			return withStorage(ctx, func(_ *config.Config, store service.Storage) error {
				project, err := store.GetProject(ctx, code)
				if err != nil {
					return err
				}
				acts, err := store.ListActsByProject(ctx, code)
				if err != nil {
					return err
				}
				docs, err := store.ListDocumentsByProject(ctx, code)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintln(out, cli.RenderBox(project.Name, projectSummary(project)))
				if len(acts) > 0 {
					_, _ = fmt.Fprintln(out, cli.Table(actHeaders, actRows(acts)))
				}
				if len(docs) > 0 {
					_, _ = fmt.Fprintln(out, cli.Table(documentHeaders, documentRows(docs)))
				}
				return nil
			})
		},
	}
}

func projectSummary(p *model.Project) string {
	state := "activo"
	if !p.IsActive() {
		state = "inactivo"
	}
	return fmt.Sprintf(
		"Código:     %d\nAño:        %d\nEntidad:    %s\nSituación:  %s\nValor:      %s\nInicio:     %s\nFinal:      %s\nEstado:     %s\nObjeto:     %s",
		p.Code, p.Year, p.EntityName, p.StatusName, cli.FormatPesos(p.Value),
		cli.FormatDate(p.StartDate), cli.FormatDate(p.EndDate), state, p.Object)
}

func addProjectCmd() *cobra.Command {
	var (
		p          model.Project
		entityName string
		start, end string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			project := p
			project.State = model.EstadoActivo

			return withStorage(ctx, func(_ *config.Config, store service.Storage) error {
				if entityName != "" {
					code, err := resolve.New(store).Resolve(ctx, entityName)
					if err != nil {
						return err
					}
					if code == 0 {
						return fmt.Errorf("%w: %s", seed.ErrUnknownEntity, entityName)
					}
					project.EntityCode = code
				}

				seeded, err := seed.BuildProjects(ctx, store, []seed.ProjectSeed{{StartDate: start, EndDate: end}})
				if err != nil {
					return err
				}
				project.StartDate, project.EndDate = seeded[0].StartDate, seeded[0].EndDate

				if err := store.SaveProject(ctx, &project); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(),
					cli.FormatSuccess(fmt.Sprintf("Saved project %q (código %d)", project.Name, project.Code)))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&p.Code, "code", 0, "Project code (updates the project if it exists)")
	cmd.Flags().StringVar(&p.Name, "name", "", "Project name")
	cmd.Flags().IntVar(&p.Year, "year", time.Now().Year(), "Project year")
	cmd.Flags().StringVar(&p.Object, "object", "", "Contract object")
	cmd.Flags().Float64Var(&p.Value, "value", 0, "Contract value in pesos")
	cmd.Flags().IntVar(&p.StatusCode, "status", model.SituacionSuscrito, "Status code (see 'entities statuses')")
	cmd.Flags().StringVar(&entityName, "entity", "", "Contracting entity name")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD or DD/MM/YYYY)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD or DD/MM/YYYY)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func deactivateProjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <código>",
		Short: "Mark a project inactive so queries skip it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			code, err := parseCode(args[0], "project")
			if err != nil {
				return err
			}
			return withStorage(ctx, func(_ *config.Config, store service.Storage) error {
				if err := store.DeactivateProject(ctx, code); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deactivated project %d", code)))
				return nil
			})
		},
	}
}

func importProjectsCmd() *cobra.Command {
	var (
		createEntities bool
		quiet          bool
		noCheckpoint   bool
	)

	cmd := &cobra.Command{
		Use:   "import <archivo.csv>",
		Short: "Import projects from a CSV file",
		Long: `Import projects from a CSV file with a header row. Recognised columns:
codigo, anio, nombre, objeto, valor, fecha_inicio, fecha_final, entidad,
situacion, estado. anio and nombre are required; the delimiter may be ',' or ';'.

Rows with a codigo update the existing project. The whole file is saved in
one transaction: an error leaves the catalogue untouched. An automatic
checkpoint is taken first unless --no-checkpoint is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Importación", "No se guardó ningún proyecto")
			ctx, stop := handler.HandleInterrupts(cmd.Context())
			defer stop()

			f, err := os.Open(config.ExpandPath(args[0]))
			if err != nil {
				return fmt.Errorf("failed to open csv: %w", err)
			}
			defer func() { _ = f.Close() }()

			seeds, err := seed.ParseProjectsCSV(f)
			if err != nil {
				return err
			}
			if len(seeds) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("The file has no project rows"))
				return nil
			}

			return withStorage(ctx, func(_ *config.Config, store service.Storage) error {
				if !noCheckpoint {
					autoCheckpoint(ctx, store, "import")
				}
				if createEntities {
					created, err := ensureEntities(ctx, store, seeds)
					if err != nil {
						return err
					}
					common.LogInfo("Created missing entities", common.Fields{"count": created})
				}

				projects, err := seed.BuildProjects(ctx, store, seeds)
				if err != nil {
					return err
				}

				var w io.Writer = cmd.ErrOrStderr()
				if quiet {
					w = io.Discard
				}
				bar := newImportBar(w, len(projects))
				if err := store.SaveProjects(ctx, projects, func() { _ = bar.Add(1) }); err != nil {
					return err
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Imported %d project(s)", len(projects))))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&createEntities, "create-entities", false, "Create entities that do not exist yet")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide the progress bar")
	cmd.Flags().BoolVar(&noCheckpoint, "no-checkpoint", false, "Skip the automatic checkpoint")

	return cmd
}

func ensureEntities(ctx context.Context, store service.Storage, seeds []seed.ProjectSeed) (int, error) {
	created := 0
	for _, s := range seeds {
		if s.Entity == "" {
			continue
		}
		code, err := store.FindEntityByDescription(ctx, s.Entity)
		if err != nil {
			return created, err
		}
		if code != 0 {
			continue
		}
		if _, err := store.CreateEntity(ctx, s.Entity, ""); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func newImportBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Importando proyectos...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w)
		}),
	)
}
