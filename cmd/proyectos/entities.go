package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/consulta-proyectos/internal/cli"
	"github.com/Veraticus/consulta-proyectos/internal/config"
	"github.com/Veraticus/consulta-proyectos/internal/model"
	"github.com/Veraticus/consulta-proyectos/internal/service"
	"github.com/spf13/cobra"
)

func entitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entities",
		Short: "Manage contracting entities",
		Long:  `List and add the public entities that contract projects.`,
	}

	cmd.AddCommand(listEntitiesCmd())
	cmd.AddCommand(addEntityCmd())
	cmd.AddCommand(statusesCmd())

	return cmd
}

func listEntitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all entities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withStorage(ctx, func(_ *config.Config, store service.Storage) error {
				entities, err := store.ListEntities(ctx)
				if err != nil {
					return fmt.Errorf("failed to list entities: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(entities) == 0 {
					_, _ = fmt.Fprintln(out, cli.FormatInfo("No entities found. Use 'proyectos entities add' to create one."))
					return nil
				}

				rows := make([][]string, 0, len(entities))
				for _, e := range entities {
					rows = append(rows, []string{fmt.Sprintf("%d", e.Code), e.Description, e.TaxID})
				}
				_, _ = fmt.Fprintln(out, cli.Table([]string{"Código", "Entidad", "NIT"}, rows))
				return nil
			})
		},
	}
}

func addEntityCmd() *cobra.Command {
	var taxID string

	cmd := &cobra.Command{
		Use:   "add <descripción>",
		Short: "Add a new entity",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			description := strings.Join(args, " ")

			return withStorage(ctx, func(_ *config.Config, store service.Storage) error {
				entity, err := store.CreateEntity(ctx, description, taxID)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(),
					cli.FormatSuccess(fmt.Sprintf("Created entity %q (código %d)", entity.Description, entity.Code)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&taxID, "nit", "", "Tax identification number (NIT)")

	return cmd
}

func statusesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "statuses",
		Short: "List project statuses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withStorage(ctx, func(_ *config.Config, store service.Storage) error {
				statuses, err := store.ListStatuses(ctx)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(statuses))
				for _, s := range statuses {
					rows = append(rows, []string{fmt.Sprintf("%d", s.Code), s.Description})
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.Table([]string{"Código", "Situación"}, rows))
				return nil
			})
		},
	}
}

func contractorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contractors",
		Short: "Manage contractors",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all contractors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withStorage(ctx, func(_ *config.Config, store service.Storage) error {
				contractors, err := store.ListContractors(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(contractors) == 0 {
					_, _ = fmt.Fprintln(out, cli.FormatInfo("No contractors found."))
					return nil
				}
				rows := make([][]string, 0, len(contractors))
				for _, c := range contractors {
					rows = append(rows, []string{fmt.Sprintf("%d", c.Code), c.Name, c.Identification, c.Phone, c.Email})
				}
				_, _ = fmt.Fprintln(out, cli.Table([]string{"Código", "Nombre", "Identificación", "Teléfono", "Correo"}, rows))
				return nil
			})
		},
	})

	var c model.Contractor
	add := &cobra.Command{
		Use:   "add <nombre>",
		Short: "Add a new contractor",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			contractor := c
			contractor.Name = strings.Join(args, " ")

			return withStorage(ctx, func(_ *config.Config, store service.Storage) error {
				if err := store.CreateContractor(ctx, &contractor); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(),
					cli.FormatSuccess(fmt.Sprintf("Created contractor %q (código %d)", contractor.Name, contractor.Code)))
				return nil
			})
		},
	}
	add.Flags().StringVar(&c.Identification, "id", "", "Identification (NIT or cédula)")
	add.Flags().StringVar(&c.Phone, "phone", "", "Phone number")
	add.Flags().StringVar(&c.Email, "email", "", "Email address")
	_ = add.MarkFlagRequired("id")
	cmd.AddCommand(add)

	return cmd
}
