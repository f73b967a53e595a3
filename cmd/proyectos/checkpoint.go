package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Veraticus/consulta-proyectos/internal/cli"
	"github.com/Veraticus/consulta-proyectos/internal/common"
	"github.com/Veraticus/consulta-proyectos/internal/storage"
	"github.com/spf13/cobra"
)

func checkpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage database checkpoints",
		Long: `Create, list, restore, and delete snapshots of the project catalogue.

Checkpoints live in a "checkpoints" directory next to the database. Bulk
imports take an automatic checkpoint first; only the five most recent
automatic checkpoints are kept.`,
		Example: `  # Snapshot before editing entities by hand
  proyectos checkpoint create --tag antes-de-editar

  # Roll back
  proyectos checkpoint restore antes-de-editar`,
	}

	cmd.AddCommand(createCheckpointCmd())
	cmd.AddCommand(listCheckpointsCmd())
	cmd.AddCommand(restoreCheckpointCmd())
	cmd.AddCommand(deleteCheckpointCmd())

	return cmd
}

func createCheckpointCmd() *cobra.Command {
	var tag, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new checkpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, cm, err := checkpointManager(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			info, err := cm.Create(ctx, tag, description)
			if err != nil {
				if errors.Is(err, storage.ErrCheckpointExists) || errors.Is(err, storage.ErrInvalidCheckpoint) {
					return common.NewUserError("Cannot create checkpoint "+tag, err)
				}
				return fmt.Errorf("failed to create checkpoint: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created checkpoint %s (%s, %d projects)",
				info.ID, formatFileSize(info.FileSize), info.Projects())))
			return nil
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Checkpoint tag (generated if not provided)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description of the checkpoint")

	return cmd
}

func listCheckpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all checkpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, cm, err := checkpointManager(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			checkpoints, err := cm.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list checkpoints: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(checkpoints) == 0 {
				_, _ = fmt.Fprintln(out, cli.FormatInfo("No checkpoints found"))
				return nil
			}

			rows := make([][]string, 0, len(checkpoints))
			for _, cp := range checkpoints {
				kind := "manual"
				if cp.IsAuto {
					kind = "auto"
				}
				rows = append(rows, []string{
					cp.ID,
					cp.CreatedAt.Local().Format(time.DateTime),
					kind,
					strconv.Itoa(cp.Projects()),
					strconv.Itoa(cp.Entities()),
					formatFileSize(cp.FileSize),
					cp.Description,
				})
			}
			_, _ = fmt.Fprintln(out, cli.Table(
				[]string{"Tag", "Creado", "Tipo", "Proyectos", "Entidades", "Tamaño", "Descripción"}, rows))
			return nil
		},
	}
}

func restoreCheckpointCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <tag>",
		Short: "Restore the database from a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, cm, err := checkpointManager(ctx)
			if err != nil {
				return err
			}

			// Restore closes the storage.
			if err := cm.Restore(ctx, args[0]); err != nil {
				if errors.Is(err, storage.ErrCheckpointNotFound) {
					return common.NewUserError("No checkpoint named "+args[0], err)
				}
				return fmt.Errorf("failed to restore checkpoint: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Restored checkpoint "+args[0]))
			return nil
		},
	}
}

func deleteCheckpointCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <tag>",
		Short: "Delete a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, cm, err := checkpointManager(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := cm.Delete(ctx, args[0]); err != nil {
				if errors.Is(err, storage.ErrCheckpointNotFound) {
					return common.NewUserError("No checkpoint named "+args[0], err)
				}
				return fmt.Errorf("failed to delete checkpoint: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted checkpoint "+args[0]))
			return nil
		},
	}
}

func formatFileSize(size int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	value := float64(size)
	i := 0
	for value >= 1024 && i < len(units)-1 {
		value /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d %s", size, units[0])
	}
	return fmt.Sprintf("%.1f %s", value, units[i])
}
