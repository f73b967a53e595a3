package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/consulta-proyectos/internal/cli"
	"github.com/Veraticus/consulta-proyectos/internal/config"
	"github.com/Veraticus/consulta-proyectos/internal/engine"
	"github.com/Veraticus/consulta-proyectos/internal/service"
	"github.com/Veraticus/consulta-proyectos/internal/textsource"
	"github.com/spf13/cobra"
)

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <texto>",
		Short: "Answer a question about projects",
		Long: `Translate a Spanish question into a query over the projects catalogue and
print the matching active projects. Questions no rule understands list the
most recent projects.

Examples:
  proyectos query "proyectos del año 2023"
  proyectos query "proyectos con valor mayor a 500 millones"
  proyectos query --strict "proyectos de la alcaldía de Pasto"`,
		Args: cobra.ArbitraryArgs,
		RunE: runQuery,
	}

	cmd.Flags().StringP("file", "f", "", "Read the question from a text or PDF file")
	cmd.Flags().Bool("explain", false, "Show the generated query without running it")
	cmd.Flags().Bool("strict", false, "Narrow entity filters to the resolved entity code")
	cmd.Flags().Bool("json", false, "Print the answer as JSON")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	explain, _ := cmd.Flags().GetBool("explain")
	asJSON, _ := cmd.Flags().GetBool("json")
	file, _ := cmd.Flags().GetString("file")
	strict, _ := cmd.Flags().GetBool("strict")

	return withStorage(ctx, func(cfg *config.Config, store service.Storage) error {
		text, err := inputText(ctx, cfg, args, file)
		if err != nil {
			return err
		}

		answer, err := newEngine(cfg, store).Ask(ctx, text, engine.Options{
			StrictEntity: strict || cfg.StrictEntity,
			ExplainOnly:  explain,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, answer)
		}

		_, _ = fmt.Fprintln(out, cli.RenderDescriptor(answer.Descriptor))
		if answer.EntityCode != 0 {
			_, _ = fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Entidad resuelta: %d", answer.EntityCode)))
		}
		if explain {
			return nil
		}
		_, _ = fmt.Fprintln(out, cli.RenderProjects(answer.Projects))
		return nil
	})
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <texto>",
		Short: "Extract project details from text",
		Long: `Pull the project name, object, contracting entity, amount and dates out of
free text or a document. Fields that cannot be found are omitted.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			file, _ := cmd.Flags().GetString("file")
			asJSON, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			text, err := inputText(ctx, cfg, args, file)
			if err != nil {
				return err
			}

			details := newEngine(cfg, nil).Extract(text)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), details)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderDetails(details))
			return nil
		},
	}

	cmd.Flags().StringP("file", "f", "", "Read the text from a text or PDF file")
	cmd.Flags().Bool("json", false, "Print the details as JSON")

	return cmd
}

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <nombre>",
		Short: "Resolve an entity name to its code",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := strings.Join(args, " ")

			return withStorage(ctx, func(cfg *config.Config, store service.Storage) error {
				code, err := newEngine(cfg, store).Resolve(ctx, name)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if code == 0 {
					_, _ = fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Sin coincidencias para %q", name)))
					return nil
				}
				entity, err := store.GetEntity(ctx, code)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "%d\t%s\n", entity.Code, entity.Description)
				return nil
			})
		},
	}
}

// inputText returns the question from --file or the joined arguments.
func inputText(ctx context.Context, cfg *config.Config, args []string, file string) (string, error) {
	if file == "" {
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return "", fmt.Errorf("no text given: pass it as arguments or with --file")
		}
		return text, nil
	}

	src, err := textsource.ForFile(config.ExpandPath(file), textsource.Options{
		PDFCommand: cfg.PDFCommand,
		Timeout:    cfg.ExtractTimeout,
		Retries:    cfg.ExtractRetries,
	})
	if err != nil {
		return "", err
	}
	return src.Text(ctx)
}
