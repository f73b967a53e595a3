package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Veraticus/consulta-proyectos/internal/cli"
	"github.com/Veraticus/consulta-proyectos/internal/config"
	"github.com/Veraticus/consulta-proyectos/internal/engine"
	"github.com/Veraticus/consulta-proyectos/internal/service"
	"github.com/Veraticus/consulta-proyectos/internal/tui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func askCmd() *cobra.Command {
	var (
		strict bool
		plain  bool
	)

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Ask questions interactively",
		Long: `Open an interactive prompt. Each line is translated and answered on its own.
When stdin is not a terminal (or with --plain) questions are read line by line
and answered on stdout.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withStorage(ctx, func(cfg *config.Config, store service.Storage) error {
				eng := newEngine(cfg, store)
				strictEntity := strict || cfg.StrictEntity

				if plain || !isatty.IsTerminal(os.Stdin.Fd()) {
					return askLines(cmd, eng, strictEntity)
				}

				tuiCfg := tui.DefaultConfig()
				tuiCfg.Asker = eng
				tuiCfg.StrictEntity = strictEntity
				return tui.Run(ctx, tuiCfg)
			})
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Narrow entity filters to the resolved entity code")
	cmd.Flags().BoolVar(&plain, "plain", false, "Read questions line by line without the interactive UI")

	return cmd
}

// askLines answers one question per input line.
func askLines(cmd *cobra.Command, eng *engine.Engine, strict bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}

		answer, err := eng.Ask(ctx, question, engine.Options{StrictEntity: strict})
		if err != nil {
			_, _ = fmt.Fprintln(out, cli.FormatError(err.Error()))
			continue
		}
		_, _ = fmt.Fprintf(out, "%s %s\n", cli.SubtleStyle.Render(question+" →"), answer.Descriptor.Pattern)
		_, _ = fmt.Fprintln(out, cli.RenderProjects(answer.Projects))
	}
	return scanner.Err()
}
