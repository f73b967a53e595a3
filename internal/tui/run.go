package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/consulta-proyectos/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrNoAsker is returned when Run is called without an Asker.
var ErrNoAsker = errors.New("tui: asker is required")

// Config configures the REPL.
type Config struct {
	Context      context.Context
	Asker        Asker
	Theme        themes.Theme
	Width        int
	Height       int
	StrictEntity bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Theme:  themes.Default,
		Width:  100,
		Height: 30,
	}
}

// New builds the REPL model.
func New(cfg Config) (tea.Model, error) {
	if cfg.Asker == nil {
		return nil, ErrNoAsker
	}
	return newModel(cfg), nil
}

// Run starts the REPL and blocks until the user quits.
func Run(ctx context.Context, cfg Config) error {
	cfg.Context = ctx
	m, err := New(cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
