// Package tui implements the interactive question prompt.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/consulta-proyectos/internal/cli"
	"github.com/Veraticus/consulta-proyectos/internal/engine"
	"github.com/Veraticus/consulta-proyectos/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Asker answers questions. *engine.Engine implements it.
type Asker interface {
	Ask(ctx context.Context, text string, opts engine.Options) (*engine.Answer, error)
}

// Model holds the REPL state.
type Model struct {
	ctx      context.Context
	asker    Asker
	lastErr  error
	answer   *engine.Answer
	theme    themes.Theme
	keymap   KeyMap
	help     help.Model
	input    textinput.Model
	results  table.Model
	question string
	history  []string
	options  engine.Options
	histPos  int
	width    int
	height   int
	explain  bool
	waiting  bool
	quitting bool
}

func newModel(cfg Config) Model {
	input := textinput.New()
	input.Placeholder = "proyectos del año 2023"
	input.Prompt = "¿ "
	input.CharLimit = 500
	input.Focus()

	results := table.New(
		table.WithColumns(columns(cfg.Width)),
		table.WithHeight(10),
		table.WithFocused(false),
	)
	styles := table.DefaultStyles()
	styles.Header = cfg.Theme.TableHeader
	styles.Selected = cfg.Theme.Selected
	results.SetStyles(styles)

	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	return Model{
		ctx:     ctx,
		asker:   cfg.Asker,
		theme:   cfg.Theme,
		keymap:  DefaultKeyMap(),
		help:    help.New(),
		input:   input,
		results: results,
		options: engine.Options{StrictEntity: cfg.StrictEntity},
		width:   cfg.Width,
		height:  cfg.Height,
	}
}

func columns(width int) []table.Column {
	if width <= 0 {
		width = 100
	}
	fixed := 8 + 6 + 14 + 18
	flex := max((width-fixed-12)/2, 15)
	return []table.Column{
		{Title: "Código", Width: 8},
		{Title: "Año", Width: 6},
		{Title: "Nombre", Width: flex},
		{Title: "Entidad", Width: flex},
		{Title: "Situación", Width: 14},
		{Title: "Valor", Width: 18},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.results.SetColumns(columns(msg.Width))
		m.results.SetHeight(max(msg.Height-14, 3))
		m.help.Width = msg.Width
		return m, nil

	case answerMsg:
		m.waiting = false
		m.question = msg.question
		m.lastErr = msg.err
		m.answer = msg.answer
		var rows []table.Row
		if msg.answer != nil {
			for _, r := range cli.ProjectRows(msg.answer.Projects) {
				rows = append(rows, table.Row(r))
			}
		}
		m.results.SetRows(rows)
		m.results.GotoTop()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.ToggleExplain):
		m.explain = !m.explain
		return m, nil

	case key.Matches(msg, m.keymap.ToggleStrict):
		m.options.StrictEntity = !m.options.StrictEntity
		return m, nil

	case key.Matches(msg, m.keymap.FocusTable):
		if m.results.Focused() {
			m.results.Blur()
			return m, m.input.Focus()
		}
		m.input.Blur()
		m.results.Focus()
		return m, nil

	case key.Matches(msg, m.keymap.HistoryPrev):
		m.recall(-1)
		return m, nil

	case key.Matches(msg, m.keymap.HistoryNext):
		m.recall(1)
		return m, nil

	case key.Matches(msg, m.keymap.Submit) && m.input.Focused():
		question := strings.TrimSpace(m.input.Value())
		if question == "" || m.waiting {
			return m, nil
		}
		m.history = append(m.history, question)
		m.histPos = len(m.history)
		m.input.Reset()
		m.waiting = true
		return m, m.askQuestion(question)
	}

	return m.updateFocused(msg)
}

func (m *Model) recall(delta int) {
	if len(m.history) == 0 {
		return
	}
	m.histPos = min(max(m.histPos+delta, 0), len(m.history))
	if m.histPos == len(m.history) {
		m.input.Reset()
		return
	}
	m.input.SetValue(m.history[m.histPos])
	m.input.CursorEnd()
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.results.Focused() {
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Consulta de proyectos"))
	if m.options.StrictEntity {
		b.WriteString(m.theme.Muted.Render("  [entidad estricta]"))
	}
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.waiting:
		b.WriteString(m.theme.StatusInfo.Render("Consultando…"))
		b.WriteString("\n")
	case m.lastErr != nil:
		b.WriteString(m.theme.StatusError.Render(fmt.Sprintf("Error: %v", m.lastErr)))
		b.WriteString("\n")
	case m.answer != nil:
		b.WriteString(m.theme.Muted.Render(fmt.Sprintf("%q → %s, %d proyecto(s)",
			m.question, m.answer.Descriptor.Pattern, len(m.answer.Projects))))
		b.WriteString("\n")
		if m.explain {
			b.WriteString(m.theme.Code.Render(m.answer.Descriptor.Predicate))
			b.WriteString("\n")
		}
		b.WriteString(m.results.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keymap))
	return b.String()
}
