package tui

import (
	"context"
	"time"

	"github.com/Veraticus/consulta-proyectos/internal/engine"
	tea "github.com/charmbracelet/bubbletea"
)

const askTimeout = 30 * time.Second

// askQuestion runs one question through the asker off the UI goroutine.
func (m Model) askQuestion(question string) tea.Cmd {
	asker := m.asker
	opts := m.options
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, askTimeout)
		defer cancel()

		answer, err := asker.Ask(ctx, question, engine.Options{StrictEntity: opts.StrictEntity})
		return answerMsg{question: question, answer: answer, err: err}
	}
}
