package tui

import "github.com/Veraticus/consulta-proyectos/internal/engine"

// answerMsg carries the result of one question.
type answerMsg struct {
	answer   *engine.Answer
	err      error
	question string
}
