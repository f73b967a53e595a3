package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/consulta-proyectos/internal/engine"
	"github.com/Veraticus/consulta-proyectos/internal/model"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAsker struct {
	err   error
	asked []string
	opts  []engine.Options
}

func (s *stubAsker) Ask(_ context.Context, text string, opts engine.Options) (*engine.Answer, error) {
	s.asked = append(s.asked, text)
	s.opts = append(s.opts, opts)
	if s.err != nil {
		return nil, s.err
	}
	return &engine.Answer{
		Descriptor: model.QueryDescriptor{
			Pattern:   "anio",
			Predicate: "estado = :estado AND (anio_proyecto = :anio)",
			Params:    map[string]any{"estado": 1, "anio": 2023},
		},
		Projects: []model.Project{{Code: 3, Year: 2023, Name: "Acueducto veredal", Value: 1_000_000}},
	}, nil
}

func newTestModel(t *testing.T, asker Asker) Model {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Asker = asker
	m, err := New(cfg)
	require.NoError(t, err)
	return m.(Model)
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func submit(t *testing.T, m Model) Model {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.waiting)
	next, _ = m.Update(cmd())
	return next.(Model)
}

func TestNewRequiresAsker(t *testing.T) {
	_, err := New(DefaultConfig())
	assert.ErrorIs(t, err, ErrNoAsker)
}

func TestModel_AskShowsResults(t *testing.T) {
	asker := &stubAsker{}
	m := newTestModel(t, asker)

	m = typeText(m, "proyectos del año 2023")
	m = submit(t, m)

	require.Equal(t, []string{"proyectos del año 2023"}, asker.asked)
	assert.False(t, m.waiting)
	assert.Empty(t, m.input.Value())
	assert.Len(t, m.results.Rows(), 1)

	view := m.View()
	assert.Contains(t, view, "Acueducto veredal")
	assert.Contains(t, view, "anio")
	assert.NotContains(t, view, "anio_proyecto = :anio")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	m = next.(Model)
	assert.Contains(t, m.View(), "anio_proyecto = :anio")
}

func TestModel_EmptyInputIgnored(t *testing.T) {
	asker := &stubAsker{}
	m := newTestModel(t, asker)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, asker.asked)
}

func TestModel_Error(t *testing.T) {
	m := newTestModel(t, &stubAsker{err: errors.New("database is locked")})
	m = typeText(m, "proyectos suscritos")
	m = submit(t, m)

	assert.Contains(t, m.View(), "database is locked")
	assert.Empty(t, m.results.Rows())
}

func TestModel_StrictToggle(t *testing.T) {
	asker := &stubAsker{}
	m := newTestModel(t, asker)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = next.(Model)
	assert.Contains(t, m.View(), "entidad estricta")

	m = typeText(m, "proyectos de la alcaldía")
	submit(t, m)
	require.Len(t, asker.opts, 1)
	assert.True(t, asker.opts[0].StrictEntity)
}

func TestModel_History(t *testing.T) {
	m := newTestModel(t, &stubAsker{})
	m = submit(t, typeText(m, "primera"))
	m = submit(t, typeText(m, "segunda"))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	m = next.(Model)
	assert.Equal(t, "segunda", m.input.Value())

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	m = next.(Model)
	assert.Equal(t, "primera", m.input.Value())

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = next.(Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = next.(Model)
	assert.Empty(t, m.input.Value())
}

func TestModel_QuitAndResize(t *testing.T) {
	m := newTestModel(t, &stubAsker{})

	next, _ := m.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	m = next.(Model)
	assert.Equal(t, 160, m.width)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}
