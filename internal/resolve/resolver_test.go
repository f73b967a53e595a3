package resolve

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Veraticus/consulta-proyectos/internal/textutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLookup is an in-memory EntityLookup that records its calls.
type fakeLookup struct {
	err         error
	entities    map[int]string
	exactCalls  int
	tokenCalls  int
	lastTokens  []string
	failOnToken bool
}

func (f *fakeLookup) FindEntityByDescription(_ context.Context, description string) (int, error) {
	f.exactCalls++
	if f.err != nil && !f.failOnToken {
		return 0, f.err
	}
	for code, desc := range f.entities {
		if textutil.SearchKey(desc) == description {
			return code, nil
		}
	}
	return 0, nil
}

func (f *fakeLookup) FindEntityByTokens(_ context.Context, tokens []string) (int, error) {
	f.tokenCalls++
	f.lastTokens = tokens
	if f.err != nil {
		return 0, f.err
	}
	best := 0
	for code, desc := range f.entities {
		desc = textutil.SearchKey(desc)
		for _, tok := range tokens {
			if strings.Contains(desc, tok) && (best == 0 || code < best) {
				best = code
			}
		}
	}
	return best, nil
}

func newFake() *fakeLookup {
	return &fakeLookup{entities: map[int]string{
		10: "Ministerio de Educación",
		20: "Alcaldía de Medellín",
		30: "Gobernación de Antioquia",
	}}
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("exact match ignoring case", func(t *testing.T) {
		lookup := newFake()
		code, err := New(lookup).Resolve(ctx, "MINISTERIO DE EDUCACIÓN")
		require.NoError(t, err)
		assert.Equal(t, 10, code)
		assert.Zero(t, lookup.tokenCalls)
	})

	t.Run("fuzzy match on surviving token", func(t *testing.T) {
		lookup := newFake()
		code, err := New(lookup).Resolve(ctx, "la educación nacional")
		require.NoError(t, err)
		assert.Equal(t, 10, code)
		assert.Equal(t, []string{"educación"}, lookup.lastTokens)
	})

	t.Run("no tokens survive so no fuzzy lookup", func(t *testing.T) {
		lookup := newFake()
		code, err := New(lookup).Resolve(ctx, "la de el y por")
		require.NoError(t, err)
		assert.Zero(t, code)
		assert.Equal(t, 1, lookup.exactCalls)
		assert.Zero(t, lookup.tokenCalls)
	})

	t.Run("empty name performs no lookup", func(t *testing.T) {
		lookup := newFake()
		code, err := New(lookup).Resolve(ctx, "   ")
		require.NoError(t, err)
		assert.Zero(t, code)
		assert.Zero(t, lookup.exactCalls)
	})

	t.Run("unresolved is zero not error", func(t *testing.T) {
		code, err := New(newFake()).Resolve(ctx, "Superintendencia Financiera")
		require.NoError(t, err)
		assert.Zero(t, code)
	})

	t.Run("first code wins among several matches", func(t *testing.T) {
		code, err := New(newFake()).Resolve(ctx, "antioquia medellín")
		require.NoError(t, err)
		assert.Equal(t, 20, code)
	})

	t.Run("lookup failures are returned", func(t *testing.T) {
		boom := errors.New("database is locked")

		_, err := New(&fakeLookup{err: boom}).Resolve(ctx, "educación")
		assert.ErrorIs(t, err, boom)

		_, err = New(&fakeLookup{err: boom, failOnToken: true}).Resolve(ctx, "educación")
		assert.ErrorIs(t, err, boom)
	})
}

func TestTokens(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"la educación nacional", []string{"educación"}},
		{"Secretaría para la Movilidad", []string{"secretaría", "movilidad"}},
		{"proyectos desde entre hasta", []string{"proyectos"}},
		{"IDU, del distrito.", []string{"distrito"}},
		{"a b c", nil},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Tokens(tt.name), tt.name)
	}
}
