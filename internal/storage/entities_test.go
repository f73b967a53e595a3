package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/consulta-proyectos/internal/common"
	"github.com/Veraticus/consulta-proyectos/internal/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntities_CreateAndList(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	e, err := store.CreateEntity(ctx, "  Ministerio de Educación Nacional ", "899999001")
	require.NoError(t, err)
	assert.Equal(t, "Ministerio de Educación Nacional", e.Description)
	assert.Equal(t, "899999001", e.TaxID)
	assert.NotZero(t, e.Code)

	_, err = store.CreateEntity(ctx, "Alcaldía de Bogotá", "")
	require.NoError(t, err)

	// Descriptions are unique ignoring case and spacing.
	_, err = store.CreateEntity(ctx, "MINISTERIO DE  EDUCACIÓN NACIONAL", "")
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	_, err = store.CreateEntity(ctx, " ", "")
	assert.ErrorIs(t, err, ErrEmptyString)

	entities, err := store.ListEntities(ctx)
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "Alcaldía de Bogotá", entities[0].Description)
	assert.Empty(t, entities[0].TaxID)

	_, err = store.GetEntity(ctx, 99)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestEntities_FindByDescription(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	e, err := store.CreateEntity(ctx, "Gobernación de Antioquia", "")
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"exact", "Gobernación de Antioquia", e.Code},
		{"case insensitive", "GOBERNACIÓN DE ANTIOQUIA", e.Code},
		{"extra spacing", "  gobernación   de antioquia ", e.Code},
		{"partial is not exact", "gobernación", 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := store.FindEntityByDescription(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}

	_, cached := store.entityCache.Get("gobernación de antioquia")
	assert.True(t, cached)
}

func TestEntities_UpdatePurgesCache(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	e, err := store.CreateEntity(ctx, "Alcaldía de Cali", "")
	require.NoError(t, err)

	code, err := store.FindEntityByDescription(ctx, "alcaldía de cali")
	require.NoError(t, err)
	require.Equal(t, e.Code, code)

	require.NoError(t, store.UpdateEntity(ctx, e.Code, "Alcaldía de Santiago de Cali", "890399011"))

	code, err = store.FindEntityByDescription(ctx, "alcaldía de cali")
	require.NoError(t, err)
	assert.Zero(t, code)

	updated, err := store.GetEntity(ctx, e.Code)
	require.NoError(t, err)
	assert.Equal(t, "Alcaldía de Santiago de Cali", updated.Description)
	assert.Equal(t, "890399011", updated.TaxID)

	assert.ErrorIs(t, store.UpdateEntity(ctx, 404, "x", ""), common.ErrNotFound)
}

func TestEntities_FindByTokens(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	first, err := store.CreateEntity(ctx, "Instituto Nacional de Vías", "")
	require.NoError(t, err)
	second, err := store.CreateEntity(ctx, "Agencia Nacional de Infraestructura", "")
	require.NoError(t, err)

	tests := []struct {
		name   string
		tokens []string
		want   int
	}{
		{"single token", []string{"infraestructura"}, second.Code},
		{"accented token", []string{"VÍAS"}, first.Code},
		{"lowest code wins", []string{"nacional"}, first.Code},
		{"any token", []string{"puertos", "agencia"}, second.Code},
		{"no match", []string{"aeronáutica"}, 0},
		{"wildcards are literal", []string{"v%s", "agen_ia"}, 0},
		{"no tokens", nil, 0},
		{"blank tokens", []string{" ", ""}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := store.FindEntityByTokens(ctx, tt.tokens)
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestEntities_Resolver(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	medellin, err := store.CreateEntity(ctx, "Alcaldía de Medellín", "")
	require.NoError(t, err)
	narino, err := store.CreateEntity(ctx, "Gobernación de Nariño", "")
	require.NoError(t, err)

	r := resolve.New(store)

	tests := []struct {
		name string
		text string
		want int
	}{
		{"exact", "alcaldía de medellín", medellin.Code},
		{"fuzzy", "la gobernación", narino.Code},
		{"fuzzy on city", "medellín", medellin.Code},
		{"short tokens only", "de la", 0},
		{"unknown", "Ministerio de Cultura", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := r.Resolve(ctx, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}
