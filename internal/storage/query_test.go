package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/consulta-proyectos/internal/model"
	"github.com/Veraticus/consulta-proyectos/internal/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectNames(projects []model.Project) []string {
	names := make([]string, 0, len(projects))
	for _, p := range projects {
		names = append(names, p.Name)
	}
	return names
}

func TestExecuteQuery_GeneratedDescriptors(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedCatalogue(t, store)

	gen := pattern.NewGenerator()

	tests := []struct {
		question string
		want     []string
	}{
		{"proyectos con valor mayor a 100 millones", []string{"Vía Santa Elena", "Puente La Paz"}},
		{"proyectos del año 2022", []string{"Dotación escolar", "Vía Santa Elena"}},
		{"proyectos de la alcaldía de medellín", []string{"Vía Santa Elena", "Puente La Paz"}},
		{"PROYECTOS DE LA ALCALDÍA DE MEDELLÍN", []string{"Vía Santa Elena", "Puente La Paz"}},
		{"proyectos de la alcaldía   de  medellín", []string{"Vía Santa Elena", "Puente La Paz"}},
		{"proyectos de la al%ía", nil},
		{"proyectos de la alcald_a", nil},
		{"proyectos entre 2022 y 2021", []string{"Dotación escolar", "Vía Santa Elena", "Puente La Paz"}},
		{"proyectos en ejecución", []string{"Vía Santa Elena"}},
		{"proyectos en liquidación", []string{"Dotación escolar"}},
		{"proyectos suscritos", []string{"Puente La Paz"}},
		{"proyectos 2022 de la gobernación", []string{"Dotación escolar"}},
		{"proyectos 2022 en ejecución de la alcaldía", []string{"Vía Santa Elena"}},
		{"proyectos del año 1999", nil},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			d := gen.Generate(tt.question)
			projects, err := store.ExecuteQuery(ctx, d)
			require.NoError(t, err)
			assert.Equal(t, tt.want, nilIfEmpty(projectNames(projects)), "pattern %s", d.Pattern)
			for _, p := range projects {
				assert.True(t, p.IsActive())
			}
		})
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestExecuteQuery_DefaultListsEverything(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedCatalogue(t, store)

	d := pattern.NewGenerator(pattern.WithPageSize(3)).Generate("hola, ¿qué tal?")
	require.True(t, d.IsDefault())

	projects, err := store.ExecuteQuery(ctx, d)
	require.NoError(t, err)
	// Newest year first, then highest code; inactive rows are included.
	assert.Equal(t, []string{"Hospital", "Dotación escolar", "Vía Santa Elena"}, projectNames(projects))
}

func TestExecuteQuery_Refinement(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedCatalogue(t, store)

	d := pattern.NewGenerator().Generate("proyectos del año 2022")
	d, err := d.And("cod_entidad = :cod_entidad", map[string]any{"cod_entidad": 2})
	require.NoError(t, err)

	projects, err := store.ExecuteQuery(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dotación escolar"}, projectNames(projects))
}

func TestBuildProjectQuery_Rejects(t *testing.T) {
	tests := []struct {
		d    model.QueryDescriptor
		name string
	}{
		{
			name: "unbound placeholder",
			d:    model.QueryDescriptor{Predicate: "anio_proyecto = :anio", Params: map[string]any{}},
		},
		{
			name: "unused parameter",
			d:    model.QueryDescriptor{Predicate: "", Params: map[string]any{"anio": 2020}},
		},
		{
			name: "unknown column",
			d:    model.QueryDescriptor{Predicate: "password = :p", Params: map[string]any{"p": "x"}},
		},
		{
			name: "string literal",
			d:    model.QueryDescriptor{Predicate: "entidad_busqueda = 'x'", Params: map[string]any{}},
		},
		{
			name: "statement separator",
			d:    model.QueryDescriptor{Predicate: "estado = :e; DROP TABLE proyectos", Params: map[string]any{"e": 1}},
		},
		{
			name: "bad order by",
			d:    model.QueryDescriptor{OrderBy: "random()", Params: map[string]any{}},
		},
		{
			name: "unknown order column",
			d:    model.QueryDescriptor{OrderBy: "nit DESC", Params: map[string]any{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := buildProjectQuery(tt.d)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}

func TestBuildProjectQuery_Renders(t *testing.T) {
	d := pattern.NewGenerator(pattern.WithPageSize(10)).Default()
	query, args, err := buildProjectQuery(d)
	require.NoError(t, err)
	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "ORDER BY anio_proyecto DESC, codigo_proyecto DESC LIMIT 10")
	assert.Empty(t, args)

	d = pattern.NewGenerator().Generate("proyectos entre 2020 y 2022")
	query, args, err = buildProjectQuery(d)
	require.NoError(t, err)
	assert.Contains(t, query, "WHERE estado = :estado AND (anio_proyecto BETWEEN :anio_inicio AND :anio_fin)")
	assert.Len(t, args, 3)
	d = pattern.NewGenerator().Generate("proyectos de la alcaldía")
	query, _, err = buildProjectQuery(d)
	require.NoError(t, err)
	assert.Contains(t, query, `entidad_busqueda LIKE :entidad ESCAPE '\'`)
}
