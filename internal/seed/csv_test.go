package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/Veraticus/consulta-proyectos/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProjectsCSV(t *testing.T) {
	input := "\ufeffCódigo;Año;Nombre;Valor;Entidad;Situación;Fecha_Inicio;Estado\n" +
		"10;2023;Pavimentación vía Santa Elena;1500000,50;Alcaldía de Medellín;2;15/02/2023;1\n" +
		";2021;Dotación escolar;$ 80000000;;;;inactivo\n"

	seeds, err := ParseProjectsCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, seeds, 2)

	first := seeds[0]
	assert.Equal(t, 10, first.Code)
	assert.Equal(t, 2023, first.Year)
	assert.Equal(t, "Pavimentación vía Santa Elena", first.Name)
	assert.InDelta(t, 1_500_000.5, first.Value, 0.001)
	assert.Equal(t, "Alcaldía de Medellín", first.Entity)
	assert.Equal(t, 2, first.Status)
	assert.Equal(t, "15/02/2023", first.StartDate)
	require.NotNil(t, first.Active)
	assert.True(t, *first.Active)

	second := seeds[1]
	assert.Zero(t, second.Code)
	assert.InDelta(t, 80_000_000.0, second.Value, 0.001)
	require.NotNil(t, second.Active)
	assert.False(t, *second.Active)
}

func TestParseProjectsCSVCommaDelimited(t *testing.T) {
	seeds, err := ParseProjectsCSV(strings.NewReader("anio,nombre\n2020,Puente peatonal\n"))
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	assert.Equal(t, "Puente peatonal", seeds[0].Name)
	assert.Nil(t, seeds[0].Active)
}

func TestParseProjectsCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "missing year column", input: "nombre\nx\n", wantErr: "anio"},
		{name: "bad year", input: "anio,nombre\ndos mil,x\n", wantErr: "line 2"},
		{name: "bad amount", input: "anio,nombre,valor\n2020,x,mucho\n", wantErr: "invalid amount"},
		{name: "empty input", input: "", wantErr: "header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProjectsCSV(strings.NewReader(tt.input))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestBuildProjectsFromCSV(t *testing.T) {
	store := newFakeStore()
	_, err := store.CreateEntity(context.Background(), "Alcaldía de Medellín", "")
	require.NoError(t, err)

	seeds, err := ParseProjectsCSV(strings.NewReader(
		"anio;nombre;entidad;fecha_inicio\n2023;Parque lineal;ALCALDÍA DE MEDELLÍN;15/02/2023\n"))
	require.NoError(t, err)

	projects, err := BuildProjects(context.Background(), store, seeds)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, 1, projects[0].EntityCode)
	assert.Equal(t, model.EstadoActivo, projects[0].State)
	require.NotNil(t, projects[0].StartDate)
	assert.Equal(t, "2023-02-15", projects[0].StartDate.Format("2006-01-02"))
}
