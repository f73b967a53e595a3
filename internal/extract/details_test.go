package extract

import (
	"testing"

	"github.com/Veraticus/consulta-proyectos/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestExtractor_Details(t *testing.T) {
	ex := New()

	tests := []struct {
		want model.ExtractedDetails
		name string
		text string
	}{
		{
			name: "full act text",
			text: `Acta de inicio del proyecto denominado "Parque Lineal La Quebrada".
Objeto del contrato: construcción del parque lineal y obras complementarias
Entidad contratante: Alcaldía de Medellín, por un valor de 1,5 millones,
desde el 15/03/2023 hasta el 2024-06-30.`,
			want: model.ExtractedDetails{
				Name:       strPtr("Parque Lineal La Quebrada"),
				ObjectText: strPtr("construcción del parque lineal y obras complementarias"),
				EntityName: strPtr("Alcaldía de Medellín"),
				Amount:     floatPtr(1_500_000),
				StartDate:  strPtr("2023-03-15"),
				EndDate:    strPtr("2024-06-30"),
			},
		},
		{
			name: "start date only",
			text: "obras desde el 15/03/2023",
			want: model.ExtractedDetails{StartDate: strPtr("2023-03-15")},
		},
		{
			name: "ambiguous dates are left absent",
			text: "desde el 05/03/2023 hasta el 04/11/2023",
			want: model.ExtractedDetails{},
		},
		{
			name: "unquoted name stops at the next clause",
			text: "el proyecto llamado Vías del Sur con valor de 200 mil",
			want: model.ExtractedDetails{
				Name:   strPtr("Vías del Sur"),
				Amount: floatPtr(200_000),
			},
		},
		{
			name: "amount without qualifier",
			text: "Presupuesto: $ 750",
			want: model.ExtractedDetails{Amount: floatPtr(750)},
		},
		{
			name: "comparison after the cue word",
			text: "proyectos con valor mayor a 500 millones",
			want: model.ExtractedDetails{Amount: floatPtr(500_000_000)},
		},
		{
			name: "qualified amount without a cue word",
			text: "un contrato de 500 millones",
			want: model.ExtractedDetails{Amount: floatPtr(500_000_000)},
		},
		{
			name: "qualified amount in thousands",
			text: "obras por 250 mil pesos",
			want: model.ExtractedDetails{Amount: floatPtr(250_000)},
		},
		{
			name: "plural entidades is not an entity cue",
			text: "entidades del sector",
			want: model.ExtractedDetails{},
		},
		{
			name: "qualifier is not part of the entity name",
			text: "La entidad contratante es el Ministerio de Educación Nacional.",
			want: model.ExtractedDetails{EntityName: strPtr("Ministerio de Educación")},
		},
		{
			name: "entity found by organisation noun",
			text: "convenio firmado con la gobernación de antioquia departamental",
			want: model.ExtractedDetails{EntityName: strPtr("gobernación de antioquia")},
		},
		{
			name: "nothing to extract",
			text: "el clima está agradable hoy",
			want: model.ExtractedDetails{},
		},
		{
			name: "empty",
			text: "",
			want: model.ExtractedDetails{},
		},
		{
			name: "binary garbage",
			text: "\x00\xff\xfe\x01",
			want: model.ExtractedDetails{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ex.Details(tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractor_FieldsAreIndependent(t *testing.T) {
	// The unparseable end date must not hide the other fields.
	got := New().Details("valor de 10 millones desde el 01/02/2023 hasta el 31/02/2023, entidad: Fondo Adaptación")

	require.NotNil(t, got.Amount)
	assert.InDelta(t, 10_000_000.0, *got.Amount, 1e-6)
	assert.Nil(t, got.StartDate, "01/02/2023 reads as two different dates")
	assert.Nil(t, got.EndDate)
	require.NotNil(t, got.EntityName)
	assert.Equal(t, "Fondo Adaptación", *got.EntityName)
	assert.Equal(t, "entity,amount", Fields(got))
	assert.False(t, got.Empty())
	assert.True(t, model.ExtractedDetails{}.Empty())
}

func TestEntityName(t *testing.T) {
	tests := []struct {
		want *string
		text string
	}{
		{strPtr("Secretaría de Movilidad"), "contratante: Secretaría de Movilidad distrital"},
		{strPtr("Instituto de Deportes"), "el Instituto de Deportes municipal"},
		{strPtr("Alcaldía de Cali"), "Entidad: Alcaldía de Cali desde el 2023-01-01"},
		{nil, "sin organización"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EntityName(tt.text), tt.text)
	}
}
