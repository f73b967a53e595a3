package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryDescriptor_Validate(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		desc    QueryDescriptor
	}{
		{
			name: "all bound",
			desc: QueryDescriptor{
				Predicate: "estado = :estado AND anio_proyecto = :anio",
				Params:    map[string]any{"estado": 1, "anio": 2022},
			},
		},
		{
			name: "empty predicate without params",
			desc: QueryDescriptor{},
		},
		{
			name: "repeated placeholder",
			desc: QueryDescriptor{
				Predicate: "anio_proyecto >= :anio AND anio_proyecto <= :anio",
				Params:    map[string]any{"anio": 2022},
			},
		},
		{
			name: "missing parameter",
			desc: QueryDescriptor{
				Predicate: "estado = :estado AND valor_proyecto > :valor",
				Params:    map[string]any{"estado": 1},
			},
			wantErr: ErrUnboundPlaceholder,
		},
		{
			name: "unused parameter",
			desc: QueryDescriptor{
				Predicate: "estado = :estado",
				Params:    map[string]any{"estado": 1, "anio": 2020},
			},
			wantErr: ErrUnusedParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.desc.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestQueryDescriptor_Placeholders(t *testing.T) {
	d := QueryDescriptor{Predicate: "a = :b_2 AND c BETWEEN :x AND :b_2"}
	assert.Equal(t, []string{"b_2", "x"}, d.Placeholders())
}

func TestQueryDescriptor_And(t *testing.T) {
	base := QueryDescriptor{
		Pattern:   "anio",
		Predicate: "estado = :estado AND anio_proyecto = :anio",
		Params:    map[string]any{"estado": 1, "anio": 2023},
	}

	refined, err := base.And("cod_entidad = :cod_entidad", map[string]any{"cod_entidad": 7})
	require.NoError(t, err)
	assert.Equal(t, "(estado = :estado AND anio_proyecto = :anio) AND cod_entidad = :cod_entidad", refined.Predicate)
	assert.Equal(t, 7, refined.Params["cod_entidad"])
	assert.NoError(t, refined.Validate())

	// The original descriptor is left untouched.
	assert.NotContains(t, base.Params, "cod_entidad")

	_, err = base.And("anio_proyecto > :anio", map[string]any{"anio": 1})
	assert.ErrorIs(t, err, ErrParameterConflict)

	fromEmpty, err := QueryDescriptor{}.And("cod_entidad = :c", map[string]any{"c": 1})
	require.NoError(t, err)
	assert.Equal(t, "cod_entidad = :c", fromEmpty.Predicate)
}
