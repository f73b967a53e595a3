package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/Veraticus/consulta-proyectos/internal/common"
	"github.com/Veraticus/consulta-proyectos/internal/model"
	"github.com/Veraticus/consulta-proyectos/internal/textutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogue = `
entities:
  - description: Alcaldía de Medellín
    nit: "890905211"
  - description: Gobernación de Nariño
contractors:
  - name: Consorcio Vías 2023
    identification: "901234567"
    email: consorcio@example.com
projects:
  - name: Pavimentación vía Santa Elena
    year: 2023
    value: 1500000000
    entity: alcaldía de medellín
    status: 2
    start_date: "2023-02-01"
    end_date: "2023-12-15"
  - name: Dotación escolar
    year: 2021
    value: 80000000
    entity: Gobernación de Nariño
    active: false
`

type fakeStore struct {
	entities    map[string]int
	identities  map[string]bool
	projects    []model.Project
	contractors int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entities: map[string]int{}, identities: map[string]bool{}}
}

func (f *fakeStore) CreateEntity(_ context.Context, description, taxID string) (*model.Entity, error) {
	code := len(f.entities) + 1
	f.entities[textutil.SearchKey(description)] = code
	return &model.Entity{Code: code, Description: description, TaxID: taxID}, nil
}

func (f *fakeStore) FindEntityByDescription(_ context.Context, description string) (int, error) {
	return f.entities[textutil.SearchKey(description)], nil
}

func (f *fakeStore) CreateContractor(_ context.Context, c *model.Contractor) error {
	if f.identities[c.Identification] {
		return common.ErrDuplicateEntry
	}
	f.identities[c.Identification] = true
	f.contractors++
	c.Code = f.contractors
	return nil
}

func (f *fakeStore) SaveProjects(_ context.Context, projects []model.Project, _ func()) error {
	f.projects = append(f.projects, projects...)
	return nil
}

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(catalogue))
	require.NoError(t, err)
	assert.Len(t, c.Entities, 2)
	assert.Equal(t, "890905211", c.Entities[0].TaxID)
	assert.Len(t, c.Contractors, 1)
	require.Len(t, c.Projects, 2)
	assert.InDelta(t, 1_500_000_000.0, c.Projects[0].Value, 0.001)
	require.NotNil(t, c.Projects[1].Active)
	assert.False(t, *c.Projects[1].Active)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("entidades:\n  - descripcion: x\n"))
	assert.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	c, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, c.Projects)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	c, err := Parse(strings.NewReader(catalogue))
	require.NoError(t, err)

	store := newFakeStore()
	res, err := Load(ctx, store, c)
	require.NoError(t, err)
	assert.Equal(t, Result{Entities: 2, Contractors: 1, Projects: 2}, res)

	require.Len(t, store.projects, 2)
	first := store.projects[0]
	assert.Equal(t, 1, first.EntityCode)
	assert.Equal(t, model.SituacionEnEjecucion, first.StatusCode)
	assert.Equal(t, model.EstadoActivo, first.State)
	require.NotNil(t, first.StartDate)
	assert.Equal(t, "2023-02-01", first.StartDate.Format("2006-01-02"))
	assert.Equal(t, model.EstadoInactivo, store.projects[1].State)

	// Loading again reuses entities and skips known contractors.
	res, err = Load(ctx, store, c)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Entities)
	assert.Equal(t, 0, res.Contractors)
	assert.Equal(t, 2, res.Projects)
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Load(ctx, newFakeStore(), &Catalogue{Projects: []ProjectSeed{{Name: "x", Year: 2020, Entity: "Ministerio"}}})
	assert.ErrorIs(t, err, ErrUnknownEntity)

	_, err = Load(ctx, newFakeStore(), &Catalogue{Projects: []ProjectSeed{{Name: "x", Year: 2020, StartDate: "03/04/2020"}}})
	assert.ErrorIs(t, err, ErrInvalidDate)
}
