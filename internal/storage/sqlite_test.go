package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/consulta-proyectos/internal/common"
	"github.com/Veraticus/consulta-proyectos/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func date(s string) *time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

// seedCatalogue creates two entities and four projects:
//
//	1 Puente La Paz          2021  Alcaldía de Medellín   suscrito      120M
//	2 Vía Santa Elena        2022  Alcaldía de Medellín   en ejecución  2.000M
//	3 Dotación escolar       2022  Gobernación de Nariño  liquidado     80M
//	4 Hospital (inactivo)    2022  Gobernación de Nariño  en ejecución  5.000M
func seedCatalogue(t *testing.T, store *SQLiteStorage) {
	t.Helper()
	ctx := context.Background()

	medellin, err := store.CreateEntity(ctx, "Alcaldía de Medellín", "890905211")
	require.NoError(t, err)
	narino, err := store.CreateEntity(ctx, "Gobernación de Nariño", "")
	require.NoError(t, err)

	projects := []model.Project{
		{Name: "Puente La Paz", Year: 2021, EntityCode: medellin.Code, StatusCode: model.SituacionSuscrito,
			Value: 120_000_000, State: model.EstadoActivo, StartDate: date("2021-03-01")},
		{Name: "Vía Santa Elena", Year: 2022, EntityCode: medellin.Code, StatusCode: model.SituacionEnEjecucion,
			Value: 2_000_000_000, State: model.EstadoActivo, Object: "Pavimentación"},
		{Name: "Dotación escolar", Year: 2022, EntityCode: narino.Code, StatusCode: model.SituacionLiquidado,
			Value: 80_000_000, State: model.EstadoActivo},
		{Name: "Hospital", Year: 2022, EntityCode: narino.Code, StatusCode: model.SituacionEnEjecucion,
			Value: 5_000_000_000, State: model.EstadoInactivo},
	}
	calls := 0
	require.NoError(t, store.SaveProjects(ctx, projects, func() { calls++ }))
	require.Equal(t, len(projects), calls)
}

func TestMigrate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Migrating again is a no-op.
	require.NoError(t, store.Migrate(ctx))

	statuses, err := store.ListStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 5)
	assert.Equal(t, "En ejecución", statuses[1].Description)

	var views int
	require.NoError(t, store.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master WHERE type = 'view' AND name = 'vista_proyectos'
	`).Scan(&views))
	assert.Equal(t, 1, views)
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestProjects_SaveAndGet(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedCatalogue(t, store)

	p, err := store.GetProject(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Puente La Paz", p.Name)
	assert.Equal(t, "Alcaldía de Medellín", p.EntityName)
	assert.Equal(t, "Suscrito", p.StatusName)
	require.NotNil(t, p.StartDate)
	assert.Equal(t, "2021-03-01", p.StartDate.Format(dateLayout))
	assert.Nil(t, p.EndDate)

	// Upsert by code.
	p.Value = 150_000_000
	p.EndDate = date("2021-12-31")
	require.NoError(t, store.SaveProject(ctx, p))
	updated, err := store.GetProject(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 150_000_000.0, updated.Value, 0.001)
	require.NotNil(t, updated.EndDate)

	// Explicit new code inserts.
	fresh := &model.Project{Code: 100, Name: "Parque", Year: 2023, State: model.EstadoActivo}
	require.NoError(t, store.SaveProject(ctx, fresh))
	got, err := store.GetProject(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, got.EntityName)

	_, err = store.GetProject(ctx, 999)
	assert.ErrorIs(t, err, common.ErrNotFound)

	count, err := store.CountProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestProjects_Validation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		project *model.Project
		wantErr error
		name    string
	}{
		{name: "nil", project: nil, wantErr: ErrNilParameter},
		{name: "missing name", project: &model.Project{Year: 2020, State: 1}, wantErr: ErrInvalidProject},
		{name: "year out of range", project: &model.Project{Name: "x", Year: 20, State: 1}, wantErr: ErrInvalidProject},
		{name: "negative value", project: &model.Project{Name: "x", Year: 2020, Value: -1, State: 1}, wantErr: ErrInvalidProject},
		{name: "unknown state", project: &model.Project{Name: "x", Year: 2020, State: 7}, wantErr: ErrInvalidProject},
		{
			name:    "end before start",
			project: &model.Project{Name: "x", Year: 2020, State: 1, StartDate: date("2020-05-01"), EndDate: date("2020-01-01")},
			wantErr: ErrInvalidProject,
		},
		{name: "unknown entity", project: &model.Project{Name: "x", Year: 2020, State: 1, EntityCode: 42}, wantErr: ErrUnknownReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.SaveProject(ctx, tt.project)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.ErrorIs(t, store.SaveProjects(ctx, nil, nil), ErrEmptySlice)
}

func TestProjects_SaveProjectsIsAtomic(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	err := store.SaveProjects(ctx, []model.Project{
		{Name: "ok", Year: 2020, State: model.EstadoActivo},
		{Name: "bad entity", Year: 2020, State: model.EstadoActivo, EntityCode: 77},
	}, nil)
	require.ErrorIs(t, err, ErrUnknownReference)

	count, err := store.CountProjects(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestProjects_Deactivate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedCatalogue(t, store)

	require.NoError(t, store.DeactivateProject(ctx, 2))
	p, err := store.GetProject(ctx, 2)
	require.NoError(t, err)
	assert.False(t, p.IsActive())

	assert.ErrorIs(t, store.DeactivateProject(ctx, 404), common.ErrNotFound)
}
