package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/consulta-proyectos/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpoint_CreateAndList(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedCatalogue(t, store)

	cm, err := store.Checkpoints()
	require.NoError(t, err)

	info, err := cm.Create(ctx, "antes-de-importar", "Before the 2023 import")
	require.NoError(t, err)
	assert.Equal(t, "antes-de-importar", info.ID)
	assert.Equal(t, 4, info.Projects())
	assert.Equal(t, 2, info.Entities())
	assert.Equal(t, ExpectedSchemaVersion, info.SchemaVersion)
	assert.Positive(t, info.FileSize)
	assert.False(t, info.IsAuto)

	_, err = cm.Create(ctx, "antes-de-importar", "")
	assert.ErrorIs(t, err, ErrCheckpointExists)

	generated, err := cm.Create(ctx, "", "")
	require.NoError(t, err)
	assert.Contains(t, generated.ID, "checkpoint-")

	list, err := cm.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, generated.ID, list[0].ID)

	got, err := cm.Get(ctx, "antes-de-importar")
	require.NoError(t, err)
	assert.Equal(t, "Before the 2023 import", got.Description)
	assert.Equal(t, 4, got.Projects())
}

func TestCheckpoint_InvalidTags(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cm, err := store.Checkpoints()
	require.NoError(t, err)

	for _, tag := range []string{"../escape", "a/b", `a\b`} {
		_, err := cm.Create(ctx, tag, "")
		assert.ErrorIs(t, err, ErrInvalidCheckpoint, tag)
	}

	_, err = cm.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCheckpointNotFound)
	assert.ErrorIs(t, cm.Delete(ctx, "missing"), ErrCheckpointNotFound)
	assert.ErrorIs(t, cm.Restore(ctx, "missing"), ErrCheckpointNotFound)
}

func TestCheckpoint_Restore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "proyectos.db")
	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))
	seedCatalogue(t, store)

	cm, err := store.Checkpoints()
	require.NoError(t, err)
	_, err = cm.Create(ctx, "base", "")
	require.NoError(t, err)

	require.NoError(t, store.SaveProject(ctx, &model.Project{Name: "Nuevo", Year: 2024, State: model.EstadoActivo}))
	count, err := store.CountProjects(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, count)

	require.NoError(t, cm.Restore(ctx, "base"))

	reopened, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	count, err = reopened.CountProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = os.Stat(dbPath + ".restore-backup")
	assert.True(t, os.IsNotExist(err))
}

func TestCheckpoint_AutoPrunes(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cm, err := store.Checkpoints()
	require.NoError(t, err)

	_, err = cm.Create(ctx, "manual", "")
	require.NoError(t, err)
	for i := 0; i < maxAutoSnapshot+2; i++ {
		info, err := cm.Auto(ctx, "import")
		require.NoError(t, err)
		assert.True(t, info.IsAuto)
	}

	list, err := cm.List(ctx)
	require.NoError(t, err)
	auto := 0
	for _, cp := range list {
		if cp.IsAuto {
			auto++
		}
	}
	assert.Equal(t, maxAutoSnapshot, auto)
	assert.Len(t, list, maxAutoSnapshot+1)

	require.NoError(t, cm.Delete(ctx, "manual"))
	_, err = cm.Get(ctx, "manual")
	assert.ErrorIs(t, err, ErrCheckpointNotFound)
}

func TestCheckpoint_InMemory(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.Checkpoints()
	assert.ErrorIs(t, err, ErrInMemoryDatabase)
}
