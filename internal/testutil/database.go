// Package testutil provides test databases seeded with a project catalogue.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/consulta-proyectos/internal/storage"
	"github.com/Veraticus/consulta-proyectos/internal/testutil/catalogue"
)

// TestDB is a migrated in-memory database and the catalogue seeded into it.
type TestDB struct {
	Storage   *storage.SQLiteStorage
	Catalogue catalogue.Catalogue
}

// SetupTestDB creates an in-memory database, migrates it and seeds the
// catalogue produced by configure. The database is closed when the test
// finishes.
//
// Example:
//
//	db := testutil.SetupTestDB(t, func(b catalogue.Builder) catalogue.Builder {
//		return b.WithFixture(catalogue.FixtureMunicipal).WithEntity("Alcaldía de Pasto")
//	})
func SetupTestDB(t *testing.T, configure func(catalogue.Builder) catalogue.Builder) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	builder := catalogue.NewBuilder(t)
	if configure != nil {
		builder = configure(builder)
	}

	cat, err := builder.Build(ctx, store)
	if err != nil {
		t.Fatalf("failed to build catalogue: %v", err)
	}

	return &TestDB{
		Storage:   store,
		Catalogue: cat,
	}
}
