package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/Veraticus/consulta-proyectos/internal/config"
	"github.com/Veraticus/consulta-proyectos/internal/engine"
	"github.com/Veraticus/consulta-proyectos/internal/service"
	"github.com/Veraticus/consulta-proyectos/internal/storage"
	"github.com/spf13/viper"
)

// loadConfig resolves and validates the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// initStorage opens the database and applies pending migrations.
func initStorage(ctx context.Context, cfg *config.Config) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// withStorage loads configuration, opens storage and runs fn.
func withStorage(ctx context.Context, fn func(cfg *config.Config, store service.Storage) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return fn(cfg, store)
}

// autoCheckpoint snapshots the database before a bulk change. A failure is
// logged and does not stop the change.
func autoCheckpoint(ctx context.Context, store service.Storage, operation string) {
	sqliteStore, ok := store.(*storage.SQLiteStorage)
	if !ok {
		return
	}
	cm, err := sqliteStore.Checkpoints()
	if err == nil {
		_, err = cm.Auto(ctx, operation)
	}
	if err != nil {
		slog.Warn("Automatic checkpoint failed", "operation", operation, "error", err)
	}
}

// checkpointManager opens storage and returns its checkpoint manager.
func checkpointManager(ctx context.Context) (*storage.SQLiteStorage, *storage.CheckpointManager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	sqliteStore, ok := store.(*storage.SQLiteStorage)
	if !ok {
		_ = store.Close()
		return nil, nil, fmt.Errorf("storage is not SQLite")
	}
	cm, err := sqliteStore.Checkpoints()
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to create checkpoint manager: %w", err)
	}
	return sqliteStore, cm, nil
}

func newEngine(cfg *config.Config, store service.Storage) *engine.Engine {
	return engine.New(store, engine.Config{PageSize: cfg.PageSize})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseCode(arg, what string) (int, error) {
	code, err := strconv.Atoi(arg)
	if err != nil || code <= 0 {
		return 0, fmt.Errorf("invalid %s code %q", what, arg)
	}
	return code, nil
}
