package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	checkpointExt   = ".db"
	metadataExt     = ".meta.yaml"
	maxAutoSnapshot = 5
)

// Checkpoint errors.
var (
	ErrCheckpointNotFound  = errors.New("checkpoint not found")
	ErrCheckpointExists    = errors.New("checkpoint already exists")
	ErrCheckpointCorrupted = errors.New("checkpoint integrity check failed")
	ErrInvalidCheckpoint   = errors.New("invalid checkpoint tag")
	ErrInMemoryDatabase    = errors.New("in-memory databases cannot be checkpointed")
)

// catalogueTables are counted into checkpoint metadata.
var catalogueTables = []string{"proyectos", "entidades", "contratistas", "actas", "documentos"}

// CheckpointManager snapshots the catalogue database next to its file.
type CheckpointManager struct {
	store *SQLiteStorage
	dir   string
}

// CheckpointInfo describes a snapshot. It is also the on-disk metadata.
type CheckpointInfo struct {
	CreatedAt     time.Time      `yaml:"created_at"`
	RowCounts     map[string]int `yaml:"row_counts"`
	ID            string         `yaml:"id"`
	Description   string         `yaml:"description,omitempty"`
	FileSize      int64          `yaml:"file_size"`
	SchemaVersion int            `yaml:"schema_version"`
	IsAuto        bool           `yaml:"is_auto"`
}

// Projects returns the number of projects in the snapshot.
func (c CheckpointInfo) Projects() int {
	return c.RowCounts["proyectos"]
}

// Entities returns the number of entities in the snapshot.
func (c CheckpointInfo) Entities() int {
	return c.RowCounts["entidades"]
}

// Checkpoints returns a manager storing snapshots in a "checkpoints"
// directory beside the database file.
func (s *SQLiteStorage) Checkpoints() (*CheckpointManager, error) {
	if s.dbPath == ":memory:" {
		return nil, ErrInMemoryDatabase
	}
	dbPath, err := filepath.Abs(s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	s.dbPath = dbPath

	dir := filepath.Join(filepath.Dir(dbPath), "checkpoints")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}
	return &CheckpointManager{store: s, dir: dir}, nil
}

// Create snapshots the database under tag. An empty tag is generated from
// the current time.
func (cm *CheckpointManager) Create(ctx context.Context, tag, description string) (*CheckpointInfo, error) {
	return cm.create(ctx, tag, description, false)
}

// Auto creates an automatic snapshot before operation and keeps only the
// most recent automatic snapshots.
func (cm *CheckpointManager) Auto(ctx context.Context, operation string) (*CheckpointInfo, error) {
	tag := fmt.Sprintf("auto-%s-%s-%s", operation, time.Now().Format("20060102-150405"), uuid.NewString()[:8])
	info, err := cm.create(ctx, tag, "Automatic checkpoint before "+operation, true)
	if err != nil {
		return nil, err
	}
	if err := cm.pruneAuto(ctx); err != nil {
		slog.Warn("Failed to prune automatic checkpoints", "error", err)
	}
	return info, nil
}

func (cm *CheckpointManager) create(ctx context.Context, tag, description string, auto bool) (*CheckpointInfo, error) {
	if tag == "" {
		tag = "checkpoint-" + time.Now().Format("2006-01-02-150405")
	}
	if err := validateTag(tag); err != nil {
		return nil, err
	}

	dest := cm.path(tag, checkpointExt)
	if _, err := os.Stat(dest); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrCheckpointExists, tag)
	}

	version, err := cm.store.SchemaVersion(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := cm.rowCounts(ctx)
	if err != nil {
		return nil, err
	}

	// VACUUM INTO writes a consistent copy even with a WAL in use.
	quoted := strings.ReplaceAll(dest, "'", "''")
	if _, err := cm.store.db.ExecContext(ctx, "VACUUM INTO '"+quoted+"'"); err != nil {
		return nil, fmt.Errorf("failed to snapshot database: %w", err)
	}

	stat, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to stat checkpoint: %w", err)
	}

	info := &CheckpointInfo{
		ID:            tag,
		CreatedAt:     time.Now(),
		Description:   description,
		FileSize:      stat.Size(),
		RowCounts:     counts,
		SchemaVersion: version,
		IsAuto:        auto,
	}
	if err := cm.writeMetadata(info); err != nil {
		_ = os.Remove(dest)
		return nil, err
	}

	slog.Info("Created checkpoint", "id", tag, "size", info.FileSize, "auto", auto)
	return info, nil
}

// List returns every checkpoint, newest first. Unreadable metadata is skipped.
func (cm *CheckpointManager) List(_ context.Context) ([]CheckpointInfo, error) {
	entries, err := os.ReadDir(cm.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoints directory: %w", err)
	}

	var checkpoints []CheckpointInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, metadataExt) {
			continue
		}
		info, err := cm.readMetadata(strings.TrimSuffix(name, metadataExt))
		if err != nil {
			slog.Debug("Skipping unreadable checkpoint metadata", "file", name, "error", err)
			continue
		}
		checkpoints = append(checkpoints, *info)
	}

	slices.SortFunc(checkpoints, func(a, b CheckpointInfo) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return checkpoints, nil
}

// Get returns the metadata of one checkpoint.
func (cm *CheckpointManager) Get(_ context.Context, tag string) (*CheckpointInfo, error) {
	if err := validateTag(tag); err != nil {
		return nil, err
	}
	info, err := cm.readMetadata(tag)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrCheckpointNotFound, tag)
	}
	return info, err
}

// Restore replaces the database file with the checkpoint. The storage is
// closed and must not be used afterwards.
func (cm *CheckpointManager) Restore(ctx context.Context, tag string) error {
	if _, err := cm.Get(ctx, tag); err != nil {
		return err
	}
	src := cm.path(tag, checkpointExt)
	if err := verifyIntegrity(src); err != nil {
		return fmt.Errorf("%w: %w", ErrCheckpointCorrupted, err)
	}

	if err := cm.store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	// A leftover WAL would be replayed over the restored file.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(cm.store.dbPath + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s file: %w", suffix, err)
		}
	}

	backup := cm.store.dbPath + ".restore-backup"
	if err := copyFile(cm.store.dbPath, backup); err != nil {
		return fmt.Errorf("failed to back up current database: %w", err)
	}
	if err := copyFile(src, cm.store.dbPath); err != nil {
		if rbErr := copyFile(backup, cm.store.dbPath); rbErr != nil {
			slog.Error("Failed to roll back after restore failure", "error", rbErr)
		}
		return fmt.Errorf("failed to restore checkpoint: %w", err)
	}
	if err := os.Remove(backup); err != nil {
		slog.Warn("Failed to remove restore backup", "path", backup, "error", err)
	}

	slog.Info("Restored checkpoint", "id", tag)
	return nil
}

// Delete removes a checkpoint and its metadata.
func (cm *CheckpointManager) Delete(ctx context.Context, tag string) error {
	if _, err := cm.Get(ctx, tag); err != nil {
		return err
	}
	if err := os.Remove(cm.path(tag, checkpointExt)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove checkpoint: %w", err)
	}
	if err := os.Remove(cm.path(tag, metadataExt)); err != nil {
		return fmt.Errorf("failed to remove checkpoint metadata: %w", err)
	}
	return nil
}

func (cm *CheckpointManager) pruneAuto(ctx context.Context) error {
	checkpoints, err := cm.List(ctx)
	if err != nil {
		return err
	}
	kept := 0
	for _, cp := range checkpoints {
		if !cp.IsAuto {
			continue
		}
		kept++
		if kept > maxAutoSnapshot {
			if err := cm.Delete(ctx, cp.ID); err != nil {
				slog.Debug("Failed to delete old automatic checkpoint", "id", cp.ID, "error", err)
			}
		}
	}
	return nil
}

func (cm *CheckpointManager) rowCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(catalogueTables))
	for _, table := range catalogueTables {
		var n int
		// Table names come from a fixed list.
		if err := cm.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

func (cm *CheckpointManager) path(tag, ext string) string {
	return filepath.Join(cm.dir, tag+ext)
}

func (cm *CheckpointManager) writeMetadata(info *CheckpointInfo) error {
	data, err := yaml.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint metadata: %w", err)
	}
	path := cm.path(info.ID, metadataExt)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write checkpoint metadata: %w", err)
	}
	return os.Rename(tmp, path)
}

func (cm *CheckpointManager) readMetadata(tag string) (*CheckpointInfo, error) {
	data, err := os.ReadFile(cm.path(tag, metadataExt))
	if err != nil {
		return nil, err
	}
	var info CheckpointInfo
	if err := yaml.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint metadata: %w", err)
	}
	return &info, nil
}

func validateTag(tag string) error {
	if tag == "" || strings.ContainsAny(tag, `/\`) || strings.Contains(tag, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidCheckpoint, tag)
	}
	return nil
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return errors.New(result)
	}
	return nil
}

// copyFile copies src to dst through a temporary file and a rename.
func copyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- paths are built from the database location
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	tmp := dst + ".tmp"
	out, err := os.Create(tmp) // #nosec G304
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
