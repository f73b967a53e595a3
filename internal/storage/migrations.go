package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS entidades (
					cod_entidad INTEGER PRIMARY KEY AUTOINCREMENT,
					descripcion TEXT NOT NULL,
					descripcion_busqueda TEXT NOT NULL UNIQUE,
					nit TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS situaciones (
					cod_situacion INTEGER PRIMARY KEY,
					descripcion TEXT NOT NULL,
					descripcion_busqueda TEXT NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS proyectos (
					codigo_proyecto INTEGER PRIMARY KEY AUTOINCREMENT,
					anio_proyecto INTEGER NOT NULL,
					nombre_proyecto TEXT NOT NULL,
					objeto_proyecto TEXT,
					valor_proyecto REAL NOT NULL DEFAULT 0,
					fecha_inicio TEXT,
					fecha_final TEXT,
					cod_entidad INTEGER REFERENCES entidades(cod_entidad),
					cod_situacion INTEGER REFERENCES situaciones(cod_situacion),
					estado INTEGER NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS contratistas (
					cod_contratista INTEGER PRIMARY KEY AUTOINCREMENT,
					nombre TEXT NOT NULL,
					identificacion TEXT NOT NULL UNIQUE,
					telefono TEXT,
					email TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS actas (
					cod_acta INTEGER PRIMARY KEY AUTOINCREMENT,
					codigo_proyecto INTEGER NOT NULL REFERENCES proyectos(codigo_proyecto),
					cod_contratista INTEGER REFERENCES contratistas(cod_contratista),
					tipo TEXT NOT NULL,
					fecha TEXT NOT NULL,
					descripcion TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS documentos (
					cod_documento INTEGER PRIMARY KEY AUTOINCREMENT,
					codigo_proyecto INTEGER NOT NULL REFERENCES proyectos(codigo_proyecto),
					nombre_original TEXT NOT NULL,
					nombre_almacenado TEXT NOT NULL UNIQUE,
					tipo_mime TEXT,
					tamano INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TRIGGER update_proyectos_updated_at
				AFTER UPDATE ON proyectos
				FOR EACH ROW
				BEGIN
					UPDATE proyectos SET updated_at = CURRENT_TIMESTAMP WHERE codigo_proyecto = NEW.codigo_proyecto;
				END`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Seed project statuses",
		Up: func(tx *sql.Tx) error {
			statuses := []struct {
				description string
				search      string
				code        int
			}{
				{"Suscrito", "suscrito", 1},
				{"En ejecución", "en ejecución", 2},
				{"Terminado", "terminado", 3},
				{"Liquidado", "liquidado", 4},
				{"Suspendido", "suspendido", 5},
			}

			for _, st := range statuses {
				if _, err := tx.Exec(`
					INSERT OR IGNORE INTO situaciones (cod_situacion, descripcion, descripcion_busqueda)
					VALUES (?, ?, ?)
				`, st.code, st.description, st.search); err != nil {
					return fmt.Errorf("failed to seed status %q: %w", st.description, err)
				}
			}

			slog.Debug("Seeded project statuses", "count", len(statuses))
			return nil
		},
	},
	{
		Version:     3,
		Description: "Projects view and lookup indexes",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE VIEW IF NOT EXISTS vista_proyectos AS
				SELECT
					p.codigo_proyecto,
					p.anio_proyecto,
					p.nombre_proyecto,
					p.objeto_proyecto,
					p.valor_proyecto,
					p.fecha_inicio,
					p.fecha_final,
					p.cod_entidad,
					e.descripcion AS entidad,
					e.descripcion_busqueda AS entidad_busqueda,
					p.cod_situacion,
					s.descripcion AS situacion,
					s.descripcion_busqueda AS situacion_busqueda,
					p.estado
				FROM proyectos p
				LEFT JOIN entidades e ON e.cod_entidad = p.cod_entidad
				LEFT JOIN situaciones s ON s.cod_situacion = p.cod_situacion`,
				`CREATE INDEX IF NOT EXISTS idx_proyectos_anio ON proyectos(anio_proyecto)`,
				`CREATE INDEX IF NOT EXISTS idx_proyectos_entidad ON proyectos(cod_entidad)`,
				`CREATE INDEX IF NOT EXISTS idx_proyectos_situacion ON proyectos(cod_situacion)`,
				`CREATE INDEX IF NOT EXISTS idx_actas_proyecto ON actas(codigo_proyecto)`,
				`CREATE INDEX IF NOT EXISTS idx_documentos_proyecto ON documentos(codigo_proyecto)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion returns the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
