package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/consulta-proyectos/internal/model"
	"github.com/Veraticus/consulta-proyectos/internal/textutil"
)

// CreateEntity inserts a new entity. Descriptions are unique ignoring case.
func (s *SQLiteStorage) CreateEntity(ctx context.Context, description, taxID string) (*model.Entity, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(description, "description"); err != nil {
		return nil, err
	}

	description = strings.TrimSpace(description)
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO entidades (descripcion, descripcion_busqueda, nit)
		VALUES (?, ?, NULLIF(?, ''))
	`, description, textutil.SearchKey(description), strings.TrimSpace(taxID))
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("failed to create entity %q", description))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get entity ID: %w", err)
	}

	return s.GetEntity(ctx, int(id))
}

// UpdateEntity changes an entity's description and tax ID.
func (s *SQLiteStorage) UpdateEntity(ctx context.Context, code int, description, taxID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(description, "description"); err != nil {
		return err
	}

	description = strings.TrimSpace(description)
	result, err := s.db.ExecContext(ctx, `
		UPDATE entidades
		SET descripcion = ?, descripcion_busqueda = ?, nit = NULLIF(?, '')
		WHERE cod_entidad = ?
	`, description, textutil.SearchKey(description), strings.TrimSpace(taxID), code)
	if err != nil {
		return translateError(err, fmt.Sprintf("failed to update entity %d", code))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return translateError(sql.ErrNoRows, fmt.Sprintf("entity %d", code))
	}

	// The old description may still be cached.
	s.entityCache.Purge()
	return nil
}

// GetEntity retrieves an entity by code.
func (s *SQLiteStorage) GetEntity(ctx context.Context, code int) (*model.Entity, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		entity model.Entity
		taxID  sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT cod_entidad, descripcion, nit, created_at
		FROM entidades
		WHERE cod_entidad = ?
	`, code).Scan(&entity.Code, &entity.Description, &taxID, &entity.CreatedAt)
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("entity %d", code))
	}
	entity.TaxID = taxID.String

	return &entity, nil
}

// ListEntities returns all entities ordered by description.
func (s *SQLiteStorage) ListEntities(ctx context.Context) ([]model.Entity, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT cod_entidad, descripcion, nit, created_at
		FROM entidades
		ORDER BY descripcion_busqueda
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entities []model.Entity
	for rows.Next() {
		var (
			entity model.Entity
			taxID  sql.NullString
		)
		if err := rows.Scan(&entity.Code, &entity.Description, &taxID, &entity.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entity.TaxID = taxID.String
		entities = append(entities, entity)
	}

	return entities, rows.Err()
}

// FindEntityByDescription returns the code of the entity whose description
// equals description ignoring case, or 0.
func (s *SQLiteStorage) FindEntityByDescription(ctx context.Context, description string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	key := textutil.SearchKey(description)
	if key == "" {
		return 0, nil
	}
	if code, ok := s.entityCache.Get(key); ok {
		return code, nil
	}

	var code int
	err := s.db.QueryRowContext(ctx, `
		SELECT cod_entidad FROM entidades WHERE descripcion_busqueda = ?
	`, key).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil // Not an error, just not found
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up entity: %w", err)
	}

	s.entityCache.Add(key, code)
	return code, nil
}

// FindEntityByTokens returns the lowest entity code whose description
// contains any of the tokens ignoring case, or 0.
func (s *SQLiteStorage) FindEntityByTokens(ctx context.Context, tokens []string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	clauses := make([]string, 0, len(tokens))
	args := make([]any, 0, len(tokens))
	for _, tok := range tokens {
		tok = textutil.SearchKey(tok)
		if tok == "" {
			continue
		}
		clauses = append(clauses, `descripcion_busqueda LIKE ? ESCAPE '`+textutil.LikeEscape+`'`)
		args = append(args, textutil.LikeContains(tok))
	}
	if len(clauses) == 0 {
		return 0, nil
	}

	var code int
	err := s.db.QueryRowContext(ctx, `
		SELECT cod_entidad FROM entidades
		WHERE `+strings.Join(clauses, " OR ")+`
		ORDER BY cod_entidad
		LIMIT 1
	`, args...).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to search entities: %w", err)
	}
	return code, nil
}

// ListStatuses returns the project statuses ordered by code.
func (s *SQLiteStorage) ListStatuses(ctx context.Context) ([]model.Status, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT cod_situacion, descripcion FROM situaciones ORDER BY cod_situacion
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query statuses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var statuses []model.Status
	for rows.Next() {
		var st model.Status
		if err := rows.Scan(&st.Code, &st.Description); err != nil {
			return nil, fmt.Errorf("failed to scan status: %w", err)
		}
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}
