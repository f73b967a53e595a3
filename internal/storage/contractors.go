package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Veraticus/consulta-proyectos/internal/model"
)

// CreateContractor inserts a contractor and sets its Code.
func (s *SQLiteStorage) CreateContractor(ctx context.Context, c *model.Contractor) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateContractor(c); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO contratistas (nombre, identificacion, telefono, email)
		VALUES (?, ?, ?, ?)
	`, strings.TrimSpace(c.Name), strings.TrimSpace(c.Identification), nullString(c.Phone), nullString(c.Email))
	if err != nil {
		return translateError(err, fmt.Sprintf("failed to create contractor %q", c.Identification))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get contractor ID: %w", err)
	}
	c.Code = int(id)
	return nil
}

// ListContractors returns all contractors ordered by name.
func (s *SQLiteStorage) ListContractors(ctx context.Context) ([]model.Contractor, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT cod_contratista, nombre, identificacion, telefono, email, created_at
		FROM contratistas
		ORDER BY nombre
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query contractors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var contractors []model.Contractor
	for rows.Next() {
		var (
			c            model.Contractor
			phone, email sql.NullString
		)
		if err := rows.Scan(&c.Code, &c.Name, &c.Identification, &phone, &email, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contractor: %w", err)
		}
		c.Phone = phone.String
		c.Email = email.String
		contractors = append(contractors, c)
	}
	return contractors, rows.Err()
}
