package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/consulta-proyectos/internal/model"
)

// CreateAct records an act against a project and sets its Code.
func (s *SQLiteStorage) CreateAct(ctx context.Context, act *model.Act) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAct(act); err != nil {
		return err
	}

	var contractor any
	if act.ContractorCode != nil {
		contractor = *act.ContractorCode
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO actas (codigo_proyecto, cod_contratista, tipo, fecha, descripcion)
		VALUES (?, ?, ?, ?, ?)
	`, act.ProjectCode, contractor, string(act.Type), act.Date.Format(dateLayout), nullString(act.Description))
	if err != nil {
		return translateError(err, fmt.Sprintf("failed to create act for project %d", act.ProjectCode))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get act ID: %w", err)
	}
	act.Code = int(id)
	return nil
}

// ListActsByProject returns a project's acts in date order.
func (s *SQLiteStorage) ListActsByProject(ctx context.Context, projectCode int) ([]model.Act, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT cod_acta, codigo_proyecto, cod_contratista, tipo, fecha, descripcion, created_at
		FROM actas
		WHERE codigo_proyecto = ?
		ORDER BY fecha, cod_acta
	`, projectCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query acts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var acts []model.Act
	for rows.Next() {
		var (
			act         model.Act
			contractor  sql.NullInt64
			actType     string
			date        string
			description sql.NullString
		)
		if err := rows.Scan(&act.Code, &act.ProjectCode, &contractor, &actType, &date, &description, &act.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan act: %w", err)
		}
		if contractor.Valid {
			code := int(contractor.Int64)
			act.ContractorCode = &code
		}
		act.Type = model.ActType(actType)
		act.Description = description.String
		if act.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("act %d has invalid date %q: %w", act.Code, date, err)
		}
		acts = append(acts, act)
	}
	return acts, rows.Err()
}
