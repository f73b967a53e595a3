package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/consulta-proyectos/internal/model"
)

const dateLayout = "2006-01-02"

const projectColumns = `codigo_proyecto, anio_proyecto, nombre_proyecto, objeto_proyecto,
	valor_proyecto, fecha_inicio, fecha_final, cod_entidad, entidad,
	cod_situacion, situacion, estado`

type rowScanner interface {
	Scan(dest ...any) error
}

// SaveProject inserts or updates a project. A zero Code inserts a new
// project and sets Code to the assigned value.
func (s *SQLiteStorage) SaveProject(ctx context.Context, project *model.Project) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProject(project); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.saveProjectTx(ctx, tx, project)
	})
}

// SaveProjects saves a batch of projects in one transaction. progress, if
// not nil, is called after each saved project.
func (s *SQLiteStorage) SaveProjects(ctx context.Context, projects []model.Project, progress func()) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProjects(projects); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for i := range projects {
			if err := s.saveProjectTx(ctx, tx, &projects[i]); err != nil {
				return fmt.Errorf("project at index %d: %w", i, err)
			}
			if progress != nil {
				progress()
			}
		}
		return nil
	})
}

func (s *SQLiteStorage) saveProjectTx(ctx context.Context, q queryable, p *model.Project) error {
	args := []any{
		p.Year, p.Name, nullString(p.Object), p.Value,
		nullDate(p.StartDate), nullDate(p.EndDate),
		nullInt(p.EntityCode), nullInt(p.StatusCode), p.State,
	}

	if p.Code == 0 {
		result, err := q.ExecContext(ctx, `
			INSERT INTO proyectos (
				anio_proyecto, nombre_proyecto, objeto_proyecto, valor_proyecto,
				fecha_inicio, fecha_final, cod_entidad, cod_situacion, estado
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, args...)
		if err != nil {
			return translateError(err, "failed to insert project")
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get project ID: %w", err)
		}
		p.Code = int(id)
		return nil
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO proyectos (
			anio_proyecto, nombre_proyecto, objeto_proyecto, valor_proyecto,
			fecha_inicio, fecha_final, cod_entidad, cod_situacion, estado, codigo_proyecto
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(codigo_proyecto) DO UPDATE SET
			anio_proyecto = excluded.anio_proyecto,
			nombre_proyecto = excluded.nombre_proyecto,
			objeto_proyecto = excluded.objeto_proyecto,
			valor_proyecto = excluded.valor_proyecto,
			fecha_inicio = excluded.fecha_inicio,
			fecha_final = excluded.fecha_final,
			cod_entidad = excluded.cod_entidad,
			cod_situacion = excluded.cod_situacion,
			estado = excluded.estado
	`, append(args, p.Code)...)
	if err != nil {
		return translateError(err, fmt.Sprintf("failed to save project %d", p.Code))
	}
	return nil
}

// GetProject retrieves a project by code, active or not.
func (s *SQLiteStorage) GetProject(ctx context.Context, code int) (*model.Project, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+`
		FROM vista_proyectos
		WHERE codigo_proyecto = ?
	`, code)

	project, err := scanProject(row)
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("project %d", code))
	}
	return project, nil
}

// DeactivateProject marks a project inactive so queries stop returning it.
func (s *SQLiteStorage) DeactivateProject(ctx context.Context, code int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE proyectos SET estado = ? WHERE codigo_proyecto = ?
	`, model.EstadoInactivo, code)
	if err != nil {
		return fmt.Errorf("failed to deactivate project %d: %w", code, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return translateError(sql.ErrNoRows, fmt.Sprintf("project %d", code))
	}
	return nil
}

// CountProjects returns the number of active projects.
func (s *SQLiteStorage) CountProjects(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM proyectos WHERE estado = ?
	`, model.EstadoActivo).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

func scanProject(row rowScanner) (*model.Project, error) {
	var (
		p                    model.Project
		object, entity, st   sql.NullString
		startDate, endDate   sql.NullString
		entityCode, statusCd sql.NullInt64
	)

	err := row.Scan(
		&p.Code, &p.Year, &p.Name, &object,
		&p.Value, &startDate, &endDate, &entityCode, &entity,
		&statusCd, &st, &p.State,
	)
	if err != nil {
		return nil, err
	}

	p.Object = object.String
	p.EntityName = entity.String
	p.StatusName = st.String
	p.EntityCode = int(entityCode.Int64)
	p.StatusCode = int(statusCd.Int64)
	p.StartDate = parseDate(startDate)
	p.EndDate = parseDate(endDate)

	return &p, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func parseDate(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return nil
	}
	return &t
}
