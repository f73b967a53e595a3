package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Veraticus/consulta-proyectos/internal/model"
	"github.com/google/uuid"
)

// AttachDocument records a file attached to a project. When StoredName is
// empty a random name keeping the original extension is assigned.
func (s *SQLiteStorage) AttachDocument(ctx context.Context, doc *model.Document) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDocument(doc); err != nil {
		return err
	}

	if doc.StoredName == "" {
		doc.StoredName = StoredName(doc.OriginalName)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO documentos (codigo_proyecto, nombre_original, nombre_almacenado, tipo_mime, tamano)
		VALUES (?, ?, ?, ?, ?)
	`, doc.ProjectCode, filepath.Base(doc.OriginalName), doc.StoredName, nullString(doc.MimeType), doc.Size)
	if err != nil {
		return translateError(err, fmt.Sprintf("failed to attach %q to project %d", doc.OriginalName, doc.ProjectCode))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get document ID: %w", err)
	}
	doc.Code = int(id)
	return nil
}

// ListDocumentsByProject returns a project's documents, oldest first.
func (s *SQLiteStorage) ListDocumentsByProject(ctx context.Context, projectCode int) ([]model.Document, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT cod_documento, codigo_proyecto, nombre_original, nombre_almacenado, tipo_mime, tamano, created_at
		FROM documentos
		WHERE codigo_proyecto = ?
		ORDER BY cod_documento
	`, projectCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []model.Document
	for rows.Next() {
		var (
			doc  model.Document
			mime sql.NullString
		)
		if err := rows.Scan(&doc.Code, &doc.ProjectCode, &doc.OriginalName, &doc.StoredName, &mime, &doc.Size, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.MimeType = mime.String
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// StoredName returns a collision-free file name for an uploaded file.
func StoredName(original string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(original))
}
