// Package storage provides the data persistence layer for the proyectos application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/consulta-proyectos/internal/model"
)

// Validation errors.
var (
	ErrNilContext        = errors.New("context cannot be nil")
	ErrEmptyString       = errors.New("string parameter cannot be empty")
	ErrNilParameter      = errors.New("parameter cannot be nil")
	ErrEmptySlice        = errors.New("slice cannot be empty")
	ErrInvalidProject    = errors.New("invalid project")
	ErrInvalidContractor = errors.New("invalid contractor")
	ErrInvalidAct        = errors.New("invalid act")
	ErrInvalidDocument   = errors.New("invalid document")
	ErrInvalidQuery      = errors.New("invalid query descriptor")
	ErrUnknownReference  = errors.New("referenced record does not exist")
)

const (
	minProjectYear = 1900
	maxProjectYear = 2100
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateProject validates a single project.
func validateProject(p *model.Project) error {
	if p == nil {
		return fmt.Errorf("%w: project", ErrNilParameter)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidProject)
	}
	if p.Year < minProjectYear || p.Year > maxProjectYear {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidProject, p.Year)
	}
	if p.Value < 0 {
		return fmt.Errorf("%w: negative value", ErrInvalidProject)
	}
	if p.State != model.EstadoActivo && p.State != model.EstadoInactivo {
		return fmt.Errorf("%w: unknown state %d", ErrInvalidProject, p.State)
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return fmt.Errorf("%w: end date before start date", ErrInvalidProject)
	}
	return nil
}

// validateProjects validates a slice of projects.
func validateProjects(projects []model.Project) error {
	if len(projects) == 0 {
		return fmt.Errorf("%w: projects", ErrEmptySlice)
	}
	for i := range projects {
		if err := validateProject(&projects[i]); err != nil {
			return fmt.Errorf("project at index %d: %w", i, err)
		}
	}
	return nil
}

// validateContractor validates a contractor.
func validateContractor(c *model.Contractor) error {
	if c == nil {
		return fmt.Errorf("%w: contractor", ErrNilParameter)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidContractor)
	}
	if strings.TrimSpace(c.Identification) == "" {
		return fmt.Errorf("%w: missing identification", ErrInvalidContractor)
	}
	return nil
}

// validateAct validates an act.
func validateAct(a *model.Act) error {
	if a == nil {
		return fmt.Errorf("%w: act", ErrNilParameter)
	}
	if a.ProjectCode <= 0 {
		return fmt.Errorf("%w: missing project", ErrInvalidAct)
	}
	if !a.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAct, a.Type)
	}
	if a.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidAct)
	}
	return nil
}

// validateDocument validates a document record.
func validateDocument(d *model.Document) error {
	if d == nil {
		return fmt.Errorf("%w: document", ErrNilParameter)
	}
	if d.ProjectCode <= 0 {
		return fmt.Errorf("%w: missing project", ErrInvalidDocument)
	}
	if strings.TrimSpace(d.OriginalName) == "" {
		return fmt.Errorf("%w: missing file name", ErrInvalidDocument)
	}
	if d.Size < 0 {
		return fmt.Errorf("%w: negative size", ErrInvalidDocument)
	}
	return nil
}
