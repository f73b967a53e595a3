// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/consulta-proyectos/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Query execution
	ExecuteQuery(ctx context.Context, d model.QueryDescriptor) ([]model.Project, error)

	// Project operations
	SaveProject(ctx context.Context, project *model.Project) error
	SaveProjects(ctx context.Context, projects []model.Project, progress func()) error
	GetProject(ctx context.Context, code int) (*model.Project, error)
	DeactivateProject(ctx context.Context, code int) error
	CountProjects(ctx context.Context) (int, error)

	// Entity operations
	CreateEntity(ctx context.Context, description, taxID string) (*model.Entity, error)
	UpdateEntity(ctx context.Context, code int, description, taxID string) error
	GetEntity(ctx context.Context, code int) (*model.Entity, error)
	ListEntities(ctx context.Context) ([]model.Entity, error)
	FindEntityByDescription(ctx context.Context, description string) (int, error)
	FindEntityByTokens(ctx context.Context, tokens []string) (int, error)

	// Status operations
	ListStatuses(ctx context.Context) ([]model.Status, error)

	// Contractor operations
	CreateContractor(ctx context.Context, c *model.Contractor) error
	ListContractors(ctx context.Context) ([]model.Contractor, error)

	// Act operations
	CreateAct(ctx context.Context, act *model.Act) error
	ListActsByProject(ctx context.Context, projectCode int) ([]model.Act, error)

	// Document operations
	AttachDocument(ctx context.Context, doc *model.Document) error
	ListDocumentsByProject(ctx context.Context, projectCode int) ([]model.Document, error)

	// Database management
	Migrate(ctx context.Context) error
	SchemaVersion(ctx context.Context) (int, error)
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
