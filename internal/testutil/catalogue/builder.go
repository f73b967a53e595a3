// Package catalogue provides a fluent API for seeding entities and projects
// into a test database.
//
// Example usage:
//
//	db := testutil.SetupTestDB(t, func(b catalogue.Builder) catalogue.Builder {
//		return b.WithFixture(catalogue.FixtureMunicipal)
//	})
package catalogue

import (
	"context"
	"fmt"
	"testing"

	"github.com/Veraticus/consulta-proyectos/internal/model"
	"github.com/Veraticus/consulta-proyectos/internal/service"
)

// Builder collects entities and projects and creates them in storage.
type Builder interface {
	// WithEntity adds a single entity.
	WithEntity(name EntityName) Builder

	// WithEntities adds several entities.
	WithEntities(names ...EntityName) Builder

	// WithProject adds a project. Its entity is added implicitly.
	WithProject(p Project) Builder

	// WithFixture adds every entity and project of a predefined fixture.
	WithFixture(fixture Fixture) Builder

	// Build creates the entities, then the projects, in insertion order.
	Build(ctx context.Context, storage service.Storage) (Catalogue, error)
}

// EntityName is a strongly typed entity description.
type EntityName string

// String returns the description.
func (e EntityName) String() string {
	return string(e)
}

// Entity names shared by the fixtures.
const (
	EntityAlcaldiaMedellin  EntityName = "Alcaldía de Medellín"
	EntityGobernacionNarino EntityName = "Gobernación de Nariño"
	EntityMinEducacion      EntityName = "Ministerio de Educación Nacional"
	EntityInvias            EntityName = "Instituto Nacional de Vías"
)

// Project describes a project to seed. Entity may be empty.
type Project struct {
	Name   string
	Entity EntityName
	Year   int
	Status int
	Value  float64
	// Inactive seeds the project with estado = 0.
	Inactive bool
}

// Catalogue is the seeded data with the codes storage assigned.
type Catalogue struct {
	Entities map[EntityName]model.Entity
	Projects []model.Project
}

// MustEntity returns the code of the named entity or fails the test.
func (c Catalogue) MustEntity(t *testing.T, name EntityName) int {
	t.Helper()
	e, ok := c.Entities[name]
	if !ok {
		t.Fatalf("entity %q not found in test data", name)
	}
	return e.Code
}

// MustProject returns the seeded project with the given name or fails the test.
func (c Catalogue) MustProject(t *testing.T, name string) model.Project {
	t.Helper()
	for _, p := range c.Projects {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("project %q not found in test data", name)
	return model.Project{}
}

// ProjectNames returns the names of the seeded projects in insertion order.
func (c Catalogue) ProjectNames() []string {
	names := make([]string, len(c.Projects))
	for i, p := range c.Projects {
		names[i] = p.Name
	}
	return names
}

type builder struct {
	t        *testing.T
	seen     map[EntityName]struct{}
	entities []EntityName
	projects []Project
}

// NewBuilder creates an empty builder for the given test.
func NewBuilder(t *testing.T) Builder {
	t.Helper()
	return &builder{
		t:    t,
		seen: make(map[EntityName]struct{}),
	}
}

func (b *builder) WithEntity(name EntityName) Builder {
	if name == "" {
		return b
	}
	if _, ok := b.seen[name]; !ok {
		b.seen[name] = struct{}{}
		b.entities = append(b.entities, name)
	}
	return b
}

func (b *builder) WithEntities(names ...EntityName) Builder {
	for _, name := range names {
		b.WithEntity(name)
	}
	return b
}

func (b *builder) WithProject(p Project) Builder {
	b.WithEntity(p.Entity)
	b.projects = append(b.projects, p)
	return b
}

func (b *builder) WithFixture(fixture Fixture) Builder {
	b.WithEntities(fixture.Entities()...)
	for _, p := range fixture.Projects() {
		b.WithProject(p)
	}
	return b
}

func (b *builder) Build(ctx context.Context, storage service.Storage) (Catalogue, error) {
	b.t.Helper()

	result := Catalogue{Entities: make(map[EntityName]model.Entity, len(b.entities))}
	for _, name := range b.entities {
		e, err := storage.CreateEntity(ctx, name.String(), "")
		if err != nil {
			return Catalogue{}, fmt.Errorf("failed to create entity %q: %w", name, err)
		}
		result.Entities[name] = *e
	}

	if len(b.projects) == 0 {
		return result, nil
	}

	projects := make([]model.Project, 0, len(b.projects))
	for _, p := range b.projects {
		state := model.EstadoActivo
		if p.Inactive {
			state = model.EstadoInactivo
		}
		project := model.Project{
			Name:       p.Name,
			Year:       p.Year,
			Value:      p.Value,
			StatusCode: p.Status,
			State:      state,
		}
		if p.Entity != "" {
			project.EntityCode = result.Entities[p.Entity].Code
			project.EntityName = p.Entity.String()
		}
		projects = append(projects, project)
	}

	if err := storage.SaveProjects(ctx, projects, nil); err != nil {
		return Catalogue{}, fmt.Errorf("failed to save projects: %w", err)
	}
	result.Projects = projects
	return result, nil
}
