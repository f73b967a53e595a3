// Package seed loads a YAML catalogue of entities, contractors and projects
// into storage.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/consulta-proyectos/internal/common"
	"github.com/Veraticus/consulta-proyectos/internal/extract"
	"github.com/Veraticus/consulta-proyectos/internal/model"
	"gopkg.in/yaml.v3"
)

// ErrUnknownEntity is returned when a project names an entity that is
// neither in the catalogue nor in storage.
var ErrUnknownEntity = errors.New("unknown entity")

// ErrInvalidDate is returned for missing-layout or ambiguous dates.
var ErrInvalidDate = errors.New("invalid date")

// Catalogue is the on-disk seed format.
type Catalogue struct {
	Entities    []EntitySeed     `yaml:"entities"`
	Contractors []ContractorSeed `yaml:"contractors"`
	Projects    []ProjectSeed    `yaml:"projects"`
}

// EntitySeed describes an entity.
type EntitySeed struct {
	Description string `yaml:"description"`
	TaxID       string `yaml:"nit"`
}

// ContractorSeed describes a contractor.
type ContractorSeed struct {
	Name           string `yaml:"name"`
	Identification string `yaml:"identification"`
	Phone          string `yaml:"phone"`
	Email          string `yaml:"email"`
}

// ProjectSeed describes a project. Entity is matched by description.
type ProjectSeed struct {
	Active    *bool   `yaml:"active"`
	Name      string  `yaml:"name"`
	Object    string  `yaml:"object"`
	Entity    string  `yaml:"entity"`
	StartDate string  `yaml:"start_date"`
	EndDate   string  `yaml:"end_date"`
	Value     float64 `yaml:"value"`
	Code      int     `yaml:"code"`
	Year      int     `yaml:"year"`
	Status    int     `yaml:"status"`
}

// EntityFinder looks entities up by description, returning 0 when absent.
type EntityFinder interface {
	FindEntityByDescription(ctx context.Context, description string) (int, error)
}

// Store is the storage the loader writes to.
type Store interface {
	EntityFinder
	CreateEntity(ctx context.Context, description, taxID string) (*model.Entity, error)
	CreateContractor(ctx context.Context, c *model.Contractor) error
	SaveProjects(ctx context.Context, projects []model.Project, progress func()) error
}

// Result counts what a load wrote.
type Result struct {
	Entities    int
	Contractors int
	Projects    int
}

// Parse decodes a catalogue. Unknown keys are rejected.
func Parse(r io.Reader) (*Catalogue, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalogue
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &c, nil
		}
		return nil, fmt.Errorf("failed to parse catalogue: %w", err)
	}
	return &c, nil
}

// ParseFile decodes the catalogue at path.
func ParseFile(path string) (*Catalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Load writes the catalogue to store. Entities that already exist are
// reused rather than duplicated.
func Load(ctx context.Context, store Store, c *Catalogue) (Result, error) {
	var res Result

	for _, e := range c.Entities {
		code, err := store.FindEntityByDescription(ctx, e.Description)
		if err != nil {
			return res, err
		}
		if code != 0 {
			continue
		}
		if _, err := store.CreateEntity(ctx, e.Description, e.TaxID); err != nil {
			return res, fmt.Errorf("entity %q: %w", e.Description, err)
		}
		res.Entities++
	}

	for _, cs := range c.Contractors {
		contractor := model.Contractor{
			Name:           cs.Name,
			Identification: cs.Identification,
			Phone:          cs.Phone,
			Email:          cs.Email,
		}
		err := store.CreateContractor(ctx, &contractor)
		if errors.Is(err, common.ErrDuplicateEntry) {
			continue
		}
		if err != nil {
			return res, fmt.Errorf("contractor %q: %w", cs.Name, err)
		}
		res.Contractors++
	}

	if len(c.Projects) == 0 {
		return res, nil
	}

	projects, err := BuildProjects(ctx, store, c.Projects)
	if err != nil {
		return res, err
	}
	if err := store.SaveProjects(ctx, projects, nil); err != nil {
		return res, err
	}
	res.Projects = len(projects)

	return res, nil
}

// BuildProjects converts seeds to projects, resolving entity names.
func BuildProjects(ctx context.Context, store EntityFinder, seeds []ProjectSeed) ([]model.Project, error) {
	projects := make([]model.Project, 0, len(seeds))
	for i, ps := range seeds {
		p, err := toProject(ctx, store, ps)
		if err != nil {
			return nil, fmt.Errorf("project %d (%q): %w", i+1, ps.Name, err)
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func toProject(ctx context.Context, store EntityFinder, ps ProjectSeed) (model.Project, error) {
	p := model.Project{
		Code:       ps.Code,
		Year:       ps.Year,
		Name:       ps.Name,
		Object:     ps.Object,
		Value:      ps.Value,
		StatusCode: ps.Status,
		State:      model.EstadoActivo,
	}
	if ps.Active != nil && !*ps.Active {
		p.State = model.EstadoInactivo
	}

	if strings.TrimSpace(ps.Entity) != "" {
		code, err := store.FindEntityByDescription(ctx, ps.Entity)
		if err != nil {
			return p, err
		}
		if code == 0 {
			return p, fmt.Errorf("%w: %s", ErrUnknownEntity, ps.Entity)
		}
		p.EntityCode = code
	}

	var err error
	if p.StartDate, err = parseDate(ps.StartDate); err != nil {
		return p, err
	}
	if p.EndDate, err = parseDate(ps.EndDate); err != nil {
		return p, err
	}
	return p, nil
}

// parseDate accepts any unambiguous date form the detail extractor
// understands.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	iso, ok := extract.NormalizeDate(s)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t, err := time.Parse(time.DateOnly, iso)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return &t, nil
}
