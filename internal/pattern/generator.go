package pattern

import (
	"github.com/Veraticus/consulta-proyectos/internal/model"
	"github.com/Veraticus/consulta-proyectos/internal/textutil"
)

const (
	// DefaultPageSize caps the fallback listing.
	DefaultPageSize = 50

	// RecentFirst orders projects newest first.
	RecentFirst = "anio_proyecto DESC, codigo_proyecto DESC"

	activeClause = "estado = :estado"
	activeParam  = "estado"
)

// Generator implements Translator over a Registry.
type Generator struct {
	registry *Registry
	pageSize int
}

// Option configures a Generator.
type Option func(*Generator)

// WithRegistry replaces the default rule registry.
func WithRegistry(r *Registry) Option {
	return func(g *Generator) {
		if r != nil {
			g.registry = r
		}
	}
}

// WithPageSize sets the row cap of the fallback listing.
func WithPageSize(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.pageSize = n
		}
	}
}

// NewGenerator creates a generator over the default registry.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		registry: DefaultRegistry(),
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate translates text into a query descriptor. The first matching
// rule wins; if none matches the default listing is returned.
func (g *Generator) Generate(text string) model.QueryDescriptor {
	m, ok := g.Match(text)
	if !ok {
		return g.Default()
	}

	d := m.Pattern.Generate(m.Groups)
	d.Pattern = m.Pattern.ID
	if d.OrderBy == "" {
		d.OrderBy = RecentFirst
	}
	return requireActive(d)
}

// Match reports which rule, if any, fires for text.
func (g *Generator) Match(text string) (Match, bool) {
	return g.registry.Find(textutil.Lower(text))
}

// Default is the unfiltered, most recent first listing.
func (g *Generator) Default() model.QueryDescriptor {
	return model.QueryDescriptor{
		Pattern: model.DefaultPattern,
		Params:  map[string]any{},
		OrderBy: RecentFirst,
		Limit:   g.pageSize,
	}
}

// requireActive restricts a rule's predicate to active projects.
func requireActive(d model.QueryDescriptor) model.QueryDescriptor {
	params := make(map[string]any, len(d.Params)+1)
	for k, v := range d.Params {
		params[k] = v
	}
	params[activeParam] = model.EstadoActivo

	if d.Predicate == "" {
		d.Predicate = activeClause
	} else {
		d.Predicate = activeClause + " AND (" + d.Predicate + ")"
	}
	d.Params = params
	return d
}
