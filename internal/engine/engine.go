// Package engine answers Spanish questions about projects by translating
// them to query descriptors and running them against storage.
package engine

import (
	"context"
	"fmt"

	"github.com/Veraticus/consulta-proyectos/internal/common"
	"github.com/Veraticus/consulta-proyectos/internal/extract"
	"github.com/Veraticus/consulta-proyectos/internal/model"
	"github.com/Veraticus/consulta-proyectos/internal/pattern"
	"github.com/Veraticus/consulta-proyectos/internal/resolve"
	"github.com/Veraticus/consulta-proyectos/internal/textutil"
)

const (
	entityParam      = "entidad"
	entityCodeParam  = "cod_entidad"
	entityCodeClause = "cod_entidad = :cod_entidad"
)

// Engine orchestrates translation, entity resolution and execution.
type Engine struct {
	store      Store
	translator Translator
	extractor  DetailExtractor
	resolver   *resolve.Resolver
}

// Options control a single Ask call.
type Options struct {
	// StrictEntity narrows entity filters to the resolved entity code.
	StrictEntity bool
	// ExplainOnly skips execution.
	ExplainOnly bool
}

// Answer is the outcome of Ask.
type Answer struct {
	Details    model.ExtractedDetails `json:"details"`
	Projects   []model.Project        `json:"projects"`
	Descriptor model.QueryDescriptor  `json:"descriptor"`
	EntityCode int                    `json:"entity_code,omitempty"`
}

// Config holds configuration options for the engine.
type Config struct {
	PageSize int
}

// New creates an engine with the default rules and extractor.
func New(store Store, cfg Config) *Engine {
	return NewWith(store, pattern.NewGenerator(pattern.WithPageSize(cfg.PageSize)), extract.New())
}

// NewWith creates an engine from explicit collaborators.
func NewWith(store Store, translator Translator, extractor DetailExtractor) *Engine {
	return &Engine{
		store:      store,
		translator: translator,
		extractor:  extractor,
		resolver:   resolve.New(store),
	}
}

// Ask translates text and, unless opts.ExplainOnly is set, runs the
// resulting descriptor.
func (e *Engine) Ask(ctx context.Context, text string, opts Options) (*Answer, error) {
	d := e.translator.Generate(text)
	common.LogDebug("Translated question", common.Fields{"pattern": d.Pattern, "predicate": d.Predicate})

	answer := &Answer{
		Descriptor: d,
		Details:    e.extractor.Details(text),
	}

	if opts.StrictEntity {
		if err := e.narrowEntity(ctx, answer); err != nil {
			return nil, err
		}
	}

	if opts.ExplainOnly {
		return answer, nil
	}

	projects, err := e.store.ExecuteQuery(ctx, answer.Descriptor)
	if err != nil {
		common.LogError(err, "Query failed", common.Fields{"pattern": answer.Descriptor.Pattern})
		return nil, fmt.Errorf("failed to execute %s query: %w", answer.Descriptor.Pattern, err)
	}
	answer.Projects = projects

	common.LogDebug("Executed query", common.Fields{"pattern": answer.Descriptor.Pattern, "rows": len(projects)})
	return answer, nil
}

// narrowEntity resolves the entity text bound by the matched rule and adds
// an exact code filter when it resolves.
func (e *Engine) narrowEntity(ctx context.Context, answer *Answer) error {
	raw, ok := answer.Descriptor.Params[entityParam].(string)
	if !ok {
		return nil
	}
	name := textutil.LikeFragment(raw)

	code, err := e.resolver.Resolve(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to resolve entity %q: %w", name, err)
	}
	if code == 0 {
		common.LogDebug("Entity did not resolve, keeping text filter", common.Fields{"entity": name})
		return nil
	}

	d, err := answer.Descriptor.And(entityCodeClause, map[string]any{entityCodeParam: code})
	if err != nil {
		return fmt.Errorf("failed to narrow entity filter: %w", err)
	}
	answer.Descriptor = d
	answer.EntityCode = code
	return nil
}

// Resolve exposes the entity resolver.
func (e *Engine) Resolve(ctx context.Context, name string) (int, error) {
	return e.resolver.Resolve(ctx, name)
}

// Extract runs the detail extractor over text. It never touches storage.
func (e *Engine) Extract(text string) model.ExtractedDetails {
	details := e.extractor.Details(text)
	common.LogDebug("Extracted details", common.Fields{"fields": extract.Fields(details)})
	return details
}
