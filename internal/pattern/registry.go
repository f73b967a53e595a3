package pattern

import (
	"slices"
	"sync"
)

// Registry is an ordered, read-only list of rules. Registration order is
// precedence: the first rule whose regex matches wins and no later rule
// is consulted, even if it would match a longer span.
type Registry struct {
	patterns []Pattern
}

// NewRegistry creates a registry with the given rules in precedence order.
// Rules without a regex or a generator are skipped.
func NewRegistry(patterns ...Pattern) *Registry {
	r := &Registry{patterns: make([]Pattern, 0, len(patterns))}
	for _, p := range patterns {
		if p.Regex == nil || p.Generate == nil {
			continue
		}
		r.patterns = append(r.patterns, p)
	}
	return r
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	return NewRegistry(DefaultPatterns()...)
})

// DefaultRegistry returns the process-wide registry of project query rules.
func DefaultRegistry() *Registry {
	return defaultRegistry()
}

// Find returns the first rule matching the already lower-cased text.
func (r *Registry) Find(lowered string) (Match, bool) {
	for _, p := range r.patterns {
		if groups := p.Regex.FindStringSubmatch(lowered); groups != nil {
			return Match{Pattern: p, Groups: groups}, true
		}
	}
	return Match{}, false
}

// Patterns returns a copy of the rules in precedence order.
func (r *Registry) Patterns() []Pattern {
	return slices.Clone(r.patterns)
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.patterns)
}
