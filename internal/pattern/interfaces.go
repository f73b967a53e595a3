// Package pattern translates free-text Spanish questions about projects
// into parameterized query descriptors using an ordered registry of
// regular-expression rules.
package pattern

import (
	"regexp"

	"github.com/Veraticus/consulta-proyectos/internal/model"
)

// Translator turns free text into a query descriptor. It never fails:
// text that matches no rule yields the default listing.
type Translator interface {
	Generate(text string) model.QueryDescriptor
}

// GenerateFunc builds the rule-specific part of a descriptor from the
// regex submatches. groups[0] is the whole matched span.
type GenerateFunc func(groups []string) model.QueryDescriptor

// Pattern is one (matcher, generator) rule of the registry.
type Pattern struct {
	Regex    *regexp.Regexp
	Generate GenerateFunc
	ID       string
}

// Match is the rule that fired for a text, with its submatches.
type Match struct {
	Pattern Pattern
	Groups  []string
}
