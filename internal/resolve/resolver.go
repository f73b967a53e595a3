// Package resolve maps a free-text entity name to an entity code.
package resolve

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/consulta-proyectos/internal/textutil"
)

// minTokenLength is the shortest token kept for fuzzy lookups.
const minTokenLength = 4

// stopWords are ignored when building the fuzzy lookup. Territorial
// qualifiers are included because almost every entity carries one.
var stopWords = map[string]struct{}{
	"para":          {},
	"entre":         {},
	"desde":         {},
	"hasta":         {},
	"como":          {},
	"donde":         {},
	"cuando":        {},
	"porque":        {},
	"entonces":      {},
	"aunque":        {},
	"nacional":      {},
	"departamental": {},
	"distrital":     {},
	"municipal":     {},
}

// EntityLookup is the data access the resolver needs. Both methods return
// 0 and a nil error when nothing matches.
type EntityLookup interface {
	// FindEntityByDescription matches the description exactly, ignoring case.
	FindEntityByDescription(ctx context.Context, description string) (int, error)
	// FindEntityByTokens returns the lowest code whose description contains
	// any of the tokens, ignoring case.
	FindEntityByTokens(ctx context.Context, tokens []string) (int, error)
}

// Resolver resolves entity names with an exact-then-fuzzy strategy.
type Resolver struct {
	lookup EntityLookup
}

// New creates a Resolver over lookup.
func New(lookup EntityLookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve returns the entity code for name, or 0 if nothing matches.
// An error is returned only when the lookup itself fails.
func (r *Resolver) Resolve(ctx context.Context, name string) (int, error) {
	name = textutil.SearchKey(name)
	if name == "" {
		return 0, nil
	}

	code, err := r.lookup.FindEntityByDescription(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("exact entity lookup: %w", err)
	}
	if code != 0 {
		return code, nil
	}

	tokens := Tokens(name)
	if len(tokens) == 0 {
		return 0, nil
	}

	code, err = r.lookup.FindEntityByTokens(ctx, tokens)
	if err != nil {
		return 0, fmt.Errorf("fuzzy entity lookup: %w", err)
	}
	return code, nil
}

// Tokens splits name on whitespace and keeps the lower-cased tokens longer
// than three characters that are not stop words.
func Tokens(name string) []string {
	var tokens []string
	for _, tok := range strings.Fields(textutil.Lower(name)) {
		tok = textutil.TrimPhrase(tok)
		if utf8.RuneCountInString(tok) < minTokenLength {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
