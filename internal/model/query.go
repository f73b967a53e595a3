package model

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"sort"
)

// Descriptor validation errors.
var (
	ErrUnboundPlaceholder = errors.New("placeholder has no parameter")
	ErrUnusedParameter    = errors.New("parameter is not referenced by the predicate")
	ErrParameterConflict  = errors.New("parameter already bound")
)

// DefaultPattern identifies the fallback descriptor produced when no
// pattern matches the input text.
const DefaultPattern = "default"

var placeholderRE = regexp.MustCompile(`:([a-z_][a-z0-9_]*)`)

// QueryDescriptor is a parameterized filter over the projects view.
//
// Predicate is a boolean expression over the view's logical columns with
// named placeholders written as :name. An empty predicate selects every row.
// Parameter values are int (years, codes), float64 (amounts) or string
// (LIKE fragments already wrapped in % wildcards).
type QueryDescriptor struct {
	Params    map[string]any `json:"params"`
	Pattern   string         `json:"pattern"`
	Predicate string         `json:"predicate"`
	OrderBy   string         `json:"order_by,omitempty"`
	Limit     int            `json:"limit,omitempty"`
}

// Placeholders returns the distinct placeholder names used in the predicate, sorted.
func (d QueryDescriptor) Placeholders() []string {
	seen := make(map[string]struct{})
	for _, m := range placeholderRE.FindAllStringSubmatch(d.Predicate, -1) {
		seen[m[1]] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every placeholder has a parameter and every
// parameter is referenced.
func (d QueryDescriptor) Validate() error {
	names := d.Placeholders()
	for _, name := range names {
		if _, ok := d.Params[name]; !ok {
			return fmt.Errorf("%w: %s", ErrUnboundPlaceholder, name)
		}
	}
	for _, key := range slices.Sorted(maps.Keys(d.Params)) {
		if _, found := slices.BinarySearch(names, key); !found {
			return fmt.Errorf("%w: %s", ErrUnusedParameter, key)
		}
	}
	return nil
}

// IsDefault reports whether d is the fallback listing.
func (d QueryDescriptor) IsDefault() bool {
	return d.Pattern == DefaultPattern
}

// And returns a copy of d whose predicate also requires clause.
func (d QueryDescriptor) And(clause string, params map[string]any) (QueryDescriptor, error) {
	out := d
	out.Params = make(map[string]any, len(d.Params)+len(params))
	maps.Copy(out.Params, d.Params)
	for k, v := range params {
		if _, exists := out.Params[k]; exists {
			return d, fmt.Errorf("%w: %s", ErrParameterConflict, k)
		}
		out.Params[k] = v
	}

	if d.Predicate == "" {
		out.Predicate = clause
	} else {
		out.Predicate = "(" + d.Predicate + ") AND " + clause
	}
	return out, nil
}
