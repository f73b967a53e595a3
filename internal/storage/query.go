package storage

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Veraticus/consulta-proyectos/internal/model"
	"github.com/Veraticus/consulta-proyectos/internal/textutil"
)

// viewColumns are the logical columns a descriptor may reference.
var viewColumns = map[string]struct{}{
	"codigo_proyecto":    {},
	"anio_proyecto":      {},
	"nombre_proyecto":    {},
	"objeto_proyecto":    {},
	"valor_proyecto":     {},
	"fecha_inicio":       {},
	"fecha_final":        {},
	"cod_entidad":        {},
	"entidad":            {},
	"entidad_busqueda":   {},
	"cod_situacion":      {},
	"situacion":          {},
	"situacion_busqueda": {},
	"estado":             {},
}

var predicateKeywords = map[string]struct{}{
	"and": {}, "or": {}, "not": {}, "like": {}, "between": {},
	"in": {}, "is": {}, "null": {},
}

var (
	identifierRE = regexp.MustCompile(`:?[A-Za-z_][A-Za-z0-9_]*`)
	orderTermRE  = regexp.MustCompile(`(?i)^([a-z_]+)(?:\s+(asc|desc))?$`)
	likeParamRE  = regexp.MustCompile(`(?i)\bLIKE\s+(:[A-Za-z_][A-Za-z0-9_]*)`)
)

// ExecuteQuery runs a query descriptor against the projects view.
func (s *SQLiteStorage) ExecuteQuery(ctx context.Context, d model.QueryDescriptor) ([]model.Project, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query, args, err := buildProjectQuery(d)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s query: %w", d.Pattern, err)
	}
	defer func() { _ = rows.Close() }()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// buildProjectQuery renders d as SQL over vista_proyectos with named arguments.
func buildProjectQuery(d model.QueryDescriptor) (string, []any, error) {
	if err := d.Validate(); err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	if err := checkPredicate(d.Predicate); err != nil {
		return "", nil, err
	}
	if err := checkOrderBy(d.OrderBy); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(projectColumns)
	b.WriteString(" FROM vista_proyectos")
	if d.Predicate != "" {
		// LIKE parameters are built with textutil.LikeContains.
		b.WriteString(" WHERE ")
		b.WriteString(likeParamRE.ReplaceAllString(d.Predicate, "LIKE ${1} ESCAPE '"+textutil.LikeEscape+"'"))
	}
	if d.OrderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(d.OrderBy)
	}
	if d.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(d.Limit))
	}

	args := make([]any, 0, len(d.Params))
	for _, name := range slices.Sorted(maps.Keys(d.Params)) {
		args = append(args, sql.Named(name, d.Params[name]))
	}
	return b.String(), args, nil
}

// checkPredicate rejects predicates that reference anything other than
// view columns, operators and placeholders.
func checkPredicate(predicate string) error {
	if strings.ContainsAny(predicate, ";'\"`") || strings.Contains(predicate, "--") {
		return fmt.Errorf("%w: predicate contains literals or statement separators", ErrInvalidQuery)
	}
	for _, ident := range identifierRE.FindAllString(predicate, -1) {
		if strings.HasPrefix(ident, ":") {
			continue
		}
		lower := strings.ToLower(ident)
		if _, ok := predicateKeywords[lower]; ok {
			continue
		}
		if _, ok := viewColumns[lower]; !ok {
			return fmt.Errorf("%w: unknown column %q", ErrInvalidQuery, ident)
		}
	}
	return nil
}

func checkOrderBy(orderBy string) error {
	if orderBy == "" {
		return nil
	}
	for _, term := range strings.Split(orderBy, ",") {
		m := orderTermRE.FindStringSubmatch(strings.TrimSpace(term))
		if m == nil {
			return fmt.Errorf("%w: bad order term %q", ErrInvalidQuery, term)
		}
		if _, ok := viewColumns[strings.ToLower(m[1])]; !ok {
			return fmt.Errorf("%w: unknown order column %q", ErrInvalidQuery, m[1])
		}
	}
	return nil
}
