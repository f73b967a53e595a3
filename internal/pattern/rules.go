package pattern

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/consulta-proyectos/internal/model"
	"github.com/Veraticus/consulta-proyectos/internal/textutil"
)

// Rule identifiers, in registration order.
const (
	IDValueAbove       = "valor_mayor"
	IDYear             = "anio"
	IDEntity           = "entidad"
	IDYearRange        = "rango_anios"
	IDStatus           = "situacion"
	IDYearEntity       = "anio_entidad"
	IDStatusYearEntity = "situacion_anio_entidad"
)

// Shared regex fragments.
const (
	entityTail = `(?:del|de|con|por|para)\s+(?:la\s+|el\s+|los\s+|las\s+)?(.+)`
	statusWord = `(\p{L}+ción|suscrit[oa]s)`
	yearPrefix = `(?:del\s+año\s+|año\s+)?`
)

var (
	valueAboveRE = regexp.MustCompile(
		`proyectos\s+con\s+(?:un\s+)?valor\s+(?:mayor|superior)\s+(?:a|de|que)\s+\$?\s*(\d+(?:[.,]\d+)?).*`)
	yearRE = regexp.MustCompile(
		`proyectos\s+(?:en\s+el|en|del|de\s+el|de)\s+(?:año\s+|anio\s+)?(\d{4})\b`)
	entityRE = regexp.MustCompile(
		`proyectos\s+` + entityTail)
	yearRangeRE = regexp.MustCompile(
		`proyectos\s+(?:desde|entre)\s+(?:el\s+)?(?:año\s+)?(\d{4})\s+(?:y|a|hasta|al)\s+(?:el\s+)?(?:año\s+)?(\d{4})\b`)
	statusRE = regexp.MustCompile(
		`proyectos\s+(?:en\s+)?` + statusWord)
	yearEntityRE = regexp.MustCompile(
		`proyectos\s+` + yearPrefix + `(\d{4})\s+` + entityTail)
	statusYearEntityRE = regexp.MustCompile(
		`proyectos\s+` + yearPrefix + `(\d{4})\s+(?:en\s+)?` + statusWord + `\s+` + entityTail)
)

// statusStems maps the stem of a status word to its situación code.
var statusStems = []struct {
	stem string
	code int
}{
	{"suscri", model.SituacionSuscrito},
	{"ejecu", model.SituacionEnEjecucion},
	{"liquida", model.SituacionLiquidado},
}

// DefaultPatterns returns the project query rules in precedence order.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{ID: IDValueAbove, Regex: valueAboveRE, Generate: valueAbove},
		{ID: IDYear, Regex: yearRE, Generate: year},
		{ID: IDEntity, Regex: entityRE, Generate: entity},
		{ID: IDYearRange, Regex: yearRangeRE, Generate: yearRange},
		{ID: IDStatus, Regex: statusRE, Generate: status},
		{ID: IDYearEntity, Regex: yearEntityRE, Generate: yearEntity},
		{ID: IDStatusYearEntity, Regex: statusYearEntityRE, Generate: statusYearEntity},
	}
}

func valueAbove(groups []string) model.QueryDescriptor {
	n, _ := textutil.ParseAmount(groups[1])
	var w where
	w.add("valor_proyecto > :valor", "valor", textutil.ScaleAmount(n, groups[0]))
	return w.descriptor()
}

func year(groups []string) model.QueryDescriptor {
	var w where
	w.year(groups[1])
	return w.descriptor()
}

func entity(groups []string) model.QueryDescriptor {
	var w where
	w.entity(groups[1])
	return w.descriptor()
}

func yearRange(groups []string) model.QueryDescriptor {
	from, _ := strconv.Atoi(groups[1])
	to, _ := strconv.Atoi(groups[2])
	if from > to {
		from, to = to, from
	}
	var w where
	w.add("anio_proyecto BETWEEN :anio_inicio AND :anio_fin", "anio_inicio", from)
	w.bind("anio_fin", to)
	return w.descriptor()
}

func status(groups []string) model.QueryDescriptor {
	var w where
	w.status(groups[1])
	return w.descriptor()
}

func yearEntity(groups []string) model.QueryDescriptor {
	var w where
	w.year(groups[1])
	w.entity(groups[2])
	return w.descriptor()
}

func statusYearEntity(groups []string) model.QueryDescriptor {
	var w where
	w.status(groups[2])
	w.year(groups[1])
	w.entity(groups[3])
	return w.descriptor()
}

// where accumulates AND-ed clauses and their parameters.
type where struct {
	params  map[string]any
	clauses []string
}

func (w *where) add(clause, name string, value any) {
	w.clauses = append(w.clauses, clause)
	w.bind(name, value)
}

func (w *where) bind(name string, value any) {
	if w.params == nil {
		w.params = make(map[string]any)
	}
	w.params[name] = value
}

func (w *where) year(digits string) {
	y, _ := strconv.Atoi(digits)
	w.add("anio_proyecto = :anio", "anio", y)
}

func (w *where) entity(text string) {
	w.add("entidad_busqueda LIKE :entidad", "entidad", textutil.LikeContains(textutil.SearchKey(textutil.TrimPhrase(text))))
}

func (w *where) status(word string) {
	for _, s := range statusStems {
		if strings.HasPrefix(word, s.stem) {
			w.add("cod_situacion = :situacion", "situacion", s.code)
			return
		}
	}
	w.add("situacion_busqueda LIKE :situacion", "situacion", textutil.LikeContains(word))
}

func (w *where) descriptor() model.QueryDescriptor {
	return model.QueryDescriptor{
		Predicate: strings.Join(w.clauses, " AND "),
		Params:    w.params,
	}
}
