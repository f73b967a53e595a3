// Package extract pulls auxiliary project fields (name, object, entity,
// amount, dates) out of free Spanish text. It is independent of the query
// rules in package pattern and never fails: missing fields are left nil.
package extract

import (
	"regexp"
	"strings"

	"github.com/Veraticus/consulta-proyectos/internal/model"
	"github.com/Veraticus/consulta-proyectos/internal/textutil"
)

const dateToken = `(\d{1,4}[/-]\d{1,2}[/-]\d{1,4})`

var (
	quotedNameRE = regexp.MustCompile(
		`(?i)(?:proyecto\s+(?:llamado|denominado|titulado|nombrado)|nombre\s+del\s+proyecto\s*:?)\s*["“«']([^"”»'\n]+)["”»']`)
	nameRE = regexp.MustCompile(
		`(?i)(?:proyecto\s+(?:llamado|denominado|titulado|nombrado)|nombre\s+del\s+proyecto\s*:?)\s+([^\n,;.]+)`)
	objectRE = regexp.MustCompile(
		`(?im)\bobjeto(?:\s+del\s+(?:contrato|proyecto))?\s*:\s*(.+)$`)
	amountRE = regexp.MustCompile(
		`(?i)\b(?:valor|monto|cuant[ií]a|presupuesto|costo)\s*:?\s*(?:total\s+)?(?:(?:mayor|superior|menor|inferior)\s+(?:a|de|que)\s+|de\s+|es\s+de\s+)?(?:\$\s*)?(\d+(?:[.,]\d+)?)\s*(?:mil(?:lones|l[oó]n)?\b)?`)
	// qualifiedAmountRE catches "500 millones" when no cue word is present.
	qualifiedAmountRE = regexp.MustCompile(
		`(?i)(?:\$\s*)?\b(\d+(?:[.,]\d+)?)\s*mil(?:lones|l[oó]n)?\b`)
	startDateRE = regexp.MustCompile(
		`(?i)\b(?:desde|inicio|inicia|comienza|a\s+partir\s+del?)\s*:?\s*(?:el\s+)?(?:d[ií]a\s+)?` + dateToken)
	endDateRE = regexp.MustCompile(
		`(?i)\b(?:hasta|finaliza|termina|fin|final)\s*:?\s*(?:el\s+)?(?:d[ií]a\s+)?` + dateToken)
	entityCueRE = regexp.MustCompile(
		`(?i)\b(?:entidad(?:\s+contratante)?|contratante)\b\s*:?\s*(?:es\s+)?(?:la\s+|el\s+)?([^\n,;.]+)`)
	entityNounRE = regexp.MustCompile(
		`(?i)\b((?:ministerio|alcald[ií]a|gobernaci[oó]n|secretar[ií]a|instituto|superintendencia|agencia|fondo|universidad|departamento\s+administrativo)\s+[^\n,;.]+)`)

	// connectiveRE marks where a captured phrase runs into the next clause.
	connectiveRE = regexp.MustCompile(
		`(?i)\s+(?:(?:con|por)\s+(?:un\s+)?(?:valor|monto)|desde|hasta|a\s+partir|cuyo|que\s+inicia|que\s+termina)\b`)
	qualifierRE = regexp.MustCompile(
		`(?i)\s+(?:nacional|departamental|distrital|municipal)$`)
)

// Extractor implements the detail pass. The zero value is ready to use.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Details extracts every field it can find. Fields are independent of each
// other: failing to find one never prevents finding another.
func (e *Extractor) Details(text string) model.ExtractedDetails {
	text = textutil.Clean(text)

	return model.ExtractedDetails{
		Name:       name(text),
		ObjectText: object(text),
		EntityName: EntityName(text),
		Amount:     amount(text),
		StartDate:  date(startDateRE, text),
		EndDate:    date(endDateRE, text),
	}
}

func name(text string) *string {
	if m := quotedNameRE.FindStringSubmatch(text); m != nil {
		return nonEmpty(m[1])
	}
	if m := nameRE.FindStringSubmatch(text); m != nil {
		return nonEmpty(cutAtConnective(m[1]))
	}
	return nil
}

func object(text string) *string {
	if m := objectRE.FindStringSubmatch(text); m != nil {
		return nonEmpty(m[1])
	}
	return nil
}

func amount(text string) *float64 {
	m := amountRE.FindStringSubmatch(text)
	if m == nil {
		m = qualifiedAmountRE.FindStringSubmatch(text)
	}
	if m == nil {
		return nil
	}
	n, ok := textutil.ParseAmount(m[1])
	if !ok {
		return nil
	}
	v := textutil.ScaleAmount(n, m[0])
	return &v
}

func date(re *regexp.Regexp, text string) *string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	iso, ok := NormalizeDate(m[1])
	if !ok {
		return nil
	}
	return &iso
}

// EntityName finds the contracting entity named in text, without any
// trailing territorial qualifier (nacional, departamental, distrital,
// municipal).
func EntityName(text string) *string {
	for _, re := range []*regexp.Regexp{entityCueRE, entityNounRE} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		candidate := textutil.TrimPhrase(cutAtConnective(m[1]))
		candidate = qualifierRE.ReplaceAllString(candidate, "")
		if v := nonEmpty(candidate); v != nil {
			return v
		}
	}
	return nil
}

func cutAtConnective(s string) string {
	if loc := connectiveRE.FindStringIndex(s); loc != nil {
		return s[:loc[0]]
	}
	return s
}

func nonEmpty(s string) *string {
	s = textutil.TrimPhrase(s)
	if s == "" {
		return nil
	}
	return &s
}

// Fields lists the names of the extracted fields, for logging.
func Fields(d model.ExtractedDetails) string {
	var names []string
	if d.Name != nil {
		names = append(names, "name")
	}
	if d.ObjectText != nil {
		names = append(names, "object")
	}
	if d.EntityName != nil {
		names = append(names, "entity")
	}
	if d.Amount != nil {
		names = append(names, "amount")
	}
	if d.StartDate != nil {
		names = append(names, "start_date")
	}
	if d.EndDate != nil {
		names = append(names, "end_date")
	}
	return strings.Join(names, ",")
}
