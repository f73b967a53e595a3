package cli

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Veraticus/consulta-proyectos/internal/model"
	"github.com/charmbracelet/lipgloss"
)

const (
	maxCellWidth = 40
	dateLayout   = "2006-01-02"
)

// FormatPesos renders an amount with dot thousands separators, the way
// Colombian documents write it ("$ 1.500.000").
func FormatPesos(v float64) string {
	negative := v < 0
	whole := int64(math.Round(math.Abs(v)))
	digits := fmt.Sprintf("%d", whole)

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if negative {
		return "-$ " + b.String()
	}
	return "$ " + b.String()
}

// Table renders rows under headers as aligned columns.
func Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(truncate(row[i])))
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, renderRow(headers, widths, TableHeaderStyle))
	for _, row := range rows {
		lines = append(lines, renderRow(row, widths, TableCellStyle))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderRow(cells []string, widths []int, style lipgloss.Style) string {
	rendered := make([]string, len(widths))
	for i, w := range widths {
		var cell string
		if i < len(cells) {
			cell = truncate(cells[i])
		}
		rendered[i] = TableCellStyle.Width(w + 2).Render(cell)
	}
	return style.Render(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxCellWidth {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxCellWidth-1]) + "…"
}

// ProjectRows flattens projects into table rows.
func ProjectRows(projects []model.Project) [][]string {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.Code),
			fmt.Sprintf("%d", p.Year),
			p.Name,
			p.EntityName,
			p.StatusName,
			FormatPesos(p.Value),
		})
	}
	return rows
}

// ProjectHeaders are the column titles matching ProjectRows.
var ProjectHeaders = []string{"Código", "Año", "Nombre", "Entidad", "Situación", "Valor"}

// RenderProjects renders a project table, or a notice if there are none.
func RenderProjects(projects []model.Project) string {
	if len(projects) == 0 {
		return FormatInfo("No se encontraron proyectos")
	}
	return Table(ProjectHeaders, ProjectRows(projects))
}

// RenderDescriptor explains a query descriptor.
func RenderDescriptor(d model.QueryDescriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Patrón:    %s\n", d.Pattern)
	predicate := d.Predicate
	if predicate == "" {
		predicate = "(sin filtro)"
	}
	fmt.Fprintf(&b, "Filtro:    %s\n", CodeStyle.Render(predicate))
	for _, name := range slices.Sorted(maps.Keys(d.Params)) {
		fmt.Fprintf(&b, "  :%s = %v\n", name, d.Params[name])
	}
	if d.OrderBy != "" {
		fmt.Fprintf(&b, "Orden:     %s\n", d.OrderBy)
	}
	if d.Limit > 0 {
		fmt.Fprintf(&b, "Límite:    %d\n", d.Limit)
	}
	return RenderBox("Consulta", strings.TrimRight(b.String(), "\n"))
}

// RenderDetails lists the extracted fields, or a notice if none were found.
func RenderDetails(d model.ExtractedDetails) string {
	if d.Empty() {
		return FormatInfo("No se extrajeron datos")
	}
	var b strings.Builder
	field := func(label string, v *string) {
		if v != nil {
			fmt.Fprintf(&b, "%-14s %s\n", label+":", *v)
		}
	}
	field("Nombre", d.Name)
	field("Objeto", d.ObjectText)
	field("Entidad", d.EntityName)
	if d.Amount != nil {
		fmt.Fprintf(&b, "%-14s %s\n", "Valor:", FormatPesos(*d.Amount))
	}
	field("Fecha inicio", d.StartDate)
	field("Fecha final", d.EndDate)
	return RenderBox("Datos extraídos", strings.TrimRight(b.String(), "\n"))
}

// FormatDate renders an optional date.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
