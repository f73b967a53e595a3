package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/consulta-proyectos/internal/textutil"
)

// ErrMissingColumn is returned when a required CSV column is absent.
var ErrMissingColumn = errors.New("missing required column")

// CSV column names, matched case-insensitively.
const (
	colCode      = "codigo"
	colYear      = "anio"
	colName      = "nombre"
	colObject    = "objeto"
	colValue     = "valor"
	colStartDate = "fecha_inicio"
	colEndDate   = "fecha_final"
	colEntity    = "entidad"
	colStatus    = "situacion"
	colState     = "estado"
)

var requiredColumns = []string{colYear, colName}

// columnAliases maps accented or alternate headers to canonical names.
var columnAliases = map[string]string{
	"código":          colCode,
	"año":             colYear,
	"situación":       colStatus,
	"fecha_fin":       colEndDate,
	"valor_total":     colValue,
	"codigo_proyecto": colCode,
	"anio_proyecto":   colYear,
}

// ParseProjectsCSV reads project rows from a CSV with a header line. The
// delimiter is detected from the header: ';' when it contains one, else ','.
func ParseProjectsCSV(r io.Reader) ([]ProjectSeed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	text := strings.TrimPrefix(textutil.Clean(string(data)), "\ufeff")

	reader := csv.NewReader(strings.NewReader(text))
	if header, _, _ := strings.Cut(text, "\n"); strings.Contains(header, ";") {
		reader.Comma = ';'
	}
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := textutil.Lower(strings.TrimSpace(h))
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		index[name] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var seeds []ProjectSeed
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ps, err := rowToSeed(index, record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		seeds = append(seeds, ps)
	}
	return seeds, nil
}

func rowToSeed(index map[string]int, record []string) (ProjectSeed, error) {
	field := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	integer := func(col string) (int, error) {
		v := field(col)
		if v == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("column %s: invalid number %q", col, v)
		}
		return n, nil
	}

	ps := ProjectSeed{
		Name:      field(colName),
		Object:    field(colObject),
		Entity:    field(colEntity),
		StartDate: field(colStartDate),
		EndDate:   field(colEndDate),
	}

	var err error
	if ps.Code, err = integer(colCode); err != nil {
		return ps, err
	}
	if ps.Year, err = integer(colYear); err != nil {
		return ps, err
	}
	if ps.Status, err = integer(colStatus); err != nil {
		return ps, err
	}
	if v := field(colValue); v != "" {
		amount, ok := textutil.ParseAmount(strings.TrimSpace(strings.TrimPrefix(v, "$")))
		if !ok {
			return ps, fmt.Errorf("column %s: invalid amount %q", colValue, v)
		}
		ps.Value = amount
	}
	if v := field(colState); v != "" {
		active := v == "1" || strings.EqualFold(v, "activo") || strings.EqualFold(v, "true")
		ps.Active = &active
	}
	return ps, nil
}
