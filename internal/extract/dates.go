package extract

import "time"

const isoDate = "2006-01-02"

// genericLayouts are accepted as-is, without the round-trip check.
var genericLayouts = []string{
	isoDate,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// explicitLayouts cover day/month/year, month/day/year and year/month/day
// with slash and dash separators, zero-padded and not.
var explicitLayouts = []string{
	"02/01/2006", "2/1/2006",
	"01/02/2006", "1/2/2006",
	"2006/01/02", "2006/1/2",
	"02-01-2006", "2-1-2006",
	"01-02-2006", "1-2-2006",
	"2006-1-2",
}

// NormalizeDate converts a date token to YYYY-MM-DD.
//
// A layout is only considered when formatting the parsed time with the same
// layout reproduces the token exactly. If the surviving layouts disagree on
// the date (03/04/2023 is both 3 April and 4 March) the token is ambiguous
// and false is returned.
func NormalizeDate(token string) (string, bool) {
	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return t.Format(isoDate), true
		}
	}

	var found string
	for _, layout := range explicitLayouts {
		t, err := time.Parse(layout, token)
		if err != nil || t.Format(layout) != token {
			continue
		}
		iso := t.Format(isoDate)
		switch found {
		case "":
			found = iso
		case iso:
		default:
			return "", false
		}
	}
	return found, found != ""
}
