// Package textutil holds the Spanish-aware text normalisation shared by the
// query generator, the detail extractor and the storage search columns.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Clean drops invalid UTF-8 and control characters (except newlines and
// tabs) and composes the text to NFC so accented letters have one form.
func Clean(text string) string {
	text = strings.ToValidUTF8(text, "")
	text = norm.NFC.String(text)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}

// Lower cleans text and lower-cases it with Spanish casing rules,
// keeping accents ("EDUCACIÓN" -> "educación").
func Lower(text string) string {
	// A Caser carries state, so one is built per call.
	return cases.Lower(language.Spanish).String(Clean(text))
}

// SearchKey is the form stored in *_busqueda columns and compared against
// lowered user input.
func SearchKey(text string) string {
	return strings.Join(strings.Fields(Lower(text)), " ")
}

// TrimPhrase trims whitespace and trailing sentence punctuation.
func TrimPhrase(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), " \t\n.,;:!?¿¡\"'»”")
}

// LikeEscape is the escape character of patterns built by LikeContains.
const LikeEscape = `\`

var (
	likeEscaper   = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	likeUnescaper = strings.NewReplacer(`\\`, `\`, `\%`, `%`, `\_`, `_`)
)

// LikeContains builds a LIKE pattern matching values that contain s
// literally. Wildcards in s are escaped with LikeEscape.
func LikeContains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// LikeFragment recovers the literal text of a LikeContains pattern.
func LikeFragment(pattern string) string {
	pattern = strings.TrimSuffix(strings.TrimPrefix(pattern, "%"), "%")
	return likeUnescaper.Replace(pattern)
}
