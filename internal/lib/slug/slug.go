// Package slug turns free-text gallery titles into URL-safe identifiers.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is returned when normalization leaves nothing usable.
const Fallback = "galerie"

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// deaccent decomposes to NFKD, drops combining marks and recomposes,
// so "Café" becomes "Cafe".
var deaccent = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize converts an arbitrary title into a lower-case, hyphen-delimited
// slug. It is a pure function and never returns an empty string.
func Normalize(title string) string {
	s := strings.ToLower(title)

	if folded, _, err := transform.String(deaccent, s); err == nil {
		s = folded
	}

	s = nonAlnum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" {
		return Fallback
	}
	return s
}
