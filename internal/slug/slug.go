// Package slug derives URL-safe identifiers from display names.
package slug

import (
	"strings"
	"unicode"
)

// Make lowercases name, drops everything that is not a letter, digit,
// space, hyphen or underscore, collapses separator runs into single
// hyphens, and trims hyphens from both edges.
//
// "Engineering Resources" → "engineering-resources".
func Make(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}

	// Collapse hyphen runs.
	var out strings.Builder
	out.Grow(b.Len())
	prevHyphen := false
	for _, r := range b.String() {
		if r == '-' {
			if prevHyphen {
				continue
			}
			prevHyphen = true
		} else {
			prevHyphen = false
		}
		out.WriteRune(r)
	}

	return strings.Trim(out.String(), "-")
}
