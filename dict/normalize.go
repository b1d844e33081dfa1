// Package dict turns user-selected text into canonical lookup keys and
// resolves them to dictionary definitions, memoizing results for the lifetime
// of the session.
package dict

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidWord is returned when selected text cannot be reduced to a
// canonical lookup key. Callers suppress it silently; it must never surface
// as a popup.
var ErrInvalidWord = errors.New("dict: invalid word format")

// stripMarks decomposes and drops combining marks, so "café" folds to "cafe"
// before the letters-only filter runs.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize reduces raw text to its canonical lookup key: lowercase Latin
// letters only. The same function gates validity and produces cache keys, so
// the two can never disagree. The boolean is false when fewer than two
// letters survive.
func Normalize(raw string) (string, bool) {
	folded, _, err := transform.String(stripMarks, raw)
	if err != nil {
		folded = raw
	}
	lower := strings.ToLower(strings.TrimSpace(folded))

	var sb strings.Builder
	for _, r := range lower {
		if r >= 'a' && r <= 'z' {
			sb.WriteRune(r)
		}
	}
	word := sb.String()
	if len(word) < 2 {
		return "", false
	}
	for _, r := range word {
		if r < 'a' || r > 'z' {
			return "", false
		}
	}
	return word, true
}
