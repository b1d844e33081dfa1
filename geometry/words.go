// Package geometry maps raw text-run geometry into word-level bounding boxes
// in viewport space and resolves screen points to the nearest word.
package geometry

import (
	"strings"
	"unicode"

	"github.com/docpane/docpane/coords"
	"github.com/docpane/docpane/engine"
)

// MinWordHeight is the floor applied to the per-run font size estimate, in
// logical units. It keeps tiny vertical scales from producing degenerate
// rectangles that are impossible to hit.
const MinWordHeight = 12.0

// WordRect is one word's bounding box in top-left-origin viewport pixels.
// The word text is cleaned of surrounding punctuation and never empty.
type WordRect struct {
	Word   string
	X      float64
	Y      float64
	Width  float64
	Height float64

	// Center point, precomputed for proximity search.
	CenterX float64
	CenterY float64
}

// ExtractWords converts text runs into word rectangles. Character widths are
// approximated as uniform within a run (run width divided by run length),
// which is adequate for hit testing but not for selection fidelity.
func ExtractWords(runs []engine.TextRun, vp engine.Viewport) []WordRect {
	var words []WordRect
	for _, run := range runs {
		if strings.TrimSpace(run.Text) == "" {
			continue
		}

		height := run.Transform.ScaleY()
		if height < 0 {
			height = -height
		}
		if height < MinWordHeight {
			height = MinWordHeight
		}

		chars := []rune(run.Text)
		charWidth := run.Width / float64(len(chars))
		y := coords.ToTopDown(run.Transform.TranslateY(), vp.Height, height)

		cursor := 0
		for _, token := range strings.Fields(run.Text) {
			word := strings.TrimFunc(token, func(r rune) bool { return !isWordRune(r) })
			if word == "" {
				cursor += len([]rune(token)) + 1
				continue
			}
			offset := indexFrom(chars, []rune(word), cursor)
			if offset < 0 {
				cursor += len([]rune(token)) + 1
				continue
			}
			wordLen := len([]rune(word))
			x := run.Transform.TranslateX() + float64(offset)*charWidth
			w := charWidth * float64(wordLen)
			words = append(words, WordRect{
				Word:    word,
				X:       x,
				Y:       y,
				Width:   w,
				Height:  height,
				CenterX: x + w/2,
				CenterY: y + height/2,
			})
			cursor = offset + wordLen
		}
	}
	return words
}

// isWordRune reports whether r can appear inside a word. Apostrophes and
// hyphens survive so contractions and compounds stay intact.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-'
}

// indexFrom finds needle in haystack at or after start, in rune offsets.
// Starting the search at the cursor keeps repeated words from collapsing onto
// the first occurrence.
func indexFrom(haystack, needle []rune, start int) int {
	if start < 0 {
		start = 0
	}
	for i := start; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
