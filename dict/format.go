package dict

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
)

// RenderHTML formats an entry as an HTML fragment for the definition popup.
// The entry is laid out as Markdown and converted with goldmark, so hosts
// embedding the fragment get consistent markup for emphasis and quoting.
func RenderHTML(e Entry) (string, error) {
	var md strings.Builder
	fmt.Fprintf(&md, "**%s**", e.Word)
	if e.Phonetic != "" {
		fmt.Fprintf(&md, " *%s*", e.Phonetic)
	}
	if e.PartOfSpeech != "" {
		fmt.Fprintf(&md, " (_%s_)", e.PartOfSpeech)
	}
	fmt.Fprintf(&md, "\n\n%s\n", e.Definition)
	if e.Example != "" {
		fmt.Fprintf(&md, "\n> %s\n", e.Example)
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md.String()), &buf); err != nil {
		return "", fmt.Errorf("render definition: %w", err)
	}
	return buf.String(), nil
}
