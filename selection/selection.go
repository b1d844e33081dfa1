// Package selection reduces the platform's native text-selection result to a
// single normalized candidate word for definition lookup.
package selection

import (
	"strings"

	"github.com/docpane/docpane/coords"
	"github.com/docpane/docpane/dict"
)

// Provider exposes the platform text-selection API: the currently selected
// text after a user gesture, or empty when nothing is selected.
type Provider interface {
	SelectedText() string
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func() string

func (f ProviderFunc) SelectedText() string { return f() }

// Candidate is one word picked from a selection, anchored at the gesture
// position so the popup can be placed next to it.
type Candidate struct {
	Word string
	X    float64
	Y    float64
}

// Reduce picks the first token of selected, normalizes it, and anchors it at
// the gesture point. The boolean is false when the selection is empty or the
// token fails normalization; callers show nothing in that case.
func Reduce(selected string, at coords.Point) (Candidate, bool) {
	fields := strings.Fields(selected)
	if len(fields) == 0 {
		return Candidate{}, false
	}
	word, ok := dict.Normalize(fields[0])
	if !ok {
		return Candidate{}, false
	}
	return Candidate{Word: word, X: at.X, Y: at.Y}, true
}

// Resolver couples a selection provider with Reduce.
type Resolver struct {
	provider Provider
}

// NewResolver builds a resolver over the given provider.
func NewResolver(p Provider) *Resolver {
	return &Resolver{provider: p}
}

// ResolveAt reads the current selection and reduces it, anchored at the
// gesture point.
func (r *Resolver) ResolveAt(at coords.Point) (Candidate, bool) {
	if r.provider == nil {
		return Candidate{}, false
	}
	return Reduce(r.provider.SelectedText(), at)
}
