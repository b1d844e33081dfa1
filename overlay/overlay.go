// Package overlay builds the selectable text layer: a container of
// absolutely positioned, transparent text spans congruent with the viewport a
// page raster was produced for. Native selection over the raster works
// because every span sits exactly where its run was drawn.
package overlay

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/docpane/docpane/coords"
	"github.com/docpane/docpane/engine"
)

// Layer is a text overlay container. The zero value is not usable; construct
// with NewLayer.
type Layer struct {
	mu        sync.Mutex
	container *html.Node
	viewport  engine.Viewport
	spans     int
}

// NewLayer returns an empty overlay layer.
func NewLayer() *Layer {
	return &Layer{container: newContainer(engine.Viewport{})}
}

func newContainer(vp engine.Viewport) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr: []html.Attribute{
			{Key: "class", Val: "text-overlay"},
			{Key: "style", Val: fmt.Sprintf(
				"position:absolute;top:0;left:0;width:%.2fpx;height:%.2fpx;overflow:hidden",
				vp.Width, vp.Height)},
		},
	}
}

// Render populates the layer with one span per text run, positioned in
// top-left-origin viewport coordinates. Previous content is replaced. The
// supplied viewport must be the one the raster was rendered with.
func (l *Layer) Render(ctx context.Context, runs []engine.TextRun, vp engine.Viewport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	container := newContainer(vp)
	spans := 0
	for _, run := range runs {
		if strings.TrimSpace(run.Text) == "" {
			continue
		}
		fontSize := run.Transform.ScaleY()
		if fontSize < 0 {
			fontSize = -fontSize
		}
		top := coords.ToTopDown(run.Transform.TranslateY(), vp.Height, fontSize)
		span := &html.Node{
			Type:     html.ElementNode,
			Data:     "span",
			DataAtom: atom.Span,
			Attr: []html.Attribute{
				{Key: "style", Val: fmt.Sprintf(
					"position:absolute;left:%.2fpx;top:%.2fpx;width:%.2fpx;font-size:%.2fpx;color:transparent;white-space:pre",
					run.Transform.TranslateX(), top, run.Width, fontSize)},
			},
		}
		span.AppendChild(&html.Node{Type: html.TextNode, Data: run.Text})
		container.AppendChild(span)
		spans++
	}

	l.mu.Lock()
	l.container = container
	l.viewport = vp
	l.spans = spans
	l.mu.Unlock()
	return nil
}

// Clear empties the layer synchronously so stale selectable text is never
// visible during a page transition.
func (l *Layer) Clear() {
	l.mu.Lock()
	l.container = newContainer(l.viewport)
	l.spans = 0
	l.mu.Unlock()
}

// SpanCount reports how many runs are currently represented.
func (l *Layer) SpanCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.spans
}

// Viewport reports the viewport the current content was rendered for.
func (l *Layer) Viewport() engine.Viewport {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.viewport
}

// HTML serializes the container for embedding in a host page.
func (l *Layer) HTML() (string, error) {
	l.mu.Lock()
	node := l.container
	l.mu.Unlock()

	var sb strings.Builder
	if err := html.Render(&sb, node); err != nil {
		return "", err
	}
	return sb.String(), nil
}
