package viewer

import (
	"context"
	"errors"
	"image/color"
	"sync"

	"github.com/docpane/docpane/coords"
	"github.com/docpane/docpane/engine"
)

// fakeService implements engine.Service over an in-memory fakeDoc.
type fakeService struct {
	doc     *fakeDoc
	openErr error
}

func (s *fakeService) Open(ctx context.Context, data []byte) (engine.Document, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.doc, nil
}

type fakeDoc struct {
	mu        sync.Mutex
	pageCount int
	runs      map[int][]engine.TextRun
	pageErr   map[int]error
	renderErr map[int]error

	// pageGate blocks Page() for the given page until the channel closes,
	// simulating a suspension point mid-render.
	pageGate map[int]chan struct{}
	// renderGate blocks the raster task for the given page.
	renderGate map[int]chan struct{}

	pageOpens   map[int]int
	pageCloses  map[int]int
	closedCount int
}

func newFakeDoc(pages int) *fakeDoc {
	return &fakeDoc{
		pageCount:  pages,
		runs:       make(map[int][]engine.TextRun),
		pageErr:    make(map[int]error),
		renderErr:  make(map[int]error),
		pageGate:   make(map[int]chan struct{}),
		renderGate: make(map[int]chan struct{}),
		pageOpens:  make(map[int]int),
		pageCloses: make(map[int]int),
	}
}

func (d *fakeDoc) withRuns(page int, texts ...string) *fakeDoc {
	y := 700.0
	for _, txt := range texts {
		d.runs[page] = append(d.runs[page], engine.TextRun{
			Text:      txt,
			Transform: coords.Matrix{12, 0, 0, 12, 72, y},
			Width:     float64(10 * len(txt)),
		})
		y -= 20
	}
	return d
}

func (d *fakeDoc) PageCount() int { return d.pageCount }

func (d *fakeDoc) Page(ctx context.Context, n int) (engine.Page, error) {
	d.mu.Lock()
	gate := d.pageGate[n]
	err := d.pageErr[n]
	d.pageOpens[n]++
	d.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &fakePage{doc: d, n: n}, nil
}

func (d *fakeDoc) Close() error {
	d.mu.Lock()
	d.closedCount++
	d.mu.Unlock()
	return nil
}

func (d *fakeDoc) opens(n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pageOpens[n]
}

func (d *fakeDoc) closes(n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pageCloses[n]
}

type fakePage struct {
	doc *fakeDoc
	n   int
}

func (p *fakePage) Viewport(scale float64) engine.Viewport {
	return engine.Viewport{Width: 612 * scale, Height: 792 * scale, Scale: scale}
}

func (p *fakePage) Render(ctx context.Context, target engine.RenderTarget, vp engine.Viewport) engine.RenderTask {
	t := &fakeTask{done: make(chan struct{}), cancelled: make(chan struct{})}
	p.doc.mu.Lock()
	gate := p.doc.renderGate[p.n]
	renderErr := p.doc.renderErr[p.n]
	p.doc.mu.Unlock()

	go func() {
		defer close(t.done)
		if gate != nil {
			select {
			case <-gate:
			case <-t.cancelled:
				t.err = engine.ErrCancelled
				return
			case <-ctx.Done():
				t.err = engine.ErrCancelled
				return
			}
		}
		select {
		case <-t.cancelled:
			t.err = engine.ErrCancelled
			return
		default:
		}
		if renderErr != nil {
			t.err = renderErr
			return
		}
		img := target.Image()
		img.Set(0, 0, color.RGBA{R: uint8(p.n), A: 255})
	}()
	return t
}

func (p *fakePage) TextContent(ctx context.Context) ([]engine.TextRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	return p.doc.runs[p.n], nil
}

func (p *fakePage) Close() error {
	p.doc.mu.Lock()
	p.doc.pageCloses[p.n]++
	p.doc.mu.Unlock()
	return nil
}

type fakeTask struct {
	done       chan struct{}
	cancelled  chan struct{}
	cancelOnce sync.Once
	err        error
}

func (t *fakeTask) Wait() error {
	<-t.done
	return t.err
}

func (t *fakeTask) Cancel() {
	t.cancelOnce.Do(func() { close(t.cancelled) })
}

// countingOverlay records renders and clears.
type countingOverlay struct {
	mu      sync.Mutex
	renders int
	clears  int
	lastVP  engine.Viewport
	runs    int
}

func (o *countingOverlay) Render(ctx context.Context, runs []engine.TextRun, vp engine.Viewport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.mu.Lock()
	o.renders++
	o.lastVP = vp
	o.runs = len(runs)
	o.mu.Unlock()
	return nil
}

func (o *countingOverlay) Clear() {
	o.mu.Lock()
	o.clears++
	o.runs = 0
	o.mu.Unlock()
}

var errBoom = errors.New("boom")
