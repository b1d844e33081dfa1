// Package viewer drives the page render lifecycle: opening documents,
// rasterizing one page at a time, keeping the selectable text overlay aligned
// with the raster, and discarding stale work when navigation or resizes
// supersede an in-flight render.
package viewer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/docpane/docpane/coords"
	"github.com/docpane/docpane/engine"
	"github.com/docpane/docpane/geometry"
	"github.com/docpane/docpane/observability"
	"github.com/docpane/docpane/raster"
)

// renderScale pins the logical render scale for both the raster and the text
// overlay. The two must always use the same viewport; a mismatch breaks the
// alignment between pixels and selectable text.
const renderScale = 1.0

const (
	defaultLoadTimeout    = 20 * time.Second
	defaultDebounceWindow = 150 * time.Millisecond
)

// OverlayRenderer populates and clears the selectable text layer. It must use
// the exact viewport the raster was rendered with.
type OverlayRenderer interface {
	Render(ctx context.Context, runs []engine.TextRun, vp engine.Viewport) error
	Clear()
}

// Controller owns the current document session: the document and page
// handles, the render generation counter, and the lifecycle state machine.
// All mutation goes through it; at most one render is in flight at a time.
type Controller struct {
	service     engine.Service
	overlay     OverlayRenderer
	logger      observability.Logger
	tracer      observability.Tracer
	loadTimeout time.Duration
	debounce    time.Duration
	deviceScale float64
	closePopup  func()

	mu             sync.Mutex
	generation     uint64
	doc            engine.Document
	page           engine.Page
	task           engine.RenderTask
	surface        *raster.Surface
	words          []geometry.WordRect
	state          State
	err            error
	pageCount      int
	currentPage    int
	rendering      bool
	rerenderWanted bool
	hasTextLayer   bool
	noTextForPage  bool
	resizeTimer    *time.Timer
}

// Option configures a Controller.
type Option func(*Controller)

// WithOverlay attaches the selectable text layer renderer.
func WithOverlay(ov OverlayRenderer) Option {
	return func(c *Controller) { c.overlay = ov }
}

// WithLogger injects a structured logger.
func WithLogger(l observability.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithTracer injects a tracer for render spans.
func WithTracer(tr observability.Tracer) Option {
	return func(c *Controller) { c.tracer = tr }
}

// WithLoadTimeout bounds document opens against the rendering service.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Controller) { c.loadTimeout = d }
}

// WithDebounceWindow sets the resize quiescence window.
func WithDebounceWindow(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

// WithDeviceScale sets the device pixel ratio used when sizing raster
// surfaces. Defaults to 1.
func WithDeviceScale(scale float64) Option {
	return func(c *Controller) { c.deviceScale = scale }
}

// WithPopupCloser registers the callback that dismisses any open definition
// popup before a page navigation.
func WithPopupCloser(fn func()) Option {
	return func(c *Controller) { c.closePopup = fn }
}

// NewController builds a controller over the given document service.
func NewController(service engine.Service, opts ...Option) *Controller {
	c := &Controller{
		service:     service,
		logger:      observability.NopLogger{},
		tracer:      observability.NopTracer(),
		loadTimeout: defaultLoadTimeout,
		debounce:    defaultDebounceWindow,
		deviceScale: 1,
		state:       StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OpenDocument tears down any previous session, opens data through the
// document service, and renders page 1. A load failure is recorded as the
// session error and returned; it is not retried automatically.
func (c *Controller) OpenDocument(ctx context.Context, data []byte) error {
	c.Teardown()

	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()

	ctx, span := c.tracer.StartSpan(ctx, observability.SpanDocumentOpen)
	defer span.Finish()

	openCtx, cancel := context.WithTimeout(ctx, c.loadTimeout)
	defer cancel()
	doc, err := c.service.Open(openCtx, data)
	if err != nil {
		loadErr := &DocumentLoadError{Err: err}
		span.SetError(loadErr)
		c.logger.Error("document open failed", observability.Error("err", err))
		c.mu.Lock()
		c.state = StateFailed
		c.err = loadErr
		c.mu.Unlock()
		return loadErr
	}

	c.mu.Lock()
	c.doc = doc
	c.pageCount = doc.PageCount()
	c.currentPage = 1
	c.mu.Unlock()

	c.logger.Info("document opened", observability.Int("pages", doc.PageCount()))
	span.SetTag(observability.MetricPageCount, doc.PageCount())

	c.RenderPage(ctx, 1)
	return nil
}

// RenderPage renders page n, superseding any in-flight render. It reports
// whether this render's results became visible; false means it was either
// abandoned because a newer render took over, or it failed.
func (c *Controller) RenderPage(ctx context.Context, n int) bool {
	ok := c.renderPage(ctx, n)

	// A resize that arrived mid-render parked a rerender request; run it
	// now that the render is finished.
	for {
		c.mu.Lock()
		if !c.rerenderWanted || c.rendering || c.doc == nil {
			c.mu.Unlock()
			break
		}
		c.rerenderWanted = false
		page := c.currentPage
		c.mu.Unlock()
		c.renderPage(ctx, page)
	}
	return ok
}

func (c *Controller) renderPage(ctx context.Context, n int) bool {
	c.mu.Lock()
	if c.doc == nil || n < 1 || n > c.pageCount {
		c.mu.Unlock()
		return false
	}

	// Allocate this render's generation; every later await point re-checks
	// it before touching shared state.
	c.generation++
	myGen := c.generation
	c.state = StateRendering
	c.rendering = true
	c.hasTextLayer = false
	c.noTextForPage = false
	c.words = nil
	doc := c.doc
	prevTask := c.task
	prevPage := c.page
	c.task = nil
	c.page = nil
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if myGen == c.generation {
			c.rendering = false
		}
		c.mu.Unlock()
	}()

	if prevTask != nil {
		prevTask.Cancel()
	}
	if prevPage != nil {
		prevPage.Close()
	}
	// Stale selectable text must never be visible during the transition.
	if c.overlay != nil {
		c.overlay.Clear()
	}

	ctx, span := c.tracer.StartSpan(ctx, observability.SpanPageRender)
	defer span.Finish()
	span.SetTag("page", n)
	start := time.Now()

	page, err := doc.Page(ctx, n)
	if err != nil {
		if isCancellation(err) {
			return false
		}
		return c.renderFailed(myGen, n, span, err)
	}
	c.mu.Lock()
	if myGen != c.generation {
		c.mu.Unlock()
		page.Close()
		return false
	}
	c.page = page
	c.mu.Unlock()

	// The raster and the overlay share this viewport object. Pinning the
	// scale here is the alignment invariant.
	vp := page.Viewport(renderScale)
	surface := raster.NewSurface(vp, c.deviceScale)

	task := page.Render(ctx, surface, vp)
	c.mu.Lock()
	if myGen != c.generation {
		c.mu.Unlock()
		task.Cancel()
		return false
	}
	c.task = task
	c.mu.Unlock()

	if err := task.Wait(); err != nil {
		if isCancellation(err) {
			return false
		}
		return c.renderFailed(myGen, n, span, err)
	}

	c.mu.Lock()
	if myGen != c.generation {
		c.mu.Unlock()
		return false
	}
	c.task = nil
	c.surface = surface
	c.mu.Unlock()

	runs, err := page.TextContent(ctx)
	if err != nil {
		if isCancellation(err) {
			return false
		}
		return c.renderFailed(myGen, n, span, err)
	}

	if len(runs) == 0 {
		// A scanned or image-only page. Not an error; the raster stands
		// alone with no interactive text.
		c.mu.Lock()
		if myGen != c.generation {
			c.mu.Unlock()
			return false
		}
		c.noTextForPage = true
		c.hasTextLayer = false
		c.state = StateRendered
		c.err = nil
		c.currentPage = n
		c.mu.Unlock()
		c.logger.Info("page rendered without text layer", observability.Int("page", n))
		return true
	}

	if c.overlay != nil {
		if err := c.overlay.Render(ctx, runs, vp); err != nil {
			if isCancellation(err) {
				return false
			}
			return c.renderFailed(myGen, n, span, err)
		}
	}

	words := geometry.ExtractWords(runs, vp)

	c.mu.Lock()
	if myGen != c.generation {
		c.mu.Unlock()
		return false
	}
	c.words = words
	c.hasTextLayer = true
	c.noTextForPage = false
	c.state = StateRendered
	c.err = nil
	c.currentPage = n
	c.mu.Unlock()

	span.SetTag(observability.MetricWordCount, len(words))
	c.logger.Debug("page rendered",
		observability.Int("page", n),
		observability.Int("words", len(words)),
		observability.Float64("ms", float64(time.Since(start).Milliseconds())))
	return true
}

// renderFailed records err against the session, but only when this render is
// still the current generation; stale failures have already been superseded
// and are discarded.
func (c *Controller) renderFailed(myGen uint64, page int, span observability.Span, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if myGen != c.generation {
		return false
	}
	renderErr := &PageRenderError{Page: page, Err: err}
	c.err = renderErr
	c.state = StateFailed
	span.SetError(renderErr)
	c.logger.Error("page render failed",
		observability.Int("page", page), observability.Error("err", err))
	return false
}

func isCancellation(err error) bool {
	return errors.Is(err, engine.ErrCancelled) || errors.Is(err, context.Canceled)
}

// NavigateTo renders page n. Out-of-range targets, the current page, and
// requests made while a render is in flight are all no-ops. The recorded
// current page only advances when the render succeeds, so a failed navigation
// leaves the user on the last good page.
func (c *Controller) NavigateTo(ctx context.Context, n int) {
	c.mu.Lock()
	if c.doc == nil || n < 1 || n > c.pageCount || n == c.currentPage || c.rendering {
		c.mu.Unlock()
		return
	}
	closePopup := c.closePopup
	c.mu.Unlock()

	if closePopup != nil {
		closePopup()
	}
	c.RenderPage(ctx, n)
}

// HandleResize schedules a rerender of the current page after the resize
// burst quiesces. Only the last resize in a burst does any work. If a render
// is in flight when the window elapses, the rerender is parked until that
// render finishes rather than racing it.
func (c *Controller) HandleResize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resizeTimer != nil {
		c.resizeTimer.Stop()
	}
	c.resizeTimer = time.AfterFunc(c.debounce, c.resizeElapsed)
}

func (c *Controller) resizeElapsed() {
	c.mu.Lock()
	if c.doc == nil {
		c.mu.Unlock()
		return
	}
	if c.rendering {
		c.rerenderWanted = true
		c.mu.Unlock()
		return
	}
	page := c.currentPage
	c.mu.Unlock()
	c.RenderPage(context.Background(), page)
}

// Teardown cancels in-flight work and releases the page and document handles.
// Safe to call from any state, any number of times.
func (c *Controller) Teardown() {
	c.mu.Lock()
	c.generation++ // orphan any in-flight render
	if c.resizeTimer != nil {
		c.resizeTimer.Stop()
		c.resizeTimer = nil
	}
	task := c.task
	page := c.page
	doc := c.doc
	c.task = nil
	c.page = nil
	c.doc = nil
	c.surface = nil
	c.words = nil
	c.err = nil
	c.state = StateIdle
	c.pageCount = 0
	c.currentPage = 0
	c.rendering = false
	c.rerenderWanted = false
	c.hasTextLayer = false
	c.noTextForPage = false
	c.mu.Unlock()

	if task != nil {
		task.Cancel()
	}
	if page != nil {
		page.Close()
	}
	if doc != nil {
		doc.Close()
	}
	if c.overlay != nil {
		c.overlay.Clear()
	}
}

// Snapshot returns the current lifecycle state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:         c.state,
		Page:          c.currentPage,
		PageCount:     c.pageCount,
		Generation:    c.generation,
		Rendering:     c.rendering,
		Rendered:      c.state == StateRendered,
		HasTextLayer:  c.hasTextLayer,
		NoTextForPage: c.noTextForPage,
		Err:           c.err,
	}
}

// Surface returns the raster of the last successfully rendered page, or nil.
func (c *Controller) Surface() *raster.Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface
}

// Words returns the word rectangles extracted for the current page.
func (c *Controller) Words() []geometry.WordRect {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]geometry.WordRect, len(c.words))
	copy(out, c.words)
	return out
}

// HitTest resolves a viewport point against the current page's words.
func (c *Controller) HitTest(pt coords.Point) (geometry.WordRect, bool) {
	return geometry.HitTest(c.Words(), pt, geometry.DefaultHitThreshold)
}
