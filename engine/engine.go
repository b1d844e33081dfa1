// Package engine defines the contract the viewer expects from a document
// rendering service. The service itself (parsing, rasterization, font
// handling) lives behind these interfaces; the viewer only drives it.
package engine

import (
	"context"
	"errors"
	"image"

	"github.com/docpane/docpane/coords"
)

// ErrCancelled is returned by a render task whose Cancel was requested before
// it completed. Callers treat it as silent abandonment, never as failure.
var ErrCancelled = errors.New("engine: render cancelled")

// Service opens raw document bytes into a navigable document.
type Service interface {
	// Open parses data and returns a document handle. It fails on malformed
	// input or when the backing service is unreachable; callers bound it
	// with a context deadline.
	Open(ctx context.Context, data []byte) (Document, error)
}

// Document is an opened document. The handle is exclusively owned by whoever
// opened it and must be closed exactly once ownership ends.
type Document interface {
	// PageCount reports the total number of pages.
	PageCount() int
	// Page fetches the 1-indexed page n.
	Page(ctx context.Context, n int) (Page, error)
	// Close releases the document. Closing twice is undefined; owners
	// guard against it.
	Close() error
}

// Page is a single page of an open document.
type Page interface {
	// Viewport reports the page dimensions at the given scale.
	Viewport(scale float64) Viewport
	// Render starts rasterizing the page into target using the given
	// viewport. The returned task is already running.
	Render(ctx context.Context, target RenderTarget, vp Viewport) RenderTask
	// TextContent returns the page's raw text runs, or an empty slice for
	// pages with no extractable text (scanned images).
	TextContent(ctx context.Context) ([]TextRun, error)
	// Close releases the page handle.
	Close() error
}

// RenderTask is an in-flight rasterization.
type RenderTask interface {
	// Wait blocks until the task finishes. It returns ErrCancelled when the
	// task was cancelled, nil on success, and the render failure otherwise.
	Wait() error
	// Cancel requests the task stop. Safe to call at any time, including
	// after completion.
	Cancel()
}

// RenderTarget is the pixel buffer a page is drawn into. Physical dimensions
// may exceed logical ones on high-density displays; drawing commands are
// issued in logical pixels.
type RenderTarget interface {
	// Image is the physical pixel buffer.
	Image() *image.RGBA
	// LogicalSize is the displayed size in logical pixels.
	LogicalSize() (w, h float64)
	// DeviceScale is the physical-to-logical pixel ratio.
	DeviceScale() float64
}

// Viewport describes page dimensions at a specific scale, top-left origin.
type Viewport struct {
	Width  float64
	Height float64
	Scale  float64
}

// TextRun is one positioned run of text as produced by the text extraction
// pass: a literal string, the affine transform that places it on the page
// (bottom-up origin), and its measured width in scaled units.
type TextRun struct {
	Text      string
	Transform coords.Matrix
	Width     float64
}
