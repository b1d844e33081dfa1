package viewer

import "fmt"

// DocumentLoadError records a failed document open: malformed bytes or an
// unreachable rendering service. It is fatal to the session; the user must
// supply a new document.
type DocumentLoadError struct {
	Err error
}

func (e *DocumentLoadError) Error() string { return fmt.Sprintf("open document: %v", e.Err) }
func (e *DocumentLoadError) Unwrap() error { return e.Err }

// PageRenderError records a rasterization failure for reasons other than
// cancellation. The previous page's raster stays on screen and the render can
// be retried.
type PageRenderError struct {
	Page int
	Err  error
}

func (e *PageRenderError) Error() string {
	return fmt.Sprintf("render page %d: %v", e.Page, e.Err)
}
func (e *PageRenderError) Unwrap() error { return e.Err }
