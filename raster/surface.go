// Package raster provides the pixel surface pages are rendered into. A
// surface is allocated at physical resolution (logical size times the device
// pixel ratio) while exposing its logical size, so output stays crisp on
// high-density displays without affecting hit-testing math, which always
// operates in logical pixels.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/docpane/docpane/engine"
)

// Surface is an in-memory render target.
type Surface struct {
	img      *image.RGBA
	logicalW float64
	logicalH float64
	scale    float64
}

var _ engine.RenderTarget = (*Surface)(nil)

// NewSurface allocates a surface for the given viewport at the given device
// pixel ratio. A ratio at or below zero falls back to 1.
func NewSurface(vp engine.Viewport, deviceScale float64) *Surface {
	if deviceScale <= 0 {
		deviceScale = 1
	}
	pw := int(math.Ceil(vp.Width * deviceScale))
	ph := int(math.Ceil(vp.Height * deviceScale))
	if pw < 1 {
		pw = 1
	}
	if ph < 1 {
		ph = 1
	}
	return &Surface{
		img:      image.NewRGBA(image.Rect(0, 0, pw, ph)),
		logicalW: vp.Width,
		logicalH: vp.Height,
		scale:    deviceScale,
	}
}

// Image returns the physical pixel buffer.
func (s *Surface) Image() *image.RGBA { return s.img }

// LogicalSize returns the displayed size in logical pixels.
func (s *Surface) LogicalSize() (w, h float64) { return s.logicalW, s.logicalH }

// DeviceScale returns the physical-to-logical pixel ratio.
func (s *Surface) DeviceScale() float64 { return s.scale }

// Fill paints the whole surface with a solid color.
func (s *Surface) Fill(c color.Color) {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Blit scales src (an image produced in logical pixels) onto the physical
// buffer, covering the full surface.
func (s *Surface) Blit(src image.Image) {
	xdraw.BiLinear.Scale(s.img, s.img.Bounds(), src, src.Bounds(), xdraw.Over, nil)
}

// FillRect paints an axis-aligned rectangle given in logical pixels,
// applying the device scale so callers never deal in physical units.
func (s *Surface) FillRect(x, y, w, h float64, c color.Color) {
	r := image.Rect(
		int(math.Floor(x*s.scale)),
		int(math.Floor(y*s.scale)),
		int(math.Ceil((x+w)*s.scale)),
		int(math.Ceil((y+h)*s.scale)),
	).Intersect(s.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(s.img, r, image.NewUniform(c), image.Point{}, draw.Src)
}
