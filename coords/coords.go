// Package coords provides the 2-D affine transform math used to map text-run
// geometry between page space and viewport space.
package coords

import (
	"errors"
	"math"
)

// Matrix is a 2-D affine transform in the order
// [a b c d e f], applying as x' = a*x + c*y + e, y' = b*x + d*y + f.
// Text runs carry one of these per run; a and d hold the horizontal and
// vertical scale components, e and f the translation.
type Matrix [6]float64

// Identity returns the identity transform.
func Identity() Matrix { return Matrix{1, 0, 0, 1, 0, 0} }

// Translate returns a pure translation transform.
func Translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }

// Scale returns a pure scaling transform.
func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

// Rotate returns a rotation transform by angle radians.
func Rotate(angle float64) Matrix {
	c, s := math.Cos(angle), math.Sin(angle)
	return Matrix{c, s, -s, c, 0, 0}
}

// ScaleX returns the horizontal scale component of the transform.
func (m Matrix) ScaleX() float64 { return m[0] }

// ScaleY returns the vertical scale component of the transform.
func (m Matrix) ScaleY() float64 { return m[3] }

// TranslateX returns the x translation of the transform.
func (m Matrix) TranslateX() float64 { return m[4] }

// TranslateY returns the y translation of the transform.
func (m Matrix) TranslateY() float64 { return m[5] }

// Multiply composes m with o, applying m first.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[2],
		m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2],
		m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4],
		m[4]*o[1] + m[5]*o[3] + o[5],
	}
}

// Point is a position in either page or viewport space.
type Point struct {
	X, Y float64
}

// Transform applies m to p.
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Inverse returns the inverse transform, or an error when m is singular.
func (m Matrix) Inverse() (Matrix, error) {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-10 {
		return Matrix{}, errors.New("matrix singular")
	}
	return Matrix{
		m[3] / det,
		-m[1] / det,
		-m[2] / det,
		m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det,
		(m[1]*m[4] - m[0]*m[5]) / det,
	}, nil
}

// Dist returns the Euclidean distance between p and q.
func Dist(p, q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// ToTopDown converts a y coordinate from the page's bottom-up origin to the
// viewport's top-left origin, given the viewport height and the height of the
// object being placed.
func ToTopDown(y, viewportHeight, objectHeight float64) float64 {
	return viewportHeight - y - objectHeight
}
