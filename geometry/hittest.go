package geometry

import "github.com/docpane/docpane/coords"

// DefaultHitThreshold is the pixel slop applied around word rectangles during
// hit testing.
const DefaultHitThreshold = 12.0

// HitTest resolves a viewport point to the best-matching word rectangle.
//
// Resolution runs in two phases. First, containment: the first rectangle
// whose bounds expanded by threshold on all sides contain the point wins.
// Rectangles are tested in extraction order, so overlapping rectangles
// resolve to the earlier one; that ordering is the tie-break policy.
// Second, when nothing contains the point, the rectangle whose center is
// nearest wins, but only if that distance is strictly under 2×threshold.
// The boolean result is false when neither phase matches.
func HitTest(words []WordRect, pt coords.Point, threshold float64) (WordRect, bool) {
	if threshold <= 0 {
		threshold = DefaultHitThreshold
	}

	for _, w := range words {
		if pt.X >= w.X-threshold && pt.X <= w.X+w.Width+threshold &&
			pt.Y >= w.Y-threshold && pt.Y <= w.Y+w.Height+threshold {
			return w, true
		}
	}

	best := -1
	bestDist := 0.0
	for i, w := range words {
		d := coords.Dist(pt, coords.Point{X: w.CenterX, Y: w.CenterY})
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best >= 0 && bestDist < 2*threshold {
		return words[best], true
	}
	return WordRect{}, false
}
