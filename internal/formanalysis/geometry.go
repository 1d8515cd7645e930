package formanalysis

import (
	"math"

	"github.com/swanstudios/formsight/internal/pose"
)

// AngleAt returns the angle in degrees at vertex, formed by the segments
// vertex->a and vertex->b. The result is always within [0, 180]. Degenerate
// input (either segment of zero length, e.g. an undetected joint reported at
// the origin) yields 0.0; callers must check joint confidence before trusting
// an angle of zero.
func AngleAt(a, vertex, b pose.Point2D) float64 {
	v1x, v1y := a.X-vertex.X, a.Y-vertex.Y
	v2x, v2y := b.X-vertex.X, b.Y-vertex.Y

	norm1 := math.Hypot(v1x, v1y)
	norm2 := math.Hypot(v2x, v2y)
	if norm1 == 0 || norm2 == 0 {
		return 0.0
	}

	cosAngle := (v1x*v2x + v1y*v2y) / (norm1 * norm2)
	// guard arccos against floating point overshoot
	cosAngle = math.Max(-1.0, math.Min(1.0, cosAngle))

	return math.Acos(cosAngle) * 180.0 / math.Pi
}
