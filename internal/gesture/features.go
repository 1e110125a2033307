// Package gesture extracts geometric features from hand landmarks and
// classifies them into the gesture taxonomy.
package gesture

import (
	"math"

	"github.com/golang/geo/r2"
)

// degenerateEpsilon is the minimum ray length for a meaningful wrist angle.
const degenerateEpsilon = 1e-9

// Point is a landmark position in normalized [0,1]x[0,1] image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) vec() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

// Frame holds the four landmarks the classifier consumes for one camera frame.
type Frame struct {
	IndexTip Point `json:"index_tip"`
	ThumbTip Point `json:"thumb_tip"`
	IndexMCP Point `json:"index_mcp"`
	Wrist    Point `json:"wrist"`
}

// Features are the scalar measurements derived from a Frame.
type Features struct {
	PinchDistance float64 `json:"pinch_distance"`
	WristAngleDeg float64 `json:"wrist_angle_deg"`
	// Degenerate is set when the wrist angle could not be measured;
	// WristAngleDeg is then 0 and no angle rule may match.
	Degenerate bool `json:"degenerate"`
}

// Extract computes pinch distance and wrist angle for a frame.
func Extract(f Frame) Features {
	angle, ok := vertexAngle(f.ThumbTip, f.Wrist, f.IndexTip)
	return Features{
		PinchDistance: distance(f.IndexTip, f.ThumbTip),
		WristAngleDeg: angle,
		Degenerate:    !ok,
	}
}

func distance(a, b Point) float64 {
	return a.vec().Sub(b.vec()).Norm()
}

// vertexAngle returns the angle in degrees at vertex b between rays b->a and b->c.
// It reports false when either ray has near-zero length.
func vertexAngle(a, b, c Point) (float64, bool) {
	u := a.vec().Sub(b.vec())
	v := c.vec().Sub(b.vec())

	nu, nv := u.Norm(), v.Norm()
	if nu < degenerateEpsilon || nv < degenerateEpsilon {
		return 0, false
	}

	cos := u.Dot(v) / (nu * nv)
	cos = clamp(cos, -1, 1)

	return math.Acos(cos) * 180 / math.Pi, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Interp maps x from [x0,x1] onto [y0,y1], holding the end values outside
// the input range. x0 must not exceed x1.
func Interp(x, x0, x1, y0, y1 float64) float64 {
	if x <= x0 {
		return y0
	}
	if x >= x1 {
		return y1
	}
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}

// Percent maps x from [lo,hi] onto [0,100] and clamps the result.
func Percent(x, lo, hi float64) float64 {
	return clamp(Interp(x, lo, hi, 0, 100), 0, 100)
}
