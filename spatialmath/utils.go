package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

const floatEpsilon = 1e-9

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return math.Abs(a.X-b.X) <= epsilon && math.Abs(a.Y-b.Y) <= epsilon && math.Abs(a.Z-b.Z) <= epsilon
}

// PlaneNormal returns the (unnormalized) normal of the plane through p0, p1 and p2.
func PlaneNormal(p0, p1, p2 r3.Vector) r3.Vector {
	return p1.Sub(p0).Cross(p2.Sub(p0))
}

// DivideByZ scales pt so that its z coordinate is 1. The second return value is false when
// z is too close to zero for the division to be meaningful.
func DivideByZ(pt r3.Vector) (r3.Vector, bool) {
	if math.Abs(pt.Z) < floatEpsilon {
		return pt, false
	}
	return pt.Mul(1 / pt.Z), true
}
