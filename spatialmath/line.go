// Package spatialmath defines the 3D point, line and plane operations used to trace sight lines.
package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Line is an infinite 3D line given by two distinct points. The order of the points is
// meaningful: the line's direction runs from P0 to P1.
type Line struct {
	P0 r3.Vector
	P1 r3.Vector
}

// NewLineFromPoints returns the line through p0 and p1, directed from p0 to p1.
func NewLineFromPoints(p0, p1 r3.Vector) (Line, error) {
	if p1.Sub(p0).Norm() < floatEpsilon {
		return Line{}, NewDegenerateRayError(fmt.Sprintf("points %v and %v coincide", p0, p1))
	}
	return Line{P0: p0, P1: p1}, nil
}

// NewRay returns the line starting at origin and heading along direction.
func NewRay(origin, direction r3.Vector) (Line, error) {
	return NewLineFromPoints(origin, origin.Add(direction))
}

// Direction returns the unnormalized direction P1-P0.
func (l Line) Direction() r3.Vector {
	return l.P1.Sub(l.P0)
}

// PointAt returns P0 + t*(P1-P0).
func (l Line) PointAt(t float64) r3.Vector {
	return l.P0.Add(l.Direction().Mul(t))
}

// Reversed returns the same line traversed from P1 to P0.
func (l Line) Reversed() Line {
	return Line{P0: l.P1, P1: l.P0}
}
