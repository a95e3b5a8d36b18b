package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Plane is an infinite plane described by a point on it and a unit normal.
type Plane struct {
	point  r3.Vector
	normal r3.Vector
}

// NewPlaneFromPointNormal returns the plane through pt perpendicular to normal. The normal
// does not have to be unit length.
func NewPlaneFromPointNormal(pt, normal r3.Vector) (*Plane, error) {
	norm := normal.Norm()
	if norm < floatEpsilon {
		return nil, NewDegeneratePlaneError(fmt.Sprintf("normal %v has zero length", normal))
	}
	return &Plane{point: pt, normal: normal.Mul(1 / norm)}, nil
}

// NewPlaneFromPoints returns the plane through a, b and c, with normal (b-a)x(c-a).
func NewPlaneFromPoints(a, b, c r3.Vector) (*Plane, error) {
	normal := PlaneNormal(a, b, c)
	// compare against the edge lengths so the check does not depend on the points' scale
	scale := b.Sub(a).Norm() * c.Sub(a).Norm()
	if scale < floatEpsilon || normal.Norm() <= floatEpsilon*scale {
		return nil, NewDegeneratePlaneError(fmt.Sprintf("points %v, %v, %v are collinear", a, b, c))
	}
	return &Plane{point: a, normal: normal.Normalize()}, nil
}

// Point returns the point the plane was built from.
func (p *Plane) Point() r3.Vector {
	return p.point
}

// Normal returns the plane's unit normal.
func (p *Plane) Normal() r3.Vector {
	return p.normal
}

// Offset returns d such that the plane is the set of points x with normal·x = d.
func (p *Plane) Offset() float64 {
	return p.normal.Dot(p.point)
}

// SignedDistance returns the distance of pt from the plane, positive on the normal's side.
func (p *Plane) SignedDistance(pt r3.Vector) float64 {
	return p.normal.Dot(pt.Sub(p.point))
}

// Contains reports whether pt lies on the plane within tolerance.
func (p *Plane) Contains(pt r3.Vector, tolerance float64) bool {
	return math.Abs(p.SignedDistance(pt)) <= tolerance
}

// IntersectLine returns the point where line crosses the plane. A line parallel to the
// plane, including one lying inside it, has no single intersection.
func (p *Plane) IntersectLine(line Line) (r3.Vector, error) {
	dir := line.Direction()
	denom := p.normal.Dot(dir)
	if math.Abs(denom) <= floatEpsilon*dir.Norm() {
		return r3.Vector{}, NewNoIntersectionError(fmt.Sprintf("line %v -> %v is parallel to plane with normal %v",
			line.P0, line.P1, p.normal))
	}
	t := -p.SignedDistance(line.P0) / denom
	return line.PointAt(t), nil
}
