package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Mirror is a planar mirror n·x = d with unit normal n. Mirror planes are estimated once
// per session and never change afterwards.
type Mirror struct {
	plane  *Plane
	normal r3.Vector
	offset float64
}

// NewMirror returns the mirror n·x = d. A non unit normal is normalized and d is scaled
// along with it, so the plane itself does not change.
func NewMirror(normal r3.Vector, offset float64) (*Mirror, error) {
	norm := normal.Norm()
	if norm < floatEpsilon {
		return nil, NewDegeneratePlaneError(fmt.Sprintf("mirror normal %v has zero length", normal))
	}
	m := &Mirror{normal: normal.Mul(1 / norm), offset: offset / norm}
	plane, err := NewPlaneFromPointNormal(m.PointOnPlane(), m.normal)
	if err != nil {
		return nil, err
	}
	m.plane = plane
	return m, nil
}

// NewMirrorFromCoefficients returns the mirror ax + by + cz + d = 0, the form mirror
// estimates are stored in.
func NewMirrorFromCoefficients(a, b, c, d float64) (*Mirror, error) {
	return NewMirror(r3.Vector{X: a, Y: b, Z: c}, -d)
}

// Normal returns the mirror's unit normal.
func (m *Mirror) Normal() r3.Vector {
	return m.normal
}

// Offset returns d of n·x = d.
func (m *Mirror) Offset() float64 {
	return m.offset
}

// Plane returns the mirror as a Plane.
func (m *Mirror) Plane() *Plane {
	return m.plane
}

// PointOnPlane returns the foot of the perpendicular dropped from the origin onto the mirror.
func (m *Mirror) PointOnPlane() r3.Vector {
	return m.normal.Mul(m.offset)
}

// ReflectPoint mirrors a single point across the plane.
func (m *Mirror) ReflectPoint(pt r3.Vector) r3.Vector {
	dist := m.normal.Dot(pt) - m.offset
	return pt.Sub(m.normal.Mul(2 * dist))
}

// Reflect mirrors every point across the plane, returning the reflections in order.
func (m *Mirror) Reflect(pts ...r3.Vector) []r3.Vector {
	reflected := make([]r3.Vector, 0, len(pts))
	for _, pt := range pts {
		reflected = append(reflected, m.ReflectPoint(pt))
	}
	return reflected
}

func (m *Mirror) String() string {
	return fmt.Sprintf("n: (%g, %g, %g), d: %g", m.normal.X, m.normal.Y, m.normal.Z, m.offset)
}
