package procam

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/EDM-Research/ProcamCalib/spatialmath"
)

// SightLine is the line traced for one clicked pixel, as an ordered pair of distinct
// points. Direct and mirrored setups both produce this shape.
type SightLine = spatialmath.Line

// An OpticalPath turns a camera space viewing direction into the SightLine to trace.
// The camera's optical centre is the origin of camera space.
type OpticalPath interface {
	Resolve(direction r3.Vector) (SightLine, error)
	Mirrored() bool
}

// NewOpticalPath returns the path for a setup: folded by mirror when one is given,
// direct otherwise.
func NewOpticalPath(mirror *spatialmath.Mirror) OpticalPath {
	if mirror == nil {
		return DirectPath{}
	}
	return &MirroredPath{Mirror: mirror}
}

// DirectPath is a camera looking straight at the scene.
type DirectPath struct{}

// Resolve returns the line from the point along direction back to the camera origin.
func (DirectPath) Resolve(direction r3.Vector) (SightLine, error) {
	return spatialmath.NewLineFromPoints(direction, r3.Vector{})
}

// Mirrored is false for a direct path.
func (DirectPath) Mirrored() bool {
	return false
}

// MirroredPath is a camera looking at the scene through a planar mirror. Past the bounce
// the folded ray is the same as a ray leaving the camera's mirror image, so the sight line
// runs from the bounce point to that virtual camera.
type MirroredPath struct {
	Mirror *spatialmath.Mirror
}

// Resolve intersects the camera ray with the mirror and pairs the bounce point with the
// reflected camera centre.
func (mp *MirroredPath) Resolve(direction r3.Vector) (SightLine, error) {
	origin := r3.Vector{}
	ray, err := spatialmath.NewRay(origin, direction)
	if err != nil {
		return SightLine{}, err
	}
	bounce, err := mp.Mirror.Plane().IntersectLine(ray)
	if err != nil {
		return SightLine{}, errors.Wrap(err, "camera ray misses the mirror")
	}
	virtualCamera := mp.Mirror.Reflect(origin)[0]
	return spatialmath.NewLineFromPoints(bounce, virtualCamera)
}

// Mirrored is true for a mirrored path.
func (mp *MirroredPath) Mirrored() bool {
	return true
}

// A PointTransformer maps a point from one coordinate frame into another.
type PointTransformer interface {
	Apply(pt r3.Vector) (r3.Vector, error)
}

// TransformSightLine maps both points of line through tf, keeping their order.
func TransformSightLine(tf PointTransformer, line SightLine) (SightLine, error) {
	p0, err := tf.Apply(line.P0)
	if err != nil {
		return SightLine{}, err
	}
	p1, err := tf.Apply(line.P1)
	if err != nil {
		return SightLine{}, err
	}
	return spatialmath.NewLineFromPoints(p0, p1)
}
