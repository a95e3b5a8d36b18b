package procam

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/EDM-Research/ProcamCalib/rimage/transform"
	"github.com/EDM-Research/ProcamCalib/spatialmath"
)

// FrustumClipper cuts a projector space sight line against the top and bottom planes of
// the projector's viewing frustum. Both planes pass through the projector's optical centre.
type FrustumClipper struct {
	top    *spatialmath.Plane
	bottom *spatialmath.Plane
}

// NewFrustumClipper builds the top and bottom frustum planes of a width x height projector
// from the rays through its image corners.
func NewFrustumClipper(intrinsics *transform.PinholeCameraIntrinsics, width, height int) (*FrustumClipper, error) {
	if intrinsics == nil {
		return nil, transform.NewNoIntrinsicsError("projector intrinsics are required to build the frustum")
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("projector size must be positive, got %dx%d", width, height)
	}
	w, h := float64(width), float64(height)
	var corners [4]r3.Vector
	for i, uv := range [4][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}} {
		corner, err := intrinsics.UnprojectCorner(uv[0], uv[1])
		if err != nil {
			return nil, errors.Wrap(err, "projector corner ray")
		}
		corners[i] = corner
	}
	topLeft, topRight, bottomLeft, bottomRight := corners[0], corners[1], corners[2], corners[3]
	centre := r3.Vector{}

	top, err := spatialmath.NewPlaneFromPoints(topLeft, topRight, centre)
	if err != nil {
		return nil, errors.Wrap(err, "top frustum plane")
	}
	bottom, err := spatialmath.NewPlaneFromPoints(bottomLeft, bottomRight, centre)
	if err != nil {
		return nil, errors.Wrap(err, "bottom frustum plane")
	}
	return &FrustumClipper{top: top, bottom: bottom}, nil
}

// Top returns the plane through the projector's top image edge.
func (fc *FrustumClipper) Top() *spatialmath.Plane {
	return fc.top
}

// Bottom returns the plane through the projector's bottom image edge.
func (fc *FrustumClipper) Bottom() *spatialmath.Plane {
	return fc.bottom
}

// Clip returns where line crosses the top and bottom frustum planes, each rescaled to z = 1.
// The line is traversed from P1 to P0. A line through the optical centre has no usable
// crossing and yields a degenerate ray error.
func (fc *FrustumClipper) Clip(line SightLine) (r3.Vector, r3.Vector, error) {
	ray := line.Reversed()
	topHit, err := fc.top.IntersectLine(ray)
	if err != nil {
		return r3.Vector{}, r3.Vector{}, errors.Wrap(err, "top frustum plane")
	}
	bottomHit, err := fc.bottom.IntersectLine(ray)
	if err != nil {
		return r3.Vector{}, r3.Vector{}, errors.Wrap(err, "bottom frustum plane")
	}
	topPoint, ok := spatialmath.DivideByZ(topHit)
	if !ok {
		return r3.Vector{}, r3.Vector{}, spatialmath.NewDegenerateRayError(
			fmt.Sprintf("top frustum crossing %v lies in the projector's image plane", topHit))
	}
	bottomPoint, ok := spatialmath.DivideByZ(bottomHit)
	if !ok {
		return r3.Vector{}, r3.Vector{}, spatialmath.NewDegenerateRayError(
			fmt.Sprintf("bottom frustum crossing %v lies in the projector's image plane", bottomHit))
	}
	return topPoint, bottomPoint, nil
}

// Polyline is an ordered run of projector space points.
type Polyline []r3.Vector

// Densify returns n evenly spaced points from a to b. The first and last points are
// exactly a and b.
func Densify(a, b r3.Vector, n int) Polyline {
	if n < 2 {
		n = 2
	}
	steps := float64(n - 1)
	pts := make(Polyline, n)
	for i := range pts {
		t := float64(i) / steps
		pts[i] = a.Add(b.Sub(a).Mul(t))
	}
	pts[0], pts[n-1] = a, b
	return pts
}
