package transform

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// HomogeneousTransform maps points between two 3D frames with a 4x4 matrix acting on
// homogeneous coordinates. Calibrated camera to projector transforms are close to rigid but
// nothing here assumes it.
type HomogeneousTransform struct {
	m mgl64.Mat4
}

// NewHomogeneousTransform builds a transform from 16 values in row-major order.
func NewHomogeneousTransform(rowMajor []float64) (*HomogeneousTransform, error) {
	if len(rowMajor) != 16 {
		return nil, errors.Errorf("a homogeneous transform needs 16 values, got %d", len(rowMajor))
	}
	for i, v := range rowMajor {
		if !isFinite(v) {
			return nil, errors.Errorf("transform entry %d is %v", i, v)
		}
	}
	row := func(i int) mgl64.Vec4 {
		return mgl64.Vec4{rowMajor[4*i], rowMajor[4*i+1], rowMajor[4*i+2], rowMajor[4*i+3]}
	}
	return &HomogeneousTransform{m: mgl64.Mat4FromRows(row(0), row(1), row(2), row(3))}, nil
}

// NewIdentityTransform returns the transform that leaves every point unchanged.
func NewIdentityTransform() *HomogeneousTransform {
	return &HomogeneousTransform{m: mgl64.Ident4()}
}

// NewTranslationTransform returns a pure translation by t.
func NewTranslationTransform(t r3.Vector) *HomogeneousTransform {
	return &HomogeneousTransform{m: mgl64.Translate3D(t.X, t.Y, t.Z)}
}

// Matrix returns the underlying 4x4 matrix.
func (ht *HomogeneousTransform) Matrix() mgl64.Mat4 {
	return ht.m
}

// Apply maps pt: it is homogenized to (x, y, z, 1), multiplied by the matrix and divided
// by the resulting w.
func (ht *HomogeneousTransform) Apply(pt r3.Vector) (r3.Vector, error) {
	v := ht.m.Mul4x1(mgl64.Vec4{pt.X, pt.Y, pt.Z, 1})
	if math.Abs(v[3]) < pointDepthEpsilon {
		return r3.Vector{}, NewOutOfDomainError(fmt.Sprintf("point %v maps to infinity", pt))
	}
	return r3.Vector{X: v[0] / v[3], Y: v[1] / v[3], Z: v[2] / v[3]}, nil
}

// Inverse returns the transform undoing ht.
func (ht *HomogeneousTransform) Inverse() (*HomogeneousTransform, error) {
	if math.Abs(ht.m.Det()) < 1e-12 {
		return nil, errors.New("homogeneous transform is singular")
	}
	return &HomogeneousTransform{m: ht.m.Inv()}, nil
}

func (ht *HomogeneousTransform) String() string {
	return ht.m.String()
}
