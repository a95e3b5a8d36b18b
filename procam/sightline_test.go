package procam

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/EDM-Research/ProcamCalib/rimage/transform"
	"github.com/EDM-Research/ProcamCalib/spatialmath"
)

func TestDirectPath(t *testing.T) {
	path := NewOpticalPath(nil)
	test.That(t, path.Mirrored(), test.ShouldBeFalse)

	dir := r3.Vector{X: 0.2, Y: -0.1, Z: 1}
	line, err := path.Resolve(dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, line.P0, test.ShouldResemble, dir)
	test.That(t, line.P1, test.ShouldResemble, r3.Vector{})

	_, err = path.Resolve(r3.Vector{})
	test.That(t, errors.Is(err, spatialmath.ErrDegenerateRay), test.ShouldBeTrue)
}

func TestMirroredPath(t *testing.T) {
	mirror, err := spatialmath.NewMirror(r3.Vector{Z: 1}, 1)
	test.That(t, err, test.ShouldBeNil)
	path := NewOpticalPath(mirror)
	test.That(t, path.Mirrored(), test.ShouldBeTrue)

	t.Run("straight down the axis", func(t *testing.T) {
		line, err := path.Resolve(r3.Vector{Z: 1})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, spatialmath.R3VectorAlmostEqual(line.P0, r3.Vector{Z: 1}, 1e-12), test.ShouldBeTrue)
		test.That(t, spatialmath.R3VectorAlmostEqual(line.P1, r3.Vector{Z: 2}, 1e-12), test.ShouldBeTrue)
	})

	t.Run("oblique ray bounces on the mirror", func(t *testing.T) {
		dir := r3.Vector{X: 0.3, Y: -0.2, Z: 1}
		line, err := path.Resolve(dir)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, mirror.Plane().Contains(line.P0, 1e-9), test.ShouldBeTrue)
		test.That(t, spatialmath.R3VectorAlmostEqual(line.P0, dir, 1e-12), test.ShouldBeTrue)
		test.That(t, spatialmath.R3VectorAlmostEqual(line.P1, mirror.ReflectPoint(r3.Vector{}), 1e-12),
			test.ShouldBeTrue)
	})

	t.Run("ray parallel to the mirror", func(t *testing.T) {
		sideways, err := spatialmath.NewMirror(r3.Vector{X: 1}, 1)
		test.That(t, err, test.ShouldBeNil)
		_, err = NewOpticalPath(sideways).Resolve(r3.Vector{Z: 1})
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, errors.Is(err, spatialmath.ErrNoIntersection), test.ShouldBeTrue)
		test.That(t, IsRecoverable(err), test.ShouldBeTrue)
	})
}

func TestTransformSightLine(t *testing.T) {
	line, err := spatialmath.NewLineFromPoints(r3.Vector{Z: 1}, r3.Vector{})
	test.That(t, err, test.ShouldBeNil)

	moved, err := TransformSightLine(transform.NewTranslationTransform(r3.Vector{X: 1, Y: 2, Z: 3}), line)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, moved.P0, test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 4})
	test.That(t, moved.P1, test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})

	same, err := TransformSightLine(transform.NewIdentityTransform(), line)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, same, test.ShouldResemble, line)

	singular, err := transform.NewHomogeneousTransform([]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 1, 0,
	})
	test.That(t, err, test.ShouldBeNil)
	_, err = TransformSightLine(singular, line)
	test.That(t, errors.Is(err, transform.ErrOutOfDomain), test.ShouldBeTrue)
}
