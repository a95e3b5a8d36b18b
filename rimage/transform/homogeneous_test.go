package transform

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func rigidTestTransform(t *testing.T) *HomogeneousTransform {
	t.Helper()
	c, s := math.Cos(0.3), math.Sin(0.3)
	ht, err := NewHomogeneousTransform([]float64{
		c, 0, s, 0.12,
		0, 1, 0, -0.03,
		-s, 0, c, 0.05,
		0, 0, 0, 1,
	})
	test.That(t, err, test.ShouldBeNil)
	return ht
}

func TestHomogeneousTransformApply(t *testing.T) {
	ht := rigidTestTransform(t)
	pt, err := ht.Apply(r3.Vector{X: 0, Y: 0, Z: 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pt.X, test.ShouldAlmostEqual, 0.12)
	test.That(t, pt.Y, test.ShouldAlmostEqual, -0.03)
	test.That(t, pt.Z, test.ShouldAlmostEqual, 0.05)

	pt, err = NewTranslationTransform(r3.Vector{X: 1, Y: 2, Z: 3}).Apply(r3.Vector{X: 1, Y: 1, Z: 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pt, test.ShouldResemble, r3.Vector{X: 2, Y: 3, Z: 4})

	// a projective last row scales by w
	scaled, err := NewHomogeneousTransform([]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 2,
	})
	test.That(t, err, test.ShouldBeNil)
	pt, err = scaled.Apply(r3.Vector{X: 2, Y: 4, Z: 6})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pt, test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})

	toInfinity, err := NewHomogeneousTransform([]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 1, 0,
	})
	test.That(t, err, test.ShouldBeNil)
	_, err = toInfinity.Apply(r3.Vector{X: 1, Y: 1, Z: 0})
	test.That(t, errors.Is(err, ErrOutOfDomain), test.ShouldBeTrue)
}

func TestHomogeneousTransformRoundTrip(t *testing.T) {
	ht := rigidTestTransform(t)
	inv, err := ht.Inverse()
	test.That(t, err, test.ShouldBeNil)

	for _, pt := range []r3.Vector{{X: 0, Y: 0, Z: 0}, {X: 1, Y: -2, Z: 3}, {X: -0.4, Y: 0.25, Z: 1.7}} {
		mapped, err := ht.Apply(pt)
		test.That(t, err, test.ShouldBeNil)
		back, err := inv.Apply(mapped)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, back.X, test.ShouldAlmostEqual, pt.X, 1e-9)
		test.That(t, back.Y, test.ShouldAlmostEqual, pt.Y, 1e-9)
		test.That(t, back.Z, test.ShouldAlmostEqual, pt.Z, 1e-9)
	}
}

func TestHomogeneousTransformErrors(t *testing.T) {
	_, err := NewHomogeneousTransform(make([]float64, 9))
	test.That(t, err, test.ShouldNotBeNil)

	bad := make([]float64, 16)
	bad[5] = math.NaN()
	_, err = NewHomogeneousTransform(bad)
	test.That(t, err, test.ShouldNotBeNil)

	singular, err := NewHomogeneousTransform(make([]float64, 16))
	test.That(t, err, test.ShouldBeNil)
	_, err = singular.Inverse()
	test.That(t, err, test.ShouldNotBeNil)

	test.That(t, NewIdentityTransform().Matrix().ApproxEqual(NewIdentityTransform().Matrix()), test.ShouldBeTrue)
}
