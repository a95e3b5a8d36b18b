package transform

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestBrownConrady(t *testing.T) {
	bc, err := NewBrownConrady([]float64{0.1, 0.01, 0.001, 0.002, 0.003})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bc.ModelType(), test.ShouldEqual, BrownConradyDistortionType)
	test.That(t, bc.Parameters(), test.ShouldResemble, []float64{0.1, 0.01, 0.001, 0.002, 0.003, 0, 0, 0})

	// r² = 0.25
	x, y := bc.Transform(0.5, 0)
	radial := 1 + 0.1*0.25 + 0.01*0.0625 + 0.001*0.015625
	test.That(t, x, test.ShouldAlmostEqual, 0.5*radial+0.003*(0.25+0.5))
	test.That(t, y, test.ShouldAlmostEqual, 0.002*0.25)

	x, y = bc.Transform(0, 0)
	test.That(t, x, test.ShouldEqual, 0)
	test.That(t, y, test.ShouldEqual, 0)

	_, err = NewBrownConrady(make([]float64, 9))
	test.That(t, err, test.ShouldNotBeNil)

	var nilBC *BrownConrady
	test.That(t, nilBC.CheckValid(), test.ShouldNotBeNil)
	x, y = nilBC.Transform(0.3, 0.4)
	test.That(t, x, test.ShouldEqual, 0.3)
	test.That(t, y, test.ShouldEqual, 0.4)
}

func TestNewDistorterFromOpenCV(t *testing.T) {
	t.Run("standard order", func(t *testing.T) {
		d, err := NewDistorterFromOpenCV([]float64{1, 2, 3, 4, 5}, false)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, d.ModelType(), test.ShouldEqual, BrownConradyDistortionType)
		bc, ok := d.(*BrownConrady)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, bc.RadialK1, test.ShouldEqual, 1)
		test.That(t, bc.RadialK2, test.ShouldEqual, 2)
		test.That(t, bc.TangentialP1, test.ShouldEqual, 3)
		test.That(t, bc.TangentialP2, test.ShouldEqual, 4)
		test.That(t, bc.RadialK3, test.ShouldEqual, 5)
	})

	t.Run("rational order", func(t *testing.T) {
		d, err := NewDistorterFromOpenCV([]float64{1, 2, 3, 4, 5, 6, 7, 8}, false)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, d.Parameters(), test.ShouldResemble, []float64{1, 2, 5, 3, 4, 6, 7, 8})
	})

	t.Run("fisheye", func(t *testing.T) {
		d, err := NewDistorterFromOpenCV([]float64{0.1, 0.2, 0.3, 0.4}, true)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, d.ModelType(), test.ShouldEqual, KannalaBrandtDistortionType)

		_, err = NewDistorterFromOpenCV([]float64{0.1, 0.2, 0.3, 0.4, 0.5}, true)
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("unsupported lengths", func(t *testing.T) {
		for _, n := range []int{1, 3, 6, 12, 14} {
			_, err := NewDistorterFromOpenCV(make([]float64, n), false)
			test.That(t, err, test.ShouldNotBeNil)
		}
	})

	t.Run("by name", func(t *testing.T) {
		d, err := NewDistorter(KannalaBrandtDistortionType, []float64{0.1})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, d.Parameters(), test.ShouldResemble, []float64{0.1, 0, 0, 0})

		_, err = NewDistorter("division", nil)
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestUndistortInvertsDistortion(t *testing.T) {
	bc, err := NewDistorterFromOpenCV([]float64{-0.28, 0.07, 0.0008, -0.0005, -0.01}, false)
	test.That(t, err, test.ShouldBeNil)
	rational, err := NewDistorterFromOpenCV([]float64{0.5, -0.1, 0.001, 0.002, 0.01, 0.4, -0.05, 0.005}, false)
	test.That(t, err, test.ShouldBeNil)
	kb, err := NewKannalaBrandt([]float64{0.05, -0.01, 0.002, -0.0003})
	test.That(t, err, test.ShouldBeNil)

	for _, d := range []Distorter{bc, rational, kb} {
		t.Run(string(d.ModelType()), func(t *testing.T) {
			for x := -0.6; x <= 0.6; x += 0.15 {
				for y := -0.4; y <= 0.4; y += 0.1 {
					xd, yd := d.Transform(x, y)
					xu, yu, err := Undistort(d, xd, yd)
					test.That(t, err, test.ShouldBeNil)
					test.That(t, xu, test.ShouldAlmostEqual, x, 1e-8)
					test.That(t, yu, test.ShouldAlmostEqual, y, 1e-8)
				}
			}
		})
	}

	xu, yu, err := Undistort(nil, 0.25, -0.5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, xu, test.ShouldEqual, 0.25)
	test.That(t, yu, test.ShouldEqual, -0.5)
}

func TestUndistortOutsideModelRange(t *testing.T) {
	// theta*(1 - theta²) never exceeds ~0.385, so a distorted radius of 2 has no preimage
	kb, err := NewKannalaBrandt([]float64{-1})
	test.That(t, err, test.ShouldBeNil)
	_, _, err = Undistort(kb, 2, 0)
	test.That(t, errors.Is(err, ErrOutOfDomain), test.ShouldBeTrue)
}
