package transform

import (
	"fmt"

	"github.com/pkg/errors"
)

// DistortionType is the name of the distortion model.
type DistortionType string

const (
	// BrownConradyDistortionType is for simple lenses of narrow field easily modeled as a pinhole camera.
	BrownConradyDistortionType = DistortionType("brown_conrady")
	// KannalaBrandtDistortionType is for wide-angle and fisheye lense distortion.
	KannalaBrandtDistortionType = DistortionType("kannala_brandt")
)

// Distorter defines a Transform that takes an undistorted image and distorts it according to the model.
// Transform works on normalized image coordinates, i.e. (x/z, y/z).
type Distorter interface {
	ModelType() DistortionType
	CheckValid() error
	Parameters() []float64
	Transform(x, y float64) (float64, float64)
}

// InvalidDistortionError is used when the distortion_parameters are invalid.
func InvalidDistortionError(msg string) error {
	return errors.Wrap(errors.New("invalid distortion_parameters"), msg)
}

// NewDistorter returns a Distorter given a valid DistortionType and its parameters.
func NewDistorter(distortionType DistortionType, parameters []float64) (Distorter, error) {
	switch distortionType {
	case BrownConradyDistortionType:
		return NewBrownConrady(parameters)
	case KannalaBrandtDistortionType:
		return NewKannalaBrandt(parameters)
	default:
		return nil, errors.Errorf("do not know how to parse %q distortion model", distortionType)
	}
}

// NewDistorterFromOpenCV builds a Distorter from a coefficient vector in OpenCV's order:
// (k1, k2, p1, p2[, k3[, k4, k5, k6]]) for the standard model, or (k1, k2, k3, k4) for the
// fisheye model. Thin prism and tilted sensor terms are not supported.
func NewDistorterFromOpenCV(coeffs []float64, fisheye bool) (Distorter, error) {
	if fisheye {
		if len(coeffs) != 0 && len(coeffs) != 4 {
			return nil, InvalidDistortionError(fmt.Sprintf("fisheye model needs 4 coefficients, got %d", len(coeffs)))
		}
		return NewDistorter(KannalaBrandtDistortionType, coeffs)
	}
	switch len(coeffs) {
	case 0:
		return NewDistorter(BrownConradyDistortionType, nil)
	case 4, 5, 8:
		padded := make([]float64, 8)
		copy(padded, coeffs)
		// reorder k1 k2 p1 p2 k3 k4 k5 k6 -> k1 k2 k3 p1 p2 k4 k5 k6
		return NewDistorter(BrownConradyDistortionType, []float64{
			padded[0], padded[1], padded[4],
			padded[2], padded[3],
			padded[5], padded[6], padded[7],
		})
	default:
		return nil, InvalidDistortionError(fmt.Sprintf("expected 4, 5 or 8 coefficients, got %d", len(coeffs)))
	}
}
