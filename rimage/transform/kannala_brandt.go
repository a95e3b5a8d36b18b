package transform

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// KannalaBrandt is the equidistant fisheye model: a ray at angle theta from the optical
// axis lands at distorted radius theta_d = theta*(1 + k1*theta² + k2*theta⁴ + k3*theta⁶ + k4*theta⁸).
type KannalaBrandt struct {
	K1 float64 `json:"k1"`
	K2 float64 `json:"k2"`
	K3 float64 `json:"k3"`
	K4 float64 `json:"k4"`
}

// NewKannalaBrandt takes in a slice of up to four floats k1..k4.
func NewKannalaBrandt(inp []float64) (*KannalaBrandt, error) {
	if len(inp) > 4 {
		return nil, errors.Errorf("list of parameters too long, expected max 4, got %d", len(inp))
	}
	params := make([]float64, 4)
	copy(params, inp)
	kb := &KannalaBrandt{params[0], params[1], params[2], params[3]}
	if err := kb.CheckValid(); err != nil {
		return nil, err
	}
	return kb, nil
}

// CheckValid checks if the fields for KannalaBrandt have valid inputs.
func (kb *KannalaBrandt) CheckValid() error {
	if kb == nil {
		return InvalidDistortionError("KannalaBrandt shaped distortion_parameters not provided")
	}
	for i, p := range kb.Parameters() {
		if !isFinite(p) {
			return InvalidDistortionError(fmt.Sprintf("parameter %d is %v", i, p))
		}
	}
	return nil
}

// ModelType returns the type of distortion model.
func (kb *KannalaBrandt) ModelType() DistortionType {
	return KannalaBrandtDistortionType
}

// Parameters returns the distortion parameters.
func (kb *KannalaBrandt) Parameters() []float64 {
	if kb == nil {
		return []float64{}
	}
	return []float64{kb.K1, kb.K2, kb.K3, kb.K4}
}

// Transform distorts the normalized point (x, y).
func (kb *KannalaBrandt) Transform(x, y float64) (float64, float64) {
	if kb == nil {
		return x, y
	}
	r := math.Hypot(x, y)
	if r < 1e-12 {
		return x, y
	}
	theta := math.Atan(r)
	theta2 := theta * theta
	theta4 := theta2 * theta2
	theta6 := theta4 * theta2
	theta8 := theta4 * theta4
	thetaD := theta * (1 + kb.K1*theta2 + kb.K2*theta4 + kb.K3*theta6 + kb.K4*theta8)
	scale := thetaD / r
	return x * scale, y * scale
}
