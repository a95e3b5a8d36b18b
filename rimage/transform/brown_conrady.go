package transform

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// BrownConrady is a struct for some terms of a modified Brown-Conrady model of distortion.
// The rational terms K4..K6 divide the radial factor, as in OpenCV's rational model.
type BrownConrady struct {
	RadialK1     float64 `json:"rk1"`
	RadialK2     float64 `json:"rk2"`
	RadialK3     float64 `json:"rk3"`
	TangentialP1 float64 `json:"tp1"`
	TangentialP2 float64 `json:"tp2"`
	RationalK4   float64 `json:"rk4"`
	RationalK5   float64 `json:"rk5"`
	RationalK6   float64 `json:"rk6"`
}

// NewBrownConrady takes in a slice of floats in the order rk1, rk2, rk3, tp1, tp2, rk4, rk5, rk6.
// Missing trailing values are zero.
func NewBrownConrady(inp []float64) (*BrownConrady, error) {
	if len(inp) > 8 {
		return nil, errors.Errorf("list of parameters too long, expected max 8, got %d", len(inp))
	}
	params := make([]float64, 8)
	copy(params, inp)
	bc := &BrownConrady{params[0], params[1], params[2], params[3], params[4], params[5], params[6], params[7]}
	if err := bc.CheckValid(); err != nil {
		return nil, err
	}
	return bc, nil
}

// CheckValid checks if the fields for BrownConrady have valid inputs.
func (bc *BrownConrady) CheckValid() error {
	if bc == nil {
		return InvalidDistortionError("BrownConrady shaped distortion_parameters not provided")
	}
	for i, p := range bc.Parameters() {
		if !isFinite(p) {
			return InvalidDistortionError(fmt.Sprintf("parameter %d is %v", i, p))
		}
	}
	return nil
}

// ModelType returns the type of distortion model.
func (bc *BrownConrady) ModelType() DistortionType {
	return BrownConradyDistortionType
}

// Parameters returns the distortion parameters.
func (bc *BrownConrady) Parameters() []float64 {
	if bc == nil {
		return []float64{}
	}
	return []float64{
		bc.RadialK1, bc.RadialK2, bc.RadialK3,
		bc.TangentialP1, bc.TangentialP2,
		bc.RationalK4, bc.RationalK5, bc.RationalK6,
	}
}

// Transform distorts the normalized point (x, y):
//
//	x_d = x * radial + 2*p1*x*y + p2*(r² + 2*x²)
//	y_d = y * radial + 2*p2*x*y + p1*(r² + 2*y²)
//
// with radial = (1 + k1*r² + k2*r⁴ + k3*r⁶) / (1 + k4*r² + k5*r⁴ + k6*r⁶).
// A vanishing rational denominator yields NaN.
func (bc *BrownConrady) Transform(x, y float64) (float64, float64) {
	if bc == nil {
		return x, y
	}
	r2 := x*x + y*y
	r4 := r2 * r2
	r6 := r4 * r2
	denom := 1 + bc.RationalK4*r2 + bc.RationalK5*r4 + bc.RationalK6*r6
	if math.Abs(denom) < 1e-12 {
		return math.NaN(), math.NaN()
	}
	radial := (1 + bc.RadialK1*r2 + bc.RadialK2*r4 + bc.RadialK3*r6) / denom
	xd := x*radial + 2*bc.TangentialP1*x*y + bc.TangentialP2*(r2+2*x*x)
	yd := y*radial + 2*bc.TangentialP2*x*y + bc.TangentialP1*(r2+2*y*y)
	return xd, yd
}
