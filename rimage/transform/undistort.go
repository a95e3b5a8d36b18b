package transform

import (
	"fmt"
	"math"
)

const (
	maxUndistortIterations = 20
	undistortTolerance     = 1e-10
	jacobianStep           = 1e-7
)

// Undistort inverts d at the distorted normalized point (xd, yd): it finds (xu, yu) with
// d.Transform(xu, yu) = (xd, yd) by Newton-Raphson iteration, starting from the distorted
// point. The Jacobian is estimated with central differences so any Distorter can be
// inverted. A nil Distorter is the identity.
func Undistort(d Distorter, xd, yd float64) (float64, float64, error) {
	if d == nil {
		return xd, yd, nil
	}
	xu, yu := xd, yd
	for i := 0; i < maxUndistortIterations; i++ {
		xEst, yEst := d.Transform(xu, yu)
		errX, errY := xEst-xd, yEst-yd
		if errX*errX+errY*errY < undistortTolerance*undistortTolerance {
			return xu, yu, nil
		}

		// J = [[dxd/dxu, dxd/dyu], [dyd/dxu, dyd/dyu]]
		h := jacobianStep * math.Max(1, math.Hypot(xu, yu))
		xPlus, yPlus := d.Transform(xu+h, yu)
		xMinus, yMinus := d.Transform(xu-h, yu)
		dxdDxu := (xPlus - xMinus) / (2 * h)
		dydDxu := (yPlus - yMinus) / (2 * h)
		xPlus, yPlus = d.Transform(xu, yu+h)
		xMinus, yMinus = d.Transform(xu, yu-h)
		dxdDyu := (xPlus - xMinus) / (2 * h)
		dydDyu := (yPlus - yMinus) / (2 * h)

		det := dxdDxu*dydDyu - dxdDyu*dydDxu
		if !isFinite(det) || math.Abs(det) < 1e-12 {
			break
		}

		// [xu, yu] -= J^-1 * [errX, errY]
		xu -= (dydDyu*errX - dxdDyu*errY) / det
		yu -= (-dydDxu*errX + dxdDxu*errY) / det
		if !isFinite(xu) || !isFinite(yu) {
			break
		}
	}

	xEst, yEst := d.Transform(xu, yu)
	if isFinite(xEst) && isFinite(yEst) && math.Hypot(xEst-xd, yEst-yd) < undistortTolerance {
		return xu, yu, nil
	}
	return 0, 0, NewOutOfDomainError(fmt.Sprintf("%s distortion cannot be inverted at (%g, %g)", d.ModelType(), xd, yd))
}
