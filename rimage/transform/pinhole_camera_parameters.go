// Package transform holds the pinhole camera and projector models: intrinsics, lens
// distortion, pixel unprojection and point projection, and homogeneous frame changes.
package transform

import (
	"fmt"
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrNoIntrinsics is when a camera does not have intrinsics parameters or other parameters.
var ErrNoIntrinsics = errors.New("camera intrinsic parameters are not available")

// NewNoIntrinsicsError is used when the intriniscs are not defined.
func NewNoIntrinsicsError(msg string) error {
	return errors.Wrap(ErrNoIntrinsics, msg)
}

// PinholeCameraModel is the model of a pinhole camera or projector.
type PinholeCameraModel struct {
	*PinholeCameraIntrinsics `json:"intrinsic_parameters"`
	Distortion               Distorter `json:"distortion"`
}

// CheckValid checks the intrinsics and, when present, the distortion model.
func (params *PinholeCameraModel) CheckValid() error {
	if params == nil {
		return NewNoIntrinsicsError("camera model does not exist")
	}
	if err := params.PinholeCameraIntrinsics.CheckValid(); err != nil {
		return err
	}
	if params.Distortion != nil {
		return params.Distortion.CheckValid()
	}
	return nil
}

// DistortionMap is a function that transforms the undistorted input points (u,v) to the distorted points (x,y)
// according to the model in PinholeCameraModel.Distortion.
func (params *PinholeCameraModel) DistortionMap() func(u, v float64) (float64, float64) {
	return func(u, v float64) (float64, float64) {
		x := (u - params.Ppx) / params.Fx
		y := (v - params.Ppy) / params.Fy
		if params.Distortion != nil {
			x, y = params.Distortion.Transform(x, y)
		}
		x = x*params.Fx + params.Ppx
		y = y*params.Fy + params.Ppy
		return x, y
	}
}

// UndistortPixel removes lens distortion from a pixel and returns the pixel an ideal
// pinhole with the same intrinsics would have observed.
func (params *PinholeCameraModel) UndistortPixel(px r2.Point) (r2.Point, error) {
	xd := (px.X - params.Ppx) / params.Fx
	yd := (px.Y - params.Ppy) / params.Fy
	xu, yu, err := Undistort(params.Distortion, xd, yd)
	if err != nil {
		return r2.Point{}, errors.Wrapf(err, "cannot undistort pixel %v", px)
	}
	return r2.Point{X: xu*params.Fx + params.Ppx, Y: yu*params.Fy + params.Ppy}, nil
}

// UnprojectPixel turns a pixel of this sensor into a direction in the sensor's frame.
// The direction is scaled so that its z component is 1; the optical centre is the origin.
func (params *PinholeCameraModel) UnprojectPixel(px r2.Point) (r3.Vector, error) {
	if !params.Contains(px) {
		return r3.Vector{}, NewOutOfDomainError(fmt.Sprintf("pixel %v outside sensor of size %dx%d",
			px, params.Width, params.Height))
	}
	undistorted, err := params.UndistortPixel(px)
	if err != nil {
		return r3.Vector{}, err
	}
	kInv, err := params.InverseCameraMatrix()
	if err != nil {
		return r3.Vector{}, err
	}
	var dir mat.VecDense
	dir.MulVec(kInv, mat.NewVecDense(3, []float64{undistorted.X, undistorted.Y, 1}))
	return r3.Vector{X: dir.AtVec(0), Y: dir.AtVec(1), Z: dir.AtVec(2)}, nil
}

// ProjectPoint projects a point given in the sensor's own frame onto its image plane,
// applying lens distortion. Points on or behind the image plane cannot be projected.
func (params *PinholeCameraModel) ProjectPoint(pt r3.Vector) (r2.Point, error) {
	if pt.Z < pointDepthEpsilon {
		return r2.Point{}, NewOutOfDomainError(fmt.Sprintf("point %v is not in front of the sensor", pt))
	}
	u := pt.X/pt.Z*params.Fx + params.Ppx
	v := pt.Y/pt.Z*params.Fy + params.Ppy
	x, y := params.DistortionMap()(u, v)
	px := r2.Point{X: x, Y: y}
	if !isFinite(px.X) || !isFinite(px.Y) {
		return r2.Point{}, NewOutOfDomainError(fmt.Sprintf("distortion model diverges at point %v", pt))
	}
	return px, nil
}

// PinholeCameraIntrinsics holds the parameters necessary to do a perspective projection of a 3D scene to the 2D plane.
type PinholeCameraIntrinsics struct {
	Width  int     `json:"width_px"`
	Height int     `json:"height_px"`
	Fx     float64 `json:"fx"`
	Fy     float64 `json:"fy"`
	Ppx    float64 `json:"ppx"`
	Ppy    float64 `json:"ppy"`
}

// NewPinholeCameraIntrinsicsFromMatrix reads fx, fy, ppx and ppy out of a 3x3 camera
// matrix. Matrices with skew or a projective last row are rejected.
func NewPinholeCameraIntrinsicsFromMatrix(k mat.Matrix, width, height int) (*PinholeCameraIntrinsics, error) {
	if r, c := k.Dims(); r != 3 || c != 3 {
		return nil, NewNoIntrinsicsError(fmt.Sprintf("camera matrix must be 3x3, got %dx%d", r, c))
	}
	const tol = 1e-9
	if math.Abs(k.At(0, 1)) > tol || math.Abs(k.At(1, 0)) > tol ||
		math.Abs(k.At(2, 0)) > tol || math.Abs(k.At(2, 1)) > tol || math.Abs(k.At(2, 2)-1) > tol {
		return nil, NewNoIntrinsicsError(fmt.Sprintf("camera matrix is not of the form [[fx 0 ppx] [0 fy ppy] [0 0 1]]: %v",
			mat.Formatted(k, mat.Squeeze())))
	}
	intrinsics := &PinholeCameraIntrinsics{
		Width:  width,
		Height: height,
		Fx:     k.At(0, 0),
		Fy:     k.At(1, 1),
		Ppx:    k.At(0, 2),
		Ppy:    k.At(1, 2),
	}
	if err := intrinsics.CheckValid(); err != nil {
		return nil, err
	}
	return intrinsics, nil
}

// CheckValid checks if the fields for PinholeCameraIntrinsics have valid inputs.
func (params *PinholeCameraIntrinsics) CheckValid() error {
	if params == nil {
		return NewNoIntrinsicsError("Intrinsics do not exist")
	}
	if params.Width <= 0 || params.Height <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid size (%#v, %#v)", params.Width, params.Height))
	}
	if params.Fx <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length Fx = %#v", params.Fx))
	}
	if params.Fy <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length Fy = %#v", params.Fy))
	}
	if params.Ppx < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid principal X point Ppx = %#v", params.Ppx))
	}
	if params.Ppy < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid principal Y point Ppy = %#v", params.Ppy))
	}
	return nil
}

// Bounds returns the closed pixel rectangle [0,Width]x[0,Height].
func (params *PinholeCameraIntrinsics) Bounds() r2.Rect {
	return r2.Rect{
		X: r1.Interval{Lo: 0, Hi: float64(params.Width)},
		Y: r1.Interval{Lo: 0, Hi: float64(params.Height)},
	}
}

// Contains reports whether px lies inside Bounds, edges included.
func (params *PinholeCameraIntrinsics) Contains(px r2.Point) bool {
	return params.Bounds().ContainsPoint(px)
}

// GetCameraMatrix creates a new camera matrix and returns it.
// Camera matrix:
// [[fx 0 ppx],
//
//	[0 fy ppy],
//	[0 0  1]]
func (params *PinholeCameraIntrinsics) GetCameraMatrix() *mat.Dense {
	if params == nil {
		return nil
	}
	cameraMatrix := mat.NewDense(3, 3, nil)
	cameraMatrix.Set(0, 0, params.Fx)
	cameraMatrix.Set(1, 1, params.Fy)
	cameraMatrix.Set(0, 2, params.Ppx)
	cameraMatrix.Set(1, 2, params.Ppy)
	cameraMatrix.Set(2, 2, 1)
	return cameraMatrix
}

// InverseCameraMatrix returns K^-1.
func (params *PinholeCameraIntrinsics) InverseCameraMatrix() (*mat.Dense, error) {
	if params == nil {
		return nil, NewNoIntrinsicsError("Intrinsics do not exist")
	}
	var kInv mat.Dense
	if err := kInv.Inverse(params.GetCameraMatrix()); err != nil {
		return nil, errors.Wrap(err, "camera matrix is not invertible")
	}
	return &kInv, nil
}

// UnprojectCorner returns K^-1 * (u, v, 1) without range checks or undistortion. It is
// used for the frustum's corner rays, which sit exactly on the sensor's edges.
func (params *PinholeCameraIntrinsics) UnprojectCorner(u, v float64) (r3.Vector, error) {
	kInv, err := params.InverseCameraMatrix()
	if err != nil {
		return r3.Vector{}, err
	}
	var dir mat.VecDense
	dir.MulVec(kInv, mat.NewVecDense(3, []float64{u, v, 1}))
	return r3.Vector{X: dir.AtVec(0), Y: dir.AtVec(1), Z: dir.AtVec(2)}, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
