package procam

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/EDM-Research/ProcamCalib/logging"
	"github.com/EDM-Research/ProcamCalib/rimage/transform"
	"github.com/EDM-Research/ProcamCalib/spatialmath"
)

// Trace is everything computed for one clicked camera pixel.
type Trace struct {
	Pixel r2.Point
	// Direction is the undistorted viewing direction in camera space.
	Direction r3.Vector
	// CameraLine is the sight line in camera space.
	CameraLine SightLine
	// ProjectorLine is CameraLine in projector space.
	ProjectorLine SightLine
	// Top and Bottom are the frustum crossings, at z = 1.
	Top    r3.Vector
	Bottom r3.Vector

	Polyline Polyline
	Samples  []ProjectedSample
	Segments []Segment
}

// A Tracer runs the full pixel to projector pattern pipeline for a fixed calibration.
type Tracer struct {
	calib         *Calibration
	path          OpticalPath
	clipper       *FrustumClipper
	backProjector *BackProjector
	logger        logging.Logger
}

// NewTracer validates calib and prepares the frustum and back-projection for its projector.
func NewTracer(calib *Calibration, logger logging.Logger) (*Tracer, error) {
	if err := calib.CheckValid(); err != nil {
		return nil, errors.Wrap(err, "invalid calibration")
	}
	proj := calib.Projector
	clipper, err := NewFrustumClipper(proj.PinholeCameraIntrinsics, proj.Width, proj.Height)
	if err != nil {
		return nil, err
	}
	path := NewOpticalPath(calib.Mirror)
	logger.Debugw("tracer ready", "mirrored", path.Mirrored(),
		"projector_width", proj.Width, "projector_height", proj.Height)
	return &Tracer{
		calib:         calib,
		path:          path,
		clipper:       clipper,
		backProjector: NewBackProjector(proj, proj.Width, proj.Height),
		logger:        logger,
	}, nil
}

// Calibration returns the calibration the tracer was built from.
func (t *Tracer) Calibration() *Calibration {
	return t.calib
}

// BackProjector returns the projector back-projection used by the tracer.
func (t *Tracer) BackProjector() *BackProjector {
	return t.backProjector
}

// Trace follows the camera pixel px through to the projector and returns the visible
// pattern line segments it predicts.
func (t *Tracer) Trace(px r2.Point) (*Trace, error) {
	dir, err := t.calib.Camera.UnprojectPixel(px)
	if err != nil {
		return nil, errors.Wrapf(err, "unprojecting camera pixel %v", px)
	}
	cameraLine, err := t.path.Resolve(dir)
	if err != nil {
		return nil, errors.Wrap(err, "resolving sight line")
	}
	projectorLine, err := TransformSightLine(t.calib.CameraToProjector, cameraLine)
	if err != nil {
		return nil, errors.Wrap(err, "moving sight line into projector space")
	}
	top, bottom, err := t.clipper.Clip(projectorLine)
	if err != nil {
		return nil, errors.Wrap(err, "clipping sight line to projector frustum")
	}
	polyline := Densify(top, bottom, PolylineSamples)
	samples := t.backProjector.Project(polyline)
	segments := VisibleSegments(samples, t.backProjector.Bounds())

	t.logger.Debugw("traced pixel",
		"pixel", px,
		"camera_line", cameraLine,
		"projector_line", projectorLine,
		"top", top,
		"bottom", bottom,
		"projected", lo.CountBy(samples, func(s ProjectedSample) bool { return s.OK }),
		"segments", len(segments))

	return &Trace{
		Pixel:         px,
		Direction:     dir,
		CameraLine:    cameraLine,
		ProjectorLine: projectorLine,
		Top:           top,
		Bottom:        bottom,
		Polyline:      polyline,
		Samples:       samples,
		Segments:      segments,
	}, nil
}

// IsRecoverable reports whether err only means a single click could not be traced, so the
// session can carry on.
func IsRecoverable(err error) bool {
	return spatialmath.IsGeometryError(err) || errors.Is(err, transform.ErrOutOfDomain)
}
