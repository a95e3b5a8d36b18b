// Package procam traces a camera pixel's sight line, optionally folded by a planar mirror,
// into the projector and predicts the projector pixels it covers.
package procam

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/EDM-Research/ProcamCalib/rimage/transform"
	"github.com/EDM-Research/ProcamCalib/spatialmath"
)

const (
	// DefaultProjectorWidth is the projector resolution assumed when a record does not carry one.
	DefaultProjectorWidth = 1920
	// DefaultProjectorHeight is the projector resolution assumed when a record does not carry one.
	DefaultProjectorHeight = 1080
	// DefaultCameraWidth is the camera sensor width assumed when a record does not carry one.
	DefaultCameraWidth = 1280
	// DefaultCameraHeight is the camera sensor height assumed when a record does not carry one.
	DefaultCameraHeight = 800
)

// Calibration is the pre-computed procam calibration a session works from. It is loaded
// once and never modified, so it can be shared without synchronization.
type Calibration struct {
	Camera    *transform.PinholeCameraModel
	Projector *transform.PinholeCameraModel

	// CameraToProjector maps camera space points into projector space.
	CameraToProjector *transform.HomogeneousTransform
	// VirtualProjectorToCamera is only estimated for mirrored setups and may be nil.
	VirtualProjectorToCamera *transform.HomogeneousTransform
	// Mirror is nil unless the setup views the scene through a planar mirror.
	Mirror *spatialmath.Mirror

	CameraRMS    float64
	ProjectorRMS float64
	StereoRMS    float64
	Detections   int
}

// Mirrored reports whether the calibration describes a mirrored setup.
func (c *Calibration) Mirrored() bool {
	return c.Mirror != nil
}

// CheckValid reports every missing or invalid part of the calibration.
func (c *Calibration) CheckValid() error {
	if c == nil {
		return errors.New("calibration is nil")
	}
	var err error
	if cameraErr := c.Camera.CheckValid(); cameraErr != nil {
		err = multierr.Append(err, errors.Wrap(cameraErr, "camera"))
	}
	if projectorErr := c.Projector.CheckValid(); projectorErr != nil {
		err = multierr.Append(err, errors.Wrap(projectorErr, "projector"))
	}
	if c.CameraToProjector == nil {
		err = multierr.Append(err, errors.New("camera to projector transform is missing"))
	}
	return err
}
