package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"

	"github.com/EDM-Research/ProcamCalib/logging"
	"github.com/EDM-Research/ProcamCalib/procam"
	"github.com/EDM-Research/ProcamCalib/rimage/transform"
	"github.com/EDM-Research/ProcamCalib/spatialmath"
)

// calibrationRecord is the procam calibration as written by the calibration tool through
// OpenCV's FileStorage. Matrices stay raw until their shape is known.
type calibrationRecord struct {
	CamInt     interface{} `json:"cam_int"`
	CamDist    interface{} `json:"cam_dist"`
	CamWidth   int         `json:"cam_width"`
	CamHeight  int         `json:"cam_height"`
	CamFisheye bool        `json:"cam_fisheye"`
	CamRMS     float64     `json:"cam_RMS"`

	ProjInt    interface{} `json:"proj_int"`
	ProjDist   interface{} `json:"proj_dist"`
	ProjWidth  int         `json:"proj_width"`
	ProjHeight int         `json:"proj_height"`
	ProjRMS    float64     `json:"proj_RMS"`

	Cam2Proj   interface{} `json:"cam2proj"`
	StereoRMS  float64     `json:"stereo_RMS"`
	Detections int         `json:"detections"`

	Plane           interface{} `json:"plane"`
	VirtualProj2Cam interface{} `json:"virtualProj2Cam"`
}

// ReadCalibrationFile loads the calibration record at path. When mirrored is set the record
// must also carry the mirror plane.
func ReadCalibrationFile(path string, mirrored bool, logger logging.Logger) (*procam.Calibration, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(NewConfigurationError("cannot read calibration file"), err.Error())
	}
	calib, err := ReadCalibration(data, mirrored)
	if err != nil {
		return nil, errors.Wrapf(err, "calibration file %q", path)
	}
	logger.Infow("loaded calibration",
		"path", path,
		"mirrored", calib.Mirrored(),
		"camera", calib.Camera.Bounds().Hi(),
		"projector", calib.Projector.Bounds().Hi(),
		"cam_rms", calib.CameraRMS,
		"proj_rms", calib.ProjectorRMS,
		"stereo_rms", calib.StereoRMS,
		"detections", calib.Detections)
	if calib.Mirrored() {
		logger.Infow("mirror plane", "plane", calib.Mirror.String())
	}
	if calib.VirtualProjectorToCamera != nil {
		logger.Debugw("virtual projector to camera", "transform", calib.VirtualProjectorToCamera.String())
	}
	return calib, nil
}

// ReadCalibration parses a calibration record. Every missing or malformed field is reported.
func ReadCalibration(data []byte, mirrored bool) (*procam.Calibration, error) {
	var raw map[string]interface{}
	if err := json5.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(NewConfigurationError("malformed calibration JSON"), err.Error())
	}

	required := []string{"cam_int", "cam_dist", "proj_int", "proj_dist", "cam2proj"}
	if mirrored {
		required = append(required, "plane")
	}
	var err error
	for _, field := range required {
		if _, ok := raw[field]; !ok {
			err = multierr.Append(err, NewMissingFieldError(field))
		}
	}
	if err != nil {
		return nil, err
	}

	var rec calibrationRecord
	if decodeErr := weakDecode(raw, &rec); decodeErr != nil {
		return nil, errors.Wrap(NewConfigurationError("malformed calibration record"), decodeErr.Error())
	}
	return rec.toCalibration(mirrored)
}

func (rec *calibrationRecord) toCalibration(mirrored bool) (*procam.Calibration, error) {
	calib := &procam.Calibration{
		CameraRMS:    rec.CamRMS,
		ProjectorRMS: rec.ProjRMS,
		StereoRMS:    rec.StereoRMS,
		Detections:   rec.Detections,
	}
	var err error

	camera, camErr := buildCameraModel("cam", rec.CamInt, rec.CamDist, rec.CamFisheye,
		sizeOrDefault(rec.CamWidth, procam.DefaultCameraWidth), sizeOrDefault(rec.CamHeight, procam.DefaultCameraHeight))
	err = multierr.Append(err, camErr)
	calib.Camera = camera

	projector, projErr := buildCameraModel("proj", rec.ProjInt, rec.ProjDist, false,
		sizeOrDefault(rec.ProjWidth, procam.DefaultProjectorWidth), sizeOrDefault(rec.ProjHeight, procam.DefaultProjectorHeight))
	err = multierr.Append(err, projErr)
	calib.Projector = projector

	cam2proj, tfErr := buildTransform(rec.Cam2Proj)
	if tfErr != nil {
		err = multierr.Append(err, NewFieldError("cam2proj", tfErr))
	}
	calib.CameraToProjector = cam2proj

	if rec.VirtualProj2Cam != nil {
		virtual, tfErr := buildTransform(rec.VirtualProj2Cam)
		if tfErr != nil {
			err = multierr.Append(err, NewFieldError("virtualProj2Cam", tfErr))
		}
		calib.VirtualProjectorToCamera = virtual
	}

	if mirrored {
		mirror, mirrorErr := buildMirror(rec.Plane)
		if mirrorErr != nil {
			err = multierr.Append(err, NewFieldError("plane", mirrorErr))
		}
		calib.Mirror = mirror
	}

	if err != nil {
		return nil, err
	}
	return calib, nil
}

func sizeOrDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func buildCameraModel(prefix string, rawK, rawDist interface{}, fisheye bool, width, height int,
) (*transform.PinholeCameraModel, error) {
	var err error
	var intrinsics *transform.PinholeCameraIntrinsics
	k, kErr := decodeMatrix(rawK, 3, 3)
	if kErr == nil {
		intrinsics, kErr = transform.NewPinholeCameraIntrinsicsFromMatrix(mat.NewDense(3, 3, k), width, height)
	}
	if kErr != nil {
		err = multierr.Append(err, NewFieldError(prefix+"_int", kErr))
	}

	var distortion transform.Distorter
	coeffs, distErr := decodeVector(rawDist)
	if distErr == nil {
		distortion, distErr = transform.NewDistorterFromOpenCV(coeffs, fisheye)
	}
	if distErr != nil {
		err = multierr.Append(err, NewFieldError(prefix+"_dist", distErr))
	}

	if err != nil {
		return nil, err
	}
	return &transform.PinholeCameraModel{PinholeCameraIntrinsics: intrinsics, Distortion: distortion}, nil
}

func buildTransform(raw interface{}) (*transform.HomogeneousTransform, error) {
	values, err := decodeMatrix(raw, 4, 4)
	if err != nil {
		return nil, err
	}
	return transform.NewHomogeneousTransform(values)
}

// buildMirror reads the plane as (a, b, c, d) with ax + by + cz + d = 0.
func buildMirror(raw interface{}) (*spatialmath.Mirror, error) {
	coeffs, err := decodeVector(raw)
	if err != nil {
		return nil, err
	}
	if len(coeffs) != 4 {
		return nil, errors.Errorf("expected 4 plane coefficients, got %d", len(coeffs))
	}
	return spatialmath.NewMirrorFromCoefficients(coeffs[0], coeffs[1], coeffs[2], coeffs[3])
}
