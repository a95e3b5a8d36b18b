package config

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Defaults follow the layout the calibration tool writes its data in.
const (
	DefaultCalibrationDir = "./data/estimation/procamCalib/"
	DefaultRecordingsDir  = "./data/recordings/"
	DefaultPatternsDir    = "./data/patterns/"
	DefaultPattern        = "Asym_4_9/01.png"
	DefaultFrameName      = "00.png"
	DefaultSnapshotPath   = "eval.png"
	DefaultOutputDir      = "./data/eval/"

	calibrationExt = ".json"
	// mirroredPrefix starts the sequence name of every recording made through a mirror.
	mirroredPrefix = "S"
)

// Session describes one verification run: which estimation to check, where its inputs
// live and where views and snapshots go.
type Session struct {
	// Estimation names the calibration record relative to CalibrationDir, e.g. "S01" or
	// "S01.json". Its first path element is the recording's sequence name.
	Estimation     string
	CalibrationDir string
	RecordingsDir  string
	PatternsDir    string

	// FramePath and PatternPath override the default frame and pattern when set.
	FramePath   string
	PatternPath string

	SnapshotPath string
	OutputDir    string

	// Mirrored overrides the mirrored mode inferred from the sequence name.
	Mirrored *bool
}

// NewSession returns the default session for estimation.
func NewSession(estimation string) *Session {
	return &Session{
		Estimation:     estimation,
		CalibrationDir: DefaultCalibrationDir,
		RecordingsDir:  DefaultRecordingsDir,
		PatternsDir:    DefaultPatternsDir,
		SnapshotPath:   DefaultSnapshotPath,
		OutputDir:      DefaultOutputDir,
	}
}

// Validate reports every problem with the session settings.
func (s *Session) Validate() error {
	var err error
	if strings.TrimSpace(s.Estimation) == "" {
		err = multierr.Append(err, NewConfigurationError("an estimation name is required"))
	} else if s.SequenceName() == "" {
		err = multierr.Append(err, NewConfigurationError("estimation "+s.Estimation+" has no sequence name"))
	}
	if s.CalibrationDir == "" {
		err = multierr.Append(err, NewConfigurationError("calibration directory is required"))
	}
	if s.FramePath == "" && s.RecordingsDir == "" {
		err = multierr.Append(err, NewConfigurationError("either a frame or a recordings directory is required"))
	}
	if s.PatternPath == "" && s.PatternsDir == "" {
		err = multierr.Append(err, NewConfigurationError("either a pattern or a patterns directory is required"))
	}
	if s.SnapshotPath == "" {
		err = multierr.Append(err, NewConfigurationError("snapshot path is required"))
	} else if _, formatErr := imaging.FormatFromFilename(s.SnapshotPath); formatErr != nil {
		err = multierr.Append(err, errors.Wrap(NewConfigurationError("unsupported snapshot format"), formatErr.Error()))
	}
	if s.OutputDir == "" {
		err = multierr.Append(err, NewConfigurationError("output directory is required"))
	}
	return err
}

// SequenceName is the recording sequence the estimation was made from.
func (s *Session) SequenceName() string {
	first, _, _ := strings.Cut(filepath.ToSlash(strings.TrimSpace(s.Estimation)), "/")
	return strings.TrimSuffix(first, path.Ext(first))
}

// IsMirrored reports whether the session traces through a mirror.
func (s *Session) IsMirrored() bool {
	if s.Mirrored != nil {
		return *s.Mirrored
	}
	return IsMirroredEstimation(s.SequenceName())
}

// IsMirroredEstimation reports whether a sequence was recorded through a mirror.
func IsMirroredEstimation(sequence string) bool {
	return strings.HasPrefix(sequence, mirroredPrefix)
}

// CalibrationPath is the calibration record to load.
func (s *Session) CalibrationPath() string {
	name := s.Estimation
	if filepath.Ext(name) == "" {
		name += calibrationExt
	}
	return filepath.Join(s.CalibrationDir, name)
}

// FrameFile is the camera frame markings are placed on.
func (s *Session) FrameFile() string {
	if s.FramePath != "" {
		return s.FramePath
	}
	return filepath.Join(s.RecordingsDir, s.SequenceName(), DefaultFrameName)
}

// PatternFile is the projector pattern predicted lines are drawn over.
func (s *Session) PatternFile() string {
	if s.PatternPath != "" {
		return s.PatternPath
	}
	return filepath.Join(s.PatternsDir, filepath.FromSlash(DefaultPattern))
}
