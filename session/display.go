package session

import (
	"image"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/EDM-Research/ProcamCalib/logging"
	"github.com/EDM-Research/ProcamCalib/rimage"
)

// Names of the two views a session keeps up to date.
const (
	FrameView   = "frame"
	PatternView = "pattern"
)

// A Display presents named views. Showing a view replaces what was shown under that name.
type Display interface {
	Show(name string, img image.Image) error
	Close() error
}

// FileDisplay presents each view by writing it to <dir>/<name>.png.
type FileDisplay struct {
	dir    string
	logger logging.Logger
}

// NewFileDisplay returns a display writing into dir, creating it if needed.
func NewFileDisplay(dir string, logger logging.Logger) (*FileDisplay, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "cannot create display directory %q", dir)
	}
	return &FileDisplay{dir: dir, logger: logger}, nil
}

// Path returns the file view name is written to.
func (fd *FileDisplay) Path(name string) string {
	return filepath.Join(fd.dir, name+".png")
}

// Show writes img to the view's file.
func (fd *FileDisplay) Show(name string, img image.Image) error {
	path := fd.Path(name)
	if err := rimage.WriteImageToFile(path, img); err != nil {
		return err
	}
	fd.logger.Debugw("view updated", "view", name, "path", path)
	return nil
}

// Close is a no-op; written views stay on disk.
func (fd *FileDisplay) Close() error {
	return nil
}
