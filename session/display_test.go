package session

import (
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"github.com/EDM-Research/ProcamCalib/logging"
	"github.com/EDM-Research/ProcamCalib/rimage"
)

func TestFileDisplay(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "views")
	display, err := NewFileDisplay(dir, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	defer display.Close()

	test.That(t, display.Path(FrameView), test.ShouldEqual, filepath.Join(dir, "frame.png"))
	test.That(t, display.Show(FrameView, rimage.NewFilledImage(3, 2, grey)), test.ShouldBeNil)

	img, err := rimage.ReadImageFromFile(display.Path(FrameView))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 3)
	test.That(t, rimage.CloneToRGBA(img).RGBAAt(1, 1), test.ShouldResemble, grey)
}
