package main

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/EDM-Research/ProcamCalib/config"
	"github.com/EDM-Research/ProcamCalib/rimage"
)

var black = color.RGBA{A: 255}

const testRecord = `{
    "cam_int": [ 1000., 0., 640., 0., 1000., 400., 0., 0., 1. ],
    "cam_dist": [ 0., 0., 0., 0., 0. ],
    "cam_width": 1280,
    "cam_height": 800,
    "cam_fisheye": 0,
    "proj_int": [ 1000., 0., 960., 0., 1000., 540., 0., 0., 1. ],
    "proj_dist": [ 0., 0., 0., 0., 0. ],
    "proj_width": 1920,
    "proj_height": 1080,
    "proj_RMS": 0.2,
    "cam2proj": [ 1., 0., 0., 0., 0., 1., 0., 0.1, 0., 0., 1., 0., 0., 0., 0., 1. ],
    "stereo_RMS": 0.3,
    "detections": 12
}`

type fixture struct {
	root     string
	calibDir string
	outDir   string
	snapshot string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		root:     root,
		calibDir: filepath.Join(root, "estimation"),
		outDir:   filepath.Join(root, "views"),
		snapshot: filepath.Join(root, "eval.png"),
	}
	test.That(t, os.MkdirAll(f.calibDir, 0o750), test.ShouldBeNil)
	test.That(t, os.WriteFile(filepath.Join(f.calibDir, "D01.json"), []byte(testRecord), 0o600), test.ShouldBeNil)
	test.That(t, rimage.WriteImageToFile(filepath.Join(root, "recordings", "D01", "00.png"),
		rimage.NewFilledImage(1280, 800, black)), test.ShouldBeNil)
	test.That(t, rimage.WriteImageToFile(filepath.Join(root, "patterns", "Asym_4_9", "01.png"),
		rimage.NewFilledImage(1920, 1080, black)), test.ShouldBeNil)
	return f
}

func (f fixture) args(extra ...string) []string {
	args := []string{
		"procam-verify",
		"--calib-dir", f.calibDir,
		"--recordings-dir", filepath.Join(f.root, "recordings"),
		"--patterns-dir", filepath.Join(f.root, "patterns"),
		"--out-dir", f.outDir,
		"--snapshot", f.snapshot,
		"--seed", "5",
	}
	return append(args, extra...)
}

func TestScriptedClicks(t *testing.T) {
	f := newFixture(t)
	err := newApp(strings.NewReader("")).Run(f.args("--click", "640,400", "--click", "700, 400", "D01"))
	test.That(t, err, test.ShouldBeNil)

	pattern, err := rimage.ReadImageFromFile(filepath.Join(f.outDir, "pattern.png"))
	test.That(t, err, test.ShouldBeNil)
	rgba := rimage.CloneToRGBA(pattern)
	test.That(t, rgba.RGBAAt(960, 540), test.ShouldNotResemble, black)
	test.That(t, rgba.RGBAAt(1020, 540), test.ShouldNotResemble, black)
	test.That(t, rgba.RGBAAt(100, 540), test.ShouldResemble, black)

	snapshot, err := rimage.ReadImageFromFile(f.snapshot)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rimage.CloneToRGBA(snapshot).RGBAAt(640, 400), test.ShouldNotResemble, black)
}

func TestConsoleCommands(t *testing.T) {
	f := newFixture(t)
	var out bytes.Buffer
	app := newApp(strings.NewReader("click 640 400\nsave\nquit\n"))
	app.Writer = &out
	logFile := filepath.Join(f.root, "logs", "verify.log")
	err := app.Run(f.args("--log-file", logFile, "D01"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "12 detections")

	logs, err := os.ReadFile(logFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(logs), test.ShouldContainSubstring, "traced click")
	test.That(t, string(logs), test.ShouldContainSubstring, "session ended")
	_, err = os.Stat(f.snapshot)
	test.That(t, err, test.ShouldBeNil)
	_, err = os.Stat(filepath.Join(f.outDir, "frame.png"))
	test.That(t, err, test.ShouldBeNil)
}

func TestArgumentErrors(t *testing.T) {
	f := newFixture(t)

	err := newApp(strings.NewReader("")).Run(f.args())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "estimation")

	err = newApp(strings.NewReader("")).Run(f.args("--mirrored", "--direct", "D01"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "mutually exclusive")

	err = newApp(strings.NewReader("")).Run(f.args("--click", "a,b", "D01"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"a,b"`)

	err = newApp(strings.NewReader("")).Run(f.args("D02"))
	test.That(t, errors.Is(err, config.ErrConfiguration), test.ShouldBeTrue)

	// mirrored run on a record without a plane
	err = newApp(strings.NewReader("")).Run(f.args("--mirrored", "D01"))
	test.That(t, errors.Is(err, config.ErrConfiguration), test.ShouldBeTrue)

	err = newApp(strings.NewReader("")).Run(f.args("--frame", filepath.Join(f.root, "missing.png"), "D01"))
	test.That(t, errors.Is(err, config.ErrConfiguration), test.ShouldBeTrue)
}

func TestParseClick(t *testing.T) {
	ev, err := parseClick(" 3.5 , 4 ")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ev.Point.X, test.ShouldEqual, 3.5)
	test.That(t, ev.Point.Y, test.ShouldEqual, 4)

	for _, bad := range []string{"12", "a,b", "1,", ",2", "nan,5", "5,NaN", "inf,5", "-Inf,5", "5,+inf"} {
		_, err := parseClick(bad)
		test.That(t, err, test.ShouldNotBeNil)
	}

	var cl clickList
	test.That(t, cl.Set("1,2"), test.ShouldBeNil)
	test.That(t, cl.Set("10.5,20"), test.ShouldBeNil)
	test.That(t, cl.String(), test.ShouldEqual, "1,2 10.5,20")
	test.That(t, cl.Set("oops"), test.ShouldNotBeNil)
	test.That(t, len(cl.clicks), test.ShouldEqual, 2)
}
