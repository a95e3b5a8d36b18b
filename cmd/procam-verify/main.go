// Package main is the procam-verify command: it loads a procam calibration and lets the
// user click camera pixels to see the projector lines they predict.
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/EDM-Research/ProcamCalib/config"
	"github.com/EDM-Research/ProcamCalib/logging"
	"github.com/EDM-Research/ProcamCalib/procam"
	"github.com/EDM-Research/ProcamCalib/rimage"
	"github.com/EDM-Research/ProcamCalib/session"
)

const (
	// Flags.
	flagCalibDir      = "calib-dir"
	flagRecordingsDir = "recordings-dir"
	flagPatternsDir   = "patterns-dir"
	flagFrame         = "frame"
	flagPattern       = "pattern"
	flagSnapshot      = "snapshot"
	flagOutDir        = "out-dir"
	flagMirrored      = "mirrored"
	flagDirect        = "direct"
	flagClick         = "click"
	flagSeed          = "seed"
	flagDebug         = "debug"
	flagLogFile       = "log-file"
)

func main() {
	if err := realMain(os.Args); err != nil {
		logging.NewLogger("procam-verify").Error(err)
		os.Exit(1)
	}
}

func realMain(args []string) error {
	return newApp(os.Stdin).Run(args)
}

func newApp(stdin io.Reader) *cli.App {
	return &cli.App{
		Name:      "procam-verify",
		Usage:     "check a procam calibration by tracing clicked camera pixels into the projector",
		ArgsUsage: "<estimation>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagCalibDir, Value: config.DefaultCalibrationDir, Usage: "directory holding calibration records"},
			&cli.StringFlag{Name: flagRecordingsDir, Value: config.DefaultRecordingsDir, Usage: "directory holding recorded sequences"},
			&cli.StringFlag{Name: flagPatternsDir, Value: config.DefaultPatternsDir, Usage: "directory holding projector patterns"},
			&cli.StringFlag{Name: flagFrame, Usage: "camera frame to mark, instead of the sequence's first frame"},
			&cli.StringFlag{Name: flagPattern, Usage: "projector pattern to draw on, instead of the default pattern"},
			&cli.StringFlag{Name: flagSnapshot, Value: config.DefaultSnapshotPath, Usage: "where the save command writes the camera view"},
			&cli.StringFlag{Name: flagOutDir, Value: config.DefaultOutputDir, Usage: "where the frame and pattern views are written"},
			&cli.BoolFlag{Name: flagMirrored, Usage: "trace through the mirror regardless of the sequence name"},
			&cli.BoolFlag{Name: flagDirect, Usage: "ignore the mirror regardless of the sequence name"},
			&cli.GenericFlag{
				Name:  flagClick,
				Value: &clickList{},
				Usage: "camera pixel `X,Y` to trace; repeatable. The clicks are traced and saved before the run ends",
			},
			&cli.Int64Flag{Name: flagSeed, Usage: "seed for marking colors; 0 picks one"},
			&cli.BoolFlag{Name: flagDebug, Usage: "enable debug logging"},
			&cli.StringFlag{Name: flagLogFile, Usage: "also write JSON logs to this file, rotated by size"},
		},
		Action: func(c *cli.Context) error {
			return verifyAction(c, stdin)
		},
	}
}

func sessionFromFlags(c *cli.Context) (*config.Session, error) {
	if c.NArg() != 1 {
		return nil, errors.New("expected exactly one estimation name")
	}
	if c.Bool(flagMirrored) && c.Bool(flagDirect) {
		return nil, errors.Errorf("--%s and --%s are mutually exclusive", flagMirrored, flagDirect)
	}
	sess := config.NewSession(c.Args().First())
	sess.CalibrationDir = c.String(flagCalibDir)
	sess.RecordingsDir = c.String(flagRecordingsDir)
	sess.PatternsDir = c.String(flagPatternsDir)
	sess.FramePath = c.String(flagFrame)
	sess.PatternPath = c.String(flagPattern)
	sess.SnapshotPath = c.String(flagSnapshot)
	sess.OutputDir = c.String(flagOutDir)
	switch {
	case c.Bool(flagMirrored):
		sess.Mirrored = lo.ToPtr(true)
	case c.Bool(flagDirect):
		sess.Mirrored = lo.ToPtr(false)
	}
	return sess, sess.Validate()
}

// clickList collects repeated --click flags. Each value is parsed whole, so the comma
// inside X,Y is not taken as a list separator.
type clickList struct {
	clicks []session.Event
}

func (cl *clickList) Set(value string) error {
	ev, err := parseClick(value)
	if err != nil {
		return err
	}
	cl.clicks = append(cl.clicks, ev)
	return nil
}

func (cl *clickList) String() string {
	return strings.Join(lo.Map(cl.clicks, func(ev session.Event, _ int) string {
		return strconv.FormatFloat(ev.Point.X, 'g', -1, 64) + "," + strconv.FormatFloat(ev.Point.Y, 'g', -1, 64)
	}), " ")
}

// parseClick reads an "X,Y" pair.
func parseClick(value string) (session.Event, error) {
	xs, ys, ok := strings.Cut(value, ",")
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if !ok || errX != nil || errY != nil {
		return session.Event{}, errors.Errorf("invalid click %q, expected X,Y", value)
	}
	ev, err := session.NewClick(x, y)
	if err != nil {
		return session.Event{}, errors.Errorf("invalid click %q, coordinates must be finite", value)
	}
	return ev, nil
}

func verifyAction(c *cli.Context, stdin io.Reader) (err error) {
	var logger logging.Logger
	switch {
	case c.String(flagLogFile) != "":
		var logFile io.Closer
		logger, logFile = logging.NewFileLogger("procam-verify", c.String(flagLogFile), c.Bool(flagDebug))
		defer func() {
			err = multierr.Combine(err, logFile.Close())
		}()
	case c.Bool(flagDebug):
		logger = logging.NewDebugLogger("procam-verify")
	default:
		logger = logging.NewLogger("procam-verify")
	}
	defer func() {
		//nolint:errcheck
		logger.Sync()
	}()

	sess, err := sessionFromFlags(c)
	if err != nil {
		return err
	}
	var clicks []session.Event
	if cl, ok := c.Generic(flagClick).(*clickList); ok {
		clicks = cl.clicks
	}

	calib, err := config.ReadCalibrationFile(sess.CalibrationPath(), sess.IsMirrored(), logger.Sublogger("config"))
	if err != nil {
		return err
	}
	tracer, err := procam.NewTracer(calib, logger.Sublogger("tracer"))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(c.App.Writer, calib); err != nil {
		return err
	}
	frame, err := rimage.ReadImageFromFile(sess.FrameFile())
	if err != nil {
		return errors.Wrap(config.NewConfigurationError("camera frame"), err.Error())
	}
	pattern, err := rimage.ReadImageFromFile(sess.PatternFile())
	if err != nil {
		return errors.Wrap(config.NewConfigurationError("projector pattern"), err.Error())
	}

	display, err := session.NewFileDisplay(sess.OutputDir, logger.Sublogger("display"))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, display.Close())
	}()

	seed := c.Int64(flagSeed)
	if seed == 0 {
		seed = rand.Int63() //nolint:gosec
	}
	logger.Debugw("marking colors", "seed", seed)

	s, err := session.New(tracer, frame, pattern, display, sess.SnapshotPath,
		rand.New(rand.NewSource(seed)), logger.Sublogger("session")) //nolint:gosec
	if err != nil {
		return err
	}

	var events session.EventSource
	if len(clicks) > 0 {
		events = session.NewScriptedEvents(append(clicks, session.Event{Kind: session.Save}, session.Event{Kind: session.Quit})...)
	} else {
		console := session.NewConsoleEvents(stdin)
		defer func() {
			err = multierr.Combine(err, console.Close())
		}()
		events = console
		logger.Infow("reading commands from stdin: click X Y | save | reset | quit",
			"frame_view", display.Path(session.FrameView), "pattern_view", display.Path(session.PatternView))
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()
	if err := s.Run(ctx, events); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
