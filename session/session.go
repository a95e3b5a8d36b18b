// Package session runs the interactive verification loop: clicks on the camera frame are
// marked, traced into the projector and drawn onto the pattern.
package session

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"math/rand"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"
	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/EDM-Research/ProcamCalib/logging"
	"github.com/EDM-Research/ProcamCalib/procam"
	"github.com/EDM-Research/ProcamCalib/rimage"
)

const (
	markingRadius = 4.0
	labelSize     = 14.0
	// markingMargin is how far outside the frame a click may land and still be drawn.
	markingMargin = 32.0
)

// State is where a session is in handling input.
type State int

// A session is Idle between events and Rendering while it handles a click.
const (
	Idle State = iota
	Rendering
)

func (s State) String() string {
	if s == Rendering {
		return "rendering"
	}
	return "idle"
}

// Marking is one click on the camera frame. Its color is shared with the pattern line
// predicted for it.
type Marking struct {
	Index int
	Color color.RGBA
	Point r2.Point
}

// A Session owns the display buffers of one verification run. The markings and pattern
// buffers are always reset together.
type Session struct {
	mu    sync.Mutex
	id    uuid.UUID
	state State

	tracer       *procam.Tracer
	display      Display
	snapshotPath string
	rng          *rand.Rand
	logger       logging.Logger

	frame    image.Image
	pattern  image.Image
	markings *image.RGBA
	rendered *image.RGBA
	marks    []Marking
	// segments holds the visible segment count of every traced marking.
	segments []float64
}

// New prepares a session over frame and pattern. Views go to display and the Save event
// writes the camera view to snapshotPath. rng picks marking colors.
func New(
	tracer *procam.Tracer,
	frame, pattern image.Image,
	display Display,
	snapshotPath string,
	rng *rand.Rand,
	logger logging.Logger,
) (*Session, error) {
	if tracer == nil {
		return nil, errors.New("session needs a tracer")
	}
	if frame == nil || pattern == nil {
		return nil, errors.New("session needs a frame and a pattern")
	}
	if display == nil {
		return nil, errors.New("session needs a display")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63())) //nolint:gosec
	}
	id := uuid.New()
	s := &Session{
		id:           id,
		tracer:       tracer,
		display:      display,
		snapshotPath: snapshotPath,
		rng:          rng,
		logger:       logger.Sublogger(id.String()[:8]),
		frame:        frame,
		pattern:      pattern,
	}

	calib := tracer.Calibration()
	if fb := frame.Bounds(); fb.Dx() != calib.Camera.Width || fb.Dy() != calib.Camera.Height {
		s.logger.Warnw("frame size differs from the calibrated camera", "frame", fb.Size(),
			"camera_width", calib.Camera.Width, "camera_height", calib.Camera.Height)
	}
	if pb := pattern.Bounds(); pb.Dx() != calib.Projector.Width || pb.Dy() != calib.Projector.Height {
		s.logger.Warnw("pattern size differs from the calibrated projector", "pattern", pb.Size(),
			"projector_width", calib.Projector.Width, "projector_height", calib.Projector.Height)
	}
	s.resetBuffers()
	return s, nil
}

// ID identifies the session in logs.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Markings returns the clicks made so far, oldest first.
func (s *Session) Markings() []Marking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Marking(nil), s.marks...)
}

// CameraView returns the frame with every marking composited over it.
func (s *Session) CameraView() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cameraView()
}

// PatternView returns a copy of the pattern with every predicted line drawn on it.
func (s *Session) PatternView() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rimage.CloneToRGBA(s.rendered)
}

func (s *Session) cameraView() *image.RGBA {
	return rimage.Composite(s.frame, s.markings, rimage.MarkingThreshold)
}

func (s *Session) resetBuffers() {
	s.markings = image.NewRGBA(s.frame.Bounds())
	s.rendered = rimage.CloneToRGBA(s.pattern)
	s.marks = nil
	s.segments = nil
}

// Summary describes the markings made since the session started or was last reset.
type Summary struct {
	Markings int
	Traced   int
	// MeanSegments and MedianSegments are over traced markings only.
	MeanSegments   float64
	MedianSegments float64
}

// Summary returns statistics over the current markings.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := Summary{Markings: len(s.marks), Traced: len(s.segments)}
	if mean, err := stats.Mean(s.segments); err == nil {
		sum.MeanSegments = mean
	}
	if median, err := stats.Median(s.segments); err == nil {
		sum.MedianSegments = median
	}
	return sum
}

// Redraw shows both views.
func (s *Session) Redraw() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redraw()
}

func (s *Session) redraw() error {
	if err := s.display.Show(FrameView, s.cameraView()); err != nil {
		return errors.Wrap(err, "showing camera view")
	}
	if err := s.display.Show(PatternView, s.rendered); err != nil {
		return errors.Wrap(err, "showing pattern view")
	}
	return nil
}

// HandleEvent processes one event. It reports done once the session should end. Clicks
// that cannot be traced are logged and skipped; the error is only returned for failures
// that end the session.
func (s *Session) HandleEvent(ev Event) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case PointerUp:
		return false, s.handleClick(ev.Point)
	case Save:
		if err := rimage.WriteImageToFile(s.snapshotPath, s.cameraView()); err != nil {
			return false, err
		}
		s.logger.Infow("saved camera view", "path", s.snapshotPath, "markings", len(s.marks))
		return false, nil
	case Reset:
		s.resetBuffers()
		s.logger.Info("cleared markings and pattern")
		return false, s.redraw()
	case Quit:
		s.logger.Infow("quitting", "markings", len(s.marks))
		return true, nil
	default:
		s.logger.Warnw("ignoring unknown event", "event", ev.Kind)
		return false, nil
	}
}

func (s *Session) handleClick(px r2.Point) error {
	s.state = Rendering
	defer func() { s.state = Idle }()

	mark := Marking{Index: len(s.marks) + 1, Color: rimage.NewMarkingColor(s.rng), Point: px}
	s.marks = append(s.marks, mark)
	label := fmt.Sprint(mark.Index)

	if s.drawable(px) {
		markDC := gg.NewContextForRGBA(s.markings)
		rimage.DrawFilledCircle(markDC, px, markingRadius, mark.Color)
		rimage.DrawString(markDC, label, image.Pt(int(px.X)+6, int(px.Y)-6), mark.Color, labelSize)
	} else {
		s.logger.Warnw("marking too far outside the frame to draw", "marking", mark.Index, "pixel", px)
	}

	trace, err := s.tracer.Trace(px)
	if err != nil {
		if !procam.IsRecoverable(err) {
			return err
		}
		s.logger.Warnw("cannot trace click", "marking", mark.Index, "pixel", px, "error", err)
		return s.redraw()
	}

	s.segments = append(s.segments, float64(len(trace.Segments)))
	patternDC := gg.NewContextForRGBA(s.rendered)
	s.tracer.BackProjector().Render(patternDC, trace.Segments, mark.Color)
	if len(trace.Segments) > 0 {
		start := trace.Segments[0].A
		rimage.DrawString(patternDC, label, image.Pt(int(start.X)+6, int(start.Y)+int(labelSize)+2), mark.Color, labelSize)
	} else {
		s.logger.Infow("predicted line misses the projector image", "marking", mark.Index, "pixel", px)
	}
	s.logger.Infow("traced click", "marking", mark.Index, "pixel", px, "segments", len(trace.Segments))
	return s.redraw()
}

// drawable reports whether px is within markingMargin of the markings buffer. NaN and
// infinite coordinates are never drawable.
func (s *Session) drawable(px r2.Point) bool {
	b := s.markings.Bounds()
	area := r2.RectFromPoints(
		r2.Point{X: float64(b.Min.X), Y: float64(b.Min.Y)},
		r2.Point{X: float64(b.Max.X), Y: float64(b.Max.Y)},
	)
	return area.ExpandedByMargin(markingMargin).ContainsPoint(px)
}

// Run shows both views and handles events from events until a Quit event, the end of
// events, or ctx is done. Unknown commands are logged and skipped.
func (s *Session) Run(ctx context.Context, events EventSource) error {
	s.logger.Infow("session started", "id", s.id.String())
	defer func() {
		sum := s.Summary()
		s.logger.Infow("session ended", "markings", sum.Markings, "traced", sum.Traced,
			"mean_segments", sum.MeanSegments, "median_segments", sum.MedianSegments)
	}()
	if err := s.Redraw(); err != nil {
		return err
	}
	for {
		ev, err := events.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, ErrUnknownCommand) {
				s.logger.Warnw("skipping input", "error", err)
				continue
			}
			return err
		}
		done, err := s.HandleEvent(ev)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}
