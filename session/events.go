package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// EventKind is the kind of input a session reacts to.
type EventKind int

// The events a session handles.
const (
	PointerUp EventKind = iota
	Save
	Quit
	Reset
)

func (k EventKind) String() string {
	switch k {
	case PointerUp:
		return "pointer-up"
	case Save:
		return "save"
	case Quit:
		return "quit"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one input. Point is only meaningful for PointerUp.
type Event struct {
	Kind  EventKind
	Point r2.Point
}

// Click returns the PointerUp event for camera pixel (x, y).
func Click(x, y float64) Event {
	return Event{Kind: PointerUp, Point: r2.Point{X: x, Y: y}}
}

// NewClick is like Click but rejects coordinates that are not finite numbers.
func NewClick(x, y float64) (Event, error) {
	if !isFinite(x) || !isFinite(y) {
		return Event{}, errors.Wrapf(ErrUnknownCommand, "click coordinates must be finite, got (%v, %v)", x, y)
	}
	return Click(x, y), nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ErrUnknownCommand is returned by event sources for input they cannot turn into an event.
// Sessions skip such input.
var ErrUnknownCommand = errors.New("unknown command")

// An EventSource delivers events in order. Next returns io.EOF once no more events will
// arrive.
type EventSource interface {
	Next(ctx context.Context) (Event, error)
}

// ScriptedEvents replays a fixed list of events.
type ScriptedEvents struct {
	events []Event
}

// NewScriptedEvents returns a source that delivers events in order.
func NewScriptedEvents(events ...Event) *ScriptedEvents {
	return &ScriptedEvents{events: events}
}

// Next returns the next scripted event.
func (se *ScriptedEvents) Next(ctx context.Context) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}
	if len(se.events) == 0 {
		return Event{}, io.EOF
	}
	ev := se.events[0]
	se.events = se.events[1:]
	return ev, nil
}

type consoleLine struct {
	text string
	err  error
}

// ConsoleEvents reads one command per line:
//
//	click X Y   (or c X Y)
//	save        (or s)
//	reset       (or r)
//	quit        (or q)
type ConsoleEvents struct {
	lines     chan consoleLine
	stop      chan struct{}
	closeOnce sync.Once
}

// NewConsoleEvents starts reading commands from r. Delivery stops at the end of r or when
// the source is closed. The reader goroutine may stay blocked in r.Read after Close until
// r returns, which is fine for os.Stdin in a process that is about to exit.
func NewConsoleEvents(r io.Reader) *ConsoleEvents {
	ce := &ConsoleEvents{lines: make(chan consoleLine), stop: make(chan struct{})}
	go func() {
		defer close(ce.lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case ce.lines <- consoleLine{text: scanner.Text()}:
			case <-ce.stop:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case ce.lines <- consoleLine{err: err}:
			case <-ce.stop:
			}
		}
	}()
	return ce
}

// Close stops delivering commands. A reader blocked in Read is not interrupted.
func (ce *ConsoleEvents) Close() error {
	ce.closeOnce.Do(func() { close(ce.stop) })
	return nil
}

// Next blocks until a command is read or ctx is done. Blank lines are skipped. After
// Close it returns io.EOF.
func (ce *ConsoleEvents) Next(ctx context.Context) (Event, error) {
	for {
		select {
		case <-ce.stop:
			return Event{}, io.EOF
		default:
		}
		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case <-ce.stop:
			return Event{}, io.EOF
		case line, ok := <-ce.lines:
			if !ok {
				return Event{}, io.EOF
			}
			if line.err != nil {
				return Event{}, line.err
			}
			if strings.TrimSpace(line.text) == "" {
				continue
			}
			return ParseCommand(line.text)
		}
	}
}

// ParseCommand turns one console command into an event.
func ParseCommand(line string) (Event, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return Event{}, errors.Wrap(ErrUnknownCommand, "empty command")
	}
	switch fields[0] {
	case "q", "quit":
		return Event{Kind: Quit}, nil
	case "s", "save":
		return Event{Kind: Save}, nil
	case "r", "reset":
		return Event{Kind: Reset}, nil
	case "c", "click":
		if len(fields) != 3 {
			return Event{}, errors.Wrapf(ErrUnknownCommand, "click takes two coordinates, got %q", line)
		}
		x, errX := strconv.ParseFloat(fields[1], 64)
		y, errY := strconv.ParseFloat(fields[2], 64)
		if errX != nil || errY != nil {
			return Event{}, errors.Wrapf(ErrUnknownCommand, "click coordinates must be numbers, got %q", line)
		}
		return NewClick(x, y)
	default:
		return Event{}, errors.Wrapf(ErrUnknownCommand, "%q", line)
	}
}
