package spatialmath

import "github.com/pkg/errors"

var (
	// ErrNoIntersection is returned when a line runs parallel to the plane it is intersected with.
	ErrNoIntersection = errors.New("no intersection")
	// ErrDegenerateRay is returned when a line cannot be built, e.g. from two coincident points.
	ErrDegenerateRay = errors.New("degenerate ray")
	// ErrDegeneratePlane is returned when a plane cannot be built, e.g. from collinear points.
	ErrDegeneratePlane = errors.New("degenerate plane")
)

// NewNoIntersectionError wraps ErrNoIntersection with a message.
func NewNoIntersectionError(msg string) error {
	return errors.Wrap(ErrNoIntersection, msg)
}

// NewDegenerateRayError wraps ErrDegenerateRay with a message.
func NewDegenerateRayError(msg string) error {
	return errors.Wrap(ErrDegenerateRay, msg)
}

// NewDegeneratePlaneError wraps ErrDegeneratePlane with a message.
func NewDegeneratePlaneError(msg string) error {
	return errors.Wrap(ErrDegeneratePlane, msg)
}

// IsGeometryError reports whether err stems from degenerate geometric input.
func IsGeometryError(err error) bool {
	return errors.Is(err, ErrNoIntersection) || errors.Is(err, ErrDegenerateRay) || errors.Is(err, ErrDegeneratePlane)
}
