package transform

import "github.com/pkg/errors"

// ErrOutOfDomain is returned when a pixel or point lies outside the range a model is defined on.
var ErrOutOfDomain = errors.New("outside of the model's valid range")

// NewOutOfDomainError wraps ErrOutOfDomain with a message.
func NewOutOfDomainError(msg string) error {
	return errors.Wrap(ErrOutOfDomain, msg)
}

// points closer to the image plane than this cannot be projected
const pointDepthEpsilon = 1e-9
