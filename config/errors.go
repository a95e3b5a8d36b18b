package config

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrConfiguration is returned for a missing or malformed calibration record or session
// setting. It is fatal: nothing is displayed until the configuration is fixed.
var ErrConfiguration = errors.New("configuration error")

// NewConfigurationError wraps ErrConfiguration with a message.
func NewConfigurationError(msg string) error {
	return errors.Wrap(ErrConfiguration, msg)
}

// NewFieldError reports a problem with one field of a calibration record.
func NewFieldError(field string, err error) error {
	return errors.Wrap(ErrConfiguration, fmt.Sprintf("field %q: %v", field, err))
}

// NewMissingFieldError reports a required field that is absent.
func NewMissingFieldError(field string) error {
	return errors.Wrap(ErrConfiguration, fmt.Sprintf("field %q is required", field))
}
