package bookingconfig

import "errors"

var (
	ErrUnknownKey   = errors.New("unknown booking configuration key")
	ErrInvalidValue = errors.New("invalid booking configuration value")
)
