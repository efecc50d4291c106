package appointment

import "errors"

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrForbidden         = errors.New("appointment belongs to another user")
	ErrInvalidTransition = errors.New("appointment status cannot change this way")
	ErrEmptyUpdate       = errors.New("nothing to update")
	ErrInvalidRange      = errors.New("range end must be after start")
)
