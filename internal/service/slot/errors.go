package slot

import "errors"

var (
	ErrNotFound     = errors.New("slot not found")
	ErrInvalidRange = errors.New("generation range must be between 1 and 62 days")
)
