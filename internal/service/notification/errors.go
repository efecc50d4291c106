package notification

import "errors"

var (
	ErrUnknownKind    = errors.New("unknown notification kind")
	ErrMalformedEvent = errors.New("malformed notification event")
)
