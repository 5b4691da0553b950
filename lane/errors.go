package lane

import "errors"

// Sentinel errors for pattern registration.
var (
	ErrUnknownLane = errors.New("unknown lane")
	ErrNilPattern  = errors.New("pattern is nil")
)
