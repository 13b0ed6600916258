package cumulative

import "errors"

// Sentinel kinds for aggregation errors.
var (
	ErrUnknownPolicy  = errors.New("unknown cumulative policy")
	ErrLengthMismatch = errors.New("keys and values differ in length")
)
