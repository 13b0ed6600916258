package pipeline

import "errors"

// Sentinel kinds for pipeline errors.
var (
	ErrNilTable        = errors.New("raw table is nil")
	ErrMissingIdentity = errors.New("identity column missing from source")
)
