package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted       = errors.New("service not started")
	ErrTableUnavailable = errors.New("table evicted while querying")
)
