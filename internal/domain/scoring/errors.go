package scoring

import "errors"

// Sentinel kinds for score computation errors.
var (
	ErrNoMetrics      = errors.New("score has no metric columns")
	ErrSchemaMismatch = errors.New("metric column not in schema")
	ErrWeightCount    = errors.New("weights do not match columns")
	ErrRaggedColumns  = errors.New("columns differ in length")
	ErrInvalidWeight  = errors.New("weight must be positive and finite")
)
