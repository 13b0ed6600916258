package derive

import "errors"

// Sentinel kinds for derived metric errors.
var (
	ErrSchemaMismatch = errors.New("ratio input column not in schema")
)
