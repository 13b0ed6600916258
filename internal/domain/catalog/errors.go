package catalog

import "errors"

// Sentinel kinds for catalog construction errors.
var (
	ErrInvalidWeight = errors.New("metric weight must be positive")
	ErrEmptyName     = errors.New("score name must not be empty")
	ErrDuplicate     = errors.New("duplicate score definition")
)
