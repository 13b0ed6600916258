package model

import "errors"

// Sentinel kinds for table construction errors.
var (
	ErrLengthMismatch  = errors.New("column length does not match table length")
	ErrDuplicateColumn = errors.New("column already exists")
)
