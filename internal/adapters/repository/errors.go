package repository

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrUnknownKey = errors.New("table not cached for key")
	ErrNilTable   = errors.New("loader returned nil table")
	ErrEmptyKey   = errors.New("cache key source is empty")
)
