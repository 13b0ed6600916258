package source

import "errors"

// Sentinel kinds for source loading errors. Every load error wraps
// ErrSourceLoad.
var (
	ErrSourceLoad        = errors.New("source load failed")
	ErrUnsupportedFormat = errors.New("unsupported source format")
	ErrNoHeader          = errors.New("source has no header row")
	ErrMissingColumn     = errors.New("identity column missing")
	ErrSheetNotFound     = errors.New("sheet not found")
)
