package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrLeagueRequired = errors.New("league is required")
	ErrInvalidLimit   = errors.New("invalid limit")
	ErrNilTable       = errors.New("table is nil")
)
