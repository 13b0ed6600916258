package normalize

import "errors"

// Sentinel kinds for normalization errors.
var (
	ErrDateParse = errors.New("date parse failed")
)
