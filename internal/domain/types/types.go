// Package types contains common types used across the application
package types

// Entry represents one row of a Top-N table.
type Entry struct {
	Rank     int    `json:"rank"`
	Player   string `json:"player"`
	Age      *int   `json:"age"`
	Team     string `json:"team"`
	Position string `json:"position"`

	Value     float64  `json:"value"`
	ValueText string   `json:"value_text"`
	CumAvg    *float64 `json:"cum_avg,omitempty"`
	// Display is "value (cum_avg)", or just the value without a cumulative mean.
	Display string `json:"display"`

	// Young marks players below the highlight age.
	Young bool `json:"young"`
	// Row is the source row, the tie-breaker for equal values.
	Row int `json:"row"`
}
