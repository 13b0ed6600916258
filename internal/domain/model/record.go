package model

import (
	"slices"
	"time"
)

// Record holds the identity fields of one (player, match date) observation.
// Metric values live column-wise in Table.
type Record struct {
	// Row is the zero-based position in the source; used as the stable tie-breaker.
	Row      int
	Player   string
	Team     string
	Position string
	League   string
	Week     string

	// BirthDate and MatchDate are zero when the source cell did not parse.
	BirthDate time.Time
	MatchDate time.Time

	Age      int
	AgeKnown bool

	// Groups are the coarse position tags for Position.
	Groups []string
}

// InGroup reports whether the record carries the group tag.
func (r Record) InGroup(tag string) bool {
	return slices.Contains(r.Groups, tag)
}

// HasMatchDate reports whether the match date parsed.
func (r Record) HasMatchDate() bool {
	return !r.MatchDate.IsZero()
}
