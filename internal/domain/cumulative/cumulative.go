// Package cumulative computes expanding per-player means across match dates.
package cumulative

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/okian/scout/internal/domain/model"
)

// Policy selects how missing values enter the running mean.
type Policy int

const (
	// PolicyObserved averages observed values only. A row whose own value
	// is missing carries the mean of the earlier observed values.
	PolicyObserved Policy = iota
	// PolicyZeroFill counts missing values as zero.
	PolicyZeroFill
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p {
	case PolicyObserved:
		return "observed"
	case PolicyZeroFill:
		return "zero_fill"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy accepts "observed" (or empty) and "zero_fill"/"zerofill".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "observed":
		return PolicyObserved, nil
	case "zero_fill", "zerofill", "zero-fill":
		return PolicyZeroFill, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// GroupKey places a row in its (league, player) series.
type GroupKey struct {
	League string
	Player string
	Date   time.Time
	Row    int
}

// KeysFor builds the group keys of a table's records.
func KeysFor(records []model.Record) []GroupKey {
	keys := make([]GroupKey, len(records))
	for i, r := range records {
		keys[i] = GroupKey{League: r.League, Player: r.Player, Date: r.MatchDate, Row: r.Row}
	}
	return keys
}

// Aggregate returns the expanding mean of values within each (league,
// player) series, ordered by (date, row). Rows with a zero Date belong to no
// series and get Missing.
func Aggregate(keys []GroupKey, values []model.Value, policy Policy) ([]model.Value, error) {
	if len(keys) != len(values) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(keys), len(values))
	}

	order := make([]int, 0, len(keys))
	for i, k := range keys {
		if !k.Date.IsZero() {
			order = append(order, i)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		ka, kb := keys[a], keys[b]
		return cmp.Or(
			cmp.Compare(ka.League, kb.League),
			cmp.Compare(ka.Player, kb.Player),
			ka.Date.Compare(kb.Date),
			cmp.Compare(ka.Row, kb.Row),
		)
	})

	type acc struct {
		sum float64
		n   int
	}
	type series struct{ league, player string }
	running := make(map[series]*acc)

	out := make([]model.Value, len(values))
	for _, i := range order {
		s := series{keys[i].League, keys[i].Player}
		a, ok := running[s]
		if !ok {
			a = &acc{}
			running[s] = a
		}
		v := values[i]
		switch {
		case v.Valid:
			a.sum += v.Float64
			a.n++
		case policy == PolicyZeroFill:
			a.n++
		}
		if a.n > 0 {
			out[i] = model.Some(a.sum / float64(a.n))
		}
	}
	return out, nil
}

// Apply stores the expanding mean of each named column on t. Columns absent
// from t are returned as skipped.
func Apply(t *model.Table, columns []string, policy Policy) (skipped []string, err error) {
	keys := KeysFor(t.Records())
	for _, name := range columns {
		vals, ok := t.Column(name)
		if !ok {
			skipped = append(skipped, name)
			continue
		}
		cum, err := Aggregate(keys, vals, policy)
		if err != nil {
			return skipped, fmt.Errorf("%s: %w", name, err)
		}
		if err := t.SetCumulative(name, cum); err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}
