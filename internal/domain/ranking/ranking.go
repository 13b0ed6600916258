// Package ranking builds filtered Top-N tables from a scored table.
package ranking

import (
	"fmt"
	"strconv"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/types"
)

// Defaults for the view.
const (
	DefaultLimit    = 10
	DefaultYoungAge = 24
)

// User-visible messages for unavailable or empty results.
const (
	MsgMetricNotFound = "metric not found"
	MsgNoData         = "no data available"
)

// Query selects one Top-N table. Empty Matchday or Group means "all".
type Query struct {
	Metric   string `json:"metric"`
	League   string `json:"league"`
	Matchday string `json:"matchday,omitempty"`
	Group    string `json:"group,omitempty"`
	Limit    int    `json:"limit"`
}

// Result is a Top-N table. Available is false when the metric is not a
// column of the table; an empty Entries slice with Available set is a valid
// "no data" result.
type Result struct {
	Query     Query         `json:"query"`
	Available bool          `json:"available"`
	Message   string        `json:"message,omitempty"`
	Entries   []types.Entry `json:"entries"`
}

// Option applies a configuration option to the Viewer.
type Option func(*Viewer)

// WithYoungAge sets the age below which players are flagged as young.
func WithYoungAge(age int) Option {
	return func(v *Viewer) {
		if age > 0 {
			v.youngAge = age
		}
	}
}

// WithDefaultLimit sets the limit used when a query leaves it at zero.
func WithDefaultLimit(n int) Option {
	return func(v *Viewer) {
		if n > 0 {
			v.defaultLimit = n
		}
	}
}

// Viewer renders Top-N tables. It is stateless apart from its options.
type Viewer struct {
	youngAge     int
	defaultLimit int
}

// NewViewer constructs a viewer with configuration options.
func NewViewer(opts ...Option) *Viewer {
	v := &Viewer{youngAge: DefaultYoungAge, defaultLimit: DefaultLimit}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// View renders q over t with default options.
func View(t *model.Table, q Query) (Result, error) {
	return NewViewer().View(t, q)
}

// View filters t by league, matchday and group, drops rows without a value
// for the metric, and returns the best Limit rows ranked 1..n.
func (v *Viewer) View(t *model.Table, q Query) (Result, error) {
	if t == nil {
		return Result{}, ErrNilTable
	}
	if q.League == "" {
		return Result{}, ErrLeagueRequired
	}
	if q.Limit < 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidLimit, q.Limit)
	}
	if q.Limit == 0 {
		q.Limit = v.defaultLimit
	}

	res := Result{Query: q, Entries: []types.Entry{}}
	values, ok := t.Column(q.Metric)
	if !ok {
		res.Message = MsgMetricNotFound
		return res, nil
	}
	res.Available = true
	cum, _ := t.Cumulative(q.Metric)

	var ix index
	for i, r := range t.Records() {
		if r.League != q.League || !values[i].Valid {
			continue
		}
		if q.Matchday != "" && r.Week != q.Matchday {
			continue
		}
		if q.Group != "" && !r.InGroup(q.Group) {
			continue
		}
		ix.Insert(i, values[i].Float64)
	}
	if ix.Len() == 0 {
		res.Message = MsgNoData
		return res, nil
	}

	for rank, i := range ix.TopN(q.Limit) {
		var c model.Value
		if cum != nil {
			c = cum[i]
		}
		res.Entries = append(res.Entries, v.entry(rank+1, t.Record(i), values[i], c))
	}
	return res, nil
}

func (v *Viewer) entry(rank int, r model.Record, val, cum model.Value) types.Entry {
	e := types.Entry{
		Rank:      rank,
		Player:    r.Player,
		Team:      r.Team,
		Position:  r.Position,
		Value:     val.Float64,
		ValueText: format(val.Float64),
		Row:       r.Row,
	}
	e.Display = e.ValueText
	if r.AgeKnown {
		age := r.Age
		e.Age = &age
		e.Young = age < v.youngAge
	}
	if cum.Valid {
		c := cum.Float64
		e.CumAvg = &c
		e.Display = fmt.Sprintf("%s (%s)", e.ValueText, format(c))
	}
	return e
}

func format(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
