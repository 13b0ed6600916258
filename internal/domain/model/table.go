package model

import (
	"fmt"
	"slices"
	"time"
)

// Table is the column-oriented result of the pipeline. Columns are only ever
// added; once the pipeline hands a Table out it is treated as read-only.
type Table struct {
	records    []Record
	columns    map[string][]Value
	order      []string
	cumulative map[string][]Value
}

// NewTable creates a table over records with no metric columns.
func NewTable(records []Record) *Table {
	return &Table{
		records:    records,
		columns:    make(map[string][]Value),
		cumulative: make(map[string][]Value),
	}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.records) }

// Records returns the identity rows. Callers must not modify the slice.
func (t *Table) Records() []Record { return t.records }

// Record returns row i.
func (t *Table) Record(i int) Record { return t.records[i] }

// AddColumn appends a new metric column.
func (t *Table) AddColumn(name string, values []Value) error {
	if len(values) != len(t.records) {
		return fmt.Errorf("%s: %w (%d != %d)", name, ErrLengthMismatch, len(values), len(t.records))
	}
	if _, ok := t.columns[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrDuplicateColumn)
	}
	t.columns[name] = values
	t.order = append(t.order, name)
	return nil
}

// HasColumn reports whether name is part of the schema.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Column returns the values of a metric column.
func (t *Table) Column(name string) ([]Value, bool) {
	v, ok := t.columns[name]
	return v, ok
}

// Columns lists metric columns in insertion order.
func (t *Table) Columns() []string {
	return slices.Clone(t.order)
}

// SetCumulative stores the expanding-mean series for an existing column.
func (t *Table) SetCumulative(name string, values []Value) error {
	if len(values) != len(t.records) {
		return fmt.Errorf("%s: %w (%d != %d)", name, ErrLengthMismatch, len(values), len(t.records))
	}
	if _, ok := t.cumulative[name]; ok {
		return fmt.Errorf("cumulative %s: %w", name, ErrDuplicateColumn)
	}
	t.cumulative[name] = values
	return nil
}

// Cumulative returns the expanding-mean series for a column.
func (t *Table) Cumulative(name string) ([]Value, bool) {
	v, ok := t.cumulative[name]
	return v, ok
}

// Leagues returns the distinct league names in first-seen order.
func (t *Table) Leagues() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range t.records {
		if _, ok := seen[r.League]; ok || r.League == "" {
			continue
		}
		seen[r.League] = struct{}{}
		out = append(out, r.League)
	}
	return out
}

// Matchdays returns the distinct week identifiers of a league, ordered by
// their earliest match date and then by first appearance. Weeks without any
// parsed date come last.
func (t *Table) Matchdays(league string) []string {
	type seen struct {
		first time.Time
		pos   int
	}
	weeks := make(map[string]*seen)
	var out []string
	for _, r := range t.records {
		if r.League != league || r.Week == "" {
			continue
		}
		s, ok := weeks[r.Week]
		if !ok {
			s = &seen{first: r.MatchDate, pos: len(out)}
			weeks[r.Week] = s
			out = append(out, r.Week)
			continue
		}
		if r.HasMatchDate() && (s.first.IsZero() || r.MatchDate.Before(s.first)) {
			s.first = r.MatchDate
		}
	}
	slices.SortStableFunc(out, func(a, b string) int {
		sa, sb := weeks[a], weeks[b]
		switch {
		case sa.first.IsZero() != sb.first.IsZero():
			if sa.first.IsZero() {
				return 1
			}
			return -1
		case !sa.first.Equal(sb.first):
			return sa.first.Compare(sb.first)
		default:
			return sa.pos - sb.pos
		}
	})
	return out
}

// Timeframe returns the earliest and latest parsed match dates.
func (t *Table) Timeframe() (from, to time.Time, ok bool) {
	for _, r := range t.records {
		if !r.HasMatchDate() {
			continue
		}
		if !ok || r.MatchDate.Before(from) {
			from = r.MatchDate
		}
		if !ok || r.MatchDate.After(to) {
			to = r.MatchDate
		}
		ok = true
	}
	return from, to, ok
}
