package model

import "strings"

// RawTable is the untyped source grid as read from the file.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// Index returns the position of a header name, or -1.
func (r *RawTable) Index(name string) int {
	for i, h := range r.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Column returns the cells of a named column. Short rows yield "".
func (r *RawTable) Column(name string) ([]string, bool) {
	idx := r.Index(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out, true
}

// IdentityColumns names the identity fields in the source header.
type IdentityColumns struct {
	Player    string `koanf:"player"`
	Team      string `koanf:"team"`
	Position  string `koanf:"position"`
	BirthDate string `koanf:"birth_date"`
	League    string `koanf:"league"`
	MatchDate string `koanf:"match_date"`
	Week      string `koanf:"week"`
}

// DefaultIdentityColumns matches the merged tracking/event export.
func DefaultIdentityColumns() IdentityColumns {
	return IdentityColumns{
		Player:    "Player_y",
		Team:      "Team_y",
		Position:  "Position_y",
		BirthDate: "Birthdate",
		League:    "Competition",
		MatchDate: "Date",
		Week:      "Week",
	}
}

// WithDefaults fills empty names from DefaultIdentityColumns.
func (c IdentityColumns) WithDefaults() IdentityColumns {
	d := DefaultIdentityColumns()
	pick := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return strings.TrimSpace(v)
	}
	return IdentityColumns{
		Player:    pick(c.Player, d.Player),
		Team:      pick(c.Team, d.Team),
		Position:  pick(c.Position, d.Position),
		BirthDate: pick(c.BirthDate, d.BirthDate),
		League:    pick(c.League, d.League),
		MatchDate: pick(c.MatchDate, d.MatchDate),
		Week:      pick(c.Week, d.Week),
	}
}

// Names lists the column names in a fixed order.
func (c IdentityColumns) Names() []string {
	return []string{c.Player, c.Team, c.Position, c.BirthDate, c.League, c.MatchDate, c.Week}
}
