// Package sample generates deterministic synthetic player exports for demos
// and tests.
package sample

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/scout/internal/domain/catalog"
	"github.com/okian/scout/internal/domain/derive"
	"github.com/okian/scout/internal/domain/model"
)

// Default generation constants.
const (
	defaultPlayers   = 40
	defaultMatchdays = 6
	defaultSeed      = 42
	defaultMissing   = 0.03
	daysPerMatchday  = 7
	sheetName        = "Export"
)

var (
	defaultLeagues = []string{"Bundesliga", "2. Bundesliga"}
	positions      = []string{"CB", "LCB", "RCB", "LB", "RB", "LWB", "RWB", "DM", "CM", "AM", "Central Midfielder", "LW", "RW", "CF"}
	teams          = []string{"Adler", "Falken", "Loewen", "Baeren", "Woelfe", "Luchse"}
)

// Config controls generation.
type Config struct {
	Players   int
	Leagues   []string
	Matchdays int
	Seed      int64
	Start     time.Time
	// MissingRate is the share of metric cells left empty.
	MissingRate float64
	Columns     model.IdentityColumns
}

// Option applies a configuration option to Config.
type Option func(*Config)

// WithPlayers sets the number of players per league.
func WithPlayers(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Players = n
		}
	}
}

// WithLeagues sets the league names.
func WithLeagues(leagues ...string) Option {
	return func(c *Config) {
		if len(leagues) > 0 {
			c.Leagues = leagues
		}
	}
}

// WithMatchdays sets the number of matchdays.
func WithMatchdays(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Matchdays = n
		}
	}
}

// WithSeed sets the random seed.
func WithSeed(seed int64) Option {
	return func(c *Config) { c.Seed = seed }
}

// WithMissingRate sets the share of empty metric cells.
func WithMissingRate(rate float64) Option {
	return func(c *Config) {
		if rate >= 0 && rate < 1 {
			c.MissingRate = rate
		}
	}
}

// NewConfig returns the default configuration with options applied.
func NewConfig(opts ...Option) Config {
	c := Config{
		Players:     defaultPlayers,
		Leagues:     defaultLeagues,
		Matchdays:   defaultMatchdays,
		Seed:        defaultSeed,
		Start:       time.Date(2024, time.August, 23, 0, 0, 0, 0, time.UTC),
		MissingRate: defaultMissing,
		Columns:     model.DefaultIdentityColumns(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// MetricColumns lists the metric columns a generated export carries: every
// catalog numeric column except the ratios the pipeline derives itself.
func MetricColumns(cat *catalog.Catalog) []string {
	var out []string
	for _, name := range cat.NumericColumns() {
		if slices.ContainsFunc(derive.DefaultRatios, func(d derive.RatioDef) bool { return d.Name == name }) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Generate builds one row per (league, player, matchday). The same config
// always yields the same table.
func Generate(cfg Config, cat *catalog.Catalog) *model.RawTable {
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible sample data
	metrics := MetricColumns(cat)
	cols := cfg.Columns.WithDefaults()

	raw := &model.RawTable{Header: append(cols.Names(), metrics...)}
	for li, league := range cfg.Leagues {
		for p := range cfg.Players {
			name := fmt.Sprintf("Player %c%02d", 'A'+li, p+1)
			team := teams[(p+li)%len(teams)]
			pos := positions[rng.Intn(len(positions))]
			birth := time.Date(1994+rng.Intn(13), time.Month(1+rng.Intn(12)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)
			for md := range cfg.Matchdays {
				date := cfg.Start.AddDate(0, 0, md*daysPerMatchday)
				row := []string{
					name, team, pos, birth.Format(time.DateOnly), league,
					date.Format(time.DateOnly), strconv.Itoa(md + 1),
				}
				for _, m := range metrics {
					if rng.Float64() < cfg.MissingRate {
						row = append(row, "")
						continue
					}
					row = append(row, value(rng, m))
				}
				raw.Rows = append(raw.Rows, row)
			}
		}
	}
	return raw
}

// value draws a plausible cell for a metric, by name.
func value(rng *rand.Rand, metric string) string {
	between := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }
	var f float64
	decimals := 0
	switch {
	case strings.HasPrefix(metric, "Distance"):
		f, decimals = between(7000, 12500), 1
	case strings.HasPrefix(metric, "M/min"):
		f, decimals = between(80, 135), 1
	case strings.Contains(metric, "Distance"):
		f, decimals = between(100, 1200), 1
	case metric == "PSV-99":
		f, decimals = between(24, 35), 2
	case strings.Contains(metric, "xG"), strings.Contains(metric, "ExpG"), strings.Contains(metric, "xA"), strings.Contains(metric, "ExPn"):
		f, decimals = between(0, 1.2), 2
	case strings.Contains(metric, "conversion"):
		f, decimals = between(0, 40), 1
	case strings.HasPrefix(metric, "MinPer"), metric == "Shot/Goal":
		f, decimals = between(30, 400), 1
	case strings.HasPrefix(metric, "Ps"), metric == "Touches":
		f = float64(rng.Intn(80))
	default:
		f = float64(rng.Intn(12))
	}
	return strconv.FormatFloat(f, 'f', decimals, 64)
}

// WriteWorkbook writes raw to an .xlsx file. Numeric cells are stored as
// numbers.
func WriteWorkbook(path string, raw *model.RawTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	header := make([]any, len(raw.Header))
	for i, h := range raw.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for r, row := range raw.Rows {
		cells := make([]any, len(row))
		for i, c := range row {
			if n, err := strconv.ParseFloat(c, 64); err == nil {
				cells[i] = n
			} else {
				cells[i] = c
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// WriteCSV writes raw as delimited text. Decimal points become commas when
// the delimiter is ';', matching locale exports.
func WriteCSV(path string, raw *model.RawTable, delimiter rune) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv: %w", err)
	}
	defer fh.Close()

	w := csv.NewWriter(fh)
	w.Comma = delimiter
	if err := w.Write(raw.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range raw.Rows {
		out := row
		if delimiter == ';' {
			out = make([]string, len(row))
			for i, c := range row {
				if _, err := strconv.ParseFloat(c, 64); err == nil {
					c = strings.ReplaceAll(c, ".", ",")
				}
				out[i] = c
			}
		}
		if err := w.Write(out); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
