// Package config defines service configuration and its loading.
package config

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/okian/scout/internal/domain/cumulative"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/normalize"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// SourcePath is the .xlsx or .csv export to serve.
	SourcePath string `koanf:"source_path"`
	// SourceSheet picks a workbook sheet; empty means the first with a header.
	SourceSheet string `koanf:"source_sheet"`
	// SourceVersion pins the cache version; empty derives it from the file.
	SourceVersion string `koanf:"source_version"`
	// CSVDelimiter is a single character.
	CSVDelimiter string `koanf:"csv_delimiter"`

	// TopN is the default table length; MaxLeaderboardLimit caps ?limit.
	TopN                int `koanf:"top_n"`
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// YoungAge flags players below this age.
	YoungAge int `koanf:"young_age"`
	// ReferenceDate fixes the age reference date; empty means today.
	ReferenceDate string `koanf:"reference_date"`
	// CumulativePolicy is "observed" or "zero_fill".
	CumulativePolicy string `koanf:"cumulative_policy"`

	// AuthUsername and AuthPassword enable HTTP basic auth when both are set.
	AuthUsername string `koanf:"auth_username"`
	AuthPassword string `koanf:"auth_password"`

	// MetricWeights overrides catalog weights by metric key.
	MetricWeights map[string]float64 `koanf:"metric_weights"`

	// Columns names the identity columns of the source.
	Columns model.IdentityColumns `koanf:"columns"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		SourcePath:          "data/export.xlsx",
		CSVDelimiter:        ",",
		TopN:                10,
		MaxLeaderboardLimit: 100,
		YoungAge:            24,
		CumulativePolicy:    cumulative.PolicyObserved.String(),
		Columns:             model.DefaultIdentityColumns(),
	}
}

// Validate checks field values and returns an error wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	var problems []string
	if c.Addr == "" {
		problems = append(problems, "addr must not be empty")
	}
	if strings.TrimSpace(c.SourcePath) == "" {
		problems = append(problems, "source_path must not be empty")
	}
	if utf8.RuneCountInString(c.CSVDelimiter) != 1 {
		problems = append(problems, "csv_delimiter must be a single character")
	}
	if c.TopN < 1 {
		problems = append(problems, "top_n must be positive")
	}
	if c.MaxLeaderboardLimit < c.TopN {
		problems = append(problems, "max_leaderboard_limit must not be below top_n")
	}
	if c.YoungAge < 1 {
		problems = append(problems, "young_age must be positive")
	}
	if c.ReferenceDate != "" {
		if _, err := normalize.ParseDate(c.ReferenceDate); err != nil {
			problems = append(problems, "reference_date: "+err.Error())
		}
	}
	if _, err := cumulative.ParsePolicy(c.CumulativePolicy); err != nil {
		problems = append(problems, "cumulative_policy: "+err.Error())
	}
	if (c.AuthUsername == "") != (c.AuthPassword == "") {
		problems = append(problems, "auth_username and auth_password must be set together")
	}
	for k, w := range c.MetricWeights {
		if w <= 0 {
			problems = append(problems, fmt.Sprintf("metric_weights.%s must be positive", k))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Delimiter returns the CSV delimiter rune.
func (c *Config) Delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.CSVDelimiter)
	return r
}

// Reference returns the parsed reference date, or the zero time for today.
func (c *Config) Reference() time.Time {
	if c.ReferenceDate == "" {
		return time.Time{}
	}
	t, _ := normalize.ParseDate(c.ReferenceDate)
	return t
}

// Policy returns the parsed cumulative policy.
func (c *Config) Policy() cumulative.Policy {
	p, _ := cumulative.ParsePolicy(c.CumulativePolicy)
	return p
}

// AuthEnabled reports whether the basic-auth gate is on.
func (c *Config) AuthEnabled() bool {
	return c.AuthUsername != "" && c.AuthPassword != ""
}
