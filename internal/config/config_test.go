package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/scout/internal/config"
	"github.com/okian/scout/internal/domain/cumulative"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.TopN, convey.ShouldEqual, 10)
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			convey.So(cfg.YoungAge, convey.ShouldEqual, 24)
			convey.So(cfg.Columns.Player, convey.ShouldEqual, "Player_y")
			convey.So(cfg.Delimiter(), convey.ShouldEqual, ',')
			convey.So(cfg.Policy(), convey.ShouldEqual, cumulative.PolicyObserved)
			convey.So(cfg.Reference().IsZero(), convey.ShouldBeTrue)
			convey.So(cfg.AuthEnabled(), convey.ShouldBeFalse)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid settings", t, func() {
		cases := map[string]func(c *config.Config){
			"addr must not be empty": func(c *config.Config) { c.Addr = "" },
			"source_path":            func(c *config.Config) { c.SourcePath = " " },
			"csv_delimiter":          func(c *config.Config) { c.CSVDelimiter = ";;" },
			"top_n":                  func(c *config.Config) { c.TopN = 0 },
			"max_leaderboard_limit":  func(c *config.Config) { c.MaxLeaderboardLimit = 5 },
			"young_age":              func(c *config.Config) { c.YoungAge = 0 },
			"reference_date":         func(c *config.Config) { c.ReferenceDate = "yesterday" },
			"cumulative_policy":      func(c *config.Config) { c.CumulativePolicy = "median" },
			"set together":           func(c *config.Config) { c.AuthUsername = "scout" },
			"metric_weights.Tckl":    func(c *config.Config) { c.MetricWeights = map[string]float64{"Tckl": -1} },
		}
		for want, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, want)
		}
	})

	convey.Convey("Given valid optional settings", t, func() {
		cfg := config.New()
		cfg.ReferenceDate = "14.06.2024"
		cfg.CumulativePolicy = "zero_fill"
		cfg.CSVDelimiter = ";"
		cfg.AuthUsername, cfg.AuthPassword = "scout", "secret"

		convey.So(cfg.Validate(), convey.ShouldBeNil)
		convey.So(cfg.Reference(), convey.ShouldEqual, time.Date(2024, time.June, 14, 0, 0, 0, 0, time.UTC))
		convey.So(cfg.Policy(), convey.ShouldEqual, cumulative.PolicyZeroFill)
		convey.So(cfg.Delimiter(), convey.ShouldEqual, ';')
		convey.So(cfg.AuthEnabled(), convey.ShouldBeTrue)
	})
}
