package service_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/scout/internal/adapters/repository"
	"github.com/okian/scout/internal/adapters/source"
	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/catalog"
	"github.com/okian/scout/internal/domain/ranking"
	"github.com/okian/scout/internal/sample"
	"github.com/okian/scout/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

const export = `Player_y,Team_y,Position_y,Birthdate,Competition,Date,Week,Goal
Ana,Adler,CF,2005-01-01,L1,2024-08-01,1,2
Ben,Falken,CB,1990-01-01,L1,2024-08-01,1,3
Cai,Adler,LW,2003-06-01,L1,2024-08-08,2,1
Ana,Adler,CF,2005-01-01,L1,2024-08-08,2,4
Dan,Luchse,CM,1995-01-01,L2,2024-08-15,1,5
`

var reference = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func writeExport(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newService(path string, opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithSource(path),
		service.WithVersion("v1"),
		service.WithReferenceDate(reference),
	}
	return service.New(append(base, opts...)...)
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it is not started", func() {
			So(svc, ShouldNotBeNil)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("Then queries fail until Start", func() {
			_, err := svc.TopN(context.Background(), ranking.Query{Metric: "Goal", League: "L1"})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Reload(context.Background(), "")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a service over a missing file", t, func() {
		svc := newService(filepath.Join(t.TempDir(), "missing.csv"))

		Convey("When starting", func() {
			err := svc.Start(context.Background())

			Convey("Then the source load failure is fatal", func() {
				So(errors.Is(err, source.ErrSourceLoad), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})

	Convey("Given a service over an export", t, func() {
		svc := newService(writeExport(t, export))
		defer svc.Stop()

		Convey("When starting twice", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)

			Convey("Then stats describe the load", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["version"], ShouldEqual, "v1")
				So(stats["rows"], ShouldEqual, 5)
				So(stats["runId"], ShouldNotBeEmpty)
				failed, ok := stats["failedScores"].(map[string]string)
				So(ok, ShouldBeTrue)
				So(failed, ShouldContainKey, catalog.GoalThreatScore)
			})
		})
	})
}

func TestService_TopN(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newService(writeExport(t, export))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When asking for a league table", func() {
			res, err := svc.TopN(ctx, ranking.Query{Metric: "Goal", League: "L1"})
			So(err, ShouldBeNil)

			Convey("Then rows are ranked by value", func() {
				So(res.Available, ShouldBeTrue)
				So(res.Query.Limit, ShouldEqual, ranking.DefaultLimit)
				So(len(res.Entries), ShouldEqual, 4)
				var players []string
				for i, e := range res.Entries {
					So(e.Rank, ShouldEqual, i+1)
					players = append(players, e.Player)
				}
				So(players, ShouldResemble, []string{"Ana", "Ben", "Ana", "Cai"})
			})

			Convey("Then the leader carries the cumulative mean and the young flag", func() {
				top := res.Entries[0]
				So(top.Display, ShouldEqual, "4.00 (3.00)")
				So(top.Young, ShouldBeTrue)
				So(*top.Age, ShouldEqual, 20)
				So(res.Entries[1].Young, ShouldBeFalse)
			})
		})

		Convey("When filtering by matchday and group", func() {
			byWeek, err := svc.TopN(ctx, ranking.Query{Metric: "Goal", League: "L1", Matchday: "1"})
			So(err, ShouldBeNil)
			byGroup, err := svc.TopN(ctx, ranking.Query{Metric: "Goal", League: "L1", Group: "ST", Limit: 1})
			So(err, ShouldBeNil)

			Convey("Then only matching rows remain", func() {
				So(len(byWeek.Entries), ShouldEqual, 2)
				So(byWeek.Entries[0].Player, ShouldEqual, "Ben")
				So(len(byGroup.Entries), ShouldEqual, 1)
				So(byGroup.Entries[0].ValueText, ShouldEqual, "4.00")
			})
		})

		Convey("When the filter matches nothing", func() {
			res, err := svc.TopN(ctx, ranking.Query{Metric: "Goal", League: "L3"})
			So(err, ShouldBeNil)
			So(res.Available, ShouldBeTrue)
			So(res.Entries, ShouldBeEmpty)
			So(res.Message, ShouldEqual, ranking.MsgNoData)
		})

		Convey("When the score could not be computed", func() {
			res, err := svc.TopN(ctx, ranking.Query{Metric: catalog.GoalThreatScore, League: "L1"})
			So(err, ShouldBeNil)
			So(res.Available, ShouldBeFalse)
			So(res.Message, ShouldEqual, ranking.MsgMetricNotFound)
		})

		Convey("When the same query repeats", func() {
			q := ranking.Query{Metric: "Goal", League: "L2"}
			_, err := svc.TopN(ctx, q)
			So(err, ShouldBeNil)
			_, err = svc.TopN(ctx, q)
			So(err, ShouldBeNil)

			Convey("Then the second answer comes from the cache", func() {
				st, ok := svc.GetStats()["cache"].(repository.Stats)
				So(ok, ShouldBeTrue)
				So(st.Tables, ShouldEqual, 1)
				So(st.Hits, ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestService_Options(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newService(writeExport(t, export))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then leagues and matchdays come from the table", func() {
			leagues, err := svc.Leagues(ctx)
			So(err, ShouldBeNil)
			So(leagues, ShouldResemble, []string{"L1", "L2"})

			days, err := svc.Matchdays(ctx, "L1")
			So(err, ShouldBeNil)
			So(days, ShouldResemble, []string{"1", "2"})

			days, err = svc.Matchdays(ctx, "nowhere")
			So(err, ShouldBeNil)
			So(days, ShouldBeEmpty)
		})

		Convey("Then groups and catalog list the filter choices", func() {
			groups, err := svc.Groups(ctx)
			So(err, ShouldBeNil)
			So(groups, ShouldContain, "IV")
			So(groups, ShouldContain, "ST")

			cat, err := svc.Catalog(ctx)
			So(err, ShouldBeNil)
			So(cat.Scores, ShouldContain, catalog.OverallScore)
			So(cat.Metrics, ShouldContain, "Goal")
		})

		Convey("Then the timeframe spans the match dates", func() {
			tf, err := svc.Timeframe(ctx)
			So(err, ShouldBeNil)
			So(tf.Label, ShouldEqual, "01-08-2024 - 15-08-2024")
		})
	})
}

func TestService_Reload(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		path := writeExport(t, export)
		svc := newService(path)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the export changes and a new version is loaded", func() {
			changed := export + "Eva,Baeren,RB,2006-01-01,L1,2024-08-22,3,9\n"
			So(os.WriteFile(path, []byte(changed), 0o600), ShouldBeNil)
			key, err := svc.Reload(ctx, "v2")
			So(err, ShouldBeNil)

			Convey("Then queries see the new table", func() {
				So(key.Version, ShouldEqual, "v2")
				res, err := svc.TopN(ctx, ranking.Query{Metric: "Goal", League: "L1"})
				So(err, ShouldBeNil)
				So(res.Entries[0].Player, ShouldEqual, "Eva")
				So(svc.GetStats()["rows"], ShouldEqual, 6)
			})
		})

		Convey("When the export disappears", func() {
			So(os.Remove(path), ShouldBeNil)
			_, err := svc.Reload(ctx, "v2")

			Convey("Then the reload fails and the previous table keeps serving", func() {
				So(errors.Is(err, source.ErrSourceLoad), ShouldBeTrue)
				res, err := svc.TopN(ctx, ranking.Query{Metric: "Goal", League: "L1"})
				So(err, ShouldBeNil)
				So(len(res.Entries), ShouldEqual, 4)
				So(svc.GetStats()["version"], ShouldEqual, "v1")
			})
		})
	})
}

func TestService_Workbook(t *testing.T) {
	Convey("Given a service over a generated workbook", t, func() {
		ctx := context.Background()
		cat, err := catalog.Default()
		So(err, ShouldBeNil)
		raw := sample.Generate(sample.NewConfig(sample.WithPlayers(15), sample.WithMatchdays(3)), cat)
		path := filepath.Join(t.TempDir(), "export.xlsx")
		So(sample.WriteWorkbook(path, raw), ShouldBeNil)

		svc := service.New(service.WithSource(path), service.WithTopN(5))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When asking for every score in every league", func() {
			leagues, err := svc.Leagues(ctx)
			So(err, ShouldBeNil)
			So(leagues, ShouldNotBeEmpty)

			Convey("Then each table is bounded, sorted and scaled", func() {
				for _, league := range leagues {
					for _, name := range cat.ScoreNames() {
						res, err := svc.TopN(ctx, ranking.Query{Metric: name, League: league})
						So(err, ShouldBeNil)
						So(res.Available, ShouldBeTrue)
						So(len(res.Entries), ShouldEqual, 5)
						for i, e := range res.Entries {
							So(e.Value, ShouldBeBetweenOrEqual, 0, 10)
							if i > 0 {
								So(e.Value, ShouldBeLessThanOrEqualTo, res.Entries[i-1].Value)
							}
						}
					}
				}
			})
		})
	})
}
