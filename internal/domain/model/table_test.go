package model_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/scout/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValue(t *testing.T) {
	convey.Convey("Given optional values", t, func() {
		convey.So(model.Some(0).Valid, convey.ShouldBeTrue)
		convey.So(model.Some(math.NaN()), convey.ShouldResemble, model.Missing)
		convey.So(model.Some(math.Inf(1)).Valid, convey.ShouldBeFalse)
		convey.So(model.Missing.Or(7), convey.ShouldEqual, 7)
		convey.So(model.Some(2.5).Or(7), convey.ShouldEqual, 2.5)
	})
}

func TestTable(t *testing.T) {
	convey.Convey("Given a table of three records", t, func() {
		tbl := model.NewTable([]model.Record{
			{Row: 0, Player: "A", League: "Bundesliga", Week: "2", MatchDate: date(2024, 8, 30)},
			{Row: 1, Player: "B", League: "Ligue 1", Week: "1", MatchDate: date(2024, 8, 17)},
			{Row: 2, Player: "C", League: "Bundesliga", Week: "1", MatchDate: date(2024, 8, 24), Groups: []string{"ZM"}},
		})

		convey.Convey("When adding a column", func() {
			err := tbl.AddColumn("Distance", []model.Value{model.Some(1), model.Missing, model.Some(3)})

			convey.Convey("Then it becomes part of the schema", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(tbl.HasColumn("Distance"), convey.ShouldBeTrue)
				convey.So(tbl.Columns(), convey.ShouldResemble, []string{"Distance"})
				col, ok := tbl.Column("Distance")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(col[1].Valid, convey.ShouldBeFalse)
			})

			convey.Convey("And adding it twice fails", func() {
				err := tbl.AddColumn("Distance", make([]model.Value, 3))
				convey.So(errors.Is(err, model.ErrDuplicateColumn), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a column has the wrong length", func() {
			err := tbl.AddColumn("Tckl", make([]model.Value, 2))
			convey.So(errors.Is(err, model.ErrLengthMismatch), convey.ShouldBeTrue)
			convey.So(tbl.HasColumn("Tckl"), convey.ShouldBeFalse)
		})

		convey.Convey("When storing cumulative series", func() {
			convey.So(tbl.SetCumulative("Distance", make([]model.Value, 3)), convey.ShouldBeNil)
			_, ok := tbl.Cumulative("Distance")
			convey.So(ok, convey.ShouldBeTrue)
			_, ok = tbl.Cumulative("Tckl")
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("Then leagues keep first-seen order", func() {
			convey.So(tbl.Leagues(), convey.ShouldResemble, []string{"Bundesliga", "Ligue 1"})
		})

		convey.Convey("Then matchdays are ordered by date", func() {
			convey.So(tbl.Matchdays("Bundesliga"), convey.ShouldResemble, []string{"1", "2"})
			convey.So(tbl.Matchdays("Serie A"), convey.ShouldBeEmpty)
		})

		convey.Convey("Then the timeframe spans all match dates", func() {
			from, to, ok := tbl.Timeframe()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(from, convey.ShouldEqual, date(2024, 8, 17))
			convey.So(to, convey.ShouldEqual, date(2024, 8, 30))
		})

		convey.Convey("Then group membership is queryable", func() {
			convey.So(tbl.Record(2).InGroup("ZM"), convey.ShouldBeTrue)
			convey.So(tbl.Record(0).InGroup("ZM"), convey.ShouldBeFalse)
		})
	})
}

func TestMatchdaysWithUndatedWeeks(t *testing.T) {
	convey.Convey("Given a league mixing dated and undated weeks", t, func() {
		tbl := model.NewTable([]model.Record{
			{Row: 0, League: "L", Week: "3"},
			{Row: 1, League: "L", Week: "2"},
			{Row: 2, League: "L", Week: "5", MatchDate: date(2024, 8, 30)},
			{Row: 3, League: "L", Week: "4"},
			{Row: 4, League: "L", Week: "1", MatchDate: date(2024, 8, 10)},
			{Row: 5, League: "L", Week: "2", MatchDate: date(2024, 8, 20)},
		})

		convey.Convey("Then dated weeks come first by date and undated weeks follow in first-seen order", func() {
			convey.So(tbl.Matchdays("L"), convey.ShouldResemble, []string{"1", "2", "5", "3", "4"})
		})
	})
}

func TestRawTable(t *testing.T) {
	convey.Convey("Given a raw grid with a short row", t, func() {
		raw := &model.RawTable{
			Header: []string{"Player_y", "Tckl"},
			Rows:   [][]string{{"A", "3"}, {"B"}},
		}

		convey.Convey("Then columns are padded with empty cells", func() {
			c, ok := raw.Column("Tckl")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(c, convey.ShouldResemble, []string{"3", ""})
			_, ok = raw.Column("Nope")
			convey.So(ok, convey.ShouldBeFalse)
			convey.So(raw.Index("Player_y"), convey.ShouldEqual, 0)
		})
	})

	convey.Convey("Given partially configured identity columns", t, func() {
		c := model.IdentityColumns{Player: " Name "}.WithDefaults()
		convey.So(c.Player, convey.ShouldEqual, "Name")
		convey.So(c.League, convey.ShouldEqual, "Competition")
		convey.So(len(c.Names()), convey.ShouldEqual, 7)
	})
}
