package catalog

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultCatalog(t *testing.T) {
	Convey("Given the default catalog", t, func() {
		c, err := Default()
		So(err, ShouldBeNil)

		Convey("Then every built-in score is present with Overall Score last", func() {
			names := c.ScoreNames()
			So(names, ShouldResemble, []string{
				PhysicalOffensiveScore, PhysicalDefensiveScore, OffensiveScore,
				DefensiveScore, GoalThreatScore, OverallScore,
			})
		})

		Convey("Then the physical scores use disjoint metric sets", func() {
			po, _ := c.Score(PhysicalOffensiveScore)
			pd, _ := c.Score(PhysicalDefensiveScore)
			seen := map[string]bool{}
			for _, k := range po.Keys() {
				seen[k] = true
			}
			for _, k := range pd.Keys() {
				So(seen[k], ShouldBeFalse)
			}
		})

		Convey("Then Overall Score is the deduplicated union", func() {
			all := map[string]bool{}
			for _, s := range DefaultScores() {
				for _, k := range s.Keys() {
					all[k] = true
				}
			}
			ov, ok := c.Score(OverallScore)
			So(ok, ShouldBeTrue)
			So(len(ov.Keys()), ShouldEqual, len(all))
		})

		Convey("Then Overall Score takes weights from the first definition", func() {
			ov, _ := c.Score(OverallScore)
			for _, m := range ov.Metrics {
				if m.Key == "Goal" {
					So(m.Weight, ShouldEqual, 2)
				}
				if m.Key == "OnTarget%" {
					So(m.Weight, ShouldEqual, 1)
				}
			}
		})

		Convey("Then display metrics carry no duplicates", func() {
			d := c.DisplayMetrics()
			seen := map[string]bool{}
			for _, k := range d {
				So(seen[k], ShouldBeFalse)
				seen[k] = true
			}
			So(seen["PSV-99"], ShouldBeTrue)
			So(seen["Pass%"], ShouldBeTrue)
		})

		Convey("Then Rankable lists scores before metrics", func() {
			r := c.Rankable()
			So(r[0], ShouldEqual, PhysicalOffensiveScore)
			So(r, ShouldContain, "Tckl")
		})

		Convey("Then returned definitions are copies", func() {
			s, _ := c.Score(OffensiveScore)
			s.Metrics[0].Weight = 99
			again, _ := c.Score(OffensiveScore)
			So(again.Metrics[0].Weight, ShouldEqual, 1)
		})
	})
}

func TestCatalogWeights(t *testing.T) {
	Convey("Given weight overrides", t, func() {
		Convey("When a weight is positive", func() {
			c, err := Default(WithWeights(map[string]float64{"Tckl": 3}))
			So(err, ShouldBeNil)
			d, _ := c.Score(DefensiveScore)
			for _, m := range d.Metrics {
				if m.Key == "Tckl" {
					So(m.Weight, ShouldEqual, 3)
				}
			}
		})

		Convey("When a weight is not positive", func() {
			_, err := Default(WithWeights(map[string]float64{"Tckl": 0}))
			So(errors.Is(err, ErrInvalidWeight), ShouldBeTrue)
		})

		Convey("When a definition carries a negative weight", func() {
			_, err := New([]ScoreDef{{Name: "x", Metrics: []MetricRef{{Key: "a", Weight: -1}}}}, nil, nil)
			So(errors.Is(err, ErrInvalidWeight), ShouldBeTrue)
		})
	})
}

func TestCatalogValidation(t *testing.T) {
	Convey("Given malformed definitions", t, func() {
		_, err := New([]ScoreDef{{Name: ""}}, nil, nil)
		So(errors.Is(err, ErrEmptyName), ShouldBeTrue)

		_, err = New([]ScoreDef{{Name: "a"}, {Name: "a"}}, nil, nil)
		So(errors.Is(err, ErrDuplicate), ShouldBeTrue)

		_, err = New([]ScoreDef{{Name: OverallScore}}, nil, nil)
		So(errors.Is(err, ErrDuplicate), ShouldBeTrue)

		c, err := New([]ScoreDef{{Name: OverallScore}}, nil, nil, WithoutOverall())
		So(err, ShouldBeNil)
		So(c.ScoreNames(), ShouldResemble, []string{OverallScore})
	})

	Convey("Given repeated metric keys in one score", t, func() {
		c, err := New([]ScoreDef{{Name: "s", Metrics: []MetricRef{{Key: "a"}, {Key: "a", Weight: 5}}}}, nil, nil, WithoutOverall())
		So(err, ShouldBeNil)
		s, _ := c.Score("s")
		So(s.Keys(), ShouldResemble, []string{"a"})
		So(s.Weights(), ShouldResemble, []float64{1})
	})
}
