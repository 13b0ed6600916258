package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/scout/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntry(t *testing.T) {
	Convey("Given an Entry struct", t, func() {
		Convey("When the age and cumulative mean are unknown", func() {
			e := types.Entry{Rank: 1, Player: "Ana", Value: 7.5, ValueText: "7.50", Display: "7.50"}
			b, err := json.Marshal(e)
			So(err, ShouldBeNil)

			Convey("Then age is null and the mean is omitted", func() {
				So(string(b), ShouldContainSubstring, `"age":null`)
				So(string(b), ShouldNotContainSubstring, "cum_avg")
			})
		})

		Convey("When both are known", func() {
			age, cum := 21, 6.25
			e := types.Entry{Rank: 2, Player: "Ben", Age: &age, CumAvg: &cum, Display: "7.00 (6.25)", Young: true}
			b, err := json.Marshal(e)
			So(err, ShouldBeNil)

			Convey("Then they are encoded", func() {
				So(string(b), ShouldContainSubstring, `"age":21`)
				So(string(b), ShouldContainSubstring, `"cum_avg":6.25`)
				So(string(b), ShouldContainSubstring, `"young":true`)
			})
		})
	})
}
