// Package derive computes ratio metrics and ages from normalized inputs.
package derive

import (
	"fmt"
	"time"

	"github.com/okian/scout/internal/domain/model"
)

const percent = 100

// RatioDef names a derived percentage column and its inputs.
type RatioDef struct {
	Name        string
	Numerator   string
	Denominator string
}

// DefaultRatios are the percentages computed from raw counts.
var DefaultRatios = []RatioDef{
	{Name: "OnTarget%", Numerator: "SOG", Denominator: "Shot"},
	{Name: "TcklMade%", Numerator: "Tckl", Denominator: "TcklAtt"},
	{Name: "Pass%", Numerator: "PsCmp", Denominator: "PsAtt"},
}

// Ratio returns num / den * 100, or Missing when either side is missing, the
// denominator is zero, or the result is not finite.
func Ratio(num, den model.Value) model.Value {
	if !num.Valid || !den.Valid || den.Float64 == 0 {
		return model.Missing
	}
	return model.Some(num.Float64 / den.Float64 * percent)
}

// RatioColumn applies Ratio row-wise.
func RatioColumn(num, den []model.Value) []model.Value {
	out := make([]model.Value, len(num))
	for i := range num {
		out[i] = Ratio(num[i], den[i])
	}
	return out
}

// Apply adds every ratio in defs that the table does not already carry.
// A ratio whose inputs are absent is skipped; the skipped names are returned
// in the error, which wraps ErrSchemaMismatch.
func Apply(t *model.Table, defs []RatioDef) ([]string, error) {
	var added, skipped []string
	for _, d := range defs {
		if t.HasColumn(d.Name) {
			continue
		}
		num, okNum := t.Column(d.Numerator)
		den, okDen := t.Column(d.Denominator)
		if !okNum || !okDen {
			skipped = append(skipped, d.Name)
			continue
		}
		if err := t.AddColumn(d.Name, RatioColumn(num, den)); err != nil {
			return added, err
		}
		added = append(added, d.Name)
	}
	if len(skipped) > 0 {
		return added, fmt.Errorf("%v: %w", skipped, ErrSchemaMismatch)
	}
	return added, nil
}

// Age returns full years between birth and ref.
func Age(birth, ref time.Time) int {
	years := ref.Year() - birth.Year()
	if ref.Month() < birth.Month() || (ref.Month() == birth.Month() && ref.Day() < birth.Day()) {
		years--
	}
	return years
}
