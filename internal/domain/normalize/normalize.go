// Package normalize turns raw spreadsheet cells into clean numeric values and
// calendar dates.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/scout/internal/domain/model"
	"github.com/xuri/excelize/v2"
)

// Excel serial day numbers outside this range are not treated as dates.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465 // 9999-12-31
)

// dateLayouts are tried in order; day-first layouts precede month-first ones
// because the source exports use European formats.
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
	"2006-01-02T15:04:05",
	"02.01.2006",
	"2.1.2006",
	"02-01-2006",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"01-02-06",
}

// ParseValue converts a raw cell into a Value. Numbers pass through; strings
// are trimmed, a trailing '%' is dropped and a decimal comma becomes a point.
// Anything that does not yield a finite number is Missing.
func ParseValue(raw any) model.Value {
	switch v := raw.(type) {
	case nil:
		return model.Missing
	case model.Value:
		return v
	case float64:
		return model.Some(v)
	case float32:
		return model.Some(float64(v))
	case int:
		return model.Some(float64(v))
	case int64:
		return model.Some(float64(v))
	case int32:
		return model.Some(float64(v))
	case string:
		return ParseString(v)
	case fmt.Stringer:
		return ParseString(v.String())
	default:
		return model.Missing
	}
}

// ParseString is ParseValue for string cells.
func ParseString(s string) model.Value {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" {
		return model.Missing
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.Missing
	}
	return model.Some(f)
}

// Column normalizes a whole column and reports how many cells were missing.
func Column(cells []string) ([]model.Value, int) {
	out := make([]model.Value, len(cells))
	missing := 0
	for i, c := range cells {
		out[i] = ParseString(c)
		if !out[i].Valid {
			missing++
		}
	}
	return out, missing
}

// ParseDate parses a calendar date. Besides the textual layouts it accepts
// Excel serial day numbers, which is how raw workbook cells carry dates.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty value: %w", ErrDateParse)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(serial) &&
		serial >= minExcelSerial && serial <= maxExcelSerial {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return truncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q: %w", s, ErrDateParse)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
