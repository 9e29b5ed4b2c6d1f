package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// MaxDate is the latest representable calendar date. Later dates are clamped to it.
var MaxDate = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// maxExcelSerial is the Excel serial of MaxDate. Larger numbers, such as a
// compact 20260723, are not dates.
const maxExcelSerial = 2958465

// PercentPolicy decides what happens to rate values written as "10.65%".
type PercentPolicy string

const (
	// PercentCoerce divides by 100 and records a warning.
	PercentCoerce PercentPolicy = "coerce"
	// PercentReject leaves the value unknown and records a warning.
	PercentReject PercentPolicy = "reject"
)

// ParsePercentPolicy validates a policy name.
func ParsePercentPolicy(s string) (PercentPolicy, error) {
	switch PercentPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PercentCoerce:
		return PercentCoerce, nil
	case PercentReject:
		return PercentReject, nil
	default:
		return "", fmt.Errorf("unknown percent policy %q", s)
	}
}

// DateResult is the outcome of ParseDate.
type DateResult struct {
	Date    time.Time
	OK      bool
	Clamped bool
}

// ParseDate parses a calendar date in day-first (DD-MM-YYYY) or ISO
// (YYYY-MM-DD) form, with '-' or '/' separators, or an Excel serial number.
// The layout is chosen by the width of the first field, never by locale.
// A time-of-day suffix is ignored.
func ParseDate(raw string) DateResult {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return DateResult{}
	}
	if i := strings.IndexAny(s, " T"); i > 0 {
		s = s[:i]
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return parseExcelSerial(serial)
	}

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '/' })
	if len(parts) != 3 {
		return DateResult{}
	}

	var ys, ms, ds string
	switch {
	case len(parts[0]) == 4:
		ys, ms, ds = parts[0], parts[1], parts[2]
	case len(parts[2]) == 4:
		ds, ms, ys = parts[0], parts[1], parts[2]
	default:
		return DateResult{}
	}

	year, err1 := strconv.Atoi(ys)
	month, err2 := strconv.Atoi(ms)
	day, err3 := strconv.Atoi(ds)
	if err1 != nil || err2 != nil || err3 != nil || len(ms) > 2 || len(ds) > 2 {
		return DateResult{}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1 {
		return DateResult{}
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		// e.g. 31-02-2026 rolled over into March
		return DateResult{}
	}
	if t.After(MaxDate) {
		return DateResult{Date: MaxDate, OK: true, Clamped: true}
	}
	return DateResult{Date: t, OK: true}
}

func parseExcelSerial(serial float64) DateResult {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 1 || serial > maxExcelSerial {
		return DateResult{}
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return DateResult{}
	}
	y, m, d := t.Date()
	return DateResult{Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), OK: true}
}

// NumberResult is the outcome of ParseNumber.
type NumberResult struct {
	Value   float64
	OK      bool
	Percent bool
}

// ParseNumber parses a decimal that may carry thousands separators or blanks.
// When allowPercent is set a trailing '%' divides the value by 100 and marks
// the result as Percent.
func ParseNumber(raw string, allowPercent bool) NumberResult {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return NumberResult{}
	}
	s = strings.NewReplacer(",", "", " ", "", " ", "").Replace(s)

	percent := false
	if strings.HasSuffix(s, "%") {
		if !allowPercent {
			return NumberResult{}
		}
		percent = true
		s = strings.TrimSuffix(s, "%")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return NumberResult{}
	}
	if percent {
		v /= 100
	}
	return NumberResult{Value: v, OK: true, Percent: percent}
}

// DaysBetween returns the whole days from ref to t, floored toward negative
// infinity. It works in Unix seconds so far-future dates cannot overflow.
func DaysBetween(ref, t time.Time) int {
	diff := t.Unix() - ref.Unix()
	days := diff / 86400
	if diff%86400 != 0 && diff < 0 {
		days--
	}
	return int(days)
}
