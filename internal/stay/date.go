package stay

import (
	"math"
	"strings"
	"time"
)

const (
	// DottedLayout is how offer catalogs author their validity dates.
	DottedLayout = "02.01.2006"
	// ISOLayout is how the booking-intent store persists dates.
	ISOLayout = "2006-01-02"
)

const day = 24 * time.Hour

// Date returns local midnight of the given calendar day.
func Date(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.Local)
}

// Midnight drops the wall-clock part of t, keeping its calendar day in local time.
func Midnight(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}

	t = t.In(time.Local)

	return Date(t.Year(), t.Month(), t.Day())
}

// ParseDotted parses DD.MM.YYYY. Malformed input reports false.
func ParseDotted(s string) (time.Time, bool) {
	return parse(DottedLayout, s)
}

// ParseISO parses YYYY-MM-DD. Malformed input reports false.
func ParseISO(s string) (time.Time, bool) {
	return parse(ISOLayout, s)
}

// Parse accepts either layout.
func Parse(s string) (time.Time, bool) {
	if t, ok := ParseISO(s); ok {
		return t, true
	}

	return ParseDotted(s)
}

func parse(layout, s string) (time.Time, bool) {
	t, err := time.ParseInLocation(layout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func FormatISO(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(ISOLayout)
}

func FormatDotted(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(DottedLayout)
}

// Nights counts whole days between arrival and departure, rounding up so a
// day shortened by a DST switch still counts as a night.
func Nights(arrival, departure time.Time) int {
	diff := departure.Sub(arrival)

	return int(math.Ceil(float64(diff) / float64(day)))
}

// Overlaps tests [aFrom,aTo] against [bFrom,bTo], both bounds inclusive.
func Overlaps(aFrom, aTo, bFrom, bTo time.Time) bool {
	return !aFrom.After(bTo) && !aTo.Before(bFrom)
}

// Within reports whether d lies in [from,to], bounds inclusive.
func Within(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}

// AddDays moves t by n calendar days, keeping local midnight across DST.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}
