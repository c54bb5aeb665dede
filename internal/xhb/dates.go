package xhb

import "time"

// HomeBank stores dates as Julian day counts, day 1 being 0001-01-01, and
// clamps them to the range it supports (1900-01-01 .. 2200-12-31, stored as
// 693596 and 803533).
var (
	julianZero = time.Date(0, time.December, 31, 0, 0, 0, 0, time.UTC)
	minDate    = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxDate    = time.Date(2200, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// julianDate converts a Julian day count into a clamped civil date (UTC
// midnight).
func julianDate(days int) time.Time {
	return clampDate(julianZero.AddDate(0, 0, days))
}

func clampDate(d time.Time) time.Time {
	if d.Before(minDate) {
		return minDate
	}
	if d.After(maxDate) {
		return maxDate
	}
	return d
}
