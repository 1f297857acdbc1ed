package util

import (
	"time"
)

// LookbackWindow returns the range covering days calendar days back from
// now, with from aligned by AlignFrom. to is now in UTC.
func LookbackWindow(now time.Time, days int, tf string) (from, to time.Time) {
	to = now.UTC()
	return AlignFrom(to.AddDate(0, 0, -days), tf), to
}

// AlignFrom rounds t down to the bar boundary of the timeframe: the UTC
// day for "1d", the Monday of its ISO week for "1wk". Unknown timeframes
// align to the day.
func AlignFrom(t time.Time, tf string) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if tf != "1wk" {
		return day
	}
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
