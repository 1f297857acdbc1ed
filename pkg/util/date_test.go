package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAlignFromDaily(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC), AlignFrom(ts, "1d"))
}

func TestAlignFromWeekly(t *testing.T) {
	// Thursday -> Monday of the same week
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 10, 7, 0, 0, 0, 0, time.UTC), AlignFrom(ts, "1wk"))

	// Sunday belongs to the week that started six days earlier
	sun := time.Date(2024, 10, 13, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 10, 7, 0, 0, 0, 0, time.UTC), AlignFrom(sun, "1wk"))
}

func TestAlignFromConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	ts := time.Date(2024, 10, 10, 3, 0, 0, 0, loc) // 2024-10-09 18:00 UTC
	assert.Equal(t, time.Date(2024, 10, 9, 0, 0, 0, 0, time.UTC), AlignFrom(ts, "1d"))
}

func TestLookbackWindow(t *testing.T) {
	now := time.Date(2024, 6, 3, 15, 30, 0, 0, time.UTC)
	from, to := LookbackWindow(now, 60, "1d")
	assert.Equal(t, now, to)
	assert.Equal(t, time.Date(2024, 4, 4, 0, 0, 0, 0, time.UTC), from)
}
