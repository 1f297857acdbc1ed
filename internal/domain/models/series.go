package models

import "time"

// Interval is the bar resolution requested from a price source.
type Interval string

const (
	Interval1d  Interval = "1d"
	Interval1wk Interval = "1wk"
)

// Bar is one daily observation. Only close and volume feed the features.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open,omitempty"`
	High   float64   `json:"high,omitempty"`
	Low    float64   `json:"low,omitempty"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries is an ordered (oldest first) window of bars for one symbol.
type PriceSeries struct {
	Symbol    string    `json:"symbol"`
	Interval  Interval  `json:"interval"`
	Bars      []Bar     `json:"bars"`
	FetchedAt time.Time `json:"fetched_at"`
}

func (s *PriceSeries) Len() int { return len(s.Bars) }

// Closes returns a copy of the close column.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns a copy of the volume column.
func (s *PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// Last returns the most recent bar, or false for an empty series.
func (s *PriceSeries) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// ParseInterval maps raw input to a supported interval, defaulting to daily.
func ParseInterval(s string) Interval {
	switch Interval(s) {
	case Interval1wk:
		return Interval1wk
	default:
		return Interval1d
	}
}

// Valid reports whether iv is a supported interval.
func (iv Interval) Valid() bool {
	return iv == Interval1d || iv == Interval1wk
}
