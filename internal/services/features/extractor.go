package features

import (
	"fmt"
	"math"
	"time"

	"Halcon/internal/domain/models"
)

// Params are the window sizes and thresholds of the extractor.
type Params struct {
	MAWindow           int     `yaml:"ma_window" default:"40" validate:"gte=2"`
	HurstWindow        int     `yaml:"hurst_window" default:"50" validate:"gte=30"`
	VolumeWindow       int     `yaml:"volume_window" default:"20" validate:"gte=1"`
	VolatilityWindow   int     `yaml:"volatility_window" default:"20" validate:"gte=2"`
	Epsilon            float64 `yaml:"epsilon" default:"1e-9" validate:"gt=0"`
	ReversionThreshold float64 `yaml:"reversion_threshold" default:"0.45" validate:"gt=0,lt=1"`
}

// DefaultParams mirrors the struct tag defaults for callers without config.
func DefaultParams() Params {
	return Params{
		MAWindow:           40,
		HurstWindow:        50,
		VolumeWindow:       20,
		VolatilityWindow:   20,
		Epsilon:            1e-9,
		ReversionThreshold: 0.45,
	}
}

// MinObservations is the shortest series Extract accepts.
func (p Params) MinObservations() int { return p.MAWindow }

// Extract computes the full feature vector for one series. Series shorter
// than the moving average window fail with models.ErrInsufficientData.
func Extract(series *models.PriceSeries, p Params) (models.FeatureVector, error) {
	if series == nil || series.Len() < p.MinObservations() {
		n := 0
		if series != nil {
			n = series.Len()
		}
		return models.FeatureVector{}, fmt.Errorf("%w: %d bars, need %d", models.ErrInsufficientData, n, p.MinObservations())
	}

	closes := series.Closes()
	for i, c := range closes {
		if c <= 0 || math.IsNaN(c) || math.IsInf(c, 0) {
			return models.FeatureVector{}, fmt.Errorf("%w: close[%d]=%v", models.ErrInvalidModelInput, i, c)
		}
	}
	volumes := series.Volumes()

	ma := MovingAverage(closes, p.MAWindow)
	z := ZScore(closes, p.MAWindow, p.Epsilon)
	h := Hurst(Tail(closes, p.HurstWindow))
	rv := RelativeVolume(volumes, p.VolumeWindow)
	vol := Volatility(closes, p.VolatilityWindow)
	annual := RealizedVolatility(ComputeLogReturns(closes), p.VolatilityWindow, BarsPerYear(series.Interval))

	return models.FeatureVector{
		Symbol:         series.Symbol,
		LastPrice:      closes[len(closes)-1],
		MovingAverage:  ma,
		ZScore:         z,
		Hurst:          h,
		RelativeVolume: rv,
		Volatility:     vol,
		AnnualizedVol:  annual,
		Score:          CompositeScore(z, h, rv),
		Regime:         ClassifyRegime(h, p.ReversionThreshold),
		Observations:   len(closes),
		ComputedAt:     time.Now().UTC(),
	}, nil
}

// MovingAverage is the mean of the last window values (or all of them when shorter).
func MovingAverage(xs []float64, window int) float64 {
	return Mean(Tail(xs, window))
}

// ZScore of the last value against the trailing window. Returns 0 when
// fewer than window values are available.
func ZScore(xs []float64, window int, eps float64) float64 {
	if window <= 0 || len(xs) < window {
		return 0
	}
	w := Tail(xs, window)
	return (xs[len(xs)-1] - Mean(w)) / (StdDev(w) + eps)
}

// RelativeVolume is last volume over the trailing mean volume. A zero mean
// is replaced by one.
func RelativeVolume(volumes []float64, window int) float64 {
	if len(volumes) == 0 {
		return 0
	}
	m := Mean(Tail(volumes, window))
	if m == 0 {
		m = 1
	}
	return volumes[len(volumes)-1] / m
}

// Volatility is the population std dev of the last window simple returns.
func Volatility(closes []float64, window int) float64 {
	rets := PercentReturns(Tail(closes, window+1))
	if len(rets) == 0 {
		return 0
	}
	return StdDev(rets)
}

// CompositeScore ranks instruments: stretched, anti-persistent and quiet
// ones score highest.
func CompositeScore(z, hurst, relVolume float64) float64 {
	return math.Abs(z) * (1 - hurst) / (relVolume + 0.1)
}

func ClassifyRegime(hurst, threshold float64) models.Regime {
	if hurst < threshold {
		return models.RegimeMeanReverting
	}
	return models.RegimeTrending
}

// PercentReturns computes r_t = C_t / C_{t-1} - 1. Non-positive previous
// closes yield a zero return.
func PercentReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, closes[i]/prev-1)
	}
	return out
}

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(closes)-1, or nil if insufficient data.
func ComputeLogReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		cur := closes[i]
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// RealizedVolatility annualizes the sample std dev of the latest window of
// log returns using barsPerYear.
func RealizedVolatility(logReturns []float64, window int, barsPerYear float64) float64 {
	if window <= 1 || len(logReturns) < window {
		return 0
	}
	sum := 0.0
	sum2 := 0.0
	for i := len(logReturns) - window; i < len(logReturns); i++ {
		r := logReturns[i]
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance * barsPerYear)
}

// BarsPerYear returns the approximate number of bars per year for an interval.
func BarsPerYear(iv models.Interval) float64 {
	switch iv {
	case models.Interval1wk:
		return 52
	default:
		return 252
	}
}
