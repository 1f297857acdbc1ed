package features

import "math"

const (
	hurstMinObservations = 30
	hurstMinLag          = 2
	hurstMaxLag          = 20 // exclusive
	hurstNeutral         = 0.5
)

// Hurst estimates the Hurst exponent with the lagged-difference proxy:
// for each lag in [2, 20) tau = sqrt(std(ts[lag:] - ts[:-lag])), then twice
// the least-squares slope of log(tau) on log(lag).
//
// Returns 0.5 (no information) when there are fewer than 30 points, when a
// tau is not positive or when the fit is not finite.
func Hurst(ts []float64) float64 {
	if len(ts) < hurstMinObservations {
		return hurstNeutral
	}

	logLags := make([]float64, 0, hurstMaxLag-hurstMinLag)
	logTau := make([]float64, 0, hurstMaxLag-hurstMinLag)
	diffs := make([]float64, 0, len(ts))
	for lag := hurstMinLag; lag < hurstMaxLag; lag++ {
		diffs = diffs[:0]
		for i := lag; i < len(ts); i++ {
			diffs = append(diffs, ts[i]-ts[i-lag])
		}
		tau := math.Sqrt(StdDev(diffs))
		if !(tau > 0) {
			return hurstNeutral
		}
		logLags = append(logLags, math.Log(float64(lag)))
		logTau = append(logTau, math.Log(tau))
	}

	slope, ok := LinearSlope(logLags, logTau)
	if !ok {
		return hurstNeutral
	}
	h := slope * 2
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return hurstNeutral
	}
	return h
}
