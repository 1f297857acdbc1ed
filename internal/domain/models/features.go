package models

import (
	"time"

	"github.com/google/uuid"
)

// Regime labels the behaviour suggested by the Hurst proxy.
type Regime string

const (
	RegimeMeanReverting Regime = "mean_reverting"
	RegimeTrending      Regime = "trending"
)

// FeatureVector is the per-instrument output of the feature extractor.
type FeatureVector struct {
	Symbol         string    `json:"symbol"`
	LastPrice      float64   `json:"last_price"`
	MovingAverage  float64   `json:"moving_average"`
	ZScore         float64   `json:"z_score"`
	Hurst          float64   `json:"hurst"`
	RelativeVolume float64   `json:"relative_volume"`
	Volatility     float64   `json:"volatility"`
	AnnualizedVol  float64   `json:"annualized_volatility"`
	Score          float64   `json:"score"`
	Regime         Regime    `json:"regime"`
	Observations   int       `json:"observations"`
	ComputedAt     time.Time `json:"computed_at"`
}

// Screen is one ranked pass over a symbol list. Results are sorted by Score
// descending; instruments that could not be processed are listed in Dropped.
type Screen struct {
	ID          uuid.UUID         `json:"id"`
	Symbols     []string          `json:"symbols"`
	Results     []FeatureVector   `json:"results"`
	Dropped     map[string]string `json:"dropped,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
	CacheHit    bool              `json:"cache_hit"`
}

// Top returns at most n leading results.
func (s *Screen) Top(n int) []FeatureVector {
	if n <= 0 || n >= len(s.Results) {
		return s.Results
	}
	return s.Results[:n]
}
