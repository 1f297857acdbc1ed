package models

// SimulationBand holds per-step percentiles of simulated prices. Index 0 is
// the start price, so every slice has Horizon+1 entries.
type SimulationBand struct {
	Symbol     string    `json:"symbol,omitempty"`
	StartPrice float64   `json:"start_price"`
	Volatility float64   `json:"volatility"`
	Horizon    int       `json:"horizon"`
	Paths      int       `json:"paths"`
	Seed       int64     `json:"seed"`
	P10        []float64 `json:"p10"`
	P50        []float64 `json:"p50"`
	P90        []float64 `json:"p90"`
}
