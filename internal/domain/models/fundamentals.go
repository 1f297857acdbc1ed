package models

import "time"

// Keys understood by the valuation models. Providers fill what they can.
const (
	FigEPS               = "eps"
	FigDividendRate      = "dividend_rate"
	FigFreeCashFlow      = "free_cash_flow"
	FigOperatingCashFlow = "operating_cash_flow"
	FigSharesOutstanding = "shares_outstanding"
	FigTotalDebt         = "total_debt"
	FigTotalCash         = "total_cash"
	FigWorkingCapital    = "working_capital"
	FigRetainedEarnings  = "retained_earnings"
	FigEBITDA            = "ebitda"
	FigMarketCap         = "market_cap"
	FigTotalLiabilities  = "total_liabilities"
	FigTotalRevenue      = "total_revenue"
	FigTotalAssets       = "total_assets"
	FigPrice             = "price"
)

// Fundamentals is an opaque bag of company figures keyed by the Fig* names.
type Fundamentals struct {
	Symbol    string             `json:"symbol"`
	Figures   map[string]float64 `json:"figures"`
	FetchedAt time.Time          `json:"fetched_at"`
}

func NewFundamentals(symbol string) *Fundamentals {
	return &Fundamentals{Symbol: symbol, Figures: make(map[string]float64)}
}

// Get returns the figure for key or def when it is absent.
func (f *Fundamentals) Get(key string, def float64) float64 {
	if f == nil || f.Figures == nil {
		return def
	}
	if v, ok := f.Figures[key]; ok {
		return v
	}
	return def
}

// Set stores a figure, ignoring zero values so absent and unknown stay equivalent.
func (f *Fundamentals) Set(key string, v float64) {
	if v == 0 {
		return
	}
	if f.Figures == nil {
		f.Figures = make(map[string]float64)
	}
	f.Figures[key] = v
}

func (f *Fundamentals) Has(key string) bool {
	if f == nil {
		return false
	}
	_, ok := f.Figures[key]
	return ok
}

// FreeCashFlow falls back to operating cash flow when FCF is not reported.
func (f *Fundamentals) FreeCashFlow() float64 {
	if f.Has(FigFreeCashFlow) {
		return f.Get(FigFreeCashFlow, 0)
	}
	return f.Get(FigOperatingCashFlow, 0)
}

// Clone returns a deep copy safe to modify.
func (f *Fundamentals) Clone() *Fundamentals {
	if f == nil {
		return nil
	}
	c := &Fundamentals{Symbol: f.Symbol, FetchedAt: f.FetchedAt, Figures: make(map[string]float64, len(f.Figures))}
	for k, v := range f.Figures {
		c.Figures[k] = v
	}
	return c
}
