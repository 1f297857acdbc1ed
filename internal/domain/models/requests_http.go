package models

import "strings"

// Requests for the radar HTTP endpoints. Bound from query parameters;
// optional numeric overrides are tagged query:"-" and filled by the handler
// so that absent and zero stay distinct.

type ScreenRequest struct {
	Symbols string `query:"symbols" json:"symbols" validate:"omitempty,max=512"`
	Top     int    `query:"top" json:"top" validate:"gte=0,lte=100"`
	Refresh bool   `query:"refresh" json:"refresh"`
}

// SymbolList splits the comma separated Symbols field, dropping blanks.
func (r *ScreenRequest) SymbolList() []string {
	return SplitSymbols(r.Symbols)
}

type ValuationRequest struct {
	Symbol             string   `query:"symbol" json:"symbol" validate:"required,max=32"`
	DiscountRate       *float64 `query:"-" json:"discount_rate" validate:"omitempty,gt=-1,lt=1"`
	GrowthRate         *float64 `query:"-" json:"growth_rate" validate:"omitempty,gt=-1,lt=1"`
	DividendGrowthRate *float64 `query:"-" json:"dividend_growth_rate" validate:"omitempty,gt=-1,lt=1"`
	ExitMultiple       *float64 `query:"-" json:"exit_multiple" validate:"omitempty,gt=0,lte=100"`
}

// Apply overlays the request overrides onto base.
func (r *ValuationRequest) Apply(base Assumptions) Assumptions {
	if r.DiscountRate != nil {
		base.DiscountRate = *r.DiscountRate
	}
	if r.GrowthRate != nil {
		base.GrowthRate = *r.GrowthRate
	}
	if r.DividendGrowthRate != nil {
		base.DividendGrowthRate = *r.DividendGrowthRate
	}
	if r.ExitMultiple != nil {
		base.ExitMultiple = *r.ExitMultiple
	}
	return base
}

type SimulationRequest struct {
	Symbol     string   `query:"symbol" json:"symbol" validate:"required_without=Price,max=32"`
	Price      *float64 `query:"-" json:"price" validate:"omitempty,gt=0"`
	Volatility *float64 `query:"-" json:"volatility" validate:"omitempty,gte=0,lte=5"`
	Paths      int      `query:"paths" json:"paths" default:"100" validate:"gte=100,lte=250"`
	Horizon    int      `query:"horizon" json:"horizon" default:"5" validate:"gte=1,lte=60"`
	Seed       int64    `query:"seed" json:"seed"`
}

// SplitSymbols normalizes a comma separated symbol list.
func SplitSymbols(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
