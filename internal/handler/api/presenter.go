package api

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"Halcon/internal/domain/models"
)

// Presentation precision. Computation never rounds; only these DTOs do.
const (
	pricePlaces = 4
	statPlaces  = 2
)

func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func roundAll(xs []float64, places int32) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = round(x, places)
	}
	return out
}

type ScreenRow struct {
	Rank           int           `json:"rank"`
	Symbol         string        `json:"symbol"`
	Price          float64       `json:"price"`
	MovingAverage  float64       `json:"moving_average"`
	ZScore         float64       `json:"z_score"`
	Hurst          float64       `json:"hurst"`
	RelativeVolume float64       `json:"relative_volume"`
	Volatility     float64       `json:"volatility"`
	AnnualizedVol  float64       `json:"annualized_volatility"`
	Score          float64       `json:"score"`
	Regime         models.Regime `json:"regime"`
}

type ScreenView struct {
	ID          string            `json:"id"`
	GeneratedAt time.Time         `json:"generated_at"`
	CacheHit    bool              `json:"cache_hit"`
	Results     []ScreenRow       `json:"results"`
	Dropped     map[string]string `json:"dropped,omitempty"`
}

// PresentScreen rounds a screen for display, keeping at most top rows (0 = all).
func PresentScreen(s *models.Screen, top int) ScreenView {
	rows := s.Top(top)
	out := ScreenView{
		ID:          s.ID.String(),
		GeneratedAt: s.GeneratedAt,
		CacheHit:    s.CacheHit,
		Results:     make([]ScreenRow, len(rows)),
		Dropped:     s.Dropped,
	}
	for i, fv := range rows {
		out.Results[i] = ScreenRow{
			Rank:           i + 1,
			Symbol:         fv.Symbol,
			Price:          round(fv.LastPrice, pricePlaces),
			MovingAverage:  round(fv.MovingAverage, pricePlaces),
			ZScore:         round(fv.ZScore, statPlaces),
			Hurst:          round(fv.Hurst, statPlaces),
			RelativeVolume: round(fv.RelativeVolume, statPlaces),
			Volatility:     round(fv.Volatility, pricePlaces),
			AnnualizedVol:  round(fv.AnnualizedVol, pricePlaces),
			Score:          round(fv.Score, statPlaces),
			Regime:         fv.Regime,
		}
	}
	return out
}

type ModelView struct {
	Model      string   `json:"model"`
	Value      *float64 `json:"value"`
	Applicable bool     `json:"applicable"`
	Reason     string   `json:"reason,omitempty"`
}

type AltmanView struct {
	Score      *float64          `json:"score"`
	Zone       models.AltmanZone `json:"zone,omitempty"`
	Applicable bool              `json:"applicable"`
	Reason     string            `json:"reason,omitempty"`
}

type ValuationView struct {
	Symbol      string             `json:"symbol"`
	Price       float64            `json:"price"`
	Models      []ModelView        `json:"models"`
	Consensus   *float64           `json:"consensus"`
	Upside      *float64           `json:"upside"`
	Altman      AltmanView         `json:"altman"`
	Assumptions models.Assumptions `json:"assumptions"`
}

func optional(v float64, ok bool, places int32) *float64 {
	if !ok {
		return nil
	}
	r := round(v, places)
	return &r
}

// PresentValuation renders undefined values as null rather than zero.
func PresentValuation(v *models.Valuation) ValuationView {
	out := ValuationView{
		Symbol:      v.Symbol,
		Price:       round(v.Price, pricePlaces),
		Models:      make([]ModelView, len(v.Models)),
		Consensus:   optional(v.Consensus, v.ConsensusDefined, statPlaces),
		Upside:      optional(v.Upside, v.UpsideDefined, pricePlaces),
		Assumptions: v.Assumptions,
		Altman: AltmanView{
			Score:      optional(v.Altman.Score, v.Altman.Applicable, statPlaces),
			Zone:       v.Altman.Zone,
			Applicable: v.Altman.Applicable,
			Reason:     v.Altman.Reason,
		},
	}
	for i, m := range v.Models {
		out.Models[i] = ModelView{
			Model:      m.Model,
			Value:      optional(m.Value, m.Applicable, statPlaces),
			Applicable: m.Applicable,
			Reason:     m.Reason,
		}
	}
	return out
}

type SimulationView struct {
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

func PresentSimulation(b *models.SimulationBand) SimulationView {
	return SimulationView{
		Symbol:     b.Symbol,
		StartPrice: round(b.StartPrice, pricePlaces),
		Volatility: round(b.Volatility, pricePlaces+2),
		Horizon:    b.Horizon,
		Paths:      b.Paths,
		Seed:       b.Seed,
		P10:        roundAll(b.P10, pricePlaces),
		P50:        roundAll(b.P50, pricePlaces),
		P90:        roundAll(b.P90, pricePlaces),
	}
}
