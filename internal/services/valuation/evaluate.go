package valuation

import (
	"time"

	"Halcon/internal/domain/models"
)

// Evaluate runs every model against one fundamentals snapshot. Missing
// figures default to zero, which makes the dependent models not applicable.
func Evaluate(f *models.Fundamentals, a models.Assumptions) models.Valuation {
	price := f.Get(models.FigPrice, 0)

	results := []models.ValuationResult{
		Graham(f.Get(models.FigEPS, 0), a.GrowthRate),
		GordonGrowth(f.Get(models.FigDividendRate, 0), a.DiscountRate, a.DividendGrowthRate),
		DCF(DCFInput{
			FreeCashFlow:      f.FreeCashFlow(),
			TotalDebt:         f.Get(models.FigTotalDebt, 0),
			TotalCash:         f.Get(models.FigTotalCash, 0),
			SharesOutstanding: f.Get(models.FigSharesOutstanding, 0),
		}, a),
	}

	consensus, ok := Consensus(results)
	upside, upOK := Upside(consensus, price)

	symbol := ""
	if f != nil {
		symbol = f.Symbol
	}
	return models.Valuation{
		Symbol:           symbol,
		Price:            price,
		Assumptions:      a,
		Models:           results,
		Consensus:        consensus,
		ConsensusDefined: ok,
		Upside:           upside,
		UpsideDefined:    upOK,
		Altman: AltmanZ(AltmanInput{
			WorkingCapital:   f.Get(models.FigWorkingCapital, 0),
			RetainedEarnings: f.Get(models.FigRetainedEarnings, 0),
			EBITDA:           f.Get(models.FigEBITDA, 0),
			MarketCap:        f.Get(models.FigMarketCap, 0),
			TotalLiabilities: f.Get(models.FigTotalLiabilities, 0),
			TotalRevenue:     f.Get(models.FigTotalRevenue, 0),
			TotalAssets:      f.Get(models.FigTotalAssets, 0),
		}),
		ComputedAt: time.Now().UTC(),
	}
}

// DefaultAssumptions matches the configuration defaults.
func DefaultAssumptions() models.Assumptions {
	return models.Assumptions{
		DiscountRate:       0.10,
		GrowthRate:         0.05,
		DividendGrowthRate: 0.03,
		ExitMultiple:       25,
		Years:              5,
	}
}
