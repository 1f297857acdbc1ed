package valuation

import (
	"fmt"
	"math"

	"Halcon/internal/domain/models"
)

const (
	grahamBaseMultiple = 8.5
	grahamBondYield    = 4.4
	grahamAAAYield     = 4.5
)

func notApplicable(model, format string, args ...any) models.ValuationResult {
	err := fmt.Errorf("%w: "+format, append([]any{models.ErrInvalidModelInput}, args...)...)
	return models.ValuationResult{Model: model, Reason: err.Error()}
}

func applicable(model string, v float64) models.ValuationResult {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notApplicable(model, "non-finite result")
	}
	return models.ValuationResult{Model: model, Value: v, Applicable: true}
}

// Graham intrinsic value: EPS x (8.5 + 2g) x 4.4 / 4.5 with g in percent.
// growthRate is a fraction (0.20 means 20%).
func Graham(eps, growthRate float64) models.ValuationResult {
	if eps <= 0 {
		return notApplicable(models.ModelGraham, "eps %.4f must be positive", eps)
	}
	growthPercent := growthRate * 100
	return applicable(models.ModelGraham, eps*(grahamBaseMultiple+2*growthPercent)*grahamBondYield/grahamAAAYield)
}

// GordonGrowth is the constant-growth dividend discount model D(1+g)/(r-g).
func GordonGrowth(dividend, requiredReturn, growthRate float64) models.ValuationResult {
	if dividend <= 0 {
		return notApplicable(models.ModelGordon, "dividend %.4f must be positive", dividend)
	}
	if requiredReturn <= growthRate {
		return notApplicable(models.ModelGordon, "required return %.4f must exceed growth %.4f", requiredReturn, growthRate)
	}
	return applicable(models.ModelGordon, dividend*(1+growthRate)/(requiredReturn-growthRate))
}

// DCFInput carries the balance-sheet figures the cash flow model needs.
type DCFInput struct {
	FreeCashFlow      float64
	TotalDebt         float64
	TotalCash         float64
	SharesOutstanding float64
}

// DCF projects free cash flow for a.Years periods at a.GrowthRate, discounts
// each at a.DiscountRate and adds an exit-multiple terminal value. The
// enterprise value is adjusted for net debt and spread over the share count.
func DCF(in DCFInput, a models.Assumptions) models.ValuationResult {
	switch {
	case in.SharesOutstanding <= 0:
		return notApplicable(models.ModelDCF, "shares outstanding must be positive")
	case in.FreeCashFlow <= 0:
		return notApplicable(models.ModelDCF, "free cash flow %.0f must be positive", in.FreeCashFlow)
	case a.DiscountRate <= -1:
		return notApplicable(models.ModelDCF, "discount rate %.4f out of range", a.DiscountRate)
	case a.Years < 1:
		return notApplicable(models.ModelDCF, "projection years must be at least 1")
	}

	var pv, cf float64
	for t := 1; t <= a.Years; t++ {
		cf = in.FreeCashFlow * math.Pow(1+a.GrowthRate, float64(t))
		pv += cf / math.Pow(1+a.DiscountRate, float64(t))
	}
	terminal := cf * a.ExitMultiple / math.Pow(1+a.DiscountRate, float64(a.Years))

	equity := pv + terminal - in.TotalDebt + in.TotalCash
	perShare := equity / in.SharesOutstanding
	if perShare <= 0 {
		return notApplicable(models.ModelDCF, "equity value per share %.4f is not positive", perShare)
	}
	return applicable(models.ModelDCF, perShare)
}

// AltmanInput are the balance-sheet aggregates of the simplified Z score.
type AltmanInput struct {
	WorkingCapital   float64
	RetainedEarnings float64
	EBITDA           float64
	MarketCap        float64
	TotalLiabilities float64
	TotalRevenue     float64
	TotalAssets      float64
}

// AltmanZ is a solvency indicator, not a price target.
func AltmanZ(in AltmanInput) models.AltmanScore {
	if in.TotalAssets <= 0 || in.TotalLiabilities <= 0 {
		return models.AltmanScore{
			Reason: fmt.Errorf("%w: total assets and liabilities must be positive", models.ErrInvalidModelInput).Error(),
		}
	}
	ta := in.TotalAssets
	z := 1.2*in.WorkingCapital/ta +
		1.4*in.RetainedEarnings/ta +
		3.3*in.EBITDA/ta +
		0.6*in.MarketCap/in.TotalLiabilities +
		1.0*in.TotalRevenue/ta
	return models.AltmanScore{Score: z, Zone: AltmanZone(z), Applicable: true}
}

func AltmanZone(z float64) models.AltmanZone {
	switch {
	case z > 2.99:
		return models.ZoneSafe
	case z >= 1.81:
		return models.ZoneGrey
	default:
		return models.ZoneDistress
	}
}

// Consensus averages the applicable, positive price targets.
func Consensus(results []models.ValuationResult) (float64, bool) {
	var sum float64
	n := 0
	for _, r := range results {
		if r.Applicable && r.Value > 0 {
			sum += r.Value
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Upside is consensus/price - 1, undefined without a positive price.
func Upside(consensus, price float64) (float64, bool) {
	if price <= 0 || consensus <= 0 {
		return 0, false
	}
	return consensus/price - 1, true
}
