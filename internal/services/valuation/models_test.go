package valuation

import (
	"testing"

	"Halcon/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraham(t *testing.T) {
	r := Graham(5, 0.20)
	require.True(t, r.Applicable)
	// 5 x (8.5 + 40) x 4.4 / 4.5
	assert.InDelta(t, 237.11, r.Value, 0.01)

	for _, g := range []float64{-0.5, 0, 0.05, 0.2, 1} {
		for _, eps := range []float64{0, -0.01, -3} {
			r := Graham(eps, g)
			assert.False(t, r.Applicable)
			assert.Equal(t, 0.0, r.Value)
			assert.Contains(t, r.Reason, models.ErrInvalidModelInput.Error())
		}
	}
}

func TestGordonGrowth(t *testing.T) {
	r := GordonGrowth(2, 0.10, 0.03)
	require.True(t, r.Applicable)
	assert.InDelta(t, 29.4286, r.Value, 1e-4)

	assert.False(t, GordonGrowth(2, 0.05, 0.05).Applicable)
	assert.False(t, GordonGrowth(2, 0.04, 0.05).Applicable)
	assert.Equal(t, 0.0, GordonGrowth(2, 0.04, 0.05).Value)
	assert.False(t, GordonGrowth(0, 0.10, 0.03).Applicable)
}

func TestGordonGrowthIncreasingInGrowth(t *testing.T) {
	prev := 0.0
	for g := -0.05; g < 0.095; g += 0.01 {
		r := GordonGrowth(1.5, 0.10, g)
		require.True(t, r.Applicable, "g=%v", g)
		assert.Greater(t, r.Value, 0.0)
		assert.Greater(t, r.Value, prev, "g=%v", g)
		prev = r.Value
	}
}

func TestDCF(t *testing.T) {
	flat := models.Assumptions{DiscountRate: 0, GrowthRate: 0, ExitMultiple: 25, Years: 5}
	r := DCF(DCFInput{FreeCashFlow: 100, TotalDebt: 500, TotalCash: 100, SharesOutstanding: 10}, flat)
	require.True(t, r.Applicable)
	// 5 x 100 + 100 x 25 - 500 + 100 = 2600 over 10 shares
	assert.InDelta(t, 260.0, r.Value, 1e-9)

	r = DCF(DCFInput{FreeCashFlow: 100, TotalDebt: 500, TotalCash: 100, SharesOutstanding: 10}, DefaultAssumptions())
	require.True(t, r.Applicable)
	assert.InDelta(t, 201.6988, r.Value, 1e-4)
}

func TestDCFNotApplicable(t *testing.T) {
	a := DefaultAssumptions()
	cases := map[string]DCFInput{
		"no shares":    {FreeCashFlow: 100, SharesOutstanding: 0},
		"negative fcf": {FreeCashFlow: -1, SharesOutstanding: 10},
		"debt swamps":  {FreeCashFlow: 1, TotalDebt: 1e6, SharesOutstanding: 10},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			r := DCF(in, a)
			assert.False(t, r.Applicable)
			assert.Equal(t, 0.0, r.Value)
			assert.NotEmpty(t, r.Reason)
		})
	}
}

func TestAltmanZ(t *testing.T) {
	all := AltmanZ(AltmanInput{1, 1, 1, 1, 1, 1, 1})
	require.True(t, all.Applicable)
	assert.InDelta(t, 7.5, all.Score, 1e-12)
	assert.Equal(t, models.ZoneSafe, all.Zone)

	grey := AltmanZ(AltmanInput{MarketCap: 4, TotalLiabilities: 1, TotalAssets: 1})
	assert.InDelta(t, 2.4, grey.Score, 1e-12)
	assert.Equal(t, models.ZoneGrey, grey.Zone)

	distress := AltmanZ(AltmanInput{MarketCap: 2, TotalLiabilities: 1, TotalAssets: 1})
	assert.Equal(t, models.ZoneDistress, distress.Zone)

	assert.False(t, AltmanZ(AltmanInput{TotalLiabilities: 1}).Applicable)
	assert.False(t, AltmanZ(AltmanInput{TotalAssets: 1}).Applicable)
}

func TestAltmanZoneBoundaries(t *testing.T) {
	assert.Equal(t, models.ZoneGrey, AltmanZone(2.99))
	assert.Equal(t, models.ZoneSafe, AltmanZone(2.9901))
	assert.Equal(t, models.ZoneGrey, AltmanZone(1.81))
	assert.Equal(t, models.ZoneDistress, AltmanZone(1.8099))
}

func TestConsensusAndUpside(t *testing.T) {
	results := []models.ValuationResult{
		{Model: models.ModelGraham, Value: 120, Applicable: true},
		{Model: models.ModelGordon, Applicable: false},
		{Model: models.ModelDCF, Value: 80, Applicable: true},
	}
	c, ok := Consensus(results)
	require.True(t, ok)
	assert.Equal(t, 100.0, c)

	up, ok := Upside(c, 80)
	require.True(t, ok)
	assert.InDelta(t, 0.25, up, 1e-12)

	_, ok = Consensus([]models.ValuationResult{{Model: models.ModelGraham}})
	assert.False(t, ok)

	_, ok = Upside(100, 0)
	assert.False(t, ok)
}
