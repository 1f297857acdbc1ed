package montecarlo

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"Halcon/internal/domain/models"
)

// Params describe one fan-chart simulation.
type Params struct {
	StartPrice float64
	Volatility float64 // per-period std dev of simple returns
	Horizon    int
	Paths      int
	Seed       int64 // 0 picks a time-based seed
}

func (p Params) validate() error {
	switch {
	case !(p.StartPrice > 0) || math.IsInf(p.StartPrice, 0):
		return fmt.Errorf("%w: start price %v must be positive", models.ErrInvalidModelInput, p.StartPrice)
	case p.Volatility < 0 || math.IsNaN(p.Volatility) || math.IsInf(p.Volatility, 0):
		return fmt.Errorf("%w: volatility %v must be non-negative", models.ErrInvalidModelInput, p.Volatility)
	case p.Horizon < 1:
		return fmt.Errorf("%w: horizon must be at least 1", models.ErrInvalidModelInput)
	case p.Paths < 1:
		return fmt.Errorf("%w: paths must be at least 1", models.ErrInvalidModelInput)
	}
	return nil
}

// Simulate draws p.Paths independent paths of N(0, vol) returns compounded
// from the start price and reports the 10/50/90 percentiles per period.
// Period 0 is the start price itself. A return below -100% floors the path at zero.
func Simulate(p Params) (models.SimulationBand, error) {
	if err := p.validate(); err != nil {
		return models.SimulationBand{}, err
	}
	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	// prices[step][path]
	prices := make([][]float64, p.Horizon+1)
	for s := range prices {
		prices[s] = make([]float64, p.Paths)
	}
	for j := 0; j < p.Paths; j++ {
		price := p.StartPrice
		prices[0][j] = price
		for s := 1; s <= p.Horizon; s++ {
			r := rng.NormFloat64() * p.Volatility
			if r < -1 {
				r = -1
			}
			price *= 1 + r
			prices[s][j] = price
		}
	}

	band := models.SimulationBand{
		StartPrice: p.StartPrice,
		Volatility: p.Volatility,
		Horizon:    p.Horizon,
		Paths:      p.Paths,
		Seed:       seed,
		P10:        make([]float64, p.Horizon+1),
		P50:        make([]float64, p.Horizon+1),
		P90:        make([]float64, p.Horizon+1),
	}
	for s, row := range prices {
		sort.Float64s(row)
		band.P10[s] = percentileSorted(row, 10)
		band.P50[s] = percentileSorted(row, 50)
		band.P90[s] = percentileSorted(row, 90)
	}
	return band, nil
}

// Percentile returns the q-th percentile of xs with linear interpolation
// between closest ranks. xs is not modified.
func Percentile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	return percentileSorted(s, q)
}

func percentileSorted(s []float64, q float64) float64 {
	if len(s) == 1 {
		return s[0]
	}
	pos := q / 100 * float64(len(s)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return s[lo]
	}
	return s[lo] + (s[hi]-s[lo])*(pos-float64(lo))
}
