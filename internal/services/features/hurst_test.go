package features

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func randomWalk(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	x := 100.0
	for i := range out {
		x += rng.NormFloat64()
		out[i] = x
	}
	return out
}

func persistentWalk(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	x, step := 100.0, 0.0
	for i := range out {
		step = 0.9*step + rng.NormFloat64()
		x += step
		out[i] = x
	}
	return out
}

func whiteNoise(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + rng.NormFloat64()
	}
	return out
}

func TestHurstShortSeries(t *testing.T) {
	assert.Equal(t, 0.5, Hurst(nil))
	assert.Equal(t, 0.5, Hurst(randomWalk(rand.New(rand.NewSource(1)), 29)))
}

func TestHurstZeroVarianceLag(t *testing.T) {
	// A perfect linear trend has constant lagged differences.
	ts := make([]float64, 60)
	for i := range ts {
		ts[i] = 100 + float64(i)
	}
	assert.Equal(t, 0.5, Hurst(ts))
	assert.Equal(t, 0.5, Hurst(repeat(42, 50)))
}

func TestHurstRandomWalk(t *testing.T) {
	sum := 0.0
	for seed := int64(1); seed <= 5; seed++ {
		h := Hurst(randomWalk(rand.New(rand.NewSource(seed)), 1000))
		assert.InDelta(t, 0.5, h, 0.15, "seed %d", seed)
		sum += h
	}
	assert.InDelta(t, 0.5, sum/5, 0.1)
}

func TestHurstPersistent(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		h := Hurst(persistentWalk(rand.New(rand.NewSource(seed)), 1000))
		assert.Greater(t, h, 0.7, "seed %d", seed)
	}
}

func TestHurstMeanReverting(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		h := Hurst(whiteNoise(rand.New(rand.NewSource(seed)), 1000))
		assert.Less(t, h, 0.25, "seed %d", seed)
	}
}

func TestLinearSlope(t *testing.T) {
	b, ok := LinearSlope([]float64{1, 2, 3}, []float64{3, 5, 7})
	assert.True(t, ok)
	assert.InDelta(t, 2.0, b, 1e-12)

	_, ok = LinearSlope([]float64{1, 1}, []float64{2, 3})
	assert.False(t, ok)
}
