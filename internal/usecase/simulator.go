package usecase

import (
	"context"
	"strings"
	"time"

	"Halcon/internal/domain/models"
	drepo "Halcon/internal/domain/repository"
	"Halcon/internal/services/features"
	"Halcon/internal/services/montecarlo"
	applogger "Halcon/pkg/logger"
)

type SimulatorConfig struct {
	Features features.Params
	Paths    int
	Horizon  int
	Seed     int64
}

// SimOptions override the configured simulation parameters. Price and
// Volatility, when set, replace the values derived from the series.
type SimOptions struct {
	Paths      int
	Horizon    int
	Seed       int64
	Price      *float64
	Volatility *float64
}

type Simulator struct {
	data    *MarketData
	cfg     SimulatorConfig
	metrics drepo.Metrics
	l       *applogger.Logger
}

func NewSimulator(data *MarketData, cfg SimulatorConfig, metrics drepo.Metrics, l *applogger.Logger) *Simulator {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &Simulator{data: data, cfg: cfg, metrics: metrics, l: l}
}

// Simulate projects symbol from its last close using the volatility of its
// recent returns.
func (s *Simulator) Simulate(ctx context.Context, symbol string, o SimOptions) (*models.SimulationBand, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	p := s.params(o)

	if o.Price == nil || o.Volatility == nil {
		series, _, err := s.data.Series(ctx, symbol)
		if err != nil {
			return nil, err
		}
		fv, err := features.Extract(series, s.cfg.Features)
		if err != nil {
			return nil, err
		}
		p.StartPrice, p.Volatility = fv.LastPrice, fv.Volatility
	}
	if o.Price != nil {
		p.StartPrice = *o.Price
	}
	if o.Volatility != nil {
		p.Volatility = *o.Volatility
	}

	band, err := s.SimulateRaw(p)
	if err != nil {
		return nil, err
	}
	band.Symbol = symbol
	return band, nil
}

// SimulateRaw runs the Monte Carlo band for explicit inputs.
func (s *Simulator) SimulateRaw(p montecarlo.Params) (*models.SimulationBand, error) {
	start := time.Now()
	band, err := montecarlo.Simulate(p)
	s.metrics.RecordLatency("simulation", time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	return &band, nil
}

func (s *Simulator) params(o SimOptions) montecarlo.Params {
	p := montecarlo.Params{Paths: s.cfg.Paths, Horizon: s.cfg.Horizon, Seed: s.cfg.Seed}
	if o.Paths > 0 {
		p.Paths = o.Paths
	}
	if o.Horizon > 0 {
		p.Horizon = o.Horizon
	}
	if o.Seed != 0 {
		p.Seed = o.Seed
	}
	return p
}
