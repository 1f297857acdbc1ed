package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Halcon/internal/domain/models"
	drepo "Halcon/internal/domain/repository"
	"Halcon/pkg/cache"
	applogger "Halcon/pkg/logger"
)

// MarketDataConfig tunes the memoized market data reads.
type MarketDataConfig struct {
	Source       string // label for metrics, e.g. "yahoo"
	LookbackDays int
	Interval     models.Interval
}

// MarketData memoizes price series and fundamentals per symbol so screens,
// valuations and simulations inside the TTL share one upstream fetch.
type MarketData struct {
	prices  drepo.PriceSource
	funds   drepo.FundamentalsSource
	memo    *cache.Memo
	metrics drepo.Metrics
	cfg     MarketDataConfig
	l       *applogger.Logger
}

func NewMarketData(
	prices drepo.PriceSource,
	funds drepo.FundamentalsSource,
	memo *cache.Memo,
	metrics drepo.Metrics,
	cfg MarketDataConfig,
	l *applogger.Logger,
) *MarketData {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	if cfg.Interval == "" {
		cfg.Interval = models.Interval1d
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 60
	}
	return &MarketData{prices: prices, funds: funds, memo: memo, metrics: metrics, cfg: cfg, l: l}
}

// Series returns the memoized lookback window for symbol.
func (m *MarketData) Series(ctx context.Context, symbol string) (*models.PriceSeries, bool, error) {
	key := fmt.Sprintf("%s|%d|%s", symbol, m.cfg.LookbackDays, m.cfg.Interval)
	s, hit, err := cache.Do(ctx, m.memo, "series", key, func(ctx context.Context) (*models.PriceSeries, error) {
		start := time.Now()
		s, err := m.prices.GetSeries(ctx, symbol, m.cfg.LookbackDays, m.cfg.Interval)
		m.metrics.RecordLatency("fetch_series", time.Since(start).Seconds())
		m.metrics.RecordFetch(m.cfg.Source, symbol, fetchOutcome(err))
		return s, err
	})
	if err != nil {
		return nil, false, err
	}
	if last, ok := s.Last(); ok {
		m.metrics.RecordLastPrice(symbol, last.Close)
	}
	return s, hit, nil
}

// Fundamentals returns the memoized company figures for symbol.
func (m *MarketData) Fundamentals(ctx context.Context, symbol string) (*models.Fundamentals, bool, error) {
	if m.funds == nil {
		return nil, false, fmt.Errorf("%w: no fundamentals source configured", models.ErrUpstreamUnavailable)
	}
	return cache.Do(ctx, m.memo, "fundamentals", symbol, func(ctx context.Context) (*models.Fundamentals, error) {
		start := time.Now()
		f, err := m.funds.GetFundamentals(ctx, symbol)
		m.metrics.RecordLatency("fetch_fundamentals", time.Since(start).Seconds())
		m.metrics.RecordFetch(m.cfg.Source, symbol, fetchOutcome(err))
		return f, err
	})
}

// Clear drops every memoized result so the next call goes upstream.
func (m *MarketData) Clear(ctx context.Context) error {
	if err := m.memo.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	m.l.Info("market data cache cleared")
	return nil
}

func fetchOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrEmptySeries):
		return "empty"
	default:
		return "error"
	}
}

// dropReason maps an error to a short, stable label.
func dropReason(err error) string {
	switch {
	case errors.Is(err, models.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, models.ErrEmptySeries):
		return "empty_series"
	case errors.Is(err, models.ErrInvalidModelInput):
		return "invalid_input"
	case errors.Is(err, models.ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordFetch(string, string, string) {}
func (nopMetrics) RecordDropped(string)               {}
func (nopMetrics) RecordCacheHit(string)              {}
func (nopMetrics) RecordCacheMiss(string)             {}
func (nopMetrics) RecordLatency(string, float64)      {}
func (nopMetrics) RecordLastPrice(string, float64)    {}
func (nopMetrics) RecordScore(string, float64)        {}
