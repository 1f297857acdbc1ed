package repository

import (
	"context"

	"Halcon/internal/domain/models"
)

// PriceSource returns the latest lookbackDays of bars for a symbol, oldest
// first. An answer with no bars is models.ErrEmptySeries.
type PriceSource interface {
	GetSeries(ctx context.Context, symbol string, lookbackDays int, interval models.Interval) (*models.PriceSeries, error)
}

// FundamentalsSource returns the financial figures valuation models need.
// Figures the upstream does not report are simply absent.
type FundamentalsSource interface {
	GetFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error)
}

// BarStore archives daily bars, for example to serve them back as a
// PriceSource.
type BarStore interface {
	Init(ctx context.Context) error
	StoreSeries(ctx context.Context, series *models.PriceSeries) (int, error)
	Health(ctx context.Context) error
}

// ScreenPublisher fans a finished screen out to downstream consumers.
type ScreenPublisher interface {
	PublishScreen(ctx context.Context, screen *models.Screen) error
	Close() error
}

type Metrics interface {
	RecordFetch(source, symbol, outcome string)
	RecordDropped(reason string)
	RecordCacheHit(fn string)
	RecordCacheMiss(fn string)
	RecordLatency(op string, seconds float64)
	RecordLastPrice(symbol string, price float64)
	RecordScore(symbol string, score float64)
}
