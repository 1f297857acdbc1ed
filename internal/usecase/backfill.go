package usecase

import (
	"context"
	"fmt"
	"time"

	"Halcon/internal/domain/models"
	drepo "Halcon/internal/domain/repository"
	applogger "Halcon/pkg/logger"
)

// BackfillResult is the per-symbol outcome of an archive run.
type BackfillResult struct {
	Symbol string `json:"symbol"`
	Rows   int    `json:"rows"`
	Error  string `json:"error,omitempty"`
}

// Backfiller copies daily bars from a live source into the archive that
// backs the clickhouse provider.
type Backfiller struct {
	source  drepo.PriceSource
	store   drepo.BarStore
	metrics drepo.Metrics
	l       *applogger.Logger
}

func NewBackfiller(source drepo.PriceSource, store drepo.BarStore, metrics drepo.Metrics, l *applogger.Logger) *Backfiller {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &Backfiller{source: source, store: store, metrics: metrics, l: l}
}

// Run archives lookbackDays of bars per symbol. Failures are reported per
// symbol; the error is non-nil only when the archive itself is unusable.
func (b *Backfiller) Run(ctx context.Context, symbols []string, lookbackDays int, interval models.Interval) ([]BackfillResult, error) {
	if err := b.store.Init(ctx); err != nil {
		return nil, fmt.Errorf("init archive: %w", err)
	}

	out := make([]BackfillResult, 0, len(symbols))
	for _, sym := range normalizeSymbols(symbols) {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		start := time.Now()
		res := BackfillResult{Symbol: sym}

		series, err := b.source.GetSeries(ctx, sym, lookbackDays, interval)
		if err == nil {
			res.Rows, err = b.store.StoreSeries(ctx, series)
		}
		if err != nil {
			res.Error = err.Error()
			b.metrics.RecordDropped(dropReason(err))
			b.l.Warn("backfill failed", applogger.String("symbol", sym), applogger.Error(err))
		} else {
			b.l.Info("backfill stored",
				applogger.String("symbol", sym),
				applogger.Int("rows", res.Rows),
				applogger.Duration("duration_ms", time.Since(start)),
			)
		}
		b.metrics.RecordLatency("backfill", time.Since(start).Seconds())
		out = append(out, res)
	}
	return out, nil
}
