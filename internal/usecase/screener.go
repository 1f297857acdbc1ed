package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"Halcon/internal/domain/models"
	drepo "Halcon/internal/domain/repository"
	"Halcon/internal/services/features"
	"Halcon/pkg/cache"
	applogger "Halcon/pkg/logger"
)

type ScreenerConfig struct {
	Symbols     []string
	Features    features.Params
	Concurrency int
	Cooldown    time.Duration
}

// Screener ranks a symbol list by composite score. Instruments that fail
// are dropped with a reason; the screen only fails when all of them do.
type Screener struct {
	data    *MarketData
	memo    *cache.Memo
	pub     drepo.ScreenPublisher
	metrics drepo.Metrics
	cfg     ScreenerConfig
	l       *applogger.Logger
}

// NewScreener creates a screener. pub may be nil.
func NewScreener(
	data *MarketData,
	memo *cache.Memo,
	pub drepo.ScreenPublisher,
	metrics drepo.Metrics,
	cfg ScreenerConfig,
	l *applogger.Logger,
) *Screener {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Screener{data: data, memo: memo, pub: pub, metrics: metrics, cfg: cfg, l: l}
}

// Screen runs the feature extractor over symbols, or the configured list
// when symbols is empty. Repeated calls for the same set inside the TTL
// return the memoized screen.
func (s *Screener) Screen(ctx context.Context, symbols []string) (*models.Screen, error) {
	symbols = normalizeSymbols(symbols)
	if len(symbols) == 0 {
		symbols = normalizeSymbols(s.cfg.Symbols)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols to screen", models.ErrInvalidModelInput)
	}

	start := time.Now()
	screen, hit, err := cache.Do(ctx, s.memo, "screen", cache.SetKey(symbols), func(ctx context.Context) (models.Screen, error) {
		return s.compute(ctx, symbols)
	})
	s.metrics.RecordLatency("screen", time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	screen.CacheHit = hit
	return &screen, nil
}

type outcome struct {
	fv     models.FeatureVector
	err    error
	symbol string
}

func (s *Screener) compute(ctx context.Context, symbols []string) (models.Screen, error) {
	outcomes := make([]outcome, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			outcomes[i] = outcome{symbol: sym}
			series, _, err := s.data.Series(gctx, sym)
			if err != nil {
				outcomes[i].err = err
				return nil
			}
			outcomes[i].fv, outcomes[i].err = features.Extract(series, s.cfg.Features)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return models.Screen{}, err
	}

	screen := models.Screen{
		ID:          uuid.New(),
		Symbols:     symbols,
		Results:     make([]models.FeatureVector, 0, len(symbols)),
		GeneratedAt: time.Now().UTC(),
	}
	for _, o := range outcomes {
		if o.err != nil {
			if screen.Dropped == nil {
				screen.Dropped = make(map[string]string)
			}
			screen.Dropped[o.symbol] = o.err.Error()
			s.metrics.RecordDropped(dropReason(o.err))
			s.l.Warn("instrument dropped from screen",
				applogger.String("symbol", o.symbol),
				applogger.String("reason", dropReason(o.err)),
				applogger.Error(o.err),
			)
			continue
		}
		s.metrics.RecordScore(o.symbol, o.fv.Score)
		screen.Results = append(screen.Results, o.fv)
	}

	if len(screen.Results) == 0 {
		return models.Screen{}, &models.UnavailableError{
			RetryAfter: s.cfg.Cooldown,
			Err:        fmt.Errorf("%w: no data for any of %s", models.ErrUpstreamUnavailable, strings.Join(symbols, ", ")),
		}
	}
	RankByScore(screen.Results)

	if s.pub != nil {
		if err := s.pub.PublishScreen(ctx, &screen); err != nil {
			s.l.Warn("publish screen failed", applogger.String("screen_id", screen.ID.String()), applogger.Error(err))
		}
	}
	s.l.Info("screen computed",
		applogger.String("screen_id", screen.ID.String()),
		applogger.Int("ranked", len(screen.Results)),
		applogger.Int("dropped", len(screen.Dropped)),
	)
	return screen, nil
}

// RankByScore sorts by composite score descending; ties keep symbol order.
func RankByScore(fvs []models.FeatureVector) {
	sort.SliceStable(fvs, func(i, j int) bool {
		if fvs[i].Score != fvs[j].Score {
			return fvs[i].Score > fvs[j].Score
		}
		return fvs[i].Symbol < fvs[j].Symbol
	})
}

// normalizeSymbols upper-cases, trims and de-duplicates, keeping first-seen order.
func normalizeSymbols(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
