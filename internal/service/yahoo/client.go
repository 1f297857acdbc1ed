package yahoo

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"golang.org/x/time/rate"

	"Halcon/internal/domain/models"
	domrepo "Halcon/internal/domain/repository"
	applogger "Halcon/pkg/logger"
	"Halcon/pkg/retry"
	"Halcon/pkg/util"
)

type barsFunc func(ctx context.Context, symbol string, start, end time.Time, interval models.Interval) ([]models.Bar, error)

type equityFunc func(symbol string) (*finance.Equity, error)

// Client reads daily bars and company figures from Yahoo Finance. Every
// upstream call waits on a shared token bucket and runs under the retry
// policy; exhausted retries surface as models.ErrUpstreamUnavailable.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	policy  retry.Policy
	l       *applogger.Logger
	now     func() time.Time

	bars   barsFunc
	equity equityFunc
}

var (
	_ domrepo.PriceSource        = (*Client)(nil)
	_ domrepo.FundamentalsSource = (*Client)(nil)
)

func NewClient(opts ...ClientOption) *Client {
	cfg := &ClientConfig{
		BaseURL:           "https://query2.finance.yahoo.com",
		Timeout:           30 * time.Second,
		Retry:             retry.DefaultPolicy(),
		RequestsPerSecond: 2,
		Burst:             2,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = applogger.Nop()
	}

	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; halcon/1.0)")

	return &Client{
		http:    client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		policy:  cfg.Retry,
		l:       cfg.Logger,
		now:     time.Now,
		bars:    chartBars,
		equity:  equity.Get,
	}
}

// call waits for a rate limiter token before every attempt.
func (c *Client) call(ctx context.Context, fn func(ctx context.Context) error) error {
	return c.policy.Do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return retry.Permanent(err)
		}
		return fn(ctx)
	})
}

// GetSeries fetches the bars of the last lookbackDays calendar days.
func (c *Client) GetSeries(ctx context.Context, symbol string, lookbackDays int, interval models.Interval) (*models.PriceSeries, error) {
	if !interval.Valid() {
		return nil, fmt.Errorf("unsupported interval %q", interval)
	}
	start, end := util.LookbackWindow(c.now(), lookbackDays, string(interval))

	var bars []models.Bar
	began := time.Now()
	err := c.call(ctx, func(ctx context.Context) error {
		b, err := c.bars(ctx, symbol, start, end, interval)
		if err != nil {
			return err
		}
		if len(b) == 0 {
			return models.ErrEmptySeries
		}
		bars = b
		return nil
	})
	if err != nil {
		c.l.Warn("yahoo chart fetch failed",
			applogger.String("symbol", symbol),
			applogger.Int("lookback_days", lookbackDays),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("%w: chart %s: %w", models.ErrUpstreamUnavailable, symbol, err)
	}

	c.l.Debug("yahoo chart fetched",
		applogger.String("symbol", symbol),
		applogger.Int("bars", len(bars)),
		applogger.Duration("duration_ms", time.Since(began)),
	)
	return &models.PriceSeries{Symbol: symbol, Interval: interval, Bars: bars, FetchedAt: end}, nil
}

func chartInterval(iv models.Interval) datetime.Interval {
	if iv == models.Interval1wk {
		return datetime.Interval("1wk")
	}
	return datetime.OneDay
}

func chartBars(_ context.Context, symbol string, start, end time.Time, interval models.Interval) ([]models.Bar, error) {
	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: chartInterval(interval),
	})

	bars := make([]models.Bar, 0, 64)
	for iter.Next() {
		if b, ok := convertBar(iter.Bar()); ok {
			bars = append(bars, b)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return bars, nil
}

// convertBar drops bars Yahoo reports without a close (holidays, halts).
func convertBar(b *finance.ChartBar) (models.Bar, bool) {
	if b == nil || !b.Close.IsPositive() {
		return models.Bar{}, false
	}
	return models.Bar{
		Date:   time.Unix(int64(b.Timestamp), 0).UTC(),
		Open:   b.Open.InexactFloat64(),
		High:   b.High.InexactFloat64(),
		Low:    b.Low.InexactFloat64(),
		Close:  b.Close.InexactFloat64(),
		Volume: float64(b.Volume),
	}, true
}

// GetFundamentals combines the equity quote with the quoteSummary
// statements. A failing quoteSummary leaves those figures absent.
func (c *Client) GetFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	f := models.NewFundamentals(symbol)
	f.FetchedAt = c.now().UTC()

	var eq *finance.Equity
	err := c.call(ctx, func(context.Context) error {
		e, err := c.equity(symbol)
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("no quote for %s", symbol)
		}
		eq = e
		return nil
	})
	if err != nil {
		c.l.Warn("yahoo equity fetch failed", applogger.String("symbol", symbol), applogger.Error(err))
		return nil, fmt.Errorf("%w: equity %s: %w", models.ErrUpstreamUnavailable, symbol, err)
	}
	applyEquity(f, eq)

	var summary quoteSummaryResult
	err = c.call(ctx, func(ctx context.Context) error {
		s, err := c.quoteSummary(ctx, symbol)
		if err != nil {
			return err
		}
		summary = s
		return nil
	})
	if err != nil {
		c.l.Warn("yahoo quote summary unavailable, statement figures left empty",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return f, nil
	}
	summary.apply(f)
	return f, nil
}

func applyEquity(f *models.Fundamentals, e *finance.Equity) {
	f.Set(models.FigPrice, e.RegularMarketPrice)
	f.Set(models.FigEPS, e.EpsTrailingTwelveMonths)
	f.Set(models.FigDividendRate, e.TrailingAnnualDividendRate)
	f.Set(models.FigSharesOutstanding, float64(e.SharesOutstanding))
	f.Set(models.FigMarketCap, float64(e.MarketCap))
}
