package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"Halcon/internal/domain/models"
	domrepo "Halcon/internal/domain/repository"
	pkgch "Halcon/pkg/clickhouse"
	applogger "Halcon/pkg/logger"
	"Halcon/pkg/util"
)

// CHBarStore archives daily bars in ClickHouse and serves them back as a
// PriceSource.
type CHBarStore struct {
	client *pkgch.Client
	db     *sql.DB
	table  string
	l      *applogger.Logger
}

var (
	_ domrepo.PriceSource = (*CHBarStore)(nil)
	_ domrepo.BarStore    = (*CHBarStore)(nil)
)

// NewCHBarStore uses table inside the client's database.
func NewCHBarStore(ch *pkgch.Client, table string) *CHBarStore {
	return &CHBarStore{client: ch, db: ch.DB(), table: qualifiedTable(ch.Database(), table), l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (s *CHBarStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

func qualifiedTable(database, table string) string {
	if database == "" || strings.Contains(table, ".") {
		return table
	}
	return database + "." + table
}

func (s *CHBarStore) Init(ctx context.Context) error {
	db, table, _ := strings.Cut(s.table, ".")
	if table == "" {
		db, table = s.client.Database(), db
	}
	return s.client.InitSchema(ctx, pkgch.DailyBarsSchema(db, table))
}

func (s *CHBarStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

// latestBarsQuery selects newest first; callers reverse to chronological order.
func latestBarsQuery(table string) string {
	return fmt.Sprintf(`
        SELECT date, open, high, low, close, volume
        FROM %s FINAL
        WHERE symbol = ? AND interval = ? AND date >= ?
        ORDER BY date DESC`, table)
}

// GetSeries reads the bars of the last lookbackDays calendar days.
func (s *CHBarStore) GetSeries(ctx context.Context, symbol string, lookbackDays int, interval models.Interval) (*models.PriceSeries, error) {
	start := time.Now()
	since, _ := util.LookbackWindow(start, lookbackDays, string(interval))

	rows, err := s.db.QueryContext(ctx, latestBarsQuery(s.table), symbol, string(interval), since)
	if err != nil {
		s.l.Error("clickhouse latest_bars query error",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Int("lookback_days", lookbackDays),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("%w: clickhouse %s: %v", models.ErrUpstreamUnavailable, symbol, err)
	}
	defer rows.Close()

	bars := make([]models.Bar, 0, lookbackDays)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			s.l.Error("clickhouse latest_bars scan error",
				applogger.String("table", s.table),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
			return nil, fmt.Errorf("%w: scan bar: %v", models.ErrUpstreamUnavailable, err)
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", models.ErrUpstreamUnavailable, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrEmptySeries, symbol)
	}
	reverseBars(bars)

	s.l.Debug("clickhouse latest_bars ok",
		applogger.String("table", s.table),
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(bars)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return &models.PriceSeries{Symbol: symbol, Interval: interval, Bars: bars, FetchedAt: start.UTC()}, nil
}

func reverseBars(bars []models.Bar) {
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
}

// insertBarsQuery builds a multi-row insert for n bars.
func insertBarsQuery(table string, n int) string {
	values := make([]string, n)
	for i := range values {
		values[i] = "(?, ?, ?, ?, ?, ?, ?, ?, ?)"
	}
	return fmt.Sprintf("INSERT INTO %s (date, symbol, interval, open, high, low, close, volume, source) VALUES %s",
		table, strings.Join(values, ","))
}

// StoreSeries inserts the series in chunks and reports how many rows were written.
func (s *CHBarStore) StoreSeries(ctx context.Context, series *models.PriceSeries) (int, error) {
	if series == nil || series.Len() == 0 {
		return 0, nil
	}
	const chunkSize = 2000
	written := 0
	for start := 0; start < len(series.Bars); start += chunkSize {
		end := min(start+chunkSize, len(series.Bars))
		chunk := series.Bars[start:end]

		args := make([]interface{}, 0, len(chunk)*9)
		for _, b := range chunk {
			args = append(args, b.Date.UTC(), series.Symbol, string(series.Interval), b.Open, b.High, b.Low, b.Close, b.Volume, "yahoo")
		}
		if _, err := s.db.ExecContext(ctx, insertBarsQuery(s.table, len(chunk)), args...); err != nil {
			s.l.Error("clickhouse store_bars error",
				applogger.String("table", s.table),
				applogger.String("symbol", series.Symbol),
				applogger.Int("written", written),
				applogger.Error(err),
			)
			return written, fmt.Errorf("store bars %s: %w", series.Symbol, err)
		}
		written += len(chunk)
	}
	return written, nil
}
