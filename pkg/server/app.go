package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Halcon/internal/service/ratelimit"
	"Halcon/internal/usecase"
	"Halcon/pkg/cache"
	pkgch "Halcon/pkg/clickhouse"
	"Halcon/pkg/config"
	xhttp "Halcon/pkg/http"
	pkgkafka "Halcon/pkg/kafka"
	applogger "Halcon/pkg/logger"
)

const limiterIdle = 10 * time.Minute

// Components are the wired parts the App runs and closes. Producer,
// ClickHouse and Backfiller are nil when their backends are disabled.
type Components struct {
	HTTP       *xhttp.Server
	Limiter    *ratelimit.Limiter
	Data       *usecase.MarketData
	Screener   *usecase.Screener
	Valuator   *usecase.Valuator
	Simulator  *usecase.Simulator
	Backfiller *usecase.Backfiller
	Cache      cache.Store
	Producer   *pkgkafka.Producer
	ClickHouse *pkgch.Client
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg *config.Config
	l   *applogger.Logger
	c   Components
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, c Components) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, l: l, c: c}
}

func (a *App) Logger() *applogger.Logger       { return a.l }
func (a *App) Data() *usecase.MarketData       { return a.c.Data }
func (a *App) Screener() *usecase.Screener     { return a.c.Screener }
func (a *App) Valuator() *usecase.Valuator     { return a.c.Valuator }
func (a *App) Simulator() *usecase.Simulator   { return a.c.Simulator }
func (a *App) Backfiller() *usecase.Backfiller { return a.c.Backfiller }
func (a *App) Config() *config.Config          { return a.cfg }

// Run starts the HTTP server and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.c.HTTP == nil {
		return errors.New("http server is not configured")
	}
	if err := a.c.HTTP.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("radar started",
		applogger.String("addr", a.c.HTTP.Addr()),
		applogger.String("provider", a.cfg.Provider.Type),
		applogger.Strings("symbols", a.cfg.Screener.Symbols),
	)

	if a.c.Limiter != nil {
		go a.pruneLimiter(ctx)
	}

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) pruneLimiter(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.c.Limiter.Prune(limiterIdle); n > 0 {
				a.l.Debug("rate limiter pruned", applogger.Int("clients", n))
			}
		}
	}
}

// shutdown gracefully stops the HTTP server, then closes the backends.
func (a *App) shutdown() error {
	a.l.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	var errs []error
	if err := a.c.HTTP.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}

	a.l.Info("shutdown complete")
	return errors.Join(errs...)
}

// Close releases the cache, Kafka and ClickHouse connections. Command line
// runs call it directly; the server calls it on shutdown.
func (a *App) Close() error {
	var errs []error
	if a.c.Cache != nil {
		if err := a.c.Cache.Close(); err != nil {
			a.l.Warn("cache close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	if a.c.ClickHouse != nil {
		if err := a.c.ClickHouse.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	// flush aggregated logs while the producer is still open
	a.l.RemoveCollector()
	if a.c.Producer != nil {
		if err := a.c.Producer.Close(); err != nil {
			a.l.Warn("kafka producer close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
