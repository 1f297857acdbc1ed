package di

import (
	"context"
	"fmt"
	"time"

	"Halcon/internal/domain/repository"
	"Halcon/internal/handler/api"
	internalrepo "Halcon/internal/repository"
	svcmetrics "Halcon/internal/service/metrics"
	"Halcon/internal/service/ratelimit"
	"Halcon/internal/service/yahoo"
	"Halcon/internal/usecase"
	"Halcon/pkg/cache"
	pkgch "Halcon/pkg/clickhouse"
	"Halcon/pkg/config"
	xhttp "Halcon/pkg/http"
	pkgkafka "Halcon/pkg/kafka"
	applogger "Halcon/pkg/logger"
	"Halcon/pkg/metrics"
	"Halcon/pkg/server"
)

// ProvideLogger creates the application logger. With Kafka enabled,
// aggregated warn and error entries are shipped to the log topic; the
// collector is attached before any component logger is derived.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if producer != nil && cfg.Kafka.LogTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogTopic,
			Publisher:      producer,
		})
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideCacheStore builds the memo backend: in-process memory, fronting
// Redis when it is enabled.
func ProvideCacheStore(cfg *config.Config, l *applogger.Logger) (cache.Store, error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MaxSize)), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("redis cache connected", applogger.String("host", cfg.Cache.Redis.Host))
	return cache.NewLayeredCache(rc, cache.WithLayeredMemory(cfg.Cache.MaxSize, time.Minute)), nil
}

func ProvideMemo(cfg *config.Config, store cache.Store, rec *metrics.Recorder) *cache.Memo {
	return cache.NewMemo(store,
		cache.WithMemoTTL(cfg.Cache.TTL),
		cache.WithMemoObserver(metrics.CacheObserver{R: rec}),
	)
}

// ProvideYahooClient creates the live market data client.
func ProvideYahooClient(cfg *config.Config, l *applogger.Logger) *yahoo.Client {
	p := cfg.Provider
	return yahoo.NewClient(
		yahoo.WithBaseURL(p.QuoteSummaryURL),
		yahoo.WithTimeout(p.Timeout),
		yahoo.WithRetry(p.RetryCount, p.RetryDelay),
		yahoo.WithRateLimit(p.RequestsPerSecond, p.Burst),
		yahoo.WithLogger(l.With(applogger.String("component", "yahoo"))),
	)
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when no host
// is configured.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.ClickHouse.Host == "" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideBarStore wraps the ClickHouse client as the bar archive. Nil when
// ClickHouse is not configured.
func ProvideBarStore(ch *pkgch.Client, cfg *config.Config, l *applogger.Logger) (*internalrepo.CHBarStore, error) {
	if ch == nil {
		return nil, nil
	}
	store := internalrepo.NewCHBarStore(ch, cfg.ClickHouse.Table)
	store.SetLogger(l.With(applogger.String("component", "clickhouse")))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvidePriceSource selects the series provider named by provider.type.
func ProvidePriceSource(cfg *config.Config, yc *yahoo.Client, bars *internalrepo.CHBarStore) (repository.PriceSource, error) {
	switch cfg.Provider.Type {
	case "clickhouse":
		if bars == nil {
			return nil, fmt.Errorf("provider clickhouse selected but clickhouse is not configured")
		}
		return bars, nil
	default:
		return yc, nil
	}
}

func ProvideFundamentalsSource(yc *yahoo.Client) repository.FundamentalsSource {
	return yc
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideScreenPublisher publishes screens to Kafka. Nil when Kafka is disabled.
func ProvideScreenPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.ScreenPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaScreenPublisher(producer, cfg.Kafka.Topic)
}

func ProvideMarketData(
	prices repository.PriceSource,
	funds repository.FundamentalsSource,
	memo *cache.Memo,
	rec *metrics.Recorder,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.MarketData {
	return usecase.NewMarketData(prices, funds, memo, rec, usecase.MarketDataConfig{
		Source:       cfg.Provider.Type,
		LookbackDays: cfg.Provider.LookbackDays,
		Interval:     cfg.Provider.Interval,
	}, l)
}

func ProvideScreener(
	data *usecase.MarketData,
	memo *cache.Memo,
	pub repository.ScreenPublisher,
	rec *metrics.Recorder,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.Screener {
	return usecase.NewScreener(data, memo, pub, rec, usecase.ScreenerConfig{
		Symbols:     cfg.Screener.Symbols,
		Features:    cfg.Screener.Features,
		Concurrency: cfg.Provider.Concurrency,
		Cooldown:    cfg.Screener.Cooldown,
	}, l)
}

func ProvideValuator(data *usecase.MarketData, rec *metrics.Recorder, cfg *config.Config, l *applogger.Logger) *usecase.Valuator {
	return usecase.NewValuator(data, cfg.Valuation, rec, l)
}

func ProvideSimulator(data *usecase.MarketData, rec *metrics.Recorder, cfg *config.Config, l *applogger.Logger) *usecase.Simulator {
	return usecase.NewSimulator(data, usecase.SimulatorConfig{
		Features: cfg.Screener.Features,
		Paths:    cfg.Simulation.Paths,
		Horizon:  cfg.Simulation.Horizon,
		Seed:     cfg.Simulation.Seed,
	}, rec, l)
}

// ProvideBackfiller archives live bars into ClickHouse. Nil when ClickHouse
// is not configured.
func ProvideBackfiller(yc *yahoo.Client, bars *internalrepo.CHBarStore, rec *metrics.Recorder, l *applogger.Logger) *usecase.Backfiller {
	if bars == nil {
		return nil
	}
	return usecase.NewBackfiller(yc, bars, rec, l)
}

func ProvideRadarHandler(
	l *applogger.Logger,
	data *usecase.MarketData,
	screener *usecase.Screener,
	valuator *usecase.Valuator,
	simulator *usecase.Simulator,
	cfg *config.Config,
) *api.RadarHandler {
	return api.NewRadarHandler(l, data, screener, valuator, simulator, cfg.Screener.Cooldown)
}

func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideHTTPServer builds the Echo server with the per-client rate limit
// in front of the radar routes.
func ProvideHTTPServer(cfg *config.Config, h *api.RadarHandler, limiter *ratelimit.Limiter, l *applogger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		svcmetrics.Register()
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(h,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithCORS(cfg.Server.CORSOrigins...),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(l.With(applogger.String("component", "http"))),
		xhttp.WithMiddleware(ratelimit.Middleware(limiter, cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillPerSec)),
	)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	limiter *ratelimit.Limiter,
	data *usecase.MarketData,
	screener *usecase.Screener,
	valuator *usecase.Valuator,
	simulator *usecase.Simulator,
	backfiller *usecase.Backfiller,
	store cache.Store,
	producer *pkgkafka.Producer,
	ch *pkgch.Client,
) *server.App {
	return server.New(cfg, l, server.Components{
		HTTP:       httpServer,
		Limiter:    limiter,
		Data:       data,
		Screener:   screener,
		Valuator:   valuator,
		Simulator:  simulator,
		Backfiller: backfiller,
		Cache:      store,
		Producer:   producer,
		ClickHouse: ch,
	})
}
