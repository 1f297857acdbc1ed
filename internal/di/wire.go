//go:build wireinject
// +build wireinject

package di

import (
	"Halcon/pkg/config"
	"Halcon/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideMetrics,
		ProvideCacheStore,
		ProvideMemo,
		ProvideYahooClient,
		ProvideClickHouseClient,

		// Repositories
		ProvideBarStore,
		ProvidePriceSource,
		ProvideFundamentalsSource,
		ProvideScreenPublisher,

		// Use cases
		ProvideMarketData,
		ProvideScreener,
		ProvideValuator,
		ProvideSimulator,
		ProvideBackfiller,

		// HTTP
		ProvideRadarHandler,
		ProvideRateLimiter,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
