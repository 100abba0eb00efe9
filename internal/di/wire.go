//go:build wireinject
// +build wireinject

package di

import (
	"CoinSight/pkg/config"
	"CoinSight/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideResultStore,
		ProvideResultPublisher,

		// Data providers
		ProvideQuoteStream,
		ProvideMarketData,
		ProvideOnchainData,

		// Use cases
		ProvideAnalyzer,

		// HTTP surface
		ProvideCache,
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
