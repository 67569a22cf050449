//go:build wireinject
// +build wireinject

package di

import (
	"LoadLedger/pkg/config"
	"LoadLedger/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Logging and metrics
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideHTTPClient,
		ProvideRateLimiter,
		ProvideBytesCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisClient,

		// Repositories (with business logic)
		ProvideReportArchive,
		ProvideRunPublisher,

		// Pipeline
		ProvideIngestor,
		ProvideRunEventBus,
		ProvideReportRunner,

		// Jobs and scheduling
		ProvideReportJob,
		ProvideReportRequestHandler,
		ProvideQueue,
		ProvideScheduler,

		// HTTP handlers
		ProvideReportsHandler,
		ProvideStreamHandler,
		ProvideRoutes,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
