package di

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"LoadLedger/internal/domain/repository"
	"LoadLedger/internal/handler/api"
	mid "LoadLedger/internal/middleware"
	internalrepo "LoadLedger/internal/repository"
	icache "LoadLedger/internal/service/cache"
	"LoadLedger/internal/service/intervals"
	"LoadLedger/internal/service/ratelimit"
	"LoadLedger/internal/service/scheduler"
	"LoadLedger/internal/services/analytics"
	"LoadLedger/internal/usecase"
	pkgch "LoadLedger/pkg/clickhouse"
	"LoadLedger/pkg/config"
	xhttp "LoadLedger/pkg/http"
	pkgkafka "LoadLedger/pkg/kafka"
	applogger "LoadLedger/pkg/logger"
	pkgmetrics "LoadLedger/pkg/metrics"
	"LoadLedger/pkg/queue"
	"LoadLedger/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return pkgmetrics.New()
}

// ProvideHTTPClient creates the outbound HTTP client used for provider
// fetches.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(cfg.Provider.FetchTimeout))
}

// ProvideRateLimiter creates the shared token-bucket limiter.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideBytesCache picks the dataset cache backend: Redis when enabled,
// otherwise an in-process TTL cache.
func ProvideBytesCache(cfg *config.Config) icache.BytesCache {
	if cfg.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideIngestor assembles the dataset acquisition chain: the live
// provider client behind a write-through cache, plus a cache-only
// fallback source.
func ProvideIngestor(
	cfg *config.Config,
	logger *applogger.Logger,
	httpc *xhttp.Client,
	limiter *ratelimit.Limiter,
	store icache.BytesCache,
	m repository.Metrics,
) *usecase.DatasetIngestor {
	provider := intervals.New(intervals.Config{
		BaseURL:    cfg.Provider.BaseURL,
		APIKey:     cfg.Provider.APIKey,
		AthleteID:  cfg.Provider.AthleteID,
		Timezone:   cfg.Provider.Timezone,
		RatePerSec: cfg.Provider.RatePerSec,
		RateBurst:  cfg.Provider.RateBurst,
	}, httpc, limiter, logger)

	apiSource := icache.NewWriteThroughSource(provider, store, cfg.Provider.CacheTTL, cfg.Provider.AthleteID, m, logger)
	cacheSource := icache.NewSource(store, cfg.Provider.AthleteID, m)

	return usecase.NewDatasetIngestor(apiSource, cacheSource, m, logger, cfg.Provider.RetryExtra, cfg.Pipeline.PlannedEvents)
}

// ProvideClickHouseClient creates a ClickHouse client when the archive
// backend is enabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideReportArchive creates the ClickHouse run archive. Schema setup
// happens in App startup via Init.
func ProvideReportArchive(ch *pkgch.Client, logger *applogger.Logger) repository.ReportArchive {
	if ch == nil {
		return nil
	}
	archive := internalrepo.NewCHReportArchive(ch)
	archive.SetLogger(logger)
	return archive
}

// ProvideKafkaProducer creates a Kafka producer when Kafka is enabled.
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

// ProvideRunPublisher creates the completed-run publisher.
func ProvideRunPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.RunPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaRunPublisher(producer, cfg.Kafka.CompletedTopic)
}

// ProvideKafkaConsumer creates the report-request consumer.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideRedisClient creates the Redis connection used by the work queue.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideRunEventBus creates the stage-event fanout for stream clients.
func ProvideRunEventBus(logger *applogger.Logger) *mid.RunEventBus {
	return mid.NewRunEventBus(logger)
}

// ProvideReportRunner assembles the pipeline stages around the runner.
func ProvideReportRunner(
	ing *usecase.DatasetIngestor,
	archive repository.ReportArchive,
	publisher repository.RunPublisher,
	m repository.Metrics,
	bus *mid.RunEventBus,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.ReportRunner {
	stages := usecase.PipelineStages{
		Ingestor:   ing,
		Integrity:  analytics.NewIntegrityController(),
		Metrics:    analytics.NewMetricsEngine(),
		Reconciler: analytics.NewTotalsReconciler(),
		Phases:     analytics.NewPhaseDetector(),
		Forecast:   analytics.NewForecastProjector(),
		Gate:       analytics.NewValidationGate(),
	}
	return usecase.NewReportRunner(stages, archive, publisher, m, bus, logger, usecase.RunnerConfig{
		RunTimeout:      cfg.Pipeline.RunTimeout,
		ForecastDays:    cfg.Pipeline.ForecastDays,
		ArchiveRuns:     cfg.Pipeline.ArchiveRuns,
		PublishComplete: cfg.Pipeline.PublishComplete,
	})
}

// ProvideReportJob creates the queued-run job.
func ProvideReportJob(runner *usecase.ReportRunner, logger *applogger.Logger) *usecase.ReportJob {
	return usecase.NewReportJob(runner, logger)
}

// ProvideReportRequestHandler registers the handler for the request topic.
func ProvideReportRequestHandler(cfg *config.Config, runner *usecase.ReportRunner, logger *applogger.Logger) *usecase.ReportRequestHandler {
	if !cfg.Kafka.Enabled {
		return nil
	}
	return usecase.NewReportRequestHandler(cfg.Kafka.RequestTopic, runner, logger)
}

// ProvideQueue creates the Redis work queue with the report job wired in.
func ProvideQueue(cfg *config.Config, logger *applogger.Logger, rds *redis.Client, job *usecase.ReportJob) *queue.RedisQueue {
	if !cfg.Queue.Enabled || rds == nil {
		return nil
	}
	q := queue.NewRedisQueue(logger, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		QueueSize:  cfg.Queue.QueueSize,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, rds, queue.ModeProducerConsumer)
	q.RegisterJobs([]queue.Job{job})
	return q
}

// ProvideScheduler creates the cron scheduler. Scheduled runs go through
// the same runner as API runs; the runner applies its own deadline.
func ProvideScheduler(cfg *config.Config, runner *usecase.ReportRunner, logger *applogger.Logger) *scheduler.Scheduler {
	if !cfg.Scheduler.Enabled {
		return nil
	}
	return scheduler.New(logger, func(ctx context.Context, reportType string) {
		if _, _, err := runner.Run(ctx, reportType, "json"); err != nil {
			logger.Error("scheduled run failed",
				applogger.String("range", reportType),
				applogger.Error(err))
		}
	})
}

// ProvideReportsHandler creates the reports HTTP handler.
func ProvideReportsHandler(logger *applogger.Logger, runner *usecase.ReportRunner, archive repository.ReportArchive, q *queue.RedisQueue) *api.ReportsEchoHandler {
	var jobs api.JobEnqueuer
	if q != nil {
		jobs = q
	}
	return api.NewReportsEchoHandler(logger, runner, archive, jobs)
}

// ProvideStreamHandler creates the run-event WebSocket handler.
func ProvideStreamHandler(logger *applogger.Logger, bus *mid.RunEventBus) *api.RunStreamHandler {
	return api.NewRunStreamHandler(logger, bus)
}

// ProvideRoutes bundles the HTTP handlers for route registration.
func ProvideRoutes(reports *api.ReportsEchoHandler, stream *api.RunStreamHandler) *api.Routes {
	return api.NewRoutes(reports, stream)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	m repository.Metrics,
	routes *api.Routes,
	archive repository.ReportArchive,
	producer *pkgkafka.Producer,
	consumer *pkgkafka.Consumer,
	requests *usecase.ReportRequestHandler,
	q *queue.RedisQueue,
	sched *scheduler.Scheduler,
	bus *mid.RunEventBus,
	publisher repository.RunPublisher,
) *server.App {
	// Attach consume-side instrumentation to the request consumer.
	if consumer != nil {
		consumer.WithConsumerHook(mid.NewConsumeMetricsHook(m))
	}
	// Ship aggregated warn and error logs when a log topic is configured.
	if producer != nil && cfg.Kafka.LogTopic != "" {
		logger.AddCollector(&applogger.CollectionConfig{
			Topic:     cfg.Kafka.LogTopic,
			Service:   "loadledger",
			Publisher: internalrepo.NewKafkaLogPublisher(producer),
		})
	}
	return server.New(server.Deps{
		Config:    cfg,
		Logger:    logger,
		Routes:    routes,
		Archive:   archive,
		Consumer:  consumer,
		Requests:  requests,
		Queue:     q,
		Scheduler: sched,
		Bus:       bus,
		Publisher: publisher,
	})
}
