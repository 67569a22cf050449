package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"LoadLedger/internal/domain/repository"
	"LoadLedger/internal/handler/api"
	mid "LoadLedger/internal/middleware"
	"LoadLedger/internal/service/scheduler"
	"LoadLedger/internal/usecase"
	"LoadLedger/pkg/config"
	xhttp "LoadLedger/pkg/http"
	pkgkafka "LoadLedger/pkg/kafka"
	applogger "LoadLedger/pkg/logger"
	"LoadLedger/pkg/queue"
)

const archiveInitTimeout = 10 * time.Second

// Deps carries everything the application lifecycle manages. Optional
// backends (archive, Kafka, queue, scheduler) arrive as nil when
// disabled in config.
type Deps struct {
	Config    *config.Config
	Logger    *applogger.Logger
	Routes    *api.Routes
	Archive   repository.ReportArchive
	Consumer  *pkgkafka.Consumer
	Requests  *usecase.ReportRequestHandler
	Queue     *queue.RedisQueue
	Scheduler *scheduler.Scheduler
	Bus       *mid.RunEventBus
	Publisher repository.RunPublisher
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	routes     *api.Routes
	archive    repository.ReportArchive
	consumer   *pkgkafka.Consumer
	requests   *usecase.ReportRequestHandler
	queue      *queue.RedisQueue
	scheduler  *scheduler.Scheduler
	bus        *mid.RunEventBus
	publisher  repository.RunPublisher
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(deps Deps) *App {
	return &App{
		cfg:       deps.Config,
		logger:    deps.Logger,
		routes:    deps.Routes,
		archive:   deps.Archive,
		consumer:  deps.Consumer,
		requests:  deps.Requests,
		queue:     deps.Queue,
		scheduler: deps.Scheduler,
		bus:       deps.Bus,
		publisher: deps.Publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger

	// Ensure archive schema before anything can write runs.
	if a.archive != nil {
		initCtx, initCancel := context.WithTimeout(ctx, archiveInitTimeout)
		err := a.archive.Init(initCtx)
		initCancel()
		if err != nil {
			l.Error("archive init error", applogger.Error(err))
			return err
		}
		l.Info("run archive ready")
	}

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.routes,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)

	// Start consumer if configured
	if a.consumer != nil && a.requests != nil {
		a.consumer.RegisterHandler(a.requests)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.requests.Topic()))
	}

	// Start queue workers
	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			l.Error("queue start error", applogger.Error(err))
			return err
		}
	}

	// Start scheduled runs
	if a.scheduler != nil {
		if err := a.scheduler.Register(a.cfg.Scheduler.WeeklyCron, a.cfg.Scheduler.SeasonCron); err != nil {
			l.Error("scheduler register error", applogger.Error(err))
			return err
		}
		a.scheduler.Start()
		l.Info("scheduler started",
			applogger.String("weekly", a.cfg.Scheduler.WeeklyCron),
			applogger.String("season", a.cfg.Scheduler.SeasonCron))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger
	l.Info("shutting down...")

	// Stop intake first so no new runs start mid-shutdown.
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.queue != nil {
		if err := a.queue.Stop(ctx); err != nil {
			l.Warn("queue stop error", applogger.Error(err))
		}
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Close fanout and infrastructure clients. The log collector flushes
	// through the producer, so it goes first.
	a.logger.RemoveCollector()
	if a.bus != nil {
		a.bus.Close()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			l.Warn("run publisher close error", applogger.Error(err))
		}
	}
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			l.Warn("archive close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
