package scheduler

import (
	"context"
	"fmt"

	xlogger "LoadLedger/pkg/logger"

	"github.com/robfig/cron/v3"
)

// RunFunc triggers one report run for a range ("weekly", "season").
type RunFunc func(ctx context.Context, reportType string)

// Scheduler fires report runs on cron expressions.
type Scheduler struct {
	cron   *cron.Cron
	logger *xlogger.Logger
	run    RunFunc
}

func New(logger *xlogger.Logger, run RunFunc) *Scheduler {
	return &Scheduler{cron: cron.New(), logger: logger, run: run}
}

// Register wires the weekly and season schedules. Expressions use the
// standard 5-field cron format.
func (s *Scheduler) Register(weeklyCron, seasonCron string) error {
	if _, err := s.cron.AddFunc(weeklyCron, func() { s.trigger("weekly") }); err != nil {
		return fmt.Errorf("register weekly run: %w", err)
	}
	if _, err := s.cron.AddFunc(seasonCron, func() { s.trigger("season") }); err != nil {
		return fmt.Errorf("register season run: %w", err)
	}
	return nil
}

func (s *Scheduler) trigger(reportType string) {
	s.logger.Info("scheduled run triggered", xlogger.String("range", reportType))
	s.run(context.Background(), reportType)
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}
