package usecase

import (
	"context"
	"log/slog"
	"time"

	"quantumdaily/internal/ports"
)

// ScheduledRun connects the cron scheduler to the daily pipeline.
type ScheduledRun struct {
	scheduler ports.Scheduler
	daily     *Daily
	logger    *slog.Logger
}

// NewScheduledRun builds the glue between scheduler and pipeline.
func NewScheduledRun(scheduler ports.Scheduler, daily *Daily, logger *slog.Logger) *ScheduledRun {
	return &ScheduledRun{
		scheduler: scheduler,
		daily:     daily,
		logger:    logger,
	}
}

// Start begins firing the daily run on schedule.
func (s *ScheduledRun) Start(ctx context.Context) error {
	return s.scheduler.Start(ctx, func(now time.Time) {
		s.logger.Info("scheduled run starting", "at", now)
		if _, err := s.daily.Run(ctx, now); err != nil {
			s.logger.Error("scheduled run failed", "error", err)
		}
	})
}

// Stop halts the schedule.
func (s *ScheduledRun) Stop(ctx context.Context) error {
	return s.scheduler.Stop(ctx)
}
