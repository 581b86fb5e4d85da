package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"quantumdaily/internal/ports"
)

// CronScheduler fires the daily job at a fixed local hour.
type CronScheduler struct {
	hour     int
	location *time.Location
	logger   *slog.Logger
	cron     *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// New builds a scheduler that fires every day at the given hour in loc.
func New(hour int, loc *time.Location, logger *slog.Logger) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &CronScheduler{
		hour:     hour,
		location: loc,
		logger:   logger,
	}
}

// Start registers the daily entry and begins the cron loop. The job runs
// until ctx is cancelled or Stop is called.
func (s *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if s.cron != nil {
		return fmt.Errorf("scheduler already started")
	}
	if s.hour < 0 || s.hour > 23 {
		return fmt.Errorf("invalid send hour %d", s.hour)
	}

	s.cron = cron.New(cron.WithLocation(s.location))

	spec := fmt.Sprintf("0 %d * * *", s.hour)
	_, err := s.cron.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		job(time.Now().In(s.location))
	})
	if err != nil {
		return fmt.Errorf("register cron entry %q: %w", spec, err)
	}

	s.logger.Info("scheduler started", "spec", spec, "timezone", s.location.String())
	s.cron.Start()

	go func() {
		<-ctx.Done()
		s.cron.Stop()
	}()
	return nil
}

// Stop halts the cron loop, waiting for a running job to finish or the
// context to expire.
func (s *CronScheduler) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}

	done := s.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
