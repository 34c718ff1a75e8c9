package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"newscurator/internal/apperr"
)

// DailyRunner runs the full content pipeline once per interval.
type DailyRunner interface {
	RunDaily(ctx context.Context) error
}

// Scheduler ticks at a fixed interval and kicks off the daily pipeline run.
// A run already in progress (for example one triggered by an admin) makes the
// tick a no-op rather than an error.
type Scheduler struct {
	runner   DailyRunner
	interval time.Duration
	logger   *slog.Logger
}

func New(runner DailyRunner, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled. The first run happens after one full
// interval, not at startup, so a crash-looping process does not hammer the
// feeds and the LLM.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	start := time.Now()
	err := s.runner.RunDaily(ctx)

	var conflict *apperr.ConflictError
	switch {
	case errors.As(err, &conflict):
		s.logger.Info("daily run skipped, another operation is active")
	case errors.Is(err, context.Canceled):
		// Shutdown mid-run, the outer loop exits on ctx.Done.
	case err != nil:
		s.logger.Error("daily run failed", "error", err, "duration", time.Since(start))
	default:
		s.logger.Info("daily run finished", "duration", time.Since(start))
	}
}
