package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Runner is one pipeline cycle.
type Runner interface {
	Run(ctx context.Context) error
}

// Scheduler owns the daemon loop: one immediate cycle, then one per interval.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that runs the pipeline at the given interval.
func NewScheduler(runner Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the loop. A failed cycle is logged and the loop continues.
// It returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	s.cycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

func (s *Scheduler) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := s.runner.Run(ctx); err != nil {
		s.logger.Error("cycle failed", "error", err)
		return
	}
	s.logger.Debug("cycle finished", "took", time.Since(start).Round(time.Millisecond))
}
