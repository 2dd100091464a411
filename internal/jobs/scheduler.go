package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler submits the periodic random-task job at a fixed interval.
type Scheduler struct {
	interval  time.Duration
	submitter Submitter
	generator *TaskGenerator
	now       func() time.Time
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a Scheduler. It does nothing until Start.
func NewScheduler(interval time.Duration, submitter Submitter, generator *TaskGenerator, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		interval:  interval,
		submitter: submitter,
		generator: generator,
		now:       time.Now,
		logger:    logger.With("component", "job_scheduler"),
	}
}

// Start begins ticking in the background. The first job fires one interval
// after Start.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}()

	s.logger.Info("periodic job scheduler started", "interval", s.interval.String())
}

// Stop halts the scheduler and waits for an in-progress tick.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Tick submits one periodic job stamped with the current time.
func (s *Scheduler) Tick(ctx context.Context) {
	job, err := s.generator.PeriodicJob(s.now())
	if err != nil {
		s.logger.Error("failed to build periodic job", "error", err)
		return
	}

	if err := s.submitter.Submit(ctx, job); err != nil {
		s.logger.Error("failed to submit periodic job", "job_id", job.ID(), "error", err)
		return
	}
	s.logger.Debug("periodic job submitted", "job_id", job.ID())
}
