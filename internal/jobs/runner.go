package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// RunnerConfig holds configuration for the job runner.
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs.
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory job queue.
	QueueSize int

	// StuckJobAge defines how long a job can stay in processing state
	// before it is considered stuck and queued again.
	StuckJobAge time.Duration

	// StuckJobCheckInterval defines how often to check for stuck jobs.
	StuckJobCheckInterval time.Duration

	// JobTimeout bounds a single Execute call.
	JobTimeout time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:           2,
		QueueSize:             100,
		StuckJobAge:           30 * time.Minute,
		StuckJobCheckInterval: 5 * time.Minute,
		JobTimeout:            time.Minute,
	}
}

// Runner manages background job processing.
type Runner struct {
	store      Store
	registry   *Registry
	queue      *Queue
	config     RunnerConfig
	logger     *slog.Logger
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopOnce   sync.Once
	errHandler func(job Job, err error)
}

// NewRunner creates a new Runner. Zero config fields take their defaults.
func NewRunner(store Store, registry *Registry, config RunnerConfig, logger *slog.Logger) *Runner {
	defaults := DefaultRunnerConfig()
	if config.WorkerCount <= 0 {
		config.WorkerCount = defaults.WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.StuckJobAge <= 0 {
		config.StuckJobAge = defaults.StuckJobAge
	}
	if config.StuckJobCheckInterval <= 0 {
		config.StuckJobCheckInterval = defaults.StuckJobCheckInterval
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = defaults.JobTimeout
	}

	logger = logger.With("component", "job_runner")
	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		store:      store,
		registry:   registry,
		queue:      NewQueue(config.QueueSize, logger),
		config:     config,
		logger:     logger,
		ctx:        ctx,
		cancelFunc: cancel,
		errHandler: func(Job, error) {},
	}
}

// SetErrorHandler installs a callback invoked after a job fails.
// It must be called before Start.
func (r *Runner) SetErrorHandler(handler func(job Job, err error)) {
	r.errHandler = handler
}

// Submit persists job and queues it for execution.
// A job that was saved but could not be queued stays pending and is picked
// up again by the next Recover.
func (r *Runner) Submit(ctx context.Context, job Job) error {
	if err := r.store.Save(ctx, job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	if err := r.queue.Enqueue(job); err != nil {
		return fmt.Errorf("failed to queue job %s: %w", job.ID(), err)
	}
	return nil
}

// Start recovers unfinished jobs and launches the workers and the stuck-job monitor.
func (r *Runner) Start() error {
	if err := r.Recover(r.ctx); err != nil {
		return fmt.Errorf("failed to recover jobs: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.stuckJobMonitor()

	r.logger.Info("job runner started", "worker_count", r.config.WorkerCount)
	return nil
}

// Stop signals workers to finish and waits for them. Jobs still queued stay
// pending in the store.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		r.cancelFunc()
		r.queue.Close()
		r.wg.Wait()
		r.logger.Info("job runner stopped")
	})
}

// Recover queues jobs left pending or processing by a previous run.
func (r *Runner) Recover(ctx context.Context) error {
	pending, err := r.store.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending jobs: %w", err)
	}

	processing, err := r.store.ListProcessing(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to list processing jobs: %w", err)
	}

	r.logger.Info("recovering unfinished jobs",
		"pending_count", len(pending),
		"processing_count", len(processing))

	for _, rec := range pending {
		r.requeue(ctx, rec, false)
	}
	for _, rec := range processing {
		r.requeue(ctx, rec, true)
	}
	return nil
}

// requeue rebuilds rec and queues it, resetting it to pending first if needed.
// Records whose type is unknown are marked failed so they are not retried forever.
func (r *Runner) requeue(ctx context.Context, rec Record, reset bool) {
	log := r.logger.With("job_id", rec.ID, "job_type", rec.Type)

	job, err := r.registry.Restore(rec)
	if err != nil {
		log.Error("cannot restore job", "error", err)
		if updErr := r.store.UpdateStatus(ctx, rec.ID, StatusFailed, err.Error()); updErr != nil {
			log.Error("failed to mark job as failed", "error", updErr)
		}
		return
	}

	if reset {
		if err := r.store.UpdateStatus(ctx, rec.ID, StatusPending, "reset after recovery"); err != nil {
			log.Error("failed to reset job status", "error", err)
			return
		}
	}

	if err := r.queue.Enqueue(job); err != nil {
		log.Error("failed to requeue job", "error", err)
	}
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case job, ok := <-r.queue.Channel():
			if !ok {
				return
			}
			r.process(job, id)
		}
	}
}

// process executes a single job and records its outcome.
// It uses a context detached from Stop so an in-flight job can persist its result.
func (r *Runner) process(job Job, workerID int) {
	log := r.logger.With(
		"job_id", job.ID(),
		"job_type", job.Type(),
		"worker_id", workerID,
	)

	ctx, cancel := context.WithTimeout(context.Background(), r.config.JobTimeout)
	defer cancel()

	if err := r.store.UpdateStatus(ctx, job.ID(), StatusProcessing, ""); err != nil {
		log.Error("failed to mark job as processing", "error", err)
		return
	}

	if err := job.Execute(ctx); err != nil {
		log.Error("job execution failed", "error", err)
		if updErr := r.store.UpdateStatus(ctx, job.ID(), StatusFailed, err.Error()); updErr != nil {
			log.Error("failed to mark job as failed", "error", updErr)
		}
		r.errHandler(job, err)
		return
	}

	if err := r.store.UpdateStatus(ctx, job.ID(), StatusCompleted, ""); err != nil {
		log.Error("failed to mark job as completed", "error", err)
		return
	}
	log.Info("job completed")
}

func (r *Runner) stuckJobMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckJobCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.resetStuckJobs()
		}
	}
}

func (r *Runner) resetStuckJobs() {
	stuck, err := r.store.ListProcessing(r.ctx, r.config.StuckJobAge)
	if err != nil {
		r.logger.Error("failed to check for stuck jobs", "error", err)
		return
	}
	if len(stuck) == 0 {
		return
	}

	r.logger.Warn("found stuck jobs", "count", len(stuck))
	for _, rec := range stuck {
		r.requeue(r.ctx, rec, true)
	}
}

var _ Submitter = (*Runner)(nil)
