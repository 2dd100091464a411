package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a job.
type Status string

// Possible job status values
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job types
const (
	// TypeRandomTask creates one random task for a single user.
	TypeRandomTask = "random_task"

	// TypePeriodicRandomTasks creates an "[AUTO]" task for every active user.
	TypePeriodicRandomTasks = "periodic_random_tasks"
)

// Job represents a unit of background work to be processed.
type Job interface {
	ID() uuid.UUID
	Type() string
	// Payload is everything needed to rebuild the job after a restart.
	Payload() []byte
	Execute(ctx context.Context) error
}

// Record is the persisted form of a job.
type Record struct {
	ID           uuid.UUID
	Type         string
	Payload      []byte
	Status       Status
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store defines the interface for persisting jobs.
type Store interface {
	// Save persists job with pending status.
	Save(ctx context.Context, job Job) error

	// UpdateStatus records a status transition. Unknown ids are ignored.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, errorMsg string) error

	// ListPending returns all pending jobs, oldest first.
	ListPending(ctx context.Context) ([]Record, error)

	// ListProcessing returns processing jobs. If olderThan is non-zero only
	// jobs that have not been updated for at least that long are returned.
	ListProcessing(ctx context.Context, olderThan time.Duration) ([]Record, error)
}

// Submitter accepts jobs for asynchronous execution.
type Submitter interface {
	Submit(ctx context.Context, job Job) error
}
