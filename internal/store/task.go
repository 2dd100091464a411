package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
)

// TaskStore defines the interface for task persistence.
//
// Every lookup by id also takes the owner, and both are matched in the same
// query. A task owned by someone else is reported as ErrTaskNotFound, exactly
// like a task that does not exist.
type TaskStore interface {
	// Create inserts task and sets task.ID to the generated identifier.
	Create(ctx context.Context, task *domain.Task) error

	// ListByOwner returns the owner's tasks in insertion order.
	ListByOwner(ctx context.Context, owner uuid.UUID) ([]*domain.Task, error)

	// GetOwned returns the task matching id and owner.
	GetOwned(ctx context.Context, id int64, owner uuid.UUID) (*domain.Task, error)

	// UpdateOwned persists the mutable fields of task, matching on
	// task.ID and task.UserID. Returns ErrTaskNotFound if no row matched.
	UpdateOwned(ctx context.Context, task *domain.Task) error

	// DeleteOwned removes the task matching id and owner and returns the row
	// as it was before deletion.
	DeleteOwned(ctx context.Context, id int64, owner uuid.UUID) (*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
