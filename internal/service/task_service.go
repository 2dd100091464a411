package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/events"
	"github.com/phrazzld/taskhub-api/internal/platform/logger"
	"github.com/phrazzld/taskhub-api/internal/store"
)

// TaskService provides ownership-scoped task operations.
type TaskService interface {
	// Create stores a new incomplete task for owner.
	Create(ctx context.Context, owner uuid.UUID, fields domain.TaskFields) (*domain.Task, error)

	// List returns the owner's tasks in insertion order.
	List(ctx context.Context, owner uuid.UUID) ([]*domain.Task, error)

	// Update overwrites the task's mutable fields and returns the result.
	Update(ctx context.Context, id int64, owner uuid.UUID, fields domain.TaskFields) (*domain.Task, error)

	// Delete removes the task and returns it as it was before deletion.
	Delete(ctx context.Context, id int64, owner uuid.UUID) (*domain.Task, error)

	// RequestRandomTask asks the background jobs to create a random task for owner.
	RequestRandomTask(ctx context.Context, owner uuid.UUID) error
}

// TaskServiceImpl implements TaskService.
type TaskServiceImpl struct {
	tasks   store.TaskStore
	db      store.TxBeginner
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewTaskService creates a TaskService. db may be nil for stores that do not
// support transactions; emitter may be nil when background jobs are disabled.
func NewTaskService(tasks store.TaskStore, db store.TxBeginner, emitter events.EventEmitter, logger *slog.Logger) *TaskServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskServiceImpl{
		tasks:   tasks,
		db:      db,
		emitter: emitter,
		logger:  logger.With("component", "task_service"),
	}
}

var _ TaskService = (*TaskServiceImpl)(nil)

// Create implements TaskService.
func (s *TaskServiceImpl) Create(ctx context.Context, owner uuid.UUID, fields domain.TaskFields) (*domain.Task, error) {
	task, err := domain.NewTask(owner, fields)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create task",
			"error", err,
			"user_id", owner)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// List implements TaskService.
func (s *TaskServiceImpl) List(ctx context.Context, owner uuid.UUID) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Update implements TaskService. The read and the write run in one
// transaction when the store supports it, and both filter on id and owner.
func (s *TaskServiceImpl) Update(ctx context.Context, id int64, owner uuid.UUID, fields domain.TaskFields) (*domain.Task, error) {
	var updated *domain.Task

	err := s.inTx(ctx, func(ctx context.Context, tasks store.TaskStore) error {
		task, err := tasks.GetOwned(ctx, id, owner)
		if err != nil {
			return err
		}
		if err := task.Apply(fields); err != nil {
			return err
		}
		if err := tasks.UpdateOwned(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, s.mapTaskError(ctx, "update", id, err)
	}
	return updated, nil
}

// Delete implements TaskService.
func (s *TaskServiceImpl) Delete(ctx context.Context, id int64, owner uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.DeleteOwned(ctx, id, owner)
	if err != nil {
		return nil, s.mapTaskError(ctx, "delete", id, err)
	}
	return task, nil
}

// RequestRandomTask implements TaskService.
func (s *TaskServiceImpl) RequestRandomTask(ctx context.Context, owner uuid.UUID) error {
	if s.emitter == nil {
		return ErrJobsUnavailable
	}

	event, err := events.NewEvent(events.RandomTaskRequested, events.UserPayload{UserID: owner})
	if err != nil {
		return fmt.Errorf("failed to build event: %w", err)
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to request random task: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("random task requested",
		"user_id", owner,
		"event_id", event.ID)
	return nil
}

func (s *TaskServiceImpl) inTx(ctx context.Context, fn func(ctx context.Context, tasks store.TaskStore) error) error {
	if s.db == nil {
		return fn(ctx, s.tasks)
	}
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.tasks.WithTx(tx))
	})
}

func (s *TaskServiceImpl) mapTaskError(ctx context.Context, op string, id int64, err error) error {
	switch {
	case store.IsNotFoundError(err):
		return ErrTaskNotFound
	case errors.Is(err, domain.ErrValidation):
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Error("task operation failed",
		"operation", op,
		"task_id", id,
		"error", err)
	return fmt.Errorf("failed to %s task: %w", op, err)
}
