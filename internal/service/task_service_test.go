package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/events"
	"github.com/phrazzld/taskhub-api/internal/mocks"
	"github.com/phrazzld/taskhub-api/internal/platform/memory"
	"github.com/phrazzld/taskhub-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTaskService(emitter events.EventEmitter) *service.TaskServiceImpl {
	return service.NewTaskService(memory.NewTaskStore(), nil, emitter, discardLogger())
}

func TestTaskService_OwnershipScenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTaskService(nil)
	alice, bob := uuid.New(), uuid.New()

	t1, err := svc.Create(ctx, alice, domain.TaskFields{Title: "T1"})
	require.NoError(t, err)
	assert.NotZero(t, t1.ID)
	assert.False(t, t1.Completed)

	_, err = svc.Create(ctx, bob, domain.TaskFields{Title: "T2"})
	require.NoError(t, err)

	aliceTasks, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, aliceTasks, 1)
	assert.Equal(t, "T1", aliceTasks[0].Title)

	_, err = svc.Update(ctx, t1.ID, bob, domain.TaskFields{Title: "hijacked"})
	assert.ErrorIs(t, err, service.ErrTaskNotFound)

	_, err = svc.Delete(ctx, t1.ID, bob)
	assert.ErrorIs(t, err, service.ErrTaskNotFound)

	unchanged, err := svc.List(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "T1", unchanged[0].Title)
}

func TestTaskService_Update(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTaskService(nil)
	owner := uuid.New()
	deadline := time.Date(2030, 6, 1, 10, 0, 0, 0, time.UTC)

	task, err := svc.Create(ctx, owner, domain.TaskFields{Title: "draft", Description: "d", Deadline: &deadline})
	require.NoError(t, err)

	t.Run("completed untouched when absent", func(t *testing.T) {
		updated, err := svc.Update(ctx, task.ID, owner, domain.TaskFields{Title: "final"})
		require.NoError(t, err)
		assert.Equal(t, "final", updated.Title)
		assert.Empty(t, updated.Description)
		assert.Nil(t, updated.Deadline)
		assert.False(t, updated.Completed)
	})

	t.Run("completed overwritten when present", func(t *testing.T) {
		done := true
		updated, err := svc.Update(ctx, task.ID, owner, domain.TaskFields{Title: "final", Completed: &done})
		require.NoError(t, err)
		assert.True(t, updated.Completed)
	})

	t.Run("invalid fields leave task intact", func(t *testing.T) {
		_, err := svc.Update(ctx, task.ID, owner, domain.TaskFields{Title: ""})
		assert.ErrorIs(t, err, domain.ErrValidation)

		tasks, err := svc.List(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, "final", tasks[0].Title)
	})
}

func TestTaskService_DeleteTwice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTaskService(nil)
	owner := uuid.New()

	task, err := svc.Create(ctx, owner, domain.TaskFields{Title: "once"})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, task.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "once", deleted.Title)

	_, err = svc.Delete(ctx, task.ID, owner)
	assert.ErrorIs(t, err, service.ErrTaskNotFound)

	_, err = svc.Update(ctx, task.ID, owner, domain.TaskFields{Title: "again"})
	assert.ErrorIs(t, err, service.ErrTaskNotFound)
}

func TestTaskService_RequestRandomTask(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	owner := uuid.New()

	t.Run("emits event", func(t *testing.T) {
		t.Parallel()

		emitter := events.NewInMemoryEventEmitter(discardLogger())
		var got *events.Event
		emitter.RegisterHandler(events.HandlerFunc(func(_ context.Context, e *events.Event) error {
			got = e
			return nil
		}))

		require.NoError(t, newTaskService(emitter).RequestRandomTask(ctx, owner))
		require.NotNil(t, got)
		assert.Equal(t, events.RandomTaskRequested, got.Type)

		var payload events.UserPayload
		require.NoError(t, got.UnmarshalPayload(&payload))
		assert.Equal(t, owner, payload.UserID)
	})

	t.Run("handler failure propagates", func(t *testing.T) {
		t.Parallel()

		emitter := events.NewInMemoryEventEmitter(discardLogger())
		emitter.RegisterHandler(events.HandlerFunc(func(context.Context, *events.Event) error {
			return errors.New("queue full")
		}))

		assert.Error(t, newTaskService(emitter).RequestRandomTask(ctx, owner))
	})

	t.Run("no emitter", func(t *testing.T) {
		t.Parallel()

		err := newTaskService(nil).RequestRandomTask(ctx, owner)
		assert.ErrorIs(t, err, service.ErrJobsUnavailable)
	})
}

func TestTaskService_UpdateFailsWhenTransactionCannotStart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tasks := memory.NewTaskStore()
	owner := uuid.New()
	svc := service.NewTaskService(tasks, &mocks.MockDB{Err: errors.New("connection refused")}, nil, discardLogger())

	created, err := svc.Create(ctx, owner, domain.TaskFields{Title: "keep me"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, owner, domain.TaskFields{Title: "changed"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrTaskNotFound)

	stored, err := tasks.GetOwned(ctx, created.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "keep me", stored.Title)
}
