package jobs_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/jobs"
	"github.com/phrazzld/taskhub-api/internal/platform/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRunnerConfig() jobs.RunnerConfig {
	cfg := jobs.DefaultRunnerConfig()
	cfg.WorkerCount = 1
	cfg.QueueSize = 4
	cfg.JobTimeout = time.Second
	return cfg
}

func waitForStatus(t *testing.T, store *memory.JobStore, id uuid.UUID, want jobs.Status) jobs.Record {
	t.Helper()

	var rec jobs.Record
	require.Eventually(t, func() bool {
		var ok bool
		rec, ok = store.Get(id)
		return ok && rec.Status == want
	}, 2*time.Second, 10*time.Millisecond)
	return rec
}

func TestRunner_Submit(t *testing.T) {
	t.Parallel()

	t.Run("saves before queueing", func(t *testing.T) {
		t.Parallel()

		store := memory.NewJobStore()
		runner := jobs.NewRunner(store, jobs.NewRegistry(), testRunnerConfig(), discardLogger())

		job := newFakeJob("test", nil)
		require.NoError(t, runner.Submit(context.Background(), job))

		rec, ok := store.Get(job.ID())
		require.True(t, ok)
		assert.Equal(t, jobs.StatusPending, rec.Status)
	})

	t.Run("queue full keeps job pending", func(t *testing.T) {
		t.Parallel()

		cfg := testRunnerConfig()
		cfg.QueueSize = 1
		store := memory.NewJobStore()
		runner := jobs.NewRunner(store, jobs.NewRegistry(), cfg, discardLogger())

		require.NoError(t, runner.Submit(context.Background(), newFakeJob("test", nil)))

		second := newFakeJob("test", nil)
		err := runner.Submit(context.Background(), second)
		require.Error(t, err)
		assert.ErrorIs(t, err, jobs.ErrQueueFull)

		rec, ok := store.Get(second.ID())
		require.True(t, ok)
		assert.Equal(t, jobs.StatusPending, rec.Status)
	})
}

func TestRunner_Execution(t *testing.T) {
	t.Parallel()

	t.Run("successful job is completed", func(t *testing.T) {
		t.Parallel()

		store := memory.NewJobStore()
		runner := jobs.NewRunner(store, jobs.NewRegistry(), testRunnerConfig(), discardLogger())
		require.NoError(t, runner.Start())
		t.Cleanup(runner.Stop)

		var ran atomic.Bool
		job := newFakeJob("test", func(context.Context) error {
			ran.Store(true)
			return nil
		})
		require.NoError(t, runner.Submit(context.Background(), job))

		waitForStatus(t, store, job.ID(), jobs.StatusCompleted)
		assert.True(t, ran.Load())
	})

	t.Run("failed job records error and calls handler", func(t *testing.T) {
		t.Parallel()

		store := memory.NewJobStore()
		runner := jobs.NewRunner(store, jobs.NewRegistry(), testRunnerConfig(), discardLogger())

		handled := make(chan error, 1)
		runner.SetErrorHandler(func(_ jobs.Job, err error) { handled <- err })
		require.NoError(t, runner.Start())
		t.Cleanup(runner.Stop)

		job := newFakeJob("test", func(context.Context) error {
			return errors.New("boom")
		})
		require.NoError(t, runner.Submit(context.Background(), job))

		rec := waitForStatus(t, store, job.ID(), jobs.StatusFailed)
		assert.Equal(t, "boom", rec.ErrorMessage)

		select {
		case err := <-handled:
			assert.EqualError(t, err, "boom")
		case <-time.After(2 * time.Second):
			t.Fatal("error handler not called")
		}
	})
}

func TestRunner_Recover(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewJobStore()

	var executed atomic.Int32
	reg := jobs.NewRegistry()
	reg.Register("known", func(id uuid.UUID, payload []byte) (jobs.Job, error) {
		j := newFakeJob("known", func(context.Context) error {
			executed.Add(1)
			return nil
		})
		j.id = id
		return j, nil
	})

	pending := newFakeJob("known", nil)
	processing := newFakeJob("known", nil)
	unknown := newFakeJob("unknown", nil)
	require.NoError(t, store.Save(ctx, pending))
	require.NoError(t, store.Save(ctx, processing))
	require.NoError(t, store.Save(ctx, unknown))
	require.NoError(t, store.UpdateStatus(ctx, processing.ID(), jobs.StatusProcessing, ""))

	runner := jobs.NewRunner(store, reg, testRunnerConfig(), discardLogger())
	require.NoError(t, runner.Start())
	t.Cleanup(runner.Stop)

	waitForStatus(t, store, pending.ID(), jobs.StatusCompleted)
	waitForStatus(t, store, processing.ID(), jobs.StatusCompleted)
	rec := waitForStatus(t, store, unknown.ID(), jobs.StatusFailed)

	assert.Contains(t, rec.ErrorMessage, "unknown job type")
	assert.Equal(t, int32(2), executed.Load())
}

func TestRunner_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	runner := jobs.NewRunner(memory.NewJobStore(), jobs.NewRegistry(), testRunnerConfig(), discardLogger())
	require.NoError(t, runner.Start())

	runner.Stop()
	runner.Stop()

	err := runner.Submit(context.Background(), newFakeJob("test", nil))
	assert.ErrorIs(t, err, jobs.ErrQueueClosed)
}
