package jobs_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/jobs"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// fakeJob is a Job whose behaviour is controlled by the test.
type fakeJob struct {
	id      uuid.UUID
	typ     string
	payload []byte
	execFn  func(ctx context.Context) error
}

func newFakeJob(typ string, execFn func(ctx context.Context) error) *fakeJob {
	return &fakeJob{id: uuid.New(), typ: typ, payload: []byte(`{}`), execFn: execFn}
}

func (j *fakeJob) ID() uuid.UUID   { return j.id }
func (j *fakeJob) Type() string    { return j.typ }
func (j *fakeJob) Payload() []byte { return j.payload }
func (j *fakeJob) Execute(ctx context.Context) error {
	if j.execFn == nil {
		return nil
	}
	return j.execFn(ctx)
}

// fakeTaskCreator records every Create call.
type fakeTaskCreator struct {
	mu      sync.Mutex
	calls   []createCall
	failFor map[uuid.UUID]bool
}

type createCall struct {
	owner  uuid.UUID
	fields domain.TaskFields
}

func (c *fakeTaskCreator) Create(_ context.Context, owner uuid.UUID, fields domain.TaskFields) (*domain.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failFor[owner] {
		return nil, errors.New("create failed")
	}
	c.calls = append(c.calls, createCall{owner: owner, fields: fields})
	return &domain.Task{ID: int64(len(c.calls)), UserID: owner, Title: fields.Title}, nil
}

func (c *fakeTaskCreator) Calls() []createCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]createCall(nil), c.calls...)
}

type fakeUserLister struct {
	users []*domain.User
	err   error
}

func (l *fakeUserLister) ListActive(context.Context) ([]*domain.User, error) {
	return l.users, l.err
}

// recordingSubmitter stores submitted jobs instead of running them.
type recordingSubmitter struct {
	mu        sync.Mutex
	submitted []jobSnapshot
	err       error
}

type jobSnapshot struct {
	ID      uuid.UUID
	Type    string
	Payload []byte
}

func (s *recordingSubmitter) Submit(_ context.Context, job jobs.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.submitted = append(s.submitted, jobSnapshot{ID: job.ID(), Type: job.Type(), Payload: job.Payload()})
	return nil
}

func (s *recordingSubmitter) Submitted() []jobSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]jobSnapshot(nil), s.submitted...)
}
