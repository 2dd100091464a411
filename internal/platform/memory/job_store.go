package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/jobs"
)

// JobStore implements jobs.Store.
type JobStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]jobs.Record
	now     func() time.Time
}

// NewJobStore returns an empty JobStore.
func NewJobStore() *JobStore {
	return &JobStore{
		records: make(map[uuid.UUID]jobs.Record),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Save implements jobs.Store.
func (s *JobStore) Save(_ context.Context, job jobs.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.records[job.ID()] = jobs.Record{
		ID:        job.ID(),
		Type:      job.Type(),
		Payload:   append([]byte(nil), job.Payload()...),
		Status:    jobs.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

// UpdateStatus implements jobs.Store.
func (s *JobStore) UpdateStatus(_ context.Context, id uuid.UUID, status jobs.Status, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil
	}
	rec.Status = status
	rec.ErrorMessage = errorMsg
	rec.UpdatedAt = s.now()
	s.records[id] = rec
	return nil
}

// ListPending implements jobs.Store.
func (s *JobStore) ListPending(_ context.Context) ([]jobs.Record, error) {
	return s.list(jobs.StatusPending, 0), nil
}

// ListProcessing implements jobs.Store.
func (s *JobStore) ListProcessing(_ context.Context, olderThan time.Duration) ([]jobs.Record, error) {
	return s.list(jobs.StatusProcessing, olderThan), nil
}

// Get returns the record for id. It exists for tests and diagnostics.
func (s *JobStore) Get(id uuid.UUID) (jobs.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

func (s *JobStore) list(status jobs.Status, olderThan time.Duration) []jobs.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().Add(-olderThan)
	var out []jobs.Record
	for _, rec := range s.records {
		if rec.Status != status {
			continue
		}
		if olderThan > 0 && !rec.UpdatedAt.Before(cutoff) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

var _ jobs.Store = (*JobStore)(nil)
