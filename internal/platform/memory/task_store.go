package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/store"
)

// TaskStore implements store.TaskStore with sequential ids.
type TaskStore struct {
	mu     sync.RWMutex
	nextID int64
	tasks  map[int64]domain.Task
}

// NewTaskStore returns an empty TaskStore.
func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[int64]domain.Task)}
}

// Create implements store.TaskStore.
func (s *TaskStore) Create(_ context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	task.ID = s.nextID
	s.tasks[task.ID] = cloneTask(*task)
	return nil
}

// ListByOwner implements store.TaskStore.
func (s *TaskStore) ListByOwner(_ context.Context, owner uuid.UUID) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*domain.Task, 0)
	for _, t := range s.tasks {
		if t.UserID == owner {
			c := cloneTask(t)
			tasks = append(tasks, &c)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// GetOwned implements store.TaskStore.
func (s *TaskStore) GetOwned(_ context.Context, id int64, owner uuid.UUID) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.owned(id, owner)
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	c := cloneTask(t)
	return &c, nil
}

// UpdateOwned implements store.TaskStore.
func (s *TaskStore) UpdateOwned(_ context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.owned(task.ID, task.UserID); !ok {
		return store.ErrTaskNotFound
	}
	s.tasks[task.ID] = cloneTask(*task)
	return nil
}

// DeleteOwned implements store.TaskStore.
func (s *TaskStore) DeleteOwned(_ context.Context, id int64, owner uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.owned(id, owner)
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return &t, nil
}

// WithTx implements store.TaskStore.
func (s *TaskStore) WithTx(*sql.Tx) store.TaskStore {
	return s
}

// owned must be called with s.mu held.
func (s *TaskStore) owned(id int64, owner uuid.UUID) (domain.Task, bool) {
	t, ok := s.tasks[id]
	if !ok || t.UserID != owner {
		return domain.Task{}, false
	}
	return t, true
}

func cloneTask(t domain.Task) domain.Task {
	if t.Deadline != nil {
		d := *t.Deadline
		t.Deadline = &d
	}
	return t
}

var _ store.TaskStore = (*TaskStore)(nil)
