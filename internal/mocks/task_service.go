package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/service"
)

// MockTaskService implements service.TaskService for testing.
type MockTaskService struct {
	CreateFn            func(ctx context.Context, owner uuid.UUID, fields domain.TaskFields) (*domain.Task, error)
	ListFn              func(ctx context.Context, owner uuid.UUID) ([]*domain.Task, error)
	UpdateFn            func(ctx context.Context, id int64, owner uuid.UUID, fields domain.TaskFields) (*domain.Task, error)
	DeleteFn            func(ctx context.Context, id int64, owner uuid.UUID) (*domain.Task, error)
	RequestRandomTaskFn func(ctx context.Context, owner uuid.UUID) error

	// Defaults used when the matching function field is nil.
	Task  *domain.Task
	Tasks []*domain.Task
	Err   error

	mu     sync.Mutex
	owners []uuid.UUID
}

func (m *MockTaskService) record(owner uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners = append(m.owners, owner)
}

// Owners returns the owner passed to every call, in call order.
func (m *MockTaskService) Owners() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uuid.UUID(nil), m.owners...)
}

// Create implements service.TaskService.
func (m *MockTaskService) Create(ctx context.Context, owner uuid.UUID, fields domain.TaskFields) (*domain.Task, error) {
	m.record(owner)
	if m.CreateFn != nil {
		return m.CreateFn(ctx, owner, fields)
	}
	return m.Task, m.Err
}

// List implements service.TaskService.
func (m *MockTaskService) List(ctx context.Context, owner uuid.UUID) ([]*domain.Task, error) {
	m.record(owner)
	if m.ListFn != nil {
		return m.ListFn(ctx, owner)
	}
	return m.Tasks, m.Err
}

// Update implements service.TaskService.
func (m *MockTaskService) Update(ctx context.Context, id int64, owner uuid.UUID, fields domain.TaskFields) (*domain.Task, error) {
	m.record(owner)
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, owner, fields)
	}
	return m.Task, m.Err
}

// Delete implements service.TaskService.
func (m *MockTaskService) Delete(ctx context.Context, id int64, owner uuid.UUID) (*domain.Task, error) {
	m.record(owner)
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id, owner)
	}
	return m.Task, m.Err
}

// RequestRandomTask implements service.TaskService.
func (m *MockTaskService) RequestRandomTask(ctx context.Context, owner uuid.UUID) error {
	m.record(owner)
	if m.RequestRandomTaskFn != nil {
		return m.RequestRandomTaskFn(ctx, owner)
	}
	return m.Err
}

var _ service.TaskService = (*MockTaskService)(nil)
