package jobs

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownJobType is returned when a stored job has no registered factory.
var ErrUnknownJobType = errors.New("unknown job type")

// Factory rebuilds a job from its persisted id and payload.
type Factory func(id uuid.UUID, payload []byte) (Job, error)

// Registry maps job types to the factories able to restore them.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register installs f for jobType, replacing any previous factory.
func (r *Registry) Register(jobType string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[jobType] = f
}

// Restore rebuilds the job described by rec.
func (r *Registry) Restore(rec Record) (Job, error) {
	r.mu.RLock()
	f, ok := r.factories[rec.Type]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJobType, rec.Type)
	}
	return f(rec.ID, rec.Payload)
}
