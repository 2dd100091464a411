package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/store"
)

// ChatStore implements store.ChatStore.
type ChatStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.ChatSession
	messages map[string][]domain.ChatMessage
}

// NewChatStore returns an empty ChatStore.
func NewChatStore() *ChatStore {
	return &ChatStore{
		sessions: make(map[string]domain.ChatSession),
		messages: make(map[string][]domain.ChatMessage),
	}
}

// CreateSession implements store.ChatStore.
func (s *ChatStore) CreateSession(_ context.Context, session *domain.ChatSession) error {
	if err := session.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.SessionID]; ok {
		return store.ErrDuplicate
	}
	s.sessions[session.SessionID] = *session
	return nil
}

// GetSession implements store.ChatStore.
func (s *ChatStore) GetSession(_ context.Context, sessionID string) (*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return &session, nil
}

// ListActiveSessions implements store.ChatStore.
func (s *ChatStore) ListActiveSessions(_ context.Context, owner uuid.UUID) ([]*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*domain.ChatSession, 0)
	for _, session := range s.sessions {
		if session.UserID == owner && session.IsActive {
			session := session
			sessions = append(sessions, &session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

// AppendMessage implements store.ChatStore.
func (s *ChatStore) AppendMessage(_ context.Context, msg *domain.ChatMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[msg.SessionID]
	if !ok {
		return store.ErrSessionNotFound
	}
	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], *msg)
	session.UpdatedAt = msg.Timestamp
	s.sessions[msg.SessionID] = session
	return nil
}

// RecentMessages implements store.ChatStore.
func (s *ChatStore) RecentMessages(_ context.Context, sessionID string, limit int) ([]*domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.messages[sessionID]
	start := 0
	if limit > 0 && len(all) > limit {
		start = len(all) - limit
	}

	out := make([]*domain.ChatMessage, 0, len(all)-start)
	for _, m := range all[start:] {
		m := m
		out = append(out, &m)
	}
	return out, nil
}

var _ store.ChatStore = (*ChatStore)(nil)
