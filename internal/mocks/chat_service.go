package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/service"
)

// MockChatService implements service.ChatService for testing.
type MockChatService struct {
	CreateSessionFn func(ctx context.Context, owner uuid.UUID) (*domain.ChatSession, error)
	OpenSessionFn   func(ctx context.Context, sessionID string, owner uuid.UUID) (*domain.ChatSession, error)
	ListSessionsFn  func(ctx context.Context, owner uuid.UUID) ([]*domain.ChatSession, error)
	HistoryFn       func(ctx context.Context, sessionID string, owner uuid.UUID) ([]*domain.ChatMessage, error)
	SaveMessageFn   func(ctx context.Context, sessionID string, typ domain.MessageType, content string) (*domain.ChatMessage, error)
	ReplyFn         func(ctx context.Context, sessionID, message string) (*domain.ChatMessage, error)

	// Defaults used when the matching function field is nil.
	Session  *domain.ChatSession
	Sessions []*domain.ChatSession
	Messages []*domain.ChatMessage
	Message  *domain.ChatMessage
	Err      error
}

// CreateSession implements service.ChatService.
func (m *MockChatService) CreateSession(ctx context.Context, owner uuid.UUID) (*domain.ChatSession, error) {
	if m.CreateSessionFn != nil {
		return m.CreateSessionFn(ctx, owner)
	}
	return m.Session, m.Err
}

// OpenSession implements service.ChatService.
func (m *MockChatService) OpenSession(ctx context.Context, sessionID string, owner uuid.UUID) (*domain.ChatSession, error) {
	if m.OpenSessionFn != nil {
		return m.OpenSessionFn(ctx, sessionID, owner)
	}
	return m.Session, m.Err
}

// ListSessions implements service.ChatService.
func (m *MockChatService) ListSessions(ctx context.Context, owner uuid.UUID) ([]*domain.ChatSession, error) {
	if m.ListSessionsFn != nil {
		return m.ListSessionsFn(ctx, owner)
	}
	return m.Sessions, m.Err
}

// History implements service.ChatService.
func (m *MockChatService) History(ctx context.Context, sessionID string, owner uuid.UUID) ([]*domain.ChatMessage, error) {
	if m.HistoryFn != nil {
		return m.HistoryFn(ctx, sessionID, owner)
	}
	return m.Messages, m.Err
}

// SaveMessage implements service.ChatService.
func (m *MockChatService) SaveMessage(
	ctx context.Context,
	sessionID string,
	typ domain.MessageType,
	content string,
) (*domain.ChatMessage, error) {
	if m.SaveMessageFn != nil {
		return m.SaveMessageFn(ctx, sessionID, typ, content)
	}
	return m.Message, m.Err
}

// Reply implements service.ChatService.
func (m *MockChatService) Reply(ctx context.Context, sessionID, message string) (*domain.ChatMessage, error) {
	if m.ReplyFn != nil {
		return m.ReplyFn(ctx, sessionID, message)
	}
	return m.Message, m.Err
}

var _ service.ChatService = (*MockChatService)(nil)
