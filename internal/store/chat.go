package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
)

// ChatStore persists chat sessions and their transcripts.
type ChatStore interface {
	// CreateSession inserts a new session.
	// Returns ErrDuplicate if the session id is taken.
	CreateSession(ctx context.Context, session *domain.ChatSession) error

	// GetSession returns the session with the given public id.
	// Returns ErrSessionNotFound if it does not exist.
	GetSession(ctx context.Context, sessionID string) (*domain.ChatSession, error)

	// ListActiveSessions returns the user's active sessions, most recently
	// updated first.
	ListActiveSessions(ctx context.Context, owner uuid.UUID) ([]*domain.ChatSession, error)

	// AppendMessage stores msg and bumps the session's updated_at to the
	// message timestamp. Returns ErrSessionNotFound for unknown sessions.
	AppendMessage(ctx context.Context, msg *domain.ChatMessage) error

	// RecentMessages returns up to limit of the newest messages of a session
	// in chronological order.
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]*domain.ChatMessage, error)
}
