package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageType identifies who authored a chat message.
type MessageType string

// Chat message authors.
const (
	MessageTypeUser      MessageType = "user"
	MessageTypeAssistant MessageType = "assistant"
	MessageTypeSystem    MessageType = "system"
)

// DefaultSessionTitle is given to every new chat session.
const DefaultSessionTitle = "New Chat"

// Chat validation errors
var (
	ErrEmptySessionID     = validationError("chat session ID cannot be empty")
	ErrEmptySessionOwner  = validationError("chat session owner cannot be empty")
	ErrEmptyMessageID     = validationError("chat message ID cannot be empty")
	ErrEmptyMessage       = validationError("chat message content cannot be empty")
	ErrInvalidMessageType = validationError("invalid chat message type")
)

// Valid reports whether m is a known message type.
func (m MessageType) Valid() bool {
	switch m {
	case MessageTypeUser, MessageTypeAssistant, MessageTypeSystem:
		return true
	}
	return false
}

// ChatSession groups the messages of one conversation with the assistant.
type ChatSession struct {
	SessionID string    `json:"session_id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IsActive  bool      `json:"is_active"`
}

// NewChatSession creates an active session titled DefaultSessionTitle.
func NewChatSession(sessionID string, owner uuid.UUID, now time.Time) (*ChatSession, error) {
	now = now.UTC()
	s := &ChatSession{
		SessionID: sessionID,
		UserID:    owner,
		Title:     DefaultSessionTitle,
		CreatedAt: now,
		UpdatedAt: now,
		IsActive:  true,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks if the ChatSession has valid data.
func (s *ChatSession) Validate() error {
	if s.SessionID == "" {
		return ErrEmptySessionID
	}
	if s.UserID == uuid.Nil {
		return ErrEmptySessionOwner
	}
	return nil
}

// OwnedBy reports whether user owns the session.
func (s *ChatSession) OwnedBy(user uuid.UUID) bool {
	return s.UserID == user
}

// ChatMessage is a single entry in a session transcript.
type ChatMessage struct {
	ID        int64       `json:"id,string"`
	SessionID string      `json:"session_id"`
	Type      MessageType `json:"message_type"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewChatMessage builds a message; id comes from the caller's generator.
func NewChatMessage(id int64, sessionID string, typ MessageType, content string, now time.Time) (*ChatMessage, error) {
	m := &ChatMessage{
		ID:        id,
		SessionID: sessionID,
		Type:      typ,
		Content:   strings.TrimSpace(content),
		Timestamp: now.UTC(),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks if the ChatMessage has valid data.
func (m *ChatMessage) Validate() error {
	if m.ID == 0 {
		return ErrEmptyMessageID
	}
	if m.SessionID == "" {
		return ErrEmptySessionID
	}
	if !m.Type.Valid() {
		return ErrInvalidMessageType
	}
	if m.Content == "" {
		return ErrEmptyMessage
	}
	return nil
}
