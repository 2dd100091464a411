package api

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
)

// RegisterRequest defines the payload for the registration endpoint.
type RegisterRequest struct {
	Username string `json:"username"  validate:"required,min=1,max=50"`
	Email    string `json:"email"     validate:"required,email,max=50"`
	Password string `json:"password"  validate:"required,min=1"`
	FullName string `json:"full_name" validate:"omitempty,max=50"`
}

// TokenRequest defines the credentials accepted by the token endpoint, either
// as JSON or as an OAuth2 password form.
type TokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TaskRequest is the body of task create and update requests.
// Description must be present but may be empty. Completed is ignored on
// create and only applied on update when present.
type TaskRequest struct {
	Title       string     `json:"title"       validate:"required,min=1,max=100"`
	Description *string    `json:"description" validate:"required,max=500"`
	Deadline    *time.Time `json:"deadline"`
	Completed   *bool      `json:"completed"`
}

func (r TaskRequest) fields() domain.TaskFields {
	var description string
	if r.Description != nil {
		description = *r.Description
	}
	return domain.TaskFields{
		Title:       r.Title,
		Description: description,
		Deadline:    r.Deadline,
		Completed:   r.Completed,
	}
}

// TaskResponse is the client view of a task.
type TaskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	UserID      uuid.UUID  `json:"user_id"`
	Deadline    *time.Time `json:"deadline"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		UserID:      t.UserID,
		Deadline:    t.Deadline,
		Description: t.Description,
		Completed:   t.Completed,
	}
}

// AcceptedResponse acknowledges work queued in the background.
type AcceptedResponse struct {
	Message string `json:"message"`
}

// SessionResponse is the client view of a chat session.
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IsActive  bool      `json:"is_active"`
}

// SessionEnvelope wraps a single session.
type SessionEnvelope struct {
	Session SessionResponse `json:"session"`
}

// SessionListResponse wraps the caller's sessions.
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

func sessionToResponse(s *domain.ChatSession) SessionResponse {
	return SessionResponse{
		SessionID: s.SessionID,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		IsActive:  s.IsActive,
	}
}

// MessageResponse is the client view of a chat message. Snowflake ids exceed
// the integer precision of JavaScript clients, so they travel as strings.
type MessageResponse struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	MessageType string    `json:"message_type"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
}

// MessageListResponse wraps a session transcript.
type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
}

func messageToResponse(m *domain.ChatMessage) MessageResponse {
	return MessageResponse{
		ID:          strconv.FormatInt(m.ID, 10),
		SessionID:   m.SessionID,
		MessageType: string(m.Type),
		Content:     m.Content,
		Timestamp:   m.Timestamp,
	}
}

// HealthResponse is returned by the health check.
type HealthResponse struct {
	Status string `json:"status"`
}
