package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/platform/logger"
	"github.com/phrazzld/taskhub-api/internal/store"
)

type sessionRow struct {
	SessionID string    `db:"session_id"`
	UserID    uuid.UUID `db:"user_id"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	IsActive  bool      `db:"is_active"`
}

func (r sessionRow) toDomain() *domain.ChatSession {
	return &domain.ChatSession{
		SessionID: r.SessionID,
		UserID:    r.UserID,
		Title:     r.Title,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
		IsActive:  r.IsActive,
	}
}

type messageRow struct {
	ID        int64     `db:"id"`
	SessionID string    `db:"session_id"`
	Type      string    `db:"message_type"`
	Content   string    `db:"content"`
	Timestamp time.Time `db:"timestamp"`
}

func (r messageRow) toDomain() *domain.ChatMessage {
	return &domain.ChatMessage{
		ID:        r.ID,
		SessionID: r.SessionID,
		Type:      domain.MessageType(r.Type),
		Content:   r.Content,
		Timestamp: r.Timestamp.UTC(),
	}
}

// PostgresChatStore implements store.ChatStore with sqlx struct mapping.
type PostgresChatStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresChatStore creates a chat store on db.
func NewPostgresChatStore(db *sqlx.DB, logger *slog.Logger) *PostgresChatStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresChatStore{
		db:     db,
		logger: logger.With(slog.String("component", "chat_store")),
	}
}

var _ store.ChatStore = (*PostgresChatStore)(nil)

// CreateSession implements store.ChatStore.CreateSession
func (s *PostgresChatStore) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	if err := session.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO chat_sessions (session_id, user_id, title, created_at, updated_at, is_active)
		VALUES (:session_id, :user_id, :title, :created_at, :updated_at, :is_active)
	`
	_, err := s.db.NamedExecContext(ctx, query, sessionRow{
		SessionID: session.SessionID,
		UserID:    session.UserID,
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		IsActive:  session.IsActive,
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create chat session",
			slog.String("session_id", session.SessionID),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// GetSession implements store.ChatStore.GetSession
func (s *PostgresChatStore) GetSession(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, `
		SELECT session_id, user_id, title, created_at, updated_at, is_active
		FROM chat_sessions
		WHERE session_id = $1
	`, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, MapError(err)
	}
	return row.toDomain(), nil
}

// ListActiveSessions implements store.ChatStore.ListActiveSessions
func (s *PostgresChatStore) ListActiveSessions(ctx context.Context, owner uuid.UUID) ([]*domain.ChatSession, error) {
	var rows []sessionRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT session_id, user_id, title, created_at, updated_at, is_active
		FROM chat_sessions
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY updated_at DESC
	`, owner)
	if err != nil {
		return nil, MapError(err)
	}

	sessions := make([]*domain.ChatSession, 0, len(rows))
	for _, r := range rows {
		sessions = append(sessions, r.toDomain())
	}
	return sessions, nil
}

// AppendMessage implements store.ChatStore.AppendMessage. The insert and the
// session timestamp bump share one transaction.
func (s *PostgresChatStore) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE chat_sessions SET updated_at = $1 WHERE session_id = $2`,
			msg.Timestamp, msg.SessionID)
		if err != nil {
			return MapError(err)
		}
		if err := CheckRowsAffected(result, store.ErrSessionNotFound); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO chat_messages (id, session_id, message_type, content, timestamp)
			VALUES ($1, $2, $3, $4, $5)
		`, msg.ID, msg.SessionID, string(msg.Type), msg.Content, msg.Timestamp)
		if err != nil {
			return fmt.Errorf("failed to insert chat message: %w", MapError(err))
		}
		return nil
	})
}

// RecentMessages implements store.ChatStore.RecentMessages
// A non-positive limit returns the whole transcript.
func (s *PostgresChatStore) RecentMessages(ctx context.Context, sessionID string, limit int) ([]*domain.ChatMessage, error) {
	var maxRows any = limit
	if limit <= 0 {
		maxRows = nil
	}

	var rows []messageRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, session_id, message_type, content, timestamp
		FROM (
			SELECT id, session_id, message_type, content, timestamp
			FROM chat_messages
			WHERE session_id = $1
			ORDER BY timestamp DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY timestamp ASC, id ASC
	`, sessionID, maxRows)
	if err != nil {
		return nil, MapError(err)
	}

	messages := make([]*domain.ChatMessage, 0, len(rows))
	for _, r := range rows {
		messages = append(messages, r.toDomain())
	}
	return messages, nil
}
