package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/platform/logger"
	"github.com/phrazzld/taskhub-api/internal/store"
	"github.com/segmentio/ksuid"
)

// HistoryPageSize is the number of messages returned by History.
const HistoryPageSize = 50

// Assistant produces a reply to message given the recent transcript, which
// already ends with message itself.
type Assistant interface {
	Respond(ctx context.Context, history []*domain.ChatMessage, message string) (string, error)
}

// ChatService manages chat sessions and their transcripts.
type ChatService interface {
	// CreateSession starts a new session for owner.
	CreateSession(ctx context.Context, owner uuid.UUID) (*domain.ChatSession, error)

	// OpenSession returns the session for a WebSocket connection, creating it
	// under sessionID if it does not exist yet. Returns ErrSessionForbidden if
	// another user owns it.
	OpenSession(ctx context.Context, sessionID string, owner uuid.UUID) (*domain.ChatSession, error)

	// ListSessions returns owner's active sessions, most recent first.
	ListSessions(ctx context.Context, owner uuid.UUID) ([]*domain.ChatSession, error)

	// History returns the latest HistoryPageSize messages of an owned session
	// in chronological order.
	History(ctx context.Context, sessionID string, owner uuid.UUID) ([]*domain.ChatMessage, error)

	// SaveMessage appends a message to the session transcript.
	SaveMessage(ctx context.Context, sessionID string, typ domain.MessageType, content string) (*domain.ChatMessage, error)

	// Reply asks the assistant to answer message and stores the answer.
	Reply(ctx context.Context, sessionID, message string) (*domain.ChatMessage, error)
}

// ChatServiceImpl implements ChatService.
type ChatServiceImpl struct {
	chats        store.ChatStore
	assistant    Assistant
	ids          *snowflake.Node
	historyLimit int
	now          func() time.Time
	logger       *slog.Logger
}

// NewChatService creates a ChatService. historyLimit bounds the transcript
// handed to the assistant.
func NewChatService(
	chats store.ChatStore,
	assistant Assistant,
	ids *snowflake.Node,
	historyLimit int,
	logger *slog.Logger,
) *ChatServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &ChatServiceImpl{
		chats:        chats,
		assistant:    assistant,
		ids:          ids,
		historyLimit: historyLimit,
		now:          func() time.Time { return time.Now().UTC() },
		logger:       logger.With("component", "chat_service"),
	}
}

var _ ChatService = (*ChatServiceImpl)(nil)

// CreateSession implements ChatService.
func (s *ChatServiceImpl) CreateSession(ctx context.Context, owner uuid.UUID) (*domain.ChatSession, error) {
	return s.createSession(ctx, ksuid.New().String(), owner)
}

// OpenSession implements ChatService.
func (s *ChatServiceImpl) OpenSession(ctx context.Context, sessionID string, owner uuid.UUID) (*domain.ChatSession, error) {
	session, err := s.chats.GetSession(ctx, sessionID)
	if store.IsNotFoundError(err) {
		session, err = s.createSession(ctx, sessionID, owner)
		if !store.IsDuplicateError(err) {
			return session, err
		}
		// Another connection created the same id first.
		session, err = s.chats.GetSession(ctx, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load chat session: %w", err)
	}

	if !session.OwnedBy(owner) {
		return nil, ErrSessionForbidden
	}
	return session, nil
}

// ListSessions implements ChatService.
func (s *ChatServiceImpl) ListSessions(ctx context.Context, owner uuid.UUID) ([]*domain.ChatSession, error) {
	sessions, err := s.chats.ListActiveSessions(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat sessions: %w", err)
	}
	return sessions, nil
}

// History implements ChatService.
func (s *ChatServiceImpl) History(ctx context.Context, sessionID string, owner uuid.UUID) ([]*domain.ChatMessage, error) {
	session, err := s.chats.GetSession(ctx, sessionID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load chat session: %w", err)
	}
	if !session.OwnedBy(owner) {
		return nil, ErrSessionNotFound
	}

	messages, err := s.chats.RecentMessages(ctx, sessionID, HistoryPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	return messages, nil
}

// SaveMessage implements ChatService.
func (s *ChatServiceImpl) SaveMessage(ctx context.Context, sessionID string, typ domain.MessageType, content string) (*domain.ChatMessage, error) {
	msg, err := domain.NewChatMessage(s.ids.Generate().Int64(), sessionID, typ, content, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.chats.AppendMessage(ctx, msg); err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to save chat message: %w", err)
	}
	return msg, nil
}

// Reply implements ChatService.
func (s *ChatServiceImpl) Reply(ctx context.Context, sessionID, message string) (*domain.ChatMessage, error) {
	history, err := s.chats.RecentMessages(ctx, sessionID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	answer, err := s.assistant.Respond(ctx, history, message)
	if err != nil {
		return nil, fmt.Errorf("assistant failed to respond: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("assistant replied",
		"session_id", sessionID,
		"history_len", len(history))
	return s.SaveMessage(ctx, sessionID, domain.MessageTypeAssistant, answer)
}

func (s *ChatServiceImpl) createSession(ctx context.Context, sessionID string, owner uuid.UUID) (*domain.ChatSession, error) {
	session, err := domain.NewChatSession(sessionID, owner, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.chats.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("chat session created",
		"session_id", session.SessionID,
		"user_id", owner)
	return session, nil
}
