package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/platform/postgres"
	"github.com/phrazzld/taskhub-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatStore(t *testing.T) (*postgres.PostgresChatStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMock(t)
	return postgres.NewPostgresChatStore(sqlx.NewDb(db, "pgx"), discardLogger()), mock
}

var sessionRowColumns = []string{"session_id", "user_id", "title", "created_at", "updated_at", "is_active"}

func TestPostgresChatStore_Sessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	owner := uuid.New()
	now := time.Now().UTC()

	t.Run("create", func(t *testing.T) {
		t.Parallel()

		s, mock := newChatStore(t)
		session, err := domain.NewChatSession("sess-1", owner, now)
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO chat_sessions")).
			WithArgs("sess-1", owner, domain.DefaultSessionTitle, sqlmock.AnyArg(), sqlmock.AnyArg(), true).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, s.CreateSession(ctx, session))
	})

	t.Run("get missing", func(t *testing.T) {
		t.Parallel()

		s, mock := newChatStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM chat_sessions")).
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(sessionRowColumns))

		_, err := s.GetSession(ctx, "nope")
		assert.ErrorIs(t, err, store.ErrSessionNotFound)
	})

	t.Run("list active", func(t *testing.T) {
		t.Parallel()

		s, mock := newChatStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND is_active = TRUE")).
			WithArgs(owner).
			WillReturnRows(sqlmock.NewRows(sessionRowColumns).
				AddRow("b", owner.String(), "New Chat", now, now, true).
				AddRow("a", owner.String(), "New Chat", now, now.Add(-time.Hour), true))

		sessions, err := s.ListActiveSessions(ctx, owner)
		require.NoError(t, err)
		require.Len(t, sessions, 2)
		assert.Equal(t, "b", sessions[0].SessionID)
		assert.True(t, sessions[0].OwnedBy(owner))
	})
}

func TestPostgresChatStore_AppendMessage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("inserts and bumps session in one transaction", func(t *testing.T) {
		t.Parallel()

		s, mock := newChatStore(t)
		msg, err := domain.NewChatMessage(42, "sess-1", domain.MessageTypeUser, "hello", now)
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE chat_sessions SET updated_at = $1")).
			WithArgs(sqlmock.AnyArg(), "sess-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO chat_messages")).
			WithArgs(int64(42), "sess-1", "user", "hello", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.AppendMessage(ctx, msg))
	})

	t.Run("unknown session rolls back", func(t *testing.T) {
		t.Parallel()

		s, mock := newChatStore(t)
		msg, err := domain.NewChatMessage(43, "ghost", domain.MessageTypeUser, "hello", now)
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE chat_sessions")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, s.AppendMessage(ctx, msg), store.ErrSessionNotFound)
	})
}

func TestPostgresChatStore_RecentMessages(t *testing.T) {
	t.Parallel()

	s, mock := newChatStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM chat_messages")).
		WithArgs("sess-1", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "message_type", "content", "timestamp"}).
			AddRow(int64(1), "sess-1", "system", "welcome", now.Add(-time.Minute)).
			AddRow(int64(2), "sess-1", "user", "hi", now))

	msgs, err := s.RecentMessages(context.Background(), "sess-1", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.MessageTypeSystem, msgs[0].Type)
	assert.Equal(t, "hi", msgs[1].Content)
}
