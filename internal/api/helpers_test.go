package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/api/middleware"
	"github.com/phrazzld/taskhub-api/internal/api/shared"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/mocks"
	"github.com/phrazzld/taskhub-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

const validToken = "valid-token"

type relayFunc func(w http.ResponseWriter, r *http.Request, sessionID string, user uuid.UUID)

func (f relayFunc) ServeSession(w http.ResponseWriter, r *http.Request, sessionID string, user uuid.UUID) {
	f(w, r, sessionID, user)
}

type testDeps struct {
	user  *domain.User
	auth  *mocks.MockAuthService
	tasks *mocks.MockTaskService
	chats *mocks.MockChatService
	relay relayFunc
}

func newTestDeps() *testDeps {
	user := &domain.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com"}
	return &testDeps{
		user: user,
		auth: &mocks.MockAuthService{
			ResolveCurrentUserFn: func(_ context.Context, token string) (*domain.User, error) {
				if token != validToken {
					return nil, auth.ErrUnauthorized
				}
				return user, nil
			},
		},
		tasks: &mocks.MockTaskService{},
		chats: &mocks.MockChatService{},
		relay: func(w http.ResponseWriter, _ *http.Request, _ string, _ uuid.UUID) {
			w.WriteHeader(http.StatusNoContent)
		},
	}
}

// router wires the handlers the same way the server does.
func (d *testDeps) router() http.Handler {
	authHandler := NewAuthHandler(d.auth)
	taskHandler := NewTaskHandler(d.tasks)
	chatHandler := NewChatHandler(d.chats, d.relay)
	authMW := middleware.NewAuthMiddleware(d.auth)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(nil))
	r.Get("/health", Health)
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/token", authHandler.Token)
	r.Group(func(r chi.Router) {
		r.Use(authMW.Authenticate)
		r.Get("/auth/me", authHandler.Me)
		r.Post("/tasks/create", taskHandler.Create)
		r.Get("/tasks/get_all", taskHandler.List)
		r.Put("/tasks/update/{task_id}", taskHandler.Update)
		r.Delete("/tasks/delete/{task_id}", taskHandler.Delete)
		r.Post("/tasks/random", taskHandler.Random)
		r.Post("/api/sessions", chatHandler.CreateSession)
		r.Get("/api/sessions", chatHandler.ListSessions)
		r.Get("/api/sessions/{session_id}/messages", chatHandler.Messages)
	})
	r.With(authMW.AuthenticateWebSocket).Get("/ws/{session_id}", chatHandler.Connect)
	return r
}

func (d *testDeps) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	d.router().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[shared.ErrorResponse](t, rec).Detail
}
