package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	valid := map[string]any{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "s3cret",
	}

	tests := []struct {
		name       string
		payload    any
		serviceErr error
		wantStatus int
		wantDetail string
	}{
		{name: "valid registration", payload: valid, wantStatus: http.StatusOK},
		{
			name:       "duplicate identity",
			payload:    valid,
			serviceErr: auth.ErrDuplicateIdentity,
			wantStatus: http.StatusBadRequest,
			wantDetail: MsgDuplicateIdentity,
		},
		{
			name:       "invalid email",
			payload:    map[string]any{"username": "alice", "email": "nope", "password": "x"},
			wantStatus: http.StatusBadRequest,
			wantDetail: "Invalid email: invalid email format",
		},
		{
			name:       "username too long",
			payload:    map[string]any{"username": strings.Repeat("a", 51), "email": "a@example.com", "password": "x"},
			wantStatus: http.StatusBadRequest,
			wantDetail: "Invalid username: too long",
		},
		{
			name:       "missing password",
			payload:    map[string]any{"username": "alice", "email": "alice@example.com"},
			wantStatus: http.StatusBadRequest,
			wantDetail: "Invalid password: required field",
		},
		{
			name:       "malformed json",
			payload:    `{"username":`,
			wantStatus: http.StatusBadRequest,
			wantDetail: MsgInvalidRequest,
		},
		{
			name:       "store failure is hidden",
			payload:    valid,
			serviceErr: errors.New("connection reset by peer"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: MsgUnexpected,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			deps := newTestDeps()
			var got auth.RegisterInput
			deps.auth.RegisterFn = func(_ context.Context, in auth.RegisterInput) (domain.PublicUser, error) {
				got = in
				if tc.serviceErr != nil {
					return domain.PublicUser{}, tc.serviceErr
				}
				return domain.PublicUser{ID: uuid.New(), Username: in.Username, Email: in.Email}, nil
			}

			rec := deps.do(t, http.MethodPost, "/auth/register", tc.payload, "")
			assert.Equal(t, tc.wantStatus, rec.Code)

			if tc.wantDetail != "" {
				assert.Equal(t, tc.wantDetail, detail(t, rec))
				return
			}
			user := decodeBody[map[string]any](t, rec)
			assert.Equal(t, "alice", user["username"])
			assert.Nil(t, user["full_name"])
			assert.NotContains(t, user, "hashed_password")
			assert.Equal(t, "s3cret", got.Password)
		})
	}
}

func TestToken(t *testing.T) {
	t.Parallel()

	login := func(_ context.Context, username, password string) (string, error) {
		if username == "alice" && password == "right" {
			return "signed-token", nil
		}
		return "", auth.ErrUnauthorized
	}

	t.Run("json credentials", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		deps.auth.LoginFn = login

		rec := deps.do(t, http.MethodPost, "/auth/token", map[string]string{"username": "alice", "password": "right"}, "")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[TokenResponse](t, rec)
		assert.Equal(t, "signed-token", resp.AccessToken)
		assert.Equal(t, "bearer", resp.TokenType)
	})

	t.Run("form credentials", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		deps.auth.LoginFn = login

		form := url.Values{"username": {"alice"}, "password": {"right"}}
		req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		deps.router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "signed-token", decodeBody[TokenResponse](t, rec).AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		deps.auth.LoginFn = login

		rec := deps.do(t, http.MethodPost, "/auth/token", map[string]string{"username": "alice", "password": "wrong"}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		assert.Equal(t, MsgBadLogin, detail(t, rec))
	})

	t.Run("missing username", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		deps.auth.LoginFn = login

		rec := deps.do(t, http.MethodPost, "/auth/token", map[string]string{"password": "right"}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMe(t *testing.T) {
	t.Parallel()

	deps := newTestDeps()
	deps.user.FullName = "Alice Liddell"

	rec := deps.do(t, http.MethodGet, "/auth/me", nil, validToken)
	require.Equal(t, http.StatusOK, rec.Code)

	me := decodeBody[domain.PublicUser](t, rec)
	assert.Equal(t, deps.user.ID, me.ID)
	require.NotNil(t, me.FullName)
	assert.Equal(t, "Alice Liddell", *me.FullName)
}
