package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/api/middleware"
	"github.com/phrazzld/taskhub-api/internal/api/shared"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentUser(t *testing.T) {
	t.Parallel()

	t.Run("authenticated request", func(t *testing.T) {
		t.Parallel()

		want := &domain.User{ID: uuid.New(), Username: "alice"}
		req := httptest.NewRequest(http.MethodGet, "/tasks/get_all", nil)
		req = req.WithContext(shared.WithUser(req.Context(), want))
		rec := httptest.NewRecorder()

		got, ok := currentUser(rec, req)
		require.True(t, ok)
		assert.Same(t, want, got)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no user in context", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/tasks/get_all", nil)
		rec := httptest.NewRecorder()

		got, ok := currentUser(rec, req)
		assert.False(t, ok)
		assert.Nil(t, got)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, middleware.MsgInvalidCredentials, detail(t, rec))
	})
}

func TestPathTaskID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		param   string
		want    int64
		wantErr bool
	}{
		{name: "positive id", param: "42", want: 42},
		{name: "zero", param: "0", wantErr: true},
		{name: "negative", param: "-3", wantErr: true},
		{name: "not a number", param: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("task_id", tt.param)
			req := httptest.NewRequest(http.MethodGet, "/tasks/"+tt.param, nil)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			got, err := pathTaskID(req)
			if tt.wantErr {
				assert.ErrorIs(t, err, errInvalidTaskID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
