package shared

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRespondWithError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		status        int
		wantChallenge bool
	}{
		{name: "unauthorized carries a challenge", status: http.StatusUnauthorized, wantChallenge: true},
		{name: "not found", status: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			RespondWithError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.status, "nope")

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, `{"detail":"nope"}`, rec.Body.String())
			if tc.wantChallenge {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			} else {
				assert.Empty(t, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRespondWithErrorAndLogHidesCause(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	cause := errors.New("dial tcp postgres://admin:hunter2@db:5432: refused")
	RespondWithErrorAndLog(rec, httptest.NewRequest(http.MethodGet, "/", nil),
		http.StatusInternalServerError, "An unexpected error occurred", cause)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.JSONEq(t, `{"detail":"An unexpected error occurred"}`, rec.Body.String())
}
