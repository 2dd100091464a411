package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/taskhub-api/internal/api/shared"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/service/auth"
)

// Authentication failure messages.
const (
	MsgInvalidCredentials = "Could not validate credentials"
	MsgTokenExpired       = "Token has expired"
	MsgInactiveUser       = "Inactive user"
)

// CurrentUserResolver turns a bearer token into an active user.
type CurrentUserResolver interface {
	ResolveCurrentUser(ctx context.Context, token string) (*domain.User, error)
	RequireActiveUser(user *domain.User) (*domain.User, error)
}

// AuthMiddleware authenticates bearer tokens.
type AuthMiddleware struct {
	users CurrentUserResolver
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(users CurrentUserResolver) *AuthMiddleware {
	return &AuthMiddleware{users: users}
}

// Authenticate reads the token from the Authorization header and stores the
// active user in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return m.authenticate(next, false)
}

// AuthenticateWebSocket is Authenticate that also accepts a token query
// parameter, since browsers cannot set headers on WebSocket handshakes.
func (m *AuthMiddleware) AuthenticateWebSocket(next http.Handler) http.Handler {
	return m.authenticate(next, true)
}

func (m *AuthMiddleware) authenticate(next http.Handler, allowQuery bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" && allowQuery {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, MsgInvalidCredentials)
			return
		}

		user, err := m.users.ResolveCurrentUser(r.Context(), token)
		if err == nil {
			user, err = m.users.RequireActiveUser(user)
		}
		if err != nil {
			respondAuthError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithUser(r.Context(), user)))
	})
}

func respondAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, MsgTokenExpired, err,
			shared.WithElevatedLogLevel())
	case errors.Is(err, auth.ErrInactiveUser):
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, MsgInactiveUser, err)
	case errors.Is(err, auth.ErrUnauthorized):
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, MsgInvalidCredentials, err)
	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
	}
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetUser returns the user stored by Authenticate. Handlers behind the
// middleware read the caller through it.
func GetUser(r *http.Request) (*domain.User, bool) {
	return shared.UserFromContext(r.Context())
}
