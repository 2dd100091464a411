package mocks

import (
	"context"

	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/service/auth"
)

// MockAuthService mirrors the methods of *auth.Service used by the HTTP layer.
type MockAuthService struct {
	RegisterFn           func(ctx context.Context, in auth.RegisterInput) (domain.PublicUser, error)
	LoginFn              func(ctx context.Context, username, password string) (string, error)
	ResolveCurrentUserFn func(ctx context.Context, token string) (*domain.User, error)

	// Defaults used when the matching function field is nil.
	PublicUser domain.PublicUser
	Token      string
	User       *domain.User
	Err        error
}

// Register mirrors auth.Service.Register.
func (m *MockAuthService) Register(ctx context.Context, in auth.RegisterInput) (domain.PublicUser, error) {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, in)
	}
	return m.PublicUser, m.Err
}

// Login mirrors auth.Service.Login.
func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, username, password)
	}
	return m.Token, m.Err
}

// ResolveCurrentUser mirrors auth.Service.ResolveCurrentUser.
func (m *MockAuthService) ResolveCurrentUser(ctx context.Context, token string) (*domain.User, error) {
	if m.ResolveCurrentUserFn != nil {
		return m.ResolveCurrentUserFn(ctx, token)
	}
	return m.User, m.Err
}

// RequireActiveUser applies the same rule as auth.Service.RequireActiveUser.
func (m *MockAuthService) RequireActiveUser(user *domain.User) (*domain.User, error) {
	if user == nil || !user.Active() {
		return nil, auth.ErrInactiveUser
	}
	return user, nil
}
