package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/platform/logger"
	"github.com/phrazzld/taskhub-api/internal/redact"
	"github.com/phrazzld/taskhub-api/internal/store"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

// Service orchestrates registration, login and current-user resolution.
type Service struct {
	users         store.UserStore
	hasher        PasswordHasher
	tokens        TokenService
	tokenLifetime time.Duration
	logger        *slog.Logger
}

// NewService creates an auth Service.
func NewService(
	users store.UserStore,
	hasher PasswordHasher,
	tokens TokenService,
	tokenLifetime time.Duration,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:         users,
		hasher:        hasher,
		tokens:        tokens,
		tokenLifetime: tokenLifetime,
		logger:        logger.With(slog.String("component", "auth_service")),
	}
}

// Register hashes the password and stores a new enabled user.
// Uniqueness is decided by the store; a conflict yields ErrDuplicateIdentity.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.PublicUser, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if in.Password == "" {
		return domain.PublicUser{}, ErrEmptyPassword
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.PublicUser{}, err
	}

	user, err := domain.NewUser(in.Username, in.Email, in.FullName, hashed)
	if err != nil {
		return domain.PublicUser{}, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if store.IsDuplicateError(err) {
			log.Info("registration rejected: identity taken", "username", user.Username)
			return domain.PublicUser{}, ErrDuplicateIdentity
		}
		return domain.PublicUser{}, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user.Public(), nil
}

// Authenticate returns the user matching username and password.
// An unknown user and a wrong password both yield ErrUnauthorized.
// The username is normalized the same way Register stores it.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, domain.NormalizeUsername(username))
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// Login authenticates and issues a bearer token whose subject is the username.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			logger.FromContextOrDefault(ctx, s.logger).Info("login failed", "username", username)
		}
		return "", err
	}
	return s.tokens.Issue(ctx, user.Username, s.tokenLifetime)
}

// ResolveCurrentUser returns the user named by token.
//
// An expired but correctly signed token disables its user and yields
// ErrTokenExpired. Every other token or lookup failure yields ErrUnauthorized.
func (s *Service) ResolveCurrentUser(ctx context.Context, token string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	claims, err := s.tokens.Validate(ctx, token)
	switch {
	case errors.Is(err, ErrExpired):
		if disableErr := s.DisableUser(ctx, claims.Subject); disableErr != nil &&
			!store.IsNotFoundError(disableErr) {
			log.Error("failed to disable user after token expiry",
				"username", claims.Subject,
				"error", redact.Error(disableErr))
			return nil, fmt.Errorf("failed to disable user: %w", disableErr)
		}
		return nil, ErrTokenExpired
	case err != nil:
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// RequireActiveUser passes user through unless it is disabled.
func (s *Service) RequireActiveUser(user *domain.User) (*domain.User, error) {
	if user == nil || !user.Active() {
		return nil, ErrInactiveUser
	}
	return user, nil
}

// DisableUser sets the disabled flag of the named user. Already disabled
// users are left untouched.
func (s *Service) DisableUser(ctx context.Context, username string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user.Disabled {
		return nil
	}

	if err := s.users.SetDisabled(ctx, user.ID, true); err != nil {
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Warn("user disabled after token expiry",
		"user_id", user.ID,
		"username", user.Username)
	return nil
}
