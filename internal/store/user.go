package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
// Username and email uniqueness is enforced by the store itself, never by a
// prior existence check.
type UserStore interface {
	// Create saves a new user.
	// Returns ErrUserExists if the username or email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// SetDisabled flips the disabled flag of the named user.
	// Returns ErrUserNotFound if the user does not exist.
	SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error

	// ListActive returns every enabled user ordered by creation time.
	ListActive(ctx context.Context) ([]*domain.User, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
