package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Field limits enforced on users.
const (
	MaxUsernameLength = 50
	MaxEmailLength    = 50
	MaxFullNameLength = 50
)

// User validation errors
var (
	ErrEmptyUserID         = validationError("user ID cannot be empty")
	ErrEmptyUsername       = validationError("username cannot be empty")
	ErrUsernameTooLong     = validationError("username must be at most 50 characters long")
	ErrEmptyEmail          = validationError("email cannot be empty")
	ErrInvalidEmail        = validationError("invalid email format")
	ErrEmailTooLong        = validationError("email must be at most 50 characters long")
	ErrFullNameTooLong     = validationError("full name must be at most 50 characters long")
	ErrEmptyHashedPassword = validationError("hashed password cannot be empty")
)

// User represents a registered account.
// HashedPassword is never serialized; use Public for anything leaving the service.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name,omitempty"`
	HashedPassword string    `json:"-"`
	Disabled       bool      `json:"disabled"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PublicUser is the view of a user returned to clients.
type PublicUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	FullName *string   `json:"full_name"`
}

// NewUser creates an enabled User with a fresh ID.
// The password must already be hashed.
func NewUser(username, email, fullName, hashedPassword string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:             uuid.New(),
		Username:       NormalizeUsername(username),
		Email:          strings.TrimSpace(email),
		FullName:       strings.TrimSpace(fullName),
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	switch {
	case u.Username == "":
		return ErrEmptyUsername
	case utf8.RuneCountInString(u.Username) > MaxUsernameLength:
		return ErrUsernameTooLong
	}

	switch {
	case u.Email == "":
		return ErrEmptyEmail
	case utf8.RuneCountInString(u.Email) > MaxEmailLength:
		return ErrEmailTooLong
	case !validEmail(u.Email):
		return ErrInvalidEmail
	}

	if utf8.RuneCountInString(u.FullName) > MaxFullNameLength {
		return ErrFullNameTooLong
	}

	if u.HashedPassword == "" {
		return ErrEmptyHashedPassword
	}

	return nil
}

// Active reports whether the account may use the API.
func (u *User) Active() bool {
	return !u.Disabled
}

// Public strips credentials and bookkeeping fields.
func (u *User) Public() PublicUser {
	p := PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
	if u.FullName != "" {
		name := u.FullName
		p.FullName = &name
	}
	return p
}

// NormalizeUsername is applied to usernames both when storing and when looking them up.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

var emailValidator = validator.New()

// validEmail applies the same "email" rule the API uses for request bodies.
func validEmail(email string) bool {
	return emailValidator.Var(email, "email") == nil
}
