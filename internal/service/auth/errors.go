package auth

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskhub-api/internal/domain"
)

// Token validation errors
var (
	// ErrInvalidSignature indicates the token is malformed or its signature does not verify.
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrMissingClaims indicates the token lacks a subject or an expiry.
	ErrMissingClaims = errors.New("token is missing required claims")

	// ErrExpired indicates a correctly signed token whose expiry has passed.
	ErrExpired = errors.New("token has expired")
)

// Auth service errors
var (
	// ErrDuplicateIdentity indicates the username or email is already registered.
	ErrDuplicateIdentity = errors.New("username or email already exists")

	// ErrUnauthorized covers bad credentials and unusable tokens.
	ErrUnauthorized = errors.New("not authenticated")

	// ErrTokenExpired is returned after an expired token has disabled its user.
	ErrTokenExpired = errors.New("authentication token has expired")

	// ErrInactiveUser indicates the account is disabled.
	ErrInactiveUser = errors.New("inactive user")

	// ErrEmptyPassword rejects registration without a password.
	ErrEmptyPassword = fmt.Errorf("%w: password cannot be empty", domain.ErrValidation)
)
