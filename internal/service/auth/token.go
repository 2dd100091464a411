package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/taskhub-api/internal/platform/logger"
)

// DefaultTokenLifetime applies when Issue is called without a lifetime.
const DefaultTokenLifetime = 15 * time.Minute

// TokenService issues and validates bearer tokens.
type TokenService interface {
	// Issue signs a token for subject that expires after lifetime.
	// A non-positive lifetime means DefaultTokenLifetime.
	Issue(ctx context.Context, subject string, lifetime time.Duration) (string, error)

	// Validate verifies the signature and claims of token. On ErrExpired the
	// returned claims are populated so the caller can act on the subject.
	Validate(ctx context.Context, token string) (*Claims, error)
}

// Claims is the content of a bearer token.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// hmacTokenService is an implementation of TokenService using HMAC-SHA256 signing.
type hmacTokenService struct {
	signingKey []byte
	timeFunc   func() time.Time
}

var _ TokenService = (*hmacTokenService)(nil)

// NewTokenService creates a token service signing with secret.
func NewTokenService(secret string) (TokenService, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}
	return &hmacTokenService{
		signingKey: []byte(secret),
		timeFunc:   time.Now,
	}, nil
}

// Issue implements TokenService.
func (s *hmacTokenService) Issue(ctx context.Context, subject string, lifetime time.Duration) (string, error) {
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(s.timeFunc().UTC().Add(lifetime)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign token",
			"error", err,
			"signing_method", jwt.SigningMethodHS256.Name)
		return "", fmt.Errorf("failed to sign token with HMAC-SHA256: %w", err)
	}
	return signed, nil
}

// Validate implements TokenService. Only the signature is checked by the
// parser; presence of claims and expiry are checked here against timeFunc
// with no leeway.
func (s *hmacTokenService) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)

	var registered jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(
		tokenString,
		&registered,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		log.Debug("token validation failed: signature", "error", err)
		return nil, ErrInvalidSignature
	}

	if registered.Subject == "" || registered.ExpiresAt == nil {
		log.Debug("token validation failed: missing claims")
		return nil, ErrMissingClaims
	}

	claims := &Claims{
		Subject:   registered.Subject,
		ExpiresAt: registered.ExpiresAt.Time.UTC(),
	}

	if claims.ExpiresAt.Before(s.timeFunc().UTC()) {
		log.Debug("token validation failed: expired",
			"subject", claims.Subject,
			"expiry", claims.ExpiresAt)
		return claims, ErrExpired
	}
	return claims, nil
}
