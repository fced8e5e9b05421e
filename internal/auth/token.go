// Package auth implements the bearer token service and the request principal.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Distinct token validation failures. Callers branch on these to produce
// different log and response messages.
var (
	ErrEmptyToken   = errors.New("token is empty")
	ErrMalformed    = errors.New("token is malformed")
	ErrBadSignature = errors.New("token signature is invalid")
	ErrExpired      = errors.New("token has expired")
	ErrUnsupported  = errors.New("token type is unsupported")
)

// TokenService issues and validates signed, time-bounded bearer credentials.
type TokenService struct {
	secret     []byte
	expiration time.Duration
}

// NewTokenService creates a token service signing with secret; issued tokens
// expire after the given duration.
func NewTokenService(secret string, expiration time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

// Issue produces a signed credential for the given subject. Expiry is
// issued-at plus the configured duration.
func (s *TokenService) Issue(subject string) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("token secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(s.expiration).Unix(),
		"jti": s.newJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString(s.secret)
}

// ValidateFormat parses the token and verifies its signature and time bounds.
// It returns one of the package sentinel errors so the caller can distinguish
// the failure kind, or nil when the token is well-formed and signed.
func (s *TokenService) ValidateFormat(token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrEmptyToken
	}

	_, err := jwt.Parse(token, s.keyFunc)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUnsupported):
		return ErrUnsupported
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrBadSignature
	default:
		return ErrMalformed
	}
}

// Validate reports whether the token's embedded subject equals expectedSubject
// and the token is not expired. The signature is verified as part of parsing.
func (s *TokenService) Validate(token, expectedSubject string) bool {
	parsed, err := jwt.Parse(token, s.keyFunc)
	if err != nil || !parsed.Valid {
		return false
	}
	subject, err := parsed.Claims.GetSubject()
	if err != nil {
		return false
	}
	return subject == expectedSubject
}

// Subject extracts the subject claim without verifying the signature. It is
// only safe to call after ValidateFormat has succeeded on the same token.
func (s *TokenService) Subject(token string) (string, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", ErrMalformed
	}
	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrMalformed
	}
	return subject, nil
}

func (s *TokenService) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrUnsupported
	}
	return s.secret, nil
}

// newJTI creates a unique token identifier.
func (s *TokenService) newJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
