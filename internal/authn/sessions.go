// Package authn issues and verifies LinkHub sessions. A session is a
// signed JWT whose subject is the profile id; identity resolution from a
// token back to a Profile happens in the API middleware.
package authn

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/starford/linkhub/internal/apperr"
)

// Sessions signs and parses session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

// NewSessions creates a session signer with the given HS256 secret and
// token lifetime.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed session token for the given profile.
func (s *Sessions) Issue(profileID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   profileID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		Issuer:    "linkhub",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("authn: sign session: %w", err)
	}
	return signed, nil
}

// Verify parses a session token and returns the profile id it names.
// Expired, malformed, or foreign-signed tokens fail with ErrUnauthorized.
func (s *Sessions) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("authn: invalid session: %w", apperr.ErrUnauthorized)
	}
	return claims.Subject, nil
}
