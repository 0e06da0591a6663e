// Package session persists the marker that lets a restarted client pick up
// the previous session: a signed, expiring token naming the user, kept in a
// transient store.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dreamcatcher/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the session user in the standard subject claim.
type Claims struct {
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session markers.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret []byte, ttl time.Duration) *Tokens {
	return &Tokens{secret: secret, ttl: ttl, now: time.Now}
}

func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue returns a marker for email.
func (t *Tokens) Issue(email string) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	})

	s, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session marker: %w", err)
	}
	return s, nil
}

// Parse returns the email of a valid marker. Expired, tampered and malformed
// markers fail with common.ErrInvalidSession.
func (t *Tokens) Parse(marker string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(marker, claims, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: expired", common.ErrInvalidSession)
		}
		return "", fmt.Errorf("%w: %w", common.ErrInvalidSession, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidSession
	}
	return claims.Subject, nil
}
