// Package auth implements the pre-session authentication flow of spec.md
// §4.6: Login/Register request handling, Argon2id verification, and
// JWT-backed session tokens. Grounded on server/auth_token.go's fixed,
// signed, time-boxed token shape (UID + expiry + serial number + signature)
// re-expressed as a golang-jwt/jwt/v5 compact token instead of the
// teacher's hand-rolled binary layout, since this spec's config already
// names JWT_SECRET (spec.md §6).
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of a lair-chat session token: the three semantic
// fields the teacher's binary token also carries (uid, a session
// identifier standing in for its serial number, and an expiry).
type Claims struct {
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies session tokens under one HMAC secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer builds a TokenIssuer. secret should come from
// internal/config's JWTSecret; ttl is the token lifetime.
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl}
}

// Issue mints a signed token for userID/sessionID, expiring after the
// issuer's configured ttl.
func (t *TokenIssuer) Issue(userID, sessionID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(t.ttl)
	claims := Claims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a token, returning its claims on success.
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}
