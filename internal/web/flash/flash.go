// Package flash signs the one-shot notices carried in a cookie between a
// mutation and the next rendered page.
package flash

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

const (
	// CookieName is the cookie carrying the signed notice
	CookieName = "flash"
	// DefaultTTL is how long a notice stays valid
	DefaultTTL = 60 * time.Second

	keyInfo = "microblog flash v1"
)

// Signer signs and verifies flash notices with a key derived from the app secret.
type Signer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

type claims struct {
	Message string `json:"msg"`
	jwt.RegisteredClaims
}

// NewSigner derives a signing key from secret
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("secret key must not be empty")
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive flash key: %w", err)
	}

	return &Signer{key: key, ttl: DefaultTTL, now: time.Now}, nil
}

// TTL returns how long signed notices stay valid
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// Sign returns a token carrying message
func (s *Signer) Sign(message string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Message: message,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign flash message: %w", err)
	}
	return signed, nil
}

// Verify returns the message of a token produced by Sign.
// Tampered, foreign or expired tokens are rejected.
func (s *Signer) Verify(token string) (string, error) {
	c := &claims{}
	_, err := jwt.ParseWithClaims(token, c,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("invalid flash message: %w", err)
	}
	return c.Message, nil
}
