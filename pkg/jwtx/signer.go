package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Signer issues signed tokens.
type Signer interface {
	Sign(id Identity, ttl time.Duration) (string, Claims, error)
}

// HS256 signs and verifies tokens with a shared HMAC-SHA256 secret. There is no
// server-side session state: a token is valid for as long as its signature and
// exp say so.
type HS256 struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewHS256 returns an HS256 signer/verifier. An empty secret is accepted here
// and reported as ErrMissingSecret on first use.
func NewHS256(secret, issuer string) *HS256 {
	return &HS256{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for iat/exp and expiry checks.
func (h *HS256) WithClock(now func() time.Time) *HS256 {
	h.now = now
	return h
}

// Sign issues a token for id valid for ttl. A non-positive ttl produces an
// already expired token.
func (h *HS256) Sign(id Identity, ttl time.Duration) (string, Claims, error) {
	if len(h.secret) == 0 {
		return "", Claims{}, ErrMissingSecret
	}

	claims := NewClaims(id, h.issuer, ttl, h.now().UTC())
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", Claims{}, err
	}
	return token, claims, nil
}

// Ready reports whether a signing secret is configured.
func (h *HS256) Ready() bool { return len(h.secret) > 0 }
