package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultTokenTTL is the lifetime of a session token.
	DefaultTokenTTL = 7 * 24 * time.Hour

	// DefaultRefreshThreshold is the remaining lifetime at or below which a
	// session token gets re-issued.
	DefaultRefreshThreshold = 2 * 24 * time.Hour
)

// Identity is the application payload carried by a token.
type Identity struct {
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	Name        string   `json:"name,omitempty"`
	Role        int64    `json:"role,omitempty"`
	Roles       []int64  `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// HasPermission reports whether the identity carries any of perms.
func (i Identity) HasPermission(perms ...string) bool {
	for _, p := range perms {
		if slices.Contains(i.Permissions, p) {
			return true
		}
	}
	return false
}

// Claims are the full token claims: registered JWT claims plus the identity.
type Claims struct {
	jwt.RegisteredClaims
	Identity
}

// NewClaims stamps identity with iat/nbf/exp relative to now.
func NewClaims(id Identity, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Identity: id,
	}
}

// ExpiresIn is how long the token has left at now. Tokens without exp never
// expire and report the max duration.
func (c Claims) ExpiresIn(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return time.Duration(1<<63 - 1)
	}
	return c.ExpiresAt.Sub(now)
}

// NewJTI returns a random URL-safe token id.
func NewJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
