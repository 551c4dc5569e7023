package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
	"github.com/aussiebroadwan/membership/pkg/jwtx"
)

// TokenSigner signs and verifies session tokens.
type TokenSigner interface {
	jwtx.Signer
	jwtx.Verifier
}

// TokenService issues stateless session tokens. Nothing is stored server
// side: a token stays valid until its exp, and a sliding refresh re-issues it
// when little lifetime is left.
type TokenService struct {
	Signer           TokenSigner
	TTL              time.Duration
	RefreshThreshold time.Duration
	Now              func() time.Time
}

func (s *TokenService) ttl() time.Duration {
	if s.TTL == 0 {
		return jwtx.DefaultTokenTTL
	}
	return s.TTL
}

func (s *TokenService) threshold() time.Duration {
	if s.RefreshThreshold == 0 {
		return jwtx.DefaultRefreshThreshold
	}
	return s.RefreshThreshold
}

// Issue signs id for ttl. A zero ttl uses the configured session lifetime; a
// negative one yields an already expired token.
func (s *TokenService) Issue(id jwtx.Identity, ttl time.Duration) (string, jwtx.Claims, error) {
	if ttl == 0 {
		ttl = s.ttl()
	}
	token, claims, err := s.Signer.Sign(id, ttl)
	if err != nil {
		return "", jwtx.Claims{}, mapTokenError(err)
	}
	return token, claims, nil
}

// Verify checks token and returns its claims.
func (s *TokenService) Verify(token string) (jwtx.Claims, error) {
	claims, err := s.Signer.Verify(token)
	if err != nil {
		return jwtx.Claims{}, mapTokenError(err)
	}
	return claims, nil
}

// RefreshIfNearExpiry returns a fresh token with the same identity when token
// has at most RefreshThreshold left, and token itself otherwise. The bool
// reports whether a new token was issued.
func (s *TokenService) RefreshIfNearExpiry(token string) (string, jwtx.Claims, bool, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return "", jwtx.Claims{}, false, err
	}
	return s.refresh(token, claims)
}

func (s *TokenService) refresh(token string, claims jwtx.Claims) (string, jwtx.Claims, bool, error) {
	if claims.ExpiresIn(clock(s.Now)) > s.threshold() {
		return token, claims, false, nil
	}
	fresh, freshClaims, err := s.Issue(claims.Identity, 0)
	if err != nil {
		return "", jwtx.Claims{}, false, err
	}
	return fresh, freshClaims, true, nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwtx.ErrMissingSecret):
		return fmt.Errorf("%w: %w", ErrTokenConfig, err)
	case errors.Is(err, jwtx.ErrExpired):
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	case errors.Is(err, jwtx.ErrMalformed):
		return fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	default:
		return fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
}

// identityFor builds the token payload of a member.
func identityFor(m domain.Member) jwtx.Identity {
	return jwtx.Identity{
		UserID:      m.ID,
		Email:       m.Email,
		Name:        m.Profile.DisplayName(),
		Role:        m.PrimaryRole(),
		Roles:       m.RoleIDs(),
		Permissions: m.PermissionNames(),
	}
}
