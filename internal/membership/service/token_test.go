package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/membership/pkg/jwtx"
)

func testIdentity() jwtx.Identity {
	return jwtx.Identity{
		UserID:      "01JTESTUSER",
		Email:       "a@example.com",
		Name:        "Ann",
		Role:        2,
		Roles:       []int64{2},
		Permissions: []string{"view_users", "invite_members"},
	}
}

func TestTokenRoundTrip(t *testing.T) {
	e := newEnv(t)

	for _, ttl := range []time.Duration{time.Minute, time.Hour, 7 * 24 * time.Hour} {
		token, _, err := e.tokens.Issue(testIdentity(), ttl)
		require.NoError(t, err)

		claims, err := e.tokens.Verify(token)
		require.NoError(t, err)
		require.Equal(t, testIdentity(), claims.Identity)
		require.Equal(t, t0.Add(ttl), claims.ExpiresAt.Time.UTC())
		require.Equal(t, t0, claims.IssuedAt.Time.UTC())
	}
}

func TestTokenDefaultTTL(t *testing.T) {
	e := newEnv(t)

	_, claims, err := e.tokens.Issue(testIdentity(), 0)
	require.NoError(t, err)
	require.Equal(t, t0.Add(jwtx.DefaultTokenTTL), claims.ExpiresAt.Time.UTC())
}

func TestTokenErrors(t *testing.T) {
	e := newEnv(t)

	t.Run("expired", func(t *testing.T) {
		token, _, err := e.tokens.Issue(testIdentity(), -time.Second)
		require.NoError(t, err)

		_, err = e.tokens.Verify(token)
		require.ErrorIs(t, err, ErrTokenExpired)
		require.ErrorIs(t, err, jwtx.ErrExpired)
		require.Equal(t, ErrUnauthorized, Kind(err))
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := e.tokens.Verify("not-a-token")
		require.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("tampered signature", func(t *testing.T) {
		token, _, err := e.tokens.Issue(testIdentity(), time.Hour)
		require.NoError(t, err)

		i := strings.LastIndex(token, ".") + 5
		replacement := "A"
		if token[i] == 'A' {
			replacement = "B"
		}
		_, err = e.tokens.Verify(token[:i] + replacement + token[i+1:])
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("foreign secret", func(t *testing.T) {
		other := &TokenService{Signer: jwtx.NewHS256("other-secret", "membership").WithClock(e.clock.Now)}
		token, _, err := other.Issue(testIdentity(), time.Hour)
		require.NoError(t, err)

		_, err = e.tokens.Verify(token)
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("missing secret", func(t *testing.T) {
		unset := &TokenService{Signer: jwtx.NewHS256("", "membership")}
		_, _, err := unset.Issue(testIdentity(), time.Hour)
		require.ErrorIs(t, err, ErrTokenConfig)
		require.ErrorIs(t, err, jwtx.ErrMissingSecret)
		require.Equal(t, ErrConfig, Kind(err))
	})
}

func TestRefreshIfNearExpiry(t *testing.T) {
	e := newEnv(t)

	token, _, err := e.tokens.Issue(testIdentity(), 0)
	require.NoError(t, err)

	same, _, refreshed, err := e.tokens.RefreshIfNearExpiry(token)
	require.NoError(t, err)
	require.False(t, refreshed)
	require.Equal(t, token, same)

	// Six of seven days later only one day is left.
	e.clock.Advance(6 * 24 * time.Hour)

	fresh, claims, refreshed, err := e.tokens.RefreshIfNearExpiry(token)
	require.NoError(t, err)
	require.True(t, refreshed)
	require.NotEqual(t, token, fresh)
	require.Equal(t, testIdentity(), claims.Identity)
	require.Equal(t, e.clock.Now().Add(jwtx.DefaultTokenTTL), claims.ExpiresAt.Time.UTC())

	// Past expiry nothing is refreshed.
	e.clock.Advance(2 * 24 * time.Hour)
	_, _, _, err = e.tokens.RefreshIfNearExpiry(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}
