package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/membership/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func testIdentity() jwtx.Identity {
	return jwtx.Identity{
		UserID:      "01J9ZB6Y6VQ4W8R5D0CQJ1K2M3",
		Email:       "rhea@example.com",
		Name:        "Rhea",
		Role:        2,
		Roles:       []int64{2},
		Permissions: []string{"view_users", "invite_members"},
	}
}

func TestRoundTrip(t *testing.T) {
	h := jwtx.NewHS256("test-secret", "membership")

	for _, ttl := range []time.Duration{time.Second, time.Hour, jwtx.DefaultTokenTTL} {
		token, issued, err := h.Sign(testIdentity(), ttl)
		require.NoError(t, err)

		claims, err := h.Verify(token)
		require.NoError(t, err)
		require.Equal(t, testIdentity(), claims.Identity)
		require.Equal(t, issued.ID, claims.ID)
		require.Equal(t, "membership", claims.Issuer)
		require.Equal(t, testIdentity().UserID, claims.Subject)
	}
}

func TestVerifyErrors(t *testing.T) {
	h := jwtx.NewHS256("test-secret", "membership")

	t.Run("expired", func(t *testing.T) {
		token, _, err := h.Sign(testIdentity(), -time.Second)
		require.NoError(t, err)

		_, err = h.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := jwtx.NewHS256("other-secret", "membership")
		token, _, err := other.Sign(testIdentity(), time.Hour)
		require.NoError(t, err)

		_, err = h.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("tampered payload", func(t *testing.T) {
		token, _, err := h.Sign(testIdentity(), time.Hour)
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		forged, _, err := jwtx.NewHS256("x", "membership").Sign(jwtx.Identity{UserID: "someone-else"}, time.Hour)
		require.NoError(t, err)
		parts[1] = strings.Split(forged, ".")[1]

		_, err = h.Verify(strings.Join(parts, "."))
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, raw := range []string{"", "abc", "a.b", "a.b.c"} {
			_, err := h.Verify(raw)
			require.ErrorIs(t, err, jwtx.ErrMalformed, raw)
		}
	})

	t.Run("algorithm none", func(t *testing.T) {
		claims := jwtx.NewClaims(testIdentity(), "membership", time.Hour, time.Now())
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = h.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		token, _, err := jwtx.NewHS256("test-secret", "elsewhere").Sign(testIdentity(), time.Hour)
		require.NoError(t, err)

		_, err = h.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})
}

func TestMissingSecret(t *testing.T) {
	h := jwtx.NewHS256("", "membership")
	require.False(t, h.Ready())
	require.True(t, jwtx.NewHS256("s", "").Ready())

	_, _, err := h.Sign(testIdentity(), time.Hour)
	require.ErrorIs(t, err, jwtx.ErrMissingSecret)

	_, err = h.Verify("a.b.c")
	require.ErrorIs(t, err, jwtx.ErrMissingSecret)
}

func TestClockAndExpiresIn(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	h := jwtx.NewHS256("test-secret", "").WithClock(func() time.Time { return now })

	token, claims, err := h.Sign(testIdentity(), jwtx.DefaultTokenTTL)
	require.NoError(t, err)
	require.Equal(t, jwtx.DefaultTokenTTL, claims.ExpiresIn(now))

	now = now.Add(jwtx.DefaultTokenTTL + time.Second)
	_, err = h.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestHasPermission(t *testing.T) {
	id := testIdentity()
	require.True(t, id.HasPermission("invite_members"))
	require.True(t, id.HasPermission("nope", "view_users"))
	require.False(t, id.HasPermission("manage_system"))
}
