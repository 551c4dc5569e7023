package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		token, err := GenerateToken(TokenSize256)
		require.NoError(t, err)
		require.Len(t, token, 43)
		require.NotContains(t, seen, token)
		seen[token] = struct{}{}
	}

	short, err := GenerateToken(TokenSize128)
	require.NoError(t, err)
	require.Len(t, short, 22)
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestFingerprintToken(t *testing.T) {
	a := FingerprintToken("token-a")
	require.Equal(t, a, FingerprintToken("token-a"))
	require.NotEqual(t, a, FingerprintToken("token-b"))
	require.Len(t, a, 43)

	require.True(t, MatchesFingerprint("token-a", a))
	require.False(t, MatchesFingerprint("token-b", a))
}

func TestNumericCode(t *testing.T) {
	for range 200 {
		code, err := NumericCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, c := range code {
			require.True(t, c >= '0' && c <= '9', code)
		}
	}
}
