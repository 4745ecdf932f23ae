package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewOpaqueToken(t *testing.T) {
	first, err := NewOpaqueToken()
	require.NoError(t, err)
	second, err := NewOpaqueToken()
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.GreaterOrEqual(t, len(first), 43) // 32 bytes base64url, no padding
	require.NotContains(t, first, "=")
}

func TestHashTokenIsDeterministic(t *testing.T) {
	a := HashToken("some-token")
	b := HashToken("some-token")
	c := HashToken("other-token")

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Len(t, a, 64) // sha256 hex
	require.NotContains(t, a, "some-token")
}
