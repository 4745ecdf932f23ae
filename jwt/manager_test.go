package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testConfig(now func() time.Time) Config {
	return Config{
		Secret:    []byte("0123456789abcdef0123456789abcdef"),
		AccessTTL: 15 * time.Minute,
		Now:       now,
	}
}

func TestNewManagerConfigValidation(t *testing.T) {
	_, err := NewManager(Config{AccessTTL: time.Minute})
	require.Error(t, err, "missing secret must be rejected")

	_, err = NewManager(Config{Secret: []byte("k"), AccessTTL: 0})
	require.Error(t, err, "non-positive TTL must be rejected")

	_, err = NewManager(Config{Secret: []byte("k"), AccessTTL: time.Minute, Leeway: 3 * time.Minute})
	require.Error(t, err, "oversized leeway must be rejected")
}

func TestCreateParseRoundTrip(t *testing.T) {
	m, err := NewManager(testConfig(nil))
	require.NoError(t, err)

	token, expiresAt, err := m.CreateAccess("user-1")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 2*time.Second)

	claims, err := m.ParseAccess(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UID)
}

func TestParseExpired(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	m, err := NewManager(testConfig(func() time.Time { return now }))
	require.NoError(t, err)

	token, _, err := m.CreateAccess("user-1")
	require.NoError(t, err)

	// Still valid just before the TTL elapses.
	now = base.Add(15*time.Minute - time.Second)
	_, err = m.ParseAccess(token)
	require.NoError(t, err)

	now = base.Add(15*time.Minute + time.Second)
	_, err = m.ParseAccess(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseWrongSecret(t *testing.T) {
	m, err := NewManager(testConfig(nil))
	require.NoError(t, err)

	other, err := NewManager(Config{
		Secret:    []byte("ffffffffffffffffffffffffffffffff"),
		AccessTTL: 15 * time.Minute,
	})
	require.NoError(t, err)

	token, _, err := other.CreateAccess("user-1")
	require.NoError(t, err)

	_, err = m.ParseAccess(token)
	require.ErrorIs(t, err, ErrTokenSignature)
}

func TestParseMalformed(t *testing.T) {
	m, err := NewManager(testConfig(nil))
	require.NoError(t, err)

	_, err = m.ParseAccess("not-a-jwt")
	require.ErrorIs(t, err, ErrTokenMalformed)

	_, err = m.ParseAccess("")
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestPeekExpiry(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m, err := NewManager(testConfig(func() time.Time { return base }))
	require.NoError(t, err)

	token, expiresAt, err := m.CreateAccess("user-1")
	require.NoError(t, err)

	peeked, ok := m.PeekExpiry(token)
	require.True(t, ok)
	require.Equal(t, expiresAt.Unix(), peeked.Unix())

	_, ok = m.PeekExpiry("garbage")
	require.False(t, ok)
}

func TestPeekExpiryIgnoresSignature(t *testing.T) {
	other, err := NewManager(Config{
		Secret:    []byte("ffffffffffffffffffffffffffffffff"),
		AccessTTL: time.Hour,
	})
	require.NoError(t, err)

	token, expiresAt, err := other.CreateAccess("user-1")
	require.NoError(t, err)

	m, err := NewManager(testConfig(nil))
	require.NoError(t, err)

	// The signature does not verify under m's secret, but the expiry
	// claim is still readable for retention sizing.
	peeked, ok := m.PeekExpiry(token)
	require.True(t, ok)
	require.Equal(t, expiresAt.Unix(), peeked.Unix())
}
