package password

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}
}

func TestHashVerifyRoundTrip(t *testing.T) {
	hasher, err := NewArgon2(testConfig())
	require.NoError(t, err)

	hash, err := hasher.Hash("correct-horse")
	require.NoError(t, err)
	require.NotContains(t, hash, "correct-horse")

	ok, err := hasher.Verify("correct-horse", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = hasher.Verify("wrong-horse!", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	hasher, err := NewArgon2(testConfig())
	require.NoError(t, err)

	first, err := hasher.Hash("correct-horse")
	require.NoError(t, err)
	second, err := hasher.Hash("correct-horse")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestHashRejectsShortPassword(t *testing.T) {
	hasher, err := NewArgon2(testConfig())
	require.NoError(t, err)

	_, err = hasher.Hash("short")
	require.Error(t, err)
}

func TestVerifyRejectsMangledHash(t *testing.T) {
	hasher, err := NewArgon2(testConfig())
	require.NoError(t, err)

	for _, encoded := range []string{
		"",
		"plain-text",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaA",
	} {
		_, err := hasher.Verify("whatever-pass", encoded)
		require.Error(t, err, "encoded=%q", encoded)
	}
}

func TestNewArgon2Validation(t *testing.T) {
	cfg := testConfig()
	cfg.Memory = 1
	_, err := NewArgon2(cfg)
	require.Error(t, err)

	cfg = testConfig()
	cfg.SaltLength = 8
	_, err = NewArgon2(cfg)
	require.Error(t, err)
}
