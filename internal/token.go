package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// opaqueTokenSize is the entropy of a refresh token in bytes.
const opaqueTokenSize = 32

// NewOpaqueToken returns a cryptographically random, URL-safe token with
// 256 bits of entropy. The plaintext is handed to the client exactly once;
// the server keeps only the hash (see HashToken).
func NewOpaqueToken() (string, error) {
	var raw [opaqueTokenSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

// HashToken returns the SHA-256 hex digest of token. The same function is
// applied at write and read time, so the stored hash is the lookup key.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
