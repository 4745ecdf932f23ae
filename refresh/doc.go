// Package refresh persists the long-lived, rotating refresh tokens.
// Tokens are opaque 256-bit random values; only their SHA-256 hash is
// ever stored, and a record flips from active to revoked exactly once.
// Expired rows linger until the cleanup pass deletes them; a revoked
// or expired record still reports as invalid if looked up first.
package refresh
