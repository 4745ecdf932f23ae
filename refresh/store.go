package refresh

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Validate when no record matches the
	// token hash.
	ErrNotFound = errors.New("refresh token not found")
	// ErrRevoked is returned when the record exists but was revoked.
	// Checked before expiry so a replayed rotated token is reported
	// precisely.
	ErrRevoked = errors.New("refresh token revoked")
	// ErrExpired is returned when the record is live but past its expiry.
	ErrExpired = errors.New("refresh token expired")
	// ErrUnavailable wraps storage faults and timeouts. It is never
	// folded into one of the rejection reasons above: a slow database
	// must surface as retryable, not as an invalid token.
	ErrUnavailable = errors.New("refresh store unavailable")
)

// Record is one stored refresh token. The plaintext token is never part
// of the record; TokenHash is the only credential material at rest.
type Record struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Active reports whether the record is neither revoked nor expired at now.
func (r Record) Active(now time.Time) bool {
	return !r.Revoked && !r.ExpiresAt.Before(now)
}

// Store is the persistence contract for refresh tokens.
//
// Implementations must make Rotate atomic: no concurrent Validate may
// observe the old record unrevoked alongside the new one, or the old
// record gone without the new one existing.
type Store interface {
	// Create generates a fresh opaque token for userID, stores its hash
	// with expiry now+TTL, and returns the plaintext exactly once.
	Create(ctx context.Context, userID string) (string, Record, error)

	// Validate hashes plaintext and looks the record up. Rejections are
	// ErrNotFound, ErrRevoked, or ErrExpired, checked in that order;
	// all three are terminal.
	Validate(ctx context.Context, plaintext string) (Record, error)

	// Rotate atomically revokes the record matching oldPlaintext and
	// creates a replacement for userID. It assumes Validate already
	// succeeded in the same logical operation and does not re-validate;
	// if the old record was concurrently revoked, Rotate fails with
	// ErrRevoked and creates nothing.
	//
	// Rotation does not track a token family: replaying an already
	// rotated token is reported as ErrRevoked on its next use, but
	// descendants issued before the replay was noticed stay live.
	Rotate(ctx context.Context, oldPlaintext, userID string) (string, Record, error)

	// Revoke marks the matching record revoked. Idempotent; a missing
	// record is a no-op, not an error.
	Revoke(ctx context.Context, plaintext string) error

	// RevokeAll revokes every live record owned by userID.
	RevokeAll(ctx context.Context, userID string) error

	// ListActive returns userID's unrevoked, unexpired records, newest
	// first.
	ListActive(ctx context.Context, userID string) ([]Record, error)

	// DeleteExpired removes records with ExpiresAt before now and
	// reports how many were deleted. Revoked-but-unexpired rows are
	// kept until natural expiry.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
