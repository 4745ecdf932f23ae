// Package blacklist is the deny-list for access tokens revoked before
// their natural expiry. Entries are keyed by the raw token and retained
// only until the token's own expiry claim, so the list stays bounded by
// the access TTL and can live in a fast key-value layer separate from
// the relational store.
package blacklist

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps storage faults and timeouts. A failed lookup is
// never reported as "not blacklisted".
var ErrUnavailable = errors.New("blacklist store unavailable")

// Store is the persistence contract for blacklisted access tokens.
type Store interface {
	// Add records token as revoked until expiresAt. An expiry already
	// in the past is not stored; duplicate adds are no-ops (first
	// writer wins).
	Add(ctx context.Context, token string, expiresAt time.Time) error

	// Contains reports whether token is blacklisted.
	Contains(ctx context.Context, token string) (bool, error)

	// DeleteExpired removes entries past their retention and reports
	// how many were deleted. Backends with native key expiry may
	// report zero.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
