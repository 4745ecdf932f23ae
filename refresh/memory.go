package refresh

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zaidhasan/authcore/internal"
)

// MemoryStore is an in-process Store with the same semantics as
// PostgresStore. It backs tests and single-node deployments that do
// not want a database; the mutex is held across validate/rotate pairs
// so two concurrent rotations of one token cannot both succeed.
type MemoryStore struct {
	mu      sync.Mutex
	byHash  map[string]*Record
	ttl     time.Duration
	nowFunc func() time.Time
}

// MemoryOption customizes a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryNowFunc overrides the store's time source. Intended for tests.
func WithMemoryNowFunc(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.nowFunc = now }
}

// NewMemoryStore returns a store issuing tokens with the given TTL.
func NewMemoryStore(ttl time.Duration, opts ...MemoryOption) (*MemoryStore, error) {
	if ttl <= 0 {
		return nil, errors.New("invalid refresh TTL configuration")
	}

	s := &MemoryStore{
		byHash:  make(map[string]*Record),
		ttl:     ttl,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *MemoryStore) Create(ctx context.Context, userID string) (string, Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(userID)
}

func (s *MemoryStore) createLocked(userID string) (string, Record, error) {
	plaintext, err := internal.NewOpaqueToken()
	if err != nil {
		return "", Record{}, err
	}

	now := s.nowFunc()
	rec := Record{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: internal.HashToken(plaintext),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	s.byHash[rec.TokenHash] = &rec

	return plaintext, rec, nil
}

func (s *MemoryStore) Validate(ctx context.Context, plaintext string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byHash[internal.HashToken(plaintext)]
	if !ok {
		return Record{}, ErrNotFound
	}
	if rec.Revoked {
		return Record{}, ErrRevoked
	}
	if rec.ExpiresAt.Before(s.nowFunc()) {
		return Record{}, ErrExpired
	}

	return *rec, nil
}

func (s *MemoryStore) Rotate(ctx context.Context, oldPlaintext, userID string) (string, Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.byHash[internal.HashToken(oldPlaintext)]
	if !ok || old.Revoked {
		return "", Record{}, ErrRevoked
	}

	now := s.nowFunc()
	old.Revoked = true
	old.RevokedAt = &now

	return s.createLocked(userID)
}

func (s *MemoryStore) Revoke(ctx context.Context, plaintext string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byHash[internal.HashToken(plaintext)]
	if !ok || rec.Revoked {
		return nil
	}

	now := s.nowFunc()
	rec.Revoked = true
	rec.RevokedAt = &now
	return nil
}

func (s *MemoryStore) RevokeAll(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	for _, rec := range s.byHash {
		if rec.UserID == userID && !rec.Revoked {
			rec.Revoked = true
			revokedAt := now
			rec.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (s *MemoryStore) ListActive(ctx context.Context, userID string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	var records []Record
	for _, rec := range s.byHash {
		if rec.UserID == userID && rec.Active(now) {
			records = append(records, *rec)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

func (s *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for hash, rec := range s.byHash {
		if rec.ExpiresAt.Before(now) {
			delete(s.byHash, hash)
			deleted++
		}
	}
	return deleted, nil
}
