package refresh

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zaidhasan/authcore/internal"
	"github.com/zaidhasan/authcore/internal/dbx"
)

// PostgresStore persists refresh tokens in a refresh_tokens table
// (see the migrations package for the schema). It relies on the
// database for single-row atomicity: revocation is a conditional
// UPDATE guarded by revoked = FALSE, and rotation runs revoke+insert
// inside one transaction.
type PostgresStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// PostgresOption customizes a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithNowFunc overrides the store's time source. Intended for tests.
func WithNowFunc(now func() time.Time) PostgresOption {
	return func(s *PostgresStore) { s.now = now }
}

// NewPostgresStore returns a store issuing tokens with the given TTL.
func NewPostgresStore(db *sql.DB, ttl time.Duration, opts ...PostgresOption) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("nil database handle")
	}
	if ttl <= 0 {
		return nil, errors.New("invalid refresh TTL configuration")
	}

	s := &PostgresStore{db: db, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

const recordColumns = "id, user_id, token_hash, expires_at, revoked, revoked_at, created_at"

func (s *PostgresStore) Create(ctx context.Context, userID string) (string, Record, error) {
	return s.insert(ctx, s.db, userID)
}

func (s *PostgresStore) insert(ctx context.Context, db dbx.DBTX, userID string) (string, Record, error) {
	plaintext, err := internal.NewOpaqueToken()
	if err != nil {
		return "", Record{}, err
	}

	now := s.now()
	rec := Record{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: internal.HashToken(plaintext),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	query := `INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked, created_at)
	          VALUES ($1, $2, $3, $4, FALSE, $5)`

	if _, err := db.ExecContext(ctx, query, rec.ID, rec.UserID, rec.TokenHash, rec.ExpiresAt, rec.CreatedAt); err != nil {
		return "", Record{}, fmt.Errorf("%w: insert: %v", ErrUnavailable, err)
	}

	return plaintext, rec, nil
}

func (s *PostgresStore) Validate(ctx context.Context, plaintext string) (Record, error) {
	hash := internal.HashToken(plaintext)

	query := `SELECT ` + recordColumns + ` FROM refresh_tokens WHERE token_hash = $1`

	var rec Record
	var revokedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, hash).Scan(
		&rec.ID, &rec.UserID, &rec.TokenHash, &rec.ExpiresAt, &rec.Revoked, &revokedAt, &rec.CreatedAt,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Record{}, ErrNotFound
	case err != nil:
		return Record{}, fmt.Errorf("%w: lookup: %v", ErrUnavailable, err)
	}

	if revokedAt.Valid {
		t := revokedAt.Time
		rec.RevokedAt = &t
	}

	if rec.Revoked {
		return Record{}, ErrRevoked
	}
	if rec.ExpiresAt.Before(s.now()) {
		return Record{}, ErrExpired
	}

	return rec, nil
}

func (s *PostgresStore) Rotate(ctx context.Context, oldPlaintext, userID string) (string, Record, error) {
	oldHash := internal.HashToken(oldPlaintext)

	var plaintext string
	var rec Record

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2
		          WHERE token_hash = $1 AND revoked = FALSE`

		res, err := tx.ExecContext(ctx, query, oldHash, s.now())
		if err != nil {
			return fmt.Errorf("%w: revoke old: %v", ErrUnavailable, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: revoke old: %v", ErrUnavailable, err)
		}
		if affected == 0 {
			// Lost the race to a concurrent rotation (or the record is
			// already revoked). Abort without creating a replacement.
			return ErrRevoked
		}

		plaintext, rec, err = s.insert(ctx, tx, userID)
		return err
	})
	if err != nil {
		return "", Record{}, err
	}

	return plaintext, rec, nil
}

func (s *PostgresStore) Revoke(ctx context.Context, plaintext string) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2
	          WHERE token_hash = $1 AND revoked = FALSE`

	if _, err := s.db.ExecContext(ctx, query, internal.HashToken(plaintext), s.now()); err != nil {
		return fmt.Errorf("%w: revoke: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) RevokeAll(ctx context.Context, userID string) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2
	          WHERE user_id = $1 AND revoked = FALSE`

	if _, err := s.db.ExecContext(ctx, query, userID, s.now()); err != nil {
		return fmt.Errorf("%w: revoke all: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) ListActive(ctx context.Context, userID string) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM refresh_tokens
	          WHERE user_id = $1 AND revoked = FALSE AND expires_at >= $2
	          ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: list active: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var revokedAt sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.TokenHash, &rec.ExpiresAt, &rec.Revoked, &revokedAt, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: list active: %v", ErrUnavailable, err)
		}
		if revokedAt.Valid {
			t := revokedAt.Time
			rec.RevokedAt = &t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list active: %v", ErrUnavailable, err)
	}

	return records, nil
}

func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("%w: delete expired: %v", ErrUnavailable, err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: delete expired: %v", ErrUnavailable, err)
	}
	return deleted, nil
}
