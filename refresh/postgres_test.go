package refresh

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/zaidhasan/authcore/internal"
)

var (
	insertPattern     = `(?s)^INSERT\s+INTO\s+refresh_tokens\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*FALSE,\s*\$5\)\s*$`
	selectPattern     = `(?s)^SELECT\s+.*\bFROM refresh_tokens WHERE token_hash = \$1\s*$`
	revokePattern     = `(?s)^UPDATE refresh_tokens SET revoked = TRUE.*WHERE token_hash = \$1 AND revoked = FALSE\s*$`
	revokeAllPattern  = `(?s)^UPDATE refresh_tokens SET revoked = TRUE.*WHERE user_id = \$1 AND revoked = FALSE\s*$`
	deleteExpPattern  = `(?s)^DELETE FROM refresh_tokens WHERE expires_at < \$1\s*$`
	listActivePattern = `(?s)^SELECT\s+.*\bFROM refresh_tokens\s+WHERE user_id = \$1 AND revoked = FALSE AND expires_at >= \$2\s+ORDER BY created_at DESC\s*$`
)

func newPostgresWithMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, *sql.DB, *fakeClock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clk := newFakeClock()
	s, err := NewPostgresStore(db, time.Hour, WithNowFunc(clk.Now))
	require.NoError(t, err)
	return s, mock, db, clk
}

func recordRows(rec Record) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "revoked", "revoked_at", "created_at"})
	var revokedAt any
	if rec.RevokedAt != nil {
		revokedAt = *rec.RevokedAt
	}
	return rows.AddRow(rec.ID, rec.UserID, rec.TokenHash, rec.ExpiresAt, rec.Revoked, revokedAt, rec.CreatedAt)
}

func TestPostgresCreate(t *testing.T) {
	s, mock, _, clk := newPostgresWithMock(t)

	mock.ExpectExec(insertPattern).
		WithArgs(sqlmock.AnyArg(), "user-1", sqlmock.AnyArg(), clk.Now().Add(time.Hour), clk.Now()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	plaintext, rec, err := s.Create(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, internal.HashToken(plaintext), rec.TokenHash)
	require.Equal(t, clk.Now().Add(time.Hour), rec.ExpiresAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateDBError(t *testing.T) {
	s, mock, _, _ := newPostgresWithMock(t)

	mock.ExpectExec(insertPattern).
		WillReturnError(errors.New("connection refused"))

	_, _, err := s.Create(context.Background(), "user-1")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestPostgresValidate(t *testing.T) {
	s, mock, _, clk := newPostgresWithMock(t)

	rec := Record{
		ID:        "rec-1",
		UserID:    "user-1",
		TokenHash: internal.HashToken("tok"),
		ExpiresAt: clk.Now().Add(time.Hour),
		CreatedAt: clk.Now(),
	}
	mock.ExpectQuery(selectPattern).
		WithArgs(rec.TokenHash).
		WillReturnRows(recordRows(rec))

	got, err := s.Validate(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, rec.ID, got.ID)
}

func TestPostgresValidateRejections(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		s, mock, _, _ := newPostgresWithMock(t)
		mock.ExpectQuery(selectPattern).WillReturnError(sql.ErrNoRows)

		_, err := s.Validate(context.Background(), "tok")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("revoked", func(t *testing.T) {
		s, mock, _, clk := newPostgresWithMock(t)
		revokedAt := clk.Now()
		rec := Record{
			ID: "rec-1", UserID: "user-1", TokenHash: internal.HashToken("tok"),
			ExpiresAt: clk.Now().Add(time.Hour), Revoked: true, RevokedAt: &revokedAt, CreatedAt: clk.Now(),
		}
		mock.ExpectQuery(selectPattern).WillReturnRows(recordRows(rec))

		_, err := s.Validate(context.Background(), "tok")
		require.ErrorIs(t, err, ErrRevoked)
	})

	t.Run("expired", func(t *testing.T) {
		s, mock, _, clk := newPostgresWithMock(t)
		rec := Record{
			ID: "rec-1", UserID: "user-1", TokenHash: internal.HashToken("tok"),
			ExpiresAt: clk.Now().Add(-time.Minute), CreatedAt: clk.Now().Add(-2 * time.Hour),
		}
		mock.ExpectQuery(selectPattern).WillReturnRows(recordRows(rec))

		_, err := s.Validate(context.Background(), "tok")
		require.ErrorIs(t, err, ErrExpired)
	})

	t.Run("storage fault is transient, not a rejection", func(t *testing.T) {
		s, mock, _, _ := newPostgresWithMock(t)
		mock.ExpectQuery(selectPattern).WillReturnError(context.DeadlineExceeded)

		_, err := s.Validate(context.Background(), "tok")
		require.ErrorIs(t, err, ErrUnavailable)
		require.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestPostgresRotate(t *testing.T) {
	s, mock, _, clk := newPostgresWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(revokePattern).
		WithArgs(internal.HashToken("old-tok"), clk.Now()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertPattern).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	newToken, rec, err := s.Rotate(context.Background(), "old-tok", "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, newToken)
	require.Equal(t, "user-1", rec.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRotateLosesRace(t *testing.T) {
	s, mock, _, _ := newPostgresWithMock(t)

	// Zero rows revoked: the guard saw revoked = TRUE already. The
	// transaction rolls back and no replacement row is inserted.
	mock.ExpectBegin()
	mock.ExpectExec(revokePattern).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, _, err := s.Rotate(context.Background(), "old-tok", "user-1")
	require.ErrorIs(t, err, ErrRevoked)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRevokeIgnoresMissing(t *testing.T) {
	s, mock, _, _ := newPostgresWithMock(t)

	mock.ExpectExec(revokePattern).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Revoke(context.Background(), "no-such-token"))
}

func TestPostgresRevokeAll(t *testing.T) {
	s, mock, _, clk := newPostgresWithMock(t)

	mock.ExpectExec(revokeAllPattern).
		WithArgs("user-1", clk.Now()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, s.RevokeAll(context.Background(), "user-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListActive(t *testing.T) {
	s, mock, _, clk := newPostgresWithMock(t)

	rec := Record{
		ID: "rec-1", UserID: "user-1", TokenHash: "hash",
		ExpiresAt: clk.Now().Add(time.Hour), CreatedAt: clk.Now(),
	}
	mock.ExpectQuery(listActivePattern).
		WithArgs("user-1", clk.Now()).
		WillReturnRows(recordRows(rec))

	records, err := s.ListActive(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "rec-1", records[0].ID)
}

func TestPostgresDeleteExpired(t *testing.T) {
	s, mock, _, clk := newPostgresWithMock(t)

	mock.ExpectExec(deleteExpPattern).
		WithArgs(clk.Now()).
		WillReturnResult(sqlmock.NewResult(0, 7))

	deleted, err := s.DeleteExpired(context.Background(), clk.Now())
	require.NoError(t, err)
	require.EqualValues(t, 7, deleted)
}
