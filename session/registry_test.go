package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zaidhasan/authcore/refresh"
)

func TestActiveSessionsProjection(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	store, err := refresh.NewMemoryStore(time.Hour, refresh.WithMemoryNowFunc(func() time.Time { return now }))
	require.NoError(t, err)

	_, first, err := store.Create(ctx, "user-1")
	require.NoError(t, err)
	now = now.Add(time.Minute)
	_, second, err := store.Create(ctx, "user-1")
	require.NoError(t, err)

	registry := NewRegistry(store)

	sessions, err := registry.ActiveSessions(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, second.CreatedAt, sessions[0].CreatedAt, "newest first")
	require.Equal(t, first.ExpiresAt, sessions[1].ExpiresAt)

	// No hashed token material leaks through the projection.
	require.Equal(t, Session{
		UserID:    "user-1",
		CreatedAt: second.CreatedAt,
		ExpiresAt: second.ExpiresAt,
	}, sessions[0])
}

func TestActiveSessionsEmpty(t *testing.T) {
	store, err := refresh.NewMemoryStore(time.Hour)
	require.NoError(t, err)

	sessions, err := NewRegistry(store).ActiveSessions(context.Background(), "ghost")
	require.NoError(t, err)
	require.Empty(t, sessions)
}
