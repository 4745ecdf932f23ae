package session

import (
	"context"
	"time"

	"github.com/zaidhasan/authcore/refresh"
)

// Session is one logged-in client instance, projected from a live
// refresh token record.
type Session struct {
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// lister is the slice of the refresh store the registry reads.
type lister interface {
	ListActive(ctx context.Context, userID string) ([]refresh.Record, error)
}

// Registry is a read-only projection over the refresh store.
type Registry struct {
	store lister
}

// NewRegistry returns a registry reading from store.
func NewRegistry(store lister) *Registry {
	return &Registry{store: store}
}

// ActiveSessions returns userID's live sessions, newest first.
func (r *Registry) ActiveSessions(ctx context.Context, userID string) ([]Session, error) {
	records, err := r.store.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	sessions := make([]Session, 0, len(records))
	for _, rec := range records {
		sessions = append(sessions, Session{
			UserID:    rec.UserID,
			CreatedAt: rec.CreatedAt,
			ExpiresAt: rec.ExpiresAt,
		})
	}
	return sessions, nil
}
