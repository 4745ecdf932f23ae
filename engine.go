package authcore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zaidhasan/authcore/blacklist"
	"github.com/zaidhasan/authcore/jwt"
	"github.com/zaidhasan/authcore/password"
	"github.com/zaidhasan/authcore/refresh"
	"github.com/zaidhasan/authcore/session"
)

// Engine composes the token lifecycle: issuer, refresh store,
// blacklist, session registry, and the cleanup job. Construct it with
// the Builder; a built Engine is immutable and safe for concurrent use.
type Engine struct {
	config       Config
	jwtManager   *jwt.Manager
	refreshStore refresh.Store
	blacklist    blacklist.Store
	registry     *session.Registry
	users        UserProvider
	hasher       *password.Argon2
	cleanup      *cleanupJob
	metrics      *Metrics
	logger       *slog.Logger
	clock        Clock
}

// Close stops the cleanup job. Safe to call on a nil engine.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.cleanup.Stop()
}

// MetricsSnapshot returns a copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// IssueAccessToken signs a short-lived access token for userID.
func (e *Engine) IssueAccessToken(ctx context.Context, userID string) (string, time.Time, error) {
	if e == nil {
		return "", time.Time{}, ErrEngineNotReady
	}

	token, expiresAt, err := e.jwtManager.CreateAccess(userID)
	if err != nil {
		return "", time.Time{}, err
	}
	e.metrics.Inc(MetricAccessIssued)
	return token, expiresAt, nil
}

// CreateSession creates a refresh token for userID and signs a matching
// access token. Used by login, registration, and OAuth callbacks.
func (e *Engine) CreateSession(ctx context.Context, userID string) (TokenPair, error) {
	if e == nil {
		return TokenPair{}, ErrEngineNotReady
	}

	refreshToken, rec, err := e.refreshStore.Create(ctx, userID)
	if err != nil {
		return TokenPair{}, e.mapRefreshError(err)
	}

	accessToken, accessExpiresAt, err := e.jwtManager.CreateAccess(userID)
	if err != nil {
		return TokenPair{}, err
	}

	e.metrics.Inc(MetricAccessIssued)
	e.metrics.Inc(MetricSessionCreated)

	return TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: rec.ExpiresAt,
	}, nil
}

// Authenticate accepts or rejects a raw bearer credential and binds it
// to an identity. The blacklist is consulted before the signature is
// verified, so a revoked-but-still-valid token is never accepted. A
// storage fault surfaces as ErrStoreUnavailable, never as a rejection.
func (e *Engine) Authenticate(ctx context.Context, rawToken string) (*AuthResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if rawToken == "" {
		e.metrics.Inc(MetricAuthenticateRejected)
		return nil, fmt.Errorf("%w: missing credential", ErrUnauthenticated)
	}

	listed, err := e.blacklist.Contains(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if listed {
		e.metrics.Inc(MetricAuthenticateRejected)
		return nil, fmt.Errorf("%w: token is blacklisted", ErrTokenBlacklisted)
	}

	claims, err := e.jwtManager.ParseAccess(rawToken)
	if err != nil {
		e.metrics.Inc(MetricAuthenticateRejected)
		return nil, e.mapAccessError(err)
	}

	user, err := e.users.FindByID(ctx, claims.UID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		e.metrics.Inc(MetricAuthenticateRejected)
		return nil, ErrUserNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	e.metrics.Inc(MetricAuthenticateSuccess)
	return &AuthResult{
		UserID:     user.ID,
		Identifier: user.Identifier,
		Role:       user.Role,
		Token:      rawToken,
	}, nil
}

// Refresh validates oldRefreshToken, rotates it, and signs a new access
// token. The rotated-away token is dead from this point on: replaying
// it is rejected as revoked.
func (e *Engine) Refresh(ctx context.Context, oldRefreshToken string) (TokenPair, error) {
	if e == nil {
		return TokenPair{}, ErrEngineNotReady
	}

	rec, err := e.refreshStore.Validate(ctx, oldRefreshToken)
	if err != nil {
		if !IsTransient(e.mapRefreshError(err)) {
			e.metrics.Inc(MetricRefreshFailure)
		}
		return TokenPair{}, e.mapRefreshError(err)
	}

	newRefreshToken, newRec, err := e.refreshStore.Rotate(ctx, oldRefreshToken, rec.UserID)
	if err != nil {
		if !IsTransient(e.mapRefreshError(err)) {
			e.metrics.Inc(MetricRefreshFailure)
		}
		return TokenPair{}, e.mapRefreshError(err)
	}

	accessToken, accessExpiresAt, err := e.jwtManager.CreateAccess(rec.UserID)
	if err != nil {
		return TokenPair{}, err
	}

	e.metrics.Inc(MetricAccessIssued)
	e.metrics.Inc(MetricRefreshSuccess)

	return TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     newRefreshToken,
		RefreshExpiresAt: newRec.ExpiresAt,
	}, nil
}

// Logout blacklists the access token and revokes the refresh token.
// Both halves are idempotent; an empty refresh token skips revocation.
func (e *Engine) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	if err := e.blacklistAccessToken(ctx, accessToken); err != nil {
		return err
	}

	if refreshToken != "" {
		if err := e.refreshStore.Revoke(ctx, refreshToken); err != nil {
			return e.mapRefreshError(err)
		}
	}

	e.metrics.Inc(MetricLogout)
	return nil
}

// LogoutAll revokes every live refresh token owned by userID and
// blacklists the access token the request arrived with.
func (e *Engine) LogoutAll(ctx context.Context, userID, accessToken string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	if err := e.blacklistAccessToken(ctx, accessToken); err != nil {
		return err
	}

	if err := e.refreshStore.RevokeAll(ctx, userID); err != nil {
		return e.mapRefreshError(err)
	}

	e.metrics.Inc(MetricLogoutAll)
	return nil
}

// ListSessions returns userID's live sessions, newest first, without
// any credential material.
func (e *Engine) ListSessions(ctx context.Context, userID string) ([]session.Session, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	sessions, err := e.registry.ActiveSessions(ctx, userID)
	if err != nil {
		return nil, e.mapRefreshError(err)
	}
	return sessions, nil
}

// Register creates an account through the UserProvider and opens its
// first session. The provider only ever sees the argon2id hash.
func (e *Engine) Register(ctx context.Context, identifier, plainPassword string, role Role) (*UserRecord, TokenPair, error) {
	if e == nil {
		return nil, TokenPair{}, ErrEngineNotReady
	}

	hash, err := e.hasher.Hash(plainPassword)
	if err != nil {
		return nil, TokenPair{}, err
	}

	user, err := e.users.Create(ctx, CreateUserInput{
		Identifier:   identifier,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, TokenPair{}, ErrUserExists
		}
		return nil, TokenPair{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	pair, err := e.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// Login verifies credentials and opens a session. Unknown identifier
// and wrong password both fail with ErrInvalidCredentials; the precise
// reason is not observable to the transport.
func (e *Engine) Login(ctx context.Context, identifier, plainPassword string) (*UserRecord, TokenPair, error) {
	if e == nil {
		return nil, TokenPair{}, ErrEngineNotReady
	}

	user, err := e.users.FindByIdentifier(ctx, identifier)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return nil, TokenPair{}, ErrInvalidCredentials
	case err != nil:
		return nil, TokenPair{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	ok, err := e.hasher.Verify(plainPassword, user.PasswordHash)
	if err != nil || !ok {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := e.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// StartCleanup launches the periodic expiry-reclamation job.
func (e *Engine) StartCleanup() {
	if e == nil {
		return
	}
	e.cleanup.Start()
}

// StopCleanup cancels the pending timer; an in-flight pass completes.
func (e *Engine) StopCleanup() {
	if e == nil {
		return
	}
	e.cleanup.Stop()
}

// RunCleanupNow runs one cleanup pass synchronously and reports how
// many records were reclaimed. ran is false when another pass was
// already in flight.
func (e *Engine) RunCleanupNow(ctx context.Context) (deleted int64, ran bool) {
	if e == nil {
		return 0, false
	}
	return e.cleanup.runOnce(ctx)
}

// blacklistAccessToken stores token on the deny-list until its own
// expiry claim, or for the configured default window when the claim is
// unreadable. An already-expired token is skipped by the store.
func (e *Engine) blacklistAccessToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	expiresAt, ok := e.jwtManager.PeekExpiry(token)
	if !ok {
		expiresAt = e.clock.Now().Add(e.config.Blacklist.DefaultTTL)
	}

	if err := e.blacklist.Add(ctx, token, expiresAt); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	e.metrics.Inc(MetricTokenBlacklisted)
	return nil
}

func (e *Engine) mapAccessError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
}

func (e *Engine) mapRefreshError(err error) error {
	switch {
	case errors.Is(err, refresh.ErrUnavailable):
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	case errors.Is(err, refresh.ErrNotFound),
		errors.Is(err, refresh.ErrRevoked),
		errors.Is(err, refresh.ErrExpired):
		return fmt.Errorf("%w: %w", ErrRefreshInvalid, err)
	default:
		return err
	}
}
