package authcore

import (
	"context"
	"time"

	"github.com/zaidhasan/authcore/session"
)

// UserRecord is the account representation the engine consumes. The
// engine never writes user records except through UserProvider.Create.
type UserRecord struct {
	ID           string
	Identifier   string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// CreateUserInput is passed to UserProvider.Create during registration.
// The password arrives pre-hashed; providers never see plaintext.
type CreateUserInput struct {
	Identifier   string
	PasswordHash string
	Role         Role
}

// UserProvider is the identity-store interface callers must implement
// to integrate authcore with their user database.
//
// FindByID and FindByIdentifier return ErrUserNotFound when no account
// matches; Create returns ErrUserExists for a taken identifier. Any
// other error is treated as a storage fault.
type UserProvider interface {
	FindByID(ctx context.Context, id string) (*UserRecord, error)
	FindByIdentifier(ctx context.Context, identifier string) (*UserRecord, error)
	Create(ctx context.Context, input CreateUserInput) (*UserRecord, error)
}

// AuthResult is returned by Engine.Authenticate: the resolved identity
// plus the raw access token it was derived from, for downstream use
// such as logout.
type AuthResult struct {
	UserID     string
	Identifier string
	Role       Role
	Token      string
}

// TokenPair is one access/refresh credential pair.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Sessions re-exports the registry's projection type for callers that
// only import the root package.
type Session = session.Session
