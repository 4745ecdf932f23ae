package authcore

import "errors"

var (
	// ErrEngineNotReady is returned when a method is called on a nil or
	// unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrUnauthenticated is the generic credential-rejection error.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredentials is returned by Login for both an unknown
	// identifier and a wrong password, so callers cannot enumerate
	// accounts from the failure shape.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when a credential verified but its
	// subject no longer exists. Distinct from ErrUnauthenticated on
	// purpose: the token was valid.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned by Register when the identifier is taken.
	ErrUserExists = errors.New("account already exists")
	// ErrForbidden is returned when a valid identity lacks a required role.
	ErrForbidden = errors.New("permission denied")
	// ErrTokenInvalid covers malformed access tokens and signature
	// failures. The underlying reason stays in the error chain for logs.
	ErrTokenInvalid = errors.New("invalid access token")
	// ErrTokenExpired is returned for an access token past its expiry.
	ErrTokenExpired = errors.New("access token expired")
	// ErrTokenBlacklisted is returned for an access token revoked before
	// its natural expiry. Checked before signature verification.
	ErrTokenBlacklisted = errors.New("access token blacklisted")
	// ErrRefreshInvalid covers refresh tokens that are unknown, revoked,
	// or expired. The precise store reason stays in the error chain.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrStoreUnavailable wraps storage faults and timeouts. Safe to
	// retry; transports should answer 5xx, never 401.
	ErrStoreUnavailable = errors.New("auth storage unavailable")
)

// IsUnauthenticated reports whether err is any credential rejection.
// Storage faults are deliberately excluded: a timeout is not a denial.
func IsUnauthenticated(err error) bool {
	for _, target := range []error{
		ErrUnauthenticated,
		ErrInvalidCredentials,
		ErrTokenInvalid,
		ErrTokenExpired,
		ErrTokenBlacklisted,
		ErrRefreshInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsTransient reports whether err is a retryable storage failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
