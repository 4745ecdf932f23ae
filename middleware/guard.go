package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/zaidhasan/authcore"
)

// Authenticator is the slice of the engine Guard needs.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*authcore.AuthResult, error)
}

// Guard authenticates the Authorization bearer token and binds the
// resulting identity to the request context. Rejections are written as
// bare status codes so the response body never explains which check
// failed; a storage fault maps to 503 instead of a rejection.
func Guard(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			res, err := auth.Authenticate(r.Context(), raw)
			if err != nil {
				w.Header().Set("Cache-Control", "no-store")
				switch {
				case errors.Is(err, authcore.ErrUserNotFound):
					http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				case authcore.IsTransient(err):
					http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				default:
					http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(withAuthResult(r.Context(), res)))
		})
	}
}

// RequireRoles narrows a guarded route to the given roles. It must run
// after Guard; a request with no bound identity is rejected as
// unauthorized, a bound identity outside required as forbidden.
func RequireRoles(required ...authcore.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, ok := AuthResultFromContext(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if !authcore.Allowed(res.Role, required...) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
