package middleware

import (
	"context"

	"github.com/zaidhasan/authcore"
)

type contextKey int

const (
	authResultKey contextKey = iota
	rawTokenKey
)

// AuthResultFromContext returns the identity Guard bound to the request.
func AuthResultFromContext(ctx context.Context) (*authcore.AuthResult, bool) {
	res, ok := ctx.Value(authResultKey).(*authcore.AuthResult)
	return res, ok
}

// RawTokenFromContext returns the bearer token Guard accepted, for
// handlers that need to pass it on, e.g. logout.
func RawTokenFromContext(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(rawTokenKey).(string)
	return tok, ok
}

func withAuthResult(ctx context.Context, res *authcore.AuthResult) context.Context {
	ctx = context.WithValue(ctx, authResultKey, res)
	return context.WithValue(ctx, rawTokenKey, res.Token)
}
