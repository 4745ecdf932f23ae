// Package jwt signs and verifies the short-lived access tokens issued
// by authcore. Tokens are stateless HS256 credentials carrying only the
// subject user ID and the standard issued-at/expiry claims; revocation
// is layered on top by the blacklist package.
package jwt
