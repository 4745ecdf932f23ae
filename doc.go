// Package authcore manages the token lifecycle for an HTTP service:
// issuing and verifying short-lived signed access tokens, creating and
// rotating long-lived opaque refresh tokens, blacklisting revoked
// access tokens until their natural expiry, enumerating live sessions,
// and reclaiming expired records in a background cleanup job.
//
// The Engine is built once at startup via the Builder, holds its
// configuration immutably, and is safe for concurrent use. Transport,
// user-record storage, email delivery, and rate limiting are the
// caller's concern; authcore consumes them only through the
// UserProvider interface and the stores it is handed.
package authcore
