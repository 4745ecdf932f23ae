// Package middleware provides net/http handlers that gate requests on
// the engine's token checks: Guard authenticates the bearer credential
// and RequireRoles narrows a guarded route to specific roles.
package middleware
