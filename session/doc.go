// Package session exposes the live-session read view: one session per
// unrevoked, unexpired refresh token. The registry never surfaces the
// stored token hash, so credential material stays inside the refresh
// store even in hashed form.
package session
