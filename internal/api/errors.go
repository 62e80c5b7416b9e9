package api

import "errors"

var (
	// ErrUnauthorized marks rejected credentials or an invalid/expired
	// token (a 401 from the backend). Callers clear the session and let
	// the guarded routes redirect to login; the login page itself shows
	// a single generic message, never backend detail.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound marks a 404 for a record that no longer exists.
	ErrNotFound = errors.New("not found")
)
