package shared

import "errors"

var (
	// ErrCSRFTokenMissing occurs when no CSRF token accompanies a mutating request.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when the supplied token does not match the session token.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
