package auth

import "errors"

var (
	// ErrUnauthorized means the caller has no valid identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the caller lacks the required role.
	ErrForbidden = errors.New("forbidden")
)
