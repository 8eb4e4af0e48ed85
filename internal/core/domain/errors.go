package domain

import "errors"

// Authentication and authorization failures. Their messages are safe to show
// to clients; the HTTP layer never reveals which underlying check failed.
var (
	// ErrInvalidCredentials covers unknown email, wrong password and inactive
	// account alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated covers a missing, malformed, expired or forged token.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidRole  = errors.New("invalid role")
	ErrInvalidInput = errors.New("invalid input")
	ErrRateLimited  = errors.New("too many requests")
)
