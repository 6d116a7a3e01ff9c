package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken occurs when registering an already used email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidToken occurs when a bearer or refresh token fails verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrValidation indicates rejected input. Wrap it with detail.
	ErrValidation = errors.New("validation failed")
)
