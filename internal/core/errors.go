package core

import "errors"

var (
	ErrEmptyMessage       = errors.New("message cannot be empty")
	ErrInvalidContext     = errors.New("unknown relationship context")
	ErrInvalidContactName = errors.New("contact name cannot be empty")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrInvalidEmail       = errors.New("a valid email address is required")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found or expired")
)
