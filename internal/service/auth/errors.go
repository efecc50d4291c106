package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("username/email or password is incorrect")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
