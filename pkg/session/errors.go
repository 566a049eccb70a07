package session

import "github.com/cockroachdb/errors"

var (
	ErrNotConfigured = errors.New("session: not configured")
	ErrNotFound      = errors.New("session: not found")
	ErrExpired       = errors.New("session: expired")
	ErrInvalidToken  = errors.New("session: invalid token")
	ErrTypeMismatch  = errors.New("session: type mismatch")
)
