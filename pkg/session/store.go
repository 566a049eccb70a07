package session

import (
	"context"
	"time"
)

// Store persists sessions. Implementations live in pgstore and redisstore.
type Store interface {
	Create(ctx context.Context, s *Session) error

	// Get looks a session up by cookie token.
	// Returns ErrNotFound or ErrExpired.
	Get(ctx context.Context, token string) (*Session, error)

	Update(ctx context.Context, s *Session) error

	// Delete removes a session by ID. Missing sessions are not an error.
	Delete(ctx context.Context, id string) error

	// DeleteByUserID removes every session of a user (logout everywhere, account deletion).
	DeleteByUserID(ctx context.Context, userID int64) error

	// Touch refreshes LastActiveAt without rewriting values.
	Touch(ctx context.Context, id string, lastActiveAt time.Time) error
}
