package session

import (
	"time"

	"github.com/cockroachdb/errors"
)

// flashKey holds pending user-facing messages between requests.
const flashKey = "_flash"

// Session is one browser session. UserID is nil for anonymous visitors.
type Session struct {
	CreatedAt    time.Time
	LastActiveAt time.Time
	ExpiresAt    time.Time

	UserID    *int64
	Values    map[string]any
	ID        string
	Token     string // cookie value, rotated on login; never equal to ID
	IP        string
	UserAgent string

	dirty bool
	isNew bool
}

// New creates an unsaved session.
func New(id, token string, expiresAt time.Time) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Token:        token,
		Values:       make(map[string]any),
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    expiresAt,
		isNew:        true,
		dirty:        true,
	}
}

// IsAuthenticated reports whether a user is attached to the session.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != nil && *s.UserID > 0
}

// SetUser attaches a user. Pass 0 to detach.
func (s *Session) SetUser(userID int64) {
	if userID <= 0 {
		s.UserID = nil
	} else {
		s.UserID = &userID
	}
	s.dirty = true
}

func (s *Session) SetValue(key string, val any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = val
	s.dirty = true
}

func (s *Session) GetValue(key string) (any, bool) {
	if s.Values == nil {
		return nil, false
	}
	val, ok := s.Values[key]
	return val, ok
}

// DeleteValue marks the session dirty only if the key existed.
func (s *Session) DeleteValue(key string) {
	if s.Values == nil {
		return
	}
	if _, exists := s.Values[key]; exists {
		delete(s.Values, key)
		s.dirty = true
	}
}

// AddFlash queues a message for the next rendered page.
func (s *Session) AddFlash(msg string) {
	s.SetValue(flashKey, append(s.PeekFlashes(), msg))
}

// PeekFlashes returns queued messages without consuming them.
// Stores that decode JSON hand back []any, so both shapes are accepted.
func (s *Session) PeekFlashes() []string {
	raw, ok := s.GetValue(flashKey)
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// Flashes returns and clears queued messages.
func (s *Session) Flashes() []string {
	msgs := s.PeekFlashes()
	s.DeleteValue(flashKey)
	return msgs
}

func (s *Session) IsDirty() bool { return s.dirty }

// ClearDirty is called by the session manager after persisting.
func (s *Session) ClearDirty() { s.dirty = false }

func (s *Session) MarkDirty() { s.dirty = true }

func (s *Session) IsNew() bool { return s.isNew }

func (s *Session) ClearNew() { s.isNew = false }

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Value retrieves a typed value. Missing keys give ErrNotFound.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}

	val, ok := s.GetValue(key)
	if !ok {
		return zero, ErrNotFound
	}

	typed, ok := val.(T)
	if !ok {
		return zero, errors.Wrapf(ErrTypeMismatch, "key %q", key)
	}
	return typed, nil
}

// ValueOr is Value with a fallback.
func ValueOr[T any](s *Session, key string, defaultVal T) T {
	val, err := Value[T](s, key)
	if err != nil {
		return defaultVal
	}
	return val
}
