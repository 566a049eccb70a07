// Package memstore keeps sessions in process memory. Sessions are lost on
// restart and are not shared between instances; use it for development and tests.
package memstore

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/MartinPJB/BLOG-CMS/pkg/session"
)

// Store implements session.Store in memory.
type Store struct {
	mu      sync.RWMutex
	byToken map[string]*session.Session
	tokens  map[string]string // id -> token
}

var _ session.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		byToken: make(map[string]*session.Session),
		tokens:  make(map[string]string),
	}
}

func (s *Store) Create(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(sess)
	return nil
}

func (s *Store) Get(_ context.Context, token string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.byToken[token]
	if !ok {
		return nil, session.ErrNotFound
	}
	if sess.IsExpired() {
		return nil, session.ErrExpired
	}
	return clone(sess), nil
}

// Update stores sess, replacing the record of the same id even when the token rotated.
func (s *Store) Update(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.tokens[sess.ID]; ok {
		delete(s.byToken, old)
	}
	s.put(sess)
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
	return nil
}

func (s *Store) DeleteByUserID(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.byToken {
		if sess.UserID != nil && *sess.UserID == userID {
			s.remove(sess.ID)
		}
	}
	return nil
}

func (s *Store) Touch(_ context.Context, id string, lastActiveAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token, ok := s.tokens[id]; ok {
		s.byToken[token].LastActiveAt = lastActiveAt
	}
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byToken)
}

func (s *Store) put(sess *session.Session) {
	s.byToken[sess.Token] = clone(sess)
	s.tokens[sess.ID] = sess.Token
}

func (s *Store) remove(id string) {
	if token, ok := s.tokens[id]; ok {
		delete(s.byToken, token)
		delete(s.tokens, id)
	}
}

func clone(sess *session.Session) *session.Session {
	cp := *sess
	cp.Values = maps.Clone(sess.Values)
	if sess.UserID != nil {
		id := *sess.UserID
		cp.UserID = &id
	}
	cp.ClearNew()
	cp.ClearDirty()
	return &cp
}
