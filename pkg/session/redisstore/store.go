// Package redisstore keeps sessions in Redis with key expiry matching the session lifetime.
//
// Layout:
//
//	<prefix>token:<token>  JSON record
//	<prefix>id:<id>        token, for lookups by id
//	<prefix>user:<userID>  set of session ids
package redisstore

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/MartinPJB/BLOG-CMS/pkg/session"
)

const defaultPrefix = "cms:session:"

// Store implements session.Store on Redis.
type Store struct {
	client redis.UniversalClient
	prefix string
}

var _ session.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithPrefix namespaces every key.
func WithPrefix(p string) Option {
	return func(s *Store) {
		if p != "" {
			s.prefix = p
		}
	}
}

func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type record struct {
	ID           string         `json:"id"`
	Token        string         `json:"token"`
	UserID       *int64         `json:"user_id,omitempty"`
	Values       map[string]any `json:"values"`
	IP           string         `json:"ip,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	LastActiveAt time.Time      `json:"last_active_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
}

func toRecord(s *session.Session) record {
	return record{
		ID:           s.ID,
		Token:        s.Token,
		UserID:       s.UserID,
		Values:       s.Values,
		IP:           s.IP,
		UserAgent:    s.UserAgent,
		CreatedAt:    s.CreatedAt,
		LastActiveAt: s.LastActiveAt,
		ExpiresAt:    s.ExpiresAt,
	}
}

func (r record) session() *session.Session {
	values := r.Values
	if values == nil {
		values = map[string]any{}
	}
	return &session.Session{
		ID:           r.ID,
		Token:        r.Token,
		UserID:       r.UserID,
		Values:       values,
		IP:           r.IP,
		UserAgent:    r.UserAgent,
		CreatedAt:    r.CreatedAt,
		LastActiveAt: r.LastActiveAt,
		ExpiresAt:    r.ExpiresAt,
	}
}

func (s *Store) tokenKey(token string) string { return s.prefix + "token:" + token }
func (s *Store) idKey(id string) string       { return s.prefix + "id:" + id }
func (s *Store) userKey(userID int64) string {
	return s.prefix + "user:" + strconv.FormatInt(userID, 10)
}

func (s *Store) Create(ctx context.Context, sess *session.Session) error {
	return errors.Wrap(s.write(ctx, sess, ""), "create session")
}

func (s *Store) Get(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, session.ErrInvalidToken
	}
	rec, err := s.load(ctx, s.tokenKey(token))
	if err != nil {
		return nil, err
	}
	sess := rec.session()
	if sess.IsExpired() {
		return nil, session.ErrExpired
	}
	return sess, nil
}

// Update rewrites the record. A rotated token moves the record to its new key.
func (s *Store) Update(ctx context.Context, sess *session.Session) error {
	oldToken, err := s.client.Get(ctx, s.idKey(sess.ID)).Result()
	if errors.Is(err, redis.Nil) {
		return session.ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "update session")
	}
	return errors.Wrap(s.write(ctx, sess, oldToken), "update session")
}

func (s *Store) Delete(ctx context.Context, id string) error {
	token, err := s.client.Get(ctx, s.idKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "delete session")
	}

	rec, err := s.load(ctx, s.tokenKey(token))
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.tokenKey(token), s.idKey(id))
		if rec != nil && rec.UserID != nil {
			p.SRem(ctx, s.userKey(*rec.UserID), id)
		}
		return nil
	})
	return errors.Wrap(err, "delete session")
}

func (s *Store) DeleteByUserID(ctx context.Context, userID int64) error {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return errors.Wrap(err, "list user sessions")
	}
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
	}
	return errors.Wrap(s.client.Del(ctx, s.userKey(userID)).Err(), "delete user sessions")
}

func (s *Store) Touch(ctx context.Context, id string, lastActiveAt time.Time) error {
	token, err := s.client.Get(ctx, s.idKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return session.ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "touch session")
	}
	rec, err := s.load(ctx, s.tokenKey(token))
	if err != nil {
		return err
	}
	sess := rec.session()
	sess.LastActiveAt = lastActiveAt
	return errors.Wrap(s.write(ctx, sess, token), "touch session")
}

func (s *Store) load(ctx context.Context, key string) (*record, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get session")
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	return &rec, nil
}

func (s *Store) write(ctx context.Context, sess *session.Session, oldToken string) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return session.ErrExpired
	}
	raw, err := json.Marshal(toRecord(sess))
	if err != nil {
		return errors.Wrap(err, "encode session")
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if oldToken != "" && oldToken != sess.Token {
			p.Del(ctx, s.tokenKey(oldToken))
		}
		p.Set(ctx, s.tokenKey(sess.Token), raw, ttl)
		p.Set(ctx, s.idKey(sess.ID), sess.Token, ttl)
		if sess.UserID != nil {
			p.SAdd(ctx, s.userKey(*sess.UserID), sess.ID)
			p.Expire(ctx, s.userKey(*sess.UserID), ttl)
		}
		return nil
	})
	return err
}
