// Package pgstore keeps sessions in the "sessions" table through the database Manager.
package pgstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/MartinPJB/BLOG-CMS/pkg/database"
	"github.com/MartinPJB/BLOG-CMS/pkg/session"
)

const table = "sessions"

// Store implements session.Store on PostgreSQL.
type Store struct {
	db *database.Manager
}

var _ session.Store = (*Store)(nil)

func New(db *database.Manager) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, sess *session.Session) error {
	data, err := encodeValues(sess.Values)
	if err != nil {
		return err
	}
	_, err = s.db.Create(ctx, table, database.
		Set("id", sess.ID).
		Set("token", sess.Token).
		Set("user_id", userID(sess)).
		Set("data", data).
		Set("ip", sess.IP).
		Set("user_agent", sess.UserAgent).
		Set("created_at", sess.CreatedAt).
		Set("last_active_at", sess.LastActiveAt).
		Set("expires_at", sess.ExpiresAt))
	return errors.Wrap(err, "create session")
}

func (s *Store) Get(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, session.ErrInvalidToken
	}
	rows, err := s.db.Read(ctx, table, database.AllColumns(), database.Where("token", token))
	if err != nil {
		return nil, errors.Wrap(err, "get session")
	}
	if len(rows) == 0 {
		return nil, session.ErrNotFound
	}

	sess, err := decode(rows[0])
	if err != nil {
		return nil, err
	}
	if sess.IsExpired() {
		return nil, session.ErrExpired
	}
	return sess, nil
}

func (s *Store) Update(ctx context.Context, sess *session.Session) error {
	data, err := encodeValues(sess.Values)
	if err != nil {
		return err
	}
	rows, err := s.db.Update(ctx, table, database.
		Set("token", sess.Token).
		Set("user_id", userID(sess)).
		Set("data", data).
		Set("last_active_at", sess.LastActiveAt).
		Set("expires_at", sess.ExpiresAt),
		database.Where("id", sess.ID))
	if err != nil {
		return errors.Wrap(err, "update session")
	}
	if len(rows) == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.Delete(ctx, table, database.Where("id", id))
	return errors.Wrap(err, "delete session")
}

func (s *Store) DeleteByUserID(ctx context.Context, userID int64) error {
	_, err := s.db.Delete(ctx, table, database.Where("user_id", userID))
	return errors.Wrap(err, "delete user sessions")
}

func (s *Store) Touch(ctx context.Context, id string, lastActiveAt time.Time) error {
	_, err := s.db.Update(ctx, table,
		database.Set("last_active_at", lastActiveAt),
		database.Where("id", id))
	return errors.Wrap(err, "touch session")
}

// DeleteExpired removes sessions past their expiry and returns how many were removed.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	// Range predicate: the builder only emits equality conditions.
	n, err := s.db.Exec(ctx, `DELETE FROM "sessions" WHERE "expires_at" < now()`)
	return n, errors.Wrap(err, "delete expired sessions")
}

func userID(sess *session.Session) any {
	if sess.UserID == nil {
		return nil
	}
	return *sess.UserID
}

func encodeValues(values map[string]any) (string, error) {
	if values == nil {
		values = map[string]any{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", errors.Wrap(err, "encode session values")
	}
	return string(b), nil
}

func decode(row database.Row) (*session.Session, error) {
	sess := &session.Session{
		ID:           row.String("id"),
		Token:        row.String("token"),
		IP:           row.String("ip"),
		UserAgent:    row.String("user_agent"),
		CreatedAt:    row.Time("created_at"),
		LastActiveAt: row.Time("last_active_at"),
		ExpiresAt:    row.Time("expires_at"),
		Values:       map[string]any{},
	}
	if id := row.Int64("user_id"); id > 0 {
		sess.UserID = &id
	}

	// pgx decodes jsonb into map[string]any; text columns come back as strings.
	switch v := row.Value("data").(type) {
	case map[string]any:
		sess.Values = v
	case string:
		if err := json.Unmarshal([]byte(v), &sess.Values); err != nil {
			return nil, errors.Wrap(err, "decode session values")
		}
	case []byte:
		if err := json.Unmarshal(v, &sess.Values); err != nil {
			return nil, errors.Wrap(err, "decode session values")
		}
	}
	return sess, nil
}
