package pgstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/MartinPJB/BLOG-CMS/pkg/database"
	"github.com/MartinPJB/BLOG-CMS/pkg/session"
	"github.com/MartinPJB/BLOG-CMS/pkg/session/pgstore"
)

var sessionColumns = []string{"id", "token", "user_id", "data", "ip", "user_agent", "created_at", "last_active_at", "expires_at"}

func newStore(t *testing.T) (pgxmock.PgxPoolIface, *pgstore.Store) {
	t.Helper()

	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock, pgstore.New(database.New(database.Config{}, database.WithPool(mock)))
}

func TestStore_Create(t *testing.T) {
	t.Parallel()

	mock, store := newStore(t)
	sess := session.New("0b7c", "tok", time.Now().Add(time.Hour))
	sess.SetValue("theme", "dark")

	mock.ExpectQuery(`INSERT INTO "sessions" ("id","token","user_id","data","ip","user_agent","created_at","last_active_at","expires_at") ` +
		`VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING *`).
		WithArgs("0b7c", "tok", nil, `{"theme":"dark"}`, "", "", sess.CreatedAt, sess.LastActiveAt, sess.ExpiresAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("0b7c"))

	require.NoError(t, store.Create(context.Background(), sess))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get(t *testing.T) {
	t.Parallel()

	const query = `SELECT * FROM "sessions" WHERE "sessions"."token" = $1`
	now := time.Now()

	t.Run("decodes the row", func(t *testing.T) {
		t.Parallel()

		mock, store := newStore(t)
		mock.ExpectQuery(query).WithArgs("tok").
			WillReturnRows(pgxmock.NewRows(sessionColumns).AddRow(
				"0b7c", "tok", int64(3), map[string]any{"_flash": []any{"Welcome"}},
				"127.0.0.1", "curl", now, now, now.Add(time.Hour)))

		sess, err := store.Get(context.Background(), "tok")
		require.NoError(t, err)
		require.Equal(t, "0b7c", sess.ID)
		require.True(t, sess.IsAuthenticated())
		require.Equal(t, int64(3), *sess.UserID)
		require.Equal(t, []string{"Welcome"}, sess.Flashes())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("anonymous session with text data", func(t *testing.T) {
		t.Parallel()

		mock, store := newStore(t)
		mock.ExpectQuery(query).WithArgs("tok").
			WillReturnRows(pgxmock.NewRows(sessionColumns).AddRow(
				"0b7c", "tok", nil, `{"theme":"dark"}`, "", "", now, now, now.Add(time.Hour)))

		sess, err := store.Get(context.Background(), "tok")
		require.NoError(t, err)
		require.False(t, sess.IsAuthenticated())
		require.Equal(t, "dark", session.ValueOr(sess, "theme", ""))
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		mock, store := newStore(t)
		mock.ExpectQuery(query).WithArgs("nope").WillReturnRows(pgxmock.NewRows(sessionColumns))

		_, err := store.Get(context.Background(), "nope")
		require.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()

		mock, store := newStore(t)
		mock.ExpectQuery(query).WithArgs("tok").
			WillReturnRows(pgxmock.NewRows(sessionColumns).AddRow(
				"0b7c", "tok", nil, map[string]any{}, "", "", now, now, now.Add(-time.Minute)))

		_, err := store.Get(context.Background(), "tok")
		require.ErrorIs(t, err, session.ErrExpired)
	})

	t.Run("empty token", func(t *testing.T) {
		t.Parallel()

		_, store := newStore(t)
		_, err := store.Get(context.Background(), "")
		require.ErrorIs(t, err, session.ErrInvalidToken)
	})
}

func TestStore_Update(t *testing.T) {
	t.Parallel()

	mock, store := newStore(t)
	sess := session.New("0b7c", "tok2", time.Now().Add(time.Hour))
	sess.SetUser(5)

	mock.ExpectQuery(`UPDATE "sessions" SET "token" = $1, "user_id" = $2, "data" = $3, "last_active_at" = $4, "expires_at" = $5 ` +
		`WHERE "sessions"."id" = $6 RETURNING *`).
		WithArgs("tok2", int64(5), `{}`, sess.LastActiveAt, sess.ExpiresAt, "0b7c").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("0b7c"))

	require.NoError(t, store.Update(context.Background(), sess))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()

	mock, store := newStore(t)
	mock.ExpectExec(`DELETE FROM "sessions" WHERE "sessions"."id" = $1`).
		WithArgs("0b7c").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM "sessions" WHERE "sessions"."user_id" = $1`).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	require.NoError(t, store.Delete(context.Background(), "0b7c"))
	require.NoError(t, store.DeleteByUserID(context.Background(), 5))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_DeleteExpired(t *testing.T) {
	t.Parallel()

	mock, store := newStore(t)
	mock.ExpectExec(`DELETE FROM "sessions" WHERE "expires_at" < now()`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := store.DeleteExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
