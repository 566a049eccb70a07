package models_test

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MartinPJB/BLOG-CMS/models"
)

var userCols = []string{"id", "username", "password", "email", "role"}

func TestUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("create hashes the password and defaults the role", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		mock.ExpectQuery(`INSERT INTO "users" ("username","password","email","role") VALUES ($1,$2,$3,$4) RETURNING *`).
			WithArgs("martin", pgxmock.AnyArg(), "martin@example.com", models.RoleMember).
			WillReturnRows(pgxmock.NewRows(userCols).
				AddRow(int64(1), "martin", string(hash), "martin@example.com", models.RoleMember))

		users := models.NewUsers(db, models.WithBcryptCost(bcrypt.MinCost))
		u, err := users.Create(ctx, models.UserInput{
			Username: "martin",
			Email:    " Martin@Example.com ",
			Password: "correct horse",
		})
		require.NoError(t, err)
		require.Equal(t, int64(1), u.ID)
		require.False(t, u.IsAdmin())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("create requires a password", func(t *testing.T) {
		t.Parallel()

		_, db := newMock(t)
		_, err := models.NewUsers(db).Create(ctx, models.UserInput{Username: "martin", Email: "m@example.com"})

		ve, ok := models.AsValidationError(err)
		require.True(t, ok)
		require.Equal(t, []string{"password is required"}, ve.Messages)
	})

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()

		_, db := newMock(t)
		_, err := models.NewUsers(db).Create(ctx, models.UserInput{
			Username: "ab",
			Email:    "nope",
			Password: "short",
			Role:     "root",
		})

		ve, ok := models.AsValidationError(err)
		require.True(t, ok)
		require.ElementsMatch(t, []string{
			"username must have at least 3 characters",
			"email must be a valid email address",
			"password must have at least 8 characters",
			"role must be one of admin, member",
		}, ve.Messages)
	})

	t.Run("update keeps the password when empty", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		mock.ExpectQuery(`UPDATE "users" SET "username" = $1, "email" = $2, "role" = $3 WHERE "users"."id" = $4 RETURNING *`).
			WithArgs("martin", "m@example.com", models.RoleAdmin, int64(1)).
			WillReturnRows(pgxmock.NewRows(userCols).
				AddRow(int64(1), "martin", string(hash), "m@example.com", models.RoleAdmin))

		u, err := models.NewUsers(db).Update(ctx, 1, models.UserInput{
			Username: "martin",
			Email:    "m@example.com",
			Role:     models.RoleAdmin,
		})
		require.NoError(t, err)
		require.True(t, u.IsAdmin())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("authenticate", func(t *testing.T) {
		t.Parallel()

		const byEmail = `SELECT * FROM "users" WHERE "users"."email" = $1`

		mock, db := newMock(t)
		mock.ExpectQuery(byEmail).
			WithArgs("m@example.com").
			WillReturnRows(pgxmock.NewRows(userCols).
				AddRow(int64(1), "martin", string(hash), "m@example.com", models.RoleAdmin))
		mock.ExpectQuery(byEmail).
			WithArgs("m@example.com").
			WillReturnRows(pgxmock.NewRows(userCols).
				AddRow(int64(1), "martin", string(hash), "m@example.com", models.RoleAdmin))
		mock.ExpectQuery(byEmail).
			WithArgs("ghost@example.com").
			WillReturnRows(pgxmock.NewRows(userCols))

		users := models.NewUsers(db)

		u, err := users.Authenticate(ctx, "M@example.com", "correct horse")
		require.NoError(t, err)
		require.Equal(t, "martin", u.Username)

		_, err = users.Authenticate(ctx, "m@example.com", "wrong")
		require.ErrorIs(t, err, models.ErrInvalidCredentials)

		_, err = users.Authenticate(ctx, "ghost@example.com", "correct horse")
		require.ErrorIs(t, err, models.ErrInvalidCredentials)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("resolve", func(t *testing.T) {
		t.Parallel()

		const byID = `SELECT * FROM "users" WHERE "users"."id" = $1`

		mock, db := newMock(t)
		mock.ExpectQuery(byID).
			WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows(userCols).
				AddRow(int64(1), "martin", string(hash), "m@example.com", models.RoleAdmin))
		mock.ExpectQuery(byID).
			WithArgs(int64(2)).
			WillReturnRows(pgxmock.NewRows(userCols))

		users := models.NewUsers(db)

		u, err := users.Resolve(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, u)
		require.Equal(t, models.RoleAdmin, u.Role)

		u, err = users.Resolve(ctx, 2)
		require.NoError(t, err)
		require.Nil(t, u)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
