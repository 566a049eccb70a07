package models_test

import (
	"context"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/MartinPJB/BLOG-CMS/models"
)

func TestCategories(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("all sorted by id", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		mock.ExpectQuery(`SELECT * FROM "categories"`).
			WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description"}).
				AddRow(int64(2), "Sport", "").
				AddRow(int64(1), "News", "Daily"))

		list, err := models.NewCategories(db).All(ctx)
		require.NoError(t, err)
		require.Equal(t, []models.Category{
			{ID: 1, Name: "News", Description: "Daily"},
			{ID: 2, Name: "Sport"},
		}, list)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("by id not found", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		mock.ExpectQuery(`SELECT * FROM "categories" WHERE "categories"."id" = $1`).
			WithArgs(int64(9)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description"}))

		_, err := models.NewCategories(db).ByID(ctx, 9)
		require.ErrorIs(t, err, models.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("create trims and returns the stored row", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		mock.ExpectQuery(`INSERT INTO "categories" ("name","description") VALUES ($1,$2) RETURNING *`).
			WithArgs("News", "").
			WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description"}).AddRow(int64(5), "News", ""))

		c, err := models.NewCategories(db).Create(ctx, models.CategoryInput{Name: "  News "})
		require.NoError(t, err)
		require.Equal(t, int64(5), c.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("create rejects a blank name before any sql", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		_, err := models.NewCategories(db).Create(ctx, models.CategoryInput{Name: "   "})

		ve, ok := models.AsValidationError(err)
		require.True(t, ok)
		require.Equal(t, []string{"name is required"}, ve.Messages)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate name", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		mock.ExpectQuery(`INSERT INTO "categories" ("name","description") VALUES ($1,$2) RETURNING *`).
			WithArgs("News", "").
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "categories_name_key"})

		_, err := models.NewCategories(db).Create(ctx, models.CategoryInput{Name: "News"})
		require.ErrorIs(t, err, models.ErrDuplicate)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		mock.ExpectQuery(`UPDATE "categories" SET "name" = $1, "description" = $2 WHERE "categories"."id" = $3 RETURNING *`).
			WithArgs("World", "All of it", int64(3)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description"}).AddRow(int64(3), "World", "All of it"))

		c, err := models.NewCategories(db).Update(ctx, 3, models.CategoryInput{Name: "World", Description: "All of it"})
		require.NoError(t, err)
		require.Equal(t, "World", c.Name)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update missing row", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		mock.ExpectQuery(`UPDATE "categories" SET "name" = $1, "description" = $2 WHERE "categories"."id" = $3 RETURNING *`).
			WithArgs("World", "", int64(3)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description"}))

		_, err := models.NewCategories(db).Update(ctx, 3, models.CategoryInput{Name: "World"})
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		mock.ExpectExec(`DELETE FROM "categories" WHERE "categories"."id" = $1`).
			WithArgs(int64(3)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectExec(`DELETE FROM "categories" WHERE "categories"."id" = $1`).
			WithArgs(int64(4)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		store := models.NewCategories(db)
		require.NoError(t, store.Delete(ctx, 3))
		require.ErrorIs(t, store.Delete(ctx, 4), models.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
