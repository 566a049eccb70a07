package models_test

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/MartinPJB/BLOG-CMS/models"
)

var blockCols = []string{"id", "name", "type", "content", "article_id", "weight"}

func TestBlocks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("by article ordered by weight then id", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		mock.ExpectQuery(`SELECT * FROM "blocks" WHERE "blocks"."article_id" = $1`).
			WithArgs(int64(3)).
			WillReturnRows(pgxmock.NewRows(blockCols).
				AddRow(int64(7), "Outro", "text", map[string]any{"body": "bye"}, int64(3), int64(2)).
				AddRow(int64(9), "Intro", "text", []byte(`{"body":"hi"}`), int64(3), int64(1)).
				AddRow(int64(8), "Photo", "image", `{"src":"https://example.com/a.png"}`, int64(3), int64(1)))

		list, err := models.NewBlocks(db).ByArticle(ctx, 3)
		require.NoError(t, err)
		require.Len(t, list, 3)
		require.Equal(t, []int64{8, 9, 7}, []int64{list[0].ID, list[1].ID, list[2].ID})
		require.Equal(t, "https://example.com/a.png", list[0].Content["src"])
		require.Equal(t, "hi", list[1].Content["body"])
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("by id not found", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		mock.ExpectQuery(`SELECT * FROM "blocks" WHERE "blocks"."id" = $1`).
			WithArgs(int64(4)).
			WillReturnRows(pgxmock.NewRows(blockCols))

		_, err := models.NewBlocks(db).ByID(ctx, 4)
		require.ErrorIs(t, err, models.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	const insert = `INSERT INTO "blocks" ("name","type","content","article_id","weight") ` +
		`VALUES ($1,$2,$3,$4,$5) RETURNING *`

	t.Run("create defaults the weight and checks the article", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "id" FROM "articles" WHERE "articles"."id" = $1`).
			WithArgs(int64(3)).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
		mock.ExpectQuery(insert).
			WithArgs("Intro", "text", `{"body":"hi"}`, int64(3), int64(1)).
			WillReturnRows(pgxmock.NewRows(blockCols).
				AddRow(int64(11), "Intro", "text", map[string]any{"body": "hi"}, int64(3), int64(1)))
		mock.ExpectCommit()

		b, err := models.NewBlocks(db).Create(ctx, models.BlockInput{
			Name:      " Intro ",
			Type:      "text",
			Content:   map[string]any{"body": "hi"},
			ArticleID: 3,
		})
		require.NoError(t, err)
		require.Equal(t, int64(11), b.ID)
		require.Equal(t, int64(models.DefaultBlockWeight), b.Weight)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("create for a missing article rolls back", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "id" FROM "articles" WHERE "articles"."id" = $1`).
			WithArgs(int64(3)).
			WillReturnRows(pgxmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, err := models.NewBlocks(db).Create(ctx, models.BlockInput{Name: "Intro", Type: "text", ArticleID: 3})
		ve, ok := models.AsValidationError(err)
		require.True(t, ok)
		require.Equal(t, []string{"article_id does not exist"}, ve.Messages)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("validation before any sql", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		_, err := models.NewBlocks(db).Create(ctx, models.BlockInput{Weight: -2})

		ve, ok := models.AsValidationError(err)
		require.True(t, ok)
		require.ElementsMatch(t, []string{
			"name is required",
			"type is required",
			"article_id must be greater than 0",
			"weight must be at least 0",
		}, ve.Messages)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update missing block", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "id" FROM "articles" WHERE "articles"."id" = $1`).
			WithArgs(int64(3)).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
		mock.ExpectQuery(`UPDATE "blocks" SET "name" = $1, "type" = $2, "content" = $3, "article_id" = $4, `+
			`"weight" = $5 WHERE "blocks"."id" = $6 RETURNING *`).
			WithArgs("Intro", "text", `{}`, int64(3), int64(4), int64(12)).
			WillReturnRows(pgxmock.NewRows(blockCols))
		mock.ExpectRollback()

		_, err := models.NewBlocks(db).Update(ctx, 12, models.BlockInput{
			Name: "Intro", Type: "text", ArticleID: 3, Weight: 4,
		})
		require.ErrorIs(t, err, models.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete missing block", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		mock.ExpectExec(`DELETE FROM "blocks" WHERE "blocks"."id" = $1`).
			WithArgs(int64(12)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		require.ErrorIs(t, models.NewBlocks(db).Delete(ctx, 12), models.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
