package models_test

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/MartinPJB/BLOG-CMS/models"
)

var settingsCols = []string{"id", "name", "description", "theme", "site_language", "default_route"}

func TestSiteSettings_Get(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("defaults without a row", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		mock.ExpectQuery(`SELECT * FROM "site_settings"`).
			WillReturnRows(pgxmock.NewRows(settingsCols))

		s, err := models.NewSiteSettings(db).Get(ctx)
		require.NoError(t, err)
		require.Equal(t, models.DefaultSettings(), s)
	})

	t.Run("lowest id wins", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		mock.ExpectQuery(`SELECT * FROM "site_settings"`).
			WillReturnRows(pgxmock.NewRows(settingsCols).
				AddRow(int64(2), "Other", "", "dark", "fr", "categories").
				AddRow(int64(1), "Martin's blog", "Notes", "default", "en", "articles"))

		s, err := models.NewSiteSettings(db).Get(ctx)
		require.NoError(t, err)
		require.Equal(t, models.Settings{
			ID:           1,
			Name:         "Martin's blog",
			Description:  "Notes",
			Theme:        "default",
			Language:     "en",
			DefaultRoute: "articles",
		}, s)
	})
}

func TestSiteSettings_Update(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	in := models.SettingsInput{
		Name:         " Blog ",
		Theme:        "default",
		Language:     "en",
		DefaultRoute: "articles",
	}

	t.Run("first save inserts", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT * FROM "site_settings"`).
			WillReturnRows(pgxmock.NewRows(settingsCols))
		mock.ExpectQuery(`INSERT INTO "site_settings" ("name","description","theme","site_language","default_route") VALUES ($1,$2,$3,$4,$5) RETURNING *`).
			WithArgs("Blog", "", "default", "en", "articles").
			WillReturnRows(pgxmock.NewRows(settingsCols).AddRow(int64(1), "Blog", "", "default", "en", "articles"))
		mock.ExpectCommit()

		s, err := models.NewSiteSettings(db).Update(ctx, in)
		require.NoError(t, err)
		require.Equal(t, "Blog", s.Name)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("later saves update the existing row", func(t *testing.T) {
		t.Parallel()

		mock, db := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT * FROM "site_settings"`).
			WillReturnRows(pgxmock.NewRows(settingsCols).AddRow(int64(4), "Old", "", "default", "en", "articles"))
		mock.ExpectQuery(`UPDATE "site_settings" SET "name" = $1, "description" = $2, "theme" = $3, "site_language" = $4, "default_route" = $5 WHERE "site_settings"."id" = $6 RETURNING *`).
			WithArgs("Blog", "", "default", "en", "articles", int64(4)).
			WillReturnRows(pgxmock.NewRows(settingsCols).AddRow(int64(4), "Blog", "", "default", "en", "articles"))
		mock.ExpectCommit()

		s, err := models.NewSiteSettings(db).Update(ctx, in)
		require.NoError(t, err)
		require.Equal(t, int64(4), s.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()

		_, db := newMock(t)
		_, err := models.NewSiteSettings(db).Update(ctx, models.SettingsInput{})

		ve, ok := models.AsValidationError(err)
		require.True(t, ok)
		require.Contains(t, ve.Messages, "name is required")
		require.Contains(t, ve.Messages, "site_language is required")
	})
}

func TestSiteSettings_Navigation(t *testing.T) {
	t.Parallel()

	mock, db := newMock(t)
	mock.ExpectQuery(`SELECT "articles"."id", "articles"."title", "categories"."name", "categories"."description" ` +
		`FROM "articles" JOIN "categories" ON articles.category_id = categories.id ` +
		`WHERE "articles"."published" = $1 AND "articles"."draft" = $2`).
		WithArgs(true, false).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "name", "description"}).
			AddRow(int64(3), "Match report", "Sport", "Games").
			AddRow(int64(2), "Elections", "News", "Daily").
			AddRow(int64(1), "Season start", "Sport", "Games"))

	nav, err := models.NewSiteSettings(db).Navigation(context.Background())
	require.NoError(t, err)
	require.Equal(t, []models.NavigationCategory{
		{Name: "News", Description: "Daily", Articles: []models.NavigationArticle{{ID: 2, Title: "Elections"}}},
		{Name: "Sport", Description: "Games", Articles: []models.NavigationArticle{
			{ID: 1, Title: "Season start"},
			{ID: 3, Title: "Match report"},
		}},
	}, nav)
	require.NoError(t, mock.ExpectationsWereMet())
}
