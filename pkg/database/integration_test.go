package database_test

import (
	"context"
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/MartinPJB/BLOG-CMS/pkg/database"
)

// Runs against a real PostgreSQL container. Opt in with CMS_INTEGRATION_TESTS=1.
func TestManager_Integration(t *testing.T) {
	if testing.Short() || os.Getenv("CMS_INTEGRATION_TESTS") == "" {
		t.Skip("set CMS_INTEGRATION_TESTS=1 to run against a postgres container")
	}

	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("cms_test"),
		postgres.WithUsername("cms"),
		postgres.WithPassword("cms"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	m := database.New(database.Config{ConnectionString: dsn})
	t.Cleanup(m.Close)

	_, err = m.Connection(ctx)
	require.NoError(t, err)

	require.NoError(t, m.CreateDatabase(ctx, "blog"))
	require.NoError(t, m.ConnectToDatabase(ctx, "blog"))
	require.Equal(t, "blog", m.CurrentDatabase())

	require.NoError(t, m.CreateTable(ctx, "categories", []database.ColumnDef{
		{Name: "id", Type: "BIGSERIAL", Constraints: "PRIMARY KEY"},
		{Name: "name", Type: "VARCHAR(255)", Constraints: "NOT NULL"},
	}))

	t.Run("create then read", func(t *testing.T) {
		row, err := m.Create(ctx, "categories", database.Set("name", "News"))
		require.NoError(t, err)
		id := row.Int64("id")
		require.NotZero(t, id)

		rows, err := m.Read(ctx, "categories", database.AllColumns(), database.Where("id", id))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Equal(t, "News", rows[0].String("name"))
	})

	t.Run("update then read", func(t *testing.T) {
		row, err := m.Create(ctx, "categories", database.Set("name", "Sport"))
		require.NoError(t, err)
		id := row.Int64("id")

		_, err = m.Update(ctx, "categories", database.Set("name", "Culture"), database.Where("id", id))
		require.NoError(t, err)

		rows, err := m.Read(ctx, "categories", database.Flat("name"), database.Where("id", id))
		require.NoError(t, err)
		require.Equal(t, "Culture", rows[0].String("name"))
	})

	t.Run("transaction shares one connection", func(t *testing.T) {
		var id int64
		err := m.WithTx(ctx, func(tx *database.Manager) error {
			if _, err := tx.Create(ctx, "categories", database.Set("name", "Tech")); err != nil {
				return err
			}
			var err error
			id, err = tx.LastInsertedID(ctx)
			return err
		})
		require.NoError(t, err)

		n, err := m.Delete(ctx, "categories", database.Where("id", id))
		require.NoError(t, err)
		require.Equal(t, int64(1), n)
	})

	t.Run("migrations apply", func(t *testing.T) {
		migrations := fstest.MapFS{
			"00001_tags.sql": {Data: []byte("-- +goose Up\nCREATE TABLE tags (id BIGSERIAL PRIMARY KEY);\n-- +goose Down\nDROP TABLE tags;\n")},
		}
		require.NoError(t, m.Migrate(ctx, migrations, nil))

		rows, err := m.Read(ctx, "tags", database.AllColumns(), nil)
		require.NoError(t, err)
		require.Empty(t, rows)
	})
}
