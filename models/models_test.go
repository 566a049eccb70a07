package models_test

import (
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/MartinPJB/BLOG-CMS/pkg/database"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *database.Manager) {
	t.Helper()

	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock, database.New(database.Config{}, database.WithPool(mock))
}
