package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/MartinPJB/BLOG-CMS/config"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// Tests in this file set environment variables and cannot run in parallel.

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Server.Address)
	require.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, config.StorePostgres, cfg.Session.Store)
	require.Equal(t, "cms_session", cfg.Session.CookieName)
	require.Equal(t, "articles", cfg.Site.DefaultRoute)
	require.Equal(t, int32(4), cfg.Database.MaxConns)
	require.Equal(t, "public", cfg.Database.Schema)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Address)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := writeFile(t, `
server:
  address: ":9000"
  base_path: /blog
  shutdown_timeout: 3s
database:
  host: db.internal
  name: blog
  max_conns: 8
session:
  store: memory
site:
  default_route: categories
log:
  level: debug
  sentry:
    environment: staging
`)
	t.Setenv("DATABASE_HOST", "db.override")
	t.Setenv("CMS_ADDRESS", ":9100")
	t.Setenv("SENTRY_DSN", "https://key@example.com/1")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, ":9100", cfg.Server.Address)
	require.Equal(t, "/blog", cfg.Server.BasePath)
	require.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, "db.override", cfg.Database.Host)
	require.Equal(t, "blog", cfg.Database.Name)
	require.Equal(t, int32(8), cfg.Database.MaxConns)
	require.Equal(t, config.StoreMemory, cfg.Session.Store)
	require.Equal(t, "categories", cfg.Site.DefaultRoute)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "staging", cfg.Log.Sentry.Environment)
	require.Equal(t, "https://key@example.com/1", cfg.Log.Sentry.DSN)
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "unknown store", body: "session:\n  store: files\n"},
		{name: "redis store without url", body: "session:\n  store: redis\n"},
		{name: "bcrypt cost", body: "site:\n  bcrypt_cost: 2\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, tc.body))
			require.Error(t, err)
			require.True(t, errors.Is(err, config.ErrInvalid))
		})
	}

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "server: [\n"))
		require.Error(t, err)
		require.False(t, errors.Is(err, config.ErrInvalid))
	})
}

func TestLoad_RedisStore(t *testing.T) {
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, config.StoreRedis, cfg.Session.Store)
	require.True(t, cfg.Redis.Enabled())
}
