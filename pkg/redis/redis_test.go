package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	cerrors "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestOpen_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty URL", func(t *testing.T) {
		t.Parallel()

		client, err := Open(ctx, Config{}, nil)
		require.Nil(t, client)
		require.ErrorIs(t, err, ErrEmptyConnectionURL)
	})

	t.Run("invalid scheme", func(t *testing.T) {
		t.Parallel()

		for _, url := range []string{
			"http://localhost:6379",
			"localhost:6379",
			"postgres://localhost:5432",
		} {
			client, err := Open(ctx, Config{URL: url}, nil)
			require.Nil(t, client, url)
			require.ErrorIs(t, err, ErrFailedToParseURL, url)
		}
	})

	t.Run("malformed URL", func(t *testing.T) {
		t.Parallel()

		_, err := Open(ctx, Config{URL: "redis://localhost:6379/notanumber"}, nil)
		require.True(t, cerrors.Is(err, ErrFailedToParseURL))
	})

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()

		_, err := Open(ctx, Config{
			URL:           "redis://127.0.0.1:1/0",
			RetryAttempts: 2,
			RetryInterval: time.Millisecond,
			DialTimeout:   50 * time.Millisecond,
		}, nil)
		require.True(t, cerrors.Is(err, ErrConnectionFailed))
	})
}

func TestConfig_WithDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{URL: "redis://localhost:6379/0", PoolSize: 20}.WithDefaults()
	require.Equal(t, 20, cfg.PoolSize)
	require.Equal(t, 3, cfg.RetryAttempts)
	require.Equal(t, 5*time.Second, cfg.DialTimeout)
	require.True(t, cfg.Enabled())
	require.False(t, Config{}.Enabled())

	opts, err := cfg.options()
	require.NoError(t, err)
	require.Equal(t, "localhost:6379", opts.Addr)
	require.Equal(t, 20, opts.PoolSize)
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	err := Healthcheck(nil)(context.Background())
	require.ErrorIs(t, err, ErrHealthcheckFailed)
}

type closer struct {
	called bool
	err    error
}

func (c *closer) Close() error {
	c.called = true
	return c.err
}

func TestShutdown(t *testing.T) {
	t.Parallel()

	c := &closer{}
	require.NoError(t, Shutdown(c)(context.Background()))
	require.True(t, c.called)

	boom := errors.New("boom")
	require.ErrorIs(t, Shutdown(&closer{err: boom})(context.Background()), boom)
}

func TestWait(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	require.ErrorIs(t, wait(ctx, time.Hour), context.Canceled)
	require.Less(t, time.Since(start), time.Second)

	require.NoError(t, wait(context.Background(), time.Millisecond))
}
