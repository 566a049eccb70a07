package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MartinPJB/BLOG-CMS/internal"
	"github.com/MartinPJB/BLOG-CMS/middlewares"
)

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("passes through when handler completes in time", func(t *testing.T) {
		t.Parallel()

		c := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		handler := middlewares.Timeout(time.Second)(func(c internal.Context) error {
			_, ok := c.Deadline()
			require.True(t, ok, "handler sees the deadline")
			return nil
		})
		require.NoError(t, handler(c))

		_, ok := c.Deadline()
		require.False(t, ok, "deadline is removed afterwards")
	})

	t.Run("returns TimeoutError when the deadline passes", func(t *testing.T) {
		t.Parallel()

		c := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/?route=articles", nil))
		handler := middlewares.Timeout(10 * time.Millisecond)(func(c internal.Context) error {
			<-c.Done()
			return c.Err()
		})

		err := handler(c)
		te, ok := middlewares.AsTimeoutError(err)
		require.True(t, ok)
		require.Equal(t, 10*time.Millisecond, te.Duration)
		require.NoError(t, c.Err(), "error page renders with a live context")
		require.Equal(t, []string{"request timeout"}, c.logs)
	})

	t.Run("parent cancellation is not a timeout", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
		handler := middlewares.Timeout(time.Second)(func(c internal.Context) error { return c.Err() })

		err := handler(c)
		require.ErrorIs(t, err, context.Canceled)
		require.False(t, middlewares.IsTimeoutError(err))
	})

	t.Run("uses default timeout when zero provided", func(t *testing.T) {
		t.Parallel()

		c := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		handler := middlewares.Timeout(0)(func(c internal.Context) error {
			deadline, ok := c.Deadline()
			require.True(t, ok)
			require.WithinDuration(t, time.Now().Add(middlewares.DefaultTimeout), deadline, time.Second)
			return nil
		})
		require.NoError(t, handler(c))
	})
}
