package health_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/MartinPJB/BLOG-CMS/pkg/health"
)

func ok(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("connection refused") }

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("no checks is healthy", func(t *testing.T) {
		t.Parallel()
		require.True(t, health.Run(context.Background(), nil).Healthy())
	})

	t.Run("one failure makes the response unhealthy", func(t *testing.T) {
		t.Parallel()

		resp := health.Run(context.Background(), health.Checks{
			"postgres": ok,
			"redis":    failing,
		})
		require.False(t, resp.Healthy())
		require.Equal(t, []string{"redis"}, resp.Failed())
		require.Equal(t, health.StatusHealthy, resp.Checks["postgres"].Status)
		require.Equal(t, "connection refused", resp.Checks["redis"].Error)
	})

	t.Run("slow check times out", func(t *testing.T) {
		t.Parallel()

		slow := func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}
		resp := health.Run(context.Background(), health.Checks{"slow": slow}, health.WithTimeout(10*time.Millisecond))
		require.Equal(t, []string{"slow"}, resp.Failed())
	})
}

func TestVerify(t *testing.T) {
	t.Parallel()

	require.NoError(t, health.Verify(context.Background(), health.Checks{"postgres": ok}))

	err := health.Verify(context.Background(), health.Checks{"postgres": failing, "redis": failing})
	require.ErrorIs(t, err, health.ErrCheckFailed)
	require.Contains(t, err.Error(), "postgres redis")
}

func TestReadinessHandler(t *testing.T) {
	t.Parallel()

	t.Run("plain text", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		checks := health.Checks{"postgres": failing, "redis": failing, "sessions": ok}
		health.ReadinessHandler(checks)(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "unavailable: postgres, redis", rec.Body.String())
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	})

	t.Run("json on request", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health/ready?format=json", nil)
		health.ReadinessHandler(health.Checks{"postgres": ok})(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp health.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.True(t, resp.Healthy())
		require.Contains(t, resp.Checks, "postgres")
	})
}

func TestLivenessHandler(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("Accept", "application/json")
	health.LivenessHandler()(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
