package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponseWriter(t *testing.T) {
	t.Parallel()

	t.Run("status is sent once", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := NewResponseWriter(rec)
		rw.WriteHeader(http.StatusNotFound)
		rw.WriteHeader(http.StatusOK)

		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, http.StatusNotFound, rw.Status())
		require.True(t, rw.Written())
	})

	t.Run("write implies 200 and counts bytes", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := NewResponseWriter(rec)
		require.False(t, rw.Written())

		n, err := rw.Write([]byte("hello"))
		require.NoError(t, err)
		require.Equal(t, 5, n)
		require.Equal(t, int64(5), rw.Size())
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("hooks run once in order before the first write", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := NewResponseWriter(rec)

		var calls []string
		rw.OnBeforeWrite(func() {
			calls = append(calls, "first")
			rw.Header().Set("Set-Cookie", "cms_session=abc")
		})
		rw.OnBeforeWrite(func() { calls = append(calls, "second") })

		_, _ = rw.Write([]byte("a"))
		_, _ = rw.Write([]byte("b"))
		rw.WriteHeader(http.StatusTeapot)

		require.Equal(t, []string{"first", "second"}, calls)
		require.Equal(t, "cms_session=abc", rec.Header().Get("Set-Cookie"), "hooks may still set headers")
		require.Equal(t, "ab", rec.Body.String())
	})

	t.Run("flush and unwrap", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := NewResponseWriter(rec)
		rw.Flush()
		require.True(t, rec.Flushed)
		require.Same(t, rec, rw.Unwrap())
	})
}
