package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MartinPJB/BLOG-CMS/pkg/logger"
)

type ctxKey struct{}

func requestID(ctx context.Context) (slog.Attr, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return slog.String("request_id", id), ok
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json output with extracted attributes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.Config{Output: &buf}, requestID)

		ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
		log.InfoContext(ctx, "hello", slog.String("route", "articles"))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		require.Equal(t, "hello", rec["msg"])
		require.Equal(t, "req-1", rec["request_id"])
		require.Equal(t, "articles", rec["route"])
	})

	t.Run("missing context value adds nothing", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.Config{Output: &buf}, requestID, nil)
		log.Info("hello")

		require.NotContains(t, buf.String(), "request_id")
	})

	t.Run("level filters records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.Config{Level: "warn", Output: &buf})
		log.Info("dropped")
		log.Warn("kept")

		require.NotContains(t, buf.String(), "dropped")
		require.Contains(t, buf.String(), "kept")
	})

	t.Run("text format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.Config{Format: "text", Output: &buf})
		log.With(slog.String("component", "router")).WithGroup("req").Info("dispatch", slog.Int("code", 404))

		require.Contains(t, buf.String(), "msg=dispatch")
		require.Contains(t, buf.String(), "component=router")
		require.Contains(t, buf.String(), "req.code=404")
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	testCases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range testCases {
		require.Equal(t, want, logger.ParseLevel(in), in)
	}
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	require.False(t, log.Enabled(context.Background(), slog.LevelError))
}
