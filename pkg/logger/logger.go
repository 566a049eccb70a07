package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// Config selects the log level, output format and optional Sentry forwarding.
type Config struct {
	Level  string       `yaml:"level" env:"LOG_LEVEL"`
	Format string       `yaml:"format" env:"LOG_FORMAT"` // "json" (default) or "text"
	Sentry SentryConfig `yaml:"sentry"`

	// Output defaults to os.Stdout.
	Output io.Writer `yaml:"-"`
}

// SentryConfig holds Sentry integration settings. An empty DSN disables Sentry.
type SentryConfig struct {
	DSN         string `yaml:"dsn" env:"SENTRY_DSN"`
	Environment string `yaml:"environment" env:"SENTRY_ENVIRONMENT"`
	// MinLevel is the lowest level stored in Sentry as a log; errors always create issues.
	MinLevel string `yaml:"min_level" env:"SENTRY_MIN_LEVEL"`
}

// New builds a structured logger. When Sentry is configured, records go to
// both the local handler and Sentry. Extractors apply to both destinations.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var local slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		local = slog.NewTextHandler(out, opts)
	} else {
		local = slog.NewJSONHandler(out, opts)
	}

	if cfg.Sentry.DSN == "" {
		return slog.New(NewLogHandlerDecorator(local, extractors...))
	}

	env := cfg.Sentry.Environment
	if env == "" {
		env = "production"
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: env,
		EnableLogs:  true,
	}); err != nil {
		// Keep logging locally when Sentry can't start.
		slog.New(local).Error("failed to initialize sentry", slog.String("error", err.Error()))
		return slog.New(NewLogHandlerDecorator(local, extractors...))
	}

	logLevels := []slog.Level{slog.LevelWarn, slog.LevelError}
	if ParseLevel(cfg.Sentry.MinLevel) >= slog.LevelError {
		logLevels = []slog.Level{slog.LevelError}
	}
	remote := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevels,
	}.NewSentryHandler(context.Background())

	return slog.New(NewLogHandlerDecorator(fanout{local, remote}, extractors...))
}

// ParseLevel maps debug/info/warn/error to a slog level. Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewNope returns a logger that discards everything.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
