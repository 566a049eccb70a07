package redis

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// Config holds the Redis connection settings. Only URL is required.
type Config struct {
	URL           string        `yaml:"url" env:"REDIS_URL"`
	PoolSize      int           `yaml:"pool_size" env:"REDIS_POOL_SIZE"`
	MinIdleConns  int           `yaml:"min_idle_conns" env:"REDIS_MIN_IDLE_CONNS"`
	MaxIdleTime   time.Duration `yaml:"max_idle_time" env:"REDIS_MAX_IDLE_TIME"`
	MaxActiveTime time.Duration `yaml:"max_active_time" env:"REDIS_MAX_ACTIVE_TIME"`
	RetryAttempts int           `yaml:"retry_attempts" env:"REDIS_RETRY_ATTEMPTS"`
	RetryInterval time.Duration `yaml:"retry_interval" env:"REDIS_RETRY_INTERVAL"`
	ReadTimeout   time.Duration `yaml:"read_timeout" env:"REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" env:"REDIS_WRITE_TIMEOUT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT"`
}

// Enabled reports whether a Redis URL is configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}

// WithDefaults fills zero fields.
func (c Config) WithDefaults() Config {
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns < 0 {
		c.MinIdleConns = 0
	}
	if c.MaxIdleTime <= 0 {
		c.MaxIdleTime = 10 * time.Minute
	}
	if c.MaxActiveTime <= 0 {
		c.MaxActiveTime = 30 * time.Minute
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 2 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 3 * time.Second
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	return c
}

// options parses the URL and applies the pool settings.
func (c Config) options() (*redis.Options, error) {
	if c.URL == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(c.URL, "redis://") && !strings.HasPrefix(c.URL, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	opts, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parse url"), ErrFailedToParseURL)
	}
	opts.PoolSize = c.PoolSize
	opts.MinIdleConns = c.MinIdleConns
	opts.ConnMaxIdleTime = c.MaxIdleTime
	opts.ConnMaxLifetime = c.MaxActiveTime
	opts.ReadTimeout = c.ReadTimeout
	opts.WriteTimeout = c.WriteTimeout
	opts.DialTimeout = c.DialTimeout
	return opts, nil
}

// Open connects to Redis, retrying with linear backoff.
// Supports both redis:// and rediss:// (TLS) URLs.
//
//	client, err := redis.Open(ctx, redis.Config{URL: "redis://localhost:6379/0"}, log)
func Open(ctx context.Context, cfg Config, log *slog.Logger) (redis.UniversalClient, error) {
	cfg = cfg.WithDefaults()
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return connect(ctx, opts, cfg.RetryAttempts, cfg.RetryInterval, log)
}

func connect(ctx context.Context, opts *redis.Options, attempts int, interval time.Duration, log *slog.Logger) (redis.UniversalClient, error) {
	attempts = max(attempts, 1)

	var lastErr error
	for i := range attempts {
		client := redis.NewClient(opts)

		lastErr = client.Ping(ctx).Err()
		if lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		log.WarnContext(ctx, "redis connection attempt failed",
			slog.Int("attempt", i+1),
			slog.String("addr", opts.Addr),
			slog.String("error", lastErr.Error()),
		)

		if i == attempts-1 {
			break
		}
		if err := wait(ctx, time.Duration(i+1)*interval); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "connect"), ErrConnectionFailed)
		}
	}

	return nil, errors.Mark(errors.Wrap(lastErr, "connect"), ErrConnectionFailed)
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
