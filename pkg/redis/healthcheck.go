package redis

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// Healthcheck returns a readiness check that pings the client.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrHealthcheckFailed
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Mark(errors.Wrap(err, "ping"), ErrHealthcheckFailed)
		}
		return nil
	}
}

// Shutdown returns a shutdown hook that closes the client.
func Shutdown(client io.Closer) func(context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}
