package database

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Healthcheck returns a closure that pings the database for readiness checks.
func Healthcheck(m *Manager) func(context.Context) error {
	return func(ctx context.Context) error {
		if m == nil {
			return ErrHealthcheckFailed
		}
		pool, err := m.Connection(ctx)
		if err != nil {
			return errors.Mark(err, ErrHealthcheckFailed)
		}
		if err := pool.Ping(ctx); err != nil {
			return errors.Mark(errors.Wrap(err, "ping"), ErrHealthcheckFailed)
		}
		return nil
	}
}

// Shutdown returns a function that closes the connection pool.
// Use with cms.ShutdownHook().
func Shutdown(m *Manager) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		m.Close()
		return nil
	}
}
