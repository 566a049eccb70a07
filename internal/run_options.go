package internal

import (
	"context"
	"log/slog"
	"net"
	"time"
)

// RunOption configures App.Run.
type RunOption func(*runConfig)

type runConfig struct {
	address         string
	listener        net.Listener
	logger          *slog.Logger
	shutdownTimeout time.Duration
	hooks           []func(context.Context) error
	ctx             context.Context
}

func buildRunConfig(opts ...RunOption) *runConfig {
	cfg := &runConfig{
		address:         ":8080",
		shutdownTimeout: defaultShutdownTimeout,
		ctx:             context.Background(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Address sets the listen address, ":8080" when empty.
func Address(addr string) RunOption {
	return func(c *runConfig) {
		if addr != "" {
			c.address = addr
		}
	}
}

// Listener serves on an already open listener; Address is then ignored.
func Listener(ln net.Listener) RunOption {
	return func(c *runConfig) {
		c.listener = ln
	}
}

// Logger sets the server logger.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout bounds draining plus every hook.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// ShutdownHook runs fn once the server has drained. Hooks run in the order
// they were given, so release the session store before the database:
//
//	app.Run(internal.ShutdownHook(redis.Shutdown(client)), internal.ShutdownHook(database.Shutdown(db)))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.hooks = append(c.hooks, fn)
		}
	}
}

// WithContext sets the context whose cancellation stops the server.
// SIGINT and SIGTERM stop it too.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}
