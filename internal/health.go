package internal

import (
	"time"

	"github.com/MartinPJB/BLOG-CMS/pkg/health"
)

const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
	timeout       time.Duration
}

// HealthOption configures the health endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath overrides "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath overrides "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check:
//
//	internal.WithReadinessCheck("postgres", database.Healthcheck(db))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if fn == nil {
			return
		}
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}

// WithReadinessTimeout bounds a readiness check.
func WithReadinessTimeout(d time.Duration) HealthOption {
	return func(c *healthConfig) {
		c.timeout = d
	}
}

// WithHealthChecks enables the liveness and readiness endpoints.
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}
