package health

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout = 5 * time.Second

	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc matches the Healthcheck closures exported by the database and redis packages.
type CheckFunc func(ctx context.Context) error

// Checks maps a dependency name to its check.
type Checks map[string]CheckFunc

// Response is the aggregated result of a readiness check.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is the outcome of one named check.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Healthy reports whether every check passed.
func (r *Response) Healthy() bool {
	return r.Status == StatusHealthy
}

// Failed returns the names of failed checks, sorted.
func (r *Response) Failed() []string {
	var names []string
	for name, c := range r.Checks {
		if c.Status != StatusHealthy {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures health check behavior.
type Option func(*config)

// WithTimeout bounds the whole run. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for failed checks.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout: defaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes every check concurrently and aggregates the results.
// A check that fails with a deadline error is marked with ErrCheckTimeout.
func Run(ctx context.Context, checks Checks, opts ...Option) *Response {
	return runChecks(ctx, checks, newConfig(opts...))
}

// Verify runs the checks once and returns ErrCheckFailed naming every failure.
// The CLI uses it to refuse to start against unreachable dependencies.
func Verify(ctx context.Context, checks Checks, opts ...Option) error {
	resp := Run(ctx, checks, opts...)
	if resp.Healthy() {
		return nil
	}
	return errors.Wrapf(ErrCheckFailed, "%v", resp.Failed())
}

func runChecks(ctx context.Context, checks Checks, cfg *config) *Response {
	if len(checks) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]Check, len(checks))
		status  = StatusHealthy
	)

	// Checks never return errors to the group so one failure does not cancel the rest.
	var g errgroup.Group
	for name, check := range checks {
		g.Go(func() error {
			err := check(ctx)

			result := Check{Status: StatusHealthy}
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					err = errors.Mark(err, ErrCheckTimeout)
				}
				result = Check{Status: StatusUnhealthy, Error: err.Error()}
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			results[name] = result
			if err != nil {
				status = StatusUnhealthy
			}
			return nil
		})
	}
	_ = g.Wait()

	return &Response{Status: status, Checks: results}
}
