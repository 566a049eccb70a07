package middlewares

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/MartinPJB/BLOG-CMS/internal"
)

// DefaultTimeout is the request deadline used when Timeout gets zero.
const DefaultTimeout = 30 * time.Second

// Timeout puts a deadline on the request context. Controllers pass their
// Context to the stores, so queries still running at the deadline are
// cancelled. If the deadline passes before anything was written, the
// request fails with a *TimeoutError and the error page is rendered with the
// original, deadline-free context.
func Timeout(d time.Duration) internal.Middleware {
	if d <= 0 {
		d = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			parent := c.Request().Context()
			ctx, cancel := context.WithTimeout(parent, d)
			defer cancel()

			c.SetContext(ctx)
			err := next(c)
			c.SetContext(parent)

			if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Written() {
				c.LogWarn("request timeout", "timeout", d.String(), "route", c.RequestContext().Route())
				return &TimeoutError{Duration: d}
			}
			return err
		}
	}
}
