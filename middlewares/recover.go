package middlewares

import (
	"runtime"

	"github.com/getsentry/sentry-go"

	"github.com/MartinPJB/BLOG-CMS/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	StackSize         int  // max stack trace size (default: 4096)
	DisablePrintStack bool // omit the stack trace from logs
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.StackSize = size
	}
}

func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisablePrintStack = true
	}
}

// Recover turns a controller panic into a *PanicError, which the App renders
// as a 500 error page. The panic is logged and, when a Sentry hub is bound to
// the request, reported.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &RecoverConfig{
		StackSize: DefaultStackSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.StackSize <= 0 {
		cfg.StackSize = DefaultStackSize
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				var stack []byte
				if !cfg.DisablePrintStack {
					stack = make([]byte, cfg.StackSize)
					stack = stack[:runtime.Stack(stack, false)]
					c.LogError("panic recovered", "panic", r, "stack", string(stack))
				} else {
					c.LogError("panic recovered", "panic", r)
				}

				if hub := sentry.GetHubFromContext(c); hub != nil {
					hub.RecoverWithContext(c, r)
				}

				err = &PanicError{Value: r, Stack: stack}
			}()

			return next(c)
		}
	}
}
