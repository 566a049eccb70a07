package internal

// HandlerFunc is the signature middlewares wrap.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc:
//
//	func Audit(next internal.HandlerFunc) internal.HandlerFunc {
//		return func(c internal.Context) error {
//			c.LogInfo("page", "route", c.RequestContext().Route())
//			return next(c)
//		}
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders an error returned by dispatch or a middleware.
type ErrorHandler func(Context, error) error
