// Package middlewares provides the HTTP middleware stack of the CMS.
//
// # Request ID
//
// RequestID tags each request with an ID, reusing X-Request-ID or
// X-Correlation-ID when the proxy sent one and generating a UUID otherwise.
// Pair it with RequestIDExtractor so every log entry carries the ID:
//
//	log := logger.New(cfg.Log, middlewares.RequestIDExtractor())
//	app := cms.New(router,
//		cms.WithLogger(log),
//		cms.WithMiddleware(
//			middlewares.RequestID(),
//			middlewares.AccessLog(),
//			middlewares.Recover(),
//			middlewares.Timeout(15*time.Second),
//		),
//	)
//
// # Recover
//
// Recover turns a controller panic into a *PanicError. The App renders it as
// the 500 error page. Stack capture is bounded by WithRecoverStackSize.
//
// # Timeout
//
// Timeout puts a deadline on the request context, so database calls made
// with it are cancelled. A request that hits the deadline before writing
// anything fails with a *TimeoutError and gets the 500 error page.
//
// # Access Log
//
// AccessLog writes one entry per request with method, URI, status and
// duration. 5xx responses are logged at error level.
package middlewares
