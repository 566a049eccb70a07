// Package logger builds the process-wide structured logger.
//
// [New] returns a *slog.Logger writing JSON (or text) at the configured level.
// Context extractors add request-scoped attributes such as the request id to
// every record:
//
//	requestID := func(ctx context.Context) (slog.Attr, bool) {
//		id, ok := ctx.Value(requestIDKey{}).(string)
//		return slog.String("request_id", id), ok
//	}
//	log := logger.New(logger.Config{Level: "debug"}, requestID)
//
// When [SentryConfig].DSN is set, records are also sent to Sentry: errors become
// issues, warnings and errors are stored as logs. Sentry init failures fall back
// to local logging.
//
// [NewNope] returns a logger that drops everything; packages use it as their
// default so a nil logger never has to be checked.
package logger
