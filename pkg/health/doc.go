// Package health serves liveness and readiness endpoints.
//
// [LivenessHandler] always answers OK while the process runs.
// [ReadinessHandler] runs named [Checks] concurrently and answers 503 when any fails:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"postgres": database.Healthcheck(db),
//		"redis":    redis.Healthcheck(client),
//	}))
//
// Responses are plain text unless the client asks for JSON with
// Accept: application/json or ?format=json.
//
// [Verify] runs the same checks once and returns an error; the serve command
// uses it before accepting traffic.
package health
