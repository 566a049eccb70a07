// Package redis opens the optional Redis client used for session storage.
//
//	client, err := redis.Open(ctx, cfg.Redis, log)
//	if err != nil {
//		return err
//	}
//	app := cms.New(
//		cms.WithHealthChecks(health.Checks{"redis": redis.Healthcheck(client)}),
//		cms.WithShutdownHook(redis.Shutdown(client)),
//	)
//
// [Open] retries failed pings with linear backoff before giving up with
// [ErrConnectionFailed].
package redis
