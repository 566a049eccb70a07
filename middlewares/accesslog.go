package middlewares

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/MartinPJB/BLOG-CMS/internal"
)

// AccessLog logs one line per request with its status and duration.
func AccessLog() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			start := time.Now()
			err := next(c)

			status := http.StatusOK
			if rw, ok := c.Response().(interface{ Status() int }); ok && rw.Status() != 0 {
				status = rw.Status()
			}
			if err != nil {
				status = http.StatusInternalServerError
			}

			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			c.Logger().Log(c, level, "request",
				slog.String("method", c.Request().Method),
				slog.String("uri", c.Request().URL.RequestURI()),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)),
			)
			return err
		}
	}
}
