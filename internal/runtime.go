package internal

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"

	"github.com/MartinPJB/BLOG-CMS/pkg/logger"
)

// runServer serves h until cfg.ctx is done or a signal arrives, then drains
// in-flight requests and runs the shutdown hooks.
func runServer(h http.Handler, cfg *runConfig) error {
	log := cfg.logger
	if log == nil {
		log = logger.NewNope()
	}

	srv := &http.Server{
		Handler:           h,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}

	ln := cfg.listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", cfg.address); err != nil {
			return errors.Wrapf(err, "listen on %s", cfg.address)
		}
	}

	ctx, stop := signal.NotifyContext(cfg.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("cms listening", slog.String("address", ln.Addr().String()))
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		serveErr <- err
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return errors.Wrap(err, "serve")
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("cms stopping", slog.Duration("timeout", cfg.shutdownTimeout))
	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer cancel()

	err := errors.Wrap(srv.Shutdown(drainCtx), "drain requests")
	for i, hook := range cfg.hooks {
		if hookErr := hook(drainCtx); hookErr != nil {
			log.Error("shutdown hook failed", slog.Int("hook", i), slog.Any("error", hookErr))
			err = errors.CombineErrors(err, hookErr)
		}
	}
	if err != nil {
		return err
	}

	log.Info("cms stopped")
	return nil
}
