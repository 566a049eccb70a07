package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/MartinPJB/BLOG-CMS/config"
	"github.com/MartinPJB/BLOG-CMS/middlewares"
	"github.com/MartinPJB/BLOG-CMS/pkg/database"
	"github.com/MartinPJB/BLOG-CMS/pkg/logger"
)

func run(args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

type rootOptions struct {
	cfgPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "cms",
		Short:         "Blog CMS",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.cfgPath, "config", "c", "cms.yaml", "config yaml path (optional)")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newRoutesCmd(),
		newUserCmd(opts),
	)
	return cmd
}

// env is what every command needs: configuration, a logger and a connected database.
type env struct {
	cfg config.Config
	log *slog.Logger
	db  *database.Manager
}

func (o *rootOptions) setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load(o.cfgPath)
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.Log, middlewares.RequestIDExtractor())

	db := database.New(cfg.Database, database.WithLogger(log))
	if _, err := db.Connection(ctx); err != nil {
		log.ErrorContext(ctx, "database unavailable", "error", err)
		return nil, errors.Wrap(err, "connect database")
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
