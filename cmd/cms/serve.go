package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	cms "github.com/MartinPJB/BLOG-CMS"
	"github.com/MartinPJB/BLOG-CMS/config"
	"github.com/MartinPJB/BLOG-CMS/controllers"
	"github.com/MartinPJB/BLOG-CMS/middlewares"
	"github.com/MartinPJB/BLOG-CMS/migrations"
	"github.com/MartinPJB/BLOG-CMS/models"
	"github.com/MartinPJB/BLOG-CMS/pkg/database"
	"github.com/MartinPJB/BLOG-CMS/pkg/health"
	"github.com/MartinPJB/BLOG-CMS/pkg/redis"
	"github.com/MartinPJB/BLOG-CMS/pkg/session"
	"github.com/MartinPJB/BLOG-CMS/pkg/session/memstore"
	"github.com/MartinPJB/BLOG-CMS/pkg/session/pgstore"
	"github.com/MartinPJB/BLOG-CMS/pkg/session/redisstore"
	"github.com/MartinPJB/BLOG-CMS/views"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			e, err := root.setup(ctx)
			if err != nil {
				return err
			}
			return serve(ctx, e)
		},
	}
}

func serve(ctx context.Context, e *env) error {
	cfg, log, db := e.cfg, e.log, e.db

	runOpts := []cms.RunOption{
		cms.Address(cfg.Server.Address),
		cms.Logger(log),
		cms.ShutdownTimeout(cfg.Server.ShutdownTimeout),
		cms.WithContext(ctx),
	}
	checks := health.Checks{"postgres": database.Healthcheck(db)}

	if cfg.Server.AutoMigrate {
		if err := db.Migrate(ctx, migrations.FS, log); err != nil {
			db.Close()
			return err
		}
	}

	var store session.Store
	switch cfg.Session.Store {
	case config.StoreRedis:
		client, err := redis.Open(ctx, cfg.Redis, log)
		if err != nil {
			db.Close()
			return err
		}
		store = redisstore.New(client)
		checks["redis"] = redis.Healthcheck(client)
		runOpts = append(runOpts, cms.ShutdownHook(redis.Shutdown(client)))
	case config.StoreMemory:
		log.WarnContext(ctx, "sessions are kept in memory and lost on restart")
		store = memstore.New()
	default:
		store = pgstore.New(db)
	}

	if err := health.Verify(ctx, checks, health.WithLogger(log)); err != nil {
		db.Close()
		return err
	}

	settings := models.NewSiteSettings(db)
	users := models.NewUsers(db, models.WithBcryptCost(cfg.Site.BcryptCost))

	defaultRoute := cfg.Site.DefaultRoute
	if site, err := settings.Get(ctx); err != nil {
		log.WarnContext(ctx, "site settings unavailable, using configured defaults", "error", err)
	} else if site.DefaultRoute != "" {
		defaultRoute = site.DefaultRoute
	}

	router := cms.NewRouter(log)
	controllers.Register(router, controllers.Deps{
		Articles:   models.NewArticles(db),
		Categories: models.NewCategories(db),
		Blocks:     models.NewBlocks(db),
		Users:      users,
	})

	readiness := make([]cms.HealthOption, 0, len(checks))
	for name, fn := range checks {
		readiness = append(readiness, cms.WithReadinessCheck(name, fn))
	}

	sessionPath := cfg.Server.BasePath
	if sessionPath == "" {
		sessionPath = "/"
	}

	app := cms.New(router,
		cms.WithLogger(log),
		cms.WithMiddleware(
			middlewares.Recover(),
			middlewares.RequestID(),
			middlewares.AccessLog(),
			middlewares.Timeout(cfg.Server.RequestTimeout),
		),
		cms.WithRenderer(views.New()),
		cms.WithGlobals(siteGlobals(settings)),
		cms.WithAuthResolver(users.Resolve),
		cms.WithSession(store,
			cms.WithSessionCookieName(cfg.Session.CookieName),
			cms.WithSessionMaxAge(cfg.Session.MaxAge),
			cms.WithSessionDomain(cfg.Session.Domain),
			cms.WithSessionPath(sessionPath),
			cms.WithSessionSecure(cfg.Session.Secure),
		),
		cms.WithDefaultRoute(defaultRoute),
		cms.WithBasePath(cfg.Server.BasePath),
		cms.WithStaticFiles("/static/", os.DirFS(cfg.Server.StaticDir), "."),
		cms.WithHealthChecks(readiness...),
	)

	log.InfoContext(ctx, "routes registered", "count", len(router.List()), "default_route", defaultRoute)
	return app.Run(append(runOpts, cms.ShutdownHook(database.Shutdown(db)))...)
}

// siteGlobals adds the site settings and the category menu to every view.
func siteGlobals(settings *models.SiteSettings) cms.GlobalsFunc {
	return func(c cms.Context) (map[string]any, error) {
		site, err := settings.Get(c)
		if err != nil {
			return nil, err
		}
		nav, err := settings.Navigation(c)
		if err != nil {
			return nil, err
		}
		return map[string]any{"site": site, "navigation": nav}, nil
	}
}
