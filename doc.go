// Package cms is a small blog content management system: it turns an HTTP
// request into a call on a controller action, under an access level, and
// renders the result.
//
// # Request Flow
//
//  1. The App parses the request into a RequestContext. Both
//     /?route=articles&action=show&opt_param=4 and /articles/show/4 work.
//  2. The session user, if any, is resolved to an Auth.
//  3. Router.Dispatch looks up (route, action), checks the method and the
//     access level, then builds the controller and runs the action.
//  4. Routing failures (403, 404, 405) and controller errors (500) render
//     the "error" view.
//
// # Wiring
//
//	db := database.New(cfg.Database, database.WithLogger(log))
//	router := cms.NewRouter(log)
//	controllers.Register(router, controllers.Deps{...})
//
//	app := cms.New(router,
//		cms.WithLogger(log),
//		cms.WithRenderer(views.New()),
//		cms.WithSession(pgstore.New(db)),
//		cms.WithAuthResolver(users.Resolve),
//		cms.WithDefaultRoute("articles"),
//	)
//	return app.Run(cms.Address(":8080"), cms.ShutdownHook(database.Shutdown(db)))
//
// # Access Levels
//
//   - Public (0): anyone
//   - Authenticated (1): a logged-in user
//   - Admin (2): a user with the "admin" role
//
// # Packages
//
//   - pkg/database: the query builder and data-access Manager
//   - models: categories, articles, users and site settings
//   - controllers: the per-entity controllers and the route table
//   - views: the templ-based Renderer
//   - config: YAML plus environment configuration
//   - cmd/cms: the serve, migrate and routes commands
package cms
