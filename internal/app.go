package internal

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MartinPJB/BLOG-CMS/pkg/health"
	"github.com/MartinPJB/BLOG-CMS/pkg/logger"
)

const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
	defaultShutdownTimeout   = 30 * time.Second
)

// App is the HTTP edge of the CMS: it parses each request, resolves the
// caller, hands both to the Router and renders routing errors.
// App is immutable after New.
type App struct {
	mux            chi.Router
	router         *Router
	renderer       Renderer
	globals        GlobalsFunc
	authResolver   AuthResolver
	sessionManager *SessionManager
	errorHandler   ErrorHandler
	healthConfig   *healthConfig
	logger         *slog.Logger
	defaultRoute   string
	basePath       string
	middlewares    []Middleware
	staticRoutes   []staticRoute
}

type staticRoute struct {
	handler http.Handler
	pattern string
}

// New builds the App. The router must already hold every route.
//
//	router := internal.NewRouter(log)
//	controllers.Register(router, deps)
//	app := internal.New(router,
//		internal.WithLogger(log),
//		internal.WithRenderer(views.New()),
//		internal.WithSession(pgstore.New(db)),
//	)
func New(router *Router, opts ...Option) *App {
	a := &App{
		mux:    chi.NewRouter(),
		router: router,
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.router == nil {
		a.router = NewRouter(a.logger)
	}
	if a.errorHandler == nil {
		a.errorHandler = a.renderError
	}
	if a.sessionManager != nil {
		a.sessionManager.SetLogger(a.logger)
	}

	a.setupRoutes()
	return a
}

// ServeHTTP makes App an http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Router returns the route table owner.
func (a *App) Router() *Router {
	return a.router
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (a *App) Run(opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.logger == nil {
		cfg.logger = a.logger
	}
	return runServer(a, cfg)
}

func (a *App) setupRoutes() {
	for _, mw := range a.middlewares {
		a.mux.Use(a.adaptMiddleware(mw))
	}

	for _, sr := range a.staticRoutes {
		a.mux.Mount(sr.pattern, sr.handler)
	}

	if a.healthConfig != nil {
		var opts []health.Option
		opts = append(opts, health.WithLogger(a.logger))
		if a.healthConfig.timeout > 0 {
			opts = append(opts, health.WithTimeout(a.healthConfig.timeout))
		}
		a.mux.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.mux.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks, opts...))
	}

	// Both URL shapes reach the dispatcher:
	// /?route=r&action=a&opt_param=x and /r/a/x/y.
	h := http.HandlerFunc(a.serveDispatch)
	a.mux.Handle("/", h)
	a.mux.Handle("/{route}", h)
	a.mux.Handle("/{route}/", h)
	a.mux.Handle("/{route}/{action}", h)
	a.mux.Handle("/{route}/{action}/*", h)
}

// serveDispatch is the single entry point for every CMS page.
func (a *App) serveDispatch(w http.ResponseWriter, r *http.Request) {
	c := newContext(w, r, a)

	rc, err := RequestContextFromHTTP(r)
	if err != nil {
		a.handleError(c, err)
		return
	}
	if rc.Route() == "" && a.defaultRoute != "" {
		rc = rc.withRoute(a.defaultRoute)
	}
	c.rc = rc

	auth, err := a.resolveAuth(c)
	if err != nil {
		a.handleError(c, err)
		return
	}
	c.auth = auth

	if err := a.router.Dispatch(c, auth); err != nil {
		a.handleError(c, err)
	}
}

// resolveAuth turns the session user into an Auth. Without a session
// manager or resolver every caller is anonymous.
func (a *App) resolveAuth(c *requestContext) (Auth, error) {
	if a.sessionManager == nil || a.authResolver == nil {
		return Anonymous(), nil
	}
	sess, err := c.Session()
	if err != nil {
		return Anonymous(), err
	}
	if sess == nil || !sess.IsAuthenticated() {
		return Anonymous(), nil
	}
	user, err := a.authResolver(c, *sess.UserID)
	if err != nil {
		return Anonymous(), err
	}
	if user == nil {
		return Anonymous(), nil
	}
	return AuthFor(user), nil
}

func (a *App) handleError(c Context, err error) {
	if c.Written() {
		a.logger.ErrorContext(c, "error after response was written", slog.Any("error", err))
		return
	}
	if herr := a.errorHandler(c, err); herr != nil {
		a.logger.ErrorContext(c, "error handler failed", slog.Any("error", herr))
		http.Error(c.Response(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// renderError is the default ErrorHandler. It renders the "error" view with
// errorCode and controllerType (the requested route name).
func (a *App) renderError(c Context, err error) error {
	httpErr := AsHTTPError(err)
	if httpErr == nil {
		a.logger.ErrorContext(c, "request failed",
			slog.String("route", c.RequestContext().Route()),
			slog.String("action", c.Action()),
			slog.Any("error", err),
		)
		httpErr = DispatchError(http.StatusInternalServerError, c.RequestContext().Route())
	} else if httpErr.Err != nil {
		a.logger.WarnContext(c, "request error",
			slog.Int("status", httpErr.Code),
			slog.Any("error", httpErr.Err),
		)
	}
	route := httpErr.Route
	if route == "" {
		route = c.RequestContext().Route()
	}

	if a.renderer == nil {
		http.Error(c.Response(), httpErr.StatusText(), httpErr.Code)
		return nil
	}
	return c.RenderStatus(httpErr.Code, "error", map[string]any{
		"errorCode":      httpErr.Code,
		"controllerType": route,
		"message":        httpErr.Error(),
	})
}

// adaptMiddleware runs a Middleware as chi middleware. Values the middleware
// stores with c.Set travel on to the next handler through the request.
func (a *App) adaptMiddleware(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nextFunc := func(c Context) error {
				next.ServeHTTP(c.Response(), c.Request())
				return nil
			}
			c := newContext(w, r, a)
			if err := mw(nextFunc)(c); err != nil {
				a.handleError(c, err)
			}
		})
	}
}
