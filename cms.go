package cms

import (
	"context"
	"io/fs"
	"log/slog"
	"net"
	"time"

	"github.com/MartinPJB/BLOG-CMS/internal"
	"github.com/MartinPJB/BLOG-CMS/pkg/health"
	"github.com/MartinPJB/BLOG-CMS/pkg/session"
)

// Type aliases - public API
type (
	// App is the HTTP edge: request parsing, caller resolution, dispatch and error pages.
	App = internal.App

	// Router owns the route table and dispatches requests against it.
	Router = internal.Router

	// Route is one registered (route, action) binding.
	Route = internal.Route

	// RouteTable maps route name to action name to Route.
	RouteTable = internal.RouteTable

	// RouteOption configures a Route at registration.
	RouteOption = internal.RouteOption

	// Target is a controller action bound with Bind.
	Target = internal.Target

	// AccessLevel is the minimum caller level a route requires.
	AccessLevel = internal.AccessLevel

	// RequestContext is the parsed routing view of one request.
	RequestContext = internal.RequestContext

	// Parameters are the GET and POST values left after route selection.
	Parameters = internal.Parameters

	// Context is what a controller sees of the request.
	Context = internal.Context

	// Auth is the caller identity passed to Dispatch.
	Auth = internal.Auth

	// User is an authenticated caller.
	User = internal.User

	// AuthResolver loads the user attached to a session.
	AuthResolver = internal.AuthResolver

	// Renderer turns a view name and its variables into HTML.
	Renderer = internal.Renderer

	// GlobalsFunc supplies variables added to every view.
	GlobalsFunc = internal.GlobalsFunc

	HandlerFunc  = internal.HandlerFunc
	Middleware   = internal.Middleware
	ErrorHandler = internal.ErrorHandler

	Option        = internal.Option
	RunOption     = internal.RunOption
	HealthOption  = internal.HealthOption
	SessionOption = internal.SessionOption

	// HTTPError is an error with an HTTP status, rendered by the error page.
	HTTPError       = internal.HTTPError
	HTTPErrorOption = internal.HTTPErrorOption

	// SessionStore persists sessions; see pkg/session/pgstore and pkg/session/redisstore.
	SessionStore = session.Store
	Session      = session.Session
)

// Access levels.
const (
	Public        = internal.Public
	Authenticated = internal.Authenticated
	Admin         = internal.Admin
)

// Reserved request keys and defaults.
const (
	ParamRoute    = internal.ParamRoute
	ParamAction   = internal.ParamAction
	ParamOptParam = internal.ParamOptParam
	ParamID       = internal.ParamID
	DefaultAction = internal.DefaultAction
	RoleAdmin     = internal.RoleAdmin
)

// ErrNoRenderer is returned by Render when the App has no Renderer.
var ErrNoRenderer = internal.ErrNoRenderer

// New creates an App around a populated Router.
//
//	router := cms.NewRouter(log)
//	controllers.Register(router, deps)
//	app := cms.New(router,
//		cms.WithLogger(log),
//		cms.WithRenderer(views.New()),
//		cms.WithSession(pgstore.New(db)),
//		cms.WithAuthResolver(users.Resolve),
//	)
//	return app.Run(cms.Address(":8080"))
func New(router *Router, opts ...Option) *App {
	return internal.New(router, opts...)
}

// NewRouter returns an empty Router.
func NewRouter(l *slog.Logger) *Router {
	return internal.NewRouter(l)
}

// Bind ties a controller constructor to one of its actions. The controller
// is built per request, after the route and access checks pass.
func Bind[C any](newController func(Context) C, action func(C, Parameters) error) Target {
	return internal.Bind(newController, action)
}

// NewRequestContext builds a RequestContext from a URI, a method and value
// maps keyed "GET" and "POST".
var NewRequestContext = internal.NewRequestContext

// Anonymous returns the identity of a caller without a session user.
func Anonymous() Auth { return internal.Anonymous() }

// AuthFor returns the identity of u.
func AuthFor(u *User) Auth { return internal.AuthFor(u) }

// Route options.

func WithAccessLevel(level AccessLevel) RouteOption { return internal.WithAccessLevel(level) }
func WithMethod(method string) RouteOption          { return internal.WithMethod(method) }

// App options.

func WithLogger(l *slog.Logger) Option                { return internal.WithLogger(l) }
func WithMiddleware(mw ...Middleware) Option          { return internal.WithMiddleware(mw...) }
func WithRenderer(r Renderer) Option                  { return internal.WithRenderer(r) }
func WithGlobals(fn GlobalsFunc) Option               { return internal.WithGlobals(fn) }
func WithAuthResolver(fn AuthResolver) Option         { return internal.WithAuthResolver(fn) }
func WithDefaultRoute(route string) Option            { return internal.WithDefaultRoute(route) }
func WithBasePath(path string) Option                 { return internal.WithBasePath(path) }
func WithErrorHandler(h ErrorHandler) Option          { return internal.WithErrorHandler(h) }
func WithHealthChecks(opts ...HealthOption) Option    { return internal.WithHealthChecks(opts...) }
func WithSession(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

// WithStaticFiles mounts subDir of fsys at pattern.
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// Session options.

func WithSessionCookieName(name string) SessionOption { return internal.WithSessionCookieName(name) }
func WithSessionMaxAge(seconds int) SessionOption     { return internal.WithSessionMaxAge(seconds) }
func WithSessionDomain(domain string) SessionOption   { return internal.WithSessionDomain(domain) }
func WithSessionPath(path string) SessionOption       { return internal.WithSessionPath(path) }
func WithSessionSecure(secure bool) SessionOption     { return internal.WithSessionSecure(secure) }

// Health options.

func WithLivenessPath(path string) HealthOption  { return internal.WithLivenessPath(path) }
func WithReadinessPath(path string) HealthOption { return internal.WithReadinessPath(path) }
func WithReadinessTimeout(d time.Duration) HealthOption {
	return internal.WithReadinessTimeout(d)
}

// WithReadinessCheck adds a named readiness check:
//
//	cms.WithReadinessCheck("postgres", database.Healthcheck(db))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options.

func Address(addr string) RunOption                      { return internal.Address(addr) }
func Listener(ln net.Listener) RunOption                 { return internal.Listener(ln) }
func Logger(l *slog.Logger) RunOption                    { return internal.Logger(l) }
func ShutdownTimeout(d time.Duration) RunOption          { return internal.ShutdownTimeout(d) }
func ShutdownHook(fn func(context.Context) error) RunOption { return internal.ShutdownHook(fn) }
func WithContext(ctx context.Context) RunOption          { return internal.WithContext(ctx) }

// Errors.

func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

func WithError(err error) HTTPErrorOption { return internal.WithError(err) }

// AsHTTPError finds an HTTPError in err's chain, or returns nil.
func AsHTTPError(err error) *HTTPError { return internal.AsHTTPError(err) }

// ContextValue returns the value stored under key with c.Set, or the zero value.
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}
