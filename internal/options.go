package internal

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MartinPJB/BLOG-CMS/pkg/session"
)

// Option configures the App.
type Option func(*App)

// WithLogger sets the application logger. nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMiddleware adds global middleware, applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithRenderer sets the view renderer used by Context.Render.
func WithRenderer(r Renderer) Option {
	return func(a *App) {
		a.renderer = r
	}
}

// WithGlobals sets a function whose values are merged into every view.
//
//	internal.WithGlobals(func(c internal.Context) (map[string]any, error) {
//		s, err := settings.Get(c)
//		if err != nil {
//			return nil, err
//		}
//		return map[string]any{"site": s}, nil
//	})
func WithGlobals(fn GlobalsFunc) Option {
	return func(a *App) {
		a.globals = fn
	}
}

// WithAuthResolver sets how a session user id becomes a User.
// Without it every request is anonymous.
func WithAuthResolver(fn AuthResolver) Option {
	return func(a *App) {
		a.authResolver = fn
	}
}

// WithSession enables server-side sessions backed by store.
// Sessions are loaded lazily and saved before the response is written.
//
//	internal.WithSession(pgstore.New(db),
//		internal.WithSessionCookieName("__sid"),
//		internal.WithSessionSecure(true),
//	)
func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		a.sessionManager = NewSessionManager(store, opts...)
	}
}

// WithDefaultRoute names the route served when the request names none.
func WithDefaultRoute(route string) Option {
	return func(a *App) {
		a.defaultRoute = route
	}
}

// WithBasePath prefixes every URL built by Context.URL and Context.Redirect.
func WithBasePath(path string) Option {
	return func(a *App) {
		a.basePath = strings.TrimRight(path, "/")
	}
}

// WithErrorHandler replaces the default error page.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithStaticFiles mounts subDir of fsys at pattern. Directory listings are disabled.
//
//	//go:embed public
//	var assets embed.FS
//
//	internal.WithStaticFiles("/static/", assets, "public")
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}

		fileServer := http.StripPrefix(strings.TrimRight(pattern, "/"), http.FileServerFS(subFS))

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}

			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")

			fileServer.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, staticRoute{handler: handler, pattern: pattern})
	}
}
