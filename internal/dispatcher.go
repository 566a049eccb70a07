package internal

import (
	"log/slog"
	"sort"

	"github.com/MartinPJB/BLOG-CMS/pkg/logger"
)

// Router holds the route table and dispatches requests against it.
// Register every route before serving; the table is read-only afterwards.
type Router struct {
	routes RouteTable
	logger *slog.Logger
}

// NewRouter returns an empty router.
func NewRouter(l *slog.Logger) *Router {
	if l == nil {
		l = logger.NewNope()
	}
	return &Router{routes: make(RouteTable), logger: l}
}

// AddRoute registers target for (route, action). A later registration for the
// same pair replaces the earlier one.
func (r *Router) AddRoute(route, action string, target Target, opts ...RouteOption) {
	actions, ok := r.routes[route]
	if !ok {
		actions = make(map[string]Route)
		r.routes[route] = actions
	}
	actions[action] = newRoute(route, action, target, opts...)
}

// Routes returns a copy of the route table.
func (r *Router) Routes() RouteTable {
	return r.routes.clone()
}

// List returns every route sorted by name then action.
func (r *Router) List() []Route {
	var out []Route
	for _, actions := range r.routes {
		for _, rt := range actions {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Action < out[j].Action
	})
	return out
}

// Lookup finds the route registered for exactly (route, action). A request
// without an action only matches an entry registered under "".
func (r *Router) Lookup(route, action string) (Route, bool) {
	if route == "" {
		return Route{}, false
	}
	rt, ok := r.routes[route][action]
	if !ok || !rt.Target.valid() {
		return Route{}, false
	}
	return rt, true
}

// Dispatch resolves the request against the table and runs the bound action.
// The checks run in order and stop at the first failure:
// lookup (404), method (405), access level (403). No controller is built
// unless every check passes.
func (r *Router) Dispatch(c Context, auth Auth) error {
	rc := c.RequestContext()
	name := rc.Route()

	rt, ok := r.Lookup(name, rc.Action())
	if !ok {
		r.logger.DebugContext(c, "route not found",
			slog.String("route", name),
			slog.String("action", rc.Action()),
		)
		return DispatchError(404, name)
	}

	if rt.Method != rc.Method() {
		return DispatchError(405, name)
	}

	if !auth.Allows(rt.AccessLevel) {
		r.logger.InfoContext(c, "access denied",
			slog.String("route", name),
			slog.String("action", rt.Action),
			slog.String("required", rt.AccessLevel.String()),
			slog.String("caller", auth.Level().String()),
		)
		return DispatchError(403, name)
	}

	return rt.Target.invoke(c, rc.Parameters())
}
