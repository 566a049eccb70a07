package internal

import (
	"net/http"
	"reflect"
	"strings"
)

// AccessLevel is the minimum caller level a route requires.
type AccessLevel int

const (
	Public AccessLevel = iota
	Authenticated
	Admin
)

func (l AccessLevel) String() string {
	switch l {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

// DefaultAction is used when a request names a route but no action.
const DefaultAction = "index"

// Target is a controller action bound at registration time. The controller
// is constructed only when the action is invoked.
type Target struct {
	controller string
	invoke     func(c Context, params Parameters) error
}

// Bind ties a controller constructor to one of its actions:
//
//	router.AddRoute("articles", "list", internal.Bind(controllers.NewArticles(store), (*controllers.Articles).List))
func Bind[C any](newController func(Context) C, action func(C, Parameters) error) Target {
	return Target{
		controller: reflect.TypeFor[C]().String(),
		invoke: func(c Context, params Parameters) error {
			return action(newController(c), params)
		},
	}
}

// Controller names the controller type, for introspection.
func (t Target) Controller() string { return t.controller }

func (t Target) valid() bool { return t.invoke != nil }

// Route is one registered (route, action) binding.
type Route struct {
	Name        string
	Action      string
	Target      Target
	AccessLevel AccessLevel
	Method      string
}

// RouteOption configures a Route at registration.
type RouteOption func(*Route)

// WithAccessLevel sets the required access level. Default Public.
func WithAccessLevel(level AccessLevel) RouteOption {
	return func(r *Route) {
		r.AccessLevel = level
	}
}

// WithMethod sets the allowed HTTP method. Default GET.
func WithMethod(method string) RouteOption {
	return func(r *Route) {
		if m := strings.ToUpper(strings.TrimSpace(method)); m != "" {
			r.Method = m
		}
	}
}

// RouteTable maps route name to action name to Route.
type RouteTable map[string]map[string]Route

func (t RouteTable) clone() RouteTable {
	out := make(RouteTable, len(t))
	for name, actions := range t {
		cp := make(map[string]Route, len(actions))
		for action, r := range actions {
			cp[action] = r
		}
		out[name] = cp
	}
	return out
}

func newRoute(name, action string, target Target, opts ...RouteOption) Route {
	r := Route{
		Name:        name,
		Action:      action,
		Target:      target,
		AccessLevel: Public,
		Method:      http.MethodGet,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
