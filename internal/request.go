package internal

import (
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Reserved request keys. They select the route and never reach controllers as parameters.
const (
	ParamRoute    = "route"
	ParamAction   = "action"
	ParamOptParam = "opt_param"
	ParamID       = "id"
)

// maxMultipartMemory bounds the in-memory part of multipart form parsing.
const maxMultipartMemory = 32 << 20

// Parameters are the request values left after route selection, keyed by origin.
type Parameters struct {
	GET  url.Values
	POST url.Values
}

// Query returns the first GET value for key.
func (p Parameters) Query(key string) string {
	return p.GET.Get(key)
}

// Form returns the first POST value for key.
func (p Parameters) Form(key string) string {
	return p.POST.Get(key)
}

// Has reports whether key was sent in either map.
func (p Parameters) Has(key string) bool {
	return p.GET.Has(key) || p.POST.Has(key)
}

func (p Parameters) clone() Parameters {
	return Parameters{GET: cloneValues(p.GET), POST: cloneValues(p.POST)}
}

// RequestContext is the routing view of one request. It is read-only after construction.
type RequestContext struct {
	uri      string
	method   string
	route    string
	action   string
	optParam string
	params   Parameters
}

// NewRequestContext builds a RequestContext from a URI, a method and raw
// value maps keyed "GET" and "POST". An empty method means GET.
// route, action and the trailing identifier (opt_param, or id when opt_param
// is absent) are read from GET; all reserved keys are removed from the
// returned parameters.
func NewRequestContext(uri, method string, params map[string]url.Values) *RequestContext {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}

	get := cloneValues(params[http.MethodGet])
	post := cloneValues(params[http.MethodPost])

	optParam := get.Get(ParamOptParam)
	if optParam == "" {
		optParam = get.Get(ParamID)
	}

	rc := &RequestContext{
		uri:      uri,
		method:   method,
		route:    get.Get(ParamRoute),
		action:   get.Get(ParamAction),
		optParam: optParam,
	}

	for _, key := range []string{ParamRoute, ParamAction, ParamOptParam, ParamID} {
		get.Del(key)
		post.Del(key)
	}
	rc.params = Parameters{GET: get, POST: post}
	return rc
}

// RequestContextFromHTTP builds a RequestContext from an HTTP request. Path
// segments captured by the App mount (/{route}/{action}/{opt_param...}) take
// precedence over the query string. Form bodies, url-encoded or multipart,
// become the POST map.
func RequestContextFromHTTP(r *http.Request) (*RequestContext, error) {
	get := r.URL.Query()

	if v := chi.URLParam(r, ParamRoute); v != "" {
		get.Set(ParamRoute, v)
	}
	if v := chi.URLParam(r, ParamAction); v != "" {
		get.Set(ParamAction, v)
	}
	if v := strings.Trim(chi.URLParam(r, "*"), "/"); v != "" {
		get.Set(ParamOptParam, v)
	}

	post := url.Values{}
	if r.Body != nil && r.Method != http.MethodGet && r.Method != http.MethodHead {
		ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		var err error
		if ct == "multipart/form-data" {
			err = r.ParseMultipartForm(maxMultipartMemory)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			return nil, ErrBadRequest("malformed form body", WithError(err))
		}
		post = r.PostForm
	}

	return NewRequestContext(r.URL.RequestURI(), r.Method, map[string]url.Values{
		http.MethodGet:  get,
		http.MethodPost: post,
	}), nil
}

func (rc *RequestContext) URI() string    { return rc.uri }
func (rc *RequestContext) Method() string { return rc.method }

// Route is the requested route name, or "" when none was given.
func (rc *RequestContext) Route() string { return rc.route }

// Action is the requested action name, or "" when none was given.
func (rc *RequestContext) Action() string { return rc.action }

// OptParam is the trailing identifier, stored as sent. It may be a compound
// value such as "edit/3".
func (rc *RequestContext) OptParam() string { return rc.optParam }

// OptParamParts splits OptParam on "/". Empty segments are dropped.
func (rc *RequestContext) OptParamParts() []string {
	var parts []string
	for _, p := range strings.Split(rc.optParam, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// Parameters returns a copy of the non-reserved request values.
func (rc *RequestContext) Parameters() Parameters {
	return rc.params.clone()
}

func (rc *RequestContext) Query(key string) string { return rc.params.Query(key) }
func (rc *RequestContext) Form(key string) string  { return rc.params.Form(key) }
func (rc *RequestContext) HasParameter(key string) bool {
	return rc.params.Has(key)
}

// withRoute returns a copy pointing at route. Used to apply the default route.
func (rc *RequestContext) withRoute(route string) *RequestContext {
	cp := *rc
	cp.route = route
	cp.params = rc.params.clone()
	return &cp
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
