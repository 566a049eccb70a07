package internal

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/MartinPJB/BLOG-CMS/pkg/session"
)

// ErrNoRenderer is returned by Render when the App has no Renderer.
var ErrNoRenderer = errors.New("render: no renderer configured")

// Renderer turns a view name and its variables into HTML.
type Renderer interface {
	Render(ctx context.Context, w io.Writer, view string, vars map[string]any) error
}

// GlobalsFunc supplies variables added to every rendered view (site settings, navigation).
type GlobalsFunc func(c Context) (map[string]any, error)

// Context is what a controller sees of one request. It also implements
// context.Context by delegating to the request context.
type Context interface {
	context.Context

	Request() *http.Request
	Response() http.ResponseWriter

	// RequestContext returns the parsed routing view of the request.
	RequestContext() *RequestContext

	// Action is the effective action: the requested one, or "index".
	Action() string

	// Auth is the caller identity resolved before dispatch.
	Auth() Auth

	Query(name string) string
	Form(name string) string
	Header(name string) string
	SetHeader(name, value string)

	// Render writes a view with status 200.
	Render(view string, vars map[string]any) error

	// RenderStatus writes a view with the given status. Views always receive
	// "messages", "auth" and "user", plus the App globals; vars win on conflict.
	RenderStatus(code int, view string, vars map[string]any) error

	// Redirect sends a 303 to a route path such as "admin/articles".
	// Pending messages are kept in the session for the next page.
	Redirect(route string, parts ...string) error

	// URL builds the site path of a route.
	URL(route string, parts ...string) string

	// Error creates an HTTPError for the handler to return.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	Written() bool

	AddMessage(msg string)
	// Messages returns and clears the pending messages, session flashes first.
	Messages() []string

	// Session returns the current session, or nil when the visitor has none.
	Session() (*session.Session, error)
	// AuthenticateSession attaches userID to the session and rotates its token.
	AuthenticateSession(userID int64) error
	// DestroySession removes the session and clears the cookie.
	DestroySession() error

	Logger() *slog.Logger
	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a value in the request context.
	Set(key, value any)
	Get(key any) any
	// SetContext replaces the request context; middlewares use it to add deadlines.
	SetContext(ctx context.Context)
}

type requestContext struct {
	response       http.ResponseWriter
	request        *http.Request
	responseWriter *ResponseWriter
	app            *App

	rc   *RequestContext
	auth Auth

	session               *session.Session
	sessionLoaded         bool
	sessionHookRegistered bool

	messages []string
}

func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w)
	}
	return &requestContext{
		request:        r,
		response:       rw,
		responseWriter: rw,
		app:            app,
		rc:             NewRequestContext(r.URL.RequestURI(), r.Method, nil),
	}
}

func (c *requestContext) Request() *http.Request        { return c.request }
func (c *requestContext) Response() http.ResponseWriter { return c.response }

func (c *requestContext) Deadline() (time.Time, bool) { return c.request.Context().Deadline() }
func (c *requestContext) Done() <-chan struct{}       { return c.request.Context().Done() }
func (c *requestContext) Err() error                  { return c.request.Context().Err() }
func (c *requestContext) Value(key any) any           { return c.request.Context().Value(key) }

func (c *requestContext) RequestContext() *RequestContext { return c.rc }

func (c *requestContext) Action() string {
	if a := c.rc.Action(); a != "" {
		return a
	}
	return DefaultAction
}

func (c *requestContext) Auth() Auth { return c.auth }

func (c *requestContext) Query(name string) string  { return c.rc.Query(name) }
func (c *requestContext) Form(name string) string   { return c.rc.Form(name) }
func (c *requestContext) Header(name string) string { return c.request.Header.Get(name) }

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) Render(view string, vars map[string]any) error {
	return c.RenderStatus(http.StatusOK, view, vars)
}

func (c *requestContext) RenderStatus(code int, view string, vars map[string]any) error {
	if c.app.renderer == nil {
		return ErrNoRenderer
	}

	data := make(map[string]any, len(vars)+4)
	if c.app.globals != nil {
		g, err := c.app.globals(c)
		if err != nil {
			return errors.Wrap(err, "render globals")
		}
		maps.Copy(data, g)
	}
	data["auth"] = c.auth
	data["user"] = c.auth.User
	data["messages"] = c.Messages()
	maps.Copy(data, vars)

	// Render into a buffer so a failing view still produces a clean error page.
	var buf bytes.Buffer
	if err := c.app.renderer.Render(c, &buf, view, data); err != nil {
		return errors.Wrapf(err, "render %q", view)
	}

	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := buf.WriteTo(c.response)
	return err
}

func (c *requestContext) Redirect(route string, parts ...string) error {
	if len(c.messages) > 0 {
		if sess, err := c.ensureSession(); err != nil {
			c.LogWarn("messages lost on redirect", "error", err)
		} else {
			for _, msg := range c.messages {
				sess.AddFlash(msg)
			}
			c.messages = nil
		}
	}
	http.Redirect(c.response, c.request, c.URL(route, parts...), http.StatusSeeOther)
	return nil
}

func (c *requestContext) URL(route string, parts ...string) string {
	segments := make([]string, 0, len(parts)+2)
	if base := strings.Trim(c.app.basePath, "/"); base != "" {
		segments = append(segments, base)
	}
	for _, s := range strings.Split(route, "/") {
		if s != "" {
			segments = append(segments, url.PathEscape(s))
		}
	}
	for _, p := range parts {
		if p != "" {
			segments = append(segments, url.PathEscape(p))
		}
	}
	return "/" + strings.Join(segments, "/")
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Written() bool {
	return c.responseWriter.Written()
}

func (c *requestContext) AddMessage(msg string) {
	if msg != "" {
		c.messages = append(c.messages, msg)
	}
}

func (c *requestContext) Messages() []string {
	var out []string
	if sess, err := c.Session(); err == nil && sess != nil {
		out = append(out, sess.Flashes()...)
	}
	out = append(out, c.messages...)
	c.messages = nil
	return out
}

func (c *requestContext) Logger() *slog.Logger { return c.app.logger }

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.app.logger.DebugContext(c.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.app.logger.InfoContext(c.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.app.logger.WarnContext(c.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.app.logger.ErrorContext(c.Context(), msg, attrs...)
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) Set(key, value any) {
	c.request = c.request.WithContext(context.WithValue(c.request.Context(), key, value))
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) SetContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}

// registerSessionHook persists a dirty session right before the response is written.
func (c *requestContext) registerSessionHook() {
	if c.sessionHookRegistered || c.app.sessionManager == nil {
		return
	}
	c.sessionHookRegistered = true
	c.responseWriter.OnBeforeWrite(func() {
		if c.session == nil || !c.session.IsDirty() {
			return
		}
		c.session.LastActiveAt = time.Now()
		if err := c.app.sessionManager.Store().Update(c.Context(), c.session); err != nil {
			c.LogError("failed to save session", "error", err)
			return
		}
		c.session.ClearDirty()
	})
}

func (c *requestContext) Session() (*session.Session, error) {
	sm := c.app.sessionManager
	if sm == nil {
		return nil, session.ErrNotConfigured
	}
	c.registerSessionHook()
	if c.sessionLoaded {
		return c.session, nil
	}

	sess, err := sm.LoadSession(c.Context(), c.request)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) && !errors.Is(err, session.ErrExpired) && !errors.Is(err, session.ErrInvalidToken) {
			return nil, err
		}
		// Stale cookie: carry on as a visitor without a session.
		c.LogDebug("discarding stale session cookie", "error", err)
		sess = nil
	}
	c.session = sess
	c.sessionLoaded = true
	return sess, nil
}

func (c *requestContext) ensureSession() (*session.Session, error) {
	sess, err := c.Session()
	if err != nil {
		return nil, err
	}
	if sess != nil {
		return sess, nil
	}
	sess, err = c.app.sessionManager.CreateSession(c.Context(), c.request)
	if err != nil {
		return nil, err
	}
	c.session = sess
	c.app.sessionManager.SaveSession(c.response, sess)
	return sess, nil
}

func (c *requestContext) AuthenticateSession(userID int64) error {
	sess, err := c.ensureSession()
	if err != nil {
		return err
	}
	sess.SetUser(userID)
	if err := c.app.sessionManager.RotateToken(c.Context(), sess); err != nil {
		return err
	}
	sess.ClearDirty()
	c.app.sessionManager.SaveSession(c.response, sess)
	return nil
}

func (c *requestContext) DestroySession() error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if sess != nil {
		if err := c.app.sessionManager.Store().Delete(c.Context(), sess.ID); err != nil {
			return err
		}
	}
	c.app.sessionManager.DeleteSession(c.response)
	c.session = nil
	c.auth = Anonymous()
	return nil
}
