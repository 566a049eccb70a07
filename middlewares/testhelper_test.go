package middlewares_test

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/MartinPJB/BLOG-CMS/internal"
	"github.com/MartinPJB/BLOG-CMS/pkg/logger"
	"github.com/MartinPJB/BLOG-CMS/pkg/session"
)

// testContext is a minimal internal.Context for driving middlewares directly.
type testContext struct {
	response http.ResponseWriter
	request  *http.Request
	logs     []string
}

var _ internal.Context = (*testContext)(nil)

func newTestContext(w http.ResponseWriter, r *http.Request) *testContext {
	return &testContext{response: w, request: r}
}

func (c *testContext) Deadline() (time.Time, bool) { return c.request.Context().Deadline() }
func (c *testContext) Done() <-chan struct{}       { return c.request.Context().Done() }
func (c *testContext) Err() error                  { return c.request.Context().Err() }
func (c *testContext) Value(key any) any           { return c.request.Context().Value(key) }

func (c *testContext) Request() *http.Request        { return c.request }
func (c *testContext) Response() http.ResponseWriter { return c.response }

func (c *testContext) RequestContext() *internal.RequestContext {
	return internal.NewRequestContext(c.request.URL.RequestURI(), c.request.Method, nil)
}

func (c *testContext) Action() string     { return internal.DefaultAction }
func (c *testContext) Auth() internal.Auth { return internal.Anonymous() }

func (c *testContext) Query(name string) string     { return c.request.URL.Query().Get(name) }
func (c *testContext) Form(name string) string      { return "" }
func (c *testContext) Header(name string) string    { return c.request.Header.Get(name) }
func (c *testContext) SetHeader(name, value string) { c.response.Header().Set(name, value) }

func (c *testContext) Render(view string, vars map[string]any) error { return nil }
func (c *testContext) RenderStatus(code int, view string, vars map[string]any) error {
	c.response.WriteHeader(code)
	return nil
}
func (c *testContext) Redirect(route string, parts ...string) error { return nil }
func (c *testContext) URL(route string, parts ...string) string     { return "/" + route }

func (c *testContext) Error(code int, message string, opts ...internal.HTTPErrorOption) *internal.HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

func (c *testContext) Written() bool         { return false }
func (c *testContext) AddMessage(msg string) {}
func (c *testContext) Messages() []string    { return nil }

func (c *testContext) Session() (*session.Session, error)     { return nil, session.ErrNotConfigured }
func (c *testContext) AuthenticateSession(userID int64) error { return session.ErrNotConfigured }
func (c *testContext) DestroySession() error                  { return session.ErrNotConfigured }

func (c *testContext) Logger() *slog.Logger              { return logger.NewNope() }
func (c *testContext) LogDebug(msg string, attrs ...any) {}
func (c *testContext) LogInfo(msg string, attrs ...any)  {}
func (c *testContext) LogWarn(msg string, attrs ...any)  { c.logs = append(c.logs, msg) }
func (c *testContext) LogError(msg string, attrs ...any) { c.logs = append(c.logs, msg) }

func (c *testContext) Set(key, value any) {
	c.request = c.request.WithContext(context.WithValue(c.request.Context(), key, value))
}

func (c *testContext) Get(key any) any { return c.request.Context().Value(key) }

func (c *testContext) SetContext(ctx context.Context) { c.request = c.request.WithContext(ctx) }
