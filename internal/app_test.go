package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// textRenderer writes "view|key=value|..." with keys sorted.
type textRenderer struct{}

func (textRenderer) Render(_ context.Context, w io.Writer, view string, vars map[string]any) error {
	if view == "broken" {
		return fmt.Errorf("template exploded")
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := []string{view}
	for _, k := range keys {
		switch v := vars[k].(type) {
		case Auth, *User:
			continue
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	_, err := io.WriteString(w, strings.Join(parts, "|"))
	return err
}

type pageController struct {
	c Context
}

func newPage(c Context) *pageController { return &pageController{c: c} }

func (p *pageController) Show(params Parameters) error {
	return p.c.Render("page", map[string]any{
		"opt":  p.c.RequestContext().OptParam(),
		"q":    params.Query("q"),
		"user": p.c.Auth().User,
	})
}

func (p *pageController) Save(params Parameters) error {
	p.c.AddMessage("saved " + params.Form("title"))
	return p.c.Redirect("pages", "show")
}

func (p *pageController) Broken(Parameters) error {
	return p.c.Render("broken", nil)
}

func (p *pageController) Login(params Parameters) error {
	if err := p.c.AuthenticateSession(7); err != nil {
		return err
	}
	return p.c.Redirect("admin")
}

func (p *pageController) Logout(Parameters) error {
	if err := p.c.DestroySession(); err != nil {
		return err
	}
	return p.c.Redirect("")
}

func newTestApp(t *testing.T, store *memStore, opts ...Option) *App {
	t.Helper()

	r := NewRouter(nil)
	r.AddRoute("pages", "show", Bind(newPage, (*pageController).Show))
	r.AddRoute("pages", "", Bind(newPage, (*pageController).Show))
	r.AddRoute("pages", "index", Bind(newPage, (*pageController).Show))
	r.AddRoute("pages", "save", Bind(newPage, (*pageController).Save), WithMethod(http.MethodPost))
	r.AddRoute("pages", "broken", Bind(newPage, (*pageController).Broken))
	r.AddRoute("users", "login", Bind(newPage, (*pageController).Login), WithMethod(http.MethodPost))
	r.AddRoute("users", "logout", Bind(newPage, (*pageController).Logout))
	r.AddRoute("admin", "", Bind(newPage, (*pageController).Show), WithAccessLevel(Admin))

	base := []Option{
		WithRenderer(textRenderer{}),
		WithSession(store),
		WithAuthResolver(func(_ context.Context, id int64) (*User, error) {
			if id != 7 {
				return nil, nil
			}
			return &User{ID: 7, Username: "root", Role: RoleAdmin}, nil
		}),
		WithGlobals(func(Context) (map[string]any, error) {
			return map[string]any{"site": "Blog"}, nil
		}),
	}
	return New(r, append(base, opts...)...)
}

func serve(app *App, method, target string, body url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(body.Encode())
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func TestApp_Dispatch(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, newMemStore(), WithDefaultRoute("pages"))

	t.Run("query string form", func(t *testing.T) {
		t.Parallel()

		rec := serve(app, http.MethodGet, "/?route=pages&action=show&opt_param=4&q=go", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "page|messages=[]|opt=4|q=go|site=Blog", rec.Body.String())
		require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	})

	t.Run("path form", func(t *testing.T) {
		t.Parallel()

		rec := serve(app, http.MethodGet, "/pages/show/2024/hello?q=x", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "page|messages=[]|opt=2024/hello|q=x|site=Blog", rec.Body.String())
	})

	t.Run("default route and index action", func(t *testing.T) {
		t.Parallel()

		rec := serve(app, http.MethodGet, "/", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, strings.HasPrefix(rec.Body.String(), "page|"))

		rec = serve(app, http.MethodGet, "/pages", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = serve(app, http.MethodGet, "/users", nil)
		require.Equal(t, http.StatusNotFound, rec.Code, "a route without a bare entry does not answer bare")
	})

	t.Run("routing errors render the error view", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name   string
			method string
			target string
			code   int
			route  string
		}{
			{name: "unknown route", method: http.MethodGet, target: "/missing", code: 404, route: "missing"},
			{name: "unknown action", method: http.MethodGet, target: "/pages/nope", code: 404, route: "pages"},
			{name: "wrong method", method: http.MethodGet, target: "/pages/save", code: 405, route: "pages"},
			{name: "admin only", method: http.MethodGet, target: "/admin", code: 403, route: "admin"},
			{name: "view failure", method: http.MethodGet, target: "/pages/broken", code: 500, route: "pages"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				rec := serve(app, tc.method, tc.target, nil)
				require.Equal(t, tc.code, rec.Code)
				body := rec.Body.String()
				require.True(t, strings.HasPrefix(body, "error|"), body)
				require.Contains(t, body, fmt.Sprintf("errorCode=%d", tc.code))
				require.Contains(t, body, "controllerType="+tc.route)
			})
		}
	})
}

func TestApp_Session(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	app := newTestApp(t, store)

	t.Run("messages survive a redirect", func(t *testing.T) {
		rec := serve(app, http.MethodPost, "/pages/save", url.Values{"title": {"Hello"}})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/pages/show", rec.Header().Get("Location"))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)

		rec = serve(app, http.MethodGet, "/pages/show", nil, cookies...)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "messages=[saved Hello]")

		rec = serve(app, http.MethodGet, "/pages/show", nil, cookies...)
		require.Contains(t, rec.Body.String(), "messages=[]", "flashes are shown once")
	})

	t.Run("login grants admin and logout revokes it", func(t *testing.T) {
		rec := serve(app, http.MethodPost, "/users/login", url.Values{})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/admin", rec.Header().Get("Location"))

		cookies := rec.Result().Cookies()
		require.NotEmpty(t, cookies)
		session := cookies[len(cookies)-1]

		rec = serve(app, http.MethodGet, "/admin", nil, session)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = serve(app, http.MethodGet, "/users/logout", nil, session)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		rec = serve(app, http.MethodGet, "/admin", nil, session)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("stale cookie is ignored", func(t *testing.T) {
		rec := serve(app, http.MethodGet, "/pages/show", nil,
			&http.Cookie{Name: defaultSessionCookieName, Value: "gone"})
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestApp_WithoutRenderer(t *testing.T) {
	t.Parallel()

	app := New(NewRouter(nil))
	rec := serve(app, http.MethodGet, "/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApp_HealthChecks(t *testing.T) {
	t.Parallel()

	app := New(NewRouter(nil), WithHealthChecks(
		WithReadinessCheck("db", func(context.Context) error { return nil }),
	))

	rec := serve(app, http.MethodGet, "/health/live", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(app, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestApp_Middleware(t *testing.T) {
	t.Parallel()

	type key struct{}
	var seen any

	r := NewRouter(nil)
	r.AddRoute("pages", "", Bind(
		func(c Context) Context { return c },
		func(c Context, _ Parameters) error {
			seen = c.Get(key{})
			c.Response().WriteHeader(http.StatusNoContent)
			return nil
		},
	))

	app := New(r, WithMiddleware(func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			c.Set(key{}, "through")
			return next(c)
		}
	}))

	rec := serve(app, http.MethodGet, "/pages", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "through", seen)
}
