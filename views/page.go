package views

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	cms "github.com/MartinPJB/BLOG-CMS"
	"github.com/MartinPJB/BLOG-CMS/models"
)

// Vars are the variables of one render.
type Vars map[string]any

func get[T any](v Vars, key string) T {
	if val, ok := v[key].(T); ok {
		return val
	}
	var zero T
	return zero
}

// Page is what a view renders from: the variables a controller passed and
// the URL builder of the request.
type Page struct {
	Vars Vars
	reg  *Registry
	url  func(route string, parts ...string) string
}

func newPage(ctx context.Context, r *Registry, vars Vars) Page {
	p := Page{Vars: vars, reg: r, url: sitePath}
	if c, ok := ctx.(cms.Context); ok {
		p.url = c.URL
	}
	return p
}

// sitePath builds a path at the site root, used outside a request.
func sitePath(route string, parts ...string) string {
	segments := []string{}
	for _, s := range append(strings.Split(route, "/"), parts...) {
		if s != "" {
			segments = append(segments, url.PathEscape(s))
		}
	}
	return "/" + strings.Join(segments, "/")
}

// URL links to a site route. Inside a request it honors the App base path.
func (p Page) URL(route string, parts ...string) templ.SafeURL {
	return templ.SafeURL(p.url(route, parts...))
}

func (p Page) Site() models.Settings {
	if s, ok := p.Vars["site"].(models.Settings); ok {
		return s
	}
	return models.DefaultSettings()
}

func (p Page) Auth() cms.Auth { return get[cms.Auth](p.Vars, "auth") }

func (p Page) Navigation() []models.NavigationCategory {
	return get[[]models.NavigationCategory](p.Vars, "navigation")
}

func (p Page) Messages() []string { return get[[]string](p.Vars, "messages") }

// Markdown renders article markdown as sanitized HTML.
func (p Page) Markdown(src string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		html, err := p.reg.Markdown(src)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, html)
		return err
	})
}

func id(n int64) string { return strconv.FormatInt(n, 10) }

func isoDate(t time.Time) string { return t.Format("2006-01-02") }

func shortDate(t time.Time) string { return t.Format("02/01/2006") }

func articleStatus(a models.Article) string {
	switch {
	case a.Visible():
		return "published"
	case a.Draft:
		return "draft"
	}
	return "hidden"
}

// dashboard are the counters of the admin home page.
type dashboard struct {
	Recent     []models.Article
	Articles   int
	Drafts     int
	Categories int
}

// confirmation describes the entry a delete form removes.
type confirmation struct {
	Kind   string
	Name   string
	Action string
	ID     int64
}

// contentField is one key of a block's content.
type contentField struct {
	Key   string
	Value string
}

// blockFields lists a block's content sorted by key.
func blockFields(content map[string]any) []contentField {
	out := make([]contentField, 0, len(content))
	for k, v := range content {
		out = append(out, contentField{Key: k, Value: fmt.Sprint(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// blockText reads one content value as text. Missing keys are empty.
func blockText(b models.Block, key string) string {
	return contentText(b.Content, key)
}

func contentText(content map[string]any, key string) string {
	v, ok := content[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// blockFormFields are the content inputs of the block form: the usual keys
// of the built-in types followed by any other key the block already has.
func blockFormFields(content map[string]any) []contentField {
	keys := []string{"body", "src", "alt", "author"}
	out := make([]contentField, 0, len(keys)+len(content))
	for _, k := range keys {
		out = append(out, contentField{Key: k, Value: contentText(content, k)})
	}
	for _, f := range blockFields(content) {
		if !slices.Contains(keys, f.Key) {
			out = append(out, f)
		}
	}
	return out
}

// saveTarget is the form action: new entries post without an id.
func (p Page) saveTarget(route string, entryID int64) templ.SafeURL {
	if entryID == 0 {
		return p.URL(route)
	}
	return p.URL(route, id(entryID))
}
