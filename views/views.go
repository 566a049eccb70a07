// Package views renders the site's HTML. The pages are templ components
// (the .templ sources, compiled with templ generate); the registry binds each
// view name to one of them and wraps it in the site layout.
package views

//go:generate templ generate

import (
	"bytes"
	"context"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/a-h/templ"
	"github.com/cockroachdb/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/MartinPJB/BLOG-CMS/models"
	"github.com/MartinPJB/BLOG-CMS/pkg/fields"
)

// ErrUnknownView is returned by Render for a name with no registered view.
var ErrUnknownView = errors.New("views: unknown view")

// View builds the page body for one request.
type View func(p Page) templ.Component

// Registry implements the App renderer over named views.
type Registry struct {
	md    goldmark.Markdown
	views map[string]View
}

// Option configures a Registry.
type Option func(*Registry)

// WithView adds or replaces a view.
func WithView(name string, v View) Option {
	return func(r *Registry) {
		r.views[name] = v
	}
}

// New returns a registry with every built-in view.
func New(opts ...Option) *Registry {
	r := &Registry{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		views: map[string]View{
			"error": func(p Page) templ.Component {
				return errorPage(p, get[int](p.Vars, "errorCode"), get[string](p.Vars, "message"), get[string](p.Vars, "controllerType"))
			},
			"Articles/index": func(p Page) templ.Component {
				return articlesIndex(p, get[[]models.Article](p.Vars, "articles"))
			},
			"Articles/see": func(p Page) templ.Component {
				return articlesSee(p, get[models.Article](p.Vars, "article"),
					get[models.Category](p.Vars, "category"), get[[]models.Block](p.Vars, "blocks"))
			},
			"Categories/index": func(p Page) templ.Component {
				return categoriesIndex(p, get[[]models.Category](p.Vars, "categories"))
			},
			"Categories/see": func(p Page) templ.Component {
				return categoriesSee(p, get[models.Category](p.Vars, "category"), get[[]models.Article](p.Vars, "articles"))
			},
			"Users/login": func(p Page) templ.Component {
				return usersLogin(p, strings.TrimSpace(get[string](p.Vars, "email")))
			},
			"Users/see": func(p Page) templ.Component {
				return usersSee(p, get[models.User](p.Vars, "user"), get[[]models.Article](p.Vars, "articles"))
			},
			"Admin/index": func(p Page) templ.Component {
				return adminIndex(p, dashboard{
					Articles:   get[int](p.Vars, "articleCount"),
					Drafts:     get[int](p.Vars, "draftCount"),
					Categories: get[int](p.Vars, "categoryCount"),
					Recent:     get[[]models.Article](p.Vars, "recent"),
				})
			},
			"Admin/articles": func(p Page) templ.Component {
				return adminArticles(p, get[[]models.Article](p.Vars, "articles"))
			},
			"Admin/categories": func(p Page) templ.Component {
				return adminCategories(p, get[[]models.Category](p.Vars, "categories"))
			},
			"Admin/blocks": func(p Page) templ.Component {
				return adminBlocks(p, get[models.Article](p.Vars, "article"), get[[]models.Block](p.Vars, "blocks"))
			},
			"Admin/article_form": func(p Page) templ.Component {
				return adminArticleForm(p, get[int64](p.Vars, "id"),
					get[models.ArticleInput](p.Vars, "article"), get[[]models.Category](p.Vars, "categories"))
			},
			"Admin/category_form": func(p Page) templ.Component {
				return adminCategoryForm(p, get[int64](p.Vars, "id"), get[models.CategoryInput](p.Vars, "category"))
			},
			"Admin/block_form": func(p Page) templ.Component {
				return adminBlockForm(p, get[int64](p.Vars, "id"),
					get[models.Article](p.Vars, "article"), get[models.BlockInput](p.Vars, "block"))
			},
			"Admin/delete": func(p Page) templ.Component {
				return adminDelete(p, confirmation{
					Kind:   get[string](p.Vars, "kind"),
					Name:   get[string](p.Vars, "name"),
					Action: get[string](p.Vars, "action"),
					ID:     get[int64](p.Vars, "id"),
				})
			},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes view inside the site layout.
func (r *Registry) Render(ctx context.Context, w io.Writer, view string, vars map[string]any) error {
	v, ok := r.views[view]
	if !ok {
		return errors.Wrapf(ErrUnknownView, "%q", view)
	}
	p := newPage(ctx, r, Vars(vars))
	return layout(p, v(p)).Render(ctx, w)
}

// Names lists the registered views, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.views))
}

// Markdown converts article markdown to sanitized HTML.
func (r *Registry) Markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", errors.Wrap(err, "convert markdown")
	}
	return fields.SanitizeHTML(buf.String()), nil
}
