package controllers

import (
	"github.com/cockroachdb/errors"

	cms "github.com/MartinPJB/BLOG-CMS"
	"github.com/MartinPJB/BLOG-CMS/models"
)

// Articles serves the public article pages.
type Articles struct {
	cms.Context
	deps Deps
}

// Index lists the published articles, newest first.
func (a *Articles) Index(_ cms.Parameters) error {
	list, err := a.deps.Articles.AllPublished(a, nil)
	if err != nil {
		return err
	}
	return a.Render("Articles/index", map[string]any{"articles": list})
}

// See shows one article with its blocks. Drafts and unpublished articles are
// visible to admins only. A missing category leaves the article uncategorized.
func (a *Articles) See(_ cms.Parameters) error {
	id := optID(a)
	if id == 0 {
		return a.Redirect("articles")
	}

	article, err := a.deps.Articles.ByID(a, id)
	if err != nil {
		return notFoundOr(err, "article")
	}
	if !article.Visible() && !a.Auth().IsAdmin() {
		return cms.ErrNotFound("article not found")
	}

	category, err := a.deps.Categories.ByID(a, article.CategoryID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return notFoundOr(err, "category")
	}
	blocks, err := a.deps.Blocks.ByArticle(a, article.ID)
	if err != nil {
		return err
	}

	return a.Render("Articles/see", map[string]any{
		"article":  article,
		"category": category,
		"blocks":   blocks,
	})
}
