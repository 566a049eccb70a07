package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	cms "github.com/MartinPJB/BLOG-CMS"
	"github.com/MartinPJB/BLOG-CMS/models"
	"github.com/MartinPJB/BLOG-CMS/pkg/fields"
)

// Admin operations selected by the trailing parameter of the admin pages.
const (
	opList   = "list"
	opCreate = "create"
	opEdit   = "edit"
	opDelete = "delete"
	opBlocks = "blocks"
)

// Admin is the back office. Every route is registered at access level Admin.
type Admin struct {
	cms.Context
	deps Deps
}

// parseOptParam splits a trailing parameter such as "edit/3" into the
// operation and its id. An empty parameter means list; a missing or
// malformed id is 0.
func parseOptParam(optParam string) (op string, id int64) {
	op, rest, _ := strings.Cut(strings.Trim(optParam, "/"), "/")
	if op == "" {
		op = opList
	}
	if n, err := strconv.ParseInt(rest, 10, 64); err == nil && n > 0 {
		id = n
	}
	return op, id
}

func (a *Admin) Index(_ cms.Parameters) error {
	articles, err := a.deps.Articles.WithAuthors(a)
	if err != nil {
		return err
	}
	categories, err := a.deps.Categories.All(a)
	if err != nil {
		return err
	}

	drafts := 0
	for _, article := range articles {
		if !article.Visible() {
			drafts++
		}
	}

	return a.Render("Admin/index", map[string]any{
		"articleCount":  len(articles),
		"draftCount":    drafts,
		"categoryCount": len(categories),
		"recent":        articles[:min(len(articles), 5)],
	})
}

// Articles serves admin/articles[/list|/create|/edit/{id}|/delete/{id}|/blocks/{id}].
func (a *Admin) Articles(_ cms.Parameters) error {
	op, id := parseOptParam(a.RequestContext().OptParam())

	switch op {
	case opList:
		list, err := a.deps.Articles.WithAuthors(a)
		if err != nil {
			return err
		}
		return a.Render("Admin/articles", map[string]any{"articles": list})

	case opCreate:
		return a.articleForm(http.StatusOK, 0, models.ArticleInput{})

	case opBlocks:
		if id == 0 {
			return cms.ErrNotFound("article not found")
		}
		return a.articleBlocks(id)

	case opEdit, opDelete:
		if id == 0 {
			return cms.ErrNotFound("article not found")
		}
		article, err := a.deps.Articles.ByID(a, id)
		if err != nil {
			return notFoundOr(err, "article")
		}
		if op == opDelete {
			return a.Render("Admin/delete", map[string]any{
				"kind":   "article",
				"id":     article.ID,
				"name":   article.Title,
				"action": "articles_delete",
			})
		}
		return a.articleForm(http.StatusOK, article.ID, articleInput(article))
	}

	return cms.ErrNotFound("unknown operation " + strconv.Quote(op))
}

// SaveArticle creates an article, or updates the one named by the trailing id.
// The signed-in admin becomes the author of new articles.
func (a *Admin) SaveArticle(p cms.Parameters) error {
	id := optID(a)
	in := models.ArticleInput{
		Title:       fields.CleanString(p.Form("title")),
		Description: strings.TrimSpace(p.Form("description")),
		Image:       fields.CleanString(p.Form("image")),
		Tags:        models.ParseTags(fields.CleanString(p.Form("tags"))),
		CategoryID:  fields.CleanInt(p.Form("category_id")),
		Draft:       fields.CleanBool(p.Form("draft")),
		Published:   fields.CleanBool(p.Form("published")),
	}

	var err error
	if id == 0 {
		in.AuthorID = a.Auth().User.ID
		_, err = a.deps.Articles.Create(a, in)
	} else {
		var current models.Article
		current, err = a.deps.Articles.ByID(a, id)
		if err == nil {
			in.AuthorID = current.AuthorID
			_, err = a.deps.Articles.Update(a, id, in)
		}
	}
	if err != nil {
		formErrors(a, err)
		return a.articleForm(http.StatusUnprocessableEntity, id, in)
	}

	a.AddMessage("Article saved.")
	return a.Redirect("admin/articles")
}

func (a *Admin) DeleteArticle(_ cms.Parameters) error {
	if err := a.deps.Articles.Delete(a, optID(a)); err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return err
		}
		a.AddMessage("This article no longer exists.")
		return a.Redirect("admin/articles")
	}
	a.AddMessage("Article deleted.")
	return a.Redirect("admin/articles")
}

// Categories serves admin/categories[/list|/create|/edit/{id}|/delete/{id}].
func (a *Admin) Categories(_ cms.Parameters) error {
	op, id := parseOptParam(a.RequestContext().OptParam())

	switch op {
	case opList:
		list, err := a.deps.Categories.All(a)
		if err != nil {
			return err
		}
		return a.Render("Admin/categories", map[string]any{"categories": list})

	case opCreate:
		return a.categoryForm(http.StatusOK, 0, models.CategoryInput{})

	case opEdit, opDelete:
		if id == 0 {
			return cms.ErrNotFound("category not found")
		}
		category, err := a.deps.Categories.ByID(a, id)
		if err != nil {
			return notFoundOr(err, "category")
		}
		if op == opDelete {
			return a.Render("Admin/delete", map[string]any{
				"kind":   "category",
				"id":     category.ID,
				"name":   category.Name,
				"action": "categories_delete",
			})
		}
		return a.categoryForm(http.StatusOK, category.ID, models.CategoryInput{
			Name:        category.Name,
			Description: category.Description,
		})
	}

	return cms.ErrNotFound("unknown operation " + strconv.Quote(op))
}

func (a *Admin) SaveCategory(p cms.Parameters) error {
	id := optID(a)
	in := models.CategoryInput{
		Name:        fields.CleanString(p.Form("name")),
		Description: fields.CleanString(p.Form("description")),
	}

	var err error
	if id == 0 {
		_, err = a.deps.Categories.Create(a, in)
	} else {
		_, err = a.deps.Categories.Update(a, id, in)
	}
	if err != nil {
		formErrors(a, err)
		return a.categoryForm(http.StatusUnprocessableEntity, id, in)
	}

	a.AddMessage("Category saved.")
	return a.Redirect("admin/categories")
}

// DeleteCategory removes a category together with its articles.
func (a *Admin) DeleteCategory(_ cms.Parameters) error {
	if err := a.deps.Categories.Delete(a, optID(a)); err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return err
		}
		a.AddMessage("This category no longer exists.")
		return a.Redirect("admin/categories")
	}
	a.AddMessage("Category deleted.")
	return a.Redirect("admin/categories")
}

func (a *Admin) articleForm(code int, id int64, in models.ArticleInput) error {
	categories, err := a.deps.Categories.All(a)
	if err != nil {
		return err
	}
	return a.RenderStatus(code, "Admin/article_form", map[string]any{
		"id":         id,
		"article":    in,
		"categories": categories,
	})
}

func (a *Admin) categoryForm(code int, id int64, in models.CategoryInput) error {
	return a.RenderStatus(code, "Admin/category_form", map[string]any{
		"id":       id,
		"category": in,
	})
}

func articleInput(a models.Article) models.ArticleInput {
	return models.ArticleInput{
		Title:       a.Title,
		Description: a.Description,
		Image:       a.Image,
		Tags:        a.Tags,
		AuthorID:    a.AuthorID,
		CategoryID:  a.CategoryID,
		Draft:       a.Draft,
		Published:   a.Published,
	}
}
