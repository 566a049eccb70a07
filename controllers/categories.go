package controllers

import (
	cms "github.com/MartinPJB/BLOG-CMS"
)

// Categories serves the public category pages.
type Categories struct {
	cms.Context
	deps Deps
}

func (c *Categories) Index(_ cms.Parameters) error {
	list, err := c.deps.Categories.All(c)
	if err != nil {
		return err
	}
	return c.Render("Categories/index", map[string]any{"categories": list})
}

// See shows a category with its published articles.
func (c *Categories) See(_ cms.Parameters) error {
	id := optID(c)
	if id == 0 {
		return c.Redirect("categories")
	}

	category, err := c.deps.Categories.ByID(c, id)
	if err != nil {
		return notFoundOr(err, "category")
	}
	articles, err := c.deps.Articles.AllPublished(c, &id)
	if err != nil {
		return err
	}

	return c.Render("Categories/see", map[string]any{
		"category": category,
		"articles": articles,
	})
}
