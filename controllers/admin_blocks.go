package controllers

import (
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"

	cms "github.com/MartinPJB/BLOG-CMS"
	"github.com/MartinPJB/BLOG-CMS/models"
	"github.com/MartinPJB/BLOG-CMS/pkg/fields"
)

// blockFormKeys are the block form fields stored as columns rather than content.
var blockFormKeys = []string{"name", "type", "weight", "article_id"}

// Blocks serves admin/blocks[/list[/{articleID}]|/create/{articleID}|/edit/{id}|/delete/{id}].
func (a *Admin) Blocks(_ cms.Parameters) error {
	op, id := parseOptParam(a.RequestContext().OptParam())

	switch op {
	case opList:
		if id != 0 {
			return a.articleBlocks(id)
		}
		list, err := a.deps.Blocks.All(a)
		if err != nil {
			return err
		}
		return a.Render("Admin/blocks", map[string]any{"blocks": list})

	case opCreate:
		article, err := a.deps.Articles.ByID(a, id)
		if err != nil {
			return notFoundOr(err, "article")
		}
		return a.blockForm(http.StatusOK, 0, article, models.BlockInput{
			ArticleID: article.ID,
			Type:      "text",
			Weight:    models.DefaultBlockWeight,
		})

	case opEdit, opDelete:
		if id == 0 {
			return cms.ErrNotFound("block not found")
		}
		block, err := a.deps.Blocks.ByID(a, id)
		if err != nil {
			return notFoundOr(err, "block")
		}
		if op == opDelete {
			return a.Render("Admin/delete", map[string]any{
				"kind":   "block",
				"id":     block.ID,
				"name":   block.Name,
				"action": "delete_block",
			})
		}
		article, err := a.deps.Articles.ByID(a, block.ArticleID)
		if err != nil {
			return notFoundOr(err, "article")
		}
		return a.blockForm(http.StatusOK, block.ID, article, models.BlockInput{
			Name:      block.Name,
			Type:      block.Type,
			Content:   block.Content,
			ArticleID: block.ArticleID,
			Weight:    block.Weight,
		})
	}

	return cms.ErrNotFound("unknown operation " + strconv.Quote(op))
}

// CreateBlock adds a block to the article named by the trailing id.
func (a *Admin) CreateBlock(p cms.Parameters) error {
	article, err := a.deps.Articles.ByID(a, optID(a))
	if err != nil {
		return notFoundOr(err, "article")
	}

	in := blockInput(p, article.ID)
	if _, err := a.deps.Blocks.Create(a, in); err != nil {
		formErrors(a, err)
		return a.blockForm(http.StatusUnprocessableEntity, 0, article, in)
	}

	a.AddMessage("The block has been successfully created!")
	return a.Redirect("admin/articles/blocks", strconv.FormatInt(article.ID, 10))
}

// EditBlock updates the block named by the trailing id. The block keeps its article.
func (a *Admin) EditBlock(p cms.Parameters) error {
	block, err := a.deps.Blocks.ByID(a, optID(a))
	if err != nil {
		return notFoundOr(err, "block")
	}
	article, err := a.deps.Articles.ByID(a, block.ArticleID)
	if err != nil {
		return notFoundOr(err, "article")
	}

	in := blockInput(p, article.ID)
	if _, err := a.deps.Blocks.Update(a, block.ID, in); err != nil {
		formErrors(a, err)
		return a.blockForm(http.StatusUnprocessableEntity, block.ID, article, in)
	}

	a.AddMessage("The block has been successfully edited!")
	return a.Redirect("admin/articles/blocks", strconv.FormatInt(article.ID, 10))
}

func (a *Admin) DeleteBlock(_ cms.Parameters) error {
	block, err := a.deps.Blocks.ByID(a, optID(a))
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return err
		}
		a.AddMessage("This block no longer exists.")
		return a.Redirect("admin/blocks")
	}
	if err := a.deps.Blocks.Delete(a, block.ID); err != nil && !errors.Is(err, models.ErrNotFound) {
		return err
	}

	a.AddMessage("The block has been successfully deleted!")
	return a.Redirect("admin/articles/blocks", strconv.FormatInt(block.ArticleID, 10))
}

func (a *Admin) articleBlocks(articleID int64) error {
	article, err := a.deps.Articles.ByID(a, articleID)
	if err != nil {
		return notFoundOr(err, "article")
	}
	list, err := a.deps.Blocks.ByArticle(a, article.ID)
	if err != nil {
		return err
	}
	return a.Render("Admin/blocks", map[string]any{
		"article": article,
		"blocks":  list,
	})
}

func (a *Admin) blockForm(code int, id int64, article models.Article, in models.BlockInput) error {
	return a.RenderStatus(code, "Admin/block_form", map[string]any{
		"id":      id,
		"article": article,
		"block":   in,
	})
}

// blockInput reads a block form. Every field besides the columns is cleaned,
// typed and kept as content; blank ones are dropped.
func blockInput(p cms.Parameters, articleID int64) models.BlockInput {
	content := fields.Process(p.POST)
	for _, key := range blockFormKeys {
		delete(content, key)
	}
	for key, v := range content {
		if s, ok := v.(string); ok && s == "" {
			delete(content, key)
		}
	}

	return models.BlockInput{
		Name:      fields.CleanString(p.Form("name")),
		Type:      fields.CleanString(p.Form("type")),
		Weight:    fields.CleanInt(p.Form("weight")),
		ArticleID: articleID,
		Content:   content,
	}
}
