package controllers

import (
	"context"

	"github.com/MartinPJB/BLOG-CMS/models"
)

// ArticleStore is the part of models.Articles the controllers use.
type ArticleStore interface {
	AllPublished(ctx context.Context, categoryID *int64) ([]models.Article, error)
	WithAuthors(ctx context.Context) ([]models.Article, error)
	ByID(ctx context.Context, id int64) (models.Article, error)
	Create(ctx context.Context, in models.ArticleInput) (models.Article, error)
	Update(ctx context.Context, id int64, in models.ArticleInput) (models.Article, error)
	Delete(ctx context.Context, id int64) error
}

// CategoryStore is the part of models.Categories the controllers use.
type CategoryStore interface {
	All(ctx context.Context) ([]models.Category, error)
	ByID(ctx context.Context, id int64) (models.Category, error)
	Create(ctx context.Context, in models.CategoryInput) (models.Category, error)
	Update(ctx context.Context, id int64, in models.CategoryInput) (models.Category, error)
	Delete(ctx context.Context, id int64) error
}

// BlockStore is the part of models.Blocks the controllers use.
type BlockStore interface {
	All(ctx context.Context) ([]models.Block, error)
	ByArticle(ctx context.Context, articleID int64) ([]models.Block, error)
	ByID(ctx context.Context, id int64) (models.Block, error)
	Create(ctx context.Context, in models.BlockInput) (models.Block, error)
	Update(ctx context.Context, id int64, in models.BlockInput) (models.Block, error)
	Delete(ctx context.Context, id int64) error
}

// UserStore is the part of models.Users the controllers use.
type UserStore interface {
	ByID(ctx context.Context, id int64) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
}

// Deps are the stores shared by every controller.
type Deps struct {
	Articles   ArticleStore
	Categories CategoryStore
	Blocks     BlockStore
	Users      UserStore
}
