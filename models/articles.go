package models

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/MartinPJB/BLOG-CMS/pkg/database"
)

const articlesTable = "articles"

var articleColumns = []string{
	"id", "title", "description", "author_id", "date", "image",
	"category_id", "tags", "draft", "published",
}

type Article struct {
	Date        time.Time
	Title       string
	Description string // markdown
	Image       string
	AuthorName  string // set by WithAuthors
	Tags        []string
	ID          int64
	AuthorID    int64
	CategoryID  int64
	Draft       bool
	Published   bool
}

// Visible reports whether the article may be shown to visitors.
func (a Article) Visible() bool {
	return a.Published && !a.Draft
}

// ArticleInput is the editable part of an article.
type ArticleInput struct {
	Title       string   `form:"title" validate:"required,max=255"`
	Description string   `form:"description" validate:"required"`
	Image       string   `form:"image" validate:"omitempty,url,max=255"`
	Tags        []string `form:"tags" validate:"max=20,dive,max=40"`
	AuthorID    int64    `form:"author_id" validate:"gt=0"`
	CategoryID  int64    `form:"category_id" validate:"gt=0"`
	Draft       bool     `form:"draft"`
	Published   bool     `form:"published"`
}

// Articles reads and writes the articles table.
type Articles struct {
	db *database.Manager
}

func NewArticles(db *database.Manager) *Articles {
	return &Articles{db: db}
}

// AllPublished returns the visible articles, newest first, optionally
// limited to one category.
func (s *Articles) AllPublished(ctx context.Context, categoryID *int64) ([]Article, error) {
	where := database.Where("published", true).And("draft", false)
	if categoryID != nil {
		where = where.And("category_id", *categoryID)
	}
	rows, err := s.db.Read(ctx, articlesTable, database.AllColumns(), where)
	if err != nil {
		return nil, err
	}
	return newestFirst(articlesFromRows(rows)), nil
}

// All returns every article, drafts included, newest first.
func (s *Articles) All(ctx context.Context) ([]Article, error) {
	rows, err := s.db.Read(ctx, articlesTable, database.AllColumns(), nil)
	if err != nil {
		return nil, err
	}
	return newestFirst(articlesFromRows(rows)), nil
}

// WithAuthors returns every article with its author's username.
func (s *Articles) WithAuthors(ctx context.Context) ([]Article, error) {
	rows, err := s.db.ReadWithJoin(ctx, articlesTable,
		database.PerTable(
			database.TableColumns{Table: articlesTable, Columns: articleColumns},
			database.TableColumns{Table: usersTable, Columns: []string{"username"}},
		),
		nil,
		database.Join{Table: usersTable, On: "articles.author_id = users.id"},
	)
	if err != nil {
		return nil, err
	}
	out := articlesFromRows(rows)
	for i, row := range rows {
		out[i].AuthorName = row.String("username")
	}
	return newestFirst(out), nil
}

func (s *Articles) ByID(ctx context.Context, id int64) (Article, error) {
	rows, err := s.db.Read(ctx, articlesTable, database.AllColumns(), database.Where("id", id))
	if err != nil {
		return Article{}, err
	}
	if len(rows) == 0 {
		return Article{}, ErrNotFound
	}
	return articleFromRow(rows[0]), nil
}

// Create inserts an article after checking its category exists.
func (s *Articles) Create(ctx context.Context, in ArticleInput) (Article, error) {
	in = in.normalize()
	if err := check(in); err != nil {
		return Article{}, err
	}

	var created Article
	err := s.db.WithTx(ctx, func(tx *database.Manager) error {
		if err := requireCategory(ctx, tx, in.CategoryID); err != nil {
			return err
		}
		row, err := tx.Create(ctx, articlesTable, in.values())
		if err != nil {
			return writeError(err, "create article")
		}
		created = articleFromRow(row)
		return nil
	})
	return created, err
}

func (s *Articles) Update(ctx context.Context, id int64, in ArticleInput) (Article, error) {
	in = in.normalize()
	if err := check(in); err != nil {
		return Article{}, err
	}

	var updated Article
	err := s.db.WithTx(ctx, func(tx *database.Manager) error {
		if err := requireCategory(ctx, tx, in.CategoryID); err != nil {
			return err
		}
		rows, err := tx.Update(ctx, articlesTable, in.values(), database.Where("id", id))
		if err != nil {
			return writeError(err, "update article")
		}
		if len(rows) == 0 {
			return ErrNotFound
		}
		updated = articleFromRow(rows[0])
		return nil
	})
	return updated, err
}

func (s *Articles) Delete(ctx context.Context, id int64) error {
	n, err := s.db.Delete(ctx, articlesTable, database.Where("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func requireCategory(ctx context.Context, tx *database.Manager, id int64) error {
	rows, err := tx.Read(ctx, categoriesTable, database.Flat("id"), database.Where("id", id))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return invalid("category_id does not exist")
	}
	return nil
}

// ParseTags splits a comma-separated tag list, dropping blanks.
func ParseTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func (in ArticleInput) normalize() ArticleInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Image = strings.TrimSpace(in.Image)
	in.Tags = ParseTags(strings.Join(in.Tags, ","))
	return in
}

func (in ArticleInput) values() database.Values {
	var image any
	if in.Image != "" {
		image = in.Image
	}
	return database.
		Set("title", in.Title).
		Set("description", in.Description).
		Set("author_id", in.AuthorID).
		Set("image", image).
		Set("category_id", in.CategoryID).
		Set("tags", strings.Join(in.Tags, ",")).
		Set("draft", in.Draft).
		Set("published", in.Published)
}

func articlesFromRows(rows []database.Row) []Article {
	out := make([]Article, 0, len(rows))
	for _, row := range rows {
		out = append(out, articleFromRow(row))
	}
	return out
}

func articleFromRow(row database.Row) Article {
	return Article{
		ID:          row.Int64("id"),
		Title:       row.String("title"),
		Description: row.String("description"),
		AuthorID:    row.Int64("author_id"),
		Date:        row.Time("date"),
		Image:       row.String("image"),
		CategoryID:  row.Int64("category_id"),
		Tags:        ParseTags(row.String("tags")),
		Draft:       row.Bool("draft"),
		Published:   row.Bool("published"),
	}
}

func newestFirst(articles []Article) []Article {
	sort.SliceStable(articles, func(i, j int) bool {
		if !articles[i].Date.Equal(articles[j].Date) {
			return articles[i].Date.After(articles[j].Date)
		}
		return articles[i].ID > articles[j].ID
	})
	return articles
}
