package models

import (
	"context"
	"sort"
	"strings"

	"github.com/MartinPJB/BLOG-CMS/pkg/database"
)

const categoriesTable = "categories"

type Category struct {
	ID          int64
	Name        string
	Description string
}

// CategoryInput is the editable part of a category.
type CategoryInput struct {
	Name        string `form:"name" validate:"required,max=255"`
	Description string `form:"description" validate:"max=2000"`
}

// Categories reads and writes the categories table.
type Categories struct {
	db *database.Manager
}

func NewCategories(db *database.Manager) *Categories {
	return &Categories{db: db}
}

// All returns every category ordered by id.
func (s *Categories) All(ctx context.Context) ([]Category, error) {
	rows, err := s.db.Read(ctx, categoriesTable, database.AllColumns(), nil)
	if err != nil {
		return nil, err
	}
	out := make([]Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, categoryFromRow(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Categories) ByID(ctx context.Context, id int64) (Category, error) {
	rows, err := s.db.Read(ctx, categoriesTable, database.AllColumns(), database.Where("id", id))
	if err != nil {
		return Category{}, err
	}
	if len(rows) == 0 {
		return Category{}, ErrNotFound
	}
	return categoryFromRow(rows[0]), nil
}

func (s *Categories) Create(ctx context.Context, in CategoryInput) (Category, error) {
	in = in.normalize()
	if err := check(in); err != nil {
		return Category{}, err
	}
	row, err := s.db.Create(ctx, categoriesTable, in.values())
	if err != nil {
		return Category{}, writeError(err, "create category")
	}
	return categoryFromRow(row), nil
}

func (s *Categories) Update(ctx context.Context, id int64, in CategoryInput) (Category, error) {
	in = in.normalize()
	if err := check(in); err != nil {
		return Category{}, err
	}
	rows, err := s.db.Update(ctx, categoriesTable, in.values(), database.Where("id", id))
	if err != nil {
		return Category{}, writeError(err, "update category")
	}
	if len(rows) == 0 {
		return Category{}, ErrNotFound
	}
	return categoryFromRow(rows[0]), nil
}

// Delete removes a category and, through the foreign key, its articles.
func (s *Categories) Delete(ctx context.Context, id int64) error {
	n, err := s.db.Delete(ctx, categoriesTable, database.Where("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (in CategoryInput) normalize() CategoryInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

func (in CategoryInput) values() database.Values {
	return database.Set("name", in.Name).Set("description", in.Description)
}

func categoryFromRow(row database.Row) Category {
	return Category{
		ID:          row.Int64("id"),
		Name:        row.String("name"),
		Description: row.String("description"),
	}
}
