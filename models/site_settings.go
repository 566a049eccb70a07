package models

import (
	"context"
	"sort"
	"strings"

	"github.com/MartinPJB/BLOG-CMS/pkg/database"
)

const siteSettingsTable = "site_settings"

// Settings is the single row of site-wide configuration.
type Settings struct {
	Name         string
	Description  string
	Theme        string
	Language     string
	DefaultRoute string
	ID           int64
}

// DefaultSettings is used until the settings row exists.
func DefaultSettings() Settings {
	return Settings{
		Name:         "Blog",
		Theme:        "default",
		Language:     "en",
		DefaultRoute: "articles",
	}
}

type SettingsInput struct {
	Name         string `form:"name" validate:"required,max=255"`
	Description  string `form:"description" validate:"max=2000"`
	Theme        string `form:"theme" validate:"required,max=255"`
	Language     string `form:"site_language" validate:"required,max=16"`
	DefaultRoute string `form:"default_route" validate:"required,max=255"`
}

// NavigationCategory is one menu entry: a category and its visible articles.
type NavigationCategory struct {
	Name        string
	Description string
	Articles    []NavigationArticle
}

type NavigationArticle struct {
	Title string
	ID    int64
}

// SiteSettings reads and writes the site_settings table.
type SiteSettings struct {
	db *database.Manager
}

func NewSiteSettings(db *database.Manager) *SiteSettings {
	return &SiteSettings{db: db}
}

// Get returns the settings row, or DefaultSettings when there is none.
func (s *SiteSettings) Get(ctx context.Context) (Settings, error) {
	rows, err := s.db.Read(ctx, siteSettingsTable, database.AllColumns(), nil)
	if err != nil {
		return Settings{}, err
	}
	if len(rows) == 0 {
		return DefaultSettings(), nil
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Int64("id") < rows[j].Int64("id") })
	row := rows[0]
	return Settings{
		ID:           row.Int64("id"),
		Name:         row.String("name"),
		Description:  row.String("description"),
		Theme:        row.String("theme"),
		Language:     row.String("site_language"),
		DefaultRoute: row.String("default_route"),
	}, nil
}

// Update writes the settings, creating the row on first save.
func (s *SiteSettings) Update(ctx context.Context, in SettingsInput) (Settings, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := check(in); err != nil {
		return Settings{}, err
	}
	values := database.
		Set("name", in.Name).
		Set("description", in.Description).
		Set("theme", in.Theme).
		Set("site_language", in.Language).
		Set("default_route", in.DefaultRoute)

	var out Settings
	err := s.db.WithTx(ctx, func(tx *database.Manager) error {
		current, err := NewSiteSettings(tx).Get(ctx)
		if err != nil {
			return err
		}
		if current.ID == 0 {
			if _, err := tx.Create(ctx, siteSettingsTable, values); err != nil {
				return writeError(err, "create site settings")
			}
		} else if _, err := tx.Update(ctx, siteSettingsTable, values, database.Where("id", current.ID)); err != nil {
			return writeError(err, "update site settings")
		}
		out = Settings{
			ID:           current.ID,
			Name:         in.Name,
			Description:  in.Description,
			Theme:        in.Theme,
			Language:     in.Language,
			DefaultRoute: in.DefaultRoute,
		}
		return nil
	})
	return out, err
}

// Navigation groups visible articles by category, categories by name and
// articles by id.
func (s *SiteSettings) Navigation(ctx context.Context) ([]NavigationCategory, error) {
	rows, err := s.db.ReadWithJoin(ctx, articlesTable,
		database.PerTable(
			database.TableColumns{Table: articlesTable, Columns: []string{"id", "title"}},
			database.TableColumns{Table: categoriesTable, Columns: []string{"name", "description"}},
		),
		database.Where("published", true).And("draft", false),
		database.Join{Table: categoriesTable, On: "articles.category_id = categories.id"},
	)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*NavigationCategory)
	for _, row := range rows {
		name := row.String("name")
		cat, ok := byName[name]
		if !ok {
			cat = &NavigationCategory{Name: name, Description: row.String("description")}
			byName[name] = cat
		}
		cat.Articles = append(cat.Articles, NavigationArticle{ID: row.Int64("id"), Title: row.String("title")})
	}

	out := make([]NavigationCategory, 0, len(byName))
	for _, cat := range byName {
		sort.Slice(cat.Articles, func(i, j int) bool { return cat.Articles[i].ID < cat.Articles[j].ID })
		out = append(out, *cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
