package controllers

import (
	"context"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	cms "github.com/MartinPJB/BLOG-CMS"
	"github.com/MartinPJB/BLOG-CMS/models"
	"github.com/MartinPJB/BLOG-CMS/pkg/session/memstore"
)

type rendered struct {
	view string
	vars map[string]any
}

// recorder writes the view name and keeps every rendered view.
type recorder struct {
	mu    sync.Mutex
	views []rendered
}

func (r *recorder) Render(_ context.Context, w io.Writer, view string, vars map[string]any) error {
	r.mu.Lock()
	r.views = append(r.views, rendered{view: view, vars: maps.Clone(vars)})
	r.mu.Unlock()
	_, err := io.WriteString(w, view)
	return err
}

func (r *recorder) last() rendered {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.views) == 0 {
		return rendered{}
	}
	return r.views[len(r.views)-1]
}

type fakeArticles struct {
	mu       sync.Mutex
	articles map[int64]models.Article
	nextID   int64
}

func (s *fakeArticles) AllPublished(_ context.Context, categoryID *int64) ([]models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Article
	for _, a := range s.articles {
		if a.Visible() && (categoryID == nil || a.CategoryID == *categoryID) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *fakeArticles) WithAuthors(_ context.Context) ([]models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Article, 0, len(s.articles))
	for _, a := range s.articles {
		a.AuthorName = "root"
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *fakeArticles) ByID(_ context.Context, id int64) (models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return models.Article{}, models.ErrNotFound
	}
	return a, nil
}

func (s *fakeArticles) Create(_ context.Context, in models.ArticleInput) (models.Article, error) {
	if in.Title == "" {
		return models.Article{}, &models.ValidationError{Messages: []string{"title is required"}}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	a := fromInput(s.nextID, in)
	s.articles[a.ID] = a
	return a, nil
}

func (s *fakeArticles) Update(_ context.Context, id int64, in models.ArticleInput) (models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[id]; !ok {
		return models.Article{}, models.ErrNotFound
	}
	a := fromInput(id, in)
	s.articles[id] = a
	return a, nil
}

func (s *fakeArticles) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.articles, id)
	return nil
}

func fromInput(id int64, in models.ArticleInput) models.Article {
	return models.Article{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
		Tags:        in.Tags,
		AuthorID:    in.AuthorID,
		CategoryID:  in.CategoryID,
		Draft:       in.Draft,
		Published:   in.Published,
		Date:        time.Now(),
	}
}

type fakeCategories struct {
	mu         sync.Mutex
	categories map[int64]models.Category
	byIDErr    error
}

func (s *fakeCategories) All(_ context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeCategories) ByID(_ context.Context, id int64) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byIDErr != nil {
		return models.Category{}, s.byIDErr
	}
	c, ok := s.categories[id]
	if !ok {
		return models.Category{}, models.ErrNotFound
	}
	return c, nil
}

func (s *fakeCategories) Create(_ context.Context, in models.CategoryInput) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Name == in.Name {
			return models.Category{}, models.ErrDuplicate
		}
	}
	c := models.Category{ID: int64(len(s.categories) + 1), Name: in.Name, Description: in.Description}
	s.categories[c.ID] = c
	return c, nil
}

func (s *fakeCategories) Update(_ context.Context, id int64, in models.CategoryInput) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return models.Category{}, models.ErrNotFound
	}
	c := models.Category{ID: id, Name: in.Name, Description: in.Description}
	s.categories[id] = c
	return c, nil
}

func (s *fakeCategories) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

type fakeBlocks struct {
	mu     sync.Mutex
	blocks map[int64]models.Block
	nextID int64
}

func (s *fakeBlocks) All(_ context.Context) ([]models.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Block, 0, len(s.blocks))
	for _, b := range s.blocks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeBlocks) ByArticle(ctx context.Context, articleID int64) ([]models.Block, error) {
	all, _ := s.All(ctx)
	var out []models.Block
	for _, b := range all {
		if b.ArticleID == articleID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBlocks) ByID(_ context.Context, id int64) (models.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocks[id]
	if !ok {
		return models.Block{}, models.ErrNotFound
	}
	return b, nil
}

func (s *fakeBlocks) Create(_ context.Context, in models.BlockInput) (models.Block, error) {
	if in.Name == "" {
		return models.Block{}, &models.ValidationError{Messages: []string{"name is required"}}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b := blockFromInput(s.nextID, in)
	s.blocks[b.ID] = b
	return b, nil
}

func (s *fakeBlocks) Update(_ context.Context, id int64, in models.BlockInput) (models.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blocks[id]; !ok {
		return models.Block{}, models.ErrNotFound
	}
	b := blockFromInput(id, in)
	s.blocks[id] = b
	return b, nil
}

func (s *fakeBlocks) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blocks[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.blocks, id)
	return nil
}

func blockFromInput(id int64, in models.BlockInput) models.Block {
	return models.Block{
		ID:        id,
		Name:      in.Name,
		Type:      in.Type,
		Content:   in.Content,
		ArticleID: in.ArticleID,
		Weight:    in.Weight,
	}
}

type fakeUsers struct{}

func (fakeUsers) ByID(_ context.Context, id int64) (models.User, error) {
	switch id {
	case 1:
		return models.User{ID: 1, Username: "root", Email: "root@example.com", Role: models.RoleAdmin}, nil
	case 2:
		return models.User{ID: 2, Username: "ada", Email: "ada@example.com", Role: models.RoleMember}, nil
	}
	return models.User{}, models.ErrNotFound
}

func (fakeUsers) Authenticate(_ context.Context, email, password string) (models.User, error) {
	switch {
	case email == "root@example.com" && password == "secret":
		return models.User{ID: 1, Username: "root", Email: email, Role: models.RoleAdmin}, nil
	case email == "ada@example.com" && password == "secret":
		return models.User{ID: 2, Username: "ada", Email: email, Role: models.RoleMember}, nil
	}
	return models.User{}, models.ErrInvalidCredentials
}

func resolveUser(_ context.Context, id int64) (*cms.User, error) {
	switch id {
	case 1:
		return &cms.User{ID: 1, Username: "root", Role: cms.RoleAdmin}, nil
	case 2:
		return &cms.User{ID: 2, Username: "ada", Role: models.RoleMember}, nil
	}
	return nil, nil
}

type fixture struct {
	app        *cms.App
	views      *recorder
	articles   *fakeArticles
	categories *fakeCategories
	blocks     *fakeBlocks
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		views: &recorder{},
		articles: &fakeArticles{nextID: 3, articles: map[int64]models.Article{
			1: {ID: 1, Title: "Hello", CategoryID: 1, AuthorID: 1, Published: true},
			2: {ID: 2, Title: "Work in progress", CategoryID: 1, AuthorID: 1, Draft: true},
			3: {ID: 3, Title: "Match report", CategoryID: 2, AuthorID: 1, Published: true},
		}},
		categories: &fakeCategories{categories: map[int64]models.Category{
			1: {ID: 1, Name: "News"},
			2: {ID: 2, Name: "Sport"},
		}},
		blocks: &fakeBlocks{nextID: 2, blocks: map[int64]models.Block{
			1: {ID: 1, Name: "Intro", Type: "text", ArticleID: 3, Weight: 1, Content: map[string]any{"body": "Hi"}},
			2: {ID: 2, Name: "Photo", Type: "image", ArticleID: 3, Weight: 2, Content: map[string]any{"src": "https://example.com/a.png"}},
		}},
	}

	router := cms.NewRouter(nil)
	Register(router, Deps{Articles: f.articles, Categories: f.categories, Blocks: f.blocks, Users: fakeUsers{}})

	f.app = cms.New(router,
		cms.WithRenderer(f.views),
		cms.WithSession(memstore.New()),
		cms.WithAuthResolver(resolveUser),
		cms.WithDefaultRoute("articles"),
	)
	return f
}

func (f *fixture) do(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)
	return rec
}

// login signs in and returns the session cookies.
func (f *fixture) login(t *testing.T, email string) []*http.Cookie {
	t.Helper()

	rec := f.do(http.MethodPost, "/users/process_login", url.Values{
		"email":    {email},
		"password": {"secret"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login as %s: status %d", email, rec.Code)
	}
	return rec.Result().Cookies()
}
