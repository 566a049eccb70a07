package models

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/MartinPJB/BLOG-CMS/pkg/database"
)

const blocksTable = "blocks"

// DefaultBlockWeight orders blocks saved without an explicit weight.
const DefaultBlockWeight = 1

// Block is one piece of an article page. Content holds the typed form fields
// the block was saved with.
type Block struct {
	Content   map[string]any
	Name      string
	Type      string
	ID        int64
	ArticleID int64
	Weight    int64
}

// BlockInput is the editable part of a block.
type BlockInput struct {
	Content   map[string]any `form:"content"`
	Name      string         `form:"name" validate:"required,max=255"`
	Type      string         `form:"type" validate:"required,max=255"`
	ArticleID int64          `form:"article_id" validate:"gt=0"`
	Weight    int64          `form:"weight" validate:"min=0"`
}

// Blocks reads and writes the blocks table.
type Blocks struct {
	db *database.Manager
}

func NewBlocks(db *database.Manager) *Blocks {
	return &Blocks{db: db}
}

// All returns every block ordered by id.
func (s *Blocks) All(ctx context.Context) ([]Block, error) {
	rows, err := s.db.Read(ctx, blocksTable, database.AllColumns(), nil)
	if err != nil {
		return nil, err
	}
	out, err := blocksFromRows(rows)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ByArticle returns the blocks of one article in display order: by weight,
// then by id.
func (s *Blocks) ByArticle(ctx context.Context, articleID int64) ([]Block, error) {
	rows, err := s.db.Read(ctx, blocksTable, database.AllColumns(), database.Where("article_id", articleID))
	if err != nil {
		return nil, err
	}
	out, err := blocksFromRows(rows)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight < out[j].Weight
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Blocks) ByID(ctx context.Context, id int64) (Block, error) {
	rows, err := s.db.Read(ctx, blocksTable, database.AllColumns(), database.Where("id", id))
	if err != nil {
		return Block{}, err
	}
	if len(rows) == 0 {
		return Block{}, ErrNotFound
	}
	return blockFromRow(rows[0])
}

// Create inserts a block after checking its article exists.
func (s *Blocks) Create(ctx context.Context, in BlockInput) (Block, error) {
	in = in.normalize()
	if err := check(in); err != nil {
		return Block{}, err
	}
	values, err := in.values()
	if err != nil {
		return Block{}, err
	}

	var created Block
	err = s.db.WithTx(ctx, func(tx *database.Manager) error {
		if err := requireArticle(ctx, tx, in.ArticleID); err != nil {
			return err
		}
		row, err := tx.Create(ctx, blocksTable, values)
		if err != nil {
			return writeError(err, "create block")
		}
		created, err = blockFromRow(row)
		return err
	})
	return created, err
}

func (s *Blocks) Update(ctx context.Context, id int64, in BlockInput) (Block, error) {
	in = in.normalize()
	if err := check(in); err != nil {
		return Block{}, err
	}
	values, err := in.values()
	if err != nil {
		return Block{}, err
	}

	var updated Block
	err = s.db.WithTx(ctx, func(tx *database.Manager) error {
		if err := requireArticle(ctx, tx, in.ArticleID); err != nil {
			return err
		}
		rows, err := tx.Update(ctx, blocksTable, values, database.Where("id", id))
		if err != nil {
			return writeError(err, "update block")
		}
		if len(rows) == 0 {
			return ErrNotFound
		}
		updated, err = blockFromRow(rows[0])
		return err
	})
	return updated, err
}

func (s *Blocks) Delete(ctx context.Context, id int64) error {
	n, err := s.db.Delete(ctx, blocksTable, database.Where("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func requireArticle(ctx context.Context, tx *database.Manager, id int64) error {
	rows, err := tx.Read(ctx, articlesTable, database.Flat("id"), database.Where("id", id))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return invalid("article_id does not exist")
	}
	return nil
}

func (in BlockInput) normalize() BlockInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	if in.Weight == 0 {
		in.Weight = DefaultBlockWeight
	}
	if in.Content == nil {
		in.Content = map[string]any{}
	}
	return in
}

func (in BlockInput) values() (database.Values, error) {
	content, err := json.Marshal(in.Content)
	if err != nil {
		return database.Values{}, errors.Wrap(err, "encode block content")
	}
	return database.
		Set("name", in.Name).
		Set("type", in.Type).
		Set("content", string(content)).
		Set("article_id", in.ArticleID).
		Set("weight", in.Weight), nil
}

func blocksFromRows(rows []database.Row) ([]Block, error) {
	out := make([]Block, 0, len(rows))
	for _, row := range rows {
		b, err := blockFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func blockFromRow(row database.Row) (Block, error) {
	content, err := blockContent(row.Value("content"))
	if err != nil {
		return Block{}, errors.Wrapf(err, "decode content of block %d", row.Int64("id"))
	}
	return Block{
		ID:        row.Int64("id"),
		Name:      row.String("name"),
		Type:      row.String("type"),
		Content:   content,
		ArticleID: row.Int64("article_id"),
		Weight:    row.Int64("weight"),
	}, nil
}

// blockContent accepts jsonb as pgx decodes it, or as raw JSON text.
func blockContent(v any) (map[string]any, error) {
	var raw []byte
	switch c := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return c, nil
	case string:
		raw = []byte(c)
	case []byte:
		raw = c
	default:
		return nil, errors.Newf("unexpected content type %T", v)
	}
	out := map[string]any{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
