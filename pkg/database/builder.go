package database

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
)

// builder renders parameterized statements with PostgreSQL placeholders.
// Only values are bound; identifiers are validated and quoted.
type builder struct {
	sq sq.StatementBuilderType
}

func newBuilder() builder {
	return builder{sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func (b builder) selectSQL(table string, columns Columns, where Conditions, joins []Join) (string, []any, error) {
	if err := checkIdentifiers(table); err != nil {
		return "", nil, err
	}
	cols, err := columns.render()
	if err != nil {
		return "", nil, err
	}

	query := b.sq.Select(cols...).From(quoteIdent(table))
	for _, j := range joins {
		if err := checkIdentifiers(j.Table); err != nil {
			return "", nil, err
		}
		if strings.TrimSpace(j.On) == "" {
			return "", nil, errors.Wrapf(ErrBuildQuery, "join %q has no condition", j.Table)
		}
		query = query.Join(quoteIdent(j.Table) + " ON " + j.On)
	}
	for _, c := range where {
		pred, err := predicate(table, c)
		if err != nil {
			return "", nil, err
		}
		query = query.Where(pred)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return "", nil, errors.Mark(errors.Wrap(err, "can't build sql query"), ErrBuildQuery)
	}
	return sql, args, nil
}

func (b builder) insertSQL(table string, data Values) (string, []any, error) {
	if err := checkIdentifiers(table); err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return "", nil, ErrNoValues
	}

	cols := make([]string, 0, len(data))
	vals := make([]any, 0, len(data))
	for _, v := range data {
		if err := checkIdentifiers(v.Column); err != nil {
			return "", nil, err
		}
		cols = append(cols, quoteIdent(v.Column))
		vals = append(vals, v.Value)
	}

	sql, args, err := b.sq.Insert(quoteIdent(table)).
		Columns(cols...).
		Values(vals...).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return "", nil, errors.Mark(errors.Wrap(err, "can't build sql query"), ErrBuildQuery)
	}
	return sql, args, nil
}

func (b builder) updateSQL(table string, data Values, where Conditions) (string, []any, error) {
	if err := checkIdentifiers(table); err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return "", nil, ErrNoValues
	}
	if len(where) == 0 {
		return "", nil, ErrNoConditions
	}
	if err := checkOverlap(table, data, where); err != nil {
		return "", nil, err
	}

	query := b.sq.Update(quoteIdent(table))
	for _, v := range data {
		if err := checkIdentifiers(v.Column); err != nil {
			return "", nil, err
		}
		query = query.Set(quoteIdent(v.Column), v.Value)
	}
	for _, c := range where {
		pred, err := predicate(table, c)
		if err != nil {
			return "", nil, err
		}
		query = query.Where(pred)
	}

	sql, args, err := query.Suffix("RETURNING *").ToSql()
	if err != nil {
		return "", nil, errors.Mark(errors.Wrap(err, "can't build sql query"), ErrBuildQuery)
	}
	return sql, args, nil
}

func (b builder) deleteSQL(table string, where Conditions) (string, []any, error) {
	if err := checkIdentifiers(table); err != nil {
		return "", nil, err
	}
	if len(where) == 0 {
		return "", nil, ErrNoConditions
	}

	query := b.sq.Delete(quoteIdent(table))
	for _, c := range where {
		pred, err := predicate(table, c)
		if err != nil {
			return "", nil, err
		}
		query = query.Where(pred)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return "", nil, errors.Mark(errors.Wrap(err, "can't build sql query"), ErrBuildQuery)
	}
	return sql, args, nil
}

func createTableSQL(table string, columns []ColumnDef, options ...string) (string, error) {
	if err := checkIdentifiers(table); err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return "", errors.Wrapf(ErrBuildQuery, "table %q has no columns", table)
	}

	defs := make([]string, 0, len(columns)+len(options))
	for _, c := range columns {
		if err := checkIdentifiers(c.Name); err != nil {
			return "", err
		}
		if strings.TrimSpace(c.Type) == "" {
			return "", errors.Wrapf(ErrBuildQuery, "column %q has no type", c.Name)
		}
		def := quoteIdent(c.Name) + " " + c.Type
		if c.Constraints != "" {
			def += " " + c.Constraints
		}
		defs = append(defs, def)
	}
	defs = append(defs, options...)

	return "CREATE TABLE IF NOT EXISTS " + quoteIdent(table) + " (" + strings.Join(defs, ", ") + ")", nil
}

// predicate renders `"table"."column" = ?`, or IS NULL for a nil value.
func predicate(table string, c Condition) (sq.Sqlizer, error) {
	col, err := qualifyColumn(table, c.Column)
	if err != nil {
		return nil, err
	}
	if c.Value == nil {
		return sq.Eq{col: nil}, nil
	}
	return sq.Expr(col+" = ?", c.Value), nil
}

func checkOverlap(table string, data Values, where Conditions) error {
	set := make(map[string]struct{}, len(data))
	for _, v := range data {
		set[unqualified(table, v.Column)] = struct{}{}
	}
	for _, c := range where {
		if _, ok := set[unqualified(table, c.Column)]; ok {
			return errors.Wrapf(ErrOverlappingColumns, "%q", c.Column)
		}
	}
	return nil
}

func unqualified(table, column string) string {
	if t, c, ok := strings.Cut(column, "."); ok && t == table {
		return c
	}
	return column
}
