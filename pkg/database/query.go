package database

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Condition is a single equality predicate of a WHERE clause.
// A nil Value renders as IS NULL.
type Condition struct {
	Column string
	Value  any
}

// Conditions are AND-ed together in the order they were added.
// An empty Conditions means "no filter".
type Conditions []Condition

// Where starts a condition list.
//
//	database.Where("published", true).And("category_id", 3)
func Where(column string, value any) Conditions {
	return Conditions{{Column: column, Value: value}}
}

// And appends another equality predicate.
func (c Conditions) And(column string, value any) Conditions {
	return append(c, Condition{Column: column, Value: value})
}

// Value is a single column assignment used by INSERT and UPDATE.
type Value struct {
	Column string
	Value  any
}

// Values is an ordered list of column assignments.
// It is deliberately a different type from Conditions so SET data and
// WHERE filters can never be confused at a call site.
type Values []Value

// Set starts a value list.
//
//	database.Set("name", "News").Set("description", "")
func Set(column string, value any) Values {
	return Values{{Column: column, Value: value}}
}

// Set appends another column assignment.
func (v Values) Set(column string, value any) Values {
	return append(v, Value{Column: column, Value: value})
}

// Join is one "JOIN table ON condition" clause. On is trusted SQL written
// by the caller, never user input.
type Join struct {
	Table string
	On    string
}

type columnsKind uint8

const (
	allColumns columnsKind = iota
	flatColumns
	perTableColumns
)

// TableColumns lists the columns projected from one table.
type TableColumns struct {
	Table   string
	Columns []string
}

// Columns is the projection of a SELECT: every column, a flat list, or
// columns grouped per table (rendered as "table"."column").
type Columns struct {
	flat   []string
	tables []TableColumns
	kind   columnsKind
}

// AllColumns selects "*".
func AllColumns() Columns {
	return Columns{kind: allColumns}
}

// Flat selects the given columns. A name may be qualified as "table.column".
// No names means every column.
func Flat(names ...string) Columns {
	if len(names) == 0 {
		return AllColumns()
	}
	return Columns{kind: flatColumns, flat: names}
}

// PerTable selects columns grouped by table, in the given order.
func PerTable(tables ...TableColumns) Columns {
	if len(tables) == 0 {
		return AllColumns()
	}
	return Columns{kind: perTableColumns, tables: tables}
}

// IsAll reports whether the projection is "*".
func (c Columns) IsAll() bool {
	return c.kind == allColumns
}

func (c Columns) render() ([]string, error) {
	switch c.kind {
	case flatColumns:
		out := make([]string, 0, len(c.flat))
		for _, name := range c.flat {
			q, err := quoteQualified(name)
			if err != nil {
				return nil, err
			}
			out = append(out, q)
		}
		return out, nil
	case perTableColumns:
		var out []string
		for _, tc := range c.tables {
			for _, col := range tc.Columns {
				if err := checkIdentifiers(tc.Table, col); err != nil {
					return nil, err
				}
				out = append(out, quoteIdent(tc.Table, col))
			}
		}
		if len(out) == 0 {
			return []string{"*"}, nil
		}
		return out, nil
	default:
		return []string{"*"}, nil
	}
}

// ColumnDef describes one column of a CREATE TABLE statement.
// Type and Constraints are trusted SQL fragments.
type ColumnDef struct {
	Name        string
	Type        string
	Constraints string
}

func checkIdentifiers(names ...string) error {
	for _, name := range names {
		if !identifierRe.MatchString(name) {
			return errors.Wrapf(ErrInvalidIdentifier, "%q", name)
		}
	}
	return nil
}

func quoteIdent(parts ...string) string {
	return pgx.Identifier(parts).Sanitize()
}

// quoteQualified quotes "column" or "table.column".
func quoteQualified(name string) (string, error) {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return "", errors.Wrapf(ErrInvalidIdentifier, "%q", name)
	}
	if err := checkIdentifiers(parts...); err != nil {
		return "", err
	}
	return quoteIdent(parts...), nil
}

// qualifyColumn prefixes an unqualified column with its table name.
func qualifyColumn(table, column string) (string, error) {
	if strings.Contains(column, ".") {
		return quoteQualified(column)
	}
	if err := checkIdentifiers(table, column); err != nil {
		return "", err
	}
	return quoteIdent(table, column), nil
}
