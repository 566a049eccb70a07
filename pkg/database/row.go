package database

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
)

// Row is one result row: column names mapped to driver values, in result-set order.
// Joined reads may repeat a column name; lookups return the first match.
type Row struct {
	columns []string
	values  []any
}

// NewRow builds a row from parallel column and value slices.
func NewRow(columns []string, values []any) Row {
	return Row{columns: columns, values: values}
}

func (r Row) Columns() []string { return r.columns }
func (r Row) Values() []any     { return r.values }
func (r Row) Len() int          { return len(r.columns) }

// Get returns the value of a column and whether the column exists.
func (r Row) Get(column string) (any, bool) {
	for i, c := range r.columns {
		if c == column {
			return r.values[i], true
		}
	}
	return nil, false
}

// Value returns the value of a column, or nil.
func (r Row) Value(column string) any {
	v, _ := r.Get(column)
	return v
}

func (r Row) String(column string) string {
	switch v := r.Value(column).(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

func (r Row) Int64(column string) int64 {
	switch v := r.Value(column).(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int16:
		return int64(v)
	case int:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

func (r Row) Bool(column string) bool {
	switch v := r.Value(column).(type) {
	case bool:
		return v
	case int64, int32, int16, int:
		return r.Int64(column) != 0
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

func (r Row) Time(column string) time.Time {
	if t, ok := r.Value(column).(time.Time); ok {
		return t
	}
	return time.Time{}
}

// Map copies the row into a map. Repeated column names keep the first value.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.columns))
	for i, c := range r.columns {
		if _, ok := m[c]; !ok {
			m[c] = r.values[i]
		}
	}
	return m
}

func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

func collectRows(rows pgx.Rows) ([]Row, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Row, error) {
		values, err := row.Values()
		if err != nil {
			return Row{}, err
		}
		fields := row.FieldDescriptions()
		columns := make([]string, len(fields))
		for i, f := range fields {
			columns[i] = f.Name
		}
		return NewRow(columns, values), nil
	})
}
