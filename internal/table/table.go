// Package table defines the in-memory tabular value types passed between
// pipeline stages. A Table is a named, ordered set of named columns; rows
// are plain maps from column name to a typed value. Cell values are one of
// string, int64, float64, time.Time, or nil for SQL NULL.
package table

import (
	"fmt"
	"sort"
	"time"
)

// Row maps column names to cell values.
type Row map[string]any

// Table is a named set of rows with a fixed column order.
// Column order is significant only for presentation and export.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// Set maps table names to tables. Stages pass a Set by ownership
// transfer; only the repair engine mutates a Set it did not create.
type Set map[string]*Table

// New creates an empty table with the given column order.
func New(name string, columns []string) *Table {
	return &Table{
		Name:    name,
		Columns: append([]string(nil), columns...),
		Rows:    make([]Row, 0),
	}
}

// Append adds a row to the table.
func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the table declares the given column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Column returns all values of a column in row order.
func (t *Table) Column(name string) []any {
	values := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[name]
	}
	return values
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := New(t.Name, t.Columns)
	out.Rows = make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// Clone returns a deep copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for name, t := range s {
		out[name] = t.Clone()
	}
	return out
}

// Names returns the table names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AsString coerces a cell value to its string form.
// Returns ok=false for nil values.
func AsString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case int64:
		return fmt.Sprintf("%d", x), true
	case float64:
		return fmt.Sprintf("%g", x), true
	case time.Time:
		return x.Format(time.RFC3339), true
	default:
		return fmt.Sprintf("%v", x), true
	}
}

// AsInt64 coerces a cell value to int64. Floats are accepted only when
// they carry no fractional part.
func AsInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case float64:
		if x == float64(int64(x)) {
			return int64(x), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// AsFloat coerces a cell value to float64.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

// AsTime coerces a cell value to time.Time.
func AsTime(v any) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok
}
