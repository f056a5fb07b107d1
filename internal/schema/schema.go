// Package schema describes the relational dataset: per-table column
// descriptors, primary keys, foreign-key relationships, and domain
// constraints. The registry is pure data; it is checked for internal
// consistency once at construction and immutable afterwards.
package schema

import (
	"fmt"
	"time"

	"github.com/synthward-labs/synthward/internal/dag"
)

// ColumnType is the scalar type of a column.
type ColumnType string

// Supported column types.
const (
	TypeString    ColumnType = "string"
	TypeInt       ColumnType = "integer"
	TypeFloat     ColumnType = "float"
	TypeDate      ColumnType = "date"
	TypeTimestamp ColumnType = "timestamp"
	TypeCategory  ColumnType = "category"
)

// Column describes one column: name, scalar type, nullability, and its
// value-level constraints. Allowed is a ValueSet constraint; Min/Max and
// MinTime/MaxTime are inclusive Range constraints.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool

	Allowed []string

	Min *float64
	Max *float64

	MinTime *time.Time
	MaxTime *time.Time
}

// CrossFieldKind selects the predicate a CrossField constraint checks.
type CrossFieldKind string

const (
	// CrossFieldDurationDays requires End >= Start and
	// Duration == (End - Start) in whole days, within [MinDays, MaxDays].
	CrossFieldDurationDays CrossFieldKind = "duration_days"
	// CrossFieldOrderedDates requires End >= Start.
	CrossFieldOrderedDates CrossFieldKind = "ordered_dates"
)

// CrossField is a predicate over two or more columns of the same row.
type CrossField struct {
	Kind     CrossFieldKind
	Start    string
	End      string
	Duration string
	MinDays  int
	MaxDays  int
}

// EmailRule declares that the Email column's local part is fully derived
// from the row's own name columns plus an optional numeric suffix.
type EmailRule struct {
	FirstName string
	LastName  string
	Email     string
	Domain    string
}

// Table describes one table of the dataset.
type Table struct {
	Name  string
	Group string

	// PrimaryKey is the PK column. Seed keys are zero-padded sequential
	// identifiers: KeyPrefix followed by KeyWidth digits.
	PrimaryKey string
	KeyPrefix  string
	KeyWidth   int

	Columns     []Column
	CrossFields []CrossField
	Email       *EmailRule
}

// Column returns the descriptor for the named column.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// ColumnNames returns the declared column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Relationship is a directed foreign-key edge:
// (child table, child column) -> (parent table, parent column).
type Relationship struct {
	ChildTable   string
	ChildColumn  string
	ParentTable  string
	ParentColumn string
}

// Name returns the canonical relationship name used in diagnostics,
// e.g. "vital_signs.device_id -> devices.device_id".
func (r Relationship) Name() string {
	return fmt.Sprintf("%s.%s -> %s.%s", r.ChildTable, r.ChildColumn, r.ParentTable, r.ParentColumn)
}

// ConfigurationError reports an internally inconsistent registry. It is
// raised at construction time, before any data is processed.
type ConfigurationError struct {
	Table  string
	Detail string
}

func (e *ConfigurationError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("schema configuration: %s", e.Detail)
	}
	return fmt.Sprintf("schema configuration: table %q: %s", e.Table, e.Detail)
}

// Registry holds the immutable schema for every table of the dataset.
type Registry struct {
	tables   map[string]*Table
	order    []string
	rels     []Relationship
	children map[string][]Relationship
	genOrder []string
}

// NewRegistry builds a registry and checks it for internal consistency:
// primary keys must be declared columns, every foreign key must point at
// its parent's declared primary key, and the relationship graph must be
// acyclic.
func NewRegistry(tables []*Table, rels []Relationship) (*Registry, error) {
	r := &Registry{
		tables:   make(map[string]*Table, len(tables)),
		order:    make([]string, 0, len(tables)),
		rels:     rels,
		children: make(map[string][]Relationship),
	}

	for _, t := range tables {
		if _, dup := r.tables[t.Name]; dup {
			return nil, &ConfigurationError{Table: t.Name, Detail: "declared more than once"}
		}
		if t.PrimaryKey == "" {
			return nil, &ConfigurationError{Table: t.Name, Detail: "no primary key declared"}
		}
		if _, ok := t.Column(t.PrimaryKey); !ok {
			return nil, &ConfigurationError{Table: t.Name, Detail: fmt.Sprintf("primary key %q is not a declared column", t.PrimaryKey)}
		}
		r.tables[t.Name] = t
		r.order = append(r.order, t.Name)
	}

	graph := dag.NewGraph()
	for _, name := range r.order {
		graph.AddNode(name, r.tables[name])
	}

	for _, rel := range rels {
		child, ok := r.tables[rel.ChildTable]
		if !ok {
			return nil, &ConfigurationError{Table: rel.ChildTable, Detail: fmt.Sprintf("relationship %s: child table not declared", rel.Name())}
		}
		parent, ok := r.tables[rel.ParentTable]
		if !ok {
			return nil, &ConfigurationError{Table: rel.ParentTable, Detail: fmt.Sprintf("relationship %s: parent table not declared", rel.Name())}
		}
		if _, ok := child.Column(rel.ChildColumn); !ok {
			return nil, &ConfigurationError{Table: rel.ChildTable, Detail: fmt.Sprintf("relationship %s: child column not declared", rel.Name())}
		}
		if rel.ParentColumn != parent.PrimaryKey {
			return nil, &ConfigurationError{
				Table:  rel.ParentTable,
				Detail: fmt.Sprintf("relationship %s: parent column is not the primary key %q", rel.Name(), parent.PrimaryKey),
			}
		}
		if err := graph.AddEdge(rel.ParentTable, rel.ChildTable); err != nil {
			return nil, &ConfigurationError{Detail: fmt.Sprintf("relationship %s: %v", rel.Name(), err)}
		}
		r.children[rel.ChildTable] = append(r.children[rel.ChildTable], rel)
	}

	sorted, err := graph.TopologicalSort()
	if err != nil {
		return nil, &ConfigurationError{Detail: err.Error()}
	}
	r.genOrder = make([]string, len(sorted))
	for i, n := range sorted {
		r.genOrder[i] = n.ID
	}

	return r, nil
}

// Table returns the descriptor for the named table.
func (r *Registry) Table(name string) (*Table, bool) {
	t, ok := r.tables[name]
	return t, ok
}

// Tables returns all table descriptors in declaration order.
func (r *Registry) Tables() []*Table {
	out := make([]*Table, len(r.order))
	for i, name := range r.order {
		out[i] = r.tables[name]
	}
	return out
}

// TableNames returns all table names in declaration order.
func (r *Registry) TableNames() []string {
	return append([]string(nil), r.order...)
}

// Relationships returns every declared foreign-key relationship.
func (r *Registry) Relationships() []Relationship {
	return append([]Relationship(nil), r.rels...)
}

// RelationshipsOf returns the foreign keys declared on a child table.
func (r *Registry) RelationshipsOf(child string) []Relationship {
	return r.children[child]
}

// GenerationOrder returns table names in relationship-DAG order: parents
// are always listed before the children that reference them.
func (r *Registry) GenerationOrder() []string {
	return append([]string(nil), r.genOrder...)
}
