package validate

import (
	"fmt"
	"strings"
)

// ViolationKind classifies a key-integrity violation.
type ViolationKind string

const (
	KindMissingTable  ViolationKind = "missing_table"
	KindMissingColumn ViolationKind = "missing_column"
	KindNull          ViolationKind = "null"
	KindDuplicate     ViolationKind = "duplicate"
	KindOrphan        ViolationKind = "orphan"
)

// IntegrityError reports a primary-key or foreign-key violation. It
// carries the table/relationship, the violation kind, and up to five
// concrete example values.
type IntegrityError struct {
	Table        string
	Column       string
	Relationship string
	Kind         ViolationKind
	Count        int
	Examples     []string
}

func (e *IntegrityError) Error() string {
	switch e.Kind {
	case KindMissingTable:
		return fmt.Sprintf("%s: table missing from set", e.Table)
	case KindMissingColumn:
		return fmt.Sprintf("%s: missing primary key column %q", e.Table, e.Column)
	case KindNull:
		return fmt.Sprintf("%s: primary key %q has %d null value(s)", e.Table, e.Column, e.Count)
	case KindDuplicate:
		return fmt.Sprintf("%s: primary key %q has %d duplicate value(s). Examples: %s",
			e.Table, e.Column, e.Count, strings.Join(e.Examples, ", "))
	case KindOrphan:
		return fmt.Sprintf("foreign key %s: %d orphan value(s). Examples: %s",
			e.Relationship, e.Count, strings.Join(e.Examples, ", "))
	default:
		return fmt.Sprintf("%s: integrity violation (%s)", e.Table, e.Kind)
	}
}

// DomainConstraintError reports a column or cross-field constraint
// violation, with the failing rows' keys and offending values truncated
// to five examples.
type DomainConstraintError struct {
	Table    string
	Columns  []string
	Check    string
	Count    int
	Examples []string
}

func (e *DomainConstraintError) Error() string {
	return fmt.Sprintf("%s: constraint %q on (%s) failed for %d row(s). Examples: %s",
		e.Table, e.Check, strings.Join(e.Columns, ", "), e.Count, strings.Join(e.Examples, "; "))
}
