// Package validate certifies a table set against the schema registry.
// It is the sole authority on referential integrity: repair never
// touches keys, so orphans and duplicates surface here instead of
// being silently patched.
package validate

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/synthward-labs/synthward/internal/schema"
	"github.com/synthward-labs/synthward/internal/table"
)

const maxExamples = 5

const day = 24 * time.Hour

// Engine runs the three validation passes over a table set. It never
// mutates the data it is given.
type Engine struct {
	reg    *schema.Registry
	logger *slog.Logger
}

func New(reg *schema.Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{reg: reg, logger: logger}
}

// Validate runs the primary-key, foreign-key and domain passes and
// joins every violation found, so a single run surfaces the full
// picture rather than the first failure.
func (e *Engine) Validate(set table.Set) error {
	var errs []error
	if err := e.CheckPrimaryKeys(set); err != nil {
		errs = append(errs, err)
	}
	if err := e.CheckForeignKeys(set); err != nil {
		errs = append(errs, err)
	}
	if err := e.CheckDomains(set); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		e.logger.Info("validation passed", "tables", len(e.reg.TableNames()))
		return nil
	}
	return errors.Join(errs...)
}

// CheckPrimaryKeys verifies that every table is present, carries its
// declared key column, and that the column is non-null and unique.
func (e *Engine) CheckPrimaryKeys(set table.Set) error {
	var errs []error
	for _, name := range e.reg.GenerationOrder() {
		spec, ok := e.reg.Table(name)
		if !ok {
			continue
		}
		t, ok := set[name]
		if !ok {
			errs = append(errs, &IntegrityError{Table: name, Kind: KindMissingTable})
			continue
		}
		if !t.HasColumn(spec.PrimaryKey) {
			errs = append(errs, &IntegrityError{
				Table: name, Column: spec.PrimaryKey, Kind: KindMissingColumn,
			})
			continue
		}
		nulls := 0
		seen := make(map[string]int, len(t.Rows))
		for _, row := range t.Rows {
			v, ok := table.AsString(row[spec.PrimaryKey])
			if !ok || v == "" {
				nulls++
				continue
			}
			seen[v]++
		}
		if nulls > 0 {
			errs = append(errs, &IntegrityError{
				Table: name, Column: spec.PrimaryKey, Kind: KindNull, Count: nulls,
			})
		}
		var dups []string
		dupCount := 0
		for v, n := range seen {
			if n > 1 {
				dups = append(dups, v)
				dupCount += n - 1
			}
		}
		if dupCount > 0 {
			sort.Strings(dups)
			errs = append(errs, &IntegrityError{
				Table:    name,
				Column:   spec.PrimaryKey,
				Kind:     KindDuplicate,
				Count:    dupCount,
				Examples: truncate(dups),
			})
		}
	}
	return errors.Join(errs...)
}

// CheckForeignKeys verifies that every non-null child value resolves to
// a parent primary key. Tables absent from the set are skipped here;
// the primary-key pass already reports them.
func (e *Engine) CheckForeignKeys(set table.Set) error {
	var errs []error
	for _, rel := range e.reg.Relationships() {
		child, okc := set[rel.ChildTable]
		parent, okp := set[rel.ParentTable]
		if !okc || !okp {
			continue
		}
		keys := make(map[string]struct{}, len(parent.Rows))
		for _, row := range parent.Rows {
			if v, ok := table.AsString(row[rel.ParentColumn]); ok {
				keys[v] = struct{}{}
			}
		}
		orphanSet := make(map[string]struct{})
		orphans := 0
		for _, row := range child.Rows {
			raw := row[rel.ChildColumn]
			if raw == nil {
				continue
			}
			v, ok := table.AsString(raw)
			if !ok {
				continue
			}
			if _, found := keys[v]; !found {
				orphans++
				orphanSet[v] = struct{}{}
			}
		}
		if orphans > 0 {
			examples := make([]string, 0, len(orphanSet))
			for v := range orphanSet {
				examples = append(examples, v)
			}
			sort.Strings(examples)
			errs = append(errs, &IntegrityError{
				Table:        rel.ChildTable,
				Column:       rel.ChildColumn,
				Relationship: rel.Name(),
				Kind:         KindOrphan,
				Count:        orphans,
				Examples:     truncate(examples),
			})
		}
	}
	return errors.Join(errs...)
}

// CheckDomains sweeps every declared column constraint and cross-field
// rule. Each failing check yields one error carrying all the rows that
// violated it, up to five examples.
func (e *Engine) CheckDomains(set table.Set) error {
	var errs []error
	for _, name := range e.reg.GenerationOrder() {
		spec, ok := e.reg.Table(name)
		if !ok {
			continue
		}
		t, ok := set[name]
		if !ok {
			continue
		}
		for _, col := range spec.Columns {
			if derr := e.checkColumn(spec, t, col); derr != nil {
				errs = append(errs, derr...)
			}
		}
		for _, cf := range spec.CrossFields {
			if derr := e.checkCrossField(spec, t, cf); derr != nil {
				errs = append(errs, derr)
			}
		}
	}
	return errors.Join(errs...)
}

type sweep struct {
	count    int
	examples []string
}

func (s *sweep) add(key string, detail string) {
	s.count++
	if len(s.examples) < maxExamples {
		s.examples = append(s.examples, fmt.Sprintf("%s: %s", key, detail))
	}
}

func (s *sweep) err(tableName, check string, columns ...string) *DomainConstraintError {
	if s.count == 0 {
		return nil
	}
	return &DomainConstraintError{
		Table:    tableName,
		Columns:  columns,
		Check:    check,
		Count:    s.count,
		Examples: s.examples,
	}
}

func (e *Engine) checkColumn(spec *schema.Table, t *table.Table, col schema.Column) []error {
	if !t.HasColumn(col.Name) {
		return []error{&DomainConstraintError{
			Table:   spec.Name,
			Columns: []string{col.Name},
			Check:   "column_present",
			Count:   1,
		}}
	}
	var nulls, types, allowed, ranges sweep
	for i, row := range t.Rows {
		key := rowKey(spec, t, i)
		v := row[col.Name]
		if v == nil {
			if !col.Nullable {
				nulls.add(key, col.Name+" is null")
			}
			continue
		}
		switch col.Type {
		case schema.TypeString, schema.TypeCategory:
			s, ok := table.AsString(v)
			if !ok {
				types.add(key, fmt.Sprintf("%s=%v is not a string", col.Name, v))
				continue
			}
			if len(col.Allowed) > 0 && !containsString(col.Allowed, s) {
				allowed.add(key, fmt.Sprintf("%s=%q", col.Name, s))
			}
		case schema.TypeInt:
			n, ok := table.AsInt64(v)
			if !ok {
				types.add(key, fmt.Sprintf("%s=%v is not an integer", col.Name, v))
				continue
			}
			if outOfRange(float64(n), col.Min, col.Max) {
				ranges.add(key, fmt.Sprintf("%s=%d", col.Name, n))
			}
		case schema.TypeFloat:
			f, ok := table.AsFloat(v)
			if !ok {
				types.add(key, fmt.Sprintf("%s=%v is not numeric", col.Name, v))
				continue
			}
			if outOfRange(f, col.Min, col.Max) {
				ranges.add(key, fmt.Sprintf("%s=%g", col.Name, f))
			}
		case schema.TypeDate, schema.TypeTimestamp:
			ts, ok := table.AsTime(v)
			if !ok {
				types.add(key, fmt.Sprintf("%s=%v is not a time", col.Name, v))
				continue
			}
			if outOfTimeRange(ts, col.MinTime, col.MaxTime) {
				ranges.add(key, fmt.Sprintf("%s=%s", col.Name, ts.Format(time.RFC3339)))
			}
		}
	}
	var errs []error
	if derr := nulls.err(spec.Name, "not_null", col.Name); derr != nil {
		errs = append(errs, derr)
	}
	if derr := types.err(spec.Name, "type", col.Name); derr != nil {
		errs = append(errs, derr)
	}
	if derr := allowed.err(spec.Name, "allowed_values", col.Name); derr != nil {
		errs = append(errs, derr)
	}
	if derr := ranges.err(spec.Name, "range", col.Name); derr != nil {
		errs = append(errs, derr)
	}
	return errs
}

func (e *Engine) checkCrossField(spec *schema.Table, t *table.Table, cf schema.CrossField) error {
	switch cf.Kind {
	case schema.CrossFieldDurationDays:
		var s sweep
		for i, row := range t.Rows {
			key := rowKey(spec, t, i)
			start, oks := table.AsTime(row[cf.Start])
			end, oke := table.AsTime(row[cf.End])
			dur, okd := table.AsInt64(row[cf.Duration])
			if !oks || !oke || !okd {
				s.add(key, "missing duration fields")
				continue
			}
			if end.Before(start) {
				s.add(key, fmt.Sprintf("%s precedes %s", cf.End, cf.Start))
				continue
			}
			days := wholeDays(start, end)
			if days < int64(cf.MinDays) || days > int64(cf.MaxDays) {
				s.add(key, fmt.Sprintf("stay of %d day(s) outside [%d, %d]", days, cf.MinDays, cf.MaxDays))
				continue
			}
			if dur != days {
				s.add(key, fmt.Sprintf("%s=%d but dates span %d day(s)", cf.Duration, dur, days))
			}
		}
		return errOrNil(s.err(spec.Name, "duration_days", cf.Start, cf.End, cf.Duration))
	case schema.CrossFieldOrderedDates:
		var s sweep
		for i, row := range t.Rows {
			key := rowKey(spec, t, i)
			start, oks := table.AsTime(row[cf.Start])
			end, oke := table.AsTime(row[cf.End])
			if !oks || !oke {
				s.add(key, "missing date fields")
				continue
			}
			if end.Before(start) {
				s.add(key, fmt.Sprintf("%s precedes %s", cf.End, cf.Start))
			}
		}
		return errOrNil(s.err(spec.Name, "ordered_dates", cf.Start, cf.End))
	default:
		return fmt.Errorf("unknown cross-field kind %q on table %s", cf.Kind, spec.Name)
	}
}

func rowKey(spec *schema.Table, t *table.Table, i int) string {
	if t.HasColumn(spec.PrimaryKey) {
		if v, ok := table.AsString(t.Rows[i][spec.PrimaryKey]); ok && v != "" {
			return v
		}
	}
	return fmt.Sprintf("row %d", i)
}

// wholeDays counts complete 24-hour periods between two timestamps.
// Repair uses the same arithmetic, so a repaired row always certifies.
func wholeDays(start, end time.Time) int64 {
	return int64(end.Sub(start) / day)
}

func outOfRange(v float64, lo, hi *float64) bool {
	if lo != nil && v < *lo {
		return true
	}
	if hi != nil && v > *hi {
		return true
	}
	return false
}

func outOfTimeRange(v time.Time, lo, hi *time.Time) bool {
	if lo != nil && v.Before(*lo) {
		return true
	}
	if hi != nil && v.After(*hi) {
		return true
	}
	return false
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func truncate(examples []string) []string {
	if len(examples) > maxExamples {
		return examples[:maxExamples]
	}
	return examples
}

func errOrNil(e *DomainConstraintError) error {
	if e == nil {
		return nil
	}
	return e
}
