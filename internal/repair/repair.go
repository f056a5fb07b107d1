// Package repair restores row-local invariants that the synthesis
// collaborator does not guarantee: temporal ordering of date pairs,
// derived-duration arithmetic, and name-derived contact addresses. Repair
// never changes primary keys or row counts, rewrites only columns within
// the same row, and is idempotent: repairing an already-repaired set is
// a no-op.
package repair

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/synthward-labs/synthward/internal/schema"
	"github.com/synthward-labs/synthward/internal/table"
)

const day = 24 * time.Hour

// Engine applies the repair rules declared in the registry.
type Engine struct {
	reg    *schema.Registry
	rng    *rand.Rand
	logger *slog.Logger
}

// New creates a repair engine. The random source is supplied by the
// orchestrator; redraws are deterministic given the same source state.
func New(reg *schema.Registry, rng *rand.Rand, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{reg: reg, rng: rng, logger: logger}
}

// Repair rewrites the table set in place, table by table in declaration
// order. Tables absent from the set are skipped.
func (e *Engine) Repair(set table.Set) {
	for _, tbl := range e.reg.Tables() {
		t, ok := set[tbl.Name]
		if !ok {
			continue
		}

		repaired := 0
		for _, cf := range tbl.CrossFields {
			switch cf.Kind {
			case schema.CrossFieldDurationDays:
				repaired += e.repairDurations(t, tbl, cf)
			case schema.CrossFieldOrderedDates:
				repaired += e.repairOrderedDates(t, tbl, cf)
			}
		}
		if tbl.Email != nil {
			e.repairEmails(t, tbl.Email)
		}

		if repaired > 0 {
			e.logger.Debug("repaired rows", "table", tbl.Name, "rows", repaired)
		}
	}
}

// repairDurations enforces end >= start and duration == whole days
// between them, within the declared valid range. Rows violating the
// ordering or range get a fresh uniformly drawn duration and a
// recomputed end; rows whose dates are fine but whose stored duration
// disagrees are fixed by recomputing the duration alone. Valid rows are
// left untouched.
func (e *Engine) repairDurations(t *table.Table, tbl *schema.Table, cf schema.CrossField) int {
	repaired := 0
	for _, row := range t.Rows {
		start, okS := table.AsTime(row[cf.Start])
		end, okE := table.AsTime(row[cf.End])
		if !okS || !okE {
			continue
		}

		days := wholeDays(start, end)
		if end.Before(start) || days < int64(cf.MinDays) || days > int64(cf.MaxDays) {
			redrawn := int64(cf.MinDays + e.rng.IntN(cf.MaxDays-cf.MinDays+1))
			row[cf.End] = start.Add(time.Duration(redrawn) * day)
			row[cf.Duration] = redrawn
			repaired++
			continue
		}

		if stored, ok := table.AsInt64(row[cf.Duration]); !ok || stored != days {
			row[cf.Duration] = days
			repaired++
		}
	}
	return repaired
}

// repairOrderedDates enforces End >= Start by redrawing End inside its
// declared range, never before Start.
func (e *Engine) repairOrderedDates(t *table.Table, tbl *schema.Table, cf schema.CrossField) int {
	col, _ := tbl.Column(cf.End)

	repaired := 0
	for _, row := range t.Rows {
		start, okS := table.AsTime(row[cf.Start])
		end, okE := table.AsTime(row[cf.End])
		if !okS || !okE || !end.Before(start) {
			continue
		}

		lower := start
		upper := start
		if col != nil && col.MaxTime != nil && col.MaxTime.After(start) {
			upper = *col.MaxTime
		}
		if col != nil && col.MinTime != nil && col.MinTime.After(lower) {
			lower = *col.MinTime
		}

		span := upper.Unix() - lower.Unix()
		if span <= 0 {
			row[cf.End] = lower
		} else {
			row[cf.End] = time.Unix(lower.Unix()+e.rng.Int64N(span+1), 0).UTC().Truncate(day)
		}
		repaired++
	}
	return repaired
}

// repairEmails regenerates the address from the row's own name fields,
// unconditionally: the field is fully determined by sibling columns, so
// it is always re-derived rather than conditionally checked. The numeric
// disambiguator already stored in the value is preserved, which keeps
// the rewrite idempotent.
func (e *Engine) repairEmails(t *table.Table, rule *schema.EmailRule) {
	for _, row := range t.Rows {
		first, _ := table.AsString(row[rule.FirstName])
		last, _ := table.AsString(row[rule.LastName])
		current, _ := table.AsString(row[rule.Email])
		row[rule.Email] = rule.Address(first, last, schema.NumericSuffix(current))
	}
}

// wholeDays returns the floor of the day difference between two instants.
func wholeDays(start, end time.Time) int64 {
	return int64(end.Sub(start) / day)
}
