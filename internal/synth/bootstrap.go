package synth

// bootstrap.go - a row-resampling synthesizer used as the default
// collaborator. Key columns are kept coherent (fresh sequential primary
// keys, foreign keys drawn from the sampled parent); every other column
// is bootstrapped independently per column, which reproduces marginals
// but deliberately does not preserve cross-field relationships, matching
// the weak guarantees of a real multi-table synthesizer.

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/synthward-labs/synthward/internal/schema"
	"github.com/synthward-labs/synthward/internal/table"
)

// Bootstrap implements Synthesizer by resampling seed columns.
type Bootstrap struct {
	reg    *schema.Registry
	rng    *rand.Rand
	logger *slog.Logger
}

// NewBootstrap creates a bootstrap synthesizer. The random source is
// supplied by the orchestrator for reproducibility.
func NewBootstrap(reg *schema.Registry, rng *rand.Rand, logger *slog.Logger) *Bootstrap {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bootstrap{reg: reg, rng: rng, logger: logger}
}

type bootstrapModel struct {
	meta *Metadata
	seed table.Set
}

func (m *bootstrapModel) Metadata() *Metadata { return m.meta }

// Fit detects metadata and retains a copy of the seed tables as the
// sampling population.
func (b *Bootstrap) Fit(_ context.Context, seed table.Set) (Model, error) {
	for _, name := range b.reg.TableNames() {
		t, ok := seed[name]
		if !ok {
			return nil, fmt.Errorf("seed table %q missing from training input", name)
		}
		if t.Len() == 0 {
			return nil, fmt.Errorf("seed table %q is empty", name)
		}
	}

	b.logger.Debug("fitted bootstrap model", "tables", len(seed))
	return &bootstrapModel{meta: DetectMetadata(b.reg), seed: seed.Clone()}, nil
}

// Sample draws round(scale x seed rows) rows per table, parents before
// children so foreign keys can reference the freshly sampled parents.
func (b *Bootstrap) Sample(_ context.Context, model Model, scale float64) (table.Set, error) {
	m, ok := model.(*bootstrapModel)
	if !ok {
		return nil, fmt.Errorf("model was not fitted by this synthesizer")
	}
	if scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %g", scale)
	}

	out := make(table.Set, len(m.seed))
	for _, name := range b.reg.GenerationOrder() {
		src := m.seed[name]
		meta, _ := m.meta.Table(name)

		n := int(math.Round(scale * float64(src.Len())))
		if n < 1 {
			n = 1
		}

		b.logger.Debug("sampling table", "table", name, "rows", n)
		out[name] = b.sampleTable(src, meta, n, out)
	}
	return out, nil
}

func (b *Bootstrap) sampleTable(src *table.Table, meta *TableMeta, n int, sampled table.Set) *table.Table {
	t := table.New(src.Name, src.Columns)

	fkColumns := make(map[string][]string) // child column -> sampled parent PKs
	for _, rel := range b.reg.RelationshipsOf(src.Name) {
		parent := sampled[rel.ParentTable]
		keys := make([]string, parent.Len())
		for i, row := range parent.Rows {
			keys[i], _ = table.AsString(row[rel.ParentColumn])
		}
		fkColumns[rel.ChildColumn] = keys
	}

	for i := 0; i < n; i++ {
		row := make(table.Row, len(src.Columns))
		for _, col := range src.Columns {
			switch {
			case col == meta.PrimaryKey:
				row[col] = fmt.Sprintf("%s%0*d", meta.KeyPrefix, meta.KeyWidth, i+1)
			case fkColumns[col] != nil:
				keys := fkColumns[col]
				row[col] = keys[b.rng.IntN(len(keys))]
			default:
				// Independent per-column bootstrap.
				row[col] = src.Rows[b.rng.IntN(src.Len())][col]
			}
		}
		t.Append(row)
	}
	return t
}
