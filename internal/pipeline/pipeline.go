// Package pipeline orchestrates the generation flow: seed build, model
// fit, sampling, consistency repair, validation and export, with the run
// recorded in the state store. All randomness flows from one seeded
// source, so a given seed and scale always reproduce the same dataset.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/synthward-labs/synthward/internal/export"
	"github.com/synthward-labs/synthward/internal/repair"
	"github.com/synthward-labs/synthward/internal/schema"
	"github.com/synthward-labs/synthward/internal/seed"
	"github.com/synthward-labs/synthward/internal/state"
	"github.com/synthward-labs/synthward/internal/synth"
	"github.com/synthward-labs/synthward/internal/table"
	"github.com/synthward-labs/synthward/internal/validate"
)

// MetadataFile is the name of the schema artifact written next to the
// exported tables.
const MetadataFile = "metadata.json"

// Options configures one generation run.
type Options struct {
	Seed      uint64
	Scale     float64
	Counts    seed.Counts
	OutDir    string
	Format    export.Format
	Locale    schema.Locale
	StatePath string
}

// Result summarizes a finished run.
type Result struct {
	RunID  string
	Tables map[string]int
}

// Pipeline wires the engine components over the clinical registry.
type Pipeline struct {
	reg    *schema.Registry
	logger *slog.Logger
}

func New(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{reg: schema.Clinical(), logger: logger}
}

// Registry exposes the schema the pipeline runs against.
func (p *Pipeline) Registry() *schema.Registry { return p.reg }

// Run executes the full generation flow and records it in the run
// history. The recorded run is marked failed when any stage errors.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Counts.Validate(p.reg); err != nil {
		return nil, err
	}
	if !opts.Locale.Valid() {
		return nil, fmt.Errorf("unsupported locale %q", opts.Locale)
	}

	store, err := state.Open(opts.StatePath, p.logger)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	runID, err := store.CreateRun(ctx, opts.Seed, opts.Scale)
	if err != nil {
		return nil, err
	}

	res, runErr := p.generate(ctx, store, runID, opts)
	if cerr := store.CompleteRun(ctx, runID, runErr); cerr != nil {
		p.logger.Warn("failed to finalize run record", "run_id", runID, "error", cerr)
	}
	if runErr != nil {
		return nil, runErr
	}
	res.RunID = runID
	return res, nil
}

func (p *Pipeline) generate(ctx context.Context, store *state.Store, runID string, opts Options) (*Result, error) {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))

	p.logger.Info("building seed tables", "seed", opts.Seed)
	seedSet, err := seed.NewBuilder(p.reg, rng, p.logger).Build(opts.Counts)
	if err != nil {
		return nil, err
	}

	boot := synth.NewBootstrap(p.reg, rng, p.logger)
	model, err := boot.Fit(ctx, seedSet)
	if err != nil {
		return nil, err
	}
	if err := writeMetadata(model, opts.OutDir); err != nil {
		return nil, err
	}

	p.logger.Info("sampling synthetic tables", "scale", opts.Scale)
	sampled, err := boot.Sample(ctx, model, opts.Scale)
	if err != nil {
		return nil, err
	}

	repair.New(p.reg, rng, p.logger).Repair(sampled)

	if err := validate.New(p.reg, p.logger).Validate(sampled); err != nil {
		return nil, fmt.Errorf("synthetic dataset failed validation: %w", err)
	}

	if err := export.New(p.reg, p.logger).Export(ctx, sampled, opts.OutDir, opts.Format, opts.Locale); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(sampled))
	for name, t := range sampled {
		counts[name] = t.Len()
		if err := store.RecordTableCount(ctx, runID, name, t.Len()); err != nil {
			return nil, err
		}
	}
	return &Result{Tables: counts}, nil
}

// Seed builds and exports only the rule-based seed tables, without
// fitting or sampling. Useful for inspecting the reference dataset.
func (p *Pipeline) Seed(ctx context.Context, opts Options) (map[string]int, error) {
	if err := opts.Counts.Validate(p.reg); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))

	set, err := seed.NewBuilder(p.reg, rng, p.logger).Build(opts.Counts)
	if err != nil {
		return nil, err
	}
	if err := validate.New(p.reg, p.logger).Validate(set); err != nil {
		return nil, fmt.Errorf("seed dataset failed validation: %w", err)
	}
	if err := export.New(p.reg, p.logger).Export(ctx, set, opts.OutDir, opts.Format, opts.Locale); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(set))
	for name, t := range set {
		counts[name] = t.Len()
	}
	return counts, nil
}

// Validate loads a previously exported dataset and certifies it.
func (p *Pipeline) Validate(ctx context.Context, dir string, loc schema.Locale) (map[string]int, error) {
	set, err := export.New(p.reg, p.logger).Load(ctx, dir, loc)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(set))
	for name, t := range set {
		counts[name] = t.Len()
	}
	if err := validate.New(p.reg, p.logger).Validate(set); err != nil {
		return counts, err
	}
	return counts, nil
}

// Repair loads a dataset, applies consistency repair and writes it back.
// Keys are never touched, so a dataset with referential damage still
// fails a subsequent validation.
func (p *Pipeline) Repair(ctx context.Context, dir string, opts Options) (table.Set, error) {
	ex := export.New(p.reg, p.logger)
	set, err := ex.Load(ctx, dir, opts.Locale)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	repair.New(p.reg, rng, p.logger).Repair(set)
	if err := ex.Export(ctx, set, dir, opts.Format, opts.Locale); err != nil {
		return nil, err
	}
	return set, nil
}

func writeMetadata(model synth.Model, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return model.Metadata().Save(filepath.Join(outDir, MetadataFile))
}
