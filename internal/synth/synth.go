// Package synth defines the contract for the multi-table synthesis
// collaborator and ships a bootstrap implementation of it. A synthesizer
// learns a joint model from the seed tables and samples scaled table
// sets; it honors the detected schema (keys, types, relationships) but
// guarantees nothing about domain constraints or cross-field coherence.
// Restoring those is the repair stage's job.
package synth

import (
	"context"

	"github.com/synthward-labs/synthward/internal/table"
)

// Model is a fitted generative model. Implementations are opaque beyond
// exposing the metadata they were fitted against.
type Model interface {
	Metadata() *Metadata
}

// Synthesizer is the external-collaborator boundary: fit a model on seed
// tables, then sample scaled synthetic table sets from it. Sampled output
// has round(scale x seed rows) rows per table and must not be trusted
// before repair and validation.
type Synthesizer interface {
	Fit(ctx context.Context, seed table.Set) (Model, error)
	Sample(ctx context.Context, model Model, scale float64) (table.Set, error)
}
