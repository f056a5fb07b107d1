package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/synthward-labs/synthward/internal/pipeline"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Export only the rule-based seed tables",
		Long: `Build and export the deterministic seed dataset without fitting or
sampling the synthesizer. Useful for inspecting the reference data the
model is trained on.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig()
			p := pipeline.New(getLogger())

			counts, err := p.Seed(cmd.Context(), pipelineOptions(cfg))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			renderCounts(out, p.Registry(), counts)
			fmt.Fprintf(out, "Seed dataset written to %s\n", cfg.OutDir)
			return nil
		},
	}
}
