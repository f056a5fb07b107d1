package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/synthward-labs/synthward/internal/pipeline"
)

// NewRepairCommand creates the repair command.
func NewRepairCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "repair [dir]",
		Short: "Repair cross-field consistency of an exported dataset",
		Long: `Load an exported dataset, re-derive stay durations, date orderings
and emails from their source fields, and write the dataset back in
place. Keys are never modified, so referential damage still surfaces
in a subsequent validate.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			target := cfg.OutDir
			if len(args) == 1 {
				target = args[0]
			} else if dir != "" {
				target = dir
			}

			p := pipeline.New(getLogger())
			opts := pipelineOptions(cfg)
			set, err := p.Repair(cmd.Context(), target, opts)
			if err != nil {
				return err
			}

			counts := make(map[string]int, len(set))
			for name, t := range set {
				counts[name] = t.Len()
			}
			out := cmd.OutOrStdout()
			renderCounts(out, p.Registry(), counts)
			fmt.Fprintf(out, "Repaired dataset written back to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Dataset directory (defaults to the configured output directory)")
	return cmd
}
