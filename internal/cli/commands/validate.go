package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/synthward-labs/synthward/internal/pipeline"
	"github.com/synthward-labs/synthward/internal/schema"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "validate [dir]",
		Short: "Validate a previously exported dataset",
		Long: `Load an exported dataset and certify its primary keys, foreign keys
and domain constraints. Exits non-zero when any violation is found,
listing every failing check with example rows.`,
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
			counts, err := p.Validate(cmd.Context(), target, schema.Locale(cfg.Locale))
			if err != nil {
				return fmt.Errorf("dataset in %s failed validation:\n%w", target, err)
			}

			out := cmd.OutOrStdout()
			renderCounts(out, p.Registry(), counts)
			fmt.Fprintf(out, "Dataset in %s is valid\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Dataset directory (defaults to the configured output directory)")
	return cmd
}
