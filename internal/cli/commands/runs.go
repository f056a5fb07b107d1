package commands

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/synthward-labs/synthward/internal/state"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show the generation run history",
		Long:  `List recorded generation runs with their seed, scale, status and timing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig()

			store, err := state.Open(cfg.StatePath, getLogger())
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Run", "Seed", "Scale", "Status", "Started", "Duration"})
			for _, run := range runs {
				duration := ""
				if run.FinishedAt != nil {
					duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
				}
				t.AppendRow(table.Row{
					run.ID,
					run.Seed,
					run.Scale,
					run.Status,
					run.StartedAt.Format(time.RFC3339),
					duration,
				})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}
