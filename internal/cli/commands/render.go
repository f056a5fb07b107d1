package commands

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/synthward-labs/synthward/internal/schema"
)

// renderCounts prints a per-table row count summary in registry order.
func renderCounts(w io.Writer, reg *schema.Registry, counts map[string]int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Group", "Rows"})

	total := 0
	for _, name := range reg.GenerationOrder() {
		spec, ok := reg.Table(name)
		if !ok {
			continue
		}
		t.AppendRow(table.Row{name, spec.Group, counts[name]})
		total += counts[name]
	}
	t.AppendFooter(table.Row{"Total", "", total})
	t.Render()
}
