// Package export persists table sets to CSV or Parquet through an
// embedded DuckDB instance, and loads them back. Files are laid out by
// table group (out/clinical, out/operations, out/telemetry) and column
// headers follow the selected display locale; everything in memory stays
// on canonical identifiers.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/synthward-labs/synthward/internal/schema"
	"github.com/synthward-labs/synthward/internal/table"
)

// Format selects the on-disk file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatParquet:
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("unsupported format %q, want csv or parquet", s)
	}
}

// MissingArtifactError reports a table whose file could not be found in
// either format during load.
type MissingArtifactError struct {
	Table string
	Path  string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("no exported artifact for table %q under %s", e.Table, e.Path)
}

// Exporter writes and reads dataset artifacts.
type Exporter struct {
	reg    *schema.Registry
	logger *slog.Logger
}

func New(reg *schema.Registry, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exporter{reg: reg, logger: logger}
}

// Export writes every registry table present in the set to
// dir/<group>/<table>.<format>. Missing tables are an error: a partial
// dataset is worse than no dataset.
func (e *Exporter) Export(ctx context.Context, set table.Set, dir string, format Format, loc schema.Locale) error {
	if !loc.Valid() {
		return fmt.Errorf("unsupported locale %q", loc)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return fmt.Errorf("failed to open duckdb: %w", err)
	}
	defer db.Close()

	for _, name := range e.reg.GenerationOrder() {
		spec, _ := e.reg.Table(name)
		t, ok := set[name]
		if !ok {
			return &MissingArtifactError{Table: name, Path: dir}
		}

		group := filepath.Join(dir, spec.Group)
		if err := os.MkdirAll(group, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", group, err)
		}
		path := filepath.Join(group, name+"."+string(format))
		if err := e.exportTable(ctx, db, spec, t, path, format, loc); err != nil {
			return fmt.Errorf("failed to export table %s: %w", name, err)
		}
		e.logger.Info("exported table", "table", name, "rows", t.Len(), "path", path)
	}
	return nil
}

func (e *Exporter) exportTable(ctx context.Context, db *sql.DB, spec *schema.Table, t *table.Table, path string, format Format, loc schema.Locale) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	cols := make([]string, len(spec.Columns))
	defs := make([]string, len(spec.Columns))
	holes := make([]string, len(spec.Columns))
	for i, col := range spec.Columns {
		cols[i] = col.Name
		defs[i] = fmt.Sprintf("%q %s", schema.DisplayName(loc, spec.Name, col.Name), duckType(col.Type))
		holes[i] = "?"
	}

	staging := fmt.Sprintf("export_%s", spec.Name)
	if _, err := conn.ExecContext(ctx, fmt.Sprintf("CREATE OR REPLACE TABLE %q (%s)", staging, strings.Join(defs, ", "))); err != nil {
		return err
	}

	stmt, err := conn.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %q VALUES (%s)", staging, strings.Join(holes, ", ")))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range t.Rows {
		args := make([]any, len(cols))
		for i, col := range cols {
			args[i] = row[col]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}

	var copyTo string
	switch format {
	case FormatCSV:
		copyTo = fmt.Sprintf("COPY (SELECT * FROM %q) TO '%s' (FORMAT CSV, HEADER)", staging, path)
	case FormatParquet:
		copyTo = fmt.Sprintf("COPY (SELECT * FROM %q) TO '%s' (FORMAT PARQUET)", staging, path)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
	if _, err := conn.ExecContext(ctx, copyTo); err != nil {
		return err
	}
	_, err = conn.ExecContext(ctx, fmt.Sprintf("DROP TABLE %q", staging))
	return err
}

// Load reads a previously exported dataset back into memory, mapping
// display headers to canonical identifiers. Parquet is preferred when
// both formats are present since it keeps the column types.
func (e *Exporter) Load(ctx context.Context, dir string, loc schema.Locale) (table.Set, error) {
	if !loc.Valid() {
		return nil, fmt.Errorf("unsupported locale %q", loc)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	defer db.Close()

	set := make(table.Set, len(e.reg.TableNames()))
	for _, name := range e.reg.GenerationOrder() {
		spec, _ := e.reg.Table(name)
		t, err := e.loadTable(ctx, db, spec, dir, loc)
		if err != nil {
			return nil, err
		}
		set[name] = t
		e.logger.Info("loaded table", "table", name, "rows", t.Len())
	}
	return set, nil
}

func (e *Exporter) loadTable(ctx context.Context, db *sql.DB, spec *schema.Table, dir string, loc schema.Locale) (*table.Table, error) {
	group := filepath.Join(dir, spec.Group)

	var query string
	parquet := filepath.Join(group, spec.Name+".parquet")
	csv := filepath.Join(group, spec.Name+".csv")
	switch {
	case fileExists(parquet):
		query = fmt.Sprintf("SELECT * FROM read_parquet('%s')", parquet)
	case fileExists(csv):
		// Types come from the registry rather than sniffing, so digit
		// strings like postal_code stay strings.
		defs := make([]string, len(spec.Columns))
		for i, col := range spec.Columns {
			defs[i] = fmt.Sprintf("'%s': '%s'", schema.DisplayName(loc, spec.Name, col.Name), duckType(col.Type))
		}
		query = fmt.Sprintf("SELECT * FROM read_csv('%s', header=true, columns={%s})", csv, strings.Join(defs, ", "))
	default:
		return nil, &MissingArtifactError{Table: spec.Name, Path: group}
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", spec.Name, err)
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	cols := make([]string, len(headers))
	for i, h := range headers {
		cols[i] = schema.CanonicalName(spec.Name, h)
	}

	t := table.New(spec.Name, cols)
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", spec.Name, err)
		}
		row := make(table.Row, len(cols))
		for i, col := range cols {
			row[col] = normalize(raw[i])
		}
		t.Append(row)
	}
	return t, rows.Err()
}

func duckType(ct schema.ColumnType) string {
	switch ct {
	case schema.TypeInt:
		return "BIGINT"
	case schema.TypeFloat:
		return "DOUBLE"
	case schema.TypeDate:
		return "DATE"
	case schema.TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "VARCHAR"
	}
}

// normalize maps driver scan types onto the cell types the rest of the
// pipeline works with: string, int64, float64, time.Time or nil.
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	case time.Time:
		return x.UTC()
	default:
		return x
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
