// Package state keeps a generation-run history in a local SQLite
// database, so repeated invocations can be compared by seed and scale
// after the fact.
package state

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var ddl string

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = errors.New("run not found")

// Run is one recorded generation run.
type Run struct {
	ID          string
	Seed        uint64
	Scale       float64
	Status      string
	Error       string
	StartedAt   time.Time
	FinishedAt  *time.Time
	TableCounts map[string]int
}

// Store wraps the history database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the history database at path and applies the
// schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply state schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateRun records the start of a generation run and returns its id.
func (s *Store) CreateRun(ctx context.Context, seed uint64, scale float64) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("state database not opened")
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, seed, scale, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, int64(seed), scale, StatusRunning, time.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	s.logger.Debug("run recorded", "run_id", id, "seed", seed, "scale", scale)
	return id, nil
}

// CompleteRun marks a run finished. A nil runErr records success, a
// non-nil one records the failure message.
func (s *Store) CompleteRun(ctx context.Context, id string, runErr error) error {
	if s.db == nil {
		return fmt.Errorf("state database not opened")
	}
	status, detail := StatusCompleted, ""
	if runErr != nil {
		status, detail = StatusFailed, runErr.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		status, detail, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("complete run %s: %w", id, ErrNotFound)
	}
	return nil
}

// RecordTableCount stores the exported row count of one table.
func (s *Store) RecordTableCount(ctx context.Context, id, tableName string, rows int) error {
	if s.db == nil {
		return fmt.Errorf("state database not opened")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_tables (run_id, table_name, row_count) VALUES (?, ?, ?)
		 ON CONFLICT (run_id, table_name) DO UPDATE SET row_count = excluded.row_count`,
		id, tableName, rows)
	if err != nil {
		return fmt.Errorf("failed to record table count: %w", err)
	}
	return nil
}

// GetRun returns one run with its table counts.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("state database not opened")
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, seed, scale, status, error, started_at, finished_at FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT table_name, row_count FROM run_tables WHERE run_id = ? ORDER BY table_name`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read table counts: %w", err)
	}
	defer rows.Close()

	run.TableCounts = make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		run.TableCounts[name] = count
	}
	return run, rows.Err()
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("state database not opened")
	}
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, seed, scale, status, error, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(r rowScanner) (*Run, error) {
	var run Run
	var seed int64
	var started int64
	var finished sql.NullInt64
	if err := r.Scan(&run.ID, &seed, &run.Scale, &run.Status, &run.Error, &started, &finished); err != nil {
		return nil, err
	}
	run.Seed = uint64(seed)
	run.StartedAt = time.Unix(started, 0).UTC()
	if finished.Valid {
		t := time.Unix(finished.Int64, 0).UTC()
		run.FinishedAt = &t
	}
	return &run, nil
}
