// Package history persists completed dry runs to a single-file SQLite
// database so protocol edits can be compared against earlier runs.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// ErrNotFound is returned when a run ID does not exist in the store.
var ErrNotFound = errors.New("run not found")

// Run is one persisted dry run: the spec it executed, its aggregates,
// and the full journal as JSON.
type Run struct {
	ID              string
	StartedAt       time.Time
	Assay           string
	SpecYAML        string
	Metrics         json.RawMessage
	Journal         json.RawMessage
	Warnings        int
	VirtualDuration time.Duration
}

// Summary is the listing view of a stored run: everything but the
// journal and spec payloads.
type Summary struct {
	ID              string
	StartedAt       time.Time
	Assay           string
	Warnings        int
	VirtualDuration time.Duration
}

// Store is a SQLite-backed run archive.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the store at path, creating the schema and any
// missing parent directories.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "selex-sim.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		assay TEXT NOT NULL,
		spec_yaml TEXT NOT NULL,
		metrics BLOB NOT NULL,
		journal BLOB NOT NULL,
		warnings INTEGER NOT NULL,
		virtual_duration_ns INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts a run. A missing ID is assigned; a missing start time is
// set to now. Returns the stored ID.
func (s *Store) Save(ctx context.Context, run *Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, assay, spec_yaml, metrics, journal, warnings, virtual_duration_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.Format(time.RFC3339Nano), run.Assay, run.SpecYAML,
		[]byte(run.Metrics), []byte(run.Journal), run.Warnings, int64(run.VirtualDuration))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return run.ID, nil
}

// List returns summaries of all stored runs, newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, assay, warnings, virtual_duration_ns
		 FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Summary
	for rows.Next() {
		var (
			sum     Summary
			started string
			durNS   int64
		)
		if err := rows.Scan(&sum.ID, &started, &sum.Assay, &sum.Warnings, &durNS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if sum.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse started_at for %s: %w", sum.ID, err)
		}
		sum.VirtualDuration = time.Duration(durNS)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Get returns one stored run by full ID or unique prefix.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, assay, spec_yaml, metrics, journal, warnings, virtual_duration_ns
		 FROM runs WHERE id LIKE ? || '%' LIMIT 2`, id)
	if err != nil {
		return nil, fmt.Errorf("select run: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var matches []*Run
	for rows.Next() {
		var (
			run     Run
			started string
			durNS   int64
		)
		if err := rows.Scan(&run.ID, &started, &run.Assay, &run.SpecYAML,
			(*[]byte)(&run.Metrics), (*[]byte)(&run.Journal), &run.Warnings, &durNS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse started_at for %s: %w", run.ID, err)
		}
		run.VirtualDuration = time.Duration(durNS)
		matches = append(matches, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("run %q: %w", id, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// Prune deletes all but the newest keep runs and reports how many rows
// were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}
	return int(n), nil
}
