// Package audit keeps a SQLite history of generation runs and the property
// assertions each run emitted, so manifest changes between ontology
// releases can be reviewed.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/casework/CASE-Utility-Verifier/nlggen"
)

// ErrNoRuns is returned by LatestRun on an empty store.
var ErrNoRuns = errors.New("audit: no runs recorded")

// Run is one recorded generation run.
type Run struct {
	ID          string
	Version     string
	Source      string
	CreatedAt   time.Time
	Functions   int
	Assertions  int
	Diagnostics int
}

// Store is a manifest history backed by a SQLite database file.
type Store struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

// Open opens (creating if needed) the store at path. Use ":memory:" for a
// throwaway store.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)"
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now, newID: uuid.NewString}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			version     TEXT NOT NULL,
			source      TEXT NOT NULL,
			created_at  INTEGER NOT NULL,
			functions   INTEGER NOT NULL,
			assertions  INTEGER NOT NULL,
			diagnostics INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS manifest_entries (
			run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position  INTEGER NOT NULL,
			function  TEXT NOT NULL,
			property  TEXT NOT NULL,
			required  INTEGER NOT NULL,
			check_kind TEXT NOT NULL,
			list      INTEGER NOT NULL,
			PRIMARY KEY (run_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs (created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("create audit tables: %w", err)
	}
	return nil
}

// Record stores the plan of a finished run and returns the new run.
func (s *Store) Record(ctx context.Context, version, source string, res *nlggen.Result) (Run, error) {
	run := Run{
		ID:          s.newID(),
		Version:     version,
		Source:      source,
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
		Functions:   len(res.Plan.Functions()),
		Assertions:  len(res.Plan.Manifest),
		Diagnostics: res.Diagnostics.Len(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin audit tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, version, source, created_at, functions, assertions, diagnostics)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Version, run.Source, run.CreatedAt.UnixMilli(), run.Functions, run.Assertions, run.Diagnostics)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO manifest_entries (run_id, position, function, property, required, check_kind, list)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("prepare manifest insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, e := range res.Plan.Manifest {
		if _, err := stmt.ExecContext(ctx, run.ID, i, e.Function, e.Property, e.Required, string(e.Check), e.List); err != nil {
			return Run{}, fmt.Errorf("insert manifest entry %s.%s: %w", e.Function, e.Property, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit audit tx: %w", err)
	}
	return run, nil
}

// Runs returns recorded runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, version, source, created_at, functions, assertions, diagnostics
		 FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var (
			r       Run
			created int64
		)
		if err := rows.Scan(&r.ID, &r.Version, &r.Source, &created, &r.Functions, &r.Assertions, &r.Diagnostics); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestRun returns the most recent run.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	runs, err := s.Runs(ctx, 1)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, ErrNoRuns
	}
	return runs[0], nil
}

// Entries returns the manifest of a run in emission order.
func (s *Store) Entries(ctx context.Context, runID string) ([]nlggen.ManifestEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT function, property, required, check_kind, list
		 FROM manifest_entries WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query manifest: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []nlggen.ManifestEntry
	for rows.Next() {
		var (
			e     nlggen.ManifestEntry
			check string
		)
		if err := rows.Scan(&e.Function, &e.Property, &e.Required, &check, &e.List); err != nil {
			return nil, fmt.Errorf("scan manifest entry: %w", err)
		}
		e.Check = nlggen.CheckKind(check)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Change is one manifest difference between two runs.
type Change struct {
	Entry nlggen.ManifestEntry
	// Added is false for entries present only in the older run.
	Added bool
}

// Diff compares two manifests keyed by function and property. An entry
// whose requiredness, check or shape changed shows up as a removal and an
// addition. Changes are sorted by function, property and then removal
// before addition.
func Diff(older, newer []nlggen.ManifestEntry) []Change {
	type key struct{ fn, prop string }
	index := func(entries []nlggen.ManifestEntry) map[key]nlggen.ManifestEntry {
		m := make(map[key]nlggen.ManifestEntry, len(entries))
		for _, e := range entries {
			m[key{e.Function, e.Property}] = e
		}
		return m
	}
	before, after := index(older), index(newer)

	var out []Change
	for k, e := range before {
		if n, ok := after[k]; !ok || n != e {
			out = append(out, Change{Entry: e})
		}
	}
	for k, e := range after {
		if o, ok := before[k]; !ok || o != e {
			out = append(out, Change{Entry: e, Added: true})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Entry, out[j].Entry
		if a.Function != b.Function {
			return a.Function < b.Function
		}
		if a.Property != b.Property {
			return a.Property < b.Property
		}
		return !out[i].Added && out[j].Added
	})
	return out
}
