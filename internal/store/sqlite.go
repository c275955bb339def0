// Package store persists run history and final link tables in a local
// SQLite database so runs can be inspected and restarted after a failure.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding the run log and link tables.
type Store struct {
	db *sql.DB
}

// New opens a SQLite database at the given path and configures WAL mode.
func New(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &Store{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	status       TEXT NOT NULL DEFAULT 'running',
	error        TEXT,
	schools      INTEGER NOT NULL DEFAULT 0,
	tracts       INTEGER NOT NULL DEFAULT 0,
	merged       INTEGER NOT NULL DEFAULT 0,
	started_at   DATETIME NOT NULL,
	completed_at DATETIME
);

CREATE TABLE IF NOT EXISTS school_links (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	universal_id TEXT NOT NULL,
	tract_fips   TEXT NOT NULL,
	distance_m   REAL NOT NULL,
	state        TEXT,
	cz_id        TEXT,
	county_fips  TEXT,
	geom         BLOB
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_school_links_run_id ON school_links(run_id);
CREATE INDEX IF NOT EXISTS idx_school_links_tract ON school_links(tract_fips);
`

// Migrate applies the schema.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run is one row in the run log.
type Run struct {
	ID          string
	Status      string
	Error       string
	Schools     int64
	Tracts      int64
	Merged      int64
	StartedAt   time.Time
	CompletedAt *time.Time
}

// RunCounts summarizes a completed run.
type RunCounts struct {
	Schools int64
	Tracts  int64
	Merged  int64
}

// LinkRecord is one persisted school-to-hierarchy link. Geom holds the
// school point as EWKB; hierarchy fields are empty for unmatched tracts.
type LinkRecord struct {
	UniversalID string
	TractFIPS   string
	DistanceM   float64
	State       string
	CZID        string
	CountyFIPS  string
	Geom        []byte
}

// StartRun records the beginning of a pipeline run and returns its id.
func (s *Store) StartRun(ctx context.Context) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, status, started_at) VALUES (?, 'running', ?)`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: start run")
	}
	return id, nil
}

// CompleteRun marks a run as complete with its row counts.
func (s *Store) CompleteRun(ctx context.Context, runID string, counts RunCounts) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = 'complete', schools = ?, tracts = ?, merged = ?, completed_at = ? WHERE id = ?`,
		counts.Schools, counts.Tracts, counts.Merged, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

// FailRun marks a run as failed with an error message.
func (s *Store) FailRun(ctx context.Context, runID string, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = 'failed', error = ?, completed_at = ? WHERE id = ?`,
		errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

// ListRuns returns runs ordered most recent first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, COALESCE(error, ''), schools, tracts, merged, started_at, completed_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Status, &r.Error, &r.Schools, &r.Tracts, &r.Merged, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// SaveLinks persists the final merged links for a run in one transaction.
func (s *Store) SaveLinks(ctx context.Context, runID string, links []LinkRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin links tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO school_links (run_id, universal_id, tract_fips, distance_m, state, cz_id, county_fips, geom)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare links insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, l := range links {
		if _, err := stmt.ExecContext(ctx,
			runID, l.UniversalID, l.TractFIPS, l.DistanceM,
			nullIfEmpty(l.State), nullIfEmpty(l.CZID), nullIfEmpty(l.CountyFIPS), l.Geom,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert link for school %s", l.UniversalID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit links")
}

// CountLinks returns the number of links saved for a run.
func (s *Store) CountLinks(ctx context.Context, runID string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM school_links WHERE run_id = ?`, runID,
	).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count links")
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func checkRowsAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}
