package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dhenden/fsgrowth/internal/history"
)

// dayFormat is the on-disk representation of a sample's calendar day.
const dayFormat = "2006-01-02"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL mode keeps readers off partially written state when a slow run
	// overlaps the next scheduled one.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Initialize creates the database schema.
func (s *SQLiteStore) Initialize(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			filesystem TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			completed_at DATETIME,
			samples_written INTEGER DEFAULT 0,
			status TEXT DEFAULT 'running'
		);

		CREATE TABLE IF NOT EXISTS samples (
			filesystem TEXT NOT NULL,
			day TEXT NOT NULL,
			total_gib INTEGER NOT NULL,
			used_gib INTEGER NOT NULL,
			free_gib INTEGER NOT NULL,
			used_pct INTEGER NOT NULL,
			delta_gib INTEGER NOT NULL,
			PRIMARY KEY (filesystem, day)
		);

		CREATE INDEX IF NOT EXISTS idx_runs_filesystem ON runs(filesystem, started_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadSeries reads the recorded history for a filesystem, oldest first.
func (s *SQLiteStore) LoadSeries(ctx context.Context, filesystem string) (history.Series, error) {
	series := history.NewSeries(filesystem)

	rows, err := s.db.QueryContext(ctx,
		`SELECT day, total_gib, used_gib, free_gib, used_pct, delta_gib
		 FROM samples
		 WHERE filesystem = ?
		 ORDER BY day ASC`,
		filesystem,
	)
	if err != nil {
		return series, fmt.Errorf("querying samples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day string
		sample := history.Sample{Filesystem: filesystem}
		if err := rows.Scan(&day, &sample.TotalGiB, &sample.UsedGiB, &sample.FreeGiB, &sample.UsedPct, &sample.DeltaGiB); err != nil {
			return series, &CorruptHistoryError{Filesystem: filesystem, Detail: "scanning row", Err: err}
		}
		date, err := time.ParseInLocation(dayFormat, day, time.UTC)
		if err != nil {
			return series, &CorruptHistoryError{
				Filesystem: filesystem,
				Detail:     fmt.Sprintf("unparsable day %q", day),
				Err:        err,
			}
		}
		sample.Date = date
		series.Samples = append(series.Samples, sample)
	}

	if err := rows.Err(); err != nil {
		return series, fmt.Errorf("iterating rows: %w", err)
	}

	return series, nil
}

// SaveSeries replaces the stored history for the series' filesystem in a
// single transaction.
func (s *SQLiteStore) SaveSeries(ctx context.Context, series history.Series) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &WriteError{Err: fmt.Errorf("starting transaction: %w", err)}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM samples WHERE filesystem = ?`, series.Filesystem); err != nil {
		return &WriteError{Err: fmt.Errorf("clearing previous history: %w", err)}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (filesystem, day, total_gib, used_gib, free_gib, used_pct, delta_gib)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return &WriteError{Err: fmt.Errorf("preparing statement: %w", err)}
	}
	defer stmt.Close()

	for _, sample := range series.Samples {
		_, err := stmt.ExecContext(ctx,
			series.Filesystem,
			sample.Date.Format(dayFormat),
			sample.TotalGiB, sample.UsedGiB, sample.FreeGiB, sample.UsedPct, sample.DeltaGiB,
		)
		if err != nil {
			return &WriteError{Err: fmt.Errorf("inserting sample for %s: %w", sample.Date.Format(dayFormat), err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &WriteError{Err: fmt.Errorf("committing transaction: %w", err)}
	}

	return nil
}

// StartRun creates a new run audit record.
func (s *SQLiteStore) StartRun(ctx context.Context, filesystem string) (string, error) {
	runID := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, filesystem, started_at, status) VALUES (?, ?, ?, 'running')`,
		runID, filesystem, now,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run record: %w", err)
	}

	return runID, nil
}

// CompleteRun marks a run as completed.
func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, samples int) error {
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET completed_at = ?, samples_written = ?, status = 'completed' WHERE run_id = ?`,
		now, samples, runID,
	)
	if err != nil {
		return fmt.Errorf("completing run: %w", err)
	}

	return nil
}

// FailRun marks a run as failed.
func (s *SQLiteStore) FailRun(ctx context.Context, runID string, reason string) error {
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET completed_at = ?, status = ? WHERE run_id = ?`,
		now, "failed: "+reason, runID,
	)
	if err != nil {
		return fmt.Errorf("failing run: %w", err)
	}

	return nil
}
