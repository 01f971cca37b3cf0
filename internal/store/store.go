package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dhenden/fsgrowth/internal/history"
)

// Run represents one report run recorded for auditing.
type Run struct {
	RunID       string
	Filesystem  string
	StartedAt   time.Time
	CompletedAt *time.Time
	Samples     int
	Status      string
}

// Store defines the interface for persisting filesystem histories.
type Store interface {
	// Initialize prepares the storage (creates tables, etc.).
	Initialize(ctx context.Context) error

	// Close releases any resources held by the storage.
	Close() error

	// LoadSeries reads the full recorded history for a filesystem.
	// A filesystem with no history yields an empty series; that is the
	// normal first-run state, not an error. Unparsable rows yield a
	// *CorruptHistoryError.
	LoadSeries(ctx context.Context, filesystem string) (history.Series, error)

	// SaveSeries durably replaces the stored history for the series'
	// filesystem in a single transaction, so a crash mid-write never
	// leaves a partially updated history. Failures are *WriteError.
	SaveSeries(ctx context.Context, s history.Series) error

	// StartRun creates a new run audit record and returns its ID.
	StartRun(ctx context.Context, filesystem string) (string, error)

	// CompleteRun marks a run as completed.
	CompleteRun(ctx context.Context, runID string, samples int) error

	// FailRun marks a run as failed.
	FailRun(ctx context.Context, runID string, reason string) error
}

// CorruptHistoryError reports stored history that cannot be parsed.
// It is fatal: the caller must abort before any write rather than guess
// or silently drop rows.
type CorruptHistoryError struct {
	Filesystem string
	Detail     string
	Err        error
}

func (e *CorruptHistoryError) Error() string {
	return fmt.Sprintf("corrupt history for %s: %s: %v", e.Filesystem, e.Detail, e.Err)
}

func (e *CorruptHistoryError) Unwrap() error { return e.Err }

// WriteError reports a persistence failure. It is fatal to the run; the
// caller must abort rather than report from unsaved state.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("persisting history: %v", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
