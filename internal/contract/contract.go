// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/ltin1214/dcurves/schema"
)

// StoreManager defines the interface for managing the run-history store.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetRunStore() RunStore
}

// RunStore defines the interface for tracking analysis runs and storing
// their decision curve rows.
type RunStore interface {
	// BeginRun creates a new run record and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// RecordRows stores the frozen result rows for a run
	RecordRows(runID int64, rows []schema.ResultRow) error

	// EndRun updates the run record with completion data
	EndRun(runID int64, endTime time.Time, totalRows int) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// ListRuns returns the most recent runs, newest first
	ListRuns(limit int) ([]schema.RunRecord, error)

	// FetchRows returns the stored rows for a run, insertion order
	FetchRows(runID int64) ([]schema.ResultRow, error)

	// Clear removes all recorded runs and rows
	Clear() error

	// Close closes the underlying connection
	Close() error
}
