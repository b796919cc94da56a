package schema

import "time"

// RunStatus summarizes the state of the run-history store.
type RunStatus struct {
	Backend   DatabaseBackend `json:"backend"`
	Location  string          `json:"location"` // File path (sqlite) or redacted DSN
	TotalRuns int             `json:"total_runs"`
	TotalRows int             `json:"total_rows"`
	LastRun   time.Time       `json:"last_run,omitzero"`
}

// RunRecord is one recorded analysis run from the history store.
type RunRecord struct {
	RunID        int64      `json:"run_id"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	DurationMs   *int64     `json:"duration_ms,omitempty"`
	TotalRows    int        `json:"total_rows"`
	ConfigParams string     `json:"config_params,omitempty"` // JSON-encoded run configuration
}
