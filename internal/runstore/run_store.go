package runstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/ltin1214/dcurves/internal/contract"
	"github.com/ltin1214/dcurves/schema"
	_ "modernc.org/sqlite" // SQLite driver
)

// Table names for run history.
const (
	runsTable      = "dca_runs"
	curveRowsTable = "dca_curve_rows"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db       *sql.DB
	backend  schema.DatabaseBackend
	location string
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	var db *sql.DB
	var err error
	var location string

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetHistoryDBFilePath()
		}
		location = dbPath
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		location = "mysql (via --history-db-connect)"
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		location = "postgresql (via --history-db-connect)"
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=...", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{db: nil, backend: backend}, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database server is running and accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	// Create the table schemas
	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run history tables: %w", err)
	}

	return &RunStoreImpl{
		db:       db,
		backend:  backend,
		location: location,
	}, nil
}

// createRunTables creates the run history tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{curveRowsTable, getCreateCurveRowsQuery(backend)},
	}

	for _, table := range tables {
		if err := validateTableName(table.name); err != nil {
			return err
		}
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for dca_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms BIGINT,
				total_rows INT,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms BIGINT,
				total_rows INT,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_rows INTEGER,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateCurveRowsQuery returns the CREATE TABLE query for dca_curve_rows.
func getCreateCurveRowsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(curveRowsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				seq INT NOT NULL,
				strategy VARCHAR(255) NOT NULL,
				threshold DOUBLE NOT NULL,
				subject_count INT NOT NULL,
				tp_rate DOUBLE NOT NULL,
				fp_rate DOUBLE NOT NULL,
				harm DOUBLE NOT NULL,
				net_benefit DOUBLE NOT NULL,
				net_intervention_avoided DOUBLE NOT NULL,
				smoothed_net_benefit DOUBLE,
				low_confidence TINYINT(1) NOT NULL,
				PRIMARY KEY (run_id, seq)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				seq INT NOT NULL,
				strategy TEXT NOT NULL,
				threshold DOUBLE PRECISION NOT NULL,
				subject_count INT NOT NULL,
				tp_rate DOUBLE PRECISION NOT NULL,
				fp_rate DOUBLE PRECISION NOT NULL,
				harm DOUBLE PRECISION NOT NULL,
				net_benefit DOUBLE PRECISION NOT NULL,
				net_intervention_avoided DOUBLE PRECISION NOT NULL,
				smoothed_net_benefit DOUBLE PRECISION,
				low_confidence BOOLEAN NOT NULL,
				PRIMARY KEY (run_id, seq)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				seq INTEGER NOT NULL,
				strategy TEXT NOT NULL,
				threshold REAL NOT NULL,
				subject_count INTEGER NOT NULL,
				tp_rate REAL NOT NULL,
				fp_rate REAL NOT NULL,
				harm REAL NOT NULL,
				net_benefit REAL NOT NULL,
				net_intervention_avoided REAL NOT NULL,
				smoothed_net_benefit REAL,
				low_confidence INTEGER NOT NULL,
				PRIMARY KEY (run_id, seq)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new run record and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	// Serialize config params to JSON
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, formatTime(startTime, rs.backend), string(configJSON))
		if err != nil {
			return 0, err
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert run record: %w", err)
	}

	return runID, nil
}

// RecordRows stores the frozen result rows for a run inside one transaction.
func (rs *RunStoreImpl) RecordRows(runID int64, rows []schema.ResultRow) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(curveRowsTable, rs.backend)

	var query string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`
			INSERT INTO %s (run_id, seq, strategy, threshold, subject_count, tp_rate, fp_rate,
			                harm, net_benefit, net_intervention_avoided, smoothed_net_benefit, low_confidence)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`
			INSERT INTO %s (run_id, seq, strategy, threshold, subject_count, tp_rate, fp_rate,
			                harm, net_benefit, net_intervention_avoided, smoothed_net_benefit, low_confidence)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, quotedTableName)
	}

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for seq, r := range rows {
		var smoothed *float64
		if r.Smoothed {
			v := r.SmoothedNetBenefit
			smoothed = &v
		}
		if _, err := stmt.Exec(runID, seq, r.Strategy, r.Threshold, r.N, r.TPRate, r.FPRate,
			r.Harm, r.NetBenefit, r.NetInterventionAvoided, smoothed, r.LowConfidence); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert curve row %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit curve rows: %w", err)
	}
	return nil
}

// EndRun updates the run record with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, totalRows int) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	// First, get the start_time to calculate duration
	quotedTableName := quoteTableName(runsTable, rs.backend)

	var query string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = $1`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quotedTableName)
	}

	row := rs.db.QueryRow(query, runID)

	// Handle different time storage formats per backend
	var startTime time.Time
	switch rs.backend {
	case schema.SQLiteBackend:
		var startTimeStr string
		if err := row.Scan(&startTimeStr); err != nil {
			return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
		}
		var err error
		startTime, err = time.Parse(time.RFC3339Nano, startTimeStr)
		if err != nil {
			return fmt.Errorf("failed to parse start_time: %w", err)
		}
	default: // MySQL and PostgreSQL store as native datetime
		if err := row.Scan(&startTime); err != nil {
			return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
		}
	}

	// Calculate duration in milliseconds
	durationMs := endTime.Sub(startTime).Milliseconds()

	// Update the run record with completion data
	var updateQuery string
	var args []any

	switch rs.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_rows = $3 WHERE run_id = $4`, quotedTableName)
		args = []any{endTime, durationMs, totalRows, runID}
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_rows = ? WHERE run_id = ?`, quotedTableName)
		args = []any{formatTime(endTime, rs.backend), durationMs, totalRows, runID}
	}

	if _, err := rs.db.Exec(updateQuery, args...); err != nil {
		return fmt.Errorf("failed to update run record: %w", err)
	}

	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:  rs.backend,
		Location: rs.location,
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	// Get total runs
	runsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(runsTable, rs.backend))
	if err := rs.db.QueryRow(runsQuery).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	// Get total rows
	rowsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(curveRowsTable, rs.backend))
	if err := rs.db.QueryRow(rowsQuery).Scan(&status.TotalRows); err != nil {
		return status, fmt.Errorf("failed to get total rows: %w", err)
	}

	if status.TotalRuns > 0 {
		// Get last run time
		lastRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", quoteTableName(runsTable, rs.backend))
		row := rs.db.QueryRow(lastRunQuery)

		switch rs.backend {
		case schema.SQLiteBackend:
			var lastRunTimeStr string
			if err := row.Scan(&lastRunTimeStr); err != nil {
				return status, fmt.Errorf("failed to get last run time: %w", err)
			}
			lastRunTime, err := time.Parse(time.RFC3339Nano, lastRunTimeStr)
			if err != nil {
				return status, fmt.Errorf("failed to parse last run time: %w", err)
			}
			status.LastRun = lastRunTime
		default: // MySQL and PostgreSQL store as native datetime
			if err := row.Scan(&status.LastRun); err != nil {
				return status, fmt.Errorf("failed to get last run time: %w", err)
			}
		}
	}

	return status, nil
}

// ListRuns returns the most recent runs, newest first.
func (rs *RunStoreImpl) ListRuns(limit int) ([]schema.RunRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	var query string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, total_rows, config_params
			FROM %s ORDER BY run_id DESC LIMIT $1`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, total_rows, config_params
			FROM %s ORDER BY run_id DESC LIMIT ?`, quotedTableName)
	}

	rows, err := rs.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var totalRows sql.NullInt64
		var configParams sql.NullString

		switch rs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &startTimeStr, &endTimeStr, &record.DurationMs, &totalRows, &configParams); err != nil {
				return nil, fmt.Errorf("failed to scan run record: %w", err)
			}
			startTime, err := time.Parse(time.RFC3339Nano, startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.DurationMs, &totalRows, &configParams); err != nil {
				return nil, fmt.Errorf("failed to scan run record: %w", err)
			}
		}

		record.TotalRows = int(totalRows.Int64)
		record.ConfigParams = configParams.String
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run records: %w", err)
	}

	return results, nil
}

// FetchRows returns the stored rows for a run in insertion order.
func (rs *RunStoreImpl) FetchRows(runID int64) ([]schema.ResultRow, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(curveRowsTable, rs.backend)
	var query string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT strategy, threshold, subject_count, tp_rate, fp_rate, harm,
			net_benefit, net_intervention_avoided, smoothed_net_benefit, low_confidence
			FROM %s WHERE run_id = $1 ORDER BY seq`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT strategy, threshold, subject_count, tp_rate, fp_rate, harm,
			net_benefit, net_intervention_avoided, smoothed_net_benefit, low_confidence
			FROM %s WHERE run_id = ? ORDER BY seq`, quotedTableName)
	}

	rows, err := rs.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query curve rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ResultRow
	for rows.Next() {
		var r schema.ResultRow
		var smoothed sql.NullFloat64
		if err := rows.Scan(&r.Strategy, &r.Threshold, &r.N, &r.TPRate, &r.FPRate, &r.Harm,
			&r.NetBenefit, &r.NetInterventionAvoided, &smoothed, &r.LowConfidence); err != nil {
			return nil, fmt.Errorf("failed to scan curve row: %w", err)
		}
		if smoothed.Valid {
			r.SmoothedNetBenefit = smoothed.Float64
			r.Smoothed = true
		}
		// Scaled counts are derived, not stored.
		r.TruePositives = r.TPRate * float64(r.N)
		r.FalsePositives = r.FPRate * float64(r.N)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating curve rows: %w", err)
	}

	return results, nil
}

// Clear removes all recorded runs and rows.
func (rs *RunStoreImpl) Clear() error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	for _, table := range []string{curveRowsTable, runsTable} {
		query := fmt.Sprintf("DELETE FROM %s", quoteTableName(table, rs.backend))
		if _, err := rs.db.Exec(query); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}
