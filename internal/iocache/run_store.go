package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/huangsam/lakerisk/schema"
)

// Table names for run tracking.
const (
	runsTable     = "lakerisk_runs"
	runLakesTable = "lakerisk_run_lakes"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetRunsDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{runLakesTable, getCreateRunLakesQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for lakerisk_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) PRIMARY KEY,
				species VARCHAR(255) NOT NULL,
				input_params TEXT NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				lake_count INT NOT NULL DEFAULT 0,
				warned BOOLEAN NOT NULL DEFAULT FALSE,
				top_lake VARCHAR(255)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) PRIMARY KEY,
				species TEXT NOT NULL,
				input_params TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				lake_count INT NOT NULL DEFAULT 0,
				warned BOOLEAN NOT NULL DEFAULT FALSE,
				top_lake TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				species TEXT NOT NULL,
				input_params TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				lake_count INTEGER NOT NULL DEFAULT 0,
				warned INTEGER NOT NULL DEFAULT 0,
				top_lake TEXT
			);
		`, quotedTableName)
	}
}

// getCreateRunLakesQuery returns the CREATE TABLE query for lakerisk_run_lakes.
func getCreateRunLakesQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runLakesTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) NOT NULL,
				lake_name VARCHAR(255) NOT NULL,
				raw_score DOUBLE NOT NULL,
				similarity DOUBLE NOT NULL,
				adjusted_score DOUBLE NOT NULL,
				risk_level VARCHAR(16) NOT NULL,
				presence VARCHAR(16) NOT NULL,
				scored_at DATETIME(6) NOT NULL,
				PRIMARY KEY (run_id, lake_name)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) NOT NULL,
				lake_name TEXT NOT NULL,
				raw_score DOUBLE PRECISION NOT NULL,
				similarity DOUBLE PRECISION NOT NULL,
				adjusted_score DOUBLE PRECISION NOT NULL,
				risk_level TEXT NOT NULL,
				presence TEXT NOT NULL,
				scored_at TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (run_id, lake_name)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT NOT NULL,
				lake_name TEXT NOT NULL,
				raw_score REAL NOT NULL,
				similarity REAL NOT NULL,
				adjusted_score REAL NOT NULL,
				risk_level TEXT NOT NULL,
				presence TEXT NOT NULL,
				scored_at TEXT NOT NULL,
				PRIMARY KEY (run_id, lake_name)
			);
		`, quotedTableName)
	}
}

// BeginRun records the start of a scoring run.
func (rs *RunStoreImpl) BeginRun(runID, species string, input schema.EnvironmentVector, startTime time.Time) error {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	inputJSON, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal input params: %w", err)
	}

	query := rebind(fmt.Sprintf(`INSERT INTO %s (run_id, species, input_params, start_time) VALUES (?, ?, ?, ?)`,
		quoteTableName(runsTable, rs.backend)), rs.backend)
	if _, err := rs.db.Exec(query, runID, species, string(inputJSON), formatTime(startTime, rs.backend)); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", runID, err)
	}
	return nil
}

// RecordLakes stores the per-lake summary of a run in a single transaction.
func (rs *RunStoreImpl) RecordLakes(runID string, records []schema.PredictionRecord, scoredAt time.Time) error {
	if rs.backend == schema.NoneBackend || rs.db == nil || len(records) == 0 {
		return nil
	}

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := rebind(fmt.Sprintf(`
		INSERT INTO %s (run_id, lake_name, raw_score, similarity, adjusted_score, risk_level, presence, scored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, quoteTableName(runLakesTable, rs.backend)), rs.backend)
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare lake insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	ts := formatTime(scoredAt, rs.backend)
	for _, r := range records {
		if _, err := stmt.Exec(runID, r.LakeName, r.RawScore, r.Similarity, r.AdjustedScore,
			string(r.RiskLevel), string(r.Presence), ts); err != nil {
			return fmt.Errorf("failed to insert lake %s: %w", r.LakeName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit lake records: %w", err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID string, endTime time.Time, lakeCount int, warned bool, topLake string) error {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	// First, get the start_time to calculate duration
	selectQuery := rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quotedTableName), rs.backend)
	startTime, err := rs.scanTime(rs.db.QueryRow(selectQuery, runID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %s: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	updateQuery := rebind(fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, lake_count = ?, warned = ?, top_lake = ? WHERE run_id = ?`,
		quotedTableName), rs.backend)
	if _, err := rs.db.Exec(updateQuery, formatTime(endTime, rs.backend), durationMs, lakeCount, warned, nullableString(topLake), runID); err != nil {
		return fmt.Errorf("failed to update run %s: %w", runID, err)
	}
	return nil
}

// scanTime reads a single time column, parsing the text form used on SQLite.
func (rs *RunStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	if rs.backend != schema.SQLiteBackend {
		var t time.Time
		err := row.Scan(&t)
		return t, err
	}
	var s string
	if err := row.Scan(&s); err != nil {
		return time.Time{}, err
	}
	return parseTime(s)
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, rs.backend)

	summaryQuery := fmt.Sprintf(`SELECT COUNT(*), COALESCE(SUM(lake_count), 0),
		COALESCE(SUM(CASE WHEN warned THEN 1 ELSE 0 END), 0) FROM %s`, quotedRuns)
	if err := rs.db.QueryRow(summaryQuery).Scan(&status.TotalRuns, &status.TotalLakesScored, &status.WarnedRuns); err != nil {
		return status, fmt.Errorf("failed to get run totals: %w", err)
	}

	if status.TotalRuns > 0 {
		lastQuery := fmt.Sprintf("SELECT run_id FROM %s ORDER BY start_time DESC, run_id DESC LIMIT 1", quotedRuns)
		if err := rs.db.QueryRow(lastQuery).Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}

		lastTimeQuery := fmt.Sprintf("SELECT MAX(start_time) FROM %s", quotedRuns)
		lastTime, err := rs.scanTime(rs.db.QueryRow(lastTimeQuery))
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		status.LastRunTime = lastTime

		oldestQuery := fmt.Sprintf("SELECT MIN(start_time) FROM %s", quotedRuns)
		oldest, err := rs.scanTime(rs.db.QueryRow(oldestQuery))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest
	}

	for _, table := range []string{runsTable, runLakesTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))
		if err := rs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves every run in start order.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, species, input_params, start_time, end_time, run_duration_ms, lake_count, warned, top_lake
		FROM %s ORDER BY start_time, run_id`, quoteTableName(runsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var topLake sql.NullString
		var duration sql.NullInt32

		switch rs.backend {
		case schema.SQLiteBackend:
			var startStr string
			var endStr sql.NullString
			if err := rows.Scan(&record.RunID, &record.Species, &record.InputParams, &startStr, &endStr,
				&duration, &record.LakeCount, &record.Warned, &topLake); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if record.StartTime, err = parseTime(startStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endStr.Valid {
				endTime, err := parseTime(endStr.String)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL store native datetimes
			var endTime sql.NullTime
			if err := rows.Scan(&record.RunID, &record.Species, &record.InputParams, &record.StartTime, &endTime,
				&duration, &record.LakeCount, &record.Warned, &topLake); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if endTime.Valid {
				record.EndTime = &endTime.Time
			}
		}

		if duration.Valid {
			record.RunDurationMs = &duration.Int32
		}
		if topLake.Valid {
			record.TopLake = &topLake.String
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllRunLakes retrieves every per-lake row ordered by run and lake.
func (rs *RunStoreImpl) GetAllRunLakes() ([]schema.RunLakeRecord, error) {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, lake_name, raw_score, similarity, adjusted_score, risk_level, presence, scored_at
		FROM %s ORDER BY run_id, lake_name`, quoteTableName(runLakesTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query run lakes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunLakeRecord
	for rows.Next() {
		var record schema.RunLakeRecord

		switch rs.backend {
		case schema.SQLiteBackend:
			var scoredStr string
			if err := rows.Scan(&record.RunID, &record.LakeName, &record.RawScore, &record.Similarity,
				&record.AdjustedScore, &record.RiskLevel, &record.Presence, &scoredStr); err != nil {
				return nil, fmt.Errorf("failed to scan run lake: %w", err)
			}
			if record.ScoredAt, err = parseTime(scoredStr); err != nil {
				return nil, fmt.Errorf("failed to parse scored_at: %w", err)
			}
		default:
			if err := rows.Scan(&record.RunID, &record.LakeName, &record.RawScore, &record.Similarity,
				&record.AdjustedScore, &record.RiskLevel, &record.Presence, &record.ScoredAt); err != nil {
				return nil, fmt.Errorf("failed to scan run lake: %w", err)
			}
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run lakes: %w", err)
	}
	return results, nil
}
