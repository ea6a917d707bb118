package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/schema"
)

// Table names for analysis tracking.
const (
	analysisRunsTable      = "gitgrade_analysis_runs"
	contributorScoresTable = "gitgrade_contributor_scores"
)

// analysisTables lists the analysis tables in creation order.
var analysisTables = []string{analysisRunsTable, contributorScoresTable}

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}
	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// createAnalysisTables creates the analysis tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{analysisRunsTable, getCreateAnalysisRunsQuery(backend)},
		{contributorScoresTable, getCreateContributorScoresQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateAnalysisRunsQuery returns the CREATE TABLE query for gitgrade_analysis_runs.
func getCreateAnalysisRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(analysisRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				repository VARCHAR(255) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_commits INT,
				score INT,
				heuristic_score INT,
				ai_status VARCHAR(20),
				total_tokens INT,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGSERIAL PRIMARY KEY,
				repository TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_commits INT,
				score INT,
				heuristic_score INT,
				ai_status TEXT,
				total_tokens INT,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER PRIMARY KEY AUTOINCREMENT,
				repository TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_commits INTEGER,
				score INTEGER,
				heuristic_score INTEGER,
				ai_status TEXT,
				total_tokens INTEGER,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateContributorScoresQuery returns the CREATE TABLE query for gitgrade_contributor_scores.
func getCreateContributorScoresQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(contributorScoresTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				email VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				commit_count INT NOT NULL,
				average_score INT NOT NULL,
				consistency_score INT NOT NULL,
				category VARCHAR(50) NOT NULL,
				velocity DOUBLE NOT NULL,
				PRIMARY KEY (analysis_id, email)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				email TEXT NOT NULL,
				name TEXT NOT NULL,
				commit_count INT NOT NULL,
				average_score INT NOT NULL,
				consistency_score INT NOT NULL,
				category TEXT NOT NULL,
				velocity DOUBLE PRECISION NOT NULL,
				PRIMARY KEY (analysis_id, email)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER NOT NULL,
				email TEXT NOT NULL,
				name TEXT NOT NULL,
				commit_count INTEGER NOT NULL,
				average_score INTEGER NOT NULL,
				consistency_score INTEGER NOT NULL,
				category TEXT NOT NULL,
				velocity REAL NOT NULL,
				PRIMARY KEY (analysis_id, email)
			);
		`, quotedTableName)
	}
}

// BeginAnalysis creates a new analysis run and returns its unique ID.
func (as *AnalysisStoreImpl) BeginAnalysis(repository string, startTime time.Time, configParams map[string]any) (int64, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	values := strings.Join(placeholders(as.backend, 3), ", ")
	args := []any{repository, formatTime(startTime, as.backend), string(configJSON)}

	var analysisID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (repository, start_time, config_params) VALUES (%s) RETURNING analysis_id`, quotedTableName, values)
		err = as.db.QueryRow(query, args...).Scan(&analysisID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (repository, start_time, config_params) VALUES (%s)`, quotedTableName, values)
		var result sql.Result
		result, err = as.db.Exec(query, args...)
		if err == nil {
			analysisID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return analysisID, nil
}

// EndAnalysis updates the analysis run with completion data.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, summary schema.RunSummary) error {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	ph := placeholders(as.backend, 8)

	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = %s`, quotedTableName, ph[0])
	startTime, err := as.scanTime(as.db.QueryRow(query, analysisID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}
	durationMs := endTime.Sub(startTime).Milliseconds()

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_commits = %s, score = %s,
		heuristic_score = %s, ai_status = %s, total_tokens = %s WHERE analysis_id = %s`,
		quotedTableName, ph[0], ph[1], ph[2], ph[3], ph[4], ph[5], ph[6], ph[7])
	args := []any{
		formatTime(endTime, as.backend), durationMs, summary.TotalCommits, summary.Score,
		summary.HeuristicScore, string(summary.AIStatus), summary.TotalTokens, analysisID,
	}
	if _, err := as.db.Exec(updateQuery, args...); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// RecordContributorScores stores the contributor rollups of a run in one transaction.
func (as *AnalysisStoreImpl) RecordContributorScores(analysisID int64, contributors []schema.ContributorScore) error {
	if as.backend == schema.NoneBackend || as.db == nil || len(contributors) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (analysis_id, email, name, commit_count, average_score, consistency_score, category, velocity)
		VALUES (%s)
	`, quoteTableName(contributorScoresTable, as.backend), strings.Join(placeholders(as.backend, 8), ", "))

	tx, err := as.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare contributor insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range contributors {
		if _, err := stmt.Exec(analysisID, c.Email, c.Name, c.CommitCount, c.AverageScore,
			c.ConsistencyScore, string(c.Category), c.Velocity); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert contributor %s: %w", c.Email, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit contributor scores: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.backend == schema.NoneBackend || as.db == nil {
		return status, nil
	}

	runs := quoteTableName(analysisRunsTable, as.backend)
	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := as.db.QueryRow(fmt.Sprintf("SELECT analysis_id, start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", runs))
		var lastRunTime any
		if err := row.Scan(&status.LastRunID, &lastRunTime); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		t, err := parseTimeValue(lastRunTime)
		if err != nil {
			return status, fmt.Errorf("failed to parse last run time: %w", err)
		}
		status.LastRunTime = t

		oldest, err := as.scanTime(as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", runs)))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest

		if err := as.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(total_commits), 0) FROM %s", runs)).Scan(&status.TotalCommitsAnalyzed); err != nil {
			return status, fmt.Errorf("failed to get total commits analyzed: %w", err)
		}
	}

	for _, table := range analysisTables {
		var count int64
		if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// GetAllAnalysisRuns retrieves all analysis runs from the store.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, repository, start_time, end_time, run_duration_ms,
		COALESCE(total_commits, 0), COALESCE(score, 0), COALESCE(heuristic_score, 0),
		COALESCE(ai_status, ''), COALESCE(total_tokens, 0), config_params
		FROM %s ORDER BY analysis_id`, quoteTableName(analysisRunsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var record schema.AnalysisRunRecord
		var startTime, endTime any
		if err := rows.Scan(&record.AnalysisID, &record.Repository, &startTime, &endTime, &record.RunDurationMs,
			&record.TotalCommits, &record.Score, &record.HeuristicScore, &record.AIStatus,
			&record.TotalTokens, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		if record.StartTime, err = parseTimeValue(startTime); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if endTime != nil {
			t, err := parseTimeValue(endTime)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end_time: %w", err)
			}
			record.EndTime = &t
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// GetAllContributorScores retrieves all contributor score records from the store.
func (as *AnalysisStoreImpl) GetAllContributorScores() ([]schema.ContributorScoreRecord, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, email, name, commit_count, average_score, consistency_score, category, velocity
		FROM %s ORDER BY analysis_id, email`, quoteTableName(contributorScoresTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributor scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ContributorScoreRecord
	for rows.Next() {
		var r schema.ContributorScoreRecord
		if err := rows.Scan(&r.AnalysisID, &r.Email, &r.Name, &r.CommitCount, &r.AverageScore,
			&r.ConsistencyScore, &r.Category, &r.Velocity); err != nil {
			return nil, fmt.Errorf("failed to scan contributor score: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contributor scores: %w", err)
	}
	return results, nil
}

// scanTime scans a single time column stored natively or as RFC 3339 text.
func (as *AnalysisStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	var v any
	if err := row.Scan(&v); err != nil {
		return time.Time{}, err
	}
	return parseTimeValue(v)
}

// parseTimeValue converts a driver time value. SQLite returns text, MySQL may
// return bytes without parseTime, PostgreSQL returns time.Time.
func parseTimeValue(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return parseTimeText(t)
	case []byte:
		return parseTimeText(string(t))
	default:
		return time.Time{}, fmt.Errorf("unexpected time value %T", v)
	}
}

func parseTimeText(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05.999999", s)
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}
