package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/deckforge/deckforge/internal/manifest"
	"github.com/deckforge/deckforge/internal/model"
)

// RunDB provides SQLite-based storage for pipeline run history.
//
// Design decision: We use a single database file for all runs rather
// than one per input document. This keeps history queries across inputs
// cheap and makes backup/restore a single-file operation.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB in the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an error
// is returned; the history command uses this to avoid creating an empty
// database just to report no history.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, "deckforge.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close() //nolint:errcheck // Best effort cleanup
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close() //nolint:errcheck // Best effort cleanup
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- Runs store one row per pipeline invocation, with the full result
	-- and manifest kept as JSON for ad-hoc inspection.
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		input_path TEXT NOT NULL,
		output_path TEXT,
		success INTEGER NOT NULL,
		stages_completed INTEGER NOT NULL,
		recovered_from_errors INTEGER NOT NULL DEFAULT 0,
		warnings INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		result_json TEXT NOT NULL,
		manifest_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_input ON runs(input_path);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	CREATE INDEX IF NOT EXISTS idx_runs_success ON runs(success);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun records a completed run. The manifest may be nil when the run
// failed before one was written.
func (rdb *RunDB) SaveRun(ctx context.Context, inputPath string, result *model.PipelineResult, m *manifest.Manifest) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to serialize run result: %w", err)
	}

	var manifestJSON []byte
	if m != nil {
		manifestJSON, err = json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to serialize manifest: %w", err)
		}
	}

	query := `
	INSERT INTO runs (run_id, input_path, output_path, success, stages_completed,
		recovered_from_errors, warnings, duration_ms, result_json, manifest_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = rdb.db.ExecContext(ctx, query,
		result.RunID,
		inputPath,
		result.OutputPath,
		boolToInt(result.Success),
		result.StagesCompleted,
		result.RecoveredFromErrors,
		len(result.Warnings),
		result.Duration.Milliseconds(),
		string(resultJSON),
		string(manifestJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// RunSummary is the lightweight row returned by ListRuns, without the
// full JSON payloads.
type RunSummary struct {
	ID                  int64
	RunID               string
	InputPath           string
	OutputPath          string
	Success             bool
	StagesCompleted     int
	RecoveredFromErrors int
	Warnings            int
	Duration            time.Duration
	Timestamp           time.Time
}

// ListRuns returns the most recent runs, newest first. A limit of zero
// or less returns all runs.
func (rdb *RunDB) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
	SELECT id, run_id, input_path, output_path, success, stages_completed,
		recovered_from_errors, warnings, duration_ms, timestamp
	FROM runs
	ORDER BY timestamp DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only rows

	var summaries []RunSummary
	for rows.Next() {
		var s RunSummary
		var success int
		var durationMs int64
		var timestamp string

		if err := rows.Scan(&s.ID, &s.RunID, &s.InputPath, &s.OutputPath, &success,
			&s.StagesCompleted, &s.RecoveredFromErrors, &s.Warnings, &durationMs, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}

		s.Success = success != 0
		s.Duration = time.Duration(durationMs) * time.Millisecond
		s.Timestamp = parseTimestamp(timestamp)
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// ListRunsForInput returns the run history of one input document,
// newest first.
func (rdb *RunDB) ListRunsForInput(ctx context.Context, inputPath string, limit int) ([]RunSummary, error) {
	query := `
	SELECT id, run_id, input_path, output_path, success, stages_completed,
		recovered_from_errors, warnings, duration_ms, timestamp
	FROM runs
	WHERE input_path = ?
	ORDER BY timestamp DESC, id DESC
	`
	args := []any{inputPath}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs for input: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only rows

	var summaries []RunSummary
	for rows.Next() {
		var s RunSummary
		var success int
		var durationMs int64
		var timestamp string

		if err := rows.Scan(&s.ID, &s.RunID, &s.InputPath, &s.OutputPath, &success,
			&s.StagesCompleted, &s.RecoveredFromErrors, &s.Warnings, &durationMs, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}

		s.Success = success != 0
		s.Duration = time.Duration(durationMs) * time.Millisecond
		s.Timestamp = parseTimestamp(timestamp)
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// GetRun retrieves the full result of a run by its run ID.
func (rdb *RunDB) GetRun(ctx context.Context, runID string) (*model.PipelineResult, error) {
	query := `SELECT result_json FROM runs WHERE run_id = ?`

	var resultJSON string
	err := rdb.db.QueryRowContext(ctx, query, runID).Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var result model.PipelineResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse run result: %w", err)
	}
	return &result, nil
}

// GetManifest retrieves the stored manifest of a run by its run ID.
// Returns nil without error when the run has no manifest.
func (rdb *RunDB) GetManifest(ctx context.Context, runID string) (*manifest.Manifest, error) {
	query := `SELECT manifest_json FROM runs WHERE run_id = ?`

	var manifestJSON sql.NullString
	err := rdb.db.QueryRowContext(ctx, query, runID).Scan(&manifestJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get manifest: %w", err)
	}
	if !manifestJSON.Valid || manifestJSON.String == "" {
		return nil, nil
	}

	var m manifest.Manifest
	if err := json.Unmarshal([]byte(manifestJSON.String), &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// timestampFormats lists the formats SQLite may return for DATETIME
// columns depending on configuration.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	time.RFC3339,
	time.RFC3339Nano,
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
