package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/minispider/internal/model"
)

// FileName is the journal database file inside the journal directory.
const FileName = "minispider.db"

var (
	// ErrRunNotFound is returned when no run matches the requested ID.
	ErrRunNotFound = errors.New("run not found")

	// ErrAmbiguousRunID is returned when a run ID prefix matches several runs.
	ErrAmbiguousRunID = errors.New("run ID prefix matches more than one run")
)

// Journal provides SQLite-based storage for crawl runs and their fetches.
// It is safe for concurrent use: every worker of a run records through the
// same Journal.
type Journal struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Journal behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the journal in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is
// returned.
func Open(dbDir string, opts Options) (*Journal, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("journal not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check journal path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}
	// Another process may hold the write lock, e.g. history during a crawl.
	dsn += "&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// SQLite has a single writer; one connection serializes the workers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	j := &Journal{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := j.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Path returns the database file path.
func (j *Journal) Path() string {
	return j.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (j *Journal) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		seeds TEXT NOT NULL,
		policy_json TEXT NOT NULL,
		fetched INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0,
		saved INTEGER DEFAULT 0,
		queued INTEGER DEFAULT 0,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS fetches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		url TEXT NOT NULL,
		depth INTEGER NOT NULL,
		status_code INTEGER,
		content_type TEXT,
		success INTEGER NOT NULL,
		saved_path TEXT,
		digest TEXT,
		error TEXT,
		fetched_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_fetches_run ON fetches(run_id);
	CREATE INDEX IF NOT EXISTS idx_fetches_url ON fetches(url);
	`

	_, err := j.db.ExecContext(context.Background(), schema)
	return err
}

// StartRun records the start of a new run and returns it with a fresh ID.
func (j *Journal) StartRun(ctx context.Context, seeds []string, settings model.RunSettings) (model.Run, error) {
	run := model.Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Seeds:     seeds,
		Settings:  settings,
	}

	seedsJSON, err := json.Marshal(seeds)
	if err != nil {
		return model.Run{}, fmt.Errorf("failed to serialize seeds: %w", err)
	}
	policyJSON, err := json.Marshal(settings)
	if err != nil {
		return model.Run{}, fmt.Errorf("failed to serialize settings: %w", err)
	}

	query := `INSERT INTO runs (id, started_at, seeds, policy_json) VALUES (?, ?, ?, ?)`
	if _, err := j.db.ExecContext(ctx, query,
		run.ID,
		formatTimestamp(run.StartedAt),
		string(seedsJSON),
		string(policyJSON),
	); err != nil {
		return model.Run{}, fmt.Errorf("failed to insert run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final counters and error of run and marks it
// finished now.
func (j *Journal) FinishRun(ctx context.Context, run model.Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}

	query := `
	UPDATE runs
	SET finished_at = ?, fetched = ?, failed = ?, saved = ?, queued = ?, error = ?
	WHERE id = ?
	`
	result, err := j.db.ExecContext(ctx, query,
		formatTimestamp(run.FinishedAt),
		run.Fetched,
		run.Failed,
		run.Saved,
		run.Queued,
		run.Error,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run.ID)
	}
	return nil
}

// RecordFetch stores one fetch outcome of run runID.
func (j *Journal) RecordFetch(ctx context.Context, runID string, rec model.FetchRecord) error {
	if rec.FetchedAt.IsZero() {
		rec.FetchedAt = time.Now()
	}

	query := `
	INSERT INTO fetches (run_id, url, depth, status_code, content_type, success, saved_path, digest, error, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := j.db.ExecContext(ctx, query,
		runID,
		rec.URL,
		rec.Depth,
		rec.StatusCode,
		rec.ContentType,
		rec.Success,
		rec.SavedPath,
		rec.Digest,
		rec.Error,
		formatTimestamp(rec.FetchedAt),
	); err != nil {
		return fmt.Errorf("failed to insert fetch: %w", err)
	}
	return nil
}

// RunRecorder records the fetches of a single run.
type RunRecorder struct {
	journal *Journal
	runID   string
}

// Recorder returns a RunRecorder bound to runID.
func (j *Journal) Recorder(runID string) *RunRecorder {
	return &RunRecorder{journal: j, runID: runID}
}

// RecordFetch stores rec under the recorder's run.
func (r *RunRecorder) RecordFetch(ctx context.Context, rec model.FetchRecord) error {
	return r.journal.RecordFetch(ctx, r.runID, rec)
}

const runColumns = `id, started_at, finished_at, seeds, policy_json, fetched, failed, saved, queued, error`

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (j *Journal) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]model.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns the run with the given ID or ID prefix. A prefix must match
// exactly one run.
func (j *Journal) GetRun(ctx context.Context, id string) (*model.Run, error) {
	if id == "" {
		return nil, ErrRunNotFound
	}

	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' LIMIT 2`
	rows, err := j.db.QueryContext(ctx, query, id, escapeLike(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer rows.Close()

	matches := make([]model.Run, 0, 2)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		if run.ID == id {
			return &run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousRunID, id)
	}
}

// ListFetches returns the fetches of run runID in the order they were
// recorded.
func (j *Journal) ListFetches(ctx context.Context, runID string) ([]model.FetchRecord, error) {
	query := `
	SELECT url, depth, status_code, content_type, success, saved_path, digest, error, fetched_at
	FROM fetches
	WHERE run_id = ?
	ORDER BY id
	`
	rows, err := j.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fetches: %w", err)
	}
	defer rows.Close()

	fetches := make([]model.FetchRecord, 0)
	for rows.Next() {
		var (
			rec                               model.FetchRecord
			contentType, savedPath, digest, e sql.NullString
			fetchedAt                         string
		)
		if err := rows.Scan(
			&rec.URL,
			&rec.Depth,
			&rec.StatusCode,
			&contentType,
			&rec.Success,
			&savedPath,
			&digest,
			&e,
			&fetchedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fetch: %w", err)
		}
		rec.ContentType = contentType.String
		rec.SavedPath = savedPath.String
		rec.Digest = digest.String
		rec.Error = e.String
		rec.FetchedAt = parseTimestamp(fetchedAt)
		fetches = append(fetches, rec)
	}
	return fetches, rows.Err()
}

// Report returns the run with the given ID or prefix and all its fetches.
func (j *Journal) Report(ctx context.Context, id string) (*model.RunReport, error) {
	run, err := j.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	fetches, err := j.ListFetches(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	return &model.RunReport{Run: *run, Fetches: fetches}, nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (model.Run, error) {
	var (
		run                  model.Run
		startedAt            string
		finishedAt, runError sql.NullString
		seedsJSON, policy    string
	)
	if err := row.Scan(
		&run.ID,
		&startedAt,
		&finishedAt,
		&seedsJSON,
		&policy,
		&run.Fetched,
		&run.Failed,
		&run.Saved,
		&run.Queued,
		&runError,
	); err != nil {
		return model.Run{}, fmt.Errorf("failed to scan run: %w", err)
	}

	run.StartedAt = parseTimestamp(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTimestamp(finishedAt.String)
	}
	run.Error = runError.String

	if err := json.Unmarshal([]byte(seedsJSON), &run.Seeds); err != nil {
		return model.Run{}, fmt.Errorf("failed to parse seeds: %w", err)
	}
	if err := json.Unmarshal([]byte(policy), &run.Settings); err != nil {
		return model.Run{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	return run, nil
}

// escapeLike escapes the LIKE wildcards in s.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

// timestampLayout is fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// timestampFormats lists the formats parseTimestamp accepts. Rows written by
// this package use the first; the others cover SQLite's own formats.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05.999",
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
