package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"cathub/internal/pipeline"
)

// ErrAmbiguousID is returned when a run ID prefix matches several runs.
var ErrAmbiguousID = errors.New("run id prefix is ambiguous")

// Store manages the run ledger backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// RecordRun stores a run report and its per-file outcomes. runErr is the
// error the run ended with, if any.
func (s *Store) RecordRun(ctx context.Context, report pipeline.Report, runErr error) error {
	if strings.TrimSpace(report.RunID) == "" {
		return errors.New("report has no run id")
	}

	status := RunSucceeded
	switch {
	case runErr != nil:
		status = RunFailed
	case report.InputCreated:
		status = RunInputCreated
	}
	errorMessage := ""
	if runErr != nil {
		errorMessage = runErr.Error()
	}

	prunedJSON, err := json.Marshal(nonNil(report.Pruned))
	if err != nil {
		return fmt.Errorf("marshal pruned: %w", err)
	}
	droppedJSON, err := json.Marshal(nonNil(report.Dropped))
	if err != nil {
		return fmt.Errorf("marshal dropped: %w", err)
	}

	metadataStatus := ""
	if !report.InputCreated {
		metadataStatus = report.MetadataStatus.String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO runs (
            id, started_at, finished_at, status, error_message,
            input_dir, output_dir, metadata_path, metadata_status,
            encoded, copied, reused, skipped, failed, files, bytes_written,
            pruned_json, dropped_json
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID,
		formatTime(report.StartedAt),
		nullableTime(report.FinishedAt),
		string(status),
		nullableString(errorMessage),
		report.InputDir,
		report.OutputDir,
		report.MetadataPath,
		nullableString(metadataStatus),
		report.Count(pipeline.ActionEncodeVideo)+report.Count(pipeline.ActionEncodeImage),
		report.Count(pipeline.ActionCopy),
		report.Count(pipeline.ActionReuse),
		report.Count(pipeline.ActionSkip),
		len(report.Failed()),
		len(report.Files),
		report.BytesWritten,
		string(prunedJSON),
		string(droppedJSON),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for position, outcome := range report.Outcomes {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO file_results (
                run_id, position, source, output, kind, action, status,
                registered, bytes, elapsed_ms, detail, error_message, error_category
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.RunID,
			position,
			outcome.Source,
			nullableString(outcome.Output),
			outcome.Kind.String(),
			string(outcome.Action),
			string(outcome.Status),
			boolToInt(outcome.Registered),
			outcome.Bytes,
			outcome.Elapsed.Milliseconds(),
			nullableString(outcome.Detail),
			nullableString(outcome.Error),
			nullableString(outcome.ErrorCategory),
		)
		if err != nil {
			return fmt.Errorf("insert file result %s: %w", outcome.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

const runColumns = `id, started_at, finished_at, status, error_message,
    input_dir, output_dir, metadata_path, metadata_status,
    encoded, copied, reused, skipped, failed, files, bytes_written,
    pruned_json, dropped_json`

// ListRuns returns the most recent runs, newest first. A non-positive limit
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun fetches a run by full ID or unique ID prefix. It returns nil when
// nothing matches.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("run id required")
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == nil {
		return run, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escapeLike(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var matches []*Run
	for rows.Next() {
		match, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
}

// RunOutcomes returns the per-file results of a run in processing order.
func (s *Store) RunOutcomes(ctx context.Context, runID string) ([]FileResult, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id, position, source, output, kind, action, status,
                registered, bytes, elapsed_ms, detail, error_message, error_category
         FROM file_results WHERE run_id = ? ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list file results: %w", err)
	}
	defer rows.Close()

	var results []FileResult
	for rows.Next() {
		var (
			result                              FileResult
			output, detail, errMsg, errCategory sql.NullString
			registered                          int
			elapsedMS                           int64
		)
		if err := rows.Scan(
			&result.RunID,
			&result.Position,
			&result.Source,
			&output,
			&result.Kind,
			&result.Action,
			&result.Status,
			&registered,
			&result.Bytes,
			&elapsedMS,
			&detail,
			&errMsg,
			&errCategory,
		); err != nil {
			return nil, fmt.Errorf("scan file result: %w", err)
		}
		result.Output = output.String
		result.Detail = detail.String
		result.ErrorMessage = errMsg.String
		result.ErrorCategory = errCategory.String
		result.Registered = registered != 0
		result.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file results: %w", err)
	}
	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run                                Run
		startedAt                          string
		finishedAt, errMsg, metadataStatus sql.NullString
		status                             string
		prunedJSON, droppedJSON            sql.NullString
	)
	err := row.Scan(
		&run.ID,
		&startedAt,
		&finishedAt,
		&status,
		&errMsg,
		&run.InputDir,
		&run.OutputDir,
		&run.MetadataPath,
		&metadataStatus,
		&run.Encoded,
		&run.Copied,
		&run.Reused,
		&run.Skipped,
		&run.Failed,
		&run.Files,
		&run.BytesWritten,
		&prunedJSON,
		&droppedJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Status = RunStatus(status)
	run.ErrorMessage = errMsg.String
	run.MetadataStatus = metadataStatus.String
	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTime(finishedAt.String)
	}
	run.Pruned = decodeNames(prunedJSON)
	run.Dropped = decodeNames(droppedJSON)
	return &run, nil
}

func decodeNames(value sql.NullString) []string {
	if !value.Valid || value.String == "" {
		return nil
	}
	var names []string
	if err := json.Unmarshal([]byte(value.String), &names); err != nil {
		return nil
	}
	return names
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return formatTime(value)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
