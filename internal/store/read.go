package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned by ReadRun for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, started_at, duration_ms, manifest_path, manifest_digest, tool_path, fail_fast, passed, failed, skipped, total
		FROM runs
		ORDER BY started_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns a run and its cases in manifest order.
func (s *Store) ReadRun(ctx context.Context, id string) (*Run, []CaseRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, duration_ms, manifest_path, manifest_digest, tool_path, fail_fast, passed, failed, skipped, total
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, description, status, error_kind, message, duration_ms, stdout_digest
		FROM case_results
		WHERE run_id = ?
		ORDER BY idx ASC
	`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()

	cases := []CaseRecord{}
	for rows.Next() {
		var (
			c          CaseRecord
			durationMS int64
		)
		if err := rows.Scan(&c.Index, &c.Description, &c.Status, &c.ErrorKind, &c.Message, &durationMS, &c.StdoutDigest); err != nil {
			return nil, nil, fmt.Errorf("scan case: %w", err)
		}
		c.Duration = time.Duration(durationMS) * time.Millisecond
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate cases: %w", err)
	}

	return &run, cases, nil
}

// CaseHistory returns the recorded results for one case description across
// runs, newest first.
func (s *Store) CaseHistory(ctx context.Context, description string, limit int) ([]CaseRecord, error) {
	query := `
		SELECT c.idx, c.description, c.status, c.error_kind, c.message, c.duration_ms, c.stdout_digest
		FROM case_results c
		JOIN runs r ON r.id = c.run_id
		WHERE c.description = ?
		ORDER BY r.started_at DESC, r.id DESC
	`
	args := []any{description}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query case history: %w", err)
	}
	defer rows.Close()

	records := []CaseRecord{}
	for rows.Next() {
		var (
			c          CaseRecord
			durationMS int64
		)
		if err := rows.Scan(&c.Index, &c.Description, &c.Status, &c.ErrorKind, &c.Message, &durationMS, &c.StdoutDigest); err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		c.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate case history: %w", err)
	}
	return records, nil
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run        Run
		startedAt  string
		durationMS int64
		failFast   int
	)
	err := row.Scan(
		&run.ID,
		&startedAt,
		&durationMS,
		&run.ManifestPath,
		&run.ManifestDigest,
		&run.ToolPath,
		&failFast,
		&run.Passed,
		&run.Failed,
		&run.Skipped,
		&run.Total,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.StartedAt, err = time.Parse(timeLayout, startedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at %q: %w", startedAt, err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.FailFast = failFast != 0
	return run, nil
}
