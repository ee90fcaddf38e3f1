package store

import (
	"context"
	"fmt"
	"time"
)

// timeLayout keeps started_at lexically sortable.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// RecordRun inserts a run and its cases in one transaction.
// Recording the same run id twice is an error.
func (s *Store) RecordRun(ctx context.Context, run Run, cases []CaseRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record run: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, started_at, duration_ms, manifest_path, manifest_digest, tool_path, fail_fast, passed, failed, skipped, total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.Duration.Milliseconds(),
		run.ManifestPath,
		run.ManifestDigest,
		run.ToolPath,
		boolToInt(run.FailFast),
		run.Passed,
		run.Failed,
		run.Skipped,
		run.Total,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO case_results
		(run_id, idx, description, status, error_kind, message, duration_ms, stdout_digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("record run %s: prepare: %w", run.ID, err)
	}
	defer stmt.Close()

	for _, c := range cases {
		_, err := stmt.ExecContext(ctx,
			run.ID,
			c.Index,
			c.Description,
			c.Status,
			c.ErrorKind,
			c.Message,
			c.Duration.Milliseconds(),
			c.StdoutDigest,
		)
		if err != nil {
			return fmt.Errorf("record run %s: case %d: %w", run.ID, c.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record run %s: commit: %w", run.ID, err)
	}
	return nil
}

// DeleteRunsBefore removes runs that started before cutoff, with their
// cases. It returns the number of runs removed.
func (s *Store) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE started_at < ?`,
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("delete runs: %w", err)
	}
	return result.RowsAffected()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
