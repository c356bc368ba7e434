package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// RecordRun stores run and its files in one transaction.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	ctx = ensureContext(ctx)
	if run == nil || strings.TrimSpace(run.ID) == "" {
		return errors.New("record run: missing run id")
	}
	return retryOnBusy(ctx, func() error {
		return s.recordRunTx(ctx, run)
	})
}

func (s *Store) recordRunTx(ctx context.Context, run *Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, dry_run, output_dir, formats)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.DryRun,
		run.OutputDir,
		strings.Join(run.Formats, ","),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, file := range run.Files {
		outputs := file.Outputs
		if outputs == nil {
			outputs = []string{}
		}
		outputsJSON, err := json.Marshal(outputs)
		if err != nil {
			return fmt.Errorf("marshal outputs: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO files (run_id, position, input, format, status, corrections, outputs_json, error)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			i,
			file.Input,
			file.Format,
			string(file.Status),
			file.Corrections,
			string(outputsJSON),
			nullableString(file.Error),
		); err != nil {
			return fmt.Errorf("insert file %s: %w", file.Input, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first, each with its outcome counts.
// A limit <= 0 returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Summary, error) {
	ctx = ensureContext(ctx)
	query := `SELECT r.id, r.started_at, r.finished_at, r.dry_run, r.output_dir, r.formats,
            COALESCE(SUM(CASE WHEN f.status = 'converted' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN f.status = 'failed' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN f.status = 'skipped' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(json_array_length(f.outputs_json)), 0)
        FROM runs r
        LEFT JOIN files f ON f.run_id = r.id
        GROUP BY r.id
        ORDER BY r.started_at DESC, r.id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var (
			summary           Summary
			started, finished string
			formats           string
		)
		if err := rows.Scan(
			&summary.ID, &started, &finished, &summary.DryRun, &summary.OutputDir, &formats,
			&summary.Converted, &summary.Failed, &summary.Skipped, &summary.Written,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := fillTimes(&summary.Run, started, finished); err != nil {
			return nil, err
		}
		summary.Formats = splitFormats(formats)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return summaries, nil
}

// GetRun loads a run and its files. id may be a unique prefix of the run id.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, dry_run, output_dir, formats
         FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id LIMIT 2`,
		id, escapeLike(id)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	var matches []*Run
	for rows.Next() {
		var (
			run               Run
			started, finished string
			formats           string
		)
		if err := rows.Scan(&run.ID, &started, &finished, &run.DryRun, &run.OutputDir, &formats); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := fillTimes(&run, started, finished); err != nil {
			rows.Close()
			return nil, err
		}
		run.Formats = splitFormats(formats)
		matches = append(matches, &run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	var run *Run
	for _, match := range matches {
		if match.ID == id {
			run = match
		}
	}
	switch {
	case run != nil:
	case len(matches) == 1:
		run = matches[0]
	case len(matches) == 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}

	files, err := s.files(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Files = files
	return run, nil
}

func (s *Store) files(ctx context.Context, runID string) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT input, format, status, corrections, outputs_json, error
         FROM files WHERE run_id = ? ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var (
			file        FileRecord
			status      string
			outputsJSON string
			errText     sql.NullString
		)
		if err := rows.Scan(&file.Input, &file.Format, &status, &file.Corrections, &outputsJSON, &errText); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		file.Status = FileStatus(status)
		file.Error = errText.String
		if err := json.Unmarshal([]byte(outputsJSON), &file.Outputs); err != nil {
			return nil, fmt.Errorf("decode outputs for %s: %w", file.Input, err)
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return files, nil
}

// Prune deletes runs that started before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ensureContext(ctx)
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", cutoff.UTC().Format(timeLayout))
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return removed, nil
}

// Clear removes every recorded run and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, "DELETE FROM runs")
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return removed, nil
}

func fillTimes(run *Run, started, finished string) error {
	var err error
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return fmt.Errorf("parse started_at for %s: %w", run.ID, err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return fmt.Errorf("parse finished_at for %s: %w", run.ID, err)
	}
	return nil
}

func splitFormats(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, ",")
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
