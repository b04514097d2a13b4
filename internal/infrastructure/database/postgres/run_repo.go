package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patentminer/patentminer/internal/domain/discovery"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/pkg/errors"
)

// RunRepository is the PostgreSQL implementation of discovery.Repository.
type RunRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewRunRepository constructs a ready-to-use RunRepository.
func NewRunRepository(pool *pgxpool.Pool, log logging.Logger) *RunRepository {
	return &RunRepository{pool: pool, logger: log.Named("run_repo")}
}

var _ discovery.Repository = (*RunRepository)(nil)

// Create inserts a new run row.
func (r *RunRepository) Create(ctx context.Context, run *discovery.Run) error {
	diagJSON, err := json.Marshal(run.Diagnostics)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal run diagnostics")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO discovery_runs (
			id, keywords, filing_date_start, filing_date_end, assignee_type,
			max_results, status, failure_reason, diagnostics,
			created_at, started_at, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		run.ID, run.Keywords,
		nullableDate(run.FilingDateStart), nullableDate(run.FilingDateEnd),
		run.AssigneeType, run.MaxResults, run.Status, run.FailureReason,
		diagJSON, run.CreatedAt, run.StartedAt, run.CompletedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert discovery run",
			logging.String("run_id", run.ID), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert discovery run")
	}
	return nil
}

// Update rewrites the mutable fields of a run.
func (r *RunRepository) Update(ctx context.Context, run *discovery.Run) error {
	diagJSON, err := json.Marshal(run.Diagnostics)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal run diagnostics")
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE discovery_runs
		SET status = $2, failure_reason = $3, diagnostics = $4,
		    started_at = $5, completed_at = $6
		WHERE id = $1`,
		run.ID, run.Status, run.FailureReason, diagJSON,
		run.StartedAt, run.CompletedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update discovery run")
	}
	if tag.RowsAffected() == 0 {
		return errors.Newf(errors.ErrCodeDiscoveryRunNotFound, "run %s not found", run.ID)
	}
	return nil
}

// GetByID loads one run.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*discovery.Run, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, keywords, filing_date_start, filing_date_end, assignee_type,
		       max_results, status, failure_reason, diagnostics,
		       created_at, started_at, completed_at
		FROM discovery_runs WHERE id = $1`, id)

	run, err := scanRun(row)
	if err == pgx.ErrNoRows {
		return nil, errors.Newf(errors.ErrCodeDiscoveryRunNotFound, "run %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load discovery run")
	}
	return run, nil
}

// List returns runs newest first.
func (r *RunRepository) List(ctx context.Context, filter discovery.ListFilter) ([]*discovery.Run, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, keywords, filing_date_start, filing_date_end, assignee_type,
		       max_results, status, failure_reason, diagnostics,
		       created_at, started_at, completed_at
		FROM discovery_runs`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, filter.Status, limit, filter.Offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list discovery runs")
	}
	defer rows.Close()

	var runs []*discovery.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan discovery run")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate discovery runs")
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*discovery.Run, error) {
	var (
		run      discovery.Run
		start    *time.Time
		end      *time.Time
		diagJSON []byte
	)
	if err := row.Scan(
		&run.ID, &run.Keywords, &start, &end, &run.AssigneeType,
		&run.MaxResults, &run.Status, &run.FailureReason, &diagJSON,
		&run.CreatedAt, &run.StartedAt, &run.CompletedAt,
	); err != nil {
		return nil, err
	}
	if start != nil {
		run.FilingDateStart = start.Format("2006-01-02")
	}
	if end != nil {
		run.FilingDateEnd = end.Format("2006-01-02")
	}
	if len(diagJSON) > 0 {
		if err := json.Unmarshal(diagJSON, &run.Diagnostics); err != nil {
			return nil, err
		}
	}
	return &run, nil
}

// nullableDate converts an ISO date string to a value pgx can bind, mapping
// the empty string to NULL.
func nullableDate(s string) any {
	if s == "" {
		return nil
	}
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d
	}
	return nil
}
