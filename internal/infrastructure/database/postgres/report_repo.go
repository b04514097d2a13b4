package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patentminer/patentminer/internal/domain/report"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/pkg/errors"
)

// ReportRepository is the PostgreSQL implementation of report.Repository.
type ReportRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewReportRepository constructs a ready-to-use ReportRepository.
func NewReportRepository(pool *pgxpool.Pool, log logging.Logger) *ReportRepository {
	return &ReportRepository{pool: pool, logger: log.Named("report_repo")}
}

var _ report.Repository = (*ReportRepository)(nil)

// Create catalogs a freshly uploaded artifact.
func (r *ReportRepository) Create(ctx context.Context, rep *report.Report) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reports (id, run_id, format, bucket, object_key, size_bytes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		rep.ID, rep.RunID, rep.Format, rep.Bucket, rep.ObjectKey, rep.SizeBytes, rep.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert report")
	}
	return nil
}

// GetByID loads one report catalog entry.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*report.Report, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, run_id, format, bucket, object_key, size_bytes, created_at
		FROM reports WHERE id = $1`, id)

	var rep report.Report
	err := row.Scan(&rep.ID, &rep.RunID, &rep.Format, &rep.Bucket,
		&rep.ObjectKey, &rep.SizeBytes, &rep.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, errors.Newf(errors.ErrCodeReportNotFound, "report %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load report")
	}
	return &rep, nil
}

// ListByRun returns all artifacts exported for a run, newest first.
func (r *ReportRepository) ListByRun(ctx context.Context, runID string) ([]*report.Report, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, run_id, format, bucket, object_key, size_bytes, created_at
		FROM reports WHERE run_id = $1 ORDER BY created_at DESC`, runID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list reports")
	}
	defer rows.Close()

	var out []*report.Report
	for rows.Next() {
		var rep report.Report
		if err := rows.Scan(&rep.ID, &rep.RunID, &rep.Format, &rep.Bucket,
			&rep.ObjectKey, &rep.SizeBytes, &rep.CreatedAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan report")
		}
		out = append(out, &rep)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate reports")
	}
	return out, nil
}
