package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patentminer/patentminer/internal/domain/patent"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/pkg/errors"
)

// PatentRepository is the PostgreSQL implementation of patent.Repository.
type PatentRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewPatentRepository constructs a ready-to-use PatentRepository.
func NewPatentRepository(pool *pgxpool.Pool, log logging.Logger) *PatentRepository {
	return &PatentRepository{pool: pool, logger: log.Named("patent_repo")}
}

var _ patent.Repository = (*PatentRepository)(nil)

const scoredPatentColumns = `
	run_id, patent_id, title, abstract, patent_type,
	grant_date, filing_date, assignee_org, assignee_type,
	link, source_provider, passes,
	relevance_score, viability_score, expiration_score, opportunity_score,
	market_domain, breakdown, scored_at`

// SaveBatch upserts all scored patents for a run inside one transaction.
// Re-scoring the same run replaces the previous rows per patent.
func (r *PatentRepository) SaveBatch(ctx context.Context, patents []patent.ScoredPatent) error {
	if len(patents) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, sp := range patents {
		batch.Queue(`
			INSERT INTO scored_patents (`+scoredPatentColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
			ON CONFLICT (run_id, patent_id) DO UPDATE SET
				relevance_score = EXCLUDED.relevance_score,
				viability_score = EXCLUDED.viability_score,
				expiration_score = EXCLUDED.expiration_score,
				opportunity_score = EXCLUDED.opportunity_score,
				market_domain = EXCLUDED.market_domain,
				breakdown = EXCLUDED.breakdown,
				passes = EXCLUDED.passes,
				scored_at = EXCLUDED.scored_at`,
			sp.RunID, sp.Record.PatentID, sp.Record.Title, sp.Record.Abstract,
			sp.Record.PatentType, sp.Record.GrantDate, sp.Record.FilingDate,
			sp.Record.AssigneeOrg, sp.Record.AssigneeType, sp.Record.Link,
			sp.Record.SourceProvider, sp.Record.Passes,
			sp.RelevanceScore, sp.ViabilityScore, sp.ExpirationScore,
			sp.OpportunityScore, sp.MarketDomain, sp.Breakdown, sp.ScoredAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range patents {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to upsert scored patent")
		}
	}
	if err := br.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to flush scored patent batch")
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit scored patent batch")
	}

	r.logger.Debug("saved scored patents",
		logging.String("run_id", patents[0].RunID),
		logging.Int("count", len(patents)))
	return nil
}

// GetByPatentID loads one scored patent from a run.
func (r *PatentRepository) GetByPatentID(ctx context.Context, runID, patentID string) (*patent.ScoredPatent, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+scoredPatentColumns+`
		FROM scored_patents WHERE run_id = $1 AND patent_id = $2`,
		runID, patentID)

	sp, err := scanScoredPatent(row)
	if err == pgx.ErrNoRows {
		return nil, errors.Newf(errors.ErrCodePatentNotFound,
			"patent %s not found in run %s", patentID, runID)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load scored patent")
	}
	return sp, nil
}

// List returns scored patents ordered by opportunity score, best first.
func (r *PatentRepository) List(ctx context.Context, filter patent.ListFilter) ([]patent.ScoredPatent, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + scoredPatentColumns + `
		FROM scored_patents
		WHERE ($1 = '' OR run_id::text = $1)
		  AND ($2 = '' OR market_domain = $2)
		  AND opportunity_score >= $3
		ORDER BY opportunity_score DESC, patent_id ASC
		LIMIT $4 OFFSET $5`

	rows, err := r.pool.Query(ctx, query,
		filter.RunID, filter.MarketDomain, filter.MinScore, limit, filter.Offset)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list scored patents")
	}
	defer rows.Close()

	var out []patent.ScoredPatent
	for rows.Next() {
		sp, err := scanScoredPatent(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan scored patent")
		}
		out = append(out, *sp)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate scored patents")
	}
	return out, nil
}

// CountByDomain aggregates patents per market domain for one run.
func (r *PatentRepository) CountByDomain(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT market_domain, COUNT(*)
		FROM scored_patents WHERE run_id = $1
		GROUP BY market_domain`, runID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count patents by domain")
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var domain string
		var n int
		if err := rows.Scan(&domain, &n); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan domain count")
		}
		counts[domain] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate domain counts")
	}
	return counts, nil
}

func scanScoredPatent(row rowScanner) (*patent.ScoredPatent, error) {
	var sp patent.ScoredPatent
	if err := row.Scan(
		&sp.RunID, &sp.Record.PatentID, &sp.Record.Title, &sp.Record.Abstract,
		&sp.Record.PatentType, &sp.Record.GrantDate, &sp.Record.FilingDate,
		&sp.Record.AssigneeOrg, &sp.Record.AssigneeType, &sp.Record.Link,
		&sp.Record.SourceProvider, &sp.Record.Passes,
		&sp.RelevanceScore, &sp.ViabilityScore, &sp.ExpirationScore,
		&sp.OpportunityScore, &sp.MarketDomain, &sp.Breakdown, &sp.ScoredAt,
	); err != nil {
		return nil, err
	}
	return &sp, nil
}
