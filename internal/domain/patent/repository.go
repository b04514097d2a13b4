package patent

import (
	"context"
	"time"
)

// ScoredPatent couples a Record with the scores computed for it during a
// discovery run.  This is the persisted shape; score breakdowns live on the
// scoring types and are stored as JSON alongside.
type ScoredPatent struct {
	Record Record `json:"record"`

	RunID string `json:"run_id"`

	RelevanceScore   float64 `json:"relevance_score"`
	ViabilityScore   float64 `json:"viability_score"`
	ExpirationScore  float64 `json:"expiration_score"`
	OpportunityScore float64 `json:"opportunity_score"`

	MarketDomain string `json:"market_domain"`

	// Breakdown holds the serialized per-component scorecards for
	// explainability queries.
	Breakdown []byte `json:"-"`

	ScoredAt time.Time `json:"scored_at"`
}

// ListFilter narrows repository queries.  Zero values mean "no constraint".
type ListFilter struct {
	RunID        string
	MarketDomain string
	MinScore     float64
	Limit        int
	Offset       int
}

// Repository is the persistence port for scored patents.  The postgres
// adapter implements it; tests use in-memory fakes.
type Repository interface {
	SaveBatch(ctx context.Context, patents []ScoredPatent) error
	GetByPatentID(ctx context.Context, runID, patentID string) (*ScoredPatent, error)
	List(ctx context.Context, filter ListFilter) ([]ScoredPatent, error)
	CountByDomain(ctx context.Context, runID string) (map[string]int, error)
}
