// Package types holds the wire representations exchanged with the
// PatentMiner REST API.  The JSON layout matches what the API server emits;
// SDK and CLI consumers use these instead of importing server internals.
package types

import "time"

// Run statuses.
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Diagnostics explains how a discovery run went, pass by pass.
type Diagnostics struct {
	Provider      string         `json:"provider"`
	Status        string         `json:"status"`
	HTTPStatus    int            `json:"http_status,omitempty"`
	RawCount      int            `json:"raw_count"`
	FilteredCount int            `json:"filtered_count"`
	DedupedCount  int            `json:"deduped_count"`
	PassCounts    map[string]int `json:"pass_counts"`
	QuerySummary  string         `json:"query_summary"`
	Errors        []string       `json:"errors,omitempty"`
	Warnings      []string       `json:"warnings,omitempty"`
	NextActions   []string       `json:"next_actions,omitempty"`
}

// Run is one discovery run with its lifecycle and diagnostics.
type Run struct {
	ID              string      `json:"id"`
	Keywords        []string    `json:"keywords"`
	FilingDateStart string      `json:"filing_date_start,omitempty"`
	FilingDateEnd   string      `json:"filing_date_end,omitempty"`
	AssigneeType    string      `json:"assignee_type,omitempty"`
	MaxResults      int         `json:"max_results"`
	Status          string      `json:"status"`
	FailureReason   string      `json:"failure_reason,omitempty"`
	Diagnostics     Diagnostics `json:"diagnostics"`
	CreatedAt       time.Time   `json:"created_at"`
	StartedAt       *time.Time  `json:"started_at,omitempty"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
}

// PatentRecord is the normalized patent document.
type PatentRecord struct {
	PatentID       string     `json:"patent_id"`
	Title          string     `json:"title"`
	Abstract       string     `json:"abstract"`
	PatentType     string     `json:"patent_type,omitempty"`
	GrantDate      *time.Time `json:"grant_date,omitempty"`
	FilingDate     *time.Time `json:"filing_date,omitempty"`
	AssigneeOrg    string     `json:"assignee_org,omitempty"`
	AssigneeType   string     `json:"assignee_type,omitempty"`
	Link           string     `json:"link,omitempty"`
	SourceProvider string     `json:"source_provider,omitempty"`
	Passes         []string   `json:"passes,omitempty"`
}

// ScoredPatent is one ranked discovery candidate.
type ScoredPatent struct {
	Record           PatentRecord `json:"record"`
	RunID            string       `json:"run_id"`
	RelevanceScore   float64      `json:"relevance_score"`
	ViabilityScore   float64      `json:"viability_score"`
	ExpirationScore  float64      `json:"expiration_score"`
	OpportunityScore float64      `json:"opportunity_score"`
	MarketDomain     string       `json:"market_domain"`
	ScoredAt         time.Time    `json:"scored_at"`
}

// CreateRunRequest starts a discovery run.
type CreateRunRequest struct {
	Keywords        []string `json:"keywords"`
	FilingDateStart string   `json:"filing_date_start,omitempty"`
	FilingDateEnd   string   `json:"filing_date_end,omitempty"`
	AssigneeType    string   `json:"assignee_type,omitempty"`
	MaxResults      int      `json:"max_results,omitempty"`
}

// RunResult is the response to a completed discovery request.
type RunResult struct {
	Run     *Run           `json:"run"`
	Patents []ScoredPatent `json:"patents"`
}

// RunList wraps the run listing response.
type RunList struct {
	Runs  []*Run `json:"runs"`
	Count int    `json:"count"`
}

// PatentList wraps the per-run patent listing response.
type PatentList struct {
	Patents []ScoredPatent `json:"patents"`
	Count   int            `json:"count"`
}

// SearchHit is one full-text search result.
type SearchHit struct {
	RunID            string  `json:"run_id"`
	PatentID         string  `json:"patent_id"`
	Title            string  `json:"title"`
	Abstract         string  `json:"abstract"`
	MarketDomain     string  `json:"market_domain"`
	OpportunityScore float64 `json:"opportunity_score"`
}

// SearchResult wraps full-text search hits.
type SearchResult struct {
	Total int         `json:"total"`
	Hits  []SearchHit `json:"hits"`
}

// Report is one exported artifact in the catalog.
type Report struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Format    string    `json:"format"`
	Bucket    string    `json:"bucket"`
	ObjectKey string    `json:"object_key"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateReportRequest selects export formats for a run.
type CreateReportRequest struct {
	Formats []string `json:"formats"`
	Analyze bool     `json:"analyze"`
}

// ReportList wraps the report listing response.
type ReportList struct {
	Reports []*Report `json:"reports"`
	Count   int       `json:"count"`
}

// ReportDownload carries a temporary artifact URL.
type ReportDownload struct {
	ReportID  string `json:"report_id"`
	URL       string `json:"url"`
	ExpiresIn string `json:"expires_in"`
}

// DashboardSummary is the BI overview of the latest dataset.
type DashboardSummary struct {
	RunID              string         `json:"run_id"`
	GeneratedAt        time.Time      `json:"generated_at"`
	TotalPatents       int            `json:"total_patents"`
	FilingYearRange    string         `json:"filing_year_range"`
	AverageOpportunity float64        `json:"average_opportunity"`
	AssigneeTypes      map[string]int `json:"assignee_types"`
	PatentTypes        map[string]int `json:"patent_types"`
	MarketDomains      map[string]int `json:"market_domains"`
	PassCounts         map[string]int `json:"pass_counts"`
	TierCounts         map[int]int    `json:"tier_counts,omitempty"`
	SourceFile         string         `json:"source_file"`
	LoadedAt           time.Time      `json:"loaded_at"`
}
