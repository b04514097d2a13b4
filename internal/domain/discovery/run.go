// Package discovery defines the discovery-run aggregate and the diagnostics
// envelope that accompanies every retrieval, successful or not.
package discovery

import (
	"strings"
	"time"
)

// RunStatus tracks a discovery run through its lifecycle.
type RunStatus string

const (
	StatusPending   RunStatus = "pending"
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Pass names used by the multi-pass retrieval pipeline, in execution order.
const (
	PassStrictIntent     = "strict_intent"
	PassExpandedSynonyms = "expanded_synonyms"
	PassTitlePriority    = "title_priority"
	PassBroadFallback    = "broad_fallback"
)

// PassOrder lists the retrieval passes in the order they execute.
var PassOrder = []string{
	PassStrictIntent,
	PassExpandedSynonyms,
	PassTitlePriority,
	PassBroadFallback,
}

// Run is a single discovery execution: the user's intent, the retrieval
// window, and what came back.
type Run struct {
	ID              string      `json:"id"`
	Keywords        []string    `json:"keywords"`
	FilingDateStart string      `json:"filing_date_start,omitempty"`
	FilingDateEnd   string      `json:"filing_date_end,omitempty"`
	AssigneeType    string      `json:"assignee_type,omitempty"`
	MaxResults      int         `json:"max_results"`
	Status          RunStatus   `json:"status"`
	FailureReason   string      `json:"failure_reason,omitempty"`
	Diagnostics     Diagnostics `json:"diagnostics"`
	CreatedAt       time.Time   `json:"created_at"`
	StartedAt       *time.Time  `json:"started_at,omitempty"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
}

// Diagnostics is returned with every run so that an empty result set is
// explainable rather than silent.
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

// NewDiagnostics returns a zeroed envelope for one provider with the pass
// counter map ready to fill.
func NewDiagnostics(provider string) Diagnostics {
	return Diagnostics{
		Provider:   provider,
		Status:     "pending",
		PassCounts: make(map[string]int),
	}
}

// RecordError appends an error line and flips the status unless results were
// still produced by other passes.
func (d *Diagnostics) RecordError(msg string) {
	d.Errors = append(d.Errors, msg)
}

// SummarizeQuery renders a compact human-readable description of the intent
// used in logs and the diagnostics payload.
func SummarizeQuery(keywords []string, start, end string) string {
	var sb strings.Builder
	sb.WriteString("keywords=[")
	sb.WriteString(strings.Join(keywords, ", "))
	sb.WriteString("]")
	if start != "" || end != "" {
		sb.WriteString(" filing=")
		sb.WriteString(start)
		sb.WriteString("..")
		sb.WriteString(end)
	}
	return sb.String()
}
