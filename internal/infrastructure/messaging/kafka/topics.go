// Package kafka carries the asynchronous pipeline events: discovery run
// requests, completions, per-patent analysis results, and report artifacts.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/patentminer/patentminer/pkg/errors"
)

// Topic constants.
const (
	TopicDiscoveryRequested = "discovery.requested"
	TopicDiscoveryCompleted = "discovery.completed"
	TopicPatentAnalyzed     = "patent.analyzed"
	TopicReportGenerated    = "report.generated"
	TopicDeadLetter         = "dead_letter.default"
)

// EventEnvelope standardizes event messages across topics.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// DiscoveryRequestedPayload asks a worker to execute a discovery run.
type DiscoveryRequestedPayload struct {
	RunID           string   `json:"run_id"`
	Keywords        []string `json:"keywords"`
	FilingDateStart string   `json:"filing_date_start,omitempty"`
	FilingDateEnd   string   `json:"filing_date_end,omitempty"`
	AssigneeType    string   `json:"assignee_type,omitempty"`
	MaxResults      int      `json:"max_results"`
}

// DiscoveryCompletedPayload announces a finished run with headline counts.
type DiscoveryCompletedPayload struct {
	RunID         string    `json:"run_id"`
	Status        string    `json:"status"`
	PatentCount   int       `json:"patent_count"`
	DedupedCount  int       `json:"deduped_count"`
	FailureReason string    `json:"failure_reason,omitempty"`
	CompletedAt   time.Time `json:"completed_at"`
}

// PatentAnalyzedPayload carries one scored-and-analyzed patent summary.
type PatentAnalyzedPayload struct {
	RunID            string    `json:"run_id"`
	PatentID         string    `json:"patent_id"`
	MarketDomain     string    `json:"market_domain"`
	OpportunityScore float64   `json:"opportunity_score"`
	IntegratedScore  float64   `json:"integrated_score"`
	Tier             int       `json:"tier"`
	AnalyzedAt       time.Time `json:"analyzed_at"`
}

// ReportGeneratedPayload points at an uploaded report artifact.
type ReportGeneratedPayload struct {
	ReportID  string    `json:"report_id"`
	RunID     string    `json:"run_id"`
	Format    string    `json:"format"`
	ObjectKey string    `json:"object_key"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEventEnvelope wraps a payload in the standard envelope.
func NewEventEnvelope(eventType, source string, payload any) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal event payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "v1",
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the payload into target.
func (e *EventEnvelope) DecodePayload(target any) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeValidation, "event payload is empty")
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal event payload")
	}
	return nil
}

// DecodeEnvelope parses a raw message body into an envelope.
func DecodeEnvelope(value []byte) (*EventEnvelope, error) {
	if len(value) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal event envelope")
	}
	return &env, nil
}
