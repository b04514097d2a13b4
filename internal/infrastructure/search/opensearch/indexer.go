package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/patentminer/patentminer/internal/domain/patent"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/pkg/errors"
)

// patentIndexMapping keeps title and abstract analyzable while the scores and
// domain stay filterable keywords/numerics.
const patentIndexMapping = `{
	"settings": {"number_of_shards": 1, "number_of_replicas": 1},
	"mappings": {
		"properties": {
			"run_id":            {"type": "keyword"},
			"patent_id":         {"type": "keyword"},
			"title":             {"type": "text"},
			"abstract":          {"type": "text"},
			"patent_type":       {"type": "keyword"},
			"market_domain":     {"type": "keyword"},
			"assignee_org":      {"type": "keyword"},
			"opportunity_score": {"type": "double"},
			"viability_score":   {"type": "double"},
			"grant_date":        {"type": "date"},
			"filing_date":       {"type": "date"},
			"scored_at":         {"type": "date"}
		}
	}
}`

// patentDocument is the indexed projection of a scored patent.
type patentDocument struct {
	RunID            string     `json:"run_id"`
	PatentID         string     `json:"patent_id"`
	Title            string     `json:"title"`
	Abstract         string     `json:"abstract"`
	PatentType       string     `json:"patent_type"`
	MarketDomain     string     `json:"market_domain"`
	AssigneeOrg      string     `json:"assignee_org"`
	OpportunityScore float64    `json:"opportunity_score"`
	ViabilityScore   float64    `json:"viability_score"`
	GrantDate        *time.Time `json:"grant_date,omitempty"`
	FilingDate       *time.Time `json:"filing_date,omitempty"`
	ScoredAt         time.Time  `json:"scored_at"`
}

func toDocument(sp patent.ScoredPatent) patentDocument {
	return patentDocument{
		RunID:            sp.RunID,
		PatentID:         sp.Record.PatentID,
		Title:            sp.Record.Title,
		Abstract:         sp.Record.Abstract,
		PatentType:       sp.Record.PatentType,
		MarketDomain:     sp.MarketDomain,
		AssigneeOrg:      sp.Record.AssigneeOrg,
		OpportunityScore: sp.OpportunityScore,
		ViabilityScore:   sp.ViabilityScore,
		GrantDate:        sp.Record.GrantDate,
		FilingDate:       sp.Record.FilingDate,
		ScoredAt:         sp.ScoredAt,
	}
}

// docID keeps re-indexing idempotent across repeated runs.
func docID(sp patent.ScoredPatent) string {
	return sp.RunID + ":" + sp.Record.PatentID
}

// EnsureIndex creates the patent index if it does not exist.
func (c *Client) EnsureIndex(ctx context.Context) error {
	existsReq := opensearchapi.IndicesExistsRequest{Index: []string{c.index}}
	resp, err := existsReq.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to check patent index")
	}
	resp.Body.Close()
	if resp.StatusCode == 200 {
		return nil
	}

	createReq := opensearchapi.IndicesCreateRequest{
		Index: c.index,
		Body:  strings.NewReader(patentIndexMapping),
	}
	createResp, err := createReq.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create patent index")
	}
	defer createResp.Body.Close()
	if createResp.IsError() {
		return errors.Newf(errors.ErrCodeInternal, "patent index creation returned %s", createResp.Status())
	}

	c.logger.Info("created patent index", logging.String("index", c.index))
	return nil
}

// IndexBatch bulk-indexes scored patents.  Individual item failures are
// reported in aggregate rather than aborting the batch.
func (c *Client) IndexBatch(ctx context.Context, patents []patent.ScoredPatent) error {
	if len(patents) == 0 {
		return nil
	}

	body, err := buildBulkBody(c.index, patents)
	if err != nil {
		return err
	}

	req := opensearchapi.BulkRequest{Body: bytes.NewReader(body)}
	resp, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "bulk index failed")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return errors.Newf(errors.ErrCodeExternalService, "bulk index returned %s", resp.Status())
	}

	var result struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode bulk response")
	}
	if result.Errors {
		failed := 0
		for _, item := range result.Items {
			for _, op := range item {
				if op.Status >= 400 {
					failed++
				}
			}
		}
		c.logger.Warn("bulk index completed with item failures",
			logging.Int("failed", failed),
			logging.Int("total", len(patents)))
	}

	c.logger.Debug("indexed scored patents", logging.Int("count", len(patents)))
	return nil
}

// buildBulkBody renders the newline-delimited bulk payload.
func buildBulkBody(index string, patents []patent.ScoredPatent) ([]byte, error) {
	var buf bytes.Buffer
	for _, sp := range patents {
		action := map[string]map[string]string{
			"index": {"_index": index, "_id": docID(sp)},
		}
		actionLine, err := json.Marshal(action)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal bulk action")
		}
		docLine, err := json.Marshal(toDocument(sp))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal patent document")
		}
		buf.Write(actionLine)
		buf.WriteByte('\n')
		buf.Write(docLine)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
