package opensearch

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/patentminer/patentminer/pkg/errors"
)

// SearchQuery narrows a full-text patent search.
type SearchQuery struct {
	Text         string
	RunID        string
	MarketDomain string
	MinScore     float64
	From         int
	Size         int
}

// Hit is one search result with its relevance score from the engine.
type Hit struct {
	RunID            string  `json:"run_id"`
	PatentID         string  `json:"patent_id"`
	Title            string  `json:"title"`
	Abstract         string  `json:"abstract"`
	MarketDomain     string  `json:"market_domain"`
	OpportunityScore float64 `json:"opportunity_score"`
	EngineScore      float64 `json:"-"`
}

// SearchResult carries hits plus the total match count.
type SearchResult struct {
	Total int
	Hits  []Hit
}

// buildSearchBody renders the bool query: full text over title and abstract,
// keyword filters for run and domain, and a floor on opportunity score.
func buildSearchBody(q SearchQuery) map[string]any {
	must := []map[string]any{}
	if q.Text != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":  q.Text,
				"fields": []string{"title^2", "abstract"},
			},
		})
	}

	filter := []map[string]any{}
	if q.RunID != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"run_id": q.RunID}})
	}
	if q.MarketDomain != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"market_domain": q.MarketDomain}})
	}
	if q.MinScore > 0 {
		filter = append(filter, map[string]any{
			"range": map[string]any{"opportunity_score": map[string]any{"gte": q.MinScore}},
		})
	}

	boolQuery := map[string]any{}
	if len(must) > 0 {
		boolQuery["must"] = must
	} else {
		boolQuery["must"] = []map[string]any{{"match_all": map[string]any{}}}
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	size := q.Size
	if size <= 0 {
		size = 20
	}

	return map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"from":  q.From,
		"size":  size,
		"sort": []map[string]any{
			{"_score": map[string]any{"order": "desc"}},
			{"opportunity_score": map[string]any{"order": "desc"}},
		},
	}
}

// Search runs a full-text query against the patent index.
func (c *Client) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	body, err := json.Marshal(buildSearchBody(q))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal search query")
	}

	req := opensearchapi.SearchRequest{
		Index: []string{c.index},
		Body:  bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "patent search failed")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return nil, errors.Newf(errors.ErrCodeExternalService, "patent search returned %s", resp.Status())
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Score  float64 `json:"_score"`
				Source Hit     `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode search response")
	}

	result := &SearchResult{Total: parsed.Hits.Total.Value}
	for _, h := range parsed.Hits.Hits {
		hit := h.Source
		hit.EngineScore = h.Score
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}
