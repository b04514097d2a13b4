package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/patentminer/patentminer/pkg/types"
)

// ListPatentsOptions filters the per-run patent listing.
type ListPatentsOptions struct {
	MarketDomain string
	MinScore     float64
	Limit        int
	Offset       int
}

// ListRunPatents fetches the scored patents of one run.
func (c *Client) ListRunPatents(ctx context.Context, runID string, opts ListPatentsOptions) (*types.PatentList, error) {
	query := url.Values{}
	if opts.MarketDomain != "" {
		query.Set("market_domain", opts.MarketDomain)
	}
	if opts.MinScore > 0 {
		query.Set("min_score", strconv.FormatFloat(opts.MinScore, 'f', -1, 64))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}

	var out types.PatentList
	if err := c.do(ctx, http.MethodGet, "/api/v1/runs/"+url.PathEscape(runID)+"/patents", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRunPatent fetches one scored patent of a run.
func (c *Client) GetRunPatent(ctx context.Context, runID, patentID string) (*types.ScoredPatent, error) {
	path := "/api/v1/runs/" + url.PathEscape(runID) + "/patents/" + url.PathEscape(patentID)
	var out types.ScoredPatent
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchOptions narrows the full-text search.
type SearchOptions struct {
	RunID        string
	MarketDomain string
	MinScore     float64
	Limit        int
	Offset       int
}

// SearchPatents runs a full-text query over indexed patents.
func (c *Client) SearchPatents(ctx context.Context, text string, opts SearchOptions) (*types.SearchResult, error) {
	query := url.Values{}
	if text != "" {
		query.Set("q", text)
	}
	if opts.RunID != "" {
		query.Set("run_id", opts.RunID)
	}
	if opts.MarketDomain != "" {
		query.Set("market_domain", opts.MarketDomain)
	}
	if opts.MinScore > 0 {
		query.Set("min_score", strconv.FormatFloat(opts.MinScore, 'f', -1, 64))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}

	var out types.SearchResult
	if err := c.do(ctx, http.MethodGet, "/api/v1/patents/search", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
