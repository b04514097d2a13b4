package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/patentminer/patentminer/pkg/types"
)

// CreateRun executes a discovery run and returns the ranked candidates with
// diagnostics.
func (c *Client) CreateRun(ctx context.Context, req types.CreateRunRequest) (*types.RunResult, error) {
	var out types.RunResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/runs", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRun fetches one run with diagnostics.
func (c *Client) GetRun(ctx context.Context, runID string) (*types.Run, error) {
	var out types.Run
	if err := c.do(ctx, http.MethodGet, "/api/v1/runs/"+url.PathEscape(runID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRunsOptions filters the run listing.
type ListRunsOptions struct {
	Status string
	Limit  int
	Offset int
}

// ListRuns fetches recent runs.
func (c *Client) ListRuns(ctx context.Context, opts ListRunsOptions) (*types.RunList, error) {
	query := url.Values{}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}

	var out types.RunList
	if err := c.do(ctx, http.MethodGet, "/api/v1/runs", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
