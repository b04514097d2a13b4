package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/patentminer/patentminer/pkg/types"
)

// CreateReport renders and uploads the run into the given formats.
func (c *Client) CreateReport(ctx context.Context, runID string, req types.CreateReportRequest) (*types.ReportList, error) {
	var out types.ReportList
	path := "/api/v1/runs/" + url.PathEscape(runID) + "/reports"
	if err := c.do(ctx, http.MethodPost, path, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListReports fetches the cataloged reports of one run.
func (c *Client) ListReports(ctx context.Context, runID string) (*types.ReportList, error) {
	var out types.ReportList
	path := "/api/v1/runs/" + url.PathEscape(runID) + "/reports"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadReport fetches a temporary URL for a report artifact.
func (c *Client) DownloadReport(ctx context.Context, reportID string) (*types.ReportDownload, error) {
	var out types.ReportDownload
	path := "/api/v1/reports/" + url.PathEscape(reportID) + "/download"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DashboardSummary fetches the BI overview of the latest dataset.
func (c *Client) DashboardSummary(ctx context.Context) (*types.DashboardSummary, error) {
	var out types.DashboardSummary
	if err := c.do(ctx, http.MethodGet, "/api/v1/dashboard/summary", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DashboardTop fetches the highest-scoring patents of the latest dataset.
func (c *Client) DashboardTop(ctx context.Context, limit int) (*types.PatentList, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var out types.PatentList
	if err := c.do(ctx, http.MethodGet, "/api/v1/dashboard/top", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
