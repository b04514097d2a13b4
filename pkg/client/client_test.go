package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patentminer/patentminer/pkg/types"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	return c, srv
}

func TestNewClientValidatesURL(t *testing.T) {
	_, err := NewClient("ftp://example.com")
	assert.Error(t, err)

	_, err = NewClient("http://localhost:8080/")
	assert.NoError(t, err)
}

func TestCreateRun(t *testing.T) {
	var captured types.CreateRunRequest
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/runs", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(types.RunResult{
			Run: &types.Run{ID: "run-1", Status: types.RunStatusCompleted},
			Patents: []types.ScoredPatent{
				{Record: types.PatentRecord{PatentID: "US100"}, OpportunityScore: 8.2},
			},
		})
	})

	result, err := c.CreateRun(context.Background(), types.CreateRunRequest{
		Keywords:   []string{"portable", "sensor"},
		MaxResults: 25,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"portable", "sensor"}, captured.Keywords)
	assert.Equal(t, 25, captured.MaxResults)
	assert.Equal(t, "run-1", result.Run.ID)
	require.Len(t, result.Patents, 1)
	assert.Equal(t, "US100", result.Patents[0].Record.PatentID)
}

func TestListRunsQuery(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "completed", r.URL.Query().Get("status"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(types.RunList{Runs: []*types.Run{{ID: "run-1"}}, Count: 1})
	})

	list, err := c.ListRuns(context.Background(), ListRunsOptions{Status: "completed", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)
}

func TestSearchPatentsQuery(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/patents/search", r.URL.Path)
		assert.Equal(t, "gas sensor", r.URL.Query().Get("q"))
		assert.Equal(t, "run-1", r.URL.Query().Get("run_id"))
		assert.Equal(t, "3.5", r.URL.Query().Get("min_score"))
		_ = json.NewEncoder(w).Encode(types.SearchResult{Total: 2})
	})

	result, err := c.SearchPatents(context.Background(), "gas sensor", SearchOptions{RunID: "run-1", MinScore: 3.5})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
}

func TestAPIErrorDecoding(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"code": "DISC_006", "message": "run missing not found"})
	})

	_, err := c.GetRun(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "DISC_006", apiErr.Code)
	assert.Contains(t, apiErr.Error(), "run missing not found")
}

func TestDownloadReport(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/reports/rep-1/download", r.URL.Path)
		_ = json.NewEncoder(w).Encode(types.ReportDownload{ReportID: "rep-1", URL: "https://minio.local/x"})
	})

	dl, err := c.DownloadReport(context.Background(), "rep-1")
	require.NoError(t, err)
	assert.Equal(t, "https://minio.local/x", dl.URL)
}

func TestDashboardSummary(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/dashboard/summary", r.URL.Path)
		_ = json.NewEncoder(w).Encode(types.DashboardSummary{RunID: "run-1", TotalPatents: 42})
	})

	summary, err := c.DashboardSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, summary.TotalPatents)
}
