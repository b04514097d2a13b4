package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patentminer/patentminer/pkg/types"
)

// newAPIStub boots a fake API server and returns its address.
func newAPIStub(t *testing.T, routes map[string]any) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"code": "COMMON_005", "message": "no such route"})
			return
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

// execute runs the CLI with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCommandTree(t *testing.T) {
	cmd := NewRootCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "discover")
	assert.Contains(t, names, "runs")
	assert.Contains(t, names, "patents")
	assert.Contains(t, names, "report")
	assert.Contains(t, names, "dashboard")
}

func TestDiscoverRequiresKeyword(t *testing.T) {
	_, err := execute(t, "discover")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keyword")
}

func TestDiscoverPrintsRanking(t *testing.T) {
	addr := newAPIStub(t, map[string]any{
		"POST /api/v1/runs": types.RunResult{
			Run: &types.Run{
				ID:     "run-1",
				Status: types.RunStatusCompleted,
				Diagnostics: types.Diagnostics{
					Provider: "patentsview_patentsearch", Status: "ok",
					RawCount: 15, FilteredCount: 14, DedupedCount: 10,
				},
			},
			Patents: []types.ScoredPatent{
				{
					Record:           types.PatentRecord{PatentID: "US100", Title: "Portable gas sensor"},
					OpportunityScore: 8.21,
					MarketDomain:     "environmental_monitoring",
				},
			},
		},
	})

	out, err := execute(t, "discover", "-k", "portable sensor", "--server", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "Run run-1: completed")
	assert.Contains(t, out, "raw 15, filtered 14, deduped 10")
	assert.Contains(t, out, "US100")
	assert.Contains(t, out, "8.21")
}

func TestDiscoverZeroResultsShowsHints(t *testing.T) {
	addr := newAPIStub(t, map[string]any{
		"POST /api/v1/runs": types.RunResult{
			Run: &types.Run{
				ID:     "run-2",
				Status: types.RunStatusCompleted,
				Diagnostics: types.Diagnostics{
					Provider: "patentsview_patentsearch", Status: "zero_results",
					NextActions: []string{"broaden keywords"},
				},
			},
		},
	})

	out, err := execute(t, "discover", "-k", "unobtainium", "--server", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "hint: broaden keywords")
	assert.Contains(t, out, "No candidates found")
}

func TestRunsGetJSONOutput(t *testing.T) {
	addr := newAPIStub(t, map[string]any{
		"GET /api/v1/runs/run-1": types.Run{ID: "run-1", Status: "completed"},
	})

	out, err := execute(t, "runs", "get", "run-1", "--server", addr, "--json")
	require.NoError(t, err)

	var run types.Run
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	assert.Equal(t, "run-1", run.ID)
}

func TestRunsGetNotFound(t *testing.T) {
	addr := newAPIStub(t, map[string]any{})

	_, err := execute(t, "runs", "get", "missing", "--server", addr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestPatentsListRequiresRun(t *testing.T) {
	_, err := execute(t, "patents", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run")
}

func TestReportCreate(t *testing.T) {
	addr := newAPIStub(t, map[string]any{
		"POST /api/v1/runs/run-1/reports": types.ReportList{
			Reports: []*types.Report{
				{ID: "rep-1", RunID: "run-1", Format: "csv", ObjectKey: "runs/run-1/report.csv", SizeBytes: 512},
			},
			Count: 1,
		},
	})

	out, err := execute(t, "report", "create", "run-1", "--format", "csv", "--server", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "rep-1")
	assert.Contains(t, out, "runs/run-1/report.csv")
}

func TestDashboardOrdering(t *testing.T) {
	addr := newAPIStub(t, map[string]any{
		"GET /api/v1/dashboard/summary": types.DashboardSummary{
			RunID:           "run-1",
			TotalPatents:    3,
			FilingYearRange: "1999 to 2003",
			AssigneeTypes:   map[string]int{"Company": 2, "Individual": 1},
		},
		"GET /api/v1/dashboard/top": types.PatentList{
			Patents: []types.ScoredPatent{
				{Record: types.PatentRecord{PatentID: "US100", Title: "Portable gas sensor"}, OpportunityScore: 8.2},
			},
			Count: 1,
		},
	})

	out, err := execute(t, "dashboard", "--server", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "Patents: 3, filing years 1999 to 2003")
	assert.Contains(t, out, "Company")
	assert.Contains(t, out, " 1. US100")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a very ...", truncate("a very long title indeed", 10))
}
