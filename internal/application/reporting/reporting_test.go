package reporting

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patentminer/patentminer/internal/application/analysis"
	discoverydomain "github.com/patentminer/patentminer/internal/domain/discovery"
	"github.com/patentminer/patentminer/internal/domain/finance"
	"github.com/patentminer/patentminer/internal/domain/patent"
	"github.com/patentminer/patentminer/internal/domain/report"
	"github.com/patentminer/patentminer/internal/infrastructure/messaging/kafka"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/pkg/errors"
)

type memUploader struct {
	objects map[string][]byte
	types   map[string]string
	failAll bool
}

func newMemUploader() *memUploader {
	return &memUploader{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (u *memUploader) Upload(_ context.Context, objectKey, contentType string, body []byte) (int64, error) {
	if u.failAll {
		return 0, errors.New(errors.ErrCodeReportUploadFailed, "storage offline")
	}
	u.objects[objectKey] = body
	u.types[objectKey] = contentType
	return int64(len(body)), nil
}

func (u *memUploader) Bucket() string { return "patminer-reports" }

type memCatalog struct {
	reports []*report.Report
}

func (c *memCatalog) Create(_ context.Context, rep *report.Report) error {
	cp := *rep
	c.reports = append(c.reports, &cp)
	return nil
}

func (c *memCatalog) GetByID(_ context.Context, id string) (*report.Report, error) {
	for _, rep := range c.reports {
		if rep.ID == id {
			cp := *rep
			return &cp, nil
		}
	}
	return nil, errors.Newf(errors.ErrCodeReportNotFound, "report %s not found", id)
}

func (c *memCatalog) ListByRun(_ context.Context, runID string) ([]*report.Report, error) {
	var out []*report.Report
	for _, rep := range c.reports {
		if rep.RunID == runID {
			cp := *rep
			out = append(out, &cp)
		}
	}
	return out, nil
}

type capturedEvent struct {
	topic     string
	eventType string
	payload   any
}

type memPublisher struct {
	events []capturedEvent
}

func (p *memPublisher) Publish(_ context.Context, topic, eventType, _ string, payload any) error {
	p.events = append(p.events, capturedEvent{topic, eventType, payload})
	return nil
}

func runFixture() *discoverydomain.Run {
	diag := discoverydomain.NewDiagnostics("patentsview_patentsearch")
	diag.Status = "ok"
	diag.RawCount = 15
	diag.DedupedCount = 10
	diag.PassCounts[discoverydomain.PassStrictIntent] = 3
	diag.QuerySummary = "keywords=[portable, sensor]"
	return &discoverydomain.Run{
		ID:          "run-1",
		Keywords:    []string{"portable", "sensor"},
		MaxResults:  50,
		Status:      discoverydomain.StatusCompleted,
		Diagnostics: diag,
		CreatedAt:   time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC),
	}
}

func patentsFixture() []patent.ScoredPatent {
	return []patent.ScoredPatent{
		{
			Record: patent.Record{
				PatentID: "US102",
				Title:    "Portable sensor | field edition",
				Link:     "https://patents.google.com/patent/US102",
			},
			RunID:            "run-1",
			RelevanceScore:   8.1,
			ViabilityScore:   6.4,
			ExpirationScore:  9.0,
			OpportunityScore: 7.5,
			MarketDomain:     "general_sensors",
		},
		{
			Record: patent.Record{
				PatentID: "US104",
				Title:    "Mobile detector housing",
				Link:     "https://patents.google.com/patent/US104",
			},
			RunID:            "run-1",
			RelevanceScore:   5.2,
			ViabilityScore:   5.8,
			ExpirationScore:  9.0,
			OpportunityScore: 6.2,
			MarketDomain:     "industrial_safety",
		},
	}
}

func analysisFixture() []analysis.Result {
	return []analysis.Result{
		{
			PatentID:        "US102",
			TechnologyTheme: "sensors",
			PatentType:      "apparatus",
			Industry:        "electronics",
			Strategic:       analysis.StrategicAssessment{RecommendationTier: 1},
			Financial:       finance.Metrics{NPVBase: 120000, PaybackPeriodYears: 3.2},
			IntegratedScore: 7.8,
			Confidence:      0.75,
			RankingPosition: 1,
			RedFlags:        nil,
		},
	}
}

func newReportingService(t *testing.T, store Uploader, catalog report.Repository, opts ...Option) *Service {
	t.Helper()
	clock := func() time.Time {
		return time.Date(2026, time.February, 1, 10, 30, 0, 0, time.UTC)
	}
	opts = append([]Option{WithClock(clock)}, opts...)
	return NewService(store, catalog, logging.NewNopLogger(), opts...)
}

func TestRenderJSONRoundTrips(t *testing.T) {
	doc := &Document{
		GeneratedAt: time.Date(2026, time.February, 1, 10, 30, 0, 0, time.UTC),
		Run:         runFixture(),
		Patents:     patentsFixture(),
		Analysis:    analysisFixture(),
	}
	body, err := Render(doc, report.FormatJSON)
	require.NoError(t, err)

	var decoded Document
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "run-1", decoded.Run.ID)
	require.Len(t, decoded.Patents, 2)
	assert.Equal(t, "US102", decoded.Patents[0].Record.PatentID)
	require.Len(t, decoded.Analysis, 1)
	assert.Equal(t, 7.8, decoded.Analysis[0].IntegratedScore)
}

func TestRenderCSVLayout(t *testing.T) {
	doc := &Document{
		GeneratedAt: time.Now(),
		Run:         runFixture(),
		Patents:     patentsFixture(),
		Analysis:    analysisFixture(),
	}
	body, err := Render(doc, report.FormatCSV)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per patent")

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "US102", rows[1][1])
	assert.Equal(t, "7.50", rows[1][3])
	assert.Equal(t, "7.80", rows[1][8], "analysis joined by patent id")
	assert.Equal(t, "1", rows[1][9])
	assert.Equal(t, "120000", rows[1][10])

	// Patent without an analysis row keeps the columns empty.
	assert.Equal(t, "US104", rows[2][1])
	assert.Equal(t, "", rows[2][8])
	assert.Equal(t, "", rows[2][9])
}

func TestRenderMarkdownSections(t *testing.T) {
	doc := &Document{
		GeneratedAt: time.Date(2026, time.February, 1, 10, 30, 0, 0, time.UTC),
		Run:         runFixture(),
		Patents:     patentsFixture(),
		Analysis:    analysisFixture(),
	}
	body, err := Render(doc, report.FormatMarkdown)
	require.NoError(t, err)
	md := string(body)

	assert.Contains(t, md, "# Expired Patent Business Intelligence Report")
	assert.Contains(t, md, "**Run ID:** `run-1`")
	assert.Contains(t, md, "## Retrieval Diagnostics")
	assert.Contains(t, md, "- Pass strict_intent: 3 records")
	assert.Contains(t, md, "## Top Opportunities")
	assert.Contains(t, md, "[US102](https://patents.google.com/patent/US102)")
	assert.Contains(t, md, "## Investment Assessment")
	assert.Contains(t, md, "### US102 (rank 1)")
	// Pipes in titles must not break the table.
	assert.Contains(t, md, `Portable sensor \| field edition`)
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	_, err := Render(&Document{Run: runFixture()}, report.Format("xml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestExportUploadsAndCatalogs(t *testing.T) {
	store := newMemUploader()
	catalog := &memCatalog{}
	svc := newReportingService(t, store, catalog)

	reports, err := svc.Export(context.Background(), runFixture(), patentsFixture(), analysisFixture(),
		[]report.Format{report.FormatJSON, report.FormatCSV, report.FormatMarkdown})
	require.NoError(t, err)
	require.Len(t, reports, 3)
	require.Len(t, catalog.reports, 3)
	require.Len(t, store.objects, 3)

	for _, rep := range reports {
		assert.Equal(t, "run-1", rep.RunID)
		assert.Equal(t, "patminer-reports", rep.Bucket)
		assert.Contains(t, rep.ObjectKey, "runs/run-1/report_20260201_103000.")
		body, ok := store.objects[rep.ObjectKey]
		require.True(t, ok)
		assert.Equal(t, int64(len(body)), rep.SizeBytes)
		assert.Equal(t, contentTypes[rep.Format], store.types[rep.ObjectKey])
	}

	formats := map[report.Format]bool{}
	for _, rep := range reports {
		formats[rep.Format] = true
	}
	assert.True(t, formats[report.FormatJSON])
	assert.True(t, formats[report.FormatCSV])
	assert.True(t, formats[report.FormatMarkdown])
}

func TestExportDefaultsToJSON(t *testing.T) {
	store := newMemUploader()
	svc := newReportingService(t, store, &memCatalog{})

	reports, err := svc.Export(context.Background(), runFixture(), patentsFixture(), nil, nil)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, report.FormatJSON, reports[0].Format)
}

func TestExportSkipsBadFormatKeepsRest(t *testing.T) {
	store := newMemUploader()
	svc := newReportingService(t, store, &memCatalog{})

	reports, err := svc.Export(context.Background(), runFixture(), patentsFixture(), nil,
		[]report.Format{report.Format("xml"), report.FormatJSON})
	require.NoError(t, err, "one good format is enough")
	require.Len(t, reports, 1)
	assert.Equal(t, report.FormatJSON, reports[0].Format)
}

func TestExportReturnsErrorWhenNothingExports(t *testing.T) {
	store := newMemUploader()
	store.failAll = true
	svc := newReportingService(t, store, &memCatalog{})

	_, err := svc.Export(context.Background(), runFixture(), patentsFixture(), nil,
		[]report.Format{report.FormatJSON})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeReportUploadFailed))
}

func TestExportRequiresRun(t *testing.T) {
	svc := newReportingService(t, newMemUploader(), &memCatalog{})
	_, err := svc.Export(context.Background(), nil, nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestExportMirrorsJSONToVault(t *testing.T) {
	vault := t.TempDir()
	store := newMemUploader()
	svc := newReportingService(t, store, &memCatalog{}, WithVaultDir(vault))

	_, err := svc.Export(context.Background(), runFixture(), patentsFixture(), nil,
		[]report.Format{report.FormatJSON, report.FormatCSV})
	require.NoError(t, err)

	entries, err := os.ReadDir(vault)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the JSON export is mirrored")
	assert.True(t, strings.HasPrefix(entries[0].Name(), "patent_discoveries_"))

	body, err := os.ReadFile(filepath.Join(vault, entries[0].Name()))
	require.NoError(t, err)
	var doc Document
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "run-1", doc.Run.ID)
}

func TestExportPublishesEvents(t *testing.T) {
	publisher := &memPublisher{}
	svc := newReportingService(t, newMemUploader(), &memCatalog{}, WithPublisher(publisher))

	reports, err := svc.Export(context.Background(), runFixture(), patentsFixture(), nil,
		[]report.Format{report.FormatJSON})
	require.NoError(t, err)
	require.Len(t, publisher.events, 1)

	event := publisher.events[0]
	assert.Equal(t, kafka.TopicReportGenerated, event.topic)
	assert.Equal(t, "report.generated", event.eventType)
	payload, ok := event.payload.(kafka.ReportGeneratedPayload)
	require.True(t, ok)
	assert.Equal(t, reports[0].ID, payload.ReportID)
	assert.Equal(t, "run-1", payload.RunID)
	assert.Equal(t, reports[0].ObjectKey, payload.ObjectKey)
}
