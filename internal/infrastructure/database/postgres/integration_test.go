//go:build integration

// Integration tests for the PostgreSQL repositories.  They require Docker
// and are gated behind the "integration" build tag:
//
//	go test -tags integration ./internal/infrastructure/database/postgres/
package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/patentminer/patentminer/internal/config"
	discoverydomain "github.com/patentminer/patentminer/internal/domain/discovery"
	"github.com/patentminer/patentminer/internal/domain/patent"
	"github.com/patentminer/patentminer/internal/domain/report"
	"github.com/patentminer/patentminer/internal/infrastructure/database/postgres"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/pkg/errors"
)

// startPostgres launches a PostgreSQL 16 container, applies all migrations,
// and returns a live connection.
func startPostgres(t *testing.T) *postgres.Connection {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "patentminer_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:           host,
		Port:           port.Int(),
		User:           "test",
		Password:       "test",
		Database:       "patentminer_test",
		SSLMode:        "disable",
		MaxConns:       4,
		MinConns:       1,
		MigrationsPath: "../../../../migrations",
	}

	require.NoError(t, postgres.NewMigrator(cfg, logging.NewNopLogger()).Up())

	conn, err := postgres.NewConnection(ctx, cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(conn.Close)
	return conn
}

func newRun() *discoverydomain.Run {
	diag := discoverydomain.NewDiagnostics("patentsview_patentsearch")
	diag.Status = "ok"
	diag.PassCounts[discoverydomain.PassStrictIntent] = 3
	return &discoverydomain.Run{
		ID:          uuid.New().String(),
		Keywords:    []string{"portable", "sensor"},
		MaxResults:  50,
		Status:      discoverydomain.StatusPending,
		Diagnostics: diag,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestRunRepositoryLifecycle(t *testing.T) {
	conn := startPostgres(t)
	ctx := context.Background()
	repo := postgres.NewRunRepository(conn.Pool(), logging.NewNopLogger())

	run := newRun()
	require.NoError(t, repo.Create(ctx, run))

	loaded, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Keywords, loaded.Keywords)
	assert.Equal(t, discoverydomain.StatusPending, loaded.Status)
	assert.Equal(t, 3, loaded.Diagnostics.PassCounts[discoverydomain.PassStrictIntent])

	now := time.Now().UTC()
	run.Status = discoverydomain.StatusCompleted
	run.StartedAt = &now
	run.CompletedAt = &now
	run.Diagnostics.DedupedCount = 10
	require.NoError(t, repo.Update(ctx, run))

	loaded, err = repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, discoverydomain.StatusCompleted, loaded.Status)
	assert.Equal(t, 10, loaded.Diagnostics.DedupedCount)
	require.NotNil(t, loaded.CompletedAt)

	completed, err := repo.List(ctx, discoverydomain.ListFilter{Status: discoverydomain.StatusCompleted, Limit: 10})
	require.NoError(t, err)
	require.Len(t, completed, 1)

	_, err = repo.GetByID(ctx, uuid.New().String())
	assert.True(t, errors.IsCode(err, errors.ErrCodeDiscoveryRunNotFound))
}

func TestPatentRepositoryRoundTrip(t *testing.T) {
	conn := startPostgres(t)
	ctx := context.Background()

	runs := postgres.NewRunRepository(conn.Pool(), logging.NewNopLogger())
	patents := postgres.NewPatentRepository(conn.Pool(), logging.NewNopLogger())

	run := newRun()
	require.NoError(t, runs.Create(ctx, run))

	filing := time.Date(2001, 3, 10, 0, 0, 0, 0, time.UTC)
	batch := []patent.ScoredPatent{
		{
			Record: patent.Record{
				PatentID:   "6823036",
				Title:      "Portable gas sensor",
				Abstract:   "A portable sensor for monitoring air quality.",
				PatentType: "utility",
				FilingDate: &filing,
				Passes:     []string{discoverydomain.PassStrictIntent, discoverydomain.PassTitlePriority},
			},
			RunID:            run.ID,
			RelevanceScore:   7.5,
			ViabilityScore:   6.8,
			ExpirationScore:  9.0,
			OpportunityScore: 7.4,
			MarketDomain:     "environmental_monitoring",
			Breakdown:        []byte(`{"scoring_version":"v2.0.0"}`),
			ScoredAt:         time.Now().UTC(),
		},
		{
			Record:           patent.Record{PatentID: "6900000", Title: "Measurement apparatus"},
			RunID:            run.ID,
			OpportunityScore: 4.2,
			MarketDomain:     "industrial_iot",
			Breakdown:        []byte(`{}`),
			ScoredAt:         time.Now().UTC(),
		},
	}
	require.NoError(t, patents.SaveBatch(ctx, batch))

	// Saving the same batch again must upsert, not duplicate.
	require.NoError(t, patents.SaveBatch(ctx, batch))

	loaded, err := patents.GetByPatentID(ctx, run.ID, "6823036")
	require.NoError(t, err)
	assert.Equal(t, "Portable gas sensor", loaded.Record.Title)
	assert.InDelta(t, 7.4, loaded.OpportunityScore, 1e-9)
	assert.ElementsMatch(t,
		[]string{discoverydomain.PassStrictIntent, discoverydomain.PassTitlePriority},
		loaded.Record.Passes)
	require.NotNil(t, loaded.Record.FilingDate)
	assert.Equal(t, 2001, loaded.Record.FilingDate.Year())
	assert.JSONEq(t, `{"scoring_version":"v2.0.0"}`, string(loaded.Breakdown))

	list, err := patents.List(ctx, patent.ListFilter{RunID: run.ID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "6823036", list[0].Record.PatentID, "highest opportunity first")

	filtered, err := patents.List(ctx, patent.ListFilter{RunID: run.ID, MinScore: 5})
	require.NoError(t, err)
	require.Len(t, filtered, 1)

	counts, err := patents.CountByDomain(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"environmental_monitoring": 1, "industrial_iot": 1}, counts)

	_, err = patents.GetByPatentID(ctx, run.ID, "0000000")
	assert.True(t, errors.IsCode(err, errors.ErrCodePatentNotFound))
}

func TestReportRepositoryRoundTrip(t *testing.T) {
	conn := startPostgres(t)
	ctx := context.Background()

	runs := postgres.NewRunRepository(conn.Pool(), logging.NewNopLogger())
	reports := postgres.NewReportRepository(conn.Pool(), logging.NewNopLogger())

	run := newRun()
	require.NoError(t, runs.Create(ctx, run))

	rep := &report.Report{
		ID:        uuid.New().String(),
		RunID:     run.ID,
		Format:    report.FormatCSV,
		Bucket:    "patminer-reports",
		ObjectKey: "runs/" + run.ID + "/report.csv",
		SizeBytes: 512,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, reports.Create(ctx, rep))

	loaded, err := reports.GetByID(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, report.FormatCSV, loaded.Format)
	assert.Equal(t, rep.ObjectKey, loaded.ObjectKey)

	byRun, err := reports.ListByRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, byRun, 1)

	_, err = reports.GetByID(ctx, uuid.New().String())
	assert.True(t, errors.IsCode(err, errors.ErrCodeReportNotFound))
}
