package main

import (
	"context"

	"github.com/patentminer/patentminer/internal/application/analysis"
	"github.com/patentminer/patentminer/internal/application/dashboard"
	"github.com/patentminer/patentminer/internal/application/discovery"
	"github.com/patentminer/patentminer/internal/application/reporting"
	"github.com/patentminer/patentminer/internal/config"
	"github.com/patentminer/patentminer/internal/infrastructure/database/postgres"
	"github.com/patentminer/patentminer/internal/infrastructure/database/redis"
	"github.com/patentminer/patentminer/internal/infrastructure/market"
	"github.com/patentminer/patentminer/internal/infrastructure/messaging/kafka"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/prometheus"
	"github.com/patentminer/patentminer/internal/infrastructure/patentsview"
	"github.com/patentminer/patentminer/internal/infrastructure/search/opensearch"
	"github.com/patentminer/patentminer/internal/infrastructure/storage/minio"
	httpserver "github.com/patentminer/patentminer/internal/interfaces/http"
	"github.com/patentminer/patentminer/internal/interfaces/http/handlers"
)

// dependencies holds everything the API server wires together.  Postgres and
// MinIO are required; Redis, Kafka, and OpenSearch are optional and their
// absence degrades the related features instead of failing startup.
type dependencies struct {
	Logger  logging.Logger
	Metrics *prometheus.Metrics

	DB       *postgres.Connection
	Migrator *postgres.Migrator
	Redis    *redis.Client
	Producer *kafka.Producer
	Search   *opensearch.Client

	Artifacts *minio.ArtifactStore
	Runs      *postgres.RunRepository
	Patents   *postgres.PatentRepository
	Reports   *postgres.ReportRepository

	Discovery *discovery.Service
	Analysis  *analysis.Service
	Reporting *reporting.Service
	Dashboard *dashboard.Store
}

func buildDependencies(ctx context.Context, cfg *config.Config, logger logging.Logger) (*dependencies, error) {
	metrics := prometheus.New()

	db, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	artifacts, err := minio.NewArtifactStore(ctx, cfg.MinIO, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	deps := &dependencies{
		Logger:    logger,
		Metrics:   metrics,
		DB:        db,
		Migrator:  postgres.NewMigrator(cfg.Database, logger),
		Artifacts: artifacts,
		Runs:      postgres.NewRunRepository(db.Pool(), logger),
		Patents:   postgres.NewPatentRepository(db.Pool(), logger),
		Reports:   postgres.NewReportRepository(db.Pool(), logger),
	}

	if redisClient, err := redis.NewClient(cfg.Redis, logger); err != nil {
		logger.Warn("redis unavailable, pass cache and macro snapshots disabled", logging.Err(err))
	} else {
		deps.Redis = redisClient
	}

	if producer, err := kafka.NewProducer(cfg.Kafka, cfg.App.Name, logger); err != nil {
		logger.Warn("kafka unavailable, events disabled", logging.Err(err))
	} else {
		deps.Producer = producer
	}

	if search, err := opensearch.NewClient(cfg.OpenSearch, logger); err != nil {
		logger.Warn("opensearch unavailable, full-text search disabled", logging.Err(err))
	} else {
		if err := search.EnsureIndex(ctx); err != nil {
			logger.Warn("opensearch index setup failed", logging.Err(err))
		}
		deps.Search = search
	}

	deps.Discovery = buildDiscoveryService(cfg, deps)
	deps.Analysis = buildAnalysisService(cfg, deps)
	deps.Reporting = buildReportingService(cfg, deps)
	deps.Dashboard = dashboard.NewStore(cfg.Dashboard, logger)

	return deps, nil
}

func buildDiscoveryService(cfg *config.Config, deps *dependencies) *discovery.Service {
	opts := []discovery.Option{discovery.WithMetrics(deps.Metrics)}
	if deps.Redis != nil {
		cache := redis.NewCache(deps.Redis, cfg.Discovery.CacheTTL, deps.Logger)
		opts = append(opts, discovery.WithPassCache(cache, redis.PassKey))
	}
	if deps.Producer != nil {
		opts = append(opts, discovery.WithPublisher(deps.Producer))
	}

	return discovery.NewService(
		patentsview.NewClient(cfg.Discovery, deps.Logger),
		deps.Runs,
		deps.Patents,
		cfg.Discovery,
		cfg.Scoring,
		deps.Logger,
		opts...,
	)
}

func buildAnalysisService(cfg *config.Config, deps *dependencies) *analysis.Service {
	fred := market.NewFredClient(deps.Logger)
	var provider *market.Provider
	if deps.Redis != nil {
		cache := redis.NewCache(deps.Redis, cfg.Finance.SnapshotTTL, deps.Logger)
		provider = market.NewProvider(fred, cache, cfg.Finance.SnapshotTTL, deps.Logger)
	} else {
		provider = market.NewProvider(fred, nil, cfg.Finance.SnapshotTTL, deps.Logger)
	}

	opts := []analysis.Option{
		analysis.WithMacroProvider(provider),
		analysis.WithMetrics(deps.Metrics),
	}
	if deps.Producer != nil {
		opts = append(opts, analysis.WithPublisher(deps.Producer))
	}
	return analysis.NewService(deps.Patents, cfg.Finance, deps.Logger, opts...)
}

func buildReportingService(cfg *config.Config, deps *dependencies) *reporting.Service {
	opts := []reporting.Option{
		reporting.WithMetrics(deps.Metrics),
		reporting.WithVaultDir(cfg.Dashboard.VaultDir),
	}
	if deps.Producer != nil {
		opts = append(opts, reporting.WithPublisher(deps.Producer))
	}
	return reporting.NewService(deps.Artifacts, deps.Reports, deps.Logger, opts...)
}

// RouterConfig assembles the route tree configuration, wrapping the
// discovery service so new results land in the search index.
func (d *dependencies) RouterConfig(cfg *config.Config) httpserver.RouterConfig {
	checks := map[string]handlers.ReadinessCheck{
		"postgres": d.DB.HealthCheck,
	}
	if d.Redis != nil {
		checks["redis"] = d.Redis.Ping
	}
	if d.Search != nil {
		checks["opensearch"] = d.Search.Ping
	}

	routerCfg := httpserver.RouterConfig{
		Logger:             d.Logger,
		Metrics:            d.Metrics,
		Version:            cfg.App.Version,
		AllowedOrigins:     cfg.Server.AllowedOrigins,
		RateLimitPerSecond: cfg.Server.RateLimitPerSecond,
		RateLimitBurst:     cfg.Server.RateLimitBurst,
		Discovery:          d.discoveryForRouter(),
		Analysis:           d.Analysis,
		Reporting:          d.Reporting,
		Dashboard:          d.Dashboard,
		Patents:            d.Patents,
		Reports:            d.Reports,
		Signer:             d.Artifacts,
		ReadinessChecks:    checks,
	}
	if d.Search != nil {
		routerCfg.Searcher = d.Search
	}
	return routerCfg
}

func (d *dependencies) discoveryForRouter() handlers.DiscoveryService {
	if d.Search == nil {
		return d.Discovery
	}
	return &indexedDiscovery{Service: d.Discovery, search: d.Search, logger: d.Logger}
}

// indexedDiscovery feeds completed run results into the search index.
// Index failures are logged, not surfaced: the run already persisted.
type indexedDiscovery struct {
	*discovery.Service
	search *opensearch.Client
	logger logging.Logger
}

func (d *indexedDiscovery) Execute(ctx context.Context, req discovery.Request) (*discovery.Result, error) {
	result, err := d.Service.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(result.Patents) > 0 {
		if err := d.search.IndexBatch(ctx, result.Patents); err != nil {
			d.logger.Warn("search indexing failed",
				logging.String("run_id", result.Run.ID), logging.Err(err))
		}
	}
	return result, nil
}

// Close releases held connections in reverse dependency order.
func (d *dependencies) Close() {
	if d.Producer != nil {
		if err := d.Producer.Close(); err != nil {
			d.Logger.Warn("kafka producer close failed", logging.Err(err))
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Warn("redis close failed", logging.Err(err))
		}
	}
	d.DB.Close()
}
