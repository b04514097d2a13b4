// Worker entry point: consumes discovery requests from Kafka and runs the
// full pipeline per message: retrieval, scoring, analysis, report export,
// and search indexing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/patentminer/patentminer/internal/application/analysis"
	"github.com/patentminer/patentminer/internal/application/discovery"
	"github.com/patentminer/patentminer/internal/application/reporting"
	"github.com/patentminer/patentminer/internal/config"
	"github.com/patentminer/patentminer/internal/domain/report"
	"github.com/patentminer/patentminer/internal/infrastructure/database/postgres"
	"github.com/patentminer/patentminer/internal/infrastructure/database/redis"
	"github.com/patentminer/patentminer/internal/infrastructure/market"
	"github.com/patentminer/patentminer/internal/infrastructure/messaging/kafka"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/prometheus"
	"github.com/patentminer/patentminer/internal/infrastructure/patentsview"
	"github.com/patentminer/patentminer/internal/infrastructure/search/opensearch"
	"github.com/patentminer/patentminer/internal/infrastructure/storage/minio"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	cfg, err := config.NewLoader(*configPath).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	logger = logger.Named("worker")
	logger.Info("starting patminer worker", logging.String("version", cfg.App.Version))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := buildWorker(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize worker", logging.Err(err))
	}
	defer w.Close()

	consumer, err := kafka.NewConsumer(cfg.Kafka, kafka.TopicDiscoveryRequested, logger)
	if err != nil {
		logger.Fatal("failed to subscribe", logging.Err(err))
	}
	defer consumer.Close()

	if err := consumer.Run(ctx, w.handleDiscoveryRequested); err != nil && ctx.Err() == nil {
		logger.Error("consumer stopped", logging.Err(err))
	}
	logger.Info("worker stopped",
		logging.Int64("processed", consumer.Processed()),
		logging.Int64("failed", consumer.Failed()))
}

// worker holds the pipeline services.
type worker struct {
	logger    logging.Logger
	db        *postgres.Connection
	redis     *redis.Client
	producer  *kafka.Producer
	search    *opensearch.Client
	discovery *discovery.Service
	analysis  *analysis.Service
	reporting *reporting.Service
}

func buildWorker(ctx context.Context, cfg *config.Config, logger logging.Logger) (*worker, error) {
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

	w := &worker{logger: logger, db: db}

	runs := postgres.NewRunRepository(db.Pool(), logger)
	patents := postgres.NewPatentRepository(db.Pool(), logger)
	reports := postgres.NewReportRepository(db.Pool(), logger)

	discoveryOpts := []discovery.Option{discovery.WithMetrics(metrics)}
	analysisOpts := []analysis.Option{analysis.WithMetrics(metrics)}
	reportingOpts := []reporting.Option{
		reporting.WithMetrics(metrics),
		reporting.WithVaultDir(cfg.Dashboard.VaultDir),
	}

	if redisClient, err := redis.NewClient(cfg.Redis, logger); err != nil {
		logger.Warn("redis unavailable, caching disabled", logging.Err(err))
	} else {
		w.redis = redisClient
		cache := redis.NewCache(redisClient, cfg.Discovery.CacheTTL, logger)
		discoveryOpts = append(discoveryOpts, discovery.WithPassCache(cache, redis.PassKey))
	}

	if producer, err := kafka.NewProducer(cfg.Kafka, cfg.App.Name, logger); err != nil {
		logger.Warn("kafka producer unavailable, completion events disabled", logging.Err(err))
	} else {
		w.producer = producer
		discoveryOpts = append(discoveryOpts, discovery.WithPublisher(producer))
		analysisOpts = append(analysisOpts, analysis.WithPublisher(producer))
		reportingOpts = append(reportingOpts, reporting.WithPublisher(producer))
	}

	if search, err := opensearch.NewClient(cfg.OpenSearch, logger); err != nil {
		logger.Warn("opensearch unavailable, indexing disabled", logging.Err(err))
	} else {
		if err := search.EnsureIndex(ctx); err != nil {
			logger.Warn("opensearch index setup failed", logging.Err(err))
		}
		w.search = search
	}

	fred := market.NewFredClient(logger)
	if w.redis != nil {
		cache := redis.NewCache(w.redis, cfg.Finance.SnapshotTTL, logger)
		analysisOpts = append(analysisOpts,
			analysis.WithMacroProvider(market.NewProvider(fred, cache, cfg.Finance.SnapshotTTL, logger)))
	} else {
		analysisOpts = append(analysisOpts,
			analysis.WithMacroProvider(market.NewProvider(fred, nil, cfg.Finance.SnapshotTTL, logger)))
	}

	w.discovery = discovery.NewService(
		patentsview.NewClient(cfg.Discovery, logger),
		runs, patents, cfg.Discovery, cfg.Scoring, logger, discoveryOpts...)
	w.analysis = analysis.NewService(patents, cfg.Finance, logger, analysisOpts...)
	w.reporting = reporting.NewService(artifacts, reports, logger, reportingOpts...)
	return w, nil
}

// handleDiscoveryRequested executes the whole pipeline for one request.
// The request's run id is a correlation id from the producer; the executed
// run gets its own identity.
func (w *worker) handleDiscoveryRequested(ctx context.Context, env *kafka.EventEnvelope) error {
	var payload kafka.DiscoveryRequestedPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}
	logger := w.logger.With(
		logging.String("event_id", env.EventID),
		logging.String("request_id", payload.RunID))
	logger.Info("discovery request received", logging.Any("keywords", payload.Keywords))

	result, err := w.discovery.Execute(ctx, discovery.Request{
		Keywords:        payload.Keywords,
		FilingDateStart: payload.FilingDateStart,
		FilingDateEnd:   payload.FilingDateEnd,
		AssigneeType:    payload.AssigneeType,
		MaxResults:      payload.MaxResults,
	})
	if err != nil {
		return err
	}
	if len(result.Patents) == 0 {
		logger.Info("run produced no candidates",
			logging.String("run_id", result.Run.ID),
			logging.String("status", string(result.Run.Status)))
		return nil
	}

	if w.search != nil {
		if err := w.search.IndexBatch(ctx, result.Patents); err != nil {
			logger.Warn("search indexing failed", logging.Err(err))
		}
	}

	assessments, err := w.analysis.AnalyzeRun(ctx, result.Run.ID)
	if err != nil {
		logger.Error("analysis failed", logging.String("run_id", result.Run.ID), logging.Err(err))
		assessments = nil
	}

	if _, err := w.reporting.Export(ctx, result.Run, result.Patents, assessments,
		[]report.Format{report.FormatJSON}); err != nil {
		logger.Error("report export failed", logging.String("run_id", result.Run.ID), logging.Err(err))
	}

	logger.Info("pipeline completed",
		logging.String("run_id", result.Run.ID),
		logging.Int("patents", len(result.Patents)),
		logging.Int("assessments", len(assessments)))
	return nil
}

func (w *worker) Close() {
	if w.producer != nil {
		_ = w.producer.Close()
	}
	if w.redis != nil {
		_ = w.redis.Close()
	}
	w.db.Close()
}
