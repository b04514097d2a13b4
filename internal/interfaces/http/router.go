// Package http assembles the REST API: router, middleware chain, and the
// server lifecycle.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/patentminer/patentminer/internal/domain/patent"
	"github.com/patentminer/patentminer/internal/domain/report"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/prometheus"
	"github.com/patentminer/patentminer/internal/interfaces/http/handlers"
	"github.com/patentminer/patentminer/internal/interfaces/http/middleware"
)

// RouterConfig wires the route tree.  Optional dependencies (Searcher,
// Signer, Dashboard) may be nil; their endpoints then answer with a
// service-unavailable error.
type RouterConfig struct {
	Logger  logging.Logger
	Metrics *prometheus.Metrics
	Version string

	// AllowedOrigins enables CORS for the listed origins; empty disables it.
	AllowedOrigins []string

	// RateLimitPerSecond and RateLimitBurst bound per-client request rates.
	// A zero rate disables limiting.
	RateLimitPerSecond float64
	RateLimitBurst     int

	Discovery handlers.DiscoveryService
	Analysis  handlers.AnalysisService
	Reporting handlers.ReportService
	Dashboard handlers.DashboardStore

	Patents patent.Repository
	Reports report.Repository

	Searcher handlers.PatentSearcher
	Signer   handlers.ArtifactSigner

	ReadinessChecks map[string]handlers.ReadinessCheck
}

// NewRouter builds the complete route tree with the standard middleware
// chain: recovery, request logging, metrics, CORS, rate limiting.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestLogger(cfg.Logger),
		middleware.Metrics(cfg.Metrics),
	)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.AllowedOrigins))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(middleware.RateLimit(
			middleware.NewTokenBucketLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)))
	}

	health := handlers.NewHealthHandler(cfg.Version, cfg.ReadinessChecks)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	discoveryHandler := handlers.NewDiscoveryHandler(cfg.Discovery)
	patentHandler := handlers.NewPatentHandler(cfg.Patents, cfg.Searcher)
	reportHandler := handlers.NewReportHandler(
		cfg.Discovery, cfg.Analysis, cfg.Reporting, cfg.Patents, cfg.Reports, cfg.Signer)
	dashboardHandler := handlers.NewDashboardHandler(cfg.Dashboard, cfg.Patents)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/runs", discoveryHandler.CreateRun)
		v1.GET("/runs", discoveryHandler.ListRuns)
		v1.GET("/runs/:id", discoveryHandler.GetRun)
		v1.GET("/runs/:id/patents", patentHandler.ListByRun)
		v1.GET("/runs/:id/patents/:patent_id", patentHandler.GetByRun)
		v1.GET("/runs/:id/domains", dashboardHandler.DomainDistribution)
		v1.POST("/runs/:id/reports", reportHandler.Create)
		v1.GET("/runs/:id/reports", reportHandler.ListByRun)
		v1.GET("/reports/:id/download", reportHandler.Download)
		v1.GET("/patents/search", patentHandler.Search)
		v1.GET("/dashboard/summary", dashboardHandler.Summary)
		v1.GET("/dashboard/top", dashboardHandler.TopOpportunities)
		v1.GET("/dashboard/timeline", dashboardHandler.Timeline)
	}

	return r
}
