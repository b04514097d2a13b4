package config

import "github.com/spf13/viper"

// setDefaults registers every default value with viper before file and
// environment sources are merged.  The scoring and finance weights below are
// the canonical production values; overriding them requires the full weight
// set since partial overrides would fail the sum-to-one check.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "patentminer")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "dev")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.rate_limit_per_second", 25.0)
	v.SetDefault("server.rate_limit_burst", 50)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "patentminer")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "patentminer")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 16)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.migrations_path", "migrations")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 16)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("redis.default_ttl", "1h")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.consumer_group", "patentminer-workers")
	v.SetDefault("kafka.batch_timeout", "1s")
	v.SetDefault("kafka.enabled", false)

	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.access_key_id", "")
	v.SetDefault("minio.secret_access_key", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.report_bucket", "patentminer-reports")

	v.SetDefault("opensearch.addresses", []string{"http://localhost:9200"})
	v.SetDefault("opensearch.username", "")
	v.SetDefault("opensearch.password", "")
	v.SetDefault("opensearch.patent_index", "patents")
	v.SetDefault("opensearch.enabled", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_paths", []string{"stdout"})
	v.SetDefault("log.error_output_paths", []string{"stderr"})

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("discovery.api_key", "")
	v.SetDefault("discovery.base_url", "https://search.patentsview.org/api/v1/patent/")
	v.SetDefault("discovery.timeout", "30s")
	v.SetDefault("discovery.max_retries", 2)
	v.SetDefault("discovery.retry_delay", "2s")
	v.SetDefault("discovery.per_pass_limit", 100)
	v.SetDefault("discovery.max_results", 200)
	v.SetDefault("discovery.cache_ttl", "6h")

	v.SetDefault("scoring.retrieval.title_exact_match", 0.15)
	v.SetDefault("scoring.retrieval.query_coverage", 0.25)
	v.SetDefault("scoring.retrieval.semantic_similarity", 0.30)
	v.SetDefault("scoring.retrieval.expiration_confidence", 0.15)
	v.SetDefault("scoring.retrieval.pass_diversity", 0.15)

	v.SetDefault("scoring.viability.market_demand", 0.28)
	v.SetDefault("scoring.viability.build_feasibility", 0.22)
	v.SetDefault("scoring.viability.competition_headroom", 0.18)
	v.SetDefault("scoring.viability.differentiation_potential", 0.18)
	v.SetDefault("scoring.viability.commercial_readiness", 0.14)

	v.SetDefault("scoring.opportunity.relevance", 0.35)
	v.SetDefault("scoring.opportunity.viability", 0.45)
	v.SetDefault("scoring.opportunity.expiration", 0.20)

	v.SetDefault("finance.discount_rate", 0.08)
	v.SetDefault("finance.horizon_years", 10)
	v.SetDefault("finance.snapshot_ttl", "24h")
	v.SetDefault("finance.integrated.scientific_robustness", 0.15)
	v.SetDefault("finance.integrated.manufacturing_feasibility", 0.20)
	v.SetDefault("finance.integrated.modernization_potential", 0.15)
	v.SetDefault("finance.integrated.strategic_fit", 0.20)
	v.SetDefault("finance.integrated.financial_attractiveness", 0.20)
	v.SetDefault("finance.integrated.legal_risk_inverted", 0.05)
	v.SetDefault("finance.integrated.esg_sustainability", 0.05)

	v.SetDefault("dashboard.vault_dir", "analysis_vault")
	v.SetDefault("dashboard.watch", true)
}
