// Package config defines the application configuration model and its loader.
// Configuration is resolved from, in increasing precedence: built-in
// defaults, a YAML file, and PATMINER_* environment variables.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
)

// Config is the root configuration tree.  One instance is loaded at startup
// and passed down by value or pointer; components never read viper directly.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	OpenSearch OpenSearchConfig `mapstructure:"opensearch"`
	Log        logging.LogConfig `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Discovery  DiscoveryConfig  `mapstructure:"discovery"`
	Scoring    ScoringConfig    `mapstructure:"scoring"`
	Finance    FinanceConfig    `mapstructure:"finance"`
	Dashboard  DashboardConfig  `mapstructure:"dashboard"`
}

// AppConfig identifies the running service.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development | staging | production
	Version     string `mapstructure:"version"`
}

// ServerConfig holds HTTP listener parameters.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// AllowedOrigins lists origins permitted to call the API from a browser.
	// Empty means CORS headers are never emitted.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// RateLimitPerSecond is the sustained per-client request rate. Zero
	// disables rate limiting.
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second"`

	// RateLimitBurst is the burst size above the sustained rate.
	RateLimitBurst int `mapstructure:"rate_limit_burst"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// DSN returns the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

// RedisConfig holds Redis connection and cache parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
}

// KafkaConfig holds broker addresses and consumer group settings.
type KafkaConfig struct {
	Brokers       []string      `mapstructure:"brokers"`
	ConsumerGroup string        `mapstructure:"consumer_group"`
	BatchTimeout  time.Duration `mapstructure:"batch_timeout"`
	Enabled       bool          `mapstructure:"enabled"`
}

// MinIOConfig holds object storage parameters for report artifacts.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	ReportBucket    string `mapstructure:"report_bucket"`
}

// OpenSearchConfig holds the full-text search cluster parameters.
type OpenSearchConfig struct {
	Addresses   []string `mapstructure:"addresses"`
	Username    string   `mapstructure:"username"`
	Password    string   `mapstructure:"password"`
	PatentIndex string   `mapstructure:"patent_index"`
	Enabled     bool     `mapstructure:"enabled"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DiscoveryConfig drives the multi-pass patent retrieval pipeline.
type DiscoveryConfig struct {
	// APIKey authenticates against the PatentsView PatentSearch API.
	// Discovery fails fast with a remediation message when empty.
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`

	// MaxRetries is a fixed retry count per pass request; the delay between
	// attempts is flat, not exponential.
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`

	// PerPassLimit caps the rows requested from each retrieval pass.
	PerPassLimit int `mapstructure:"per_pass_limit"`

	// MaxResults caps the merged candidate set after deduplication.
	MaxResults int `mapstructure:"max_results"`

	// CacheTTL bounds how long raw pass responses are served from Redis.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// ScoringConfig carries the deterministic scoring weights.  All weight sets
// are validated to sum to 1.0 at load time so a miswritten config file fails
// before any patent is scored.
type ScoringConfig struct {
	Retrieval   RetrievalWeights   `mapstructure:"retrieval"`
	Viability   ViabilityWeights   `mapstructure:"viability"`
	Opportunity OpportunityWeights `mapstructure:"opportunity"`
}

// RetrievalWeights blends the five retrieval signals into one relevance
// score.
type RetrievalWeights struct {
	TitleExactMatch      float64 `mapstructure:"title_exact_match"`
	QueryCoverage        float64 `mapstructure:"query_coverage"`
	SemanticSimilarity   float64 `mapstructure:"semantic_similarity"`
	ExpirationConfidence float64 `mapstructure:"expiration_confidence"`
	PassDiversity        float64 `mapstructure:"pass_diversity"`
}

// Sum returns the total of the signal weights.
func (w RetrievalWeights) Sum() float64 {
	return w.TitleExactMatch + w.QueryCoverage + w.SemanticSimilarity +
		w.ExpirationConfidence + w.PassDiversity
}

// ViabilityWeights blends the five viability components into one score.
type ViabilityWeights struct {
	MarketDemand             float64 `mapstructure:"market_demand"`
	BuildFeasibility         float64 `mapstructure:"build_feasibility"`
	CompetitionHeadroom      float64 `mapstructure:"competition_headroom"`
	DifferentiationPotential float64 `mapstructure:"differentiation_potential"`
	CommercialReadiness      float64 `mapstructure:"commercial_readiness"`
}

// Sum returns the total of the component weights.
func (w ViabilityWeights) Sum() float64 {
	return w.MarketDemand + w.BuildFeasibility + w.CompetitionHeadroom +
		w.DifferentiationPotential + w.CommercialReadiness
}

// OpportunityWeights blends retrieval relevance, viability, and expiration
// confidence into the final opportunity score.
type OpportunityWeights struct {
	Relevance  float64 `mapstructure:"relevance"`
	Viability  float64 `mapstructure:"viability"`
	Expiration float64 `mapstructure:"expiration"`
}

// Sum returns the total of the blend weights.
func (w OpportunityWeights) Sum() float64 {
	return w.Relevance + w.Viability + w.Expiration
}

// FinanceConfig drives the financial viability model.
type FinanceConfig struct {
	// DiscountRate is the base WACC for DCF projections.
	DiscountRate float64 `mapstructure:"discount_rate"`

	// HorizonYears is the projection horizon for NPV and payback.
	HorizonYears int `mapstructure:"horizon_years"`

	// SnapshotTTL bounds how long a cached financial snapshot is reused.
	SnapshotTTL time.Duration `mapstructure:"snapshot_ttl"`

	Integrated IntegratedWeights `mapstructure:"integrated"`
}

// IntegratedWeights blends the seven analysis dimensions into the
// integrated investment score.
type IntegratedWeights struct {
	Robustness    float64 `mapstructure:"scientific_robustness"`
	Feasibility   float64 `mapstructure:"manufacturing_feasibility"`
	Modernization float64 `mapstructure:"modernization_potential"`
	StrategicFit  float64 `mapstructure:"strategic_fit"`
	Financial     float64 `mapstructure:"financial_attractiveness"`
	LegalRisk     float64 `mapstructure:"legal_risk_inverted"`
	Esg           float64 `mapstructure:"esg_sustainability"`
}

// Sum returns the total of the integrated weights.
func (w IntegratedWeights) Sum() float64 {
	return w.Robustness + w.Feasibility + w.Modernization + w.StrategicFit +
		w.Financial + w.LegalRisk + w.Esg
}

// DashboardConfig drives the BI dashboard data layer.
type DashboardConfig struct {
	// VaultDir is the directory where analysis exports land; the newest
	// matching file is treated as the current dataset.
	VaultDir string `mapstructure:"vault_dir"`

	// Watch enables an fsnotify watcher that reloads the dataset when new
	// exports appear in VaultDir.
	Watch bool `mapstructure:"watch"`
}

const weightTolerance = 1e-9

// Validate checks structural and semantic constraints.  It is called by the
// loader after unmarshalling; a non-nil error aborts startup.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.Discovery.PerPassLimit <= 0 {
		return fmt.Errorf("config: discovery.per_pass_limit must be positive, got %d", c.Discovery.PerPassLimit)
	}
	if c.Discovery.MaxRetries < 0 {
		return fmt.Errorf("config: discovery.max_retries must not be negative, got %d", c.Discovery.MaxRetries)
	}
	if s := c.Scoring.Retrieval.Sum(); math.Abs(s-1.0) > weightTolerance {
		return fmt.Errorf("config: scoring.retrieval weights must sum to 1.0, got %.6f", s)
	}
	if s := c.Scoring.Viability.Sum(); math.Abs(s-1.0) > weightTolerance {
		return fmt.Errorf("config: scoring.viability weights must sum to 1.0, got %.6f", s)
	}
	if s := c.Scoring.Opportunity.Sum(); math.Abs(s-1.0) > weightTolerance {
		return fmt.Errorf("config: scoring.opportunity weights must sum to 1.0, got %.6f", s)
	}
	if s := c.Finance.Integrated.Sum(); math.Abs(s-1.0) > weightTolerance {
		return fmt.Errorf("config: finance.integrated weights must sum to 1.0, got %.6f", s)
	}
	if c.Finance.HorizonYears <= 0 {
		return fmt.Errorf("config: finance.horizon_years must be positive, got %d", c.Finance.HorizonYears)
	}
	if c.Finance.DiscountRate <= 0 || c.Finance.DiscountRate >= 1 {
		return fmt.Errorf("config: finance.discount_rate must be in (0,1), got %.4f", c.Finance.DiscountRate)
	}
	return nil
}

// IsProduction reports whether the app runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
