package analysis

import (
	"context"
	"sort"
	"time"

	"github.com/patentminer/patentminer/internal/config"
	"github.com/patentminer/patentminer/internal/domain/finance"
	"github.com/patentminer/patentminer/internal/domain/patent"
	"github.com/patentminer/patentminer/internal/infrastructure/messaging/kafka"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/prometheus"
)

// MacroProvider supplies the macro signals behind the financial model.  The
// market provider implements it; it degrades to defaults, never errors.
type MacroProvider interface {
	GetMacroSignals(ctx context.Context) finance.MacroSignals
}

// EventPublisher emits per-patent analysis events onto the bus.
type EventPublisher interface {
	Publish(ctx context.Context, topic, eventType, key string, payload any) error
}

// Result is the full assessment of one patent: classification, technical
// scores, manufacturing profile, financials, strategy, and the integrated
// ranking score.
type Result struct {
	PatentID string `json:"patent_id"`
	Title    string `json:"title"`
	RunID    string `json:"run_id,omitempty"`

	TechnologyTheme string   `json:"technology_theme"`
	DetectedThemes  []string `json:"detected_themes,omitempty"`
	PatentType      string   `json:"patent_type"`
	Industry        string   `json:"industry"`

	Technical     TechnicalScore       `json:"technical_scores"`
	Manufacturing ManufacturingProfile `json:"manufacturing_profile"`
	Financial     finance.Metrics      `json:"financial_metrics"`
	Strategic     StrategicAssessment  `json:"strategic_assessment"`

	// Scores carried over from the discovery run, zero when the analysis
	// ran on a record outside a run context.
	OpportunityScore float64 `json:"opportunity_score,omitempty"`

	IntegratedScore float64 `json:"integrated_score"`
	Confidence      float64 `json:"confidence_level"`
	RankingPosition int     `json:"ranking_position,omitempty"`

	RedFlags []string `json:"red_flags,omitempty"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}

// analysisConfidence reflects that every dimension is inferred from title
// and abstract text alone.
const analysisConfidence = 0.75

// Service runs the analysis stage over a discovery run's scored patents.
type Service struct {
	patents patent.Repository
	macro   MacroProvider
	events  EventPublisher
	metrics *prometheus.Metrics

	financeCfg config.FinanceConfig
	logger     logging.Logger
	now        func() time.Time
}

// Option customizes optional service collaborators.
type Option func(*Service)

// WithMacroProvider wires live macro signals into the financial model.
func WithMacroProvider(p MacroProvider) Option {
	return func(s *Service) { s.macro = p }
}

// WithPublisher wires per-patent analysis events onto the bus.
func WithPublisher(events EventPublisher) Option {
	return func(s *Service) { s.events = events }
}

// WithMetrics wires stage instrumentation.
func WithMetrics(m *prometheus.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService assembles the analysis stage.
func NewService(patents patent.Repository, financeCfg config.FinanceConfig, logger logging.Logger, opts ...Option) *Service {
	s := &Service{
		patents:    patents,
		financeCfg: financeCfg,
		logger:     logger.Named("analysis"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeRun assesses every scored patent of a run and returns the results
// ranked by integrated score.
func (s *Service) AnalyzeRun(ctx context.Context, runID string) ([]Result, error) {
	start := s.now()

	scored, err := s.patents.List(ctx, patent.ListFilter{RunID: runID})
	if err != nil {
		return nil, err
	}
	if len(scored) == 0 {
		return nil, nil
	}

	macro := s.macroSignals(ctx)
	results := make([]Result, 0, len(scored))
	for i := range scored {
		result := s.analyze(&scored[i].Record, macro)
		result.RunID = runID
		result.OpportunityScore = scored[i].OpportunityScore
		results = append(results, result)
	}

	Rank(results)

	if s.events != nil {
		s.publishResults(ctx, runID, results)
	}
	if s.metrics != nil {
		s.metrics.AnalysisDuration.Observe(s.now().Sub(start).Seconds())
	}

	s.logger.Info("analysis completed",
		logging.String("run_id", runID),
		logging.Int("patents", len(results)))
	return results, nil
}

// AnalyzeRecord assesses a single record outside any run context.
func (s *Service) AnalyzeRecord(ctx context.Context, rec *patent.Record) Result {
	return s.analyze(rec, s.macroSignals(ctx))
}

func (s *Service) macroSignals(ctx context.Context) finance.MacroSignals {
	if s.macro == nil {
		return finance.DefaultMacroSignals()
	}
	return s.macro.GetMacroSignals(ctx)
}

func (s *Service) analyze(rec *patent.Record, macro finance.MacroSignals) Result {
	theme, detected := ClassifyTechnology(rec)
	patentType := ClassifyPatentType(rec)

	technical := ScoreTechnical(rec, theme, patentType)
	manufacturing := EstimateManufacturing(rec, patentType)

	industry := finance.ResolveIndustry(theme, patentType, rec.Text())
	benchmark := finance.BenchmarkFor(industry)
	horizon := s.financeCfg.HorizonYears
	if horizon <= 0 {
		horizon = 10
	}
	financial := finance.ComputeMetrics(
		manufacturing.CapexLow, manufacturing.CapexHigh, benchmark, macro, horizon)

	strategic := AssessStrategic(rec, technical)

	result := Result{
		PatentID:        rec.PatentID,
		Title:           rec.Title,
		TechnologyTheme: theme,
		DetectedThemes:  detected,
		PatentType:      patentType,
		Industry:        industry,
		Technical:       technical,
		Manufacturing:   manufacturing,
		Financial:       financial,
		Strategic:       strategic,
		Confidence:      analysisConfidence,
		AnalyzedAt:      s.now(),
	}
	result.IntegratedScore = IntegratedScore(result, s.integratedWeights())
	result.RedFlags = redFlags(result)
	return result
}

// IntegratedScore blends the seven analysis dimensions into one [0,10]
// investment score.
func IntegratedScore(r Result, weights config.IntegratedWeights) float64 {
	legalInverted := 5.0
	if r.Strategic.LegalIPRisk == BandLow {
		legalInverted = 10.0
	}

	esg := 3.0
	switch r.Strategic.ESGBenefit {
	case BandHigh:
		esg = 9.0
	case BandMedium:
		esg = 6.0
	}

	score := r.Technical.ScientificRobustness*weights.Robustness +
		r.Technical.ManufacturingFeasibility*weights.Feasibility +
		r.Technical.ModernizationPotential*weights.Modernization +
		r.Strategic.StrategicFitScore*weights.StrategicFit +
		finance.FinancialAttractiveness(r.Financial.NPVBase)*weights.Financial +
		legalInverted*weights.LegalRisk +
		esg*weights.Esg

	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

// Rank sorts results by integrated score, patent id breaking ties, and
// stamps 1-based ranking positions.
func Rank(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].IntegratedScore != results[j].IntegratedScore {
			return results[i].IntegratedScore > results[j].IntegratedScore
		}
		return results[i].PatentID < results[j].PatentID
	})
	for i := range results {
		results[i].RankingPosition = i + 1
	}
}

func redFlags(r Result) []string {
	var flags []string
	if r.Technical.ImplementationRiskInverted < 4 {
		flags = append(flags, "High technical implementation risk")
	}
	if r.Strategic.RegulatoryRisk == BandHigh {
		flags = append(flags, "Significant regulatory hurdles")
	}
	if r.Financial.NPVBase < 0 {
		flags = append(flags, "Negative NPV in base scenario")
	}
	return flags
}

func (s *Service) publishResults(ctx context.Context, runID string, results []Result) {
	for _, r := range results {
		payload := kafka.PatentAnalyzedPayload{
			RunID:            runID,
			PatentID:         r.PatentID,
			MarketDomain:     r.TechnologyTheme,
			OpportunityScore: r.OpportunityScore,
			IntegratedScore:  r.IntegratedScore,
			Tier:             r.Strategic.RecommendationTier,
			AnalyzedAt:       r.AnalyzedAt,
		}
		err := s.events.Publish(ctx, kafka.TopicPatentAnalyzed, "patent.analyzed", r.PatentID, payload)
		if err != nil {
			s.logger.Warn("analysis event publish failed",
				logging.String("patent_id", r.PatentID), logging.Err(err))
		}
	}
}

func (s *Service) integratedWeights() config.IntegratedWeights {
	w := s.financeCfg.Integrated
	if w.Sum() == 0 {
		return config.IntegratedWeights{
			Robustness:    0.15,
			Feasibility:   0.20,
			Modernization: 0.15,
			StrategicFit:  0.20,
			Financial:     0.20,
			LegalRisk:     0.05,
			Esg:           0.05,
		}
	}
	return w
}
