package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/patentminer/patentminer/internal/config"
	discoverydomain "github.com/patentminer/patentminer/internal/domain/discovery"
	"github.com/patentminer/patentminer/internal/domain/patent"
	"github.com/patentminer/patentminer/internal/domain/scoring"
	"github.com/patentminer/patentminer/internal/infrastructure/messaging/kafka"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/prometheus"
	"github.com/patentminer/patentminer/internal/infrastructure/patentsview"
	"github.com/patentminer/patentminer/pkg/errors"
)

// SearchClient is the retrieval port.  The patentsview client satisfies it;
// tests substitute fakes.
type SearchClient interface {
	Search(ctx context.Context, q patentsview.Query, limit int) ([]patentsview.RawPatent, error)
}

// PassCache serves raw pass responses from a shared cache so repeated runs
// with identical intent skip the provider round trip.
type PassCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// EventPublisher emits lifecycle events onto the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, topic, eventType, key string, payload any) error
}

// PassKeyFunc derives the cache key for a pass from its compiled payload.
// The redis cache provides the production implementation.
type PassKeyFunc func(pass string, payload map[string]any) string

// Request carries the user's discovery intent.
type Request struct {
	Keywords        []string `json:"keywords"`
	FilingDateStart string   `json:"filing_date_start,omitempty"`
	FilingDateEnd   string   `json:"filing_date_end,omitempty"`
	AssigneeType    string   `json:"assignee_type,omitempty"`
	MaxResults      int      `json:"max_results,omitempty"`
}

// Result is one completed (or failed) discovery run with its ranked,
// scored candidates.  Diagnostics travel on the run so an empty Patents
// slice is always explainable.
type Result struct {
	Run     *discoverydomain.Run  `json:"run"`
	Patents []patent.ScoredPatent `json:"patents"`
}

// ScoreBreakdown is the serialized explainability payload stored alongside
// every scored patent.
type ScoreBreakdown struct {
	ScoringVersion string                     `json:"scoring_version"`
	Retrieval      scoring.RetrievalScorecard `json:"retrieval"`
	Viability      scoring.ViabilityScorecard `json:"viability"`
	Opportunity    float64                    `json:"opportunity"`
	Explanations   scoring.Explanations       `json:"explanations"`
}

// Service runs the discovery pipeline end to end: execute the four passes
// sequentially, merge and deduplicate, score, rank, persist, and publish a
// completion event.  Pass failures degrade the run instead of aborting it.
type Service struct {
	client  SearchClient
	runs    discoverydomain.Repository
	patents patent.Repository

	cache   PassCache   // nil disables pass caching
	passKey PassKeyFunc // required when cache is set
	events  EventPublisher
	metrics *prometheus.Metrics

	discoveryCfg config.DiscoveryConfig
	scoringCfg   config.ScoringConfig

	logger logging.Logger
	now    func() time.Time
}

// Option customizes optional service collaborators.
type Option func(*Service)

// WithPassCache enables raw pass-response caching.
func WithPassCache(cache PassCache, keyFn PassKeyFunc) Option {
	return func(s *Service) {
		s.cache = cache
		s.passKey = keyFn
	}
}

// WithPublisher wires run lifecycle events onto the bus.
func WithPublisher(events EventPublisher) Option {
	return func(s *Service) { s.events = events }
}

// WithMetrics wires pipeline instrumentation.
func WithMetrics(m *prometheus.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source for deterministic scoring in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService assembles the pipeline around its persistence ports.
func NewService(
	client SearchClient,
	runs discoverydomain.Repository,
	patents patent.Repository,
	discoveryCfg config.DiscoveryConfig,
	scoringCfg config.ScoringConfig,
	logger logging.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		client:       client,
		runs:         runs,
		patents:      patents,
		discoveryCfg: discoveryCfg,
		scoringCfg:   scoringCfg,
		logger:       logger.Named("discovery"),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute runs one discovery from request to persisted, ranked scorecards.
// A pass failure is recorded in diagnostics and the remaining passes still
// run; only run bookkeeping failures (persistence) surface as errors.
func (s *Service) Execute(ctx context.Context, req Request) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = s.discoveryCfg.MaxResults
	}

	now := s.now()
	run := &discoverydomain.Run{
		ID:              uuid.NewString(),
		Keywords:        lowerAll(req.Keywords),
		FilingDateStart: req.FilingDateStart,
		FilingDateEnd:   req.FilingDateEnd,
		AssigneeType:    req.AssigneeType,
		MaxResults:      maxResults,
		Status:          discoverydomain.StatusPending,
		Diagnostics:     discoverydomain.NewDiagnostics(patentsview.Provider),
		CreatedAt:       now,
	}
	run.Diagnostics.QuerySummary = discoverydomain.SummarizeQuery(
		run.Keywords, run.FilingDateStart, run.FilingDateEnd)

	if err := s.runs.Create(ctx, run); err != nil {
		return nil, err
	}

	started := s.now()
	run.StartedAt = &started
	run.Status = discoverydomain.StatusRunning
	if err := s.runs.Update(ctx, run); err != nil {
		return nil, err
	}

	expanded := ExpandKeywords(run.Keywords, DefaultMaxExpandedKeywords)
	merged, failedPasses := s.executePasses(ctx, run, expanded)

	if len(merged) == 0 {
		s.finishEmpty(ctx, run, failedPasses)
		return &Result{Run: run}, nil
	}

	scored := s.scoreCandidates(run, merged, expanded)
	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}

	if err := s.patents.SaveBatch(ctx, scored); err != nil {
		s.fail(ctx, run, err.Error())
		return nil, err
	}

	run.Diagnostics.Status = "ok"
	if len(failedPasses) > 0 {
		run.Diagnostics.Status = "degraded"
	}
	s.complete(ctx, run, discoverydomain.StatusCompleted)
	s.publishCompleted(ctx, run, len(scored))

	s.logger.Info("discovery run completed",
		logging.String("run_id", run.ID),
		logging.Int("candidates", run.Diagnostics.DedupedCount),
		logging.Int("scored", len(scored)),
		logging.String("status", string(run.Status)))

	return &Result{Run: run, Patents: scored}, nil
}

// GetRun returns a stored run with its diagnostics.
func (s *Service) GetRun(ctx context.Context, id string) (*discoverydomain.Run, error) {
	return s.runs.GetByID(ctx, id)
}

// ListRuns returns stored runs, newest first.
func (s *Service) ListRuns(ctx context.Context, filter discoverydomain.ListFilter) ([]*discoverydomain.Run, error) {
	return s.runs.List(ctx, filter)
}

// executePasses runs the four passes in order, merging candidates into a
// first-seen-wins pool keyed by patent id.  Each record's pass membership
// accumulates across duplicate sightings.  Returns the merged pool in
// first-seen order and the names of failed passes.
func (s *Service) executePasses(ctx context.Context, run *discoverydomain.Run, expanded []string) ([]*patent.Record, []string) {
	pool := make(map[string]*patent.Record)
	var order []string
	var failed []string

	for _, pass := range discoverydomain.PassOrder {
		passStart := s.now()
		query := buildPassQuery(pass, run, expanded, s.discoveryCfg.PerPassLimit)

		raws, err := s.searchPass(ctx, pass, query)
		elapsed := s.now().Sub(passStart)
		if err != nil {
			failed = append(failed, pass)
			run.Diagnostics.RecordError(fmt.Sprintf("%s: %v", pass, err))
			run.Diagnostics.PassCounts[pass] = 0
			if s.metrics != nil {
				s.metrics.ObservePass(pass, "error", 0, elapsed)
			}
			s.logger.Warn("retrieval pass failed",
				logging.String("run_id", run.ID),
				logging.String("pass", pass),
				logging.Err(err))
			continue
		}

		records, dropped := patentsview.NormalizeBatch(raws)
		run.Diagnostics.RawCount += len(raws)
		run.Diagnostics.FilteredCount += len(records)
		run.Diagnostics.PassCounts[pass] = len(records)
		if dropped > 0 {
			run.Diagnostics.Warnings = append(run.Diagnostics.Warnings,
				fmt.Sprintf("%s: dropped %d records without a patent id", pass, dropped))
		}
		if s.metrics != nil {
			s.metrics.ObservePass(pass, "ok", len(records), elapsed)
		}

		for i := range records {
			rec := records[i]
			existing, seen := pool[rec.PatentID]
			if seen {
				existing.AddPass(pass)
				if s.metrics != nil {
					s.metrics.DiscoveryDedupDropped.Inc()
				}
				continue
			}
			rec.AddPass(pass)
			pool[rec.PatentID] = &rec
			order = append(order, rec.PatentID)
		}
	}

	merged := make([]*patent.Record, 0, len(order))
	for _, id := range order {
		merged = append(merged, pool[id])
	}
	run.Diagnostics.DedupedCount = len(merged)
	return merged, failed
}

// searchPass fetches one pass, through the cache when one is configured.
func (s *Service) searchPass(ctx context.Context, pass string, query patentsview.Query) ([]patentsview.RawPatent, error) {
	limit := s.discoveryCfg.PerPassLimit

	if s.cache == nil || s.passKey == nil {
		return s.client.Search(ctx, query, limit)
	}

	key := s.passKey(pass, patentsview.BuildPayload(query))
	var cached []patentsview.RawPatent
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("pass cache read failed", logging.String("pass", pass), logging.Err(err))
	}
	if hit {
		if s.metrics != nil {
			s.metrics.CacheHitsTotal.WithLabelValues("discovery_pass").Inc()
		}
		return cached, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMissesTotal.WithLabelValues("discovery_pass").Inc()
	}

	raws, err := s.client.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, key, raws, s.discoveryCfg.CacheTTL); err != nil {
		s.logger.Warn("pass cache write failed", logging.String("pass", pass), logging.Err(err))
	}
	return raws, nil
}

// scoreCandidates computes the three scorecard layers for every merged
// record and returns them ranked by opportunity, patent id breaking ties so
// identical inputs always produce identical orderings.
func (s *Service) scoreCandidates(run *discoverydomain.Run, merged []*patent.Record, expanded []string) []patent.ScoredPatent {
	scoringStart := s.now()

	corpus := make([]string, len(merged))
	for i, rec := range merged {
		corpus[i] = rec.Text()
	}
	retrievalCtx := scoring.RetrievalContext{
		QueryKeywords: run.Keywords,
		ExpandedTerms: scoring.Tokenize(strings.Join(expanded, " ")),
		CorpusDocs:    corpus,
		TotalPasses:   len(discoverydomain.PassOrder),
		Now:           s.now(),
	}

	retrievalW := s.retrievalWeights()
	viabilityW := s.viabilityWeights()
	opportunityW := s.opportunityWeights()

	scoredAt := s.now()
	scored := make([]patent.ScoredPatent, 0, len(merged))
	for _, rec := range merged {
		retrieval := scoring.ComputeRetrieval(rec, retrievalCtx, retrievalW)
		viability := scoring.ComputeViability(rec, viabilityW, retrievalCtx.Now)
		opportunity := scoring.ComputeOpportunity(
			retrieval.Total, viability.Total, retrieval.ExpirationConfidence, opportunityW)

		breakdown, err := json.Marshal(ScoreBreakdown{
			ScoringVersion: scoring.Version,
			Retrieval:      retrieval,
			Viability:      viability,
			Opportunity:    opportunity,
			Explanations:   scoring.Explain(retrieval, viability, opportunity, opportunityW),
		})
		if err != nil {
			// Scorecards are plain numeric structs; this cannot fail on
			// well-formed data, but an unexplained patent is still scorable.
			s.logger.Error("breakdown serialization failed",
				logging.String("patent_id", rec.PatentID), logging.Err(err))
			breakdown = nil
		}

		scored = append(scored, patent.ScoredPatent{
			Record:           *rec,
			RunID:            run.ID,
			RelevanceScore:   retrieval.Total,
			ViabilityScore:   viability.Total,
			ExpirationScore:  retrieval.ExpirationConfidence,
			OpportunityScore: opportunity,
			MarketDomain:     viability.MarketDomain,
			Breakdown:        breakdown,
			ScoredAt:         scoredAt,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].OpportunityScore != scored[j].OpportunityScore {
			return scored[i].OpportunityScore > scored[j].OpportunityScore
		}
		return scored[i].Record.PatentID < scored[j].Record.PatentID
	})

	if s.metrics != nil {
		s.metrics.ScoringDuration.Observe(s.now().Sub(scoringStart).Seconds())
	}
	return scored
}

// finishEmpty closes out a run that produced no candidates.  All passes
// failing marks the run failed; passes succeeding with zero rows completes
// the run with a zero_results diagnosis and remediation hints.
func (s *Service) finishEmpty(ctx context.Context, run *discoverydomain.Run, failedPasses []string) {
	if len(failedPasses) == len(discoverydomain.PassOrder) {
		run.Diagnostics.Status = "failed"
		run.Diagnostics.NextActions = append(run.Diagnostics.NextActions,
			"verify the PatentsView API key (PATMINER_DISCOVERY_API_KEY)",
			"check PatentsView service status and retry")
		s.fail(ctx, run, "all retrieval passes failed")
		s.publishCompleted(ctx, run, 0)
		return
	}

	run.Diagnostics.Status = "zero_results"
	run.Diagnostics.NextActions = append(run.Diagnostics.NextActions,
		"broaden the keywords or rely on synonym expansion",
		"widen the filing date window",
		"drop the assignee type filter")
	s.complete(ctx, run, discoverydomain.StatusCompleted)
	s.publishCompleted(ctx, run, 0)

	s.logger.Info("discovery run returned no candidates",
		logging.String("run_id", run.ID),
		logging.String("query", run.Diagnostics.QuerySummary))
}

func (s *Service) complete(ctx context.Context, run *discoverydomain.Run, status discoverydomain.RunStatus) {
	completed := s.now()
	run.CompletedAt = &completed
	run.Status = status
	if err := s.runs.Update(ctx, run); err != nil {
		s.logger.Error("run update failed", logging.String("run_id", run.ID), logging.Err(err))
	}
	if s.metrics != nil {
		s.metrics.DiscoveryRunsTotal.WithLabelValues(string(status)).Inc()
	}
}

func (s *Service) fail(ctx context.Context, run *discoverydomain.Run, reason string) {
	run.FailureReason = reason
	s.complete(ctx, run, discoverydomain.StatusFailed)
}

func (s *Service) publishCompleted(ctx context.Context, run *discoverydomain.Run, patentCount int) {
	if s.events == nil {
		return
	}
	completedAt := s.now()
	if run.CompletedAt != nil {
		completedAt = *run.CompletedAt
	}
	payload := kafka.DiscoveryCompletedPayload{
		RunID:         run.ID,
		Status:        string(run.Status),
		PatentCount:   patentCount,
		DedupedCount:  run.Diagnostics.DedupedCount,
		FailureReason: run.FailureReason,
		CompletedAt:   completedAt,
	}
	err := s.events.Publish(ctx, kafka.TopicDiscoveryCompleted, "discovery.completed", run.ID, payload)
	if err != nil {
		s.logger.Warn("completion event publish failed",
			logging.String("run_id", run.ID), logging.Err(err))
	}
}

func (s *Service) retrievalWeights() scoring.RetrievalWeights {
	w := s.scoringCfg.Retrieval
	if w.Sum() == 0 {
		return scoring.DefaultRetrievalWeights()
	}
	return scoring.RetrievalWeights{
		TitleExactMatch:      w.TitleExactMatch,
		QueryCoverage:        w.QueryCoverage,
		SemanticSimilarity:   w.SemanticSimilarity,
		ExpirationConfidence: w.ExpirationConfidence,
		PassDiversity:        w.PassDiversity,
	}
}

func (s *Service) viabilityWeights() scoring.ViabilityWeights {
	w := s.scoringCfg.Viability
	if w.Sum() == 0 {
		return scoring.DefaultViabilityWeights()
	}
	return scoring.ViabilityWeights{
		MarketDemand:             w.MarketDemand,
		BuildFeasibility:         w.BuildFeasibility,
		CompetitionHeadroom:      w.CompetitionHeadroom,
		DifferentiationPotential: w.DifferentiationPotential,
		CommercialReadiness:      w.CommercialReadiness,
	}
}

func (s *Service) opportunityWeights() scoring.OpportunityWeights {
	w := s.scoringCfg.Opportunity
	if w.Sum() == 0 {
		return scoring.DefaultOpportunityWeights()
	}
	return scoring.OpportunityWeights{
		Relevance:  w.Relevance,
		Viability:  w.Viability,
		Expiration: w.Expiration,
	}
}

func validateRequest(req Request) error {
	var nonEmpty int
	for _, kw := range req.Keywords {
		if strings.TrimSpace(kw) != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return errors.New(errors.ErrCodeValidation, "at least one keyword is required")
	}
	return nil
}

func lowerAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
