package scoring

import (
	"fmt"
	"time"

	"github.com/patentminer/patentminer/internal/domain/patent"
)

// ViabilityWeights blends the five viability components into one total.
// Callers validate that the weights sum to 1.0 before scoring.
type ViabilityWeights struct {
	MarketDemand             float64 `json:"market_demand"`
	BuildFeasibility         float64 `json:"build_feasibility"`
	CompetitionHeadroom      float64 `json:"competition_headroom"`
	DifferentiationPotential float64 `json:"differentiation_potential"`
	CommercialReadiness      float64 `json:"commercial_readiness"`
}

// DefaultViabilityWeights returns the canonical component weights.
func DefaultViabilityWeights() ViabilityWeights {
	return ViabilityWeights{
		MarketDemand:             0.28,
		BuildFeasibility:         0.22,
		CompetitionHeadroom:      0.18,
		DifferentiationPotential: 0.18,
		CommercialReadiness:      0.14,
	}
}

// ViabilityScorecard carries the five component scores, the classified
// market domain, and the weighted total.  Immutable after computation.
type ViabilityScorecard struct {
	MarketDomain string         `json:"market_domain"`
	DomainHits   map[string]int `json:"domain_hits"`

	MarketDemand             float64 `json:"market_demand"`
	BuildFeasibility         float64 `json:"build_feasibility"`
	CompetitionHeadroom      float64 `json:"competition_headroom"`
	DifferentiationPotential float64 `json:"differentiation_potential"`
	CommercialReadiness      float64 `json:"commercial_readiness"`

	Total   float64 `json:"total"`
	Summary string  `json:"summary"`
}

// marketDomain pairs a domain name with its indicator terms.  Order matters:
// classification ties resolve to the earliest entry so results stay
// deterministic.
type marketDomain struct {
	name  string
	terms []string
}

const domainGeneralSensors = "general_sensors"

var marketDomainTaxonomy = []marketDomain{
	{"healthcare_wearables", []string{
		"patient", "vital", "temperature", "heart", "physiological",
		"biometric", "wearable", "monitoring", "medical",
	}},
	{"industrial_safety", []string{
		"gas", "toxic", "hazard", "osha", "industrial", "safety",
		"detector", "monitor", "compliance",
	}},
	{"environmental_monitoring", []string{
		"air", "water", "environment", "quality", "pollution", "climate",
		"portable", "sensor",
	}},
	{"precision_agriculture", []string{
		"soil", "moisture", "crop", "field", "agriculture", "irrigation",
		"farm", "ph",
	}},
	{"consumer_iot", []string{
		"wireless", "network", "mobile", "app", "connected", "smart",
		"remote",
	}},
}

var (
	demandTerms = []string{
		"automation", "real", "time", "safety", "health", "monitoring",
		"compliance", "efficiency", "predictive",
	}
	complexityTerms = []string{
		"spectrometry", "chromatography", "calibration", "biochemical",
		"electrode", "multivariate", "algorithm", "multiplex",
	}
	competitionTerms = []string{
		"system", "method", "platform", "network", "module", "device",
	}
	differentiationTerms = []string{
		"portable", "wireless", "integrated", "adaptive", "real", "time",
		"autonomous", "predictive",
	}
	readinessTerms = []string{
		"prototype", "deployment", "production", "manufacturing", "kit",
		"portable", "apparatus",
	}
)

// hitDecay controls the diminishing-returns curve for repeated keyword
// hits.  The first hit contributes the full per-hit scale; each further hit
// contributes 70% of the previous one, so keyword stuffing cannot run a
// component away.
const hitDecay = 0.7

// hitContribution maps a hit count to a score contribution on a geometric
// diminishing-returns curve.  hitContribution(1, s) == s, and the series is
// bounded by s/(1-hitDecay).
func hitContribution(hits int, scale float64) float64 {
	if hits <= 0 {
		return 0
	}
	return scale * (1 - pow(hitDecay, hits)) / (1 - hitDecay)
}

func pow(base float64, exp int) float64 {
	out := 1.0
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}

// ClassifyMarketDomain assigns the patent to the taxonomy domain with the
// most indicator-term matches, falling back to general_sensors when nothing
// matches.  Returns the per-domain match counts for explainability.
func ClassifyMarketDomain(r *patent.Record) (string, map[string]int) {
	tokens := tokenSet(Tokenize(r.Text()))

	hits := make(map[string]int, len(marketDomainTaxonomy))
	best := domainGeneralSensors
	bestHits := 0
	for _, domain := range marketDomainTaxonomy {
		count := countHits(tokens, domain.terms)
		hits[domain.name] = count
		if count > bestHits {
			best = domain.name
			bestHits = count
		}
	}
	return best, hits
}

// ComputeViability builds the deterministic viability scorecard for a
// patent.  now anchors the expiration-confidence input of the commercial
// readiness component; pass a fixed time for reproducible runs.
func ComputeViability(r *patent.Record, weights ViabilityWeights, now time.Time) ViabilityScorecard {
	tokens := tokenSet(Tokenize(r.Text()))
	domain, domainHits := ClassifyMarketDomain(r)

	marketDemand := Clamp(4.5 + hitContribution(countHits(tokens, demandTerms), 0.8))

	complexityPenalty := Clamp(hitContribution(countHits(tokens, complexityTerms), 0.9))
	buildFeasibility := Clamp(8.8 - complexityPenalty)

	competitionPressure := Clamp(hitContribution(countHits(tokens, competitionTerms), 0.7))
	individualBonus := 0.0
	if r.HasIndividualAssignee() {
		individualBonus = 0.8
	}
	competitionHeadroom := Clamp(7.0 - competitionPressure + individualBonus)

	differentiation := Clamp(4.2 + hitContribution(countHits(tokens, differentiationTerms), 0.7))

	readinessSignal := Clamp(3.8 + hitContribution(countHits(tokens, readinessTerms), 0.6))
	expirationSignal := patent.ExpirationConfidence(r, now)
	commercialReadiness := Clamp(readinessSignal*0.6 + expirationSignal*0.4)

	card := ViabilityScorecard{
		MarketDomain:             domain,
		DomainHits:               domainHits,
		MarketDemand:             round3(marketDemand),
		BuildFeasibility:         round3(buildFeasibility),
		CompetitionHeadroom:      round3(competitionHeadroom),
		DifferentiationPotential: round3(differentiation),
		CommercialReadiness:      round3(commercialReadiness),
	}

	total := card.MarketDemand*weights.MarketDemand +
		card.BuildFeasibility*weights.BuildFeasibility +
		card.CompetitionHeadroom*weights.CompetitionHeadroom +
		card.DifferentiationPotential*weights.DifferentiationPotential +
		card.CommercialReadiness*weights.CommercialReadiness
	card.Total = round3(Clamp(total))

	card.Summary = fmt.Sprintf("Domain=%s; demand=%.1f, feasibility=%.1f, headroom=%.1f.",
		domain, card.MarketDemand, card.BuildFeasibility, card.CompetitionHeadroom)
	return card
}

// Components returns the component scores keyed by name, for explanation
// templates and persistence.
func (c ViabilityScorecard) Components() map[string]float64 {
	return map[string]float64{
		"market_demand":             c.MarketDemand,
		"build_feasibility":         c.BuildFeasibility,
		"competition_headroom":      c.CompetitionHeadroom,
		"differentiation_potential": c.DifferentiationPotential,
		"commercial_readiness":      c.CommercialReadiness,
	}
}
