package analysis

import (
	"strings"

	"github.com/patentminer/patentminer/internal/domain/patent"
)

// Risk and benefit bands used across the strategic assessment.
const (
	BandLow    = "low"
	BandMedium = "medium"
	BandHigh   = "high"
)

// StrategicAssessment captures fit, risk posture, and the recommendation
// tier for one patent revival.
type StrategicAssessment struct {
	StrategicFitScore      float64  `json:"strategic_fit_score"`
	CompetitiveAdvantage   float64  `json:"competitive_advantage_potential"`
	MarketSizeOpportunity  string   `json:"market_size_opportunity"`
	LegalIPRisk            string   `json:"legal_ip_risk"`
	RegulatoryRisk         string   `json:"regulatory_risk"`
	ESGBenefit             string   `json:"esg_sustainability_benefit"`
	RecommendationTier     int      `json:"recommendation_tier"`
	NextSteps              []string `json:"next_steps"`
	DerivativeIPCandidates []string `json:"derivative_ip_opportunities"`
}

var defaultNextSteps = []string{
	"Conduct detailed FTO analysis",
	"Perform lab validation trials",
	"Benchmark against current production",
}

var defaultDerivativeIP = []string{
	"Improved process control or automation",
	"Modernized material substitutions",
	"System integration and hybrid approaches",
}

// AssessStrategic derives strategic fit from the technical scores and the
// record's text.  Legal risk is low by construction since only expired
// patents enter the pipeline.
func AssessStrategic(r *patent.Record, technical TechnicalScore) StrategicAssessment {
	combined := strings.ToLower(r.Text())

	fit := clipScore((technical.ManufacturingFeasibility + technical.ModernizationPotential) / 2)
	advantage := clipScore(technical.ScientificRobustness * 0.7)

	market := BandMedium
	if containsAny(combined, []string{"wireless", "sensor", "iot"}) {
		market = "large"
	} else if containsAny(combined, []string{"specialty", "niche", "rare"}) {
		market = "small"
	}

	regulatory := BandLow
	if containsAny(combined, []string{"hazardous", "toxic", "dangerous"}) ||
		containsAny(combined, []string{"medical", "pharmaceutical", "food"}) {
		regulatory = BandHigh
	}

	esg := BandLow
	if containsAny(combined, []string{"energy", "efficient", "green", "clean"}) {
		esg = BandHigh
	} else if containsAny(combined, []string{"waste", "emission", "reduction"}) {
		esg = BandMedium
	}

	legal := BandLow
	tier := 3
	if fit > 7.0 && legal == BandLow {
		tier = 1
	} else if fit > 5.0 {
		tier = 2
	}

	return StrategicAssessment{
		StrategicFitScore:      fit,
		CompetitiveAdvantage:   advantage,
		MarketSizeOpportunity:  market,
		LegalIPRisk:            legal,
		RegulatoryRisk:         regulatory,
		ESGBenefit:             esg,
		RecommendationTier:     tier,
		NextSteps:              defaultNextSteps,
		DerivativeIPCandidates: defaultDerivativeIP,
	}
}
