// Package analysis turns scored discovery candidates into investment-grade
// assessments: technology classification, technical scoring, manufacturing
// profiling, benchmark-calibrated financials, strategic fit, and a weighted
// integrated ranking.  Every step is a deterministic text heuristic; the
// same record always produces the same assessment.
package analysis

import (
	"strings"

	"github.com/patentminer/patentminer/internal/domain/patent"
)

// technologyTheme pairs a theme with its indicator terms.  Order matters:
// the first matching theme becomes the primary classification.
type technologyTheme struct {
	name  string
	terms []string
}

var technologyThemes = []technologyTheme{
	{"sensors", []string{"sensor", "detector", "monitor", "measure"}},
	{"materials", []string{"material", "alloy", "polymer", "composite", "coating"}},
	{"process", []string{"method", "process", "reaction", "synthesis", "treatment"}},
	{"control_systems", []string{"control", "feedback", "regulation", "automation"}},
	{"apparatus", []string{"device", "apparatus", "instrument", "equipment"}},
	{"wireless", []string{"wireless", "radio", "transmit", "receiver", "communication"}},
	{"energy", []string{"energy", "power", "battery", "fuel", "motor"}},
}

// ThemeFallback is assigned when no theme term matches.
const ThemeFallback = "enabling_technology"

// Patent type classifications.
const (
	PatentTypeProcess   = "process"
	PatentTypeApparatus = "apparatus"
	PatentTypeProduct   = "product"
)

// ClassifyTechnology returns the primary technology theme and every theme
// whose terms appear in the record's text.
func ClassifyTechnology(r *patent.Record) (string, []string) {
	combined := strings.ToLower(r.Text())

	var detected []string
	for _, theme := range technologyThemes {
		if containsAny(combined, theme.terms) {
			detected = append(detected, theme.name)
		}
	}
	if len(detected) == 0 {
		return ThemeFallback, nil
	}
	return detected[0], detected
}

// ClassifyPatentType buckets a record as process, apparatus, or product.
func ClassifyPatentType(r *patent.Record) string {
	combined := strings.ToLower(r.Text())
	abstract := strings.ToLower(r.Abstract)

	switch {
	case strings.Contains(combined, "method") ||
		strings.Contains(combined, "process") ||
		strings.Contains(abstract, "comprises"):
		return PatentTypeProcess
	case strings.Contains(combined, "apparatus") || strings.Contains(combined, "device"):
		return PatentTypeApparatus
	default:
		return PatentTypeProduct
	}
}

// TechnicalScore carries the four technical assessment dimensions, each on
// [1,10].  Implementation risk is inverted so 10 means low risk.
type TechnicalScore struct {
	ScientificRobustness       float64 `json:"scientific_robustness"`
	ManufacturingFeasibility   float64 `json:"manufacturing_feasibility_current"`
	ModernizationPotential     float64 `json:"modernization_potential"`
	ImplementationRiskInverted float64 `json:"technical_implementation_risk_inverted"`
}

// ScoreTechnical rates the four technical dimensions from text signals.
func ScoreTechnical(r *patent.Record, theme, patentType string) TechnicalScore {
	combined := strings.ToLower(r.Text())

	robustness := 5.0
	if len(r.Abstract) > 800 {
		robustness += 1.5
	}
	if strings.Contains(combined, "comprise") {
		robustness += 0.5
	}
	if strings.Contains(combined, "advantage") || strings.Contains(combined, "improvement") {
		robustness += 0.5
	}

	feasibility := 5.0
	if strings.Contains(combined, "temperature") && strings.Contains(combined, "pressure") {
		feasibility += 1.0
	}
	if theme == "sensors" {
		feasibility += 1.5
	}
	if patentType == PatentTypeApparatus {
		feasibility += 0.5
	}
	if containsAny(combined, []string{"complex", "difficult", "challenging"}) {
		feasibility -= 1.0
	}

	modernization := 6.0
	if filingYear(r) > 1990 {
		modernization += 1.5
	}
	if containsAny(combined, []string{"automatic", "digital", "electronic"}) {
		modernization += 1.5
	}
	if strings.Contains(combined, "wireless") || strings.Contains(combined, "network") {
		modernization += 1.0
	}

	riskInverted := 7.0
	if strings.Contains(combined, "simple") || strings.Contains(combined, "straightforward") {
		riskInverted += 1.5
	}
	if containsAny(combined, []string{"hazardous", "complex", "sensitive", "unstable"}) {
		riskInverted -= 2.0
	}

	return TechnicalScore{
		ScientificRobustness:       clipScore(robustness),
		ManufacturingFeasibility:   clipScore(feasibility),
		ModernizationPotential:     clipScore(modernization),
		ImplementationRiskInverted: clipScore(riskInverted),
	}
}

// ManufacturingProfile estimates what reviving the patent would take on the
// shop floor.
type ManufacturingProfile struct {
	RequiredMaterials           []string `json:"required_materials"`
	RequiredEquipment           []string `json:"required_equipment"`
	ProcessComplexity           string   `json:"process_complexity"`
	TRLEstimate                 int      `json:"trl_estimate"`
	CapexLow                    float64  `json:"capex_low"`
	CapexHigh                   float64  `json:"capex_high"`
	ProductionType              string   `json:"production_type"`
	ModernizationTimelineMonths int      `json:"modernization_timeline_months"`
}

type keywordClass struct {
	name  string
	terms []string
}

var materialClasses = []keywordClass{
	{"metal", []string{"aluminum", "steel", "copper", "titanium", "iron", "alloy"}},
	{"polymer", []string{"plastic", "polymer", "resin", "polyester", "polyethylene"}},
	{"ceramic", []string{"ceramic", "glass", "silicon", "oxide"}},
}

var equipmentClasses = []keywordClass{
	{"reactor", []string{"reaction", "reactor", "synthesis", "mix"}},
	{"sensor", []string{"sensor", "detector", "measurement"}},
	{"pcb_assembly", []string{"circuit", "board", "electronics", "electronic"}},
	{"coating", []string{"coat", "deposit", "layer", "spray"}},
}

// EstimateManufacturing infers the manufacturing profile from text signals
// and the patent's filing year.
func EstimateManufacturing(r *patent.Record, patentType string) ManufacturingProfile {
	combined := strings.ToLower(r.Text())

	profile := ManufacturingProfile{
		ProcessComplexity: "medium",
		ProductionType:    "batch",
	}

	for _, class := range materialClasses {
		if containsAny(combined, class.terms) {
			profile.RequiredMaterials = append(profile.RequiredMaterials, class.name)
		}
	}
	for _, class := range equipmentClasses {
		if containsAny(combined, class.terms) {
			profile.RequiredEquipment = append(profile.RequiredEquipment, class.name)
		}
	}

	if containsAny(combined, []string{"complex", "multistep", "sequential"}) {
		profile.ProcessComplexity = "high"
	} else if strings.Contains(combined, "simple") || strings.Contains(combined, "straightforward") {
		profile.ProcessComplexity = "low"
	}

	// A post-2000 filing was disclosed against a modern industrial base and
	// starts one TRL step higher.
	profile.TRLEstimate = 6
	if filingYear(r) > 2000 {
		profile.TRLEstimate = 7
	}

	if patentType == PatentTypeApparatus {
		profile.CapexLow, profile.CapexHigh = 50_000, 500_000
	} else {
		profile.CapexLow, profile.CapexHigh = 25_000, 250_000
	}

	if strings.Contains(combined, "continuous") || strings.Contains(combined, "flow") {
		profile.ProductionType = "continuous"
	}

	profile.ModernizationTimelineMonths = 12 - 2*(profile.TRLEstimate-5)
	if profile.ModernizationTimelineMonths < 3 {
		profile.ModernizationTimelineMonths = 3
	}
	return profile
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func clipScore(v float64) float64 {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

func filingYear(r *patent.Record) int {
	if r.FilingDate == nil {
		return 2000
	}
	return r.FilingDate.Year()
}
