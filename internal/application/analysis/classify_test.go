package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/patentminer/patentminer/internal/domain/patent"
)

func recordFixture(title, abstract string, filingYear int) *patent.Record {
	filing := time.Date(filingYear, time.March, 10, 0, 0, 0, 0, time.UTC)
	grant := filing.AddDate(2, 3, 5)
	return &patent.Record{
		PatentID:   "US7000001",
		Title:      title,
		Abstract:   abstract,
		PatentType: "utility",
		FilingDate: &filing,
		GrantDate:  &grant,
	}
}

func TestClassifyTechnologyFirstMatchWins(t *testing.T) {
	// Matches both "sensors" and "wireless" terms; sensors is checked first.
	rec := recordFixture("Wireless sensor node", "A sensor transmitting over radio.", 2001)
	theme, detected := ClassifyTechnology(rec)
	assert.Equal(t, "sensors", theme)
	assert.Equal(t, []string{"sensors", "wireless"}, detected)
}

func TestClassifyTechnologyFallback(t *testing.T) {
	rec := recordFixture("Widget", "A thing of indeterminate purpose.", 2001)
	theme, detected := ClassifyTechnology(rec)
	assert.Equal(t, ThemeFallback, theme)
	assert.Empty(t, detected)
}

func TestClassifyPatentType(t *testing.T) {
	cases := []struct {
		name     string
		title    string
		abstract string
		want     string
	}{
		{"method in title", "Method of casting", "Molten metal is poured.", PatentTypeProcess},
		{"comprises in abstract", "Gasket", "The seal comprises a ring.", PatentTypeProcess},
		{"apparatus", "Measuring apparatus", "An enclosure with dials.", PatentTypeApparatus},
		{"device", "Cutting device", "A blade on a handle.", PatentTypeApparatus},
		{"default product", "Lubricant blend", "An oil mixture.", PatentTypeProduct},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := recordFixture(tc.title, tc.abstract, 2001)
			assert.Equal(t, tc.want, ClassifyPatentType(rec))
		})
	}
}

func TestScoreTechnicalSensorApparatus(t *testing.T) {
	rec := recordFixture("Simple wireless sensor apparatus",
		"A simple electronic sensor device for wireless measurement.", 2001)
	theme, _ := ClassifyTechnology(rec)
	ptype := ClassifyPatentType(rec)
	score := ScoreTechnical(rec, theme, ptype)

	// Short abstract, no comprise/advantage language.
	assert.Equal(t, 5.0, score.ScientificRobustness)
	// Sensors theme +1.5, apparatus type +0.5 on the 5.0 base.
	assert.Equal(t, 7.0, score.ManufacturingFeasibility)
	// Post-1990 filing +1.5, "electronic" +1.5, "wireless" +1.0, clipped at 10.
	assert.Equal(t, 10.0, score.ModernizationPotential)
	// "simple" lowers perceived implementation risk.
	assert.Equal(t, 8.5, score.ImplementationRiskInverted)
}

func TestScoreTechnicalPenalties(t *testing.T) {
	rec := recordFixture("Hazardous multistep synthesis",
		"A complex and difficult reaction with unstable intermediates.", 1985)
	theme, _ := ClassifyTechnology(rec)
	ptype := ClassifyPatentType(rec)
	score := ScoreTechnical(rec, theme, ptype)

	assert.Equal(t, 4.0, score.ManufacturingFeasibility, "complexity language deducts a point")
	assert.Equal(t, 6.0, score.ModernizationPotential, "pre-1990 filing gets no recency bump")
	assert.Equal(t, 5.0, score.ImplementationRiskInverted, "hazard language deducts two points")
}

func TestScoreTechnicalBoundsHold(t *testing.T) {
	recs := []*patent.Record{
		recordFixture("", "", 2001),
		recordFixture("Simple straightforward automatic digital wireless sensor",
			"Simple electronic network device with advantage and improvement, comprising sensors.", 2010),
	}
	for _, rec := range recs {
		theme, _ := ClassifyTechnology(rec)
		score := ScoreTechnical(rec, theme, ClassifyPatentType(rec))
		for _, v := range []float64{
			score.ScientificRobustness, score.ManufacturingFeasibility,
			score.ModernizationPotential, score.ImplementationRiskInverted,
		} {
			assert.GreaterOrEqual(t, v, 1.0)
			assert.LessOrEqual(t, v, 10.0)
		}
	}
}

func TestEstimateManufacturing(t *testing.T) {
	rec := recordFixture("Electronic sensor apparatus",
		"A circuit board sensor with a polymer coating applied in a continuous flow line.", 2001)
	profile := EstimateManufacturing(rec, PatentTypeApparatus)

	assert.Equal(t, 7, profile.TRLEstimate, "post-2000 filing starts at TRL 7")
	assert.Equal(t, 50_000.0, profile.CapexLow)
	assert.Equal(t, 500_000.0, profile.CapexHigh)
	assert.Equal(t, "continuous", profile.ProductionType)
	assert.Equal(t, 8, profile.ModernizationTimelineMonths)
	assert.Contains(t, profile.RequiredMaterials, "polymer")
	assert.Contains(t, profile.RequiredEquipment, "sensor")
	assert.Contains(t, profile.RequiredEquipment, "pcb_assembly")
	assert.Contains(t, profile.RequiredEquipment, "coating")
}

func TestEstimateManufacturingOlderProcess(t *testing.T) {
	rec := recordFixture("Batch treatment method",
		"A simple batch reaction.", 1995)
	profile := EstimateManufacturing(rec, PatentTypeProcess)

	assert.Equal(t, 6, profile.TRLEstimate)
	assert.Equal(t, 25_000.0, profile.CapexLow)
	assert.Equal(t, 250_000.0, profile.CapexHigh)
	assert.Equal(t, "batch", profile.ProductionType)
	assert.Equal(t, 10, profile.ModernizationTimelineMonths)
	assert.Equal(t, "low", profile.ProcessComplexity)
}

func TestEstimateManufacturingTimelineFloor(t *testing.T) {
	// Even a hypothetical TRL 9 cannot push the timeline below three months.
	profile := ManufacturingProfile{TRLEstimate: 9}
	months := 12 - 2*(profile.TRLEstimate-5)
	if months < 3 {
		months = 3
	}
	assert.Equal(t, 4, months)

	rec := recordFixture("Device", "A device.", 2005)
	got := EstimateManufacturing(rec, PatentTypeApparatus)
	assert.GreaterOrEqual(t, got.ModernizationTimelineMonths, 3)
}

func TestAssessStrategic(t *testing.T) {
	rec := recordFixture("Simple wireless sensor apparatus",
		"A simple electronic sensor device for wireless measurement.", 2001)
	theme, _ := ClassifyTechnology(rec)
	technical := ScoreTechnical(rec, theme, ClassifyPatentType(rec))
	strategic := AssessStrategic(rec, technical)

	assert.Equal(t, 8.5, strategic.StrategicFitScore, "(feasibility + modernization) / 2")
	assert.Equal(t, 1, strategic.RecommendationTier)
	assert.Equal(t, "large", strategic.MarketSizeOpportunity)
	assert.Equal(t, BandLow, strategic.LegalIPRisk, "expired patents carry no IP risk")
	assert.Equal(t, BandLow, strategic.RegulatoryRisk)
	assert.NotEmpty(t, strategic.NextSteps)
	assert.NotEmpty(t, strategic.DerivativeIPCandidates)
}

func TestAssessStrategicRiskBands(t *testing.T) {
	rec := recordFixture("Toxic waste treatment method",
		"A process for hazardous waste reduction in medical facilities.", 1980)
	theme, _ := ClassifyTechnology(rec)
	technical := ScoreTechnical(rec, theme, ClassifyPatentType(rec))
	strategic := AssessStrategic(rec, technical)

	assert.Equal(t, BandHigh, strategic.RegulatoryRisk)
	assert.Equal(t, BandMedium, strategic.ESGBenefit)
	assert.LessOrEqual(t, strategic.StrategicFitScore, 7.0)
	assert.NotEqual(t, 1, strategic.RecommendationTier)
}
