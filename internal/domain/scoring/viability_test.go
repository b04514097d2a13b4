package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/patentminer/patentminer/internal/domain/patent"
)

var scoreNow = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func fixtureDate(y, m, d int) *time.Time {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return &t
}

func fixtureCandidates() []*patent.Record {
	return []*patent.Record{
		{
			PatentID: "US100",
			Title:    "Portable sensor apparatus",
			Abstract: "A portable sensor apparatus for gas detection in industrial safety environments.",
			FilingDate: fixtureDate(1998, 4, 10),
		},
		{
			PatentID: "US102",
			Title:    "Portable wireless sensor system",
			Abstract: "A portable wireless sensor with real-time monitoring for safety compliance.",
			FilingDate: fixtureDate(1999, 8, 2),
		},
		{
			PatentID: "US104",
			Title:    "Wearable patient monitoring device",
			Abstract: "A wearable device measuring patient heart rate and physiological vital signs.",
			FilingDate: fixtureDate(2000, 1, 20),
		},
		{
			PatentID: "US105",
			Title:    "Soil moisture probe",
			Abstract: "A soil moisture probe for crop irrigation scheduling in precision agriculture.",
			FilingDate: fixtureDate(1997, 11, 5),
		},
		{
			PatentID: "US107",
			Title:    "Spectrometry calibration module",
			Abstract: "A spectrometry system with multivariate calibration algorithm and electrode array.",
			GrantDate: fixtureDate(2002, 6, 30),
		},
		{
			PatentID:     "US109",
			Title:        "Handheld detector kit",
			Abstract:     "",
			AssigneeType: "4",
		},
	}
}

func TestViabilityComponentsWithinBounds(t *testing.T) {
	weights := DefaultViabilityWeights()
	for _, candidate := range fixtureCandidates() {
		card := ComputeViability(candidate, weights, scoreNow)
		for name, value := range card.Components() {
			assert.GreaterOrEqual(t, value, 0.0, "%s below 0 for %s", name, candidate.PatentID)
			assert.LessOrEqual(t, value, 10.0, "%s above 10 for %s", name, candidate.PatentID)
		}
		assert.GreaterOrEqual(t, card.Total, 0.0, candidate.PatentID)
		assert.LessOrEqual(t, card.Total, 10.0, candidate.PatentID)
	}
}

func TestViabilityDeterministic(t *testing.T) {
	weights := DefaultViabilityWeights()
	sample := fixtureCandidates()[1]

	first := ComputeViability(sample, weights, scoreNow)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ComputeViability(sample, weights, scoreNow))
	}
}

func TestMarketDomainAssignments(t *testing.T) {
	candidates := fixtureCandidates()

	wearableDomain, hits := ClassifyMarketDomain(candidates[2]) // US104
	assert.Equal(t, "healthcare_wearables", wearableDomain)
	assert.Greater(t, hits["healthcare_wearables"], 0)

	soilDomain, _ := ClassifyMarketDomain(candidates[3]) // US105
	assert.Equal(t, "precision_agriculture", soilDomain)
}

func TestMarketDomainFallback(t *testing.T) {
	blank := &patent.Record{PatentID: "X", Title: "Apparatus", Abstract: "An apparatus."}
	domain, hits := ClassifyMarketDomain(blank)
	assert.Equal(t, "general_sensors", domain)
	for name, count := range hits {
		assert.Zero(t, count, name)
	}
}

// A differentiated abstract must clear documented thresholds: demand above
// 5.0 and differentiation above 5.5 for the portable/wireless/real-time
// regression fixture.
func TestDifferentiatedFixtureThresholds(t *testing.T) {
	fixture := &patent.Record{
		PatentID: "FIX1",
		Title:    "Portable wireless monitor",
		Abstract: "A portable wireless unit with real-time monitoring.",
	}
	card := ComputeViability(fixture, DefaultViabilityWeights(), scoreNow)

	assert.Greater(t, card.MarketDemand, 5.0)
	assert.Greater(t, card.DifferentiationPotential, 5.5)
}

// An empty abstract (and empty title) must fall back to the component
// baselines rather than erroring: demand 4.5, feasibility 8.8, headroom 7.0,
// differentiation 4.2.
func TestEmptyTextYieldsBaselines(t *testing.T) {
	empty := &patent.Record{PatentID: "EMPTY"}
	card := ComputeViability(empty, DefaultViabilityWeights(), scoreNow)

	assert.Equal(t, 4.5, card.MarketDemand)
	assert.Equal(t, 8.8, card.BuildFeasibility)
	assert.Equal(t, 7.0, card.CompetitionHeadroom)
	assert.Equal(t, 4.2, card.DifferentiationPotential)
	assert.Equal(t, "general_sensors", card.MarketDomain)
}

func TestIndividualAssigneeBonusRaisesHeadroom(t *testing.T) {
	base := &patent.Record{PatentID: "A", Title: "Sensor device", Abstract: "A sensor device."}
	individual := &patent.Record{PatentID: "B", Title: "Sensor device", Abstract: "A sensor device.", AssigneeType: "4"}

	weights := DefaultViabilityWeights()
	assert.InDelta(t, 0.8,
		ComputeViability(individual, weights, scoreNow).CompetitionHeadroom-
			ComputeViability(base, weights, scoreNow).CompetitionHeadroom, 1e-9)
}

func TestComplexityLowersFeasibility(t *testing.T) {
	plain := &patent.Record{PatentID: "P", Title: "Sensor", Abstract: "A sensor."}
	complexOne := &patent.Record{
		PatentID: "C",
		Title:    "Spectrometry sensor",
		Abstract: "A sensor using chromatography and multivariate calibration algorithm.",
	}

	weights := DefaultViabilityWeights()
	assert.Less(t,
		ComputeViability(complexOne, weights, scoreNow).BuildFeasibility,
		ComputeViability(plain, weights, scoreNow).BuildFeasibility)
}

func TestHitContributionDiminishes(t *testing.T) {
	assert.Equal(t, 0.0, hitContribution(0, 0.8))
	assert.InDelta(t, 0.8, hitContribution(1, 0.8), 1e-9)

	// Marginal gains shrink with each additional hit.
	prevGain := hitContribution(1, 0.8)
	for h := 2; h <= 8; h++ {
		gain := hitContribution(h, 0.8) - hitContribution(h-1, 0.8)
		assert.Less(t, gain, prevGain, "hit %d", h)
		prevGain = gain
	}

	// The series is bounded, so keyword stuffing cannot run away.
	assert.Less(t, hitContribution(1000, 0.8), 0.8/(1-hitDecay)+1e-9)
}
