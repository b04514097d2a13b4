package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patentminer/patentminer/internal/domain/patent"
)

func retrievalCtx(records []*patent.Record) RetrievalContext {
	corpus := make([]string, 0, len(records))
	for _, r := range records {
		corpus = append(corpus, r.Text())
	}
	return RetrievalContext{
		QueryKeywords: []string{"portable", "sensor"},
		ExpandedTerms: []string{"portable", "sensor", "mobile", "handheld", "detector"},
		CorpusDocs:    corpus,
		TotalPasses:   4,
		Now:           scoreNow,
	}
}

func TestRetrievalSignalsWithinBounds(t *testing.T) {
	records := fixtureCandidates()
	ctx := retrievalCtx(records)
	weights := DefaultRetrievalWeights()

	for _, r := range records {
		card := ComputeRetrieval(r, ctx, weights)
		for name, value := range card.Components() {
			assert.GreaterOrEqual(t, value, 0.0, "%s for %s", name, r.PatentID)
			assert.LessOrEqual(t, value, 10.0, "%s for %s", name, r.PatentID)
		}
		assert.GreaterOrEqual(t, card.Total, 0.0)
		assert.LessOrEqual(t, card.Total, 10.0)
	}
}

func TestRetrievalDeterministic(t *testing.T) {
	records := fixtureCandidates()
	ctx := retrievalCtx(records)
	weights := DefaultRetrievalWeights()

	first := ComputeRetrieval(records[1], ctx, weights)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ComputeRetrieval(records[1], ctx, weights))
	}
}

func TestTitleExactMatchFractions(t *testing.T) {
	full := tokenSet(Tokenize("Portable sensor apparatus"))
	assert.Equal(t, 1.0, titleExactMatch([]string{"portable", "sensor"}, full))

	half := tokenSet(Tokenize("Portable probe"))
	assert.Equal(t, 0.5, titleExactMatch([]string{"portable", "sensor"}, half))

	// Multi-word keywords require every token.
	assert.Equal(t, 1.0, titleExactMatch([]string{"portable sensor"}, full))
	assert.Equal(t, 0.0, titleExactMatch([]string{"portable probe"}, full))

	assert.Equal(t, 0.0, titleExactMatch(nil, full))
}

func TestPassDiversityScaling(t *testing.T) {
	assert.Equal(t, 0.0, passDiversity(0, 4))
	assert.Equal(t, 2.5, passDiversity(1, 4))
	assert.Equal(t, 10.0, passDiversity(4, 4))
	// Memberships beyond the pass count clamp instead of exceeding scale.
	assert.Equal(t, 10.0, passDiversity(6, 4))
	assert.Equal(t, 0.0, passDiversity(2, 0))
}

func TestMultiPassCandidateOutranksSinglePass(t *testing.T) {
	onTopic := &patent.Record{
		PatentID: "MULTI",
		Title:    "Portable sensor system",
		Abstract: "A portable sensor for monitoring.",
		FilingDate: fixtureDate(1999, 1, 1),
	}
	onTopic.AddPass("strict_intent")
	onTopic.AddPass("title_priority")
	onTopic.AddPass("broad_fallback")

	offTopic := &patent.Record{
		PatentID: "SINGLE",
		Title:    "Network router housing",
		Abstract: "A housing for network equipment.",
		FilingDate: fixtureDate(1999, 1, 1),
	}
	offTopic.AddPass("broad_fallback")

	ctx := retrievalCtx([]*patent.Record{onTopic, offTopic})
	weights := DefaultRetrievalWeights()

	assert.Greater(t,
		ComputeRetrieval(onTopic, ctx, weights).Total,
		ComputeRetrieval(offTopic, ctx, weights).Total)
}

func TestOpportunityBlendMatchesWeights(t *testing.T) {
	weights := DefaultOpportunityWeights()
	got := ComputeOpportunity(7.2, 6.0, 8.5, weights)
	want := round3(7.2*0.35 + 6.0*0.45 + 8.5*0.20)
	assert.Equal(t, want, got)
}

func TestOpportunityMonotonicInEachInput(t *testing.T) {
	weights := DefaultOpportunityWeights()
	base := ComputeOpportunity(5, 5, 5, weights)

	assert.Greater(t, ComputeOpportunity(6, 5, 5, weights), base)
	assert.Greater(t, ComputeOpportunity(5, 6, 5, weights), base)
	assert.Greater(t, ComputeOpportunity(5, 5, 6, weights), base)
}

func TestOpportunityNeverExceedsComponentScale(t *testing.T) {
	weights := DefaultOpportunityWeights()
	assert.LessOrEqual(t, ComputeOpportunity(10, 10, 10, weights), 10.0)
	assert.GreaterOrEqual(t, ComputeOpportunity(0, 0, 0, weights), 0.0)
}

func TestExplainIsDeterministicAndNamesTopComponents(t *testing.T) {
	records := fixtureCandidates()
	ctx := retrievalCtx(records)

	retrieval := ComputeRetrieval(records[1], ctx, DefaultRetrievalWeights())
	viability := ComputeViability(records[1], DefaultViabilityWeights(), scoreNow)
	opportunity := ComputeOpportunity(retrieval.Total, viability.Total, retrieval.ExpirationConfidence, DefaultOpportunityWeights())

	first := Explain(retrieval, viability, opportunity, DefaultOpportunityWeights())
	second := Explain(retrieval, viability, opportunity, DefaultOpportunityWeights())
	assert.Equal(t, first, second)

	assert.Contains(t, first.Viability, viability.MarketDomain)
	assert.Contains(t, first.Opportunity, "relevance")
	assert.NotEmpty(t, first.Retrieval)
}
