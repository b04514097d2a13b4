package scoring

// OpportunityWeights blends retrieval relevance, viability, and expiration
// confidence into the final ranking score.  Callers validate that the
// weights sum to 1.0.
type OpportunityWeights struct {
	Relevance  float64 `json:"relevance"`
	Viability  float64 `json:"viability"`
	Expiration float64 `json:"expiration"`
}

// DefaultOpportunityWeights returns the canonical blend weights.
func DefaultOpportunityWeights() OpportunityWeights {
	return OpportunityWeights{
		Relevance:  0.35,
		Viability:  0.45,
		Expiration: 0.20,
	}
}

// ComputeOpportunity blends the three layer totals into a single [0,10]
// score.  With weights summing to 1.0 and inputs on [0,10], the blend can
// never exceed the component scale; the clamp guards miscalibrated inputs.
func ComputeOpportunity(retrievalTotal, viabilityTotal, expirationConfidence float64, weights OpportunityWeights) float64 {
	score := retrievalTotal*weights.Relevance +
		viabilityTotal*weights.Viability +
		expirationConfidence*weights.Expiration
	return round3(Clamp(score))
}
