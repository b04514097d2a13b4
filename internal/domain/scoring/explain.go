package scoring

import (
	"fmt"
	"sort"
	"strings"
)

// Explanations carries the per-layer natural-language rationale attached to
// every scored patent.  Strings are produced by template filling over the
// top contributing components; no free-text generation is involved, so the
// output is deterministic.
type Explanations struct {
	Retrieval   string `json:"retrieval"`
	Viability   string `json:"viability"`
	Opportunity string `json:"opportunity"`
}

// Explain renders the three layer explanations for a scored patent.
func Explain(retrieval RetrievalScorecard, viability ViabilityScorecard, opportunity float64, weights OpportunityWeights) Explanations {
	return Explanations{
		Retrieval: fmt.Sprintf("Relevance %.1f/10 driven by %s.",
			retrieval.Total, topComponents(retrieval.Components(), 2)),
		Viability: fmt.Sprintf("Viability %.1f/10 in %s driven by %s.",
			viability.Total, viability.MarketDomain, topComponents(viability.Components(), 2)),
		Opportunity: fmt.Sprintf(
			"Opportunity %.1f/10 = relevance %.1f x %.2f + viability %.1f x %.2f + expiration %.1f x %.2f.",
			opportunity,
			retrieval.Total, weights.Relevance,
			viability.Total, weights.Viability,
			retrieval.ExpirationConfidence, weights.Expiration),
	}
}

// topComponents lists the n highest-scoring components as "name (value)"
// pairs.  Ties break lexically so repeated runs render identical text.
func topComponents(components map[string]float64, n int) string {
	names := sortedKeys(components)
	sort.SliceStable(names, func(i, j int) bool {
		return components[names[i]] > components[names[j]]
	})
	if n > len(names) {
		n = len(names)
	}

	parts := make([]string, 0, n)
	for _, name := range names[:n] {
		parts = append(parts, fmt.Sprintf("%s (%.1f)", strings.ReplaceAll(name, "_", " "), components[name]))
	}
	return strings.Join(parts, " and ")
}
