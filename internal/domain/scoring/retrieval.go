package scoring

import (
	"strings"
	"time"

	"github.com/patentminer/patentminer/internal/domain/patent"
)

// RetrievalWeights blends the five retrieval signals into one relevance
// total.  Callers validate that the weights sum to 1.0 before scoring.
type RetrievalWeights struct {
	TitleExactMatch      float64 `json:"title_exact_match"`
	QueryCoverage        float64 `json:"query_coverage"`
	SemanticSimilarity   float64 `json:"semantic_similarity"`
	ExpirationConfidence float64 `json:"expiration_confidence"`
	PassDiversity        float64 `json:"pass_diversity"`
}

// DefaultRetrievalWeights returns the canonical signal weights.
func DefaultRetrievalWeights() RetrievalWeights {
	return RetrievalWeights{
		TitleExactMatch:      0.15,
		QueryCoverage:        0.25,
		SemanticSimilarity:   0.30,
		ExpirationConfidence: 0.15,
		PassDiversity:        0.15,
	}
}

// RetrievalScorecard carries the five relevance signals, each on [0,10],
// and the weighted total.  Immutable after computation.
type RetrievalScorecard struct {
	TitleExactMatch      float64 `json:"title_exact_match"`
	QueryCoverage        float64 `json:"query_coverage"`
	SemanticSimilarity   float64 `json:"semantic_similarity"`
	ExpirationConfidence float64 `json:"expiration_confidence"`
	PassDiversity        float64 `json:"pass_diversity"`

	Total float64 `json:"total"`
}

// RetrievalContext bundles the run-level inputs shared across all
// candidates of a scoring batch.
type RetrievalContext struct {
	// QueryKeywords are the user-configured keywords before synonym
	// expansion; they drive the exact-title-match signal.
	QueryKeywords []string

	// ExpandedTerms are the tokenized query terms after synonym expansion;
	// they drive coverage and semantic similarity.
	ExpandedTerms []string

	// CorpusDocs are the title+abstract texts of the whole candidate pool,
	// used to build IDF weights for semantic similarity.
	CorpusDocs []string

	// TotalPasses is how many retrieval passes the run executed; it
	// normalizes the pass-diversity signal.
	TotalPasses int

	// Now anchors the expiration-confidence signal.
	Now time.Time
}

// ComputeRetrieval scores a candidate against the run context.  All five
// signals are deterministic given identical inputs.
func ComputeRetrieval(r *patent.Record, ctx RetrievalContext, weights RetrievalWeights) RetrievalScorecard {
	textTokens := Tokenize(r.Text())
	titleTokens := tokenSet(Tokenize(r.Title))

	card := RetrievalScorecard{
		TitleExactMatch:      round3(titleExactMatch(ctx.QueryKeywords, titleTokens) * 10),
		QueryCoverage:        round3(TermCoverage(ctx.ExpandedTerms, textTokens) * 10),
		SemanticSimilarity:   round3(Clamp(TFIDFCosine(strings.Join(ctx.ExpandedTerms, " "), r.Text(), ctx.CorpusDocs) * 10)),
		ExpirationConfidence: patent.ExpirationConfidence(r, ctx.Now),
		PassDiversity:        round3(passDiversity(len(r.Passes), ctx.TotalPasses)),
	}

	total := card.TitleExactMatch*weights.TitleExactMatch +
		card.QueryCoverage*weights.QueryCoverage +
		card.SemanticSimilarity*weights.SemanticSimilarity +
		card.ExpirationConfidence*weights.ExpirationConfidence +
		card.PassDiversity*weights.PassDiversity
	card.Total = round3(Clamp(total))
	return card
}

// titleExactMatch returns the fraction of query keywords fully present in
// the title.  Multi-word keywords count only when every token appears.
func titleExactMatch(keywords []string, titleTokens map[string]struct{}) float64 {
	if len(keywords) == 0 {
		return 0
	}

	hits := 0
	for _, keyword := range keywords {
		parts := Tokenize(keyword)
		if len(parts) == 0 {
			continue
		}
		matched := true
		for _, part := range parts {
			if _, ok := titleTokens[part]; !ok {
				matched = false
				break
			}
		}
		if matched {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}

// passDiversity maps pass membership to [0,10]: a candidate surfaced by
// every pass scores 10, a single-pass candidate scores proportionally less.
func passDiversity(memberships, totalPasses int) float64 {
	if totalPasses <= 0 || memberships <= 0 {
		return 0
	}
	if memberships > totalPasses {
		memberships = totalPasses
	}
	return float64(memberships) / float64(totalPasses) * 10
}

// Components returns the signal scores keyed by name, for explanation
// templates and persistence.
func (c RetrievalScorecard) Components() map[string]float64 {
	return map[string]float64{
		"title_exact_match":     c.TitleExactMatch,
		"query_coverage":        c.QueryCoverage,
		"semantic_similarity":   c.SemanticSimilarity,
		"expiration_confidence": c.ExpirationConfidence,
		"pass_diversity":        c.PassDiversity,
	}
}
