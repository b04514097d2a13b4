// Package scoring implements the deterministic opportunity-scoring pipeline:
// text-similarity retrieval ranking, keyword-driven viability scorecards,
// and the weighted opportunity blend.  Everything here is reproducible from
// input text alone; there are no external calls and no randomness.
package scoring

import (
	"math"
	"sort"
	"strings"
)

// Version tags persisted scorecards so stored results can be invalidated
// when the scoring rules change.
const Version = "v2.0.0"

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "in": {}, "into": {},
	"is": {}, "it": {}, "of": {}, "on": {}, "or": {}, "that": {},
	"the": {}, "to": {}, "with": {},
}

// Clamp bounds value to the canonical [0,10] score range.
func Clamp(value float64) float64 {
	return ClampRange(value, 0, 10)
}

// ClampRange bounds value to [lower, upper].
func ClampRange(value, lower, upper float64) float64 {
	if value < lower {
		return lower
	}
	if value > upper {
		return upper
	}
	return value
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Normalize lowercases text and replaces every non-alphanumeric run with a
// single space so token matching is deterministic across punctuation
// variants.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	lastSpace := false
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return b.String()
}

// Tokenize splits normalized text into tokens, dropping single characters
// and stopwords.
func Tokenize(text string) []string {
	fields := strings.Fields(Normalize(text))
	tokens := make([]string, 0, len(fields))
	for _, tok := range fields {
		if len(tok) <= 1 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// TermCoverage returns the fraction of query terms present in the text
// token set.  An empty query yields zero.
func TermCoverage(queryTerms []string, textTokens []string) float64 {
	query := make(map[string]struct{}, len(queryTerms))
	for _, term := range queryTerms {
		if term != "" {
			query[term] = struct{}{}
		}
	}
	if len(query) == 0 {
		return 0
	}

	set := tokenSet(textTokens)
	hits := 0
	for term := range query {
		if _, ok := set[term]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(query))
}

// BuildIDF computes smooth inverse document frequencies over a token
// corpus: log((1+N)/(1+df)) + 1.
func BuildIDF(corpusTokens [][]string) map[string]float64 {
	if len(corpusTokens) == 0 {
		return map[string]float64{}
	}

	docFreq := make(map[string]int)
	for _, tokens := range corpusTokens {
		for tok := range tokenSet(tokens) {
			docFreq[tok]++
		}
	}

	n := float64(len(corpusTokens))
	idf := make(map[string]float64, len(docFreq))
	for tok, freq := range docFreq {
		idf[tok] = math.Log((1+n)/(1+float64(freq))) + 1
	}
	return idf
}

// TFIDFVector builds a sparse TF-IDF vector from a token sequence.  Tokens
// missing from the IDF map fall back to weight 1.
func TFIDFVector(tokens []string, idf map[string]float64) map[string]float64 {
	if len(tokens) == 0 {
		return map[string]float64{}
	}

	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}

	size := float64(len(tokens))
	vec := make(map[string]float64, len(counts))
	for tok, count := range counts {
		weight, ok := idf[tok]
		if !ok {
			weight = 1
		}
		vec[tok] = float64(count) / size * weight
	}
	return vec
}

// CosineSimilarity computes cosine similarity between sparse vectors.
// Empty or zero-norm vectors yield zero.
func CosineSimilarity(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	// Iterate the smaller vector for the dot product.
	if len(b) < len(a) {
		a, b = b, a
	}

	dot := 0.0
	for tok, va := range a {
		if vb, ok := b[tok]; ok {
			dot += va * vb
		}
	}

	normA := 0.0
	for _, v := range a {
		normA += v * v
	}
	normB := 0.0
	for _, v := range b {
		normB += v * v
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TFIDFCosine computes the cosine similarity between query and document
// text using TF-IDF vectors whose IDF is built from the supplied corpus
// plus the query and document themselves.
func TFIDFCosine(queryText, docText string, corpusDocs []string) float64 {
	queryTokens := Tokenize(queryText)
	docTokens := Tokenize(docText)

	corpusTokens := make([][]string, 0, len(corpusDocs)+2)
	for _, doc := range corpusDocs {
		corpusTokens = append(corpusTokens, Tokenize(doc))
	}
	corpusTokens = append(corpusTokens, queryTokens, docTokens)

	idf := BuildIDF(corpusTokens)
	return CosineSimilarity(TFIDFVector(queryTokens, idf), TFIDFVector(docTokens, idf))
}

// countHits returns how many of the given terms appear in the token set.
func countHits(tokens map[string]struct{}, terms []string) int {
	hits := 0
	for _, term := range terms {
		if _, ok := tokens[term]; ok {
			hits++
		}
	}
	return hits
}

// sortedKeys returns map keys in lexical order for deterministic iteration.
func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
