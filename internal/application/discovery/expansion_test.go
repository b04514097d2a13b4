package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandKeywordsEmitsSynonyms(t *testing.T) {
	expanded := ExpandKeywords([]string{"portable", "sensor"}, 24)

	assert.Contains(t, expanded, "portable")
	assert.Contains(t, expanded, "sensor")
	assert.Contains(t, expanded, "mobile")
	assert.Contains(t, expanded, "detector")

	// Originals lead the list in input order.
	require.GreaterOrEqual(t, len(expanded), 2)
	assert.Equal(t, "portable", expanded[0])
	assert.Equal(t, "sensor", expanded[1])
}

func TestExpandKeywordsDeterministic(t *testing.T) {
	first := ExpandKeywords([]string{"portable", "sensor", "wireless"}, 24)
	second := ExpandKeywords([]string{"portable", "sensor", "wireless"}, 24)
	assert.Equal(t, first, second)
}

func TestExpandKeywordsDeduplicates(t *testing.T) {
	expanded := ExpandKeywords([]string{"portable", "Portable", "mobile"}, 24)

	seen := make(map[string]int)
	for _, term := range expanded {
		seen[term]++
	}
	for term, count := range seen {
		assert.Equal(t, 1, count, "term %q emitted more than once", term)
	}
	// "mobile" is both an input and a synonym of "portable"; it appears once.
	assert.Contains(t, expanded, "mobile")
}

func TestExpandKeywordsHonorsCap(t *testing.T) {
	keywords := []string{"portable", "sensor", "wireless", "medical", "energy", "water"}
	expanded := ExpandKeywords(keywords, 5)
	assert.Len(t, expanded, 5)
	assert.Equal(t, keywords[:5], expanded)
}

func TestExpandKeywordsMultiWordTokens(t *testing.T) {
	expanded := ExpandKeywords([]string{"portable sensor"}, 24)

	assert.Contains(t, expanded, "portable sensor")
	assert.Contains(t, expanded, "portable")
	assert.Contains(t, expanded, "sensor")
	assert.Contains(t, expanded, "mobile")
	assert.Contains(t, expanded, "detector")
}

func TestExpandKeywordsUnknownTermPassesThrough(t *testing.T) {
	expanded := ExpandKeywords([]string{"zeolite"}, 24)
	assert.Equal(t, []string{"zeolite"}, expanded)
}

func TestExpandKeywordsSkipsBlanks(t *testing.T) {
	expanded := ExpandKeywords([]string{"", "  ", "sensor"}, 24)
	assert.Equal(t, "sensor", expanded[0])
	assert.NotContains(t, expanded, "")
}

func TestExpandKeywordsDefaultCap(t *testing.T) {
	keywords := []string{
		"portable", "sensor", "wireless", "medical", "energy",
		"water", "air", "temperature", "pressure", "smart",
	}
	expanded := ExpandKeywords(keywords, 0)
	assert.LessOrEqual(t, len(expanded), DefaultMaxExpandedKeywords)
	assert.Len(t, expanded, DefaultMaxExpandedKeywords)
}
