package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "portable gas sensor 3000 ", Normalize("Portable, GAS-Sensor (3000)!"))
	assert.Equal(t, "", Normalize(""))
}

func TestTokenizeDropsStopwordsAndShortTokens(t *testing.T) {
	tokens := Tokenize("A portable sensor for the real-time monitoring of X")
	assert.Equal(t, []string{"portable", "sensor", "real", "time", "monitoring"}, tokens)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-3))
	assert.Equal(t, 10.0, Clamp(17))
	assert.Equal(t, 6.5, Clamp(6.5))
}

func TestTermCoverage(t *testing.T) {
	tokens := Tokenize("portable wireless sensor apparatus")

	assert.Equal(t, 1.0, TermCoverage([]string{"portable", "sensor"}, tokens))
	assert.Equal(t, 0.5, TermCoverage([]string{"portable", "spectrometer"}, tokens))
	assert.Equal(t, 0.0, TermCoverage(nil, tokens))
	assert.Equal(t, 0.0, TermCoverage([]string{""}, tokens))
}

func TestBuildIDFRaresTermsWeighHigher(t *testing.T) {
	corpus := [][]string{
		{"sensor", "portable"},
		{"sensor", "wireless"},
		{"sensor", "gas"},
	}
	idf := BuildIDF(corpus)

	assert.Less(t, idf["sensor"], idf["gas"])
	assert.Empty(t, BuildIDF(nil))
}

func TestCosineSimilarity(t *testing.T) {
	a := map[string]float64{"sensor": 1, "portable": 1}
	assert.InDelta(t, 1.0, CosineSimilarity(a, a), 1e-9)

	disjoint := map[string]float64{"soil": 1}
	assert.Equal(t, 0.0, CosineSimilarity(a, disjoint))
	assert.Equal(t, 0.0, CosineSimilarity(a, nil))
}

func TestTFIDFCosineOrdersByRelevance(t *testing.T) {
	corpus := []string{
		"soil moisture probe for irrigation",
		"wireless network router device",
	}
	query := "portable sensor"

	onTopic := TFIDFCosine(query, "portable sensor for field measurements", corpus)
	offTopic := TFIDFCosine(query, "wireless network router device", corpus)

	assert.Greater(t, onTopic, offTopic)
	assert.Equal(t, 0.0, TFIDFCosine(query, "", corpus))
}

func TestTFIDFCosineDeterministic(t *testing.T) {
	corpus := []string{"soil probe", "gas detector", "portable sensor kit"}
	first := TFIDFCosine("portable sensor", "portable gas sensor kit", corpus)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, TFIDFCosine("portable sensor", "portable gas sensor kit", corpus))
	}
}
