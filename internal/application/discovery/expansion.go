// Package discovery orchestrates the multi-pass retrieval pipeline: keyword
// expansion, the four fixed search passes, cross-pass deduplication, and
// deterministic scoring of the merged candidate pool.
package discovery

import "strings"

// DefaultMaxExpandedKeywords caps the expanded keyword list when a caller
// does not supply its own limit.
const DefaultMaxExpandedKeywords = 24

// synonymTable maps a query keyword to its domain synonyms in emission
// order.  The table is curated for the sensor and instrumentation patents
// the pipeline targets; unknown keywords simply expand to themselves.
var synonymTable = map[string][]string{
	"portable":      {"mobile", "handheld", "compact"},
	"sensor":        {"detector", "probe", "transducer"},
	"monitor":       {"monitoring", "tracker", "gauge"},
	"monitoring":    {"monitor", "tracking", "measurement"},
	"wireless":      {"radio", "rf", "bluetooth"},
	"device":        {"apparatus", "instrument", "unit"},
	"measurement":   {"measuring", "metering", "quantification"},
	"environmental": {"ambient", "atmospheric", "pollution"},
	"safety":        {"protective", "hazard", "alarm"},
	"agricultural":  {"farming", "crop", "irrigation"},
	"wearable":      {"body-worn", "wristband", "garment"},
	"medical":       {"clinical", "diagnostic", "physiological"},
	"health":        {"vital", "biometric", "wellness"},
	"energy":        {"power", "battery", "harvesting"},
	"water":         {"fluid", "liquid", "moisture"},
	"air":           {"gas", "aerosol", "ventilation"},
	"temperature":   {"thermal", "heat", "thermometer"},
	"pressure":      {"force", "barometric", "pneumatic"},
	"detection":     {"sensing", "identification", "recognition"},
	"tracking":      {"locating", "positioning", "gps"},
	"smart":         {"intelligent", "automated", "adaptive"},
	"remote":        {"distant", "telemetry", "networked"},
}

// ExpandKeywords grows the query keyword list with curated synonyms.  The
// originals come first in input order, then each keyword's synonyms in
// table order, then synonyms of the individual tokens of multi-word
// keywords.  Everything is lower-cased and deduplicated, and the list is
// cut at max.  The output is fully determined by the input.
func ExpandKeywords(keywords []string, max int) []string {
	if max <= 0 {
		max = DefaultMaxExpandedKeywords
	}

	seen := make(map[string]struct{}, max)
	expanded := make([]string, 0, max)
	add := func(term string) bool {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			return true
		}
		if _, dup := seen[term]; dup {
			return true
		}
		if len(expanded) >= max {
			return false
		}
		seen[term] = struct{}{}
		expanded = append(expanded, term)
		return true
	}

	for _, kw := range keywords {
		if !add(kw) {
			return expanded
		}
	}
	for _, kw := range keywords {
		for _, syn := range synonymTable[strings.ToLower(strings.TrimSpace(kw))] {
			if !add(syn) {
				return expanded
			}
		}
	}
	for _, kw := range keywords {
		tokens := strings.Fields(strings.ToLower(kw))
		if len(tokens) < 2 {
			continue
		}
		for _, token := range tokens {
			if !add(token) {
				return expanded
			}
			for _, syn := range synonymTable[token] {
				if !add(syn) {
					return expanded
				}
			}
		}
	}
	return expanded
}
