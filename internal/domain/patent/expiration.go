package patent

import (
	"math"
	"time"
)

const (
	utilityTermYears = 20
	designTermYears  = 15

	daysPerYear = 365.0

	// Records with no usable dates still get a small non-zero confidence so
	// downstream blending never divides a cohort into scored and unscored.
	unknownDatesConfidence = 2.0
)

// ExpirationConfidence estimates, on a 0-10 scale, how confident we are that
// the patent's term has lapsed as of now.  The heuristic is age against the
// statutory term: utility terms run 20 years from filing; when the filing
// date is unknown the grant date anchors instead, with a 15-year term for
// design patents.  Deterministic for a fixed now; rounded to three decimals
// to keep exports stable across platforms.
func ExpirationConfidence(r *Record, now time.Time) float64 {
	if r.FilingDate != nil {
		return confidenceFromAge(ageYears(*r.FilingDate, now), utilityTermYears)
	}
	if r.GrantDate != nil {
		term := utilityTermYears
		if r.IsDesign() {
			term = designTermYears
		}
		return confidenceFromAge(ageYears(*r.GrantDate, now), float64(term))
	}
	return unknownDatesConfidence
}

func ageYears(anchor, now time.Time) float64 {
	days := now.Sub(anchor).Hours() / 24
	if days < 0 {
		return 0
	}
	return days / daysPerYear
}

func confidenceFromAge(age, termYears float64) float64 {
	score := age / termYears * 10
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return math.Round(score*1000) / 1000
}

// LikelyExpired reports whether the patent's statutory term has fully
// elapsed.  Records without dates report false; callers should treat them as
// unknown rather than active.
func (r *Record) LikelyExpired(now time.Time) bool {
	if r.FilingDate != nil {
		return now.Sub(*r.FilingDate).Hours()/24 >= utilityTermYears*daysPerYear
	}
	if r.GrantDate != nil {
		term := float64(utilityTermYears)
		if r.IsDesign() {
			term = designTermYears
		}
		return now.Sub(*r.GrantDate).Hours()/24 >= term*daysPerYear
	}
	return false
}

// EstimatedExpiry returns the projected expiration date, or nil when neither
// filing nor grant date is known.  Term extensions and maintenance-fee
// lapses are outside this estimate.
func (r *Record) EstimatedExpiry() *time.Time {
	if r.FilingDate != nil {
		t := r.FilingDate.AddDate(utilityTermYears, 0, 0)
		return &t
	}
	if r.GrantDate != nil {
		term := utilityTermYears
		if r.IsDesign() {
			term = designTermYears
		}
		t := r.GrantDate.AddDate(term, 0, 0)
		return &t
	}
	return nil
}
