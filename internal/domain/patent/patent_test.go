package patent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y, m, d int) *time.Time {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return &t
}

var now = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func TestText(t *testing.T) {
	r := Record{Title: "Wireless sensor", Abstract: "A portable device."}
	assert.Equal(t, "Wireless sensor A portable device.", r.Text())

	empty := Record{Title: "Wireless sensor"}
	assert.Equal(t, "Wireless sensor", empty.Text())
}

func TestIsDesign(t *testing.T) {
	assert.True(t, (&Record{PatentID: "10123456", PatentType: "design"}).IsDesign())
	assert.False(t, (&Record{PatentID: "D0891234", PatentType: "utility"}).IsDesign())
	// D-prefix fallback applies only when the type string is absent.
	assert.True(t, (&Record{PatentID: "D0891234"}).IsDesign())
	assert.True(t, (&Record{PatentID: "d654321"}).IsDesign())
	assert.False(t, (&Record{PatentID: "10123456"}).IsDesign())
}

func TestHasIndividualAssignee(t *testing.T) {
	for _, code := range []string{"4", "5", "14", "15"} {
		assert.True(t, (&Record{AssigneeType: code}).HasIndividualAssignee(), code)
	}
	assert.False(t, (&Record{AssigneeType: "2"}).HasIndividualAssignee())
	assert.False(t, (&Record{}).HasIndividualAssignee())
}

func TestPassMembership(t *testing.T) {
	r := &Record{}
	r.AddPass("strict_intent")
	r.AddPass("broad_fallback")
	r.AddPass("strict_intent") // duplicate ignored

	assert.Equal(t, []string{"strict_intent", "broad_fallback"}, r.Passes)
	assert.True(t, r.InPass("strict_intent"))
	assert.False(t, r.InPass("title_priority"))
}

func TestExpirationConfidenceFromFiling(t *testing.T) {
	// Filed 20+ years ago: fully expired term, confidence capped at 10.
	old := &Record{PatentID: "6500000", FilingDate: date(2001, 3, 15)}
	assert.InDelta(t, 10.0, ExpirationConfidence(old, now), 1e-9)

	// Filed 10 years ago: roughly half the term elapsed.
	mid := &Record{PatentID: "9300000", FilingDate: date(2016, 6, 1)}
	got := ExpirationConfidence(mid, now)
	assert.InDelta(t, 5.0, got, 0.05)

	// Filed recently: low confidence, never negative.
	fresh := &Record{PatentID: "12000001", FilingDate: date(2025, 1, 1)}
	gotFresh := ExpirationConfidence(fresh, now)
	assert.Greater(t, gotFresh, 0.0)
	assert.Less(t, gotFresh, 1.0)
}

func TestExpirationConfidenceGrantFallback(t *testing.T) {
	// Utility patent without a filing date falls back to grant + 20y.
	utility := &Record{PatentID: "7000000", GrantDate: date(2010, 6, 1)}
	got := ExpirationConfidence(utility, now)
	assert.InDelta(t, 8.0, got, 0.05)

	// Design patents use a 15-year term from grant.
	design := &Record{PatentID: "D0600000", PatentType: "design", GrantDate: date(2010, 6, 1)}
	gotDesign := ExpirationConfidence(design, now)
	assert.Greater(t, gotDesign, got)
}

func TestExpirationConfidenceNoDates(t *testing.T) {
	assert.Equal(t, 2.0, ExpirationConfidence(&Record{PatentID: "123"}, now))
}

func TestExpirationConfidenceBounds(t *testing.T) {
	cases := []*Record{
		{PatentID: "1", FilingDate: date(1980, 1, 1)},
		{PatentID: "2", FilingDate: date(2026, 5, 30)},
		{PatentID: "3", GrantDate: date(1999, 12, 31)},
		{PatentID: "4", FilingDate: date(2030, 1, 1)}, // future date clamps to zero age
		{PatentID: "5"},
	}
	for _, r := range cases {
		c := ExpirationConfidence(r, now)
		assert.GreaterOrEqual(t, c, 0.0, r.PatentID)
		assert.LessOrEqual(t, c, 10.0, r.PatentID)
	}
}

func TestExpirationConfidenceDeterministic(t *testing.T) {
	r := &Record{PatentID: "9300000", FilingDate: date(2012, 4, 1)}
	first := ExpirationConfidence(r, now)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ExpirationConfidence(r, now))
	}
}

func TestEstimatedExpiryAndLikelyExpired(t *testing.T) {
	r := &Record{PatentID: "6500000", FilingDate: date(2001, 3, 15)}
	exp := r.EstimatedExpiry()
	require.NotNil(t, exp)
	assert.Equal(t, time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC), *exp)
	assert.True(t, r.LikelyExpired(now))

	active := &Record{PatentID: "11500000", FilingDate: date(2020, 1, 1)}
	assert.False(t, active.LikelyExpired(now))

	// Design grant fallback: 15-year term already elapsed.
	design := &Record{PatentID: "D0600000", PatentType: "design", GrantDate: date(2010, 6, 1)}
	assert.True(t, design.LikelyExpired(now))

	unknown := &Record{PatentID: "x"}
	assert.Nil(t, unknown.EstimatedExpiry())
	assert.False(t, unknown.LikelyExpired(now))
}
