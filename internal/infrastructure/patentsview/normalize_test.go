package patentsview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFullRecord(t *testing.T) {
	raw := RawPatent{
		PatentID:       "6823036",
		PatentTitle:    "  Wristwatch-like heart rate monitor  ",
		PatentAbstract: "A portable optical sensor worn on the wrist.",
		PatentDate:     "2004-11-23",
		PatentType:     "Utility",
	}
	raw.Applications = append(raw.Applications, struct {
		FilingDate string `json:"filing_date"`
	}{FilingDate: "2003-09-24"})
	raw.Assignees = append(raw.Assignees, struct {
		AssigneeType         string `json:"assignee_type"`
		AssigneeOrganization string `json:"assignee_organization"`
	}{AssigneeType: "2", AssigneeOrganization: "Acme Sensors Inc"})

	rec, ok := Normalize(raw)
	require.True(t, ok)

	assert.Equal(t, "6823036", rec.PatentID)
	assert.Equal(t, "Wristwatch-like heart rate monitor", rec.Title)
	assert.Equal(t, "utility", rec.PatentType)
	assert.Equal(t, "https://patents.google.com/patent/US6823036", rec.Link)
	assert.Equal(t, Provider, rec.SourceProvider)

	require.NotNil(t, rec.GrantDate)
	assert.Equal(t, time.Date(2004, 11, 23, 0, 0, 0, 0, time.UTC), *rec.GrantDate)
	require.NotNil(t, rec.FilingDate)
	assert.Equal(t, time.Date(2003, 9, 24, 0, 0, 0, 0, time.UTC), *rec.FilingDate)

	assert.Equal(t, "2", rec.AssigneeType)
	assert.Equal(t, "Acme Sensors Inc", rec.AssigneeOrg)
}

func TestNormalizeMissingIDDropped(t *testing.T) {
	_, ok := Normalize(RawPatent{PatentTitle: "orphan"})
	assert.False(t, ok)

	_, ok = Normalize(RawPatent{PatentID: "   "})
	assert.False(t, ok)
}

func TestNormalizeKeepsRecordsWithMissingDates(t *testing.T) {
	rec, ok := Normalize(RawPatent{PatentID: "7000001", PatentTitle: "Soil probe"})
	require.True(t, ok)
	assert.Nil(t, rec.GrantDate)
	assert.Nil(t, rec.FilingDate)
	assert.Empty(t, rec.AssigneeType)
}

func TestNormalizeUnparseableDateIgnored(t *testing.T) {
	rec, ok := Normalize(RawPatent{PatentID: "7000002", PatentDate: "23/11/2004"})
	require.True(t, ok)
	assert.Nil(t, rec.GrantDate)
}

func TestNormalizeLinkDoesNotDoublePrefix(t *testing.T) {
	rec, ok := Normalize(RawPatent{PatentID: "US6823036"})
	require.True(t, ok)
	assert.Equal(t, "https://patents.google.com/patent/US6823036", rec.Link)
}

func TestNormalizeBatch(t *testing.T) {
	records, dropped := NormalizeBatch([]RawPatent{
		{PatentID: "1"},
		{PatentID: ""},
		{PatentID: "2"},
	})
	assert.Equal(t, 1, dropped)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].PatentID)
	assert.Equal(t, "2", records[1].PatentID)
}
