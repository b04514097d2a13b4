package patentsview

import (
	"fmt"
	"strings"
	"time"

	"github.com/patentminer/patentminer/internal/domain/patent"
)

const apiDateLayout = "2006-01-02"

// Normalize converts a raw API record into a domain patent record.  Records
// without a patent_id are dropped by returning ok=false; everything else is
// kept even when dates or assignees are missing, since the expiration scorer
// handles absent dates explicitly.
func Normalize(raw RawPatent) (patent.Record, bool) {
	id := strings.TrimSpace(raw.PatentID)
	if id == "" {
		return patent.Record{}, false
	}

	rec := patent.Record{
		PatentID:       id,
		Title:          strings.TrimSpace(raw.PatentTitle),
		Abstract:       strings.TrimSpace(raw.PatentAbstract),
		PatentType:     strings.ToLower(strings.TrimSpace(raw.PatentType)),
		Link:           fmt.Sprintf("https://patents.google.com/patent/US%s", strings.TrimPrefix(id, "US")),
		SourceProvider: Provider,
	}

	if d, ok := parseAPIDate(raw.PatentDate); ok {
		rec.GrantDate = &d
	}
	if len(raw.Applications) > 0 {
		if d, ok := parseAPIDate(raw.Applications[0].FilingDate); ok {
			rec.FilingDate = &d
		}
	}
	if len(raw.Assignees) > 0 {
		rec.AssigneeType = strings.TrimSpace(raw.Assignees[0].AssigneeType)
		rec.AssigneeOrg = strings.TrimSpace(raw.Assignees[0].AssigneeOrganization)
	}

	return rec, true
}

// NormalizeBatch converts a page of raw records, silently dropping the
// malformed ones and reporting how many were dropped.
func NormalizeBatch(raws []RawPatent) (records []patent.Record, dropped int) {
	records = make([]patent.Record, 0, len(raws))
	for _, raw := range raws {
		rec, ok := Normalize(raw)
		if !ok {
			dropped++
			continue
		}
		records = append(records, rec)
	}
	return records, dropped
}

func parseAPIDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(apiDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
