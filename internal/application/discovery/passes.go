package discovery

import (
	discoverydomain "github.com/patentminer/patentminer/internal/domain/discovery"
	"github.com/patentminer/patentminer/internal/infrastructure/patentsview"
)

// buildPassQuery compiles one retrieval pass into a provider query.  The
// four passes run in decreasing strictness:
//
//	strict_intent     original keywords, full filters
//	expanded_synonyms expanded keywords, full filters
//	title_priority    original keywords matched against titles only
//	broad_fallback    expanded keywords with the filing window and assignee
//	                  filter dropped
func buildPassQuery(pass string, run *discoverydomain.Run, expanded []string, perPage int) patentsview.Query {
	q := patentsview.Query{
		Keywords:        run.Keywords,
		FilingDateStart: run.FilingDateStart,
		FilingDateEnd:   run.FilingDateEnd,
		AssigneeType:    run.AssigneeType,
		PerPage:         perPage,
	}

	switch pass {
	case discoverydomain.PassStrictIntent:
		// Base query as-is.
	case discoverydomain.PassExpandedSynonyms:
		q.Keywords = expanded
	case discoverydomain.PassTitlePriority:
		q.TitleOnly = true
	case discoverydomain.PassBroadFallback:
		q.Keywords = expanded
		q.FilingDateStart = ""
		q.FilingDateEnd = ""
		q.AssigneeType = ""
	}
	return q
}
