// Package patentsview wraps the PatentsView PatentSearch API: payload
// compilation, authenticated paging with fixed-count retries, and
// normalization of raw records into the internal patent shape.
package patentsview

// Query is the structured search request compiled into the PatentSearch
// q/f/s/o payload.
type Query struct {
	// Keywords are matched against title OR abstract; each keyword becomes
	// one _or clause and all clauses are ANDed together.
	Keywords []string

	// TitleOnly restricts keyword matching to the title field.
	TitleOnly bool

	FilingDateStart string // inclusive, YYYY-MM-DD
	FilingDateEnd   string // inclusive, YYYY-MM-DD

	// AssigneeType is "individual" or "organization"; empty means any.
	AssigneeType string

	PerPage int
	Page    int
}

// Assignee type codes recognized by the PatentSearch API.
var assigneeTypeCodes = map[string][]string{
	"individual":   {"4", "5", "14", "15"},
	"organization": {"2", "3", "12", "13"},
}

// requestedFields is the fixed field list: everything normalization needs
// and nothing more.
var requestedFields = []string{
	"patent_id",
	"patent_title",
	"patent_abstract",
	"patent_date",
	"patent_type",
	"application.filing_date",
	"assignees.assignee_type",
	"assignees.assignee_organization",
}

const (
	maxPerPage     = 1000
	defaultPerPage = 100
)

// BuildPayload compiles a Query into the JSON body expected by the
// PatentSearch endpoint.  The sort order (grant date, then patent id) keeps
// paging stable across requests.
func BuildPayload(q Query) map[string]any {
	var filters []map[string]any

	for _, keyword := range q.Keywords {
		if keyword == "" {
			continue
		}
		if q.TitleOnly {
			filters = append(filters, map[string]any{
				"_text_all": map[string]any{"patent_title": keyword},
			})
			continue
		}
		filters = append(filters, map[string]any{
			"_or": []map[string]any{
				{"_text_all": map[string]any{"patent_title": keyword}},
				{"_text_all": map[string]any{"patent_abstract": keyword}},
			},
		})
	}

	if q.FilingDateStart != "" {
		filters = append(filters, map[string]any{
			"_gte": map[string]any{"application.filing_date": q.FilingDateStart},
		})
	}
	if q.FilingDateEnd != "" {
		filters = append(filters, map[string]any{
			"_lte": map[string]any{"application.filing_date": q.FilingDateEnd},
		})
	}

	if q.AssigneeType != "" {
		codes, ok := assigneeTypeCodes[q.AssigneeType]
		if !ok {
			codes = []string{q.AssigneeType}
		}
		filters = append(filters, map[string]any{
			"assignees.assignee_type": codes,
		})
	}

	var query map[string]any
	switch len(filters) {
	case 0:
		// An unconstrained request still needs a valid q clause.
		query = map[string]any{"_gte": map[string]any{"patent_date": "1900-01-01"}}
	case 1:
		query = filters[0]
	default:
		query = map[string]any{"_and": filters}
	}

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}

	return map[string]any{
		"q": query,
		"f": requestedFields,
		"s": []map[string]any{
			{"patent_date": "asc"},
			{"patent_id": "asc"},
		},
		"o": map[string]any{
			"page":     page,
			"per_page": perPage,
		},
	}
}
