// Package patent defines the core patent entity shared by the discovery,
// scoring, and analysis layers.
package patent

import (
	"strings"
	"time"
)

// Assignee type codes used by the PatentsView PatentSearch API.  Individual
// inventors (unassigned or assigned to a person) matter to competition
// scoring: patents held by individuals signal weaker institutional backing.
var individualAssigneeTypes = map[string]struct{}{
	"4": {}, "5": {}, "14": {}, "15": {},
}

// Record is a normalized patent as it flows through the pipeline.  Raw
// provider payloads are converted to Records at the infrastructure boundary;
// nothing above that layer sees provider-specific field names.
type Record struct {
	// PatentID is the patent number (e.g. "10123456" or "D0891234") and the
	// deduplication key across retrieval passes.
	PatentID string `json:"patent_id"`

	Title    string `json:"title"`
	Abstract string `json:"abstract"`

	// PatentType is the USPTO type string ("utility", "design", ...).
	PatentType string `json:"patent_type,omitempty"`

	GrantDate  *time.Time `json:"grant_date,omitempty"`
	FilingDate *time.Time `json:"filing_date,omitempty"`

	AssigneeOrg  string `json:"assignee_org,omitempty"`
	AssigneeType string `json:"assignee_type,omitempty"`

	// Link points at the public patent page derived from the number.
	Link string `json:"link,omitempty"`

	// SourceProvider tags which upstream produced the record.
	SourceProvider string `json:"source_provider,omitempty"`

	// Passes records which retrieval passes surfaced this patent, in pass
	// order.  Populated by the deduplicating merge.
	Passes []string `json:"passes,omitempty"`
}

// Text returns the title and abstract joined for term matching.  The title
// carries signal even when the abstract is missing.
func (r *Record) Text() string {
	if r.Abstract == "" {
		return r.Title
	}
	return r.Title + " " + r.Abstract
}

// IsDesign reports whether the patent is a design patent.  The provider's
// type string is authoritative; a D-prefixed number is the fallback for
// records that arrived without one.  Design patents carry a 15-year term
// from grant instead of the utility 20-year term from filing.
func (r *Record) IsDesign() bool {
	if r.PatentType != "" {
		return strings.EqualFold(r.PatentType, "design")
	}
	return strings.HasPrefix(strings.ToUpper(r.PatentID), "D")
}

// HasIndividualAssignee reports whether the assignee type code denotes an
// individual inventor rather than an organization.
func (r *Record) HasIndividualAssignee() bool {
	_, ok := individualAssigneeTypes[r.AssigneeType]
	return ok
}

// InPass reports whether the record was surfaced by the named pass.
func (r *Record) InPass(name string) bool {
	for _, p := range r.Passes {
		if p == name {
			return true
		}
	}
	return false
}

// AddPass records pass membership, preserving first-seen order and ignoring
// duplicates.
func (r *Record) AddPass(name string) {
	if !r.InPass(name) {
		r.Passes = append(r.Passes, name)
	}
}
