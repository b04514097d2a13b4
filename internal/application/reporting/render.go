// Package reporting renders completed discovery runs into JSON, CSV, and
// Markdown artifacts, uploads them to object storage, and catalogs them for
// later retrieval.
package reporting

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/patentminer/patentminer/internal/application/analysis"
	discoverydomain "github.com/patentminer/patentminer/internal/domain/discovery"
	"github.com/patentminer/patentminer/internal/domain/patent"
	"github.com/patentminer/patentminer/internal/domain/report"
	"github.com/patentminer/patentminer/pkg/errors"
)

// Document is the full content of one run report before rendering.
type Document struct {
	GeneratedAt time.Time             `json:"generated_at"`
	Run         *discoverydomain.Run  `json:"run"`
	Patents     []patent.ScoredPatent `json:"patents"`
	Analysis    []analysis.Result     `json:"analysis,omitempty"`
}

// contentTypes per rendered format.
var contentTypes = map[report.Format]string{
	report.FormatJSON:     "application/json",
	report.FormatCSV:      "text/csv",
	report.FormatMarkdown: "text/markdown",
}

// Render produces the artifact body for one format.
func Render(doc *Document, format report.Format) ([]byte, error) {
	switch format {
	case report.FormatJSON:
		return renderJSON(doc)
	case report.FormatCSV:
		return renderCSV(doc)
	case report.FormatMarkdown:
		return renderMarkdown(doc)
	default:
		return nil, errors.Newf(errors.ErrCodeValidation, "unknown report format %q", format)
	}
}

func renderJSON(doc *Document) ([]byte, error) {
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportGenerationFailed, "encode json report")
	}
	return body, nil
}

// csvHeader is the ranking review sheet layout.
var csvHeader = []string{
	"Rank", "Patent_Number", "Title", "Opportunity_Score", "Relevance_Score",
	"Viability_Score", "Expiration_Score", "Market_Domain", "Integrated_Score",
	"Recommendation_Tier", "NPV_Base", "Red_Flags", "Link",
}

func renderCSV(doc *Document) ([]byte, error) {
	analysisByID := make(map[string]analysis.Result, len(doc.Analysis))
	for _, a := range doc.Analysis {
		analysisByID[a.PatentID] = a
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportGenerationFailed, "write csv header")
	}

	for rank, p := range doc.Patents {
		row := []string{
			strconv.Itoa(rank + 1),
			p.Record.PatentID,
			p.Record.Title,
			formatScore(p.OpportunityScore),
			formatScore(p.RelevanceScore),
			formatScore(p.ViabilityScore),
			formatScore(p.ExpirationScore),
			p.MarketDomain,
			"", "", "", "", // analysis columns, filled below when available
			p.Record.Link,
		}
		if a, ok := analysisByID[p.Record.PatentID]; ok {
			row[8] = formatScore(a.IntegratedScore)
			row[9] = strconv.Itoa(a.Strategic.RecommendationTier)
			row[10] = strconv.FormatFloat(a.Financial.NPVBase, 'f', 0, 64)
			row[11] = strings.Join(a.RedFlags, "; ")
		}
		if err := w.Write(row); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeReportGenerationFailed, "write csv row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportGenerationFailed, "flush csv report")
	}
	return buf.Bytes(), nil
}

func renderMarkdown(doc *Document) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("# Expired Patent Business Intelligence Report\n\n")
	fmt.Fprintf(&sb, "**Generated:** %s  \n", doc.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "**Run ID:** `%s`  \n", doc.Run.ID)
	fmt.Fprintf(&sb, "**Dataset Size:** %d patents\n\n", len(doc.Patents))

	sb.WriteString("## Query\n\n")
	fmt.Fprintf(&sb, "%s\n\n", doc.Run.Diagnostics.QuerySummary)

	sb.WriteString("## Retrieval Diagnostics\n\n")
	fmt.Fprintf(&sb, "- Status: %s\n", doc.Run.Diagnostics.Status)
	fmt.Fprintf(&sb, "- Raw candidates: %d\n", doc.Run.Diagnostics.RawCount)
	fmt.Fprintf(&sb, "- After deduplication: %d\n", doc.Run.Diagnostics.DedupedCount)
	for _, pass := range discoverydomain.PassOrder {
		if count, ok := doc.Run.Diagnostics.PassCounts[pass]; ok {
			fmt.Fprintf(&sb, "- Pass %s: %d records\n", pass, count)
		}
	}
	for _, e := range doc.Run.Diagnostics.Errors {
		fmt.Fprintf(&sb, "- Error: %s\n", e)
	}
	sb.WriteString("\n")

	sb.WriteString("## Top Opportunities\n\n")
	sb.WriteString("| Rank | Patent | Title | Opportunity | Viability | Domain |\n")
	sb.WriteString("|------|--------|-------|-------------|-----------|--------|\n")
	limit := len(doc.Patents)
	if limit > 25 {
		limit = 25
	}
	for i := 0; i < limit; i++ {
		p := doc.Patents[i]
		fmt.Fprintf(&sb, "| %d | [%s](%s) | %s | %s | %s | %s |\n",
			i+1, p.Record.PatentID, p.Record.Link, escapePipes(p.Record.Title),
			formatScore(p.OpportunityScore), formatScore(p.ViabilityScore), p.MarketDomain)
	}
	sb.WriteString("\n")

	if len(doc.Analysis) > 0 {
		sb.WriteString("## Investment Assessment\n\n")
		for _, a := range doc.Analysis {
			fmt.Fprintf(&sb, "### %s (rank %d)\n\n", a.PatentID, a.RankingPosition)
			fmt.Fprintf(&sb, "- Theme: %s, type: %s, industry: %s\n",
				a.TechnologyTheme, a.PatentType, a.Industry)
			fmt.Fprintf(&sb, "- Integrated score: %s (tier %d, confidence %.2f)\n",
				formatScore(a.IntegratedScore), a.Strategic.RecommendationTier, a.Confidence)
			fmt.Fprintf(&sb, "- NPV base: $%.0f (payback %.1f years)\n",
				a.Financial.NPVBase, a.Financial.PaybackPeriodYears)
			for _, flag := range a.RedFlags {
				fmt.Fprintf(&sb, "- Red flag: %s\n", flag)
			}
			sb.WriteString("\n")
		}
	}

	return []byte(sb.String()), nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
