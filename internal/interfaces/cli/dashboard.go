package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newDashboardCommand(opts *rootOptions) *cobra.Command {
	var topLimit int

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the BI overview of the latest discovery dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.newClient()
			if err != nil {
				return err
			}

			summary, err := api.DashboardSummary(cmd.Context())
			if err != nil {
				return err
			}
			if opts.outputJSON {
				return printJSON(cmd.OutOrStdout(), summary)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Dataset %s (run %s)\n", summary.SourceFile, summary.RunID)
			fmt.Fprintf(w, "Patents: %d, filing years %s\n", summary.TotalPatents, summary.FilingYearRange)
			if summary.AverageOpportunity > 0 {
				fmt.Fprintf(w, "Average opportunity score: %.2f\n", summary.AverageOpportunity)
			}
			printCounts(cmd, "Assignee types", summary.AssigneeTypes)
			printCounts(cmd, "Patent types", summary.PatentTypes)
			printCounts(cmd, "Market domains", summary.MarketDomains)

			top, err := api.DashboardTop(cmd.Context(), topLimit)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "\nTop opportunities:\n")
			for i, p := range top.Patents {
				fmt.Fprintf(w, "%2d. %-12s %-7.2f %s\n",
					i+1, p.Record.PatentID, p.OpportunityScore, truncate(p.Record.Title, 60))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&topLimit, "top", 10, "number of top opportunities to show")
	return cmd
}

// printCounts renders a label/count map in descending count order.
func printCounts(cmd *cobra.Command, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	type entry struct {
		label string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for label, count := range counts {
		entries = append(entries, entry{label, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].label < entries[j].label
	})

	fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", title)
	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-28s %d\n", e.label, e.count)
	}
}
