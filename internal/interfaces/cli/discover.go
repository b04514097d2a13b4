package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patentminer/patentminer/pkg/types"
)

func newDiscoverCommand(opts *rootOptions) *cobra.Command {
	var req types.CreateRunRequest

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Run expired-patent discovery for a set of keywords",
		Example: `  patminer discover -k "portable sensor" -k monitoring --from 1995-01-01 --to 2005-12-31
  patminer discover -k "water treatment" --max-results 25 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.newClient()
			if err != nil {
				return err
			}

			result, err := api.CreateRun(cmd.Context(), req)
			if err != nil {
				return err
			}
			if opts.outputJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}

			printRunSummary(cmd, result.Run)
			if len(result.Patents) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No candidates found; see diagnostics above.")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n%-12s %-7s %-24s %s\n", "PATENT", "SCORE", "DOMAIN", "TITLE")
			for _, p := range result.Patents {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-7.2f %-24s %s\n",
					p.Record.PatentID, p.OpportunityScore, p.MarketDomain, truncate(p.Record.Title, 60))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&req.Keywords, "keyword", "k", nil, "search keyword (repeatable)")
	f.StringVar(&req.FilingDateStart, "from", "", "filing date lower bound (YYYY-MM-DD)")
	f.StringVar(&req.FilingDateEnd, "to", "", "filing date upper bound (YYYY-MM-DD)")
	f.StringVar(&req.AssigneeType, "assignee-type", "", "assignee type code filter")
	f.IntVar(&req.MaxResults, "max-results", 0, "cap on returned candidates")
	_ = cmd.MarkFlagRequired("keyword")

	return cmd
}

func printRunSummary(cmd *cobra.Command, run *types.Run) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s: %s\n", run.ID, run.Status)
	if run.FailureReason != "" {
		fmt.Fprintf(w, "Reason: %s\n", run.FailureReason)
	}
	d := run.Diagnostics
	fmt.Fprintf(w, "Provider %s (%s): raw %d, filtered %d, deduped %d\n",
		d.Provider, d.Status, d.RawCount, d.FilteredCount, d.DedupedCount)
	for _, action := range d.NextActions {
		fmt.Fprintf(w, "  hint: %s\n", action)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
