package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patentminer/patentminer/pkg/client"
)

func newPatentsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patents",
		Short: "Browse and search scored patents",
	}
	cmd.AddCommand(newPatentsListCommand(opts), newPatentsSearchCommand(opts))
	return cmd
}

func newPatentsListCommand(opts *rootOptions) *cobra.Command {
	var runID string
	var listOpts client.ListPatentsOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the scored patents of a run",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.newClient()
			if err != nil {
				return err
			}

			list, err := api.ListRunPatents(cmd.Context(), runID, listOpts)
			if err != nil {
				return err
			}
			if opts.outputJSON {
				return printJSON(cmd.OutOrStdout(), list)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-7s %-7s %-24s %s\n",
				"PATENT", "OPP", "REL", "DOMAIN", "TITLE")
			for _, p := range list.Patents {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-7.2f %-7.2f %-24s %s\n",
					p.Record.PatentID, p.OpportunityScore, p.RelevanceScore,
					p.MarketDomain, truncate(p.Record.Title, 50))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&runID, "run", "", "run id (required)")
	f.StringVar(&listOpts.MarketDomain, "domain", "", "filter by market domain")
	f.Float64Var(&listOpts.MinScore, "min-score", 0, "minimum opportunity score")
	f.IntVar(&listOpts.Limit, "limit", 50, "maximum patents to list")
	_ = cmd.MarkFlagRequired("run")
	return cmd
}

func newPatentsSearchCommand(opts *rootOptions) *cobra.Command {
	var searchOpts client.SearchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over indexed patents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.newClient()
			if err != nil {
				return err
			}

			result, err := api.SearchPatents(cmd.Context(), args[0], searchOpts)
			if err != nil {
				return err
			}
			if opts.outputJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d matches\n", result.Total)
			for _, hit := range result.Hits {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-7.2f %s\n",
					hit.PatentID, hit.OpportunityScore, truncate(hit.Title, 60))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&searchOpts.RunID, "run", "", "restrict to one run")
	f.StringVar(&searchOpts.MarketDomain, "domain", "", "filter by market domain")
	f.Float64Var(&searchOpts.MinScore, "min-score", 0, "minimum opportunity score")
	f.IntVar(&searchOpts.Limit, "limit", 20, "maximum hits")
	return cmd
}
