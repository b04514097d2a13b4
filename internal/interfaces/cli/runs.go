package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patentminer/patentminer/pkg/client"
)

func newRunsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect discovery runs",
	}
	cmd.AddCommand(newRunsListCommand(opts), newRunsGetCommand(opts))
	return cmd
}

func newRunsListCommand(opts *rootOptions) *cobra.Command {
	var listOpts client.ListRunsOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent discovery runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.newClient()
			if err != nil {
				return err
			}

			list, err := api.ListRuns(cmd.Context(), listOpts)
			if err != nil {
				return err
			}
			if opts.outputJSON {
				return printJSON(cmd.OutOrStdout(), list)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%-38s %-10s %-8s %s\n", "RUN", "STATUS", "RESULTS", "KEYWORDS")
			for _, run := range list.Runs {
				fmt.Fprintf(cmd.OutOrStdout(), "%-38s %-10s %-8d %v\n",
					run.ID, run.Status, run.Diagnostics.DedupedCount, run.Keywords)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&listOpts.Status, "status", "", "filter by status (pending, running, completed, failed)")
	f.IntVar(&listOpts.Limit, "limit", 20, "maximum runs to list")
	f.IntVar(&listOpts.Offset, "offset", 0, "listing offset")
	return cmd
}

func newRunsGetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <run-id>",
		Short: "Show one run with its diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.newClient()
			if err != nil {
				return err
			}

			run, err := api.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.outputJSON {
				return printJSON(cmd.OutOrStdout(), run)
			}

			printRunSummary(cmd, run)
			for pass, count := range run.Diagnostics.PassCounts {
				fmt.Fprintf(cmd.OutOrStdout(), "  pass %-20s %d\n", pass, count)
			}
			return nil
		},
	}
}
