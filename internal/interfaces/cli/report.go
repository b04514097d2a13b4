package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patentminer/patentminer/pkg/types"
)

func newReportCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate and fetch run reports",
	}
	cmd.AddCommand(
		newReportCreateCommand(opts),
		newReportListCommand(opts),
		newReportDownloadCommand(opts),
	)
	return cmd
}

func newReportCreateCommand(opts *rootOptions) *cobra.Command {
	var req types.CreateReportRequest

	cmd := &cobra.Command{
		Use:   "create <run-id>",
		Short: "Render a run into report artifacts",
		Args:  cobra.ExactArgs(1),
		Example: `  patminer report create run-id --format json --format csv
  patminer report create run-id --format markdown --analyze`,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.newClient()
			if err != nil {
				return err
			}

			list, err := api.CreateReport(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			if opts.outputJSON {
				return printJSON(cmd.OutOrStdout(), list)
			}

			for _, rep := range list.Reports {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-8s  %s (%d bytes)\n",
					rep.ID, rep.Format, rep.ObjectKey, rep.SizeBytes)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&req.Formats, "format", nil, "output format: json, csv, markdown (repeatable)")
	f.BoolVar(&req.Analyze, "analyze", false, "include the investment assessment section")
	return cmd
}

func newReportListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <run-id>",
		Short: "List the reports of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.newClient()
			if err != nil {
				return err
			}

			list, err := api.ListReports(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.outputJSON {
				return printJSON(cmd.OutOrStdout(), list)
			}

			for _, rep := range list.Reports {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-8s  %s  %s\n",
					rep.ID, rep.Format, rep.CreatedAt.Format("2006-01-02 15:04"), rep.ObjectKey)
			}
			return nil
		},
	}
}

func newReportDownloadCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "download <report-id>",
		Short: "Print a temporary download URL for a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.newClient()
			if err != nil {
				return err
			}

			dl, err := api.DownloadReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.outputJSON {
				return printJSON(cmd.OutOrStdout(), dl)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (valid %s)\n", dl.URL, dl.ExpiresIn)
			return nil
		},
	}
}
