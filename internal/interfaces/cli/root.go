// Package cli implements the patminer command tree.  Every command talks to
// a running API server through the SDK client; nothing here touches the
// database or object store directly.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/patentminer/patentminer/pkg/client"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// defaultServerAddr is used when --server is not given.
const defaultServerAddr = "http://localhost:8080"

// rootOptions holds the global flags shared by every subcommand.
type rootOptions struct {
	serverAddr string
	timeout    time.Duration
	outputJSON bool
}

func (o *rootOptions) newClient() (*client.Client, error) {
	return client.NewClient(o.serverAddr, client.WithTimeout(o.timeout),
		client.WithUserAgent("patminer-cli/"+Version))
}

// NewRootCommand builds the patminer command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "patminer",
		Short:         "Discover and evaluate expired patents",
		Long:          "patminer discovers expired US patents through multi-pass retrieval,\nscores their commercialization opportunity, and exports investment reports.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.serverAddr, "server", defaultServerAddr, "API server address")
	pf.DurationVar(&opts.timeout, "timeout", 60*time.Second, "request timeout")
	pf.BoolVar(&opts.outputJSON, "json", false, "print raw JSON responses")

	cmd.AddCommand(
		newDiscoverCommand(opts),
		newRunsCommand(opts),
		newPatentsCommand(opts),
		newReportCommand(opts),
		newDashboardCommand(opts),
	)
	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}

// printJSON renders any response as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
