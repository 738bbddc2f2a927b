// Command memescope is a terminal dashboard for memecoin analytics.
//
// Usage:
//
//	memescope                 Run the dashboard
//	memescope stub            Serve a local development backend
//	memescope events          Show the JSONL diagnostics log
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abelbrown/memescope/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "memescope",
	Short: "Memecoin analytics dashboard",
	Long: "memescope searches memecoin analytics as you type, tracks favorites\n" +
		"and recent searches, and keeps a portfolio with live performance.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	RunE:         runDashboard,
}

func init() {
	addDashboardFlags(rootCmd)
	rootCmd.AddCommand(stubCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.Version = version
	logging.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
