// Package cmd implements the `simplec` CLI surface over the semantic core:
// a spf13/cobra command tree mirroring the teacher's cmd/root.go shape
// (PersistentPreRun wiring analytics before any subcommand runs).
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yaram/simple-compiler/internal/analytics"
)

var rootCmd = &cobra.Command{
	Use:   "simplec",
	Short: "Simple language semantic core: type checker, constant evaluator, and LSP hover bridge",
	Long: `simplec drives the job-scheduled type checker and constant evaluator described
in this repository's specification over Simple source files, printing
diagnostics or answering LSP-style hover queries without standing up the
JSON-RPC wire layer.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		disableMetrics, _ := cmd.Flags().GetBool("disable-metrics") //nolint:all
		analytics.LoadEnvFile()
		analytics.Init(disableMetrics)
	},
}

// Execute runs the root command, returning any error for main to report.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("disable-metrics", false, "Disable metrics collection")
	rootCmd.PersistentFlags().Bool("verbose", false, "Show scheduler/job statistics")
	rootCmd.PersistentFlags().Bool("debug", false, "Show per-job debug trace")
}
