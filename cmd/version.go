package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaram/simple-compiler/internal/analytics"
)

// Version and GitCommit are set at build time via -ldflags, matching the
// teacher's version command.
var (
	Version   = "dev"
	GitCommit = "none"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and commit information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		analytics.ReportEvent(analytics.VersionCommand)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
