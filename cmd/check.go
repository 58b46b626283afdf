package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaram/simple-compiler/internal/analytics"
	"github.com/yaram/simple-compiler/internal/output"
	"github.com/yaram/simple-compiler/job"
	"github.com/yaram/simple-compiler/typecheck"
)

var checkCmd = &cobra.Command{
	Use:   "check <files...>",
	Short: "Run the job scheduler to completion over the given source files and print diagnostics",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		verbosity := verbosityFromFlags(cmd)
		logger := output.NewLogger(verbosity)
		analytics.ReportEvent(analytics.CheckCommand)

		hadErrors := false
		for _, path := range args {
			engine := typecheck.NewEngine(job.DefaultTarget(), newFileLoader(noParserWired))
			logger.Progress("checking %s", path)
			if _, err := engine.Check(path); err != nil {
				return fmt.Errorf("checking %s: %w", path, err)
			}
			for _, d := range engine.Sink.Diagnostics() {
				logger.Diagnostic(d)
			}
			if engine.Sink.HasErrors() {
				hadErrors = true
			}
			logger.Statistics(engine.Scheduler)
		}

		if hadErrors {
			os.Exit(1)
		}
		return nil
	},
}

// verbosityFromFlags resolves the persistent --verbose/--debug flags into
// an output.VerbosityLevel, debug taking priority over verbose.
func verbosityFromFlags(cmd *cobra.Command) output.VerbosityLevel {
	debug, _ := cmd.Flags().GetBool("debug")
	verbose, _ := cmd.Flags().GetBool("verbose")
	switch {
	case debug:
		return output.VerbosityDebug
	case verbose:
		return output.VerbosityVerbose
	default:
		return output.VerbosityDefault
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
