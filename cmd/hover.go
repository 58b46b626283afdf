package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yaram/simple-compiler/internal/analytics"
	"github.com/yaram/simple-compiler/internal/output"
	"github.com/yaram/simple-compiler/job"
	"github.com/yaram/simple-compiler/lsp"
	"github.com/yaram/simple-compiler/typecheck"
)

var hoverCmd = &cobra.Command{
	Use:   "hover <file> <line> <col>",
	Short: "Drive the LSP bridge's hover lookup over an already-typechecked file",
	Long: `hover exercises spec.md §4.9 (the LSP bridge) directly, for manual or CI
testing of hover behavior without standing up the JSON-RPC wire layer.
Line and column are 1-based, matching the core's FileRange contract --
not the LSP wire's zero-based UTF-16 positions, which only the (external)
JSON-RPC host is responsible for converting.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		line, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid line %q: %w", args[1], err)
		}
		column, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid column %q: %w", args[2], err)
		}

		analytics.ReportEvent(analytics.HoverCommand)
		logger := output.NewLogger(verbosityFromFlags(cmd))

		engine := typecheck.NewEngine(job.DefaultTarget(), newFileLoader(noParserWired))
		if _, err := engine.Check(path); err != nil {
			return fmt.Errorf("checking %s: %w", path, err)
		}
		for _, d := range engine.Sink.Diagnostics() {
			logger.Diagnostic(d)
		}

		hover, ok := lsp.Lookup(engine.Scheduler, path, line, column)
		if !ok {
			fmt.Println("no typed node at that position")
			return nil
		}
		fmt.Println(hover.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hoverCmd)
}
