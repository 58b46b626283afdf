package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaram/simple-compiler/internal/analytics"
	"github.com/yaram/simple-compiler/internal/output"
	"github.com/yaram/simple-compiler/internal/query"
	"github.com/yaram/simple-compiler/job"
	"github.com/yaram/simple-compiler/typecheck"
)

var queryCmd = &cobra.Command{
	Use:   "query <expr> <files...>",
	Short: "Evaluate an expr-lang/expr expression over a run's jobs or diagnostics",
	Long: `query is the Go-native analogue of the teacher's CodeQL-like query layer:
it type-checks the given files, then evaluates expr against either every
job.Job (the default) or every diagnostic.Diagnostic (--diagnostics),
printing the matching records.

Example: simplec query 'Kind == "TypeFunctionBody" && !Done' main.sp`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		expression, files := args[0], args[1:]
		asJSON, _ := cmd.Flags().GetBool("json")
		wantDiagnostics, _ := cmd.Flags().GetBool("diagnostics")

		analytics.ReportEvent(analytics.QueryCommand)
		logger := output.NewLogger(verbosityFromFlags(cmd))

		engine := typecheck.NewEngine(job.DefaultTarget(), newFileLoader(noParserWired))
		for _, path := range files {
			if _, err := engine.Check(path); err != nil {
				return fmt.Errorf("checking %s: %w", path, err)
			}
		}
		for _, d := range engine.Sink.Diagnostics() {
			logger.Diagnostic(d)
		}

		if wantDiagnostics {
			program, err := query.CompileDiagnostics(expression)
			if err != nil {
				return err
			}
			matches, err := query.RunDiagnostics(program, engine.Sink.Diagnostics())
			if err != nil {
				return err
			}
			return printQueryResults(matches, asJSON)
		}

		program, err := query.Compile(expression)
		if err != nil {
			return err
		}
		matches, err := query.RunJobs(program, engine.Scheduler)
		if err != nil {
			return err
		}
		return printQueryResults(matches, asJSON)
	},
}

func printQueryResults[T any](matches []T, asJSON bool) error {
	if asJSON {
		encoded, err := json.Marshal(matches)
		if err != nil {
			return fmt.Errorf("encoding query results: %w", err)
		}
		fmt.Println(string(encoded))
		return nil
	}
	for _, m := range matches {
		fmt.Printf("%+v\n", m)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().Bool("json", false, "Print matches as JSON")
	queryCmd.Flags().Bool("diagnostics", false, "Query diagnostics instead of jobs")
}
