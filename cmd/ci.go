package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaram/simple-compiler/diagnostic"
	"github.com/yaram/simple-compiler/internal/analytics"
	"github.com/yaram/simple-compiler/internal/output"
	"github.com/yaram/simple-compiler/internal/sarifreport"
	"github.com/yaram/simple-compiler/job"
	"github.com/yaram/simple-compiler/typecheck"
)

var ciCmd = &cobra.Command{
	Use:   "ci <files...>",
	Short: "Batch-check files and render diagnostics for CI pipelines",
	Long: `ci runs the same scheduler pass as "simplec check" over every file, then
renders the combined diagnostics in a CI-friendly format (SARIF, JSON, or
plain text) and exits non-zero when any diagnostic was reported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outputFile, _ := cmd.Flags().GetString("output-file")
		analytics.ReportEvent(analytics.CICommand)

		var all []diagnostic.Diagnostic
		for _, path := range args {
			engine := typecheck.NewEngine(job.DefaultTarget(), newFileLoader(noParserWired))
			if _, err := engine.Check(path); err != nil {
				return fmt.Errorf("checking %s: %w", path, err)
			}
			all = append(all, engine.Sink.Diagnostics()...)
		}

		w := os.Stdout
		if outputFile != "" {
			f, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outputFile, err)
			}
			defer f.Close()
			w = f
		}

		switch output.Format(format) {
		case output.FormatSARIF:
			if err := sarifreport.Write(w, all); err != nil {
				return fmt.Errorf("rendering sarif: %w", err)
			}
		case output.FormatJSON:
			encoded, err := json.MarshalIndent(all, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding diagnostics: %w", err)
			}
			fmt.Fprintln(w, string(encoded))
		case output.FormatText, "":
			for _, d := range all {
				fmt.Fprintln(w, d.String())
			}
		default:
			return fmt.Errorf("unsupported --format %q (want sarif, json, or text)", format)
		}

		if len(all) > 0 {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ciCmd)
	ciCmd.Flags().String("format", "text", "Output format: text, json, or sarif")
	ciCmd.Flags().String("output-file", "", "Write output to this file instead of stdout")
}
