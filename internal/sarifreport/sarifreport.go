// Package sarifreport renders a finished run's diagnostics as a SARIF
// 2.1.0 log, for `simplec ci --format sarif`.
package sarifreport

import (
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/yaram/simple-compiler/diagnostic"
)

const toolName = "simplec"
const toolInfoURI = "https://github.com/yaram/simple-compiler"

// Write renders diags as a single-run SARIF 2.1.0 log to w. Each distinct
// diagnostic.Kind becomes its own SARIF rule, so a CI annotator can group
// findings by kind.
func Write(w io.Writer, diags []diagnostic.Diagnostic) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}
	run := sarif.NewRunWithInformationURI(toolName, toolInfoURI)

	seen := make(map[diagnostic.Kind]bool)
	for _, d := range diags {
		if !seen[d.Kind] {
			seen[d.Kind] = true
			run.AddRule(d.Kind.String()).
				WithDescription(d.Kind.String() + " diagnostic").
				WithHelpURI(toolInfoURI)
		}
	}

	for _, d := range diags {
		loc := sarif.NewLocationWithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewSimpleArtifactLocation(d.Path)).
				WithRegion(sarif.NewRegion().
					WithStartLine(d.Range.FirstLine).
					WithStartColumn(d.Range.FirstColumn).
					WithEndLine(d.Range.LastLine).
					WithEndColumn(d.Range.LastColumn)),
		)
		run.AddResult(
			sarif.NewRuleResult(d.Kind.String()).
				WithMessage(sarif.NewTextMessage(d.Message)).
				WithLocations([]*sarif.Location{loc}),
		)
	}

	report.AddRun(run)
	return report.PrettyWrite(w)
}
