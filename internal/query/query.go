// Package query evaluates expr-lang/expr expressions over a finished
// scheduler run, the Go-native analogue of the teacher's CodeQL-like query
// layer: `simplec query` compiles the user's expression once against a
// JobRecord environment and runs it over every job in the scheduler.
package query

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/yaram/simple-compiler/diagnostic"
	"github.com/yaram/simple-compiler/job"
)

// JobRecord is the flattened, expr-friendly view of one job.Job a query
// expression evaluates against.
type JobRecord struct {
	ID       int
	Kind     string
	State    string
	Done     bool
	Waiting  bool
	FilePath string
	Line     int
	Column   int
}

// DiagnosticRecord is the expr-friendly view of one diagnostic.Diagnostic.
type DiagnosticRecord struct {
	Kind     string
	FilePath string
	Line     int
	Column   int
	Message  string
}

func jobRecord(j *job.Job) JobRecord {
	return JobRecord{
		ID:       int(j.ID),
		Kind:     j.Kind.String(),
		State:    j.State.String(),
		Done:     j.State == job.Done,
		Waiting:  j.State == job.Waiting,
		FilePath: j.FilePath,
		Line:     j.Range.FirstLine,
		Column:   j.Range.FirstColumn,
	}
}

func diagnosticRecord(d diagnostic.Diagnostic) DiagnosticRecord {
	return DiagnosticRecord{
		Kind:     d.Kind.String(),
		FilePath: d.Path,
		Line:     d.Range.FirstLine,
		Column:   d.Range.FirstColumn,
		Message:  d.Message,
	}
}

// Compile compiles a query expression once, against an environment
// exposing a single JobRecord so type errors surface before the run.
func Compile(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression, expr.Env(JobRecord{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compiling query: %w", err)
	}
	return program, nil
}

// RunJobs evaluates a compiled query against every job in s, returning the
// records for which it matched true.
func RunJobs(program *vm.Program, s *job.Scheduler) ([]JobRecord, error) {
	var matches []JobRecord
	for _, j := range s.Jobs() {
		rec := jobRecord(j)
		out, err := expr.Run(program, rec)
		if err != nil {
			return nil, fmt.Errorf("running query on job #%d: %w", j.ID, err)
		}
		if matched, ok := out.(bool); ok && matched {
			matches = append(matches, rec)
		}
	}
	return matches, nil
}

// CompileDiagnostics compiles a query expression against the
// DiagnosticRecord environment.
func CompileDiagnostics(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression, expr.Env(DiagnosticRecord{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compiling query: %w", err)
	}
	return program, nil
}

// RunDiagnostics evaluates a compiled query against every diagnostic in diags.
func RunDiagnostics(program *vm.Program, diags []diagnostic.Diagnostic) ([]DiagnosticRecord, error) {
	var matches []DiagnosticRecord
	for _, d := range diags {
		rec := diagnosticRecord(d)
		out, err := expr.Run(program, rec)
		if err != nil {
			return nil, fmt.Errorf("running query on diagnostic: %w", err)
		}
		if matched, ok := out.(bool); ok && matched {
			matches = append(matches, rec)
		}
	}
	return matches, nil
}
