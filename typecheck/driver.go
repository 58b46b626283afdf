package typecheck

import (
	"github.com/yaram/simple-compiler/ast"
	"github.com/yaram/simple-compiler/diagnostic"
	"github.com/yaram/simple-compiler/job"
	"github.com/yaram/simple-compiler/model"
)

// Check drives a root file to completion: load it, process its top-level
// scope to enqueue every declaration job, run the scheduler, then search
// for `main` the way the reference driver's search_for_main does. Absence
// of `main` is reported as a name-resolution diagnostic at the file's
// first range rather than a panic -- this core never aborts on a
// user-input condition (§7).
func (e *Engine) Check(path string) (*model.Scope, error) {
	scope, err := e.LoadFile(path)
	if err != nil {
		return nil, err
	}
	e.fileScopes[path] = scope
	PredeclareBuiltins(scope, e.Target)
	e.ProcessScope(scope, scope.Statements)
	e.Run()
	e.checkMain(scope, path)
	return scope, nil
}

func (e *Engine) checkMain(scope *model.Scope, path string) {
	fileStart := ast.FileRange{Path: path, FirstLine: 1, FirstColumn: 1, LastLine: 1, LastColumn: 1}

	stmt, ok := scope.Declarations["main"]
	if !ok || stmt.Kind != ast.StmtFunctionDeclaration {
		e.Sink.Report(diagnostic.NameResolution, path, fileStart, "No 'main' function found")
		return
	}
	decl := stmt.FunctionDeclaration
	if len(decl.Parameters) > 2 {
		e.Sink.Report(diagnostic.Arity, path, fileStart, "'main' must take zero, one, or two parameters, got %d", len(decl.Parameters))
	}

	id, ok := e.declJobs[stmt]
	if !ok {
		return
	}
	j := e.Scheduler.Job(id)
	if j.State != job.Done {
		return
	}
	out, ok := j.Output.(TypeFunctionDeclarationResult)
	if !ok || out.Value.Kind != model.ValueFunction {
		return
	}
	if len(decl.Parameters) == 2 && !isMainArgcArgv(out.Type.Params) {
		e.Sink.Report(diagnostic.Type, path, stmt.Range,
			"'main' with two parameters must take '(argc: i32, argv: **u8)', got (%s, %s)",
			describeMainParam(out.Type.Params, 0), describeMainParam(out.Type.Params, 1))
	}
	e.enqueueFunctionBody(decl, out.Type, out.Value.Function, fileStart)
	e.Run()
}

// isMainArgcArgv reports whether params is the two-slot `(argc: i32, argv:
// **u8)` shape the two-parameter form of `main` must take (SPEC_FULL.md's
// SUPPLEMENTED FEATURES section).
func isMainArgcArgv(params []model.Type) bool {
	if len(params) != 2 {
		return false
	}
	argc, argv := params[0], params[1]
	if argc.Kind != model.KindInteger || argc.IntegerSize != 32 || !argc.IntegerSigned {
		return false
	}
	if argv.Kind != model.KindPointer || argv.Element == nil || argv.Element.Kind != model.KindPointer {
		return false
	}
	u8 := argv.Element.Element
	return u8 != nil && u8.Kind == model.KindInteger && u8.IntegerSize == 8 && !u8.IntegerSigned
}

func describeMainParam(params []model.Type, i int) string {
	if i >= len(params) {
		return "<missing>"
	}
	return params[i].Describe()
}
