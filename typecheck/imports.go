package typecheck

import (
	"github.com/yaram/simple-compiler/ast"
	"github.com/yaram/simple-compiler/diagnostic"
	"github.com/yaram/simple-compiler/job"
	"github.com/yaram/simple-compiler/model"
)

// typeImportCall types `import("path")`, the concrete spelling a using
// statement's target expression calls to pull in another file's top-level
// scope as a FileModule value (§4.4's "imports" clause, §6's source
// provider). The path argument must be a compile-time string constant --
// a StaticArray of u8, the same shape a string literal types to. Resolution
// goes through an ordinary ParseFile job (memoized per path by the engine),
// so a file imported from several using statements is only loaded once and
// callers wait on it exactly like any other job dependency.
func (t *exprTyper) typeImportCall(scope *model.Scope, vars *VarStack, e *ast.Expression, call *ast.FunctionCall, callee exprResult) job.Outcome[exprResult] {
	if len(call.Parameters) != 1 {
		return t.fail(e.Range, diagnostic.Arity, "'import' expects exactly one argument, got %d", len(call.Parameters))
	}
	args, outcome, propagated := t.typeArguments(scope, vars, call.Parameters)
	if propagated {
		return outcome
	}
	path, ok := stringConstant(args[0].RV)
	if !ok {
		return t.fail(call.Parameters[0].Range, diagnostic.ConstantEvaluation, "'import' path must be a compile-time string constant")
	}

	id, existing := t.engine.parseJobs[path]
	if !existing {
		id = t.engine.Scheduler.Enqueue(job.ParseFile, t.path, e.Range, path)
		t.engine.parseJobs[path] = id
	}
	ij := t.engine.Scheduler.Job(id)
	if ij.State != job.Done {
		return job.Wait[exprResult](id)
	}
	imported, ok := ij.Output.(*model.Scope)
	if !ok || imported == nil {
		return t.fail(e.Range, diagnostic.NameResolution, "Could not import '%s'", path)
	}

	v := model.ConstantValue{Kind: model.ValueFileModule, ModuleScope: imported}
	typ := model.Type{Kind: model.KindFileModule, ModuleScope: imported}
	children := []*model.TypedExpression{callee.Typed, args[0].Typed}
	return job.OK(exprResult{Typed: leaf(e.Range, typ, model.Constant(v), children...), RV: model.Constant(v)})
}

// stringConstant decodes a's value as a compile-time string, i.e. a
// StaticArray of u8 integer constants -- the same representation a string
// literal's constant folding produces.
func stringConstant(rv model.RuntimeValue) (string, bool) {
	if !rv.IsConstant() || rv.Constant.Kind != model.ValueStaticArray {
		return "", false
	}
	buf := make([]byte, len(rv.Constant.StaticArray))
	for i, c := range rv.Constant.StaticArray {
		if c.Kind != model.ValueInteger {
			return "", false
		}
		buf[i] = byte(c.Integer)
	}
	return string(buf), true
}
