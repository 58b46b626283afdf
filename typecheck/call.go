package typecheck

import (
	"errors"
	"math"

	"github.com/yaram/simple-compiler/ast"
	"github.com/yaram/simple-compiler/diagnostic"
	"github.com/yaram/simple-compiler/job"
	"github.com/yaram/simple-compiler/model"
)

// errCoercion is returned by call-argument coercion failures, which have
// already reported a precise diagnostic through Coerce itself.
var errCoercion = errors.New("argument coercion failed")

type argResult struct {
	Typed *model.TypedExpression
	RV    model.RuntimeValue
	Type  model.Type
}

// typeArguments types every argument expression of a call, left to right,
// propagating the first Wait/Err encountered.
func (t *exprTyper) typeArguments(scope *model.Scope, vars *VarStack, exprs []*ast.Expression) ([]argResult, job.Outcome[exprResult], bool) {
	var out []argResult
	for _, a := range exprs {
		res := t.typeExpression(scope, vars, a)
		if outcome, propagated := job.Propagate[exprResult](res); propagated {
			return nil, outcome, true
		}
		r := res.Value()
		out = append(out, argResult{Typed: r.Typed, RV: r.RV, Type: r.Typed.Type})
	}
	return out, job.Outcome[exprResult]{}, false
}

func (t *exprTyper) typeCall(scope *model.Scope, vars *VarStack, e *ast.Expression, call *ast.FunctionCall) job.Outcome[exprResult] {
	calleeRes := t.typeExpression(scope, vars, call.Value)
	if out, propagated := job.Propagate[exprResult](calleeRes); propagated {
		return out
	}
	callee := calleeRes.Value()

	switch {
	case callee.Typed.Type.Kind == model.KindFunction:
		return t.typeDirectCall(scope, vars, e, call, callee, callee.Typed.Type)

	case callee.Typed.Type.Kind == model.KindPointer && callee.Typed.Type.Element.Kind == model.KindFunction:
		return t.typeDirectCall(scope, vars, e, call, callee, *callee.Typed.Type.Element)

	case callee.Typed.Type.Kind == model.KindBuiltinFunction:
		return t.typeBuiltinCall(scope, vars, e, call, callee)

	case callee.Typed.Type.Kind == model.KindPolymorphicFunction:
		return t.typePolymorphicFunctionCall(scope, vars, e, call, callee)

	case callee.Typed.Type.Kind == model.KindTypeType && callee.RV.IsConstant() && callee.RV.Constant.Kind == model.ValueType &&
		(callee.RV.Constant.Type.Kind == model.KindPolymorphicStruct || callee.RV.Constant.Type.Kind == model.KindPolymorphicUnion):
		return t.typePolymorphicTypeInstantiation(scope, vars, e, call, callee)

	default:
		return t.fail(e.Range, diagnostic.Type, "Cannot call a value of type '%s'", callee.Typed.Type.Describe())
	}
}

func (t *exprTyper) typeDirectCall(scope *model.Scope, vars *VarStack, e *ast.Expression, call *ast.FunctionCall, callee exprResult, fnType model.Type) job.Outcome[exprResult] {
	if len(call.Parameters) != len(fnType.Params) {
		return t.fail(e.Range, diagnostic.Arity, "Expected %d argument(s), got %d", len(fnType.Params), len(call.Parameters))
	}

	args, outcome, propagated := t.typeArguments(scope, vars, call.Parameters)
	if propagated {
		return outcome
	}

	children := []*model.TypedExpression{callee.Typed}
	for i, a := range args {
		c, ok := Coerce(t.engine.Sink, t.path, call.Parameters[i].Range, Value{Type: a.Type, RV: a.RV}, fnType.Params[i], false)
		if !ok {
			return job.Err[exprResult](errCoercion)
		}
		children = append(children, leaf(call.Parameters[i].Range, fnType.Params[i], c.RV))
	}

	if callee.RV.IsConstant() && callee.RV.Constant.Kind == model.ValueFunction {
		t.engine.enqueueFunctionBody(callee.RV.Constant.Function.Declaration, fnType, callee.RV.Constant.Function, e.Range)
	}

	resultType := resultTypeOf(fnType.Returns)
	return job.OK(exprResult{Typed: leaf(e.Range, resultType, model.Register, children...), RV: model.Register})
}

func resultTypeOf(returns []model.Type) model.Type {
	switch len(returns) {
	case 0:
		return model.Void
	case 1:
		return returns[0]
	default:
		return model.Type{Kind: model.KindMultiReturn, Returns: returns}
	}
}

// typeBuiltinCall types a call to a builtin function value, giving each of
// §4.5's five named builtins (plus `import`, §4.4) the constant-evaluation
// semantics the spec assigns it.
func (t *exprTyper) typeBuiltinCall(scope *model.Scope, vars *VarStack, e *ast.Expression, call *ast.FunctionCall, callee exprResult) job.Outcome[exprResult] {
	name := callee.Typed.Type.BuiltinName
	if name == "import" {
		return t.typeImportCall(scope, vars, e, call, callee)
	}

	args, outcome, propagated := t.typeArguments(scope, vars, call.Parameters)
	if propagated {
		return outcome
	}
	if len(args) != 1 {
		return t.fail(e.Range, diagnostic.Arity, "'%s' expects 1 argument, got %d", name, len(args))
	}
	arg := args[0]
	children := []*model.TypedExpression{callee.Typed, arg.Typed}

	switch name {
	case "size_of":
		argType := arg.Type
		if argType.Kind == model.KindTypeType && arg.RV.IsConstant() {
			argType = arg.RV.Constant.Type
		}
		size, err := argType.ByteSize(t.engine.Target.AddressSize)
		if err != nil {
			return t.fail(call.Parameters[0].Range, diagnostic.Type, "%v", err)
		}
		usize := model.Int(t.engine.Target.AddressSize, false)
		v := model.IntValue(size)
		return job.OK(exprResult{Typed: leaf(e.Range, usize, model.Constant(v), children...), RV: model.Constant(v)})

	case "type_of":
		v := model.TypeValue(arg.Type)
		return job.OK(exprResult{Typed: leaf(e.Range, model.TypeOfType, model.Constant(v), children...), RV: model.Constant(v)})

	case "globalify", "stackify":
		if !arg.RV.IsConstant() {
			return t.fail(call.Parameters[0].Range, diagnostic.ConstantEvaluation, "'%s' requires a compile-time constant argument", name)
		}
		defaulted, err := DefaultType(arg.Type)
		if err != nil {
			return t.fail(call.Parameters[0].Range, diagnostic.ConstantEvaluation, "%v", err)
		}
		if !defaulted.IsRuntime() {
			return t.fail(call.Parameters[0].Range, diagnostic.Type, "'%s' requires a runtime-representable type, got '%s'", name, defaulted.Describe())
		}
		return job.OK(exprResult{Typed: leaf(e.Range, defaulted, model.Addressed, children...), RV: model.Addressed})

	case "sqrt":
		if !isNumeric(arg.Type) {
			return t.fail(call.Parameters[0].Range, diagnostic.Type, "'sqrt' requires a numeric argument, got '%s'", arg.Type.Describe())
		}
		resultType := model.Flt(64)
		if arg.Type.Kind == model.KindFloat {
			resultType = arg.Type
		}
		if arg.RV.IsConstant() {
			f := constantToFloat(arg.RV.Constant)
			v := model.FloatValue(math.Sqrt(f))
			return job.OK(exprResult{Typed: leaf(e.Range, resultType, model.Constant(v), children...), RV: model.Constant(v)})
		}
		return job.OK(exprResult{Typed: leaf(e.Range, resultType, model.Register, children...), RV: model.Register})

	default:
		return t.fail(e.Range, diagnostic.Type, "Unhandled builtin function '%s'", name)
	}
}

func constantToFloat(v model.ConstantValue) float64 {
	if v.Kind == model.ValueFloat {
		return v.Float
	}
	return float64(v.Integer)
}

// polymorphicInstantiationResult bundles a resolved polymorphic-function
// instantiation with the already-typed argument list, so callers (a direct
// call vs. a bake expression) can decide what to do with it without
// re-typing the call site.
type polymorphicInstantiationResult struct {
	Out  TypeFunctionDeclarationResult
	Args []argResult
}

// resolvePolymorphicFunctionInstantiation types call's arguments once,
// builds the parameter vector, and finds or creates the memoized
// TypePolymorphicFunction job for it (§4.8), waiting on it if not yet done.
func (t *exprTyper) resolvePolymorphicFunctionInstantiation(scope *model.Scope, vars *VarStack, e *ast.Expression, call *ast.FunctionCall, callee exprResult) (polymorphicInstantiationResult, job.Outcome[exprResult], bool) {
	decl := callee.RV.Constant.Function.Declaration
	declScope := callee.Typed.Type.ParentScope

	if len(call.Parameters) != len(decl.Parameters) {
		return polymorphicInstantiationResult{}, t.fail(e.Range, diagnostic.Arity, "Expected %d argument(s), got %d", len(decl.Parameters), len(call.Parameters)), true
	}

	args, outcome, propagated := t.typeArguments(scope, vars, call.Parameters)
	if propagated {
		return polymorphicInstantiationResult{}, outcome, true
	}

	var vector model.ParameterVector
	for i, p := range decl.Parameters {
		if !p.IsPolymorphicSlot() {
			continue
		}
		slot := model.ParameterSlot{Type: args[i].Type}
		if p.IsConstant {
			if !args[i].RV.IsConstant() {
				return polymorphicInstantiationResult{}, t.fail(call.Parameters[i].Range, diagnostic.ConstantEvaluation, "Argument for constant parameter '%s' must be a compile-time constant", p.Name), true
			}
			slot.HasValue = true
			slot.Value = args[i].RV.Constant
		}
		vector = append(vector, slot)
	}

	id := t.findOrCreateInstantiation(decl, declScope, vector, func() job.ID {
		return t.engine.Scheduler.Enqueue(job.TypePolymorphicFunction, t.path, e.Range, polymorphicFunctionInput{
			Decl: decl, DeclScope: declScope, Parameters: vector, CallScope: scope, CallRange: e.Range,
		})
	})

	ij := t.engine.Scheduler.Job(id)
	if ij.State != job.Done {
		return polymorphicInstantiationResult{}, job.Wait[exprResult](id), true
	}
	out, ok := ij.Output.(TypeFunctionDeclarationResult)
	if !ok {
		return polymorphicInstantiationResult{}, job.Err[exprResult](errCoercion), true
	}
	return polymorphicInstantiationResult{Out: out, Args: args}, job.Outcome[exprResult]{}, false
}

func (t *exprTyper) typePolymorphicFunctionCall(scope *model.Scope, vars *VarStack, e *ast.Expression, call *ast.FunctionCall, callee exprResult) job.Outcome[exprResult] {
	resolved, outcome, done := t.resolvePolymorphicFunctionInstantiation(scope, vars, e, call, callee)
	if done {
		return outcome
	}
	out, args := resolved.Out, resolved.Args
	decl := callee.RV.Constant.Function.Declaration

	// Only the non-polymorphic slots survive into out.Type.Params (§4.8):
	// walk decl.Parameters in lockstep with args and out.Type.Params,
	// skipping the polymorphic/constant slots already consumed into the
	// instantiation's parameter vector.
	children := []*model.TypedExpression{callee.Typed}
	rtIdx := 0
	for i, p := range decl.Parameters {
		if p.IsPolymorphicSlot() {
			continue
		}
		a := args[i]
		target := out.Type.Params[rtIdx]
		rtIdx++
		c, ok := Coerce(t.engine.Sink, t.path, call.Parameters[i].Range, Value{Type: a.Type, RV: a.RV}, target, false)
		if !ok {
			return job.Err[exprResult](errCoercion)
		}
		children = append(children, leaf(call.Parameters[i].Range, target, c.RV))
	}

	if out.Value.Kind == model.ValueFunction {
		t.engine.enqueueFunctionBody(decl, out.Type, out.Value.Function, e.Range)
	}

	resultType := resultTypeOf(out.Type.Returns)
	return job.OK(exprResult{Typed: leaf(e.Range, resultType, model.Register, children...), RV: model.Register})
}

func (t *exprTyper) typePolymorphicTypeInstantiation(scope *model.Scope, vars *VarStack, e *ast.Expression, call *ast.FunctionCall, callee exprResult) job.Outcome[exprResult] {
	target := callee.RV.Constant.Type
	declScope := target.ParentScope

	args, outcome, propagated := t.typeArguments(scope, vars, call.Parameters)
	if propagated {
		return outcome
	}

	var vector model.ParameterVector
	for _, a := range args {
		if !a.RV.IsConstant() {
			return t.fail(e.Range, diagnostic.ConstantEvaluation, "Generic type arguments must be compile-time constants")
		}
		vector = append(vector, model.ParameterSlot{Type: a.Type, HasValue: true, Value: a.RV.Constant})
	}

	isUnion := target.Kind == model.KindPolymorphicUnion
	kind := job.TypePolymorphicStruct
	if isUnion {
		kind = job.TypePolymorphicUnion
	}

	id := t.findOrCreateInstantiation(target.Decl, declScope, vector, func() job.ID {
		if isUnion {
			return t.engine.Scheduler.Enqueue(kind, t.path, e.Range, polymorphicUnionInput{
				Decl: target.Decl.(*ast.UnionDefinition), DeclScope: declScope, Parameters: vector,
			})
		}
		return t.engine.Scheduler.Enqueue(kind, t.path, e.Range, polymorphicStructInput{
			Decl: target.Decl.(*ast.StructDefinition), DeclScope: declScope, Parameters: vector,
		})
	})

	ij := t.engine.Scheduler.Job(id)
	if ij.State != job.Done {
		return job.Wait[exprResult](id)
	}

	var resultType model.Type
	if isUnion {
		out, ok := ij.Output.(TypeUnionDefinitionResult)
		if !ok {
			return job.Err[exprResult](errCoercion)
		}
		resultType = out.Type
	} else {
		out, ok := ij.Output.(TypeStructDefinitionResult)
		if !ok {
			return job.Err[exprResult](errCoercion)
		}
		resultType = out.Type
	}

	v := model.TypeValue(resultType)
	var children []*model.TypedExpression
	children = append(children, callee.Typed)
	for i, a := range args {
		children = append(children, leaf(call.Parameters[i].Range, a.Type, a.RV))
	}
	return job.OK(exprResult{Typed: leaf(e.Range, model.TypeOfType, model.Constant(v), children...), RV: model.Constant(v)})
}

// findOrCreateInstantiation implements the memoization scan of §4.8:
// linear-scan the scheduler's candidate list for this (decl, scope) pair
// for one whose recorded ParameterVector equals vector, creating a fresh
// job via create() only when none matches.
func (t *exprTyper) findOrCreateInstantiation(decl any, declScope *model.Scope, vector model.ParameterVector, create func() job.ID) job.ID {
	for _, id := range t.engine.Scheduler.InstantiationCandidates(decl, declScope) {
		j := t.engine.Scheduler.Job(id)
		switch in := j.Input.(type) {
		case polymorphicFunctionInput:
			if in.Parameters.Equal(vector) {
				return id
			}
		case polymorphicStructInput:
			if in.Parameters.Equal(vector) {
				return id
			}
		case polymorphicUnionInput:
			if in.Parameters.Equal(vector) {
				return id
			}
		}
	}
	id := create()
	t.engine.Scheduler.RecordInstantiation(decl, declScope, id)
	return id
}

// typeBake types `bake f(args)`: it runs the exact same resolution as a
// call (including polymorphic instantiation) but yields the callee's
// function constant instead of invoking it (§4.5 Bake).
func (t *exprTyper) typeBake(scope *model.Scope, vars *VarStack, e *ast.Expression) job.Outcome[exprResult] {
	call := e.Bake.Call
	calleeRes := t.typeExpression(scope, vars, call.Value)
	if out, propagated := job.Propagate[exprResult](calleeRes); propagated {
		return out
	}
	callee := calleeRes.Value()

	if callee.Typed.Type.Kind == model.KindPolymorphicFunction {
		resolved, outcome, done := t.resolvePolymorphicFunctionInstantiation(scope, vars, e, call, callee)
		if done {
			return outcome
		}
		out := resolved.Out
		return job.OK(exprResult{Typed: leaf(e.Range, out.Type, model.Constant(out.Value)), RV: model.Constant(out.Value)})
	}

	if callee.Typed.Type.Kind != model.KindFunction {
		return t.fail(e.Range, diagnostic.Type, "Cannot bake a value of type '%s'", callee.Typed.Type.Describe())
	}
	return job.OK(exprResult{Typed: leaf(e.Range, callee.Typed.Type, callee.RV), RV: callee.RV})
}
