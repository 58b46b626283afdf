package typecheck

import (
	"fmt"

	"github.com/yaram/simple-compiler/ast"
	"github.com/yaram/simple-compiler/job"
	"github.com/yaram/simple-compiler/model"
)

// runtimeParameters returns the subset of decl's parameters that survive
// into the instantiated function's runtime calling convention: polymorphic
// type-determiners and compile-time constant slots are fully resolved by
// instantiation and carry no runtime argument (§4.8).
func runtimeParameters(decl *ast.FunctionDeclaration) []ast.FunctionParameter {
	var out []ast.FunctionParameter
	for _, p := range decl.Parameters {
		if p.IsPolymorphicSlot() {
			continue
		}
		out = append(out, p)
	}
	return out
}

// typeFunctionSignature types decl's non-polymorphic parameter and return
// type expressions against scope (which, for an instantiation, already
// carries the bound polymorphic parameters as scope constants), producing
// the concrete Function type and a FunctionConstant wrapping decl (with a
// fresh body scope unless decl is external).
func (e *Engine) typeFunctionSignature(path string, scope *model.Scope, decl *ast.FunctionDeclaration) (model.Type, model.ConstantValue, job.StepResult, bool) {
	tc := &exprTyper{engine: e, path: path}

	var params []model.Type
	for _, p := range runtimeParameters(decl) {
		res := tc.typeExpression(scope, nil, p.Type)
		if res.IsWait() {
			return model.Type{}, model.ConstantValue{}, job.StepWait(res.WaitID()), false
		}
		if res.IsErr() {
			return model.Type{}, model.ConstantValue{}, job.StepFailed(res.Error()), false
		}
		rv := res.Value()
		if rv.Typed.Type.Kind != model.KindTypeType || !rv.RV.IsConstant() {
			return model.Type{}, model.ConstantValue{}, job.StepFailed(fmt.Errorf("parameter type must be a type expression")), false
		}
		params = append(params, rv.RV.Constant.Type)
	}

	var returns []model.Type
	for _, rt := range decl.ReturnTypes {
		res := tc.typeExpression(scope, nil, rt)
		if res.IsWait() {
			return model.Type{}, model.ConstantValue{}, job.StepWait(res.WaitID()), false
		}
		if res.IsErr() {
			return model.Type{}, model.ConstantValue{}, job.StepFailed(res.Error()), false
		}
		rv := res.Value()
		if rv.Typed.Type.Kind != model.KindTypeType || !rv.RV.IsConstant() {
			return model.Type{}, model.ConstantValue{}, job.StepFailed(fmt.Errorf("return type must be a type expression")), false
		}
		returns = append(returns, rv.RV.Constant.Type)
	}

	cc := decl.CallingConvention
	if cc == "" {
		cc = e.Target.DefaultCallingConvention
	}
	if cc == ast.CallingConventionStdCall && !e.Target.SupportsStdCall {
		return model.Type{}, model.ConstantValue{}, job.StepFailed(fmt.Errorf("calling convention 'stdcall' is not supported on this target")), false
	}

	fnType := model.Type{Kind: model.KindFunction, Params: params, Returns: returns, CallingConvention: cc}

	var bodyScope *model.Scope
	if !decl.IsExternal {
		bodyScope = model.NewScope(scope, path, false)
	}
	val := model.ConstantValue{Kind: model.ValueFunction, Function: model.FunctionConstant{
		Declaration: decl, BodyScope: bodyScope, IsExternal: decl.IsExternal,
	}}
	return fnType, val, job.StepResult{}, true
}

func (e *Engine) stepFunctionDeclaration(j *job.Job) job.StepResult {
	in := j.Input.(functionDeclInput)

	for _, p := range in.Decl.Parameters {
		if p.IsPolymorphicSlot() {
			j.Output = TypeFunctionDeclarationResult{
				Type: model.Type{Kind: model.KindPolymorphicFunction, Decl: in.Decl, ParentScope: in.Scope},
				Value: model.ConstantValue{Kind: model.ValuePolymorphicFunction, Function: model.FunctionConstant{
					Declaration: in.Decl, IsExternal: in.Decl.IsExternal,
				}},
			}
			return job.StepDone()
		}
	}

	t, v, wait, ok := e.typeFunctionSignature(j.FilePath, in.Scope, in.Decl)
	if !ok {
		return wait
	}
	j.Output = TypeFunctionDeclarationResult{Type: t, Value: v}
	return job.StepDone()
}

func (e *Engine) stepPolymorphicFunction(j *job.Job) job.StepResult {
	in := j.Input.(polymorphicFunctionInput)
	constants := bindFunctionParameters(in.Decl.Parameters, in.Parameters)
	instScope := newInstantiationScope(in.DeclScope, j.FilePath, constants)

	t, v, wait, ok := e.typeFunctionSignature(j.FilePath, instScope, in.Decl)
	if !ok {
		return wait
	}
	j.Output = TypeFunctionDeclarationResult{Type: t, Value: v}
	return job.StepDone()
}

func (e *Engine) stepConstantDefinition(j *job.Job) job.StepResult {
	in := j.Input.(constantDefInput)
	tc := &exprTyper{engine: e, path: j.FilePath}
	res := tc.typeExpression(in.Scope, nil, in.Decl.Value)
	if res.IsWait() {
		return job.StepWait(res.WaitID())
	}
	if res.IsErr() {
		return job.StepFailed(res.Error())
	}
	te := res.Value().Typed
	if te.Value == nil {
		return job.StepFailed(fmt.Errorf("constant definition '%s' must have a compile-time-known value", in.Decl.Name))
	}
	j.Output = te
	return job.StepDone()
}

func (e *Engine) stepStructDefinition(j *job.Job) job.StepResult {
	in := j.Input.(structDefInput)

	if len(in.Decl.Parameters) > 0 {
		j.Output = TypeStructDefinitionResult{Type: model.Type{
			Kind: model.KindPolymorphicStruct, Decl: in.Decl, ParentScope: in.Scope, FilePath: j.FilePath,
		}}
		return job.StepDone()
	}

	members, wait, ok := e.typeMemberList(j.FilePath, in.Scope, in.Decl.Members)
	if !ok {
		return wait
	}
	j.Output = TypeStructDefinitionResult{Type: model.Type{
		Kind: model.KindStruct, Decl: in.Decl, Members: members, FilePath: j.FilePath,
	}}
	return job.StepDone()
}

func (e *Engine) stepPolymorphicStruct(j *job.Job) job.StepResult {
	in := j.Input.(polymorphicStructInput)
	constants := bindPolymorphicParameters(in.Decl.Parameters, in.Parameters)
	instScope := newInstantiationScope(in.DeclScope, j.FilePath, constants)

	members, wait, ok := e.typeMemberList(j.FilePath, instScope, in.Decl.Members)
	if !ok {
		return wait
	}
	paramTypes := make([]model.Type, len(in.Parameters))
	for i, s := range in.Parameters {
		paramTypes[i] = s.Type
	}
	j.Output = TypeStructDefinitionResult{Type: model.Type{
		Kind: model.KindStruct, Decl: in.Decl, Members: members, FilePath: j.FilePath, ParamTypes: paramTypes,
	}}
	return job.StepDone()
}

func (e *Engine) stepUnionDefinition(j *job.Job) job.StepResult {
	in := j.Input.(unionDefInput)

	if len(in.Decl.Parameters) > 0 {
		j.Output = TypeUnionDefinitionResult{Type: model.Type{
			Kind: model.KindPolymorphicUnion, Decl: in.Decl, ParentScope: in.Scope, FilePath: j.FilePath,
		}}
		return job.StepDone()
	}

	members, wait, ok := e.typeMemberList(j.FilePath, in.Scope, in.Decl.Members)
	if !ok {
		return wait
	}
	j.Output = TypeUnionDefinitionResult{Type: model.Type{
		Kind: model.KindUnion, Decl: in.Decl, Members: members, FilePath: j.FilePath,
	}}
	return job.StepDone()
}

func (e *Engine) stepPolymorphicUnion(j *job.Job) job.StepResult {
	in := j.Input.(polymorphicUnionInput)
	constants := bindPolymorphicParameters(in.Decl.Parameters, in.Parameters)
	instScope := newInstantiationScope(in.DeclScope, j.FilePath, constants)

	members, wait, ok := e.typeMemberList(j.FilePath, instScope, in.Decl.Members)
	if !ok {
		return wait
	}
	j.Output = TypeUnionDefinitionResult{Type: model.Type{
		Kind: model.KindUnion, Decl: in.Decl, Members: members, FilePath: j.FilePath,
	}}
	return job.StepDone()
}

func (e *Engine) typeMemberList(path string, scope *model.Scope, decls []ast.StructMemberDeclaration) ([]model.Member, job.StepResult, bool) {
	tc := &exprTyper{engine: e, path: path}
	var members []model.Member
	for _, m := range decls {
		res := tc.typeExpression(scope, nil, m.Type)
		if res.IsWait() {
			return nil, job.StepWait(res.WaitID()), false
		}
		if res.IsErr() {
			return nil, job.StepFailed(res.Error()), false
		}
		rv := res.Value()
		if rv.Typed.Type.Kind != model.KindTypeType || !rv.RV.IsConstant() {
			return nil, job.StepFailed(fmt.Errorf("member '%s' type must be a type expression", m.Name)), false
		}
		members = append(members, model.Member{Name: m.Name, Type: rv.RV.Constant.Type})
	}
	return members, job.StepResult{}, true
}

func (e *Engine) stepEnumDefinition(j *job.Job) job.StepResult {
	in := j.Input.(enumDefInput)
	backing := model.Int(e.Target.AddressSize, true)
	if in.Decl.BackingType != nil {
		tc := &exprTyper{engine: e, path: j.FilePath}
		res := tc.typeExpression(in.Scope, nil, in.Decl.BackingType)
		if res.IsWait() {
			return job.StepWait(res.WaitID())
		}
		if res.IsErr() {
			return job.StepFailed(res.Error())
		}
		rv := res.Value()
		if rv.Typed.Type.Kind != model.KindTypeType || !rv.RV.IsConstant() || rv.RV.Constant.Type.Kind != model.KindInteger {
			return job.StepFailed(fmt.Errorf("enum backing type must be an integer type"))
		}
		backing = rv.RV.Constant.Type
	}

	var variants []model.EnumVariant
	next := int64(0)
	for _, v := range in.Decl.Variants {
		value := next
		if v.Value != nil {
			tc := &exprTyper{engine: e, path: j.FilePath}
			res := tc.typeExpression(in.Scope, nil, v.Value)
			if res.IsWait() {
				return job.StepWait(res.WaitID())
			}
			if res.IsErr() {
				return job.StepFailed(res.Error())
			}
			rv := res.Value()
			if !rv.RV.IsConstant() {
				return job.StepFailed(fmt.Errorf("enum variant '%s' value must be a compile-time constant", v.Name))
			}
			value = int64(rv.RV.Constant.Integer)
		}
		variants = append(variants, model.EnumVariant{Name: v.Name, Value: value})
		next = value + 1
	}

	j.Output = TypeEnumDefinitionResult{Type: model.Type{
		Kind: model.KindEnum, Decl: in.Decl, Backing: &backing, Variants: variants, FilePath: j.FilePath,
	}}
	return job.StepDone()
}

func (e *Engine) stepStaticVariable(j *job.Job) job.StepResult {
	in := j.Input.(staticVariableInput)
	tc := &exprTyper{engine: e, path: j.FilePath}

	var declared *model.Type
	if in.Decl.Type != nil {
		res := tc.typeExpression(in.Scope, nil, in.Decl.Type)
		if res.IsWait() {
			return job.StepWait(res.WaitID())
		}
		if res.IsErr() {
			return job.StepFailed(res.Error())
		}
		rv := res.Value()
		if rv.Typed.Type.Kind != model.KindTypeType || !rv.RV.IsConstant() {
			return job.StepFailed(fmt.Errorf("variable '%s' type must be a type expression", in.Decl.Name))
		}
		declared = &rv.RV.Constant.Type
	}

	if in.Decl.Initializer == nil {
		if declared == nil {
			return job.StepFailed(fmt.Errorf("variable '%s' needs either a declared type or an initializer", in.Decl.Name))
		}
		j.Output = TypeStaticVariableResult{ActualType: *declared}
		return job.StepDone()
	}

	res := tc.typeExpression(in.Scope, nil, in.Decl.Initializer)
	if res.IsWait() {
		return job.StepWait(res.WaitID())
	}
	if res.IsErr() {
		return job.StepFailed(res.Error())
	}
	rv := res.Value()
	initType := rv.Typed.Type
	if declared != nil {
		c, ok := Coerce(e.Sink, j.FilePath, j.Range, Value{Type: initType, RV: rv.RV}, *declared, false)
		if !ok {
			return job.StepFailed(fmt.Errorf("cannot initialize variable '%s'", in.Decl.Name))
		}
		j.Output = TypeStaticVariableResult{ActualType: c.Type}
		return job.StepDone()
	}
	defaulted, err := DefaultType(initType)
	if err != nil {
		return job.StepFailed(err)
	}
	j.Output = TypeStaticVariableResult{ActualType: defaulted}
	return job.StepDone()
}

func (e *Engine) stepStaticIf(j *job.Job) job.StepResult {
	in := j.Input.(staticIfInput)
	tc := &exprTyper{engine: e, path: j.FilePath}
	res := tc.typeExpression(in.Scope, nil, in.Decl.Condition)
	if res.IsWait() {
		return job.StepWait(res.WaitID())
	}
	if res.IsErr() {
		return job.StepFailed(res.Error())
	}
	rv := res.Value()
	if rv.Typed.Type.Kind != model.KindBoolean || !rv.RV.IsConstant() {
		return job.StepFailed(fmt.Errorf("static if condition must be a compile-time-known 'bool'"))
	}
	j.Output = TypeStaticIfResult{ConditionValue: rv.RV.Constant.Boolean}
	return job.StepDone()
}

func (e *Engine) stepParseFile(j *job.Job) job.StepResult {
	path := j.Input.(string)
	if scope, ok := e.fileScopes[path]; ok {
		j.Output = scope
		return job.StepDone()
	}
	scope, err := e.LoadFile(path)
	if err != nil {
		return job.StepFailed(err)
	}
	e.fileScopes[path] = scope
	PredeclareBuiltins(scope, e.Target)
	e.ProcessScope(scope, scope.Statements)
	j.Output = scope
	return job.StepDone()
}

func (e *Engine) stepFunctionBody(j *job.Job) job.StepResult {
	in := j.Input.(functionBodyInput)
	if in.Value.IsExternal || in.Value.BodyScope == nil {
		j.Output = (*model.TypedStatement)(nil)
		return job.StepDone()
	}

	bodyScope := in.Value.BodyScope
	if bodyScope.Statements == nil {
		e.ProcessScope(bodyScope, in.Decl.Body)
	}

	vars := Push(nil)
	rtParams := runtimeParameters(in.Decl)
	for i, p := range rtParams {
		vars.Bind(p.Name, in.Type.Params[i])
	}

	st := &statementTyper{engine: e, path: j.FilePath, returns: in.Type.Returns}
	typed, result, ok := st.typeBlock(bodyScope, vars, in.Decl.Body, false)
	if !ok {
		return result
	}
	j.Output = typed
	return job.StepDone()
}
