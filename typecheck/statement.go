package typecheck

import (
	"fmt"

	"github.com/yaram/simple-compiler/ast"
	"github.com/yaram/simple-compiler/diagnostic"
	"github.com/yaram/simple-compiler/job"
	"github.com/yaram/simple-compiler/model"
)

// statementTyper types one function body against §4.6's rules: it consumes
// scope.NextChildScope() in the exact order ProcessScope allocated them,
// tracks reachability after a terminating Return/Break, and tracks whether
// the current block sits inside a breakable loop.
type statementTyper struct {
	engine  *Engine
	path    string
	returns []model.Type
}

// typeBlock types stmts in order, returning the accumulated TypedStatement
// children. ok is false when typing suspended or failed; the caller should
// return result directly to the scheduler in that case.
func (st *statementTyper) typeBlock(scope *model.Scope, vars *VarStack, stmts []*ast.Statement, inBreakable bool) (*model.TypedStatement, job.StepResult, bool) {
	out := &model.TypedStatement{}
	terminated := false
	reportedUnreachable := false

	for _, s := range stmts {
		if terminated && !reportedUnreachable {
			st.engine.Sink.Report(diagnostic.UnreachableCode, st.path, s.Range, "Unreachable code")
			reportedUnreachable = true
		}

		child, result, ok := st.typeStatement(scope, vars, s, inBreakable)
		if !ok {
			return nil, result, false
		}
		if child != nil {
			out.Children = append(out.Children, child)
		}
		if s.Kind == ast.StmtReturn || s.Kind == ast.StmtBreak {
			terminated = true
		}
	}
	return out, job.StepResult{}, true
}

func (st *statementTyper) typeStatement(scope *model.Scope, vars *VarStack, s *ast.Statement, inBreakable bool) (*model.TypedStatement, job.StepResult, bool) {
	tc := &exprTyper{engine: st.engine, path: st.path}

	switch s.Kind {
	case ast.StmtExpression:
		res := tc.typeExpression(scope, vars, s.Expression)
		if res.IsWait() {
			return nil, job.StepWait(res.WaitID()), false
		}
		if res.IsErr() {
			return nil, job.StepFailed(res.Error()), false
		}
		return &model.TypedStatement{Range: s.Range, Expressions: []*model.TypedExpression{res.Value().Typed}}, job.StepResult{}, true

	case ast.StmtVariableDeclaration:
		return st.typeLocalVariable(scope, vars, s, tc)

	case ast.StmtMultiReturnVariableDeclaration:
		return st.typeMultiReturnVariable(scope, vars, s, tc)

	case ast.StmtAssignment:
		return st.typeAssignment(scope, vars, s, tc)

	case ast.StmtMultiReturnAssignment:
		return st.typeMultiReturnAssignment(scope, vars, s, tc)

	case ast.StmtBinaryOperationAssignment:
		return st.typeBinaryOperationAssignment(scope, vars, s, tc)

	case ast.StmtIf:
		return st.typeIf(scope, vars, s, inBreakable)

	case ast.StmtWhile:
		return st.typeWhile(scope, vars, s, tc)

	case ast.StmtFor:
		return st.typeFor(scope, vars, s, tc)

	case ast.StmtReturn:
		return st.typeReturn(scope, vars, s, tc)

	case ast.StmtBreak:
		if !inBreakable {
			st.engine.Sink.Report(diagnostic.TagMisuse, st.path, s.Range, "'break' used outside of a loop")
		}
		return &model.TypedStatement{Range: s.Range}, job.StepResult{}, true

	case ast.StmtInlineAssembly:
		return st.typeInlineAssembly(scope, vars, s, tc)

	case ast.StmtUsing, ast.StmtStaticIf, ast.StmtFunctionDeclaration, ast.StmtConstantDefinition,
		ast.StmtStructDefinition, ast.StmtUnionDefinition, ast.StmtEnumDefinition:
		// Already handled by scope processing/name search; nothing further
		// to type at the statement level.
		return nil, job.StepResult{}, true

	default:
		return nil, job.StepFailed(fmt.Errorf("unhandled statement kind")), false
	}
}

func (st *statementTyper) typeLocalVariable(scope *model.Scope, vars *VarStack, s *ast.Statement, tc *exprTyper) (*model.TypedStatement, job.StepResult, bool) {
	decl := s.VariableDeclaration
	if vars.DeclaredInFrame(decl.Name) {
		return nil, job.StepFailed(fmt.Errorf("'%s' is already declared in this scope", decl.Name)), false
	}
	var declared *model.Type
	var children []*model.TypedExpression

	if decl.Type != nil {
		res := tc.typeExpression(scope, vars, decl.Type)
		if res.IsWait() {
			return nil, job.StepWait(res.WaitID()), false
		}
		if res.IsErr() {
			return nil, job.StepFailed(res.Error()), false
		}
		rv := res.Value()
		if rv.Typed.Type.Kind != model.KindTypeType || !rv.RV.IsConstant() {
			return nil, job.StepFailed(fmt.Errorf("variable '%s' type must be a type expression", decl.Name)), false
		}
		if !rv.RV.Constant.Type.IsRuntime() {
			return nil, job.StepFailed(fmt.Errorf("variable '%s' has non-runtime type '%s'", decl.Name, rv.RV.Constant.Type.Describe())), false
		}
		declared = &rv.RV.Constant.Type
		children = append(children, rv.Typed)
	}

	var actual model.Type
	if decl.Initializer != nil {
		res := tc.typeExpression(scope, vars, decl.Initializer)
		if res.IsWait() {
			return nil, job.StepWait(res.WaitID()), false
		}
		if res.IsErr() {
			return nil, job.StepFailed(res.Error()), false
		}
		rv := res.Value()
		if declared != nil {
			c, ok := Coerce(st.engine.Sink, st.path, decl.Initializer.Range, Value{Type: rv.Typed.Type, RV: rv.RV}, *declared, false)
			if !ok {
				return nil, job.StepFailed(fmt.Errorf("cannot initialize '%s'", decl.Name)), false
			}
			actual = c.Type
			children = append(children, leaf(decl.Initializer.Range, actual, c.RV, rv.Typed))
		} else {
			defaulted, err := DefaultType(rv.Typed.Type)
			if err != nil {
				return nil, job.StepFailed(err), false
			}
			if !defaulted.IsRuntime() {
				return nil, job.StepFailed(fmt.Errorf("variable '%s' has non-runtime type '%s'", decl.Name, defaulted.Describe())), false
			}
			actual = defaulted
			children = append(children, rv.Typed)
		}
	} else {
		actual = *declared
	}

	vars.Bind(decl.Name, actual)
	return &model.TypedStatement{Range: s.Range, Expressions: children}, job.StepResult{}, true
}

func (st *statementTyper) typeMultiReturnVariable(scope *model.Scope, vars *VarStack, s *ast.Statement, tc *exprTyper) (*model.TypedStatement, job.StepResult, bool) {
	decl := s.MultiReturnVariableDecl
	res := tc.typeExpression(scope, vars, decl.Initializer)
	if res.IsWait() {
		return nil, job.StepWait(res.WaitID()), false
	}
	if res.IsErr() {
		return nil, job.StepFailed(res.Error()), false
	}
	rv := res.Value()
	if rv.Typed.Type.Kind != model.KindMultiReturn || len(rv.Typed.Type.Returns) != len(decl.Names) {
		return nil, job.StepFailed(fmt.Errorf("expected a multi-return value with %d results", len(decl.Names))), false
	}
	for _, name := range decl.Names {
		if vars.DeclaredInFrame(name) {
			return nil, job.StepFailed(fmt.Errorf("'%s' is already declared in this scope", name)), false
		}
	}
	for i, name := range decl.Names {
		vars.Bind(name, rv.Typed.Type.Returns[i])
	}
	return &model.TypedStatement{Range: s.Range, Expressions: []*model.TypedExpression{rv.Typed}}, job.StepResult{}, true
}

func (st *statementTyper) typeAssignment(scope *model.Scope, vars *VarStack, s *ast.Statement, tc *exprTyper) (*model.TypedStatement, job.StepResult, bool) {
	a := s.Assignment
	targetRes := tc.typeExpression(scope, vars, a.Target)
	if targetRes.IsWait() {
		return nil, job.StepWait(targetRes.WaitID()), false
	}
	if targetRes.IsErr() {
		return nil, job.StepFailed(targetRes.Error()), false
	}
	target := targetRes.Value()
	if !target.RV.IsAddressed() {
		return nil, job.StepFailed(fmt.Errorf("assignment target is not addressable")), false
	}

	valueRes := tc.typeExpression(scope, vars, a.Value)
	if valueRes.IsWait() {
		return nil, job.StepWait(valueRes.WaitID()), false
	}
	if valueRes.IsErr() {
		return nil, job.StepFailed(valueRes.Error()), false
	}
	value := valueRes.Value()
	c, ok := Coerce(st.engine.Sink, st.path, a.Value.Range, Value{Type: value.Typed.Type, RV: value.RV}, target.Typed.Type, false)
	if !ok {
		return nil, job.StepFailed(fmt.Errorf("incompatible assignment")), false
	}
	valueTyped := leaf(a.Value.Range, target.Typed.Type, c.RV)
	return &model.TypedStatement{Range: s.Range, Expressions: []*model.TypedExpression{target.Typed, valueTyped}}, job.StepResult{}, true
}

func (st *statementTyper) typeMultiReturnAssignment(scope *model.Scope, vars *VarStack, s *ast.Statement, tc *exprTyper) (*model.TypedStatement, job.StepResult, bool) {
	a := s.MultiReturnAssignment
	valueRes := tc.typeExpression(scope, vars, a.Value)
	if valueRes.IsWait() {
		return nil, job.StepWait(valueRes.WaitID()), false
	}
	if valueRes.IsErr() {
		return nil, job.StepFailed(valueRes.Error()), false
	}
	value := valueRes.Value()
	if value.Typed.Type.Kind != model.KindMultiReturn || len(value.Typed.Type.Returns) != len(a.Targets) {
		return nil, job.StepFailed(fmt.Errorf("expected a multi-return value with %d results", len(a.Targets))), false
	}

	children := []*model.TypedExpression{value.Typed}
	for i, targetExpr := range a.Targets {
		targetRes := tc.typeExpression(scope, vars, targetExpr)
		if targetRes.IsWait() {
			return nil, job.StepWait(targetRes.WaitID()), false
		}
		if targetRes.IsErr() {
			return nil, job.StepFailed(targetRes.Error()), false
		}
		target := targetRes.Value()
		if !target.RV.IsAddressed() {
			return nil, job.StepFailed(fmt.Errorf("assignment target is not addressable")), false
		}
		if !target.Typed.Type.Equal(value.Typed.Type.Returns[i]) {
			return nil, job.StepFailed(fmt.Errorf("result %d does not match target type", i)), false
		}
		children = append(children, target.Typed)
	}
	return &model.TypedStatement{Range: s.Range, Expressions: children}, job.StepResult{}, true
}

func (st *statementTyper) typeBinaryOperationAssignment(scope *model.Scope, vars *VarStack, s *ast.Statement, tc *exprTyper) (*model.TypedStatement, job.StepResult, bool) {
	a := s.BinaryOperationAssignment
	targetRes := tc.typeExpression(scope, vars, a.Target)
	if targetRes.IsWait() {
		return nil, job.StepWait(targetRes.WaitID()), false
	}
	if targetRes.IsErr() {
		return nil, job.StepFailed(targetRes.Error()), false
	}
	target := targetRes.Value()
	if !target.RV.IsAddressed() {
		return nil, job.StepFailed(fmt.Errorf("assignment target is not addressable")), false
	}

	valueRes := tc.typeExpression(scope, vars, a.Value)
	if valueRes.IsWait() {
		return nil, job.StepWait(valueRes.WaitID()), false
	}
	if valueRes.IsErr() {
		return nil, job.StepFailed(valueRes.Error()), false
	}
	value := valueRes.Value()

	determined, err := determineBinaryType(target.Typed.Type, value.Typed.Type)
	if err != nil {
		return nil, job.StepFailed(err), false
	}
	if err := checkOperatorApplicable(determined, a.Operator); err != nil {
		return nil, job.StepFailed(err), false
	}
	if !determined.Equal(target.Typed.Type) {
		return nil, job.StepFailed(fmt.Errorf("operator-assignment result does not match target type")), false
	}
	c, ok := Coerce(st.engine.Sink, st.path, a.Value.Range, Value{Type: value.Typed.Type, RV: value.RV}, determined, false)
	if !ok {
		return nil, job.StepFailed(fmt.Errorf("incompatible operator-assignment")), false
	}
	valueTyped := leaf(a.Value.Range, determined, c.RV)
	return &model.TypedStatement{Range: s.Range, Expressions: []*model.TypedExpression{target.Typed, valueTyped}}, job.StepResult{}, true
}

func (st *statementTyper) typeIf(scope *model.Scope, vars *VarStack, s *ast.Statement, inBreakable bool) (*model.TypedStatement, job.StepResult, bool) {
	tc := &exprTyper{engine: st.engine, path: st.path}
	in := s.If
	condRes := tc.typeExpression(scope, vars, in.Condition)
	if condRes.IsWait() {
		return nil, job.StepWait(condRes.WaitID()), false
	}
	if condRes.IsErr() {
		return nil, job.StepFailed(condRes.Error()), false
	}
	cond := condRes.Value()
	if cond.Typed.Type.Kind != model.KindBoolean {
		return nil, job.StepFailed(fmt.Errorf("if condition must be 'bool'")), false
	}

	out := &model.TypedStatement{Range: s.Range, Expressions: []*model.TypedExpression{cond.Typed}}

	bodyScope := scope.NextChildScope()
	body, result, ok := st.typeBlock(bodyScope, Push(vars), in.Body, inBreakable)
	if !ok {
		return nil, result, false
	}
	out.Children = append(out.Children, body)

	for _, ei := range in.ElseIfs {
		eiScope := scope.NextChildScope()
		eiCondRes := tc.typeExpression(scope, vars, ei.Condition)
		if eiCondRes.IsWait() {
			return nil, job.StepWait(eiCondRes.WaitID()), false
		}
		if eiCondRes.IsErr() {
			return nil, job.StepFailed(eiCondRes.Error()), false
		}
		out.Expressions = append(out.Expressions, eiCondRes.Value().Typed)
		eiBody, result, ok := st.typeBlock(eiScope, Push(vars), ei.Body, inBreakable)
		if !ok {
			return nil, result, false
		}
		out.Children = append(out.Children, eiBody)
	}

	if in.Else != nil {
		elseScope := scope.NextChildScope()
		elseBody, result, ok := st.typeBlock(elseScope, Push(vars), in.Else, inBreakable)
		if !ok {
			return nil, result, false
		}
		out.Children = append(out.Children, elseBody)
	}

	return out, job.StepResult{}, true
}

func (st *statementTyper) typeWhile(scope *model.Scope, vars *VarStack, s *ast.Statement, tc *exprTyper) (*model.TypedStatement, job.StepResult, bool) {
	in := s.While
	condRes := tc.typeExpression(scope, vars, in.Condition)
	if condRes.IsWait() {
		return nil, job.StepWait(condRes.WaitID()), false
	}
	if condRes.IsErr() {
		return nil, job.StepFailed(condRes.Error()), false
	}
	cond := condRes.Value()
	if cond.Typed.Type.Kind != model.KindBoolean {
		return nil, job.StepFailed(fmt.Errorf("while condition must be 'bool'")), false
	}

	bodyScope := scope.NextChildScope()
	body, result, ok := st.typeBlock(bodyScope, Push(vars), in.Body, true)
	if !ok {
		return nil, result, false
	}
	return &model.TypedStatement{Range: s.Range, Expressions: []*model.TypedExpression{cond.Typed}, Children: []*model.TypedStatement{body}}, job.StepResult{}, true
}

func (st *statementTyper) typeFor(scope *model.Scope, vars *VarStack, s *ast.Statement, tc *exprTyper) (*model.TypedStatement, job.StepResult, bool) {
	in := s.For
	fromRes := tc.typeExpression(scope, vars, in.From)
	if fromRes.IsWait() {
		return nil, job.StepWait(fromRes.WaitID()), false
	}
	if fromRes.IsErr() {
		return nil, job.StepFailed(fromRes.Error()), false
	}
	toRes := tc.typeExpression(scope, vars, in.To)
	if toRes.IsWait() {
		return nil, job.StepWait(toRes.WaitID()), false
	}
	if toRes.IsErr() {
		return nil, job.StepFailed(toRes.Error()), false
	}
	from, to := fromRes.Value(), toRes.Value()
	indexType, err := determineBinaryType(from.Typed.Type, to.Typed.Type)
	if err != nil {
		return nil, job.StepFailed(err), false
	}
	if indexType.Kind != model.KindInteger && indexType.Kind != model.KindUndeterminedInteger {
		return nil, job.StepFailed(fmt.Errorf("for loop bounds must be integers")), false
	}
	defaulted, err := DefaultType(indexType)
	if err != nil {
		return nil, job.StepFailed(err), false
	}

	indexName := in.IndexName
	if indexName == "" {
		indexName = "it"
	}
	bodyScope := scope.NextChildScope()
	bodyVars := Push(vars)
	bodyVars.Bind(indexName, defaulted)
	body, result, ok := st.typeBlock(bodyScope, bodyVars, in.Body, true)
	if !ok {
		return nil, result, false
	}
	return &model.TypedStatement{Range: s.Range, Expressions: []*model.TypedExpression{from.Typed, to.Typed}, Children: []*model.TypedStatement{body}}, job.StepResult{}, true
}

func (st *statementTyper) typeReturn(scope *model.Scope, vars *VarStack, s *ast.Statement, tc *exprTyper) (*model.TypedStatement, job.StepResult, bool) {
	values := s.Return.Values
	if len(values) != len(st.returns) {
		return nil, job.StepFailed(fmt.Errorf("expected %d return value(s), got %d", len(st.returns), len(values))), false
	}
	var children []*model.TypedExpression
	for i, v := range values {
		res := tc.typeExpression(scope, vars, v)
		if res.IsWait() {
			return nil, job.StepWait(res.WaitID()), false
		}
		if res.IsErr() {
			return nil, job.StepFailed(res.Error()), false
		}
		rv := res.Value()
		c, ok := Coerce(st.engine.Sink, st.path, v.Range, Value{Type: rv.Typed.Type, RV: rv.RV}, st.returns[i], false)
		if !ok {
			return nil, job.StepFailed(fmt.Errorf("return value %d does not match declared return type", i)), false
		}
		children = append(children, leaf(v.Range, st.returns[i], c.RV))
	}
	return &model.TypedStatement{Range: s.Range, Expressions: children}, job.StepResult{}, true
}

func (st *statementTyper) typeInlineAssembly(scope *model.Scope, vars *VarStack, s *ast.Statement, tc *exprTyper) (*model.TypedStatement, job.StepResult, bool) {
	var children []*model.TypedExpression
	for _, b := range s.InlineAssembly.Bindings {
		res := tc.typeExpression(scope, vars, b.Value)
		if res.IsWait() {
			return nil, job.StepWait(res.WaitID()), false
		}
		if res.IsErr() {
			return nil, job.StepFailed(res.Error()), false
		}
		rv := res.Value()
		if len(b.Constraint) > 0 && b.Constraint[0] == '=' {
			if !rv.RV.IsAddressed() {
				return nil, job.StepFailed(fmt.Errorf("inline assembly output binding must be addressable")), false
			}
			children = append(children, rv.Typed)
			continue
		}

		defaulted, err := DefaultType(rv.Typed.Type)
		if err != nil {
			return nil, job.StepFailed(err), false
		}
		c, ok := Coerce(st.engine.Sink, st.path, b.Value.Range, Value{Type: rv.Typed.Type, RV: rv.RV}, defaulted, false)
		if !ok {
			return nil, job.StepFailed(fmt.Errorf("inline assembly input binding does not coerce to '%s'", defaulted.Describe())), false
		}
		children = append(children, leaf(b.Value.Range, c.Type, c.RV, rv.Typed))
	}
	return &model.TypedStatement{Range: s.Range, Expressions: children}, job.StepResult{}, true
}
