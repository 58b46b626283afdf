package typecheck

import (
	"github.com/yaram/simple-compiler/ast"
	"github.com/yaram/simple-compiler/job"
	"github.com/yaram/simple-compiler/model"
)

// NameResult is what search_for_name (§4.4) resolves a name to.
type NameResult struct {
	Found bool
	Type  model.Type
	Value model.ConstantValue
}

// SearchForName implements §4.4: scope's own declaration table, then its
// usings (respecting the externalOnly/export constraint), then its
// static-ifs (probing the nested scope's declaration table without waiting
// on the condition unless the name is actually there), then scope_constants,
// then the parent scope. The caller (expression typing) searches the local
// variable stack first; this function never sees local bindings.
func (e *Engine) SearchForName(scope *model.Scope, name string, externalOnly bool, path string, r ast.FileRange) job.Outcome[NameResult] {
	for s := scope; s != nil; s = s.Parent {
		res := e.searchOneScope(s, name, externalOnly, path, r)
		if !res.IsDone() {
			return res
		}
		if res.Value().Found {
			return res
		}
	}
	return job.OK(NameResult{Found: false})
}

func (e *Engine) searchOneScope(s *model.Scope, name string, externalOnly bool, path string, r ast.FileRange) job.Outcome[NameResult] {
	if stmt, ok := s.Declarations[name]; ok {
		id, ok := e.declJobs[stmt]
		if !ok {
			return job.OK(NameResult{Found: false})
		}
		j := e.Scheduler.Job(id)
		if j.State != job.Done {
			return job.Wait[NameResult](id)
		}
		t, v := declOutputTypeValue(stmt, j)
		return job.OK(NameResult{Found: true, Type: t, Value: v})
	}

	for _, stmt := range s.Statements {
		if stmt.Kind != ast.StmtUsing {
			continue
		}
		if externalOnly && !stmt.Using.Export {
			continue
		}
		res := e.resolveUsingTarget(s, stmt, path, r)
		if !res.IsDone() {
			return res
		}
		target := res.Value()
		if !target.Found {
			continue
		}
		var nested *model.Scope
		switch {
		case target.Type.Kind == model.KindFileModule:
			nested = target.Value.ModuleScope
		default:
			continue
		}
		inner := e.SearchForName(nested, name, true, path, r)
		if !inner.IsDone() {
			return inner
		}
		if inner.Value().Found {
			return inner
		}
	}

	for _, stmt := range s.Statements {
		if stmt.Kind != ast.StmtStaticIf {
			continue
		}
		nested, ok := e.staticIfScopes[stmt]
		if !ok {
			continue
		}
		if _, present := nested.Declarations[name]; !present {
			continue
		}
		id, ok := e.declJobs[stmt]
		if !ok {
			continue
		}
		j := e.Scheduler.Job(id)
		if j.State != job.Done {
			return job.Wait[NameResult](id)
		}
		out := j.Output.(TypeStaticIfResult)
		if !out.ConditionValue {
			continue
		}
		inner := e.searchOneScope(nested, name, externalOnly, path, r)
		if !inner.IsDone() {
			return inner
		}
		if inner.Value().Found {
			return inner
		}
	}

	for _, sc := range s.ScopeConstants {
		if sc.Name == name {
			return job.OK(NameResult{Found: true, Type: sc.Type, Value: sc.Value})
		}
	}

	return job.OK(NameResult{Found: false})
}

// resolveUsingTarget types a using statement's target expression inline
// (using statements are not a scheduler job kind: their only observable
// effect is which names they expose, so it is simpler and equally correct
// to re-evaluate them on demand than to thread a thirteenth job kind
// through the scheduler for them).
func (e *Engine) resolveUsingTarget(scope *model.Scope, stmt *ast.Statement, path string, r ast.FileRange) job.Outcome[NameResult] {
	tc := &exprTyper{engine: e, path: path}
	res := tc.typeExpression(scope, nil, stmt.Using.Value)
	if res.IsWait() {
		return job.Wait[NameResult](res.WaitID())
	}
	if res.IsErr() {
		return job.OK(NameResult{Found: false})
	}
	v := res.Value()
	return job.OK(NameResult{Found: true, Type: v.Typed.Type, Value: valueOf(v.Typed)})
}

func valueOf(te *model.TypedExpression) model.ConstantValue {
	if te.Value != nil {
		return *te.Value
	}
	return model.VoidValue
}

// declOutputTypeValue extracts the (type, value) pair a declaration's
// finished job produced, in the shape name search needs.
func declOutputTypeValue(stmt *ast.Statement, j *job.Job) (model.Type, model.ConstantValue) {
	switch stmt.Kind {
	case ast.StmtFunctionDeclaration:
		out := j.Output.(TypeFunctionDeclarationResult)
		return out.Type, out.Value
	case ast.StmtConstantDefinition:
		out := j.Output.(*model.TypedExpression)
		return out.Type, valueOf(out)
	case ast.StmtStructDefinition:
		out := j.Output.(TypeStructDefinitionResult)
		return model.TypeOfType, model.TypeValue(out.Type)
	case ast.StmtUnionDefinition:
		out := j.Output.(TypeUnionDefinitionResult)
		return model.TypeOfType, model.TypeValue(out.Type)
	case ast.StmtEnumDefinition:
		out := j.Output.(TypeEnumDefinitionResult)
		return model.TypeOfType, model.TypeValue(out.Type)
	case ast.StmtVariableDeclaration:
		out := j.Output.(TypeStaticVariableResult)
		return out.ActualType, model.UndefValue
	default:
		return model.Type{}, model.ConstantValue{}
	}
}
