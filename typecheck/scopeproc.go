package typecheck

import (
	"github.com/yaram/simple-compiler/ast"
	"github.com/yaram/simple-compiler/diagnostic"
	"github.com/yaram/simple-compiler/job"
	"github.com/yaram/simple-compiler/model"
)

// ProcessScope implements §4.2: for every declaration-like statement in
// statements it appends the corresponding Type* job and records it in
// scope's declaration table; using/static-if/nested control-flow scopes are
// allocated recursively. After this returns, every statically visible name
// in scope is reachable either via the declaration table or via a pending
// static-if/using that will expose it once resolved.
func (e *Engine) ProcessScope(scope *model.Scope, statements []*ast.Statement) {
	scope.Statements = statements

	for _, stmt := range statements {
		switch stmt.Kind {
		case ast.StmtFunctionDeclaration:
			e.declare(scope, stmt.FunctionDeclaration.Name, stmt)
			id := e.Scheduler.Enqueue(job.TypeFunctionDeclaration, scope.FilePath, stmt.Range, functionDeclInput{
				Decl: stmt.FunctionDeclaration, Scope: scope,
			})
			e.declJobs[stmt] = id

		case ast.StmtConstantDefinition:
			e.declare(scope, stmt.ConstantDefinition.Name, stmt)
			id := e.Scheduler.Enqueue(job.TypeConstantDefinition, scope.FilePath, stmt.Range, constantDefInput{
				Decl: stmt.ConstantDefinition, Scope: scope,
			})
			e.declJobs[stmt] = id

		case ast.StmtStructDefinition:
			e.declare(scope, stmt.StructDefinition.Name, stmt)
			id := e.Scheduler.Enqueue(job.TypeStructDefinition, scope.FilePath, stmt.Range, structDefInput{
				Decl: stmt.StructDefinition, Scope: scope,
			})
			e.declJobs[stmt] = id

		case ast.StmtUnionDefinition:
			e.declare(scope, stmt.UnionDefinition.Name, stmt)
			id := e.Scheduler.Enqueue(job.TypeUnionDefinition, scope.FilePath, stmt.Range, unionDefInput{
				Decl: stmt.UnionDefinition, Scope: scope,
			})
			e.declJobs[stmt] = id

		case ast.StmtEnumDefinition:
			e.declare(scope, stmt.EnumDefinition.Name, stmt)
			id := e.Scheduler.Enqueue(job.TypeEnumDefinition, scope.FilePath, stmt.Range, enumDefInput{
				Decl: stmt.EnumDefinition, Scope: scope,
			})
			e.declJobs[stmt] = id

		case ast.StmtVariableDeclaration:
			if scope.IsTopLevel {
				e.declare(scope, stmt.VariableDeclaration.Name, stmt)
				id := e.Scheduler.Enqueue(job.TypeStaticVariable, scope.FilePath, stmt.Range, staticVariableInput{
					Decl: stmt.VariableDeclaration, Scope: scope,
				})
				e.declJobs[stmt] = id
			}

		case ast.StmtStaticIf:
			id := e.Scheduler.Enqueue(job.TypeStaticIf, scope.FilePath, stmt.Range, staticIfInput{
				Decl: stmt.StaticIf, Scope: scope,
			})
			e.declJobs[stmt] = id
			child := model.NewScope(scope, scope.FilePath, scope.IsTopLevel)
			e.staticIfScopes[stmt] = child
			e.ProcessScope(child, stmt.StaticIf.Statements)

		case ast.StmtUsing:
			// No job: using is resolved lazily, inline, during name
			// search (see search.go), since its only observable effect
			// is which names become visible through it.

		case ast.StmtIf:
			child := model.NewScope(scope, scope.FilePath, false)
			e.ProcessScope(child, stmt.If.Body)
			scope.ChildScopes = append(scope.ChildScopes, child)
			for _, ei := range stmt.If.ElseIfs {
				c := model.NewScope(scope, scope.FilePath, false)
				e.ProcessScope(c, ei.Body)
				scope.ChildScopes = append(scope.ChildScopes, c)
			}
			if stmt.If.Else != nil {
				c := model.NewScope(scope, scope.FilePath, false)
				e.ProcessScope(c, stmt.If.Else)
				scope.ChildScopes = append(scope.ChildScopes, c)
			}

		case ast.StmtWhile:
			child := model.NewScope(scope, scope.FilePath, false)
			e.ProcessScope(child, stmt.While.Body)
			scope.ChildScopes = append(scope.ChildScopes, child)

		case ast.StmtFor:
			child := model.NewScope(scope, scope.FilePath, false)
			e.ProcessScope(child, stmt.For.Body)
			scope.ChildScopes = append(scope.ChildScopes, child)
		}
	}
}

func (e *Engine) declare(scope *model.Scope, name string, stmt *ast.Statement) {
	if existing, ok := scope.Declarations[name]; ok {
		e.Sink.Report(diagnostic.NameResolution, scope.FilePath, stmt.Range,
			"Duplicate declaration of '%s' (originally declared at %d:%d)", name, existing.Range.FirstLine, existing.Range.FirstColumn)
		return
	}
	scope.Declarations[name] = stmt
}

// Job-input payload types. Each carries exactly what its step function
// needs; once the job is Done, Job.Output is the corresponding Result type
// declared alongside each step function.
type functionDeclInput struct {
	Decl  *ast.FunctionDeclaration
	Scope *model.Scope
}

type constantDefInput struct {
	Decl  *ast.ConstantDefinition
	Scope *model.Scope
}

type structDefInput struct {
	Decl  *ast.StructDefinition
	Scope *model.Scope
}

type unionDefInput struct {
	Decl  *ast.UnionDefinition
	Scope *model.Scope
}

type enumDefInput struct {
	Decl  *ast.EnumDefinition
	Scope *model.Scope
}

type staticVariableInput struct {
	Decl  *ast.VariableDeclaration
	Scope *model.Scope
}

type staticIfInput struct {
	Decl  *ast.StaticIfStatement
	Scope *model.Scope
}

type polymorphicFunctionInput struct {
	Decl       *ast.FunctionDeclaration
	DeclScope  *model.Scope // the declaration's own parent scope
	Parameters model.ParameterVector
	CallScope  *model.Scope
	CallRange  ast.FileRange
}

type polymorphicStructInput struct {
	Decl       *ast.StructDefinition
	DeclScope  *model.Scope
	Parameters model.ParameterVector
}

type polymorphicUnionInput struct {
	Decl       *ast.UnionDefinition
	DeclScope  *model.Scope
	Parameters model.ParameterVector
}

type functionBodyInput struct {
	Decl  *ast.FunctionDeclaration
	Type  model.Type
	Value model.FunctionConstant
}
