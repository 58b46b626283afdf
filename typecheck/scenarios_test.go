package typecheck

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaram/simple-compiler/ast"
	"github.com/yaram/simple-compiler/diagnostic"
	"github.com/yaram/simple-compiler/job"
	"github.com/yaram/simple-compiler/model"
)

// These tests exercise the six end-to-end scenarios the job scheduler and
// constant evaluator are built around, hand-building the ast.Statement
// trees a real parser would hand the engine (lexing/parsing itself is out
// of scope, per package ast's doc comment).

func rng(line int) ast.FileRange {
	return ast.FileRange{Path: "main.sp", FirstLine: line, FirstColumn: 1, LastLine: line, LastColumn: 1}
}

func nameExpr(name string) *ast.Expression {
	return &ast.Expression{Kind: ast.ExprName, Name: &ast.NameReference{Name: name}}
}

func intLit(v uint64) *ast.Expression {
	return &ast.Expression{Kind: ast.ExprIntegerLiteral, IntegerLiteral: &ast.IntegerLiteral{Value: v}}
}

func memberExpr(base *ast.Expression, member string) *ast.Expression {
	return &ast.Expression{Kind: ast.ExprMember, Member: &ast.MemberReference{Value: base, Member: member}}
}

func arrayLiteral(elems ...*ast.Expression) *ast.Expression {
	return &ast.Expression{Kind: ast.ExprArrayLiteral, ArrayLiteral: &ast.ArrayLiteralExpression{Elements: elems}}
}

func structLiteral(members ...ast.StructLiteralMember) *ast.Expression {
	return &ast.Expression{Kind: ast.ExprStructLiteral, StructLiteral: &ast.StructLiteralExpression{Members: members}}
}

func callExpr(callee *ast.Expression, args ...*ast.Expression) *ast.Expression {
	return &ast.Expression{Kind: ast.ExprCall, Call: &ast.FunctionCall{Value: callee, Parameters: args}}
}

func varDecl(line int, name string, typ, init *ast.Expression) *ast.Statement {
	return &ast.Statement{Kind: ast.StmtVariableDeclaration, Range: rng(line),
		VariableDeclaration: &ast.VariableDeclaration{Name: name, Type: typ, Initializer: init}}
}

func returnStmt(line int, values ...*ast.Expression) *ast.Statement {
	return &ast.Statement{Kind: ast.StmtReturn, Range: rng(line), Return: &ast.ReturnStatement{Values: values}}
}

func funcDecl(name string, params []ast.FunctionParameter, returns []*ast.Expression, body []*ast.Statement) *ast.Statement {
	return &ast.Statement{Kind: ast.StmtFunctionDeclaration, Range: rng(1),
		FunctionDeclaration: &ast.FunctionDeclaration{Name: name, Parameters: params, ReturnTypes: returns, Body: body}}
}

func rootScope(path string, stmts []*ast.Statement) *model.Scope {
	s := model.NewScope(nil, path, true)
	s.Statements = stmts
	return s
}

// engineFor returns an Engine whose only loadable file is path, backed by
// scope. This stands in for the real parser (out of scope per package ast's
// doc comment): every scenario below hand-builds the AST a parser would have
// produced and hands it to the engine through this one seam.
func engineFor(path string, scope *model.Scope) *Engine {
	return NewEngine(job.DefaultTarget(), func(p string) (*model.Scope, error) {
		if p == path {
			return scope, nil
		}
		return nil, fmt.Errorf("%s: not registered in this test", p)
	})
}

// functionBodyOf locates the TypeFunctionBody job for decl's body (there is
// exactly one per instantiation in every scenario below) and returns its
// typed statement list.
func functionBodyOf(t *testing.T, e *Engine) *model.TypedStatement {
	t.Helper()
	for _, j := range e.Scheduler.Jobs() {
		if j.Kind == job.TypeFunctionBody {
			out, ok := j.Output.(*model.TypedStatement)
			require.True(t, ok)
			return out
		}
	}
	t.Fatal("no TypeFunctionBody job found")
	return nil
}

// Scenario 1: a literal that does not fit its declared integer type is
// rejected with a precise coercion diagnostic (§4.7).
func TestScenarioCoercionOutOfRange(t *testing.T) {
	main := funcDecl("main", nil, nil, []*ast.Statement{
		varDecl(2, "x", nameExpr("u8"), intLit(300)),
	})
	scope := rootScope("main.sp", []*ast.Statement{main})
	e := engineFor("main.sp", scope)

	_, err := e.Check("main.sp")
	require.NoError(t, err)

	var coercion *diagnostic.Diagnostic
	for i, d := range e.Sink.Diagnostics() {
		if d.Kind == diagnostic.Coercion {
			coercion = &e.Sink.Diagnostics()[i]
		}
	}
	require.NotNil(t, coercion, "expected a coercion diagnostic")
	assert.Contains(t, coercion.Message, "300")
	assert.Contains(t, coercion.Message, "u8")
}

// Scenario 2: two constants whose values depend on each other can never
// finish typing, and both are reported as a circular dependency (§4.3).
func TestScenarioCircularDependency(t *testing.T) {
	declA := &ast.Statement{Kind: ast.StmtConstantDefinition, Range: rng(1),
		ConstantDefinition: &ast.ConstantDefinition{Name: "A", Value: nameExpr("B")}}
	declB := &ast.Statement{Kind: ast.StmtConstantDefinition, Range: rng(2),
		ConstantDefinition: &ast.ConstantDefinition{Name: "B", Value: nameExpr("A")}}
	main := funcDecl("main", nil, nil, nil)
	scope := rootScope("main.sp", []*ast.Statement{declA, declB, main})
	e := engineFor("main.sp", scope)

	_, err := e.Check("main.sp")
	require.NoError(t, err)

	diags := e.Sink.Diagnostics()
	var sawLineA, sawLineB bool
	for _, d := range diags {
		if d.Kind != diagnostic.CircularDependency {
			continue
		}
		switch d.Range.FirstLine {
		case 1:
			sawLineA = true
		case 2:
			sawLineB = true
		}
	}
	assert.True(t, sawLineA, "A's definition should be reported as part of the cycle")
	assert.True(t, sawLineB, "B's definition should be reported as part of the cycle")
}

// Scenario 3: a polymorphic function call instantiates exactly once per
// distinct parameter vector (§4.8's memoization invariant).
func TestScenarioPolymorphicFunctionInstantiation(t *testing.T) {
	f := funcDecl("f",
		[]ast.FunctionParameter{
			{Name: "T", IsPolymorphic: true},
			{Name: "x", Type: nameExpr("T")},
		},
		[]*ast.Expression{nameExpr("T")},
		[]*ast.Statement{returnStmt(1, nameExpr("x"))},
	)
	main := funcDecl("main", nil, nil, []*ast.Statement{
		varDecl(2, "y", nil, callExpr(nameExpr("f"), intLit(7), intLit(7))),
	})
	scope := rootScope("main.sp", []*ast.Statement{f, main})
	e := engineFor("main.sp", scope)

	_, err := e.Check("main.sp")
	require.NoError(t, err)
	assert.Empty(t, e.Sink.Diagnostics())

	var instantiations int
	for _, j := range e.Scheduler.Jobs() {
		if j.Kind == job.TypePolymorphicFunction {
			instantiations++
		}
	}
	assert.Equal(t, 1, instantiations)
}

// Scenario 4: a static array's .length member always constant-folds to the
// array's declared length, even though the array itself is a mutable local.
func TestScenarioArrayLength(t *testing.T) {
	main := funcDecl("main", nil, nil, []*ast.Statement{
		varDecl(2, "arr", nil, arrayLiteral(intLit(1), intLit(2), intLit(3))),
		varDecl(3, "n", nil, memberExpr(nameExpr("arr"), "length")),
	})
	scope := rootScope("main.sp", []*ast.Statement{main})
	e := engineFor("main.sp", scope)

	_, err := e.Check("main.sp")
	require.NoError(t, err)
	require.Empty(t, e.Sink.Diagnostics())

	body := functionBodyOf(t, e)
	require.Len(t, body.Children, 2)
	nStmt := body.Children[1]
	require.Len(t, nStmt.Expressions, 1)
	lengthExpr := nStmt.Expressions[0]

	usize := model.Int(job.DefaultTarget().AddressSize, false)
	assert.True(t, lengthExpr.Type.Equal(usize))
	require.NotNil(t, lengthExpr.Value)
	assert.Equal(t, uint64(3), lengthExpr.Value.Integer)
}

// Scenario 5: an enum variant access constant-folds to the variant's
// backing integer value.
func TestScenarioEnumVariantAccess(t *testing.T) {
	enumDef := &ast.Statement{Kind: ast.StmtEnumDefinition, Range: rng(1),
		EnumDefinition: &ast.EnumDefinition{Name: "E", Variants: []ast.EnumVariantDeclaration{
			{Name: "A"}, {Name: "B"},
		}}}
	main := funcDecl("main", nil, nil, []*ast.Statement{
		varDecl(2, "v", nil, memberExpr(nameExpr("E"), "A")),
	})
	scope := rootScope("main.sp", []*ast.Statement{enumDef, main})
	e := engineFor("main.sp", scope)

	_, err := e.Check("main.sp")
	require.NoError(t, err)
	require.Empty(t, e.Sink.Diagnostics())

	body := functionBodyOf(t, e)
	require.Len(t, body.Children, 1)
	vExpr := body.Children[0].Expressions[0]
	assert.Equal(t, model.KindEnum, vExpr.Type.Kind)
	require.NotNil(t, vExpr.Value)
	assert.Equal(t, uint64(0), vExpr.Value.Integer)
}

// Scenario 6: two variables declared with the same polymorphic struct
// instantiation (Pair(u8)) share a single TypePolymorphicStruct job.
func TestScenarioPolymorphicStructMemoization(t *testing.T) {
	pair := &ast.Statement{Kind: ast.StmtStructDefinition, Range: rng(1),
		StructDefinition: &ast.StructDefinition{Name: "Pair",
			Parameters: []ast.PolymorphicParameter{{Name: "T"}},
			Members: []ast.StructMemberDeclaration{
				{Name: "a", Type: nameExpr("T")},
				{Name: "b", Type: nameExpr("T")},
			}}}
	main := funcDecl("main", nil, nil, []*ast.Statement{
		varDecl(2, "p", callExpr(nameExpr("Pair"), nameExpr("u8")), nil),
		varDecl(3, "q", callExpr(nameExpr("Pair"), nameExpr("u8")), nil),
	})
	scope := rootScope("main.sp", []*ast.Statement{pair, main})
	e := engineFor("main.sp", scope)

	_, err := e.Check("main.sp")
	require.NoError(t, err)
	require.Empty(t, e.Sink.Diagnostics())

	var structJobs int
	for _, j := range e.Scheduler.Jobs() {
		if j.Kind == job.TypePolymorphicStruct {
			structJobs++
		}
	}
	assert.Equal(t, 1, structJobs, "p and q should share one Pair(u8) instantiation")
}

// A struct literal's undetermined-integer fields coerce member-wise against
// the declared struct type's concrete member types (§4.7 "undetermined
// struct matches target struct by member names in order and each member
// coerces"), rather than only checking the literal's own inferred shape.
func TestStructLiteralMemberCoercion(t *testing.T) {
	pair := &ast.Statement{Kind: ast.StmtStructDefinition, Range: rng(1),
		StructDefinition: &ast.StructDefinition{Name: "Pair",
			Parameters: []ast.PolymorphicParameter{{Name: "T"}},
			Members: []ast.StructMemberDeclaration{
				{Name: "a", Type: nameExpr("T")},
				{Name: "b", Type: nameExpr("T")},
			}}}
	main := funcDecl("main", nil, nil, []*ast.Statement{
		varDecl(2, "p", callExpr(nameExpr("Pair"), nameExpr("u8")),
			structLiteral(
				ast.StructLiteralMember{Name: "a", Value: intLit(1)},
				ast.StructLiteralMember{Name: "b", Value: intLit(2)},
			)),
	})
	scope := rootScope("main.sp", []*ast.Statement{pair, main})
	e := engineFor("main.sp", scope)

	_, err := e.Check("main.sp")
	require.NoError(t, err)
	assert.Empty(t, e.Sink.Diagnostics())

	body := functionBodyOf(t, e)
	require.Len(t, body.Children, 1)
}

// An out-of-range field in a struct literal being coerced to a concrete
// struct type is rejected the same way a bare out-of-range literal is
// (§4.7, scenario 1's sibling case for aggregate initializers).
func TestStructLiteralMemberCoercionOutOfRange(t *testing.T) {
	pair := &ast.Statement{Kind: ast.StmtStructDefinition, Range: rng(1),
		StructDefinition: &ast.StructDefinition{Name: "Pair",
			Parameters: []ast.PolymorphicParameter{{Name: "T"}},
			Members: []ast.StructMemberDeclaration{
				{Name: "a", Type: nameExpr("T")},
				{Name: "b", Type: nameExpr("T")},
			}}}
	main := funcDecl("main", nil, nil, []*ast.Statement{
		varDecl(2, "p", callExpr(nameExpr("Pair"), nameExpr("u8")),
			structLiteral(
				ast.StructLiteralMember{Name: "a", Value: intLit(300)},
				ast.StructLiteralMember{Name: "b", Value: intLit(2)},
			)),
	})
	scope := rootScope("main.sp", []*ast.Statement{pair, main})
	e := engineFor("main.sp", scope)

	_, err := e.Check("main.sp")
	require.NoError(t, err)

	var sawCoercion bool
	for _, d := range e.Sink.Diagnostics() {
		if d.Kind == diagnostic.Coercion {
			sawCoercion = true
		}
	}
	assert.True(t, sawCoercion, "expected a coercion diagnostic for the out-of-range field")
}

// An inline assembly statement's output binding (leading '=') must be
// addressable and is left untouched; its input bindings are coerced to
// their default type per §4.6/§9 ("otherwise input (value coerced to
// default type)"), so a bare integer literal input binding ends up typed
// 'i64' rather than staying an undetermined integer.
func TestScenarioInlineAssemblyBindings(t *testing.T) {
	main := funcDecl("main", nil, nil, []*ast.Statement{
		varDecl(2, "x", nameExpr("u8"), intLit(0)),
		{
			Kind:  ast.StmtInlineAssembly,
			Range: rng(3),
			InlineAssembly: &ast.InlineAssemblyStatement{
				Source: "mov $1, $0",
				Bindings: []ast.InlineAssemblyBinding{
					{Constraint: "=r", Value: nameExpr("x")},
					{Constraint: "r", Value: intLit(5)},
				},
			},
		},
	})
	scope := rootScope("main.sp", []*ast.Statement{main})
	e := engineFor("main.sp", scope)

	_, err := e.Check("main.sp")
	require.NoError(t, err)
	assert.Empty(t, e.Sink.Diagnostics())

	body := functionBodyOf(t, e)
	require.Len(t, body.Children, 2)
	asm := body.Children[1]
	require.Len(t, asm.Expressions, 2)
	assert.Equal(t, model.KindInteger, asm.Expressions[0].Type.Kind)
	assert.Equal(t, 8, asm.Expressions[0].Type.IntegerSize, "output binding keeps its addressed variable's own type")
	assert.Equal(t, model.KindInteger, asm.Expressions[1].Type.Kind)
	assert.Equal(t, 64, asm.Expressions[1].Type.IntegerSize, "input binding defaults to i64")
}

// An inline assembly output binding that is not addressable (e.g. a bare
// literal) is rejected.
func TestScenarioInlineAssemblyOutputMustBeAddressable(t *testing.T) {
	main := funcDecl("main", nil, nil, []*ast.Statement{
		{
			Kind:  ast.StmtInlineAssembly,
			Range: rng(2),
			InlineAssembly: &ast.InlineAssemblyStatement{
				Source: "mov $0, $0",
				Bindings: []ast.InlineAssemblyBinding{
					{Constraint: "=r", Value: intLit(5)},
				},
			},
		},
	})
	scope := rootScope("main.sp", []*ast.Statement{main})
	e := engineFor("main.sp", scope)

	_, err := e.Check("main.sp")
	require.NoError(t, err)

	diags := e.Sink.Diagnostics()
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[len(diags)-1].Message, "addressable")
}
