package lsp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaram/simple-compiler/ast"
	"github.com/yaram/simple-compiler/job"
	"github.com/yaram/simple-compiler/model"
	"github.com/yaram/simple-compiler/typecheck"
)

func rngCols(line, firstCol, lastCol int) ast.FileRange {
	return ast.FileRange{Path: "main.sp", FirstLine: line, FirstColumn: firstCol, LastLine: line, LastColumn: lastCol}
}

func rng(line int) ast.FileRange { return rngCols(line, 1, 1) }

func nameExprAt(name string, r ast.FileRange) *ast.Expression {
	return &ast.Expression{Kind: ast.ExprName, Range: r, Name: &ast.NameReference{Name: name}}
}

func intLitAt(v uint64, r ast.FileRange) *ast.Expression {
	return &ast.Expression{Kind: ast.ExprIntegerLiteral, Range: r, IntegerLiteral: &ast.IntegerLiteral{Value: v}}
}

// Hovering over a plain value renders "<value> (<type>)"; hovering over a
// type-valued constant (here, `x`'s declared-type expression `u8`) renders
// just the type's own description (§4.9).
func TestLookupRendersValueAndTypeConstant(t *testing.T) {
	typeRange := rngCols(2, 1, 2)
	initRange := rngCols(2, 5, 5)
	declRange := rngCols(2, 1, 5)

	main := &ast.Statement{Kind: ast.StmtFunctionDeclaration, Range: rng(1),
		FunctionDeclaration: &ast.FunctionDeclaration{Name: "main", Body: []*ast.Statement{
			{Kind: ast.StmtVariableDeclaration, Range: declRange,
				VariableDeclaration: &ast.VariableDeclaration{
					Name: "x", Type: nameExprAt("u8", typeRange), Initializer: intLitAt(5, initRange),
				}},
		}}}
	scope := model.NewScope(nil, "main.sp", true)
	scope.Statements = []*ast.Statement{main}

	e := typecheck.NewEngine(job.DefaultTarget(), func(p string) (*model.Scope, error) {
		if p == "main.sp" {
			return scope, nil
		}
		return nil, fmt.Errorf("%s: not registered", p)
	})
	_, err := e.Check("main.sp")
	require.NoError(t, err)
	require.Empty(t, e.Sink.Diagnostics())

	typeHover, ok := Lookup(e.Scheduler, "main.sp", 2, 1)
	require.True(t, ok)
	assert.Equal(t, "u8", typeHover.String())

	valueHover, ok := Lookup(e.Scheduler, "main.sp", 2, 5)
	require.True(t, ok)
	assert.Equal(t, "5 (u8)", valueHover.String())
}
