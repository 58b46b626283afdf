package typecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaram/simple-compiler/ast"
	"github.com/yaram/simple-compiler/model"
)

// checkOperatorApplicable enforces §4.5's per-operand-class operator table
// directly; these cases exercise each class's boundary without going
// through a full expression-typing pass.
func TestCheckOperatorApplicable(t *testing.T) {
	assert.NoError(t, checkOperatorApplicable(model.Bool, ast.OpEqual))
	assert.NoError(t, checkOperatorApplicable(model.Bool, ast.OpBooleanAnd))
	assert.Error(t, checkOperatorApplicable(model.Bool, ast.OpAdd))
	assert.Error(t, checkOperatorApplicable(model.Bool, ast.OpLessThan))

	ptr := model.Ptr(model.Int(32, false))
	assert.NoError(t, checkOperatorApplicable(ptr, ast.OpEqual))
	assert.Error(t, checkOperatorApplicable(ptr, ast.OpAdd))
	assert.Error(t, checkOperatorApplicable(ptr, ast.OpLessThan))

	enumT := model.Type{Kind: model.KindEnum, Backing: &model.Type{Kind: model.KindInteger, IntegerSize: 32}}
	assert.NoError(t, checkOperatorApplicable(enumT, ast.OpEqual))
	assert.NoError(t, checkOperatorApplicable(enumT, ast.OpNotEqual))
	assert.Error(t, checkOperatorApplicable(enumT, ast.OpAdd))
	assert.Error(t, checkOperatorApplicable(enumT, ast.OpLessThan))

	assert.NoError(t, checkOperatorApplicable(model.Int(32, true), ast.OpAdd))
	assert.NoError(t, checkOperatorApplicable(model.Int(32, true), ast.OpBitwiseAnd))
	assert.NoError(t, checkOperatorApplicable(model.Int(32, true), ast.OpLessThan))
	assert.Error(t, checkOperatorApplicable(model.Int(32, true), ast.OpBooleanAnd))

	assert.NoError(t, checkOperatorApplicable(model.Flt(64), ast.OpAdd))
	assert.NoError(t, checkOperatorApplicable(model.Flt(64), ast.OpLessThan))
	assert.Error(t, checkOperatorApplicable(model.Flt(64), ast.OpBitwiseAnd))
	assert.Error(t, checkOperatorApplicable(model.Flt(64), ast.OpBooleanAnd))
}
