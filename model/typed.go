package model

import "github.com/yaram/simple-compiler/ast"

// TypedExpression is a node of the typed tree (§3): it mirrors the AST but
// carries a resolved type and, where known, a constant value. Children are
// attached directly rather than looked up by range, so downstream
// consumers (code generation, hover) can walk the tree without revisiting
// the scope graph.
type TypedExpression struct {
	Range    ast.FileRange
	Type     Type
	Value    *ConstantValue // nil if not constant-foldable
	Children []*TypedExpression
}

// HasConstantValue reports whether the expression folded to a compile-time
// value.
func (e *TypedExpression) HasConstantValue() bool { return e != nil && e.Value != nil }

// TypedStatement is the statement-level counterpart of TypedExpression.
type TypedStatement struct {
	Range       ast.FileRange
	Expressions []*TypedExpression
	Children    []*TypedStatement
}
