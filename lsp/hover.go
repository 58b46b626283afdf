// Package lsp bridges the typed tree the engine produces to the narrow,
// presentation-only surface an editor hover request needs (§4.9): given a
// file position, find the narrowest typed node covering it and render its
// type. It never drives the JSON-RPC wire framing itself -- that's an
// external collaborator per spec §1/§6 -- only the lookup a host would call
// into from its own handler.
package lsp

import (
	"fmt"

	"github.com/yaram/simple-compiler/ast"
	"github.com/yaram/simple-compiler/job"
	"github.com/yaram/simple-compiler/model"
)

// Hover is the rendered result of a hover request at one position, already
// formatted per §4.9's contract: "Hover over a type-valued constant
// displays the type's description; otherwise '<value> (<type>)'".
type Hover struct {
	Contents string
}

// String renders a Hover the way `simplec hover` prints it to stdout.
func (h Hover) String() string { return h.Contents }

func render(te *model.TypedExpression) string {
	if te.Type.Kind == model.KindTypeType && te.Value != nil && te.Value.Kind == model.ValueType {
		return te.Value.Type.Describe()
	}
	if te.Value != nil {
		return fmt.Sprintf("%s (%s)", te.Value.Describe(), te.Type.Describe())
	}
	return te.Type.Describe()
}

// Lookup finds the narrowest typed expression covering (line, column) in
// path across every Done job in s, and renders its hover text. It returns
// false if no typed node covers the position -- a cursor on whitespace or
// a syntax-only token, neither of which the typed tree carries.
func Lookup(s *job.Scheduler, path string, line, column int) (Hover, bool) {
	var best *model.TypedExpression
	for _, j := range s.Jobs() {
		if j.State != job.Done || j.FilePath != path {
			continue
		}
		switch out := j.Output.(type) {
		case *model.TypedStatement:
			if out != nil {
				best = narrowestInStatement(out, line, column, best)
			}
		case *model.TypedExpression:
			best = narrowestInExpression(out, line, column, best)
		}
	}
	if best == nil {
		return Hover{}, false
	}
	return Hover{Contents: render(best)}, true
}

func narrowestInStatement(st *model.TypedStatement, line, column int, best *model.TypedExpression) *model.TypedExpression {
	// A block statement (e.g. a function body) carries a zero range; only
	// statements with a real range are pruned by position.
	if st.Range != (ast.FileRange{}) && !st.Range.Contains(line, column) {
		return best
	}
	for _, e := range st.Expressions {
		best = narrowestInExpression(e, line, column, best)
	}
	for _, c := range st.Children {
		best = narrowestInStatement(c, line, column, best)
	}
	return best
}

func narrowestInExpression(e *model.TypedExpression, line, column int, best *model.TypedExpression) *model.TypedExpression {
	if e == nil || !e.Range.Contains(line, column) {
		return best
	}
	// Fewer lines spanned wins; on a tie, fewer columns spanned wins.
	if best == nil || e.Range.Size() < best.Range.Size() ||
		(e.Range.Size() == best.Range.Size() &&
			e.Range.LastColumn-e.Range.FirstColumn < best.Range.LastColumn-best.Range.FirstColumn) {
		best = e
	}
	for _, c := range e.Children {
		best = narrowestInExpression(c, line, column, best)
	}
	return best
}
