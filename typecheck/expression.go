package typecheck

import (
	"fmt"
	"strings"

	"github.com/yaram/simple-compiler/ast"
	"github.com/yaram/simple-compiler/diagnostic"
	"github.com/yaram/simple-compiler/job"
	"github.com/yaram/simple-compiler/model"
)

// exprResult is the (TypedExpression, RuntimeValue) pair §4.5 says
// expression typing produces.
type exprResult struct {
	Typed *model.TypedExpression
	RV    model.RuntimeValue
}

// exprTyper types one expression tree against a scope and local variable
// stack, per §4.5: "One recursive function producing (TypedExpression,
// RuntimeValue)."
type exprTyper struct {
	engine *Engine
	path   string
}

func (t *exprTyper) fail(r ast.FileRange, kind diagnostic.Kind, format string, args ...any) job.Outcome[exprResult] {
	t.engine.Sink.Report(kind, t.path, r, format, args...)
	return job.Err[exprResult](fmt.Errorf(format, args...))
}

func leaf(r ast.FileRange, typ model.Type, rv model.RuntimeValue, children ...*model.TypedExpression) *model.TypedExpression {
	var val *model.ConstantValue
	if rv.IsConstant() {
		c := rv.Constant
		val = &c
	}
	return &model.TypedExpression{Range: r, Type: typ, Value: val, Children: children}
}

// typeExpression dispatches on ast kind, typing children first (propagating
// Wait/Err), classifying constant-foldability, and choosing the result
// type per the rules of §4.5.
func (t *exprTyper) typeExpression(scope *model.Scope, vars *VarStack, e *ast.Expression) job.Outcome[exprResult] {
	switch e.Kind {
	case ast.ExprIntegerLiteral:
		v := model.IntValue(e.IntegerLiteral.Value)
		return job.OK(exprResult{Typed: leaf(e.Range, model.UndetInt, model.Constant(v)), RV: model.Constant(v)})

	case ast.ExprFloatLiteral:
		v := model.FloatValue(e.FloatLiteral.Value)
		return job.OK(exprResult{Typed: leaf(e.Range, model.UndetFloat, model.Constant(v)), RV: model.Constant(v)})

	case ast.ExprStringLiteral:
		elem := model.Int(8, false)
		strType := model.Type{Kind: model.KindStaticArray, Length: uint64(len(e.StringLiteral.Value)), Element: &elem}
		elems := make([]model.ConstantValue, len(e.StringLiteral.Value))
		for i, b := range []byte(e.StringLiteral.Value) {
			elems[i] = model.IntValue(uint64(b))
		}
		v := model.ConstantValue{Kind: model.ValueStaticArray, StaticArray: elems}
		return job.OK(exprResult{Typed: leaf(e.Range, strType, model.Constant(v)), RV: model.Constant(v)})

	case ast.ExprName:
		return t.typeName(scope, vars, e)

	case ast.ExprBinaryOperation:
		return t.typeBinaryOperation(scope, vars, e)

	case ast.ExprUnaryOperation:
		return t.typeUnaryOperation(scope, vars, e)

	case ast.ExprIndex:
		return t.typeIndex(scope, vars, e)

	case ast.ExprMember:
		return t.typeMember(scope, vars, e)

	case ast.ExprCall:
		return t.typeCall(scope, vars, e, e.Call)

	case ast.ExprCast:
		return t.typeCast(scope, vars, e)

	case ast.ExprBake:
		return t.typeBake(scope, vars, e)

	case ast.ExprArrayLiteral:
		return t.typeArrayLiteral(scope, vars, e)

	case ast.ExprStructLiteral:
		return t.typeStructLiteral(scope, vars, e)

	case ast.ExprArrayType:
		return t.typeArrayTypeExpr(scope, vars, e)

	case ast.ExprFunctionType:
		return t.typeFunctionTypeExpr(scope, vars, e)

	case ast.ExprPointerType:
		return t.typePointerTypeExpr(scope, vars, e)

	default:
		return t.fail(e.Range, diagnostic.Type, "Unhandled expression kind")
	}
}

func (t *exprTyper) typeName(scope *model.Scope, vars *VarStack, e *ast.Expression) job.Outcome[exprResult] {
	if vars != nil {
		if typ, ok := vars.Lookup(e.Name.Name); ok {
			return job.OK(exprResult{Typed: leaf(e.Range, typ, model.Addressed), RV: model.Addressed})
		}
	}
	res := t.engine.SearchForName(scope, e.Name.Name, false, t.path, e.Range)
	if out, propagated := job.Propagate[exprResult](res); propagated {
		return out
	}
	found := res.Value()
	if !found.Found {
		if names := scope.DeclarationNames(); len(names) > 0 {
			return t.fail(e.Range, diagnostic.NameResolution, "Cannot find name '%s' (scope declares: %s)", e.Name.Name, strings.Join(names, ", "))
		}
		return t.fail(e.Range, diagnostic.NameResolution, "Cannot find name '%s'", e.Name.Name)
	}
	rv := model.Constant(found.Value)
	return job.OK(exprResult{Typed: leaf(e.Range, found.Type, rv), RV: rv})
}

func (t *exprTyper) typeBinaryOperation(scope *model.Scope, vars *VarStack, e *ast.Expression) job.Outcome[exprResult] {
	left := t.typeExpression(scope, vars, e.BinaryOperation.Left)
	if out, propagated := job.Propagate[exprResult](left); propagated {
		return out
	}
	right := t.typeExpression(scope, vars, e.BinaryOperation.Right)
	if out, propagated := job.Propagate[exprResult](right); propagated {
		return out
	}
	l, r := left.Value(), right.Value()

	determined, err := determineBinaryType(l.Typed.Type, r.Typed.Type)
	if err != nil {
		return t.fail(e.Range, diagnostic.Type, "%v", err)
	}

	lc, ok := Coerce(t.engine.Sink, t.path, e.BinaryOperation.Left.Range, Value{Type: l.Typed.Type, RV: l.RV}, determined, false)
	if !ok {
		return job.Err[exprResult](fmt.Errorf("coercion failed"))
	}
	rc, ok := Coerce(t.engine.Sink, t.path, e.BinaryOperation.Right.Range, Value{Type: r.Typed.Type, RV: r.RV}, determined, false)
	if !ok {
		return job.Err[exprResult](fmt.Errorf("coercion failed"))
	}

	op := e.BinaryOperation.Operator
	resultType := determined
	if isComparisonOp(op) || isBooleanOp(op) {
		resultType = model.Bool
	}
	if err := checkOperatorApplicable(determined, op); err != nil {
		return t.fail(e.Range, diagnostic.TagMisuse, "%v", err)
	}

	rv := model.Register
	if lc.RV.IsConstant() && rc.RV.IsConstant() {
		folded, err := foldBinary(op, lc.RV.Constant, rc.RV.Constant, determined)
		if err != nil {
			return t.fail(e.Range, diagnostic.ConstantEvaluation, "%v", err)
		}
		rv = model.Constant(folded)
	}

	return job.OK(exprResult{Typed: leaf(e.Range, resultType, rv, l.Typed, r.Typed), RV: rv})
}

func (t *exprTyper) typeUnaryOperation(scope *model.Scope, vars *VarStack, e *ast.Expression) job.Outcome[exprResult] {
	inner := t.typeExpression(scope, vars, e.UnaryOperation.Value)
	if out, propagated := job.Propagate[exprResult](inner); propagated {
		return out
	}
	v := inner.Value()

	switch e.UnaryOperation.Operator {
	case ast.OpAddressOf:
		if v.Typed.Type.Kind == model.KindFunction && v.RV.IsConstant() && v.RV.Constant.Kind == model.ValueFunction {
			bodyID := t.engine.enqueueFunctionBody(v.RV.Constant.Function.Declaration, v.Typed.Type, v.RV.Constant.Function, e.Range)
			bj := t.engine.Scheduler.Job(bodyID)
			if bj.State != job.Done {
				return job.Wait[exprResult](bodyID)
			}
			return job.OK(exprResult{Typed: leaf(e.Range, model.Ptr(v.Typed.Type), model.Register, v.Typed), RV: model.Register})
		}
		if v.Typed.Type.Kind == model.KindTypeType && v.RV.IsConstant() {
			pt := model.Ptr(v.RV.Constant.Type)
			return job.OK(exprResult{Typed: leaf(e.Range, model.TypeOfType, model.Constant(model.TypeValue(pt)), v.Typed), RV: model.Constant(model.TypeValue(pt))})
		}
		if !v.RV.IsAddressed() {
			return t.fail(e.Range, diagnostic.Type, "Cannot take address of a non-addressed value")
		}
		return job.OK(exprResult{Typed: leaf(e.Range, model.Ptr(v.Typed.Type), model.Register, v.Typed), RV: model.Register})

	case ast.OpDereference:
		if v.Typed.Type.Kind != model.KindPointer {
			return t.fail(e.Range, diagnostic.Type, "Cannot dereference a non-pointer value of type '%s'", v.Typed.Type.Describe())
		}
		if !v.Typed.Type.Element.IsRuntime() {
			return t.fail(e.Range, diagnostic.Type, "Cannot dereference a pointer to a non-runtime type")
		}
		return job.OK(exprResult{Typed: leaf(e.Range, *v.Typed.Type.Element, model.Addressed, v.Typed), RV: model.Addressed})

	case ast.OpBooleanNot:
		if v.Typed.Type.Kind != model.KindBoolean {
			return t.fail(e.Range, diagnostic.Type, "Expected 'bool', got '%s'", v.Typed.Type.Describe())
		}
		rv := model.Register
		if v.RV.IsConstant() {
			rv = model.Constant(model.BoolValue(!v.RV.Constant.Boolean))
		}
		return job.OK(exprResult{Typed: leaf(e.Range, model.Bool, rv, v.Typed), RV: rv})

	case ast.OpNegate:
		if v.Typed.Type.Kind != model.KindInteger && v.Typed.Type.Kind != model.KindFloat &&
			v.Typed.Type.Kind != model.KindUndeterminedInteger && v.Typed.Type.Kind != model.KindUndeterminedFloat {
			return t.fail(e.Range, diagnostic.Type, "Cannot negate a value of type '%s'", v.Typed.Type.Describe())
		}
		rv := model.Register
		if v.RV.IsConstant() {
			switch v.Typed.Type.Kind {
			case model.KindFloat, model.KindUndeterminedFloat:
				rv = model.Constant(model.FloatValue(-v.RV.Constant.Float))
			default:
				rv = model.Constant(model.IntValue(uint64(-int64(v.RV.Constant.Integer))))
			}
		}
		return job.OK(exprResult{Typed: leaf(e.Range, v.Typed.Type, rv, v.Typed), RV: rv})

	default:
		return t.fail(e.Range, diagnostic.Type, "Unhandled unary operator")
	}
}

func (t *exprTyper) typeIndex(scope *model.Scope, vars *VarStack, e *ast.Expression) job.Outcome[exprResult] {
	base := t.typeExpression(scope, vars, e.Index.Value)
	if out, propagated := job.Propagate[exprResult](base); propagated {
		return out
	}
	idx := t.typeExpression(scope, vars, e.Index.Index)
	if out, propagated := job.Propagate[exprResult](idx); propagated {
		return out
	}
	b, i := base.Value(), idx.Value()

	var elem model.Type
	switch b.Typed.Type.Kind {
	case model.KindStaticArray, model.KindArray:
		elem = *b.Typed.Type.Element
	default:
		return t.fail(e.Range, diagnostic.Type, "Cannot index a value of type '%s'", b.Typed.Type.Describe())
	}

	usize := model.Int(t.engine.Target.AddressSize, false)
	ic, ok := Coerce(t.engine.Sink, t.path, e.Index.Index.Range, Value{Type: i.Typed.Type, RV: i.RV}, usize, true)
	if !ok {
		return t.fail(e.Range, diagnostic.Type, "Array index must be an integer")
	}

	if b.RV.IsConstant() && ic.RV.IsConstant() {
		idxVal := ic.RV.Constant.Integer
		var elems []model.ConstantValue
		switch b.RV.Constant.Kind {
		case model.ValueStaticArray:
			elems = b.RV.Constant.StaticArray
		}
		if elems != nil && idxVal < uint64(len(elems)) {
			v := elems[idxVal]
			return job.OK(exprResult{Typed: leaf(e.Range, elem, model.Constant(v), b.Typed, i.Typed), RV: model.Constant(v)})
		}
	}
	return job.OK(exprResult{Typed: leaf(e.Range, elem, model.Addressed, b.Typed, i.Typed), RV: model.Addressed})
}

func (t *exprTyper) typeMember(scope *model.Scope, vars *VarStack, e *ast.Expression) job.Outcome[exprResult] {
	base := t.typeExpression(scope, vars, e.Member.Value)
	if out, propagated := job.Propagate[exprResult](base); propagated {
		return out
	}
	b := base.Value()
	name := e.Member.Member

	switch b.Typed.Type.Kind {
	case model.KindStaticArray, model.KindArray:
		switch name {
		case "length":
			var length uint64
			if b.Typed.Type.Kind == model.KindStaticArray {
				length = b.Typed.Type.Length
			}
			usize := model.Int(t.engine.Target.AddressSize, false)
			rv := model.Register
			if b.Typed.Type.Kind == model.KindStaticArray {
				rv = model.Constant(model.IntValue(length))
			}
			return job.OK(exprResult{Typed: leaf(e.Range, usize, rv, b.Typed), RV: rv})
		case "pointer":
			return job.OK(exprResult{Typed: leaf(e.Range, model.Ptr(*b.Typed.Type.Element), model.Register, b.Typed), RV: model.Register})
		default:
			return t.fail(e.Range, diagnostic.Type, "Arrays have no member '%s'", name)
		}

	case model.KindStruct, model.KindUnion, model.KindUndeterminedStruct:
		members := b.Typed.Type.Members
		if b.Typed.Type.Kind == model.KindUndeterminedStruct {
			members = b.Typed.Type.UndeterminedMembers
		}
		for i, m := range members {
			if m.Name != name {
				continue
			}
			if b.RV.IsConstant() && b.RV.Constant.Kind == model.ValueStruct && i < len(b.RV.Constant.Struct) {
				v := b.RV.Constant.Struct[i]
				return job.OK(exprResult{Typed: leaf(e.Range, m.Type, model.Constant(v), b.Typed), RV: model.Constant(v)})
			}
			return job.OK(exprResult{Typed: leaf(e.Range, m.Type, model.Addressed, b.Typed), RV: model.Addressed})
		}
		return t.fail(e.Range, diagnostic.Type, "No member '%s' on '%s'", name, b.Typed.Type.Describe())

	case model.KindTypeType:
		if !b.RV.IsConstant() || b.RV.Constant.Type.Kind != model.KindEnum {
			return t.fail(e.Range, diagnostic.Type, "Cannot access member '%s' of a non-enum type", name)
		}
		enumType := b.RV.Constant.Type
		for _, variant := range enumType.Variants {
			if variant.Name == name {
				v := model.IntValue(uint64(variant.Value))
				return job.OK(exprResult{Typed: leaf(e.Range, enumType, model.Constant(v), b.Typed), RV: model.Constant(v)})
			}
		}
		return t.fail(e.Range, diagnostic.NameResolution, "Enum '%s' has no variant '%s'", enumType.Describe(), name)

	case model.KindFileModule:
		res := t.engine.SearchForName(b.RV.Constant.ModuleScope, name, true, t.path, e.Range)
		if out, propagated := job.Propagate[exprResult](res); propagated {
			return out
		}
		found := res.Value()
		if !found.Found {
			return t.fail(e.Range, diagnostic.NameResolution, "Module has no exported member '%s'", name)
		}
		rv := model.Constant(found.Value)
		return job.OK(exprResult{Typed: leaf(e.Range, found.Type, rv, b.Typed), RV: rv})

	default:
		return t.fail(e.Range, diagnostic.Type, "Cannot access member '%s' of a value of type '%s'", name, b.Typed.Type.Describe())
	}
}

func (t *exprTyper) typeArrayLiteral(scope *model.Scope, vars *VarStack, e *ast.Expression) job.Outcome[exprResult] {
	var children []*model.TypedExpression
	var elemType *model.Type
	allConstant := true
	var values []model.ConstantValue
	var rvs []model.RuntimeValue

	for _, elExpr := range e.ArrayLiteral.Elements {
		res := t.typeExpression(scope, vars, elExpr)
		if out, propagated := job.Propagate[exprResult](res); propagated {
			return out
		}
		r := res.Value()
		if elemType == nil {
			et := r.Typed.Type
			elemType = &et
		}
		children = append(children, r.Typed)
		rvs = append(rvs, r.RV)
		if !r.RV.IsConstant() {
			allConstant = false
		} else {
			values = append(values, r.RV.Constant)
		}
	}

	if elemType == nil {
		return t.fail(e.Range, diagnostic.Type, "Empty array literals are not supported without an expected type")
	}
	arrType := model.Type{Kind: model.KindStaticArray, Length: uint64(len(children)), Element: elemType}

	if allConstant {
		v := model.ConstantValue{Kind: model.ValueStaticArray, StaticArray: values}
		return job.OK(exprResult{Typed: leaf(e.Range, arrType, model.Constant(v), children...), RV: model.Constant(v)})
	}
	return job.OK(exprResult{Typed: leaf(e.Range, arrType, model.Register, children...), RV: model.Register})
}

func (t *exprTyper) typeStructLiteral(scope *model.Scope, vars *VarStack, e *ast.Expression) job.Outcome[exprResult] {
	var children []*model.TypedExpression
	var members []model.Member
	var values []model.ConstantValue
	var fields []model.RuntimeValue
	allConstant := true

	for _, m := range e.StructLiteral.Members {
		res := t.typeExpression(scope, vars, m.Value)
		if out, propagated := job.Propagate[exprResult](res); propagated {
			return out
		}
		r := res.Value()
		members = append(members, model.Member{Name: m.Name, Type: r.Typed.Type})
		children = append(children, r.Typed)
		fields = append(fields, r.RV)
		if r.RV.IsConstant() {
			values = append(values, r.RV.Constant)
		} else {
			allConstant = false
		}
	}

	// Fields carries each member's own (possibly undetermined) RuntimeValue
	// alongside UndeterminedMembers' per-field type, so Coerce (§4.7) can
	// later coerce each field individually against a target struct's member
	// types -- the literal itself doesn't know the target type yet.
	undet := model.Type{Kind: model.KindUndeterminedStruct, UndeterminedMembers: members}
	if allConstant {
		v := model.ConstantValue{Kind: model.ValueStruct, Struct: values}
		return job.OK(exprResult{Typed: leaf(e.Range, undet, model.Constant(v), children...), RV: model.Constant(v)})
	}
	rv := model.RuntimeValue{Kind: model.RVUndeterminedStruct, Fields: fields}
	return job.OK(exprResult{Typed: leaf(e.Range, undet, rv, children...), RV: rv})
}

func (t *exprTyper) typeCast(scope *model.Scope, vars *VarStack, e *ast.Expression) job.Outcome[exprResult] {
	valRes := t.typeExpression(scope, vars, e.Cast.Value)
	if out, propagated := job.Propagate[exprResult](valRes); propagated {
		return out
	}
	typeRes := t.typeExpression(scope, vars, e.Cast.Type)
	if out, propagated := job.Propagate[exprResult](typeRes); propagated {
		return out
	}
	v := valRes.Value()
	tv := typeRes.Value()
	if tv.Typed.Type.Kind != model.KindTypeType || !tv.RV.IsConstant() {
		return t.fail(e.Range, diagnostic.Type, "Expected a type in cast expression")
	}
	target := tv.RV.Constant.Type

	if coerced, ok := Coerce(t.engine.Sink, t.path, e.Range, Value{Type: v.Typed.Type, RV: v.RV}, target, true); ok {
		return job.OK(exprResult{Typed: leaf(e.Range, target, coerced.RV, v.Typed, tv.Typed), RV: coerced.RV})
	}

	ok := isNumeric(v.Typed.Type) && isNumeric(target)
	ok = ok || (v.Typed.Type.Kind == model.KindPointer && target.Kind == model.KindInteger && !target.IntegerSigned)
	ok = ok || (v.Typed.Type.Kind == model.KindInteger && !v.Typed.Type.IntegerSigned && target.Kind == model.KindPointer)
	ok = ok || (v.Typed.Type.Kind == model.KindPointer && target.Kind == model.KindPointer)
	ok = ok || (v.Typed.Type.Kind == model.KindInteger && target.Kind == model.KindEnum && target.Backing != nil &&
		target.Backing.IntegerSize == v.Typed.Type.IntegerSize && target.Backing.IntegerSigned == v.Typed.Type.IntegerSigned)
	if !ok {
		return t.fail(e.Range, diagnostic.Type, "Cannot cast a value of type '%s' to '%s'", v.Typed.Type.Describe(), target.Describe())
	}

	rv := model.Register
	if v.RV.IsConstant() && isNumeric(v.Typed.Type) && isNumeric(target) {
		folded, err := foldCastNumeric(v.RV.Constant, v.Typed.Type, target)
		if err == nil {
			rv = model.Constant(folded)
		}
	}
	return job.OK(exprResult{Typed: leaf(e.Range, target, rv, v.Typed, tv.Typed), RV: rv})
}

func isNumeric(t model.Type) bool {
	switch t.Kind {
	case model.KindInteger, model.KindFloat, model.KindUndeterminedInteger, model.KindUndeterminedFloat:
		return true
	default:
		return false
	}
}

func (t *exprTyper) typeArrayTypeExpr(scope *model.Scope, vars *VarStack, e *ast.Expression) job.Outcome[exprResult] {
	elemRes := t.typeExpression(scope, vars, e.ArrayType.Element)
	if out, propagated := job.Propagate[exprResult](elemRes); propagated {
		return out
	}
	el := elemRes.Value()
	if el.Typed.Type.Kind != model.KindTypeType || !el.RV.IsConstant() {
		return t.fail(e.Range, diagnostic.Type, "Expected a type")
	}
	elemType := el.RV.Constant.Type

	if e.ArrayType.Length == nil {
		arr := model.Type{Kind: model.KindArray, Element: &elemType}
		v := model.TypeValue(arr)
		return job.OK(exprResult{Typed: leaf(e.Range, model.TypeOfType, model.Constant(v), el.Typed), RV: model.Constant(v)})
	}

	lenRes := t.typeExpression(scope, vars, e.ArrayType.Length)
	if out, propagated := job.Propagate[exprResult](lenRes); propagated {
		return out
	}
	ln := lenRes.Value()
	usize := model.Int(t.engine.Target.AddressSize, false)
	lc, ok := Coerce(t.engine.Sink, t.path, e.ArrayType.Length.Range, Value{Type: ln.Typed.Type, RV: ln.RV}, usize, false)
	if !ok || !lc.RV.IsConstant() {
		return t.fail(e.Range, diagnostic.Type, "Array length must be a constant integer")
	}
	arr := model.Type{Kind: model.KindStaticArray, Length: lc.RV.Constant.Integer, Element: &elemType}
	v := model.TypeValue(arr)
	return job.OK(exprResult{Typed: leaf(e.Range, model.TypeOfType, model.Constant(v), el.Typed, ln.Typed), RV: model.Constant(v)})
}

func (t *exprTyper) typePointerTypeExpr(scope *model.Scope, vars *VarStack, e *ast.Expression) job.Outcome[exprResult] {
	inner := t.typeExpression(scope, vars, e.PointerType.Target)
	if out, propagated := job.Propagate[exprResult](inner); propagated {
		return out
	}
	iv := inner.Value()
	if iv.Typed.Type.Kind != model.KindTypeType || !iv.RV.IsConstant() {
		return t.fail(e.Range, diagnostic.Type, "Expected a type")
	}
	pt := model.Ptr(iv.RV.Constant.Type)
	v := model.TypeValue(pt)
	return job.OK(exprResult{Typed: leaf(e.Range, model.TypeOfType, model.Constant(v), iv.Typed), RV: model.Constant(v)})
}

func (t *exprTyper) typeFunctionTypeExpr(scope *model.Scope, vars *VarStack, e *ast.Expression) job.Outcome[exprResult] {
	var children []*model.TypedExpression
	var params []model.Type
	for _, p := range e.FunctionType.Parameters {
		res := t.typeExpression(scope, vars, p.Type)
		if out, propagated := job.Propagate[exprResult](res); propagated {
			return out
		}
		r := res.Value()
		if r.Typed.Type.Kind != model.KindTypeType || !r.RV.IsConstant() {
			return t.fail(p.Type.Range, diagnostic.Type, "Expected a type")
		}
		params = append(params, r.RV.Constant.Type)
		children = append(children, r.Typed)
	}
	var returns []model.Type
	for _, rt := range e.FunctionType.ReturnTypes {
		res := t.typeExpression(scope, vars, rt)
		if out, propagated := job.Propagate[exprResult](res); propagated {
			return out
		}
		r := res.Value()
		if r.Typed.Type.Kind != model.KindTypeType || !r.RV.IsConstant() {
			return t.fail(rt.Range, diagnostic.Type, "Expected a type")
		}
		returns = append(returns, r.RV.Constant.Type)
		children = append(children, r.Typed)
	}
	cc := e.FunctionType.CallingConvention
	if cc == "" {
		cc = t.engine.Target.DefaultCallingConvention
	}
	if cc == ast.CallingConventionStdCall && !t.engine.Target.SupportsStdCall {
		return t.fail(e.Range, diagnostic.Platform, "Calling convention 'stdcall' is not supported on this target")
	}
	fn := model.Type{Kind: model.KindFunction, Params: params, Returns: returns, CallingConvention: cc}
	v := model.TypeValue(fn)
	return job.OK(exprResult{Typed: leaf(e.Range, model.TypeOfType, model.Constant(v), children...), RV: model.Constant(v)})
}
