package typecheck

import (
	"fmt"

	"github.com/yaram/simple-compiler/ast"
	"github.com/yaram/simple-compiler/model"
)

// determineBinaryType implements the "common type" half of §4.5's binary
// operator rule: undetermined operands adopt the other side's determined
// type, and a pointer on the left with an integer (or undetermined integer)
// on the right yields the pointer type; otherwise both sides must already
// agree.
func determineBinaryType(l, r model.Type) (model.Type, error) {
	switch {
	case l.Equal(r):
		return l, nil
	case l.Kind == model.KindUndeterminedInteger && r.Kind == model.KindInteger:
		return r, nil
	case r.Kind == model.KindUndeterminedInteger && l.Kind == model.KindInteger:
		return l, nil
	case l.Kind == model.KindUndeterminedInteger && r.Kind == model.KindUndeterminedInteger:
		return model.UndetInt, nil
	case l.Kind == model.KindUndeterminedFloat && r.Kind == model.KindFloat:
		return r, nil
	case r.Kind == model.KindUndeterminedFloat && l.Kind == model.KindFloat:
		return l, nil
	case l.Kind == model.KindUndeterminedFloat && r.Kind == model.KindUndeterminedFloat:
		return model.UndetFloat, nil
	case l.Kind == model.KindPointer && (r.Kind == model.KindInteger || r.Kind == model.KindUndeterminedInteger):
		return l, nil
	default:
		return model.Type{}, fmt.Errorf("mismatched operand types '%s' and '%s'", l.Describe(), r.Describe())
	}
}

func isComparisonOp(op ast.BinaryOperator) bool {
	switch op {
	case ast.OpEqual, ast.OpNotEqual, ast.OpLessThan, ast.OpGreaterThan, ast.OpLessThanOrEqual, ast.OpGreaterThanOrEqual:
		return true
	default:
		return false
	}
}

func isBooleanOp(op ast.BinaryOperator) bool {
	return op == ast.OpBooleanAnd || op == ast.OpBooleanOr
}

func isBitwiseOp(op ast.BinaryOperator) bool {
	switch op {
	case ast.OpBitwiseAnd, ast.OpBitwiseOr, ast.OpLeftShift, ast.OpRightShift, ast.OpRightShiftUnsigned:
		return true
	default:
		return false
	}
}

func isEqualityOp(op ast.BinaryOperator) bool {
	return op == ast.OpEqual || op == ast.OpNotEqual
}

// checkOperatorApplicable implements §4.5's per-operand-class operator
// table: "Integer ops support + − × ÷ % & | << >> >>> and compare; float
// ops exclude bitwise/shift; booleans allow && || and equality; pointers
// allow equality only; enums allow equality only."
func checkOperatorApplicable(t model.Type, op ast.BinaryOperator) error {
	switch t.Kind {
	case model.KindInteger, model.KindUndeterminedInteger:
		if isBooleanOp(op) {
			return fmt.Errorf("operator requires a 'bool' operand, got '%s'", t.Describe())
		}
		return nil
	case model.KindFloat, model.KindUndeterminedFloat:
		if isBitwiseOp(op) || isBooleanOp(op) {
			return fmt.Errorf("operator is not defined for '%s'", t.Describe())
		}
		return nil
	case model.KindBoolean:
		if isBooleanOp(op) || isEqualityOp(op) {
			return nil
		}
		return fmt.Errorf("'bool' only supports '&&', '||', and equality, not this operator")
	case model.KindPointer:
		if isEqualityOp(op) {
			return nil
		}
		return fmt.Errorf("pointers only support equality comparison, not this operator")
	case model.KindEnum:
		if isEqualityOp(op) {
			return nil
		}
		return fmt.Errorf("enums only support equality comparison, not this operator")
	default:
		return fmt.Errorf("operator is not defined for '%s'", t.Describe())
	}
}

// foldBinary constant-evaluates a binary operation over two already-coerced
// constant operands, per §4.7's constant evaluator.
func foldBinary(op ast.BinaryOperator, l, r model.ConstantValue, resultType model.Type) (model.ConstantValue, error) {
	if resultType.Kind == model.KindFloat || resultType.Kind == model.KindUndeterminedFloat {
		return foldBinaryFloat(op, l.Float, r.Float)
	}
	if resultType.Kind == model.KindBoolean {
		return foldBinaryBool(op, l.Boolean, r.Boolean)
	}
	signed := resultType.IntegerSigned
	return foldBinaryInt(op, l.Integer, r.Integer, signed)
}

func foldBinaryBool(op ast.BinaryOperator, l, r bool) (model.ConstantValue, error) {
	switch op {
	case ast.OpBooleanAnd:
		return model.BoolValue(l && r), nil
	case ast.OpBooleanOr:
		return model.BoolValue(l || r), nil
	case ast.OpEqual:
		return model.BoolValue(l == r), nil
	case ast.OpNotEqual:
		return model.BoolValue(l != r), nil
	default:
		return model.ConstantValue{}, fmt.Errorf("operator not defined for 'bool'")
	}
}

func foldBinaryFloat(op ast.BinaryOperator, l, r float64) (model.ConstantValue, error) {
	switch op {
	case ast.OpAdd:
		return model.FloatValue(l + r), nil
	case ast.OpSubtract:
		return model.FloatValue(l - r), nil
	case ast.OpMultiply:
		return model.FloatValue(l * r), nil
	case ast.OpDivide:
		if r == 0 {
			return model.ConstantValue{}, fmt.Errorf("division by zero in constant expression")
		}
		return model.FloatValue(l / r), nil
	case ast.OpEqual:
		return model.BoolValue(l == r), nil
	case ast.OpNotEqual:
		return model.BoolValue(l != r), nil
	case ast.OpLessThan:
		return model.BoolValue(l < r), nil
	case ast.OpGreaterThan:
		return model.BoolValue(l > r), nil
	case ast.OpLessThanOrEqual:
		return model.BoolValue(l <= r), nil
	case ast.OpGreaterThanOrEqual:
		return model.BoolValue(l >= r), nil
	default:
		return model.ConstantValue{}, fmt.Errorf("operator not defined for floating-point operands")
	}
}

func foldBinaryInt(op ast.BinaryOperator, l, r uint64, signed bool) (model.ConstantValue, error) {
	if signed {
		sl, sr := int64(l), int64(r)
		switch op {
		case ast.OpAdd:
			return model.IntValue(uint64(sl + sr)), nil
		case ast.OpSubtract:
			return model.IntValue(uint64(sl - sr)), nil
		case ast.OpMultiply:
			return model.IntValue(uint64(sl * sr)), nil
		case ast.OpDivide:
			if sr == 0 {
				return model.ConstantValue{}, fmt.Errorf("division by zero in constant expression")
			}
			return model.IntValue(uint64(sl / sr)), nil
		case ast.OpModulo:
			if sr == 0 {
				return model.ConstantValue{}, fmt.Errorf("division by zero in constant expression")
			}
			return model.IntValue(uint64(sl % sr)), nil
		case ast.OpEqual:
			return model.BoolValue(sl == sr), nil
		case ast.OpNotEqual:
			return model.BoolValue(sl != sr), nil
		case ast.OpLessThan:
			return model.BoolValue(sl < sr), nil
		case ast.OpGreaterThan:
			return model.BoolValue(sl > sr), nil
		case ast.OpLessThanOrEqual:
			return model.BoolValue(sl <= sr), nil
		case ast.OpGreaterThanOrEqual:
			return model.BoolValue(sl >= sr), nil
		}
	}

	switch op {
	case ast.OpAdd:
		return model.IntValue(l + r), nil
	case ast.OpSubtract:
		return model.IntValue(l - r), nil
	case ast.OpMultiply:
		return model.IntValue(l * r), nil
	case ast.OpDivide:
		if r == 0 {
			return model.ConstantValue{}, fmt.Errorf("division by zero in constant expression")
		}
		return model.IntValue(l / r), nil
	case ast.OpModulo:
		if r == 0 {
			return model.ConstantValue{}, fmt.Errorf("division by zero in constant expression")
		}
		return model.IntValue(l % r), nil
	case ast.OpBitwiseAnd:
		return model.IntValue(l & r), nil
	case ast.OpBitwiseOr:
		return model.IntValue(l | r), nil
	case ast.OpLeftShift:
		return model.IntValue(l << r), nil
	case ast.OpRightShift, ast.OpRightShiftUnsigned:
		return model.IntValue(l >> r), nil
	case ast.OpEqual:
		return model.BoolValue(l == r), nil
	case ast.OpNotEqual:
		return model.BoolValue(l != r), nil
	case ast.OpLessThan:
		return model.BoolValue(l < r), nil
	case ast.OpGreaterThan:
		return model.BoolValue(l > r), nil
	case ast.OpLessThanOrEqual:
		return model.BoolValue(l <= r), nil
	case ast.OpGreaterThanOrEqual:
		return model.BoolValue(l >= r), nil
	default:
		return model.ConstantValue{}, fmt.Errorf("operator not defined for integer operands")
	}
}

// foldCastNumeric constant-evaluates a numeric-to-numeric cast (§4.5 Cast).
func foldCastNumeric(v model.ConstantValue, from, to model.Type) (model.ConstantValue, error) {
	fromFloat := from.Kind == model.KindFloat || from.Kind == model.KindUndeterminedFloat
	toFloat := to.Kind == model.KindFloat || to.Kind == model.KindUndeterminedFloat

	switch {
	case fromFloat && toFloat:
		return model.FloatValue(v.Float), nil
	case fromFloat && !toFloat:
		return truncateInt(uint64(int64(v.Float)), to), nil
	case !fromFloat && toFloat:
		if from.IntegerSigned {
			return model.FloatValue(float64(int64(v.Integer))), nil
		}
		return model.FloatValue(float64(v.Integer)), nil
	default:
		return truncateInt(v.Integer, to), nil
	}
}

func truncateInt(v uint64, to model.Type) model.ConstantValue {
	var mask uint64
	switch to.IntegerSize {
	case 8:
		mask = 0xff
	case 16:
		mask = 0xffff
	case 32:
		mask = 0xffffffff
	default:
		mask = ^uint64(0)
	}
	return model.IntValue(v & mask)
}
