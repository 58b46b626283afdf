// Package typecheck is the semantic engine of §4.5–§4.8: the pure,
// per-job-kind step functions that either complete (producing typed output)
// or suspend on another job, plus the coercion/constant-evaluation rules
// they all share.
package typecheck

import (
	"fmt"
	"math"

	"github.com/yaram/simple-compiler/ast"
	"github.com/yaram/simple-compiler/diagnostic"
	"github.com/yaram/simple-compiler/model"
)

// Value pairs a type with the runtime-value classification produced while
// typing the expression that has it (§3's RuntimeValue).
type Value struct {
	Type model.Type
	RV   model.RuntimeValue
}

// DefaultType applies the default-typing rule of §9 to an undetermined
// type: UndeterminedInteger -> i64, UndeterminedFloat -> f64,
// UndeterminedStruct is always an error (it must be coerced explicitly by
// context).
func DefaultType(t model.Type) (model.Type, error) {
	switch t.Kind {
	case model.KindUndeterminedInteger:
		return model.Int(64, true), nil
	case model.KindUndeterminedFloat:
		return model.Flt(64), nil
	case model.KindUndeterminedStruct:
		return model.Type{}, fmt.Errorf("undetermined struct literal has no default type; it must be coerced explicitly")
	default:
		return t, nil
	}
}

// Coerce implements §4.7: it accepts v into target iff one of the listed
// rules fires, folding constants where the rule is constant-valued. When
// probing is true, failures are reported to the caller via the returned
// bool instead of being appended to the sink -- the "attempt the
// conversion and report failure without emitting a diagnostic" mode used by
// casts and other speculative call sites (§4.7, §9).
func Coerce(sink *diagnostic.Sink, path string, r ast.FileRange, v Value, target model.Type, probing bool) (Value, bool) {
	fail := func() (Value, bool) {
		if !probing {
			sink.Report(diagnostic.Coercion, path, r,
				"Cannot implicitly convert %s to '%s'", describeValue(v), target.Describe())
		}
		return Value{}, false
	}

	if v.Type.Equal(target) {
		return Value{Type: target, RV: v.RV}, true
	}

	switch {
	case v.Type.Kind == model.KindUndeterminedInteger:
		if target.Kind == model.KindEnum && v.RV.IsConstant() {
			iv, ok := fitsIntegerRange(v.RV.Constant.Integer, target.Backing.IntegerSize, target.Backing.IntegerSigned)
			if !ok {
				return fail()
			}
			return Value{Type: target, RV: model.Constant(model.IntValue(iv))}, true
		}
		if target.Kind != model.KindInteger {
			return fail()
		}
		if !v.RV.IsConstant() {
			return Value{Type: target, RV: v.RV}, true
		}
		iv, ok := fitsIntegerRange(v.RV.Constant.Integer, target.IntegerSize, target.IntegerSigned)
		if !ok {
			if !probing {
				sink.Report(diagnostic.Coercion, path, r,
					"Cannot implicitly convert constant %d to '%s'", v.RV.Constant.Integer, target.Describe())
			}
			return Value{}, false
		}
		return Value{Type: target, RV: model.Constant(model.IntValue(iv))}, true

	case v.Type.Kind == model.KindUndeterminedFloat:
		if target.Kind != model.KindFloat {
			return fail()
		}
		return Value{Type: target, RV: v.RV}, true

	case v.Type.Kind == model.KindInteger && target.Kind == model.KindEnum:
		if target.Backing == nil || target.Backing.IntegerSize != v.Type.IntegerSize || target.Backing.IntegerSigned != v.Type.IntegerSigned {
			return fail()
		}
		return Value{Type: target, RV: v.RV}, true

	case v.Type.Kind == model.KindUndeterminedStruct && target.Kind == model.KindStruct:
		if len(v.Type.UndeterminedMembers) != len(target.Members) {
			return fail()
		}
		for i, m := range v.Type.UndeterminedMembers {
			if m.Name != target.Members[i].Name {
				return fail()
			}
		}

		// §4.7: "matches target struct by member names in order and each
		// member coerces" -- coerce each field's own RuntimeValue against
		// the corresponding target member type, whether the literal folded
		// to a constant struct or is carrying per-field RuntimeValues.
		switch {
		case v.RV.Kind == model.RVConstant && v.RV.Constant.Kind == model.ValueStruct:
			coercedStruct := make([]model.ConstantValue, len(target.Members))
			for i, m := range v.Type.UndeterminedMembers {
				fv, ok := Coerce(sink, path, r, Value{Type: m.Type, RV: model.Constant(v.RV.Constant.Struct[i])}, target.Members[i].Type, probing)
				if !ok {
					return Value{}, false
				}
				coercedStruct[i] = fv.RV.Constant
			}
			return Value{Type: target, RV: model.Constant(model.ConstantValue{Kind: model.ValueStruct, Struct: coercedStruct})}, true

		case v.RV.Kind == model.RVUndeterminedStruct:
			for i, m := range v.Type.UndeterminedMembers {
				field := model.Register
				if i < len(v.RV.Fields) {
					field = v.RV.Fields[i]
				}
				if _, ok := Coerce(sink, path, r, Value{Type: m.Type, RV: field}, target.Members[i].Type, probing); !ok {
					return Value{}, false
				}
			}
			return Value{Type: target, RV: model.Register}, true

		default:
			return Value{Type: target, RV: v.RV}, true
		}

	case v.Type.Kind == model.KindUndef && target.IsRuntime():
		return Value{Type: target, RV: v.RV}, true

	default:
		return fail()
	}
}

// fitsIntegerRange range-checks a constant integer value against target's
// width/signedness, per §4.7: "signed targets accept values in [min,max],
// unsigned in [0,max]". The stored representation is always a raw u64
// bit-pattern; range-checking is done by reinterpreting per signedness.
func fitsIntegerRange(v uint64, size int, signed bool) (uint64, bool) {
	if signed {
		sv := int64(v)
		var min, max int64
		switch size {
		case 8:
			min, max = math.MinInt8, math.MaxInt8
		case 16:
			min, max = math.MinInt16, math.MaxInt16
		case 32:
			min, max = math.MinInt32, math.MaxInt32
		default:
			min, max = math.MinInt64, math.MaxInt64
		}
		if sv < min || sv > max {
			return 0, false
		}
		return v, true
	}
	var max uint64
	switch size {
	case 8:
		max = math.MaxUint8
	case 16:
		max = math.MaxUint16
	case 32:
		max = math.MaxUint32
	default:
		max = math.MaxUint64
	}
	if v > max {
		return 0, false
	}
	return v, true
}

func describeValue(v Value) string {
	if v.RV.IsConstant() && v.Type.Kind == model.KindUndeterminedInteger {
		return fmt.Sprintf("constant %d", v.RV.Constant.Integer)
	}
	return "'" + v.Type.Describe() + "'"
}
