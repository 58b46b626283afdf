package model

import (
	"fmt"
	"strconv"

	"github.com/yaram/simple-compiler/ast"
)

// ValueKind discriminates ConstantValue.
type ValueKind int

const (
	ValueInteger ValueKind = iota
	ValueFloat
	ValueBoolean
	ValueType
	ValueArray
	ValueStaticArray
	ValueStruct
	ValueFunction
	ValuePolymorphicFunction
	ValueBuiltinFunction
	ValueFileModule
	ValueVoid
	ValueUndef
)

// FunctionConstant is a declaration pointer plus the scopes it closes over,
// exactly the payload §3 assigns it: "declaration pointer + body scope +
// child scope list + is_external flag".
type FunctionConstant struct {
	Declaration *ast.FunctionDeclaration
	BodyScope   *Scope
	ChildScopes []*Scope
	IsExternal  bool
}

// ConstantValue is a tagged union over every value the constant evaluator
// can produce. Only the fields matching Kind are meaningful.
type ConstantValue struct {
	Kind ValueKind

	Integer uint64
	Float   float64
	Boolean bool
	Type    Type

	// ValueArray: a runtime-layout {length, pointer} pair (§6); Pointer is
	// a symbolic address into the compilation's constant data, meaningful
	// only to the (external) code generator.
	ArrayLength  uint64
	ArrayPointer uint64

	StaticArray []ConstantValue
	Struct      []ConstantValue

	Function    FunctionConstant
	BuiltinName string
	ModuleScope *Scope
}

var (
	VoidValue  = ConstantValue{Kind: ValueVoid}
	UndefValue = ConstantValue{Kind: ValueUndef}
)

// Describe renders a ConstantValue for diagnostics and hover text; it is
// not a serialization format.
func (v ConstantValue) Describe() string {
	switch v.Kind {
	case ValueInteger:
		return strconv.FormatUint(v.Integer, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ValueBoolean:
		return strconv.FormatBool(v.Boolean)
	case ValueType:
		return v.Type.Describe()
	case ValueVoid:
		return "void"
	case ValueUndef:
		return "undef"
	case ValueFunction:
		return "<function>"
	case ValuePolymorphicFunction:
		return "<polymorphic function>"
	case ValueBuiltinFunction:
		return fmt.Sprintf("<builtin %s>", v.BuiltinName)
	case ValueFileModule:
		return "<module>"
	default:
		return "<value>"
	}
}

func IntValue(v uint64) ConstantValue    { return ConstantValue{Kind: ValueInteger, Integer: v} }
func FloatValue(v float64) ConstantValue { return ConstantValue{Kind: ValueFloat, Float: v} }
func BoolValue(v bool) ConstantValue     { return ConstantValue{Kind: ValueBoolean, Boolean: v} }
func TypeValue(t Type) ConstantValue     { return ConstantValue{Kind: ValueType, Type: t} }

// Equal implements `constant_values_equal` (§4.7), the structural equality
// used to deduplicate polymorphic instantiations (§4.8, §8 "Polymorphic
// memoization").
func (v ConstantValue) Equal(o ConstantValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueInteger:
		return v.Integer == o.Integer
	case ValueFloat:
		return v.Float == o.Float
	case ValueBoolean:
		return v.Boolean == o.Boolean
	case ValueType:
		return v.Type.Equal(o.Type)
	case ValueArray:
		return v.ArrayLength == o.ArrayLength && v.ArrayPointer == o.ArrayPointer
	case ValueStaticArray:
		return equalValues(v.StaticArray, o.StaticArray)
	case ValueStruct:
		return equalValues(v.Struct, o.Struct)
	case ValueFunction, ValuePolymorphicFunction:
		return v.Function.Declaration == o.Function.Declaration && v.Function.BodyScope == o.Function.BodyScope
	case ValueBuiltinFunction:
		return v.BuiltinName == o.BuiltinName
	case ValueFileModule:
		return v.ModuleScope == o.ModuleScope
	case ValueVoid, ValueUndef:
		return true
	default:
		return false
	}
}

func equalValues(a, b []ConstantValue) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// ParameterVector is the parameter list a polymorphic call site or
// instantiation request carries: one slot per polymorphic/constant
// parameter, recording the argument's type and (for constant slots) value.
// Two ParameterVectors are interchangeable for memoization purposes iff
// Equal reports true (§4.5, §4.8).
type ParameterVector []ParameterSlot

type ParameterSlot struct {
	Type       Type
	HasValue   bool // true for constant-determined slots
	Value      ConstantValue
}

// Equal implements the parameter-vector equivalence §4.5 and §4.8 dedupe
// polymorphic instantiation jobs on: type equality plus constant_values_equal.
func (pv ParameterVector) Equal(o ParameterVector) bool {
	if len(pv) != len(o) {
		return false
	}
	for i := range pv {
		if !pv[i].Type.Equal(o[i].Type) {
			return false
		}
		if pv[i].HasValue != o[i].HasValue {
			return false
		}
		if pv[i].HasValue && !pv[i].Value.Equal(o[i].Value) {
			return false
		}
	}
	return true
}

// RuntimeValueKind classifies how an expression's value was produced during
// typing. It is not persisted on TypedExpression nodes (§3): it only guides
// the typer's own decisions about constant folding vs. runtime codegen.
type RuntimeValueKind int

const (
	RVConstant RuntimeValueKind = iota
	RVRegister
	RVAddressed
	RVUndeterminedStruct
)

// RuntimeValue is the (value, classification) pair §3 calls out as produced
// incrementally during expression typing but not persisted at node level.
type RuntimeValue struct {
	Kind     RuntimeValueKind
	Constant ConstantValue   // meaningful iff Kind == RVConstant
	Fields   []RuntimeValue  // meaningful iff Kind == RVUndeterminedStruct
}

func Constant(v ConstantValue) RuntimeValue { return RuntimeValue{Kind: RVConstant, Constant: v} }

var Register = RuntimeValue{Kind: RVRegister}
var Addressed = RuntimeValue{Kind: RVAddressed}

// IsConstant reports whether rv was produced by constant folding.
func (rv RuntimeValue) IsConstant() bool { return rv.Kind == RVConstant }

// IsAddressed reports whether rv denotes an L-value, required by assignment
// targets and the address-of operator (§4.5 Unary).
func (rv RuntimeValue) IsAddressed() bool { return rv.Kind == RVAddressed }
