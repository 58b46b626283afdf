// Package model holds the semantic core's persistent output model: types,
// constant values, scopes, and the typed tree, as distinct from package ast
// (the parser's input contract) and package job (the scheduler). Grouping
// them in one package mirrors how this codebase's teacher keeps a single
// flat model for all of a node's shapes instead of splitting each variant
// into its own package.
package model

import (
	"fmt"
	"strconv"

	"github.com/yaram/simple-compiler/ast"
)

// Kind discriminates Type. Equality and hashing are implemented per-variant
// below rather than through any interface/inheritance scheme, following the
// tagged-union design this core is built around (§9).
type Kind int

const (
	KindInteger Kind = iota
	KindFloat
	KindBoolean
	KindVoid
	KindTypeType // the type of a type-valued constant
	KindUndef

	KindPointer
	KindStaticArray
	KindArray

	KindStruct
	KindUnion
	KindEnum

	KindFunction
	KindMultiReturn

	KindPolymorphicFunction
	KindPolymorphicStruct
	KindPolymorphicUnion

	KindUndeterminedInteger
	KindUndeterminedFloat
	KindUndeterminedStruct

	KindBuiltinFunction
	KindFileModule
)

// DeclID is the identity of a nominal declaration: a pointer to the ast node
// that introduced it. Two Types of the same nominal Kind are the same
// declaration iff their DeclID compares equal, which for Go pointers is
// plain identity -- no separate interning table is needed.
type DeclID any

// Member is a named field of a struct or union.
type Member struct {
	Name string
	Type Type
}

// EnumVariant is a named, integer-valued enum member.
type EnumVariant struct {
	Name  string
	Value int64
}

// Type is a tagged union over every type the engine can produce. Only one
// group of fields is meaningful for a given Kind; the comment above each
// field group below names the Kinds it applies to.
type Type struct {
	Kind Kind

	// KindInteger
	IntegerSize   int // 8, 16, 32, 64
	IntegerSigned bool

	// KindFloat
	FloatSize int // 32, 64

	// KindPointer, KindStaticArray, KindArray: element type.
	Element *Type
	// KindStaticArray: element count.
	Length uint64

	// KindStruct, KindUnion, KindPolymorphicStruct, KindPolymorphicUnion
	Decl       DeclID
	Members    []Member // KindStruct, KindUnion
	FilePath   string
	ParamTypes []Type // KindPolymorphicStruct, KindPolymorphicUnion: carried parameter types/constants' types

	// KindEnum
	Backing  *Type
	Variants []EnumVariant

	// KindFunction, KindMultiReturn
	Params            []Type
	Returns           []Type
	CallingConvention ast.CallingConvention

	// KindPolymorphicFunction, KindPolymorphicStruct, KindPolymorphicUnion:
	// the scope the declaration itself was found in, needed to build a
	// fresh instantiation scope rooted correctly.
	ParentScope *Scope

	// KindUndeterminedStruct
	UndeterminedMembers []Member

	// KindBuiltinFunction
	BuiltinName string

	// KindFileModule
	ModuleScope *Scope
}

// Int is a convenience constructor for integer types.
func Int(size int, signed bool) Type { return Type{Kind: KindInteger, IntegerSize: size, IntegerSigned: signed} }

// Flt is a convenience constructor for float types.
func Flt(size int) Type { return Type{Kind: KindFloat, FloatSize: size} }

var (
	Bool         = Type{Kind: KindBoolean}
	Void         = Type{Kind: KindVoid}
	TypeOfType   = Type{Kind: KindTypeType}
	Undef        = Type{Kind: KindUndef}
	UndetInt     = Type{Kind: KindUndeterminedInteger}
	UndetFloat   = Type{Kind: KindUndeterminedFloat}
)

// Ptr constructs a pointer-to-T type.
func Ptr(to Type) Type { return Type{Kind: KindPointer, Element: &to} }

// IsRuntime reports whether t has a defined in-memory layout and may
// therefore appear as a variable, parameter, or return type (§3 Invariants).
func (t Type) IsRuntime() bool {
	switch t.Kind {
	case KindInteger, KindFloat, KindBoolean, KindPointer, KindStaticArray, KindArray, KindStruct, KindUnion, KindEnum:
		return true
	default:
		return false
	}
}

// IsUndetermined reports whether t is a literal type that must be coerced
// before reaching any runtime position.
func (t Type) IsUndetermined() bool {
	switch t.Kind {
	case KindUndeterminedInteger, KindUndeterminedFloat, KindUndeterminedStruct:
		return true
	default:
		return false
	}
}

// ByteSize computes t's in-memory size for the `size_of` builtin (§4.5),
// given the target's address size in bits. Struct/union layout is the
// simple sequential-sum-of-members scheme; this core has no alignment/
// padding model (that belongs to the external code generator), so callers
// needing bit-exact layout beyond §6's Array contract should treat this as
// approximate for aggregate types.
func (t Type) ByteSize(addressBits int) (uint64, error) {
	addr := uint64(addressBits) / 8
	switch t.Kind {
	case KindInteger:
		return uint64(t.IntegerSize) / 8, nil
	case KindFloat:
		return uint64(t.FloatSize) / 8, nil
	case KindBoolean:
		return 1, nil
	case KindPointer:
		return addr, nil
	case KindArray:
		return addr * 2, nil // §6: {length: uint<addr_size>, pointer: *T}
	case KindStaticArray:
		elemSize, err := t.Element.ByteSize(addressBits)
		if err != nil {
			return 0, err
		}
		return t.Length * elemSize, nil
	case KindStruct:
		var total uint64
		for _, m := range t.Members {
			sz, err := m.Type.ByteSize(addressBits)
			if err != nil {
				return 0, err
			}
			total += sz
		}
		return total, nil
	case KindUnion:
		var max uint64
		for _, m := range t.Members {
			sz, err := m.Type.ByteSize(addressBits)
			if err != nil {
				return 0, err
			}
			if sz > max {
				max = sz
			}
		}
		return max, nil
	case KindEnum:
		return t.Backing.ByteSize(addressBits)
	default:
		return 0, fmt.Errorf("type '%s' has no defined size", t.Describe())
	}
}

// Equal implements the structural-except-nominal equality rule of §3: two
// nominal types (Struct/Union/Enum/PolymorphicStruct/PolymorphicUnion/
// PolymorphicFunction) are equal iff their DeclID *and* every carried
// parameter/member type are equal; every other kind is purely structural.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindInteger:
		return t.IntegerSize == o.IntegerSize && t.IntegerSigned == o.IntegerSigned
	case KindFloat:
		return t.FloatSize == o.FloatSize
	case KindBoolean, KindVoid, KindTypeType, KindUndef, KindUndeterminedInteger, KindUndeterminedFloat:
		return true
	case KindPointer, KindArray:
		return t.Element.Equal(*o.Element)
	case KindStaticArray:
		return t.Length == o.Length && t.Element.Equal(*o.Element)
	case KindStruct, KindUnion:
		return t.Decl == o.Decl && equalMembers(t.Members, o.Members)
	case KindEnum:
		return t.Decl == o.Decl
	case KindFunction:
		return equalTypes(t.Params, o.Params) && equalTypes(t.Returns, o.Returns) && t.CallingConvention == o.CallingConvention
	case KindMultiReturn:
		return equalTypes(t.Returns, o.Returns)
	case KindPolymorphicFunction:
		return t.Decl == o.Decl && t.ParentScope == o.ParentScope
	case KindPolymorphicStruct, KindPolymorphicUnion:
		return t.Decl == o.Decl && equalTypes(t.ParamTypes, o.ParamTypes)
	case KindUndeterminedStruct:
		return equalMembers(t.UndeterminedMembers, o.UndeterminedMembers)
	case KindBuiltinFunction:
		return t.BuiltinName == o.BuiltinName
	case KindFileModule:
		return t.ModuleScope == o.ModuleScope
	default:
		return false
	}
}

func equalTypes(a, b []Type) bool {
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

func equalMembers(a, b []Member) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !a[i].Type.Equal(b[i].Type) {
			return false
		}
	}
	return true
}

// Describe renders a human-readable type description for diagnostics and
// hover text.
func (t Type) Describe() string {
	switch t.Kind {
	case KindInteger:
		sign := "u"
		if t.IntegerSigned {
			sign = "i"
		}
		return sign + strconv.Itoa(t.IntegerSize)
	case KindFloat:
		return "f" + strconv.Itoa(t.FloatSize)
	case KindBoolean:
		return "bool"
	case KindVoid:
		return "void"
	case KindTypeType:
		return "type"
	case KindUndef:
		return "undef"
	case KindPointer:
		return "*" + t.Element.Describe()
	case KindStaticArray:
		return "[" + strconv.FormatUint(t.Length, 10) + "]" + t.Element.Describe()
	case KindArray:
		return "[]" + t.Element.Describe()
	case KindStruct:
		return structName(t)
	case KindUnion:
		return structName(t)
	case KindEnum:
		return structName(t)
	case KindFunction:
		return "function"
	case KindMultiReturn:
		return "multi-return"
	case KindPolymorphicFunction:
		return "polymorphic function"
	case KindPolymorphicStruct:
		return "polymorphic struct"
	case KindPolymorphicUnion:
		return "polymorphic union"
	case KindUndeterminedInteger:
		return "undetermined integer"
	case KindUndeterminedFloat:
		return "undetermined float"
	case KindUndeterminedStruct:
		return "undetermined struct"
	case KindBuiltinFunction:
		return "builtin function '" + t.BuiltinName + "'"
	case KindFileModule:
		return "module"
	default:
		return "<unknown type>"
	}
}

func structName(t Type) string {
	if named, ok := t.Decl.(interface{ DeclName() string }); ok {
		return named.DeclName()
	}
	return "<anonymous>"
}

