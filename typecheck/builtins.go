package typecheck

import (
	"github.com/yaram/simple-compiler/job"
	"github.com/yaram/simple-compiler/model"
)

// builtinNamedType is one entry of the concrete integer/float type table
// every root scope predeclares, in a fixed order so PredeclareBuiltins'
// output is deterministic (§8 "Determinism").
type builtinNamedType struct {
	name string
	typ  model.Type
}

func builtinTypes(target job.Target) []builtinNamedType {
	return []builtinNamedType{
		{"i8", model.Int(8, true)}, {"i16", model.Int(16, true)}, {"i32", model.Int(32, true)}, {"i64", model.Int(64, true)},
		{"u8", model.Int(8, false)}, {"u16", model.Int(16, false)}, {"u32", model.Int(32, false)}, {"u64", model.Int(64, false)},
		{"isize", model.Int(target.AddressSize, true)}, {"usize", model.Int(target.AddressSize, false)},
		{"f32", model.Flt(32)}, {"f64", model.Flt(64)},
		{"bool", model.Bool}, {"void", model.Void}, {"type", model.TypeOfType},
	}
}

// builtinFunctionNames lists the BuiltinFunction values every root scope
// predeclares: the five constant-evaluable/runtime builtins of §4.5 plus
// `import`, the host's concrete spelling of "pull in another file's scope
// as a FileModule" that §4.4's using-statement lookup delegates to.
var builtinFunctionNames = []string{"size_of", "type_of", "globalify", "stackify", "sqrt", "import"}

// PredeclareBuiltins seeds scope's ScopeConstants with the named concrete
// types and builtin functions a real Simple program's root scope always
// carries, so name search (§4.4) resolves `u8`, `bool`, `import`, etc.
// without every test or CLI caller hand-rolling the binding. It is
// idempotent -- re-processing the same scope (e.g. a file imported from
// two using statements) never appends a name twice.
func PredeclareBuiltins(scope *model.Scope, target job.Target) {
	has := func(name string) bool {
		for _, sc := range scope.ScopeConstants {
			if sc.Name == name {
				return true
			}
		}
		return false
	}
	add := func(name string, t model.Type, v model.ConstantValue) {
		if !has(name) {
			scope.ScopeConstants = append(scope.ScopeConstants, model.ScopeConstant{Name: name, Type: t, Value: v})
		}
	}

	for _, bt := range builtinTypes(target) {
		add(bt.name, model.TypeOfType, model.TypeValue(bt.typ))
	}
	for _, name := range builtinFunctionNames {
		add(name,
			model.Type{Kind: model.KindBuiltinFunction, BuiltinName: name},
			model.ConstantValue{Kind: model.ValueBuiltinFunction, BuiltinName: name})
	}
}
