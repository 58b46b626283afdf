package typecheck

import (
	"github.com/yaram/simple-compiler/ast"
	"github.com/yaram/simple-compiler/model"
)

// bindFunctionParameters builds the ScopeConstants a polymorphic function
// instantiation's body/signature scope carries (§4.8): a constant-valued
// slot binds its parameter name directly to the argument's value; a pure
// type-determiner slot binds its parameter name to the argument's *type*,
// as a compile-time type value, so later parameter/return type expressions
// and the function body can reference it by name.
func bindFunctionParameters(params []ast.FunctionParameter, vector model.ParameterVector) []model.ScopeConstant {
	var out []model.ScopeConstant
	i := 0
	for _, p := range params {
		if !p.IsPolymorphicSlot() {
			continue
		}
		slot := vector[i]
		i++
		if p.IsConstant {
			out = append(out, model.ScopeConstant{Name: p.Name, Type: slot.Type, Value: slot.Value})
		} else {
			out = append(out, model.ScopeConstant{Name: p.Name, Type: model.TypeOfType, Value: model.TypeValue(slot.Type)})
		}
	}
	return out
}

// bindPolymorphicParameters is the struct/union-definition analogue of
// bindFunctionParameters (§4.8), for PolymorphicParameter lists.
func bindPolymorphicParameters(params []ast.PolymorphicParameter, vector model.ParameterVector) []model.ScopeConstant {
	var out []model.ScopeConstant
	for i, p := range params {
		slot := vector[i]
		if p.Type != nil {
			out = append(out, model.ScopeConstant{Name: p.Name, Type: slot.Type, Value: slot.Value})
		} else if slot.HasValue && slot.Value.Kind == model.ValueType {
			// A type argument (Pair(u8)) binds the type it names, not its type.
			out = append(out, model.ScopeConstant{Name: p.Name, Type: model.TypeOfType, Value: slot.Value})
		} else {
			out = append(out, model.ScopeConstant{Name: p.Name, Type: model.TypeOfType, Value: model.TypeValue(slot.Type)})
		}
	}
	return out
}

// newInstantiationScope allocates the fresh, non-top-level scope an
// instantiation's signature/body is typed against, seeded with the bound
// polymorphic parameters as scope constants.
func newInstantiationScope(parent *model.Scope, filePath string, constants []model.ScopeConstant) *model.Scope {
	s := model.NewScope(parent, filePath, false)
	s.ScopeConstants = constants
	return s
}
