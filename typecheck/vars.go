package typecheck

import "github.com/yaram/simple-compiler/model"

// VarStack is the local-variable binding stack statement typing threads
// through a function body (§4.6): each frame is one block's bindings,
// searched innermost-first before falling back to scope search.
type VarStack struct {
	parent *VarStack
	names  []string
	types  []model.Type
}

// Push opens a new binding frame nested under vs (nil at function entry).
func Push(vs *VarStack) *VarStack { return &VarStack{parent: vs} }

// Bind adds a local variable to the innermost frame.
func (vs *VarStack) Bind(name string, t model.Type) {
	vs.names = append(vs.names, name)
	vs.types = append(vs.types, t)
}

// DeclaredInFrame reports whether name is already bound in vs's own frame
// (not an outer one), per §4.6's "duplicate names in same scope error with
// reference to original" -- shadowing a name from an enclosing block is
// fine, redeclaring it in the same block is not.
func (vs *VarStack) DeclaredInFrame(name string) bool {
	for _, n := range vs.names {
		if n == name {
			return true
		}
	}
	return false
}

// Lookup searches innermost-frame-first, matching the last binding of a
// shadowed name.
func (vs *VarStack) Lookup(name string) (model.Type, bool) {
	for f := vs; f != nil; f = f.parent {
		for i := len(f.names) - 1; i >= 0; i-- {
			if f.names[i] == name {
				return f.types[i], true
			}
		}
	}
	return model.Type{}, false
}
