package model

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/yaram/simple-compiler/ast"
)

// ScopeConstant binds a name to a compile-time-known type and value inside a
// scope (e.g. a polymorphic parameter bound by instantiation, per §4.8).
type ScopeConstant struct {
	Name  string
	Type  Type
	Value ConstantValue
}

// Scope is the ConstantScope of §3: a lexical region owning a declaration
// table, the statement list it encloses, and a parent link. Scopes are
// long-lived and owned by the compilation arena; the Parent back-pointer is
// non-owning, and scope graphs are allowed to be cyclic in spirit (a file's
// top-level scope may indirectly import itself) -- cycles are broken by the
// job scheduler's Waiting state, not by this type.
type Scope struct {
	Parent     *Scope
	Statements []*ast.Statement
	FilePath   string
	IsTopLevel bool

	// Declarations is the hashed declaration table of §4.2: every
	// declaration-like statement reachable from Statements, keyed by name.
	// A Go map already is a hash table; no separate hashing step is needed
	// to honor the contract.
	Declarations map[string]*ast.Statement

	ScopeConstants []ScopeConstant

	// ChildScopes holds the nested scopes scope processing allocated for
	// this scope's if/while/for/static-if bodies, in the exact order
	// statement typing must consume them (§4.6 "Child-scope ordering
	// invariant").
	ChildScopes []*Scope
	childCursor int
}

// NewScope allocates an empty scope. Declarations is initialized eagerly
// since every scope gets at least scope processing's pass over it.
func NewScope(parent *Scope, filePath string, isTopLevel bool) *Scope {
	return &Scope{
		Parent:       parent,
		FilePath:     filePath,
		IsTopLevel:   isTopLevel,
		Declarations: make(map[string]*ast.Statement),
	}
}

// DeclarationNames returns this scope's own declared names in sorted order,
// for diagnostics that list what a name search actually had to choose from
// -- a plain map range would work too, but its iteration order isn't stable
// across runs, and a "cannot find name" message whose candidate list
// reshuffles between identical runs is a bad look in CI output.
func (s *Scope) DeclarationNames() []string {
	names := maps.Keys(s.Declarations)
	slices.Sort(names)
	return names
}

// NextChildScope pops the next child scope in the order scope processing
// produced them. It panics if called more times than scope processing
// allocated child scopes for this node -- that would mean statement typing
// and scope processing have gone out of sync, an internal invariant
// violation rather than a user-facing error (§7).
func (s *Scope) NextChildScope() *Scope {
	if s.childCursor >= len(s.ChildScopes) {
		panic("model: statement typing requested more child scopes than scope processing allocated")
	}
	child := s.ChildScopes[s.childCursor]
	s.childCursor++
	return child
}
