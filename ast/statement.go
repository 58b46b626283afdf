package ast

// Statement is a tagged union over both ordinary statements and
// declaration-like statements (functions, structs, unions, enums, constants,
// static variables, using, static if). Declarations are statements because
// scope processing (§4.2) discovers them by walking a scope's statement
// list uniformly.
type Statement struct {
	Kind  StatementKind
	Range FileRange

	Expression                   *Expression
	VariableDeclaration          *VariableDeclaration
	MultiReturnVariableDecl      *MultiReturnVariableDeclaration
	Assignment                   *AssignmentStatement
	MultiReturnAssignment        *MultiReturnAssignmentStatement
	BinaryOperationAssignment    *BinaryOperationAssignmentStatement
	If                           *IfStatement
	While                        *WhileLoopStatement
	For                          *ForLoopStatement
	Return                       *ReturnStatement
	Break                        *BreakStatement
	InlineAssembly               *InlineAssemblyStatement
	Using                        *UsingStatement
	StaticIf                     *StaticIfStatement
	FunctionDeclaration          *FunctionDeclaration
	ConstantDefinition           *ConstantDefinition
	StructDefinition             *StructDefinition
	UnionDefinition              *UnionDefinition
	EnumDefinition               *EnumDefinition
}

type StatementKind int

const (
	StmtExpression StatementKind = iota
	StmtVariableDeclaration
	StmtMultiReturnVariableDeclaration
	StmtAssignment
	StmtMultiReturnAssignment
	StmtBinaryOperationAssignment
	StmtIf
	StmtWhile
	StmtFor
	StmtReturn
	StmtBreak
	StmtInlineAssembly
	StmtUsing
	StmtStaticIf
	StmtFunctionDeclaration
	StmtConstantDefinition
	StmtStructDefinition
	StmtUnionDefinition
	StmtEnumDefinition
)

// VariableDeclaration covers both local `x : T = v` statements and,
// when it appears directly in a top-level scope's statement list, the
// `TypeStaticVariable` job's input.
type VariableDeclaration struct {
	Name              string
	Type              *Expression // nil if inferred from Initializer
	Initializer       *Expression // nil if Type given and no initializer
	IsExternal        bool
	ExternalLibraries []string
}

type MultiReturnVariableDeclaration struct {
	Names       []string
	Initializer *Expression
}

type AssignmentStatement struct {
	Target *Expression
	Value  *Expression
}

type MultiReturnAssignmentStatement struct {
	Targets []*Expression
	Value   *Expression
}

type BinaryOperationAssignmentStatement struct {
	Target   *Expression
	Operator BinaryOperator
	Value    *Expression
}

type ElseIf struct {
	Condition *Expression
	Body      []*Statement
}

type IfStatement struct {
	Condition *Expression
	Body      []*Statement
	ElseIfs   []ElseIf
	Else      []*Statement // nil if absent
}

type WhileLoopStatement struct {
	Condition *Expression
	Body      []*Statement
}

type ForLoopStatement struct {
	IndexName string // defaults to "it" if empty
	From      *Expression
	To        *Expression
	Body      []*Statement
}

type ReturnStatement struct {
	Values []*Expression
}

type BreakStatement struct{}

type InlineAssemblyBinding struct {
	Constraint string // leading '=' marks an output binding
	Value      *Expression
}

type InlineAssemblyStatement struct {
	Source   string
	Bindings []InlineAssemblyBinding
}

type UsingStatement struct {
	Value  *Expression
	Export bool
}

type StaticIfStatement struct {
	Condition  *Expression
	Statements []*Statement
}

type FunctionParameter struct {
	Name string
	// Type is the declared parameter type expression. Nil for a
	// polymorphic type-determiner slot (IsPolymorphic == true), whose
	// type is supplied by the caller's argument instead.
	Type         *Expression
	IsPolymorphic bool
	// IsConstant marks a slot whose *value*, not just its type, becomes a
	// compile-time constant available to the rest of the signature and
	// body (e.g. an array-length parameter used by a later parameter's
	// type expression).
	IsConstant bool
}

// IsPolymorphicSlot reports whether this parameter makes the enclosing
// declaration polymorphic (§4.5: "build a parameter vector where each slot
// is {type} for polymorphic-determiner slots and {type,value} for constant
// slots").
func (p FunctionParameter) IsPolymorphicSlot() bool { return p.IsPolymorphic || p.IsConstant }

type FunctionDeclaration struct {
	Name              string
	Parameters        []FunctionParameter
	ReturnTypes       []*Expression
	CallingConvention CallingConvention
	IsExternal        bool
	ExternalLibraries []string
	Body              []*Statement // nil when IsExternal
}

// DeclName satisfies the naming lookup model.Type.Describe uses for
// nominal types.
func (d *FunctionDeclaration) DeclName() string { return d.Name }

type ConstantDefinition struct {
	Name  string
	Value *Expression
}

type PolymorphicParameter struct {
	Name string
	Type *Expression // nil: polymorphic type determiner; non-nil: constant-valued parameter
}

type StructMemberDeclaration struct {
	Name string
	Type *Expression
}

type StructDefinition struct {
	Name       string
	Parameters []PolymorphicParameter // empty for a non-generic struct
	Members    []StructMemberDeclaration
}

// DeclName satisfies the naming lookup model.Type.Describe uses for
// nominal types.
func (d *StructDefinition) DeclName() string { return d.Name }

type UnionDefinition struct {
	Name       string
	Parameters []PolymorphicParameter
	Members    []StructMemberDeclaration
}

// DeclName satisfies the naming lookup model.Type.Describe uses for
// nominal types.
func (d *UnionDefinition) DeclName() string { return d.Name }

type EnumVariantDeclaration struct {
	Name  string
	Value *Expression // nil: auto-numbered from the previous variant
}

type EnumDefinition struct {
	Name        string
	BackingType *Expression // nil defaults to the platform default integer
	Variants    []EnumVariantDeclaration
}

// DeclName satisfies the naming lookup model.Type.Describe uses for
// nominal types.
func (d *EnumDefinition) DeclName() string { return d.Name }
