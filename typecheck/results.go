package typecheck

import "github.com/yaram/simple-compiler/model"

// TypeFunctionDeclarationResult is the Output of a TypeFunctionDeclaration
// or TypePolymorphicFunction job: the function's concrete Function type
// plus, unless it is still polymorphic, the FunctionConstant value calls
// bind to.
type TypeFunctionDeclarationResult struct {
	Type  model.Type
	Value model.ConstantValue
}

// TypeStructDefinitionResult is the Output of a TypeStructDefinition or
// TypePolymorphicStruct job.
type TypeStructDefinitionResult struct {
	Type model.Type
}

// TypeUnionDefinitionResult is the Output of a TypeUnionDefinition or
// TypePolymorphicUnion job.
type TypeUnionDefinitionResult struct {
	Type model.Type
}

// TypeEnumDefinitionResult is the Output of a TypeEnumDefinition job.
type TypeEnumDefinitionResult struct {
	Type model.Type
}

// TypeStaticVariableResult is the Output of a TypeStaticVariable job.
type TypeStaticVariableResult struct {
	ActualType model.Type
}

// TypeStaticIfResult is the Output of a TypeStaticIf job: the evaluated
// compile-time condition, consulted by name search to decide whether the
// static-if's nested scope is actually visible (§4.2, §4.4).
type TypeStaticIfResult struct {
	ConditionValue bool
}
