package typecheck

import (
	"github.com/yaram/simple-compiler/ast"
	"github.com/yaram/simple-compiler/diagnostic"
	"github.com/yaram/simple-compiler/job"
	"github.com/yaram/simple-compiler/model"
)

// FileLoader is the out-of-scope parser's contract as seen from the core
// (§6's "AST → core contract" plus "source provider"): given an import
// path, it returns the already-parsed top-level scope for that file. Actual
// lexing/parsing lives entirely outside this package.
type FileLoader func(path string) (*model.Scope, error)

// Engine ties the job scheduler to the language-specific step functions: it
// is the "semantic engine" of §2, a pure dispatcher keyed by job.Kind. Engine
// itself holds no typing state beyond the bookkeeping scope processing needs
// to resume name lookups across Wait/resume cycles.
type Engine struct {
	Scheduler *job.Scheduler
	Sink      *diagnostic.Sink
	Target    job.Target
	LoadFile  FileLoader

	// declJobs maps a declaration-like statement to the job scope
	// processing created for it, so name search can find/await it.
	declJobs map[*ast.Statement]job.ID

	// staticIfScopes maps a StaticIf statement to the nested scope scope
	// processing built for its body, available for name search to probe
	// independent of whether the condition job has finished.
	staticIfScopes map[*ast.Statement]*model.Scope

	// fileScopes memoizes FileLoader results by path so that a file
	// imported from multiple using statements is only parsed once.
	fileScopes map[string]*model.Scope

	// parseJobs memoizes the ParseFile job for a given import path, so that
	// `import("x")` appearing at more than one call site (or more than one
	// using statement) shares one job the same way declaration jobs do.
	parseJobs map[string]job.ID

	// bodyJobs memoizes the TypeFunctionBody job for a given function
	// instantiation's body scope, so taking the same function's address (or
	// calling it) more than once reuses one body-typing job instead of
	// re-enqueuing it (§4.5 "function calls do not re-type an already
	// bodied declaration").
	bodyJobs map[*model.Scope]job.ID
}

// NewEngine returns an Engine ready to process scopes and run step
// functions through its Scheduler.
func NewEngine(target job.Target, loader FileLoader) *Engine {
	sink := diagnostic.NewSink()
	return &Engine{
		Scheduler:      job.NewScheduler(sink),
		Sink:           sink,
		Target:         target,
		LoadFile:       loader,
		declJobs:       make(map[*ast.Statement]job.ID),
		staticIfScopes: make(map[*ast.Statement]*model.Scope),
		fileScopes:     make(map[string]*model.Scope),
		parseJobs:      make(map[string]job.ID),
		bodyJobs:       make(map[*model.Scope]job.ID),
	}
}

// enqueueFunctionBody returns the TypeFunctionBody job for fc's body scope,
// enqueueing it the first time this particular instantiation's body is
// requested (by a call or a bake/address-of expression) and reusing it on
// every subsequent request.
func (e *Engine) enqueueFunctionBody(decl *ast.FunctionDeclaration, t model.Type, fc model.FunctionConstant, r ast.FileRange) job.ID {
	if id, ok := e.bodyJobs[fc.BodyScope]; ok {
		return id
	}
	id := e.Scheduler.Enqueue(job.TypeFunctionBody, fc.BodyScope.FilePath, r, functionBodyInput{
		Decl: decl, Type: t, Value: fc,
	})
	e.bodyJobs[fc.BodyScope] = id
	return id
}

// Step dispatches one job to its kind-specific step function. This is the
// StepFunc the Scheduler drives (§4.3): it never retains state across
// calls beyond what Job.Input/Job.Output already carry, so a job resumed
// after a Wait-triggered arena reset still behaves correctly.
func (e *Engine) Step(s *job.Scheduler, j *job.Job) job.StepResult {
	switch j.Kind {
	case job.TypeStaticIf:
		return e.stepStaticIf(j)
	case job.TypeFunctionDeclaration:
		return e.stepFunctionDeclaration(j)
	case job.TypePolymorphicFunction:
		return e.stepPolymorphicFunction(j)
	case job.TypeConstantDefinition:
		return e.stepConstantDefinition(j)
	case job.TypeStructDefinition:
		return e.stepStructDefinition(j)
	case job.TypePolymorphicStruct:
		return e.stepPolymorphicStruct(j)
	case job.TypeUnionDefinition:
		return e.stepUnionDefinition(j)
	case job.TypePolymorphicUnion:
		return e.stepPolymorphicUnion(j)
	case job.TypeEnumDefinition:
		return e.stepEnumDefinition(j)
	case job.TypeFunctionBody:
		return e.stepFunctionBody(j)
	case job.TypeStaticVariable:
		return e.stepStaticVariable(j)
	case job.ParseFile:
		return e.stepParseFile(j)
	default:
		return job.StepFailed(errInternal("unknown job kind"))
	}
}

// Run drives every enqueued job to completion (or cycle detection).
func (e *Engine) Run() {
	e.Scheduler.Run(e.Step)
}

type internalError string

func (e internalError) Error() string { return string(e) }

func errInternal(msg string) error { return internalError(msg) }
