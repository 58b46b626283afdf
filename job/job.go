// Package job implements the scheduler of §4.3/§4.4/§5: a flat, append-only
// list of Job records, each a small state machine, driven to completion by
// repeatedly invoking a caller-supplied step function. Package job knows
// nothing about Simple's type system or expression forms -- that knowledge
// lives in package typecheck, which supplies the StepFunc. This mirrors the
// reference's split between a generic job list (jobs.h) and the
// language-specific step functions (typed_tree_generator.cpp).
package job

import (
	"github.com/yaram/simple-compiler/arena"
	"github.com/yaram/simple-compiler/ast"
)

// Kind enumerates the twelve job variants of §3.
type Kind int

const (
	ParseFile Kind = iota
	TypeStaticIf
	TypeFunctionDeclaration
	TypePolymorphicFunction
	TypeConstantDefinition
	TypeStructDefinition
	TypePolymorphicStruct
	TypeUnionDefinition
	TypePolymorphicUnion
	TypeEnumDefinition
	TypeFunctionBody
	TypeStaticVariable
)

func (k Kind) String() string {
	names := [...]string{
		"ParseFile", "TypeStaticIf", "TypeFunctionDeclaration", "TypePolymorphicFunction",
		"TypeConstantDefinition", "TypeStructDefinition", "TypePolymorphicStruct",
		"TypeUnionDefinition", "TypePolymorphicUnion", "TypeEnumDefinition",
		"TypeFunctionBody", "TypeStaticVariable",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "Unknown"
	}
	return names[k]
}

// State is a job's lifecycle position (§3: "Working→(Waiting↔Working)*→Done").
type State int

const (
	Working State = iota
	Waiting
	Done
)

func (s State) String() string {
	switch s {
	case Working:
		return "Working"
	case Waiting:
		return "Waiting"
	case Done:
		return "Done"
	default:
		return "Unknown"
	}
}

// ID identifies a job by its position in the scheduler's flat list. IDs are
// stable for the lifetime of a Scheduler: the list is append-only.
type ID int

// Job is one unit of scheduler work: a tagged state machine plus a
// per-kind payload, exactly as §3 describes. Input is populated at
// creation and is immutable; Output is populated once, when the job
// transitions to Done, and is immutable thereafter.
type Job struct {
	ID         ID
	Kind       Kind
	State      State
	WaitingFor ID
	Range      ast.FileRange
	FilePath   string

	Input  any
	Output any

	// Arena is the job's private, per-Working-phase scratch space. It is
	// reset (not freed) every time the job's step returns Wait, per §5's
	// resource discipline: the step function must re-derive anything it
	// needs from Input/Output, not from prior Arena contents.
	Arena *arena.Arena
}

// newJob allocates a job in the Working state with a fresh private arena.
func newJob(id ID, kind Kind, filePath string, r ast.FileRange, input any) *Job {
	return &Job{
		ID:       id,
		Kind:     kind,
		State:    Working,
		FilePath: filePath,
		Range:    r,
		Input:    input,
		Arena:    arena.New(),
	}
}

// Outcome is the Go shape of the reference's DelayedResult<T>: the
// result-or-wait monad of §7. Exactly one of the three cases holds.
type Outcome[T any] struct {
	kind  outcomeKind
	value T
	err   error
	wait  ID
}

type outcomeKind int

const (
	outcomeDone outcomeKind = iota
	outcomeErr
	outcomeWait
)

// OK wraps a successful result.
func OK[T any](v T) Outcome[T] { return Outcome[T]{kind: outcomeDone, value: v} }

// Err wraps a terminal failure. Unlike a Go error return, this does not
// abort the scheduler: a step that fails this way returns StepFailed, the
// scheduler reports the error as a diagnostic and marks the job Done with a
// zero Output, and goes on with independent work. A step may also report a
// more precise diagnostic of its own before returning Err.
func Err[T any](err error) Outcome[T] { return Outcome[T]{kind: outcomeErr, err: err} }

// Wait suspends the job on another job's completion.
func Wait[T any](on ID) Outcome[T] { return Outcome[T]{kind: outcomeWait, wait: on} }

// IsDone, IsErr, IsWait report which case an Outcome holds.
func (o Outcome[T]) IsDone() bool { return o.kind == outcomeDone }
func (o Outcome[T]) IsErr() bool  { return o.kind == outcomeErr }
func (o Outcome[T]) IsWait() bool { return o.kind == outcomeWait }

// Value returns the wrapped value; only meaningful when IsDone.
func (o Outcome[T]) Value() T { return o.value }

// Error returns the wrapped error; only meaningful when IsErr.
func (o Outcome[T]) Error() error { return o.err }

// WaitID returns the job being waited on; only meaningful when IsWait.
func (o Outcome[T]) WaitID() ID { return o.wait }

// Propagate carries a non-Done Outcome[U] (a Wait or an Err) over into an
// Outcome[T] of a different value type, for the common case of a step
// function recursing into a sub-computation and needing to bubble up its
// suspension/failure unchanged. ok is false (and the zero Outcome[T] is
// returned) when in was Done, signalling the caller should proceed to use
// in.Value() instead.
func Propagate[T any, U any](in Outcome[U]) (out Outcome[T], ok bool) {
	switch {
	case in.IsWait():
		return Wait[T](in.wait), true
	case in.IsErr():
		return Err[T](in.err), true
	default:
		return Outcome[T]{}, false
	}
}

// Target mirrors the reference's GlobalInfo: the ambient, read-only
// platform/ABI facts every step function needs and which spec.md keeps
// external to the core (lexing/parsing/codegen/platform-id are out of
// scope, but the *values* they'd supply still have to reach typing).
type Target struct {
	// AddressSize is the pointer/usize width in bits (e.g. 64).
	AddressSize int
	// DefaultCallingConvention is used when a function/pointer-to-function
	// type omits an explicit calling convention (§6).
	DefaultCallingConvention ast.CallingConvention
	// SupportsStdCall reports whether ast.CallingConventionStdCall is legal
	// on this target (§6: "StdCall (x86-win only)").
	SupportsStdCall bool
}

// DefaultTarget returns the x64-linux target (SysV-AMD64, no StdCall),
// used by the CLI and tests whenever the caller doesn't need to exercise
// a specific platform's calling convention rules.
func DefaultTarget() Target {
	return Target{
		AddressSize:              64,
		DefaultCallingConvention: ast.CallingConventionDefault,
		SupportsStdCall:          false,
	}
}

