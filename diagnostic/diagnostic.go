// Package diagnostic implements the sink of §6/§7: a place for jobs to
// report (path, range, message) errors without aborting the engine, plus
// the kind taxonomy every error is classified under.
package diagnostic

import (
	"encoding/json"
	"fmt"

	"github.com/yaram/simple-compiler/ast"
)

// Kind classifies a Diagnostic per §7.
type Kind int

const (
	Lexical Kind = iota
	Syntactic
	NameResolution
	Type
	Coercion
	Arity
	ConstantEvaluation
	PolymorphicInstantiation
	CircularDependency
	UnreachableCode
	TagMisuse
	Platform
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical"
	case Syntactic:
		return "syntactic"
	case NameResolution:
		return "name-resolution"
	case Type:
		return "type"
	case Coercion:
		return "coercion"
	case Arity:
		return "arity"
	case ConstantEvaluation:
		return "constant-evaluation"
	case PolymorphicInstantiation:
		return "polymorphic-instantiation"
	case CircularDependency:
		return "circular-dependency"
	case UnreachableCode:
		return "unreachable-code"
	case TagMisuse:
		return "tag-misuse"
	case Platform:
		return "platform"
	default:
		return "unknown"
	}
}

// MarshalJSON renders Kind as its string name, so `simplec ci --format json`
// and the query command's `--json` output are self-describing rather than
// leaking the internal int discriminant.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Diagnostic is one reported error: a (path, range, message) triple tagged
// with a Kind, per §6's register_error_handler contract.
type Diagnostic struct {
	Kind    Kind
	Path    string
	Range   ast.FileRange
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.Path, d.Range.FirstLine, d.Range.FirstColumn, d.Kind, d.Message)
}

// Handler is the register_error_handler callback contract of §6: called
// synchronously, must not re-enter the core.
type Handler func(path string, r ast.FileRange, message string)

// Sink accumulates diagnostics for one compilation and forwards each one,
// synchronously, to an optionally-registered external Handler -- mirroring
// how a single LSP/CLI host can subscribe to diagnostics without the core
// depending on either.
type Sink struct {
	diagnostics []Diagnostic
	handler     Handler
}

// NewSink returns an empty diagnostics sink.
func NewSink() *Sink {
	return &Sink{}
}

// RegisterHandler installs the external error handler. The core calls it
// synchronously once per Report; the handler must not call back into the
// core (§6).
func (s *Sink) RegisterHandler(h Handler) {
	s.handler = h
}

// Report appends a formatted diagnostic and forwards it to the registered
// handler, if any. It never returns an error and never aborts the caller --
// jobs keep running so one file can surface as many independent diagnostics
// as possible (§7).
func (s *Sink) Report(kind Kind, path string, r ast.FileRange, format string, args ...any) {
	d := Diagnostic{Kind: kind, Path: path, Range: r, Message: fmt.Sprintf(format, args...)}
	s.diagnostics = append(s.diagnostics, d)
	if s.handler != nil {
		s.handler(d.Path, d.Range, d.Message)
	}
}

// Diagnostics returns every diagnostic reported so far, in report order.
func (s *Sink) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), s.diagnostics...)
}

// HasErrors reports whether any diagnostic has been reported.
func (s *Sink) HasErrors() bool {
	return len(s.diagnostics) > 0
}
