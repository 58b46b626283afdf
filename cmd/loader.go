package cmd

import (
	"fmt"
	"os"

	"github.com/yaram/simple-compiler/model"
	"github.com/yaram/simple-compiler/typecheck"
)

// ParseFunc is the parser's contract as the CLI sees it (spec.md §6's
// "AST → core contract" plus "source provider"): given a path and its raw
// bytes, produce the top-level scope the engine type-checks. Lexing and
// parsing Simple source text are external collaborators per spec.md §1 --
// this repository implements the job-scheduled semantic core that
// consumes their output, not the front end itself.
type ParseFunc func(path string, source []byte) (*model.Scope, error)

// noParserWired is the default ParseFunc: it reports a clear, honest error
// rather than fabricating lexer/parser behavior this repo's spec
// explicitly excludes. Tests and embedders that need to drive the engine
// over real Simple source should inject their own ParseFunc via
// newFileLoader; `simplec` itself has none wired in since none ships.
func noParserWired(path string, _ []byte) (*model.Scope, error) {
	return nil, fmt.Errorf("%s: no Simple parser is wired into this CLI -- "+
		"lexing/parsing is an external collaborator (spec.md §1/§6); "+
		"supply an already-parsed model.Scope via the typecheck.FileLoader contract instead", path)
}

// newFileLoader adapts a ParseFunc plus the OS filesystem into the
// typecheck.FileLoader contract, reading each imported path's bytes via
// os.ReadFile -- the CLI's concrete "source provider" (§6).
func newFileLoader(parse ParseFunc) typecheck.FileLoader {
	return func(path string) (*model.Scope, error) {
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return parse(path, source)
	}
}
