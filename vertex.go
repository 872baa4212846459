// Package vertex is the top-level facade over the compiler and runtime:
// Compile turns source text into a bytecode.Program, and NewMachine runs
// that program's internal functions on the concurrent graph VM (C9).
// Everything below internal/ is an implementation detail; embedders only
// need this package plus internal/registry (to supply host functions)
// and internal/value (to build inputs and read results).
package vertex

import (
	"github.com/vertexlang/vertex/internal/bytecode"
	"github.com/vertexlang/vertex/internal/ir"
	"github.com/vertexlang/vertex/internal/parser"
	"github.com/vertexlang/vertex/internal/registry"
)

// Compile parses source against the surface grammar, builds its IR
// against reg, and assembles the result into a bytecode.Program. It
// reports every error it can find at whichever stage fails first —
// parsing, then IR building — rather than stopping at the first one,
// matching internal/parser and internal/ir.Build's own "collect
// everything" conventions.
func Compile(source string, reg *registry.Registry) (*bytecode.Program, []error) {
	p := parser.New(source)
	root, errs := p.ParseContext()
	if len(errs) > 0 {
		return nil, errs
	}

	ctx, errs := ir.Build(root, reg)
	if len(errs) > 0 {
		return nil, errs
	}

	return bytecode.Assemble(ctx, reg), nil
}
