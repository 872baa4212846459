// Package bytecode implements the tabular bytecode assembler (C6): it
// flattens a resolved internal/ir.Context into a Program of three parallel
// tables — constants, external functions, internal functions — with every
// call rewritten from a Path or name into a table index.
//
// This is still an in-memory representation, not a wire format. The
// on-disk encoding and its small sequential stack machine live in
// internal/stackcode; Linearize (in this package) is the bridge between
// the two.
package bytecode

import (
	"fmt"

	"github.com/vertexlang/vertex/internal/ir"
	"github.com/vertexlang/vertex/internal/registry"
	"github.com/vertexlang/vertex/internal/value"
)

// CallKind identifies which table an Operation's FunctionCall points into.
type CallKind uint8

const (
	// CallInternal points at InternalFunctions[Index].
	CallInternal CallKind = iota
	// CallExternal points at ExternalFunctions[Index].
	CallExternal
	// CallConstant points at Constants[Index].
	CallConstant
)

func (k CallKind) String() string {
	switch k {
	case CallInternal:
		return "Internal"
	case CallExternal:
		return "External"
	case CallConstant:
		return "Constant"
	default:
		return fmt.Sprintf("CallKind(%d)", uint8(k))
	}
}

// FunctionCall is a resolved pointer into one of Program's three tables.
type FunctionCall struct {
	Kind  CallKind
	Index int
}

// Operation is a single executable step of an InternalFunction: a call
// plus its operand pointers. Inputs reuses internal/ir.Input — a Param or
// Hidden reference means exactly the same thing at this layer as it did
// in the IR, so there is no separate OperationInput type to keep in sync.
type Operation struct {
	Call   FunctionCall
	Inputs []ir.Input
}

// InternalFunction is one compiled function's operation list, in the same
// dependency order internal/ir produced. NumParams and Results are
// carried over from the ir.Function so Linearize can reconstruct a
// function's calling convention without needing the ir.Context back.
type InternalFunction struct {
	Path       ir.Path
	NumParams  int
	Results    []ir.Input
	Operations []Operation
}

// ExternalFunction is a named host callback pulled from the registry and
// pinned into the program so that running it doesn't require the registry
// to stay reachable.
type ExternalFunction struct {
	Name string
	Func registry.Callback
}

// Program is the fully assembled bytecode: three parallel tables, indexed
// by the FunctionCall pointers inside every Operation.
type Program struct {
	Constants         []value.Value
	ExternalFunctions []ExternalFunction
	InternalFunctions []InternalFunction
}

// EntryFunction returns the assembled function at path, if any, along with
// its index into InternalFunctions.
func (p *Program) EntryFunction(path ir.Path) (InternalFunction, int, bool) {
	for i, f := range p.InternalFunctions {
		if f.Path.Equal(path) {
			return f, i, true
		}
	}
	return InternalFunction{}, 0, false
}
