package ir

import (
	"fmt"

	"github.com/vertexlang/vertex/internal/ast"
)

// ErrUnknownIdentifier is returned when an expression references a name
// that resolves to neither a function parameter nor a prior assignment in
// the same function body.
type ErrUnknownIdentifier struct {
	Name string
	Pos  ast.Position
}

func (e *ErrUnknownIdentifier) Error() string {
	return fmt.Sprintf("%s: unknown identifier %q", e.Pos, e.Name)
}

// ErrUnknownExternalFunction is returned when a `extern` call names a
// function that was never registered (internal/registry).
type ErrUnknownExternalFunction struct {
	Name string
	Pos  ast.Position
}

func (e *ErrUnknownExternalFunction) Error() string {
	return fmt.Sprintf("%s: unknown external function %q", e.Pos, e.Name)
}

// ErrCircularDependency is returned when a function's assignments form a
// cycle: some assignment depends, directly or indirectly, on its own
// result.
type ErrCircularDependency struct {
	Function Path
	Variable string
}

func (e *ErrCircularDependency) Error() string {
	return fmt.Sprintf("%s: circular dependency through %q", e.Function, e.Variable)
}

// ErrUnresolvedCall is returned when an internal call name matches no
// function reachable from the caller's path.
type ErrUnresolvedCall struct {
	Caller Path
	Name   string
}

func (e *ErrUnresolvedCall) Error() string {
	return fmt.Sprintf("%s: call to undefined function %q", e.Caller, e.Name)
}

// ErrAmbiguousCall is returned when an internal call name matches more
// than one function at the same, best-matching accessibility distance
// from the caller.
type ErrAmbiguousCall struct {
	Caller     Path
	Name       string
	Candidates []Path
}

func (e *ErrAmbiguousCall) Error() string {
	return fmt.Sprintf("%s: call to %q is ambiguous between %v", e.Caller, e.Name, e.Candidates)
}

// ErrUnsupportedFeature marks a construct the lowering pass recognizes but
// does not yet implement, e.g. struct field projection.
type ErrUnsupportedFeature struct {
	Feature string
	Pos     ast.Position
}

func (e *ErrUnsupportedFeature) Error() string {
	return fmt.Sprintf("%s: unsupported: %s", e.Pos, e.Feature)
}

// ErrUnresolvedType is returned when a signature or field type never
// resolves to a known primitive, composite, or struct.
type ErrUnresolvedType struct {
	Path Path
	Name string
}

func (e *ErrUnresolvedType) Error() string {
	return fmt.Sprintf("%s: unresolved type %q", e.Path, e.Name)
}

// ErrAmbiguousType mirrors ErrAmbiguousCall for struct-type references.
type ErrAmbiguousType struct {
	Path       Path
	Name       string
	Candidates []Path
}

func (e *ErrAmbiguousType) Error() string {
	return fmt.Sprintf("%s: type %q is ambiguous between %v", e.Path, e.Name, e.Candidates)
}
