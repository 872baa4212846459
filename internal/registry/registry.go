// Package registry implements the external-function registry (C5): the
// name-keyed table of host callbacks a compiled program can call into.
package registry

import (
	"fmt"

	"github.com/vertexlang/vertex/internal/datatype"
	"github.com/vertexlang/vertex/internal/value"
)

// Callback is a host function a Vertex program can call externally. Runtime
// failures are reported as a value.Error result, not a Go error — only
// programmer-contract violations panic (see DESIGN.md).
type Callback func(inputs []value.Value) value.Value

// ErrFunctionAlreadyExists is returned by Register on a duplicate name.
type ErrFunctionAlreadyExists struct {
	Name string
}

func (e *ErrFunctionAlreadyExists) Error() string {
	return fmt.Sprintf("registry: function %q already registered", e.Name)
}

// ErrUnresolvedDataType is returned by Register when a signature type isn't
// fully resolved (spec §4.4).
type ErrUnresolvedDataType struct {
	Name string
	Type datatype.Type
}

func (e *ErrUnresolvedDataType) Error() string {
	return fmt.Sprintf("registry: function %q has unresolved signature type %s", e.Name, e.Type)
}

// Meta is a registered external function's metadata: its name, its
// callback, and its fully-resolved signature.
type Meta struct {
	Name   string
	Func   Callback
	Inputs []datatype.Type
	Output datatype.Type
}

// newMeta validates and constructs a Meta. All signature types must be
// resolved (spec §4.4): Register rejects an Unresolved/Unknown leaf
// anywhere in the inputs or output.
func newMeta(name string, fn Callback, inputs []datatype.Type, output datatype.Type) (Meta, error) {
	for _, t := range inputs {
		if !t.IsResolved() {
			return Meta{}, &ErrUnresolvedDataType{Name: name, Type: t}
		}
	}
	if !output.IsResolved() {
		return Meta{}, &ErrUnresolvedDataType{Name: name, Type: output}
	}
	return Meta{Name: name, Func: fn, Inputs: inputs, Output: output}, nil
}

// Registry is a name-keyed collection of external function metadata.
type Registry struct {
	functions []Meta
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Register adds a function under name. It fails with
// *ErrFunctionAlreadyExists on a duplicate name, or *ErrUnresolvedDataType
// if any signature type isn't fully resolved.
func (r *Registry) Register(name string, fn Callback, inputs []datatype.Type, output datatype.Type) error {
	if _, ok := r.Lookup(name); ok {
		return &ErrFunctionAlreadyExists{Name: name}
	}
	meta, err := newMeta(name, fn, inputs, output)
	if err != nil {
		return err
	}
	r.functions = append(r.functions, meta)
	return nil
}

// Lookup returns the Meta registered under name, or false if none exists.
func (r *Registry) Lookup(name string) (Meta, bool) {
	for _, f := range r.functions {
		if f.Name == name {
			return f, true
		}
	}
	return Meta{}, false
}
