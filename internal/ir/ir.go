// Package ir implements the intermediate representation (C4): a per-function
// operation DAG lowered from internal/ast, in dependency order, with call and
// type targets resolved against sibling declarations and internal/registry.
//
// A Function's body is not a tree of expressions but a flat, ordered list of
// Nodes; an expression like `extern Add(a, b)` becomes one Node per
// sub-expression, each referencing its operands by position (a function
// parameter, or an earlier Node in the same list — see Input). This is the
// same shape internal/bytecode serializes, just not yet packed into tables.
package ir

import (
	"fmt"
	"strings"

	"github.com/vertexlang/vertex/internal/datatype"
)

// Path is a dotted sequence of declaration names from the root Context down
// to a function or struct, e.g. []string{"Math", "Vector", "Point"}.
type Path []string

func (p Path) String() string { return strings.Join(p, ".") }

// Equal reports whether p and other name the same declaration.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// commonPrefixLen returns how many leading segments p and other share.
func commonPrefixLen(p, other Path) int {
	n := len(p)
	if len(other) < n {
		n = len(other)
	}
	i := 0
	for i < n && p[i] == other[i] {
		i++
	}
	return i
}

// CallKind identifies which variant of Call a Node performs.
type CallKind uint8

const (
	// CallUnresolved names a not-yet-resolved internal call; a builder
	// pass rewrites every one of these to CallInternal or a build error.
	CallUnresolved CallKind = iota
	// CallInternal invokes another Function in the same Context, by Path.
	CallInternal
	// CallExternal invokes a registered host Callback, by name.
	CallExternal
	CallIntConstant
	CallFloatConstant
	CallStringConstant
	CallCharConstant
	CallBoolConstant
)

func (k CallKind) String() string {
	switch k {
	case CallUnresolved:
		return "Unresolved"
	case CallInternal:
		return "Internal"
	case CallExternal:
		return "External"
	case CallIntConstant:
		return "IntConstant"
	case CallFloatConstant:
		return "FloatConstant"
	case CallStringConstant:
		return "StringConstant"
	case CallCharConstant:
		return "CharConstant"
	case CallBoolConstant:
		return "BoolConstant"
	default:
		return fmt.Sprintf("CallKind(%d)", uint8(k))
	}
}

// Call is what a Node does: invoke a function (internal, external, or still
// unresolved) or materialize a constant. Exactly one of the typed fields is
// meaningful, selected by Kind.
type Call struct {
	kind CallKind

	name string // Unresolved, CallExternal: callee name as written.
	path Path   // CallInternal: resolved callee path.

	intVal    int64
	floatVal  float64
	stringVal string
	charVal   rune
	boolVal   bool
}

func (c Call) Kind() CallKind { return c.kind }

// Name returns the callee name for Unresolved/External calls. Panics
// otherwise.
func (c Call) Name() string {
	if c.kind != CallUnresolved && c.kind != CallExternal {
		panic(fmt.Sprintf("ir: Name() called on %s", c.kind))
	}
	return c.name
}

// Path returns the resolved callee path for an Internal call. Panics
// otherwise.
func (c Call) Path() Path {
	if c.kind != CallInternal {
		panic(fmt.Sprintf("ir: Path() called on %s", c.kind))
	}
	return c.path
}

func (c Call) IntValue() int64 {
	if c.kind != CallIntConstant {
		panic(fmt.Sprintf("ir: IntValue() called on %s", c.kind))
	}
	return c.intVal
}

func (c Call) FloatValue() float64 {
	if c.kind != CallFloatConstant {
		panic(fmt.Sprintf("ir: FloatValue() called on %s", c.kind))
	}
	return c.floatVal
}

func (c Call) StringValue() string {
	if c.kind != CallStringConstant {
		panic(fmt.Sprintf("ir: StringValue() called on %s", c.kind))
	}
	return c.stringVal
}

func (c Call) CharValue() rune {
	if c.kind != CallCharConstant {
		panic(fmt.Sprintf("ir: CharValue() called on %s", c.kind))
	}
	return c.charVal
}

func (c Call) BoolValue() bool {
	if c.kind != CallBoolConstant {
		panic(fmt.Sprintf("ir: BoolValue() called on %s", c.kind))
	}
	return c.boolVal
}

func newUnresolvedCall(name string) Call  { return Call{kind: CallUnresolved, name: name} }
func newExternalCall(name string) Call    { return Call{kind: CallExternal, name: name} }
func newInternalCall(path Path) Call      { return Call{kind: CallInternal, path: path} }
func newIntConstant(v int64) Call         { return Call{kind: CallIntConstant, intVal: v} }
func newFloatConstant(v float64) Call     { return Call{kind: CallFloatConstant, floatVal: v} }
func newStringConstant(v string) Call     { return Call{kind: CallStringConstant, stringVal: v} }
func newCharConstant(v rune) Call         { return Call{kind: CallCharConstant, charVal: v} }
func newBoolConstant(v bool) Call         { return Call{kind: CallBoolConstant, boolVal: v} }

// InputKind identifies which source a Node's operand reads from.
type InputKind uint8

const (
	// InputParam reads the function's Nth parameter.
	InputParam InputKind = iota
	// InputHidden reads the Nth prior Node's result, in the owning
	// Function's Nodes list. Named for the original's "hidden
	// intermediate" binding: the operand isn't a user-named variable,
	// just the N-th node computed so far.
	InputHidden
)

// Input is one operand of a Node: either a function parameter or the
// result of an earlier Node in the same Function.
type Input struct {
	Kind  InputKind
	Index uint32
}

func ParamInput(i uint32) Input  { return Input{Kind: InputParam, Index: i} }
func HiddenInput(i uint32) Input { return Input{Kind: InputHidden, Index: i} }

// Node is a single operation in a Function's body: a call (or constant)
// plus its operands and result type.
type Node struct {
	Call   Call
	Inputs []Input
	Output datatype.Type

	// Serial is set from the call's own `serial` keyword or inherited
	// from an enclosing serial function. It is not carried into
	// internal/bytecode, so it does not change how the VM schedules this
	// node's job.
	Serial bool
}

// Function is a compiled function: its declaration path, accessibility
// depth, signature, and body as a dependency-ordered Node list. Results
// names which operand of the body (a parameter or a Node) holds each
// declared return value, in Return-argument order — it is not implied by
// Nodes' order, since unrelated or dead assignments may sort after it.
type Function struct {
	Path          Path
	Accessibility int
	Params        []datatype.Type
	Result        datatype.Type
	Nodes         []Node
	Results       []Input
	Serial        bool
}

// Struct is a compiled struct declaration: its path, accessibility depth,
// and ordered field list.
type Struct struct {
	Path          Path
	Accessibility int
	Fields        []datatype.Field
}

// Context is the fully-built IR for a compilation: every function and
// struct declared anywhere in the source Context, flattened and keyed by
// Path.
type Context struct {
	Functions []*Function
	Structs   []*Struct
}

// NewContext returns an empty Context.
func NewContext() *Context { return &Context{} }

func (c *Context) AddFunction(f *Function) { c.Functions = append(c.Functions, f) }
func (c *Context) AddStruct(s *Struct)     { c.Structs = append(c.Structs, s) }

// LookupFunction returns the function declared at path, if any.
func (c *Context) LookupFunction(path Path) (*Function, bool) {
	for _, f := range c.Functions {
		if f.Path.Equal(path) {
			return f, true
		}
	}
	return nil, false
}

// LookupStruct returns the struct declared at path, if any.
func (c *Context) LookupStruct(path Path) (*Struct, bool) {
	for _, s := range c.Structs {
		if s.Path.Equal(path) {
			return s, true
		}
	}
	return nil, false
}
