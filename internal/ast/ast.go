// Package ast defines the surface syntax tree produced by internal/parser
// and consumed by internal/ir. This tree, not the concrete grammar, is the
// IR builder's real contract: anything that can construct this shape can
// feed the compiler, independent of the text front end.
package ast

import "fmt"

// Position is a line/column location within a source file.
type Position struct {
	Line   int
	Col    int
	Offset int // byte offset
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Pos wraps Position so it can be embedded into node structs; embedders
// inherit the Node interface for free.
type Pos struct {
	Position
}

// At constructs a Pos from a Position.
func At(p Position) Pos { return Pos{p} }

// Pos implements Node.
func (p Pos) Pos() Position { return p.Position }

// Node is implemented by every tree node.
type Node interface {
	Pos() Position
}

// Decl is a top-level or nested declaration: a module, function, or struct.
type Decl interface {
	Node
	declNode()
}

// Expr is any expression: a literal, a variable reference, or a call.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement within a function body. Vertex has a single
// statement form, assignment, but keeping Stmt distinct from Decl mirrors
// how the grammar itself separates "things that declare a name at this
// scope" from "things that happen in a function body".
type Stmt interface {
	Node
	stmtNode()
}

// BadNode is a placeholder for a parse error. It implements Decl, Expr and
// Stmt so it can stand in for whichever production failed.
type BadNode struct {
	Pos
	Comment string
}

func (*BadNode) declNode() {}
func (*BadNode) exprNode() {}
func (*BadNode) stmtNode() {}

// Ident is a bare identifier, used for names being declared (module,
// function, struct, parameter, field) rather than referenced.
type Ident struct {
	Pos
	Name string
}

// ----------------------------------------------------------------------------
// Declarations

// Context is the root of a parsed source tree: the top-level list of
// modules. A single compilation may merge Contexts from multiple source
// files before feeding internal/ir.
type Context struct {
	Pos
	Modules []*ModuleNode
}

// ModuleNode groups nested modules, functions and structs under a name.
// Export controls accessibility (spec §3): an unexported module is only
// visible to siblings sharing its parent.
type ModuleNode struct {
	Pos
	Name    string
	Export  bool
	Modules []*ModuleNode
	Structs []*StructNode

	Functions []*FunctionNode
}

func (*ModuleNode) declNode() {}

// StructNode declares a struct type: an ordered, named field list.
type StructNode struct {
	Pos
	Name   string
	Export bool
	Fields []*ArgumentNode
}

func (*StructNode) declNode() {}

// ArgumentNode is a single (name, type-name) pair: a function parameter or
// return slot, or a struct field. Type is resolved against
// internal/datatype.FromName by the IR builder, not the parser.
type ArgumentNode struct {
	Pos
	Name string
	Type string
}

// FunctionNode declares a function: its signature, any nested
// declarations, and its body as an ordered assignment list.
//
// Serial records the `serial` modifier on a function. ir.Build copies it
// onto the ir.Function and onto every call Node in the body; it is not
// carried into internal/bytecode, so the VM schedules a serial function's
// operations the same way as any other's.
type FunctionNode struct {
	Pos
	Name    string
	Export  bool
	Serial  bool
	Params  []*ArgumentNode
	Returns []*ArgumentNode

	Functions   []*FunctionNode
	Structs     []*StructNode
	Assignments []*AssignmentNode
}

func (*FunctionNode) declNode() {}

// ----------------------------------------------------------------------------
// Statements

// AssignmentNode binds the value of Expression to Variable, or — when
// Variable is nil — evaluates Expression for its side effect alone (an
// external call made purely for effect, e.g. a print).
type AssignmentNode struct {
	Pos
	Variable   *Ident
	Expression Expr
}

func (*AssignmentNode) stmtNode() {}

// ----------------------------------------------------------------------------
// Expressions

// IntLiteral is an integer literal.
type IntLiteral struct {
	Pos
	Value int64
}

// FloatLiteral is a floating point literal.
type FloatLiteral struct {
	Pos
	Value float64
}

// StringLiteral is a double-quoted string literal.
type StringLiteral struct {
	Pos
	Value string
}

// CharLiteral is a single-quoted Unicode scalar literal, e.g. 'a'.
// Supplemented from the original's value model (not present in the
// distilled surface grammar, but Char is a first-class runtime value —
// see DESIGN.md).
type CharLiteral struct {
	Pos
	Value rune
}

// BoolLiteral is a true/false literal.
type BoolLiteral struct {
	Pos
	Value bool
}

// Variable references a name in scope: a parameter or a prior assignment
// in the same function.
type Variable struct {
	Pos
	Name string
}

// InnerVariable references a dotted path into an enclosing scope or a
// struct field, e.g. `Outer.Inner.value`.
type InnerVariable struct {
	Pos
	Path []string
}

// FunctionCall invokes a function by name. External marks a call into the
// registry (C5) rather than another function defined in this tree; Serial
// records the call's own `serial` modifier, which ir.Build ORs with the
// enclosing function's flag into ir.Node.Serial (like FunctionNode.Serial,
// it does not change how the VM schedules the call).
type FunctionCall struct {
	Pos
	Name     string
	External bool
	Serial   bool
	Args     []Expr
}

func (*IntLiteral) exprNode()    {}
func (*FloatLiteral) exprNode()  {}
func (*StringLiteral) exprNode() {}
func (*CharLiteral) exprNode()   {}
func (*BoolLiteral) exprNode()   {}
func (*Variable) exprNode()      {}
func (*InnerVariable) exprNode() {}
func (*FunctionCall) exprNode()  {}
