package ast

import "fmt"

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the returned visitor w is not nil, Walk visits each child of node
// with w, followed by a call to w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Inspect traverses a tree in depth-first order, calling f(node) for node
// and then, if f returns true, for each non-nil child, followed by a call
// to f(nil).
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

// Walk drives a Visitor depth-first over the tree rooted at node.
//
// nolint:gocyclo // one case per node shape, same trade as the teacher's.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Ident, *IntLiteral, *FloatLiteral, *StringLiteral, *CharLiteral, *BoolLiteral,
		*Variable, *InnerVariable, *BadNode:
		// Leaves; nothing to do.
	case *FunctionCall:
		walkExprList(v, n.Args)
	case *AssignmentNode:
		if n.Variable != nil {
			Walk(v, n.Variable)
		}
		Walk(v, n.Expression)
	case *ArgumentNode:
		// Leaf: name/type-name pair.
	case *StructNode:
		for _, f := range n.Fields {
			Walk(v, f)
		}
	case *FunctionNode:
		for _, p := range n.Params {
			Walk(v, p)
		}
		for _, r := range n.Returns {
			Walk(v, r)
		}
		for _, s := range n.Structs {
			Walk(v, s)
		}
		for _, fn := range n.Functions {
			Walk(v, fn)
		}
		for _, a := range n.Assignments {
			Walk(v, a)
		}
	case *ModuleNode:
		for _, s := range n.Structs {
			Walk(v, s)
		}
		for _, fn := range n.Functions {
			Walk(v, fn)
		}
		for _, m := range n.Modules {
			Walk(v, m)
		}
	case *Context:
		for _, m := range n.Modules {
			Walk(v, m)
		}
	default:
		panic(fmt.Sprintf("ast.Walk: unexpected node type %T", n))
	}

	v.Visit(nil)
}

func walkExprList(v Visitor, list []Expr) {
	for _, x := range list {
		Walk(v, x)
	}
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}
