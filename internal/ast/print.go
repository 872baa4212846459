package ast

import (
	goast "go/ast"
	"io"
	"os"
)

// Fprint writes a debug dump of n to w, one field per line, omitting nil
// fields. go/ast.Fprint's reflection-based walk works on any node shape,
// not just go/ast's own — this tree's Node/Decl/Expr/Stmt nodes are plain
// structs, so it doubles as a generic dumper here with no porting needed.
func Fprint(w io.Writer, n Node) error {
	return goast.Fprint(w, nil, n, goast.NotNilFilter)
}

// Print writes a debug dump of n to stdout; see Fprint.
func Print(n Node) error {
	return Fprint(os.Stdout, n)
}
