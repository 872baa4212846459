package bytecode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexlang/vertex/internal/ast"
	"github.com/vertexlang/vertex/internal/bytecode"
	"github.com/vertexlang/vertex/internal/datatype"
	"github.com/vertexlang/vertex/internal/ir"
	"github.com/vertexlang/vertex/internal/registry"
	"github.com/vertexlang/vertex/internal/stackcode"
	"github.com/vertexlang/vertex/internal/value"
)

func TestLinearizeRejectsParameterizedEntry(t *testing.T) {
	ctx, reg := buildMath(t)
	prog := bytecode.Assemble(ctx, reg)

	_, err := bytecode.Linearize(prog, ir.Path{"Math", "Add"})
	require.Error(t, err)
	var notLinearizable *bytecode.ErrNotLinearizable
	require.ErrorAs(t, err, &notLinearizable)
}

func TestLinearizeConstantOnlyFunctionExecutes(t *testing.T) {
	ctx, reg := buildMath(t)
	prog := bytecode.Assemble(ctx, reg)

	wire, err := bytecode.Linearize(prog, ir.Path{"Math", "Three"})
	require.NoError(t, err)

	result, err := stackcode.NewVM(wire).Exec(0)
	require.NoError(t, err)
	assert.True(t, value.NewInt(3).Equal(result))
}

func TestLinearizeRejectsExternalCallAnywhereInReachableGraph(t *testing.T) {
	// Main is a valid zero-parameter entry that calls internal Add
	// (External:false), which itself calls the *registered* Add
	// (External:true) — so even though Main's own block never mentions
	// an external call directly, the function it transitively reaches
	// does, and that must be enough to reject the whole program.
	addFn := &ast.FunctionNode{
		Name: "Add", Export: true,
		Params:  []*ast.ArgumentNode{arg("a", "Int"), arg("b", "Int")},
		Returns: []*ast.ArgumentNode{arg("value", "Int")},
		Assignments: []*ast.AssignmentNode{assign("value", &ast.FunctionCall{
			Name: "Add", External: true,
			Args: []ast.Expr{&ast.Variable{Name: "a"}, &ast.Variable{Name: "b"}},
		})},
	}
	mainFn := &ast.FunctionNode{
		Name: "Main", Export: true,
		Returns: []*ast.ArgumentNode{arg("value", "Int")},
		Assignments: []*ast.AssignmentNode{assign("value", &ast.FunctionCall{
			Name: "Add", External: false,
			Args: []ast.Expr{&ast.IntLiteral{Value: 1}, &ast.IntLiteral{Value: 2}},
		})},
	}
	mod := &ast.ModuleNode{Name: "Math", Export: true, Functions: []*ast.FunctionNode{addFn, mainFn}}
	root := &ast.Context{Modules: []*ast.ModuleNode{mod}}

	reg := registry.New()
	require.NoError(t, reg.Register("Add", func(inputs []value.Value) value.Value {
		return value.NewInt(inputs[0].Int() + inputs[1].Int())
	}, []datatype.Type{datatype.PrimitiveInt(), datatype.PrimitiveInt()}, datatype.PrimitiveInt()))

	ctx, errs := ir.Build(root, reg)
	require.Empty(t, errs)
	prog := bytecode.Assemble(ctx, reg)

	_, err := bytecode.Linearize(prog, ir.Path{"Math", "Main"})
	require.Error(t, err)
	var notLinearizable *bytecode.ErrNotLinearizable
	require.ErrorAs(t, err, &notLinearizable)
	assert.Equal(t, ir.Path{"Math", "Add"}, notLinearizable.Path)
}

// buildIdentityChain builds a Math module with no external calls at all:
// Main (zero-arg entry) assigns a constant and forwards it through a
// one-parameter internal function that does nothing but return its own
// argument. This exercises CallInternal lowering (Jump plus the
// Copy-offset arithmetic for both the caller's argument-gathering and
// the callee's own parameter fetch) without tripping the external-call
// rejection.
func buildIdentityChain(t *testing.T) *bytecode.Program {
	t.Helper()

	identityFn := &ast.FunctionNode{
		Name: "Identity", Export: true,
		Params:      []*ast.ArgumentNode{arg("x", "Int")},
		Returns:     []*ast.ArgumentNode{arg("value", "Int")},
		Assignments: []*ast.AssignmentNode{assign("value", &ast.Variable{Name: "x"})},
	}
	mainFn := &ast.FunctionNode{
		Name: "Main", Export: true,
		Returns: []*ast.ArgumentNode{arg("value", "Int")},
		Assignments: []*ast.AssignmentNode{
			assign("five", &ast.IntLiteral{Value: 5}),
			assign("value", &ast.FunctionCall{
				Name: "Identity", External: false,
				Args: []ast.Expr{&ast.Variable{Name: "five"}},
			}),
		},
	}
	mod := &ast.ModuleNode{
		Name: "Math", Export: true,
		Functions: []*ast.FunctionNode{identityFn, mainFn},
	}
	root := &ast.Context{Modules: []*ast.ModuleNode{mod}}

	reg := registry.New()
	ctx, errs := ir.Build(root, reg)
	require.Empty(t, errs)

	return bytecode.Assemble(ctx, reg)
}

func TestLinearizeResolvesInternalCallChain(t *testing.T) {
	prog := buildIdentityChain(t)

	wire, err := bytecode.Linearize(prog, ir.Path{"Math", "Main"})
	require.NoError(t, err)

	result, err := stackcode.NewVM(wire).Exec(0)
	require.NoError(t, err)
	assert.True(t, value.NewInt(5).Equal(result))
}

func TestLinearizeRejectsCharConstant(t *testing.T) {
	fn := &ast.FunctionNode{
		Name: "Main", Export: true,
		Returns:     []*ast.ArgumentNode{arg("value", "Char")},
		Assignments: []*ast.AssignmentNode{assign("value", &ast.CharLiteral{Value: 'x'})},
	}
	mod := &ast.ModuleNode{Name: "Chars", Export: true, Functions: []*ast.FunctionNode{fn}}
	root := &ast.Context{Modules: []*ast.ModuleNode{mod}}

	reg := registry.New()
	ctx, errs := ir.Build(root, reg)
	require.Empty(t, errs)
	prog := bytecode.Assemble(ctx, reg)

	_, err := bytecode.Linearize(prog, ir.Path{"Chars", "Main"})
	require.Error(t, err)
	var notLinearizable *bytecode.ErrNotLinearizable
	require.ErrorAs(t, err, &notLinearizable)
}

func TestLinearizeRejectsNonArithmeticExternalCall(t *testing.T) {
	greetCall := &ast.FunctionCall{
		Name: "Greet", External: true,
		Args: []ast.Expr{&ast.StringLiteral{Value: "world"}},
	}
	fn := &ast.FunctionNode{
		Name: "Main", Export: true,
		Returns:     []*ast.ArgumentNode{arg("value", "String")},
		Assignments: []*ast.AssignmentNode{assign("value", greetCall)},
	}
	mod := &ast.ModuleNode{Name: "Greeter", Export: true, Functions: []*ast.FunctionNode{fn}}
	root := &ast.Context{Modules: []*ast.ModuleNode{mod}}

	reg := registry.New()
	require.NoError(t, reg.Register("Greet", func(inputs []value.Value) value.Value {
		return value.NewString("hi " + inputs[0].String())
	}, []datatype.Type{datatype.PrimitiveString()}, datatype.PrimitiveString()))

	ctx, errs := ir.Build(root, reg)
	require.Empty(t, errs)
	prog := bytecode.Assemble(ctx, reg)

	_, err := bytecode.Linearize(prog, ir.Path{"Greeter", "Main"})
	require.Error(t, err)
	var notLinearizable *bytecode.ErrNotLinearizable
	require.ErrorAs(t, err, &notLinearizable)
}
