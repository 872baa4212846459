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
	"github.com/vertexlang/vertex/internal/value"
)

func arg(name, typ string) *ast.ArgumentNode { return &ast.ArgumentNode{Name: name, Type: typ} }

func assign(varName string, expr ast.Expr) *ast.AssignmentNode {
	return &ast.AssignmentNode{Variable: &ast.Ident{Name: varName}, Expression: expr}
}

func buildMath(t *testing.T) (*ir.Context, *registry.Registry) {
	t.Helper()

	addCall := &ast.FunctionCall{
		Name: "Add", External: true,
		Args: []ast.Expr{&ast.Variable{Name: "a"}, &ast.Variable{Name: "b"}},
	}
	addFn := &ast.FunctionNode{
		Name: "Add", Export: true,
		Params:      []*ast.ArgumentNode{arg("a", "Int"), arg("b", "Int")},
		Returns:     []*ast.ArgumentNode{arg("value", "Int")},
		Assignments: []*ast.AssignmentNode{assign("value", addCall)},
	}
	doubleFn := &ast.FunctionNode{
		Name: "Double", Export: true,
		Params:  []*ast.ArgumentNode{arg("x", "Int")},
		Returns: []*ast.ArgumentNode{arg("value", "Int")},
		Assignments: []*ast.AssignmentNode{assign("value", &ast.FunctionCall{
			Name: "Add", External: false,
			Args: []ast.Expr{&ast.Variable{Name: "x"}, &ast.Variable{Name: "x"}},
		})},
	}
	three := &ast.FunctionNode{
		Name: "Three", Export: true,
		Returns:     []*ast.ArgumentNode{arg("value", "Int")},
		Assignments: []*ast.AssignmentNode{assign("value", &ast.IntLiteral{Value: 3})},
	}
	mod := &ast.ModuleNode{
		Name: "Math", Export: true,
		Functions: []*ast.FunctionNode{addFn, doubleFn, three},
	}
	root := &ast.Context{Modules: []*ast.ModuleNode{mod}}

	reg := registry.New()
	require.NoError(t, reg.Register("Add", func(inputs []value.Value) value.Value {
		return value.NewInt(inputs[0].Int() + inputs[1].Int())
	}, []datatype.Type{datatype.PrimitiveInt(), datatype.PrimitiveInt()}, datatype.PrimitiveInt()))

	ctx, errs := ir.Build(root, reg)
	require.Empty(t, errs)
	return ctx, reg
}

func TestAssembleResolvesExternalCallByIndex(t *testing.T) {
	ctx, reg := buildMath(t)
	prog := bytecode.Assemble(ctx, reg)

	require.Len(t, prog.ExternalFunctions, 1)
	assert.Equal(t, "Add", prog.ExternalFunctions[0].Name)

	add, _, ok := prog.EntryFunction(ir.Path{"Math", "Add"})
	require.True(t, ok)
	require.Len(t, add.Operations, 1)
	assert.Equal(t, bytecode.CallExternal, add.Operations[0].Call.Kind)
	assert.Equal(t, 0, add.Operations[0].Call.Index)
}

func TestAssembleResolvesInternalCallByFunctionIndex(t *testing.T) {
	ctx, reg := buildMath(t)
	prog := bytecode.Assemble(ctx, reg)

	double, doubleIdx, ok := prog.EntryFunction(ir.Path{"Math", "Double"})
	require.True(t, ok)
	require.Len(t, double.Operations, 1)
	assert.Equal(t, bytecode.CallInternal, double.Operations[0].Call.Kind)

	add, addIdx, ok := prog.EntryFunction(ir.Path{"Math", "Add"})
	require.True(t, ok)
	assert.Equal(t, addIdx, double.Operations[0].Call.Index)
	assert.NotEqual(t, doubleIdx, addIdx)
	_ = add
}

func TestAssembleInternsConstantsByStructuralEquality(t *testing.T) {
	ctx, reg := buildMath(t)
	prog := bytecode.Assemble(ctx, reg)

	require.Len(t, prog.Constants, 1)
	assert.True(t, value.NewInt(3).Equal(prog.Constants[0]))

	three, _, ok := prog.EntryFunction(ir.Path{"Math", "Three"})
	require.True(t, ok)
	require.Len(t, three.Operations, 1)
	assert.Equal(t, bytecode.CallConstant, three.Operations[0].Call.Kind)
	assert.Equal(t, 0, three.Operations[0].Call.Index)
}

func TestAssembleDedupesRepeatedExternalCalls(t *testing.T) {
	addCall := func() *ast.FunctionCall {
		return &ast.FunctionCall{
			Name: "Add", External: true,
			Args: []ast.Expr{&ast.Variable{Name: "a"}, &ast.Variable{Name: "b"}},
		}
	}
	fn := &ast.FunctionNode{
		Name: "Twice", Export: true,
		Params:  []*ast.ArgumentNode{arg("a", "Int"), arg("b", "Int")},
		Returns: []*ast.ArgumentNode{arg("value", "Int")},
		Assignments: []*ast.AssignmentNode{
			assign("x", addCall()),
			assign("value", addCall()),
		},
	}
	mod := &ast.ModuleNode{Name: "Math", Export: true, Functions: []*ast.FunctionNode{fn}}
	root := &ast.Context{Modules: []*ast.ModuleNode{mod}}

	reg := registry.New()
	require.NoError(t, reg.Register("Add", func(inputs []value.Value) value.Value {
		return value.NewInt(inputs[0].Int() + inputs[1].Int())
	}, []datatype.Type{datatype.PrimitiveInt(), datatype.PrimitiveInt()}, datatype.PrimitiveInt()))

	ctx, errs := ir.Build(root, reg)
	require.Empty(t, errs)

	prog := bytecode.Assemble(ctx, reg)
	require.Len(t, prog.ExternalFunctions, 1)

	twice, _, ok := prog.EntryFunction(ir.Path{"Math", "Twice"})
	require.True(t, ok)
	require.Len(t, twice.Operations, 2)
	assert.Equal(t, 0, twice.Operations[0].Call.Index)
	assert.Equal(t, 0, twice.Operations[1].Call.Index)
}
