package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexlang/vertex/internal/ast"
	"github.com/vertexlang/vertex/internal/datatype"
	"github.com/vertexlang/vertex/internal/ir"
	"github.com/vertexlang/vertex/internal/registry"
	"github.com/vertexlang/vertex/internal/value"
)

func noop(inputs []value.Value) value.Value { return value.NewInt(0) }

func arg(name, typ string) *ast.ArgumentNode { return &ast.ArgumentNode{Name: name, Type: typ} }

func assign(varName string, expr ast.Expr) *ast.AssignmentNode {
	return &ast.AssignmentNode{Variable: &ast.Ident{Name: varName}, Expression: expr}
}

func mathContext() *ast.Context {
	addCall := &ast.FunctionCall{
		Name: "Add", External: true,
		Args: []ast.Expr{&ast.Variable{Name: "a"}, &ast.Variable{Name: "b"}},
	}
	mulCall := &ast.FunctionCall{
		Name: "Mul", External: true,
		Args: []ast.Expr{&ast.Variable{Name: "a"}, &ast.Variable{Name: "b"}},
	}

	addFn := &ast.FunctionNode{
		Name: "Add", Export: true,
		Params:      []*ast.ArgumentNode{arg("a", "Int"), arg("b", "Int")},
		Returns:     []*ast.ArgumentNode{arg("value", "Int")},
		Assignments: []*ast.AssignmentNode{assign("value", addCall)},
	}
	mulFn := &ast.FunctionNode{
		Name: "Multiply", Export: true,
		Params:      []*ast.ArgumentNode{arg("a", "Int"), arg("b", "Int")},
		Returns:     []*ast.ArgumentNode{arg("value", "Int")},
		Assignments: []*ast.AssignmentNode{assign("value", mulCall)},
	}
	point := &ast.StructNode{
		Name: "Point", Export: true,
		Fields: []*ast.ArgumentNode{arg("x", "Float"), arg("y", "Float")},
	}
	vector := &ast.ModuleNode{Name: "Vector", Export: true, Structs: []*ast.StructNode{point}}
	math := &ast.ModuleNode{
		Name: "Math", Export: true,
		Modules:   []*ast.ModuleNode{vector},
		Functions: []*ast.FunctionNode{addFn, mulFn},
	}
	return &ast.Context{Modules: []*ast.ModuleNode{math}}
}

func mathRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.Register("Add", noop, []datatype.Type{datatype.PrimitiveInt(), datatype.PrimitiveInt()}, datatype.PrimitiveInt()))
	require.NoError(t, reg.Register("Mul", noop, []datatype.Type{datatype.PrimitiveInt(), datatype.PrimitiveInt()}, datatype.PrimitiveInt()))
	return reg
}

func TestBuildResolvesExternalCallsAndStructs(t *testing.T) {
	ctx, errs := ir.Build(mathContext(), mathRegistry(t))
	require.Empty(t, errs)
	require.Len(t, ctx.Functions, 2)
	require.Len(t, ctx.Structs, 1)

	add, ok := ctx.LookupFunction(ir.Path{"Math", "Add"})
	require.True(t, ok)
	assert.Equal(t, 0, add.Accessibility)
	require.Len(t, add.Nodes, 1)

	node := add.Nodes[0]
	assert.Equal(t, ir.CallExternal, node.Call.Kind())
	assert.Equal(t, "Add", node.Call.Name())
	require.Len(t, node.Inputs, 2)
	assert.Equal(t, ir.ParamInput(0), node.Inputs[0])
	assert.Equal(t, ir.ParamInput(1), node.Inputs[1])
	assert.Equal(t, datatype.Int, node.Output.Kind())
	require.Len(t, add.Results, 1)
	assert.Equal(t, ir.HiddenInput(0), add.Results[0])

	point, ok := ctx.LookupStruct(ir.Path{"Math", "Vector", "Point"})
	require.True(t, ok)
	assert.Equal(t, 0, point.Accessibility)
	require.Len(t, point.Fields, 2)
	assert.Equal(t, "x", point.Fields[0].Name)
	assert.Equal(t, datatype.Float, point.Fields[0].Type.Kind())
}

func TestBuildResolvesCallToOwnNestedFunction(t *testing.T) {
	double := &ast.FunctionNode{
		Name: "Double", Export: false,
		Params:  []*ast.ArgumentNode{arg("x", "Int")},
		Returns: []*ast.ArgumentNode{arg("value", "Int")},
		Assignments: []*ast.AssignmentNode{assign("value", &ast.FunctionCall{
			Name: "Id", External: true, Args: []ast.Expr{&ast.Variable{Name: "x"}},
		})},
	}
	quad := &ast.FunctionNode{
		Name: "Quad", Export: true,
		Params:    []*ast.ArgumentNode{arg("x", "Int")},
		Returns:   []*ast.ArgumentNode{arg("value", "Int")},
		Functions: []*ast.FunctionNode{double},
		Assignments: []*ast.AssignmentNode{assign("value", &ast.FunctionCall{
			Name: "Double", External: false, Args: []ast.Expr{&ast.Variable{Name: "x"}},
		})},
	}
	mod := &ast.ModuleNode{Name: "Numbers", Export: true, Functions: []*ast.FunctionNode{quad}}
	root := &ast.Context{Modules: []*ast.ModuleNode{mod}}

	reg := registry.New()
	require.NoError(t, reg.Register("Id", func(inputs []value.Value) value.Value { return inputs[0] },
		[]datatype.Type{datatype.PrimitiveInt()}, datatype.PrimitiveInt()))

	ctx, errs := ir.Build(root, reg)
	require.Empty(t, errs)

	q, ok := ctx.LookupFunction(ir.Path{"Numbers", "Quad"})
	require.True(t, ok)
	require.Len(t, q.Nodes, 1)
	assert.Equal(t, ir.CallInternal, q.Nodes[0].Call.Kind())
	assert.Equal(t, ir.Path{"Numbers", "Quad", "Double"}, q.Nodes[0].Call.Path())
	assert.Equal(t, datatype.Int, q.Nodes[0].Output.Kind())
}

func TestBuildRejectsCallToPrivateSibling(t *testing.T) {
	helper := &ast.FunctionNode{
		Name: "Helper", Export: false,
		Returns:     []*ast.ArgumentNode{arg("value", "Int")},
		Assignments: []*ast.AssignmentNode{assign("value", &ast.IntLiteral{Value: 1})},
	}
	caller := &ast.FunctionNode{
		Name: "Caller", Export: true,
		Returns: []*ast.ArgumentNode{arg("value", "Int")},
		Assignments: []*ast.AssignmentNode{assign("value", &ast.FunctionCall{
			Name: "Helper", External: false,
		})},
	}
	mod := &ast.ModuleNode{Name: "M", Export: true, Functions: []*ast.FunctionNode{helper, caller}}
	root := &ast.Context{Modules: []*ast.ModuleNode{mod}}

	_, errs := ir.Build(root, registry.New())
	require.NotEmpty(t, errs)
	var unresolved *ir.ErrUnresolvedCall
	require.ErrorAs(t, errs[0], &unresolved)
}

func TestBuildAmbiguousCallIsReported(t *testing.T) {
	makeHelper := func() *ast.FunctionNode {
		return &ast.FunctionNode{
			Name: "Helper", Export: true,
			Returns:     []*ast.ArgumentNode{arg("value", "Int")},
			Assignments: []*ast.AssignmentNode{assign("value", &ast.IntLiteral{Value: 1})},
		}
	}
	a := &ast.ModuleNode{Name: "A", Export: true, Functions: []*ast.FunctionNode{makeHelper()}}
	b := &ast.ModuleNode{Name: "B", Export: true, Functions: []*ast.FunctionNode{makeHelper()}}
	caller := &ast.FunctionNode{
		Name: "Caller", Export: true,
		Returns: []*ast.ArgumentNode{arg("value", "Int")},
		Assignments: []*ast.AssignmentNode{assign("value", &ast.FunctionCall{
			Name: "Helper", External: false,
		})},
	}
	root := &ast.ModuleNode{Name: "R", Export: true, Modules: []*ast.ModuleNode{a, b}, Functions: []*ast.FunctionNode{caller}}

	_, errs := ir.Build(&ast.Context{Modules: []*ast.ModuleNode{root}}, registry.New())
	require.NotEmpty(t, errs)
	var ambiguous *ir.ErrAmbiguousCall
	require.ErrorAs(t, errs[0], &ambiguous)
	assert.Len(t, ambiguous.Candidates, 2)
}

func TestBuildDetectsCircularDependency(t *testing.T) {
	fn := &ast.FunctionNode{
		Name: "Loop", Export: true,
		Assignments: []*ast.AssignmentNode{
			assign("x", &ast.Variable{Name: "y"}),
			assign("y", &ast.Variable{Name: "x"}),
		},
	}
	mod := &ast.ModuleNode{Name: "M", Export: true, Functions: []*ast.FunctionNode{fn}}

	_, errs := ir.Build(&ast.Context{Modules: []*ast.ModuleNode{mod}}, registry.New())
	require.NotEmpty(t, errs)
	var circular *ir.ErrCircularDependency
	require.ErrorAs(t, errs[0], &circular)
}

func TestBuildReportsUnknownIdentifier(t *testing.T) {
	fn := &ast.FunctionNode{
		Name: "Lost", Export: true,
		Assignments: []*ast.AssignmentNode{assign("x", &ast.Variable{Name: "ghost"})},
	}
	mod := &ast.ModuleNode{Name: "M", Export: true, Functions: []*ast.FunctionNode{fn}}

	_, errs := ir.Build(&ast.Context{Modules: []*ast.ModuleNode{mod}}, registry.New())
	require.NotEmpty(t, errs)
	var unknown *ir.ErrUnknownIdentifier
	require.ErrorAs(t, errs[0], &unknown)
}

func TestBuildResolvesStructReturnType(t *testing.T) {
	root := mathContext()
	math := root.Modules[0]
	vector := math.Modules[0]
	makePoint := &ast.FunctionNode{
		Name: "Origin", Export: true,
		Params:      []*ast.ArgumentNode{arg("value", "Point")},
		Returns:     []*ast.ArgumentNode{arg("value", "Point")},
		Assignments: []*ast.AssignmentNode{},
	}
	vector.Functions = append(vector.Functions, makePoint)

	ctx, errs := ir.Build(root, mathRegistry(t))
	require.Empty(t, errs)

	origin, ok := ctx.LookupFunction(ir.Path{"Math", "Vector", "Origin"})
	require.True(t, ok)
	require.Equal(t, datatype.Struct, origin.Result.Kind())
	assert.Equal(t, "Point", origin.Result.StructName())
	require.Len(t, origin.Result.StructFields(), 2)
}

func TestBuildOrdersDependentAssignmentsBeforeUse(t *testing.T) {
	fn := &ast.FunctionNode{
		Name: "Chain", Export: true,
		Returns: []*ast.ArgumentNode{arg("value", "Int")},
		Assignments: []*ast.AssignmentNode{
			// Declared out of dependency order: value reads b, b reads a.
			assign("value", &ast.Variable{Name: "b"}),
			assign("b", &ast.Variable{Name: "a"}),
			assign("a", &ast.IntLiteral{Value: 7}),
		},
	}
	mod := &ast.ModuleNode{Name: "M", Export: true, Functions: []*ast.FunctionNode{fn}}

	ctx, errs := ir.Build(&ast.Context{Modules: []*ast.ModuleNode{mod}}, registry.New())
	require.Empty(t, errs)

	chain, ok := ctx.LookupFunction(ir.Path{"M", "Chain"})
	require.True(t, ok)
	require.Len(t, chain.Nodes, 1)
	assert.Equal(t, ir.CallIntConstant, chain.Nodes[0].Call.Kind())
	assert.Equal(t, int64(7), chain.Nodes[0].Call.IntValue())

	require.Len(t, chain.Results, 1)
	assert.Equal(t, ir.HiddenInput(0), chain.Results[0])
}
