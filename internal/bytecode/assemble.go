package bytecode

import (
	"fmt"

	"github.com/vertexlang/vertex/internal/ir"
	"github.com/vertexlang/vertex/internal/registry"
	"github.com/vertexlang/vertex/internal/value"
)

// Assemble flattens a fully resolved ir.Context into a Program. Every
// ir.CallInternal is rewritten to a table index using ctx's own function
// order; every ir.CallExternal is resolved against reg and interned by
// name; every constant call is interned by structural equality
// (value.Value.HashKey).
//
// ctx must be the output of a successful ir.Build (no errors returned). A
// Context that still carries an ir.CallUnresolved node, or an external
// call whose name reg doesn't have, means ir.Build's own invariants were
// violated by the caller — Assemble panics rather than returning an error,
// since there is no way to recover a sane Program from it.
func Assemble(ctx *ir.Context, reg *registry.Registry) *Program {
	p := &Program{}

	index := make(map[string]int, len(ctx.Functions))
	for i, f := range ctx.Functions {
		index[f.Path.String()] = i
	}

	constIndex := make(map[string]int)
	externIndex := make(map[string]int)

	for _, fn := range ctx.Functions {
		internal := InternalFunction{
			Path:       fn.Path,
			NumParams:  len(fn.Params),
			Results:    append([]ir.Input(nil), fn.Results...),
			Operations: make([]Operation, 0, len(fn.Nodes)),
		}

		for _, node := range fn.Nodes {
			call := resolveCall(p, &node, index, constIndex, externIndex, reg)

			inputs := make([]ir.Input, len(node.Inputs))
			copy(inputs, node.Inputs)

			internal.Operations = append(internal.Operations, Operation{Call: call, Inputs: inputs})
		}

		p.InternalFunctions = append(p.InternalFunctions, internal)
	}

	return p
}

func resolveCall(
	p *Program, node *ir.Node, funcIndex map[string]int, constIndex, externIndex map[string]int,
	reg *registry.Registry,
) FunctionCall {
	switch node.Call.Kind() {
	case ir.CallInternal:
		path := node.Call.Path().String()
		i, ok := funcIndex[path]
		if !ok {
			panic(fmt.Sprintf("bytecode: internal call to unknown function %q", path))
		}
		return FunctionCall{Kind: CallInternal, Index: i}

	case ir.CallExternal:
		return addExternalFunction(p, externIndex, node.Call.Name(), reg)

	case ir.CallIntConstant:
		return addConstant(p, constIndex, value.NewInt(node.Call.IntValue()))
	case ir.CallFloatConstant:
		return addConstant(p, constIndex, value.NewFloat(node.Call.FloatValue()))
	case ir.CallStringConstant:
		return addConstant(p, constIndex, value.NewString(node.Call.StringValue()))
	case ir.CallCharConstant:
		return addConstant(p, constIndex, value.NewChar(node.Call.CharValue()))
	case ir.CallBoolConstant:
		return addConstant(p, constIndex, value.NewBool(node.Call.BoolValue()))

	case ir.CallUnresolved:
		panic(fmt.Sprintf("bytecode: unresolved call %q reached assembly", node.Call.Name()))

	default:
		panic(fmt.Sprintf("bytecode: unhandled call kind %s", node.Call.Kind()))
	}
}

func addConstant(p *Program, seen map[string]int, v value.Value) FunctionCall {
	key := v.HashKey()
	if i, ok := seen[key]; ok {
		return FunctionCall{Kind: CallConstant, Index: i}
	}
	p.Constants = append(p.Constants, v)
	i := len(p.Constants) - 1
	seen[key] = i
	return FunctionCall{Kind: CallConstant, Index: i}
}

func addExternalFunction(p *Program, seen map[string]int, name string, reg *registry.Registry) FunctionCall {
	if i, ok := seen[name]; ok {
		return FunctionCall{Kind: CallExternal, Index: i}
	}
	meta, ok := reg.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("bytecode: unknown external function %q", name))
	}
	p.ExternalFunctions = append(p.ExternalFunctions, ExternalFunction{Name: name, Func: meta.Func})
	i := len(p.ExternalFunctions) - 1
	seen[name] = i
	return FunctionCall{Kind: CallExternal, Index: i}
}
