// Package stdlib registers the small set of external functions every
// compiled Vertex program needs to do anything at all: the surface
// grammar has no operator syntax (see internal/parser), so even
// `a + b` is written as `extern AddInt(a, b)` and must resolve against a
// host-registered Callback (spec.md §6 host extension API). The CLI
// (cmd/vertex) registers this package's functions before compiling or
// running a source file; an embedder that wants different arithmetic,
// or none at all, registers its own set against a fresh
// internal/registry.Registry instead — stdlib is a convenience for the
// CLI boundary, not part of the language's contract.
package stdlib

import (
	"github.com/vertexlang/vertex/internal/datatype"
	"github.com/vertexlang/vertex/internal/registry"
	"github.com/vertexlang/vertex/internal/value"
)

// Register adds every stdlib function to reg, failing on the first
// registration error (a name collision with something already
// registered).
func Register(reg *registry.Registry) error {
	for _, fn := range functions {
		if err := reg.Register(fn.name, fn.callback, fn.inputs, fn.output); err != nil {
			return err
		}
	}
	return nil
}

type entry struct {
	name     string
	callback registry.Callback
	inputs   []datatype.Type
	output   datatype.Type
}

var (
	intT   = datatype.PrimitiveInt()
	floatT = datatype.PrimitiveFloat()
	boolT  = datatype.PrimitiveBool()
)

var functions = []entry{
	{"AddInt", binaryInt(func(a, b int64) int64 { return a + b }), []datatype.Type{intT, intT}, intT},
	{"SubInt", binaryInt(func(a, b int64) int64 { return a - b }), []datatype.Type{intT, intT}, intT},
	{"MulInt", binaryInt(func(a, b int64) int64 { return a * b }), []datatype.Type{intT, intT}, intT},
	{"DivInt", binaryIntFallible(func(a, b int64) (int64, bool) {
		if b == 0 {
			return 0, false
		}
		return a / b, true
	}), []datatype.Type{intT, intT}, intT},
	{"ModInt", binaryIntFallible(func(a, b int64) (int64, bool) {
		if b == 0 {
			return 0, false
		}
		return a % b, true
	}), []datatype.Type{intT, intT}, intT},

	{"AddFloat", binaryFloat(func(a, b float64) float64 { return a + b }), []datatype.Type{floatT, floatT}, floatT},
	{"SubFloat", binaryFloat(func(a, b float64) float64 { return a - b }), []datatype.Type{floatT, floatT}, floatT},
	{"MulFloat", binaryFloat(func(a, b float64) float64 { return a * b }), []datatype.Type{floatT, floatT}, floatT},
	{"DivFloat", binaryFloat(func(a, b float64) float64 { return a / b }), []datatype.Type{floatT, floatT}, floatT},

	{"EqInt", compareInt(func(a, b int64) bool { return a == b }), []datatype.Type{intT, intT}, boolT},
	{"LtInt", compareInt(func(a, b int64) bool { return a < b }), []datatype.Type{intT, intT}, boolT},
	{"GtInt", compareInt(func(a, b int64) bool { return a > b }), []datatype.Type{intT, intT}, boolT},

	{"Not", func(inputs []value.Value) value.Value { return value.NewBool(!inputs[0].Bool()) }, []datatype.Type{boolT}, boolT},
	{"And", func(inputs []value.Value) value.Value { return value.NewBool(inputs[0].Bool() && inputs[1].Bool()) }, []datatype.Type{boolT, boolT}, boolT},
	{"Or", func(inputs []value.Value) value.Value { return value.NewBool(inputs[0].Bool() || inputs[1].Bool()) }, []datatype.Type{boolT, boolT}, boolT},
}

func binaryInt(op func(a, b int64) int64) registry.Callback {
	return func(inputs []value.Value) value.Value {
		return value.NewInt(op(inputs[0].Int(), inputs[1].Int()))
	}
}

// binaryIntFallible backs DivInt/ModInt: a zero divisor has no integer
// result, so it reports a value.Error rather than panicking or
// overflowing — a data-dependent runtime condition, not a programmer
// contract violation (spec.md §7).
func binaryIntFallible(op func(a, b int64) (int64, bool)) registry.Callback {
	return func(inputs []value.Value) value.Value {
		result, ok := op(inputs[0].Int(), inputs[1].Int())
		if !ok {
			return value.NewError("division by zero")
		}
		return value.NewInt(result)
	}
}

func binaryFloat(op func(a, b float64) float64) registry.Callback {
	return func(inputs []value.Value) value.Value {
		return value.NewFloat(op(inputs[0].Float(), inputs[1].Float()))
	}
}

func compareInt(op func(a, b int64) bool) registry.Callback {
	return func(inputs []value.Value) value.Value {
		return value.NewBool(op(inputs[0].Int(), inputs[1].Int()))
	}
}
