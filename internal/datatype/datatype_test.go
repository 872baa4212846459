package datatype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vertexlang/vertex/internal/datatype"
)

func TestFromNamePrimitives(t *testing.T) {
	cases := map[string]datatype.Kind{
		"Int":    datatype.Int,
		"Float":  datatype.Float,
		"String": datatype.String,
		"Char":   datatype.Char,
		"Bool":   datatype.Bool,
		"Error":  datatype.Error,
		"Null":   datatype.Null,
	}
	for name, kind := range cases {
		got := datatype.FromName(name)
		assert.Equal(t, kind, got.Kind())
		assert.True(t, got.IsResolved())
	}
}

func TestFromNameList(t *testing.T) {
	got := datatype.FromName("Int[]")
	assert.Equal(t, datatype.List, got.Kind())
	assert.Equal(t, datatype.Int, got.Elem().Kind())
	assert.True(t, got.IsResolved())
}

func TestFromNameArray(t *testing.T) {
	got := datatype.FromName("Int[4]")
	assert.Equal(t, datatype.Array, got.Kind())
	assert.Equal(t, uint32(4), got.ArrayLen())
	assert.Equal(t, datatype.Int, got.Elem().Kind())
}

func TestFromNameOptionAndResult(t *testing.T) {
	opt := datatype.FromName("String?")
	assert.Equal(t, datatype.Option, opt.Kind())
	assert.Equal(t, datatype.String, opt.Elem().Kind())

	res := datatype.FromName("Bool!")
	assert.Equal(t, datatype.Result, res.Kind())
	assert.Equal(t, datatype.Bool, res.Elem().Kind())
}

func TestFromNameTuple(t *testing.T) {
	got := datatype.FromName("(Int,String,Bool)")
	assert.Equal(t, datatype.Tuple, got.Kind())
	elems := got.TupleElems()
	assert.Len(t, elems, 3)
	assert.Equal(t, datatype.Int, elems[0].Kind())
	assert.Equal(t, datatype.String, elems[1].Kind())
	assert.Equal(t, datatype.Bool, elems[2].Kind())
}

func TestFromNameDictionary(t *testing.T) {
	got := datatype.FromName("{String:Int}")
	assert.Equal(t, datatype.Dictionary, got.Kind())
	assert.Equal(t, datatype.String, got.DictKey().Kind())
	assert.Equal(t, datatype.Int, got.DictVal().Kind())
}

func TestFromNameNestedComposites(t *testing.T) {
	got := datatype.FromName("Int[][]?")
	assert.Equal(t, datatype.Option, got.Kind())
	list := got.Elem()
	assert.Equal(t, datatype.List, list.Kind())
	inner := list.Elem()
	assert.Equal(t, datatype.List, inner.Kind())
	assert.Equal(t, datatype.Int, inner.Elem().Kind())
}

func TestFromNameUnresolvedFallback(t *testing.T) {
	got := datatype.FromName("Point")
	assert.Equal(t, datatype.Unresolved, got.Kind())
	assert.Equal(t, "Point", got.UnresolvedName())
	assert.False(t, got.IsResolved())
}

func TestIsResolvedRecursesThroughComposites(t *testing.T) {
	unresolvedInside := datatype.NewList(datatype.NewUnresolved("Point"))
	assert.False(t, unresolvedInside.IsResolved())

	resolvedTuple := datatype.NewTuple([]datatype.Type{
		datatype.PrimitiveInt(),
		datatype.NewOption(datatype.PrimitiveString()),
	})
	assert.True(t, resolvedTuple.IsResolved())

	unresolvedStruct := datatype.NewStruct("Point", []datatype.Field{
		{Name: "x", Type: datatype.PrimitiveFloat()},
		{Name: "y", Type: datatype.NewUnresolved("Missing")},
	})
	assert.False(t, unresolvedStruct.IsResolved())
}

func TestEqual(t *testing.T) {
	a := datatype.FromName("(Int,String)")
	b := datatype.FromName("(Int,String)")
	c := datatype.FromName("(Int,Bool)")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestStringRoundTrip(t *testing.T) {
	for _, name := range []string{"Int[]", "Int[4]", "String?", "Bool!", "(Int,String)", "{String:Int}"} {
		got := datatype.FromName(name)
		assert.Equal(t, name, got.String())
	}
}
