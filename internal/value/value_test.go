package value_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexlang/vertex/internal/value"
)

func TestEqualPrimitives(t *testing.T) {
	assert.True(t, value.NewInt(5).Equal(value.NewInt(5)))
	assert.False(t, value.NewInt(5).Equal(value.NewInt(6)))
	assert.True(t, value.NewString("hi").Equal(value.NewString("hi")))
	assert.True(t, value.NewBool(true).Equal(value.NewBool(true)))
	assert.True(t, value.NewNull().Equal(value.NewNull()))
	assert.False(t, value.NewNull().Equal(value.NewInt(0)))
}

func TestFloatEqualityIsBitPattern(t *testing.T) {
	nan := value.NewFloat(math.NaN())
	assert.True(t, nan.Equal(nan), "NaN must equal itself under bit-pattern equality")

	pos := value.NewFloat(0.0)
	neg := value.NewFloat(math.Copysign(0, -1))
	assert.False(t, pos.Equal(neg), "+0.0 and -0.0 have different bit patterns")

	assert.Equal(t, pos.HashKey(), value.NewFloat(0.0).HashKey())
	assert.NotEqual(t, pos.HashKey(), neg.HashKey())
}

func TestCompositeEquality(t *testing.T) {
	a := value.NewList([]value.Value{value.NewInt(1), value.NewInt(2)})
	b := value.NewList([]value.Value{value.NewInt(1), value.NewInt(2)})
	c := value.NewList([]value.Value{value.NewInt(2), value.NewInt(1)})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, a.HashKey(), b.HashKey())
}

func TestDictionaryRejectsDuplicateKeys(t *testing.T) {
	_, err := value.NewDictionary(
		[]value.Value{value.NewInt(1), value.NewInt(1)},
		[]value.Value{value.NewString("a"), value.NewString("b")},
	)
	require.ErrorIs(t, err, value.ErrDuplicateKey)
}

func TestDictionaryGet(t *testing.T) {
	d, err := value.NewDictionary(
		[]value.Value{value.NewString("x"), value.NewString("y")},
		[]value.Value{value.NewInt(1), value.NewInt(2)},
	)
	require.NoError(t, err)

	got, ok := d.DictGet(value.NewString("y"))
	require.True(t, ok)
	assert.Equal(t, int64(2), got.Int())

	_, ok = d.DictGet(value.NewString("z"))
	assert.False(t, ok)
}

func TestOptionAndResult(t *testing.T) {
	none := value.NewOptionNone()
	assert.False(t, none.IsSome())

	some := value.NewOptionSome(value.NewInt(7))
	assert.True(t, some.IsSome())
	assert.Equal(t, int64(7), some.Inner().Int())

	ok := value.NewResultOk(value.NewInt(1))
	assert.True(t, ok.IsOk())

	errRes := value.NewResultErr(value.NewError("boom"))
	assert.False(t, errRes.IsOk())
	assert.Equal(t, "boom", errRes.Inner().ErrorMessage())
}

func TestStructEquality(t *testing.T) {
	a := value.NewStruct("Point", []value.Value{value.NewFloat(1), value.NewFloat(2)})
	b := value.NewStruct("Point", []value.Value{value.NewFloat(1), value.NewFloat(2)})
	c := value.NewStruct("Other", []value.Value{value.NewFloat(1), value.NewFloat(2)})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestStringRendering(t *testing.T) {
	assert.Equal(t, "5", value.NewInt(5).String())
	assert.Equal(t, "Some(3)", value.NewOptionSome(value.NewInt(3)).String())
	assert.Equal(t, "None", value.NewOptionNone().String())
	assert.Equal(t, `Error("boom")`, value.NewError("boom").String())
}
