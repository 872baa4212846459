// Package value implements the tagged, immutable value model shared by the
// compiler's constant pool and the virtual machine's runtime data.
//
// Values are represented as a small tagged struct rather than an interface
// hierarchy: the union of kinds is closed and known in advance, and the
// composite kinds (List, Array, Tuple, Dictionary) hold their elements in a
// Go slice, which already gives the "cheap duplication via shared ownership"
// property the value model wants (copying a Value copies a slice header, not
// its backing array).
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant of the tagged union a Value holds.
type Kind uint8

const (
	Null Kind = iota
	Int
	Float
	String
	Char
	Bool
	Error
	Option
	Result
	List
	Array
	Tuple
	Dictionary
	Struct
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "Null"
	case Int:
		return "Int"
	case Float:
		return "Float"
	case String:
		return "String"
	case Char:
		return "Char"
	case Bool:
		return "Bool"
	case Error:
		return "Error"
	case Option:
		return "Option"
	case Result:
		return "Result"
	case List:
		return "List"
	case Array:
		return "Array"
	case Tuple:
		return "Tuple"
	case Dictionary:
		return "Dictionary"
	case Struct:
		return "Struct"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is an immutable, tagged data value. The zero Value is Null.
type Value struct {
	kind Kind

	i  int64
	f  float64
	s  string
	ch rune
	b  bool

	// elems holds List/Array/Tuple elements, or the single wrapped value for
	// Option/Result (len 0 means Option's None).
	elems []Value

	keys []Value // Dictionary keys, parallel to vals
	vals []Value // Dictionary values

	typeName string // Struct type name
}

// NewNull returns the Null value.
func NewNull() Value { return Value{kind: Null} }

// NewInt returns an Int value.
func NewInt(i int64) Value { return Value{kind: Int, i: i} }

// NewFloat returns a Float value.
func NewFloat(f float64) Value { return Value{kind: Float, f: f} }

// NewString returns a String value.
func NewString(s string) Value { return Value{kind: String, s: s} }

// NewChar returns a Char value.
func NewChar(r rune) Value { return Value{kind: Char, ch: r} }

// NewBool returns a Bool value.
func NewBool(b bool) Value { return Value{kind: Bool, b: b} }

// NewError returns an Error value wrapping the given message.
func NewError(message string) Value { return Value{kind: Error, s: message} }

// NewOptionSome returns an Option wrapping inner.
func NewOptionSome(inner Value) Value { return Value{kind: Option, elems: []Value{inner}} }

// NewOptionNone returns an empty Option.
func NewOptionNone() Value { return Value{kind: Option} }

// NewResultOk returns a Result wrapping a successful inner value.
func NewResultOk(inner Value) Value { return Value{kind: Result, b: true, elems: []Value{inner}} }

// NewResultErr returns a Result wrapping an error value.
func NewResultErr(inner Value) Value { return Value{kind: Result, b: false, elems: []Value{inner}} }

// NewList returns a List value over the given elements.
func NewList(elems []Value) Value { return Value{kind: List, elems: elems} }

// NewArray returns a fixed-length Array value over the given elements.
func NewArray(elems []Value) Value { return Value{kind: Array, elems: elems} }

// NewTuple returns a Tuple value over the given elements.
func NewTuple(elems []Value) Value { return Value{kind: Tuple, elems: elems} }

// NewDictionary returns a Dictionary value. Keys must be pairwise distinct
// under Equal; ErrDuplicateKey is returned otherwise.
func NewDictionary(keys, vals []Value) (Value, error) {
	if len(keys) != len(vals) {
		return Value{}, fmt.Errorf("value: dictionary keys/values length mismatch: %d != %d", len(keys), len(vals))
	}
	for i := range keys {
		for j := i + 1; j < len(keys); j++ {
			if keys[i].Equal(keys[j]) {
				return Value{}, ErrDuplicateKey
			}
		}
	}
	return Value{kind: Dictionary, keys: keys, vals: vals}, nil
}

// ErrDuplicateKey is returned by NewDictionary when two keys are equal.
var ErrDuplicateKey = fmt.Errorf("value: duplicate dictionary key")

// NewStruct returns a Struct value with the given type name and ordered
// field values.
func NewStruct(typeName string, fields []Value) Value {
	return Value{kind: Struct, typeName: typeName, elems: fields}
}

// Kind reports which variant this value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the Null value.
func (v Value) IsNull() bool { return v.kind == Null }

// Int returns the underlying int64. Panics if Kind() != Int.
func (v Value) Int() int64 {
	v.mustBe(Int)
	return v.i
}

// Float returns the underlying float64. Panics if Kind() != Float.
func (v Value) Float() float64 {
	v.mustBe(Float)
	return v.f
}

// String returns a human-readable rendering of v, not the underlying String
// payload — use Text for that.
func (v Value) String() string {
	var b strings.Builder
	v.write(&b)
	return b.String()
}

// Text returns the underlying string payload. Panics if Kind() != String.
func (v Value) Text() string {
	v.mustBe(String)
	return v.s
}

// Char returns the underlying rune. Panics if Kind() != Char.
func (v Value) Char() rune {
	v.mustBe(Char)
	return v.ch
}

// Bool returns the underlying bool. Panics if Kind() != Bool.
func (v Value) Bool() bool {
	v.mustBe(Bool)
	return v.b
}

// ErrorMessage returns the message of an Error value. Panics if Kind() != Error.
func (v Value) ErrorMessage() string {
	v.mustBe(Error)
	return v.s
}

// IsSome reports whether an Option value holds an inner value. Panics if
// Kind() != Option.
func (v Value) IsSome() bool {
	v.mustBe(Option)
	return len(v.elems) == 1
}

// IsOk reports whether a Result value wraps a success. Panics if
// Kind() != Result.
func (v Value) IsOk() bool {
	v.mustBe(Result)
	return v.b
}

// Inner returns the wrapped value of an Option/Result. Panics if there is no
// wrapped value (a None Option) or Kind() is neither.
func (v Value) Inner() Value {
	if v.kind != Option && v.kind != Result {
		panic(fmt.Sprintf("value: Inner() called on %s", v.kind))
	}
	if len(v.elems) == 0 {
		panic("value: Inner() called on an empty Option")
	}
	return v.elems[0]
}

// Elems returns the element slice of a List/Array/Tuple/Struct value.
// Panics otherwise.
func (v Value) Elems() []Value {
	switch v.kind {
	case List, Array, Tuple, Struct:
		return v.elems
	default:
		panic(fmt.Sprintf("value: Elems() called on %s", v.kind))
	}
}

// Len returns the number of elements of a List/Array/Tuple, or the number
// of entries of a Dictionary.
func (v Value) Len() int {
	switch v.kind {
	case List, Array, Tuple:
		return len(v.elems)
	case Dictionary:
		return len(v.keys)
	default:
		panic(fmt.Sprintf("value: Len() called on %s", v.kind))
	}
}

// DictKeys returns a Dictionary's keys, parallel to DictVals. Panics if
// Kind() != Dictionary.
func (v Value) DictKeys() []Value {
	v.mustBe(Dictionary)
	return v.keys
}

// DictVals returns a Dictionary's values, parallel to DictKeys. Panics if
// Kind() != Dictionary.
func (v Value) DictVals() []Value {
	v.mustBe(Dictionary)
	return v.vals
}

// DictGet looks up a key by Equal comparison.
func (v Value) DictGet(key Value) (Value, bool) {
	v.mustBe(Dictionary)
	for i, k := range v.keys {
		if k.Equal(key) {
			return v.vals[i], true
		}
	}
	return Value{}, false
}

// TypeName returns a Struct's declared type name. Panics if Kind() != Struct.
func (v Value) TypeName() string {
	v.mustBe(Struct)
	return v.typeName
}

func (v Value) mustBe(k Kind) {
	if v.kind != k {
		panic(fmt.Sprintf("value: expected %s, got %s", k, v.kind))
	}
}

// Equal reports structural equality. Float comparison is bit-pattern based
// (via math.Float64bits), not IEEE-754 equality, so that Float values are
// usable as map/dedup keys and NaN compares equal to itself.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Int:
		return v.i == other.i
	case Float:
		return math.Float64bits(v.f) == math.Float64bits(other.f)
	case String:
		return v.s == other.s
	case Char:
		return v.ch == other.ch
	case Bool:
		return v.b == other.b
	case Error:
		return v.s == other.s
	case Option:
		if len(v.elems) != len(other.elems) {
			return false
		}
		return len(v.elems) == 0 || v.elems[0].Equal(other.elems[0])
	case Result:
		if v.b != other.b {
			return false
		}
		return v.elems[0].Equal(other.elems[0])
	case List, Array, Tuple:
		if len(v.elems) != len(other.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(other.elems[i]) {
				return false
			}
		}
		return true
	case Dictionary:
		if len(v.keys) != len(other.keys) {
			return false
		}
		for i := range v.keys {
			if !v.keys[i].Equal(other.keys[i]) || !v.vals[i].Equal(other.vals[i]) {
				return false
			}
		}
		return true
	case Struct:
		if v.typeName != other.typeName || len(v.elems) != len(other.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(other.elems[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// HashKey returns a canonical string encoding of v suitable for use as a map
// key when deduplicating constants by structural equality (spec property 1).
// Two values are Equal iff their HashKey is identical.
func (v Value) HashKey() string {
	var b strings.Builder
	v.writeHashKey(&b)
	return b.String()
}

func (v Value) writeHashKey(b *strings.Builder) {
	b.WriteByte(byte(v.kind))
	b.WriteByte(':')
	switch v.kind {
	case Null:
	case Int:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case Float:
		b.WriteString(strconv.FormatUint(math.Float64bits(v.f), 16))
	case String, Error:
		b.WriteString(strconv.Quote(v.s))
	case Char:
		b.WriteString(strconv.QuoteRune(v.ch))
	case Bool:
		b.WriteString(strconv.FormatBool(v.b))
	case Option:
		if len(v.elems) == 0 {
			b.WriteString("none")
		} else {
			b.WriteString("some(")
			v.elems[0].writeHashKey(b)
			b.WriteByte(')')
		}
	case Result:
		b.WriteString(strconv.FormatBool(v.b))
		b.WriteByte('(')
		v.elems[0].writeHashKey(b)
		b.WriteByte(')')
	case List, Array, Tuple, Struct:
		if v.kind == Struct {
			b.WriteString(strconv.Quote(v.typeName))
		}
		b.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				b.WriteByte(',')
			}
			e.writeHashKey(b)
		}
		b.WriteByte(']')
	case Dictionary:
		b.WriteByte('{')
		for i := range v.keys {
			if i > 0 {
				b.WriteByte(',')
			}
			v.keys[i].writeHashKey(b)
			b.WriteByte('=')
			v.vals[i].writeHashKey(b)
		}
		b.WriteByte('}')
	}
}

func (v Value) write(b *strings.Builder) {
	switch v.kind {
	case Null:
		b.WriteString("null")
	case Int:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case Float:
		b.WriteString(strconv.FormatFloat(v.f, 'f', -1, 64))
	case String:
		b.WriteString(v.s)
	case Char:
		b.WriteRune(v.ch)
	case Bool:
		b.WriteString(strconv.FormatBool(v.b))
	case Error:
		fmt.Fprintf(b, "Error(%q)", v.s)
	case Option:
		if len(v.elems) == 0 {
			b.WriteString("None")
		} else {
			b.WriteString("Some(")
			v.elems[0].write(b)
			b.WriteByte(')')
		}
	case Result:
		if v.b {
			b.WriteString("Ok(")
		} else {
			b.WriteString("Err(")
		}
		v.elems[0].write(b)
		b.WriteByte(')')
	case List, Array, Tuple:
		open, close := '[', ']'
		if v.kind == Tuple {
			open, close = '(', ')'
		}
		b.WriteRune(open)
		for i, e := range v.elems {
			if i > 0 {
				b.WriteString(", ")
			}
			e.write(b)
		}
		b.WriteRune(close)
	case Dictionary:
		b.WriteByte('{')
		for i := range v.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			v.keys[i].write(b)
			b.WriteString(": ")
			v.vals[i].write(b)
		}
		b.WriteByte('}')
	case Struct:
		b.WriteString(v.typeName)
		b.WriteString(" { ")
		for i, e := range v.elems {
			if i > 0 {
				b.WriteString(", ")
			}
			e.write(b)
		}
		b.WriteString(" }")
	}
}
