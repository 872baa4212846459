// Package datatype implements the compiler's type model (spec component
// C3): primitive and composite types, the type-name mini-grammar, and the
// resolved/unresolved distinction used throughout IR construction.
package datatype

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which variant of Type is held.
type Kind uint8

const (
	Int Kind = iota
	Float
	String
	Char
	Bool
	Error
	Null
	List
	Array
	Option
	Result
	Tuple
	Dictionary
	Struct
	Unresolved
	Unknown
)

func (k Kind) String() string {
	switch k {
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
	case Null:
		return "Null"
	case List:
		return "List"
	case Array:
		return "Array"
	case Option:
		return "Option"
	case Result:
		return "Result"
	case Tuple:
		return "Tuple"
	case Dictionary:
		return "Dictionary"
	case Struct:
		return "Struct"
	case Unresolved:
		return "Unresolved"
	case Unknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Field is a named field within a Struct type.
type Field struct {
	Name string
	Type Type
}

// Type is the compiler's intermediate-level representation of a data type.
type Type struct {
	kind Kind

	elem     *Type // List, Array, Option, Result element
	arrayLen uint32

	tupleElems []Type

	dictKey *Type
	dictVal *Type

	structName   string
	structFields []Field

	unresolvedName string
}

func primitive(k Kind) Type { return Type{kind: k} }

// PrimitiveInt, PrimitiveFloat, ... construct the seven primitive types.
func PrimitiveInt() Type    { return primitive(Int) }
func PrimitiveFloat() Type  { return primitive(Float) }
func PrimitiveString() Type { return primitive(String) }
func PrimitiveChar() Type   { return primitive(Char) }
func PrimitiveBool() Type   { return primitive(Bool) }
func PrimitiveError() Type  { return primitive(Error) }
func PrimitiveNull() Type   { return primitive(Null) }

// NewList returns a List(elem) type.
func NewList(elem Type) Type { return Type{kind: List, elem: &elem} }

// NewArray returns an Array(elem, n) type.
func NewArray(elem Type, n uint32) Type { return Type{kind: Array, elem: &elem, arrayLen: n} }

// NewOption returns an Option(elem) type.
func NewOption(elem Type) Type { return Type{kind: Option, elem: &elem} }

// NewResult returns a Result(elem) type.
func NewResult(elem Type) Type { return Type{kind: Result, elem: &elem} }

// NewTuple returns a Tuple(elems...) type.
func NewTuple(elems []Type) Type { return Type{kind: Tuple, tupleElems: elems} }

// NewDictionary returns a Dictionary(key, val) type.
func NewDictionary(key, val Type) Type { return Type{kind: Dictionary, dictKey: &key, dictVal: &val} }

// NewStruct returns a Struct(name, fields) type.
func NewStruct(name string, fields []Field) Type {
	return Type{kind: Struct, structName: name, structFields: fields}
}

// NewUnresolved returns an Unresolved(name) type.
func NewUnresolved(name string) Type { return Type{kind: Unresolved, unresolvedName: name} }

// NewUnknown returns the Unknown type.
func NewUnknown() Type { return Type{kind: Unknown} }

// Kind reports which variant this type holds.
func (t Type) Kind() Kind { return t.kind }

// Elem returns the element type of List/Array/Option/Result. Panics
// otherwise.
func (t Type) Elem() Type {
	if t.elem == nil {
		panic(fmt.Sprintf("datatype: Elem() called on %s", t.kind))
	}
	return *t.elem
}

// ArrayLen returns an Array type's fixed length. Panics if Kind() != Array.
func (t Type) ArrayLen() uint32 {
	if t.kind != Array {
		panic(fmt.Sprintf("datatype: ArrayLen() called on %s", t.kind))
	}
	return t.arrayLen
}

// TupleElems returns a Tuple type's element types. Panics if Kind() != Tuple.
func (t Type) TupleElems() []Type {
	if t.kind != Tuple {
		panic(fmt.Sprintf("datatype: TupleElems() called on %s", t.kind))
	}
	return t.tupleElems
}

// DictKey and DictVal return a Dictionary type's key/value types. Panic if
// Kind() != Dictionary.
func (t Type) DictKey() Type {
	if t.kind != Dictionary {
		panic(fmt.Sprintf("datatype: DictKey() called on %s", t.kind))
	}
	return *t.dictKey
}

func (t Type) DictVal() Type {
	if t.kind != Dictionary {
		panic(fmt.Sprintf("datatype: DictVal() called on %s", t.kind))
	}
	return *t.dictVal
}

// StructName and StructFields return a Struct type's name/fields. Panic if
// Kind() != Struct.
func (t Type) StructName() string {
	if t.kind != Struct {
		panic(fmt.Sprintf("datatype: StructName() called on %s", t.kind))
	}
	return t.structName
}

func (t Type) StructFields() []Field {
	if t.kind != Struct {
		panic(fmt.Sprintf("datatype: StructFields() called on %s", t.kind))
	}
	return t.structFields
}

// UnresolvedName returns the unbound type name. Panics if Kind() != Unresolved.
func (t Type) UnresolvedName() string {
	if t.kind != Unresolved {
		panic(fmt.Sprintf("datatype: UnresolvedName() called on %s", t.kind))
	}
	return t.unresolvedName
}

// IsResolved reports whether t contains no Unresolved/Unknown leaf,
// recursing into composite arms (spec §4.1 is_resolved).
func (t Type) IsResolved() bool {
	switch t.kind {
	case Unresolved, Unknown:
		return false
	case Int, Float, String, Char, Bool, Error, Null:
		return true
	case List, Option, Result:
		return t.elem.IsResolved()
	case Array:
		return t.elem.IsResolved()
	case Tuple:
		for _, e := range t.tupleElems {
			if !e.IsResolved() {
				return false
			}
		}
		return true
	case Dictionary:
		return t.dictKey.IsResolved() && t.dictVal.IsResolved()
	case Struct:
		for _, f := range t.structFields {
			if !f.Type.IsResolved() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Equal reports structural equality between two types.
func (t Type) Equal(other Type) bool {
	if t.kind != other.kind {
		return false
	}
	switch t.kind {
	case Int, Float, String, Char, Bool, Error, Null, Unknown:
		return true
	case List, Option, Result:
		return t.elem.Equal(*other.elem)
	case Array:
		return t.arrayLen == other.arrayLen && t.elem.Equal(*other.elem)
	case Tuple:
		if len(t.tupleElems) != len(other.tupleElems) {
			return false
		}
		for i := range t.tupleElems {
			if !t.tupleElems[i].Equal(other.tupleElems[i]) {
				return false
			}
		}
		return true
	case Dictionary:
		return t.dictKey.Equal(*other.dictKey) && t.dictVal.Equal(*other.dictVal)
	case Struct:
		if t.structName != other.structName || len(t.structFields) != len(other.structFields) {
			return false
		}
		for i := range t.structFields {
			if t.structFields[i].Name != other.structFields[i].Name ||
				!t.structFields[i].Type.Equal(other.structFields[i].Type) {
				return false
			}
		}
		return true
	case Unresolved:
		return t.unresolvedName == other.unresolvedName
	default:
		return false
	}
}

// String renders t using the same suffix notation FromName parses.
func (t Type) String() string {
	switch t.kind {
	case Int, Float, String, Char, Bool, Error, Null:
		return t.kind.String()
	case Unknown:
		return "Unknown"
	case Unresolved:
		return t.unresolvedName
	case List:
		return t.elem.String() + "[]"
	case Array:
		return fmt.Sprintf("%s[%d]", t.elem.String(), t.arrayLen)
	case Option:
		return t.elem.String() + "?"
	case Result:
		return t.elem.String() + "!"
	case Tuple:
		parts := make([]string, len(t.tupleElems))
		for i, e := range t.tupleElems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ",") + ")"
	case Dictionary:
		return fmt.Sprintf("{%s:%s}", t.dictKey.String(), t.dictVal.String())
	case Struct:
		return t.structName
	default:
		return "?"
	}
}

// FromName maps a type-name string to a Type (spec §4.1 type_from_name).
//
// Primitive names are matched literally. Otherwise the suffix grammar is
// tried, in order: list (T[]), array (T[n]), option (T?), result (T!),
// tuple ((T,...)), dictionary ({K:V}). Anything else yields Unresolved(s).
func FromName(name string) Type {
	name = strings.TrimSpace(name)
	switch name {
	case "Int":
		return PrimitiveInt()
	case "Float":
		return PrimitiveFloat()
	case "String":
		return PrimitiveString()
	case "Char":
		return PrimitiveChar()
	case "Bool":
		return PrimitiveBool()
	case "Error":
		return PrimitiveError()
	case "Null":
		return PrimitiveNull()
	}

	if t, ok := tryList(name); ok {
		return t
	}
	if t, ok := tryArray(name); ok {
		return t
	}
	if t, ok := tryOption(name); ok {
		return t
	}
	if t, ok := tryResult(name); ok {
		return t
	}
	if t, ok := tryTuple(name); ok {
		return t
	}
	if t, ok := tryDictionary(name); ok {
		return t
	}

	return NewUnresolved(name)
}

func tryList(name string) (Type, bool) {
	if strings.HasSuffix(name, "[]") && len(name) > 2 {
		return NewList(FromName(name[:len(name)-2])), true
	}
	return Type{}, false
}

func tryArray(name string) (Type, bool) {
	if !strings.HasSuffix(name, "]") {
		return Type{}, false
	}
	open := strings.LastIndexByte(name, '[')
	if open < 0 || open == len(name)-2 {
		// "[]" (empty) is the list grammar, not array.
		return Type{}, false
	}
	inner := name[open+1 : len(name)-1]
	n, err := strconv.ParseUint(inner, 10, 32)
	if err != nil {
		return Type{}, false
	}
	return NewArray(FromName(name[:open]), uint32(n)), true
}

func tryOption(name string) (Type, bool) {
	if strings.HasSuffix(name, "?") && len(name) > 1 {
		return NewOption(FromName(name[:len(name)-1])), true
	}
	return Type{}, false
}

func tryResult(name string) (Type, bool) {
	if strings.HasSuffix(name, "!") && len(name) > 1 {
		return NewResult(FromName(name[:len(name)-1])), true
	}
	return Type{}, false
}

func tryTuple(name string) (Type, bool) {
	if !strings.HasPrefix(name, "(") || !strings.HasSuffix(name, ")") {
		return Type{}, false
	}
	inner := name[1 : len(name)-1]
	parts, ok := splitTopLevel(inner, ',')
	if !ok || len(parts) == 0 {
		return Type{}, false
	}
	elems := make([]Type, len(parts))
	for i, p := range parts {
		elems[i] = FromName(p)
	}
	return NewTuple(elems), true
}

func tryDictionary(name string) (Type, bool) {
	if !strings.HasPrefix(name, "{") || !strings.HasSuffix(name, "}") {
		return Type{}, false
	}
	inner := name[1 : len(name)-1]
	parts, ok := splitTopLevel(inner, ':')
	if !ok || len(parts) != 2 {
		return Type{}, false
	}
	return NewDictionary(FromName(parts[0]), FromName(parts[1])), true
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside
// balanced (), [], or {} groups.
func splitTopLevel(s string, sep byte) ([]string, bool) {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return nil, false
			}
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, false
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts, true
}
