package stackcode

import (
	"encoding/binary"
	"math"

	"github.com/vertexlang/vertex/internal/value"
)

// constant-pool tag bytes, in the original's order. The wire format's
// constant pool only ever holds the four kinds a stack Op can push
// directly; anything else (Char, Option, Result, composites, Struct) has
// no encoding here, by design — see bytecode.Linearize's
// ErrNotLinearizable.
const (
	constTagInt    = 0x01
	constTagFloat  = 0x02
	constTagString = 0x03
	constTagBool   = 0x04
)

// Program is a decoded (or about-to-be-encoded) stackcode file: an
// ordered op list plus the constant pool its OpConstant indices point
// into.
type Program struct {
	Ops       []Op
	Constants []value.Value
}

// Bytes encodes p into the §6 wire format.
func (p *Program) Bytes() []byte {
	b := make([]byte, 12)
	binary.BigEndian.PutUint32(b[0:4], MagicNumber)
	binary.BigEndian.PutUint32(b[4:8], uint32(len(p.Constants)))
	binary.BigEndian.PutUint32(b[8:12], uint32(len(p.Ops)))

	for _, c := range p.Constants {
		b = appendConstant(b, c)
	}
	for _, op := range p.Ops {
		b = op.appendBytes(b)
	}
	return b
}

func appendConstant(b []byte, v value.Value) []byte {
	switch v.Kind() {
	case value.Int:
		b = append(b, constTagInt)
		return binary.BigEndian.AppendUint64(b, uint64(v.Int()))
	case value.Float:
		b = append(b, constTagFloat)
		return binary.BigEndian.AppendUint64(b, math.Float64bits(v.Float()))
	case value.String:
		b = append(b, constTagString)
		s := v.Text()
		b = binary.BigEndian.AppendUint32(b, uint32(len(s)))
		return append(b, s...)
	case value.Bool:
		b = append(b, constTagBool)
		if v.Bool() {
			return append(b, 0x01)
		}
		return append(b, 0x00)
	default:
		panic("stackcode: value kind " + v.Kind().String() + " has no wire encoding")
	}
}

// ReadProgram decodes a stackcode file produced by Program.Bytes.
func ReadProgram(b []byte) (*Program, error) {
	if len(b) < 12 {
		return nil, &DecodeError{Message: "unexpected EOF while parsing header"}
	}
	magic := binary.BigEndian.Uint32(b[0:4])
	if magic != MagicNumber {
		return nil, &DecodeError{Message: "invalid bytecode header"}
	}
	constCount := int(binary.BigEndian.Uint32(b[4:8]))
	opCount := int(binary.BigEndian.Uint32(b[8:12]))

	p := &Program{
		Constants: make([]value.Value, 0, constCount),
		Ops:       make([]Op, 0, opCount),
	}

	index := 12
	for i := 0; i < constCount; i++ {
		c, n, err := readConstant(b, index)
		if err != nil {
			return nil, err
		}
		p.Constants = append(p.Constants, c)
		index += n
	}
	for i := 0; i < opCount; i++ {
		op, n, err := readOp(b, index)
		if err != nil {
			return nil, err
		}
		p.Ops = append(p.Ops, op)
		index += n
	}
	return p, nil
}

func readConstant(b []byte, index int) (value.Value, int, error) {
	if index >= len(b) {
		return value.Value{}, 0, &DecodeError{Message: "unexpected EOF while parsing constant"}
	}
	switch b[index] {
	case constTagInt:
		v, err := readI64(b, index+1)
		if err != nil {
			return value.Value{}, 0, err
		}
		return value.NewInt(v), 9, nil
	case constTagFloat:
		v, err := readF64(b, index+1)
		if err != nil {
			return value.Value{}, 0, err
		}
		return value.NewFloat(v), 9, nil
	case constTagString:
		s, n, err := readStr(b, index+1)
		if err != nil {
			return value.Value{}, 0, err
		}
		return value.NewString(s), 1 + n, nil
	case constTagBool:
		v, err := readBool(b, index+1)
		if err != nil {
			return value.Value{}, 0, err
		}
		return value.NewBool(v), 2, nil
	default:
		return value.Value{}, 0, &ErrUnknownConstant{Byte: b[index]}
	}
}
