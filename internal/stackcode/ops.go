// Package stackcode implements the §6 on-disk bytecode encoding and a
// small sequential stack machine that executes it directly — the
// "compile once, run as a static file" path, distinct from internal/vm's
// concurrent, job-scheduled graph machine.
//
// The wire format is a fixed byte layout, not a general schema
// serialization: a 4-byte magic number, two 4-byte table-length headers,
// then the constant pool and the op list back to back, every multi-byte
// integer big-endian. It is reproduced here exactly as the original
// defines it, so encoding/binary is used directly rather than reaching
// for a schema-based serialization library from the corpus (protobuf,
// msgpack, flatbuffers) — any of those would impose their own framing
// and break byte-for-byte compatibility with the format this package is
// grounded on.
package stackcode

import (
	"encoding/binary"
	"fmt"
)

// MagicNumber identifies a stackcode program file.
const MagicNumber uint32 = 0x562514AF

// OpKind is the tag of a single stack-machine instruction.
type OpKind uint8

const (
	OpNoOp OpKind = iota
	OpConstant
	OpReturn
	OpIntAdd
	OpIntSub
	OpIntMul
	OpIntDiv
	OpIntMod
	OpIntPow
	OpJump
	OpCopy
)

func (k OpKind) String() string {
	switch k {
	case OpNoOp:
		return "NoOp"
	case OpConstant:
		return "Constant"
	case OpReturn:
		return "Return"
	case OpIntAdd:
		return "IntAdd"
	case OpIntSub:
		return "IntSub"
	case OpIntMul:
		return "IntMul"
	case OpIntDiv:
		return "IntDiv"
	case OpIntMod:
		return "IntMod"
	case OpIntPow:
		return "IntPow"
	case OpJump:
		return "Jump"
	case OpCopy:
		return "Copy"
	default:
		return fmt.Sprintf("OpKind(%d)", uint8(k))
	}
}

// opByte is the wire tag byte for each OpKind, in the original's order.
var opByte = map[OpKind]byte{
	OpNoOp: 0x00, OpConstant: 0x01, OpReturn: 0x02,
	OpIntAdd: 0x03, OpIntSub: 0x04, OpIntMul: 0x05, OpIntDiv: 0x06, OpIntMod: 0x07, OpIntPow: 0x08,
	OpJump: 0x09, OpCopy: 0x0A,
}

var byteOp = func() map[byte]OpKind {
	m := make(map[byte]OpKind, len(opByte))
	for k, b := range opByte {
		m[b] = k
	}
	return m
}()

// hasOperand reports whether an OpKind carries a trailing uint32 operand
// (a constant-pool index, a jump target, or a copy offset).
func hasOperand(k OpKind) bool {
	return k == OpConstant || k == OpJump || k == OpCopy
}

// Op is a single stack-machine instruction. Operand is meaningful only
// for OpConstant (constant-pool index), OpJump (target instruction
// index) and OpCopy (stack depth offset).
type Op struct {
	Kind    OpKind
	Operand uint32
}

func NoOp() Op              { return Op{Kind: OpNoOp} }
func ConstantOp(i uint32) Op { return Op{Kind: OpConstant, Operand: i} }
func ReturnOp() Op          { return Op{Kind: OpReturn} }
func IntAddOp() Op          { return Op{Kind: OpIntAdd} }
func IntSubOp() Op          { return Op{Kind: OpIntSub} }
func IntMulOp() Op          { return Op{Kind: OpIntMul} }
func IntDivOp() Op          { return Op{Kind: OpIntDiv} }
func IntModOp() Op          { return Op{Kind: OpIntMod} }
func IntPowOp() Op          { return Op{Kind: OpIntPow} }
func JumpOp(target uint32) Op { return Op{Kind: OpJump, Operand: target} }
func CopyOp(offset uint32) Op { return Op{Kind: OpCopy, Operand: offset} }

// appendBytes appends the wire encoding of op to b and returns the result.
func (op Op) appendBytes(b []byte) []byte {
	b = append(b, opByte[op.Kind])
	if hasOperand(op.Kind) {
		b = binary.BigEndian.AppendUint32(b, op.Operand)
	}
	return b
}

// readOp decodes one Op from b starting at index, returning it and the
// number of bytes consumed.
func readOp(b []byte, index int) (Op, int, error) {
	if index >= len(b) {
		return Op{}, 0, &DecodeError{Message: "unexpected EOF while parsing op"}
	}
	tag := b[index]
	kind, ok := byteOp[tag]
	if !ok {
		return Op{}, 0, &ErrUnknownOp{Byte: tag}
	}
	if !hasOperand(kind) {
		return Op{Kind: kind}, 1, nil
	}
	operand, err := readU32(b, index+1)
	if err != nil {
		return Op{}, 0, err
	}
	return Op{Kind: kind, Operand: operand}, 5, nil
}
