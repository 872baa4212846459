package stackcode

import (
	"encoding/binary"
	"math"
)

func readU32(b []byte, index int) (uint32, error) {
	if index+4 > len(b) {
		return 0, &DecodeError{Message: "unexpected EOF while parsing u32"}
	}
	return binary.BigEndian.Uint32(b[index : index+4]), nil
}

func readI64(b []byte, index int) (int64, error) {
	if index+8 > len(b) {
		return 0, &DecodeError{Message: "unexpected EOF while parsing i64"}
	}
	return int64(binary.BigEndian.Uint64(b[index : index+8])), nil
}

func readF64(b []byte, index int) (float64, error) {
	if index+8 > len(b) {
		return 0, &DecodeError{Message: "unexpected EOF while parsing f64"}
	}
	bits := binary.BigEndian.Uint64(b[index : index+8])
	return math.Float64frombits(bits), nil
}

func readStr(b []byte, index int) (string, int, error) {
	length, err := readU32(b, index)
	if err != nil {
		return "", 0, err
	}
	start := index + 4
	end := start + int(length)
	if end > len(b) {
		return "", 0, &DecodeError{Message: "unexpected EOF while parsing string"}
	}
	return string(b[start:end]), 4 + int(length), nil
}

func readBool(b []byte, index int) (bool, error) {
	if index >= len(b) {
		return false, &DecodeError{Message: "unexpected EOF while parsing bool"}
	}
	return b[index] != 0x00, nil
}
