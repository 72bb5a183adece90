package wasm

import "math"

// appendULEB128 appends v in unsigned LEB128 form, the encoding the wasm
// binary format uses for every vector length, index, and section size.
func appendULEB128(buf []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf = append(buf, b)
		if v == 0 {
			return buf
		}
	}
}

// appendSLEB128 appends v in signed LEB128 form, used by i32.const/i64.const
// immediates and by sBx/sAx-derived jump targets.
func appendSLEB128(buf []byte, v int64) []byte {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		buf = append(buf, b)
	}
	return buf
}

// appendF64LE appends f as 8 raw little-endian bytes, the fixed-width
// encoding f64.const uses (unlike i32/i64 consts, floats are never LEB128).
func appendF64LE(buf []byte, f float64) []byte {
	bits := math.Float64bits(f)
	for i := 0; i < 8; i++ {
		buf = append(buf, byte(bits>>(8*uint(i))))
	}
	return buf
}
