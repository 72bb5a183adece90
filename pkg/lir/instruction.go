package lir

// Instruction is a fixed 32-bit word in one of four formats (§3): ABC packs
// three register operands, ABx an unsigned 16-bit constant/string-table
// index, AsBx a signed 16-bit jump offset carried in the same Bx slot, and
// sAx a signed 24-bit jump/handler-push offset with no register operand. Go
// keeps the decoded fields rather than a packed uint32 (matching the
// original reference's Instruction struct); MarshalBinary/packed32 perform
// the actual 32-bit wire packing for the binary format.
type Instruction struct {
	Op OpCode
	A  uint8
	B  uint8
	C  uint8
	Bx uint16
	Ax int32 // 24-bit signed, sign-extended into an int32
}

// ABC builds a three-register instruction.
func ABC(op OpCode, a, b, c uint8) Instruction {
	return Instruction{Op: op, A: a, B: b, C: c}
}

// ABx builds an A-register-plus-unsigned-16-bit-index instruction (LoadK,
// NewRecord, NewUnion, Schema).
func ABx(op OpCode, a uint8, bx uint16) Instruction {
	return Instruction{Op: op, A: a, Bx: bx}
}

// AsBx builds a signed-jump-in-Bx instruction (ForPrep/ForLoop, reserved by
// the ISA but not emitted by the current lowerer; see DESIGN.md).
func AsBx(op OpCode, a uint8, sbx int32) Instruction {
	return Instruction{Op: op, A: a, Bx: uint16(int16(sbx))}
}

// SBx returns the signed interpretation of Bx.
func (i Instruction) SBx() int32 { return int32(int16(i.Bx)) }

// SAx builds a 24-bit-signed-offset instruction (Jmp/Break/Continue/
// HandlePush, §3) with no register operand.
func SAx(op OpCode, sax int32) Instruction {
	return Instruction{Op: op, Ax: signExtend24(sax)}
}

const sAxMin = -(1 << 23)
const sAxMax = 1<<23 - 1

func signExtend24(v int32) int32 {
	v &= 1<<24 - 1
	if v&(1<<23) != 0 {
		v -= 1 << 24
	}

	return v
}

// bxFormatOps use the A+Bx wire layout (16-bit Bx field), whether Bx holds
// an unsigned index (LoadK, NewRecord, NewUnion, Schema) or a signed offset
// (ForPrep, ForLoop). axFormatOps use the register-less 24-bit Ax layout.
var bxFormatOps = map[OpCode]bool{
	OpLoadK: true, OpNewRecord: true, OpNewUnion: true, OpSchema: true,
	OpForPrep: true, OpForLoop: true,
}

var axFormatOps = map[OpCode]bool{
	OpJmp: true, OpBreak: true, OpContinue: true, OpHandlePush: true,
}

// packed32 is the 32-bit wire encoding: 8 bits opcode followed by the
// format-specific operand bits, matching §3's instruction formats exactly.
func (i Instruction) packed32() uint32 {
	word := uint32(i.Op)

	switch {
	case axFormatOps[i.Op]:
		word |= (uint32(signExtend24(i.Ax)) & 0xFFFFFF) << 8
	case bxFormatOps[i.Op]:
		word |= uint32(i.A) << 8
		word |= uint32(i.Bx) << 16
	default:
		word |= uint32(i.A) << 8
		word |= uint32(i.B) << 16
		word |= uint32(i.C) << 24
	}

	return word
}

func fromPacked32(word uint32) Instruction {
	op := OpCode(word & 0xFF)

	switch {
	case axFormatOps[op]:
		raw := int32(word>>8) & 0xFFFFFF
		return Instruction{Op: op, Ax: signExtend24(raw)}
	case bxFormatOps[op]:
		return Instruction{Op: op, A: uint8(word >> 8), Bx: uint16(word >> 16)}
	default:
		return Instruction{
			Op: op,
			A:  uint8(word >> 8),
			B:  uint8(word >> 16),
			C:  uint8(word >> 24),
		}
	}
}
