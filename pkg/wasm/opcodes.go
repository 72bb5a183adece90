package wasm

// Value types (§5.3.1 of the wasm core spec's binary encoding).
const (
	valTypeI32 byte = 0x7F
	valTypeI64 byte = 0x7E
	valTypeF64 byte = 0x7C
)

const blockTypeEmpty byte = 0x40

// Instruction opcodes, limited to a small subset (not every one is emitted):
// control flow for the switch-loop trampoline, locals, i64/i32 arithmetic and
// comparison, and the one f64 bit-reinterpret used for float constants.
const (
	opUnreachable byte = 0x00
	opBlock       byte = 0x02
	opLoop        byte = 0x03
	opIf          byte = 0x04
	opElse        byte = 0x05
	opEnd         byte = 0x0B
	opBr          byte = 0x0C
	opBrTable     byte = 0x0E
	opReturn      byte = 0x0F
	opCall        byte = 0x10

	opLocalGet byte = 0x20
	opLocalSet byte = 0x21

	opI32Const byte = 0x41
	opI64Const byte = 0x42
	opF64Const byte = 0x44

	opI32Eqz byte = 0x45

	opI64Eqz  byte = 0x50
	opI64Eq   byte = 0x51
	opI64Ne   byte = 0x52
	opI64LtS  byte = 0x53
	opI64GtS  byte = 0x55
	opI64LeS  byte = 0x57
	opI64GeS  byte = 0x59

	opI64Add  byte = 0x7C
	opI64Sub  byte = 0x7D
	opI64Mul  byte = 0x7E
	opI64DivS byte = 0x7F
	opI64RemS byte = 0x81
	opI64And  byte = 0x83
	opI64Or   byte = 0x84
	opI64Xor  byte = 0x85
	opI64Shl  byte = 0x86
	opI64ShrS byte = 0x87

	opI64ExtendI32U      byte = 0xAD
	opI64ReinterpretF64  byte = 0xBD
)

// asm accumulates one function body's bytecode. It is the Go-hand-rolled
// stand-in for wasm-encoder's Function builder: every method appends raw
// opcode bytes plus their LEB128-encoded immediates.
type asm struct {
	code []byte
}

func (a *asm) op(b byte) { a.code = append(a.code, b) }

func (a *asm) block(bt byte) { a.code = append(a.code, opBlock, bt) }
func (a *asm) loop(bt byte)  { a.code = append(a.code, opLoop, bt) }
func (a *asm) ifStart(bt byte) { a.code = append(a.code, opIf, bt) }
func (a *asm) end()          { a.code = append(a.code, opEnd) }

func (a *asm) br(depth uint32) {
	a.code = append(a.code, opBr)
	a.code = appendULEB128(a.code, uint64(depth))
}

func (a *asm) brTable(targets []uint32, def uint32) {
	a.code = append(a.code, opBrTable)
	a.code = appendULEB128(a.code, uint64(len(targets)))
	for _, t := range targets {
		a.code = appendULEB128(a.code, uint64(t))
	}
	a.code = appendULEB128(a.code, uint64(def))
}

func (a *asm) call(funcIdx uint32) {
	a.code = append(a.code, opCall)
	a.code = appendULEB128(a.code, uint64(funcIdx))
}

func (a *asm) localGet(idx uint32) {
	a.code = append(a.code, opLocalGet)
	a.code = appendULEB128(a.code, uint64(idx))
}

func (a *asm) localSet(idx uint32) {
	a.code = append(a.code, opLocalSet)
	a.code = appendULEB128(a.code, uint64(idx))
}

func (a *asm) i32Const(v int32) {
	a.code = append(a.code, opI32Const)
	a.code = appendSLEB128(a.code, int64(v))
}

func (a *asm) i64Const(v int64) {
	a.code = append(a.code, opI64Const)
	a.code = appendSLEB128(a.code, v)
}

func (a *asm) f64ConstAsI64(f float64) {
	a.code = append(a.code, opF64Const)
	a.code = appendF64LE(a.code, f)
	a.op(opI64ReinterpretF64)
}
