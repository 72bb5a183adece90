package wasm

import (
	"fmt"

	"github.com/lumen-lang/lumen/pkg/lir"
)

// needsControlFlow reports whether a cell's body contains anything that
// can't be emitted as straight-line wasm: jumps, the Test skip-next, loop
// back-edges, or the reserved for-loop family.
func needsControlFlow(cell *lir.LirCell) bool {
	for _, instr := range cell.Instrs {
		switch instr.Op {
		case lir.OpJmp, lir.OpTest, lir.OpBreak, lir.OpContinue,
			lir.OpLoop, lir.OpForPrep, lir.OpForLoop, lir.OpForIn:
			return true
		}
	}
	return false
}

// emitCellBody compiles one cell's instruction stream into a wasm function
// body (locals vector + expression bytes, including the trailing function
// End). Straight-line cells skip the trampoline entirely (§4.9); anything
// with a jump, Test, or loop goes through the switch-loop dispatcher.
func emitCellBody(cell *lir.LirCell) ([]byte, error) {
	numParams := len(cell.Params)
	numRegs := cell.Registers
	if numRegs < numParams {
		numRegs = numParams
	}
	extraLocals := numRegs - numParams

	var groups [][2]uint32
	if extraLocals > 0 {
		groups = append(groups, [2]uint32{uint32(extraLocals), uint32(valTypeI64)})
	}
	groups = append(groups, [2]uint32{1, uint32(valTypeI32)}) // $pc, declared even when unused
	pcLocal := uint32(numRegs)

	a := &asm{}

	if len(cell.Instrs) == 0 {
		if cell.Returns != "" {
			a.i64Const(0)
		}
		a.end()

		return append(encodeLocals(groups), a.code...), nil
	}

	if !needsControlFlow(cell) {
		for _, instr := range cell.Instrs {
			if err := emitSingleInstruction(a, instr, cell); err != nil {
				return nil, err
			}
		}

		if !lastIsReturn(cell) && cell.Returns != "" {
			a.i64Const(0)
		}
		a.end()

		return append(encodeLocals(groups), a.code...), nil
	}

	if err := emitTrampoline(a, cell, pcLocal); err != nil {
		return nil, err
	}

	return append(encodeLocals(groups), a.code...), nil
}

func lastIsReturn(cell *lir.LirCell) bool {
	if len(cell.Instrs) == 0 {
		return false
	}

	return cell.Instrs[len(cell.Instrs)-1].Op == lir.OpReturn
}

// emitTrampoline implements the switch-loop strategy: the whole body is one
// exit block holding one `loop $dispatch`, which wraps numInsts nested
// blocks, one per instruction,
// left open across the br_table and closed one at a time as each
// instruction's code is emitted. Closing the innermost block first means
// depth 0 lands right after it, at instruction 0's code; depth k lands at
// instruction k's code after exiting k+1 blocks. Falling off the end (pc ==
// numInsts, the br_table default at depth numInsts+1) exits every block,
// the loop AND the exit block, landing on the function's own
// implicit-return tail. Each instruction sets $pc to its
// successor (or jump target) before branching back to $dispatch — depth
// numInsts-idx-1 from inside instruction idx's own code, since idx blocks
// have already been closed by that point.
func emitTrampoline(a *asm, cell *lir.LirCell, pcLocal uint32) error {
	numInsts := uint32(len(cell.Instrs))

	a.i32Const(0)
	a.localSet(pcLocal)

	a.block(blockTypeEmpty) // exit block
	a.loop(blockTypeEmpty)

	for i := uint32(0); i < numInsts; i++ {
		a.block(blockTypeEmpty)
	}

	a.localGet(pcLocal)
	targets := make([]uint32, numInsts)
	for i := range targets {
		targets[i] = uint32(i)
	}
	a.brTable(targets, numInsts+1)

	for idx, instr := range cell.Instrs {
		a.end() // closes the block instruction idx was dispatched into

		depthToDispatch := numInsts - uint32(idx) - 1

		switch instr.Op {
		case lir.OpJmp, lir.OpBreak, lir.OpContinue:
			// pkg/vm adds Ax to frame.ip after it has already been advanced
			// past this instruction (fetch-then-increment), so the target is
			// relative to idx+1, not idx.
			target := int64(idx) + 1 + int64(instr.Ax)
			a.i32Const(int32(target))
			a.localSet(pcLocal)
			a.br(depthToDispatch)

		case lir.OpTest:
			// pkg/vm skips the next instruction when
			// v.IsTruthy() != (instr.C == 0): C==0 skips on falsy, C!=0
			// skips on truthy.
			invert := instr.C == 0

			a.localGet(uint32(instr.A))
			a.i64Const(0)
			a.op(opI64Ne)
			if invert {
				a.op(opI32Eqz)
			}

			a.ifStart(blockTypeEmpty)
			a.i32Const(int32(idx + 2))
			a.localSet(pcLocal)
			a.br(depthToDispatch + 1)
			a.end() // end if

			a.i32Const(int32(idx + 1))
			a.localSet(pcLocal)
			a.br(depthToDispatch)

		case lir.OpCall, lir.OpTailCall:
			callee := instr.A
			argCount := instr.B
			resultCount := instr.C

			for i := uint8(0); i < argCount; i++ {
				a.localGet(uint32(callee) + 1 + uint32(i))
			}
			a.call(uint32(callee))

			if resultCount > 0 {
				a.localSet(uint32(callee))
			}

			a.i32Const(int32(idx + 1))
			a.localSet(pcLocal)
			a.br(depthToDispatch)

		case lir.OpLoop, lir.OpForPrep, lir.OpForLoop, lir.OpForIn:
			// Reserved opcodes the lowerer never emits (while-loops compile to
			// Jmp/Test/Break instead); traps here, whereas pkg/vm's
			// interpreter treats them as no-ops.
			a.op(opUnreachable)

		case lir.OpReturn:
			if err := emitSingleInstruction(a, instr, cell); err != nil {
				return err
			}

		default:
			if err := emitSingleInstruction(a, instr, cell); err != nil {
				return err
			}

			a.i32Const(int32(idx + 1))
			a.localSet(pcLocal)
			a.br(depthToDispatch)
		}
	}

	a.end() // end dispatch loop
	a.end() // end exit block

	if cell.Returns != "" {
		a.i64Const(0)
	}

	a.end() // end function

	return nil
}

// emitSingleInstruction lowers one LIR opcode into straight-line wasm.
// Opcodes the all-i64 value representation can't express (record, list,
// map and union construction and access, intrinsics, tool calls) fall to
// Unreachable — a trap rather than silently wrong output, the same choice
// the original backend makes for its own unmatched opcodes. Null, string
// and big-integer constants do not trap: emitLoadConstant loads them as
// i64 0.
func emitSingleInstruction(a *asm, instr lir.Instruction, cell *lir.LirCell) error {
	switch instr.Op {
	case lir.OpLoadK, lir.OpLoadInt:
		if int(instr.Bx) >= len(cell.Constants) {
			return fmt.Errorf("wasm: constant index %d out of range (cell has %d)", instr.Bx, len(cell.Constants))
		}

		emitLoadConstant(a, cell.Constants[instr.Bx], instr.A)

	case lir.OpLoadBool:
		a.i64Const(boolToI64(instr.B != 0))
		a.localSet(uint32(instr.A))

	case lir.OpLoadNil:
		count := int(instr.B)
		for i := 0; i <= count; i++ {
			a.i64Const(0)
			a.localSet(uint32(instr.A) + uint32(i))
		}

	case lir.OpMove:
		a.localGet(uint32(instr.B))
		a.localSet(uint32(instr.A))

	case lir.OpAdd:
		emitBinOp(a, instr, opI64Add)
	case lir.OpSub:
		emitBinOp(a, instr, opI64Sub)
	case lir.OpMul:
		emitBinOp(a, instr, opI64Mul)
	case lir.OpDiv, lir.OpFloorDiv:
		emitBinOp(a, instr, opI64DivS)
	case lir.OpMod:
		emitBinOp(a, instr, opI64RemS)
	case lir.OpBitAnd, lir.OpAnd:
		emitBinOp(a, instr, opI64And)
	case lir.OpBitOr, lir.OpOr:
		emitBinOp(a, instr, opI64Or)
	case lir.OpBitXor:
		emitBinOp(a, instr, opI64Xor)
	case lir.OpShl:
		emitBinOp(a, instr, opI64Shl)
	case lir.OpShr:
		emitBinOp(a, instr, opI64ShrS)

	case lir.OpNeg:
		a.i64Const(0)
		a.localGet(uint32(instr.B))
		a.op(opI64Sub)
		a.localSet(uint32(instr.A))

	case lir.OpEq:
		emitCompare(a, instr, opI64Eq)
	case lir.OpLt:
		emitCompare(a, instr, opI64LtS)
	case lir.OpLe:
		emitCompare(a, instr, opI64LeS)

	case lir.OpNot:
		a.localGet(uint32(instr.B))
		a.op(opI64Eqz)
		a.op(opI64ExtendI32U)
		a.localSet(uint32(instr.A))

	case lir.OpReturn:
		// A void cell's wasm signature has zero results; pushing a value
		// before `return` would leave the stack imbalanced at validation.
		if cell.Returns != "" {
			a.localGet(uint32(instr.A))
		}
		a.op(opReturn)

	case lir.OpNop:
		// deliberately empty

	case lir.OpHalt:
		a.op(opUnreachable)

	default:
		a.op(opUnreachable)
	}

	return nil
}

func emitBinOp(a *asm, instr lir.Instruction, op byte) {
	a.localGet(uint32(instr.B))
	a.localGet(uint32(instr.C))
	a.op(op)
	a.localSet(uint32(instr.A))
}

func emitCompare(a *asm, instr lir.Instruction, op byte) {
	a.localGet(uint32(instr.B))
	a.localGet(uint32(instr.C))
	a.op(op)
	a.op(opI64ExtendI32U)
	a.localSet(uint32(instr.A))
}

func boolToI64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func emitLoadConstant(a *asm, c lir.Constant, dest uint8) {
	switch c.Kind {
	case lir.ConstInt:
		a.i64Const(c.IntVal)
	case lir.ConstFloat:
		a.f64ConstAsI64(c.FloatVal)
	case lir.ConstBool:
		a.i64Const(boolToI64(c.BoolVal))
	case lir.ConstNull, lir.ConstString, lir.ConstBigInt:
		a.i64Const(0)
	default:
		a.i64Const(0)
	}

	a.localSet(uint32(dest))
}
