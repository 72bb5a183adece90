package lower

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/lir"
)

// funcBuilder accumulates one cell's (or handler's) instruction stream and
// constant pool while lowering its body, and tracks the open loops needed
// to resolve break/continue.
type funcBuilder struct {
	lw        *lowerer
	ra        *regAlloc
	instrs    []lir.Instruction
	constants []lir.Constant
	loops     []*loopCtx
}

// loopCtx is one open while/for-in loop: continues jump straight back to
// head (known as soon as the loop starts), breaks are patched once the
// loop's end PC is known.
type loopCtx struct {
	head   int
	breaks []int
}

func (fb *funcBuilder) emit(i lir.Instruction) int {
	fb.instrs = append(fb.instrs, i)
	return len(fb.instrs) - 1
}

func (fb *funcBuilder) pc() int {
	return len(fb.instrs)
}

// patchJmp rewrites the sAx-format instruction at idx so its offset lands
// on the current PC (§4.7's "offset = target - placeholder_idx - 1").
func (fb *funcBuilder) patchJmp(idx int) {
	offset := int32(fb.pc() - idx - 1)
	fb.instrs[idx] = lir.SAx(fb.instrs[idx].Op, offset)
}

// reserveContiguous bumps the allocator n times in a row, returning the
// first of the n freshly reserved registers (or 0 if n==0). Used wherever
// an instruction's operand expects several values at a fixed contiguous
// offset from a base register (Call's args, NewList/NewMap/NewUnion/
// NewRecord's elements, a ToolCall's arguments): reserving the whole block
// up front, before evaluating any one element, guarantees the block stays
// contiguous even when evaluating one element needs scratch registers of
// its own above the block.
func (fb *funcBuilder) reserveContiguous(n int) uint8 {
	if n == 0 {
		return 0
	}

	base := fb.ra.allocTemp()

	for i := 1; i < n; i++ {
		fb.ra.allocTemp()
	}

	return base
}

// lowerExprsContiguous evaluates exprs and moves each result into its
// reserved slot starting at base (see reserveContiguous), since an
// expression's own result register does not generally coincide with its
// final slot (e.g. an Ident argument already bound to some earlier, lower
// register).
func (fb *funcBuilder) lowerExprsContiguous(base uint8, exprs []ast.Expr) {
	for i, e := range exprs {
		v := fb.lowerExpr(e)
		fb.emit(lir.ABC(lir.OpMove, base+uint8(i), v, 0))
	}
}

func (fb *funcBuilder) addConst(c lir.Constant) uint16 {
	idx := len(fb.constants)
	fb.constants = append(fb.constants, c)

	return uint16(idx)
}

func (fb *funcBuilder) loadInt(n int64) uint8 {
	dest := fb.ra.allocTemp()
	idx := fb.addConst(lir.Constant{Kind: lir.ConstInt, IntVal: n})
	fb.emit(lir.ABx(lir.OpLoadK, dest, idx))

	return dest
}

func (fb *funcBuilder) pushLoop() *loopCtx {
	lp := &loopCtx{head: fb.pc()}
	fb.loops = append(fb.loops, lp)

	return lp
}

func (fb *funcBuilder) popLoop() {
	lp := fb.loops[len(fb.loops)-1]
	fb.loops = fb.loops[:len(fb.loops)-1]

	for _, idx := range lp.breaks {
		fb.patchJmp(idx)
	}
}

func (fb *funcBuilder) currentLoop() *loopCtx {
	if len(fb.loops) == 0 {
		return nil
	}

	return fb.loops[len(fb.loops)-1]
}

// ensureReturn guarantees every cell's instruction stream ends with
// Return/Halt (§4.7's return discipline): appends LoadNil+Return if the
// source body fell off the end without one.
func (fb *funcBuilder) ensureReturn() {
	if len(fb.instrs) > 0 {
		last := fb.instrs[len(fb.instrs)-1].Op
		if last == lir.OpReturn || last == lir.OpHalt {
			return
		}
	}

	r := fb.ra.allocTemp()
	fb.emit(lir.ABC(lir.OpLoadNil, r, 0, 0))
	fb.emit(lir.ABC(lir.OpReturn, r, 1, 0))
}
