// Package optimize implements §4.8's peephole passes over a lowered
// LirModule: currently Nop removal with full jump re-patching. Eq+Test
// fusion is disabled: eqTestFusion only locates candidate pairs, rewrites
// nothing, and is never invoked — see its doc comment.
package optimize

import "github.com/lumen-lang/lumen/pkg/lir"

// Module runs every enabled pass over each cell and handler in mod,
// in-place.
func Module(mod *lir.LirModule) {
	for i := range mod.Cells {
		Cell(&mod.Cells[i])
	}

	for i := range mod.Handlers {
		Handler(&mod.Handlers[i])
	}
}

// Cell runs the enabled optimization passes over one cell's instruction
// stream in-place.
func Cell(cell *lir.LirCell) {
	cell.Instrs = removeNops(cell.Instrs)
}

// Handler runs the enabled optimization passes over one handler's
// instruction stream in-place.
func Handler(h *lir.LirHandler) {
	h.Instrs = removeNops(h.Instrs)
}

var jumpOps = map[lir.OpCode]bool{
	lir.OpJmp: true, lir.OpBreak: true, lir.OpContinue: true, lir.OpHandlePush: true,
}

var forJumpOps = map[lir.OpCode]bool{
	lir.OpForPrep: true, lir.OpForLoop: true,
}

// removeNops deletes every Nop from instrs and re-patches every jump so its
// computed target is unchanged, per §4.8: build an old-index -> new-index
// map where a removed Nop maps to the new index of the first surviving
// instruction after it (or past the end if none remain), rewrite every
// jump's offset using that map, and only then physically drop the Nops.
func removeNops(instrs []lir.Instruction) []lir.Instruction {
	indexMap := make([]int, len(instrs))
	newLen := 0

	for old, ins := range instrs {
		if ins.Op != lir.OpNop {
			indexMap[old] = newLen
			newLen++
		}
	}

	for old, ins := range instrs {
		if ins.Op != lir.OpNop {
			continue
		}

		next := newLen

		for search := old + 1; search < len(instrs); search++ {
			if instrs[search].Op != lir.OpNop {
				next = indexMap[search]
				break
			}
		}

		indexMap[old] = next
	}

	out := make([]lir.Instruction, len(instrs))
	copy(out, instrs)

	for pc, ins := range out {
		switch {
		case jumpOps[ins.Op]:
			out[pc] = repatchSAx(ins, pc, indexMap, newLen)
		case forJumpOps[ins.Op]:
			out[pc] = repatchSBx(ins, pc, indexMap, newLen)
		}
	}

	kept := make([]lir.Instruction, 0, newLen)

	for _, ins := range out {
		if ins.Op != lir.OpNop {
			kept = append(kept, ins)
		}
	}

	return kept
}

// mapTarget resolves an old absolute instruction index through indexMap,
// preserving the relative distance for a target that lies past the end of
// the original stream (the jump invariant permits a target of exactly
// len(instructions), one past the last instruction).
func mapTarget(oldTarget int, indexMap []int, newLen int) int {
	if oldTarget < len(indexMap) {
		return indexMap[oldTarget]
	}

	return newLen + (oldTarget - len(indexMap))
}

func repatchSAx(ins lir.Instruction, oldPC int, indexMap []int, newLen int) lir.Instruction {
	oldTarget := oldPC + 1 + int(ins.Ax)
	newTarget := mapTarget(oldTarget, indexMap, newLen)
	newPC := indexMap[oldPC]
	offset := int32(newTarget - newPC - 1)

	return lir.SAx(ins.Op, offset)
}

func repatchSBx(ins lir.Instruction, oldPC int, indexMap []int, newLen int) lir.Instruction {
	oldTarget := oldPC + 1 + int(ins.SBx())
	newTarget := mapTarget(oldTarget, indexMap, newLen)
	newPC := indexMap[oldPC]
	offset := int32(newTarget - newPC - 1)

	return lir.AsBx(ins.Op, ins.A, offset)
}

// eqTestFusion finds each `Eq dest,a,b` immediately followed by
// `Test dest,_,c` — the pair a fusion into a single skip-next `Eq` would
// replace — but performs no rewrite: it returns an unchanged copy of
// instrs, and it is never called from Cell/Handler. The VM's Eq always stores its boolean result rather than
// skipping, so this fusion is only valid for a backend whose Eq instruction
// carries Test's skip semantics directly — neither the VM nor the WASM
// backend does, so enabling this would silently change behavior on
// whichever backend disagrees. Re-enable only after confirming every
// backend implements Eq's skip-next form identically.
func eqTestFusion(instrs []lir.Instruction) []lir.Instruction {
	out := make([]lir.Instruction, len(instrs))
	copy(out, instrs)

	for i := 0; i+1 < len(out); i++ {
		if out[i].Op != lir.OpEq || out[i+1].Op != lir.OpTest {
			continue
		}

		if out[i].A != out[i+1].A {
			continue
		}

		_ = i // fusion body intentionally omitted; see doc comment above
	}

	return out
}
