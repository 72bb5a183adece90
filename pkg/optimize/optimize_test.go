package optimize

import (
	"testing"

	"github.com/lumen-lang/lumen/pkg/lir"
)

func TestRemoveNopsDropsAllNops(t *testing.T) {
	cell := &lir.LirCell{
		Instrs: []lir.Instruction{
			lir.ABC(lir.OpLoadInt, 0, 42, 0),
			lir.ABC(lir.OpNop, 0, 0, 0),
			lir.ABC(lir.OpLoadInt, 1, 10, 0),
			lir.ABC(lir.OpNop, 0, 0, 0),
			lir.ABC(lir.OpReturn, 0, 1, 0),
		},
	}

	Cell(cell)

	if len(cell.Instrs) != 3 {
		t.Fatalf("expected 3 instructions after Nop removal, got %d", len(cell.Instrs))
	}

	wantOps := []lir.OpCode{lir.OpLoadInt, lir.OpLoadInt, lir.OpReturn}
	for i, op := range wantOps {
		if cell.Instrs[i].Op != op {
			t.Errorf("instr %d = %s, want %s", i, cell.Instrs[i].Op, op)
		}
	}
}

// Mirrors original_source's test_jump_over_nop: a forward jump landing past
// two removed Nops must still land on the same logical instruction.
func TestRemoveNopsRepatchesForwardJump(t *testing.T) {
	instrs := []lir.Instruction{
		lir.ABC(lir.OpLoadInt, 0, 1, 0), // 0
		lir.ABC(lir.OpNop, 0, 0, 0),     // 1 (removed)
		lir.ABC(lir.OpNop, 0, 0, 0),     // 2 (removed)
		lir.SAx(lir.OpJmp, 1),           // 3 -> target = 3+1+1 = 5 (Return)
		lir.ABC(lir.OpLoadInt, 1, 2, 0), // 4
		lir.ABC(lir.OpReturn, 0, 1, 0),  // 5
	}

	out := removeNops(instrs)

	if len(out) != 4 {
		t.Fatalf("expected 4 instructions, got %d", len(out))
	}

	if out[0].Op != lir.OpLoadInt {
		t.Fatalf("instr 0 = %s, want LoadInt", out[0].Op)
	}

	if out[1].Op != lir.OpJmp {
		t.Fatalf("instr 1 = %s, want Jmp (the two leading Nops were dropped)", out[1].Op)
	}

	// The Jmp (now at index 1) must still target the Return (now at index 3).
	target := 1 + 1 + int(out[1].Ax)
	if target != 3 {
		t.Errorf("repatched Jmp targets %d, want 3", target)
	}

	if out[2].Op != lir.OpLoadInt || out[3].Op != lir.OpReturn {
		t.Fatalf("unexpected tail: %v", out[2:])
	}
}

// Mirrors original_source's test_backward_jump_over_nop: a backward jump
// whose old target was the removed Nop itself must land on the first
// surviving instruction after it.
func TestRemoveNopsRepatchesBackwardJumpLandingOnNop(t *testing.T) {
	instrs := []lir.Instruction{
		lir.ABC(lir.OpLoadInt, 0, 0, 0), // 0
		lir.ABC(lir.OpNop, 0, 0, 0),     // 1 (removed; old jump target)
		lir.ABC(lir.OpLoadInt, 1, 1, 0), // 2
		lir.SAx(lir.OpJmp, -3),          // 3: target = 3+1-3 = 1 (the Nop)
		lir.ABC(lir.OpReturn, 0, 1, 0),  // 4
	}

	out := removeNops(instrs)

	if len(out) != 4 {
		t.Fatalf("expected 4 instructions, got %d", len(out))
	}

	if out[0].Op != lir.OpLoadInt || out[1].Op != lir.OpLoadInt {
		t.Fatalf("unexpected head: %v", out[:2])
	}

	if out[2].Op != lir.OpJmp {
		t.Fatalf("instr 2 = %s, want Jmp", out[2].Op)
	}

	// The removed Nop at old index 1 maps to the new index of the LoadInt
	// that followed it (now at new index 1); the Jmp (now at index 2) must
	// target that same new index.
	target := 2 + 1 + int(out[2].Ax)
	if target != 1 {
		t.Errorf("repatched backward Jmp targets %d, want 1", target)
	}

	if out[3].Op != lir.OpReturn {
		t.Fatalf("instr 3 = %s, want Return", out[3].Op)
	}
}

func TestRemoveNopsPreservesBreakAndHandlePush(t *testing.T) {
	instrs := []lir.Instruction{
		lir.SAx(lir.OpHandlePush, 3),
		lir.ABC(lir.OpNop, 0, 0, 0),
		lir.ABC(lir.OpLoadNil, 0, 0, 0),
		lir.SAx(lir.OpBreak, 0),
		lir.ABC(lir.OpReturn, 0, 1, 0),
	}

	out := removeNops(instrs)

	if len(out) != 4 {
		t.Fatalf("expected 4 instructions, got %d", len(out))
	}

	if out[0].Op != lir.OpHandlePush {
		t.Fatalf("instr 0 = %s, want HandlePush", out[0].Op)
	}
}

// eqTestFusion is written but intentionally never invoked from Cell/Handler
// — confirm Cell leaves an Eq+Test pair completely untouched.
func TestCellLeavesEqTestPairUnfused(t *testing.T) {
	cell := &lir.LirCell{
		Instrs: []lir.Instruction{
			lir.ABC(lir.OpEq, 10, 1, 2),
			lir.ABC(lir.OpTest, 10, 0, 0),
			lir.ABC(lir.OpReturn, 0, 1, 0),
		},
	}

	Cell(cell)

	if len(cell.Instrs) != 3 {
		t.Fatalf("expected Eq+Test+Return untouched, got %v", cell.Instrs)
	}

	if cell.Instrs[0].Op != lir.OpEq || cell.Instrs[0].A != 10 {
		t.Errorf("Eq instruction altered: %+v", cell.Instrs[0])
	}

	if cell.Instrs[1].Op != lir.OpTest {
		t.Errorf("Test instruction removed or altered: %+v", cell.Instrs[1])
	}
}

func TestModuleOptimizesEveryCellAndHandler(t *testing.T) {
	mod := &lir.LirModule{
		Cells: []lir.LirCell{
			{Name: "a", Instrs: []lir.Instruction{lir.ABC(lir.OpNop, 0, 0, 0), lir.ABC(lir.OpReturn, 0, 0, 0)}},
		},
		Handlers: []lir.LirHandler{
			{Name: "h", Instrs: []lir.Instruction{lir.ABC(lir.OpNop, 0, 0, 0), lir.ABC(lir.OpReturn, 0, 0, 0)}},
		},
	}

	Module(mod)

	if len(mod.Cells[0].Instrs) != 1 || mod.Cells[0].Instrs[0].Op != lir.OpReturn {
		t.Errorf("cell not optimized: %v", mod.Cells[0].Instrs)
	}

	if len(mod.Handlers[0].Instrs) != 1 || mod.Handlers[0].Instrs[0].Op != lir.OpReturn {
		t.Errorf("handler not optimized: %v", mod.Handlers[0].Instrs)
	}
}
