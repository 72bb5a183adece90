package wasm

import (
	"bytes"
	"testing"

	"github.com/lumen-lang/lumen/pkg/lir"
)

func moduleWithCells(cells ...lir.LirCell) *lir.LirModule {
	m := lir.NewModule("sha256:test")
	m.Cells = cells
	return m
}

func constInt(n int64) lir.Constant { return lir.Constant{Kind: lir.ConstInt, IntVal: n} }

// mirrors the reference backend's compile_empty_module test.
func TestCompileEmptyModuleErrors(t *testing.T) {
	_, err := Compile(moduleWithCells())
	if err == nil {
		t.Fatal("expected an error compiling a module with no cells")
	}
}

// mirrors simple_add_cell: a two-parameter cell returning their sum.
func TestCompileSimpleAddCell(t *testing.T) {
	cell := lir.LirCell{
		Name:      "add",
		Params:    []lir.LirParam{{Name: "a", Type: "Int", Register: 0}, {Name: "b", Type: "Int", Register: 1}},
		Returns:   "Int",
		Registers: 3,
		Instrs: []lir.Instruction{
			lir.ABC(lir.OpAdd, 2, 0, 1),
			lir.ABC(lir.OpReturn, 2, 0, 0),
		},
	}

	out, err := Compile(moduleWithCells(cell))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(out[:4], wasmMagic[:]) {
		t.Fatalf("missing wasm magic: %x", out[:4])
	}
	if !bytes.Equal(out[4:8], wasmVersion[:]) {
		t.Fatalf("missing wasm version: %x", out[4:8])
	}

	if !containsByteRun(out, []byte{opLocalGet, 0, opLocalGet, 1, opI64Add, opLocalSet, 2}) {
		t.Error("expected a straight-line add sequence in the code section")
	}
}

// mirrors const_cell: a zero-arg cell that loads and returns a constant.
func TestCompileConstCell(t *testing.T) {
	cell := lir.LirCell{
		Name:      "answer",
		Returns:   "Int",
		Registers: 1,
		Constants: []lir.Constant{constInt(42)},
		Instrs: []lir.Instruction{
			lir.ABx(lir.OpLoadK, 0, 0),
			lir.ABC(lir.OpReturn, 0, 0, 0),
		},
	}

	out, err := Compile(moduleWithCells(cell))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !containsByteRun(out, []byte{opI64Const, 42}) {
		t.Error("expected i64.const 42 in the code section")
	}
}

func TestCompileFloatConstant(t *testing.T) {
	cell := lir.LirCell{
		Name:      "pi",
		Returns:   "Float",
		Registers: 1,
		Constants: []lir.Constant{{Kind: lir.ConstFloat, FloatVal: 3.5}},
		Instrs: []lir.Instruction{
			lir.ABx(lir.OpLoadK, 0, 0),
			lir.ABC(lir.OpReturn, 0, 0, 0),
		},
	}

	out, err := Compile(moduleWithCells(cell))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !containsByteRun(out, []byte{opF64Const}) || !containsByteRun(out, []byte{opI64ReinterpretF64}) {
		t.Error("expected f64.const followed by i64.reinterpret_f64")
	}
}

func TestCompileArithmeticAndComparisonOps(t *testing.T) {
	cases := []struct {
		op   lir.OpCode
		want byte
	}{
		{lir.OpAdd, opI64Add},
		{lir.OpSub, opI64Sub},
		{lir.OpMul, opI64Mul},
		{lir.OpDiv, opI64DivS},
		{lir.OpMod, opI64RemS},
		{lir.OpBitAnd, opI64And},
		{lir.OpBitOr, opI64Or},
		{lir.OpBitXor, opI64Xor},
		{lir.OpShl, opI64Shl},
		{lir.OpShr, opI64ShrS},
		{lir.OpEq, opI64Eq},
		{lir.OpLt, opI64LtS},
		{lir.OpLe, opI64LeS},
	}

	for _, tc := range cases {
		cell := lir.LirCell{
			Name:      "op",
			Params:    []lir.LirParam{{Name: "a", Register: 0}, {Name: "b", Register: 1}},
			Returns:   "Int",
			Registers: 3,
			Instrs: []lir.Instruction{
				lir.ABC(tc.op, 2, 0, 1),
				lir.ABC(lir.OpReturn, 2, 0, 0),
			},
		}

		out, err := Compile(moduleWithCells(cell))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.op, err)
		}

		if !containsByteRun(out, []byte{opLocalGet, 0, opLocalGet, 1, tc.want}) {
			t.Errorf("%s: expected opcode byte %#x in code section", tc.op, tc.want)
		}
	}
}

// mirrors compile_conditional_branch: Le/Test/Jmp choosing between two
// returns, the minimal shape that forces the switch-loop trampoline.
func TestCompileConditionalBranch(t *testing.T) {
	cell := lir.LirCell{
		Name:      "max",
		Params:    []lir.LirParam{{Name: "a", Register: 0}, {Name: "b", Register: 1}},
		Returns:   "Int",
		Registers: 3,
		Instrs: []lir.Instruction{
			lir.ABC(lir.OpLe, 2, 0, 1),       // idx0: r2 = a<=b
			lir.ABC(lir.OpTest, 2, 0, 1),     // idx1: skip idx2 if r2 true
			lir.SAx(lir.OpJmp, 1),            // idx2: jump to idx4 (else)
			lir.ABC(lir.OpReturn, 1, 0, 0),   // idx3: return b (a<=b branch)
			lir.ABC(lir.OpReturn, 0, 0, 0),   // idx4: return a (else)
		},
	}

	out, err := Compile(moduleWithCells(cell))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !containsByte(out, opBrTable) {
		t.Error("expected a br_table dispatcher for a cell containing Test/Jmp")
	}
	if !containsByte(out, opIf) {
		t.Error("expected an if block for the Test instruction")
	}

	numBlocks := countByteRun(out, []byte{opBlock, blockTypeEmpty})
	if numBlocks < len(cell.Instrs) {
		t.Errorf("expected at least %d nested dispatch blocks, counted %d", len(cell.Instrs), numBlocks)
	}
}

// mirrors compile_simple_loop: a while-loop with a Jmp back-edge, forcing
// the trampoline and exercising its backward branch target math.
func TestCompileSimpleLoop(t *testing.T) {
	cell := lir.LirCell{
		Name:      "sumTo",
		Params:    []lir.LirParam{{Name: "n", Register: 0}},
		Returns:   "Int",
		Registers: 4,
		Constants: []lir.Constant{constInt(0), constInt(1)},
		Instrs: []lir.Instruction{
			lir.ABx(lir.OpLoadK, 1, 0),     // idx0: acc = 0
			lir.ABC(lir.OpLe, 2, 0, 1),     // idx1: r2 = n<=acc (placeholder cond)
			lir.ABC(lir.OpTest, 2, 0, 0),   // idx2: skip Break if r2 false
			lir.SAx(lir.OpBreak, 2),        // idx3: break to idx6
			lir.ABC(lir.OpAdd, 1, 1, 0),    // idx4: acc += n
			lir.SAx(lir.OpJmp, -5),         // idx5: back to idx1
			lir.ABC(lir.OpReturn, 1, 0, 0), // idx6: return acc
		},
	}

	out, err := Compile(moduleWithCells(cell))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !containsByte(out, opBrTable) {
		t.Error("expected a br_table dispatcher for a loop body")
	}
}

func TestCompileVoidCellReturnHasNoLeadingLocalGet(t *testing.T) {
	cell := lir.LirCell{
		Name:      "sideEffect",
		Registers: 1,
		Instrs: []lir.Instruction{
			lir.ABC(lir.OpReturn, 0, 0, 0),
		},
	}

	out, err := Compile(moduleWithCells(cell))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if containsByteRun(out, []byte{opLocalGet, 0, opReturn}) {
		t.Error("void cell's Return should not read a register before returning")
	}
	if !containsByte(out, opReturn) {
		t.Error("expected a return opcode somewhere in the body")
	}
}

func TestDedupeSigsMergesIdenticalShapes(t *testing.T) {
	sigs := []cellSig{
		{paramCount: 2, hasReturn: true},
		{paramCount: 1, hasReturn: false},
		{paramCount: 2, hasReturn: true},
	}

	unique := dedupeSigs(sigs)
	if len(unique) != 2 {
		t.Fatalf("expected 2 unique signatures, got %d", len(unique))
	}

	fn := buildFunctionSection(sigs, unique)
	// count, then one index byte per cell (all indices fit in one uleb128 byte here)
	if len(fn) != 1+len(sigs) {
		t.Fatalf("unexpected function section length %d", len(fn))
	}
	if fn[1] != fn[3] {
		t.Error("cells 0 and 2 share a signature and should share a type index")
	}
	if fn[1] == fn[2] {
		t.Error("cells 0 and 1 have different signatures and should not share a type index")
	}
}

func containsByteRun(haystack, needle []byte) bool {
	return bytes.Contains(haystack, needle)
}

func containsByte(haystack []byte, b byte) bool {
	return bytes.IndexByte(haystack, b) >= 0
}

func countByteRun(haystack, needle []byte) int {
	count := 0
	idx := 0
	for {
		i := bytes.Index(haystack[idx:], needle)
		if i < 0 {
			return count
		}
		count++
		idx += i + 1
	}
}
