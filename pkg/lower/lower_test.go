package lower

import (
	"testing"

	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/lir"
	"github.com/lumen-lang/lumen/pkg/resolver"
)

func newLowerer() *lowerer {
	return &lowerer{stringIdx: make(map[string]int), fieldIdx: make(map[string]int)}
}

func TestLowerSimpleCellReturnsLiteral(t *testing.T) {
	cell := &ast.Cell{
		Name: "answer",
		Body: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.IntLit{Value: 42}},
		},
	}

	lw := newLowerer()
	out, errs := lw.lowerCell(cell)

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if len(out.Instrs) != 2 {
		t.Fatalf("expected LoadK+Return, got %d instrs", len(out.Instrs))
	}

	if out.Instrs[0].Op != lir.OpLoadK {
		t.Errorf("instr 0 = %s, want LoadK", out.Instrs[0].Op)
	}

	if out.Instrs[1].Op != lir.OpReturn {
		t.Errorf("instr 1 = %s, want Return", out.Instrs[1].Op)
	}

	if out.Constants[0].IntVal != 42 {
		t.Errorf("constant = %d, want 42", out.Constants[0].IntVal)
	}
}

func TestLowerArithmeticEmitsExpectedOpcodes(t *testing.T) {
	cell := &ast.Cell{
		Name: "add",
		Params: []ast.Param{
			{Name: "a"}, {Name: "b"},
		},
		Body: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.Binary{
				Op:    "+",
				Left:  &ast.Ident{Name: "a"},
				Right: &ast.Ident{Name: "b"},
			}},
		},
	}

	lw := newLowerer()
	out, errs := lw.lowerCell(cell)

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	var gotAdd bool

	for _, ins := range out.Instrs {
		if ins.Op == lir.OpAdd {
			gotAdd = true

			if ins.A == ins.B || ins.A == ins.C {
				t.Errorf("Add dest %d should be a fresh register distinct from both operands", ins.A)
			}
		}
	}

	if !gotAdd {
		t.Fatalf("expected an Add instruction, got %v", out.Instrs)
	}

	if out.Params[0].Register != 0 || out.Params[1].Register != 1 {
		t.Errorf("expected params bound to r0/r1, got %d/%d", out.Params[0].Register, out.Params[1].Register)
	}
}

func TestLowerNotEqualEmitsEqThenNot(t *testing.T) {
	cell := &ast.Cell{
		Name: "neq",
		Body: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.Binary{
				Op:    "!=",
				Left:  &ast.IntLit{Value: 1},
				Right: &ast.IntLit{Value: 2},
			}},
		},
	}

	lw := newLowerer()
	out, _ := lw.lowerCell(cell)

	var sawEq, eqThenNot bool

	for i, ins := range out.Instrs {
		if ins.Op == lir.OpEq {
			sawEq = true

			if i+1 < len(out.Instrs) && out.Instrs[i+1].Op == lir.OpNot {
				eqThenNot = true
			}
		}
	}

	if !sawEq || !eqThenNot {
		t.Fatalf("expected Eq immediately followed by Not, got %v", out.Instrs)
	}
}

func TestLowerGreaterThanSwapsOperandsOntoLt(t *testing.T) {
	cell := &ast.Cell{
		Name: "gt",
		Body: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.Binary{
				Op:    ">",
				Left:  &ast.IntLit{Value: 5},
				Right: &ast.IntLit{Value: 3},
			}},
		},
	}

	lw := newLowerer()
	out, _ := lw.lowerCell(cell)

	var found bool

	for _, ins := range out.Instrs {
		if ins.Op == lir.OpLt {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected a > b to lower via Lt, got %v", out.Instrs)
	}
}

func TestLowerIfElsePatchesBothJumps(t *testing.T) {
	cell := &ast.Cell{
		Name: "cond",
		Body: []ast.Stmt{
			&ast.IfStmt{
				Cond: &ast.BoolLit{Value: true},
				Then: []ast.Stmt{
					&ast.ReturnStmt{Value: &ast.IntLit{Value: 1}},
				},
				Else: []ast.Stmt{
					&ast.ReturnStmt{Value: &ast.IntLit{Value: 2}},
				},
			},
		},
	}

	lw := newLowerer()
	out, errs := lw.lowerCell(cell)

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	var jmps int

	for i, ins := range out.Instrs {
		if ins.Op == lir.OpJmp {
			jmps++
			target := i + 1 + int(ins.Ax)

			if target < 0 || target > len(out.Instrs) {
				t.Errorf("Jmp at %d has out-of-range target %d", i, target)
			}
		}
	}

	if jmps != 2 {
		t.Fatalf("expected exactly 2 Jmp instructions (exit-then + end), got %d", jmps)
	}
}

func TestLowerWhileBackEdgeReturnsToHead(t *testing.T) {
	cell := &ast.Cell{
		Name: "loop",
		Body: []ast.Stmt{
			&ast.WhileStmt{
				Cond: &ast.BoolLit{Value: true},
				Body: []ast.Stmt{
					&ast.BreakStmt{},
				},
			},
			&ast.ReturnStmt{},
		},
	}

	lw := newLowerer()
	out, errs := lw.lowerCell(cell)

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	var sawBackEdge, sawBreak bool

	for i, ins := range out.Instrs {
		if ins.Op == lir.OpJmp && ins.Ax < 0 {
			sawBackEdge = true
		}

		if ins.Op == lir.OpBreak {
			sawBreak = true
			target := i + 1 + int(ins.Ax)

			if target <= i {
				t.Errorf("break target %d should be after its own pc %d", target, i)
			}
		}
	}

	if !sawBackEdge {
		t.Error("expected a negative-offset Jmp closing the while loop")
	}

	if !sawBreak {
		t.Error("expected a Break instruction patched to the loop exit")
	}
}

func TestLowerForInUsesLengthIntrinsicAndGetIndex(t *testing.T) {
	cell := &ast.Cell{
		Name: "sum",
		Body: []ast.Stmt{
			&ast.ForInStmt{
				Var:      "x",
				Iterable: &ast.Ident{Name: "xs"},
				Body:     []ast.Stmt{&ast.ContinueStmt{}},
			},
			&ast.ReturnStmt{},
		},
	}

	lw := newLowerer()
	out, errs := lw.lowerCell(cell)

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	var sawIntrinsic, sawGetIndex, sawLt bool

	for _, ins := range out.Instrs {
		switch ins.Op {
		case lir.OpIntrinsic:
			sawIntrinsic = true
		case lir.OpGetIndex:
			sawGetIndex = true
		case lir.OpLt:
			sawLt = true
		}
	}

	if !sawIntrinsic || !sawGetIndex || !sawLt {
		t.Fatalf("expected Intrinsic(Length)+Lt+GetIndex in unrolled for-in, got %v", out.Instrs)
	}
}

func TestLowerMatchLiteralPatternsPatchToNextArm(t *testing.T) {
	cell := &ast.Cell{
		Name: "classify",
		Body: []ast.Stmt{
			&ast.MatchStmt{
				Scrutinee: &ast.IntLit{Value: 1},
				Arms: []ast.MatchArm{
					{
						Pattern: &ast.LiteralPattern{Value: &ast.IntLit{Value: 1}},
						Body:    []ast.Stmt{&ast.ReturnStmt{Value: &ast.IntLit{Value: 10}}},
					},
					{
						Pattern: &ast.BindingPattern{Name: "other"},
						Body:    []ast.Stmt{&ast.ReturnStmt{Value: &ast.IntLit{Value: 20}}},
					},
				},
			},
		},
	}

	lw := newLowerer()
	out, errs := lw.lowerCell(cell)

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	var sawEqTest bool

	for _, ins := range out.Instrs {
		if ins.Op == lir.OpEq {
			sawEqTest = true
		}
	}

	if !sawEqTest {
		t.Fatalf("expected a literal-pattern arm to emit Eq, got %v", out.Instrs)
	}
}

func TestLowerStringInterpolationChainsAdd(t *testing.T) {
	cell := &ast.Cell{
		Name: "greet",
		Params: []ast.Param{
			{Name: "name"},
		},
		Body: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.StringLit{
				Parts: []ast.Expr{
					&ast.StringLit{Value: "hi "},
					&ast.Ident{Name: "name"},
				},
			}},
		},
	}

	lw := newLowerer()
	out, errs := lw.lowerCell(cell)

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	var sawAdd bool

	for _, ins := range out.Instrs {
		if ins.Op == lir.OpAdd {
			sawAdd = true
		}
	}

	if !sawAdd {
		t.Fatalf("expected interpolation to chain Add, got %v", out.Instrs)
	}
}

func TestLowerToolCallRecordsCallSite(t *testing.T) {
	cell := &ast.Cell{
		Name: "fetch",
		Body: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.ToolCall{
				Tool:   "http",
				Method: "get",
				Args:   []ast.Expr{&ast.StringLit{Value: "/status"}},
			}},
		},
	}

	lw := newLowerer()
	out, errs := lw.lowerCell(cell)

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if len(lw.toolSites) != 1 {
		t.Fatalf("expected 1 tool call site, got %d", len(lw.toolSites))
	}

	site := lw.toolSites[0]
	if site.Tool != "http" || site.Method != "get" || site.Args != 1 {
		t.Errorf("unexpected tool site: %+v", site)
	}

	var found bool

	for _, ins := range out.Instrs {
		if ins.Op == lir.OpToolCall && ins.Bx == 0 {
			found = true
		}
	}

	if !found {
		t.Error("expected ToolCall instruction referencing site 0")
	}
}

func TestLowerFieldAccessUsesBoundedFieldTable(t *testing.T) {
	cell := &ast.Cell{
		Name: "getX",
		Params: []ast.Param{
			{Name: "p"},
		},
		Body: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.FieldAccess{
				Target: &ast.Ident{Name: "p"},
				Field:  "x",
			}},
		},
	}

	lw := newLowerer()
	out, errs := lw.lowerCell(cell)

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if len(lw.fieldNames) != 1 || lw.fieldNames[0] != "x" {
		t.Fatalf("expected field table [x], got %v", lw.fieldNames)
	}

	var found bool

	for _, ins := range out.Instrs {
		if ins.Op == lir.OpGetField && ins.C == 0 {
			found = true
		}
	}

	if !found {
		t.Error("expected GetField with field index 0")
	}
}

func TestLowerRegisterOverflowReportsE0500(t *testing.T) {
	var body []ast.Stmt

	for i := 0; i < 300; i++ {
		body = append(body, &ast.LetStmt{
			Name:  nameFor(i),
			Value: &ast.IntLit{Value: int64(i)},
		})
	}

	body = append(body, &ast.ReturnStmt{})

	cell := &ast.Cell{Name: "overflow", Body: body}

	lw := newLowerer()
	_, errs := lw.lowerCell(cell)

	if len(errs) == 0 {
		t.Fatal("expected a register overflow error")
	}

	if errs[0].Code != "E0500" {
		t.Errorf("error code = %s, want E0500", errs[0].Code)
	}
}

func nameFor(i int) string {
	letters := "abcdefghijklmnopqrstuvwxyz"
	return string(letters[i%26]) + string(letters[(i/26)%26]) + string(rune('0'+i%10))
}

func TestLowerTopLevelCollectsRecordsAndCells(t *testing.T) {
	mod := &resolver.Module{
		Program: &ast.Program{
			Items: []ast.Item{
				&ast.Record{
					Name:   "Point",
					Fields: []ast.Field{{Name: "x"}, {Name: "y"}},
				},
				&ast.Cell{
					Name: "origin",
					Body: []ast.Stmt{
						&ast.ReturnStmt{Value: &ast.IntLit{Value: 0}},
					},
				},
			},
		},
	}

	out, errs := Lower(mod, "cell origin() { return 0 }")

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if len(out.Types) != 1 || out.Types[0].Name != "Point" {
		t.Fatalf("expected Point type, got %v", out.Types)
	}

	if len(out.Cells) != 1 || out.Cells[0].Name != "origin" {
		t.Fatalf("expected origin cell, got %v", out.Cells)
	}

	if out.DocHash == "" {
		t.Error("expected a non-empty doc hash")
	}
}
