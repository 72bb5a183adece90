package vm

import (
	"testing"

	"github.com/lumen-lang/lumen/pkg/lir"
	"github.com/lumen-lang/lumen/pkg/toolprovider"
)

func constInt(n int64) lir.Constant  { return lir.Constant{Kind: lir.ConstInt, IntVal: n} }
func constStr(s string) lir.Constant { return lir.Constant{Kind: lir.ConstString, StringVal: s} }

func moduleWithCells(cells ...lir.LirCell) *lir.LirModule {
	m := lir.NewModule("sha256:test")
	m.Cells = cells
	return m
}

func runCell(t *testing.T, m *lir.LirModule, name string, args ...Value) (Value, *Error) {
	t.Helper()

	machine := New(nil)
	machine.Load(m)

	return machine.Execute(name, args)
}

// mirrors the reference VM's test_vm_return_42: a cell that loads the
// constant 42 and returns it immediately.
func TestReturn42(t *testing.T) {
	cell := lir.LirCell{
		Name:      "main",
		Registers: 1,
		Constants: []lir.Constant{constInt(42)},
		Instrs: []lir.Instruction{
			lir.ABx(lir.OpLoadK, 0, 0),
			lir.ABC(lir.OpReturn, 0, 1, 0),
		},
	}

	got, err := runCell(t, moduleWithCells(cell), "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Kind != KindInt || got.Int != 42 {
		t.Errorf("got %+v, want Int(42)", got)
	}
}

// mirrors the reference VM's test_vm_add: load two constants, add them.
func TestAddTwoConstants(t *testing.T) {
	cell := lir.LirCell{
		Name:      "main",
		Registers: 3,
		Constants: []lir.Constant{constInt(2), constInt(3)},
		Instrs: []lir.Instruction{
			lir.ABx(lir.OpLoadK, 0, 0),
			lir.ABx(lir.OpLoadK, 1, 1),
			lir.ABC(lir.OpAdd, 2, 0, 1),
			lir.ABC(lir.OpReturn, 2, 1, 0),
		},
	}

	got, err := runCell(t, moduleWithCells(cell), "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Kind != KindInt || got.Int != 5 {
		t.Errorf("got %+v, want Int(5)", got)
	}
}

// e2e_arithmetic_precedence: 2+3*4 lowered directly as 3*4 then +2 -> 14.
func TestArithmeticPrecedence(t *testing.T) {
	cell := lir.LirCell{
		Name:      "main",
		Registers: 4,
		Constants: []lir.Constant{constInt(2), constInt(3), constInt(4)},
		Instrs: []lir.Instruction{
			lir.ABx(lir.OpLoadK, 1, 1),
			lir.ABx(lir.OpLoadK, 2, 2),
			lir.ABC(lir.OpMul, 3, 1, 2),
			lir.ABx(lir.OpLoadK, 0, 0),
			lir.ABC(lir.OpAdd, 3, 0, 3),
			lir.ABC(lir.OpReturn, 3, 1, 0),
		},
	}

	got, err := runCell(t, moduleWithCells(cell), "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Kind != KindInt || got.Int != 14 {
		t.Errorf("got %+v, want Int(14)", got)
	}
}

// e2e_integer_division: 10/3 truncates toward zero.
func TestIntegerDivisionTruncates(t *testing.T) {
	cell := lir.LirCell{
		Name:      "main",
		Registers: 3,
		Constants: []lir.Constant{constInt(10), constInt(3)},
		Instrs: []lir.Instruction{
			lir.ABx(lir.OpLoadK, 0, 0),
			lir.ABx(lir.OpLoadK, 1, 1),
			lir.ABC(lir.OpDiv, 2, 0, 1),
			lir.ABC(lir.OpReturn, 2, 1, 0),
		},
	}

	got, err := runCell(t, moduleWithCells(cell), "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Int != 3 {
		t.Errorf("got %+v, want Int(3)", got)
	}
}

// division by zero surfaces as a Runtime error rather than panicking.
func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	cell := lir.LirCell{
		Name:      "main",
		Registers: 3,
		Constants: []lir.Constant{constInt(10), constInt(0)},
		Instrs: []lir.Instruction{
			lir.ABx(lir.OpLoadK, 0, 0),
			lir.ABx(lir.OpLoadK, 1, 1),
			lir.ABC(lir.OpDiv, 2, 0, 1),
			lir.ABC(lir.OpReturn, 2, 1, 0),
		},
	}

	_, err := runCell(t, moduleWithCells(cell), "main")
	if err == nil || err.Kind != Runtime {
		t.Fatalf("got %v, want a Runtime error", err)
	}
}

// e2e_string_concat: "hello"+" world" via Add's string overload.
func TestStringConcatViaAdd(t *testing.T) {
	cell := lir.LirCell{
		Name:      "main",
		Registers: 3,
		Constants: []lir.Constant{constStr("hello"), constStr(" world")},
		Instrs: []lir.Instruction{
			lir.ABx(lir.OpLoadK, 0, 0),
			lir.ABx(lir.OpLoadK, 1, 1),
			lir.ABC(lir.OpAdd, 2, 0, 1),
			lir.ABC(lir.OpReturn, 2, 1, 0),
		},
	}

	got, err := runCell(t, moduleWithCells(cell), "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Kind != KindString || got.Str != "hello world" {
		t.Errorf("got %+v, want String(\"hello world\")", got)
	}
}

// e2e_while_loop_with_break: while true { if i>=5 break; i=i+1 }; return i.
func TestWhileLoopWithBreak(t *testing.T) {
	cell := lir.LirCell{
		Name:      "main",
		Registers: 4,
		Constants: []lir.Constant{constInt(0), constInt(5), constInt(1)},
		Instrs: []lir.Instruction{
			lir.ABx(lir.OpLoadK, 0, 0), // r0 = i = 0
			// loop head (pc=1)
			lir.ABx(lir.OpLoadK, 1, 1),   // r1 = 5
			lir.ABC(lir.OpLe, 2, 1, 0),   // r2 = 5 <= i  (i.e. i >= 5)
			lir.ABC(lir.OpTest, 2, 0, 0), // skip Break if r2 is false
			lir.SAx(lir.OpBreak, 3),      // break out, landing on Return (idx8)
			lir.ABx(lir.OpLoadK, 3, 2),   // r3 = 1
			lir.ABC(lir.OpAdd, 0, 0, 3),  // i = i + 1
			lir.SAx(lir.OpJmp, -7),       // back to loop head (pc=1)
			lir.ABC(lir.OpReturn, 0, 1, 0),
		},
	}

	got, err := runCell(t, moduleWithCells(cell), "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Int != 5 {
		t.Errorf("got %+v, want Int(5)", got)
	}
}

// e2e_cell_calls: double(21) -> 42, via an ordinary (non-tail) Call.
func TestOrdinaryCallReturnsToCaller(t *testing.T) {
	double := lir.LirCell{
		Name:      "double",
		Registers: 3,
		Constants: []lir.Constant{constInt(2)},
		Instrs: []lir.Instruction{
			lir.ABx(lir.OpLoadK, 1, 0),
			lir.ABC(lir.OpMul, 2, 0, 1),
			lir.ABC(lir.OpReturn, 2, 1, 0),
		},
	}

	main := lir.LirCell{
		Name:      "main",
		Registers: 3,
		Constants: []lir.Constant{constStr("double"), constInt(21)},
		Instrs: []lir.Instruction{
			lir.ABx(lir.OpLoadK, 0, 0), // r0 = "double"
			lir.ABx(lir.OpLoadK, 1, 1), // r1 = 21 (arg)
			lir.ABC(lir.OpCall, 0, 1, 1),
			lir.ABC(lir.OpReturn, 0, 1, 0),
		},
	}

	got, err := runCell(t, moduleWithCells(main, double), "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Int != 42 {
		t.Errorf("got %+v, want Int(42)", got)
	}
}

// e2e_recursive_factorial: non-tail recursive factorial(5) == 120.
func TestRecursiveFactorial(t *testing.T) {
	// factorial(n): if n <= 1 return 1; return n * factorial(n-1)
	factorial := lir.LirCell{
		Name:      "factorial",
		Registers: 6,
		Constants: []lir.Constant{constInt(1), constStr("factorial")},
		Instrs: []lir.Instruction{
			lir.ABx(lir.OpLoadK, 1, 0),   // r1 = 1
			lir.ABC(lir.OpLe, 2, 0, 1),   // r2 = n <= 1
			lir.ABC(lir.OpTest, 2, 0, 1), // skip the else-jump if r2 is true
			lir.SAx(lir.OpJmp, 1),        // jump to else (past the base-case return)
			lir.ABC(lir.OpReturn, 1, 1, 0),
			// else: r3 = "factorial"; r4 = n-1; call -> r3; r5 = n*r3; return r5
			lir.ABx(lir.OpLoadK, 3, 1),
			lir.ABC(lir.OpSub, 4, 0, 1),
			lir.ABC(lir.OpCall, 3, 1, 1),
			lir.ABC(lir.OpMul, 5, 0, 3),
			lir.ABC(lir.OpReturn, 5, 1, 0),
		},
	}

	got, err := runCell(t, moduleWithCells(factorial), "factorial", IntVal(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Int != 120 {
		t.Errorf("got %+v, want Int(120)", got)
	}
}

// countdown(n, acc): tail-recursive; countdown(0,acc)=acc, else
// countdown(n-1, acc+1). Exercises TailCall's in-place frame reuse: a
// naive Call-based implementation would overflow maxCallDepth long before
// reaching a large n, but TailCall must handle it in constant stack depth
// (§8's TCO depth property, §9's tail-call correctness contract).
func countdownModule() *lir.LirModule {
	cell := lir.LirCell{
		Name:      "countdown",
		Registers: 7,
		Constants: []lir.Constant{constInt(0), constInt(1), constStr("countdown")},
		Instrs: []lir.Instruction{
			lir.ABx(lir.OpLoadK, 2, 0),   // r2 = 0
			lir.ABC(lir.OpEq, 3, 0, 2),   // r3 = (n == 0)
			lir.ABC(lir.OpTest, 3, 0, 1), // skip the recursive-jump if r3 is true
			lir.SAx(lir.OpJmp, 1),        // jump to recursive branch
			lir.ABC(lir.OpReturn, 1, 1, 0),
			// recursive branch: callee in r4, new args built directly into
			// the contiguous block TailCall expects at r5,r6 (A+1..A+1+B).
			lir.ABx(lir.OpLoadK, 4, 2),  // r4 = "countdown"
			lir.ABx(lir.OpLoadK, 2, 1),  // r2 = 1 (reuse)
			lir.ABC(lir.OpSub, 5, 0, 2), // r5 = n - 1      (new arg 0)
			lir.ABC(lir.OpAdd, 6, 1, 2), // r6 = acc + 1    (new arg 1)
			lir.ABC(lir.OpTailCall, 4, 2, 1),
		},
	}

	return moduleWithCells(cell)
}

func TestTailCallDoesNotGrowFrameStack(t *testing.T) {
	got, err := runCell(t, countdownModule(), "countdown", IntVal(10000), IntVal(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Int != 10000 {
		t.Errorf("got %+v, want Int(10000)", got)
	}
}

func TestTailCallHandlesDeepRecursionWithoutStackOverflow(t *testing.T) {
	got, err := runCell(t, countdownModule(), "countdown", IntVal(1000000), IntVal(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Int != 1000000 {
		t.Errorf("got %+v, want Int(1000000)", got)
	}
}

// a non-tail-recursive Call chain past maxCallDepth must fail with
// StackOverflow rather than exhausting the Go stack.
func TestOrdinaryCallOverflowsAtMaxDepth(t *testing.T) {
	cell := lir.LirCell{
		Name:      "loop",
		Registers: 3,
		Constants: []lir.Constant{constStr("loop")},
		Instrs: []lir.Instruction{
			lir.ABx(lir.OpLoadK, 0, 0),
			lir.ABC(lir.OpCall, 0, 0, 1),
			lir.ABC(lir.OpReturn, 0, 1, 0),
		},
	}

	_, err := runCell(t, moduleWithCells(cell), "loop")
	if err == nil || err.Kind != StackOverflow {
		t.Fatalf("got %v, want a StackOverflow error", err)
	}
}

func TestUndefinedCellErrors(t *testing.T) {
	_, err := runCell(t, moduleWithCells(), "missing")
	if err == nil || err.Kind != UndefinedCell {
		t.Fatalf("got %v, want an UndefinedCell error", err)
	}
}

func TestHaltReturnsHaltError(t *testing.T) {
	cell := lir.LirCell{
		Name:      "main",
		Registers: 1,
		Constants: []lir.Constant{constStr("boom")},
		Instrs: []lir.Instruction{
			lir.ABx(lir.OpLoadK, 0, 0),
			lir.ABC(lir.OpHalt, 0, 0, 0),
		},
	}

	_, err := runCell(t, moduleWithCells(cell), "main")
	if err == nil || err.Kind != Halt || err.Message != "boom" {
		t.Fatalf("got %v, want Halt(\"boom\")", err)
	}
}

func TestRegisterOOBIsAnErrorNotAPanic(t *testing.T) {
	cell := lir.LirCell{
		Name:      "main",
		Registers: 1,
		Instrs: []lir.Instruction{
			lir.ABC(lir.OpReturn, 5, 1, 0),
		},
	}

	_, err := runCell(t, moduleWithCells(cell), "main")
	if err == nil || err.Kind != RegisterOOB {
		t.Fatalf("got %v, want a RegisterOOB error", err)
	}
}

// e2e_list_length: length([10,20,30]) == 3, built via a contiguous
// NewList block.
func TestNewListAndLengthIntrinsic(t *testing.T) {
	cell := lir.LirCell{
		Name:      "main",
		Registers: 6,
		Constants: []lir.Constant{constInt(10), constInt(20), constInt(30)},
		Instrs: []lir.Instruction{
			lir.ABx(lir.OpLoadK, 1, 0),
			lir.ABx(lir.OpLoadK, 2, 1),
			lir.ABx(lir.OpLoadK, 3, 2),
			lir.ABC(lir.OpNewList, 0, 3, 0),
			lir.ABC(lir.OpIntrinsic, 4, uint8(lir.IntrinsicLength), 0),
			lir.ABC(lir.OpReturn, 4, 1, 0),
		},
	}

	got, err := runCell(t, moduleWithCells(cell), "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Int != 3 {
		t.Errorf("got %+v, want Int(3)", got)
	}
}

func TestNewRecordPopulatesFieldsByDeclaredOrder(t *testing.T) {
	m := lir.NewModule("sha256:test")
	m.Types = []lir.LirType{{
		Kind: "record",
		Name: "Point",
		Fields: []lir.LirField{
			{Name: "x", Type: "Int"},
			{Name: "y", Type: "Int"},
		},
	}}
	m.FieldNames = []string{"x", "y"}
	m.Strings = []string{"Point"}
	m.Cells = []lir.LirCell{{
		Name:      "main",
		Registers: 4,
		Constants: []lir.Constant{constInt(1), constInt(2)},
		Instrs: []lir.Instruction{
			lir.ABx(lir.OpLoadK, 1, 0), // r1 = x = 1
			lir.ABx(lir.OpLoadK, 2, 1), // r2 = y = 2
			lir.ABx(lir.OpNewRecord, 0, 0),
			lir.ABC(lir.OpGetField, 3, 0, 1), // r3 = record.y
			lir.ABC(lir.OpReturn, 3, 1, 0),
		},
	}}

	got, err := runCell(t, m, "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Int != 2 {
		t.Errorf("got %+v, want Int(2) (field y)", got)
	}
}

func TestToolCallDelegatesToRegisteredProvider(t *testing.T) {
	m := lir.NewModule("sha256:test")
	m.Tools = []lir.LirTool{{Alias: "weather", ToolID: "weather.v1"}}
	m.ToolSite = []lir.ToolCallSite{{Tool: "weather", Method: "lookup", Args: 1}}
	m.Cells = []lir.LirCell{{
		Name:      "main",
		Registers: 3,
		Constants: []lir.Constant{constStr("paris")},
		Instrs: []lir.Instruction{
			lir.ABx(lir.OpLoadK, 1, 0),
			lir.ABx(lir.OpToolCall, 0, 0),
			lir.ABC(lir.OpReturn, 0, 1, 0),
		},
	}}

	machine := New(nil)
	mock := &mockWeatherProvider{}
	machine.registry.Register("weather.v1", mock)
	machine.Load(m)

	got, err := machine.Execute("main", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Kind != KindMap {
		t.Fatalf("got %+v, want a Map result", got)
	}

	if got.Map["city"].Str != "paris" {
		t.Errorf("got %+v, want city=paris echoed back", got)
	}
}

type mockWeatherProvider struct{}

func (mockWeatherProvider) Name() string                 { return "weather" }
func (mockWeatherProvider) Version() string              { return "1.0.0" }
func (mockWeatherProvider) Schema() toolprovider.Schema   { return toolprovider.Schema{} }
func (mockWeatherProvider) Capabilities() []string        { return nil }

func (mockWeatherProvider) Call(inputJSON []byte) ([]byte, error) {
	return []byte(`{"city":"paris","tempC":18}`), nil
}
