package vm

import (
	"math"

	"github.com/lumen-lang/lumen/pkg/lir"
)

// binaryOp implements Add/Sub/Mul/Div/Mod/FloorDiv/BitAnd/BitOr/BitXor/
// Shl/Shr. Int/Float combinations widen to Float exactly like the
// reference VM's arith_op helper; Add additionally overloads onto String
// concatenation (no dedicated Concat opcode exists in this ISA, matching
// §3's opcode list — string "+" lowers through Add in both this VM and
// the lowerer).
func (vm *VM) binaryOp(frame *callFrame, cell *lir.LirCell, instr lir.Instruction) (Value, *Error) {
	lhs, err := vm.getReg(frame, cell, instr.B)
	if err != nil {
		return Value{}, err
	}

	rhs, err := vm.getReg(frame, cell, instr.C)
	if err != nil {
		return Value{}, err
	}

	if instr.Op == lir.OpAdd && (lhs.Kind == KindString || rhs.Kind == KindString) {
		return StringVal(lhs.AsString() + rhs.AsString()), nil
	}

	switch instr.Op {
	case lir.OpBitAnd, lir.OpBitOr, lir.OpBitXor, lir.OpShl, lir.OpShr:
		if lhs.Kind != KindInt || rhs.Kind != KindInt {
			return Value{}, typeErr(vm.frameChain(), "%s requires two Ints, got %s and %s", instr.Op, lhs.Kind, rhs.Kind)
		}

		return IntVal(intBitwise(instr.Op, lhs.Int, rhs.Int)), nil
	}

	if lhs.Kind == KindInt && rhs.Kind == KindInt {
		n, zerr := intArith(instr.Op, lhs.Int, rhs.Int)
		if zerr != nil {
			return Value{}, runtimeErr(vm.frameChain(), "%s", zerr)
		}

		return IntVal(n), nil
	}

	lf, lok := asFloat(lhs)
	rf, rok := asFloat(rhs)
	if !lok || !rok {
		return Value{}, typeErr(vm.frameChain(), "%s requires two numbers, got %s and %s", instr.Op, lhs.Kind, rhs.Kind)
	}

	return FloatVal(floatArith(instr.Op, lf, rf)), nil
}

func asFloat(v Value) (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

func intArith(op lir.OpCode, a, b int64) (int64, error) {
	switch op {
	case lir.OpAdd:
		return a + b, nil
	case lir.OpSub:
		return a - b, nil
	case lir.OpMul:
		return a * b, nil
	case lir.OpDiv, lir.OpFloorDiv:
		if b == 0 {
			return 0, errDivByZero
		}

		q := a / b
		if op == lir.OpFloorDiv && (a%b != 0) && ((a < 0) != (b < 0)) {
			q--
		}

		return q, nil
	case lir.OpMod:
		if b == 0 {
			return 0, errDivByZero
		}

		return a % b, nil
	default:
		return 0, nil
	}
}

func floatArith(op lir.OpCode, a, b float64) float64 {
	switch op {
	case lir.OpAdd:
		return a + b
	case lir.OpSub:
		return a - b
	case lir.OpMul:
		return a * b
	case lir.OpDiv, lir.OpFloorDiv:
		return a / b
	case lir.OpMod:
		return math.Mod(a, b)
	default:
		return 0
	}
}

func intBitwise(op lir.OpCode, a, b int64) int64 {
	switch op {
	case lir.OpBitAnd:
		return a & b
	case lir.OpBitOr:
		return a | b
	case lir.OpBitXor:
		return a ^ b
	case lir.OpShl:
		return a << uint(b)
	case lir.OpShr:
		return a >> uint(b)
	default:
		return 0
	}
}

var errDivByZero = divByZeroErr{}

type divByZeroErr struct{}

func (divByZeroErr) Error() string { return "division by zero" }

// compareOp implements Lt/Le. Like the reference VM, a comparison between
// non-numeric operands resolves to false rather than a TypeError.
func (vm *VM) compareOp(frame *callFrame, cell *lir.LirCell, instr lir.Instruction) (Value, *Error) {
	lhs, err := vm.getReg(frame, cell, instr.B)
	if err != nil {
		return Value{}, err
	}

	rhs, err := vm.getReg(frame, cell, instr.C)
	if err != nil {
		return Value{}, err
	}

	lf, lok := asFloat(lhs)
	rf, rok := asFloat(rhs)
	if !lok || !rok {
		return BoolVal(false), nil
	}

	if instr.Op == lir.OpLt {
		return BoolVal(lf < rf), nil
	}

	return BoolVal(lf <= rf), nil
}
