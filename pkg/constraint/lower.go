package constraint

import "github.com/lumen-lang/lumen/pkg/ast"

var cmpOps = map[string]bool{"<": true, "<=": true, ">": true, ">=": true, "==": true, "!=": true}
var arithOps = map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true}

// lowerExpr attempts to fit expr into the constraint DSL. ok is false when
// expr uses a shape the DSL cannot express (a call, a field access, a
// non-comparison binary at the top, ...); the caller marks such clauses
// unverified rather than rejecting them.
func lowerExpr(expr ast.Expr) (Constraint, bool) {
	switch x := expr.(type) {
	case *ast.BoolLit:
		return BoolConst{Value: x.Value}, true

	case *ast.Unary:
		if x.Op != "not" {
			return nil, false
		}

		inner, ok := lowerExpr(x.Operand)
		if !ok {
			return nil, false
		}

		return Not{Clause: inner}, true

	case *ast.Binary:
		return lowerBinary(x)
	}

	return nil, false
}

func lowerBinary(x *ast.Binary) (Constraint, bool) {
	switch x.Op {
	case "and", "&&":
		left, ok := lowerExpr(x.Left)
		if !ok {
			return nil, false
		}

		right, ok := lowerExpr(x.Right)
		if !ok {
			return nil, false
		}

		return And{Clauses: []Constraint{left, right}}, true

	case "or", "||":
		left, ok := lowerExpr(x.Left)
		if !ok {
			return nil, false
		}

		right, ok := lowerExpr(x.Right)
		if !ok {
			return nil, false
		}

		return Or{Clauses: []Constraint{left, right}}, true
	}

	if !cmpOps[x.Op] {
		return nil, false
	}

	return lowerComparison(x)
}

// lowerComparison handles the three leaf shapes: `var OP const`,
// `var OP var`, and `(var ARITH const) OP const`.
func lowerComparison(x *ast.Binary) (Constraint, bool) {
	if lhsArith, lhsConst, ok := asArith(x.Left); ok {
		if rhsVal, ok := asConst(x.Right); ok {
			return Arithmetic{
				Var:        lhsArith,
				ArithOp:    lhsConstOp(x.Left),
				ArithConst: lhsConst,
				CmpOp:      x.Op,
				CmpValue:   rhsVal,
			}, true
		}
	}

	leftIdent, leftIsIdent := x.Left.(*ast.Ident)
	rightIdent, rightIsIdent := x.Right.(*ast.Ident)

	if leftIsIdent && rightIsIdent {
		return VarComparison{Left: leftIdent.Name, Op: x.Op, Right: rightIdent.Name}, true
	}

	if leftIsIdent {
		if v, ok := asConst(x.Right); ok {
			return IntComparison{Var: leftIdent.Name, Op: x.Op, Value: v}, true
		}
	}

	if rightIsIdent {
		if v, ok := asConst(x.Left); ok {
			// `const OP var` is `var OP' const` with OP mirrored (not negated).
			mirrored := map[string]string{"<": ">", "<=": ">=", ">": "<", ">=": "<=", "==": "==", "!=": "!="}[x.Op]
			return IntComparison{Var: rightIdent.Name, Op: mirrored, Value: v}, true
		}
	}

	return nil, false
}

// asArith recognises `var ARITH_OP const` and returns the var name and the
// constant operand; the arithmetic operator itself is fetched separately
// via lhsConstOp since Go has no multi-value struct literal shorthand here.
func asArith(e ast.Expr) (string, int64, bool) {
	b, ok := e.(*ast.Binary)
	if !ok || !arithOps[b.Op] {
		return "", 0, false
	}

	ident, ok := b.Left.(*ast.Ident)
	if !ok {
		return "", 0, false
	}

	c, ok := asConst(b.Right)
	if !ok {
		return "", 0, false
	}

	return ident.Name, c, true
}

func lhsConstOp(e ast.Expr) string {
	return e.(*ast.Binary).Op
}

func asConst(e ast.Expr) (int64, bool) {
	switch x := e.(type) {
	case *ast.IntLit:
		return x.Value, true
	case *ast.BoolLit:
		if x.Value {
			return 1, true
		}

		return 0, true
	}

	return 0, false
}
