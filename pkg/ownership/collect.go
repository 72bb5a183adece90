package ownership

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/span"
)

// use is one occurrence of a tracked linear binding within the statement
// currently being scanned.
type use struct {
	name string
	sp   span.Span
}

// borrowUse is one occurrence of a tracked linear binding reached through
// FieldAccess/IndexAccess rather than used by value; mutable distinguishes
// an assignment target (`x.field = ...`) from a read (`x.field`).
type borrowUse struct {
	name    string
	sp      span.Span
	mutable bool
}

// scan accumulates every move and borrow occurrence found while walking a
// single statement's expressions. Moves and borrows are statement-scoped:
// a borrow never outlives the statement that took it (§4.6's stack is this
// scan's lifetime, not the enclosing block's).
type scan struct {
	moves   []use
	borrows []borrowUse
}

// walkValue records a move for every tracked Ident reached in value
// position, recursing into every expression shape the grammar has.
func walkValue(e ast.Expr, stk *stack, sc *scan) {
	if e == nil {
		return
	}

	switch x := e.(type) {
	case *ast.Ident:
		if _, ok := stk.lookup(x.Name); ok {
			sc.moves = append(sc.moves, use{name: x.Name, sp: x.Sp})
		}

	case *ast.Binary:
		walkValue(x.Left, stk, sc)
		walkValue(x.Right, stk, sc)

	case *ast.Unary:
		walkValue(x.Operand, stk, sc)

	case *ast.Call:
		walkValue(x.Callee, stk, sc)

		for _, a := range x.Args {
			walkValue(a, stk, sc)
		}

	case *ast.ToolCall:
		for _, a := range x.Args {
			walkValue(a, stk, sc)
		}

	case *ast.FieldAccess:
		walkBorrow(x.Target, stk, sc, false)

	case *ast.IndexAccess:
		walkBorrow(x.Target, stk, sc, false)
		walkValue(x.Index, stk, sc)

	case *ast.ListLit:
		for _, el := range x.Elems {
			walkValue(el, stk, sc)
		}

	case *ast.MapLit:
		for _, entry := range x.Entries {
			walkValue(entry.Key, stk, sc)
			walkValue(entry.Value, stk, sc)
		}

	case *ast.RecordLit:
		for _, f := range x.Fields {
			walkValue(f.Value, stk, sc)
		}

	case *ast.UnionLit:
		for _, p := range x.Payload {
			walkValue(p, stk, sc)
		}

	case *ast.MatchExpr:
		walkValue(x.Scrutinee, stk, sc)

		for _, arm := range x.Arms {
			walkValue(arm.Guard, stk, sc)
		}
	}
}

// walkBorrow records a borrow at the root Ident of a FieldAccess/IndexAccess
// chain (`x.a.b` and `x` borrow the same root, once) instead of a move.
func walkBorrow(e ast.Expr, stk *stack, sc *scan, mutable bool) {
	switch x := e.(type) {
	case *ast.Ident:
		if _, ok := stk.lookup(x.Name); ok {
			sc.borrows = append(sc.borrows, borrowUse{name: x.Name, sp: x.Sp, mutable: mutable})
		}

	case *ast.FieldAccess:
		walkBorrow(x.Target, stk, sc, mutable)

	case *ast.IndexAccess:
		walkBorrow(x.Target, stk, sc, mutable)
		walkValue(x.Index, stk, sc)

	default:
		walkValue(e, stk, sc)
	}
}
