// Package constraint implements §4.5: lowering `where` clauses into a small
// constraint DSL, and a naive DPLL-style solver that propagates interval
// bounds over it to report UNSAT where clauses before they ever reach the VM.
package constraint

import "fmt"

// Constraint is a node in the small predicate language `where` clauses lower
// into. It is deliberately far smaller than the Lumen expression language:
// anything that does not fit one of the shapes below is reported unverified
// rather than forced into it.
type Constraint interface {
	fmt.Stringer
	constraintNode()
}

// IntComparison is `var OP value`, e.g. `x >= 0`.
type IntComparison struct {
	Var   string
	Op    string
	Value int64
}

func (c IntComparison) String() string { return fmt.Sprintf("%s %s %d", c.Var, c.Op, c.Value) }
func (IntComparison) constraintNode()  {}

// VarComparison is `left OP right` between two params, e.g. `lo <= hi`.
type VarComparison struct {
	Left  string
	Op    string
	Right string
}

func (c VarComparison) String() string { return fmt.Sprintf("%s %s %s", c.Left, c.Op, c.Right) }
func (VarComparison) constraintNode()  {}

// Arithmetic is `(var ARITH_OP const) CMP_OP value`, e.g. `x + 1 < 10`.
type Arithmetic struct {
	Var        string
	ArithOp    string
	ArithConst int64
	CmpOp      string
	CmpValue   int64
}

func (c Arithmetic) String() string {
	return fmt.Sprintf("(%s %s %d) %s %d", c.Var, c.ArithOp, c.ArithConst, c.CmpOp, c.CmpValue)
}
func (Arithmetic) constraintNode() {}

// And is the conjunction of its clauses.
type And struct{ Clauses []Constraint }

func (c And) String() string { return joinClauses(c.Clauses, "&&") }
func (And) constraintNode()  {}

// Or is the disjunction of its clauses.
type Or struct{ Clauses []Constraint }

func (c Or) String() string { return joinClauses(c.Clauses, "||") }
func (Or) constraintNode()  {}

// Not is the negation of a single clause.
type Not struct{ Clause Constraint }

func (c Not) String() string { return "!(" + c.Clause.String() + ")" }
func (Not) constraintNode()  {}

// BoolConst is a literal `true`/`false` clause, most often what `not` folds
// down to at the leaves, or what a bare `where true` lowers to.
type BoolConst struct{ Value bool }

func (c BoolConst) String() string { return fmt.Sprintf("%t", c.Value) }
func (BoolConst) constraintNode()  {}

func joinClauses(cs []Constraint, sep string) string {
	s := ""

	for i, c := range cs {
		if i > 0 {
			s += " " + sep + " "
		}

		s += c.String()
	}

	return s
}

func flipCmp(op string) string {
	switch op {
	case "<":
		return ">="
	case "<=":
		return ">"
	case ">":
		return "<="
	case ">=":
		return "<"
	case "==":
		return "!="
	case "!=":
		return "=="
	}

	return op
}
