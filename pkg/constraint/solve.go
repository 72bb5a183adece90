package constraint

// domains tracks the current best-known interval for each named param. A
// missing entry means unbounded.
type domains map[string]interval

func (d domains) get(name string) interval {
	if iv, ok := d[name]; ok {
		return iv
	}

	return unbounded()
}

func (d domains) clone() domains {
	out := make(domains, len(d))
	for k, v := range d {
		out[k] = v
	}

	return out
}

// propagationRounds bounds how many times And re-walks its clauses looking
// for cross-clause narrowing (e.g. a VarComparison benefiting from a bound
// an IntComparison just established). This is not a fixpoint computation,
// just enough rounds for the shallow where-clauses the DSL targets.
const propagationRounds = 3

// solve walks c, narrowing dom as it goes, and reports whether the result
// is satisfiable. On UNSAT it returns the specific leaf constraint whose
// narrowing first produced an empty interval.
func solve(c Constraint, dom domains) (sat bool, conflict Constraint, out domains) {
	switch x := c.(type) {
	case BoolConst:
		if !x.Value {
			return false, x, dom
		}

		return true, nil, dom

	case IntComparison:
		cur := dom.get(x.Var)
		narrowed := cur.narrow(x.Op, x.Value)

		if narrowed.empty() {
			return false, x, dom
		}

		next := dom.clone()
		next[x.Var] = narrowed

		return true, nil, next

	case Arithmetic:
		return solveArithmetic(x, dom)

	case VarComparison:
		return solveVarComparison(x, dom)

	case And:
		return solveAnd(x, dom)

	case Or:
		return solveOr(x, dom)

	case Not:
		return solve(negate(x.Clause), dom)
	}

	return true, nil, dom
}

// solveArithmetic only narrows for the invertible operators `+`/`-`; the
// others pass through unnarrowed rather than modelling integer
// multiplication/division bounds, which this naive solver does not attempt.
func solveArithmetic(x Arithmetic, dom domains) (bool, Constraint, domains) {
	var shifted int64

	switch x.ArithOp {
	case "+":
		shifted = x.CmpValue - x.ArithConst
	case "-":
		shifted = x.CmpValue + x.ArithConst
	default:
		return true, nil, dom
	}

	cur := dom.get(x.Var)
	narrowed := cur.narrow(x.CmpOp, shifted)

	if narrowed.empty() {
		return false, x, dom
	}

	next := dom.clone()
	next[x.Var] = narrowed

	return true, nil, next
}

// solveVarComparison propagates bounds between two params sharing a
// relational constraint, e.g. `lo <= hi` tightens hi.min from lo.min and
// lo.max from hi.max whenever those bounds are already finite.
func solveVarComparison(x VarComparison, dom domains) (bool, Constraint, domains) {
	left := dom.get(x.Left)
	right := dom.get(x.Right)

	switch x.Op {
	case "<", "<=":
		bump := int64(0)
		if x.Op == "<" {
			bump = 1
		}

		if right.max != posInf {
			left = left.intersect(interval{negInf, right.max - bump})
		}

		if left.min != negInf {
			right = right.intersect(interval{left.min + bump, posInf})
		}

	case ">", ">=":
		bump := int64(0)
		if x.Op == ">" {
			bump = 1
		}

		if right.min != negInf {
			left = left.intersect(interval{right.min + bump, posInf})
		}

		if left.max != posInf {
			right = right.intersect(interval{negInf, left.max - bump})
		}

	case "==":
		merged := left.intersect(right)
		left, right = merged, merged
	}

	if left.empty() || right.empty() {
		return false, x, dom
	}

	next := dom.clone()
	next[x.Left] = left
	next[x.Right] = right

	return true, nil, next
}

func solveAnd(x And, dom domains) (bool, Constraint, domains) {
	cur := dom

	for round := 0; round < propagationRounds; round++ {
		changed := false

		for _, clause := range x.Clauses {
			sat, conflict, next := solve(clause, cur)
			if !sat {
				return false, conflict, dom
			}

			if !equalDomains(next, cur) {
				changed = true
			}

			cur = next
		}

		if !changed {
			break
		}
	}

	return true, nil, cur
}

// solveOr tries every clause against a copy of dom and keeps the union of
// the domains reached by whichever branches are satisfiable; only reports
// UNSAT, with itself as the conflict, if none of them are.
func solveOr(x Or, dom domains) (bool, Constraint, domains) {
	var merged domains

	any := false

	for _, clause := range x.Clauses {
		sat, _, next := solve(clause, dom.clone())
		if !sat {
			continue
		}

		any = true

		if merged == nil {
			merged = next
			continue
		}

		for k := range merged {
			merged[k] = merged[k].union(next.get(k))
		}
	}

	if !any {
		return false, x, dom
	}

	return true, nil, merged
}

func equalDomains(a, b domains) bool {
	if len(a) != len(b) {
		return false
	}

	for k, v := range a {
		if b[k] != v {
			return false
		}
	}

	return true
}

// negate pushes a Not down to the leaves so the solver only ever has to
// narrow on positive comparisons.
func negate(c Constraint) Constraint {
	switch x := c.(type) {
	case BoolConst:
		return BoolConst{Value: !x.Value}
	case IntComparison:
		return IntComparison{Var: x.Var, Op: flipCmp(x.Op), Value: x.Value}
	case VarComparison:
		return VarComparison{Left: x.Left, Op: flipCmp(x.Op), Right: x.Right}
	case Arithmetic:
		return Arithmetic{Var: x.Var, ArithOp: x.ArithOp, ArithConst: x.ArithConst, CmpOp: flipCmp(x.CmpOp), CmpValue: x.CmpValue}
	case And:
		out := make([]Constraint, len(x.Clauses))
		for i, cl := range x.Clauses {
			out[i] = negate(cl)
		}

		return Or{Clauses: out}
	case Or:
		out := make([]Constraint, len(x.Clauses))
		for i, cl := range x.Clauses {
			out[i] = negate(cl)
		}

		return And{Clauses: out}
	case Not:
		return x.Clause
	}

	return c
}
