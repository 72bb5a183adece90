package constraint

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/resolver"
)

// Result is the outcome of verifying one cell's where clauses.
type Result struct {
	Constraints []Constraint
	// Unverified holds clauses that fell outside the DSL's grammar; they are
	// carried through untouched rather than rejected (§4.5).
	Unverified []ast.Expr
	UNSAT      bool
	Conflict   Constraint
}

// Verify lowers every where clause on cell into the constraint DSL and
// checks their conjunction for satisfiability. The lowered clauses are
// solved together as a single And rather than one at a time, so a bound
// established by one clause is visible to every other clause across
// solveAnd's propagation rounds.
func Verify(cell *ast.Cell) Result {
	var res Result

	for _, clause := range cell.Where {
		c, ok := lowerExpr(clause)
		if !ok {
			res.Unverified = append(res.Unverified, clause)
			continue
		}

		res.Constraints = append(res.Constraints, c)
	}

	if len(res.Constraints) == 0 {
		return res
	}

	sat, conflict, _ := solve(And{Clauses: res.Constraints}, initialDomains(cell))
	if !sat {
		res.UNSAT = true
		res.Conflict = conflict
	}

	return res
}

// initialDomains seeds each Bool param to {0, 1} (so a comparison against a
// bool-as-int is still checkable) and leaves every other param unbounded.
func initialDomains(cell *ast.Cell) domains {
	dom := make(domains, len(cell.Params))

	for _, p := range cell.Params {
		if named, ok := p.Type.(*ast.NamedType); ok && named.Name == "Bool" {
			dom[p.Name] = interval{0, 1}
			continue
		}

		dom[p.Name] = unbounded()
	}

	return dom
}

// Check runs constraint verification over every cell (including impl
// methods) in a resolved module, reporting E0300 for each where clause
// whose conjunction is unsatisfiable.
func Check(mod *resolver.Module) []*Error {
	var errs []*Error

	for _, item := range mod.Program.Items {
		switch it := item.(type) {
		case *ast.Cell:
			errs = append(errs, checkCell(it)...)
		case *ast.Impl:
			for _, method := range it.Methods {
				errs = append(errs, checkCell(method)...)
			}
		}
	}

	return errs
}

func checkCell(cell *ast.Cell) []*Error {
	if len(cell.Where) == 0 {
		return nil
	}

	res := Verify(cell)
	if !res.UNSAT {
		return nil
	}

	return []*Error{errInvalid(cell.Name, res.Conflict, cell.Sp)}
}
