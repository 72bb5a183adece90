package ownership

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/resolver"
)

// Check runs §4.6's move/borrow analysis over every cell (including impl
// methods and effect handler bodies) in a resolved module.
func Check(mod *resolver.Module) []*Error {
	linear := linearCellSet(mod)

	var errs []*Error

	for _, item := range mod.Program.Items {
		switch it := item.(type) {
		case *ast.Cell:
			errs = append(errs, checkCell(it, linear)...)
		case *ast.Impl:
			for _, method := range it.Methods {
				errs = append(errs, checkCell(method, linear)...)
			}
		case *ast.Handler:
			errs = append(errs, checkHandlerBody(it.Body, linear)...)
		}
	}

	return errs
}

func linearCellSet(mod *resolver.Module) map[string]bool {
	set := make(map[string]bool)

	for name, cell := range mod.Cells {
		if cell.Linear {
			set[name] = true
		}
	}

	for name, cell := range mod.ImportedCells() {
		if cell.Linear {
			set[name] = true
		}
	}

	return set
}

func checkCell(cell *ast.Cell, linear map[string]bool) []*Error {
	return checkStmtsTopLevel(cell.Body, linear)
}

func checkHandlerBody(body []ast.Stmt, linear map[string]bool) []*Error {
	return checkStmtsTopLevel(body, linear)
}

func checkStmtsTopLevel(body []ast.Stmt, linear map[string]bool) []*Error {
	stk := &stack{}
	stk.push()

	var errs []*Error

	checkBody(body, stk, linear, &errs)

	top := stk.pop()
	reportUnconsumed(top, &errs)

	return errs
}

func reportUnconsumed(s *scope, errs *[]*Error) {
	for _, b := range s.bindings {
		if !b.moved {
			*errs = append(*errs, errNotConsumed(b.name, b.declaredAt))
		}
	}
}

// checkBody walks stmts in order, applying each statement's moves/borrows
// to stk and recursing into nested blocks as their own child scopes.
func checkBody(stmts []ast.Stmt, stk *stack, linear map[string]bool, errs *[]*Error) {
	for _, stmt := range stmts {
		checkStmt(stmt, stk, linear, errs)
	}
}

func checkStmt(stmt ast.Stmt, stk *stack, linear map[string]bool, errs *[]*Error) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		checkLet(s, stk, linear, errs)

	case *ast.AssignStmt:
		sc := &scan{}

		if isFieldOrIndex(s.Target) {
			walkBorrowTarget(s.Target, stk, sc)
		}

		walkValue(s.Value, stk, sc)
		applyScan(sc, stk, errs)

	case *ast.ExprStmt:
		sc := &scan{}
		walkValue(s.Value, stk, sc)
		applyScan(sc, stk, errs)

	case *ast.ReturnStmt:
		sc := &scan{}
		walkValue(s.Value, stk, sc)
		applyScan(sc, stk, errs)

	case *ast.IfStmt:
		scanAndApply(s.Cond, stk, errs)

		stk.push()
		checkBody(s.Then, stk, linear, errs)
		reportUnconsumed(stk.pop(), errs)

		for _, ei := range s.ElseIfs {
			scanAndApply(ei.Cond, stk, errs)

			stk.push()
			checkBody(ei.Body, stk, linear, errs)
			reportUnconsumed(stk.pop(), errs)
		}

		if s.Else != nil {
			stk.push()
			checkBody(s.Else, stk, linear, errs)
			reportUnconsumed(stk.pop(), errs)
		}

	case *ast.WhileStmt:
		scanAndApply(s.Cond, stk, errs)

		stk.push()
		checkBody(s.Body, stk, linear, errs)
		reportUnconsumed(stk.pop(), errs)

	case *ast.ForInStmt:
		scanAndApply(s.Iterable, stk, errs)

		stk.push()
		checkBody(s.Body, stk, linear, errs)
		reportUnconsumed(stk.pop(), errs)

	case *ast.MatchStmt:
		scanAndApply(s.Scrutinee, stk, errs)

		for _, arm := range s.Arms {
			if arm.Guard != nil {
				scanAndApply(arm.Guard, stk, errs)
			}

			stk.push()
			checkBody(arm.Body, stk, linear, errs)
			reportUnconsumed(stk.pop(), errs)
		}

	case *ast.GrantStmt:
		stk.push()
		checkBody(s.Body, stk, linear, errs)
		reportUnconsumed(stk.pop(), errs)

	case *ast.TransitionStmt:
		sc := &scan{}

		for _, a := range s.Args {
			walkValue(a, stk, sc)
		}

		applyScan(sc, stk, errs)
	}
}

func checkLet(s *ast.LetStmt, stk *stack, linear map[string]bool, errs *[]*Error) {
	sc := &scan{}

	if call, ok := s.Value.(*ast.Call); ok && isLinearCall(call, linear) {
		for _, a := range call.Args {
			walkValue(a, stk, sc)
		}

		applyScan(sc, stk, errs)
		stk.declare(s.Name, s.Sp)

		return
	}

	walkValue(s.Value, stk, sc)
	applyScan(sc, stk, errs)

	if ident, ok := s.Value.(*ast.Ident); ok {
		if _, wasLinear := stk.lookup(ident.Name); wasLinear {
			stk.declare(s.Name, s.Sp)
		}
	}
}

func isLinearCall(call *ast.Call, linear map[string]bool) bool {
	ident, ok := call.Callee.(*ast.Ident)
	return ok && linear[ident.Name]
}

func isFieldOrIndex(e ast.Expr) bool {
	switch e.(type) {
	case *ast.FieldAccess, *ast.IndexAccess:
		return true
	}

	return false
}

func walkBorrowTarget(target ast.Expr, stk *stack, sc *scan) {
	switch x := target.(type) {
	case *ast.FieldAccess:
		walkBorrow(x.Target, stk, sc, true)
	case *ast.IndexAccess:
		walkBorrow(x.Target, stk, sc, true)
		walkValue(x.Index, stk, sc)
	}
}

func scanAndApply(e ast.Expr, stk *stack, errs *[]*Error) {
	sc := &scan{}
	walkValue(e, stk, sc)
	applyScan(sc, stk, errs)
}

// applyScan resolves one statement's collected moves/borrows against stk:
// conflicting borrows and move-while-borrowed first, then applies each
// move's state transition, reporting UseAfterMove for anything already
// moved earlier in the same statement or an earlier one.
func applyScan(sc *scan, stk *stack, errs *[]*Error) {
	borrowCount := make(map[string]int)
	mutableCount := make(map[string]int)

	for _, b := range sc.borrows {
		borrowCount[b.name]++
		if b.mutable {
			mutableCount[b.name]++
		}
	}

	reported := make(map[string]bool)

	for _, b := range sc.borrows {
		if mutableCount[b.name] > 0 && borrowCount[b.name] > 1 && !reported[b.name] {
			*errs = append(*errs, errAlreadyBorrowed(b.name, b.sp))
			reported[b.name] = true
		}
	}

	moveWhileBorrowed := make(map[string]bool)

	for _, mv := range sc.moves {
		if borrowCount[mv.name] > 0 {
			*errs = append(*errs, errMoveWhileBorrowed(mv.name, mv.sp))
			moveWhileBorrowed[mv.name] = true
		}
	}

	for _, mv := range sc.moves {
		b, ok := stk.lookup(mv.name)
		if !ok {
			continue
		}

		if b.moved {
			if !moveWhileBorrowed[mv.name] {
				*errs = append(*errs, errUseAfterMove(mv.name, mv.sp))
			}

			continue
		}

		b.moved = true
	}
}
