package typecheck

import (
	"sort"

	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/span"
)

func (ck *checker) checkStmts(e *env, stmts []ast.Stmt) {
	e.push()
	defer e.pop()

	for _, s := range stmts {
		ck.checkStmt(e, s)
	}
}

func (ck *checker) checkStmt(e *env, stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		valType := ck.infer(e, s.Value)
		declType := valType

		if s.Type != nil {
			annotated := ck.cat.resolveASTType(s.Type)
			if !subsumes(valType, annotated) {
				ck.errs = append(ck.errs, errMismatch(annotated, valType, s.Sp))
			}

			declType = annotated
		}

		e.declare(s.Name, declType, s.Mut)

	case *ast.AssignStmt:
		valType := ck.infer(e, s.Value)

		id, ok := s.Target.(*ast.Ident)
		if !ok {
			ck.infer(e, s.Target)
			return
		}

		b, found := e.lookup(id.Name)
		if !found {
			ck.errs = append(ck.errs, errUndefinedVar(id.Name, id.Sp))
			return
		}

		if !b.mut {
			ck.errs = append(ck.errs, errImmutableAssign(id.Name, s.Sp))
		}

		if !subsumes(valType, b.typ) {
			ck.errs = append(ck.errs, errMismatch(b.typ, valType, s.Sp))
		}

	case *ast.ExprStmt:
		ck.checkMustUse(e, s)

	case *ast.IfStmt:
		ck.checkBool(e, s.Cond)
		ck.checkStmts(e, s.Then)

		for _, ei := range s.ElseIfs {
			ck.checkBool(e, ei.Cond)
			ck.checkStmts(e, ei.Body)
		}

		ck.checkStmts(e, s.Else)

	case *ast.WhileStmt:
		ck.checkBool(e, s.Cond)
		ck.checkStmts(e, s.Body)

	case *ast.ForInStmt:
		iterType := ck.infer(e, s.Iterable)

		var elemType Type = Unknown{}
		if l, ok := iterType.(List); ok {
			elemType = l.Elem
		}

		e.push()
		e.declare(s.Var, elemType, false)
		ck.checkStmts(e, s.Body)
		e.pop()

	case *ast.MatchStmt:
		scrutType := ck.infer(e, s.Scrutinee)
		ck.errs = append(ck.errs, checkExhaustive(scrutType, s.Arms, s.Sp)...)

		for _, arm := range s.Arms {
			e.push()
			ck.declarePattern(e, arm.Pattern, scrutType)

			if arm.Guard != nil {
				ck.checkBool(e, arm.Guard)
			}

			for _, st := range arm.Body {
				ck.checkStmt(e, st)
			}

			e.pop()
		}

	case *ast.ReturnStmt:
		var got Type = Null{}
		if s.Value != nil {
			got = ck.infer(e, s.Value)
		}

		if !subsumes(got, ck.returns) {
			ck.errs = append(ck.errs, errMismatch(ck.returns, got, s.Sp))
		}

	case *ast.BreakStmt, *ast.ContinueStmt:
		// nothing to check

	case *ast.GrantStmt:
		ck.checkStmts(e, s.Body)

	case *ast.TransitionStmt:
		for _, a := range s.Args {
			ck.infer(e, a)
		}
	}
}

func (ck *checker) checkBool(e *env, expr ast.Expr) {
	got := ck.infer(e, expr)
	if !subsumes(got, TBool) {
		ck.errs = append(ck.errs, errMismatch(TBool, got, expr.Span()))
	}
}

// checkMustUse infers an ExprStmt's value and, when it is a direct call to
// a @must_use cell, reports the discarded result (§4.4).
func (ck *checker) checkMustUse(e *env, s *ast.ExprStmt) {
	ck.infer(e, s.Value)

	call, ok := s.Value.(*ast.Call)
	if !ok {
		return
	}

	id, ok := call.Callee.(*ast.Ident)
	if !ok {
		return
	}

	if cell, ok := ck.cat.cells[id.Name]; ok && cell.MustUse {
		ck.errs = append(ck.errs, errMustUseIgnored(id.Name, s.Sp))
	}
}

func (ck *checker) declarePattern(e *env, pat ast.Pattern, scrutType Type) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		// binds nothing

	case *ast.BindingPattern:
		e.declare(p.Name, scrutType, false)

	case *ast.VariantPattern:
		en, ok := scrutType.(Enum)
		if !ok {
			for _, f := range p.Fields {
				e.declare(f, Unknown{}, false)
			}

			return
		}

		fields, ok := en.Variants[p.Variant]
		if !ok {
			for _, f := range p.Fields {
				e.declare(f, Unknown{}, false)
			}

			return
		}

		for i, f := range p.Fields {
			if i < len(fields) {
				e.declare(f, fields[i], false)
			} else {
				e.declare(f, Unknown{}, false)
			}
		}

	case *ast.LiteralPattern:
		// no bindings
	}
}

// checkExhaustive reports IncompleteMatch when scrutType is a declared Enum
// and no arm pattern catches every remaining variant (§4.4).
func checkExhaustive(scrutType Type, arms []ast.MatchArm, sp span.Span) []*Error {
	en, ok := scrutType.(Enum)
	if !ok {
		return nil
	}

	covered := map[string]bool{}

	for _, arm := range arms {
		switch p := arm.Pattern.(type) {
		case *ast.VariantPattern:
			covered[p.Variant] = true
		case *ast.WildcardPattern, *ast.BindingPattern:
			return nil
		}
	}

	var missing []string

	for name := range en.Variants {
		if !covered[name] {
			missing = append(missing, name)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	sort.Strings(missing)

	return []*Error{errIncompleteMatch(missing, sp)}
}

// allPathsReturn conservatively decides whether every control-flow path
// through stmts ends in a ReturnStmt, for the MissingReturn check. Matches
// are trusted to be exhaustive (already checked separately); an
// if-without-else never counts as total.
func allPathsReturn(stmts []ast.Stmt) bool {
	if len(stmts) == 0 {
		return false
	}

	switch s := stmts[len(stmts)-1].(type) {
	case *ast.ReturnStmt:
		return true

	case *ast.IfStmt:
		if len(s.Else) == 0 {
			return false
		}

		if !allPathsReturn(s.Then) {
			return false
		}

		for _, ei := range s.ElseIfs {
			if !allPathsReturn(ei.Body) {
				return false
			}
		}

		return allPathsReturn(s.Else)

	case *ast.MatchStmt:
		if len(s.Arms) == 0 {
			return false
		}

		for _, arm := range s.Arms {
			if !allPathsReturn(arm.Body) {
				return false
			}
		}

		return true
	}

	return false
}
