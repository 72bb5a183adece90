package resolver

import "github.com/lumen-lang/lumen/pkg/ast"

// resolveStmts walks a statement block in its own lexical scope.
func (r *resolveCtx) resolveStmts(stmts []ast.Stmt) {
	r.pushScope()
	defer r.popScope()

	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *resolveCtx) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		r.resolveExpr(s.Value)

		if s.Type != nil {
			r.checkType(s.Type)
		}

		r.declareLocal(s.Name)

	case *ast.AssignStmt:
		r.resolveExpr(s.Target)
		r.resolveExpr(s.Value)

	case *ast.ExprStmt:
		r.resolveExpr(s.Value)

	case *ast.IfStmt:
		r.resolveExpr(s.Cond)
		r.resolveStmts(s.Then)

		for _, ei := range s.ElseIfs {
			r.resolveExpr(ei.Cond)
			r.resolveStmts(ei.Body)
		}

		r.resolveStmts(s.Else)

	case *ast.WhileStmt:
		r.resolveExpr(s.Cond)
		r.resolveStmts(s.Body)

	case *ast.ForInStmt:
		r.resolveExpr(s.Iterable)
		r.pushScope()
		r.declareLocal(s.Var)
		r.resolveStmts(s.Body)
		r.popScope()

	case *ast.MatchStmt:
		r.resolveExpr(s.Scrutinee)
		r.resolveArms(s.Arms)

	case *ast.ReturnStmt:
		if s.Value != nil {
			r.resolveExpr(s.Value)
		}

	case *ast.BreakStmt, *ast.ContinueStmt:
		// no references to resolve

	case *ast.GrantStmt:
		r.grantStack = append(r.grantStack, newEffectSet(s.Effects...))
		r.resolveStmts(s.Body)
		r.grantStack = r.grantStack[:len(r.grantStack)-1]

	case *ast.TransitionStmt:
		if _, ok := r.mod.Machines[s.Machine]; !ok {
			r.errs = append(r.errs, errUndefinedMachine(s.Machine, s.Sp, suggest(s.Machine, machineNames(r.mod))))
		}

		for _, a := range s.Args {
			r.resolveExpr(a)
		}
	}
}

func (r *resolveCtx) resolveArms(arms []ast.MatchArm) {
	for _, arm := range arms {
		r.pushScope()
		r.declarePattern(arm.Pattern)

		if arm.Guard != nil {
			r.resolveExpr(arm.Guard)
		}

		for _, s := range arm.Body {
			r.resolveStmt(s)
		}

		r.popScope()
	}
}

func (r *resolveCtx) declarePattern(p ast.Pattern) {
	switch pat := p.(type) {
	case *ast.BindingPattern:
		r.declareLocal(pat.Name)
	case *ast.VariantPattern:
		for _, f := range pat.Fields {
			r.declareLocal(f)
		}
	}
}

func (r *resolveCtx) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Ident:
		r.resolveIdentUse(e)

	case *ast.Binary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.Unary:
		r.resolveExpr(e.Operand)

	case *ast.Call:
		r.resolveCall(e)

	case *ast.ToolCall:
		if !r.mod.lookupTool(e.Tool) {
			r.errs = append(r.errs, errUndefinedTool(e.Tool, e.Sp, suggest(e.Tool, toolNames(r.mod))))
		} else {
			r.checkToolCallEffect(e.Tool, e.Sp)
		}

		for _, a := range e.Args {
			r.resolveExpr(a)
		}

	case *ast.FieldAccess:
		r.resolveExpr(e.Target)

	case *ast.IndexAccess:
		r.resolveExpr(e.Target)
		r.resolveExpr(e.Index)

	case *ast.ListLit:
		for _, el := range e.Elems {
			r.resolveExpr(el)
		}

	case *ast.MapLit:
		for _, entry := range e.Entries {
			r.resolveExpr(entry.Key)
			r.resolveExpr(entry.Value)
		}

	case *ast.RecordLit:
		if !r.mod.lookupType(e.TypeName) {
			r.errs = append(r.errs, errUndefinedType(e.TypeName, e.Sp, suggest(e.TypeName, r.mod.allNames())))
		}

		for _, f := range e.Fields {
			r.resolveExpr(f.Value)
		}

	case *ast.UnionLit:
		for _, p := range e.Payload {
			r.resolveExpr(p)
		}

	case *ast.StringLit:
		for _, part := range e.Parts {
			r.resolveExpr(part)
		}

	case *ast.MatchExpr:
		r.resolveExpr(e.Scrutinee)
		r.resolveArms(e.Arms)
	}
}

// resolveIdentUse resolves a bare identifier used as a value. It reports
// nothing: locals and cell names resolve here, and every other name
// (an enum variant, a field shorthand, or an undefined name) is left to the
// typechecker, which reports UndefinedVar.
func (r *resolveCtx) resolveIdentUse(id *ast.Ident) {
	if r.isLocal(id.Name) {
		return
	}

	if _, ok := r.mod.lookupCell(id.Name); ok {
		return
	}

	// Could be an enum variant, a field shorthand, or an undefined name;
	// typecheck resolves or reports it.
}

func (r *resolveCtx) resolveCall(call *ast.Call) {
	for _, a := range call.Args {
		r.resolveExpr(a)
	}

	for _, t := range call.TypeArgs {
		r.checkType(t)
	}

	callee, ok := call.Callee.(*ast.Ident)
	if !ok {
		r.resolveExpr(call.Callee)
		return
	}

	if r.isLocal(callee.Name) {
		return
	}

	cell, ok := r.mod.lookupCell(callee.Name)
	if !ok {
		r.errs = append(r.errs, errUndefinedCell(callee.Name, callee.Sp, suggest(callee.Name, r.mod.cellNames())))
		return
	}

	r.checkCellCallEffects(cell.Name, cell.Effects, cell.Deterministic, call.Sp)
}

func machineNames(m *Module) []string {
	names := make([]string, 0, len(m.Machines))
	for n := range m.Machines {
		names = append(names, n)
	}

	return names
}

func toolNames(m *Module) []string {
	names := make([]string, 0, len(m.Tools)+len(m.importedTools))
	for n := range m.Tools {
		names = append(names, n)
	}

	for n := range m.importedTools {
		names = append(names, n)
	}

	return names
}
