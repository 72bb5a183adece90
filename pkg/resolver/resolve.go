package resolver

import (
	"github.com/lumen-lang/lumen/pkg/ast"
)

// Result is the outcome of resolving one module: the fully populated
// symbol table plus every accumulated error.
type Result struct {
	Module *Module
	Errors []*Error
}

// Resolve runs the full two-pass resolution contract of §4.3 over a single
// parsed document: pass 1 builds the symbol table and reports duplicates,
// pass 2 walks every cell body binding identifiers and checking effect
// flow, followed by state-machine and trait/impl verification.
func Resolve(path string, prog *ast.Program) *Result {
	mod := newModule(path, prog)

	var errs []*Error
	errs = append(errs, collect(mod)...)
	errs = append(errs, resolveModuleBody(mod)...)

	return &Result{Module: mod, Errors: errs}
}

// resolveCtx carries the per-cell state needed while walking pass 2:
// the module's symbol table, the cell being resolved, a stack of lexical
// scopes for local bindings, and a stack of nested grant effect sets.
type resolveCtx struct {
	mod        *Module
	cell       *ast.Cell
	typeParams []string
	scopes     []map[string]bool
	grantStack []effectSet
	errs       []*Error
}

func newResolveCtx(mod *Module, cell *ast.Cell) *resolveCtx {
	ctx := &resolveCtx{
		mod:        mod,
		cell:       cell,
		typeParams: cell.TypeParams,
		scopes:     []map[string]bool{{}},
	}

	for _, p := range cell.Params {
		ctx.declareLocal(p.Name)
	}

	return ctx
}

func (r *resolveCtx) grants() effectSet {
	out := effectSet{}

	for _, g := range r.mod.Grants {
		for _, e := range g.Effects {
			out[e] = true
		}
	}

	for _, s := range r.grantStack {
		for e := range s {
			out[e] = true
		}
	}

	return out
}

func (r *resolveCtx) pushScope() { r.scopes = append(r.scopes, map[string]bool{}) }
func (r *resolveCtx) popScope()  { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *resolveCtx) declareLocal(name string) {
	r.scopes[len(r.scopes)-1][name] = true
}

func (r *resolveCtx) isLocal(name string) bool {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if r.scopes[i][name] {
			return true
		}
	}

	return false
}

func (r *resolveCtx) resolveCellBody(cell *ast.Cell) {
	for _, w := range cell.Where {
		r.resolveExpr(w)
	}

	r.resolveStmts(cell.Body)
}
