package typecheck

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/resolver"
)

// checker carries the per-cell state needed while checking one body: the
// shared module-wide catalog, the cell's declared return type (for
// ReturnStmt checking and MissingReturn), and the accumulated errors.
type checker struct {
	cat      *catalog
	cellName string
	returns  Type
	errs     []*Error
}

// Check runs the full type-checking contract of §4.4 over an already
// resolved module: every Cell, Impl method, and Handler body is checked
// against its own declared signature.
func Check(mod *resolver.Module) []*Error {
	cat := buildCatalog(mod)

	var errs []*Error

	for _, item := range mod.Program.Items {
		switch it := item.(type) {
		case *ast.Cell:
			errs = append(errs, cat.checkCell(it)...)
		case *ast.Impl:
			for _, method := range it.Methods {
				errs = append(errs, cat.checkCell(method)...)
			}
		case *ast.Handler:
			errs = append(errs, cat.checkHandler(it)...)
		}
	}

	return errs
}

func (c *catalog) checkCell(cell *ast.Cell) []*Error {
	ck := &checker{cat: c, cellName: cell.Name, returns: Type(Null{})}

	if cell.Returns != nil {
		ck.returns = c.resolveASTType(cell.Returns)
	}

	e := newEnv()

	for _, p := range cell.Params {
		e.declare(p.Name, c.resolveASTType(p.Type), false)
	}

	for _, w := range cell.Where {
		ck.checkBool(e, w)
	}

	ck.checkStmts(e, cell.Body)

	if cell.Returns != nil && !allPathsReturn(cell.Body) {
		ck.errs = append(ck.errs, errMissingReturn(cell.Name, cell.Sp))
	}

	return ck.errs
}

func (c *catalog) checkHandler(h *ast.Handler) []*Error {
	ck := &checker{cat: c, cellName: "handler " + h.Name, returns: Unknown{}}
	e := newEnv()
	ck.checkStmts(e, h.Body)

	return ck.errs
}
