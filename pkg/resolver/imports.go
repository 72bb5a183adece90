package resolver

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/span"
)

// importExtensions is the fixed search order §4.3 mandates when an import
// path has no extension of its own.
var importExtensions = []string{".lm.md", ".lumen.md", ".lm", ".lumen"}

// Loader loads and parses one module by logical path, trying each of
// importExtensions in turn when path has no recognised suffix of its own.
// The resolver package only depends on this interface so that pkg/source
// and pkg/parser stay free of any import-graph concerns.
type Loader interface {
	// Load resolves path (plus each extension in importExtensions, in
	// order) to a parsed Program. tried lists every candidate path
	// attempted, for ModuleNotFound's error message.
	Load(path string) (prog *ast.Program, resolvedPath string, tried []string, err error)
}

// Project is the result of resolving one entry module and everything it
// transitively imports.
type Project struct {
	Entry   string
	Modules map[string]*Module
	Errors  []*Error
}

// ResolveProject resolves entry and every module it imports, transitively,
// detecting import cycles with a visited/in-progress DFS (§4.3) and
// merging each module's `use tool` and cell tables into every importer
// that names it (or every top-level name, for a wildcard import).
func ResolveProject(entry string, loader Loader) *Project {
	proj := &Project{Entry: entry, Modules: map[string]*Module{}}

	visited := map[string]bool{}
	inProgress := map[string]bool{}
	var stack []string

	var visit func(path string) *Module
	visit = func(path string) *Module {
		if m, ok := proj.Modules[path]; ok {
			return m
		}

		if inProgress[path] {
			cycle := append(append([]string{}, stack...), path)
			proj.Errors = append(proj.Errors, errCircularImport(cycle, span.Zero))

			return nil
		}

		inProgress[path] = true
		stack = append(stack, path)

		defer func() {
			inProgress[path] = false
			stack = stack[:len(stack)-1]
		}()

		prog, resolved, tried, err := loader.Load(path)
		if err != nil {
			proj.Errors = append(proj.Errors, errModuleNotFound(path, tried, span.Zero))
			return nil
		}

		mod := newModule(resolved, prog)
		proj.Errors = append(proj.Errors, collect(mod)...)
		proj.Modules[resolved] = mod
		visited[resolved] = true

		for _, im := range mod.Imports {
			dep := visit(im.Path)
			if dep == nil {
				continue
			}

			proj.Errors = append(proj.Errors, mergeImport(mod, dep, im)...)
		}

		return mod
	}

	visit(entry)

	for _, mod := range proj.Modules {
		errs := resolveModuleBody(mod)
		proj.Errors = append(proj.Errors, errs...)
	}

	return proj
}

// mergeImport copies dep's exported symbols into mod's imported-symbol
// tables, restricted to im.Names when non-empty (a wildcard import
// otherwise pulls in every top-level name).
func mergeImport(mod, dep *Module, im *ast.Import) []*Error {
	prefix := im.Alias
	if prefix != "" {
		prefix += "::"
	}

	wants := func(name string) bool {
		if len(im.Names) == 0 {
			return true
		}

		return hasString(im.Names, name)
	}

	for name, cell := range dep.Cells {
		if wants(name) {
			mod.importedCells[prefix+name] = cell
		}
	}

	for name, tool := range dep.Tools {
		if wants(name) {
			mod.importedTools[prefix+name] = tool
		}
	}

	var errs []*Error

	for _, name := range im.Names {
		_, inCells := dep.Cells[name]
		_, inTools := dep.Tools[name]
		_, inRecords := dep.Records[name]
		_, inEnums := dep.Enums[name]

		if !inCells && !inTools && !inRecords && !inEnums {
			cand := append(append([]string{}, dep.allNames()...), toolNames(dep)...)
			errs = append(errs, errImportedSymbolNotFound(name, im.Path, im.Sp, suggest(name, cand)))
		}
	}

	return errs
}

// resolveModuleBody runs pass 2 plus machine/trait/type verification for
// one already-collected module (used by both Resolve and ResolveProject).
func resolveModuleBody(mod *Module) []*Error {
	var errs []*Error

	for _, item := range mod.Program.Items {
		switch it := item.(type) {
		case *ast.Cell:
			ctx := newResolveCtx(mod, it)
			ctx.resolveCellBody(it)

			for _, p := range it.Params {
				ctx.checkType(p.Type)
			}

			if it.Returns != nil {
				ctx.checkType(it.Returns)
			}

			errs = append(errs, ctx.errs...)
		case *ast.Impl:
			for _, method := range it.Methods {
				ctx := newResolveCtx(mod, method)
				ctx.resolveCellBody(method)
				errs = append(errs, ctx.errs...)
			}
		case *ast.Handler:
			ctx := newResolveCtx(mod, &ast.Cell{Name: "handler " + it.Name, Sp: it.Sp})
			ctx.resolveStmts(it.Body)
			errs = append(errs, ctx.errs...)
		case *ast.StateMachine:
			errs = append(errs, checkMachine(it)...)
		case *ast.Record:
			ctx := newResolveCtx(mod, &ast.Cell{})

			for _, f := range it.Fields {
				ctx.checkType(f.Type)
			}

			errs = append(errs, ctx.errs...)
		}
	}

	errs = append(errs, checkImpls(mod)...)

	return errs
}
