package resolver

import "github.com/lumen-lang/lumen/pkg/ast"

// collect is pass 1 (§4.3): walk every top-level item once, populating the
// module's symbol tables and reporting `Duplicate` for any name re-used at
// the same top level.
func collect(m *Module) []*Error {
	var errs []*Error

	declSpans := map[string]ast.Node{}

	declare := func(name string, node ast.Node) bool {
		if prev, ok := declSpans[name]; ok {
			errs = append(errs, errDuplicate(name, prev.Span(), node.Span()))
			return false
		}

		declSpans[name] = node

		return true
	}

	for _, item := range m.Program.Items {
		switch it := item.(type) {
		case *ast.Cell:
			if declare(it.Name, it) {
				m.Cells[it.Name] = it
			}
		case *ast.Record:
			if declare(it.Name, it) {
				m.Records[it.Name] = it
			}
		case *ast.Enum:
			if declare(it.Name, it) {
				m.Enums[it.Name] = it
			}
		case *ast.Trait:
			if declare(it.Name, it) {
				m.Traits[it.Name] = it
			}
		case *ast.Impl:
			m.Impls = append(m.Impls, it)
		case *ast.UseTool:
			key := it.Name
			if it.Alias != "" {
				key = it.Alias
			}

			if declare(key, it) {
				m.Tools[key] = it
			}
		case *ast.StateMachine:
			if declare(it.Name, it) {
				m.Machines[it.Name] = it
			}
		case *ast.Handler:
			if declare(it.Name, it) {
				m.Handlers[it.Name] = it
			}
		case *ast.Grant:
			m.Grants = append(m.Grants, it)
		case *ast.Import:
			m.Imports = append(m.Imports, it)
		}
	}

	return errs
}
