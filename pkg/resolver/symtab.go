package resolver

import "github.com/lumen-lang/lumen/pkg/ast"

// Module holds every top-level declaration of one parsed document, indexed
// by name for pass-2 lookups. Built once per document during pass 1.
type Module struct {
	Path     string
	Program  *ast.Program
	Cells    map[string]*ast.Cell
	Records  map[string]*ast.Record
	Enums    map[string]*ast.Enum
	Traits   map[string]*ast.Trait
	Impls    []*ast.Impl
	Tools    map[string]*ast.UseTool
	Machines map[string]*ast.StateMachine
	Handlers map[string]*ast.Handler
	Imports  []*ast.Import
	Grants   []*ast.Grant

	// importedCells and importedTools hold the cells and tools pulled in via
	// Import, keyed the same way as Cells and Tools, so pass 2 can resolve
	// those names without knowing whether they came from this document or
	// one it imports. Other imported kinds are not merged here.
	importedCells map[string]*ast.Cell
	importedTools map[string]*ast.UseTool
}

func newModule(path string, prog *ast.Program) *Module {
	return &Module{
		Path:     path,
		Program:  prog,
		Cells:    map[string]*ast.Cell{},
		Records:  map[string]*ast.Record{},
		Enums:    map[string]*ast.Enum{},
		Traits:   map[string]*ast.Trait{},
		Tools:    map[string]*ast.UseTool{},
		Machines: map[string]*ast.StateMachine{},
		Handlers: map[string]*ast.Handler{},

		importedCells: map[string]*ast.Cell{},
		importedTools: map[string]*ast.UseTool{},
	}
}

// allNames returns every cell, record, enum and trait name declared at the
// top level, the candidate pool for fuzzy suggestions.
func (m *Module) allNames() []string {
	var names []string

	for n := range m.Cells {
		names = append(names, n)
	}

	for n := range m.Records {
		names = append(names, n)
	}

	for n := range m.Enums {
		names = append(names, n)
	}

	for n := range m.Traits {
		names = append(names, n)
	}

	return names
}

// cellNames returns only declared (plus imported) cell names, the
// candidate pool for UndefinedCell suggestions.
func (m *Module) cellNames() []string {
	names := make([]string, 0, len(m.Cells)+len(m.importedCells))

	for n := range m.Cells {
		names = append(names, n)
	}

	for n := range m.importedCells {
		names = append(names, n)
	}

	return names
}

// ImportedCells exposes the cells pulled in via import, keyed the same way
// as Cells, for packages downstream of pkg/resolver (e.g. pkg/typecheck)
// that need every callable name, not just locally-declared ones.
func (m *Module) ImportedCells() map[string]*ast.Cell {
	return m.importedCells
}

// lookupCell resolves a cell name against locally declared and imported
// cells.
func (m *Module) lookupCell(name string) (*ast.Cell, bool) {
	if c, ok := m.Cells[name]; ok {
		return c, true
	}

	c, ok := m.importedCells[name]

	return c, ok
}

// lookupType resolves a named type against records and enums.
func (m *Module) lookupType(name string) bool {
	if _, ok := m.Records[name]; ok {
		return true
	}

	_, ok := m.Enums[name]

	return ok
}

// lookupTool resolves a tool alias/name against declared and imported
// `use tool` items.
func (m *Module) lookupTool(name string) bool {
	if _, ok := m.Tools[name]; ok {
		return true
	}

	_, ok := m.importedTools[name]

	return ok
}

// builtinTypes are always in scope and never reported as undefined.
var builtinTypes = map[string]bool{
	"Int": true, "Float": true, "Bool": true, "String": true,
	"Bytes": true, "Null": true,
}
