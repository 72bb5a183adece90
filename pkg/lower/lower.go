// Package lower implements §4.7: the AST-to-LIR lowerer. It produces one
// LirCell per source ast.Cell, with a stack-discipline register allocator,
// per-cell constant interning, and a jump-patching protocol for every
// control-flow form the grammar has.
package lower

import (
	"crypto/sha256"
	"fmt"

	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/lir"
	"github.com/lumen-lang/lumen/pkg/resolver"
)

// Lower converts a resolved module and its original source text into a
// LirModule, or returns the accumulated Lower errors (E0500) if any cell
// overflowed its register budget.
func Lower(mod *resolver.Module, source string) (*lir.LirModule, []*Error) {
	hash := fmt.Sprintf("sha256:%x", sha256.Sum256([]byte(source)))
	out := lir.NewModule(hash)

	lw := &lowerer{
		stringIdx:    make(map[string]int),
		fieldIdx:     make(map[string]int),
		recordFields: make(map[string][]string),
	}

	// Record field declaration order must be known before any cell body is
	// lowered, since a RecordLit may be lowered before its own type's
	// *ast.Record item is reached in source order — resolved bottom-up here
	// in the same "declare all names first" spirit as §9's mutually
	// recursive cell resolution.
	for _, item := range mod.Program.Items {
		if r, ok := item.(*ast.Record); ok {
			names := make([]string, len(r.Fields))
			for i, f := range r.Fields {
				names[i] = f.Name
			}

			lw.recordFields[r.Name] = names
		}
	}

	var errs []*Error

	for _, item := range mod.Program.Items {
		switch it := item.(type) {
		case *ast.Record:
			out.Types = append(out.Types, lw.lowerRecord(it))

		case *ast.Enum:
			out.Types = append(out.Types, lw.lowerEnum(it))

		case *ast.Cell:
			cell, cellErrs := lw.lowerCell(it)
			out.Cells = append(out.Cells, cell)
			errs = append(errs, cellErrs...)

		case *ast.Impl:
			for _, method := range it.Methods {
				cell, cellErrs := lw.lowerCell(method)
				out.Cells = append(out.Cells, cell)
				errs = append(errs, cellErrs...)
			}

		case *ast.UseTool:
			out.Tools = append(out.Tools, lir.LirTool{Alias: it.Alias, ToolID: it.Name})

		case *ast.Grant:
			out.Policies = append(out.Policies, lir.LirPolicy{Effects: it.Effects})

		case *ast.StateMachine:
			out.Machines = append(out.Machines, lw.lowerMachine(it))

		case *ast.Handler:
			handler, handlerErrs := lw.lowerHandler(it)
			out.Handlers = append(out.Handlers, handler)
			errs = append(errs, handlerErrs...)
		}
	}

	out.Strings = lw.strings
	out.FieldNames = lw.fieldNames
	out.ToolSite = lw.toolSites

	return out, errs
}

// lowerer carries the module-wide interning tables shared by every cell:
// the unbounded string table (type/schema/cell names, LoadK string
// constants) and the bounded field-name table (GetField/SetField's 8-bit
// operand).
type lowerer struct {
	strings   []string
	stringIdx map[string]int

	fieldNames []string
	fieldIdx   map[string]int

	toolSites []lir.ToolCallSite

	// recordFields maps a record type name to its fields' declared order,
	// so a RecordLit's (possibly reordered) named inits can be lowered into
	// the positions NewRecord's runtime zips against LirType.Fields.
	recordFields map[string][]string
}

func (lw *lowerer) internString(s string) uint16 {
	if idx, ok := lw.stringIdx[s]; ok {
		return uint16(idx)
	}

	idx := len(lw.strings)
	lw.strings = append(lw.strings, s)
	lw.stringIdx[s] = idx

	return uint16(idx)
}

// internField adds name to the bounded field table, returning ok=false if
// doing so would exceed the 8-bit operand's range.
func (lw *lowerer) internField(name string) (uint8, bool) {
	if idx, ok := lw.fieldIdx[name]; ok {
		return uint8(idx), true
	}

	if len(lw.fieldNames) >= 255 {
		return 0, false
	}

	idx := len(lw.fieldNames)
	lw.fieldNames = append(lw.fieldNames, name)
	lw.fieldIdx[name] = idx

	return uint8(idx), true
}

func (lw *lowerer) addToolSite(tool, method string, args int) uint16 {
	idx := len(lw.toolSites)
	lw.toolSites = append(lw.toolSites, lir.ToolCallSite{Tool: tool, Method: method, Args: args})

	return uint16(idx)
}

func (lw *lowerer) lowerRecord(r *ast.Record) lir.LirType {
	lw.internString(r.Name)

	fields := make([]lir.LirField, len(r.Fields))
	for i, f := range r.Fields {
		lw.internString(f.Name)
		fields[i] = lir.LirField{Name: f.Name, Type: formatType(f.Type)}
	}

	return lir.LirType{Kind: "record", Name: r.Name, Fields: fields}
}

func (lw *lowerer) lowerEnum(e *ast.Enum) lir.LirType {
	lw.internString(e.Name)

	variants := make([]lir.LirVariant, len(e.Variants))
	for i, v := range e.Variants {
		lw.internString(v.Name)

		payload := ""
		for j, f := range v.Fields {
			if j > 0 {
				payload += ", "
			}

			payload += formatType(f.Type)
		}

		variants[i] = lir.LirVariant{Name: v.Name, Payload: payload}
	}

	return lir.LirType{Kind: "enum", Name: e.Name, Variants: variants}
}

func (lw *lowerer) lowerMachine(m *ast.StateMachine) lir.LirMachine {
	out := lir.LirMachine{Name: m.Name}

	for _, s := range m.States {
		out.States = append(out.States, lir.LirState{Name: s.Name, Initial: s.Initial, Terminal: s.Terminal})
	}

	for _, t := range m.Transitions {
		out.Transitions = append(out.Transitions, lir.LirTransition{Name: t.Name, From: t.From, To: t.To})
	}

	return out
}

func (lw *lowerer) lowerHandler(h *ast.Handler) (lir.LirHandler, []*Error) {
	ra := newRegAlloc()
	ra.push()

	fb := &funcBuilder{lw: lw, ra: ra}

	for _, stmt := range h.Body {
		fb.lowerStmt(stmt)
	}

	fb.ensureReturn()

	var errs []*Error
	if ra.overflowed {
		errs = append(errs, errRegisterOverflow(h.Name, h.Sp))
	}

	return lir.LirHandler{
		Name:      h.Name,
		Effect:    h.Effect,
		Registers: ra.maxRegs(),
		Constants: fb.constants,
		Instrs:    fb.instrs,
	}, errs
}

func (lw *lowerer) lowerCell(cell *ast.Cell) (lir.LirCell, []*Error) {
	lw.internString(cell.Name)

	ra := newRegAlloc()
	ra.push()

	params := make([]lir.LirParam, len(cell.Params))

	for i, p := range cell.Params {
		reg := ra.allocNamed(p.Name)
		params[i] = lir.LirParam{Name: p.Name, Type: formatType(p.Type), Register: reg}
	}

	fb := &funcBuilder{lw: lw, ra: ra}

	for _, stmt := range cell.Body {
		fb.lowerStmt(stmt)
	}

	fb.ensureReturn()

	var errs []*Error
	if ra.overflowed {
		errs = append(errs, errRegisterOverflow(cell.Name, cell.Sp))
	}

	returns := ""
	if cell.Returns != nil {
		returns = formatType(cell.Returns)
	}

	return lir.LirCell{
		Name:      cell.Name,
		Params:    params,
		Returns:   returns,
		Registers: ra.maxRegs(),
		Effects:   cell.Effects,
		Linear:    cell.Linear,
		Constants: fb.constants,
		Instrs:    fb.instrs,
	}, errs
}

func formatType(t ast.Type) string {
	switch x := t.(type) {
	case nil:
		return ""
	case *ast.NamedType:
		if len(x.Args) == 0 {
			return x.Name
		}

		s := x.Name + "<"

		for i, a := range x.Args {
			if i > 0 {
				s += ", "
			}

			s += formatType(a)
		}

		return s + ">"
	case *ast.ListType:
		return "list[" + formatType(x.Elem) + "]"
	case *ast.MapType:
		return "map[" + formatType(x.Key) + ", " + formatType(x.Val) + "]"
	case *ast.ResultType:
		return "result[" + formatType(x.Ok) + ", " + formatType(x.Err) + "]"
	case *ast.UnionType:
		s := ""

		for i, m := range x.Members {
			if i > 0 {
				s += " | "
			}

			s += formatType(m)
		}

		return s
	case *ast.NullType:
		return "Null"
	}

	return ""
}
