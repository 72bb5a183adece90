package typecheck

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/resolver"
)

// catalog is the per-module table of nominal types and cell signatures,
// built once before any cell body is checked so that mutually-referencing
// records/enums/cells all resolve regardless of declaration order.
type catalog struct {
	mod     *resolver.Module
	records map[string]Record
	enums   map[string]Enum
	cells   map[string]Cell
}

func buildCatalog(mod *resolver.Module) *catalog {
	c := &catalog{
		mod:     mod,
		records: map[string]Record{},
		enums:   map[string]Enum{},
		cells:   map[string]Cell{},
	}

	for name, rec := range mod.Records {
		c.records[name] = Record{Name: rec.Name, Fields: map[string]Type{}}
	}

	for name, en := range mod.Enums {
		variants := map[string][]Type{}
		for _, v := range en.Variants {
			variants[v.Name] = nil
		}

		c.enums[name] = Enum{Name: en.Name, Variants: variants}
	}

	for name, rec := range mod.Records {
		fields := map[string]Type{}
		order := make([]string, 0, len(rec.Fields))

		for _, f := range rec.Fields {
			fields[f.Name] = c.resolveASTType(f.Type)
			order = append(order, f.Name)
		}

		c.records[name] = Record{Name: rec.Name, Fields: fields, Order: order}
	}

	for name, en := range mod.Enums {
		variants := map[string][]Type{}

		for _, v := range en.Variants {
			types := make([]Type, len(v.Fields))
			for i, f := range v.Fields {
				types[i] = c.resolveASTType(f.Type)
			}

			variants[v.Name] = types
		}

		c.enums[name] = Enum{Name: en.Name, Variants: variants}
	}

	for name, cell := range mod.Cells {
		c.cells[name] = c.cellType(cell)
	}

	for name, cell := range mod.ImportedCells() {
		if _, ok := c.cells[name]; !ok {
			c.cells[name] = c.cellType(cell)
		}
	}

	return c
}

func (c *catalog) cellType(cell *ast.Cell) Cell {
	params := make([]Type, len(cell.Params))
	for i, p := range cell.Params {
		params[i] = c.resolveASTType(p.Type)
	}

	returns := Type(Null{})
	if cell.Returns != nil {
		returns = c.resolveASTType(cell.Returns)
	}

	return Cell{Name: cell.Name, Params: params, Returns: returns, MustUse: cell.MustUse}
}

// resolveASTType renders a structural ast.Type into the checker's internal
// Type, falling back to Unknown for a name the resolver has already
// reported as undefined (§4.3/§4.4 boundary: typecheck never re-reports a
// missing type name).
func (c *catalog) resolveASTType(t ast.Type) Type {
	switch ty := t.(type) {
	case *ast.NamedType:
		switch ty.Name {
		case "Int":
			return TInt
		case "Float":
			return TFloat
		case "Bool":
			return TBool
		case "String":
			return TString
		case "Bytes":
			return TBytes
		case "Null":
			return Null{}
		case "List":
			if len(ty.Args) == 1 {
				return List{Elem: c.resolveASTType(ty.Args[0])}
			}
		case "Map":
			if len(ty.Args) == 2 {
				return Map{Key: c.resolveASTType(ty.Args[0]), Val: c.resolveASTType(ty.Args[1])}
			}
		case "Result":
			if len(ty.Args) == 2 {
				return Result{Ok: c.resolveASTType(ty.Args[0]), Err: c.resolveASTType(ty.Args[1])}
			}
		}

		if r, ok := c.records[ty.Name]; ok {
			return r
		}

		if en, ok := c.enums[ty.Name]; ok {
			return en
		}

		return Unknown{}
	case *ast.ListType:
		return List{Elem: c.resolveASTType(ty.Elem)}
	case *ast.MapType:
		return Map{Key: c.resolveASTType(ty.Key), Val: c.resolveASTType(ty.Val)}
	case *ast.ResultType:
		return Result{Ok: c.resolveASTType(ty.Ok), Err: c.resolveASTType(ty.Err)}
	case *ast.UnionType:
		members := make([]Type, len(ty.Members))
		for i, m := range ty.Members {
			members[i] = c.resolveASTType(m)
		}

		return Union{Members: members}
	case *ast.NullType:
		return Null{}
	}

	return Unknown{}
}
