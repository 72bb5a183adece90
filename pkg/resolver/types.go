package resolver

import "github.com/lumen-lang/lumen/pkg/ast"

// builtinArity records the number of type arguments each parametric
// builtin expects, for GenericArityMismatch checking.
var builtinArity = map[string]int{
	"List": 1, "Map": 2, "Result": 2,
}

// checkType resolves a structural type expression against builtin scalars,
// declared records/enums, and parametric builtins, reporting UndefinedType
// and GenericArityMismatch (§4.3/§4.4 boundary: the resolver only checks
// that names exist, not structural compatibility).
func (r *resolveCtx) checkType(t ast.Type) {
	switch ty := t.(type) {
	case *ast.NamedType:
		if builtinTypes[ty.Name] || r.mod.lookupType(ty.Name) || r.isTypeParam(ty.Name) {
			if n, ok := builtinArity[ty.Name]; ok && len(ty.Args) != n {
				r.errs = append(r.errs, errGenericArityMismatch(ty.Name, n, len(ty.Args), ty.Sp))
			}

			for _, a := range ty.Args {
				r.checkType(a)
			}

			return
		}

		r.errs = append(r.errs, errUndefinedType(ty.Name, ty.Sp, suggest(ty.Name, r.mod.allNames())))

		for _, a := range ty.Args {
			r.checkType(a)
		}
	case *ast.ListType:
		r.checkType(ty.Elem)
	case *ast.MapType:
		r.checkType(ty.Key)
		r.checkType(ty.Val)
	case *ast.ResultType:
		r.checkType(ty.Ok)
		r.checkType(ty.Err)
	case *ast.UnionType:
		for _, m := range ty.Members {
			r.checkType(m)
		}
	case *ast.NullType:
		// always valid
	}
}

func (r *resolveCtx) isTypeParam(name string) bool {
	for _, tp := range r.typeParams {
		if tp == name {
			return true
		}
	}

	return false
}
