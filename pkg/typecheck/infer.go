package typecheck

import "github.com/lumen-lang/lumen/pkg/ast"

// infer computes the static type of expr, accumulating any mismatch it
// finds along the way onto ck.errs. It never fails: an unresolvable
// sub-expression degrades to Unknown so the rest of the cell still checks.
func (ck *checker) infer(e *env, expr ast.Expr) Type {
	switch x := expr.(type) {
	case *ast.IntLit, *ast.BigIntLit:
		return TInt

	case *ast.FloatLit:
		return TFloat

	case *ast.BoolLit:
		return TBool

	case *ast.NullLit:
		return Null{}

	case *ast.BytesLit:
		return TBytes

	case *ast.StringLit:
		for _, part := range x.Parts {
			ck.infer(e, part)
		}

		return TString

	case *ast.Ident:
		if b, ok := e.lookup(x.Name); ok {
			return b.typ
		}

		if cell, ok := ck.cat.cells[x.Name]; ok {
			return cell
		}

		ck.errs = append(ck.errs, errUndefinedVar(x.Name, x.Sp))

		return Unknown{}

	case *ast.Binary:
		return ck.inferBinary(e, x)

	case *ast.Unary:
		operand := ck.infer(e, x.Operand)

		if x.Op == "not" {
			if !subsumes(operand, TBool) {
				ck.errs = append(ck.errs, errMismatch(TBool, operand, x.Sp))
			}

			return TBool
		}

		return operand

	case *ast.Call:
		return ck.inferCall(e, x)

	case *ast.ToolCall:
		for _, a := range x.Args {
			ck.infer(e, a)
		}

		// Tool return types are only known at runtime via the provider
		// schema (§6.3); the checker cannot statically verify them.
		return Unknown{}

	case *ast.FieldAccess:
		target := ck.infer(e, x.Target)

		if rec, ok := target.(Record); ok {
			if ft, ok := rec.Fields[x.Field]; ok {
				return ft
			}

			ck.errs = append(ck.errs, errUnknownField(rec.Name, x.Field, x.Sp))

			return Unknown{}
		}

		if _, ok := target.(Unknown); !ok {
			ck.errs = append(ck.errs, errUnknownField(target.String(), x.Field, x.Sp))
		}

		return Unknown{}

	case *ast.IndexAccess:
		target := ck.infer(e, x.Target)
		ck.infer(e, x.Index)

		switch t := target.(type) {
		case List:
			return t.Elem
		case Map:
			return t.Val
		default:
			return Unknown{}
		}

	case *ast.ListLit:
		var elem Type

		for _, el := range x.Elems {
			elem = join(elem, ck.infer(e, el))
		}

		if elem == nil {
			elem = Unknown{}
		}

		return List{Elem: elem}

	case *ast.MapLit:
		var key, val Type

		for _, entry := range x.Entries {
			key = join(key, ck.infer(e, entry.Key))
			val = join(val, ck.infer(e, entry.Value))
		}

		if key == nil {
			key = Unknown{}
		}

		if val == nil {
			val = Unknown{}
		}

		return Map{Key: key, Val: val}

	case *ast.RecordLit:
		rec, ok := ck.cat.records[x.TypeName]
		if !ok {
			for _, f := range x.Fields {
				ck.infer(e, f.Value)
			}

			return Unknown{}
		}

		for _, f := range x.Fields {
			got := ck.infer(e, f.Value)

			want, ok := rec.Fields[f.Name]
			if !ok {
				ck.errs = append(ck.errs, errUnknownField(rec.Name, f.Name, x.Sp))
				continue
			}

			if !subsumes(got, want) {
				ck.errs = append(ck.errs, errMismatch(want, got, x.Sp))
			}
		}

		return rec

	case *ast.UnionLit:
		for _, p := range x.Payload {
			ck.infer(e, p)
		}

		// A bare union-tag literal carries no static link to a declared
		// Union type (ast.UnionLit has no TypeName); treated as Unknown
		// rather than guessed at.
		return Unknown{}

	case *ast.MatchExpr:
		return ck.inferMatchExpr(e, x)
	}

	return Unknown{}
}

func (ck *checker) inferBinary(e *env, x *ast.Binary) Type {
	left := ck.infer(e, x.Left)
	right := ck.infer(e, x.Right)

	switch x.Op {
	case "+", "-", "*", "/", "%":
		if x.Op == "+" && (equal(left, TString) || equal(right, TString)) {
			return TString
		}

		if equal(left, TFloat) || equal(right, TFloat) {
			return TFloat
		}

		if !subsumes(left, TInt) {
			ck.errs = append(ck.errs, errMismatch(TInt, left, x.Left.Span()))
		}

		if !subsumes(right, TInt) {
			ck.errs = append(ck.errs, errMismatch(TInt, right, x.Right.Span()))
		}

		return TInt

	case "<", "<=", ">", ">=":
		return TBool

	case "==", "!=":
		if !equal(left, right) && !subsumes(left, right) && !subsumes(right, left) {
			ck.errs = append(ck.errs, errMismatch(left, right, x.Sp))
		}

		return TBool

	case "and", "or", "&&", "||":
		if !subsumes(left, TBool) {
			ck.errs = append(ck.errs, errMismatch(TBool, left, x.Left.Span()))
		}

		if !subsumes(right, TBool) {
			ck.errs = append(ck.errs, errMismatch(TBool, right, x.Right.Span()))
		}

		return TBool
	}

	return Unknown{}
}

func (ck *checker) inferCall(e *env, x *ast.Call) Type {
	ident, ok := x.Callee.(*ast.Ident)
	if !ok {
		target := ck.infer(e, x.Callee)

		for _, a := range x.Args {
			ck.infer(e, a)
		}

		if cell, ok := target.(Cell); ok {
			return cell.Returns
		}

		return Unknown{}
	}

	if b, ok := e.lookup(ident.Name); ok {
		cell, ok := b.typ.(Cell)
		if !ok {
			for _, a := range x.Args {
				ck.infer(e, a)
			}

			ck.errs = append(ck.errs, errNotCallable(b.typ, x.Sp))

			return Unknown{}
		}

		ck.checkArgs(e, ident.Name, cell, x)

		return cell.Returns
	}

	cell, ok := ck.cat.cells[ident.Name]
	if !ok {
		for _, a := range x.Args {
			ck.infer(e, a)
		}

		// Already reported as UndefinedCell by pkg/resolver.
		return Unknown{}
	}

	ck.checkArgs(e, ident.Name, cell, x)

	return cell.Returns
}

// checkArgs infers each argument exactly once, against the callee's
// declared parameter types when the arity matches.
func (ck *checker) checkArgs(e *env, name string, cell Cell, x *ast.Call) {
	if len(x.Args) != len(cell.Params) {
		ck.errs = append(ck.errs, errArgCount(name, len(cell.Params), len(x.Args), x.Sp))

		for _, a := range x.Args {
			ck.infer(e, a)
		}

		return
	}

	for i, arg := range x.Args {
		got := ck.infer(e, arg)
		if !subsumes(got, cell.Params[i]) {
			ck.errs = append(ck.errs, errMismatch(cell.Params[i], got, arg.Span()))
		}
	}
}

func (ck *checker) inferMatchExpr(e *env, x *ast.MatchExpr) Type {
	scrutType := ck.infer(e, x.Scrutinee)
	ck.errs = append(ck.errs, checkExhaustive(scrutType, x.Arms, x.Sp)...)

	var result Type

	for _, arm := range x.Arms {
		e.push()
		ck.declarePattern(e, arm.Pattern, scrutType)

		if arm.Guard != nil {
			ck.checkBool(e, arm.Guard)
		}

		var armType Type = Unknown{}

		for i, st := range arm.Body {
			if i == len(arm.Body)-1 {
				if es, ok := st.(*ast.ExprStmt); ok {
					armType = ck.infer(e, es.Value)
					continue
				}
			}

			ck.checkStmt(e, st)
		}

		e.pop()

		result = join(result, armType)
	}

	if result == nil {
		result = Unknown{}
	}

	return result
}
