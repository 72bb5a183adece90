package lower

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/lir"
)

var cmpOpcode = map[string]lir.OpCode{
	"<": lir.OpLt, "<=": lir.OpLe, "==": lir.OpEq,
}

var logicalOpcode = map[string]lir.OpCode{
	"and": lir.OpAnd, "&&": lir.OpAnd, "or": lir.OpOr, "||": lir.OpOr,
}

var arithOpcode = map[string]lir.OpCode{
	"+": lir.OpAdd, "-": lir.OpSub, "*": lir.OpMul, "/": lir.OpDiv, "%": lir.OpMod,
}

// lowerExpr evaluates e and returns the register holding its value: a
// fresh register, or a named local's own register for a bare identifier
// bound in scope, per §4.7's
// lowering of every expression form the grammar has. Binary's comparison
// family is normalized here: `>`/`>=` swap operands onto Lt/Le, `!=`
// follows Eq with a Not (the ISA has no dedicated NotEq opcode).
func (fb *funcBuilder) lowerExpr(e ast.Expr) uint8 {
	switch x := e.(type) {
	case *ast.IntLit:
		return fb.loadInt(x.Value)

	case *ast.BigIntLit:
		dest := fb.ra.allocTemp()
		idx := fb.addConst(lir.Constant{Kind: lir.ConstBigInt, BigIntDec: x.Text})
		fb.emit(lir.ABx(lir.OpLoadK, dest, idx))

		return dest

	case *ast.FloatLit:
		dest := fb.ra.allocTemp()
		idx := fb.addConst(lir.Constant{Kind: lir.ConstFloat, FloatVal: x.Value})
		fb.emit(lir.ABx(lir.OpLoadK, dest, idx))

		return dest

	case *ast.BoolLit:
		dest := fb.ra.allocTemp()
		bv := uint8(0)

		if x.Value {
			bv = 1
		}

		fb.emit(lir.ABC(lir.OpLoadBool, dest, bv, 0))

		return dest

	case *ast.NullLit:
		dest := fb.ra.allocTemp()
		fb.emit(lir.ABC(lir.OpLoadNil, dest, 0, 0))

		return dest

	case *ast.StringLit:
		return fb.lowerStringLit(x)

	case *ast.BytesLit:
		// §3's constant-pool variant list has no dedicated Bytes entry;
		// bytes literals share the String kind, carrying the raw bytes.
		dest := fb.ra.allocTemp()
		idx := fb.addConst(lir.Constant{Kind: lir.ConstString, StringVal: string(x.Value)})
		fb.emit(lir.ABx(lir.OpLoadK, dest, idx))

		return dest

	case *ast.Ident:
		if reg, ok := fb.ra.lookup(x.Name); ok {
			return reg
		}

		dest := fb.ra.allocTemp()
		fb.emit(lir.ABC(lir.OpLoadNil, dest, 0, 0))

		return dest

	case *ast.Binary:
		return fb.lowerBinary(x)

	case *ast.Unary:
		inner := fb.lowerExpr(x.Operand)
		dest := fb.ra.allocTemp()

		if x.Op == "not" {
			fb.emit(lir.ABC(lir.OpNot, dest, inner, 0))
		} else {
			fb.emit(lir.ABC(lir.OpNeg, dest, inner, 0))
		}

		return dest

	case *ast.Call:
		return fb.lowerCall(x)

	case *ast.ToolCall:
		return fb.lowerToolCall(x)

	case *ast.FieldAccess:
		obj := fb.lowerExpr(x.Target)
		dest := fb.ra.allocTemp()
		fidx, ok := fb.lw.internField(x.Field)

		if !ok {
			fidx = 0
		}

		fb.emit(lir.ABC(lir.OpGetField, dest, obj, fidx))

		return dest

	case *ast.IndexAccess:
		obj := fb.lowerExpr(x.Target)
		idx := fb.lowerExpr(x.Index)
		dest := fb.ra.allocTemp()
		fb.emit(lir.ABC(lir.OpGetIndex, dest, obj, idx))

		return dest

	case *ast.ListLit:
		dest := fb.ra.allocTemp()
		base := fb.reserveContiguous(len(x.Elems))
		fb.lowerExprsContiguous(base, x.Elems)
		fb.emit(lir.ABC(lir.OpNewList, dest, uint8(len(x.Elems)), 0))

		return dest

	case *ast.MapLit:
		dest := fb.ra.allocTemp()
		pairs := make([]ast.Expr, 0, len(x.Entries)*2)

		for _, entry := range x.Entries {
			pairs = append(pairs, entry.Key, entry.Value)
		}

		base := fb.reserveContiguous(len(pairs))
		fb.lowerExprsContiguous(base, pairs)
		fb.emit(lir.ABC(lir.OpNewMap, dest, uint8(len(x.Entries)), 0))

		return dest

	case *ast.RecordLit:
		dest := fb.ra.allocTemp()
		typeIdx := fb.lw.internString(x.TypeName)
		fields := fb.orderRecordFields(x)
		base := fb.reserveContiguous(len(fields))
		fb.lowerExprsContiguous(base, fields)
		fb.emit(lir.ABx(lir.OpNewRecord, dest, typeIdx))

		return dest

	case *ast.UnionLit:
		dest := fb.ra.allocTemp()
		tagIdx := fb.lw.internString(x.Tag)
		base := fb.reserveContiguous(len(x.Payload))
		fb.lowerExprsContiguous(base, x.Payload)
		fb.emit(lir.ABx(lir.OpNewUnion, dest, tagIdx))

		return dest

	case *ast.MatchExpr:
		return fb.lowerMatchExpr(x)
	}

	dest := fb.ra.allocTemp()
	fb.emit(lir.ABC(lir.OpLoadNil, dest, 0, 0))

	return dest
}

// lowerStringLit evaluates a plain string literal as a constant, or an
// interpolated one as a left-to-right chain of Add (string concatenation
// shares the Add opcode with numeric addition, per the typechecker's own
// `+` rule) over its alternating literal/expression Parts.
func (fb *funcBuilder) lowerStringLit(s *ast.StringLit) uint8 {
	if len(s.Parts) == 0 {
		dest := fb.ra.allocTemp()
		idx := fb.addConst(lir.Constant{Kind: lir.ConstString, StringVal: s.Value})
		fb.emit(lir.ABx(lir.OpLoadK, dest, idx))

		return dest
	}

	acc := fb.lowerExpr(s.Parts[0])

	for _, part := range s.Parts[1:] {
		next := fb.lowerExpr(part)
		dest := fb.ra.allocTemp()
		fb.emit(lir.ABC(lir.OpAdd, dest, acc, next))
		acc = dest
	}

	return acc
}

func (fb *funcBuilder) lowerBinary(x *ast.Binary) uint8 {
	switch x.Op {
	case ">":
		rr := fb.lowerExpr(x.Left)
		lr := fb.lowerExpr(x.Right)
		dest := fb.ra.allocTemp()
		fb.emit(lir.ABC(lir.OpLt, dest, lr, rr))

		return dest

	case ">=":
		rr := fb.lowerExpr(x.Left)
		lr := fb.lowerExpr(x.Right)
		dest := fb.ra.allocTemp()
		fb.emit(lir.ABC(lir.OpLe, dest, lr, rr))

		return dest

	case "!=":
		lr := fb.lowerExpr(x.Left)
		rr := fb.lowerExpr(x.Right)
		eq := fb.ra.allocTemp()
		fb.emit(lir.ABC(lir.OpEq, eq, lr, rr))
		dest := fb.ra.allocTemp()
		fb.emit(lir.ABC(lir.OpNot, dest, eq, 0))

		return dest
	}

	lr := fb.lowerExpr(x.Left)
	rr := fb.lowerExpr(x.Right)
	dest := fb.ra.allocTemp()

	if op, ok := cmpOpcode[x.Op]; ok {
		fb.emit(lir.ABC(op, dest, lr, rr))
		return dest
	}

	if op, ok := logicalOpcode[x.Op]; ok {
		fb.emit(lir.ABC(op, dest, lr, rr))
		return dest
	}

	op := arithOpcode[x.Op]
	fb.emit(lir.ABC(op, dest, lr, rr))

	return dest
}

// lowerCall lowers a cell invocation. The VM's Call opcode resolves its
// callee by name (§4.10: "look up the callee by name via the string
// pointed at by r[A]"), so an Ident callee is loaded as a string constant
// rather than evaluated as a variable reference.
func (fb *funcBuilder) lowerCall(x *ast.Call) uint8 {
	var calleeReg uint8

	if ident, ok := x.Callee.(*ast.Ident); ok {
		calleeReg = fb.ra.allocTemp()
		idx := fb.addConst(lir.Constant{Kind: lir.ConstString, StringVal: ident.Name})
		fb.emit(lir.ABx(lir.OpLoadK, calleeReg, idx))
	} else {
		calleeReg = fb.lowerExpr(x.Callee)
	}

	argBase := fb.reserveContiguous(len(x.Args))
	fb.lowerExprsContiguous(argBase, x.Args)

	result := fb.ra.allocTemp()
	fb.emit(lir.ABC(lir.OpCall, calleeReg, uint8(len(x.Args)), 1))
	fb.emit(lir.ABC(lir.OpMove, result, calleeReg, 0))

	return result
}

func (fb *funcBuilder) lowerToolCall(x *ast.ToolCall) uint8 {
	dest := fb.ra.allocTemp()
	argBase := fb.reserveContiguous(len(x.Args))
	fb.lowerExprsContiguous(argBase, x.Args)

	site := fb.lw.addToolSite(x.Tool, x.Method, len(x.Args))
	fb.emit(lir.ABx(lir.OpToolCall, dest, site))

	return dest
}

// orderRecordFields maps a record literal's named field inits into the
// type's declared field order, so NewRecord's runtime zip against
// LirType.Fields lines up regardless of the order fields were written in.
// Falls back to the literal's own order if the type wasn't seen (e.g. a
// record type from a module this lowerer didn't pre-scan).
func (fb *funcBuilder) orderRecordFields(x *ast.RecordLit) []ast.Expr {
	order, ok := fb.lw.recordFields[x.TypeName]
	if !ok {
		out := make([]ast.Expr, len(x.Fields))

		for i, f := range x.Fields {
			out[i] = f.Value
		}

		return out
	}

	byName := make(map[string]ast.Expr, len(x.Fields))
	for _, f := range x.Fields {
		byName[f.Name] = f.Value
	}

	out := make([]ast.Expr, 0, len(order))

	for _, name := range order {
		if v, ok := byName[name]; ok {
			out = append(out, v)
		}
	}

	return out
}

// lowerMatchExpr lowers a match used in expression position: each arm's
// final ExprStmt supplies the match's value, moved into a shared dest
// register; arm bodies otherwise lower exactly as in statement position.
func (fb *funcBuilder) lowerMatchExpr(x *ast.MatchExpr) uint8 {
	dest := fb.ra.allocTemp()
	subj := fb.lowerExpr(x.Scrutinee)

	var endJumps []int

	for _, arm := range x.Arms {
		skipJmp := -1

		if lit, ok := arm.Pattern.(*ast.LiteralPattern); ok {
			litReg := fb.lowerExpr(lit.Value)
			eq := fb.ra.allocTemp()
			fb.emit(lir.ABC(lir.OpEq, eq, subj, litReg))
			fb.emit(lir.ABC(lir.OpTest, eq, 0, 1))
			skipJmp = fb.emit(lir.SAx(lir.OpJmp, 0))
		} else if vp, ok := arm.Pattern.(*ast.VariantPattern); ok {
			fb.bindVariantFields(subj, vp.Fields)
		} else if bp, ok := arm.Pattern.(*ast.BindingPattern); ok {
			breg := fb.ra.allocNamed(bp.Name)
			fb.emit(lir.ABC(lir.OpMove, breg, subj, 0))
		}

		fb.ra.push()
		fb.lowerMatchExprArmBody(arm.Body, dest)
		fb.ra.pop()

		endJumps = append(endJumps, fb.emit(lir.SAx(lir.OpJmp, 0)))

		if skipJmp >= 0 {
			fb.patchJmp(skipJmp)
		}
	}

	for _, idx := range endJumps {
		fb.patchJmp(idx)
	}

	return dest
}

func (fb *funcBuilder) bindVariantFields(subj uint8, fields []string) {
	for _, name := range fields {
		breg := fb.ra.allocNamed(name)
		fidx, ok := fb.lw.internField(name)

		if !ok {
			fidx = 0
		}

		fb.emit(lir.ABC(lir.OpGetField, breg, subj, fidx))
	}
}

func (fb *funcBuilder) lowerMatchExprArmBody(stmts []ast.Stmt, dest uint8) {
	for i, stmt := range stmts {
		if i == len(stmts)-1 {
			if es, ok := stmt.(*ast.ExprStmt); ok {
				result := fb.lowerExpr(es.Value)
				fb.emit(lir.ABC(lir.OpMove, dest, result, 0))

				return
			}
		}

		fb.lowerStmt(stmt)
	}
}
