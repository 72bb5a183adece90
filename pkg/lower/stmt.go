package lower

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/lir"
)

// lowerStmt lowers one statement, emitting into fb's instruction stream.
// Control-flow forms follow §4.7's jump-patching protocol exactly: a
// placeholder jump is emitted, its instruction index recorded, and once the
// target PC is known the placeholder is rewritten in place.
func (fb *funcBuilder) lowerStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		valReg := fb.lowerExpr(s.Value)
		dest := fb.ra.allocNamed(s.Name)

		if dest != valReg {
			fb.emit(lir.ABC(lir.OpMove, dest, valReg, 0))
		}

	case *ast.AssignStmt:
		fb.lowerAssign(s)

	case *ast.ExprStmt:
		fb.lowerExpr(s.Value)

	case *ast.IfStmt:
		fb.lowerIf(s)

	case *ast.WhileStmt:
		fb.lowerWhile(s)

	case *ast.ForInStmt:
		fb.lowerForIn(s)

	case *ast.MatchStmt:
		fb.lowerMatchStmt(s)

	case *ast.ReturnStmt:
		if s.Value == nil {
			r := fb.ra.allocTemp()
			fb.emit(lir.ABC(lir.OpLoadNil, r, 0, 0))
			fb.emit(lir.ABC(lir.OpReturn, r, 1, 0))

			return
		}

		valReg := fb.lowerExpr(s.Value)
		fb.emit(lir.ABC(lir.OpReturn, valReg, 1, 0))

	case *ast.BreakStmt:
		lp := fb.currentLoop()
		idx := fb.emit(lir.SAx(lir.OpBreak, 0))

		if lp != nil {
			lp.breaks = append(lp.breaks, idx)
		}

	case *ast.ContinueStmt:
		lp := fb.currentLoop()

		if lp == nil {
			fb.emit(lir.SAx(lir.OpContinue, 0))
			return
		}

		offset := int32(lp.head - fb.pc() - 1)
		fb.emit(lir.SAx(lir.OpContinue, offset))

	case *ast.GrantStmt:
		idx := fb.emit(lir.SAx(lir.OpHandlePush, 0))

		fb.ra.push()
		for _, st := range s.Body {
			fb.lowerStmt(st)
		}
		fb.ra.pop()

		fb.patchJmp(idx)

	case *ast.TransitionStmt:
		fb.lowerTransition(s)
	}
}

func (fb *funcBuilder) lowerAssign(s *ast.AssignStmt) {
	switch target := s.Target.(type) {
	case *ast.Ident:
		valReg := fb.lowerExpr(s.Value)

		if reg, ok := fb.ra.lookup(target.Name); ok {
			if reg != valReg {
				fb.emit(lir.ABC(lir.OpMove, reg, valReg, 0))
			}
		}

	case *ast.FieldAccess:
		obj := fb.lowerExpr(target.Target)
		valReg := fb.lowerExpr(s.Value)
		fidx, ok := fb.lw.internField(target.Field)

		if !ok {
			fidx = 0
		}

		fb.emit(lir.ABC(lir.OpSetField, obj, fidx, valReg))

	case *ast.IndexAccess:
		obj := fb.lowerExpr(target.Target)
		idx := fb.lowerExpr(target.Index)
		valReg := fb.lowerExpr(s.Value)
		fb.emit(lir.ABC(lir.OpSetIndex, obj, idx, valReg))
	}
}

// lowerIf implements §4.7's if/else protocol: conditional Test + Jmp
// placeholder, then-block, unconditional Jmp placeholder, patch the first
// jump to the else's start, else-block (recursing into ElseIfs as nested
// ifs), patch the second jump to the end.
func (fb *funcBuilder) lowerIf(s *ast.IfStmt) {
	condReg := fb.lowerExpr(s.Cond)
	fb.emit(lir.ABC(lir.OpTest, condReg, 0, 1))
	jmpIdx := fb.emit(lir.SAx(lir.OpJmp, 0))

	fb.ra.push()
	for _, st := range s.Then {
		fb.lowerStmt(st)
	}
	fb.ra.pop()

	hasElse := len(s.ElseIfs) > 0 || s.Else != nil

	if !hasElse {
		fb.patchJmp(jmpIdx)
		return
	}

	endJmp := fb.emit(lir.SAx(lir.OpJmp, 0))
	fb.patchJmp(jmpIdx)

	fb.lowerElseChain(s.ElseIfs, s.Else)

	fb.patchJmp(endJmp)
}

// lowerElseChain recurses each `else if` as a nested if/else, terminating
// in the final (possibly absent) else body.
func (fb *funcBuilder) lowerElseChain(elseIfs []ast.ElseIf, els []ast.Stmt) {
	if len(elseIfs) == 0 {
		fb.ra.push()
		for _, st := range els {
			fb.lowerStmt(st)
		}
		fb.ra.pop()

		return
	}

	head := elseIfs[0]
	condReg := fb.lowerExpr(head.Cond)
	fb.emit(lir.ABC(lir.OpTest, condReg, 0, 1))
	jmpIdx := fb.emit(lir.SAx(lir.OpJmp, 0))

	fb.ra.push()
	for _, st := range head.Body {
		fb.lowerStmt(st)
	}
	fb.ra.pop()

	rest := elseIfs[1:]
	hasMore := len(rest) > 0 || els != nil

	if !hasMore {
		fb.patchJmp(jmpIdx)
		return
	}

	endJmp := fb.emit(lir.SAx(lir.OpJmp, 0))
	fb.patchJmp(jmpIdx)

	fb.lowerElseChain(rest, els)

	fb.patchJmp(endJmp)
}

// lowerWhile implements §4.7's while protocol: record loop-head PC, lower
// condition, Test+Jmp placeholder, body, unconditional Jmp back to head,
// patch the exit placeholder to the current PC.
func (fb *funcBuilder) lowerWhile(s *ast.WhileStmt) {
	lp := fb.pushLoop()

	condReg := fb.lowerExpr(s.Cond)
	fb.emit(lir.ABC(lir.OpTest, condReg, 0, 1))
	exitJmp := fb.emit(lir.SAx(lir.OpJmp, 0))

	fb.ra.push()
	for _, st := range s.Body {
		fb.lowerStmt(st)
	}
	fb.ra.pop()

	backOffset := int32(lp.head - fb.pc() - 1)
	fb.emit(lir.SAx(lir.OpJmp, backOffset))

	fb.patchJmp(exitJmp)
	fb.popLoop()
}

// lowerForIn allocates index/length temps and emits a bounded loop using
// GetIndex to bind the loop variable (§4.7). The reference implementation
// never emits the ISA's dedicated ForPrep/ForLoop opcodes for this (it
// unrolls with Lt/Jmp/GetIndex/Add instead); this lowerer follows the same
// shape rather than inventing loop-test semantics the VM spec never pins
// down for those two opcodes (see DESIGN.md).
func (fb *funcBuilder) lowerForIn(s *ast.ForInStmt) {
	iterReg := fb.lowerExpr(s.Iterable)
	idxReg := fb.ra.allocTemp()
	lenReg := fb.ra.allocTemp()

	zeroIdx := fb.addConst(lir.Constant{Kind: lir.ConstInt, IntVal: 0})
	fb.emit(lir.ABx(lir.OpLoadK, idxReg, zeroIdx))
	fb.emit(lir.ABC(lir.OpIntrinsic, lenReg, uint8(lir.IntrinsicLength), iterReg))

	lp := fb.pushLoop()

	condReg := fb.ra.allocTemp()
	fb.emit(lir.ABC(lir.OpLt, condReg, idxReg, lenReg))
	fb.emit(lir.ABC(lir.OpTest, condReg, 0, 1))
	exitJmp := fb.emit(lir.SAx(lir.OpJmp, 0))

	elemReg := fb.ra.allocNamed(s.Var)
	fb.emit(lir.ABC(lir.OpGetIndex, elemReg, iterReg, idxReg))

	fb.ra.push()
	for _, st := range s.Body {
		fb.lowerStmt(st)
	}
	fb.ra.pop()

	oneIdx := fb.addConst(lir.Constant{Kind: lir.ConstInt, IntVal: 1})
	oneReg := fb.ra.allocTemp()
	fb.emit(lir.ABx(lir.OpLoadK, oneReg, oneIdx))
	fb.emit(lir.ABC(lir.OpAdd, idxReg, idxReg, oneReg))

	backOffset := int32(lp.head - fb.pc() - 1)
	fb.emit(lir.SAx(lir.OpJmp, backOffset))

	fb.patchJmp(exitJmp)
	fb.popLoop()
}

// lowerMatchStmt implements §4.7's match protocol: each arm tests its
// pattern and jumps to the next arm on mismatch; every arm body ends with
// a jump to the match-end, all back-patched once the end PC is known.
func (fb *funcBuilder) lowerMatchStmt(s *ast.MatchStmt) {
	subj := fb.lowerExpr(s.Scrutinee)

	var endJumps []int

	for _, arm := range s.Arms {
		skipJmp := -1

		switch pat := arm.Pattern.(type) {
		case *ast.LiteralPattern:
			litReg := fb.lowerExpr(pat.Value)
			eq := fb.ra.allocTemp()
			fb.emit(lir.ABC(lir.OpEq, eq, subj, litReg))
			fb.emit(lir.ABC(lir.OpTest, eq, 0, 1))
			skipJmp = fb.emit(lir.SAx(lir.OpJmp, 0))

		case *ast.VariantPattern:
			fb.bindVariantFields(subj, pat.Fields)

		case *ast.BindingPattern:
			breg := fb.ra.allocNamed(pat.Name)
			fb.emit(lir.ABC(lir.OpMove, breg, subj, 0))
		}

		if arm.Guard != nil {
			guardReg := fb.lowerExpr(arm.Guard)
			fb.emit(lir.ABC(lir.OpTest, guardReg, 0, 1))
			guardSkip := fb.emit(lir.SAx(lir.OpJmp, 0))

			fb.ra.push()
			for _, st := range arm.Body {
				fb.lowerStmt(st)
			}
			fb.ra.pop()

			endJumps = append(endJumps, fb.emit(lir.SAx(lir.OpJmp, 0)))
			fb.patchJmp(guardSkip)
		} else {
			fb.ra.push()
			for _, st := range arm.Body {
				fb.lowerStmt(st)
			}
			fb.ra.pop()

			endJumps = append(endJumps, fb.emit(lir.SAx(lir.OpJmp, 0)))
		}

		if skipJmp >= 0 {
			fb.patchJmp(skipJmp)
		}
	}

	for _, idx := range endJumps {
		fb.patchJmp(idx)
	}
}

// lowerTransition lowers a machine transition request as a regular Call to
// the generated transition cell, named `<machine>.<transition>` (§4.3).
func (fb *funcBuilder) lowerTransition(s *ast.TransitionStmt) {
	calleeReg := fb.ra.allocTemp()
	idx := fb.addConst(lir.Constant{Kind: lir.ConstString, StringVal: s.Machine + "." + s.Name})
	fb.emit(lir.ABx(lir.OpLoadK, calleeReg, idx))

	argBase := fb.reserveContiguous(len(s.Args))
	fb.lowerExprsContiguous(argBase, s.Args)

	result := fb.ra.allocTemp()
	fb.emit(lir.ABC(lir.OpCall, calleeReg, uint8(len(s.Args)), 1))
	fb.emit(lir.ABC(lir.OpMove, result, calleeReg, 0))
}
