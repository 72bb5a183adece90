package parser

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/lexer"
	"github.com/lumen-lang/lumen/pkg/span"
)

// parseStmt parses one statement within a cell, handler, or match-arm body.
func (p *Parser) parseStmt() ast.Stmt {
	tok := p.peek()

	if tok.Kind == lexer.KindKeyword {
		switch tok.Text {
		case "let":
			return p.parseLetStmt()
		case "if":
			return p.parseIfStmt()
		case "while":
			return p.parseWhileStmt()
		case "for":
			return p.parseForInStmt()
		case "match":
			return p.parseMatchStmt()
		case "return":
			return p.parseReturnStmt()
		case "break":
			p.advance()
			return &ast.BreakStmt{Sp: tok.Span}
		case "continue":
			p.advance()
			return &ast.ContinueStmt{Sp: tok.Span}
		case "grant":
			return p.parseGrantStmt()
		case "transition":
			return p.parseTransitionStmt()
		}
	}

	return p.parseExprOrAssignStmt()
}

func (p *Parser) parseLetStmt() *ast.LetStmt {
	start, _ := p.expectKeyword("let")

	mut := p.matchKeyword("mut")

	name, _, _ := p.expectIdent()

	s := &ast.LetStmt{Name: name, Mut: mut, Sp: start.Span}

	if p.matchPunct(":") {
		s.Type = p.parseType()
	}

	p.expectPunct("=")
	s.Value = p.parseExpr()

	return s
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	start, _ := p.expectKeyword("if")

	s := &ast.IfStmt{Sp: start.Span}
	s.Cond = p.parseExpr()
	s.Then = p.parseIfBody()

	for p.checkKeyword("else") {
		elseTok := p.advance()

		if p.checkKeyword("if") {
			p.advance()

			cond := p.parseExpr()
			body := p.parseIfBody()
			s.ElseIfs = append(s.ElseIfs, ast.ElseIf{Cond: cond, Body: body, Sp: elseTok.Span})

			continue
		}

		s.Else = p.parseBlock("if", start.Span)

		break
	}

	if s.Else == nil {
		// No trailing `else`: a flat ("end"-terminated) if-chain still has
		// exactly one closing `end` for the whole construct.
		p.matchKeyword("end")
	}

	return s
}

// parseIfBody parses the statements between `if <cond>` (or `else if
// <cond>`) and the next `else`/`end`/Dedent, without consuming a trailing
// `end` that belongs to the whole if-chain.
func (p *Parser) parseIfBody() []ast.Stmt {
	p.skipNewlines()

	usedIndent := false
	if p.check(lexer.KindIndent) {
		p.advance()
		usedIndent = true
	}

	var stmts []ast.Stmt

	for !p.isAtEnd() && !p.check(lexer.KindDedent) && !p.checkKeyword("end") && !p.checkKeyword("else") {
		before := p.pos

		st := p.parseStmt()
		if st != nil {
			stmts = append(stmts, st)
		}

		if p.pos == before {
			p.advance()
		}

		p.skipNewlines()
	}

	if usedIndent && p.check(lexer.KindDedent) {
		p.advance()
	}

	return stmts
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	start, _ := p.expectKeyword("while")

	s := &ast.WhileStmt{Sp: start.Span}
	s.Cond = p.parseExpr()
	s.Body = p.parseBlock("while", start.Span)

	return s
}

func (p *Parser) parseForInStmt() *ast.ForInStmt {
	start, _ := p.expectKeyword("for")

	name, _, _ := p.expectIdent()
	p.expectKeyword("in")

	iterable := p.parseExpr()

	s := &ast.ForInStmt{Var: name, Iterable: iterable, Sp: start.Span}
	s.Body = p.parseBlock("for", start.Span)

	return s
}

func (p *Parser) parseMatchArms(construct string, openSp span.Span) []ast.MatchArm {
	p.skipNewlines()

	usedIndent := false
	if p.check(lexer.KindIndent) {
		p.advance()
		usedIndent = true
	}

	var arms []ast.MatchArm

	for !p.isBlockEnd() {
		arm := p.parseMatchArm()
		arms = append(arms, arm)
		p.skipNewlines()
	}

	p.closeBlock(usedIndent, construct, openSp)

	return arms
}

func (p *Parser) parseMatchArm() ast.MatchArm {
	start := p.peek().Span

	pattern := p.parsePattern()

	arm := ast.MatchArm{Pattern: pattern, Sp: start}

	if p.matchKeyword("if") {
		arm.Guard = p.parseExpr()
	}

	p.expectPunct("->")

	arm.Body = p.parseArmBody()

	return arm
}

// parseArmBody parses the body of one match arm. Most arms are a single
// flat statement on the same line as `->` (e.g. `Square -> return 0`); an
// Indent right after `->` instead opens a multi-statement block, closed
// the same way any other block is (Dedent, optionally followed by `end`).
func (p *Parser) parseArmBody() []ast.Stmt {
	if p.check(lexer.KindIndent) {
		p.advance()

		var stmts []ast.Stmt

		for !p.check(lexer.KindDedent) && !p.isAtEnd() {
			before := p.pos

			st := p.parseStmt()
			if st != nil {
				stmts = append(stmts, st)
			}

			if p.pos == before {
				p.advance()
			}

			p.skipNewlines()
		}

		if p.check(lexer.KindDedent) {
			p.advance()
		}

		return stmts
	}

	stmt := p.parseStmt()
	if stmt == nil {
		return nil
	}

	return []ast.Stmt{stmt}
}

func (p *Parser) parsePattern() ast.Pattern {
	tok := p.peek()

	if tok.Kind == lexer.KindIdent && tok.Text == "_" {
		p.advance()
		return &ast.WildcardPattern{Sp: tok.Span}
	}

	if tok.Kind == lexer.KindIdent {
		p.advance()

		if p.matchPunct("(") {
			vp := &ast.VariantPattern{Variant: tok.Text, Sp: tok.Span}

			for !p.checkPunct(")") && !p.isAtEnd() {
				fname, _, ok := p.expectIdent()
				if !ok {
					break
				}

				vp.Fields = append(vp.Fields, fname)

				if !p.matchPunct(",") {
					break
				}
			}

			p.expectPunct(")")

			return vp
		}

		if p.peekIsVariantStart(tok.Text) {
			return &ast.VariantPattern{Variant: tok.Text, Sp: tok.Span}
		}

		return &ast.BindingPattern{Name: tok.Text, Sp: tok.Span}
	}

	expr := p.parsePrimary()

	return &ast.LiteralPattern{Value: expr, Sp: expr.Span()}
}

// peekIsVariantStart distinguishes a nullary-variant pattern from a
// plain binding by convention: identifiers starting with an uppercase
// letter are treated as variant tags.
func (p *Parser) peekIsVariantStart(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}

func (p *Parser) parseMatchStmt() *ast.MatchStmt {
	start, _ := p.expectKeyword("match")

	scrutinee := p.parseExpr()
	arms := p.parseMatchArms("match", start.Span)

	return &ast.MatchStmt{Scrutinee: scrutinee, Arms: arms, Sp: start.Span}
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	start, _ := p.expectKeyword("return")

	s := &ast.ReturnStmt{Sp: start.Span}

	if !p.check(lexer.KindNewline) && !p.isBlockEnd() {
		s.Value = p.parseExpr()
	}

	return s
}

func (p *Parser) parseGrantStmt() *ast.GrantStmt {
	start, _ := p.expectKeyword("grant")

	s := &ast.GrantStmt{Sp: start.Span}

	p.expectPunct("{")

	for !p.checkPunct("}") && !p.isAtEnd() {
		eff, _, ok := p.expectIdent()
		if !ok {
			break
		}

		s.Effects = append(s.Effects, eff)

		if !p.matchPunct(",") {
			break
		}
	}

	p.expectPunct("}")

	s.Body = p.parseBlock("grant", start.Span)

	return s
}

func (p *Parser) parseTransitionStmt() *ast.TransitionStmt {
	start, _ := p.expectKeyword("transition")

	machine, _, _ := p.expectIdent()
	p.expectPunct("::")
	name, _, _ := p.expectIdent()

	s := &ast.TransitionStmt{Machine: machine, Name: name, Sp: start.Span}

	if p.matchPunct("(") {
		for !p.checkPunct(")") && !p.isAtEnd() {
			s.Args = append(s.Args, p.parseExpr())

			if !p.matchPunct(",") {
				break
			}
		}

		p.expectPunct(")")
	}

	return s
}

func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	start := p.peek().Span

	expr := p.parseExpr()

	if p.matchPunct("=") {
		value := p.parseExpr()
		return &ast.AssignStmt{Target: expr, Value: value, Sp: start}
	}

	return &ast.ExprStmt{Value: expr, Sp: start}
}
