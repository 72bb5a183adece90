package parser

import (
	"strconv"

	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/lexer"
)

// binaryOps maps punctuation/keyword operator text to its Pratt binding
// power, lowest first. `or` binds loosest, unary `not`/`-` tightest.
var binaryOps = []struct {
	texts []string
	power int
}{
	{[]string{"or"}, 1},
	{[]string{"and"}, 2},
	{[]string{"==", "!=", "<", "<=", ">", ">="}, 3},
	{[]string{"+", "-"}, 4},
	{[]string{"*", "/", "%", "//"}, 5},
}

func (p *Parser) bindingPowerOf(tok lexer.Token) (int, bool) {
	var text string

	switch tok.Kind {
	case lexer.KindPunct:
		text = tok.Text
	case lexer.KindKeyword:
		if tok.Text == "or" || tok.Text == "and" {
			text = tok.Text
		} else {
			return 0, false
		}
	default:
		return 0, false
	}

	for _, row := range binaryOps {
		for _, t := range row.texts {
			if t == text {
				return row.power, true
			}
		}
	}

	return 0, false
}

// parseExpr parses a full expression via precedence climbing.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinary(0)
}

func (p *Parser) parseBinary(minPower int) ast.Expr {
	left := p.parseUnary()

	for {
		tok := p.peek()

		power, ok := p.bindingPowerOf(tok)
		if !ok || power < minPower {
			break
		}

		p.advance()

		right := p.parseBinary(power + 1)
		left = &ast.Binary{Op: tok.Text, Left: left, Right: right, Sp: left.Span().Merge(right.Span())}
	}

	return left
}

func (p *Parser) parseUnary() ast.Expr {
	tok := p.peek()

	if (tok.Kind == lexer.KindPunct && tok.Text == "-") ||
		(tok.Kind == lexer.KindKeyword && tok.Text == "not") {
		p.advance()

		operand := p.parseUnary()

		return &ast.Unary{Op: tok.Text, Operand: operand, Sp: tok.Span.Merge(operand.Span())}
	}

	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()

	for {
		switch {
		case p.checkPunct("."):
			p.advance()

			name, fsp, ok := p.expectIdent()
			if !ok {
				return expr
			}

			expr = &ast.FieldAccess{Target: expr, Field: name, Sp: expr.Span().Merge(fsp)}

		case p.checkPunct("("):
			p.advance()

			call := &ast.Call{Callee: expr}

			for !p.checkPunct(")") && !p.isAtEnd() {
				call.Args = append(call.Args, p.parseExpr())

				if !p.matchPunct(",") {
					break
				}
			}

			closeTok, _ := p.expectPunct(")")
			call.Sp = expr.Span().Merge(closeTok.Span)
			expr = call

		case p.checkPunct("["):
			p.advance()

			idx := p.parseExpr()
			closeTok, _ := p.expectPunct("]")

			expr = &ast.IndexAccess{Target: expr, Index: idx, Sp: expr.Span().Merge(closeTok.Span)}

		case p.checkPunct("::"):
			p.advance()

			method, _, ok := p.expectIdent()
			if !ok {
				return expr
			}

			ident, isIdent := expr.(*ast.Ident)
			if !isIdent {
				return expr
			}

			toolCall := &ast.ToolCall{Tool: ident.Name, Method: method, Sp: expr.Span()}

			if p.matchPunct("(") {
				for !p.checkPunct(")") && !p.isAtEnd() {
					toolCall.Args = append(toolCall.Args, p.parseExpr())

					if !p.matchPunct(",") {
						break
					}
				}

				p.expectPunct(")")
			}

			expr = toolCall

		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case lexer.KindInt:
		p.advance()
		return &ast.IntLit{Value: tok.IntValue, Sp: tok.Span}

	case lexer.KindFloat:
		p.advance()
		return &ast.FloatLit{Value: tok.FloatValue, Sp: tok.Span}

	case lexer.KindBytes:
		p.advance()

		bytes := make([]byte, 0, len(tok.Text)/2)

		for i := 0; i+1 < len(tok.Text); i += 2 {
			v, err := strconv.ParseUint(tok.Text[i:i+2], 16, 8)
			if err == nil {
				bytes = append(bytes, byte(v))
			}
		}

		return &ast.BytesLit{Value: bytes, Sp: tok.Span}

	case lexer.KindString:
		p.advance()
		return p.buildStringLit(tok)

	case lexer.KindKeyword:
		switch tok.Text {
		case "true":
			p.advance()
			return &ast.BoolLit{Value: true, Sp: tok.Span}
		case "false":
			p.advance()
			return &ast.BoolLit{Value: false, Sp: tok.Span}
		case "null":
			p.advance()
			return &ast.NullLit{Sp: tok.Span}
		case "match":
			return p.parseMatchExpr()
		}

	case lexer.KindIdent:
		p.advance()

		if p.checkPunct("{") && p.identLooksLikeRecordType(tok.Text) {
			return p.parseRecordLit(tok)
		}

		return &ast.Ident{Name: tok.Text, Sp: tok.Span}

	case lexer.KindPunct:
		switch tok.Text {
		case "(":
			p.advance()

			inner := p.parseExpr()
			p.expectPunct(")")

			return inner

		case "[":
			return p.parseListLit()

		case "{":
			return p.parseMapLit()
		}
	}

	p.errors = append(p.errors, errUnexpectedToken(p.describe(tok), "an expression", tok.Span))
	p.advance()

	return &ast.NullLit{Sp: tok.Span}
}

// identLooksLikeRecordType applies the same uppercase-leading convention as
// pattern variant detection to disambiguate `Point{x: 1}` record literals
// from a following block-opening `{` (e.g. a grant's effect set).
func (p *Parser) identLooksLikeRecordType(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}

func (p *Parser) parseRecordLit(nameTok lexer.Token) ast.Expr {
	p.expectPunct("{")

	rl := &ast.RecordLit{TypeName: nameTok.Text, Sp: nameTok.Span}

	for !p.checkPunct("}") && !p.isAtEnd() {
		fname, _, ok := p.expectIdent()
		if !ok {
			break
		}

		p.expectPunct(":")
		value := p.parseExpr()

		rl.Fields = append(rl.Fields, ast.FieldInit{Name: fname, Value: value})

		if !p.matchPunct(",") {
			break
		}
	}

	p.expectPunct("}")

	return rl
}

func (p *Parser) parseListLit() ast.Expr {
	start, _ := p.expectPunct("[")

	l := &ast.ListLit{Sp: start.Span}

	for !p.checkPunct("]") && !p.isAtEnd() {
		l.Elems = append(l.Elems, p.parseExpr())

		if !p.matchPunct(",") {
			break
		}
	}

	p.expectPunct("]")

	return l
}

func (p *Parser) parseMapLit() ast.Expr {
	start, _ := p.expectPunct("{")

	m := &ast.MapLit{Sp: start.Span}

	for !p.checkPunct("}") && !p.isAtEnd() {
		key := p.parseExpr()
		p.expectPunct(":")
		value := p.parseExpr()

		m.Entries = append(m.Entries, ast.MapEntry{Key: key, Value: value})

		if !p.matchPunct(",") {
			break
		}
	}

	p.expectPunct("}")

	return m
}

func (p *Parser) parseMatchExpr() ast.Expr {
	start, _ := p.expectKeyword("match")

	scrutinee := p.parseExpr()
	arms := p.parseMatchArms("match", start.Span)

	return &ast.MatchExpr{Scrutinee: scrutinee, Arms: arms, Sp: start.Span}
}

// buildStringLit converts a lexer string token (possibly carrying
// interpolation segments) into an ast.StringLit, recursively re-parsing
// each expression segment's own sub-token-stream (§4.1's token-splice
// semantics: "prefix" + expr + "suffix").
func (p *Parser) buildStringLit(tok lexer.Token) ast.Expr {
	segs := tok.InterpSegments()
	if len(segs) == 0 {
		return &ast.StringLit{Value: tok.Text, Sp: tok.Span}
	}

	lit := &ast.StringLit{Sp: tok.Span}

	i := 0
	for i < len(segs) {
		seg := segs[i]

		if seg.Kind == lexer.KindString {
			lit.Parts = append(lit.Parts, &ast.StringLit{Value: seg.Text, Sp: seg.Span})
			i++

			continue
		}

		// Collect the run of non-string tokens belonging to one
		// interpolated expression and parse them with a nested Parser.
		j := i
		for j < len(segs) && segs[j].Kind != lexer.KindString {
			j++
		}

		sub := append(append([]lexer.Token{}, segs[i:j]...), lexer.Token{Kind: lexer.KindEOF})
		exprParser := New(sub)
		expr := exprParser.parseExpr()

		p.errors = append(p.errors, exprParser.errors...)
		lit.Parts = append(lit.Parts, expr)

		i = j
	}

	return lit
}
