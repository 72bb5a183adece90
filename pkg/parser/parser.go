// Package parser implements §4.2 of the Lumen specification: a recursive
// descent parser with Pratt operator precedence, producing a partial
// Program plus an accumulated list of parse errors (errors never abort
// parsing; the parser resynchronizes and keeps going).
package parser

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/lexer"
	"github.com/lumen-lang/lumen/pkg/span"
)

// Parser holds the token cursor and accumulated errors for one parse.
type Parser struct {
	toks   []lexer.Token
	pos    int
	errors []*Error
}

// New constructs a Parser over a token stream produced by pkg/lexer.
func New(toks []lexer.Token) *Parser {
	return &Parser{toks: toks}
}

// Parse consumes the whole token stream, returning a partial Program and
// every error encountered along the way (§4.2's contract).
func Parse(toks []lexer.Token) (*ast.Program, []*Error) {
	p := New(toks)
	return p.ParseProgram(), p.errors
}

// ParseProgram parses a sequence of top-level items until EOF.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}

	p.skipNewlines()

	for !p.isAtEnd() {
		item := p.parseItem()
		if item != nil {
			prog.Items = append(prog.Items, item)
		}

		p.skipNewlines()
	}

	return prog
}

// ---------------------------------------------------------------------------
// Cursor primitives
// ---------------------------------------------------------------------------

func (p *Parser) isAtEnd() bool {
	return p.pos >= len(p.toks) || p.toks[p.pos].Kind == lexer.KindEOF
}

func (p *Parser) peek() lexer.Token {
	if p.pos >= len(p.toks) {
		return lexer.Token{Kind: lexer.KindEOF}
	}

	return p.toks[p.pos]
}

func (p *Parser) peekAt(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= len(p.toks) {
		return lexer.Token{Kind: lexer.KindEOF}
	}

	return p.toks[idx]
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.pos++
	}

	return tok
}

func (p *Parser) check(kind lexer.Kind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) checkKeyword(word string) bool {
	tok := p.peek()
	return tok.Kind == lexer.KindKeyword && tok.Text == word
}

func (p *Parser) checkPunct(text string) bool {
	tok := p.peek()
	return tok.Kind == lexer.KindPunct && tok.Text == text
}

func (p *Parser) matchKeyword(word string) bool {
	if p.checkKeyword(word) {
		p.advance()
		return true
	}

	return false
}

func (p *Parser) matchPunct(text string) bool {
	if p.checkPunct(text) {
		p.advance()
		return true
	}

	return false
}

func (p *Parser) expectKeyword(word string) (lexer.Token, bool) {
	if p.checkKeyword(word) {
		return p.advance(), true
	}

	p.errors = append(p.errors, errUnexpectedToken(p.describe(p.peek()), "\""+word+"\"", p.peek().Span))

	return p.peek(), false
}

func (p *Parser) expectPunct(text string) (lexer.Token, bool) {
	if p.checkPunct(text) {
		return p.advance(), true
	}

	p.errors = append(p.errors, errUnexpectedToken(p.describe(p.peek()), "\""+text+"\"", p.peek().Span))

	return p.peek(), false
}

func (p *Parser) expectIdent() (string, span.Span, bool) {
	if p.check(lexer.KindIdent) {
		tok := p.advance()
		return tok.Text, tok.Span, true
	}

	p.errors = append(p.errors, errUnexpectedToken(p.describe(p.peek()), "identifier", p.peek().Span))

	return "", p.peek().Span, false
}

func (p *Parser) describe(tok lexer.Token) string {
	switch tok.Kind {
	case lexer.KindEOF:
		return "end of input"
	case lexer.KindNewline:
		return "newline"
	case lexer.KindIndent:
		return "indent"
	case lexer.KindDedent:
		return "dedent"
	default:
		if tok.Text != "" {
			return "\"" + tok.Text + "\""
		}

		return tok.Kind.String()
	}
}

func (p *Parser) skipNewlines() {
	for p.check(lexer.KindNewline) {
		p.advance()
	}
}

// synchronize recovers from a parse error by advancing to the next
// statement terminator, closing bracket, `end` keyword, or top-level item
// keyword (§4.2's recovery points).
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		tok := p.peek()

		if tok.Kind == lexer.KindNewline || tok.Kind == lexer.KindDedent {
			p.advance()
			return
		}

		if tok.Kind == lexer.KindPunct && (tok.Text == ")" || tok.Text == "]" || tok.Text == "}") {
			p.advance()
			return
		}

		if tok.Kind == lexer.KindKeyword {
			switch tok.Text {
			case "end", "cell", "record", "enum", "trait", "impl", "use", "grant", "machine", "handler":
				return
			}
		}

		p.advance()
	}
}

// ---------------------------------------------------------------------------
// Blocks
// ---------------------------------------------------------------------------

// isBlockEnd reports whether the cursor sits on a token that legally closes
// an open block (Dedent, the `end` keyword, or EOF).
func (p *Parser) isBlockEnd() bool {
	return p.isAtEnd() || p.check(lexer.KindDedent) || p.checkKeyword("end")
}

// closeBlock consumes whichever closing marker legally terminates a block
// opened with the given indentation style, rejecting a genuine mix of the
// two: an explicit `end` appearing before the matching Dedent means the
// block's indentation was never actually closed (§4.2's "rejects
// mixed-indentation ambiguity"). An `end` keyword immediately following the
// Dedent is not ambiguous — it is simply the common "indent plus a closing
// keyword for readability" style — and is consumed without error.
func (p *Parser) closeBlock(usedIndent bool, construct string, openSp span.Span) {
	switch {
	case usedIndent && p.check(lexer.KindDedent):
		p.advance()

		if p.checkKeyword("end") {
			p.advance()
		}
	case usedIndent && p.checkKeyword("end"):
		p.errors = append(p.errors, errMixedIndentation(p.peek().Span))
		p.advance()
	case !usedIndent && p.checkKeyword("end"):
		p.advance()
	case !usedIndent:
		p.errors = append(p.errors, errMissingEnd(construct, openSp))
	}
}

// parseBlock parses a statement sequence terminated either by an
// Indent/Dedent pair or by the `end` keyword, rejecting a mix of the two
// (§4.2's "rejects mixed-indentation ambiguity").
func (p *Parser) parseBlock(construct string, openSp span.Span) []ast.Stmt {
	p.skipNewlines()

	usedIndent := false
	if p.check(lexer.KindIndent) {
		p.advance()
		usedIndent = true
	}

	var stmts []ast.Stmt

	for !p.isBlockEnd() {
		before := p.pos

		s := p.parseStmt()
		if s != nil {
			stmts = append(stmts, s)
		}

		if p.pos == before {
			p.advance()
		}

		p.skipNewlines()
	}

	p.closeBlock(usedIndent, construct, openSp)

	return stmts
}
