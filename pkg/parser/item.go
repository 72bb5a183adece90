package parser

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/lexer"
	"github.com/lumen-lang/lumen/pkg/span"
)

// parseItem parses one top-level declaration (§3: Cell, Record, Enum,
// UseTool, Grant, Trait, Impl, plus the supplemented StateMachine and
// Handler).
func (p *Parser) parseItem() ast.Item {
	tok := p.peek()

	if tok.Kind == lexer.KindPunct && tok.Text == "@" {
		return p.parseCell()
	}

	if tok.Kind != lexer.KindKeyword {
		p.errors = append(p.errors, errUnexpectedToken(p.describe(tok), "a top-level declaration", tok.Span))
		p.synchronize()

		return nil
	}

	switch tok.Text {
	case "import":
		return p.parseImport()
	case "cell":
		return p.parseCell()
	case "record":
		return p.parseRecord()
	case "enum":
		return p.parseEnum()
	case "use":
		return p.parseUseTool()
	case "grant":
		return p.parseGrantItem()
	case "trait":
		return p.parseTrait()
	case "impl":
		return p.parseImpl()
	case "machine":
		return p.parseStateMachine()
	case "handler":
		return p.parseHandler()
	default:
		p.errors = append(p.errors, errUnexpectedToken(p.describe(tok), "a top-level declaration", tok.Span))
		p.synchronize()

		return nil
	}
}

// parseImport parses `import "path"`, optionally restricted to named
// symbols (`import "path" {foo, bar}`) and/or aliased (`import "path" as
// alias`), per the supplemented import syntax (§4.3 describes resolution,
// not grammar; grounded in original_source's module-path semantics).
func (p *Parser) parseImport() *ast.Import {
	start, _ := p.expectKeyword("import")

	pathTok := p.peek()
	path := ""

	if p.check(lexer.KindString) {
		p.advance()
		path = pathTok.Text
	} else {
		p.errors = append(p.errors, errUnexpectedToken(p.describe(pathTok), "a module path string", pathTok.Span))
	}

	im := &ast.Import{Path: path, Sp: start.Span}

	if p.matchPunct("{") {
		for !p.checkPunct("}") && !p.isAtEnd() {
			name, _, ok := p.expectIdent()
			if !ok {
				break
			}

			im.Names = append(im.Names, name)

			if !p.matchPunct(",") {
				break
			}
		}

		p.expectPunct("}")
	}

	if p.matchKeyword("as") {
		alias, _, _ := p.expectIdent()
		im.Alias = alias
	}

	return im
}

// parseAnnotations consumes any leading `@must_use`/`@deterministic`/
// `@linear` decorator lines before a cell declaration.
func (p *Parser) parseAnnotations() (mustUse, deterministic, linear bool) {
	for p.check(lexer.KindPunct) && p.peek().Text == "@" {
		p.advance()

		name, _, ok := p.expectIdent()
		if !ok {
			return
		}

		switch name {
		case "must_use":
			mustUse = true
		case "deterministic":
			deterministic = true
		case "linear":
			linear = true
		}

		p.skipNewlines()
	}

	return
}

func (p *Parser) parseCell() *ast.Cell {
	mustUse, deterministic, linear := p.parseAnnotations()

	start, _ := p.expectKeyword("cell")
	name, _, _ := p.expectIdent()

	cell := &ast.Cell{Name: name, MustUse: mustUse, Deterministic: deterministic, Linear: linear}

	if p.matchPunct("<") {
		for {
			tp, _, ok := p.expectIdent()
			if !ok {
				break
			}

			cell.TypeParams = append(cell.TypeParams, tp)

			if !p.matchPunct(",") {
				break
			}
		}

		p.expectPunct(">")
	}

	p.expectPunct("(")

	for !p.checkPunct(")") && !p.isAtEnd() {
		pname, psp, ok := p.expectIdent()
		if !ok {
			break
		}

		p.expectPunct(":")
		ptype := p.parseType()

		cell.Params = append(cell.Params, ast.Param{Name: pname, Type: ptype, Sp: psp})

		if !p.matchPunct(",") {
			break
		}
	}

	p.expectPunct(")")

	if p.matchPunct("->") {
		cell.Returns = p.parseType()
	}

	if p.matchPunct("/") {
		p.expectPunct("{")

		for !p.checkPunct("}") && !p.isAtEnd() {
			eff, _, ok := p.expectIdent()
			if !ok {
				break
			}

			cell.Effects = append(cell.Effects, eff)

			if !p.matchPunct(",") {
				break
			}
		}

		p.expectPunct("}")
	}

	for p.checkKeyword("where") {
		p.advance()
		cell.Where = append(cell.Where, p.parseExpr())
		p.skipNewlines()
	}

	cell.Body = p.parseBlock("cell "+name, start.Span)
	cell.Sp = start.Span

	return cell
}

func (p *Parser) parseTypeList(closer string) []ast.Type {
	var types []ast.Type

	for !p.checkPunct(closer) && !p.isAtEnd() {
		types = append(types, p.parseType())

		if !p.matchPunct(",") {
			break
		}
	}

	return types
}

func (p *Parser) parseFieldList(construct string, openSp span.Span) []ast.Field {
	var fields []ast.Field

	p.skipNewlines()

	usedIndent := false
	if p.check(lexer.KindIndent) {
		p.advance()
		usedIndent = true
	}

	for !p.isBlockEnd() {
		name, sp, ok := p.expectIdent()
		if !ok {
			p.synchronize()
			continue
		}

		p.expectPunct(":")
		ftype := p.parseType()

		fields = append(fields, ast.Field{Name: name, Type: ftype, Sp: sp})

		p.skipNewlines()
	}

	p.closeBlock(usedIndent, construct, openSp)

	return fields
}

func (p *Parser) parseRecord() *ast.Record {
	start, _ := p.expectKeyword("record")
	name, _, _ := p.expectIdent()

	fields := p.parseFieldList("record "+name, start.Span)

	return &ast.Record{Name: name, Fields: fields, Sp: start.Span}
}

func (p *Parser) parseEnum() *ast.Enum {
	start, _ := p.expectKeyword("enum")
	name, _, _ := p.expectIdent()

	e := &ast.Enum{Name: name, Sp: start.Span}

	p.skipNewlines()

	usedIndent := false
	if p.check(lexer.KindIndent) {
		p.advance()
		usedIndent = true
	}

	for !p.isBlockEnd() {
		vname, vsp, ok := p.expectIdent()
		if !ok {
			p.synchronize()
			continue
		}

		variant := ast.EnumVariant{Name: vname, Sp: vsp}

		if p.matchPunct("(") {
			for !p.checkPunct(")") && !p.isAtEnd() {
				fname, fsp, ok := p.expectIdent()
				if !ok {
					break
				}

				p.expectPunct(":")
				ftype := p.parseType()
				variant.Fields = append(variant.Fields, ast.Field{Name: fname, Type: ftype, Sp: fsp})

				if !p.matchPunct(",") {
					break
				}
			}

			p.expectPunct(")")
		}

		e.Variants = append(e.Variants, variant)
		p.skipNewlines()
	}

	p.closeBlock(usedIndent, "enum "+name, start.Span)

	return e
}

func (p *Parser) parseUseTool() *ast.UseTool {
	start, _ := p.expectKeyword("use")
	p.expectKeyword("tool")

	name, _, _ := p.expectIdent()

	u := &ast.UseTool{Name: name, Sp: start.Span}

	if p.matchKeyword("as") {
		alias, _, _ := p.expectIdent()
		u.Alias = alias
	}

	return u
}

func (p *Parser) parseGrantItem() *ast.Grant {
	start, _ := p.expectKeyword("grant")

	g := &ast.Grant{Sp: start.Span}

	p.expectPunct("{")

	for !p.checkPunct("}") && !p.isAtEnd() {
		eff, _, ok := p.expectIdent()
		if !ok {
			break
		}

		g.Effects = append(g.Effects, eff)

		if !p.matchPunct(",") {
			break
		}
	}

	p.expectPunct("}")

	return g
}

func (p *Parser) parseTrait() *ast.Trait {
	start, _ := p.expectKeyword("trait")
	name, _, _ := p.expectIdent()

	t := &ast.Trait{Name: name, Sp: start.Span}

	p.skipNewlines()

	usedIndent := false
	if p.check(lexer.KindIndent) {
		p.advance()
		usedIndent = true
	}

	for !p.isBlockEnd() {
		mstart, _ := p.expectKeyword("cell")
		mname, _, _ := p.expectIdent()

		method := ast.TraitMethod{Name: mname, Sp: mstart.Span}

		p.expectPunct("(")

		for !p.checkPunct(")") && !p.isAtEnd() {
			pname, psp, ok := p.expectIdent()
			if !ok {
				break
			}

			p.expectPunct(":")
			ptype := p.parseType()
			method.Params = append(method.Params, ast.Param{Name: pname, Type: ptype, Sp: psp})

			if !p.matchPunct(",") {
				break
			}
		}

		p.expectPunct(")")

		if p.matchPunct("->") {
			method.Returns = p.parseType()
		}

		t.Methods = append(t.Methods, method)
		p.skipNewlines()
	}

	p.closeBlock(usedIndent, "trait "+name, start.Span)

	return t
}

func (p *Parser) parseImpl() *ast.Impl {
	start, _ := p.expectKeyword("impl")
	traitName, _, _ := p.expectIdent()
	p.expectKeyword("for")
	typeName, _, _ := p.expectIdent()

	impl := &ast.Impl{TraitName: traitName, TypeName: typeName, Sp: start.Span}

	p.skipNewlines()

	usedIndent := false
	if p.check(lexer.KindIndent) {
		p.advance()
		usedIndent = true
	}

	for !p.isBlockEnd() {
		if !p.checkKeyword("cell") {
			p.synchronize()
			continue
		}

		impl.Methods = append(impl.Methods, p.parseCell())
		p.skipNewlines()
	}

	p.closeBlock(usedIndent, "impl "+traitName, start.Span)

	return impl
}

func (p *Parser) parseStateMachine() *ast.StateMachine {
	start, _ := p.expectKeyword("machine")
	name, _, _ := p.expectIdent()

	m := &ast.StateMachine{Name: name, Sp: start.Span}

	p.skipNewlines()

	usedIndent := false
	if p.check(lexer.KindIndent) {
		p.advance()
		usedIndent = true
	}

	for !p.isBlockEnd() {
		switch {
		case p.checkKeyword("state"):
			m.States = append(m.States, p.parseStateDecl())
		case p.checkKeyword("transition"):
			m.Transitions = append(m.Transitions, p.parseTransitionDecl())
		default:
			p.synchronize()
			continue
		}

		p.skipNewlines()
	}

	p.closeBlock(usedIndent, "machine "+name, start.Span)

	return m
}

func (p *Parser) parseStateDecl() ast.StateDecl {
	start, _ := p.expectKeyword("state")

	decl := ast.StateDecl{Sp: start.Span}

	for p.checkKeyword("initial") || p.checkKeyword("terminal") {
		if p.matchKeyword("initial") {
			decl.Initial = true
		}

		if p.matchKeyword("terminal") {
			decl.Terminal = true
		}
	}

	name, _, _ := p.expectIdent()
	decl.Name = name

	if p.matchPunct("(") {
		for !p.checkPunct(")") && !p.isAtEnd() {
			pname, psp, ok := p.expectIdent()
			if !ok {
				break
			}

			p.expectPunct(":")
			ptype := p.parseType()
			decl.Params = append(decl.Params, ast.Param{Name: pname, Type: ptype, Sp: psp})

			if !p.matchPunct(",") {
				break
			}
		}

		p.expectPunct(")")
	}

	return decl
}

func (p *Parser) parseTransitionDecl() ast.TransitionDecl {
	start, _ := p.expectKeyword("transition")
	name, _, _ := p.expectIdent()

	decl := ast.TransitionDecl{Name: name, Sp: start.Span}

	p.expectKeyword("from")
	from, _, _ := p.expectIdent()
	decl.From = from

	p.expectKeyword("to")
	to, _, _ := p.expectIdent()
	decl.To = to

	if p.matchPunct("(") {
		for !p.checkPunct(")") && !p.isAtEnd() {
			pname, psp, ok := p.expectIdent()
			if !ok {
				break
			}

			p.expectPunct(":")
			ptype := p.parseType()
			decl.Args = append(decl.Args, ast.Param{Name: pname, Type: ptype, Sp: psp})

			if !p.matchPunct(",") {
				break
			}
		}

		p.expectPunct(")")
	}

	return decl
}

func (p *Parser) parseHandler() *ast.Handler {
	start, _ := p.expectKeyword("handler")
	name, _, _ := p.expectIdent()

	h := &ast.Handler{Name: name, Sp: start.Span}

	if p.matchPunct("/") {
		eff, _, _ := p.expectIdent()
		h.Effect = eff
	}

	h.Body = p.parseBlock("handler "+name, start.Span)

	return h
}
