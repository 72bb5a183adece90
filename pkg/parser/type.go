package parser

import (
	"github.com/lumen-lang/lumen/pkg/ast"
	"github.com/lumen-lang/lumen/pkg/lexer"
)

// parseType parses a structural type expression (§3: Named, List(T),
// Map(K,V), Result(Ok,Err), Union([T]), Null), with `|` as the lowest
// precedence union combinator.
func (p *Parser) parseType() ast.Type {
	first := p.parseTypeAtom()

	if !p.checkPunct("|") {
		return first
	}

	members := []ast.Type{first}

	for p.matchPunct("|") {
		members = append(members, p.parseTypeAtom())
	}

	return &ast.UnionType{Members: members, Sp: first.Span()}
}

func (p *Parser) parseTypeAtom() ast.Type {
	tok := p.peek()

	if tok.Kind == lexer.KindKeyword && tok.Text == "null" {
		p.advance()
		return &ast.NullType{Sp: tok.Span}
	}

	name, sp, ok := p.expectIdent()
	if !ok {
		p.synchronize()
		return &ast.NullType{Sp: sp}
	}

	switch name {
	case "List":
		p.expectPunct("(")
		elem := p.parseType()
		p.expectPunct(")")

		return &ast.ListType{Elem: elem, Sp: sp}
	case "Map":
		p.expectPunct("(")
		key := p.parseType()
		p.expectPunct(",")
		val := p.parseType()
		p.expectPunct(")")

		return &ast.MapType{Key: key, Val: val, Sp: sp}
	case "Result":
		p.expectPunct("(")
		ok := p.parseType()
		p.expectPunct(",")
		err := p.parseType()
		p.expectPunct(")")

		return &ast.ResultType{Ok: ok, Err: err, Sp: sp}
	}

	named := &ast.NamedType{Name: name, Sp: sp}

	if p.matchPunct("<") {
		named.Args = p.parseTypeList(">")
		p.expectPunct(">")
	}

	return named
}
