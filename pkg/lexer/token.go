package lexer

import "github.com/lumen-lang/lumen/pkg/span"

// Kind tags the lexical alphabet a Token belongs to.
type Kind int

// Token kinds, grouped by §3's tagged-variant description.
const (
	KindEOF Kind = iota
	KindIdent
	KindKeyword
	KindInt
	KindFloat
	KindString
	KindBytes
	KindPunct
	KindIndent
	KindDedent
	KindNewline
	KindFence
)

func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "eof"
	case KindIdent:
		return "ident"
	case KindKeyword:
		return "keyword"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindPunct:
		return "punct"
	case KindIndent:
		return "indent"
	case KindDedent:
		return "dedent"
	case KindNewline:
		return "newline"
	case KindFence:
		return "fence"
	default:
		return "unknown"
	}
}

// Token is one lexical unit. Text carries the literal lexeme for
// identifiers/keywords/punctuation, and the (already-escape-processed)
// value for strings; numeric literals additionally populate IntValue or
// FloatValue.
type Token struct {
	Kind       Kind
	Text       string
	IntValue   int64
	FloatValue float64
	Span       span.Span

	// interpSegments holds the alternating String/expression-token runs of
	// an interpolated string literal ("prefix" + expr + "suffix" ... ), set
	// only when the literal contained at least one "{expr}" splice.
	interpSegments []Token
}

// InterpSegments returns the token segments of an interpolated string
// literal, or nil if the literal contained no interpolation.
func (t Token) InterpSegments() []Token { return t.interpSegments }

var keywords = map[string]bool{
	"cell": true, "record": true, "enum": true, "trait": true, "impl": true,
	"use": true, "tool": true, "grant": true, "let": true, "mut": true,
	"if": true, "else": true, "while": true, "for": true, "in": true,
	"match": true, "end": true, "return": true, "break": true, "continue": true,
	"true": true, "false": true, "null": true, "and": true, "or": true, "not": true,
	"where": true, "machine": true, "state": true, "initial": true, "terminal": true,
	"transition": true, "handler": true, "effect": true, "import": true, "as": true,
}

// IsKeyword reports whether ident is a reserved Lumen keyword.
func IsKeyword(ident string) bool {
	return keywords[ident]
}
