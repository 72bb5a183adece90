// Package lexer implements §4.1 of the Lumen specification: a single-pass
// scanner over already-extracted Lumen source (see pkg/source) that tracks
// indent/dedent, expands string interpolation, and enforces a consistent
// indent width within a file.
package lexer

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/lumen-lang/lumen/pkg/span"
)

const indentUnknown = -1

// Lexer is a single-pass scanner. StartLine/StartCol let callers anchor
// spans to the original Markdown file rather than the extracted code unit.
type Lexer struct {
	text      []rune
	index     int
	line      int
	col       int
	startLine int
	startCol  int

	indentStack []int
	indentWidth int
	atLineStart bool
	parenDepth  int
}

// New constructs a Lexer over source, with line/col counters seeded from the
// given starting offsets (1-based) so that errors reference the original
// Markdown file.
func New(source string, startLine, startCol int) *Lexer {
	return &Lexer{
		text:        []rune(source),
		line:        startLine,
		col:         startCol,
		startLine:   startLine,
		startCol:    startCol,
		indentStack: []int{0},
		indentWidth: indentUnknown,
		atLineStart: true,
	}
}

// Tokenize scans the entire source, returning the full token stream or the
// first lex error encountered (lexing fails fast per §7).
func (l *Lexer) Tokenize() ([]Token, *Error) {
	var tokens []Token

	for {
		if l.atLineStart && l.parenDepth == 0 {
			indentToks, err := l.scanIndent()
			if err != nil {
				return nil, err
			}

			tokens = append(tokens, indentToks...)
		}

		if l.isEOF() {
			break
		}

		tok, err := l.next()
		if err != nil {
			return nil, err
		}

		if tok == nil {
			continue
		}

		tokens = append(tokens, *tok)

		if tok.Kind == KindNewline {
			l.atLineStart = true
		}
	}

	// Emit trailing dedents back to column zero.
	for len(l.indentStack) > 1 {
		l.indentStack = l.indentStack[:len(l.indentStack)-1]
		tokens = append(tokens, Token{Kind: KindDedent, Span: l.here()})
	}

	tokens = append(tokens, Token{Kind: KindEOF, Span: l.here()})

	return tokens, nil
}

func (l *Lexer) here() span.Span {
	return span.New(l.index, l.index, l.line, l.col)
}

func (l *Lexer) isEOF() bool { return l.index >= len(l.text) }

func (l *Lexer) peek() rune {
	if l.isEOF() {
		return 0
	}

	return l.text[l.index]
}

func (l *Lexer) peekAt(offset int) rune {
	if l.index+offset >= len(l.text) {
		return 0
	}

	return l.text[l.index+offset]
}

func (l *Lexer) advance() rune {
	ch := l.text[l.index]
	l.index++

	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return ch
}

// scanIndent consumes leading whitespace on a new line and emits Indent or
// Dedent tokens as the level changes, enforcing a single consistent width.
func (l *Lexer) scanIndent() ([]Token, *Error) {
	var tokens []Token

	for {
		start := l.index
		width := 0

		for !l.isEOF() && (l.peek() == ' ' || l.peek() == '\t') {
			if l.peek() == '\t' {
				return nil, errInconsistentIndent(l.here())
			}

			width++
			l.advance()
		}

		// Blank line or comment-only line: skip without emitting indent
		// changes.
		if l.isEOF() || l.peek() == '\n' || l.peek() == '#' {
			if l.isEOF() {
				l.atLineStart = false

				return tokens, nil
			}

			if l.peek() == '#' {
				for !l.isEOF() && l.peek() != '\n' {
					l.advance()
				}
			}

			if !l.isEOF() && l.peek() == '\n' {
				l.advance()
			}

			continue
		}

		_ = start
		top := l.indentStack[len(l.indentStack)-1]

		switch {
		case width == top:
			// no change
		case width > top:
			if l.indentWidth == indentUnknown {
				l.indentWidth = width - top
			} else if (width-top)%l.indentWidth != 0 {
				return nil, errInconsistentIndent(l.here())
			}

			l.indentStack = append(l.indentStack, width)
			tokens = append(tokens, Token{Kind: KindIndent, Span: l.here()})
		default:
			for len(l.indentStack) > 1 && l.indentStack[len(l.indentStack)-1] > width {
				l.indentStack = l.indentStack[:len(l.indentStack)-1]
				tokens = append(tokens, Token{Kind: KindDedent, Span: l.here()})
			}

			if l.indentStack[len(l.indentStack)-1] != width {
				return nil, errInconsistentIndent(l.here())
			}
		}

		l.atLineStart = false

		return tokens, nil
	}
}

var singleRunePuncts = "()[]{},:;.+-*/%"

func (l *Lexer) next() (*Token, *Error) {
	ch := l.peek()

	switch {
	case ch == '\n':
		start := l.here()
		l.advance()

		return &Token{Kind: KindNewline, Span: start}, nil
	case ch == ' ' || ch == '\t':
		l.advance()

		return nil, nil
	case ch == '#':
		for !l.isEOF() && l.peek() != '\n' {
			l.advance()
		}

		return nil, nil
	case ch == '"':
		return l.scanString()
	case ch == 'b' && l.peekAt(1) == '"':
		l.advance()

		return l.scanBytes()
	case unicode.IsDigit(ch):
		return l.scanNumber()
	case unicode.IsLetter(ch) || ch == '_':
		return l.scanIdent()
	case strings.ContainsRune("([{", ch):
		l.parenDepth++

		return l.scanPunct()
	case strings.ContainsRune(")]}", ch):
		if l.parenDepth > 0 {
			l.parenDepth--
		}

		return l.scanPunct()
	default:
		return l.scanPunct()
	}
}

func (l *Lexer) scanIdent() (*Token, *Error) {
	start := l.here()
	startIdx := l.index

	for !l.isEOF() && (unicode.IsLetter(l.peek()) || unicode.IsDigit(l.peek()) || l.peek() == '_') {
		l.advance()
	}

	text := string(l.text[startIdx:l.index])
	kind := KindIdent

	if IsKeyword(text) {
		kind = KindKeyword
	}

	return &Token{Kind: kind, Text: text, Span: start}, nil
}

func (l *Lexer) scanNumber() (*Token, *Error) {
	start := l.here()
	startIdx := l.index
	isFloat := false

	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		l.advance()
		l.advance()

		for !l.isEOF() && isHexDigit(l.peek()) {
			l.advance()
		}

		text := string(l.text[startIdx:l.index])

		n, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return nil, errInvalidNumber(start)
		}

		return &Token{Kind: KindInt, Text: text, IntValue: n, Span: start}, nil
	}

	for !l.isEOF() && unicode.IsDigit(l.peek()) {
		l.advance()
	}

	if l.peek() == '.' && unicode.IsDigit(l.peekAt(1)) {
		isFloat = true

		l.advance()

		for !l.isEOF() && unicode.IsDigit(l.peek()) {
			l.advance()
		}
	}

	if l.peek() == '.' && l.peekAt(1) == '.' {
		// Not part of the number (range operator); stop here.
	} else if l.peek() == '.' && !unicode.IsDigit(l.peekAt(1)) && !isFloat {
		return nil, errInvalidNumber(l.here())
	}

	text := string(l.text[startIdx:l.index])

	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, errInvalidNumber(start)
		}

		return &Token{Kind: KindFloat, Text: text, FloatValue: f, Span: start}, nil
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, errInvalidNumber(start)
	}

	return &Token{Kind: KindInt, Text: text, IntValue: n, Span: start}, nil
}

func isHexDigit(ch rune) bool {
	return unicode.IsDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func (l *Lexer) scanBytes() (*Token, *Error) {
	start := l.here()
	l.advance() // opening quote

	var hex strings.Builder

	for {
		if l.isEOF() || l.peek() == '\n' {
			return nil, errUnterminatedString(start)
		}

		if l.peek() == '"' {
			l.advance()

			break
		}

		hex.WriteRune(l.advance())
	}

	text := hex.String()
	if len(text)%2 != 0 {
		return nil, errInvalidBytesLiteral(start)
	}

	for _, r := range text {
		if !isHexDigit(r) {
			return nil, errInvalidBytesLiteral(start)
		}
	}

	return &Token{Kind: KindBytes, Text: text, Span: start}, nil
}

// scanString handles "..." literals, including \u{XXXX} escapes and
// "{expr}" interpolation. Interpolation is expanded into the token sequence
// equivalent to "prefix" + expr + "suffix" per §4.1, by splitting the
// literal at every top-level "{...}" run and re-lexing each expression
// segment with a nested Lexer.
func (l *Lexer) scanString() (*Token, *Error) {
	start := l.here()
	l.advance() // opening quote

	var (
		segments   []Token
		cur        strings.Builder
		hasInterp  bool
		segSpan    = start
		pushString = func() {
			segments = append(segments, Token{Kind: KindString, Text: cur.String(), Span: segSpan})
			cur.Reset()
		}
	)

	for {
		if l.isEOF() || l.peek() == '\n' {
			return nil, errUnterminatedString(start)
		}

		ch := l.peek()

		switch {
		case ch == '"':
			l.advance()

			if hasInterp {
				pushString()

				return l.foldInterpolation(start, segments), nil
			}

			return &Token{Kind: KindString, Text: cur.String(), Span: start}, nil

		case ch == '\\':
			l.advance()

			esc, err := l.scanEscape(start)
			if err != nil {
				return nil, err
			}

			cur.WriteRune(esc)

		case ch == '{' && l.peekAt(1) != '{':
			hasInterp = true

			pushString()

			l.advance() // consume '{'

			exprStart := l.index
			depth := 1

			for depth > 0 {
				if l.isEOF() {
					return nil, errUnterminatedString(start)
				}

				switch l.peek() {
				case '{':
					depth++
				case '}':
					depth--

					if depth == 0 {
						goto doneExpr
					}
				}

				l.advance()
			}

		doneExpr:
			exprText := string(l.text[exprStart:l.index])
			l.advance() // consume '}'

			nested := New(exprText, l.line, l.col)

			exprToks, nerr := nested.Tokenize()
			if nerr != nil {
				return nil, nerr
			}

			for _, t := range exprToks {
				if t.Kind != KindEOF {
					segments = append(segments, t)
				}
			}

			segSpan = l.here()

		default:
			cur.WriteRune(l.advance())
		}
	}
}

// foldInterpolation produces the single logical String token used by the
// parser: the interpolation's segments are recorded on InterpSegments so the
// parser can build "prefix" + expr + "suffix" without re-lexing.
func (l *Lexer) foldInterpolation(start span.Span, segments []Token) *Token {
	return &Token{Kind: KindString, Text: "", Span: start, interpSegments: segments}
}

func (l *Lexer) scanEscape(start span.Span) (rune, *Error) {
	if l.isEOF() {
		return 0, errUnterminatedString(start)
	}

	ch := l.advance()

	switch ch {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case '\\':
		return '\\', nil
	case '"':
		return '"', nil
	case '{':
		return '{', nil
	case 'u':
		if l.peek() != '{' {
			return 0, errInvalidUnicodeEscape(start)
		}

		l.advance()

		hexStart := l.index

		for !l.isEOF() && l.peek() != '}' {
			l.advance()
		}

		if l.isEOF() {
			return 0, errInvalidUnicodeEscape(start)
		}

		hexText := string(l.text[hexStart:l.index])
		l.advance() // consume '}'

		code, err := strconv.ParseInt(hexText, 16, 32)
		if err != nil {
			return 0, errInvalidUnicodeEscape(start)
		}

		return rune(code), nil
	default:
		return 0, errInvalidUnicodeEscape(start)
	}
}

func (l *Lexer) scanPunct() (*Token, *Error) {
	start := l.here()
	two := string(l.text[l.index:min(l.index+2, len(l.text))])

	switch two {
	case "==", "!=", "<=", ">=", "->", "&&", "||", "::":
		l.advance()
		l.advance()

		return &Token{Kind: KindPunct, Text: two, Span: start}, nil
	}

	ch := l.advance()

	if ch == 0 {
		return nil, errUnexpectedChar(ch, start)
	}

	return &Token{Kind: KindPunct, Text: string(ch), Span: start}, nil
}
