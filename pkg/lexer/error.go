package lexer

import (
	"fmt"

	"github.com/lumen-lang/lumen/pkg/span"
)

// Error is the single lex-stage error type (§7: Lex fails fast, carrying at
// most one error). It mirrors pkg/sexp.SyntaxError's Span()/Message() shape.
type Error struct {
	// Kind names the specific failure mode, matching spec.md §4.1's
	// enumeration exactly.
	Kind string
	msg  string
	span span.Span
}

// Failure mode constructors, one per spec.md §4.1 enumeration entry.
func errUnexpectedChar(ch rune, sp span.Span) *Error {
	return &Error{Kind: "UnexpectedChar", msg: fmt.Sprintf("unexpected character %q", ch), span: sp}
}

func errUnterminatedString(sp span.Span) *Error {
	return &Error{Kind: "UnterminatedString", msg: "unterminated string literal", span: sp}
}

func errInconsistentIndent(sp span.Span) *Error {
	return &Error{Kind: "InconsistentIndent", msg: "inconsistent indentation", span: sp}
}

func errInvalidNumber(sp span.Span) *Error {
	return &Error{Kind: "InvalidNumber", msg: "invalid numeric literal", span: sp}
}

func errInvalidBytesLiteral(sp span.Span) *Error {
	return &Error{Kind: "InvalidBytesLiteral", msg: "invalid bytes literal: expected an even number of hex digits", span: sp}
}

func errInvalidUnicodeEscape(sp span.Span) *Error {
	return &Error{Kind: "InvalidUnicodeEscape", msg: "invalid unicode escape sequence", span: sp}
}

func errUnterminatedMarkdownBlock(sp span.Span) *Error {
	return &Error{Kind: "UnterminatedMarkdownBlock", msg: "unterminated markdown code fence", span: sp}
}

// Span returns the span of the original text on which this error is reported.
func (e *Error) Span() span.Span { return e.span }

// Message returns the human-readable message to be reported.
func (e *Error) Message() string { return e.msg }

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.span, e.msg)
}
