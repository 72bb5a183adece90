package parser

import (
	"fmt"

	"github.com/lumen-lang/lumen/pkg/span"
)

// Error is one parse-stage error. Parsing accumulates errors (§7) rather
// than failing fast, so a Program may carry many of these alongside a
// partial AST.
type Error struct {
	Kind string
	msg  string
	span span.Span
}

func (e *Error) Span() span.Span  { return e.span }
func (e *Error) Message() string  { return e.msg }
func (e *Error) Error() string    { return fmt.Sprintf("%s: %s", e.span, e.msg) }

func errUnexpectedToken(got, want string, sp span.Span) *Error {
	return &Error{Kind: "UnexpectedToken", msg: fmt.Sprintf("expected %s, found %s", want, got), span: sp}
}

// errUnclosedBracket reports both the opening location and the current
// location, per §4.2.
func errUnclosedBracket(bracket string, openSp, atSp span.Span) *Error {
	return &Error{
		Kind: "UnclosedBracket",
		msg:  fmt.Sprintf("unclosed %q opened at %s", bracket, openSp),
		span: atSp,
	}
}

// errMissingEnd reports the construct name whose `end` is missing, per
// §4.2.
func errMissingEnd(construct string, sp span.Span) *Error {
	return &Error{Kind: "MissingEnd", msg: fmt.Sprintf("missing \"end\" for %s", construct), span: sp}
}

func errMixedIndentation(sp span.Span) *Error {
	return &Error{Kind: "MixedIndentation", msg: "mixed indentation and \"end\" keyword for the same block", span: sp}
}
