package typecheck

import (
	"fmt"

	"github.com/lumen-lang/lumen/pkg/span"
)

// Error is one type-stage error. Like the resolver, typecheck accumulates
// rather than fails fast (§7).
type Error struct {
	Kind string
	Code string
	msg  string
	span span.Span
}

func (e *Error) Span() span.Span { return e.span }
func (e *Error) Message() string { return e.msg }
func (e *Error) Error() string   { return fmt.Sprintf("%s: %s", e.span, e.msg) }

// Type error codes, E0200-E0209, ported from the original compiler's
// error_codes.rs type_error_code table.
const (
	codeMismatch        = "E0200"
	codeUndefinedVar    = "E0201"
	codeNotCallable     = "E0202"
	codeArgCount        = "E0203"
	codeUnknownField    = "E0204"
	codeUndefinedType   = "E0205"
	codeMissingReturn   = "E0206"
	codeImmutableAssign = "E0207"
	codeIncompleteMatch = "E0208"
	codeMustUseIgnored  = "E0209"
)

func errMismatch(want, got Type, sp span.Span) *Error {
	return &Error{
		Kind: "Mismatch", Code: codeMismatch,
		msg:  fmt.Sprintf("expected type %s, found %s", want, got),
		span: sp,
	}
}

func errUndefinedVar(name string, sp span.Span) *Error {
	return &Error{
		Kind: "UndefinedVar", Code: codeUndefinedVar,
		msg:  fmt.Sprintf("undefined variable %q", name),
		span: sp,
	}
}

func errNotCallable(got Type, sp span.Span) *Error {
	return &Error{
		Kind: "NotCallable", Code: codeNotCallable,
		msg:  fmt.Sprintf("value of type %s is not callable", got),
		span: sp,
	}
}

func errArgCount(name string, want, got int, sp span.Span) *Error {
	return &Error{
		Kind: "ArgCount", Code: codeArgCount,
		msg:  fmt.Sprintf("%q expects %d argument(s), found %d", name, want, got),
		span: sp,
	}
}

func errUnknownField(typeName, field string, sp span.Span) *Error {
	return &Error{
		Kind: "UnknownField", Code: codeUnknownField,
		msg:  fmt.Sprintf("%s has no field %q", typeName, field),
		span: sp,
	}
}

func errUndefinedType(name string, sp span.Span) *Error {
	return &Error{
		Kind: "UndefinedType", Code: codeUndefinedType,
		msg:  fmt.Sprintf("undefined type %q", name),
		span: sp,
	}
}

func errMissingReturn(cellName string, sp span.Span) *Error {
	return &Error{
		Kind: "MissingReturn", Code: codeMissingReturn,
		msg:  fmt.Sprintf("cell %q does not return a value on every path", cellName),
		span: sp,
	}
}

func errImmutableAssign(name string, sp span.Span) *Error {
	return &Error{
		Kind: "ImmutableAssign", Code: codeImmutableAssign,
		msg:  fmt.Sprintf("cannot assign to %q: not declared with \"let mut\"", name),
		span: sp,
	}
}

func errIncompleteMatch(missing []string, sp span.Span) *Error {
	return &Error{
		Kind: "IncompleteMatch", Code: codeIncompleteMatch,
		msg:  fmt.Sprintf("match does not cover variant(s): %v", missing),
		span: sp,
	}
}

func errMustUseIgnored(cellName string, sp span.Span) *Error {
	return &Error{
		Kind: "MustUseIgnored", Code: codeMustUseIgnored,
		msg:  fmt.Sprintf("return value of @must_use cell %q is discarded", cellName),
		span: sp,
	}
}
