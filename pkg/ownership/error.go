// Package ownership implements §4.6: per-cell move/borrow analysis over
// bindings whose value came from a `@linear` cell.
package ownership

import (
	"fmt"

	"github.com/lumen-lang/lumen/pkg/span"
)

// Ownership error codes, E0400-E0403, per
// original_source/rust/lumen-compiler/src/compiler/error_codes.rs's
// OwnershipError variants.
const (
	codeUseAfterMove      = "E0400"
	codeNotConsumed       = "E0401"
	codeAlreadyBorrowed   = "E0402"
	codeMoveWhileBorrowed = "E0403"
)

// Error is a single ownership diagnostic.
type Error struct {
	Kind string
	Code string
	msg  string
	span span.Span
}

func (e *Error) Span() span.Span { return e.span }
func (e *Error) Message() string { return e.msg }
func (e *Error) Error() string   { return fmt.Sprintf("%s: %s", e.span, e.msg) }

func errUseAfterMove(name string, sp span.Span) *Error {
	return &Error{Kind: "UseAfterMove", Code: codeUseAfterMove,
		msg: fmt.Sprintf("use of %q after it was moved", name), span: sp}
}

func errNotConsumed(name string, sp span.Span) *Error {
	return &Error{Kind: "NotConsumed", Code: codeNotConsumed,
		msg: fmt.Sprintf("linear binding %q goes out of scope without being consumed", name), span: sp}
}

func errAlreadyBorrowed(name string, sp span.Span) *Error {
	return &Error{Kind: "AlreadyBorrowed", Code: codeAlreadyBorrowed,
		msg: fmt.Sprintf("%q is already borrowed in this statement", name), span: sp}
}

func errMoveWhileBorrowed(name string, sp span.Span) *Error {
	return &Error{Kind: "MoveWhileBorrowed", Code: codeMoveWhileBorrowed,
		msg: fmt.Sprintf("%q is moved while still borrowed in this statement", name), span: sp}
}
