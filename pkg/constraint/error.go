package constraint

import (
	"fmt"

	"github.com/lumen-lang/lumen/pkg/span"
)

// Constraint error codes, E0300-E0399. Only E0300 is defined; the DSL this
// solver targets has exactly one failure mode, an unsatisfiable where
// clause.
const codeInvalid = "E0300"

// Error is a single constraint-verifier diagnostic.
type Error struct {
	Kind string
	Code string
	msg  string
	span span.Span
}

func (e *Error) Span() span.Span { return e.span }
func (e *Error) Message() string { return e.msg }
func (e *Error) Error() string   { return fmt.Sprintf("%s: %s", e.span, e.msg) }

func errInvalid(cellName string, conflict Constraint, sp span.Span) *Error {
	return &Error{
		Kind: "Invalid",
		Code: codeInvalid,
		msg:  fmt.Sprintf("where clause of %s is unsatisfiable: %s", cellName, conflict.String()),
		span: sp,
	}
}
