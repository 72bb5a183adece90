package lower

import "github.com/lumen-lang/lumen/pkg/span"

const codeLower = "E0500"

// Error is a Lower-stage diagnostic. Every lowering failure shares E0500
// (original_source/error_codes.rs assigns the whole Lower variant one
// code; there is no finer-grained per-cause table to port).
type Error struct {
	Code string
	msg  string
	span span.Span
}

func (e *Error) Span() span.Span { return e.span }
func (e *Error) Message() string { return e.msg }
func (e *Error) Error() string   { return e.msg }

func errRegisterOverflow(cellName string, sp span.Span) *Error {
	return &Error{
		Code: codeLower,
		msg:  "cell '" + cellName + "' requires more than 255 live registers",
		span: sp,
	}
}
