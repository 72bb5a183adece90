// Package span provides the shared source-location type used by every stage
// of the Lumen pipeline, from the lexer through to diagnostic rendering.
package span

import "fmt"

// Span identifies a contiguous range of the original Markdown source that a
// token, AST node, or diagnostic refers to. Start/End are byte offsets into
// the concatenated code unit (see pkg/source); Line/Col are 1-based
// coordinates in the *original* Markdown file, not the extracted code.
type Span struct {
	Start int
	End   int
	Line  int
	Col   int
}

// New constructs a Span, panicking if the invariant Start <= End is violated.
func New(start, end, line, col int) Span {
	if start > end {
		panic(fmt.Sprintf("invalid span: start %d > end %d", start, end))
	}

	return Span{Start: start, End: end, Line: line, Col: col}
}

// Zero is the empty span used for synthesized nodes with no source location.
var Zero = Span{}

// String renders the span as "line:col", matching the teacher's
// SyntaxError.Error() convention.
func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Col)
}

// Merge returns the smallest span covering both s and other. Line/Col are
// taken from whichever span starts first.
func (s Span) Merge(other Span) Span {
	result := s
	if other.Start < s.Start {
		result.Line, result.Col = other.Line, other.Col
	}

	if other.Start < result.Start {
		result.Start = other.Start
	}

	if other.End > result.End {
		result.End = other.End
	}

	return result
}
