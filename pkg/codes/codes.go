// Package codes is the central stable-error-code registry for the
// compiler's diagnostic stages. Most stages (resolver, typecheck,
// constraint, ownership, lower) already stamp a Code string directly onto
// their Error values; lex and parse errors don't (their Kind enumeration
// predates any code assignment), so this package keeps small Kind->code
// lookup tables for those two and reads the Code field straight off the
// rest. Doc and All are the parts no stage package can own on its own: a
// flat, central table of human-readable explanations per code.
//
// Code ranges:
//
//	E0001-E0099  Lex / Parse
//	E0100-E0199  Resolve
//	E0200-E0299  Type
//	E0300-E0399  Constraint
//	E0400-E0499  Ownership
//	E0500-E0599  Lowering
package codes

import (
	"github.com/lumen-lang/lumen/pkg/constraint"
	"github.com/lumen-lang/lumen/pkg/lexer"
	"github.com/lumen-lang/lumen/pkg/lower"
	"github.com/lumen-lang/lumen/pkg/ownership"
	"github.com/lumen-lang/lumen/pkg/parser"
	"github.com/lumen-lang/lumen/pkg/resolver"
	"github.com/lumen-lang/lumen/pkg/typecheck"
)

var lexCodes = map[string]string{
	"UnexpectedChar":            "E0001",
	"UnterminatedString":        "E0002",
	"InconsistentIndent":        "E0003",
	"InvalidNumber":             "E0004",
	"InvalidBytesLiteral":       "E0005",
	"InvalidUnicodeEscape":      "E0006",
	"UnterminatedMarkdownBlock": "E0007",
}

// parseCodes maps pkg/parser's Kind strings to codes. UnexpectedToken,
// UnclosedBracket and MissingEnd carry over from the original compiler's
// ParseError variants; MixedIndentation has no counterpart there (Lumen's
// markdown-embedded grammar enforces a rule the original parser never
// needed), so it takes the next free code in the parse range, E0017.
var parseCodes = map[string]string{
	"UnexpectedToken":  "E0010",
	"UnclosedBracket":  "E0012",
	"MissingEnd":       "E0013",
	"MixedIndentation": "E0017",
}

// LexCode returns the stable code for a lex-stage error.
func LexCode(e *lexer.Error) string { return lexCodes[e.Kind] }

// ParseCode returns the stable code for a parse-stage error.
func ParseCode(e *parser.Error) string { return parseCodes[e.Kind] }

// ResolverCode returns the stable code for a resolve-stage error.
func ResolverCode(e *resolver.Error) string { return e.Code }

// TypeCode returns the stable code for a typecheck-stage error.
func TypeCode(e *typecheck.Error) string { return e.Code }

// ConstraintCode returns the stable code for a constraint-stage error.
func ConstraintCode(e *constraint.Error) string { return e.Code }

// OwnershipCode returns the stable code for an ownership-stage error.
func OwnershipCode(e *ownership.Error) string { return e.Code }

// LowerCode returns the stable code for a lowering-stage error.
func LowerCode(e *lower.Error) string { return e.Code }

// CodeOf returns the stable code for any stage error this package knows
// about, or "" for anything else (including a plain wrapped error or nil).
func CodeOf(err error) string {
	switch e := err.(type) {
	case *lexer.Error:
		return LexCode(e)
	case *parser.Error:
		return ParseCode(e)
	case *resolver.Error:
		return ResolverCode(e)
	case *typecheck.Error:
		return TypeCode(e)
	case *constraint.Error:
		return ConstraintCode(e)
	case *ownership.Error:
		return OwnershipCode(e)
	case *lower.Error:
		return LowerCode(e)
	default:
		return ""
	}
}

// Entry is one row of the registry: a code and its documentation string.
type Entry struct {
	Code string
	Doc  string
}

// order lists every registered code in ascending, human-reading order. All
// walks this slice rather than ranging over the docs map so its output is
// stable.
var order = []string{
	"E0001", "E0002", "E0003", "E0004", "E0005", "E0006", "E0007", "E0008",
	"E0010", "E0012", "E0013", "E0017",
	"E0100", "E0101", "E0102", "E0103", "E0104", "E0105", "E0106", "E0107", "E0108", "E0109",
	"E0110", "E0111", "E0112", "E0113", "E0114", "E0115",
	"E0121", "E0122", "E0123", "E0124", "E0125",
	"E0200", "E0201", "E0202", "E0203", "E0204", "E0205", "E0206", "E0207", "E0208", "E0209",
	"E0300",
	"E0400", "E0401", "E0402", "E0403",
	"E0500",
}

var docs = map[string]string{
	"E0001": "An unexpected character was found in the source. Check for misplaced punctuation or non-ASCII characters outside string literals.",
	"E0002": "A string literal was opened but never closed. Add the missing closing quote on the same line or use a multi-line string.",
	"E0003": "Indentation is inconsistent with the rest of the file. Ensure every line uses the same number of spaces per indent level.",
	"E0004": "A numeric literal could not be parsed. Verify the number format (e.g., no double dots, valid hex prefix).",
	"E0005": "A bytes literal is malformed. Bytes literals must contain an even number of hex digits: b\"48656c6c6f\".",
	"E0006": "A unicode escape sequence is invalid. Use the format \\u{XXXX} with valid hex codepoints.",
	"E0007": "A markdown code fence was opened but never closed. Add a matching closing fence to end the block.",
	"E0008": "A preamble line starts with '@' but names a directive the extractor doesn't recognize. This is a warning, not a hard error; the line is kept but has no effect.",

	"E0010": "The parser encountered a token it did not expect at this position. Check for typos, missing operators, or incorrect syntax.",
	"E0012": "A bracket ('(', '[', or '{') was opened but never closed. Add the matching closing bracket.",
	"E0013": "A block-level construct (cell, record, if, for, etc.) is missing its closing 'end' keyword.",
	"E0017": "A block mixes indentation-based nesting with an explicit 'end' keyword for the same construct. Pick one style and use it consistently for the block.",

	"E0100": "A type name was used that has not been defined. Ensure the record, enum, or type alias is declared before use, or check for typos.",
	"E0101": "A generic type was instantiated with the wrong number of type arguments. For example, result[Int] is missing the error type.",
	"E0102": "A cell (function) name was referenced that has not been defined. Check the spelling or ensure the cell is declared in the current scope.",
	"E0103": "A trait name was referenced that has not been defined. Declare the trait before implementing or referencing it.",
	"E0104": "A tool alias was used that has not been declared with 'use tool'. Ensure the tool is imported before granting or calling it.",
	"E0105": "A name was defined more than once in the same scope. Rename one of the duplicate definitions to resolve the conflict.",
	"E0106": "A cell requires an effect but no compatible grant is in scope. Add a grant block that covers the required effect.",
	"E0107": "A cell performs an effect that is not declared in its effect row. Add the effect to the cell's signature.",
	"E0108": "A cell calls another cell whose effects are not a subset of the caller's declared effects. Propagate or handle the missing effect.",
	"E0109": "A nondeterministic operation was used inside a @deterministic cell. Remove the operation or drop the @deterministic directive.",
	"E0110": "A machine's initial state name does not match any declared state. Check the state name spelling in the machine definition.",
	"E0111": "A machine state transitions to a state name that does not exist. Verify the target state name in the transition.",
	"E0112": "A machine state is unreachable from the initial state. Remove the orphan state or add a transition path to it.",
	"E0113": "A machine declares no terminal state. At least one state must be marked terminal for the machine to halt.",
	"E0114": "A machine transition provides the wrong number of arguments to the target state. Match the target state's parameter count.",
	"E0115": "A machine transition argument type does not match the target state's parameter type. Fix the argument type.",
	"E0121": "A circular import was detected. Module A imports B which imports A, possibly through intermediaries. Break the cycle.",
	"E0122": "An imported module could not be found on disk. Check the module path and file extensions.",
	"E0123": "A named symbol imported from a module does not exist in that module. Verify the symbol name.",
	"E0124": "A trait implementation is missing one or more required methods. Implement all methods declared in the trait.",
	"E0125": "A trait implementation method has an incompatible signature. The parameter types and return type must match the trait declaration.",

	"E0200": "An expression's type does not match the expected type. For example, a cell returning String where Int is declared.",
	"E0201": "A variable name was used that has not been defined in the current scope. Check for typos or missing let bindings.",
	"E0202": "An expression was used in call position but is not callable. Only cells and closures can be called.",
	"E0203": "A cell was called with the wrong number of arguments. Check the cell's signature for the expected parameter count.",
	"E0204": "A field was accessed on a record that does not have that field. Check the field name or the record definition.",
	"E0205": "A type name used in a type annotation is not defined. Ensure the type is declared or imported before use.",
	"E0206": "A cell with a return type does not have a return statement on every code path. Add a return or ensure all branches return.",
	"E0207": "An assignment was made to an immutable variable. Declare the variable with 'let mut' to allow reassignment.",
	"E0208": "A match expression does not cover all variants of the matched enum. Add the missing arms or use a wildcard '_' pattern.",
	"E0209": "The return value of a @must_use cell was discarded. Assign the result to a variable or use it in an expression.",

	"E0300": "A where clause is unsatisfiable. Ensure the constraint expression is well-formed and not self-contradictory.",

	"E0400": "A variable was used after its value had already been moved. Clone the value before moving, or restructure to avoid reuse.",
	"E0401": "A linear binding went out of scope without being consumed. Use or explicitly consume the value before the scope ends.",
	"E0402": "A variable was borrowed while it already has an active borrow. End the first borrow before creating another.",
	"E0403": "A variable was moved while it still has active borrows. End all borrows before moving the value.",

	"E0500": "An internal error occurred during LIR lowering. This is usually caused by a cell exceeding the register limit.",
}

// Doc returns the documentation string for code, or "Unknown error code."
// if code isn't registered.
func Doc(code string) string {
	if d, ok := docs[code]; ok {
		return d
	}
	return "Unknown error code."
}

// All returns every registered code paired with its documentation, in
// ascending order.
func All() []Entry {
	entries := make([]Entry, len(order))
	for i, c := range order {
		entries[i] = Entry{Code: c, Doc: Doc(c)}
	}
	return entries
}
